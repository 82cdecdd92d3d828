// Package catalog holds the static regulatory-guideline reference data:
// per-category guideline records with durations and prices, the selectable
// product-detail options, and the canned sample-description texts. The
// catalog is parsed once at startup and never mutated afterwards.
package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Guideline is an immutable catalog entry for one regulatory test protocol.
type Guideline struct {
	Category         string `json:"category"`
	Code             string `json:"code"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	BaseDurationDays int    `json:"baseDurationDays"`
	DeviationPercent int    `json:"deviationPercent"`
	UnitPrice        int    `json:"unitPrice"`
}

// Options lists the selectable product-detail values for a category.
type Options struct {
	SampleForms    []string `json:"sampleForms"`
	SampleSolvents []string `json:"sampleSolvents"`
	Applications   []string `json:"applications"`
}

// Category groups everything the catalog knows about one product domain.
type Category struct {
	Name              string      `json:"name"`
	Options           Options     `json:"options"`
	CannedDescription string      `json:"cannedDescription"`
	Guidelines        []Guideline `json:"guidelines"`
}

// Document is the on-disk shape of the catalog file.
type Document struct {
	Categories []Category `json:"categories"`
}

// foldTransformer strips diacritics so "dérmal" and "dermal" index the same
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func fold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// searchEntry holds the folded code and title of one guideline, computed at
// index time so every search does not re-fold the whole catalog.
type searchEntry struct {
	code      string
	title     string
	guideline Guideline
}

// Catalog is the parsed, indexed reference data.
type Catalog struct {
	categories []Category
	byCategory map[string][]Guideline
	byCode     map[string]map[string]Guideline
	search     []searchEntry
}

// Empty returns a catalog with no categories. Used as the placeholder before
// the first load completes.
func Empty() *Catalog {
	return &Catalog{
		byCategory: make(map[string][]Guideline),
		byCode:     make(map[string]map[string]Guideline),
	}
}

// newCatalog indexes a parsed document.
func newCatalog(doc *Document) *Catalog {
	c := &Catalog{
		categories: doc.Categories,
		byCategory: make(map[string][]Guideline, len(doc.Categories)),
		byCode:     make(map[string]map[string]Guideline, len(doc.Categories)),
	}

	for _, cat := range doc.Categories {
		codes := make(map[string]Guideline, len(cat.Guidelines))
		guidelines := make([]Guideline, 0, len(cat.Guidelines))
		for _, g := range cat.Guidelines {
			g.Category = cat.Name
			codes[g.Code] = g
			guidelines = append(guidelines, g)
			c.search = append(c.search, searchEntry{
				code:      fold(g.Code),
				title:     fold(g.Title),
				guideline: g,
			})
		}
		c.byCategory[cat.Name] = guidelines
		c.byCode[cat.Name] = codes
	}

	return c
}

// Categories returns the category names in catalog order.
func (c *Catalog) Categories() []string {
	names := make([]string, 0, len(c.categories))
	for _, cat := range c.categories {
		names = append(names, cat.Name)
	}
	return names
}

// HasCategory reports whether the catalog knows the given category.
func (c *Catalog) HasCategory(category string) bool {
	_, ok := c.byCategory[category]
	return ok
}

// GuidelinesForCategory returns the ordered guideline list for a category.
// Unknown categories yield an empty list.
func (c *Catalog) GuidelinesForCategory(category string) []Guideline {
	return c.byCategory[category]
}

// GuidelineData looks up a single guideline by category and code. A missing
// guideline is a normal outcome, callers must treat ok=false as "no data to
// display" rather than an error.
func (c *Catalog) GuidelineData(category, code string) (Guideline, bool) {
	codes, ok := c.byCode[category]
	if !ok {
		return Guideline{}, false
	}
	g, ok := codes[code]
	return g, ok
}

// OptionsForCategory returns the selectable product-detail values.
func (c *Catalog) OptionsForCategory(category string) (Options, bool) {
	for _, cat := range c.categories {
		if cat.Name == category {
			return cat.Options, true
		}
	}
	return Options{}, false
}

// CannedDescription returns the auto-generated sample description text for a
// category. ok=false means the category has no canned text and callers fall
// back to guideline titles.
func (c *Catalog) CannedDescription(category string) (string, bool) {
	for _, cat := range c.categories {
		if cat.Name == category && cat.CannedDescription != "" {
			return cat.CannedDescription, true
		}
	}
	return "", false
}

// SearchGuidelines returns every guideline whose code or title contains the
// term, across all categories. Matching is case- and diacritic-insensitive
// on both sides, the catalog side folded at index time.
func (c *Catalog) SearchGuidelines(term string) []Guideline {
	term = fold(term)
	var results []Guideline
	for _, e := range c.search {
		if strings.Contains(e.code, term) || strings.Contains(e.title, term) {
			results = append(results, e.guideline)
		}
	}
	return results
}

// GuidelineCount returns the total number of guideline records.
func (c *Catalog) GuidelineCount() int {
	n := 0
	for _, list := range c.byCategory {
		n += len(list)
	}
	return n
}
