package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed data/catalog.json
var embeddedData embed.FS

// Load parses the embedded default catalog.
func Load() (*Catalog, error) {
	raw, err := embeddedData.ReadFile("data/catalog.json")
	if err != nil {
		return nil, fmt.Errorf("read embedded catalog: %w", err)
	}
	return parse(raw)
}

// LoadFile parses a catalog override file. Used when CATALOG_PATH points at
// an external document that operations can edit without a rebuild.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file %s: %w", path, err)
	}
	return parse(raw)
}

func parse(raw []byte) (*Catalog, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog document: %w", err)
	}

	if err := validateDocument(&doc); err != nil {
		return nil, fmt.Errorf("catalog validation failed: %w", err)
	}

	return newCatalog(&doc), nil
}

// validateDocument rejects documents that would corrupt pricing downstream.
func validateDocument(doc *Document) error {
	if len(doc.Categories) == 0 {
		return fmt.Errorf("no categories defined")
	}

	seenCategories := make(map[string]bool, len(doc.Categories))
	for _, cat := range doc.Categories {
		if cat.Name == "" {
			return fmt.Errorf("category with empty name")
		}
		if seenCategories[cat.Name] {
			return fmt.Errorf("duplicate category %q", cat.Name)
		}
		seenCategories[cat.Name] = true

		if len(cat.Guidelines) == 0 {
			return fmt.Errorf("category %q has no guidelines", cat.Name)
		}

		seenCodes := make(map[string]bool, len(cat.Guidelines))
		for _, g := range cat.Guidelines {
			if g.Code == "" {
				return fmt.Errorf("category %q: guideline with empty code", cat.Name)
			}
			if seenCodes[g.Code] {
				return fmt.Errorf("category %q: duplicate guideline code %q", cat.Name, g.Code)
			}
			seenCodes[g.Code] = true

			if g.BaseDurationDays < 0 {
				return fmt.Errorf("category %q: guideline %q has negative duration", cat.Name, g.Code)
			}
			if g.DeviationPercent < 0 {
				return fmt.Errorf("category %q: guideline %q has negative deviation", cat.Name, g.Code)
			}
			if g.UnitPrice < 0 {
				return fmt.Errorf("category %q: guideline %q has negative price", cat.Name, g.Code)
			}
		}
	}

	return nil
}
