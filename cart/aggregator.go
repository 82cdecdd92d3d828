package cart

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/biocule/quotation-api/catalog"
	"github.com/biocule/quotation-api/pricing"
	"github.com/biocule/quotation-api/selection"
)

// actionRetention bounds how long a commit action id stays replayable. The
// double-submit window it protects against is seconds wide.
const actionRetention = time.Hour

type actionRecord struct {
	itemID string
	at     time.Time
}

// Aggregator converts committed selection states into cart lines and keeps
// line prices consistent with the catalog.
type Aggregator struct {
	source func() *catalog.Catalog

	// actionItems remembers which cart item each explicit user action
	// produced, so a rapid double-submit of the same action cannot create a
	// second line. Entries past actionRetention are evicted on commit.
	mu          sync.Mutex
	actionItems map[string]actionRecord
}

// NewAggregator creates an aggregator over a fixed catalog.
func NewAggregator(cat *catalog.Catalog) *Aggregator {
	return NewAggregatorSource(func() *catalog.Catalog { return cat })
}

// NewAggregatorSource creates an aggregator that re-reads the catalog on
// every operation, so prices follow a hot-swapped catalog.
func NewAggregatorSource(source func() *catalog.Catalog) *Aggregator {
	return &Aggregator{
		source:      source,
		actionItems: make(map[string]actionRecord),
	}
}

// Commit converts the selection state into a cart line and writes it into
// the cart. Validation failures block the transition without mutating the
// cart. actionID identifies the explicit user action; repeating it returns
// the line it already produced.
func (a *Aggregator) Commit(c *Cart, st *selection.State, sampleDescription, actionID string, now time.Time) (CartItem, error) {
	a.mu.Lock()
	for id, rec := range a.actionItems {
		if now.Sub(rec.at) > actionRetention {
			delete(a.actionItems, id)
		}
	}
	var itemID string
	var seen bool
	if actionID != "" {
		if rec, ok := a.actionItems[actionID]; ok {
			itemID, seen = rec.itemID, true
		}
	}
	a.mu.Unlock()
	if seen {
		if existing, ok := c.Get(itemID); ok {
			return existing, nil
		}
	}

	if verr := st.Validate(); verr != nil {
		return CartItem{}, verr
	}

	// The three section projections are invariant-equal; the union is the
	// defensive contract for order composition.
	combined := dedupeUnion(
		st.Selection.SampleFormCodes(),
		st.Selection.SampleSolventCodes(),
		st.Selection.ApplicationCodes(),
	)

	item := CartItem{
		Category:           st.Category,
		SampleForm:         st.DisplaySampleForm(),
		SampleSolvent:      st.DisplaySampleSolvent(),
		Application:        st.DisplayApplication(),
		NumSamples:         st.NumSamples,
		SelectedGuidelines: combined,
		Price:              pricing.PriceFor(a.source(), st.Category, combined),
		SampleDescription:  strings.TrimSpace(sampleDescription),
	}

	if st.EditMode && st.EditItemID != "" {
		original, ok := c.Get(st.EditItemID)
		if !ok {
			return CartItem{}, fmt.Errorf("cart item %s not found for edit", st.EditItemID)
		}
		// Identity and dates survive edits.
		item.ID = original.ID
		item.ConfigNo = original.ConfigNo
		item.CreatedOn = original.CreatedOn
		item.ValidTill = original.ValidTill
	} else {
		item.ID = newItemID()
		item.ConfigNo = newConfigNo(now)
		item.CreatedOn = now
		item.ValidTill = now.Add(ValidityPeriod)
	}

	// The narrative falls back to the category's canned text when the user
	// supplied no free-text description.
	if item.SampleDescription == "" {
		item.Description = a.synthesizeDescription(st.Category, combined)
	} else {
		item.Description = item.SampleDescription
	}

	c.Put(item)
	st.MarkCommitted()

	if actionID != "" {
		a.mu.Lock()
		a.actionItems[actionID] = actionRecord{itemID: item.ID, at: now}
		a.mu.Unlock()
	}

	return item, nil
}

// synthesizeDescription builds the narrative text for a category. Categories
// absent from the canned table fall back to the selected guideline titles.
func (a *Aggregator) synthesizeDescription(category string, codes []string) string {
	cat := a.source()
	if text, ok := cat.CannedDescription(category); ok {
		return text
	}

	var titles []string
	for _, code := range codes {
		if g, ok := cat.GuidelineData(category, code); ok {
			titles = append(titles, g.Title)
		}
	}
	if len(titles) == 0 {
		return "Toxicity study as per selected guidelines."
	}
	return "Study covering: " + strings.Join(titles, "; ")
}

// RemoveGuideline removes a single guideline from a persisted cart item and
// recomputes its price immediately. Removing an absent code is a no-op.
func (a *Aggregator) RemoveGuideline(c *Cart, itemID, code string) (CartItem, error) {
	item, ok := c.Get(itemID)
	if !ok {
		return CartItem{}, fmt.Errorf("cart item %s not found", itemID)
	}

	item.SelectedGuidelines = slices.DeleteFunc(item.SelectedGuidelines, func(s string) bool {
		return s == code
	})
	item.Price = pricing.PriceFor(a.source(), item.Category, item.SelectedGuidelines)

	c.Put(item)
	return item, nil
}

// AggregatedOrder is the composite checkout view across the whole cart.
type AggregatedOrder struct {
	Guidelines   []string `json:"guidelines"`
	TotalSamples int      `json:"totalSamples"`
	TotalPrice   int      `json:"totalPrice"`
	ItemCount    int      `json:"itemCount"`
}

// CheckoutAggregate unions all cart items' guideline sets and sums their
// sample counts and prices without mutating any item.
func CheckoutAggregate(c *Cart) AggregatedOrder {
	order := AggregatedOrder{ItemCount: c.Len()}
	for _, it := range c.Items() {
		for _, code := range it.SelectedGuidelines {
			if !slices.Contains(order.Guidelines, code) {
				order.Guidelines = append(order.Guidelines, code)
			}
		}
		order.TotalSamples += it.NumSamples
		order.TotalPrice += it.Price
	}
	return order
}

func dedupeUnion(sets ...[]string) []string {
	var out []string
	for _, set := range sets {
		for _, code := range set {
			if !slices.Contains(out, code) {
				out = append(out, code)
			}
		}
	}
	return out
}
