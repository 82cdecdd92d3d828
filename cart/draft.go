package cart

import (
	"fmt"
	"slices"

	"github.com/biocule/quotation-api/catalog"
	"github.com/biocule/quotation-api/pricing"
)

// Draft is a working copy of one cart item opened for review-modal edits.
// Mutations touch only the copy; the persisted cart changes on Confirm and
// stays untouched on Cancel (or when the modal simply closes).
type Draft struct {
	catalog *catalog.Catalog
	working CartItem
}

// OpenDraft copies a cart item into a new draft.
func OpenDraft(c *Cart, cat *catalog.Catalog, itemID string) (*Draft, error) {
	item, ok := c.Get(itemID)
	if !ok {
		return nil, fmt.Errorf("cart item %s not found", itemID)
	}
	return &Draft{catalog: cat, working: item}, nil
}

// Item returns the current working copy.
func (d *Draft) Item() CartItem {
	return d.working.clone()
}

// RemoveGuideline drops one guideline from the working copy and recomputes
// its price. The persisted cart is not touched.
func (d *Draft) RemoveGuideline(code string) CartItem {
	d.working.SelectedGuidelines = slices.DeleteFunc(d.working.SelectedGuidelines, func(s string) bool {
		return s == code
	})
	d.working.Price = pricing.PriceFor(d.catalog, d.working.Category, d.working.SelectedGuidelines)
	return d.working.clone()
}

// Confirm merges the working copy back into the cart.
func (d *Draft) Confirm(c *Cart) CartItem {
	c.Put(d.working)
	return d.working.clone()
}
