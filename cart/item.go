// Package cart builds priced order lines from committed selections and
// manages the cart collection, including draft (review-modal) edits that
// must not leak into the persisted cart unless confirmed.
package cart

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ValidityPeriod is how long a generated quotation line stays valid.
const ValidityPeriod = 30 * 24 * time.Hour

// CartItem is one persisted order line. The JSON field names are consumed
// verbatim by downstream quotation rendering; do not rename them.
type CartItem struct {
	ID                 string    `json:"id"`
	ConfigNo           string    `json:"configNo"`
	Category           string    `json:"category"`
	SampleForm         string    `json:"sampleForm"`
	SampleSolvent      string    `json:"sampleSolvent"`
	Application        string    `json:"application"`
	NumSamples         int       `json:"numSamples"`
	SelectedGuidelines []string  `json:"selectedGuidelines"`
	Price              int       `json:"price"`
	SampleDescription  string    `json:"sampleDescription"`
	CreatedOn          time.Time `json:"createdOn"`
	ValidTill          time.Time `json:"validTill"`
	Description        string    `json:"description"`
}

// clone returns a deep copy so draft edits cannot alias the stored item.
func (it CartItem) clone() CartItem {
	it.SelectedGuidelines = slices.Clone(it.SelectedGuidelines)
	return it
}

// newItemID generates a stable unique identifier for a cart item.
func newItemID() string {
	return uuid.NewString()
}

// newConfigNo generates the human-readable reference code printed on the
// quotation document.
func newConfigNo(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return "CFG-" + now.Format("20060102") + "-" + suffix
}

// Cart is an ordered sequence of items keyed by id.
type Cart struct {
	items []CartItem
}

// New creates an empty cart.
func New() *Cart {
	return &Cart{}
}

// Items returns the lines in insertion order.
func (c *Cart) Items() []CartItem {
	out := make([]CartItem, len(c.items))
	for i, it := range c.items {
		out[i] = it.clone()
	}
	return out
}

// Get returns the item with the given id.
func (c *Cart) Get(id string) (CartItem, bool) {
	for _, it := range c.items {
		if it.ID == id {
			return it.clone(), true
		}
	}
	return CartItem{}, false
}

// Put adds the item, or replaces the existing line with the same id in
// place, preserving cart order.
func (c *Cart) Put(item CartItem) {
	for i, it := range c.items {
		if it.ID == item.ID {
			c.items[i] = item.clone()
			return
		}
	}
	c.items = append(c.items, item.clone())
}

// Remove deletes the line with the given id. Returns false when absent.
func (c *Cart) Remove(id string) bool {
	for i, it := range c.items {
		if it.ID == id {
			c.items = slices.Delete(c.items, i, i+1)
			return true
		}
	}
	return false
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	return len(c.items)
}

// TotalPrice sums the line prices.
func (c *Cart) TotalPrice() int {
	total := 0
	for _, it := range c.items {
		total += it.Price
	}
	return total
}

// Clear removes every line, used after checkout completion.
func (c *Cart) Clear() {
	c.items = nil
}
