package cart

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/biocule/quotation-api/catalog"
	"github.com/biocule/quotation-api/selection"
)

func loadCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	return cat
}

func topicalCreamState() *selection.State {
	st := selection.NewState("Pharmaceuticals")
	st.SetSampleForm("Cream", "")
	st.SetSampleSolvent("Distilled Water", "")
	st.SetApplication("Topical", "")
	st.SelectAll(true)
	return st
}

func TestCommitBuildsPricedItem(t *testing.T) {
	cat := loadCatalog(t)
	agg := NewAggregator(cat)
	c := New()
	now := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)

	item, err := agg.Commit(c, topicalCreamState(), "white cream, 5% w/w", "action-1", now)
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	wantGuidelines := []string{"OECD 405", "OECD 404", "OECD 406", "OECD 410"}
	if !reflect.DeepEqual(item.SelectedGuidelines, wantGuidelines) {
		t.Errorf("guidelines = %v, want %v", item.SelectedGuidelines, wantGuidelines)
	}
	if item.Price != 1070000 {
		t.Errorf("price = %d, want 1070000", item.Price)
	}
	if item.ID == "" || item.ConfigNo == "" {
		t.Error("identifiers were not generated")
	}
	if !strings.HasPrefix(item.ConfigNo, "CFG-20260827-") {
		t.Errorf("configNo = %q, want CFG-20260827-... form", item.ConfigNo)
	}
	if !item.CreatedOn.Equal(now) {
		t.Errorf("createdOn = %v, want %v", item.CreatedOn, now)
	}
	if want := now.Add(30 * 24 * time.Hour); !item.ValidTill.Equal(want) {
		t.Errorf("validTill = %v, want %v", item.ValidTill, want)
	}
	if item.SampleDescription != "white cream, 5% w/w" {
		t.Errorf("sampleDescription = %q", item.SampleDescription)
	}
	if c.Len() != 1 {
		t.Errorf("cart has %d items, want 1", c.Len())
	}
}

func TestCommitValidationBlocksCartMutation(t *testing.T) {
	cat := loadCatalog(t)
	agg := NewAggregator(cat)
	c := New()

	st := selection.NewState("Pharmaceuticals")
	st.SetSampleForm("Tablets", "")

	_, err := agg.Commit(c, st, "", "action-1", time.Now())
	if err == nil {
		t.Fatal("Commit succeeded on an incomplete selection")
	}
	var verr *selection.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want *selection.ValidationError", err)
	}
	if c.Len() != 0 {
		t.Error("blocked commit mutated the cart")
	}
}

func TestCommitIdempotentPerAction(t *testing.T) {
	cat := loadCatalog(t)
	agg := NewAggregator(cat)
	c := New()
	st := topicalCreamState()
	now := time.Now()

	first, err := agg.Commit(c, st, "", "dblclick", now)
	if err != nil {
		t.Fatalf("first Commit failed: %v", err)
	}
	second, err := agg.Commit(c, st, "", "dblclick", now)
	if err != nil {
		t.Fatalf("second Commit failed: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("double submit created two items: %s and %s", first.ID, second.ID)
	}
	if c.Len() != 1 {
		t.Errorf("cart has %d items after double submit, want 1", c.Len())
	}
	if second.Price != first.Price {
		t.Errorf("idempotent re-save changed price from %d to %d", first.Price, second.Price)
	}
}

func TestCommitActionReplayExpires(t *testing.T) {
	cat := loadCatalog(t)
	agg := NewAggregator(cat)
	c := New()
	now := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)

	first, err := agg.Commit(c, topicalCreamState(), "", "a1", now)
	if err != nil {
		t.Fatalf("first Commit failed: %v", err)
	}

	later := now.Add(2 * time.Hour)
	second, err := agg.Commit(c, topicalCreamState(), "", "a1", later)
	if err != nil {
		t.Fatalf("second Commit failed: %v", err)
	}

	if second.ID == first.ID {
		t.Error("stale action id replayed the original line")
	}
	if c.Len() != 2 {
		t.Errorf("cart has %d items, want 2", c.Len())
	}
	if len(agg.actionItems) != 1 {
		t.Errorf("stale action entries were not evicted: %d remain", len(agg.actionItems))
	}
}

func TestEditPreservesIdentity(t *testing.T) {
	cat := loadCatalog(t)
	agg := NewAggregator(cat)
	c := New()
	created := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	original, err := agg.Commit(c, topicalCreamState(), "", "a1", created)
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	edit := selection.BeginEdit(selection.EditSeed{
		ItemID:        original.ID,
		Category:      original.Category,
		SampleForm:    "Tablets",
		SampleSolvent: "Distilled Water",
		Application:   "Oral",
		NumSamples:    3,
		Guidelines:    []string{"OECD 423", "OECD 407"},
	})

	later := created.Add(48 * time.Hour)
	updated, err := agg.Commit(c, edit, "revised dosage form", "a2", later)
	if err != nil {
		t.Fatalf("edit Commit failed: %v", err)
	}

	if updated.ID != original.ID || updated.ConfigNo != original.ConfigNo {
		t.Error("edit regenerated identity")
	}
	if !updated.CreatedOn.Equal(original.CreatedOn) || !updated.ValidTill.Equal(original.ValidTill) {
		t.Error("edit regenerated dates")
	}
	if want := 95000 + 250000; updated.Price != want {
		t.Errorf("edited price = %d, want %d", updated.Price, want)
	}
	if updated.SampleForm != "Tablets" {
		t.Errorf("edited sampleForm = %q, want Tablets", updated.SampleForm)
	}
	if c.Len() != 1 {
		t.Errorf("cart has %d items after edit, want 1", c.Len())
	}
}

func TestCommitSubstitutesCustomText(t *testing.T) {
	cat := loadCatalog(t)
	agg := NewAggregator(cat)
	c := New()

	st := selection.NewState("Pharmaceuticals")
	st.SetSampleForm("Others", "medicated patch")
	st.SetSampleSolvent("Distilled Water", "")
	st.SetApplication("Topical", "")
	st.SelectAll(true)

	item, err := agg.Commit(c, st, "", "a1", time.Now())
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if want := "Others (medicated patch)"; item.SampleForm != want {
		t.Errorf("sampleForm = %q, want %q", item.SampleForm, want)
	}
}

func TestCommitSynthesizesDescription(t *testing.T) {
	cat := loadCatalog(t)
	agg := NewAggregator(cat)
	c := New()

	item, err := agg.Commit(c, topicalCreamState(), "", "a1", time.Now())
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if !strings.Contains(item.Description, "pharmaceutical") {
		t.Errorf("description = %q, want the canned pharmaceuticals text", item.Description)
	}

	withText, err := agg.Commit(c, topicalCreamState(), "client supplied text", "a2", time.Now())
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if withText.Description != "client supplied text" {
		t.Errorf("description = %q, want the supplied text", withText.Description)
	}
}

func TestRemoveGuidelineRecomputesPrice(t *testing.T) {
	cat := loadCatalog(t)
	agg := NewAggregator(cat)
	c := New()

	item, err := agg.Commit(c, topicalCreamState(), "", "a1", time.Now())
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	updated, err := agg.RemoveGuideline(c, item.ID, "OECD 410")
	if err != nil {
		t.Fatalf("RemoveGuideline failed: %v", err)
	}

	if want := 1070000 - 850000; updated.Price != want {
		t.Errorf("price after removal = %d, want %d", updated.Price, want)
	}
	stored, _ := c.Get(item.ID)
	if stored.Price != updated.Price {
		t.Error("committed removal did not persist the recomputed price")
	}
}

func TestDraftRemovalDoesNotLeak(t *testing.T) {
	cat := loadCatalog(t)
	agg := NewAggregator(cat)
	c := New()

	item, err := agg.Commit(c, topicalCreamState(), "", "a1", time.Now())
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	draft, err := OpenDraft(c, cat, item.ID)
	if err != nil {
		t.Fatalf("OpenDraft failed: %v", err)
	}

	working := draft.RemoveGuideline("OECD 410")
	if want := 1070000 - 850000; working.Price != want {
		t.Errorf("draft price = %d, want %d", working.Price, want)
	}

	// Cancelled draft: the persisted cart must be untouched.
	stored, _ := c.Get(item.ID)
	if stored.Price != 1070000 || len(stored.SelectedGuidelines) != 4 {
		t.Error("draft removal leaked into the persisted cart")
	}

	// Confirmed draft: the working copy is merged.
	draft.Confirm(c)
	stored, _ = c.Get(item.ID)
	if stored.Price != 1070000-850000 || len(stored.SelectedGuidelines) != 3 {
		t.Error("confirmed draft did not merge into the cart")
	}
}

func TestCheckoutAggregate(t *testing.T) {
	cat := loadCatalog(t)
	agg := NewAggregator(cat)
	c := New()

	if _, err := agg.Commit(c, topicalCreamState(), "", "a1", time.Now()); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	tablets := selection.NewState("Pharmaceuticals")
	tablets.SetSampleForm("Tablets", "")
	tablets.SetSampleSolvent("Distilled Water", "")
	tablets.SetApplication("Oral", "")
	tablets.SetNumSamples(2)
	tablets.ToggleGuideline("OECD 423")
	tablets.ToggleGuideline("OECD 404") // overlaps nothing in systemic, dedupe across items

	if _, err := agg.Commit(c, tablets, "", "a2", time.Now()); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	order := CheckoutAggregate(c)

	if order.ItemCount != 2 {
		t.Errorf("itemCount = %d, want 2", order.ItemCount)
	}
	if order.TotalSamples != 3 {
		t.Errorf("totalSamples = %d, want 3", order.TotalSamples)
	}
	// OECD 404 appears in both items, unioned once.
	want := []string{"OECD 405", "OECD 404", "OECD 406", "OECD 410", "OECD 423"}
	if !reflect.DeepEqual(order.Guidelines, want) {
		t.Errorf("guidelines = %v, want %v", order.Guidelines, want)
	}
	if order.TotalPrice != c.TotalPrice() {
		t.Errorf("totalPrice = %d, want cart total %d", order.TotalPrice, c.TotalPrice())
	}

	// Aggregation must not mutate items.
	if c.Len() != 2 {
		t.Error("aggregate mutated the cart")
	}
}

func TestCartRemove(t *testing.T) {
	c := New()
	c.Put(CartItem{ID: "a", Price: 10})
	c.Put(CartItem{ID: "b", Price: 20})

	if !c.Remove("a") {
		t.Error("Remove(a) = false, want true")
	}
	if c.Remove("a") {
		t.Error("second Remove(a) = true, want false")
	}
	if c.Len() != 1 || c.TotalPrice() != 20 {
		t.Errorf("cart after removal: len=%d total=%d", c.Len(), c.TotalPrice())
	}
}
