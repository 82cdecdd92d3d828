package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/biocule/quotation-api/cart"
	"github.com/biocule/quotation-api/selection"
)

// ServeCart returns the session's cart lines and total
func (h *Handler) ServeCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var items []cart.CartItem
	var total int
	s.WithLock(func(st *selection.State, c *cart.Cart) {
		items = c.Items()
		total = c.TotalPrice()
	})

	h.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"items":      items,
		"totalPrice": total,
	})
}

// RemoveCartItem deletes one cart line
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	itemID := chi.URLParam(r, "itemId")

	var removed bool
	s.WithLock(func(st *selection.State, c *cart.Cart) {
		removed = c.Remove(itemID)
	})

	if !removed {
		h.RespondWithError(w, http.StatusNotFound, "Cart item not found")
		return
	}
	s.DiscardDraft(itemID)

	w.WriteHeader(http.StatusNoContent)
}

// EditCartItem re-enters the selection flow pre-populated from a cart line
func (h *Handler) EditCartItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	itemID := chi.URLParam(r, "itemId")

	var item cart.CartItem
	var found bool
	s.WithLock(func(st *selection.State, c *cart.Cart) {
		item, found = c.Get(itemID)
	})
	if !found {
		h.RespondWithError(w, http.StatusNotFound, "Cart item not found")
		return
	}

	st := selection.BeginEdit(selection.EditSeed{
		ItemID:        item.ID,
		Category:      item.Category,
		SampleForm:    item.SampleForm,
		SampleSolvent: item.SampleSolvent,
		Application:   item.Application,
		NumSamples:    item.NumSamples,
		Guidelines:    item.SelectedGuidelines,
	})
	s.ReplaceState(st)

	var view sessionView
	s.WithLock(func(st *selection.State, c *cart.Cart) {
		view = makeSessionView(s.ID, st, c)
	})

	h.RespondWithJSON(w, http.StatusOK, view)
}

// OpenCartDraft opens a review draft over one cart line
func (h *Handler) OpenCartDraft(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	itemID := chi.URLParam(r, "itemId")

	var d *cart.Draft
	var err error
	s.WithLock(func(st *selection.State, c *cart.Cart) {
		d, err = cart.OpenDraft(c, h.store.Catalog(), itemID)
	})
	if err != nil {
		h.RespondWithError(w, http.StatusNotFound, "Cart item not found")
		return
	}

	s.OpenDraft(itemID, d)
	h.RespondWithJSON(w, http.StatusOK, d.Item())
}

// RemoveDraftGuideline drops a guideline from the draft only; the persisted
// line is untouched until the draft is confirmed
func (h *Handler) RemoveDraftGuideline(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	itemID := chi.URLParam(r, "itemId")
	code := pathParam(r, "code")

	d, found := s.Draft(itemID)
	if !found {
		h.RespondWithError(w, http.StatusNotFound, "No open draft for this item")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, d.RemoveGuideline(code))
}

// ConfirmCartDraft merges the draft back into the cart
func (h *Handler) ConfirmCartDraft(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	itemID := chi.URLParam(r, "itemId")

	d, found := s.Draft(itemID)
	if !found {
		h.RespondWithError(w, http.StatusNotFound, "No open draft for this item")
		return
	}

	var item cart.CartItem
	s.WithLock(func(st *selection.State, c *cart.Cart) {
		item = d.Confirm(c)
	})
	s.DiscardDraft(itemID)

	h.RespondWithJSON(w, http.StatusOK, item)
}

// DiscardCartDraft drops the draft without touching the cart
func (h *Handler) DiscardCartDraft(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	s.DiscardDraft(chi.URLParam(r, "itemId"))
	w.WriteHeader(http.StatusNoContent)
}

// RemoveItemGuideline removes a guideline from a committed cart line and
// recomputes its price immediately
func (h *Handler) RemoveItemGuideline(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	itemID := chi.URLParam(r, "itemId")
	code := pathParam(r, "code")

	var item cart.CartItem
	var err error
	s.WithLock(func(st *selection.State, c *cart.Cart) {
		item, err = h.agg.RemoveGuideline(c, itemID, code)
	})
	if err != nil {
		h.RespondWithError(w, http.StatusNotFound, "Cart item not found")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, item)
}

// ServeCheckout returns the aggregated order across the whole cart
func (h *Handler) ServeCheckout(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var order cart.AggregatedOrder
	s.WithLock(func(st *selection.State, c *cart.Cart) {
		order = cart.CheckoutAggregate(c)
	})

	h.RespondWithJSON(w, http.StatusOK, order)
}
