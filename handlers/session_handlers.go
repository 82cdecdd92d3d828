package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/biocule/quotation-api/cart"
	"github.com/biocule/quotation-api/logging"
	"github.com/biocule/quotation-api/metrics"
	"github.com/biocule/quotation-api/rules"
	"github.com/biocule/quotation-api/selection"
	"github.com/biocule/quotation-api/sessions"
)

// sessionView is the wire shape of one selection session.
type sessionView struct {
	ID                  string   `json:"id"`
	Phase               string   `json:"phase"`
	Category            string   `json:"category"`
	SampleForm          string   `json:"sampleForm"`
	CustomSampleForm    string   `json:"customSampleForm,omitempty"`
	SampleSolvent       string   `json:"sampleSolvent"`
	CustomSampleSolvent string   `json:"customSampleSolvent,omitempty"`
	Application         string   `json:"application"`
	CustomApplication   string   `json:"customApplication,omitempty"`
	NumSamples          int      `json:"numSamples"`
	EditMode            bool     `json:"editMode"`
	EditItemID          string   `json:"editItemId,omitempty"`
	ResolvedGuidelines  []string `json:"resolvedGuidelines"`
	SelectedGuidelines  []string `json:"selectedGuidelines"`
	CartSize            int      `json:"cartSize"`
}

func makeSessionView(id string, st *selection.State, c *cart.Cart) sessionView {
	return sessionView{
		ID:                  id,
		Phase:               string(st.Phase()),
		Category:            st.Category,
		SampleForm:          st.SampleForm,
		CustomSampleForm:    st.CustomSampleForm,
		SampleSolvent:       st.SampleSolvent,
		CustomSampleSolvent: st.CustomSampleSolvent,
		Application:         st.Application,
		CustomApplication:   st.CustomApplication,
		NumSamples:          st.NumSamples,
		EditMode:            st.EditMode,
		EditItemID:          st.EditItemID,
		ResolvedGuidelines:  st.ResolvedGuidelines(),
		SelectedGuidelines:  st.Selection.Codes(),
		CartSize:            c.Len(),
	}
}

// session loads the session for the request or writes a 404.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*sessions.Session, bool) {
	id := chi.URLParam(r, "sessionId")
	s, err := h.registry.Get(id)
	if err != nil {
		h.RespondWithError(w, http.StatusNotFound, "Session not found")
		return nil, false
	}
	return s, true
}

// decodeBody decodes a JSON request body or writes a 400.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

// CreateSession starts a selection session for a category
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Category string `json:"category"`
	}
	if !h.decodeBody(w, r, &body) {
		return
	}

	if !h.store.Catalog().HasCategory(body.Category) {
		h.RespondWithError(w, http.StatusBadRequest, "Unknown category")
		return
	}

	s := h.registry.Create(body.Category)

	var view sessionView
	s.WithLock(func(st *selection.State, c *cart.Cart) {
		view = makeSessionView(s.ID, st, c)
	})

	logging.Info("Session created", "session_id", s.ID, "category", body.Category)
	h.RespondWithJSON(w, http.StatusCreated, view)
}

// GetSession returns the current session state
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var view sessionView
	s.WithLock(func(st *selection.State, c *cart.Cart) {
		view = makeSessionView(s.ID, st, c)
	})

	h.RespondWithJSON(w, http.StatusOK, view)
}

// UpdateSelection applies partial product-detail changes to the session
func (h *Handler) UpdateSelection(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var body struct {
		Category            *string `json:"category"`
		SampleForm          *string `json:"sampleForm"`
		CustomSampleForm    *string `json:"customSampleForm"`
		SampleSolvent       *string `json:"sampleSolvent"`
		CustomSampleSolvent *string `json:"customSampleSolvent"`
		Application         *string `json:"application"`
		CustomApplication   *string `json:"customApplication"`
		NumSamples          *int    `json:"numSamples"`
	}
	if !h.decodeBody(w, r, &body) {
		return
	}

	for _, custom := range []*string{body.CustomSampleForm, body.CustomSampleSolvent, body.CustomApplication} {
		if custom != nil && *custom != "" {
			if err := h.validator.ValidateInput(*custom); err != nil {
				h.RespondWithError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
	}

	if body.Category != nil && !h.store.Catalog().HasCategory(*body.Category) {
		h.RespondWithError(w, http.StatusBadRequest, "Unknown category")
		return
	}

	var view sessionView
	var conflict string
	s.WithLock(func(st *selection.State, c *cart.Cart) {
		if body.Category != nil {
			st.SetCategory(*body.Category)
		}
		if body.SampleForm != nil {
			custom := ""
			if body.CustomSampleForm != nil {
				custom = *body.CustomSampleForm
			}
			st.SetSampleForm(*body.SampleForm, custom)
		}
		if body.SampleSolvent != nil {
			custom := ""
			if body.CustomSampleSolvent != nil {
				custom = *body.CustomSampleSolvent
			}
			st.SetSampleSolvent(*body.SampleSolvent, custom)
		}
		if body.Application != nil {
			if !rules.ApplicationAllowed(st.SampleForm, *body.Application) {
				conflict = "Application not available for the chosen sample form"
				return
			}
			custom := ""
			if body.CustomApplication != nil {
				custom = *body.CustomApplication
			}
			st.SetApplication(*body.Application, custom)
		}
		if body.NumSamples != nil {
			st.SetNumSamples(*body.NumSamples)
		}
		view = makeSessionView(s.ID, st, c)
	})

	if conflict != "" {
		h.RespondWithError(w, http.StatusUnprocessableEntity, conflict)
		return
	}

	h.RespondWithJSON(w, http.StatusOK, view)
}

// ToggleGuideline flips one guideline in the session's selection
func (h *Handler) ToggleGuideline(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var body struct {
		Code string `json:"code"`
	}
	if !h.decodeBody(w, r, &body) {
		return
	}

	if err := h.validator.ValidateGuidelineCode(body.Code); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var selected bool
	var view sessionView
	s.WithLock(func(st *selection.State, c *cart.Cart) {
		selected = st.ToggleGuideline(body.Code)
		view = makeSessionView(s.ID, st, c)
	})

	h.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"selected": selected,
		"session":  view,
	})
}

// SelectAllGuidelines sets the selection to the full resolved list, or
// clears it
func (h *Handler) SelectAllGuidelines(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var body struct {
		Selected bool `json:"selected"`
	}
	if !h.decodeBody(w, r, &body) {
		return
	}

	var view sessionView
	s.WithLock(func(st *selection.State, c *cart.Cart) {
		st.SelectAll(body.Selected)
		view = makeSessionView(s.ID, st, c)
	})

	h.RespondWithJSON(w, http.StatusOK, view)
}

// ClearSelection resets the product details and guideline choices, keeping
// the category
func (h *Handler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var view sessionView
	s.WithLock(func(st *selection.State, c *cart.Cart) {
		st.ClearDetails()
		view = makeSessionView(s.ID, st, c)
	})

	h.RespondWithJSON(w, http.StatusOK, view)
}

// CommitSelection converts the session's selection into a cart line
func (h *Handler) CommitSelection(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var body struct {
		SampleDescription string `json:"sampleDescription"`
		ActionID          string `json:"actionId"`
	}
	if !h.decodeBody(w, r, &body) {
		return
	}

	if body.SampleDescription != "" {
		if err := h.validator.ValidateInput(body.SampleDescription); err != nil {
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	var item cart.CartItem
	var commitErr error
	s.WithLock(func(st *selection.State, c *cart.Cart) {
		item, commitErr = h.agg.Commit(c, st, body.SampleDescription, body.ActionID, time.Now())
	})

	if commitErr != nil {
		var verr *selection.ValidationError
		if errors.As(commitErr, &verr) {
			h.RespondWithJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":  "Validation failed",
				"fields": verr.Fields,
			})
			return
		}
		h.RespondWithError(w, http.StatusConflict, commitErr.Error())
		return
	}

	metrics.ConfigurationsCommitted.Inc()
	logging.Info("Configuration committed",
		"session_id", s.ID,
		"config_no", item.ConfigNo,
		"price", item.Price,
	)

	h.RespondWithJSON(w, http.StatusCreated, item)
}
