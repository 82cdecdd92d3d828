// Package handlers provides HTTP request handlers for the quotation API
// endpoints: catalog browsing, guideline resolution, selection sessions,
// cart operations and quotation storage, with input validation and
// consistent JSON responses.
package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/biocule/quotation-api/cart"
	"github.com/biocule/quotation-api/catalog"
	"github.com/biocule/quotation-api/interfaces"
	"github.com/biocule/quotation-api/logging"
	"github.com/biocule/quotation-api/metrics"
	"github.com/biocule/quotation-api/pricing"
	"github.com/biocule/quotation-api/rules"
	"github.com/biocule/quotation-api/sessions"
)

// Compile-time check to ensure Handler implements HTTPHandler
var _ interfaces.HTTPHandler = (*Handler)(nil)

// Handler implements the interfaces.HTTPHandler interface with injected
// dependencies.
type Handler struct {
	store     interfaces.CatalogStore
	registry  *sessions.Registry
	persister interfaces.QuotationPersister
	otp       interfaces.OTPVerifier
	validator interfaces.InputValidator
	agg       *cart.Aggregator
}

// NewHandler creates a handler with injected dependencies.
func NewHandler(
	store interfaces.CatalogStore,
	registry *sessions.Registry,
	persister interfaces.QuotationPersister,
	otp interfaces.OTPVerifier,
	validator interfaces.InputValidator,
) *Handler {
	return &Handler{
		store:     store,
		registry:  registry,
		persister: persister,
		otp:       otp,
		validator: validator,
		agg:       cart.NewAggregatorSource(store.Catalog),
	}
}

// ServeHTTP implements the http.Handler interface
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// The actual routing is handled by chi
	http.Error(w, "Not implemented", http.StatusNotImplemented)
}

// RespondWithJSON writes a JSON response
func (h *Handler) RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func (h *Handler) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]interface{}{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// pathParam returns a chi URL parameter with percent-encoding undone, since
// category names and guideline codes contain spaces.
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

// guidelineView decorates a catalog record with its computed study duration.
type guidelineView struct {
	catalog.Guideline
	TotalDurationDays int    `json:"totalDurationDays"`
	Duration          string `json:"duration"`
}

func newGuidelineView(g catalog.Guideline) guidelineView {
	total := pricing.TotalDuration(g.BaseDurationDays, g.DeviationPercent)
	return guidelineView{
		Guideline:         g,
		TotalDurationDays: total,
		Duration:          pricing.FormatDuration(total),
	}
}

// ServeCategories returns the catalog's category names
func (h *Handler) ServeCategories(w http.ResponseWriter, r *http.Request) {
	h.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"categories": h.store.Catalog().Categories(),
	})
}

// ServeCategoryOptions returns the selectable product details for a category
func (h *Handler) ServeCategoryOptions(w http.ResponseWriter, r *http.Request) {
	category := pathParam(r, "category")

	opts, ok := h.store.Catalog().OptionsForCategory(category)
	if !ok {
		h.RespondWithError(w, http.StatusNotFound, "Category not found")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, opts)
}

// ServeCategoryGuidelines returns a category's guidelines with computed
// durations
func (h *Handler) ServeCategoryGuidelines(w http.ResponseWriter, r *http.Request) {
	category := pathParam(r, "category")

	cat := h.store.Catalog()
	if !cat.HasCategory(category) {
		h.RespondWithError(w, http.StatusNotFound, "Category not found")
		return
	}

	guidelines := cat.GuidelinesForCategory(category)
	views := make([]guidelineView, 0, len(guidelines))
	for _, g := range guidelines {
		views = append(views, newGuidelineView(g))
	}

	h.RespondWithJSON(w, http.StatusOK, views)
}

// ServeGuidelineDetail returns one guideline with its computed duration
func (h *Handler) ServeGuidelineDetail(w http.ResponseWriter, r *http.Request) {
	category := pathParam(r, "category")
	code := pathParam(r, "code")

	if err := h.validator.ValidateGuidelineCode(code); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	g, ok := h.store.Catalog().GuidelineData(category, code)
	if !ok {
		h.RespondWithError(w, http.StatusNotFound, "Guideline not found")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, newGuidelineView(g))
}

// SearchGuidelines searches guideline codes and titles, case- and
// diacritic-insensitively
func (h *Handler) SearchGuidelines(w http.ResponseWriter, r *http.Request) {
	term := pathParam(r, "term")
	if term == "" {
		h.RespondWithError(w, http.StatusBadRequest, "Missing search term")
		return
	}

	if err := h.validator.ValidateInput(term); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	matches := h.store.Catalog().SearchGuidelines(term)
	results := make([]guidelineView, 0, len(matches))
	for _, g := range matches {
		results = append(results, newGuidelineView(g))
	}

	// Always return 200 with a results array (empty if no matches)
	h.RespondWithJSON(w, http.StatusOK, results)
}

// ResolveGuidelines resolves the applicable guideline set for a detail
// combination
func (h *Handler) ResolveGuidelines(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := q.Get("category")
	sampleForm := q.Get("sampleForm")
	sampleSolvent := q.Get("sampleSolvent")
	application := q.Get("application")

	if category == "" {
		h.RespondWithError(w, http.StatusBadRequest, "Missing category")
		return
	}

	cat := h.store.Catalog()
	if !cat.HasCategory(category) {
		h.RespondWithError(w, http.StatusNotFound, "Category not found")
		return
	}

	codes := rules.Resolve(category, sampleForm, sampleSolvent, application)

	views := make([]guidelineView, 0, len(codes))
	for _, code := range codes {
		if g, ok := cat.GuidelineData(category, code); ok {
			views = append(views, newGuidelineView(g))
		}
	}

	response := map[string]interface{}{
		"guidelines": views,
		"codes":      codes,
	}

	if len(codes) == 0 {
		metrics.ResolverNoMatch.Inc()
		response["explanation"] = rules.Explain(category, sampleForm, sampleSolvent, application)
	}

	h.RespondWithJSON(w, http.StatusOK, response)
}
