package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/biocule/quotation-api/cart"
	"github.com/biocule/quotation-api/logging"
	"github.com/biocule/quotation-api/metrics"
	"github.com/biocule/quotation-api/selection"
)

// SendOTP issues a verification code to the customer's email
func (h *Handler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if !h.decodeBody(w, r, &body) {
		return
	}

	if err := h.validator.ValidateEmail(body.Email); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Name != "" {
		if err := h.validator.ValidateInput(body.Name); err != nil {
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if err := h.otp.Send(body.Email, body.Name); err != nil {
		logging.Error("Failed to send OTP", "error", err)
		h.RespondWithError(w, http.StatusBadGateway, "Could not send verification code")
		return
	}

	metrics.OTPSendTotal.Inc()
	h.RespondWithJSON(w, http.StatusAccepted, map[string]string{
		"message": "Verification code sent",
	})
}

// VerifyOTP checks a submitted verification code
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if !h.decodeBody(w, r, &body) {
		return
	}

	if err := h.validator.ValidateEmail(body.Email); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !h.otp.Verify(body.Email, body.Code) {
		metrics.OTPVerifyTotal.WithLabelValues("failure").Inc()
		h.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired verification code")
		return
	}

	metrics.OTPVerifyTotal.WithLabelValues("success").Inc()
	h.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"verified": true,
	})
}

// StoreQuotation persists the session's cart as quotation lines. The email
// must have passed OTP verification first.
func (h *Handler) StoreQuotation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID string `json:"sessionId"`
		UserID    string `json:"userId"`
		Email     string `json:"email"`
	}
	if !h.decodeBody(w, r, &body) {
		return
	}

	if err := h.validator.ValidateEmail(body.Email); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !h.otp.IsVerified(body.Email) {
		h.RespondWithError(w, http.StatusForbidden, "Email address not verified")
		return
	}

	s, err := h.registry.Get(body.SessionID)
	if err != nil {
		h.RespondWithError(w, http.StatusNotFound, "Session not found")
		return
	}

	var items []cart.CartItem
	s.WithLock(func(st *selection.State, c *cart.Cart) {
		items = c.Items()
	})

	if len(items) == 0 {
		h.RespondWithError(w, http.StatusConflict, "Cart is empty")
		return
	}

	storedIDs, err := h.persister.StoreQuotation(r.Context(), body.UserID, body.SessionID, items)
	if err != nil {
		logging.Error("Failed to store quotation", "error", err, "session_id", body.SessionID)
		h.RespondWithError(w, http.StatusInternalServerError, "Could not store quotation")
		return
	}

	metrics.QuotationsStored.Add(float64(len(storedIDs)))
	logging.Info("Quotation stored",
		"session_id", body.SessionID,
		"items", len(storedIDs),
	)

	h.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"storedIds": storedIDs,
	})
}

// ListQuotations returns the stored quotation lines for a session
func (h *Handler) ListQuotations(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")

	items, err := h.persister.ListBySession(r.Context(), sessionID)
	if err != nil {
		logging.Error("Failed to list quotations", "error", err, "session_id", sessionID)
		h.RespondWithError(w, http.StatusInternalServerError, "Could not list quotations")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
	})
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string                 `json:"status"`
	LastUpdate    string                 `json:"last_update"`
	UptimeSeconds float64                `json:"uptime_seconds"`
	Data          map[string]interface{} `json:"data"`
	System        map[string]interface{} `json:"system"`
}

// HealthCheck returns server health information
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(h.store.GetServerStartTime())

	cat := h.store.Catalog()
	lastUpdate := h.store.GetLastUpdated()

	var healthStatus string
	var httpStatus int
	switch {
	case cat.GuidelineCount() == 0:
		healthStatus = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	default:
		healthStatus = "healthy"
		httpStatus = http.StatusOK
	}

	response := HealthResponse{
		Status:        healthStatus,
		LastUpdate:    lastUpdate.Format(time.RFC3339),
		UptimeSeconds: uptime.Seconds(),
		Data: map[string]interface{}{
			"api_version":     "1.0",
			"categories":      len(cat.Categories()),
			"guidelines":      cat.GuidelineCount(),
			"active_sessions": h.registry.Len(),
			"is_updating":     h.store.IsUpdating(),
		},
		System: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc_mb":       int(m.Alloc / 1024 / 1024),
				"total_alloc_mb": int(m.TotalAlloc / 1024 / 1024),
				"sys_mb":         int(m.Sys / 1024 / 1024),
				"num_gc":         m.NumGC,
			},
		},
	}

	h.RespondWithJSON(w, httpStatus, response)
}
