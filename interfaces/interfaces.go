// Package interfaces defines core abstractions for the quotation API
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/biocule/quotation-api/cart"
	"github.com/biocule/quotation-api/catalog"
)

// CatalogStore defines the contract for catalog storage. It provides
// thread-safe access to the guideline catalog with atomic swaps for
// zero-downtime reloads.
type CatalogStore interface {
	Catalog() *catalog.Catalog
	GetLastUpdated() time.Time
	IsUpdating() bool
	GetServerStartTime() time.Time

	UpdateCatalog(cat *catalog.Catalog)
	BeginUpdate() bool
	EndUpdate()
}

// QuotationPersister defines the contract for durable quotation storage.
type QuotationPersister interface {
	StoreQuotation(ctx context.Context, userID, sessionID string, items []cart.CartItem) ([]string, error)
	ListBySession(ctx context.Context, sessionID string) ([]cart.CartItem, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// OTPVerifier defines the contract for the one-time-password gate in front
// of quotation generation.
type OTPVerifier interface {
	Send(email, name string) error
	Verify(email, code string) bool
	IsVerified(email string) bool
}

// Scheduler defines the contract for background job scheduling.
// It manages session cleanup, quotation expiry and catalog reloads.
type Scheduler interface {
	Start() error
	Stop()
}

// InputValidator defines the contract for request input validation.
type InputValidator interface {
	// ValidateInput validates free-text user input strings
	ValidateInput(input string) error

	// ValidateEmail validates an email address
	ValidateEmail(input string) error

	// ValidateGuidelineCode validates a guideline code path parameter
	ValidateGuidelineCode(input string) error
}

// HTTPHandler defines the contract for HTTP request handlers.
// It provides a consistent interface for all API endpoints.
type HTTPHandler interface {
	ServeHTTP(w http.ResponseWriter, r *http.Request)

	// Catalog endpoints
	ServeCategories(w http.ResponseWriter, r *http.Request)
	ServeCategoryOptions(w http.ResponseWriter, r *http.Request)
	ServeCategoryGuidelines(w http.ResponseWriter, r *http.Request)
	ServeGuidelineDetail(w http.ResponseWriter, r *http.Request)
	SearchGuidelines(w http.ResponseWriter, r *http.Request)
	ResolveGuidelines(w http.ResponseWriter, r *http.Request)

	// Session and selection endpoints
	CreateSession(w http.ResponseWriter, r *http.Request)
	GetSession(w http.ResponseWriter, r *http.Request)
	UpdateSelection(w http.ResponseWriter, r *http.Request)
	ToggleGuideline(w http.ResponseWriter, r *http.Request)
	SelectAllGuidelines(w http.ResponseWriter, r *http.Request)
	ClearSelection(w http.ResponseWriter, r *http.Request)
	CommitSelection(w http.ResponseWriter, r *http.Request)

	// Cart endpoints
	ServeCart(w http.ResponseWriter, r *http.Request)
	RemoveCartItem(w http.ResponseWriter, r *http.Request)
	EditCartItem(w http.ResponseWriter, r *http.Request)
	OpenCartDraft(w http.ResponseWriter, r *http.Request)
	RemoveDraftGuideline(w http.ResponseWriter, r *http.Request)
	ConfirmCartDraft(w http.ResponseWriter, r *http.Request)
	DiscardCartDraft(w http.ResponseWriter, r *http.Request)
	RemoveItemGuideline(w http.ResponseWriter, r *http.Request)
	ServeCheckout(w http.ResponseWriter, r *http.Request)

	// OTP and quotation endpoints
	SendOTP(w http.ResponseWriter, r *http.Request)
	VerifyOTP(w http.ResponseWriter, r *http.Request)
	StoreQuotation(w http.ResponseWriter, r *http.Request)
	ListQuotations(w http.ResponseWriter, r *http.Request)

	// This will stay in all versions
	HealthCheck(w http.ResponseWriter, r *http.Request)
}
