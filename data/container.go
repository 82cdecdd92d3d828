// Package data provides thread-safe storage for the guideline catalog. The
// CatalogContainer swaps the whole catalog atomically so a reload never
// disturbs in-flight requests.
package data

import (
	"sync/atomic"
	"time"

	"github.com/biocule/quotation-api/catalog"
	"github.com/biocule/quotation-api/interfaces"
	"github.com/biocule/quotation-api/logging"
)

// Compile-time check to ensure CatalogContainer implements CatalogStore
var _ interfaces.CatalogStore = (*CatalogContainer)(nil)

// CatalogContainer holds the active catalog behind an atomic pointer for
// zero-downtime reloads
type CatalogContainer struct {
	catalog         atomic.Value // *catalog.Catalog
	lastUpdated     atomic.Value // time.Time
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewCatalogContainer creates a container with an empty catalog
func NewCatalogContainer() *CatalogContainer {
	cc := &CatalogContainer{}
	cc.catalog.Store(catalog.Empty())
	cc.lastUpdated.Store(time.Time{})
	cc.serverStartTime.Store(time.Time{})
	return cc
}

// Catalog returns the active catalog
func (cc *CatalogContainer) Catalog() *catalog.Catalog {
	if v := cc.catalog.Load(); v != nil {
		if cat, ok := v.(*catalog.Catalog); ok {
			return cat
		}
	}

	logging.Warn("Catalog is empty or invalid")
	return catalog.Empty()
}

// GetLastUpdated returns the timestamp of the last catalog swap
func (cc *CatalogContainer) GetLastUpdated() time.Time {
	if v := cc.lastUpdated.Load(); v != nil {
		if lastUpdated, ok := v.(time.Time); ok {
			return lastUpdated
		}
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// IsUpdating returns true if a catalog reload is currently in progress
func (cc *CatalogContainer) IsUpdating() bool {
	return cc.updating.Load()
}

// SetServerStartTime sets the server start time
func (cc *CatalogContainer) SetServerStartTime(startTime time.Time) {
	cc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (cc *CatalogContainer) GetServerStartTime() time.Time {
	if v := cc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// UpdateCatalog atomically swaps in a new catalog
func (cc *CatalogContainer) UpdateCatalog(cat *catalog.Catalog) {
	cc.catalog.Store(cat)
	cc.lastUpdated.Store(time.Now())
}

// BeginUpdate marks the start of a reload operation
// Returns true if the reload can proceed, false if another is in progress
func (cc *CatalogContainer) BeginUpdate() bool {
	return cc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a reload operation
func (cc *CatalogContainer) EndUpdate() {
	cc.updating.Store(false)
}
