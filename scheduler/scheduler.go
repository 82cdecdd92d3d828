// Package scheduler provides the recurring maintenance jobs for the
// quotation API: catalog reloads, idle session cleanup and expired
// quotation purging, coordinated with the catalog container using
// dependency injection.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/biocule/quotation-api/catalog"
	"github.com/biocule/quotation-api/interfaces"
	"github.com/biocule/quotation-api/logging"
	"github.com/biocule/quotation-api/sessions"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler handles catalog reloads and periodic cleanup using dependency
// injection
type Scheduler struct {
	store       interfaces.CatalogStore
	registry    *sessions.Registry
	persister   interfaces.QuotationPersister
	catalogPath string
	scheduler   *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies.
// catalogPath may be empty, in which case the embedded catalog is in use and
// no reload job is scheduled.
func NewScheduler(store interfaces.CatalogStore, registry *sessions.Registry, persister interfaces.QuotationPersister, catalogPath string) *Scheduler {
	return &Scheduler{
		store:       store,
		registry:    registry,
		persister:   persister,
		catalogPath: catalogPath,
		scheduler:   gocron.NewScheduler(time.Local),
	}
}

// Start schedules the maintenance jobs and runs them asynchronously
func (s *Scheduler) Start() error {
	if s.catalogPath != "" {
		// Reload the catalog file twice daily, matching business-hours edits
		_, err := s.scheduler.Every(1).Days().At("06:00;18:00").Do(func() {
			if err := s.reloadCatalog(); err != nil {
				logging.Error("Failed to reload catalog", "error", err)
			}
		})
		if err != nil {
			logging.Error("Failed to schedule catalog reload", "error", err)
			return fmt.Errorf("failed to schedule catalog reload: %w", err)
		}
	}

	_, err := s.scheduler.Every(1).Hours().Do(func() {
		if purged := s.registry.PurgeIdle(time.Now()); purged > 0 {
			logging.Info("Idle sessions purged", "count", purged)
		}
	})
	if err != nil {
		logging.Error("Failed to schedule session cleanup", "error", err)
		return fmt.Errorf("failed to schedule session cleanup: %w", err)
	}

	// Purge expired quotations nightly, after their 30-day validity lapses
	_, err = s.scheduler.Every(1).Days().At("03:00").Do(func() {
		if err := s.purgeQuotations(); err != nil {
			logging.Error("Failed to purge expired quotations", "error", err)
		}
	})
	if err != nil {
		logging.Error("Failed to schedule quotation purge", "error", err)
		return fmt.Errorf("failed to schedule quotation purge: %w", err)
	}

	s.scheduler.StartAsync()

	s.startStalenessMonitoring()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// reloadCatalog re-reads the catalog file and hot-swaps it into the container
func (s *Scheduler) reloadCatalog() error {
	// Prevent concurrent updates
	if !s.store.BeginUpdate() {
		logging.Info("Catalog update already in progress, skipping...")
		return nil
	}
	defer s.store.EndUpdate()

	logging.Info("Starting catalog reload", "path", s.catalogPath)
	start := time.Now()

	cat, err := catalog.LoadFile(s.catalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog file: %w", err)
	}

	if cat.GuidelineCount() == 0 {
		return fmt.Errorf("catalog file %s contains no guidelines, keeping current catalog", s.catalogPath)
	}

	s.store.UpdateCatalog(cat)

	logging.Info("Catalog reload completed",
		"duration", time.Since(start).String(),
		"categories", len(cat.Categories()),
		"guidelines", cat.GuidelineCount(),
	)

	return nil
}

// purgeQuotations deletes quotation lines whose validity window has passed
func (s *Scheduler) purgeQuotations() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	purged, err := s.persister.PurgeExpired(ctx, time.Now())
	if err != nil {
		return err
	}
	if purged > 0 {
		logging.Info("Expired quotations purged", "count", purged)
	}
	return nil
}

// startStalenessMonitoring warns when a file-backed catalog stops refreshing
func (s *Scheduler) startStalenessMonitoring() {
	if s.catalogPath == "" {
		return
	}
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			lastUpdate := s.store.GetLastUpdated()
			if time.Since(lastUpdate) > 25*time.Hour {
				logging.Warn("Catalog hasn't been reloaded in over 25 hours")
			}
		}
	}()
}
