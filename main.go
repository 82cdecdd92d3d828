package main

import (
	"context"
	"errors"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/biocule/quotation-api/catalog"
	"github.com/biocule/quotation-api/config"
	"github.com/biocule/quotation-api/data"
	"github.com/biocule/quotation-api/handlers"
	"github.com/biocule/quotation-api/logging"
	"github.com/biocule/quotation-api/otp"
	"github.com/biocule/quotation-api/scheduler"
	"github.com/biocule/quotation-api/server"
	"github.com/biocule/quotation-api/sessions"
	"github.com/biocule/quotation-api/store"
	"github.com/biocule/quotation-api/validation"
)

func init() {
	// Get the working directory and read the env variables
	if err := godotenv.Load(); err != nil {
		// If failed, try loading from executable directory
		ex, err := os.Executable()
		if err != nil {
			logging.Error("Failed to get executable path", "error", err)
			os.Exit(1)
		}

		if err := os.Chdir(filepath.Dir(ex)); err != nil {
			logging.Error("Failed to change directory", "error", err)
			os.Exit(1)
		}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Error("Configuration error", "error", err)
		os.Exit(1)
	}

	logging.InitLogger("logs", cfg.LogLevel, cfg.LogRetentionWeeks, cfg.MaxLogFileSize)
	defer logging.Shutdown()

	// Load the guideline catalog, from file when one is configured
	var cat *catalog.Catalog
	if cfg.CatalogPath != "" {
		cat, err = catalog.LoadFile(cfg.CatalogPath)
	} else {
		cat, err = catalog.Load()
	}
	if err != nil {
		logging.Error("Failed to load guideline catalog", "error", err)
		os.Exit(1)
	}

	container := data.NewCatalogContainer()
	container.UpdateCatalog(cat)
	container.SetServerStartTime(time.Now())

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		logging.Error("Failed to open quotation database", "error", err, "path", cfg.DatabasePath)
		os.Exit(1)
	}
	defer db.Close()

	quotations := store.NewQuotationStore(db)
	registry := sessions.NewRegistry(time.Duration(cfg.SessionTTLMinutes) * time.Minute)
	verifier := otp.NewManager(otp.LogSender{}, time.Duration(cfg.OTPTTLMinutes)*time.Minute)

	handler := handlers.NewHandler(container, registry, quotations, verifier, validation.NewInputValidator())

	sched := scheduler.NewScheduler(container, registry, quotations, cfg.CatalogPath)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	srv := server.NewServer(cfg, handler)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	logging.Info("Quotation API started",
		"categories", len(cat.Categories()),
		"guidelines", cat.GuidelineCount(),
		"database", cfg.DatabasePath,
	)

	// Block until a signal is received
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown error", "error", err)
	}
}
