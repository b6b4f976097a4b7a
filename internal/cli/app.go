package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/eshaffer321/receipt-reconciler/internal/adapters/sources"
	"github.com/eshaffer321/receipt-reconciler/internal/application/service"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/categorizer"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/matcher"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/parser"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/config"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/logging"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/storage"
)

// App holds the wired dependencies shared by every command
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Store     *storage.Storage
	Loader    *sources.Loader
	Registry  *parser.Registry
	Ingest    *service.IngestService
	Reconcile *service.ReconcileService
}

// NewApp opens storage and builds the parsing and matching services.
// Logs go to logOut.
func NewApp(cfg *config.Config, logOut io.Writer, verbose bool) (*App, error) {
	loggingCfg := cfg.Observability.Logging
	if verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerTo(logOut, loggingCfg)

	var rules []categorizer.Rule
	if path := cfg.Parsing.CategoryRulesPath; path != "" {
		loaded, err := categorizer.LoadRules(path)
		if err != nil {
			return nil, fmt.Errorf("load category rules: %w", err)
		}
		rules = loaded
	}
	cat := categorizer.NewCategorizer(rules, categorizer.NewMemoryCache(), logging.WithSystem(logger, "categorizer"))

	registry := parser.NewDefaultRegistry(parser.Options{
		ProcessingYear: cfg.Parsing.ProcessingYear,
		Categorizer:    cat,
		Logger:         logging.WithSystem(logger, "parser"),
	})

	var recognizer sources.Recognizer
	if cfg.OCR.Azure.Enabled() {
		recognizer = sources.NewAzureOCR(cfg.OCR.Azure, logging.WithSystem(logger, "ocr"))
	}

	store, err := storage.NewStorage(cfg.Storage.DatabasePath, logging.WithSystem(logger, "storage"))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	matchCfg := matcher.DefaultConfig()
	matchCfg.Floor = cfg.Matching.ConfidenceFloor

	return &App{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Loader:    sources.NewLoader(recognizer),
		Registry:  registry,
		Ingest:    service.NewIngestService(registry, store, logging.WithSystem(logger, "ingest")),
		Reconcile: service.NewReconcileService(store, matchCfg, logging.WithSystem(logger, "matcher")),
	}, nil
}

// Close releases the database
func (a *App) Close() error {
	return a.Store.Close()
}
