// Package app wires the configured components into a runnable application.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"libllm/internal/config"
	libhttp "libllm/internal/http"
	"libllm/internal/llm"
	"libllm/internal/render"
	"libllm/internal/service"
	"libllm/internal/settings"
	"libllm/internal/storage"
	"libllm/internal/vault"
)

// App holds the wired components. Close releases them.
type App struct {
	Config     *config.Config
	Settings   settings.Store
	Vaults     *vault.Manager // nil when no vaults are configured
	Completion service.CompletionService
	Catalog    *service.ModelCatalog
	Renderer   *render.Renderer

	db *sql.DB
}

// NewLogger builds the process logger from the configured level and format.
func NewLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// New opens the stores named by cfg and builds the completion components.
// The database is opened only when the settings backend or vaults need it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	if cfg.NeedsDatabase() {
		db, err := storage.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := storage.Migrate(db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		a.db = db
		slog.DebugContext(ctx, "Database initialized", "path", cfg.DBPath)
	}

	switch cfg.SettingsBackend {
	case config.BackendSQLite:
		a.Settings = settings.NewDBStore(storage.NewSettingsRepo(a.db))
	default:
		a.Settings = settings.NewFileStore(cfg.SettingsPath)
	}
	slog.DebugContext(ctx, "Settings store ready", "backend", cfg.SettingsBackend)

	if len(cfg.Vaults) > 0 {
		manager, err := vault.NewManager(ctx, storage.NewVaultRepo(a.db), cfg.Vaults)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize vault manager: %w", err)
		}
		a.Vaults = manager
		slog.DebugContext(ctx, "Vault manager initialized", "vaults", cfg.VaultNames())
	}

	// Create LLM client (external service layer)
	client := llm.NewClient(cfg.LLMBaseURL)
	a.Completion = service.NewCompletionService(client, a.Settings)
	a.Catalog = service.NewModelCatalog(client, cfg.ModelCacheTTL)
	a.Renderer = render.New()

	return a, nil
}

// Handler returns the HTTP API over the app's components.
func (a *App) Handler() http.Handler {
	return libhttp.NewRouter(&libhttp.Deps{
		Completion: a.Completion,
		Catalog:    a.Catalog,
		Settings:   a.Settings,
		Vaults:     a.Vaults,
		Renderer:   a.Renderer,
	})
}

// Close stops background work and closes the database.
func (a *App) Close() {
	if a.Catalog != nil {
		a.Catalog.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
