package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"libllm/internal/handlers"
	"libllm/internal/render"
	"libllm/internal/service"
	"libllm/internal/settings"
	"libllm/internal/vault"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Completion service.CompletionService
	Catalog    handlers.ModelCatalog
	Settings   settings.Store
	// Vaults is nil when no vaults are configured; the vault routes are not
	// registered then.
	Vaults   *vault.Manager
	Renderer *render.Renderer
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)

	// Add CORS middleware
	r.Use(CORS)

	completionHandler := handlers.NewCompletionHandler(deps.Completion, deps.Vaults, deps.Renderer)
	settingsHandler := handlers.NewSettingsHandler(deps.Settings, deps.Catalog)
	healthHandler := handlers.NewHealthHandler(deps.Settings, deps.Vaults)
	var notesHandler *handlers.NotesHandler
	if deps.Vaults != nil {
		notesHandler = handlers.NewNotesHandler(deps.Vaults, deps.Renderer)
	}

	// Register API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/complete", completionHandler.Complete)
		r.Post("/complete/instructions", completionHandler.CompleteWithInstructions)
		r.Get("/models", settingsHandler.Models)
		r.Get("/settings", settingsHandler.Get)
		r.Put("/settings", settingsHandler.Put)
		r.Method(http.MethodGet, "/health", healthHandler)

		if notesHandler != nil {
			r.Get("/vaults", notesHandler.Vaults)
			r.Get("/vaults/{vault}/notes", notesHandler.List)
		}
	})

	if notesHandler != nil {
		r.Get("/vaults/{vault}/notes/*", notesHandler.Page)
	}

	return r
}
