package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"libllm/internal/contextutil"
	"libllm/internal/settings"
)

// ModelCatalog lists the models offered to the user. service.ModelCatalog implements it.
type ModelCatalog interface {
	// Models never fails; it falls back to the configured model.
	Models(ctx context.Context, s settings.Settings) []string
	// Known returns nil when the backend cannot be listed.
	Known(ctx context.Context, s settings.Settings) []string
}

// SettingsHandler handles HTTP requests for user settings and the model list.
type SettingsHandler struct {
	store   settings.Store
	catalog ModelCatalog
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(store settings.Store, catalog ModelCatalog) *SettingsHandler {
	return &SettingsHandler{
		store:   store,
		catalog: catalog,
	}
}

// SettingsUpdate represents the HTTP request payload for PUT /api/settings.
// Omitted fields keep their stored value.
type SettingsUpdate struct {
	APIKey         *string `json:"api_key,omitempty"`
	OrganizationID *string `json:"organization_id,omitempty"`
	Model          *string `json:"model,omitempty"`
}

// ModelsResponse represents the HTTP response payload for GET /api/models.
type ModelsResponse struct {
	Models   []string `json:"models"`
	Selected string   `json:"selected"`
}

// Get handles GET /api/settings. The API key is masked.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	s, err := h.store.Load(ctx)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to load settings")
		return
	}

	writeJSON(w, ctx, http.StatusOK, s.Masked())
}

// Put handles PUT /api/settings. A model the backend does not offer is
// replaced by the default model.
func (h *SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var update SettingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s, err := h.store.Load(ctx)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to load settings")
		return
	}

	if update.APIKey != nil {
		s.APIKey = *update.APIKey
	}
	if update.OrganizationID != nil {
		s.OrganizationID = *update.OrganizationID
	}
	if update.Model != nil {
		s.Model = *update.Model
	}
	s = s.Normalize(h.catalog.Known(ctx, s))

	if err := h.store.Save(ctx, s); err != nil {
		handleServiceError(w, ctx, err, "Failed to save settings")
		return
	}

	logger.InfoContext(ctx, "settings updated", "model", s.Model, "organization_set", s.OrganizationID != "")
	writeJSON(w, ctx, http.StatusOK, s.Masked())
}

// Models handles GET /api/models. It always answers 200 with at least the
// configured model.
func (h *SettingsHandler) Models(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	s, err := h.store.Load(ctx)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to load settings")
		return
	}
	s = s.Normalize(nil)

	writeJSON(w, ctx, http.StatusOK, ModelsResponse{
		Models:   h.catalog.Models(ctx, s),
		Selected: s.Model,
	})
}
