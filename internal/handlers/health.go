package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"libllm/internal/contextutil"
	"libllm/internal/settings"
	"libllm/internal/vault"
)

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	store              settings.Store
	vaults             *vault.Manager
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler. vaults may be nil.
func NewHealthHandler(store settings.Store, vaults *vault.Manager) *HealthHandler {
	return &HealthHandler{
		store:              store,
		vaults:             vaults,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	// Overall health status: "healthy" or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// List of issues (only present if status is unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks.
// Returns 200 OK if healthy, 503 Service Unavailable otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// Create context with timeout for health checks
	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string

	if h.checkSettings(checkCtx, logger) {
		checks["settings"] = "ok"
	} else {
		checks["settings"] = "error"
		issues = append(issues, "settings_unavailable")
	}

	if h.vaults != nil {
		if err := h.vaults.Check(checkCtx); err != nil {
			logger.WarnContext(ctx, "vault registry health check failed", "error", err)
			checks["vaults"] = "error"
			issues = append(issues, "vault_registry_unavailable")
		} else {
			checks["vaults"] = "ok"
		}
	}

	// The completion backend is not probed: it costs a request and needs the user's key.

	status := "healthy"
	httpStatus := http.StatusOK
	if len(issues) > 0 {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, ctx, httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	})
}

// checkSettings checks that the settings store can be read.
func (h *HealthHandler) checkSettings(ctx context.Context, logger *slog.Logger) bool {
	if _, err := h.store.Load(ctx); err != nil {
		logger.WarnContext(ctx, "settings health check failed", "error", err)
		return false
	}
	return true
}
