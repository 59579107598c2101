package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"libllm/internal/contextutil"
	"libllm/internal/instruction"
	"libllm/internal/llm"
	"libllm/internal/service"
	"libllm/internal/vault"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleServiceError maps service errors to appropriate HTTP status codes and responses.
func handleServiceError(w http.ResponseWriter, ctx context.Context, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)

	var validationErr *service.ValidationError
	var statusErr *llm.StatusError
	switch {
	case errors.As(err, &validationErr):
		logger.WarnContext(ctx, "validation error", "error", err)
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %s", validationErr.Error()))
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, vault.ErrInvalidPath):
		logger.WarnContext(ctx, "invalid input", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, service.ErrNotFound), errors.Is(err, vault.ErrVaultNotFound), errors.Is(err, os.ErrNotExist):
		logger.WarnContext(ctx, "resource not found", "error", err)
		writeError(w, http.StatusNotFound, "Resource not found")
	case errors.Is(err, service.ErrEmptyPrompt):
		logger.InfoContext(ctx, "nothing to complete")
		writeError(w, http.StatusUnprocessableEntity, "Nothing to complete: the cursor line is blank and nothing is selected")
	case errors.Is(err, service.ErrBusy), errors.Is(err, instruction.ErrCollectorBusy):
		logger.WarnContext(ctx, "completion already pending", "error", err)
		writeError(w, http.StatusConflict, "A completion for this document is already in progress")
	case errors.Is(err, service.ErrInstructionAbandoned):
		w.WriteHeader(http.StatusNoContent)
	case errors.As(err, &statusErr):
		logger.ErrorContext(ctx, "completion backend rejected request", "status", statusErr.StatusCode, "error", err)
		writeError(w, http.StatusBadGateway, fmt.Sprintf("Completion backend returned status %d", statusErr.StatusCode))
	case errors.Is(err, llm.ErrEmptyCompletion):
		logger.ErrorContext(ctx, "empty completion", "error", err)
		writeError(w, http.StatusBadGateway, "Completion backend returned no text")
	case errors.Is(err, llm.ErrBackendUnavailable), errors.Is(err, service.ErrExternalService):
		logger.ErrorContext(ctx, "external service error", "error", err)
		writeError(w, http.StatusBadGateway, "External service error")
	default:
		logger.ErrorContext(ctx, "service error", "error", err)
		writeError(w, http.StatusInternalServerError, defaultMsg)
	}
}

// writeJSON writes v with the given status code.
func writeJSON(w http.ResponseWriter, ctx context.Context, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}
