package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"libllm/internal/contextutil"
	"libllm/internal/document"
	"libllm/internal/instruction"
	"libllm/internal/render"
	"libllm/internal/service"
	"libllm/internal/vault"
)

// CompletionHandler handles HTTP requests for the two completion commands.
type CompletionHandler struct {
	completion service.CompletionService
	vaults     *vault.Manager
	renderer   *render.Renderer
}

// NewCompletionHandler creates a new CompletionHandler. vaults may be nil when
// no vaults are configured; only inline documents are accepted then.
func NewCompletionHandler(completion service.CompletionService, vaults *vault.Manager, renderer *render.Renderer) *CompletionHandler {
	return &CompletionHandler{
		completion: completion,
		vaults:     vaults,
		renderer:   renderer,
	}
}

// CompletionRequest represents the HTTP request payload for a completion.
// It names either an inline document (Lines) or a vault note (Vault and Path).
type CompletionRequest struct {
	Lines       []string          `json:"lines,omitempty"`
	Vault       string            `json:"vault,omitempty"`
	Path        string            `json:"path,omitempty"`
	Cursor      document.Position `json:"cursor"`
	Selection   *document.Range   `json:"selection,omitempty"`
	Instruction *string           `json:"instruction,omitempty"`
	Temperature *float64          `json:"temperature,omitempty"`
	TopP        *float64          `json:"top_p,omitempty"`
}

// CompletionResponse represents the HTTP response payload for a completion.
type CompletionResponse struct {
	Text           string            `json:"text"`
	Prompt         string            `json:"prompt"`
	InsertionPoint document.Position `json:"insertion_point"`
	// Lines holds the updated inline document.
	Lines []string `json:"lines,omitempty"`
	// HTML is the rendered completion, present with ?render=html.
	HTML string `json:"html,omitempty"`
}

// Complete handles POST /api/complete.
func (h *CompletionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, false)
}

// CompleteWithInstructions handles POST /api/complete/instructions.
func (h *CompletionHandler) CompleteWithInstructions(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, true)
}

func (h *CompletionHandler) serve(w http.ResponseWriter, r *http.Request, withInstructions bool) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req CompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if withInstructions && (req.Instruction == nil || strings.TrimSpace(*req.Instruction) == "") {
		handleServiceError(w, ctx, &service.ValidationError{Field: "instruction", Message: "is required"}, "")
		return
	}

	doc, buf, err := h.openDocument(req)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to open document")
		return
	}

	opts := service.Options{Temperature: req.Temperature, TopP: req.TopP}
	var result service.CompletionResult
	if withInstructions {
		result, err = h.completion.CompleteWithInstructions(ctx, doc, instruction.Static(*req.Instruction), opts)
	} else {
		result, err = h.completion.Complete(ctx, doc, opts)
	}
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to complete prompt")
		return
	}

	resp := CompletionResponse{
		Text:           result.Text,
		Prompt:         result.Prompt,
		InsertionPoint: result.InsertionPoint,
	}
	if buf != nil {
		resp.Lines = buf.Lines()
	}
	if r.URL.Query().Get("render") == "html" && h.renderer != nil {
		html, err := h.renderer.ToHTML([]byte(result.Text))
		if err != nil {
			logger.WarnContext(ctx, "failed to render completion", "error", err)
		} else {
			resp.HTML = html
		}
	}

	writeJSON(w, ctx, http.StatusOK, resp)
}

// openDocument returns the document named by req. buf is set for inline documents.
func (h *CompletionHandler) openDocument(req CompletionRequest) (doc document.Document, buf *document.Buffer, err error) {
	inline := req.Lines != nil
	note := req.Vault != "" || req.Path != ""

	switch {
	case inline && note:
		return nil, nil, &service.ValidationError{Field: "lines", Message: "cannot be combined with vault and path"}
	case inline:
		buf = document.NewBuffer(req.Lines, req.Cursor)
		if req.Selection != nil {
			buf.Select(*req.Selection)
		}
		return buf, buf, nil
	case note:
		if req.Vault == "" || req.Path == "" {
			return nil, nil, &service.ValidationError{Field: "path", Message: "vault and path are both required"}
		}
		if h.vaults == nil {
			return nil, nil, vault.ErrVaultNotFound
		}
		file, err := h.vaults.Open(req.Vault, req.Path, req.Cursor, req.Selection)
		if err != nil {
			return nil, nil, err
		}
		return file, nil, nil
	default:
		return nil, nil, &service.ValidationError{Field: "lines", Message: "either lines or vault and path are required"}
	}
}
