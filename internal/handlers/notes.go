package handlers

import (
	"html/template"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"libllm/internal/contextutil"
	"libllm/internal/render"
	"libllm/internal/vault"
)

// NotesHandler lists vault notes and serves them as rendered HTML pages.
type NotesHandler struct {
	vaults   *vault.Manager
	renderer *render.Renderer
	template *template.Template
}

// notePageData holds template data for rendered note pages.
type notePageData struct {
	Title   string
	Vault   string
	RelPath string
	Content template.HTML
}

// VaultsResponse represents the HTTP response payload for GET /api/vaults.
type VaultsResponse struct {
	Vaults []string `json:"vaults"`
}

// NotesResponse represents the HTTP response payload for GET /api/vaults/{vault}/notes.
type NotesResponse struct {
	Vault string       `json:"vault"`
	Notes []vault.Note `json:"notes"`
}

// NewNotesHandler creates a new handler for vault notes.
func NewNotesHandler(vaults *vault.Manager, renderer *render.Renderer) *NotesHandler {
	tmpl := template.Must(template.New("note").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}} &middot; {{.Vault}} vault</title>
  <style>
    :root {
      color-scheme: dark;
    }
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
      margin: 0 auto;
      padding: 2rem;
      max-width: 900px;
      line-height: 1.7;
      background: #050b18;
      color: #e4ecff;
    }
    header {
      margin-bottom: 2rem;
      border-bottom: 1px solid rgba(148, 163, 184, 0.2);
      padding-bottom: 1.5rem;
    }
    h1 {
      margin-top: 0;
      color: #fff;
      font-size: 2rem;
    }
    article {
      background: rgba(12, 19, 35, 0.85);
      border: 1px solid rgba(99, 102, 241, 0.2);
      border-radius: 16px;
      padding: 2rem;
      box-shadow: 0 15px 35px rgba(2, 6, 23, 0.8);
    }
    article h2, article h3, article h4 {
      color: #c7d2fe;
      margin-top: 1.5rem;
    }
    article p {
      color: #cbd5f5;
    }
    pre {
      background: #0f172a;
      padding: 1rem;
      overflow-x: auto;
      border-radius: 10px;
      border: 1px solid rgba(99, 102, 241, 0.2);
    }
    code {
      font-family: 'SFMono-Regular', Consolas, 'Liberation Mono', Menlo, monospace;
      background: rgba(99, 102, 241, 0.18);
      padding: 2px 5px;
      border-radius: 6px;
      color: #cbd5ff;
    }
    pre code {
      background: transparent;
      padding: 0;
    }
    blockquote {
      border-left: 4px solid rgba(96, 165, 250, 0.6);
      padding-left: 1rem;
      margin-left: 0;
      color: #93c5fd;
      background: rgba(59, 130, 246, 0.08);
      border-radius: 6px;
    }
    a {
      color: #60a5fa;
      text-decoration: none;
    }
    a:hover {
      text-decoration: underline;
    }
    .meta {
      color: #94a3b8;
      font-size: 0.95rem;
      margin-top: 0.5rem;
    }
    @media (max-width: 640px) {
      body {
        padding: 1rem;
      }
      article {
        padding: 1.25rem;
      }
    }
  </style>
</head>
<body>
  <header>
    <h1>{{.Title}}</h1>
    <p class="meta">Vault: {{.Vault}} &middot; Path: {{.RelPath}}</p>
  </header>
  <article>{{.Content}}</article>
</body>
</html>`))

	return &NotesHandler{
		vaults:   vaults,
		renderer: renderer,
		template: tmpl,
	}
}

// Vaults handles GET /api/vaults.
func (h *NotesHandler) Vaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r.Context(), http.StatusOK, VaultsResponse{Vaults: h.vaults.Names()})
}

// List handles GET /api/vaults/{vault}/notes.
func (h *NotesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vaultName, ok := vaultParam(w, r)
	if !ok {
		return
	}

	notes, err := h.vaults.ListNotes(ctx, vaultName)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to list notes")
		return
	}
	if notes == nil {
		notes = []vault.Note{}
	}

	writeJSON(w, ctx, http.StatusOK, NotesResponse{Vault: vaultName, Notes: notes})
}

// Page handles GET /vaults/{vault}/notes/*, rendering the note as HTML.
func (h *NotesHandler) Page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	vaultName, ok := vaultParam(w, r)
	if !ok {
		return
	}

	relPath, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil {
		http.Error(w, "invalid path encoding", http.StatusBadRequest)
		return
	}
	relPath = strings.TrimSpace(relPath)

	absPath, err := h.vaults.AbsPath(vaultName, relPath)
	if err != nil {
		logger.WarnContext(ctx, "invalid note path", "vault", vaultName, "rel_path", relPath, "error", err)
		handleServiceError(w, ctx, err, "Invalid path")
		return
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "note not found", http.StatusNotFound)
			return
		}
		logger.ErrorContext(ctx, "failed to read note", "path", absPath, "error", err)
		http.Error(w, "failed to read note", http.StatusInternalServerError)
		return
	}

	htmlContent, err := h.renderer.ToHTML(data)
	if err != nil {
		logger.ErrorContext(ctx, "failed to render markdown", "path", absPath, "error", err)
		http.Error(w, "failed to render note", http.StatusInternalServerError)
		return
	}

	pageData := notePageData{
		Title:   render.Title(data, relPath),
		Vault:   vaultName,
		RelPath: relPath,
		Content: template.HTML(htmlContent),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.template.Execute(w, pageData); err != nil {
		logger.ErrorContext(ctx, "failed to execute note template", "path", absPath, "error", err)
		http.Error(w, "failed to render note", http.StatusInternalServerError)
		return
	}
}

// vaultParam extracts the {vault} URL parameter, writing a 400 when it is unusable.
func vaultParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	vaultName, err := url.PathUnescape(strings.TrimSpace(chi.URLParam(r, "vault")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid vault name")
		return "", false
	}
	if vaultName == "" {
		writeError(w, http.StatusBadRequest, "Vault is required")
		return "", false
	}
	return vaultName, true
}
