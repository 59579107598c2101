package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"libllm/internal/document"
	"libllm/internal/instruction"
	"libllm/internal/llm"
	"libllm/internal/render"
	"libllm/internal/service"
	"libllm/internal/service/mocks"

	"go.uber.org/mock/gomock"
)

func TestCompletionHandler_Complete(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockCompletionService(ctrl)
	handler := NewCompletionHandler(mockService, nil, render.New())

	mockService.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, doc document.Document, opts service.Options) (service.CompletionResult, error) {
			if got := doc.SelectionText(); got != "" {
				t.Errorf("SelectionText() = %q, want empty", got)
			}
			if opts.Temperature == nil || *opts.Temperature != 0.2 {
				t.Errorf("Temperature = %v, want 0.2", opts.Temperature)
			}
			if opts.TopP != nil {
				t.Errorf("TopP = %v, want nil", *opts.TopP)
			}
			at := document.Position{Line: 1, Column: 6}
			if err := doc.InsertText("\n**done**", at); err != nil {
				t.Fatalf("InsertText() error = %v", err)
			}
			return service.CompletionResult{Prompt: "line A\nline B", Text: "**done**", InsertionPoint: at}, nil
		})

	body := `{"lines":["line A","line B"],"cursor":{"line":1,"column":6},"temperature":0.2}`
	req := httptest.NewRequest(http.MethodPost, "/api/complete?render=html", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.Complete(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Complete() status = %v, want %v: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp CompletionResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Text != "**done**" {
		t.Errorf("Complete() text = %q, want %q", resp.Text, "**done**")
	}
	if resp.InsertionPoint != (document.Position{Line: 1, Column: 6}) {
		t.Errorf("Complete() insertion point = %v, want 1:6", resp.InsertionPoint)
	}
	wantLines := []string{"line A", "line B", "**done**"}
	if strings.Join(resp.Lines, "|") != strings.Join(wantLines, "|") {
		t.Errorf("Complete() lines = %q, want %q", resp.Lines, wantLines)
	}
	if !strings.Contains(resp.HTML, "<strong>done</strong>") {
		t.Errorf("Complete() html = %q, want rendered completion", resp.HTML)
	}
}

func TestCompletionHandler_Complete_Selection(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockCompletionService(ctrl)
	handler := NewCompletionHandler(mockService, nil, render.New())

	mockService.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, doc document.Document, opts service.Options) (service.CompletionResult, error) {
			if got := doc.SelectionText(); got != "beta" {
				t.Errorf("SelectionText() = %q, want beta", got)
			}
			return service.CompletionResult{Text: "gamma"}, nil
		})

	body := `{"lines":["alpha beta"],"cursor":{"line":0,"column":10},"selection":{"from":{"line":0,"column":6},"to":{"line":0,"column":10}}}`
	req := httptest.NewRequest(http.MethodPost, "/api/complete", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.Complete(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Complete() status = %v, want %v", w.Code, http.StatusOK)
	}
	var resp CompletionResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.HTML != "" {
		t.Errorf("Complete() html = %q, want empty without render=html", resp.HTML)
	}
}

func TestCompletionHandler_Complete_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(*mocks.MockCompletionService)
		wantStatus int
	}{
		{
			name:       "invalid JSON",
			body:       `{"lines":`,
			setupMock:  func(m *mocks.MockCompletionService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "no document",
			body:       `{"cursor":{"line":0,"column":0}}`,
			setupMock:  func(m *mocks.MockCompletionService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "inline and note",
			body:       `{"lines":["a"],"vault":"personal","path":"a.md"}`,
			setupMock:  func(m *mocks.MockCompletionService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "note without vaults",
			body:       `{"vault":"personal","path":"a.md"}`,
			setupMock:  func(m *mocks.MockCompletionService) {},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "empty prompt",
			body: `{"lines":[""]}`,
			setupMock: func(m *mocks.MockCompletionService) {
				m.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(service.CompletionResult{}, service.ErrEmptyPrompt)
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "busy",
			body: `{"lines":["a"]}`,
			setupMock: func(m *mocks.MockCompletionService) {
				m.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(service.CompletionResult{}, service.ErrBusy)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "backend rejected request",
			body: `{"lines":["a"]}`,
			setupMock: func(m *mocks.MockCompletionService) {
				m.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(service.CompletionResult{}, service.WrapError(&llm.StatusError{StatusCode: 401, Body: "invalid key"}, "failed to get completion"))
			},
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockService := mocks.NewMockCompletionService(ctrl)
			tt.setupMock(mockService)
			handler := NewCompletionHandler(mockService, nil, render.New())

			req := httptest.NewRequest(http.MethodPost, "/api/complete", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.Complete(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Complete() status = %v, want %v: %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestCompletionHandler_CompleteWithInstructions(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockCompletionService(ctrl)
	handler := NewCompletionHandler(mockService, nil, nil)

	mockService.EXPECT().
		CompleteWithInstructions(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, doc document.Document, collector instruction.Collector, opts service.Options) (service.CompletionResult, error) {
			outcome, err := collector.Collect(ctx)
			if err != nil {
				t.Fatalf("Collect() error = %v", err)
			}
			if !outcome.Submitted || outcome.Text != "Make it formal" {
				t.Errorf("Collect() = %+v, want submitted instruction", outcome)
			}
			return service.CompletionResult{Prompt: "Make it formal:\nhey", Text: "Hello."}, nil
		})

	body := `{"lines":["hey"],"cursor":{"line":0,"column":3},"instruction":"Make it formal"}`
	req := httptest.NewRequest(http.MethodPost, "/api/complete/instructions?render=html", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.CompleteWithInstructions(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("CompleteWithInstructions() status = %v, want %v", w.Code, http.StatusOK)
	}
	var resp CompletionResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Prompt != "Make it formal:\nhey" {
		t.Errorf("CompleteWithInstructions() prompt = %q", resp.Prompt)
	}
	if resp.HTML != "" {
		t.Errorf("CompleteWithInstructions() html = %q, want empty without a renderer", resp.HTML)
	}
}

func TestCompletionHandler_CompleteWithInstructions_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(*mocks.MockCompletionService)
		wantStatus int
	}{
		{
			name:       "missing instruction",
			body:       `{"lines":["hey"]}`,
			setupMock:  func(m *mocks.MockCompletionService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "blank instruction",
			body:       `{"lines":["hey"],"instruction":"   "}`,
			setupMock:  func(m *mocks.MockCompletionService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "abandoned",
			body: `{"lines":["hey"],"instruction":"go"}`,
			setupMock: func(m *mocks.MockCompletionService) {
				m.EXPECT().CompleteWithInstructions(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(service.CompletionResult{}, service.ErrInstructionAbandoned)
			},
			wantStatus: http.StatusNoContent,
		},
		{
			name: "collector busy",
			body: `{"lines":["hey"],"instruction":"go"}`,
			setupMock: func(m *mocks.MockCompletionService) {
				m.EXPECT().CompleteWithInstructions(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(service.CompletionResult{}, instruction.ErrCollectorBusy)
			},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockService := mocks.NewMockCompletionService(ctrl)
			tt.setupMock(mockService)
			handler := NewCompletionHandler(mockService, nil, nil)

			req := httptest.NewRequest(http.MethodPost, "/api/complete/instructions", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.CompleteWithInstructions(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("CompleteWithInstructions() status = %v, want %v: %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestCompletionHandler_Complete_VaultNote(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "note.md"), []byte("# Note\nfirst line"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	vaults, _ := newTestVaults(t, map[string]string{"personal": root})

	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockCompletionService(ctrl)
	handler := NewCompletionHandler(mockService, vaults, nil)

	mockService.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, doc document.Document, opts service.Options) (service.CompletionResult, error) {
			if got := doc.LineText(1); got != "first line" {
				t.Errorf("LineText(1) = %q, want %q", got, "first line")
			}
			if _, ok := doc.(document.Keyed); !ok {
				t.Error("vault note should be a keyed document")
			}
			return service.CompletionResult{Text: "second line"}, nil
		})

	body := `{"vault":"personal","path":"note.md","cursor":{"line":1,"column":10}}`
	req := httptest.NewRequest(http.MethodPost, "/api/complete", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	handler.Complete(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Complete() status = %v, want %v: %s", w.Code, http.StatusOK, w.Body.String())
	}
	var resp CompletionResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Lines != nil {
		t.Errorf("Complete() lines = %q, want none for a vault note", resp.Lines)
	}
}

func TestCompletionHandler_Complete_VaultNoteErrors(t *testing.T) {
	root := t.TempDir()
	vaults, _ := newTestVaults(t, map[string]string{"personal": root})

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "missing path", body: `{"vault":"personal"}`, wantStatus: http.StatusBadRequest},
		{name: "escaping path", body: `{"vault":"personal","path":"../secret.md"}`, wantStatus: http.StatusBadRequest},
		{name: "unknown vault", body: `{"vault":"work","path":"a.md"}`, wantStatus: http.StatusNotFound},
		{name: "missing note", body: `{"vault":"personal","path":"absent.md"}`, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			handler := NewCompletionHandler(mocks.NewMockCompletionService(ctrl), vaults, nil)

			req := httptest.NewRequest(http.MethodPost, "/api/complete", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.Complete(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Complete() status = %v, want %v: %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}
