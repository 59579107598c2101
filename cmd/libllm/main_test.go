package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"libllm/internal/document"
	"libllm/internal/llm"
)

// newBackend serves a completion and a model listing.
func newBackend(t *testing.T, completion string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/completions":
			calls.Add(1)
			var req llm.CompletionRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_ = json.NewEncoder(w).Encode(llm.CompletionResponse{
				Choices: []llm.CompletionChoice{{Text: &completion}},
			})
		case "/v1/models":
			_ = json.NewEncoder(w).Encode(llm.ModelsResponse{
				Data: []llm.Model{{ID: "davinci-002"}, {ID: "babbage-002"}},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func setTestEnv(t *testing.T, baseURL string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("LLM_BASE_URL", baseURL)
	t.Setenv("SETTINGS_BACKEND", "toml")
	t.Setenv("SETTINGS_PATH", filepath.Join(dir, "settings.toml"))
	t.Setenv("DB_PATH", filepath.Join(dir, "libllm.db"))
	t.Setenv("VAULTS", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("MODEL_CACHE_TTL", "1m")
}

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err = app.Run(append([]string{"libllm"}, args...))
	return out.String(), errOut.String(), err
}

func TestComplete(t *testing.T) {
	var calls atomic.Int32
	setTestEnv(t, newBackend(t, "  and again.\n", &calls).URL)

	path := filepath.Join(t.TempDir(), "draft.md")
	if err := os.WriteFile(path, []byte("# Draft\n\nHello\nworld"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	stdout, _, err := run(t, "complete", "--file", path)
	if err != nil {
		t.Fatalf("complete error = %v", err)
	}
	if stdout != "and again.\n" {
		t.Errorf("complete stdout = %q, want %q", stdout, "and again.\n")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	want := "# Draft\n\nHello\nworld\nand again."
	if string(data) != want {
		t.Errorf("file content = %q, want %q", string(data), want)
	}
}

func TestComplete_TrailingNewline(t *testing.T) {
	var calls atomic.Int32
	setTestEnv(t, newBackend(t, "again", &calls).URL)

	path := filepath.Join(t.TempDir(), "draft.md")
	if err := os.WriteFile(path, []byte("Hello\nworld\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	stdout, stderr, err := run(t, "complete", "--file", path)
	if err != nil {
		t.Fatalf("complete error = %v", err)
	}
	if stdout != "again\n" {
		t.Errorf("complete stdout = %q, stderr = %q, want %q", stdout, stderr, "again\n")
	}
	if calls.Load() != 1 {
		t.Errorf("backend calls = %d, want 1", calls.Load())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if want := "Hello\nworld\nagain\n"; string(data) != want {
		t.Errorf("file content = %q, want %q", string(data), want)
	}
}

func TestComplete_ColumnWithoutLine(t *testing.T) {
	var calls atomic.Int32
	setTestEnv(t, newBackend(t, "more", &calls).URL)

	path := filepath.Join(t.TempDir(), "draft.md")
	if err := os.WriteFile(path, []byte("first\nsecond\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, _, err := run(t, "complete", "--file", path, "--column", "3"); err != nil {
		t.Fatalf("complete error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if want := "first\nsecond\nmore\n"; string(data) != want {
		t.Errorf("file content = %q, want %q", string(data), want)
	}
}

func TestComplete_InstructionAndHTML(t *testing.T) {
	var calls atomic.Int32
	setTestEnv(t, newBackend(t, "**Greetings.**", &calls).URL)

	path := filepath.Join(t.TempDir(), "draft.md")
	if err := os.WriteFile(path, []byte("hey there\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	stdout, _, err := run(t, "complete", "--file", path, "--line", "1", "--instruction", "Make it formal", "--html")
	if err != nil {
		t.Fatalf("complete error = %v", err)
	}
	if !strings.Contains(stdout, "<strong>Greetings.</strong>") {
		t.Errorf("complete stdout = %q, want rendered HTML", stdout)
	}
	if calls.Load() != 1 {
		t.Errorf("backend calls = %d, want 1", calls.Load())
	}
}

func TestComplete_EmptyPrompt(t *testing.T) {
	var calls atomic.Int32
	setTestEnv(t, newBackend(t, "unused", &calls).URL)

	path := filepath.Join(t.TempDir(), "draft.md")
	if err := os.WriteFile(path, []byte("text\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	stdout, stderr, err := run(t, "complete", "--file", path)
	if err != nil {
		t.Fatalf("complete error = %v, want nil for an empty prompt", err)
	}
	if stdout != "" {
		t.Errorf("complete stdout = %q, want empty", stdout)
	}
	if !strings.Contains(stderr, "Nothing to complete") {
		t.Errorf("complete stderr = %q, want a notice", stderr)
	}
	if calls.Load() != 0 {
		t.Errorf("backend calls = %d, want 0", calls.Load())
	}
}

func TestComplete_FlagErrors(t *testing.T) {
	var calls atomic.Int32
	setTestEnv(t, newBackend(t, "unused", &calls).URL)

	path := filepath.Join(t.TempDir(), "draft.md")
	if err := os.WriteFile(path, []byte("text"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	tests := [][]string{
		{"complete", "--file", path, "--instruct", "--instruction", "x"},
		{"complete", "--file", path, "--line", "0"},
		{"complete", "--file", path, "--select-from", "1:1"},
		{"complete", "--file", path, "--select-from", "1", "--select-to", "1:2"},
		{"complete", "--file", filepath.Join(t.TempDir(), "absent.md")},
	}
	for _, args := range tests {
		if _, _, err := run(t, args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestSettingsSetAndShow(t *testing.T) {
	var calls atomic.Int32
	setTestEnv(t, newBackend(t, "unused", &calls).URL)

	stdout, _, err := run(t, "settings", "set", "--api-key", "sk-jfiowj3f3f32ojf2f89", "--model", "babbage-002")
	if err != nil {
		t.Fatalf("settings set error = %v", err)
	}
	if !strings.Contains(stdout, "sk-...2f89") || !strings.Contains(stdout, "babbage-002") {
		t.Errorf("settings set stdout = %q", stdout)
	}

	_, stderr, err := run(t, "settings", "set", "--model", "retired-001")
	if err != nil {
		t.Fatalf("settings set error = %v", err)
	}
	if !strings.Contains(stderr, "retired-001") {
		t.Errorf("settings set stderr = %q, want a replacement notice", stderr)
	}

	stdout, _, err = run(t, "settings", "show")
	if err != nil {
		t.Fatalf("settings show error = %v", err)
	}
	if !strings.Contains(stdout, "model:           "+llm.DefaultModel) {
		t.Errorf("settings show stdout = %q, want default model", stdout)
	}
	if !strings.Contains(stdout, "organization_id: (default)") {
		t.Errorf("settings show stdout = %q, want default organization", stdout)
	}
}

func TestModels(t *testing.T) {
	var calls atomic.Int32
	setTestEnv(t, newBackend(t, "unused", &calls).URL)

	if _, _, err := run(t, "settings", "set", "--model", "davinci-002"); err != nil {
		t.Fatalf("settings set error = %v", err)
	}

	stdout, _, err := run(t, "models")
	if err != nil {
		t.Fatalf("models error = %v", err)
	}
	want := "  babbage-002\n* davinci-002\n"
	if stdout != want {
		t.Errorf("models stdout = %q, want %q", stdout, want)
	}
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in      string
		want    document.Position
		wantErr bool
	}{
		{in: "1:1", want: document.Position{Line: 0, Column: 0}},
		{in: " 3:12 ", want: document.Position{Line: 2, Column: 11}},
		{in: "3", wantErr: true},
		{in: "0:1", wantErr: true},
		{in: "1:0", wantErr: true},
		{in: "a:b", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parsePosition(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePosition(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parsePosition(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDefaultCursor(t *testing.T) {
	tests := []struct {
		name      string
		lines     []string
		column    int
		hasColumn bool
		want      document.Position
	}{
		{name: "no lines", want: document.Position{}},
		{name: "last line", lines: []string{"a", "héllo"}, want: document.Position{Line: 1, Column: 5}},
		{name: "trailing newline", lines: []string{"a", "héllo", ""}, want: document.Position{Line: 1, Column: 5}},
		{name: "trailing blank lines", lines: []string{"a", "  ", "", ""}, want: document.Position{Line: 0, Column: 1}},
		{name: "all blank", lines: []string{"", ""}, want: document.Position{Line: 1, Column: 0}},
		{name: "explicit column", lines: []string{"hello", ""}, column: 2, hasColumn: true, want: document.Position{Line: 0, Column: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := defaultCursor(tt.lines, tt.column, tt.hasColumn); got != tt.want {
				t.Errorf("defaultCursor() = %v, want %v", got, tt.want)
			}
		})
	}
}
