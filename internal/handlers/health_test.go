package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"libllm/internal/storage"
	"libllm/internal/storage/mocks"
	"libllm/internal/vault"

	"go.uber.org/mock/gomock"
)

func TestHealthHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		store      *memoryStore
		withVaults bool
		listErr    error
		wantStatus int
		wantChecks map[string]string
		wantIssues int
	}{
		{
			name:       "healthy without vaults",
			store:      &memoryStore{},
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"settings": "ok"},
		},
		{
			name:       "healthy with vaults",
			store:      &memoryStore{},
			withVaults: true,
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"settings": "ok", "vaults": "ok"},
		},
		{
			name:       "settings unreadable",
			store:      &memoryStore{loadErr: errors.New("permission denied")},
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"settings": "error"},
			wantIssues: 1,
		},
		{
			name:       "vault registry unavailable",
			store:      &memoryStore{},
			withVaults: true,
			listErr:    errors.New("database is closed"),
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"settings": "ok", "vaults": "error"},
			wantIssues: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var vaults *vault.Manager
			if tt.withVaults {
				var repo *mocks.MockVaultStore
				vaults, repo = newTestVaults(t, map[string]string{"personal": t.TempDir()})
				repo.EXPECT().ListAll(gomock.Any()).Return([]storage.VaultRecord{{ID: 1, Name: "personal"}}, tt.listErr)
			}
			handler := NewHealthHandler(tt.store, vaults)

			req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("ServeHTTP() status = %v, want %v", w.Code, tt.wantStatus)
			}

			var resp HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if len(resp.Checks) != len(tt.wantChecks) {
				t.Errorf("ServeHTTP() checks = %v, want %v", resp.Checks, tt.wantChecks)
			}
			for k, v := range tt.wantChecks {
				if resp.Checks[k] != v {
					t.Errorf("ServeHTTP() check %s = %v, want %v", k, resp.Checks[k], v)
				}
			}
			if len(resp.Issues) != tt.wantIssues {
				t.Errorf("ServeHTTP() issues = %v, want %d", resp.Issues, tt.wantIssues)
			}
		})
	}
}

func TestHealthHandler_MethodNotAllowed(t *testing.T) {
	handler := NewHealthHandler(&memoryStore{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("ServeHTTP() status = %v, want %v", w.Code, http.StatusMethodNotAllowed)
	}
}
