package handlers

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"libllm/internal/settings"
	"libllm/internal/storage"
	"libllm/internal/storage/mocks"
	"libllm/internal/vault"

	"go.uber.org/mock/gomock"
)

func init() {
	// Set default logger to discard output for cleaner test output
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// memoryStore is a settings.Store held in memory.
type memoryStore struct {
	settings settings.Settings
	loadErr  error
	saveErr  error
	saves    int
}

func (m *memoryStore) Load(ctx context.Context) (settings.Settings, error) {
	if m.loadErr != nil {
		return settings.Settings{}, m.loadErr
	}
	return m.settings, nil
}

func (m *memoryStore) Save(ctx context.Context, s settings.Settings) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.settings = s
	return nil
}

// newTestVaults returns a vault manager over roots backed by a mock registry.
func newTestVaults(t *testing.T, roots map[string]string) (*vault.Manager, *mocks.MockVaultStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockVaultStore(ctrl)
	repo.EXPECT().
		GetOrCreateByName(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, name, root string) (storage.VaultRecord, error) {
			return storage.VaultRecord{ID: 1, Name: name, RootPath: root}, nil
		}).
		AnyTimes()

	manager, err := vault.NewManager(context.Background(), repo, roots)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return manager, repo
}
