// Package vault resolves markdown notes inside named vault directories.
package vault

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"libllm/internal/document"
	"libllm/internal/storage"
)

var (
	// ErrVaultNotFound is returned for a vault name that is not configured.
	ErrVaultNotFound = errors.New("vault not found")
	// ErrInvalidPath is returned for a note path outside its vault or not a markdown file.
	ErrInvalidPath = errors.New("invalid note path")
)

// Manager manages vault configuration and provides vault lookup and path resolution.
type Manager struct {
	vaultRepo storage.VaultStore
	vaults    map[string]storage.VaultRecord // Cache vaults by name
}

// NewManager registers every configured vault (name to root directory) and
// caches the records.
func NewManager(ctx context.Context, vaultRepo storage.VaultStore, roots map[string]string) (*Manager, error) {
	m := &Manager{
		vaultRepo: vaultRepo,
		vaults:    make(map[string]storage.VaultRecord, len(roots)),
	}

	names := make([]string, 0, len(roots))
	for name := range roots {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		root, err := filepath.Abs(roots[name])
		if err != nil {
			return nil, fmt.Errorf("failed to resolve vault %s root: %w", name, err)
		}
		record, err := vaultRepo.GetOrCreateByName(ctx, name, root)
		if err != nil {
			return nil, fmt.Errorf("failed to create vault %s: %w", name, err)
		}
		m.vaults[name] = record
	}

	return m, nil
}

// Names returns the configured vault names in order.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.vaults))
	for name := range m.vaults {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// VaultByName returns the vault record for the given vault name.
func (m *Manager) VaultByName(name string) (storage.VaultRecord, error) {
	vault, ok := m.vaults[name]
	if !ok {
		return storage.VaultRecord{}, fmt.Errorf("%w: %s", ErrVaultNotFound, name)
	}
	return vault, nil
}

// AbsPath returns the absolute path of the markdown note relPath inside the named vault.
func (m *Manager) AbsPath(vaultName, relPath string) (string, error) {
	vault, err := m.VaultByName(vaultName)
	if err != nil {
		return "", err
	}

	if relPath == "" || filepath.IsAbs(relPath) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, relPath)
	}
	clean := filepath.Clean(filepath.FromSlash(relPath))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes vault %s", ErrInvalidPath, relPath, vaultName)
	}
	if filepath.Ext(clean) != ".md" {
		return "", fmt.Errorf("%w: %q is not a markdown note", ErrInvalidPath, relPath)
	}

	return filepath.Join(vault.RootPath, clean), nil
}

// Open loads a note as a document with the given cursor and optional selection.
func (m *Manager) Open(vaultName, relPath string, cursor document.Position, selection *document.Range) (*document.File, error) {
	path, err := m.AbsPath(vaultName, relPath)
	if err != nil {
		return nil, err
	}
	return document.OpenFile(path, cursor, selection)
}

// Check verifies the vault registry is reachable.
func (m *Manager) Check(ctx context.Context) error {
	if _, err := m.vaultRepo.ListAll(ctx); err != nil {
		return fmt.Errorf("failed to list vaults: %w", err)
	}
	return nil
}
