package vault

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"libllm/internal/render"
)

// Note is a markdown file found in a vault.
type Note struct {
	Vault   string `json:"vault"`
	RelPath string `json:"path"`   // Relative path from vault root (e.g., "projects/meeting-notes.md")
	Folder  string `json:"folder"` // Folder path (path components except filename, e.g., "projects")
	Title   string `json:"title"`
}

// ListNotes walks the named vault and returns its markdown notes in walk order.
func (m *Manager) ListNotes(ctx context.Context, vaultName string) ([]Note, error) {
	vault, err := m.VaultByName(vaultName)
	if err != nil {
		return nil, err
	}

	var notes []Note
	err = filepath.Walk(vault.RootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if info.IsDir() {
			// Skip .obsidian directory (Obsidian configuration)
			if info.Name() == ".obsidian" {
				return filepath.SkipDir
			}
			return nil
		}

		if filepath.Ext(path) != ".md" {
			return nil
		}

		relPath, err := filepath.Rel(vault.RootPath, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}
		relPath = filepath.ToSlash(relPath)

		folder := filepath.ToSlash(filepath.Dir(relPath))
		if folder == "." {
			folder = ""
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read note %s: %w", path, err)
		}

		notes = append(notes, Note{
			Vault:   vault.Name,
			RelPath: relPath,
			Folder:  folder,
			Title:   render.Title(content, relPath),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan vault %s: %w", vault.Name, err)
	}

	return notes, nil
}
