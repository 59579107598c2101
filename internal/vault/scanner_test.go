package vault

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeNotes(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, p)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
		if err := os.WriteFile(full, []byte("# Test"), 0644); err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}
	}
}

func TestManager_ListNotes(t *testing.T) {
	root := t.TempDir()
	writeNotes(t, root, "note1.md", "folder/note2.md", "folder/deeper/note3.md")

	manager := newTestManager(t, map[string]string{"personal": root})

	notes, err := manager.ListNotes(context.Background(), "personal")
	if err != nil {
		t.Fatalf("ListNotes() error = %v", err)
	}

	want := []Note{
		{Vault: "personal", RelPath: "folder/deeper/note3.md", Folder: "folder/deeper", Title: "Test"},
		{Vault: "personal", RelPath: "folder/note2.md", Folder: "folder", Title: "Test"},
		{Vault: "personal", RelPath: "note1.md", Folder: "", Title: "Test"},
	}
	if len(notes) != len(want) {
		t.Fatalf("ListNotes() found %d notes, want %d: %+v", len(notes), len(want), notes)
	}
	for i := range want {
		if notes[i] != want[i] {
			t.Errorf("ListNotes()[%d] = %+v, want %+v", i, notes[i], want[i])
		}
	}
}

func TestManager_ListNotes_SkipsObsidian(t *testing.T) {
	root := t.TempDir()
	writeNotes(t, root, ".obsidian/note.md", "regular.md")

	manager := newTestManager(t, map[string]string{"personal": root})

	notes, err := manager.ListNotes(context.Background(), "personal")
	if err != nil {
		t.Fatalf("ListNotes() error = %v", err)
	}
	if len(notes) != 1 || notes[0].RelPath != "regular.md" {
		t.Errorf("ListNotes() = %+v, want only regular.md", notes)
	}
}

func TestManager_ListNotes_OnlyMarkdown(t *testing.T) {
	root := t.TempDir()
	writeNotes(t, root, "note.md", "image.png", "data.txt", "notes.markdown")

	manager := newTestManager(t, map[string]string{"personal": root})

	notes, err := manager.ListNotes(context.Background(), "personal")
	if err != nil {
		t.Fatalf("ListNotes() error = %v", err)
	}
	if len(notes) != 1 || notes[0].RelPath != "note.md" {
		t.Errorf("ListNotes() = %+v, want only note.md", notes)
	}
}

func TestManager_ListNotes_UnknownVault(t *testing.T) {
	manager := newTestManager(t, map[string]string{})

	if _, err := manager.ListNotes(context.Background(), "missing"); !errors.Is(err, ErrVaultNotFound) {
		t.Errorf("ListNotes() error = %v, want ErrVaultNotFound", err)
	}
}

func TestManager_ListNotes_ContextCancellation(t *testing.T) {
	root := t.TempDir()
	writeNotes(t, root, "note.md")

	manager := newTestManager(t, map[string]string{"personal": root})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := manager.ListNotes(ctx, "personal")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ListNotes() error = %v, want context.Canceled", err)
	}
}
