package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File is a document backed by a file on disk. Reads are served from the
// snapshot taken at Open; InsertText applies the insertion to the file's
// current content so edits made after Open are preserved.
type File struct {
	*Buffer
	path string
}

// OpenFile reads the file at path into a snapshot with the given cursor and optional selection.
func OpenFile(path string, cursor Position, selection *Range) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	buf := ParseBuffer(string(content), cursor)
	if selection != nil {
		buf.Select(*selection)
	}
	return &File{Buffer: buf, path: path}, nil
}

// Path returns the file path.
func (f *File) Path() string {
	return f.path
}

// Key identifies the file for completion serialization.
func (f *File) Key() string {
	abs, err := filepath.Abs(f.path)
	if err != nil {
		return f.path
	}
	return abs
}

// InsertText re-reads the file, inserts text at pos and writes the result back.
func (f *File) InsertText(text string, pos Position) error {
	info, err := os.Stat(f.path)
	if err != nil {
		return fmt.Errorf("failed to stat document: %w", err)
	}
	content, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	lines := insertLines(SplitLines(string(content)), text, pos)
	eol := lineEnding(string(content))

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".libllm-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.WriteString(strings.Join(lines, eol)); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to set document permissions: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to replace document: %w", err)
	}

	f.Buffer.lines = lines
	return nil
}

// lineEnding returns "\r\n" for content that uses CRLF line breaks, else "\n".
func lineEnding(content string) string {
	if strings.Contains(content, "\r\n") {
		return "\r\n"
	}
	return "\n"
}
