package document

import (
	"strings"
)

// Buffer is an in-memory, line-indexed document with an optional selection.
type Buffer struct {
	lines     []string
	cursor    Position
	selection *Range
}

// NewBuffer creates a buffer over a copy of lines with the cursor at the given position.
func NewBuffer(lines []string, cursor Position) *Buffer {
	cp := make([]string, len(lines))
	copy(cp, lines)
	return &Buffer{
		lines:  cp,
		cursor: cursor,
	}
}

// ParseBuffer splits text into lines (accepting \n and \r\n endings) and creates a buffer.
func ParseBuffer(text string, cursor Position) *Buffer {
	return &Buffer{
		lines:  SplitLines(text),
		cursor: cursor,
	}
}

// SplitLines splits text on line breaks. An empty text yields a single empty line.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

// Select sets the active selection. An empty range clears it.
func (b *Buffer) Select(r Range) {
	if r.Empty() {
		b.selection = nil
		return
	}
	r = r.Normalize()
	b.selection = &r
}

// Selection returns the active selection, if any.
func (b *Buffer) Selection() (Range, bool) {
	if b.selection == nil {
		return Range{}, false
	}
	return *b.selection, true
}

// SelectionText returns the selected text, or "" when nothing is selected.
func (b *Buffer) SelectionText() string {
	if b.selection == nil {
		return ""
	}
	from := b.clamp(b.selection.From)
	to := b.clamp(b.selection.To)

	if from.Line == to.Line {
		runes := []rune(b.lines[from.Line])
		return string(runes[from.Column:to.Column])
	}

	var sb strings.Builder
	sb.WriteString(string([]rune(b.lines[from.Line])[from.Column:]))
	for i := from.Line + 1; i < to.Line; i++ {
		sb.WriteString("\n")
		sb.WriteString(b.lines[i])
	}
	sb.WriteString("\n")
	sb.WriteString(string([]rune(b.lines[to.Line])[:to.Column]))
	return sb.String()
}

// Cursor returns the cursor head, which is the selection end while a selection is active.
func (b *Buffer) Cursor() Position {
	if b.selection != nil {
		return b.clamp(b.selection.To)
	}
	return b.cursor
}

// SetCursor moves the cursor to pos.
func (b *Buffer) SetCursor(pos Position) {
	b.cursor = pos
}

// LineText returns the text of line i, or "" when i is out of range.
func (b *Buffer) LineText(i int) string {
	if i < 0 || i >= len(b.lines) {
		return ""
	}
	return b.lines[i]
}

// LineCount returns the number of lines in the buffer.
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// InsertText inserts text at pos. Positions past the end of a line or of the
// document are clamped to the nearest valid position.
func (b *Buffer) InsertText(text string, pos Position) error {
	b.lines = insertLines(b.lines, text, pos)
	return nil
}

// Lines returns a copy of the buffer's lines.
func (b *Buffer) Lines() []string {
	cp := make([]string, len(b.lines))
	copy(cp, b.lines)
	return cp
}

// String returns the buffer content joined with newlines.
func (b *Buffer) String() string {
	return strings.Join(b.lines, "\n")
}

func (b *Buffer) clamp(pos Position) Position {
	return clampPosition(b.lines, pos)
}

// clampPosition maps pos onto an existing position of lines.
func clampPosition(lines []string, pos Position) Position {
	if len(lines) == 0 {
		return Position{}
	}
	if pos.Line < 0 {
		return Position{Line: 0, Column: 0}
	}
	if pos.Line >= len(lines) {
		last := len(lines) - 1
		return Position{Line: last, Column: len([]rune(lines[last]))}
	}
	lineLen := len([]rune(lines[pos.Line]))
	if pos.Column < 0 {
		pos.Column = 0
	}
	if pos.Column > lineLen {
		pos.Column = lineLen
	}
	return pos
}

// insertLines returns lines with text inserted at pos. Text containing line
// breaks splits the target line.
func insertLines(lines []string, text string, pos Position) []string {
	if len(lines) == 0 {
		lines = []string{""}
	}
	pos = clampPosition(lines, pos)

	runes := []rune(lines[pos.Line])
	left := string(runes[:pos.Column])
	right := string(runes[pos.Column:])

	inserted := SplitLines(text)
	inserted[0] = left + inserted[0]
	inserted[len(inserted)-1] += right

	out := make([]string, 0, len(lines)+len(inserted)-1)
	out = append(out, lines[:pos.Line]...)
	out = append(out, inserted...)
	out = append(out, lines[pos.Line+1:]...)
	return out
}
