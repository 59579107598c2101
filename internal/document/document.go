package document

import "fmt"

// Position identifies a point in a document's line-indexed text.
// Column is counted in runes.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Before reports whether p comes strictly before other.
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

// Range is a span of text between two positions. From and To may be given in
// either order; Normalize returns them ordered.
type Range struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

// Normalize returns the range with From <= To.
func (r Range) Normalize() Range {
	if r.To.Before(r.From) {
		return Range{From: r.To, To: r.From}
	}
	return r
}

// Empty reports whether the range covers no text.
func (r Range) Empty() bool {
	return r.From == r.To
}

// Document is the capability a host editing surface exposes to the completion flow.
type Document interface {
	// SelectionText returns the active selection, or "" when nothing is selected.
	SelectionText() string
	// Cursor returns the cursor head. With an active selection it is the end of the selection.
	Cursor() Position
	// LineText returns the text of the given line, or "" when the line does not exist.
	LineText(line int) string
	// InsertText writes text at pos.
	InsertText(text string, pos Position) error
}

// Keyed is implemented by documents that have a stable identity across requests
// (a file, a vault note). Completion triggers are serialized per key.
type Keyed interface {
	Key() string
}
