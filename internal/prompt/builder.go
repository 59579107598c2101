// Package prompt derives completion prompts from a document.
package prompt

import (
	"strings"

	"libllm/internal/document"
)

// Request is the prompt text and the position where the completion is inserted.
type Request struct {
	Text           string
	InsertionPoint document.Position
}

// Empty reports whether there is nothing to complete.
func (r Request) Empty() bool {
	return r.Text == ""
}

// Build derives the prompt for doc.
//
// A non-empty selection is used verbatim and the completion goes after it.
// Without a selection the prompt is the paragraph ending at the cursor line:
// the cursor line plus every contiguous non-blank line above it. The
// insertion point is the end of the cursor line. A blank cursor line yields
// an empty prompt.
func Build(doc document.Document) Request {
	if selection := doc.SelectionText(); selection != "" {
		return Request{
			Text:           selection,
			InsertionPoint: doc.Cursor(),
		}
	}

	cursor := doc.Cursor()
	current := doc.LineText(cursor.Line)
	insertAt := document.Position{
		Line:   cursor.Line,
		Column: len([]rune(current)),
	}

	if isBlank(current) {
		return Request{InsertionPoint: insertAt}
	}

	lines := []string{current}
	for i := cursor.Line - 1; i >= 0; i-- {
		line := doc.LineText(i)
		if isBlank(line) {
			break
		}
		lines = append(lines, line)
	}

	// Collected bottom-up.
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}

	return Request{
		Text:           strings.Join(lines, "\n"),
		InsertionPoint: insertAt,
	}
}

// WithInstruction prefixes the prompt with a user instruction.
func WithInstruction(instruction, prompt string) string {
	return instruction + ":\n" + prompt
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
