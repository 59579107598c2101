package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/urfave/cli/v2"

	"libllm/internal/document"
	"libllm/internal/instruction"
	"libllm/internal/service"
	"libllm/internal/terminal"
)

func completeCommand() *cli.Command {
	return &cli.Command{
		Name:  "complete",
		Usage: "complete the text before the cursor of a file and insert the result",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "document to complete",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "line",
				Usage: "cursor line, 1-based (defaults to the last non-blank line)",
			},
			&cli.IntFlag{
				Name:  "column",
				Usage: "cursor column in characters, 1-based (defaults to the end of the line)",
			},
			&cli.StringFlag{
				Name:  "select-from",
				Usage: "selection start as LINE:COLUMN, 1-based",
			},
			&cli.StringFlag{
				Name:  "select-to",
				Usage: "selection end as LINE:COLUMN, 1-based",
			},
			&cli.BoolFlag{
				Name:  "instruct",
				Usage: "ask for an instruction in a terminal prompt",
			},
			&cli.StringFlag{
				Name:  "instruction",
				Usage: "instruction to prefix onto the prompt",
			},
			&cli.Float64Flag{
				Name:  "temperature",
				Usage: "sampling temperature (backend default when unset)",
			},
			&cli.Float64Flag{
				Name:  "top-p",
				Usage: "nucleus sampling mass (backend default when unset)",
			},
			&cli.BoolFlag{
				Name:  "html",
				Usage: "print the completion rendered as HTML",
			},
		},
		Action: runComplete,
	}
}

func runComplete(c *cli.Context) error {
	if c.Bool("instruct") && c.IsSet("instruction") {
		return fmt.Errorf("--instruct and --instruction cannot be combined")
	}

	cursor, selection, err := cursorFlags(c)
	if err != nil {
		return err
	}

	a, err := setup(c.Context, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	doc, err := document.OpenFile(c.String("file"), cursor, selection)
	if err != nil {
		return err
	}
	if !c.IsSet("line") {
		doc.SetCursor(defaultCursor(doc.Lines(), cursor.Column, c.IsSet("column")))
	}

	var opts service.Options
	if c.IsSet("temperature") {
		v := c.Float64("temperature")
		opts.Temperature = &v
	}
	if c.IsSet("top-p") {
		v := c.Float64("top-p")
		opts.TopP = &v
	}

	var result service.CompletionResult
	switch {
	case c.Bool("instruct"):
		collector := instruction.NewExclusive(screenCollector{label: "Instructions"})
		result, err = a.Completion.CompleteWithInstructions(c.Context, doc, collector, opts)
	case c.IsSet("instruction"):
		result, err = a.Completion.CompleteWithInstructions(c.Context, doc, instruction.Static(c.String("instruction")), opts)
	default:
		result, err = a.Completion.Complete(c.Context, doc, opts)
	}

	switch {
	case errors.Is(err, service.ErrEmptyPrompt):
		fmt.Fprintln(c.App.ErrWriter, "Nothing to complete: select text or place the cursor after some text.")
		return nil
	case errors.Is(err, service.ErrInstructionAbandoned):
		return nil
	case err != nil:
		return err
	}

	slog.Debug("Completion inserted", "file", doc.Path(), "at", result.InsertionPoint.String())

	out := result.Text
	if c.Bool("html") {
		out, err = a.Renderer.ToHTML([]byte(result.Text))
		if err != nil {
			return err
		}
	}
	fmt.Fprintln(c.App.Writer, out)
	return nil
}

// cursorFlags converts the 1-based cursor and selection flags to document positions.
func cursorFlags(c *cli.Context) (document.Position, *document.Range, error) {
	var cursor document.Position
	if c.IsSet("line") {
		if c.Int("line") < 1 {
			return document.Position{}, nil, fmt.Errorf("--line must be at least 1")
		}
		cursor.Line = c.Int("line") - 1
	}
	if c.IsSet("column") {
		if c.Int("column") < 1 {
			return document.Position{}, nil, fmt.Errorf("--column must be at least 1")
		}
		cursor.Column = c.Int("column") - 1
	}

	from, to := c.String("select-from"), c.String("select-to")
	if from == "" && to == "" {
		return cursor, nil, nil
	}
	if from == "" || to == "" {
		return document.Position{}, nil, fmt.Errorf("--select-from and --select-to must be given together")
	}
	start, err := parsePosition(from)
	if err != nil {
		return document.Position{}, nil, fmt.Errorf("invalid --select-from: %w", err)
	}
	end, err := parsePosition(to)
	if err != nil {
		return document.Position{}, nil, fmt.Errorf("invalid --select-to: %w", err)
	}
	return cursor, &document.Range{From: start, To: end}, nil
}

// parsePosition parses a 1-based LINE:COLUMN into a document position.
func parsePosition(s string) (document.Position, error) {
	lineStr, colStr, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return document.Position{}, fmt.Errorf("%q is not LINE:COLUMN", s)
	}
	line, err := strconv.Atoi(lineStr)
	if err != nil || line < 1 {
		return document.Position{}, fmt.Errorf("%q has an invalid line", s)
	}
	col, err := strconv.Atoi(colStr)
	if err != nil || col < 1 {
		return document.Position{}, fmt.Errorf("%q has an invalid column", s)
	}
	return document.Position{Line: line - 1, Column: col - 1}, nil
}

// defaultCursor places the cursor on the last non-blank line of lines, at
// column when given and at the end of the line otherwise.
func defaultCursor(lines []string, column int, hasColumn bool) document.Position {
	if len(lines) == 0 {
		return document.Position{}
	}
	line := len(lines) - 1
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			line = i
			break
		}
	}
	if !hasColumn {
		column = len([]rune(lines[line]))
	}
	return document.Position{Line: line, Column: column}
}

// screenCollector opens a terminal screen for the duration of one collection.
type screenCollector struct {
	label string
}

func (s screenCollector) Collect(ctx context.Context) (instruction.Outcome, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return instruction.Outcome{}, fmt.Errorf("failed to open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return instruction.Outcome{}, fmt.Errorf("failed to initialize terminal: %w", err)
	}
	defer screen.Fini()

	return terminal.NewCollector(screen, s.label).Collect(ctx)
}
