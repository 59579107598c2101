// Package terminal provides a full-screen terminal prompt for collecting
// completion instructions.
package terminal

import (
	"context"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"libllm/internal/instruction"
)

var (
	styleLabel = tcell.StyleDefault.Background(tcell.ColorBlue).Foreground(tcell.ColorWhite).Bold(true)
	styleInput = tcell.StyleDefault.Background(tcell.ColorBlue).Foreground(tcell.ColorWhite)
	styleHint  = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

const hint = "Enter: submit  Esc: cancel  Ctrl+V: paste"

// Collector asks for an instruction on a single input line of an initialized
// tcell screen. Enter submits, Esc cancels. The caller owns the screen's
// lifecycle (Init/Fini).
type Collector struct {
	screen tcell.Screen
	label  string
	paste  func() (string, error)
}

// NewCollector creates a collector drawing on screen.
func NewCollector(screen tcell.Screen, label string) *Collector {
	return &Collector{
		screen: screen,
		label:  label,
		paste:  clipboard.ReadAll,
	}
}

// Collect runs the prompt until the user submits, cancels, or ctx ends.
func (c *Collector) Collect(ctx context.Context) (instruction.Outcome, error) {
	pending := instruction.NewPending()
	input := &inputLine{}

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.loop(input, pending)
	}()

	out, err := pending.Wait(ctx)
	if err != nil {
		// Wake the event loop so it observes the cancellation.
		_ = c.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}
	<-done
	return out, err
}

func (c *Collector) loop(input *inputLine, pending *instruction.Pending) {
	for {
		c.draw(input)

		switch ev := c.screen.PollEvent().(type) {
		case nil:
			// Screen was finalized underneath us.
			pending.Cancel()
			return
		case *tcell.EventResize:
			c.screen.Sync()
		case *tcell.EventKey:
			c.handleKey(ev, input, pending)
		}

		select {
		case <-pending.Done():
			return
		default:
		}
	}
}

func (c *Collector) handleKey(ev *tcell.EventKey, input *inputLine, pending *instruction.Pending) {
	switch ev.Key() {
	case tcell.KeyEsc:
		pending.Cancel()
	case tcell.KeyEnter:
		pending.Submit(input.String())
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		input.backspace()
	case tcell.KeyCtrlV:
		if text, err := c.paste(); err == nil {
			input.insert(singleLine(text))
		}
	case tcell.KeyRune:
		input.insert(string(ev.Rune()))
	}
}

func (c *Collector) draw(input *inputLine) {
	c.screen.Clear()
	width, height := c.screen.Size()
	if width <= 0 || height <= 0 {
		return
	}
	row := height - 1

	for x := 0; x < width; x++ {
		c.screen.SetContent(x, row, ' ', nil, styleInput)
	}
	x := drawText(c.screen, 0, row, width, c.label+": ", styleLabel)
	x = drawText(c.screen, x, row, width, input.String(), styleInput)
	if x >= width {
		x = width - 1
	}
	c.screen.ShowCursor(x, row)

	if row > 0 {
		drawText(c.screen, 0, row-1, width, hint, styleHint)
	}
	c.screen.Show()
}

// drawText draws s starting at column x and returns the column after it.
func drawText(s tcell.Screen, x, y, width int, text string, style tcell.Style) int {
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if x+rw > width {
			break
		}
		s.SetContent(x, y, r, nil, style)
		for i := 1; i < rw; i++ {
			s.SetContent(x+i, y, ' ', nil, style)
		}
		x += rw
	}
	return x
}

type inputLine struct {
	value []rune
}

func (l *inputLine) insert(s string) {
	l.value = append(l.value, []rune(s)...)
}

func (l *inputLine) backspace() {
	if len(l.value) > 0 {
		l.value = l.value[:len(l.value)-1]
	}
}

func (l *inputLine) String() string {
	return string(l.value)
}

// singleLine folds pasted line breaks into spaces.
func singleLine(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
