// Package instruction collects free-form user instructions that steer a completion.
package instruction

import (
	"context"
	"errors"
	"sync"
)

// ErrCollectorBusy is returned when a collection is requested while another
// one is still open.
var ErrCollectorBusy = errors.New("instruction prompt already open")

// Outcome is the resolution of an instruction prompt: either the submitted
// text or a cancellation.
type Outcome struct {
	Text      string
	Submitted bool
}

// Submitted returns an outcome carrying text.
func Submitted(text string) Outcome {
	return Outcome{Text: text, Submitted: true}
}

// Cancelled returns the outcome of an abandoned prompt.
func Cancelled() Outcome {
	return Outcome{}
}

// Collector suspends the caller until the user submits or abandons an instruction.
type Collector interface {
	Collect(ctx context.Context) (Outcome, error)
}

// Pending is a single-resolution handoff between the component that owns the
// prompt (usually an event loop callback) and the caller waiting on it.
// The first Submit or Cancel wins; later calls are ignored.
type Pending struct {
	once    sync.Once
	done    chan struct{}
	outcome Outcome
}

// NewPending creates an unresolved Pending.
func NewPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// Submit resolves p with text. It reports whether this call resolved p.
func (p *Pending) Submit(text string) bool {
	return p.resolve(Submitted(text))
}

// Cancel resolves p as cancelled. It reports whether this call resolved p.
func (p *Pending) Cancel() bool {
	return p.resolve(Cancelled())
}

func (p *Pending) resolve(o Outcome) bool {
	resolved := false
	p.once.Do(func() {
		p.outcome = o
		resolved = true
		close(p.done)
	})
	return resolved
}

// Done is closed once p is resolved.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until p is resolved or ctx is done. When ctx ends first, p is
// cancelled so a late Submit cannot resolve it.
func (p *Pending) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-p.done:
		return p.outcome, nil
	case <-ctx.Done():
		if p.Cancel() {
			return p.outcome, ctx.Err()
		}
		return p.outcome, nil
	}
}

// Static is a Collector that resolves immediately with a fixed instruction.
// Hosts that receive the instruction up front (an HTTP body, a CLI flag) use it.
type Static string

// Collect returns the instruction as submitted.
func (s Static) Collect(ctx context.Context) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	return Submitted(string(s)), nil
}

// Exclusive wraps a Collector so that at most one collection is open at a
// time. Concurrent calls fail with ErrCollectorBusy instead of queueing.
type Exclusive struct {
	mu    sync.Mutex
	open  bool
	inner Collector
}

// NewExclusive wraps c.
func NewExclusive(c Collector) *Exclusive {
	return &Exclusive{inner: c}
}

// Collect delegates to the wrapped collector unless a collection is already open.
func (e *Exclusive) Collect(ctx context.Context) (Outcome, error) {
	e.mu.Lock()
	if e.open {
		e.mu.Unlock()
		return Outcome{}, ErrCollectorBusy
	}
	e.open = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.open = false
		e.mu.Unlock()
	}()

	return e.inner.Collect(ctx)
}
