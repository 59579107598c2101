package service

import (
	"sync"

	"libllm/internal/document"
)

// Guard rejects a second completion on a document while one is pending.
// Documents that do not implement document.Keyed are never guarded.
type Guard struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

// NewGuard creates an empty Guard.
func NewGuard() *Guard {
	return &Guard{pending: make(map[string]struct{})}
}

// Acquire marks doc as busy. The returned release must be called once the
// completion has finished.
func (g *Guard) Acquire(doc document.Document) (release func(), err error) {
	keyed, ok := doc.(document.Keyed)
	if !ok {
		return func() {}, nil
	}
	key := keyed.Key()

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.pending[key]; busy {
		return nil, ErrBusy
	}
	g.pending[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.pending, key)
			g.mu.Unlock()
		})
	}, nil
}
