package api

import "sync"

// guard admits at most one mutating operation per adapter name.
type guard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func newGuard() *guard {
	return &guard{inFlight: make(map[string]struct{})}
}

// acquire reports whether name was free; the caller must release it.
func (g *guard) acquire(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inFlight[name]; busy {
		return false
	}
	g.inFlight[name] = struct{}{}
	return true
}

func (g *guard) release(name string) {
	g.mu.Lock()
	delete(g.inFlight, name)
	g.mu.Unlock()
}
