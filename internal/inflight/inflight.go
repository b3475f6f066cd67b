// Package inflight serializes mutations per entity: while a key is held, a
// second acquire fails instead of queueing. Callers surface the rejection
// to the client, they never silently drop it.
package inflight

import "sync"

type Guard struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

func New() *Guard {
	return &Guard{busy: make(map[string]struct{})}
}

// TryAcquire marks key busy. It reports false when a mutation on the same
// key is already in flight.
func (g *Guard) TryAcquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.busy[key]; ok {
		return false
	}
	g.busy[key] = struct{}{}
	return true
}

func (g *Guard) Release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.busy, key)
}
