package application

import "sync"

// SequenceGuard hands out increasing sequence numbers per key so that only the
// most recently issued request for a key may publish its result.
type SequenceGuard struct {
	mu     sync.Mutex
	latest map[string]uint64
}

func NewSequenceGuard() *SequenceGuard {
	return &SequenceGuard{latest: make(map[string]uint64)}
}

// Next issues a new sequence number for key.
func (g *SequenceGuard) Next(key string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.latest[key]++
	return g.latest[key]
}

// IsLatest reports whether seq is still the newest number issued for key.
func (g *SequenceGuard) IsLatest(key string, seq uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.latest[key] == seq
}

// Invalidate advances every tracked key so that no request issued before the
// call can publish. Counters only ever grow.
func (g *SequenceGuard) Invalidate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for key := range g.latest {
		g.latest[key]++
	}
}
