package services

import "sync"

// Generations numbers the versions of each user's collection. Every write
// advances the number; a result computed under a number that is no longer
// current is stale. It may still be returned to its caller but must not be
// cached or pushed to subscribers.
type Generations struct {
	mu     sync.Mutex
	latest map[string]uint64
}

func NewGenerations() *Generations {
	return &Generations{latest: make(map[string]uint64)}
}

// Advance issues the next number for userID.
func (g *Generations) Advance(userID string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.latest[userID]++
	return g.latest[userID]
}

// IsLatest reports whether gen is still the current number for userID.
func (g *Generations) IsLatest(userID string, gen uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.latest[userID] == gen
}

// Current returns the last number issued for userID, zero if none.
func (g *Generations) Current(userID string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.latest[userID]
}
