package sweep

import (
	"sync/atomic"
)

// Guard admits at most one sweep attempt at a time.
type Guard struct {
	busy atomic.Bool
}

// TryBegin marks an attempt as in progress. It returns false, changing
// nothing, if one already is.
func (g *Guard) TryBegin() bool {
	return g.busy.CompareAndSwap(false, true)
}

// End marks the in progress attempt as finished.
func (g *Guard) End() {
	g.busy.Store(false)
}

func (g *Guard) InProgress() bool {
	return g.busy.Load()
}
