package indexer

import "sync/atomic"

// runGuard admits one pipeline run at a time. It records the collection
// being built so a rejected caller can be told what is in progress.
type runGuard struct {
	target atomic.Pointer[string] // nil when idle
}

// begin claims the guard for a run into collection; false means another
// run holds it
func (g *runGuard) begin(collection string) bool {
	return g.target.CompareAndSwap(nil, &collection)
}

func (g *runGuard) end() {
	g.target.Store(nil)
}

func (g *runGuard) active() (string, bool) {
	p := g.target.Load()
	if p == nil {
		return "", false
	}
	return *p, true
}
