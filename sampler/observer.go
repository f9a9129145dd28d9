package sampler

import "time"

// ChainStats summarizes one finished chain.
type ChainStats struct {
	Chain int
	// Draws and Burn are the iterations run and the warm-up among them.
	Draws int
	Burn  int
	// Proposals, Accepted and Numerical count single-coordinate proposals
	// over the whole chain, warm-up included.
	Proposals int
	Accepted  int
	Numerical int
	Duration  time.Duration
}

// Observer receives sampler events, e.g. to export metrics. Implementations
// must be safe for concurrent use since chains report independently.
type Observer interface {
	ObserveChain(stats ChainStats)
	ObserveWarning(w Warning)
}

type nopObserver struct{}

func (nopObserver) ObserveChain(ChainStats) {}
func (nopObserver) ObserveWarning(Warning)  {}
