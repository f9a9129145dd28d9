package sampler

import (
	"fmt"
	"math"
)

// Target is an unnormalized log density over R^Dim.
type Target interface {
	Dim() int
	LogDensity(x []float64) float64
}

// BlockedTarget is a Target whose log density is the sum of BlockLogDensity
// over Blocks, where block b depends only on the coordinates in Blocks()[b].
type BlockedTarget interface {
	Target
	Blocks() [][]int
	BlockLogDensity(b int, x []float64) float64
}

// Transformer maps sampler coordinates to named parameter values.
type Transformer interface {
	Names() []string
	Constrain(dst, x []float64) []float64
}

// blocked adapts any Target to the blocked view used by the chains.
type blocked struct {
	t       Target
	bt      BlockedTarget
	blocks  [][]int
	blockOf []int
}

func newBlocked(t Target) (*blocked, error) {
	b := &blocked{t: t}
	dim := t.Dim()

	if bt, ok := t.(BlockedTarget); ok {
		b.bt = bt
		b.blocks = bt.Blocks()
	} else {
		all := make([]int, dim)
		for i := range all {
			all[i] = i
		}
		b.blocks = [][]int{all}
	}

	b.blockOf = make([]int, dim)
	for i := range b.blockOf {
		b.blockOf[i] = -1
	}
	for k, blk := range b.blocks {
		for _, i := range blk {
			if i < 0 || i >= dim || b.blockOf[i] >= 0 {
				return nil, fmt.Errorf("invalid block layout: coordinate %d", i)
			}
			b.blockOf[i] = k
		}
	}
	for i, k := range b.blockOf {
		if k < 0 {
			return nil, fmt.Errorf("invalid block layout: coordinate %d not in any block", i)
		}
	}

	return b, nil
}

func (b *blocked) logDensity(k int, x []float64) float64 {
	if b.bt != nil {
		return b.bt.BlockLogDensity(k, x)
	}

	return b.t.LogDensity(x)
}

// invalid reports values the sampler must reject as numerical failures.
func invalid(lp float64) bool {
	return math.IsNaN(lp) || math.IsInf(lp, 1)
}

func names(t Target) []string {
	if tr, ok := t.(Transformer); ok {
		return tr.Names()
	}

	out := make([]string, t.Dim())
	for i := range out {
		out[i] = fmt.Sprintf("x[%d]", i)
	}

	return out
}

func constrainer(t Target) func(dst, x []float64) []float64 {
	if tr, ok := t.(Transformer); ok {
		return tr.Constrain
	}

	return func(dst, x []float64) []float64 {
		return append(dst[:0], x...)
	}
}
