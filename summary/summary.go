package summary

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/arloliu/ic50/errs"
	"github.com/arloliu/ic50/internal/options"
	"github.com/arloliu/ic50/sampler"
	"github.com/arloliu/ic50/trace"
)

// Stat is the posterior summary of one parameter.
type Stat struct {
	Name  string
	Mean  float64
	SD    float64
	Lower float64
	Upper float64
	// Mass is the requested interval mass.
	Mass float64
	// Draws is the number of pooled draws the summary is computed from.
	Draws int
	// ESS and RHat are computed over the chains; NaN when undefined.
	ESS  float64
	RHat float64
}

// Width returns Upper - Lower.
func (s Stat) Width() float64 {
	return s.Upper - s.Lower
}

// Contains reports whether v lies in the credible interval.
func (s Stat) Contains(v float64) bool {
	return v >= s.Lower && v <= s.Upper
}

// Summarize computes a Stat for every selected parameter of tr.
//
// Parameters:
//   - tr: Trace to summarize, usually the post-warm-up view
//   - opts: Burn-in, interval kind and mass, parameter selection
//
// Returns:
//   - []Stat: One summary per parameter, in trace or requested order
//   - error: errs.InputError when no draws remain after burn-in or when a
//     requested parameter does not exist
func Summarize(tr *trace.Trace, opts ...Option) ([]Stat, error) {
	cfg := DefaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	view := tr.Discard(cfg.Burn)
	if view.Len() == 0 {
		return nil, errs.Input("trace", "no draws left after discarding %d of %d", cfg.Burn, tr.Len())
	}

	names := cfg.Params
	if len(names) == 0 {
		names = view.Names()
	}

	out := make([]Stat, 0, len(names))
	for _, name := range names {
		p, ok := view.Index(name)
		if !ok {
			return nil, errs.Input("params", "unknown parameter %q", name)
		}

		chains := make([][]float64, view.Chains())
		pooled := make([]float64, 0, view.Len()*view.Chains())
		for c := range chains {
			v, err := view.ChainValues(c, p)
			if err != nil {
				return nil, err
			}
			chains[c] = v
			pooled = append(pooled, v...)
		}

		out = append(out, summarize(name, pooled, chains, cfg))
	}

	return out, nil
}

// Lookup returns the Stat with the given name.
func Lookup(stats []Stat, name string) (Stat, bool) {
	i := slices.IndexFunc(stats, func(s Stat) bool { return s.Name == name })
	if i < 0 {
		return Stat{}, false
	}

	return stats[i], true
}

func summarize(name string, pooled []float64, chains [][]float64, cfg Config) Stat {
	s := Stat{Name: name, Mass: cfg.Mass, Draws: len(pooled)}
	s.Mean, s.SD = stat.MeanStdDev(pooled, nil)
	if len(pooled) == 1 {
		s.SD = 0
	}

	slices.Sort(pooled)
	switch cfg.Interval {
	case EqualTailed:
		s.Lower = stat.Quantile((1-cfg.Mass)/2, stat.Empirical, pooled, nil)
		s.Upper = stat.Quantile((1+cfg.Mass)/2, stat.Empirical, pooled, nil)
	default:
		s.Lower, s.Upper = HPDInterval(pooled, cfg.Mass, s.Mean)
	}
	s.Lower = math.Min(s.Lower, s.Mean)
	s.Upper = math.Max(s.Upper, s.Mean)

	s.ESS = sampler.ESS(chains)
	s.RHat = sampler.SplitRHat(chains)

	return s
}

// HPDInterval returns the narrowest interval spanning ceil(mass*n) of the
// sorted draws that also contains mean. When no such window contains mean the
// overall narrowest window is returned.
func HPDInterval(sorted []float64, mass, mean float64) (float64, float64) {
	n := len(sorted)
	if n == 0 {
		return math.NaN(), math.NaN()
	}

	k := int(math.Ceil(mass * float64(n)))
	k = min(max(k, 1), n)

	best, bestWidth := -1, math.Inf(1)
	fallback, fallbackWidth := 0, math.Inf(1)
	for i := 0; i+k-1 < n; i++ {
		lo, hi := sorted[i], sorted[i+k-1]
		w := hi - lo
		if w < fallbackWidth {
			fallback, fallbackWidth = i, w
		}
		if lo <= mean && mean <= hi && w < bestWidth {
			best, bestWidth = i, w
		}
	}
	if best < 0 {
		best = fallback
	}

	return sorted[best], sorted[best+k-1]
}
