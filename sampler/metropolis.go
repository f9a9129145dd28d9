package sampler

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/ic50/compress"
	"github.com/arloliu/ic50/errs"
	"github.com/arloliu/ic50/internal/options"
	"github.com/arloliu/ic50/internal/pool"
	"github.com/arloliu/ic50/trace"
)

// Metropolis is a component-wise random-walk Metropolis sampler.
type Metropolis struct {
	cfg Config
}

// New creates a sampler with the given options applied over DefaultConfig.
func New(opts ...Option) (*Metropolis, error) {
	cfg := DefaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	return &Metropolis{cfg: cfg}, nil
}

// Config returns the effective configuration.
func (s *Metropolis) Config() Config {
	return s.cfg
}

// Result is the outcome of a sampling run.
type Result struct {
	// Trace holds every iteration of every chain, warm-up included.
	Trace *trace.Trace
	// Burn is the warm-up length per chain.
	Burn        int
	Diagnostics []ParamDiagnostics
	Warnings    []Warning
	Chains      []ChainStats
	// Scales are the frozen proposal scales of each chain.
	Scales [][]float64
	// Packing is set when the trace was packed.
	Packing *compress.Stats
}

// Posterior returns the trace without the warm-up prefix.
func (r *Result) Posterior() *trace.Trace {
	return r.Trace.Discard(r.Burn)
}

// Sample runs the configured number of chains from the unconstrained start
// point x0 and returns their draws.
//
// It fails before sampling if x0 has the wrong dimension or a log density that
// is not finite. Chains check ctx between tuning windows; on cancellation the
// context error is returned.
//
// Parameters:
//   - ctx: Cancels every chain
//   - target: Log density to sample; BlockedTarget and Transformer are used when implemented
//   - x0: Unconstrained start point shared by the chains
//
// Returns:
//   - *Result: Full trace, diagnostics and warnings
//   - error: errs.InputError or errs.NumericalError for a bad start, or ctx.Err()
func (s *Metropolis) Sample(ctx context.Context, target Target, x0 []float64) (*Result, error) {
	cfg := s.cfg
	dim := target.Dim()
	if len(x0) != dim {
		return nil, errs.Input("initial point", "expected %d coordinates, got %d", dim, len(x0))
	}
	if lp := target.LogDensity(x0); math.IsNaN(lp) || math.IsInf(lp, 0) {
		return nil, fmt.Errorf("initial point: %w", errs.Numerical("log density", lp))
	}

	bt, err := newBlocked(target)
	if err != nil {
		return nil, err
	}

	paramNames := names(target)
	tr, err := trace.New(paramNames, cfg.Chains)
	if err != nil {
		return nil, err
	}
	tr.Reserve(cfg.Draws)

	cfg.Logger.Info("sampling started",
		"chains", cfg.Chains,
		"draws", cfg.Draws,
		"burn", cfg.Burn,
		"parameters", dim,
		"blocks", len(bt.blocks),
	)

	runs := make([]*chainRun, cfg.Chains)
	g, gctx := errgroup.WithContext(ctx)
	for c := range cfg.Chains {
		run := &chainRun{
			cfg:       &cfg,
			target:    bt,
			constrain: constrainer(target),
			trace:     tr,
			chain:     c,
			rng:       rand.New(rand.NewPCG(cfg.Seed, uint64(c)+1)), //nolint:gosec // c is non-negative
		}
		runs[c] = run
		g.Go(func() error {
			return run.run(gctx, x0)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Trace: tr, Burn: cfg.Burn}
	for _, run := range runs {
		res.Chains = append(res.Chains, run.stats)
		res.Scales = append(res.Scales, run.scale)
	}

	res.Diagnostics, err = diagnose(tr.Discard(cfg.Burn), runs, cfg.Draws-cfg.Burn)
	if err != nil {
		return nil, err
	}
	res.Warnings = cfg.warnings(res.Diagnostics)
	for _, w := range res.Warnings {
		cfg.Logger.Warn("convergence warning", "kind", w.Kind.String(), "param", w.Param, "detail", w.String())
		cfg.Observer.ObserveWarning(w)
	}

	if cfg.Packing != 0 {
		stats, err := tr.PackWith(cfg.PackEncoding, cfg.Packing)
		if err != nil {
			return nil, fmt.Errorf("pack trace: %w", err)
		}
		res.Packing = &stats
		cfg.Logger.Debug("trace packed",
			"encoding", cfg.PackEncoding.String(),
			"codec", cfg.Packing.String(),
			"raw_bytes", stats.RawSize,
			"packed_bytes", stats.PackedSize,
		)
	}

	return res, nil
}

type chainRun struct {
	cfg       *Config
	target    *blocked
	constrain func(dst, x []float64) []float64
	trace     *trace.Trace
	chain     int
	rng       *rand.Rand

	scale []float64
	// per coordinate, after warm-up
	accepted  []int
	numerical []int
	stats     ChainStats
}

func (r *chainRun) run(ctx context.Context, x0 []float64) error {
	cfg := r.cfg
	start := time.Now()
	dim := len(x0)
	logger := cfg.Logger.With("chain", r.chain)

	x := slices.Clone(x0)
	if r.chain > 0 {
		r.jitter(x)
	}

	lp := make([]float64, len(r.target.blocks))
	for k := range lp {
		lp[k] = r.target.logDensity(k, x)
		if math.IsNaN(lp[k]) || math.IsInf(lp[k], 0) {
			return fmt.Errorf("chain %d start: %w", r.chain, errs.Numerical("log density", lp[k]))
		}
	}

	r.scale = make([]float64, dim)
	for i := range r.scale {
		r.scale[i] = cfg.InitialScale
	}
	r.accepted = make([]int, dim)
	r.numerical = make([]int, dim)
	window, release := pool.GetFloat64Slice(dim)
	defer release()

	draw := make([]float64, 0, dim)
	stats := ChainStats{Chain: r.chain, Draws: cfg.Draws, Burn: cfg.Burn}

	for step := range cfg.Draws {
		warm := step < cfg.Burn
		for i := range dim {
			k := r.target.blockOf[i]
			old := x[i]
			x[i] = old + r.scale[i]*r.rng.NormFloat64()
			proposed := r.target.logDensity(k, x)
			stats.Proposals++

			if invalid(proposed) {
				x[i] = old
				stats.Numerical++
				if !warm {
					r.numerical[i]++
				}

				continue
			}
			if math.Log(r.rng.Float64()) < proposed-lp[k] {
				lp[k] = proposed
				stats.Accepted++
				window[i]++
				if !warm {
					r.accepted[i]++
				}
			} else {
				x[i] = old
			}
		}

		draw = r.constrain(draw, x)
		if err := r.trace.Append(r.chain, draw); err != nil {
			return err
		}

		if (step+1)%cfg.TuneInterval != 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if warm {
			for i := range r.scale {
				r.scale[i] = tune(r.scale[i], window[i]/float64(cfg.TuneInterval))
				window[i] = 0
			}
			if step+1 == cfg.Burn || (step+1)%(10*cfg.TuneInterval) == 0 {
				logger.Debug("tuning", "step", step+1, "scales", r.scale)
			}
		}
	}

	stats.Duration = time.Since(start)
	r.stats = stats
	cfg.Observer.ObserveChain(stats)
	logger.Info("chain finished",
		"accepted", stats.Accepted,
		"proposals", stats.Proposals,
		"numerical_rejections", stats.Numerical,
		slog.Duration("duration", stats.Duration),
	)

	return nil
}

// jitter perturbs the start of secondary chains so that R-hat compares
// chains with different initializations. A perturbed coordinate is kept only
// if its block density stays finite.
func (r *chainRun) jitter(x []float64) {
	for i := range x {
		k := r.target.blockOf[i]
		old := x[i]
		x[i] += r.cfg.InitialScale * r.rng.NormFloat64()
		if lp := r.target.logDensity(k, x); math.IsNaN(lp) || math.IsInf(lp, 0) {
			x[i] = old
		}
	}
}

// tune rescales a proposal standard deviation from the acceptance rate of the
// last window: shrink when proposals are mostly rejected, grow when they are
// mostly accepted.
func tune(scale, rate float64) float64 {
	switch {
	case rate < 0.001:
		return scale * 0.1
	case rate < 0.05:
		return scale * 0.5
	case rate < 0.2:
		return scale * 0.9
	case rate > 0.95:
		return scale * 10
	case rate > 0.75:
		return scale * 2
	case rate > 0.5:
		return scale * 1.1
	default:
		return scale
	}
}

func diagnose(post *trace.Trace, runs []*chainRun, kept int) ([]ParamDiagnostics, error) {
	names := post.Names()
	out := make([]ParamDiagnostics, len(names))
	for p, name := range names {
		chains := make([][]float64, post.Chains())
		d := ParamDiagnostics{Name: name}
		accepted := 0
		for c := range chains {
			v, err := post.ChainValues(c, p)
			if err != nil {
				return nil, err
			}
			chains[c] = v
			accepted += runs[c].accepted[p]
			d.Numerical += runs[c].numerical[p]
		}
		d.Acceptance = float64(accepted) / float64(kept*len(runs))
		d.ESS = ESS(chains)
		d.RHat = SplitRHat(chains)
		out[p] = d
	}

	return out, nil
}
