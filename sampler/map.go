package sampler

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/optimize"

	"github.com/arloliu/ic50/errs"
	"github.com/arloliu/ic50/internal/options"
)

// MAPConfig controls the posterior mode search.
type MAPConfig struct {
	// Restarts is the number of Nelder-Mead runs per block, each starting from
	// the previous optimum with a fresh simplex.
	Restarts int
	// SimplexSize is the initial simplex edge length.
	SimplexSize float64
	// MaxEvaluations bounds density evaluations per run.
	MaxEvaluations int
	Logger         *slog.Logger
}

// DefaultMAPConfig returns the default mode search settings.
func DefaultMAPConfig() MAPConfig {
	return MAPConfig{
		Restarts:       3,
		SimplexSize:    0.5,
		MaxEvaluations: 5000,
		Logger:         slog.New(slog.DiscardHandler),
	}
}

// Validate implements options.Validator.
func (c *MAPConfig) Validate() error {
	if c.Restarts < 1 {
		return errs.Input("restarts", "must be >= 1, got %d", c.Restarts)
	}
	if !(c.SimplexSize > 0) {
		return errs.Input("simplex size", "must be > 0, got %v", c.SimplexSize)
	}
	if c.MaxEvaluations < 1 {
		return errs.Input("max evaluations", "must be >= 1, got %d", c.MaxEvaluations)
	}

	return nil
}

// MAPOption configures FindMAP.
type MAPOption = options.Option[*MAPConfig]

// WithRestarts sets the number of Nelder-Mead runs per block.
func WithRestarts(n int) MAPOption {
	return options.NoError("WithRestarts", func(c *MAPConfig) { c.Restarts = n })
}

// WithSimplexSize sets the initial simplex size.
func WithSimplexSize(s float64) MAPOption {
	return options.NoError("WithSimplexSize", func(c *MAPConfig) { c.SimplexSize = s })
}

// WithMAPLogger sets the logger of the mode search.
func WithMAPLogger(l *slog.Logger) MAPOption {
	return options.NoError("WithMAPLogger", func(c *MAPConfig) {
		if l != nil {
			c.Logger = l
		}
	})
}

// FindMAP maximizes the target log density with Nelder-Mead starting from
// start, and returns the best point found together with its log density.
//
// Blocked targets are optimized one block at a time with the remaining
// coordinates fixed, which is exact when the blocks are independent. The
// result is never worse than start; a run that fails to improve keeps the
// previous point.
//
// Parameters:
//   - ctx: Checked between blocks
//   - target: Log density to maximize
//   - start: Unconstrained starting point
//   - opts: Mode search options
//
// Returns:
//   - []float64: The best point found
//   - float64: Log density at that point
//   - error: errs.InputError for a bad start or option, errs.NumericalError if
//     start has a non-finite density
func FindMAP(ctx context.Context, target Target, start []float64, opts ...MAPOption) ([]float64, float64, error) {
	cfg := DefaultMAPConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, 0, err
	}
	if len(start) != target.Dim() {
		return nil, 0, errs.Input("start", "expected %d coordinates, got %d", target.Dim(), len(start))
	}

	bt, err := newBlocked(target)
	if err != nil {
		return nil, 0, err
	}

	x := slices.Clone(start)
	for k, blk := range bt.blocks {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		if err := optimizeBlock(bt, k, blk, x, cfg); err != nil {
			return nil, 0, err
		}
	}

	lp := target.LogDensity(x)
	cfg.Logger.Debug("map found", "log_density", lp)

	return x, lp, nil
}

func optimizeBlock(bt *blocked, k int, blk []int, x []float64, cfg MAPConfig) error {
	work := slices.Clone(x)
	objective := func(y []float64) float64 {
		for j, i := range blk {
			work[i] = y[j]
		}
		lp := bt.logDensity(k, work)
		if math.IsNaN(lp) || math.IsInf(lp, 0) {
			return math.Inf(1)
		}

		return -lp
	}

	y := make([]float64, len(blk))
	for j, i := range blk {
		y[j] = x[i]
	}
	best := objective(y)
	if math.IsInf(best, 1) {
		return fmt.Errorf("block %d start: %w", k, errs.Numerical("log density", bt.logDensity(k, x)))
	}

	settings := &optimize.Settings{
		FuncEvaluations: cfg.MaxEvaluations,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-10,
			Relative:   1e-10,
			Iterations: 200,
		},
	}

	for r := range cfg.Restarts {
		res, err := optimize.Minimize(
			optimize.Problem{Func: objective},
			y, settings,
			&optimize.NelderMead{SimplexSize: cfg.SimplexSize},
		)
		if res == nil {
			return fmt.Errorf("block %d: %w", k, err)
		}
		if err != nil {
			cfg.Logger.Debug("nelder-mead stopped", "block", k, "restart", r, "status", res.Status.String(), "error", err)
		}
		if !(res.F < best) {
			break
		}
		best = res.F
		copy(y, res.X)
	}

	for j, i := range blk {
		x[i] = y[j]
	}

	return nil
}
