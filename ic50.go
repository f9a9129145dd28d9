// Package ic50 estimates per-drug half-maximal inhibitory concentrations
// (IC50) from dose-response observations with a Bayesian logistic-decay model.
//
// Each drug g is modelled as
//
//	y ~ Normal(beta[g] / (1 + exp(c - ic50[g])), noise[g])
//
// with diffuse Normal priors on beta and ic50 and a half-Cauchy prior on the
// noise standard deviation. The posterior is explored by a component-wise
// random-walk Metropolis sampler started at the posterior mode.
//
// # Core Features
//
//   - Synthetic data generation with a two-pass concentration grid (package synth)
//   - Typed, validated observations and CSV input (package dose)
//   - Closed-form regression starting points (package regression)
//   - Multi-chain sampling with ESS and split R-hat diagnostics (package sampler)
//   - In-memory trace packing with Gorilla encoding and Zstd, S2 or LZ4 (package trace)
//   - Mean and HPD or equal-tailed interval summaries (package summary)
//
// # Basic Usage
//
//	ds, _ := synth.Generate(synth.DefaultConfig())
//
//	res, err := ic50.Fit(ctx, ds,
//	    ic50.WithSamplerOptions(sampler.WithChains(4), sampler.WithSeed(7)),
//	)
//	if err != nil {
//	    return err
//	}
//	for g := range res.Model.Drugs() {
//	    s, _ := res.IC50(g)
//	    fmt.Printf("%s: %.2f [%.2f, %.2f]\n", res.Model.Label(g), s.Mean, s.Lower, s.Upper)
//	}
//
// # Package Structure
//
// Fit chains the stages with their default settings. Each stage lives in its
// own package and can be driven directly for finer control.
package ic50

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/arloliu/ic50/dose"
	"github.com/arloliu/ic50/internal/options"
	"github.com/arloliu/ic50/model"
	"github.com/arloliu/ic50/regression"
	"github.com/arloliu/ic50/sampler"
	"github.com/arloliu/ic50/summary"
)

// Config collects the options forwarded to each stage of Fit.
type Config struct {
	Model      []model.Option
	Regression []regression.Option
	MAP        []sampler.MAPOption
	Sampler    []sampler.Option
	Summary    []summary.Option
	Logger     *slog.Logger
}

// Option configures Fit.
type Option = options.Option[*Config]

// WithModelOptions forwards options to the model builder.
func WithModelOptions(opts ...model.Option) Option {
	return options.NoError("WithModelOptions", func(c *Config) { c.Model = append(c.Model, opts...) })
}

// WithRegressionOptions forwards options to the starting point heuristic.
func WithRegressionOptions(opts ...regression.Option) Option {
	return options.NoError("WithRegressionOptions", func(c *Config) { c.Regression = append(c.Regression, opts...) })
}

// WithMAPOptions forwards options to the posterior mode search.
func WithMAPOptions(opts ...sampler.MAPOption) Option {
	return options.NoError("WithMAPOptions", func(c *Config) { c.MAP = append(c.MAP, opts...) })
}

// WithSamplerOptions forwards options to the Metropolis sampler.
func WithSamplerOptions(opts ...sampler.Option) Option {
	return options.NoError("WithSamplerOptions", func(c *Config) { c.Sampler = append(c.Sampler, opts...) })
}

// WithSummaryOptions forwards options to the summarizer.
func WithSummaryOptions(opts ...summary.Option) Option {
	return options.NoError("WithSummaryOptions", func(c *Config) { c.Summary = append(c.Summary, opts...) })
}

// WithLogger sets the logger passed to every stage. Stage options that set
// their own logger take precedence.
func WithLogger(l *slog.Logger) Option {
	return options.NoError("WithLogger", func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	})
}

// Result is the outcome of Fit.
type Result struct {
	// RunID identifies the run in logs and exported metrics.
	RunID uuid.UUID
	Model *model.Model
	// Start is the unconstrained posterior mode the chains started from.
	Start []float64
	// StartLogDensity is the log posterior at Start.
	StartLogDensity float64
	Sampling        *sampler.Result
	Summary         []summary.Stat
	Duration        time.Duration
}

// Warnings returns the convergence warnings of the sampling run.
func (r *Result) Warnings() []sampler.Warning {
	return r.Sampling.Warnings
}

// IC50 returns the posterior summary of drug g's IC50.
func (r *Result) IC50(g int) (summary.Stat, bool) {
	return r.Stat(model.IC50, g)
}

// Stat returns the posterior summary of parameter p of drug g.
func (r *Result) Stat(p model.Param, g int) (summary.Stat, bool) {
	return summary.Lookup(r.Summary, model.ParamName(p, g))
}

// Fit declares the model for ds, finds the posterior mode from a regression
// starting point, samples the posterior and summarizes it.
//
// Input problems are reported as errs.InputError. Convergence problems do not
// fail the fit; they are returned in the result's sampling warnings.
//
// Parameters:
//   - ctx: Cancels the mode search and the chains
//   - ds: Observations and optional drug labels
//   - opts: Options forwarded to each stage
//
// Returns:
//   - *Result: Model, start point, sampling run and posterior summary
//   - error: Input, numerical or context error of the first failing stage
func Fit(ctx context.Context, ds dose.Dataset, opts ...Option) (*Result, error) {
	cfg := Config{Logger: slog.New(slog.DiscardHandler)}
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	start := time.Now()
	res := &Result{RunID: uuid.New()}
	logger := cfg.Logger.With("run_id", res.RunID.String())

	b, err := model.NewBuilder(append([]model.Option{model.WithLogger(logger)}, cfg.Model...)...)
	if err != nil {
		return nil, err
	}
	if err := b.AddDataset(ds); err != nil {
		return nil, err
	}
	m, err := b.Build()
	if err != nil {
		return nil, err
	}
	res.Model = m

	x0, err := m.InitialPoint(cfg.Regression...)
	if err != nil {
		return nil, err
	}
	mapOpts := append([]sampler.MAPOption{sampler.WithMAPLogger(logger)}, cfg.MAP...)
	res.Start, res.StartLogDensity, err = sampler.FindMAP(ctx, m, x0, mapOpts...)
	if err != nil {
		return nil, fmt.Errorf("find posterior mode: %w", err)
	}
	logger.Info("posterior mode found", "log_density", res.StartLogDensity)

	s, err := sampler.New(append([]sampler.Option{sampler.WithLogger(logger)}, cfg.Sampler...)...)
	if err != nil {
		return nil, err
	}
	res.Sampling, err = s.Sample(ctx, m, res.Start)
	if err != nil {
		return nil, fmt.Errorf("sample posterior: %w", err)
	}

	res.Summary, err = summary.Summarize(res.Sampling.Posterior(), cfg.Summary...)
	if err != nil {
		return nil, fmt.Errorf("summarize posterior: %w", err)
	}

	res.Duration = time.Since(start)
	logger.Info("fit finished",
		"drugs", m.Drugs(),
		"observations", m.Observations(),
		"warnings", len(res.Sampling.Warnings),
		slog.Duration("duration", res.Duration),
	)

	return res, nil
}
