// Package synth generates synthetic dose-response datasets with known ground
// truth, used to validate that the estimator recovers the IC50 it was given.
package synth

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/arloliu/ic50/dose"
	"github.com/arloliu/ic50/errs"
)

// Range is an evenly spaced, inclusive sweep of concentrations.
type Range struct {
	Min, Max float64
	Points   int
}

// Window is a dense sweep centred on a concentration of interest.
type Window struct {
	HalfWidth float64
	Points    int
}

// TwoPassGrid emulates a two-pass experimental design: a coarse sweep over the
// full range, followed by a dense sweep of ±HalfWidth around each center.
//
// The sweeps are concatenated without deduplication; repeated concentrations
// are intentional and stand for repeated measurements. Fine points that would
// fall below zero are clipped to the non-negative half line.
func TwoPassGrid(coarse Range, centers []float64, fine Window) ([]float64, error) {
	if coarse.Points < 1 {
		return nil, errs.Input("coarse points", "must be >= 1, got %d", coarse.Points)
	}
	if coarse.Min < 0 || coarse.Max < coarse.Min || !finite(coarse.Min, coarse.Max) {
		return nil, errs.Input("coarse range", "need 0 <= min <= max, got [%g, %g]", coarse.Min, coarse.Max)
	}
	if fine.Points < 0 || fine.HalfWidth < 0 || !finite(fine.HalfWidth) {
		return nil, errs.Input("fine window", "points and half width must be >= 0")
	}

	grid := make([]float64, 0, coarse.Points+len(centers)*fine.Points)
	grid = append(grid, sweep(coarse.Min, coarse.Max, coarse.Points)...)

	if fine.Points == 0 {
		return grid, nil
	}
	for _, c := range centers {
		if !finite(c) {
			return nil, errs.Input("fine center", "must be finite, got %v", c)
		}
		lo := math.Max(0, c-fine.HalfWidth)
		hi := math.Max(lo, c+fine.HalfWidth)
		grid = append(grid, sweep(lo, hi, fine.Points)...)
	}

	return grid, nil
}

func sweep(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{lo}
	}

	return floats.Span(make([]float64, n), lo, hi)
}

// Config describes a synthetic scenario.
type Config struct {
	// IC50 holds the true IC50 of each drug; its length is the number of drugs.
	IC50 []float64
	// Beta is the shared true response amplitude.
	Beta float64
	// NoiseSD is the standard deviation of the additive Gaussian noise.
	NoiseSD float64
	// Grid is the concentration grid applied to every drug.
	Grid []float64
	// Seed makes generation reproducible.
	Seed uint64
}

// DefaultConfig returns the reference scenario: three drugs with IC50s 42, 13
// and 88, amplitude 1, noise sd 0.15, and a coarse sweep of [0, 120] in steps
// of 5 refined by 21 points within ±5 of each true IC50.
func DefaultConfig() Config {
	ic50 := []float64{42, 13, 88}
	grid, _ := TwoPassGrid(Range{Min: 0, Max: 120, Points: 25}, ic50, Window{HalfWidth: 5, Points: 21})

	return Config{
		IC50:    ic50,
		Beta:    1,
		NoiseSD: 0.15,
		Grid:    grid,
		Seed:    1,
	}
}

// Validate checks the scenario.
func (c Config) Validate() error {
	if len(c.IC50) == 0 {
		return errs.Input("ic50", "at least one drug is required")
	}
	for g, v := range c.IC50 {
		if !finite(v) {
			return errs.InputForDrug("ic50", g, "must be finite, got %v", v)
		}
	}
	if !finite(c.Beta) {
		return errs.Input("beta", "must be finite, got %v", c.Beta)
	}
	if c.NoiseSD < 0 || !finite(c.NoiseSD) {
		return errs.Input("noise sd", "must be finite and >= 0, got %v", c.NoiseSD)
	}
	if len(c.Grid) == 0 {
		return errs.Input("grid", "concentration grid is empty")
	}
	for i, v := range c.Grid {
		if v < 0 || !finite(v) {
			return errs.InputAt("grid", i, "concentration must be finite and >= 0, got %v", v)
		}
	}

	return nil
}

// Response is the noiseless response of a drug with the given amplitude and
// IC50 at concentration c.
func Response(c, beta, ic50 float64) float64 {
	return dose.Response(c, beta, ic50)
}

// Generate draws one noisy observation per (drug, grid point), drug-major, so
// the result holds len(Grid) × len(IC50) observations.
//
// Parameters:
//   - cfg: Scenario with the true parameters, grid and seed
//
// Returns:
//   - dose.Dataset: Unlabelled observations, identical for identical configs
//   - error: errs.InputError if cfg is invalid
func Generate(cfg Config) (dose.Dataset, error) {
	if err := cfg.Validate(); err != nil {
		return dose.Dataset{}, err
	}

	noise := distuv.Normal{Mu: 0, Sigma: cfg.NoiseSD, Src: rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)}

	obs := make([]dose.Observation, 0, len(cfg.Grid)*len(cfg.IC50))
	for g, ic50 := range cfg.IC50 {
		for _, c := range cfg.Grid {
			y := Response(c, cfg.Beta, ic50)
			if cfg.NoiseSD > 0 {
				y += noise.Rand()
			}
			obs = append(obs, dose.Observation{Drug: g, Concentration: c, Measurement: y})
		}
	}

	return dose.Dataset{Observations: obs}, nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}
