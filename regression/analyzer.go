package regression

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/arloliu/ic50/errs"
	"github.com/arloliu/ic50/internal/options"
)

// Analyze fits every candidate method to one drug's observations and ranks
// them by R², best first.
//
// The half-maximum fit always succeeds, so a non-empty input always yields a
// BestFit. The logit fits only use points within Window of the half-maximum
// estimate, keeping noise on the plateaus from flattening the slope. They are
// skipped when too few points lie strictly inside the clipped (0, beta) band or
// when the fitted slope is not a decay.
//
// Parameters:
//   - conc: Concentrations
//   - resp: Responses, aligned with conc
//   - opts: Fitting options
//
// Returns:
//   - *Result: Ranked candidate models
//   - error: errs.InputError for empty or mismatched input
func Analyze(conc, resp []float64, opts ...Option) (*Result, error) {
	cfg := DefaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}
	if len(conc) != len(resp) {
		return nil, errs.Input("observations", "mismatched data lengths: %d concentrations vs %d responses", len(conc), len(resp))
	}
	if len(conc) == 0 {
		return nil, errs.Input("observations", "no data points")
	}

	pts := sortedPoints(conc, resp)
	beta := cfg.Beta
	if math.IsNaN(beta) {
		beta = estimateBeta(pts)
	}

	halfMax := fitHalfMax(pts, beta)
	models := make([]*Model, 0, 3)
	if m := fitLogit(pts, beta, halfMax.IC50, cfg); m != nil {
		models = append(models, m)
	}
	if m := fitUnitSlope(pts, beta, halfMax.IC50, cfg); m != nil {
		models = append(models, m)
	}
	models = append(models, halfMax)

	// stable so that ties keep the logit > unit-slope > half-max preference
	slices.SortStableFunc(models, func(a, b *Model) int {
		return cmp.Compare(b.RSquared, a.RSquared)
	})

	return &Result{BestFit: models[0], AllModels: models}, nil
}

// FitLogistic returns the best candidate fit of Analyze.
func FitLogistic(conc, resp []float64, opts ...Option) (*Model, error) {
	res, err := Analyze(conc, resp, opts...)
	if err != nil {
		return nil, err
	}

	return res.BestFit, nil
}

type point struct{ c, y float64 }

func sortedPoints(conc, resp []float64) []point {
	pts := make([]point, len(conc))
	for i := range conc {
		pts[i] = point{conc[i], resp[i]}
	}
	slices.SortStableFunc(pts, func(a, b point) int { return cmp.Compare(a.c, b.c) })

	return pts
}

// estimateBeta averages the responses of the lowest-concentration tenth of the
// points, where the curve sits on its upper plateau.
func estimateBeta(pts []point) float64 {
	k := max(1, (len(pts)+9)/10)
	sum := 0.0
	for _, p := range pts[:k] {
		sum += p.y
	}

	return sum / float64(k)
}

// logitPoints returns the concentrations and logit-transformed responses of the
// points inside the clipped band and the window around center.
func logitPoints(pts []point, beta, center float64, cfg Config) (xs, zs []float64) {
	if beta == 0 {
		return nil, nil
	}
	clip := cfg.Clip
	for _, p := range pts {
		if math.Abs(p.c-center) > cfg.Window {
			continue
		}
		r := p.y / beta
		if r <= clip || r >= 1-clip {
			continue
		}
		xs = append(xs, p.c)
		zs = append(zs, math.Log(1/r-1))
	}

	return xs, zs
}

func fitLogit(pts []point, beta, center float64, cfg Config) *Model {
	xs, zs := logitPoints(pts, beta, center, cfg)
	if len(xs) < cfg.MinPoints || floats.Min(xs) == floats.Max(xs) {
		return nil
	}

	alpha, slope := stat.LinearRegression(xs, zs, nil, false)
	if slope <= 0 || math.IsNaN(slope) {
		return nil
	}
	ic50 := -alpha / slope
	if math.IsNaN(ic50) || math.IsInf(ic50, 0) {
		return nil
	}

	return newModel(MethodLogit, pts, beta, ic50, slope, len(xs))
}

func fitUnitSlope(pts []point, beta, center float64, cfg Config) *Model {
	xs, zs := logitPoints(pts, beta, center, cfg)
	if len(xs) < cfg.MinPoints {
		return nil
	}

	floats.Sub(xs, zs)

	return newModel(MethodUnitSlope, pts, beta, stat.Mean(xs, nil), 1, len(xs))
}

// fitHalfMax places the IC50 at the split between adjacent distinct
// concentrations that best separates responses above beta/2 from those below.
func fitHalfMax(pts []point, beta float64) *Model {
	half := beta / 2

	var (
		uniq         []float64
		above, below []int
	)
	for _, p := range pts {
		if len(uniq) == 0 || uniq[len(uniq)-1] != p.c {
			uniq = append(uniq, p.c)
			above = append(above, 0)
			below = append(below, 0)
		}
		k := len(uniq) - 1
		if (p.y-half)*math.Copysign(1, beta) > 0 {
			above[k]++
		} else {
			below[k]++
		}
	}

	// cost of split s: points left of s below half plus points right of s above
	cost := 0
	for _, a := range above {
		cost += a
	}
	best, bestCost := 0, cost
	for s := 1; s <= len(uniq); s++ {
		cost += below[s-1] - above[s-1]
		if cost < bestCost {
			best, bestCost = s, cost
		}
	}

	var ic50 float64
	switch best {
	case 0:
		ic50 = uniq[0]
	case len(uniq):
		ic50 = uniq[len(uniq)-1]
	default:
		ic50 = (uniq[best-1] + uniq[best]) / 2
	}

	return newModel(MethodHalfMax, pts, beta, ic50, 1, len(pts))
}

func newModel(method Method, pts []point, beta, ic50, slope float64, n int) *Model {
	m := &Model{
		Method: method,
		Beta:   beta,
		IC50:   ic50,
		Slope:  slope,
		N:      n,
	}
	m.Formula = fmt.Sprintf("y = %.4g / (1 + exp(%.4g*(c - %.4g)))", beta, slope, ic50)

	observed := make([]float64, len(pts))
	predicted := make([]float64, len(pts))
	for i, p := range pts {
		observed[i] = p.y
		predicted[i] = m.Estimate(p.c)
	}
	m.RSquared = calculateRSquared(observed, predicted)
	m.RMSE = calculateRMSE(observed, predicted)

	return m
}

// calculateRSquared returns 0 instead of NaN when the observations are constant.
func calculateRSquared(observed, predicted []float64) float64 {
	if len(observed) < 2 || floats.Min(observed) == floats.Max(observed) {
		return 0
	}

	return stat.RSquaredFrom(predicted, observed, nil)
}

func calculateRMSE(observed, predicted []float64) float64 {
	if len(observed) == 0 {
		return 0
	}

	return floats.Distance(observed, predicted, 2) / math.Sqrt(float64(len(observed)))
}
