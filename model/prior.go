package model

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Prior is a univariate log density. The gonum distuv distributions satisfy it.
type Prior interface {
	LogProb(x float64) float64
}

// DefaultScale is the scale of the default diffuse priors (100²).
const DefaultScale = 100 * 100

// HalfCauchy is a Cauchy distribution centred at zero and folded onto the
// non-negative half line.
type HalfCauchy struct {
	Scale float64
}

// LogProb returns the log density at x, or -Inf for negative x.
func (h HalfCauchy) LogProb(x float64) float64 {
	if x < 0 {
		return math.Inf(-1)
	}

	return math.Ln2 + distuv.StudentsT{Mu: 0, Sigma: h.Scale, Nu: 1}.LogProb(x)
}

// NormalPrior returns a Normal(mu, sd) prior.
func NormalPrior(mu, sd float64) Prior {
	return distuv.Normal{Mu: mu, Sigma: sd}
}

func defaultBetaPrior() Prior  { return NormalPrior(0, DefaultScale) }
func defaultIC50Prior() Prior  { return NormalPrior(0, DefaultScale) }
func defaultNoisePrior() Prior { return HalfCauchy{Scale: DefaultScale} }
