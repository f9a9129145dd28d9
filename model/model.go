package model

import (
	"fmt"
	"math"
	"slices"

	"github.com/arloliu/ic50/dose"
	"github.com/arloliu/ic50/errs"
)

// Param identifies one of the per-drug parameters.
type Param int

const (
	Beta Param = iota
	IC50
	Noise
)

// ParamsPerDrug is the number of parameters each drug contributes.
const ParamsPerDrug = 3

var paramKinds = [ParamsPerDrug]Param{Beta, IC50, Noise}

func (p Param) String() string {
	switch p {
	case Beta:
		return "beta"
	case IC50:
		return "ic50"
	case Noise:
		return "noise"
	default:
		return "unknown"
	}
}

// ParamName returns the canonical name of a parameter, e.g. "ic50[2]".
func ParamName(p Param, drug int) string {
	return fmt.Sprintf("%s[%d]", p, drug)
}

// halfLog2Pi is ln(sqrt(2π)).
var halfLog2Pi = 0.5 * math.Log(2*math.Pi)

// Group is the resolved partition of observations belonging to one drug.
type Group struct {
	Drug  int
	Label string
	// Index holds the positions of the group's observations in the input order.
	Index []int
	Conc  []float64
	Resp  []float64
}

// Len returns the number of observations in the group.
func (g Group) Len() int {
	return len(g.Index)
}

// Model is a declared per-drug logistic-decay model. It is immutable and safe
// for concurrent use.
type Model struct {
	drugs  int
	groups []Group
	// slots maps an observation index to the first parameter slot of its drug.
	slots []int
	obs   []dose.Observation
	names []string

	betaPrior, ic50Prior, noisePrior Prior
}

// Dim returns the number of parameters.
func (m *Model) Dim() int {
	return m.drugs * ParamsPerDrug
}

// Drugs returns the number of drug groups.
func (m *Model) Drugs() int {
	return m.drugs
}

// Names returns the parameter names in slot order.
func (m *Model) Names() []string {
	return slices.Clone(m.names)
}

// Group returns the observations of drug g.
func (m *Model) Group(g int) Group {
	return m.groups[g]
}

// Label returns the display label of drug g.
func (m *Model) Label(g int) string {
	return m.groups[g].Label
}

// Slot returns the parameter vector index of parameter p of drug g.
func (m *Model) Slot(p Param, drug int) int {
	return drug*ParamsPerDrug + int(p)
}

// Observations returns the number of observations.
func (m *Model) Observations() int {
	return len(m.obs)
}

// LogDensity returns the unnormalized log posterior at the unconstrained point
// x, where the noise slots hold log(noise).
//
// The value may be -Inf for points of zero density, or NaN when the noise
// underflows to zero; samplers treat NaN and +Inf as rejected proposals.
func (m *Model) LogDensity(x []float64) float64 {
	lp := 0.0
	for g := range m.drugs {
		lp += m.logPrior(g, x)
	}

	for i, o := range m.obs {
		s := m.slots[i]
		mu := dose.Response(o.Concentration, x[s], x[s+1])
		lp += normalLogProb(o.Measurement, mu, math.Exp(x[s+2]))
	}

	return lp
}

// Blocks returns the parameter slots of each drug. The log posterior is a sum
// of independent per-block terms.
func (m *Model) Blocks() [][]int {
	blocks := make([][]int, m.drugs)
	for g := range blocks {
		blocks[g] = []int{g * ParamsPerDrug, g*ParamsPerDrug + 1, g*ParamsPerDrug + 2}
	}

	return blocks
}

// BlockLogDensity returns the terms of the log posterior that depend on drug
// b's parameters. Summing it over all blocks gives LogDensity.
func (m *Model) BlockLogDensity(b int, x []float64) float64 {
	lp := m.logPrior(b, x)

	s := b * ParamsPerDrug
	beta, ic50, noise := x[s], x[s+1], math.Exp(x[s+2])
	g := &m.groups[b]
	for i, c := range g.Conc {
		lp += normalLogProb(g.Resp[i], dose.Response(c, beta, ic50), noise)
	}

	return lp
}

// CheckedLogDensity is LogDensity that reports NaN and +Inf as an
// errs.NumericalError instead of returning them.
func (m *Model) CheckedLogDensity(x []float64) (float64, error) {
	if len(x) != m.Dim() {
		return 0, errs.Input("point", "expected %d parameters, got %d", m.Dim(), len(x))
	}

	lp := m.LogDensity(x)
	if math.IsNaN(lp) || math.IsInf(lp, 1) {
		return 0, errs.Numerical("log density", lp)
	}

	return lp, nil
}

// logPrior includes the log-Jacobian of the noise transform.
func (m *Model) logPrior(g int, x []float64) float64 {
	s := g * ParamsPerDrug
	logNoise := x[s+2]

	return m.betaPrior.LogProb(x[s]) +
		m.ic50Prior.LogProb(x[s+1]) +
		m.noisePrior.LogProb(math.Exp(logNoise)) + logNoise
}

// normalLogProb is the Normal(mu, sigma) log density at y.
func normalLogProb(y, mu, sigma float64) float64 {
	z := (y - mu) / sigma
	return -0.5*z*z - math.Log(sigma) - halfLog2Pi
}

// Constrain maps an unconstrained point to parameter values, writing into dst
// if it has sufficient capacity.
func (m *Model) Constrain(dst, x []float64) []float64 {
	dst = append(dst[:0], x...)
	for g := range m.drugs {
		s := g*ParamsPerDrug + int(Noise)
		dst[s] = math.Exp(x[s])
	}

	return dst
}

// Unconstrain maps parameter values to the sampler's space. Every noise value
// must be strictly positive and finite.
func (m *Model) Unconstrain(dst, theta []float64) ([]float64, error) {
	if len(theta) != m.Dim() {
		return nil, errs.Input("point", "expected %d parameters, got %d", m.Dim(), len(theta))
	}

	dst = append(dst[:0], theta...)
	for g := range m.drugs {
		s := g*ParamsPerDrug + int(Noise)
		if !(theta[s] > 0) || math.IsInf(theta[s], 1) {
			return nil, errs.InputForDrug("noise", g, "must be positive and finite, got %v", theta[s])
		}
		dst[s] = math.Log(theta[s])
	}

	return dst, nil
}

// Predict returns the expected response of drug g at concentration c under
// the constrained parameter values theta.
func (m *Model) Predict(theta []float64, g int, c float64) float64 {
	s := g * ParamsPerDrug
	return dose.Response(c, theta[s], theta[s+1])
}

// Fitted returns the expected response of every observation, in input order,
// under the constrained parameter values theta.
func (m *Model) Fitted(theta []float64) []float64 {
	out := make([]float64, len(m.obs))
	for i, o := range m.obs {
		s := m.slots[i]
		out[i] = dose.Response(o.Concentration, theta[s], theta[s+1])
	}

	return out
}
