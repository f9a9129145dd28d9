package regression

import (
	"fmt"
	"strings"

	"github.com/arloliu/ic50/dose"
)

// Method identifies how a Model was fitted.
type Method int

const (
	// MethodLogit is the least-squares fit of the logit-linearized curve.
	MethodLogit Method = iota
	// MethodUnitSlope is the logit fit with the slope fixed at 1.
	MethodUnitSlope
	// MethodHalfMax locates the half-maximum crossing.
	MethodHalfMax
)

var methodNames = map[Method]string{
	MethodLogit:     "logit",
	MethodUnitSlope: "unit-slope",
	MethodHalfMax:   "half-max",
}

// String returns the method name.
func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}

	return "unknown"
}

// MethodFromString returns the Method for a case-insensitive name, or
// Method(-1) if the name is unknown.
func MethodFromString(name string) Method {
	for m, n := range methodNames {
		if strings.EqualFold(n, name) {
			return m
		}
	}

	return Method(-1)
}

// Model is a fitted curve y = Beta / (1 + exp(Slope*(c - IC50))).
type Model struct {
	// Method is the fitting method.
	Method Method
	// Beta is the response amplitude.
	Beta float64
	// IC50 is the half-maximal concentration.
	IC50 float64
	// Slope is the steepness; 1 for MethodUnitSlope and MethodHalfMax.
	Slope float64
	// RSquared is the coefficient of determination on the response scale.
	RSquared float64
	// RMSE is the root mean square error on the response scale.
	RMSE float64
	// N is the number of points the method used.
	N int
	// Formula is a human-readable form of the fitted curve.
	Formula string
}

// Estimate evaluates the fitted curve at concentration c.
func (m *Model) Estimate(c float64) float64 {
	return dose.Response(m.Slope*c, m.Beta, m.Slope*m.IC50)
}

// String returns a one-line summary of the model.
func (m *Model) String() string {
	return fmt.Sprintf("Model{Method: %s, R²: %.4f, RMSE: %.4f, Formula: %s}",
		m.Method, m.RSquared, m.RMSE, m.Formula)
}

// Result holds every candidate fit ranked by R², best first.
type Result struct {
	// BestFit is the candidate with the highest R².
	BestFit *Model
	// AllModels holds all candidates that could be fitted.
	AllModels []*Model
}

// String returns a one-line summary of the result.
func (r *Result) String() string {
	if r.BestFit == nil {
		return "Result{BestFit: nil}"
	}

	return fmt.Sprintf("Result{BestFit: %s, TotalModels: %d}", r.BestFit, len(r.AllModels))
}
