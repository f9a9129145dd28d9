package regression

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/ic50/dose"
	"github.com/arloliu/ic50/errs"
)

func curve(beta, ic50 float64, conc []float64) []float64 {
	resp := make([]float64, len(conc))
	for i, c := range conc {
		resp[i] = dose.Response(c, beta, ic50)
	}

	return resp
}

func grid(lo, hi, step float64) []float64 {
	var out []float64
	for c := lo; c <= hi+1e-9; c += step {
		out = append(out, c)
	}

	return out
}

func TestAnalyze_Noiseless(t *testing.T) {
	conc := grid(0, 60, 0.5)
	resp := curve(1, 30, conc)

	res, err := Analyze(conc, resp, WithBeta(1))
	require.NoError(t, err)
	require.Len(t, res.AllModels, 3)

	for _, m := range res.AllModels {
		assert.InDelta(t, 30, m.IC50, 0.5, m.Method.String())
	}

	best := res.BestFit
	assert.Same(t, res.AllModels[0], best)
	assert.InDelta(t, 1, best.Slope, 1e-6)
	assert.InDelta(t, 30, best.IC50, 1e-6)
	assert.Greater(t, best.RSquared, 0.999999)
	assert.Less(t, best.RMSE, 1e-6)

	for i := 1; i < len(res.AllModels); i++ {
		assert.GreaterOrEqual(t, res.AllModels[i-1].RSquared, res.AllModels[i].RSquared)
	}
}

func TestAnalyze_Noisy(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	conc := append(grid(0, 120, 5), grid(8, 18, 0.5)...)
	resp := curve(1, 13, conc)
	for i := range resp {
		resp[i] += rng.NormFloat64() * 0.15
	}

	best, err := FitLogistic(conc, resp)
	require.NoError(t, err)
	assert.InDelta(t, 13, best.IC50, 3)
	assert.InDelta(t, 1, best.Beta, 0.3)
	assert.InDelta(t, 0.15, best.RMSE, 0.1)
}

func TestAnalyze_HalfMaxFallback(t *testing.T) {
	// a step response leaves no points inside the logit band
	conc := []float64{0, 10, 20, 30, 40, 50}
	resp := []float64{1, 1, 1, 0, 0, 0}

	res, err := Analyze(conc, resp)
	require.NoError(t, err)
	require.Len(t, res.AllModels, 1)
	assert.Equal(t, MethodHalfMax, res.BestFit.Method)
	assert.InDelta(t, 25, res.BestFit.IC50, 1e-12)
}

func TestAnalyze_HalfMaxIgnoresOutlier(t *testing.T) {
	conc := []float64{0, 5, 10, 15, 20, 25, 30, 35, 40}
	resp := []float64{1, 0.1, 1, 1, 1, 0, 0, 0.9, 0}

	m := fitHalfMax(sortedPoints(conc, resp), 1)
	assert.InDelta(t, 22.5, m.IC50, 1e-12)
}

func TestAnalyze_SinglePoint(t *testing.T) {
	best, err := FitLogistic([]float64{7}, []float64{0.4})
	require.NoError(t, err)
	assert.Equal(t, MethodHalfMax, best.Method)
	assert.False(t, math.IsNaN(best.IC50))
	assert.Zero(t, best.RSquared)
}

func TestAnalyze_Errors(t *testing.T) {
	_, err := Analyze(nil, nil)
	require.True(t, errs.IsInput(err))

	_, err = Analyze([]float64{1, 2}, []float64{1})
	require.True(t, errs.IsInput(err))

	_, err = Analyze([]float64{1}, []float64{1}, WithClip(0.7))
	require.True(t, errs.IsInput(err))

	_, err = Analyze([]float64{1}, []float64{1}, WithMinPoints(1))
	require.True(t, errs.IsInput(err))

	_, err = Analyze([]float64{1}, []float64{1}, WithBeta(math.Inf(1)))
	require.ErrorContains(t, err, "option WithBeta")
}

func TestMethod(t *testing.T) {
	for _, m := range []Method{MethodLogit, MethodUnitSlope, MethodHalfMax} {
		assert.Equal(t, m, MethodFromString(m.String()))
	}
	assert.Equal(t, Method(-1), MethodFromString("cubic"))
	assert.Equal(t, "unknown", Method(42).String())
}

func TestModel_String(t *testing.T) {
	m := &Model{Method: MethodLogit, Beta: 1, IC50: 42, Slope: 1, RSquared: 0.99}
	assert.Contains(t, m.String(), "logit")
	assert.InDelta(t, 0.5, m.Estimate(42), 1e-15)

	assert.Equal(t, "Result{BestFit: nil}", (&Result{}).String())
}
