package sampler

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/arloliu/ic50/errs"
	"github.com/arloliu/ic50/format"
)

// gaussian is an independent normal target, optionally exposed as blocks.
type gaussian struct {
	mu, sd []float64
	calls  int
}

func (g *gaussian) Dim() int { return len(g.mu) }

func (g *gaussian) LogDensity(x []float64) float64 {
	lp := 0.0
	for i := range x {
		z := (x[i] - g.mu[i]) / g.sd[i]
		lp -= 0.5 * z * z
	}

	return lp
}

type blockedGaussian struct {
	gaussian
	lock sync.Mutex
}

func (b *blockedGaussian) Blocks() [][]int {
	out := make([][]int, b.Dim())
	for i := range out {
		out[i] = []int{i}
	}

	return out
}

func (b *blockedGaussian) BlockLogDensity(k int, x []float64) float64 {
	b.lock.Lock()
	b.calls++
	b.lock.Unlock()

	z := (x[k] - b.gaussian.mu[k]) / b.sd[k]
	return -0.5 * z * z
}

// halfLine has NaN density above 1, emulating an overflow region.
type halfLine struct{}

func (halfLine) Dim() int { return 1 }

func (halfLine) LogDensity(x []float64) float64 {
	if x[0] > 1 {
		return math.NaN()
	}

	return -0.5 * x[0] * x[0]
}

func TestMetropolis_Gaussian(t *testing.T) {
	target := &gaussian{mu: []float64{3, -1}, sd: []float64{1, 0.2}}

	s, err := New(WithDraws(6000), WithBurn(2000), WithChains(2), WithSeed(11))
	require.NoError(t, err)

	res, err := s.Sample(context.Background(), target, []float64{0, 0})
	require.NoError(t, err)

	require.Equal(t, 6000, res.Trace.Len())
	post := res.Posterior()
	require.Equal(t, 4000, post.Len())
	assert.Equal(t, []string{"x[0]", "x[1]"}, post.Names())

	for i, name := range post.Names() {
		v, err := post.Values(name)
		require.NoError(t, err)
		mean, sd := stat.MeanStdDev(v, nil)
		assert.InDelta(t, target.mu[i], mean, 0.15*target.sd[i]*3, name)
		assert.InDelta(t, target.sd[i], sd, 0.15*target.sd[i], name)
	}

	require.Len(t, res.Diagnostics, 2)
	for _, d := range res.Diagnostics {
		assert.Greater(t, d.ESS, 300.0, d.Name)
		assert.Less(t, d.RHat, 1.05, d.Name)
		assert.Greater(t, d.Acceptance, 0.1, d.Name)
		assert.Less(t, d.Acceptance, 0.9, d.Name)
		assert.Zero(t, d.Numerical)
	}
	assert.Empty(t, res.Warnings)

	// tuning adapts the scale to each coordinate
	assert.Greater(t, res.Scales[0][0], res.Scales[0][1])
	require.Len(t, res.Chains, 2)
	assert.Equal(t, 6000*2, res.Chains[0].Proposals)
}

func TestMetropolis_BlockedTarget(t *testing.T) {
	target := &blockedGaussian{gaussian: gaussian{mu: []float64{0, 10, 20}, sd: []float64{1, 1, 1}}}

	s, err := New(WithDraws(3000), WithBurn(1000), WithSeed(5))
	require.NoError(t, err)

	res, err := s.Sample(context.Background(), target, []float64{0, 10, 20})
	require.NoError(t, err)

	// one block evaluation per proposal, plus one per block at start
	assert.Equal(t, 3*3000+3, target.calls)

	v, err := res.Posterior().Values("x[2]")
	require.NoError(t, err)
	assert.InDelta(t, 20, stat.Mean(v, nil), 0.3)
}

func TestMetropolis_Reproducible(t *testing.T) {
	run := func() []float64 {
		s, err := New(WithDraws(500), WithBurn(100), WithChains(3), WithSeed(99))
		require.NoError(t, err)
		res, err := s.Sample(context.Background(), &gaussian{mu: []float64{0}, sd: []float64{1}}, []float64{0})
		require.NoError(t, err)
		v, err := res.Trace.Values("x[0]")
		require.NoError(t, err)

		return v
	}

	assert.Equal(t, run(), run())
}

func TestMetropolis_NumericalRejections(t *testing.T) {
	s, err := New(WithDraws(4000), WithBurn(1000), WithSeed(3))
	require.NoError(t, err)

	res, err := s.Sample(context.Background(), halfLine{}, []float64{0})
	require.NoError(t, err)

	d := res.Diagnostics[0]
	assert.Positive(t, d.Numerical)
	assert.Positive(t, res.Chains[0].Numerical)

	v, err := res.Trace.Values("x[0]")
	require.NoError(t, err)
	for _, x := range v {
		require.LessOrEqual(t, x, 1.0)
	}

	var kinds []WarningKind
	for _, w := range res.Warnings {
		kinds = append(kinds, w.Kind)
	}
	assert.Contains(t, kinds, NumericalRejections)
}

func TestMetropolis_InvalidStart(t *testing.T) {
	s, err := New(WithDraws(10), WithBurn(0))
	require.NoError(t, err)

	_, err = s.Sample(context.Background(), halfLine{}, []float64{5})
	require.True(t, errs.IsNumerical(err))

	_, err = s.Sample(context.Background(), halfLine{}, []float64{0, 1})
	require.True(t, errs.IsInput(err))
}

func TestMetropolis_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := New(WithDraws(1000), WithBurn(500), WithChains(2))
	require.NoError(t, err)

	_, err = s.Sample(ctx, &gaussian{mu: []float64{0}, sd: []float64{1}}, []float64{0})
	require.True(t, errors.Is(err, context.Canceled))
}

func TestMetropolis_Packing(t *testing.T) {
	s, err := New(WithDraws(2000), WithBurn(500), WithPacking(format.CompressionZstd), WithPackEncoding(format.TypeRaw))
	require.NoError(t, err)

	res, err := s.Sample(context.Background(), &gaussian{mu: []float64{1}, sd: []float64{1}}, []float64{1})
	require.NoError(t, err)
	require.NotNil(t, res.Packing)
	assert.Less(t, res.Packing.PackedSize, res.Packing.RawSize)

	ct, ok := res.Trace.Packed()
	assert.True(t, ok)
	assert.Equal(t, format.CompressionZstd, ct)

	v, err := res.Posterior().Values("x[0]")
	require.NoError(t, err)
	assert.Len(t, v, 1500)
}

type recordingObserver struct {
	mu       sync.Mutex
	chains   []ChainStats
	warnings []Warning
}

func (r *recordingObserver) ObserveChain(s ChainStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chains = append(r.chains, s)
}

func (r *recordingObserver) ObserveWarning(w Warning) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, w)
}

func TestMetropolis_Observer(t *testing.T) {
	obs := &recordingObserver{}
	// an impossible ESS threshold forces a warning
	s, err := New(WithDraws(300), WithBurn(100), WithChains(2), WithObserver(obs), WithMinESS(1e9))
	require.NoError(t, err)

	res, err := s.Sample(context.Background(), &gaussian{mu: []float64{0}, sd: []float64{1}}, []float64{0})
	require.NoError(t, err)

	assert.Len(t, obs.chains, 2)
	require.NotEmpty(t, obs.warnings)
	assert.Equal(t, res.Warnings, obs.warnings)
	assert.Equal(t, LowESS, obs.warnings[0].Kind)
	assert.Contains(t, obs.warnings[0].String(), "effective sample size")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{name: "zero draws", opts: []Option{WithDraws(0)}},
		{name: "burn equals draws", opts: []Option{WithDraws(10), WithBurn(10)}},
		{name: "no chains", opts: []Option{WithChains(0)}},
		{name: "bad tune interval", opts: []Option{WithTuneInterval(0)}},
		{name: "bad scale", opts: []Option{WithInitialScale(0)}},
		{name: "inverted bounds", opts: []Option{WithAcceptanceBounds(0.9, 0.1)}},
		{name: "bad pack encoding", opts: []Option{WithPackEncoding(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts...)
			require.True(t, errs.IsInput(err))
		})
	}
}

func TestTune(t *testing.T) {
	assert.InDelta(t, 0.1, tune(1, 0), 1e-15)
	assert.InDelta(t, 0.5, tune(1, 0.01), 1e-15)
	assert.InDelta(t, 0.9, tune(1, 0.1), 1e-15)
	assert.InDelta(t, 1.0, tune(1, 0.3), 1e-15)
	assert.InDelta(t, 1.1, tune(1, 0.6), 1e-15)
	assert.InDelta(t, 2.0, tune(1, 0.8), 1e-15)
	assert.InDelta(t, 10.0, tune(1, 0.99), 1e-15)
}

func TestESS(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))

	iid := make([][]float64, 4)
	for c := range iid {
		iid[c] = make([]float64, 1000)
		for i := range iid[c] {
			iid[c][i] = rng.NormFloat64()
		}
	}
	ess := ESS(iid)
	assert.Greater(t, ess, 3000.0)
	assert.Less(t, ess, 5500.0)
	assert.InDelta(t, 1, SplitRHat(iid), 0.02)

	ar := make([][]float64, 4)
	for c := range ar {
		ar[c] = make([]float64, 1000)
		for i := 1; i < len(ar[c]); i++ {
			ar[c][i] = 0.95*ar[c][i-1] + rng.NormFloat64()
		}
	}
	assert.Less(t, ESS(ar), 400.0)
}

func TestESS_EdgeCases(t *testing.T) {
	assert.True(t, math.IsNaN(ESS(nil)))
	assert.True(t, math.IsNaN(ESS([][]float64{{1, 2}})))
	assert.InDelta(t, 1, ESS([][]float64{{2, 2, 2, 2, 2}}), 1e-12)
	assert.True(t, math.IsNaN(SplitRHat([][]float64{{2, 2, 2, 2, 2}})))
}

// directESS is the multi-chain Geyer estimator computed from direct
// autocovariance sums, in the form used by ArviZ.
func directESS(chains [][]float64) float64 {
	m, n := len(chains), len(chains[0])
	acov := make([][]float64, m)
	means := make([]float64, m)
	vars := make([]float64, m)
	for c, x := range chains {
		mean := stat.Mean(x, nil)
		acov[c] = make([]float64, n)
		for lag := range n {
			s := 0.0
			for i := 0; i+lag < n; i++ {
				s += (x[i] - mean) * (x[i+lag] - mean)
			}
			acov[c][lag] = s / float64(n)
		}
		means[c] = mean
		vars[c] = acov[c][0] * float64(n) / float64(n-1)
	}
	meanVar := stat.Mean(vars, nil)
	varPlus := meanVar*float64(n-1)/float64(n) + stat.Variance(means, nil)
	rhoAt := func(lag int) float64 {
		s := 0.0
		for c := range acov {
			s += acov[c][lag]
		}

		return 1 - (meanVar-s/float64(m))/varPlus
	}

	rho := make([]float64, n)
	rho[0], rho[1] = 1, rhoAt(1)
	even, odd := rho[0], rho[1]
	t := 1
	for t < n-3 && even+odd > 0 {
		even, odd = rhoAt(t+2), rhoAt(t+3)
		if even+odd >= 0 {
			rho[t+2], rho[t+3] = even, odd
		}
		t += 2
	}
	maxT := t - 2
	if even > 0 {
		rho[maxT+1] = even
	}
	for t := 1; t <= maxT-2; t += 2 {
		if rho[t+1]+rho[t+2] > rho[t-1]+rho[t] {
			rho[t+1] = (rho[t-1] + rho[t]) / 2
			rho[t+2] = rho[t+1]
		}
	}

	tau := -1 + rho[maxT+1]
	for _, r := range rho[:maxT+1] {
		tau += 2 * r
	}

	return float64(m*n) / tau
}

func TestESS_MatchesDirectSums(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 5))

	for _, phi := range []float64{0, 0.5, 0.9} {
		chains := make([][]float64, 4)
		for c := range chains {
			chains[c] = make([]float64, 1000)
			for i := 1; i < len(chains[c]); i++ {
				chains[c][i] = phi*chains[c][i-1] + rng.NormFloat64()
			}
		}

		want := directESS(chains)
		assert.InEpsilon(t, want, ESS(chains), 1e-6, "phi %v", phi)
	}
}

func TestESS_AR1(t *testing.T) {
	rng := rand.New(rand.NewPCG(6, 6))

	// integrated autocorrelation time of AR(1) is (1+phi)/(1-phi) = 3
	chains := make([][]float64, 4)
	for c := range chains {
		chains[c] = make([]float64, 5000)
		for i := 1; i < len(chains[c]); i++ {
			chains[c][i] = 0.5*chains[c][i-1] + rng.NormFloat64()
		}
	}
	assert.InEpsilon(t, 20000.0/3, ESS(chains), 0.2)
}

func TestSplitRHat_DivergentChains(t *testing.T) {
	rng := rand.New(rand.NewPCG(2, 2))
	chains := [][]float64{make([]float64, 500), make([]float64, 500)}
	for i := range 500 {
		chains[0][i] = rng.NormFloat64()
		chains[1][i] = 5 + rng.NormFloat64()
	}
	assert.Greater(t, SplitRHat(chains), 1.5)

	// a single trending chain is caught by splitting
	trend := make([]float64, 1000)
	for i := range trend {
		trend[i] = float64(i)/100 + 0.1*rng.NormFloat64()
	}
	assert.Greater(t, SplitRHat([][]float64{trend}), 1.5)
}

func TestFindMAP(t *testing.T) {
	target := &gaussian{mu: []float64{3, -1}, sd: []float64{1, 0.5}}

	x, lp, err := FindMAP(context.Background(), target, []float64{0, 0})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{3, -1}, x, 1e-3)
	assert.InDelta(t, 0, lp, 1e-5)

	blocked := &blockedGaussian{gaussian: gaussian{mu: []float64{5, -5, 50}, sd: []float64{1, 2, 3}}}
	x, _, err = FindMAP(context.Background(), blocked, []float64{0, 0, 40})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{5, -5, 50}, x, 1e-3)
}

func TestFindMAP_Errors(t *testing.T) {
	_, _, err := FindMAP(context.Background(), halfLine{}, []float64{3})
	require.True(t, errs.IsNumerical(err))

	_, _, err = FindMAP(context.Background(), halfLine{}, nil)
	require.True(t, errs.IsInput(err))

	_, _, err = FindMAP(context.Background(), halfLine{}, []float64{0}, WithRestarts(0))
	require.True(t, errs.IsInput(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = FindMAP(ctx, halfLine{}, []float64{0})
	require.ErrorIs(t, err, context.Canceled)
}

func TestFindMAP_RespectsInvalidRegion(t *testing.T) {
	x, _, err := FindMAP(context.Background(), halfLine{}, []float64{0.5})
	require.NoError(t, err)
	assert.InDelta(t, 0, x[0], 1e-3)
}
