package sampler

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// ParamDiagnostics holds the post-warm-up diagnostics of one parameter.
type ParamDiagnostics struct {
	Name string
	// Acceptance is the fraction of accepted proposals after warm-up.
	Acceptance float64
	// ESS is the effective sample size over all chains.
	ESS float64
	// RHat is the split R-hat over all chains; NaN when undefined.
	RHat float64
	// Numerical counts proposals rejected after warm-up for a NaN or +Inf
	// log density.
	Numerical int
}

// ESS estimates the effective sample size of equal-length chains using
// Geyer's initial monotone sequence on the multi-chain autocorrelation, with
// the positive even-lag term after the truncation point added once as Stan
// and ArviZ do.
//
// Parameters:
//   - chains: Draws per chain; longer chains are cut to the shortest
//
// Returns:
//   - float64: The effective sample size, NaN for fewer than 4 draws per
//     chain and 1 for constant draws
func ESS(chains [][]float64) float64 {
	m := len(chains)
	n := minLen(chains)
	if m == 0 || n < 4 {
		return math.NaN()
	}

	acov := make([][]float64, m)
	means := make([]float64, m)
	vars := make([]float64, m)
	for c, x := range chains {
		x = x[:n]
		acov[c] = autocovariance(x)
		means[c] = stat.Mean(x, nil)
		vars[c] = acov[c][0] * float64(n) / float64(n-1)
	}

	meanVar := stat.Mean(vars, nil)
	varPlus := meanVar * float64(n-1) / float64(n)
	if m > 1 {
		varPlus += stat.Variance(means, nil)
	}
	if varPlus == 0 {
		return 1
	}

	rhoAt := func(t int) float64 {
		sum := 0.0
		for c := range acov {
			sum += acov[c][t]
		}

		return 1 - (meanVar-sum/float64(m))/varPlus
	}

	rho := make([]float64, n)
	rho[0] = 1
	rho[1] = rhoAt(1)
	even, odd := rho[0], rho[1]

	t := 1
	for t < n-3 && even+odd > 0 {
		even = rhoAt(t + 1)
		odd = rhoAt(t + 2)
		if even+odd >= 0 {
			rho[t+1], rho[t+2] = even, odd
		}
		t += 2
	}
	maxT := t - 2
	// first even lag past the truncation, counted once when positive
	if even > 0 {
		rho[maxT+1] = even
	}

	// initial monotone sequence
	for k := 1; k+2 <= maxT; k += 2 {
		if rho[k+1]+rho[k+2] > rho[k-1]+rho[k] {
			rho[k+1] = (rho[k-1] + rho[k]) / 2
			rho[k+2] = rho[k+1]
		}
	}

	tau := -1 + rho[maxT+1]
	for k := 0; k <= maxT; k++ {
		tau += 2 * rho[k]
	}

	total := float64(m * n)
	tau = math.Max(tau, 1/math.Log10(total))

	return total / tau
}

// autocovariance returns the biased autocovariance of x at every lag, using
// a zero-padded FFT.
func autocovariance(x []float64) []float64 {
	n := len(x)
	mean := stat.Mean(x, nil)

	size := 1
	for size < 2*n {
		size <<= 1
	}
	padded := make([]float64, size)
	for i, v := range x {
		padded[i] = v - mean
	}

	fft := fourier.NewFFT(size)
	coeff := fft.Coefficients(nil, padded)
	for i, c := range coeff {
		re, im := real(c), imag(c)
		coeff[i] = complex(re*re+im*im, 0)
	}
	r := fft.Sequence(nil, coeff)

	// normalize by lag 0 so the FFT scaling convention does not matter
	variance := 0.0
	for _, v := range padded[:n] {
		variance += v * v
	}
	variance /= float64(n)

	out := make([]float64, n)
	if r[0] == 0 {
		return out
	}
	for t := range out {
		out[t] = r[t] / r[0] * variance
	}

	return out
}

// SplitRHat computes the potential scale reduction factor after splitting
// each chain in half, so that a single chain can still reveal a trend.
//
// It returns NaN when fewer than 4 draws per chain are available or when the
// within-chain variance is zero.
func SplitRHat(chains [][]float64) float64 {
	n := minLen(chains)
	if len(chains) == 0 || n < 4 {
		return math.NaN()
	}

	half := n / 2
	split := make([][]float64, 0, 2*len(chains))
	for _, x := range chains {
		split = append(split, x[:half], x[n-half:n])
	}

	means := make([]float64, len(split))
	vars := make([]float64, len(split))
	for i, x := range split {
		means[i], vars[i] = stat.MeanVariance(x, nil)
	}

	w := stat.Mean(vars, nil)
	if w == 0 {
		return math.NaN()
	}
	b := stat.Variance(means, nil) * float64(half)
	varPlus := float64(half-1)/float64(half)*w + b/float64(half)

	return math.Sqrt(varPlus / w)
}

func minLen(chains [][]float64) int {
	if len(chains) == 0 {
		return 0
	}

	n := len(chains[0])
	for _, c := range chains[1:] {
		n = min(n, len(c))
	}

	return n
}
