package ic50

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/ic50/dose"
	"github.com/arloliu/ic50/errs"
	"github.com/arloliu/ic50/model"
	"github.com/arloliu/ic50/sampler"
	"github.com/arloliu/ic50/summary"
	"github.com/arloliu/ic50/synth"
)

// TestFit_RecoversSyntheticIC50 runs the reference scenario end to end.
func TestFit_RecoversSyntheticIC50(t *testing.T) {
	if testing.Short() {
		t.Skip("end-to-end sampling")
	}

	cfg := synth.DefaultConfig()
	ds, err := synth.Generate(cfg)
	require.NoError(t, err)

	res, err := Fit(context.Background(), ds, WithSamplerOptions(sampler.WithSeed(42)))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, res.RunID)
	assert.Equal(t, 3, res.Model.Drugs())
	assert.Equal(t, 5000, res.Sampling.Posterior().Len())
	require.Len(t, res.Summary, 9)

	for g, truth := range cfg.IC50 {
		s, ok := res.IC50(g)
		require.True(t, ok)
		assert.InDelta(t, truth, s.Mean, 3, s.Name)
		assert.Less(t, s.Width(), 10.0, s.Name)
		assert.LessOrEqual(t, s.Lower, s.Mean)
		assert.LessOrEqual(t, s.Mean, s.Upper)

		beta, ok := res.Stat(model.Beta, g)
		require.True(t, ok)
		assert.InDelta(t, cfg.Beta, beta.Mean, 0.2, beta.Name)

		noise, ok := res.Stat(model.Noise, g)
		require.True(t, ok)
		assert.InDelta(t, cfg.NoiseSD, noise.Mean, 0.05, noise.Name)
	}
}

func TestFit_ForwardsOptions(t *testing.T) {
	ds, err := synth.Generate(synth.Config{
		IC50:    []float64{20},
		Beta:    2,
		NoiseSD: 0.1,
		Grid:    []float64{0, 5, 10, 15, 18, 19, 20, 21, 22, 25, 30, 40},
		Seed:    3,
	})
	require.NoError(t, err)
	ds.Labels = []string{"aspirin"}

	res, err := Fit(context.Background(), ds,
		WithSamplerOptions(sampler.WithDraws(2000), sampler.WithBurn(1000), sampler.WithChains(2)),
		WithSummaryOptions(summary.WithMass(0.5), summary.WithParams("ic50[0]")),
		WithMAPOptions(sampler.WithRestarts(1)),
	)
	require.NoError(t, err)

	assert.Equal(t, "aspirin", res.Model.Label(0))
	assert.Len(t, res.Sampling.Chains, 2)
	require.Len(t, res.Summary, 1)
	assert.InDelta(t, 0.5, res.Summary[0].Mass, 0)
	assert.InDelta(t, 20, res.Summary[0].Mean, 2)
	assert.Len(t, res.Start, 3)
	assert.Equal(t, res.Sampling.Warnings, res.Warnings())

	_, ok := res.Stat(model.Beta, 0)
	assert.False(t, ok)
}

func TestFit_Errors(t *testing.T) {
	_, err := Fit(context.Background(), dose.Dataset{})
	require.True(t, errs.IsInput(err))

	bad := dose.Dataset{Observations: []dose.Observation{{Drug: 0, Concentration: -1, Measurement: 1}}}
	_, err = Fit(context.Background(), bad)
	require.True(t, errs.IsInput(err))

	ds, err := synth.Generate(synth.DefaultConfig())
	require.NoError(t, err)

	_, err = Fit(context.Background(), ds, WithSamplerOptions(sampler.WithBurn(-1)))
	require.True(t, errs.IsInput(err))

	unobserved := ds
	unobserved.Labels = []string{"a", "b", "c", "d"}
	_, err = Fit(context.Background(), unobserved)
	require.True(t, errs.IsInput(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Fit(ctx, ds)
	require.ErrorIs(t, err, context.Canceled)
}
