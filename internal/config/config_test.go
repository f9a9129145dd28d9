package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/ic50/dose"
	"github.com/arloliu/ic50/errs"
	"github.com/arloliu/ic50/model"
)

const sample = `
sampler:
  draws: 4000
  burn: 1000
  chains: 4
  seed: 9
  packing: lz4
map:
  restarts: 2
model:
  ic50_prior: {kind: normal, mu: 50, sd: 100}
  noise_prior: {kind: half-cauchy, scale: 5}
  labels: [a, b, c]
summary:
  mass: 0.9
  interval: equal-tailed
csv:
  drug_column: compound
  comma: ";"
metrics:
  textfile: /tmp/ic50.prom
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Sampler.Draws)
	assert.Equal(t, 4, cfg.Sampler.Chains)
	assert.Equal(t, uint64(9), cfg.Sampler.Seed)
	assert.Equal(t, "lz4", cfg.Sampler.Packing)
	// unset keys keep their defaults
	assert.Equal(t, 100, cfg.Sampler.TuneInterval)
	assert.InDelta(t, 0.5, cfg.MAP.SimplexSize, 0)
	assert.Equal(t, "normal", cfg.Model.BetaPrior.Kind)
	assert.Equal(t, "concentration", cfg.CSV.ConcentrationColumn)

	assert.Equal(t, 2, cfg.MAP.Restarts)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Model.Labels)
	assert.Equal(t, "compound", cfg.CSV.DrugColumn)
	assert.Equal(t, "/tmp/ic50.prom", cfg.Metrics.Textfile)

	opts, err := cfg.FitOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 4)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown key", yaml: "sampler:\n  drawz: 10\n"},
		{name: "bad packing", yaml: "sampler:\n  packing: gzip\n"},
		{name: "bad packing encoding", yaml: "sampler:\n  packing_encoding: delta\n"},
		{name: "bad interval", yaml: "summary:\n  interval: central\n"},
		{name: "bad prior kind", yaml: "model:\n  beta_prior: {kind: laplace}\n"},
		{name: "bad prior scale", yaml: "model:\n  noise_prior: {kind: half-cauchy, scale: 0}\n"},
		{name: "bad comma", yaml: "csv:\n  comma: ab\n"},
		{name: "malformed", yaml: "sampler: [1, 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			require.True(t, errs.IsInput(err), err.Error())
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Sampler.Draws)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	big := filepath.Join(dir, "big.yaml")
	require.NoError(t, os.WriteFile(big, []byte("# "+strings.Repeat("x", maxFileSize)), 0o600))
	_, err = Load(big)
	require.True(t, errs.IsInput(err))
}

func TestPriorConfig(t *testing.T) {
	p, err := PriorConfig{Kind: "Normal", Mu: 1, SD: 2}.Prior()
	require.NoError(t, err)
	assert.InDelta(t, -math.Log(2*math.Sqrt(2*math.Pi)), p.LogProb(1), 1e-12)

	p, err = PriorConfig{Kind: "half-cauchy", Scale: 3}.Prior()
	require.NoError(t, err)
	assert.Equal(t, model.HalfCauchy{Scale: 3}, p)
	assert.True(t, math.IsInf(p.LogProb(-1), -1))
}

func TestCSVOptions(t *testing.T) {
	cfg, err := Parse([]byte("csv:\n  drug_column: compound\n  comma: \";\"\n"))
	require.NoError(t, err)

	in := "compound;concentration;measurement\nx;1;0.5\ny;2;0.25\n"
	ds, err := dose.ReadCSV(strings.NewReader(in), cfg.CSVOptions()...)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, []string{"x", "y"}, ds.Labels)
}
