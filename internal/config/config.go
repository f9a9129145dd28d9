// Package config loads the YAML run configuration of the ic50 command and
// converts it to the options of each library stage.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/ic50"
	"github.com/arloliu/ic50/dose"
	"github.com/arloliu/ic50/errs"
	"github.com/arloliu/ic50/format"
	"github.com/arloliu/ic50/model"
	"github.com/arloliu/ic50/sampler"
	"github.com/arloliu/ic50/summary"
)

// maxFileSize bounds the size of a config file.
const maxFileSize = 1 << 20

// Config is the complete run configuration.
type Config struct {
	Sampler SamplerConfig `yaml:"sampler"`
	MAP     MAPConfig     `yaml:"map"`
	Model   ModelConfig   `yaml:"model"`
	Summary SummaryConfig `yaml:"summary"`
	CSV     CSVConfig     `yaml:"csv"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// SamplerConfig mirrors sampler.Config.
type SamplerConfig struct {
	Draws        int     `yaml:"draws"`
	Burn         int     `yaml:"burn"`
	Chains       int     `yaml:"chains"`
	Seed         uint64  `yaml:"seed"`
	TuneInterval int     `yaml:"tune_interval"`
	InitialScale float64 `yaml:"initial_scale"`
	MinESS       float64 `yaml:"min_ess"`
	MaxRHat      float64 `yaml:"max_rhat"`
	// Packing names the trace codec: none, zstd, s2 or lz4. Empty disables packing.
	Packing string `yaml:"packing"`
	// PackingEncoding names the column encoding: gorilla or raw.
	PackingEncoding string `yaml:"packing_encoding"`
}

// MAPConfig mirrors sampler.MAPConfig.
type MAPConfig struct {
	Restarts    int     `yaml:"restarts"`
	SimplexSize float64 `yaml:"simplex_size"`
}

// PriorConfig declares a prior: "normal" uses Mu and SD, "half-cauchy" uses Scale.
type PriorConfig struct {
	Kind  string  `yaml:"kind"`
	Mu    float64 `yaml:"mu,omitempty"`
	SD    float64 `yaml:"sd,omitempty"`
	Scale float64 `yaml:"scale,omitempty"`
}

// ModelConfig holds the priors and drug labels.
type ModelConfig struct {
	BetaPrior  PriorConfig `yaml:"beta_prior"`
	IC50Prior  PriorConfig `yaml:"ic50_prior"`
	NoisePrior PriorConfig `yaml:"noise_prior"`
	Labels     []string    `yaml:"labels,omitempty"`
}

// SummaryConfig mirrors summary.Config.
type SummaryConfig struct {
	Mass     float64 `yaml:"mass"`
	Interval string  `yaml:"interval"`
}

// CSVConfig mirrors dose.CSVConfig.
type CSVConfig struct {
	DrugColumn          string `yaml:"drug_column"`
	ConcentrationColumn string `yaml:"concentration_column"`
	MeasurementColumn   string `yaml:"measurement_column"`
	Comma               string `yaml:"comma"`
}

// MetricsConfig configures the Prometheus textfile export.
type MetricsConfig struct {
	// Textfile is the path the metrics are written to after a fit. Empty disables export.
	Textfile string `yaml:"textfile"`
}

// Default returns the configuration matching the library defaults.
func Default() Config {
	s := sampler.DefaultConfig()
	m := sampler.DefaultMAPConfig()
	sum := summary.DefaultConfig()
	csv := dose.DefaultCSVConfig()

	return Config{
		Sampler: SamplerConfig{
			Draws:        s.Draws,
			Burn:         s.Burn,
			Chains:       s.Chains,
			Seed:         s.Seed,
			TuneInterval: s.TuneInterval,
			InitialScale: s.InitialScale,
			MinESS:       s.MinESS,
			MaxRHat:      s.MaxRHat,

			PackingEncoding: s.PackEncoding.String(),
		},
		MAP: MAPConfig{Restarts: m.Restarts, SimplexSize: m.SimplexSize},
		Model: ModelConfig{
			BetaPrior:  PriorConfig{Kind: "normal", SD: model.DefaultScale},
			IC50Prior:  PriorConfig{Kind: "normal", SD: model.DefaultScale},
			NoisePrior: PriorConfig{Kind: "half-cauchy", Scale: model.DefaultScale},
		},
		Summary: SummaryConfig{Mass: sum.Mass, Interval: sum.Interval.String()},
		CSV: CSVConfig{
			DrugColumn:          csv.DrugColumn,
			ConcentrationColumn: csv.ConcentrationColumn,
			MeasurementColumn:   csv.MeasurementColumn,
			Comma:               string(csv.Comma),
		},
	}
}

// Load reads a YAML file and overlays it on Default.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) > maxFileSize {
		return nil, errs.Input("config", "file %s exceeds %d bytes", path, maxFileSize)
	}

	return Parse(data)
}

// Parse decodes YAML over Default and validates the result. Unknown keys
// are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errs.Input("config", "failed to parse: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks the values that the library options cannot check on their
// own: names of codecs, interval kinds and priors.
func (c *Config) Validate() error {
	if _, err := c.packing(); err != nil {
		return err
	}
	if _, err := c.packingEncoding(); err != nil {
		return err
	}
	if _, err := summary.ParseInterval(c.Summary.Interval); err != nil {
		return err
	}
	priors := []struct {
		name string
		p    PriorConfig
	}{
		{"beta_prior", c.Model.BetaPrior},
		{"ic50_prior", c.Model.IC50Prior},
		{"noise_prior", c.Model.NoisePrior},
	}
	for _, pr := range priors {
		if _, err := pr.p.Prior(); err != nil {
			return fmt.Errorf("%s: %w", pr.name, err)
		}
	}
	if n := len([]rune(c.CSV.Comma)); n != 1 {
		return errs.Input("csv.comma", "must be a single character, got %q", c.CSV.Comma)
	}

	return nil
}

// Prior builds the declared prior.
func (p PriorConfig) Prior() (model.Prior, error) {
	switch strings.ToLower(strings.TrimSpace(p.Kind)) {
	case "normal":
		if !(p.SD > 0) {
			return nil, errs.Input("prior", "normal sd must be > 0, got %v", p.SD)
		}
		return model.NormalPrior(p.Mu, p.SD), nil
	case "half-cauchy", "halfcauchy":
		if !(p.Scale > 0) {
			return nil, errs.Input("prior", "half-cauchy scale must be > 0, got %v", p.Scale)
		}
		return model.HalfCauchy{Scale: p.Scale}, nil
	default:
		return nil, errs.Input("prior", "unknown kind %q", p.Kind)
	}
}

func (c *Config) packing() (format.CompressionType, error) {
	if strings.TrimSpace(c.Sampler.Packing) == "" {
		return 0, nil
	}
	ct, err := format.ParseCompression(c.Sampler.Packing)
	if err != nil {
		return 0, errs.Input("sampler.packing", "%v", err)
	}

	return ct, nil
}

func (c *Config) packingEncoding() (format.EncodingType, error) {
	et, err := format.ParseEncoding(c.Sampler.PackingEncoding)
	if err != nil {
		return 0, errs.Input("sampler.packing_encoding", "%v", err)
	}

	return et, nil
}

// FitOptions converts the configuration to ic50.Fit options. The config must
// have been validated.
func (c *Config) FitOptions() ([]ic50.Option, error) {
	packing, err := c.packing()
	if err != nil {
		return nil, err
	}
	packEncoding, err := c.packingEncoding()
	if err != nil {
		return nil, err
	}
	interval, err := summary.ParseInterval(c.Summary.Interval)
	if err != nil {
		return nil, err
	}
	beta, err := c.Model.BetaPrior.Prior()
	if err != nil {
		return nil, err
	}
	ic50Prior, err := c.Model.IC50Prior.Prior()
	if err != nil {
		return nil, err
	}
	noise, err := c.Model.NoisePrior.Prior()
	if err != nil {
		return nil, err
	}

	modelOpts := []model.Option{
		model.WithBetaPrior(beta),
		model.WithIC50Prior(ic50Prior),
		model.WithNoisePrior(noise),
	}
	if len(c.Model.Labels) > 0 {
		modelOpts = append(modelOpts, model.WithNames(c.Model.Labels))
	}

	s := c.Sampler

	return []ic50.Option{
		ic50.WithModelOptions(modelOpts...),
		ic50.WithMAPOptions(
			sampler.WithRestarts(c.MAP.Restarts),
			sampler.WithSimplexSize(c.MAP.SimplexSize),
		),
		ic50.WithSamplerOptions(
			sampler.WithDraws(s.Draws),
			sampler.WithBurn(s.Burn),
			sampler.WithChains(s.Chains),
			sampler.WithSeed(s.Seed),
			sampler.WithTuneInterval(s.TuneInterval),
			sampler.WithInitialScale(s.InitialScale),
			sampler.WithMinESS(s.MinESS),
			sampler.WithMaxRHat(s.MaxRHat),
			sampler.WithPacking(packing),
			sampler.WithPackEncoding(packEncoding),
		),
		ic50.WithSummaryOptions(
			summary.WithMass(c.Summary.Mass),
			summary.WithInterval(interval),
		),
	}, nil
}

// CSVOptions converts the csv section to dose.ReadCSV options.
func (c *Config) CSVOptions() []dose.CSVOption {
	opts := []dose.CSVOption{
		dose.WithColumns(c.CSV.DrugColumn, c.CSV.ConcentrationColumn, c.CSV.MeasurementColumn),
	}
	if r := []rune(c.CSV.Comma); len(r) == 1 {
		opts = append(opts, dose.WithComma(r[0]))
	}

	return opts
}
