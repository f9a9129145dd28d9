package model

import (
	"log/slog"

	"github.com/arloliu/ic50/errs"
	"github.com/arloliu/ic50/internal/options"
)

// Config holds the model declaration settings.
type Config struct {
	// Drugs is the number of drug groups; 0 infers max drug index + 1.
	Drugs      int
	BetaPrior  Prior
	IC50Prior  Prior
	NoisePrior Prior
	// Labels are display names indexed by drug.
	Labels []string
	Logger *slog.Logger
}

// DefaultConfig returns the diffuse default priors with an inferred drug count.
func DefaultConfig() Config {
	return Config{
		BetaPrior:  defaultBetaPrior(),
		IC50Prior:  defaultIC50Prior(),
		NoisePrior: defaultNoisePrior(),
		Logger:     slog.New(slog.DiscardHandler),
	}
}

// Validate implements options.Validator.
func (c *Config) Validate() error {
	if c.Drugs < 0 {
		return errs.Input("drugs", "must be >= 0, got %d", c.Drugs)
	}
	if c.BetaPrior == nil || c.IC50Prior == nil || c.NoisePrior == nil {
		return errs.Input("prior", "priors must not be nil")
	}

	return nil
}

// Option configures a Builder.
type Option = options.Option[*Config]

// WithDrugCount declares the number of drugs explicitly. Every drug in [0, n)
// must then receive observations.
func WithDrugCount(n int) Option {
	return options.New("WithDrugCount", func(c *Config) error {
		if n < 1 {
			return errs.Input("drugs", "must be >= 1, got %d", n)
		}
		c.Drugs = n

		return nil
	})
}

// WithBetaPrior replaces the amplitude prior.
func WithBetaPrior(p Prior) Option {
	return options.NoError("WithBetaPrior", func(c *Config) { c.BetaPrior = p })
}

// WithIC50Prior replaces the IC50 prior.
func WithIC50Prior(p Prior) Option {
	return options.NoError("WithIC50Prior", func(c *Config) { c.IC50Prior = p })
}

// WithNoisePrior replaces the noise prior. It must put zero mass on negative values.
func WithNoisePrior(p Prior) Option {
	return options.NoError("WithNoisePrior", func(c *Config) { c.NoisePrior = p })
}

// WithNames sets display labels for the drugs.
func WithNames(labels []string) Option {
	return options.NoError("WithNames", func(c *Config) { c.Labels = append([]string(nil), labels...) })
}

// WithLogger sets the logger used while declaring the model.
func WithLogger(l *slog.Logger) Option {
	return options.NoError("WithLogger", func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	})
}
