package sampler

import (
	"log/slog"

	"github.com/arloliu/ic50/errs"
	"github.com/arloliu/ic50/format"
	"github.com/arloliu/ic50/internal/options"
)

// Config holds the sampler settings.
type Config struct {
	// Draws is the number of iterations per chain, warm-up included.
	Draws int
	// Burn is the number of leading warm-up iterations per chain.
	Burn int
	// Chains is the number of independent chains, run concurrently.
	Chains int
	// Seed seeds the per-chain random streams.
	Seed uint64
	// TuneInterval is the number of iterations between proposal scale updates
	// during warm-up.
	TuneInterval int
	// InitialScale is the starting proposal standard deviation.
	InitialScale float64

	// MinESS, MaxRHat and the acceptance bounds are the warning thresholds.
	MinESS        float64
	MaxRHat       float64
	MinAcceptance float64
	MaxAcceptance float64

	// Packing, if non-zero, packs the trace with this codec after sampling.
	Packing format.CompressionType
	// PackEncoding is the column encoding used when packing.
	PackEncoding format.EncodingType

	Logger   *slog.Logger
	Observer Observer
}

// DefaultConfig returns 10000 draws per chain with 5000 warm-up iterations.
func DefaultConfig() Config {
	return Config{
		Draws:         10000,
		Burn:          5000,
		Chains:        1,
		Seed:          1,
		TuneInterval:  100,
		InitialScale:  0.1,
		MinESS:        100,
		MaxRHat:       1.05,
		MinAcceptance: 0.1,
		MaxAcceptance: 0.9,
		PackEncoding:  format.TypeGorilla,
		Logger:        slog.New(slog.DiscardHandler),
		Observer:      nopObserver{},
	}
}

// Validate implements options.Validator.
func (c *Config) Validate() error {
	switch {
	case c.Draws < 1:
		return errs.Input("draws", "must be >= 1, got %d", c.Draws)
	case c.Burn < 0 || c.Burn >= c.Draws:
		return errs.Input("burn", "must be in [0, draws), got %d with %d draws", c.Burn, c.Draws)
	case c.Chains < 1:
		return errs.Input("chains", "must be >= 1, got %d", c.Chains)
	case c.TuneInterval < 1:
		return errs.Input("tune interval", "must be >= 1, got %d", c.TuneInterval)
	case !(c.InitialScale > 0):
		return errs.Input("initial scale", "must be > 0, got %v", c.InitialScale)
	case c.MinAcceptance > c.MaxAcceptance:
		return errs.Input("acceptance bounds", "min %v exceeds max %v", c.MinAcceptance, c.MaxAcceptance)
	case c.PackEncoding != format.TypeGorilla && c.PackEncoding != format.TypeRaw:
		return errs.Input("pack encoding", "unsupported encoding %s", c.PackEncoding)
	}

	return nil
}

// Option configures a Metropolis sampler.
type Option = options.Option[*Config]

// WithDraws sets the iterations per chain, warm-up included.
func WithDraws(n int) Option {
	return options.NoError("WithDraws", func(c *Config) { c.Draws = n })
}

// WithBurn sets the warm-up length.
func WithBurn(n int) Option {
	return options.NoError("WithBurn", func(c *Config) { c.Burn = n })
}

// WithChains sets the number of chains.
func WithChains(n int) Option {
	return options.NoError("WithChains", func(c *Config) { c.Chains = n })
}

// WithSeed sets the random seed.
func WithSeed(seed uint64) Option {
	return options.NoError("WithSeed", func(c *Config) { c.Seed = seed })
}

// WithTuneInterval sets the warm-up tuning window.
func WithTuneInterval(n int) Option {
	return options.NoError("WithTuneInterval", func(c *Config) { c.TuneInterval = n })
}

// WithInitialScale sets the starting proposal standard deviation.
func WithInitialScale(s float64) Option {
	return options.NoError("WithInitialScale", func(c *Config) { c.InitialScale = s })
}

// WithMinESS sets the effective sample size below which a warning is raised.
func WithMinESS(n float64) Option {
	return options.NoError("WithMinESS", func(c *Config) { c.MinESS = n })
}

// WithMaxRHat sets the split R-hat above which a warning is raised.
func WithMaxRHat(r float64) Option {
	return options.NoError("WithMaxRHat", func(c *Config) { c.MaxRHat = r })
}

// WithAcceptanceBounds sets the acceptance rates outside which a warning is raised.
func WithAcceptanceBounds(low, high float64) Option {
	return options.NoError("WithAcceptanceBounds", func(c *Config) {
		c.MinAcceptance = low
		c.MaxAcceptance = high
	})
}

// WithPacking packs the resulting trace with the given codec.
func WithPacking(ct format.CompressionType) Option {
	return options.NoError("WithPacking", func(c *Config) { c.Packing = ct })
}

// WithPackEncoding sets the column encoding used by WithPacking.
func WithPackEncoding(et format.EncodingType) Option {
	return options.NoError("WithPackEncoding", func(c *Config) { c.PackEncoding = et })
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return options.NoError("WithLogger", func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	})
}

// WithObserver sets the observer notified of chain statistics and warnings.
func WithObserver(o Observer) Option {
	return options.NoError("WithObserver", func(c *Config) {
		if o != nil {
			c.Observer = o
		}
	})
}
