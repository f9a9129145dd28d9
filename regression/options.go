package regression

import (
	"math"

	"github.com/arloliu/ic50/errs"
	"github.com/arloliu/ic50/internal/options"
)

// Config controls the candidate fits.
type Config struct {
	// Beta fixes the amplitude; NaN means estimate it from the data.
	Beta float64
	// Clip excludes points with y/beta outside (Clip, 1-Clip) from the logit
	// fits, where the transform explodes.
	Clip float64
	// MinPoints is the number of usable points a logit fit needs.
	MinPoints int
	// Window is the half width, in concentration units, around the half-maximum
	// estimate from which the logit fits take their points.
	Window float64
}

// DefaultConfig returns the default fitting configuration.
func DefaultConfig() Config {
	return Config{Beta: math.NaN(), Clip: 0.02, MinPoints: 3, Window: 10}
}

// Validate implements options.Validator.
func (c *Config) Validate() error {
	if c.Clip < 0 || c.Clip >= 0.5 {
		return errs.Input("clip", "must be in [0, 0.5), got %v", c.Clip)
	}
	if c.MinPoints < 2 {
		return errs.Input("min points", "must be >= 2, got %d", c.MinPoints)
	}
	if !(c.Window > 0) {
		return errs.Input("window", "must be > 0, got %v", c.Window)
	}

	return nil
}

// Option configures Analyze.
type Option = options.Option[*Config]

// WithBeta fixes the amplitude instead of estimating it.
func WithBeta(beta float64) Option {
	return options.New("WithBeta", func(c *Config) error {
		if math.IsInf(beta, 0) {
			return errs.Input("beta", "must be finite")
		}
		c.Beta = beta

		return nil
	})
}

// WithClip sets the logit clipping fraction.
func WithClip(clip float64) Option {
	return options.NoError("WithClip", func(c *Config) { c.Clip = clip })
}

// WithMinPoints sets the minimum number of points for the logit fits.
func WithMinPoints(n int) Option {
	return options.NoError("WithMinPoints", func(c *Config) { c.MinPoints = n })
}

// WithWindow sets the half width of the logit fitting window.
func WithWindow(w float64) Option {
	return options.NoError("WithWindow", func(c *Config) { c.Window = w })
}
