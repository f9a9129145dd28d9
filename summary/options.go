package summary

import (
	"fmt"
	"strings"

	"github.com/arloliu/ic50/errs"
	"github.com/arloliu/ic50/internal/options"
)

// Interval selects how credible intervals are computed.
type Interval uint8

const (
	// HPD is the highest posterior density interval.
	HPD Interval = iota
	// EqualTailed takes the (1-mass)/2 and (1+mass)/2 empirical quantiles.
	EqualTailed
)

func (i Interval) String() string {
	switch i {
	case HPD:
		return "hpd"
	case EqualTailed:
		return "equal-tailed"
	default:
		return fmt.Sprintf("Interval(%d)", uint8(i))
	}
}

// ParseInterval maps "hpd" or "equal-tailed" to an Interval.
func ParseInterval(name string) (Interval, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "hpd":
		return HPD, nil
	case "equal-tailed", "equal_tailed", "eti":
		return EqualTailed, nil
	default:
		return 0, errs.Input("interval", "unknown interval kind %q", name)
	}
}

// Config controls Summarize.
type Config struct {
	// Burn is the number of leading draws per chain to drop, on top of any
	// the trace view already hides.
	Burn int
	// Mass is the posterior probability held by each interval, in (0, 1).
	Mass     float64
	Interval Interval
	// Params restricts the summary to these parameters, in this order.
	// Empty means every parameter in trace order.
	Params []string
}

// DefaultConfig returns a 95% HPD summary of every parameter.
func DefaultConfig() Config {
	return Config{Mass: 0.95, Interval: HPD}
}

// Validate implements options.Validator.
func (c *Config) Validate() error {
	if c.Burn < 0 {
		return errs.Input("burn", "must be >= 0, got %d", c.Burn)
	}
	if !(c.Mass > 0 && c.Mass < 1) {
		return errs.Input("mass", "must be in (0, 1), got %v", c.Mass)
	}
	if c.Interval > EqualTailed {
		return errs.Input("interval", "unknown interval kind %d", c.Interval)
	}

	return nil
}

// Option configures Summarize.
type Option = options.Option[*Config]

// WithBurn drops the first n draws of every chain.
func WithBurn(n int) Option {
	return options.NoError("WithBurn", func(c *Config) { c.Burn = n })
}

// WithMass sets the interval mass.
func WithMass(m float64) Option {
	return options.NoError("WithMass", func(c *Config) { c.Mass = m })
}

// WithInterval sets the interval kind.
func WithInterval(i Interval) Option {
	return options.NoError("WithInterval", func(c *Config) { c.Interval = i })
}

// WithParams restricts and orders the summarized parameters.
func WithParams(names ...string) Option {
	return options.NoError("WithParams", func(c *Config) { c.Params = names })
}
