package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Draws int
	Burn  int
	Label string
}

func (c *testConfig) Validate() error {
	if c.Burn >= c.Draws {
		return errors.New("burn must be smaller than draws")
	}

	return nil
}

func withDraws(n int) Option[*testConfig] {
	return New("WithDraws", func(c *testConfig) error {
		if n <= 0 {
			return errors.New("draws must be positive")
		}
		c.Draws = n

		return nil
	})
}

func withBurn(n int) Option[*testConfig] {
	return NoError("WithBurn", func(c *testConfig) { c.Burn = n })
}

func withLabel(s string) Option[*testConfig] {
	return NoError("WithLabel", func(c *testConfig) { c.Label = s })
}

func TestApply(t *testing.T) {
	t.Run("applies options in order", func(t *testing.T) {
		cfg := &testConfig{Draws: 10}
		err := Apply(cfg, withDraws(100), withBurn(50), withLabel("a"), withLabel("b"))
		require.NoError(t, err)
		require.Equal(t, 100, cfg.Draws)
		require.Equal(t, 50, cfg.Burn)
		require.Equal(t, "b", cfg.Label)
	})

	t.Run("prefixes failing option name and stops", func(t *testing.T) {
		cfg := &testConfig{Draws: 10}
		err := Apply(cfg, withDraws(-1), withLabel("never"))
		require.Error(t, err)
		require.Contains(t, err.Error(), "option WithDraws")
		require.Contains(t, err.Error(), "draws must be positive")
		require.Empty(t, cfg.Label)
	})

	t.Run("runs validator after all options", func(t *testing.T) {
		cfg := &testConfig{Draws: 10}
		err := Apply(cfg, withBurn(20))
		require.EqualError(t, err, "burn must be smaller than draws")

		err = Apply(cfg, withBurn(20), withDraws(40))
		require.NoError(t, err)
	})

	t.Run("skips nil options", func(t *testing.T) {
		cfg := &testConfig{Draws: 10}
		require.NoError(t, Apply(cfg, nil, withBurn(1)))
		require.Equal(t, 1, cfg.Burn)
	})

	t.Run("works with non validating targets", func(t *testing.T) {
		var n int
		err := Apply(&n, NoError("set", func(p *int) { *p = 42 }))
		require.NoError(t, err)
		require.Equal(t, 42, n)
	})
}
