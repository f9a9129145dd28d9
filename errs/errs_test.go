package errs

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputError(t *testing.T) {
	t.Run("record error message", func(t *testing.T) {
		err := InputAt("concentration", 7, "must be >= 0, got %g", -1.5)
		require.Equal(t, "invalid input concentration at record 7: must be >= 0, got -1.5", err.Error())
	})

	t.Run("drug error message", func(t *testing.T) {
		err := InputForDrug("observations", 2, "drug has no observations")
		require.Equal(t, "invalid input observations (drug 2): drug has no observations", err.Error())
	})

	t.Run("classifies through wrapping", func(t *testing.T) {
		err := fmt.Errorf("build model: %w", Input("drugs", "need at least one"))
		require.True(t, IsInput(err))
		require.False(t, IsNumerical(err))
		require.ErrorIs(t, err, ErrInput)

		var ie *InputError
		require.True(t, errors.As(err, &ie))
		assert.Equal(t, "drugs", ie.Field)
		assert.Equal(t, -1, ie.Index)
	})
}

func TestNumericalError(t *testing.T) {
	err := fmt.Errorf("evaluate: %w", Numerical("log density", math.NaN()))
	require.True(t, IsNumerical(err))
	require.False(t, IsInput(err))
	require.Contains(t, err.Error(), "log density")

	var ne *NumericalError
	require.True(t, errors.As(err, &ne))
	assert.True(t, math.IsNaN(ne.Value))
}

func TestNilClassification(t *testing.T) {
	assert.False(t, IsInput(nil))
	assert.False(t, IsNumerical(nil))
}
