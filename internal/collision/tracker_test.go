package collision

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestID(t *testing.T) {
	// reference xxHash64 values
	require.Equal(t, uint64(0xef46db3751d8e999), ID(""))
	require.Equal(t, uint64(0x4fdcca5ddb678139), ID("test"))
	require.NotEqual(t, ID("ic50[0]"), ID("ic50[1]"))
}

func TestTracker_Track(t *testing.T) {
	tr := NewTracker()

	id, err := tr.Track("beta[0]")
	require.NoError(t, err)
	require.Equal(t, ID("beta[0]"), id)

	_, err = tr.Track("ic50[0]")
	require.NoError(t, err)

	require.Equal(t, 2, tr.Count())
	require.Equal(t, []string{"beta[0]", "ic50[0]"}, tr.Names())
	require.False(t, tr.HasCollision())
}

func TestTracker_Errors(t *testing.T) {
	tr := NewTracker()

	_, err := tr.Track("")
	require.ErrorIs(t, err, ErrEmptyName)

	_, err = tr.Track("noise[0]")
	require.NoError(t, err)
	_, err = tr.Track("noise[0]")
	require.ErrorIs(t, err, ErrDuplicateName)
	require.Equal(t, 1, tr.Count())
}

func TestTracker_Collision(t *testing.T) {
	tr := NewTracker()

	_, err := tr.TrackWithID("a", 42)
	require.NoError(t, err)
	_, err = tr.TrackWithID("b", 42)
	require.NoError(t, err)

	require.True(t, tr.HasCollision())
	require.Equal(t, []string{"a", "b"}, tr.Names())
}
