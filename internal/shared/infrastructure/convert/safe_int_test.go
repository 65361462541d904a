package convert

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint64ToInt64(t *testing.T) {
	t.Run("converts heights that fit", func(t *testing.T) {
		result, err := Uint64ToInt64(840000)
		require.NoError(t, err)
		assert.Equal(t, int64(840000), result)

		result, err = Uint64ToInt64(math.MaxInt64)
		require.NoError(t, err)
		assert.Equal(t, int64(math.MaxInt64), result)
	})

	t.Run("returns error on overflow", func(t *testing.T) {
		_, err := Uint64ToInt64(math.MaxInt64 + 1)
		assert.ErrorIs(t, err, ErrOverflow)

		_, err = Uint64ToInt64(math.MaxUint64)
		assert.ErrorIs(t, err, ErrOverflow)
	})
}

func TestInt64ToUint64(t *testing.T) {
	result, err := Int64ToUint64(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), result)

	_, err = Int64ToUint64(-1)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestInt64ToUint32(t *testing.T) {
	result, err := Int64ToUint32(math.MaxUint32)
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), result)

	_, err = Int64ToUint32(math.MaxUint32 + 1)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Int64ToUint32(-5)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestIntToInt32(t *testing.T) {
	result, err := IntToInt32(25)
	require.NoError(t, err)
	assert.Equal(t, int32(25), result)

	_, err = IntToInt32(math.MaxInt32 + 1)
	assert.ErrorIs(t, err, ErrOverflow)
}
