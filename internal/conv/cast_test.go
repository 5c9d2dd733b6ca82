//go:build amd64 || arm64

package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntToInt32(t *testing.T) {
	t.Run("valid zero", func(t *testing.T) {
		got, err := IntToInt32(0)
		assert.NoError(t, err)
		assert.Equal(t, int32(0), got)
	})

	t.Run("valid negative", func(t *testing.T) {
		got, err := IntToInt32(-1)
		assert.NoError(t, err)
		assert.Equal(t, int32(-1), got)
	})

	t.Run("invalid too large", func(t *testing.T) {
		_, err := IntToInt32(math.MaxInt32 + 1)
		assert.Error(t, err)
	})

	t.Run("invalid too small", func(t *testing.T) {
		_, err := IntToInt32(math.MinInt32 - 1)
		assert.Error(t, err)
	})
}

func TestIntToUint32(t *testing.T) {
	got, err := IntToUint32(123)
	assert.NoError(t, err)
	assert.Equal(t, uint32(123), got)

	_, err = IntToUint32(-1)
	assert.Error(t, err)
}

func TestInt32ToCount(t *testing.T) {
	got, err := Int32ToCount(5, 10)
	assert.NoError(t, err)
	assert.Equal(t, 5, got)

	_, err = Int32ToCount(-1, 0)
	assert.Error(t, err)

	_, err = Int32ToCount(11, 10)
	assert.Error(t, err)

	got, err = Int32ToCount(math.MaxInt32, 0)
	assert.NoError(t, err)
	assert.Equal(t, math.MaxInt32, got)
}

func TestUint32ToInt(t *testing.T) {
	got, err := Uint32ToInt(math.MaxUint32)
	assert.NoError(t, err)
	assert.Equal(t, math.MaxUint32, got)
}
