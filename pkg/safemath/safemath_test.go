package safemath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddSubOverflow(t *testing.T) {
	_, err := Add(math.MaxUint64, 1)
	assert.ErrorIs(t, err, ErrOverflow)

	v, err := Add(math.MaxUint64-1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), v)

	_, err = Sub(1, 2)
	assert.ErrorIs(t, err, ErrUnderflow)
}

func TestMulDivUsesWideIntermediate(t *testing.T) {
	// the product overflows u64 but the quotient does not
	v, err := MulDiv(math.MaxUint64, 10, 20)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64/2), v)

	_, err = MulDiv(math.MaxUint64, 2, 1)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = MulDiv(1, 1, 0)
	assert.ErrorIs(t, err, ErrDivisionByZero)

	_, err = Mul(math.MaxUint64, 2)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestMulDivCeil(t *testing.T) {
	v, err := MulDivCeil(1001, 100, 10_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), v)

	v, err = MulDivCeil(1000, 100, 10_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), v)
}

func TestPow10Bounds(t *testing.T) {
	v, err := Pow10(19)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000_000_000_000_000), v)

	_, err = Pow10(20)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestGrowthBps(t *testing.T) {
	cases := []struct {
		current, last uint64
		want          int64
	}{
		{105_000, 100_000, 500},
		{110_000, 100_000, 1000},
		{160_000, 100_000, 6000},
		{90_000, 100_000, -1000},
		{100_000, 100_000, 0},
		{100_049, 100_000, 4}, // truncates toward zero
		{99_951, 100_000, -4},
	}
	for _, c := range cases {
		got, err := GrowthBps(c.current, c.last)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "%d over %d", c.current, c.last)
	}

	_, err := GrowthBps(1, 0)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

// TestAmountRoundTrip pins the raw <-> whole conversions as exact inverses.
func TestAmountRoundTrip(t *testing.T) {
	for _, decimals := range []uint8{0, 2, 6, 9} {
		for _, whole := range []uint64{0, 1, 7, 999, 1_000_000, 5_000_000_000} {
			raw, err := ToRaw(whole, decimals)
			require.NoError(t, err)
			back, frac, err := FromRaw(raw, decimals)
			require.NoError(t, err)
			assert.Equal(t, whole, back)
			assert.Zero(t, frac)
		}
		for _, raw := range []uint64{0, 1, 9, 10, 3_333_333_333, math.MaxUint64} {
			s, err := FormatAmount(raw, decimals)
			require.NoError(t, err)
			back, err := ParseAmount(s, decimals)
			require.NoError(t, err, s)
			assert.Equal(t, raw, back, s)
		}
	}
}

func TestFormatAndParseAmount(t *testing.T) {
	s, err := FormatAmount(3_333_333_333, 6)
	require.NoError(t, err)
	assert.Equal(t, "3333.333333", s)

	s, err = FormatAmount(50, 6)
	require.NoError(t, err)
	assert.Equal(t, "0.000050", s)

	v, err := ParseAmount("100.5", 6)
	require.NoError(t, err)
	assert.Equal(t, uint64(100_500_000), v)

	for _, bad := range []string{"", "-1", "1.", ".5", "1.0000001", "1e6", "abc"} {
		_, err := ParseAmount(bad, 6)
		assert.Error(t, err, bad)
	}
}
