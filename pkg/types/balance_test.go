package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBalance(t *testing.T, s string) Balance {
	t.Helper()
	b, err := ParseBalance(s)
	require.NoError(t, err)
	return b
}

func TestParseBalance(t *testing.T) {
	testCases := []struct {
		in  string
		out string // decimal yocto
	}{
		{"1NEAR", "1" + strings.Repeat("0", 24)},
		{"1 NEAR", "1" + strings.Repeat("0", 24)},
		{"0.5 NEAR", "5" + strings.Repeat("0", 23)},
		{"1.5NEAR", "15" + strings.Repeat("0", 23)},
		{"2mNEAR", "2" + strings.Repeat("0", 21)},
		{"12.25 mNEAR", "1225" + strings.Repeat("0", 19)},
		{"1yoctoNEAR", "1"},
		{"42yN", "42"},
		{"0NEAR", "0"},
		{"0.000001 NEAR", "1" + strings.Repeat("0", 18)},
		// The full 128-bit range is representable.
		{"340282366920938463463374607431768211455 yN", "340282366920938463463374607431768211455"},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			b, err := ParseBalance(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.out, b.String())
		})
	}

	bad := []string{
		"",
		"1",     // no unit
		"1.5",   // no unit
		"NEAR",  // no number
		"1 near",
		"1 Tgas",
		"-1 NEAR",
		"1..5 NEAR",
		"1. NEAR",
		"0.1 yoctoNEAR", // finer than one yocto
		"1,5 NEAR",
		"340282366920938463463374607431768211456 yN", // 2^128
	}
	for _, s := range bad {
		t.Run("bad "+s, func(t *testing.T) {
			_, err := ParseBalance(s)
			require.Error(t, err)
		})
	}

	_, err := ParseBalance("17")
	require.ErrorIs(t, err, ErrMissingUnit)
}

func TestBalanceArithmetic(t *testing.T) {
	one := mustBalance(t, "1 NEAR")
	two := mustBalance(t, "2 NEAR")
	max := mustBalance(t, "340282366920938463463374607431768211455 yN")

	sum, err := one.Add(one)
	require.NoError(t, err)
	assert.Zero(t, sum.Cmp(two))

	_, err = max.Add(one)
	require.ErrorIs(t, err, ErrBalanceOverflow)
	assert.Zero(t, max.SaturatingAdd(one).Cmp(max))

	diff, err := two.Sub(one)
	require.NoError(t, err)
	assert.Zero(t, diff.Cmp(one))

	_, err = one.Sub(two)
	require.ErrorIs(t, err, ErrBalanceUnderflow)
	assert.True(t, one.SaturatingSub(two).IsZero())

	assert.Equal(t, -1, one.Cmp(two))
	assert.Equal(t, 1, two.Cmp(one))
}

func TestBalanceBytes16(t *testing.T) {
	b := BalanceFromUint64(0x0102030405060708)
	raw := b.Bytes16()
	// Little-endian: least significant byte first.
	assert.Equal(t, byte(0x08), raw[0])
	assert.Equal(t, byte(0x01), raw[7])
	assert.Equal(t, byte(0x00), raw[15])

	back, err := BalanceFromBytes(raw[:])
	require.NoError(t, err)
	assert.Zero(t, back.Cmp(b))

	max := mustBalance(t, "340282366920938463463374607431768211455 yN")
	raw = max.Bytes16()
	for _, c := range raw {
		assert.Equal(t, byte(0xff), c)
	}

	_, err = BalanceFromBytes(raw[:15])
	require.Error(t, err)
}

func TestBalanceUint64(t *testing.T) {
	small := BalanceFromUint64(12345)
	v, err := small.Uint64()
	require.NoError(t, err)
	assert.EqualValues(t, 12345, v)

	_, err = mustBalance(t, "1 NEAR").Uint64()
	require.ErrorIs(t, err, ErrBalanceOverflow)
}

func TestBalanceJSON(t *testing.T) {
	b := mustBalance(t, "1.5 NEAR")
	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, `"15`+strings.Repeat("0", 23)+`"`, string(data))

	var back Balance
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Zero(t, back.Cmp(b))

	require.Error(t, json.Unmarshal([]byte(`"12x"`), &back))
	require.Error(t, json.Unmarshal([]byte(`12`), &back))
}
