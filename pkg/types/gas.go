package types

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrGasOverflow is returned by checked gas arithmetic and parsing on
// 64-bit overflow.
var ErrGasOverflow = errors.New("gas overflows 64 bits")

// Gas is an amount of computational gas attached to a function call. The wire
// format is a 64-bit quantity.
type Gas uint64

// Tera is the multiplier of one Tgas, the unit gas prices are usually
// quoted in.
const Tera Gas = 1_000_000_000_000

// gasUnits maps the accepted suffixes to their decimal exponent relative to
// one gas unit.
var gasUnits = []struct {
	suffix   string
	decimals int
}{
	{"Tgas", 12},
	{"Ggas", 9},
	{"gas", 0},
}

// ParseGas parses a human-readable gas quantity with a mandatory unit suffix:
// "Tgas", "Ggas" or "gas". Decimal fractions are allowed for the scaled units
// ("0.5 Tgas").
func ParseGas(s string) (Gas, error) {
	num, decimals, err := splitUnit(s, func(suffix string) (int, bool) {
		for _, u := range gasUnits {
			if u.suffix == suffix {
				return u.decimals, true
			}
		}
		return 0, false
	})
	if err != nil {
		return 0, err
	}
	digits, err := scaleDecimal(num, decimals)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, ErrGasOverflow
	}
	return Gas(v), nil
}

// Add returns g+other, failing on overflow.
func (g Gas) Add(other Gas) (Gas, error) {
	res := g + other
	if res < g {
		return 0, ErrGasOverflow
	}
	return res, nil
}

// SaturatingAdd returns g+other, clamping at the maximum value.
func (g Gas) SaturatingAdd(other Gas) Gas {
	res, err := g.Add(other)
	if err != nil {
		return Gas(math.MaxUint64)
	}
	return res
}

// SaturatingMul returns g*n, clamping at the maximum value.
func (g Gas) SaturatingMul(n uint64) Gas {
	if g == 0 || n == 0 {
		return 0
	}
	if uint64(g) > math.MaxUint64/n {
		return Gas(math.MaxUint64)
	}
	return g * Gas(n)
}

// String renders the gas amount in Tgas when it divides evenly, in raw gas
// units otherwise.
func (g Gas) String() string {
	if g != 0 && g%Tera == 0 {
		return fmt.Sprintf("%d Tgas", uint64(g/Tera))
	}
	return fmt.Sprintf("%d gas", uint64(g))
}
