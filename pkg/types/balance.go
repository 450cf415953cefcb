package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// BalanceSize is the wire size of a Balance in bytes (unsigned 128-bit).
const BalanceSize = 16

// ErrBalanceOverflow is returned by checked arithmetic and parsing when a
// value does not fit into 128 bits.
var ErrBalanceOverflow = errors.New("balance overflows 128 bits")

// ErrBalanceUnderflow is returned by checked subtraction on a negative result.
var ErrBalanceUnderflow = errors.New("balance underflow")

// ErrMissingUnit is returned when a quantity string carries no unit suffix.
// Bare numbers are ambiguous (1 could be one yocto or one NEAR) and are
// always rejected.
var ErrMissingUnit = errors.New("quantity requires an explicit unit suffix")

// balanceUnits maps the accepted suffixes to their decimal exponent relative
// to one yoctoNEAR.
var balanceUnits = []struct {
	suffix   string
	decimals int
}{
	{"yoctoNEAR", 0},
	{"yN", 0},
	{"mNEAR", 21},
	{"NEAR", 24},
}

// Balance is an amount of native tokens in minor (yocto) units. It is an
// unsigned 128-bit quantity, matching the wire format of deposits, stakes and
// allowances.
type Balance struct {
	v uint256.Int
}

// BalanceFromUint64 returns a Balance holding the given number of yocto units.
func BalanceFromUint64(v uint64) Balance {
	var b Balance
	b.v.SetUint64(v)
	return b
}

// BalanceFromBytes decodes a Balance from its 16 byte little-endian wire form.
func BalanceFromBytes(data []byte) (Balance, error) {
	var b Balance
	if len(data) != BalanceSize {
		return b, fmt.Errorf("expected %d balance bytes, got %d", BalanceSize, len(data))
	}
	var be [BalanceSize]byte
	for i := range data {
		be[BalanceSize-1-i] = data[i]
	}
	b.v.SetBytes(be[:])
	return b, nil
}

// ParseBalance parses a human-readable token quantity with a mandatory unit
// suffix: "NEAR", "mNEAR" or "yoctoNEAR"/"yN". Decimal fractions are allowed
// down to one yocto ("0.5 NEAR", "12.25 mNEAR").
func ParseBalance(s string) (Balance, error) {
	num, decimals, err := splitUnit(s, func(suffix string) (int, bool) {
		for _, u := range balanceUnits {
			if u.suffix == suffix {
				return u.decimals, true
			}
		}
		return 0, false
	})
	if err != nil {
		return Balance{}, err
	}
	digits, err := scaleDecimal(num, decimals)
	if err != nil {
		return Balance{}, err
	}
	v, err := uint256.FromDecimal(digits)
	if err != nil {
		return Balance{}, fmt.Errorf("invalid quantity %q: %w", s, err)
	}
	b := Balance{v: *v}
	if !b.fits128() {
		return Balance{}, ErrBalanceOverflow
	}
	return b, nil
}

// Add returns b+other, failing on 128-bit overflow.
func (b Balance) Add(other Balance) (Balance, error) {
	var res Balance
	_, carry := res.v.AddOverflow(&b.v, &other.v)
	if carry || !res.fits128() {
		return Balance{}, ErrBalanceOverflow
	}
	return res, nil
}

// Sub returns b-other, failing if other exceeds b.
func (b Balance) Sub(other Balance) (Balance, error) {
	var res Balance
	_, borrow := res.v.SubOverflow(&b.v, &other.v)
	if borrow {
		return Balance{}, ErrBalanceUnderflow
	}
	return res, nil
}

// SaturatingAdd returns b+other, clamping at the maximum 128-bit value.
func (b Balance) SaturatingAdd(other Balance) Balance {
	res, err := b.Add(other)
	if err != nil {
		return maxBalance()
	}
	return res
}

// SaturatingSub returns b-other, clamping at zero.
func (b Balance) SaturatingSub(other Balance) Balance {
	res, err := b.Sub(other)
	if err != nil {
		return Balance{}
	}
	return res
}

// Cmp compares two balances, returning -1, 0 or 1.
func (b Balance) Cmp(other Balance) int {
	return b.v.Cmp(&other.v)
}

// IsZero reports whether the balance is zero.
func (b Balance) IsZero() bool {
	return b.v.IsZero()
}

// Uint64 returns the balance as uint64 if it fits, failing otherwise.
func (b Balance) Uint64() (uint64, error) {
	if !b.v.IsUint64() {
		return 0, ErrBalanceOverflow
	}
	return b.v.Uint64(), nil
}

// Bytes16 returns the 16 byte little-endian wire form of the balance.
func (b Balance) Bytes16() [BalanceSize]byte {
	var be [32]byte
	b.v.WriteToArray32(&be)
	var out [BalanceSize]byte
	for i := 0; i < BalanceSize; i++ {
		out[i] = be[31-i]
	}
	return out
}

// String renders the balance as a decimal number of yocto units.
func (b Balance) String() string {
	return b.v.Dec()
}

// MarshalJSON implements the json.Marshaler interface. Balances travel as
// decimal strings in RPC responses since they exceed JSON number precision.
func (b Balance) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (b *Balance) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return err
	}
	b.v = *v
	if !b.fits128() {
		return ErrBalanceOverflow
	}
	return nil
}

func (b Balance) fits128() bool {
	return b.v[2] == 0 && b.v[3] == 0
}

func maxBalance() Balance {
	var b Balance
	b.v[0] = ^uint64(0)
	b.v[1] = ^uint64(0)
	return b
}

// splitUnit strips a known unit suffix from s and returns the numeric part
// together with the unit's decimal exponent. lookup must resolve an exact
// suffix to its exponent.
func splitUnit(s string, lookup func(string) (int, bool)) (string, int, error) {
	s = strings.TrimSpace(s)
	i := len(s)
	for i > 0 {
		c := s[i-1]
		if c >= '0' && c <= '9' || c == '.' {
			break
		}
		i--
	}
	num := strings.TrimSpace(s[:i])
	unit := strings.TrimSpace(s[i:])
	if unit == "" {
		return "", 0, ErrMissingUnit
	}
	decimals, ok := lookup(unit)
	if !ok {
		return "", 0, fmt.Errorf("unknown unit %q", unit)
	}
	if num == "" {
		return "", 0, fmt.Errorf("missing number in quantity %q", s)
	}
	return num, decimals, nil
}

// scaleDecimal converts a decimal number string into an integer digit string
// scaled by 10^decimals. The fractional part must not be finer than the unit
// allows.
func scaleDecimal(num string, decimals int) (string, error) {
	whole, frac, hasFrac := strings.Cut(num, ".")
	if strings.Contains(frac, ".") {
		return "", fmt.Errorf("malformed number %q", num)
	}
	if hasFrac && frac == "" {
		return "", fmt.Errorf("malformed number %q", num)
	}
	if whole == "" {
		whole = "0"
	}
	for _, part := range []string{whole, frac} {
		for _, c := range part {
			if c < '0' || c > '9' {
				return "", fmt.Errorf("malformed number %q", num)
			}
		}
	}
	if len(frac) > decimals {
		return "", fmt.Errorf("%q has more than %d fractional digits", num, decimals)
	}
	digits := whole + frac + strings.Repeat("0", decimals-len(frac))
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		digits = "0"
	}
	return digits, nil
}
