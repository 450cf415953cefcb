package types

import (
	"encoding/json"
	"fmt"
	"regexp"
)

const (
	// AccountIDMinLen is the shortest allowed account identifier.
	AccountIDMinLen = 2
	// AccountIDMaxLen is the longest allowed account identifier.
	AccountIDMaxLen = 64
)

// accountIDRegex covers named accounts: dot-separated parts where each part
// consists of lowercase alphanumerics optionally split by single '-' or '_'
// separators. Implicit accounts (64 hex chars) and ETH-implicit accounts
// (0x + 40 hex chars) happen to match the same grammar.
var accountIDRegex = regexp.MustCompile(`^(([a-z\d]+[-_])*[a-z\d]+\.)*([a-z\d]+[-_])*[a-z\d]+$`)

var implicitRegex = regexp.MustCompile(`^[0-9a-f]{64}$`)

var ethImplicitRegex = regexp.MustCompile(`^0x[0-9a-f]{40}$`)

// AccountID is a valid NEAR account identifier. The zero value is not valid,
// use NewAccountID to construct one. Once constructed it is never re-validated.
type AccountID string

// NewAccountID checks s against the account identifier grammar and returns it
// as an AccountID.
func NewAccountID(s string) (AccountID, error) {
	if err := ValidateAccountID(s); err != nil {
		return "", err
	}
	return AccountID(s), nil
}

// ValidateAccountID returns an error if s is not a well-formed account
// identifier.
func ValidateAccountID(s string) error {
	if len(s) < AccountIDMinLen || len(s) > AccountIDMaxLen {
		return fmt.Errorf("account ID %q is %d characters long, expected %d..%d",
			s, len(s), AccountIDMinLen, AccountIDMaxLen)
	}
	if !accountIDRegex.MatchString(s) {
		return fmt.Errorf("account ID %q contains invalid characters or separators", s)
	}
	return nil
}

// IsImplicit reports whether the account is an implicit one, i.e. a 64
// character lowercase hex rendering of an ed25519 public key.
func (a AccountID) IsImplicit() bool {
	return implicitRegex.MatchString(string(a))
}

// IsEthImplicit reports whether the account is an ETH-implicit one, i.e.
// "0x" followed by 40 lowercase hex characters of a secp256k1 address.
func (a AccountID) IsEthImplicit() bool {
	return ethImplicitRegex.MatchString(string(a))
}

// String implements the Stringer interface.
func (a AccountID) String() string {
	return string(a)
}

// MarshalJSON implements the json.Marshaler interface.
func (a AccountID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(a))
}

// UnmarshalJSON implements the json.Unmarshaler interface, validating the
// identifier in the process.
func (a *AccountID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := NewAccountID(s)
	if err != nil {
		return err
	}
	*a = id
	return nil
}
