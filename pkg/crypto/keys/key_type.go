package keys

import (
	"fmt"
	"strings"
)

// KeyType is the curve tag shared by public keys, secret keys and signatures.
// The numeric values are a wire-format contract and must never be renumbered.
type KeyType byte

const (
	// ED25519 is the primary curve, used for all account keys.
	ED25519 KeyType = 0
	// SECP256K1 is reserved for ETH-implicit accounts.
	SECP256K1 KeyType = 1
)

// String implements the Stringer interface, returning the lowercase curve
// name used in the "<curve>:<base58>" text form.
func (t KeyType) String() string {
	switch t {
	case ED25519:
		return "ed25519"
	case SECP256K1:
		return "secp256k1"
	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}

// KeyTypeFromString parses a curve name, case-insensitively.
func KeyTypeFromString(s string) (KeyType, error) {
	switch strings.ToLower(s) {
	case "ed25519":
		return ED25519, nil
	case "secp256k1":
		return SECP256K1, nil
	default:
		return 0, fmt.Errorf("unknown key type %q", s)
	}
}

// publicKeySize returns the raw public key payload length for the curve.
func (t KeyType) publicKeySize() int {
	if t == SECP256K1 {
		return 64
	}
	return 32
}

// signatureSize returns the raw signature payload length for the curve.
func (t KeyType) signatureSize() int {
	if t == SECP256K1 {
		return 65
	}
	return 64
}
