package types

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"
)

// HashSize is the size of CryptoHash in bytes.
const HashSize = 32

// CryptoHash is a 32 byte long SHA-256 digest used for transaction and block
// hashes. Its text form is base58.
type CryptoHash [HashSize]byte

// Sha256 computes the sha256 digest of data as a CryptoHash.
func Sha256(data []byte) CryptoHash {
	return sha256.Sum256(data)
}

// CryptoHashFromString attempts to decode a base58 string into a CryptoHash.
func CryptoHashFromString(s string) (h CryptoHash, err error) {
	b, err := base58.Decode(s)
	if err != nil {
		return h, fmt.Errorf("invalid base58 hash: %w", err)
	}
	return CryptoHashFromBytes(b)
}

// CryptoHashFromBytes attempts to decode the given bytes into a CryptoHash.
func CryptoHashFromBytes(b []byte) (h CryptoHash, err error) {
	if len(b) != HashSize {
		return h, fmt.Errorf("expected %d hash bytes, got %d", HashSize, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// Bytes returns a byte slice representation of h.
func (h CryptoHash) Bytes() []byte {
	return h[:]
}

// String implements the Stringer interface, rendering the hash as base58.
func (h CryptoHash) String() string {
	return base58.Encode(h[:])
}

// MarshalJSON implements the json.Marshaler interface.
func (h CryptoHash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (h *CryptoHash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := CryptoHashFromString(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
