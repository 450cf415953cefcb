package keys

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"strings"

	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/mr-tron/base58"
	"github.com/r-near/near-kit-go/pkg/encoding/borsh"
)

// PublicKey is a curve-tagged public key. The wire form is the tag byte
// followed by the raw key bytes (32 for ed25519, 64 for secp256k1), the text
// form is "<curve>:<base58>".
type PublicKey struct {
	Type KeyType
	K    []byte
}

// NewPublicKeyFromString returns a public key parsed from its
// "<curve>:<base58>" text form.
func NewPublicKeyFromString(s string) (PublicKey, error) {
	curve, data, err := splitKeyString(s)
	if err != nil {
		return PublicKey{}, err
	}
	if len(data) != curve.publicKeySize() {
		return PublicKey{}, fmt.Errorf("invalid %s public key length %d", curve, len(data))
	}
	return PublicKey{Type: curve, K: data}, nil
}

// Bytes returns the wire form of the key: tag byte plus raw key bytes.
func (p PublicKey) Bytes() []byte {
	return append([]byte{byte(p.Type)}, p.K...)
}

// Equal returns true if both keys use the same curve and point.
func (p PublicKey) Equal(other PublicKey) bool {
	return p.Type == other.Type && bytes.Equal(p.K, other.K)
}

// Verify reports whether sig is a valid signature of msg under this key.
// A curve tag mismatch or malformed payload length is a failed verification,
// never a panic.
func (p PublicKey) Verify(sig Signature, msg []byte) bool {
	if sig.Type != p.Type || len(sig.Data) != p.Type.signatureSize() || len(p.K) != p.Type.publicKeySize() {
		return false
	}
	switch p.Type {
	case ED25519:
		return ed25519.Verify(ed25519.PublicKey(p.K), msg, sig.Data)
	case SECP256K1:
		// Raw layout is r||s||v; RecoverCompact wants the recovery code first.
		compact := make([]byte, 65)
		compact[0] = sig.Data[64] + 27
		copy(compact[1:], sig.Data[:64])
		recovered, _, err := secpecdsa.RecoverCompact(compact, msg)
		if err != nil {
			return false
		}
		uncompressed := recovered.SerializeUncompressed()
		return bytes.Equal(uncompressed[1:], p.K)
	default:
		return false
	}
}

// ToImplicitAccountID renders an ed25519 key as the matching 64 character hex
// implicit account identifier.
func (p PublicKey) ToImplicitAccountID() (string, error) {
	if p.Type != ED25519 {
		return "", fmt.Errorf("implicit accounts require an ed25519 key, got %s", p.Type)
	}
	return fmt.Sprintf("%x", p.K), nil
}

// String implements the Stringer interface.
func (p PublicKey) String() string {
	return p.Type.String() + ":" + base58.Encode(p.K)
}

// EncodeBorsh implements the borsh.Serializable interface.
func (p PublicKey) EncodeBorsh(w *borsh.Writer) {
	w.WriteU8(byte(p.Type))
	w.WriteBytes(p.K)
}

// DecodeBorsh implements the borsh.Serializable interface.
func (p *PublicKey) DecodeBorsh(r *borsh.Reader) {
	tag := r.ReadU8()
	if r.Err != nil {
		return
	}
	if tag > byte(SECP256K1) {
		r.Err = fmt.Errorf("invalid key type tag %d", tag)
		return
	}
	p.Type = KeyType(tag)
	p.K = make([]byte, p.Type.publicKeySize())
	r.ReadBytes(p.K)
}

// MarshalJSON implements the json.Marshaler interface.
func (p PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (p *PublicKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := NewPublicKeyFromString(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// splitKeyString splits a "<curve>:<base58>" rendering into its tag and
// decoded payload.
func splitKeyString(s string) (KeyType, []byte, error) {
	curveName, encoded, found := strings.Cut(s, ":")
	if !found {
		return 0, nil, fmt.Errorf("key %q has no <curve>: prefix", s)
	}
	curve, err := KeyTypeFromString(curveName)
	if err != nil {
		return 0, nil, err
	}
	data, err := base58.Decode(encoded)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid base58 key data: %w", err)
	}
	return curve, data, nil
}
