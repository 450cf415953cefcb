package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/mr-tron/base58"
)

// PrivateKey holds secret key material for one curve and provides signing.
// Its String, Format and JSON renderings never contain the secret bytes; use
// Export for writing credential files.
type PrivateKey struct {
	keyType KeyType
	ed      ed25519.PrivateKey
	secp    *secp256k1.PrivateKey
}

// GeneratePrivateKey creates a new random ed25519 private key.
func GeneratePrivateKey() (*PrivateKey, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{keyType: ED25519, ed: priv}, nil
}

// GenerateSecp256k1PrivateKey creates a new random secp256k1 private key.
func GenerateSecp256k1PrivateKey() (*PrivateKey, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &PrivateKey{keyType: SECP256K1, secp: priv}, nil
}

// NewPrivateKeyFromSeed returns an ed25519 private key deterministically
// derived from a 32 byte seed.
func NewPrivateKeyFromSeed(seed []byte) (*PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("expected %d seed bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return &PrivateKey{keyType: ED25519, ed: ed25519.NewKeyFromSeed(seed)}, nil
}

// NewPrivateKeyFromString returns a private key parsed from its
// "<curve>:<base58>" credential rendering. Ed25519 secrets use the expanded
// 64 byte form (seed plus public half), secp256k1 the 32 byte scalar.
func NewPrivateKeyFromString(s string) (*PrivateKey, error) {
	curve, data, err := splitKeyString(s)
	if err != nil {
		return nil, err
	}
	switch curve {
	case ED25519:
		if len(data) != ed25519.PrivateKeySize {
			return nil, fmt.Errorf("invalid ed25519 secret key length %d", len(data))
		}
		return &PrivateKey{keyType: ED25519, ed: ed25519.PrivateKey(data)}, nil
	case SECP256K1:
		if len(data) != 32 {
			return nil, fmt.Errorf("invalid secp256k1 secret key length %d", len(data))
		}
		return &PrivateKey{keyType: SECP256K1, secp: secp256k1.PrivKeyFromBytes(data)}, nil
	default:
		return nil, fmt.Errorf("unknown key type %d", curve)
	}
}

// KeyType returns the curve of the key.
func (p *PrivateKey) KeyType() KeyType {
	return p.keyType
}

// PublicKey derives the public key from the private key.
func (p *PrivateKey) PublicKey() PublicKey {
	switch p.keyType {
	case SECP256K1:
		uncompressed := p.secp.PubKey().SerializeUncompressed()
		return PublicKey{Type: SECP256K1, K: uncompressed[1:]}
	default:
		pub := p.ed.Public().(ed25519.PublicKey)
		return PublicKey{Type: ED25519, K: []byte(pub)}
	}
}

// Sign signs arbitrary length data with the private key. Ed25519 signing is
// deterministic: identical input always yields an identical signature.
func (p *PrivateKey) Sign(data []byte) Signature {
	switch p.keyType {
	case SECP256K1:
		compact := secpecdsa.SignCompact(p.secp, data, false)
		// Compact layout is v||r||s with v biased by 27; the wire wants r||s||v.
		sig := make([]byte, 65)
		copy(sig, compact[1:])
		sig[64] = compact[0] - 27
		return Signature{Type: SECP256K1, Data: sig}
	default:
		return Signature{Type: ED25519, Data: ed25519.Sign(p.ed, data)}
	}
}

// Export returns the "<curve>:<base58>" credential rendering of the secret
// key, the only place the secret bytes are ever turned into text. Handle the
// result like the key itself.
func (p *PrivateKey) Export() string {
	switch p.keyType {
	case SECP256K1:
		return p.keyType.String() + ":" + base58.Encode(p.secp.Serialize())
	default:
		return p.keyType.String() + ":" + base58.Encode(p.ed)
	}
}

// String implements the Stringer interface. It identifies the key by its
// public half only.
func (p *PrivateKey) String() string {
	return fmt.Sprintf("PrivateKey(%s)", p.PublicKey())
}
