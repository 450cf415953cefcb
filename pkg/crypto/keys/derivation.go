package keys

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// DefaultDerivationPath is the registered coin-type path for NEAR keys.
const DefaultDerivationPath = "m/44'/397'/0'"

var (
	// ErrInvalidSeedPhrase is returned for a mnemonic that fails the BIP-39
	// word list or checksum.
	ErrInvalidSeedPhrase = errors.New("invalid seed phrase")
	// ErrInvalidDerivationPath is returned for a malformed or non-hardened
	// derivation path. Ed25519 supports hardened derivation only.
	ErrInvalidDerivationPath = errors.New("invalid derivation path")
)

const hardenedOffset = 0x80000000

// slip10MasterKey is the HMAC key fixed by SLIP-10 for the ed25519 curve.
const slip10MasterKey = "ed25519 seed"

// NewPrivateKeyFromSeedPhrase derives an ed25519 private key from a BIP-39
// mnemonic and optional passphrase using hardened SLIP-10 derivation along
// path. An empty path selects DefaultDerivationPath.
func NewPrivateKeyFromSeedPhrase(mnemonic, passphrase, path string) (*PrivateKey, error) {
	mnemonic = strings.TrimSpace(mnemonic)
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidSeedPhrase
	}
	if path == "" {
		path = DefaultDerivationPath
	}
	indices, err := parseDerivationPath(path)
	if err != nil {
		return nil, err
	}
	seed := bip39.NewSeed(mnemonic, passphrase)
	key, chain := slip10Master(seed)
	for _, index := range indices {
		key, chain = slip10Child(key, chain, index)
	}
	return NewPrivateKeyFromSeed(key)
}

// parseDerivationPath parses "m/44'/397'/0'" style paths. Every component
// must be hardened.
func parseDerivationPath(path string) ([]uint32, error) {
	segments := strings.Split(path, "/")
	if len(segments) < 2 || segments[0] != "m" {
		return nil, fmt.Errorf("%w: %q must start with m/", ErrInvalidDerivationPath, path)
	}
	indices := make([]uint32, 0, len(segments)-1)
	for _, seg := range segments[1:] {
		trimmed, hardened := strings.CutSuffix(seg, "'")
		if !hardened {
			return nil, fmt.Errorf("%w: component %q is not hardened", ErrInvalidDerivationPath, seg)
		}
		index, err := strconv.ParseUint(trimmed, 10, 32)
		if err != nil || index >= hardenedOffset {
			return nil, fmt.Errorf("%w: bad component %q", ErrInvalidDerivationPath, seg)
		}
		indices = append(indices, uint32(index)|hardenedOffset)
	}
	return indices, nil
}

// slip10Master computes the SLIP-10 master key and chain code from a BIP-39
// seed.
func slip10Master(seed []byte) (key, chain []byte) {
	mac := hmac.New(sha512.New, []byte(slip10MasterKey))
	mac.Write(seed)
	sum := mac.Sum(nil)
	return sum[:32], sum[32:]
}

// slip10Child computes one hardened child step.
func slip10Child(key, chain []byte, index uint32) (childKey, childChain []byte) {
	var data [1 + 32 + 4]byte
	copy(data[1:33], key)
	binary.BigEndian.PutUint32(data[33:], index)
	mac := hmac.New(sha512.New, chain)
	mac.Write(data[:])
	sum := mac.Sum(nil)
	return sum[:32], sum[32:]
}

// GenerateSeedPhrase creates a fresh 12 word mnemonic together with the key
// derived from it along DefaultDerivationPath.
func GenerateSeedPhrase() (string, *PrivateKey, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return "", nil, err
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", nil, err
	}
	key, err := NewPrivateKeyFromSeedPhrase(mnemonic, "", "")
	if err != nil {
		return "", nil, err
	}
	return mnemonic, key, nil
}
