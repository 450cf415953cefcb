package keys

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Standard BIP-39 test mnemonic.
const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestSlip10TestVector(t *testing.T) {
	// SLIP-10 ed25519 test vector 1.
	seed, err := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	require.NoError(t, err)

	key, chain := slip10Master(seed)
	assert.Equal(t, "2b4be7f19ee27bbf30c667b642d5f4aa69fd169872f8fc3059c08ebae2eb19e7", hex.EncodeToString(key))
	assert.Equal(t, "90046a93de5380a72b5e45010748567d5ea02bbf6522f979e05c0d8d8ca9fffb", hex.EncodeToString(chain))

	key, chain = slip10Child(key, chain, 0|hardenedOffset)
	assert.Equal(t, "68e0fe46dfb67e368c75379acec591dad19df3cde26e63b93a8e704f1dade7a3", hex.EncodeToString(key))
	assert.Equal(t, "8b59aa11380b624e81507a27fedda59fea6d0b779a778918a2fd3590e16e9c69", hex.EncodeToString(chain))
}

func TestNewPrivateKeyFromSeedPhrase(t *testing.T) {
	a, err := NewPrivateKeyFromSeedPhrase(testMnemonic, "", "")
	require.NoError(t, err)
	assert.Equal(t, ED25519, a.KeyType())

	// Derivation is deterministic and the empty path means the default one.
	b, err := NewPrivateKeyFromSeedPhrase(testMnemonic, "", DefaultDerivationPath)
	require.NoError(t, err)
	assert.True(t, a.PublicKey().Equal(b.PublicKey()))

	// Path, passphrase and surrounding whitespace all matter (or don't).
	c, err := NewPrivateKeyFromSeedPhrase(testMnemonic, "", "m/44'/397'/1'")
	require.NoError(t, err)
	assert.False(t, a.PublicKey().Equal(c.PublicKey()))

	d, err := NewPrivateKeyFromSeedPhrase(testMnemonic, "trezor", "")
	require.NoError(t, err)
	assert.False(t, a.PublicKey().Equal(d.PublicKey()))

	e, err := NewPrivateKeyFromSeedPhrase("  "+testMnemonic+"\n", "", "")
	require.NoError(t, err)
	assert.True(t, a.PublicKey().Equal(e.PublicKey()))
}

func TestNewPrivateKeyFromSeedPhraseRejectsBadInput(t *testing.T) {
	_, err := NewPrivateKeyFromSeedPhrase("not a real mnemonic at all", "", "")
	require.ErrorIs(t, err, ErrInvalidSeedPhrase)

	badPaths := []string{
		"44'/397'/0'",    // missing m/
		"m",              // no components
		"m/44/397'/0'",   // non-hardened component
		"m/44'/abc'/0'",  // non-numeric
		"m/2147483648'",  // index out of range
	}
	for _, p := range badPaths {
		_, err := NewPrivateKeyFromSeedPhrase(testMnemonic, "", p)
		require.ErrorIs(t, err, ErrInvalidDerivationPath, p)
	}
}

func TestGenerateSeedPhrase(t *testing.T) {
	phrase, key, err := GenerateSeedPhrase()
	require.NoError(t, err)
	require.NotNil(t, key)

	// 128 bits of entropy make a 12 word mnemonic.
	words := 1
	for _, c := range phrase {
		if c == ' ' {
			words++
		}
	}
	assert.Equal(t, 12, words)

	// The phrase re-derives the same key.
	back, err := NewPrivateKeyFromSeedPhrase(phrase, "", "")
	require.NoError(t, err)
	assert.True(t, back.PublicKey().Equal(key.PublicKey()))
}
