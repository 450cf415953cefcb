package types

import (
	"crypto/sha256"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCryptoHashRoundtrip(t *testing.T) {
	h := Sha256([]byte("arbitrary payload"))
	assert.EqualValues(t, sha256.Sum256([]byte("arbitrary payload")), h)

	back, err := CryptoHashFromString(h.String())
	require.NoError(t, err)
	assert.Equal(t, h, back)

	back, err = CryptoHashFromBytes(h.Bytes())
	require.NoError(t, err)
	assert.Equal(t, h, back)
}

func TestCryptoHashErrors(t *testing.T) {
	_, err := CryptoHashFromBytes(make([]byte, 31))
	require.Error(t, err)

	// 0, O, I and l are not part of the base58 alphabet.
	_, err = CryptoHashFromString("0OIl")
	require.Error(t, err)

	// Valid base58 but wrong decoded length.
	_, err = CryptoHashFromString("abc")
	require.Error(t, err)
}

func TestCryptoHashJSON(t *testing.T) {
	h := Sha256([]byte("x"))
	data, err := json.Marshal(h)
	require.NoError(t, err)

	var back CryptoHash
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, h, back)

	require.Error(t, json.Unmarshal([]byte(`"abc"`), &back))
	require.Error(t, json.Unmarshal([]byte(`42`), &back))
}
