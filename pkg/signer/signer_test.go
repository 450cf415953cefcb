package signer

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r-near/near-kit-go/pkg/crypto/keys"
	"github.com/r-near/near-kit-go/pkg/nep413"
	"github.com/r-near/near-kit-go/pkg/types"
)

func testKey(t *testing.T, tag byte) *keys.PrivateKey {
	t.Helper()
	seed := make([]byte, 32)
	seed[0] = tag
	key, err := keys.NewPrivateKeyFromSeed(seed)
	require.NoError(t, err)
	return key
}

func TestInMemorySigner(t *testing.T) {
	key := testKey(t, 1)
	s := NewInMemorySigner("alice.test", key)

	assert.EqualValues(t, "alice.test", s.GetAccountID())
	assert.True(t, s.GetPublicKey().Equal(key.PublicKey()))

	digest := types.Sha256([]byte("data")).Bytes()
	sig, err := s.Sign(context.Background(), digest)
	require.NoError(t, err)
	assert.True(t, key.PublicKey().Verify(sig, digest))
}

func TestInMemorySignerSignMessage(t *testing.T) {
	key := testKey(t, 1)
	s := NewInMemorySigner("alice.test", key)

	nonce, err := nep413.GenerateNonce()
	require.NoError(t, err)
	payload := &nep413.Payload{Message: "hi", Nonce: nonce, Recipient: "app"}

	signed, err := s.SignMessage(context.Background(), payload)
	require.NoError(t, err)
	assert.EqualValues(t, "alice.test", signed.AccountID)
	require.NoError(t, nep413.Verify(signed, payload, nep413.VerifyOptions{SkipTimestampCheck: true}))
}

func TestPin(t *testing.T) {
	single := NewInMemorySigner("alice.test", testKey(t, 1))
	assert.Equal(t, Signer(single), Pin(single))

	rotating, err := NewRotatingSigner("alice.test", []*keys.PrivateKey{testKey(t, 1), testKey(t, 2)})
	require.NoError(t, err)

	// A pinned view keeps one key stable across GetPublicKey and Sign.
	digest := types.Sha256([]byte("tx")).Bytes()
	for i := 0; i < 5; i++ {
		pinned := Pin(rotating)
		pk := pinned.GetPublicKey()
		sig, err := pinned.Sign(context.Background(), digest)
		require.NoError(t, err)
		assert.True(t, pk.Verify(sig, digest))
	}
}

func TestRotatingSignerRotation(t *testing.T) {
	privs := []*keys.PrivateKey{testKey(t, 1), testKey(t, 2), testKey(t, 3)}
	rotating, err := NewRotatingSigner("alice.test", privs)
	require.NoError(t, err)
	assert.Equal(t, 3, rotating.Len())

	seen := make(map[string]int)
	for i := 0; i < 9; i++ {
		seen[Pin(rotating).GetPublicKey().String()]++
	}
	require.Len(t, seen, 3)
	for _, n := range seen {
		assert.Equal(t, 3, n)
	}

	_, err = NewRotatingSigner("alice.test", nil)
	require.Error(t, err)
}

func TestRotatingSignerConcurrent(t *testing.T) {
	privs := []*keys.PrivateKey{testKey(t, 1), testKey(t, 2), testKey(t, 3), testKey(t, 4)}
	rotating, err := NewRotatingSigner("alice.test", privs)
	require.NoError(t, err)

	digest := types.Sha256([]byte("concurrent")).Bytes()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				pinned := Pin(rotating)
				pk := pinned.GetPublicKey()
				sig, err := pinned.Sign(context.Background(), digest)
				assert.NoError(t, err)
				assert.True(t, pk.Verify(sig, digest))
			}
		}()
	}
	wg.Wait()
}
