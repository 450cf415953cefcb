package transaction

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r-near/near-kit-go/pkg/encoding/borsh"
	"github.com/r-near/near-kit-go/pkg/types"
)

func testDelegateAction(t *testing.T) *DelegateAction {
	t.Helper()
	da, err := NewDelegateAction(
		"alice.test", "dapp.test",
		[]Action{&FunctionCall{MethodName: "play", Args: []byte("{}"), Gas: 10 * types.Tera, Deposit: mustBalance(t, "0 yN")}},
		42, 100_000, testKey(t, 1).PublicKey(),
	)
	require.NoError(t, err)
	return da
}

func TestDelegateActionRejectsNesting(t *testing.T) {
	inner, err := testDelegateAction(t).Sign(testKey(t, 1))
	require.NoError(t, err)

	_, err = NewDelegateAction("alice.test", "bob.test",
		[]Action{NewDelegate(inner)}, 1, 10, testKey(t, 1).PublicKey())
	require.ErrorIs(t, err, ErrNestedDelegate)
}

func TestDelegateHashDomainSeparation(t *testing.T) {
	da := testDelegateAction(t)

	// The signing input is sha256 over the NEP-461 discriminant (2^30+366,
	// little-endian) followed by the canonical encoding, so a delegate
	// signature can never collide with a transaction signature.
	encoded, err := borsh.Marshal(da)
	require.NoError(t, err)

	prefix := make([]byte, 4)
	binary.LittleEndian.PutUint32(prefix, 1<<30+366)
	expected := types.Sha256(append(prefix, encoded...))

	hash, err := da.Hash()
	require.NoError(t, err)
	assert.Equal(t, expected, hash)
	assert.NotEqual(t, types.Sha256(encoded), hash)
}

func TestSignedDelegateVerify(t *testing.T) {
	key := testKey(t, 1)
	da := testDelegateAction(t)

	signed, err := da.Sign(key)
	require.NoError(t, err)
	assert.True(t, signed.Verify())

	// Any mutation of the payload invalidates the signature.
	tampered := *signed
	tampered.DelegateAction.Nonce++
	assert.False(t, tampered.Verify())

	tampered = *signed
	tampered.DelegateAction.ReceiverID = "mallory.test"
	assert.False(t, tampered.Verify())

	// As does signing with a key other than the embedded one.
	wrongKey, err := da.Sign(testKey(t, 2))
	require.NoError(t, err)
	assert.False(t, wrongKey.Verify())
}

func TestDelegateActionInTransactionRoundtrip(t *testing.T) {
	signed, err := testDelegateAction(t).Sign(testKey(t, 1))
	require.NoError(t, err)

	// The relayer wraps the signed delegate into its own transaction.
	tx := &Transaction{
		SignerID:   mustAccount(t, "relayer.test"),
		PublicKey:  testKey(t, 7).PublicKey(),
		Nonce:      9,
		ReceiverID: mustAccount(t, "alice.test"),
		BlockHash:  types.Sha256([]byte("head")),
		Actions:    []Action{NewDelegate(signed)},
	}
	data, err := tx.Bytes()
	require.NoError(t, err)

	got := new(Transaction)
	require.NoError(t, borsh.Unmarshal(data, got))
	require.Len(t, got.Actions, 1)

	back, ok := got.Actions[0].(*Delegate)
	require.True(t, ok)
	assert.Equal(t, signed.DelegateAction, back.SignedDelegate.DelegateAction)
	assert.True(t, back.SignedDelegate.Verify())
}

func TestDelegateDecodeRejectsNesting(t *testing.T) {
	signed, err := testDelegateAction(t).Sign(testKey(t, 1))
	require.NoError(t, err)

	// Craft an encoding with a delegate nested inside a delegate action.
	nested := &DelegateAction{
		SenderID:       "alice.test",
		ReceiverID:     "bob.test",
		Actions:        []Action{NewDelegate(signed)},
		Nonce:          1,
		MaxBlockHeight: 10,
		PublicKey:      testKey(t, 1).PublicKey(),
	}
	buf := new(bytes.Buffer)
	w := borsh.NewWriter(buf)
	nested.EncodeBorsh(w)
	require.NoError(t, w.Err)

	require.ErrorIs(t, borsh.Unmarshal(buf.Bytes(), new(DelegateAction)), ErrNestedDelegate)
}
