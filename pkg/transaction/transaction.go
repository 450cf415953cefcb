package transaction

import (
	"encoding/base64"

	"github.com/r-near/near-kit-go/pkg/crypto/keys"
	"github.com/r-near/near-kit-go/pkg/encoding/borsh"
	"github.com/r-near/near-kit-go/pkg/types"
)

// Transaction is an ordered action list from one signer to one receiver.
// BlockHash must be a recent block hash, it bounds the window in which the
// transaction can be included.
type Transaction struct {
	SignerID   types.AccountID
	PublicKey  keys.PublicKey
	Nonce      uint64
	ReceiverID types.AccountID
	BlockHash  types.CryptoHash
	Actions    []Action
}

// EncodeBorsh implements the borsh.Serializable interface.
func (t *Transaction) EncodeBorsh(w *borsh.Writer) {
	w.WriteString(t.SignerID.String())
	t.PublicKey.EncodeBorsh(w)
	w.WriteU64(t.Nonce)
	w.WriteString(t.ReceiverID.String())
	w.WriteBytes(t.BlockHash.Bytes())
	writeActions(w, t.Actions)
}

// DecodeBorsh implements the borsh.Serializable interface.
func (t *Transaction) DecodeBorsh(r *borsh.Reader) {
	t.SignerID = readAccountID(r)
	t.PublicKey.DecodeBorsh(r)
	t.Nonce = r.ReadU64()
	t.ReceiverID = readAccountID(r)
	r.ReadBytes(t.BlockHash[:])
	t.Actions = readActions(r)
}

// Bytes returns the canonical encoding of the transaction.
func (t *Transaction) Bytes() ([]byte, error) {
	return borsh.Marshal(t)
}

// Hash returns the sha256 digest of the canonical encoding. The hash, not
// the transaction itself, is the signing input.
func (t *Transaction) Hash() (types.CryptoHash, error) {
	data, err := t.Bytes()
	if err != nil {
		return types.CryptoHash{}, err
	}
	return types.Sha256(data), nil
}

// Sign hashes the transaction and signs the hash with the given key,
// returning the hash alongside the signed transaction.
func (t *Transaction) Sign(key *keys.PrivateKey) (types.CryptoHash, *SignedTransaction, error) {
	hash, err := t.Hash()
	if err != nil {
		return types.CryptoHash{}, nil, err
	}
	return hash, &SignedTransaction{
		Transaction: *t,
		Signature:   key.Sign(hash.Bytes()),
	}, nil
}

// SignedTransaction is a transaction together with the signature over its
// hash, ready for submission.
type SignedTransaction struct {
	Transaction Transaction
	Signature   keys.Signature
}

// EncodeBorsh implements the borsh.Serializable interface.
func (st *SignedTransaction) EncodeBorsh(w *borsh.Writer) {
	st.Transaction.EncodeBorsh(w)
	st.Signature.EncodeBorsh(w)
}

// DecodeBorsh implements the borsh.Serializable interface.
func (st *SignedTransaction) DecodeBorsh(r *borsh.Reader) {
	st.Transaction.DecodeBorsh(r)
	st.Signature.DecodeBorsh(r)
}

// Bytes returns the canonical encoding of the signed transaction.
func (st *SignedTransaction) Bytes() ([]byte, error) {
	return borsh.Marshal(st)
}

// Base64 returns the canonical encoding in the base64 form used inside
// JSON-RPC payloads.
func (st *SignedTransaction) Base64() (string, error) {
	data, err := st.Bytes()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// SignedTransactionFromBytes decodes a signed transaction from its canonical
// encoding.
func SignedTransactionFromBytes(data []byte) (*SignedTransaction, error) {
	st := new(SignedTransaction)
	if err := borsh.Unmarshal(data, st); err != nil {
		return nil, err
	}
	return st, nil
}

// SignedTransactionFromBase64 decodes a signed transaction from its base64
// wire form.
func SignedTransactionFromBase64(s string) (*SignedTransaction, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return SignedTransactionFromBytes(data)
}
