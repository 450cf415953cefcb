package signer

import (
	"context"
	"errors"

	"go.uber.org/atomic"

	"github.com/r-near/near-kit-go/pkg/crypto/keys"
	"github.com/r-near/near-kit-go/pkg/nep413"
	"github.com/r-near/near-kit-go/pkg/types"
)

// RotatingSigner holds several keys for one account and serves them
// round-robin via a lock-free cursor. Concurrent submissions each pin a
// different key, so they advance independent on-ledger nonce sequences
// instead of contending on one. Each key must be registered on the account
// with its own access key.
type RotatingSigner struct {
	accountID types.AccountID
	signers   []*InMemorySigner
	cursor    *atomic.Uint64
}

// NewRotatingSigner builds a rotating signer over the given keys.
func NewRotatingSigner(accountID types.AccountID, privateKeys []*keys.PrivateKey) (*RotatingSigner, error) {
	if len(privateKeys) == 0 {
		return nil, errors.New("rotating signer requires at least one key")
	}
	signers := make([]*InMemorySigner, len(privateKeys))
	for i, k := range privateKeys {
		signers[i] = NewInMemorySigner(accountID, k)
	}
	return &RotatingSigner{
		accountID: accountID,
		signers:   signers,
		cursor:    atomic.NewUint64(0),
	}, nil
}

// NextSigner implements the KeyRotator interface, returning the next key's
// single-key signer and advancing the rotation.
func (s *RotatingSigner) NextSigner() Signer {
	idx := (s.cursor.Inc() - 1) % uint64(len(s.signers))
	return s.signers[idx]
}

// GetAccountID implements the Signer interface.
func (s *RotatingSigner) GetAccountID() types.AccountID {
	return s.accountID
}

// GetPublicKey implements the Signer interface. It reports the key the next
// un-pinned Sign call will use; concurrent callers needing a stable pairing
// must go through Pin.
func (s *RotatingSigner) GetPublicKey() keys.PublicKey {
	idx := s.cursor.Load() % uint64(len(s.signers))
	return s.signers[idx].GetPublicKey()
}

// Sign implements the Signer interface using the next key in rotation.
func (s *RotatingSigner) Sign(ctx context.Context, data []byte) (keys.Signature, error) {
	return s.NextSigner().Sign(ctx, data)
}

// SignMessage implements the Signer interface using the next key in rotation.
func (s *RotatingSigner) SignMessage(ctx context.Context, payload *nep413.Payload) (*nep413.SignedMessage, error) {
	return s.NextSigner().SignMessage(ctx, payload)
}

// Len returns the number of keys in rotation.
func (s *RotatingSigner) Len() int {
	return len(s.signers)
}
