// Package signer abstracts transaction signing behind a small capability
// interface so the submission pipeline never touches key material directly.
// Loaders for on-disk credentials, environment variables and the OS keyring
// all return the same in-memory implementation; a rotating multi-key variant
// spreads concurrent submissions across independent nonce sequences.
package signer

import (
	"context"
	"errors"

	"github.com/r-near/near-kit-go/pkg/crypto/keys"
	"github.com/r-near/near-kit-go/pkg/nep413"
	"github.com/r-near/near-kit-go/pkg/types"
)

var (
	// ErrKeyNotFound is returned by loaders when no key record exists for
	// the requested account.
	ErrKeyNotFound = errors.New("key not found")
	// ErrInvalidFormat is returned by loaders for a present but unparsable
	// or inconsistent key record.
	ErrInvalidFormat = errors.New("invalid key record format")
	// ErrPlatformUnavailable is returned when the OS credential store is not
	// usable on this platform.
	ErrPlatformUnavailable = errors.New("platform credential store unavailable")
)

// Signer provides signing capability for one account. Implementations must be
// safe for concurrent use; the client holds a single shared signer.
type Signer interface {
	// GetAccountID returns the account the signer acts for.
	GetAccountID() types.AccountID
	// GetPublicKey returns the public key signatures will verify against.
	GetPublicKey() keys.PublicKey
	// Sign signs arbitrary bytes, usually a transaction or delegate hash.
	Sign(ctx context.Context, data []byte) (keys.Signature, error)
	// SignMessage signs an off-chain NEP-413 payload.
	SignMessage(ctx context.Context, payload *nep413.Payload) (*nep413.SignedMessage, error)
}

// KeyRotator is implemented by signers holding several keys. Operations that
// need a stable pairing of GetPublicKey and Sign results (a transaction
// embeds the key and is signed with it) pin a single-key view first.
type KeyRotator interface {
	// NextSigner returns a single-key signer, advancing the rotation.
	NextSigner() Signer
}

// Pin resolves s to a single-key signer for the duration of one operation.
func Pin(s Signer) Signer {
	if r, ok := s.(KeyRotator); ok {
		return r.NextSigner()
	}
	return s
}

// InMemorySigner signs with a single key held in memory. Signing is
// synchronous and never blocks.
type InMemorySigner struct {
	accountID types.AccountID
	key       *keys.PrivateKey
	publicKey keys.PublicKey
}

// NewInMemorySigner wraps an account and its private key.
func NewInMemorySigner(accountID types.AccountID, key *keys.PrivateKey) *InMemorySigner {
	return &InMemorySigner{
		accountID: accountID,
		key:       key,
		publicKey: key.PublicKey(),
	}
}

// GetAccountID implements the Signer interface.
func (s *InMemorySigner) GetAccountID() types.AccountID {
	return s.accountID
}

// GetPublicKey implements the Signer interface.
func (s *InMemorySigner) GetPublicKey() keys.PublicKey {
	return s.publicKey
}

// Sign implements the Signer interface.
func (s *InMemorySigner) Sign(_ context.Context, data []byte) (keys.Signature, error) {
	return s.key.Sign(data), nil
}

// SignMessage implements the Signer interface.
func (s *InMemorySigner) SignMessage(_ context.Context, payload *nep413.Payload) (*nep413.SignedMessage, error) {
	hash, err := payload.Hash()
	if err != nil {
		return nil, err
	}
	return &nep413.SignedMessage{
		AccountID: s.accountID,
		PublicKey: s.publicKey,
		Signature: s.key.Sign(hash.Bytes()),
	}, nil
}
