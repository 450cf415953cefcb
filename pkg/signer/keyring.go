package signer

import (
	"errors"
	"fmt"

	"github.com/r-near/near-kit-go/pkg/crypto/keys"
	"github.com/r-near/near-kit-go/pkg/types"
	"github.com/zalando/go-keyring"
)

// keyringService returns the OS credential store service name for an account
// on a network.
func keyringService(network string, accountID types.AccountID) string {
	return network + "-" + accountID.String()
}

// keyringUser returns the credential store user name for an account key.
func keyringUser(accountID types.AccountID, pk keys.PublicKey) string {
	return accountID.String() + ":" + pk.String()
}

// NewKeyringSigner loads the account's key from the OS credential store at
// construction time, using service "<network>-<account>" and user
// "<account>:<pubkey>". A missing entry maps to ErrKeyNotFound, an
// unsupported platform to ErrPlatformUnavailable.
func NewKeyringSigner(network string, accountID types.AccountID, pk keys.PublicKey) (*InMemorySigner, error) {
	service := keyringService(network, accountID)
	user := keyringUser(accountID, pk)
	secret, err := keyring.Get(service, user)
	if err != nil {
		switch {
		case errors.Is(err, keyring.ErrNotFound):
			return nil, fmt.Errorf("%w: no keyring entry %s/%s", ErrKeyNotFound, service, user)
		case errors.Is(err, keyring.ErrUnsupportedPlatform):
			return nil, fmt.Errorf("%w: %v", ErrPlatformUnavailable, err)
		default:
			return nil, err
		}
	}
	key, err := keys.NewPrivateKeyFromString(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: keyring entry %s/%s: %v", ErrInvalidFormat, service, user, err)
	}
	if !key.PublicKey().Equal(pk) {
		return nil, fmt.Errorf("%w: keyring entry %s/%s holds a different key", ErrInvalidFormat, service, user)
	}
	return NewInMemorySigner(accountID, key), nil
}

// SaveKeyringKey stores a key in the OS credential store under the layout
// NewKeyringSigner reads.
func SaveKeyringKey(network string, accountID types.AccountID, key *keys.PrivateKey) error {
	service := keyringService(network, accountID)
	user := keyringUser(accountID, key.PublicKey())
	if err := keyring.Set(service, user, key.Export()); err != nil {
		if errors.Is(err, keyring.ErrUnsupportedPlatform) {
			return fmt.Errorf("%w: %v", ErrPlatformUnavailable, err)
		}
		return err
	}
	return nil
}
