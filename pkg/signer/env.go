package signer

import (
	"fmt"
	"os"

	"github.com/r-near/near-kit-go/pkg/crypto/keys"
	"github.com/r-near/near-kit-go/pkg/types"
)

// DefaultEnvVar is the environment variable NewEnvSigner reads when none is
// given.
const DefaultEnvVar = "NEAR_PRIVATE_KEY"

// NewEnvSigner loads the account's key from an environment variable at
// construction time. An unset or empty variable maps to ErrKeyNotFound, an
// unparsable value to ErrInvalidFormat.
func NewEnvSigner(accountID types.AccountID, envVar string) (*InMemorySigner, error) {
	if envVar == "" {
		envVar = DefaultEnvVar
	}
	value, ok := os.LookupEnv(envVar)
	if !ok || value == "" {
		return nil, fmt.Errorf("%w: environment variable %s is not set", ErrKeyNotFound, envVar)
	}
	key, err := keys.NewPrivateKeyFromString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, envVar, err)
	}
	return NewInMemorySigner(accountID, key), nil
}
