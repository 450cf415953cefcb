package signer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/r-near/near-kit-go/pkg/crypto/keys"
	"github.com/r-near/near-kit-go/pkg/types"
)

// KeyFile is the on-disk credential record, one JSON file per account at
// <dir>/<network>/<account>.json. The layout matches the established CLI
// tooling so keys are interchangeable between it and this SDK.
type KeyFile struct {
	AccountID  types.AccountID `json:"account_id"`
	PublicKey  keys.PublicKey  `json:"public_key"`
	PrivateKey string          `json:"private_key"`
}

// CredentialsPath returns the key file location for an account on a network.
func CredentialsPath(dir, network string, accountID types.AccountID) string {
	return filepath.Join(dir, network, accountID.String()+".json")
}

// NewFileSigner loads the account's key from the credentials directory at
// construction time. A missing file maps to ErrKeyNotFound, an unparsable or
// inconsistent record to ErrInvalidFormat.
func NewFileSigner(dir, network string, accountID types.AccountID) (*InMemorySigner, error) {
	path := CredentialsPath(dir, network, accountID)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no credentials at %s", ErrKeyNotFound, path)
		}
		return nil, err
	}
	var record KeyFile
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, path, err)
	}
	key, err := keys.NewPrivateKeyFromString(record.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, path, err)
	}
	if len(record.PublicKey.K) != 0 && !record.PublicKey.Equal(key.PublicKey()) {
		return nil, fmt.Errorf("%w: %s: public key does not match private key", ErrInvalidFormat, path)
	}
	account := accountID
	if record.AccountID != "" {
		account = record.AccountID
	}
	return NewInMemorySigner(account, key), nil
}

// SaveKeyFile writes the credential record for an account, creating the
// network directory as needed. The file is readable by its owner only.
func SaveKeyFile(dir, network string, accountID types.AccountID, key *keys.PrivateKey) error {
	path := CredentialsPath(dir, network, accountID)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	record := KeyFile{
		AccountID:  accountID,
		PublicKey:  key.PublicKey(),
		PrivateKey: key.Export(),
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
