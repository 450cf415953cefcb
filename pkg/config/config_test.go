package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresets(t *testing.T) {
	assert.Equal(t, "https://rpc.mainnet.near.org", Mainnet().RPCURL)
	assert.Equal(t, "https://rpc.testnet.near.org", Testnet().RPCURL)
	assert.Equal(t, "http://127.0.0.1:3030", Localnet().RPCURL)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "testnet", cfg.DefaultNetwork)

	n, err := cfg.Network("")
	require.NoError(t, err)
	assert.Equal(t, Testnet(), n)

	n, err = cfg.Network("mainnet")
	require.NoError(t, err)
	assert.Equal(t, Mainnet(), n)

	_, err = cfg.Network("betanet")
	require.Error(t, err)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadLayersOverPresets(t *testing.T) {
	path := writeConfig(t, `
default_network: staging
networks:
  staging:
    rpc_url: https://rpc.staging.example.com
    credentials_dir: /var/lib/nearkit/creds
  testnet:
    rpc_url: https://archival-rpc.testnet.near.org
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.DefaultNetwork)

	// A new network gets its name backfilled from the map key.
	n, err := cfg.Network("")
	require.NoError(t, err)
	assert.Equal(t, "staging", n.Name)
	assert.Equal(t, "https://rpc.staging.example.com", n.RPCURL)
	assert.Equal(t, "/var/lib/nearkit/creds", n.CredentialsDir)

	// A preset of the same name is overridden by the file.
	n, err = cfg.Network("testnet")
	require.NoError(t, err)
	assert.Equal(t, "https://archival-rpc.testnet.near.org", n.RPCURL)

	// Untouched presets survive.
	n, err = cfg.Network("mainnet")
	require.NoError(t, err)
	assert.Equal(t, Mainnet(), n)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "networks: [not, a, map]"))
	require.Error(t, err)
}
