// Package config holds network presets and the YAML configuration file
// format used by tooling built on the SDK.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Network describes one NEAR network endpoint set.
type Network struct {
	// Name is the chain identifier, e.g. "mainnet".
	Name string `yaml:"name"`
	// RPCURL is the JSON-RPC endpoint.
	RPCURL string `yaml:"rpc_url"`
	// CredentialsDir overrides the default on-disk credentials location.
	CredentialsDir string `yaml:"credentials_dir,omitempty"`
}

// Config is the top level struct representing the config for SDK tooling.
type Config struct {
	// DefaultNetwork names the network used when none is selected.
	DefaultNetwork string `yaml:"default_network"`
	// Networks maps network names to endpoint sets; entries override the
	// built-in presets of the same name.
	Networks map[string]Network `yaml:"networks"`
}

// Built-in presets.
var presets = map[string]Network{
	"mainnet": {
		Name:   "mainnet",
		RPCURL: "https://rpc.mainnet.near.org",
	},
	"testnet": {
		Name:   "testnet",
		RPCURL: "https://rpc.testnet.near.org",
	},
	"localnet": {
		Name:   "localnet",
		RPCURL: "http://127.0.0.1:3030",
	},
}

// Mainnet returns the mainnet preset.
func Mainnet() Network { return presets["mainnet"] }

// Testnet returns the testnet preset.
func Testnet() Network { return presets["testnet"] }

// Localnet returns the localnet preset.
func Localnet() Network { return presets["localnet"] }

// Default returns a config holding only the built-in presets, defaulting to
// testnet.
func Default() Config {
	networks := make(map[string]Network, len(presets))
	for name, n := range presets {
		networks[name] = n
	}
	return Config{
		DefaultNetwork: "testnet",
		Networks:       networks,
	}
}

// Load attempts to load the config from the given path, layering it over
// the built-in presets.
func Load(path string) (Config, error) {
	configData, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(configData, &config); err != nil {
		return Config{}, fmt.Errorf("problem unmarshaling config data: %w", err)
	}
	for name, n := range config.Networks {
		if n.Name == "" {
			n.Name = name
			config.Networks[name] = n
		}
	}
	return config, nil
}

// Network resolves a network by name, falling back to the default when name
// is empty.
func (c Config) Network(name string) (Network, error) {
	if name == "" {
		name = c.DefaultNetwork
	}
	n, ok := c.Networks[name]
	if !ok {
		return Network{}, fmt.Errorf("unknown network %q", name)
	}
	return n, nil
}
