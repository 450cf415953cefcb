package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli"

	"github.com/r-near/near-kit-go/pkg/config"
)

var (
	networkFlag = cli.StringFlag{
		Name:  "network, n",
		Usage: "Network to operate on (mainnet, testnet, localnet or a configured name).",
	}
	configFlag = cli.StringFlag{
		Name:  "config, c",
		Usage: "Path to a YAML config layered over the built-in networks.",
	}
	accountFlag = cli.StringFlag{
		Name:  "account, a",
		Usage: "Account the command acts for.",
	}
)

// resolveNetwork loads the config (built-in presets when no --config is
// given) and picks the network selected by --network.
func resolveNetwork(ctx *cli.Context) (config.Network, error) {
	cfg := config.Default()
	if path := ctx.String("config"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return config.Network{}, err
		}
	}
	return cfg.Network(ctx.String("network"))
}

// credentialsDir returns the directory holding on-disk key files, honoring
// the network's override.
func credentialsDir(n config.Network) string {
	if n.CredentialsDir != "" {
		return n.CredentialsDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".near-credentials"
	}
	return filepath.Join(home, ".near-credentials")
}
