package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/urfave/cli"
	"golang.org/x/term"

	"github.com/r-near/near-kit-go/pkg/crypto/keys"
	"github.com/r-near/near-kit-go/pkg/signer"
	"github.com/r-near/near-kit-go/pkg/types"
)

var errNoAccount = errors.New("account is mandatory and should be passed using (--account, -a) flags")

func newKeyCommands() []cli.Command {
	return []cli.Command{{
		Name:  "key",
		Usage: "generate, import and inspect account keys",
		Subcommands: []cli.Command{
			{
				Name:   "generate",
				Usage:  "generate a new key and store it in the credentials directory",
				Action: generateKey,
				Flags: []cli.Flag{
					networkFlag,
					configFlag,
					accountFlag,
					cli.BoolFlag{
						Name:  "seed-phrase, s",
						Usage: "Derive the key from a newly generated seed phrase and print the phrase.",
					},
				},
			},
			{
				Name:   "import",
				Usage:  "import a key entered interactively",
				Action: importKey,
				Flags: []cli.Flag{
					networkFlag,
					configFlag,
					accountFlag,
				},
			},
			{
				Name:   "show",
				Usage:  "show the stored public key of an account",
				Action: showKey,
				Flags: []cli.Flag{
					networkFlag,
					configFlag,
					accountFlag,
				},
			},
		},
	}}
}

func accountArg(ctx *cli.Context) (types.AccountID, error) {
	raw := ctx.String("account")
	if raw == "" {
		return "", errNoAccount
	}
	return types.NewAccountID(raw)
}

func generateKey(ctx *cli.Context) error {
	accountID, err := accountArg(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	network, err := resolveNetwork(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	var key *keys.PrivateKey
	if ctx.Bool("seed-phrase") {
		phrase, derived, err := keys.GenerateSeedPhrase()
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		key = derived
		fmt.Fprintln(ctx.App.Writer, "seed phrase (store it safely):")
		fmt.Fprintln(ctx.App.Writer, phrase)
	} else {
		key, err = keys.GeneratePrivateKey()
		if err != nil {
			return cli.NewExitError(err, 1)
		}
	}

	dir := credentialsDir(network)
	if err := signer.SaveKeyFile(dir, network.Name, accountID, key); err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintf(ctx.App.Writer, "public key: %s\n", key.PublicKey())
	fmt.Fprintf(ctx.App.Writer, "stored in:  %s\n", signer.CredentialsPath(dir, network.Name, accountID))
	return nil
}

func importKey(ctx *cli.Context) error {
	accountID, err := accountArg(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	network, err := resolveNetwork(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	fmt.Fprint(os.Stderr, "private key: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	key, err := keys.NewPrivateKeyFromString(strings.TrimSpace(string(raw)))
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	dir := credentialsDir(network)
	if err := signer.SaveKeyFile(dir, network.Name, accountID, key); err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintf(ctx.App.Writer, "public key: %s\n", key.PublicKey())
	return nil
}

func showKey(ctx *cli.Context) error {
	accountID, err := accountArg(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	network, err := resolveNetwork(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	s, err := signer.NewFileSigner(credentialsDir(network), network.Name, accountID)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, s.GetPublicKey())
	return nil
}
