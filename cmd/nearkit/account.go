package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli"

	"github.com/r-near/near-kit-go/pkg/rpcclient"
	"github.com/r-near/near-kit-go/pkg/types"
)

func newAccountCommands() []cli.Command {
	return []cli.Command{{
		Name:  "account",
		Usage: "inspect accounts",
		Subcommands: []cli.Command{
			{
				Name:      "view",
				Usage:     "show balance and storage of an account",
				ArgsUsage: "<account>",
				Action:    viewAccount,
				Flags: []cli.Flag{
					networkFlag,
					configFlag,
				},
			},
			{
				Name:      "keys",
				Usage:     "list access keys of an account",
				ArgsUsage: "<account>",
				Action:    listAccessKeys,
				Flags: []cli.Flag{
					networkFlag,
					configFlag,
				},
			},
		},
	}}
}

func rpcForNetwork(ctx *cli.Context) (*rpcclient.Client, error) {
	network, err := resolveNetwork(ctx)
	if err != nil {
		return nil, err
	}
	return rpcclient.New(network.RPCURL, rpcclient.Options{})
}

func accountIDArg(ctx *cli.Context) (types.AccountID, error) {
	if ctx.NArg() != 1 {
		return "", fmt.Errorf("exactly one account argument expected")
	}
	return types.NewAccountID(ctx.Args().First())
}

func viewAccount(ctx *cli.Context) error {
	accountID, err := accountIDArg(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	rpc, err := rpcForNetwork(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer rpc.Close()

	view, err := rpc.ViewAccount(context.Background(), accountID, rpcclient.FinalityFinal)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintf(ctx.App.Writer, "account:  %s\n", accountID)
	fmt.Fprintf(ctx.App.Writer, "balance:  %s yoctoNEAR\n", view.Amount)
	fmt.Fprintf(ctx.App.Writer, "locked:   %s yoctoNEAR\n", view.Locked)
	fmt.Fprintf(ctx.App.Writer, "storage:  %d bytes\n", view.StorageUsage)
	fmt.Fprintf(ctx.App.Writer, "code:     %s\n", view.CodeHash)
	return nil
}

func listAccessKeys(ctx *cli.Context) error {
	accountID, err := accountIDArg(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	rpc, err := rpcForNetwork(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer rpc.Close()

	list, err := rpc.ViewAccessKeyList(context.Background(), accountID, rpcclient.FinalityFinal)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	for _, k := range list.Keys {
		kind := "full access"
		if fc := k.AccessKey.FunctionCall; fc != nil {
			kind = "function call on " + fc.ReceiverID.String()
		}
		fmt.Fprintf(ctx.App.Writer, "%s\tnonce %d\t%s\n", k.PublicKey, k.AccessKey.Nonce, kind)
	}
	return nil
}
