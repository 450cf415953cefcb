package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli"

	"github.com/r-near/near-kit-go/pkg/client"
	"github.com/r-near/near-kit-go/pkg/nearrpc/result"
	"github.com/r-near/near-kit-go/pkg/signer"
	"github.com/r-near/near-kit-go/pkg/types"
)

func newTransferCommands() []cli.Command {
	return []cli.Command{{
		Name:      "transfer",
		Usage:     "send tokens to another account",
		ArgsUsage: "<receiver> <amount>",
		Action:    transferTokens,
		Flags: []cli.Flag{
			networkFlag,
			configFlag,
			accountFlag,
			cli.BoolFlag{
				Name:  "final, f",
				Usage: "Wait for finalized execution instead of the optimistic default.",
			},
		},
	}}
}

func transferTokens(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return cli.NewExitError(fmt.Errorf("receiver and amount arguments expected, e.g. transfer bob.near 1.5NEAR"), 1)
	}
	receiver, err := types.NewAccountID(ctx.Args().Get(0))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	amount, err := types.ParseBalance(ctx.Args().Get(1))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
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
	cl, err := client.New(network.RPCURL, s, client.Options{})
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer cl.RPC().Close()

	wait := result.TxStatusExecutedOptimistic
	if ctx.Bool("final") {
		wait = result.TxStatusFinal
	}
	outcome, err := cl.Transaction(receiver).
		Transfer(amount).
		WaitUntil(wait).
		Send(context.Background())
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintf(ctx.App.Writer, "sent %s yoctoNEAR to %s\n", amount, receiver)
	fmt.Fprintf(ctx.App.Writer, "transaction: %s\n", outcome.TransactionOutcome.ID)
	return nil
}
