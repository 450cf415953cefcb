// nearkit is a small command line companion to the SDK: key management,
// account inspection and token transfers.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func main() {
	ctl := newApp()

	if err := ctl.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	ctl := cli.NewApp()
	ctl.Name = "nearkit"
	ctl.Usage = "NEAR account and transaction tool"
	ctl.Commands = append(ctl.Commands, newKeyCommands()...)
	ctl.Commands = append(ctl.Commands, newAccountCommands()...)
	ctl.Commands = append(ctl.Commands, newTransferCommands()...)
	return ctl
}
