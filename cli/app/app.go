/*
Package app assembles the nftrader command line application.
*/
package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/nspcc-dev/nftrader/cli/nft"
	"github.com/nspcc-dev/nftrader/cli/wallet"
	"github.com/nspcc-dev/nftrader/pkg/config"
	"github.com/urfave/cli"
)

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "nftrader\nVersion: %s\nGoVersion: %s\n",
		config.Version,
		runtime.Version(),
	)
}

// New creates an nftrader instance of [cli.App] with all commands included.
func New() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "nftrader"
	ctl.Version = config.Version
	ctl.Usage = "Neo N3 card exchange client"
	ctl.ErrWriter = os.Stdout

	ctl.Commands = append(ctl.Commands, wallet.NewCommands()...)
	ctl.Commands = append(ctl.Commands, nft.NewCommands()...)
	return ctl
}
