package wallet

import (
	"errors"
	"fmt"

	json "github.com/nspcc-dev/go-ordered-json"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/nspcc-dev/nftrader/cli/input"
	"github.com/nspcc-dev/nftrader/cli/options"
	"github.com/nspcc-dev/nftrader/pkg/walletstore"
	"github.com/urfave/cli"
)

var errNoPath = errors.New("target path where the wallet should be stored is mandatory and should be passed using (--wallet, -w) flags")

// NewCommands returns 'wallet' command.
func NewCommands() []cli.Command {
	dumpFlags := []cli.Flag{options.ConfigFile}
	dumpFlags = append(dumpFlags, options.Wallet...)
	return []cli.Command{{
		Name:  "wallet",
		Usage: "create and inspect the wallet used to sign trades",
		Subcommands: []cli.Command{
			{
				Name:      "init",
				Usage:     "create a new wallet with a single account",
				UsageText: "init -w path [--name label] [--wif key]",
				Action:    initWallet,
				Flags: []cli.Flag{
					cli.StringFlag{
						Name:  "wallet, w",
						Usage: "Target location of the wallet file",
					},
					cli.StringFlag{
						Name:  "name, n",
						Usage: "Account label",
					},
					cli.StringFlag{
						Name:  "wif",
						Usage: "Import the given WIF instead of generating a new key",
					},
				},
			},
			{
				Name:      "dump-keys",
				Usage:     "print address, public key and WIF of the wallet account",
				UsageText: "dump-keys [-c config] [-w path] [-a address]",
				Action:    dumpKeys,
				Flags:     dumpFlags,
			},
		},
	}}
}

func initWallet(ctx *cli.Context) error {
	path := ctx.String("wallet")
	if len(path) == 0 {
		return cli.NewExitError(errNoPath, 1)
	}
	pass, err := input.ConfirmPassword("Enter password > ")
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	var (
		w   *wallet.Wallet
		acc *wallet.Account
	)
	if wif := ctx.String("wif"); wif != "" {
		w, acc, err = walletstore.Import(path, ctx.String("name"), wif, pass)
	} else {
		w, acc, err = walletstore.Create(path, ctx.String("name"), pass)
	}
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer w.Close()
	fmt.Fprintf(ctx.App.Writer, "wallet successfully created, file location is %s\n", w.Path())
	fmt.Fprintf(ctx.App.Writer, "account address: %s\n", acc.Address)
	return nil
}

func dumpKeys(ctx *cli.Context) error {
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	acc, w, err := options.GetAccFromContext(ctx, cfg.ApplicationConfiguration.UnlockWallet)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer w.Close()
	keys, err := walletstore.Dump(acc)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	b, err := json.MarshalIndent(keys, "", "  ")
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, string(b))
	return nil
}
