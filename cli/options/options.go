/*
Package options contains a set of common CLI options and helper functions to use them.
*/
package options

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/nspcc-dev/nftrader/cli/flags"
	"github.com/nspcc-dev/nftrader/cli/input"
	"github.com/nspcc-dev/nftrader/pkg/config"
	"github.com/nspcc-dev/nftrader/pkg/walletstore"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultAwaitableTimeout is the default timeout used for RPC requests that
// require transaction awaiting. It is set to the approximate time of three
// Neo N3 mainnet blocks accepting.
const DefaultAwaitableTimeout = 3 * 15 * time.Second

// RPCEndpointFlag is a long flag name for an RPC endpoint. It can be used to
// check for flag presence in the context.
const RPCEndpointFlag = "rpc-endpoint"

// ConfigFile is a flag for commands that use client configuration.
var ConfigFile = cli.StringFlag{
	Name:  "config-file, c",
	Usage: "path to the client configuration file, defaults are used if not given",
}

// Debug is a flag for commands that allow debug logging.
var Debug = cli.BoolFlag{
	Name:  "debug, d",
	Usage: "enable debug logging (overrides configuration)",
}

// RPC is a set of flags used for RPC connections (endpoint and timeout).
var RPC = []cli.Flag{
	cli.StringFlag{
		Name:  RPCEndpointFlag + ", r",
		Usage: "RPC node address (overrides configuration)",
	},
	cli.DurationFlag{
		Name:  "timeout, s",
		Value: config.DefaultRequestTimeout,
		Usage: "Timeout for the operation",
	},
}

// Wallet is a set of flags used for wallet operations.
var Wallet = []cli.Flag{
	cli.StringFlag{
		Name:  "wallet, w",
		Usage: "wallet to use to get the key for transaction signing (overrides configuration)",
	},
	flags.AddressFlag{
		Name:  "address, a",
		Usage: "address to use as transaction signee, default wallet account is used if not given",
	},
}

// Contracts is a set of flags overriding configured contract hashes.
var Contracts = []cli.Flag{
	flags.AddressFlag{
		Name:  "exchange",
		Usage: "exchange contract hash or address (overrides configuration)",
	},
	flags.AddressFlag{
		Name:  "collection",
		Usage: "collection contract hash or address (overrides configuration)",
	},
}

var (
	errNoEndpoint = errors.New("no RPC endpoint specified, use option '--" + RPCEndpointFlag + "' or '-r' or set it in configuration")
	errNoWallet   = errors.New("no wallet specified, use option '--wallet' or '-w' or set it in configuration")
)

// GetConfigFromContext loads configuration from the file given by
// ConfigFile flag (or the default one) and applies flag overrides to it.
func GetConfigFromContext(ctx *cli.Context) (config.Config, error) {
	var (
		cfg = config.Default()
		err error
	)
	if path := ctx.String("config-file"); path != "" {
		cfg, err = config.LoadFile(path)
		if err != nil {
			return config.Config{}, err
		}
	}
	a := &cfg.ApplicationConfiguration
	if ep := ctx.String(RPCEndpointFlag); ep != "" {
		a.RPC.Endpoint = ep
	}
	if ctx.IsSet("timeout") {
		a.RPC.RequestTimeout = ctx.Duration("timeout")
	}
	if w := ctx.String("wallet"); w != "" {
		a.UnlockWallet = config.Wallet{Path: w}
	}
	if h, ok := flags.GetAddress(ctx, "exchange"); ok {
		a.Contracts.Exchange = h.StringLE()
	}
	if h, ok := flags.GetAddress(ctx, "collection"); ok {
		a.Contracts.Collection = h.StringLE()
	}
	return cfg, nil
}

// GetTimeoutContext returns a context.Context with the configured timeout.
// Awaiting commands get a longer one unless set explicitly.
func GetTimeoutContext(ctx *cli.Context, await bool) (context.Context, func()) {
	dur := ctx.Duration("timeout")
	if dur == 0 {
		dur = config.DefaultRequestTimeout
	}
	if !ctx.IsSet("timeout") && await {
		dur = DefaultAwaitableTimeout
	}
	return context.WithTimeout(context.Background(), dur)
}

// GetRPCClient returns an RPC client instance for the given configuration.
func GetRPCClient(gctx context.Context, cfg config.RPC) (*rpcclient.Client, cli.ExitCoder) {
	if len(cfg.Endpoint) == 0 {
		return nil, cli.NewExitError(errNoEndpoint, 1)
	}
	c, err := rpcclient.New(gctx, cfg.Endpoint, rpcclient.Options{
		DialTimeout:    cfg.DialTimeout,
		RequestTimeout: cfg.RequestTimeout,
	})
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	err = c.Init()
	if err != nil {
		c.Close()
		return nil, cli.NewExitError(err, 1)
	}
	return c, nil
}

// GetAccFromContext returns unlocked account and wallet. If address is not
// set, default address is used. Password is taken from configuration or
// requested from user.
func GetAccFromContext(ctx *cli.Context, cfg config.Wallet) (*wallet.Account, *wallet.Wallet, error) {
	if cfg.Path == "" {
		return nil, nil, errNoWallet
	}
	wall, err := walletstore.Open(cfg.Path)
	if err != nil {
		return nil, nil, err
	}
	var addr *util.Uint160
	if h, ok := flags.GetAddress(ctx, "address"); ok {
		addr = &h
	}
	acc, err := walletstore.Account(wall, addr)
	if err != nil {
		wall.Close()
		return nil, nil, err
	}
	pass := cfg.Password
	if pass == "" && !acc.CanSign() && acc.EncryptedWIF != "" {
		pass, err = input.ReadPassword(fmt.Sprintf("Enter account %s password > ", acc.Address))
		if err != nil {
			wall.Close()
			return nil, nil, fmt.Errorf("Error reading password: %w", err)
		}
	}
	acc, err = walletstore.Unlock(wall, addr, pass)
	if err != nil {
		wall.Close()
		return nil, nil, err
	}
	return acc, wall, nil
}

// HandleLoggingParams reads logging parameters.
// If a user selected debug level -- function enables it.
// If logPath is configured -- function creates a dir and a file for logging.
func HandleLoggingParams(debug bool, cfg config.Logger) (*zap.Logger, *zap.AtomicLevel, error) {
	var (
		level = zapcore.InfoLevel
		err   error
	)
	if len(cfg.LogLevel) > 0 {
		level, err = zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, nil, fmt.Errorf("log setting: %w", err)
		}
	}
	if debug {
		level = zapcore.DebugLevel
	}

	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cc.Encoding = "console"
	cc.Level = zap.NewAtomicLevelAt(level)
	cc.Sampling = nil

	if logPath := cfg.LogPath; logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("could not create dir for logger: %w", err)
		}
		cc.OutputPaths = []string{logPath}
	}

	log, err := cc.Build()
	return log, &cc.Level, err
}
