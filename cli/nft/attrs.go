package nft

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/nspcc-dev/nftrader/cli/options"
	"github.com/nspcc-dev/nftrader/pkg/nft/traits"
	"github.com/urfave/cli"
)

func encodeAttrs(ctx *cli.Context) error {
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	t, err := traitsFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, hex.EncodeToString(cfg.ApplicationConfiguration.Attributes.Layout.Encode(t)))
	fmt.Fprintln(ctx.App.Writer, t.Tags())
	return nil
}

func decodeAttrs(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.NewExitError(errors.New("exactly one attributes argument is expected"), 1)
	}
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	arg := ctx.Args().First()
	var t traits.Traits
	if strings.HasPrefix(arg, traits.TagsPrefix) {
		t, err = traits.ParseTags(arg)
	} else {
		var b []byte
		b, err = hex.DecodeString(strings.TrimPrefix(arg, "0x"))
		if err == nil {
			t, err = cfg.ApplicationConfiguration.Attributes.Layout.Decode(b)
		}
	}
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, t)
	return nil
}
