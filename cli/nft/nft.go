package nft

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	json "github.com/nspcc-dev/go-ordered-json"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/nspcc-dev/nftrader/cli/flags"
	"github.com/nspcc-dev/nftrader/cli/options"
	"github.com/nspcc-dev/nftrader/pkg/config"
	"github.com/nspcc-dev/nftrader/pkg/journal"
	"github.com/nspcc-dev/nftrader/pkg/nft/match"
	"github.com/nspcc-dev/nftrader/pkg/nft/traits"
	"github.com/nspcc-dev/nftrader/pkg/rpcclient/collection"
	"github.com/nspcc-dev/nftrader/pkg/rpcclient/exchange"
	"github.com/nspcc-dev/nftrader/pkg/services/metrics"
	"github.com/nspcc-dev/nftrader/pkg/storage"
	"github.com/nspcc-dev/nftrader/pkg/trader"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

var (
	errNoCard   = errors.New("card to pay with is mandatory and should be passed using --card flag")
	errNoTraits = errors.New("either --tags or all of --class, --rarity and --power must be given")
)

var (
	cardFlag = cli.StringFlag{
		Name:  "card",
		Usage: "hex-encoded ID of the collection card to pay with",
	}
	tagsFlag = cli.StringFlag{
		Name:  "tags",
		Usage: "traits in the 'tags:class8;rarity3;power2' form",
	}
	traitFlags = []cli.Flag{
		cli.IntFlag{Name: "class", Usage: "class trait value"},
		cli.IntFlag{Name: "rarity", Usage: "rarity trait value"},
		cli.IntFlag{Name: "power", Usage: "power trait value"},
	}
)

// NewCommands returns 'nft' command.
func NewCommands() []cli.Command {
	var (
		readFlags  = []cli.Flag{options.ConfigFile, options.Debug}
		writeFlags []cli.Flag
	)
	readFlags = append(readFlags, options.RPC...)
	readFlags = append(readFlags, options.Contracts...)
	writeFlags = append(writeFlags, readFlags...)
	writeFlags = append(writeFlags, options.Wallet...)

	matchFlags := append([]cli.Flag{tagsFlag}, readFlags...)
	mintFlags := append([]cli.Flag{
		flags.AddressFlag{
			Name:  "owner",
			Usage: "owner of the new card, signer account is used if not given",
		},
		cli.StringFlag{Name: "name", Usage: "card name"},
		cli.StringFlag{Name: "uri", Usage: "card URI"},
		cli.Int64Flag{
			Name:  "royalties",
			Value: collection.DefaultRoyalties,
			Usage: "royalties in basis points",
		},
		cli.BoolFlag{
			Name:  "text",
			Usage: "store attributes in the textual tags form instead of binary",
		},
		tagsFlag,
	}, traitFlags...)
	mintFlags = append(mintFlags, writeFlags...)
	tradeFlags := append([]cli.Flag{cardFlag}, writeFlags...)
	attrsFlags := append([]cli.Flag{options.ConfigFile}, traitFlags...)

	return []cli.Command{{
		Name:  "nft",
		Usage: "inspect exchange and trade cards",
		Subcommands: []cli.Command{
			{
				Name:   "assigned",
				Usage:  "print traits of the card the exchange wants",
				Action: printAssigned,
				Flags:  readFlags,
			},
			{
				Name:   "supply",
				Usage:  "print cards available at the exchange",
				Action: printSupply,
				Flags:  readFlags,
			},
			{
				Name:      "match",
				Usage:     "find a supply card to trade for",
				UsageText: "match [--tags tags:class8;rarity3;power2] [-c config]",
				Description: `Finds a supply card with traits equal to the assigned ones (or to the
   given --tags). If there is none, the first card matching configured
   RelaxedTraits is chosen.`,
				Action: printMatch,
				Flags:  matchFlags,
			},
			{
				Name:      "mint",
				Usage:     "mint a collection card with the given traits",
				UsageText: "mint --class 8 --rarity 3 --power 2 [--name name] [--uri uri] [--owner address] [-w wallet]",
				Action:    mint,
				Flags:     mintFlags,
			},
			{
				Name:      "trade",
				Usage:     "pay with the given card for a matching supply card",
				UsageText: "trade --card <hex ID> [-c config] [-w wallet]",
				Action:    trade,
				Flags:     tradeFlags,
			},
			{
				Name:      "watch",
				Usage:     "poll exchange supply and trade once a matching card appears",
				UsageText: "watch --card <hex ID> [-c config] [-w wallet]",
				Action:    watch,
				Flags:     tradeFlags,
			},
			{
				Name:   "history",
				Usage:  "print journal of payments made",
				Action: printHistory,
				Flags:  []cli.Flag{options.ConfigFile},
			},
			{
				Name:  "attrs",
				Usage: "convert card attributes",
				Subcommands: []cli.Command{
					{
						Name:      "encode",
						Usage:     "encode traits into attribute bytes",
						UsageText: "encode --class 8 --rarity 3 --power 2 [-c config]",
						Action:    encodeAttrs,
						Flags:     attrsFlags,
					},
					{
						Name:      "decode",
						Usage:     "decode hex attribute bytes or textual tags",
						UsageText: "decode <hex|tags:...> [-c config]",
						Action:    decodeAttrs,
						Flags:     []cli.Flag{options.ConfigFile},
					},
				},
			},
		},
	}}
}

// env is a set of things every command needs.
type env struct {
	cfg config.ApplicationConfiguration
	log *zap.Logger
}

func newEnv(ctx *cli.Context) (*env, error) {
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	log, _, err := options.HandleLoggingParams(ctx.Bool("debug"), cfg.ApplicationConfiguration.Logger)
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	return &env{cfg: cfg.ApplicationConfiguration, log: log}, nil
}

func (e *env) close() {
	_ = e.log.Sync()
}

func (e *env) exchangeReader(inv exchange.Invoker) (*exchange.ContractReader, error) {
	h, err := e.cfg.Contracts.ExchangeHash()
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	layout := e.cfg.Attributes.Layout
	return exchange.NewReader(inv, h, exchange.Options{
		AssignedMethod: e.cfg.Methods.Assigned,
		SupplyMethod:   e.cfg.Methods.Supply,
		Layout:         &layout,
	}), nil
}

func (e *env) openJournal() (*journal.Journal, error) {
	s, err := storage.NewStore(e.cfg.Journal)
	if err != nil {
		return nil, cli.NewExitError(fmt.Errorf("failed to open journal: %w", err), 1)
	}
	return journal.New(s), nil
}

func (e *env) newTrader(ex trader.ExchangeReader, chain trader.BlockCounter, payer trader.Payer, w trader.Waiter, j *journal.Journal) (*trader.Trader, error) {
	relaxed, err := e.cfg.Trade.RelaxedFields()
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	h, err := e.cfg.Contracts.ExchangeHash()
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	return trader.New(trader.Config{
		Exchange:     h,
		Relaxed:      relaxed,
		PollInterval: e.cfg.Trade.PollInterval,
		Await:        e.cfg.Trade.Await,
		Chain:        chain,
	}, ex, payer, w, j, e.log), nil
}

// readOnly connects to RPC node and creates an exchange reader.
func (e *env) readOnly(gctx context.Context) (*rpcclient.Client, *exchange.ContractReader, error) {
	c, exitErr := options.GetRPCClient(gctx, e.cfg.RPC)
	if exitErr != nil {
		return nil, nil, exitErr
	}
	r, err := e.exchangeReader(invoker.New(c, nil))
	if err != nil {
		c.Close()
		return nil, nil, err
	}
	return c, r, nil
}

// signer holds everything needed for sending transactions.
type signer struct {
	client     *rpcclient.Client
	wallet     *wallet.Wallet
	account    *wallet.Account
	actor      *actor.Actor
	collection *collection.Contract
}

func (s *signer) close() {
	s.client.Close()
	s.wallet.Close()
}

func (e *env) newSigner(ctx *cli.Context, gctx context.Context) (*signer, error) {
	colHash, err := e.cfg.Contracts.CollectionHash()
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	acc, w, err := options.GetAccFromContext(ctx, e.cfg.UnlockWallet)
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	c, exitErr := options.GetRPCClient(gctx, e.cfg.RPC)
	if exitErr != nil {
		w.Close()
		return nil, exitErr
	}
	act, err := actor.NewSimple(c, acc)
	if err != nil {
		c.Close()
		w.Close()
		return nil, cli.NewExitError(fmt.Errorf("failed to create Actor: %w", err), 1)
	}
	return &signer{
		client:     c,
		wallet:     w,
		account:    acc,
		actor:      act,
		collection: collection.New(act, colHash, e.cfg.Methods.Mint),
	}, nil
}

func printAssigned(ctx *cli.Context) error {
	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()
	gctx, cancel := options.GetTimeoutContext(ctx, false)
	defer cancel()
	c, r, err := e.readOnly(gctx)
	if err != nil {
		return err
	}
	defer c.Close()

	t, err := r.AssignedTraits()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, t)
	fmt.Fprintln(ctx.App.Writer, t.Tags())
	return nil
}

func printSupply(ctx *cli.Context) error {
	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()
	gctx, cancel := options.GetTimeoutContext(ctx, false)
	defer cancel()
	c, r, err := e.readOnly(gctx)
	if err != nil {
		return err
	}
	defer c.Close()

	b, err := r.Supply()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	printBatch(ctx, b)
	return nil
}

func printBatch(ctx *cli.Context, b match.Batch) {
	for _, r := range b.Records {
		fmt.Fprintln(ctx.App.Writer, r)
	}
	for _, s := range b.Skipped {
		fmt.Fprintf(ctx.App.Writer, "item %d skipped: %s\n", s.Position, s.Err)
	}
}

// fixedTarget overrides traits assigned by the exchange.
type fixedTarget struct {
	trader.ExchangeReader
	target traits.Traits
}

func (f fixedTarget) AssignedTraits() (traits.Traits, error) {
	return f.target, nil
}

func printMatch(ctx *cli.Context) error {
	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()
	gctx, cancel := options.GetTimeoutContext(ctx, false)
	defer cancel()
	c, r, err := e.readOnly(gctx)
	if err != nil {
		return err
	}
	defer c.Close()

	var ex trader.ExchangeReader = r
	if s := ctx.String("tags"); s != "" {
		t, err := traits.ParseTags(s)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		ex = fixedTarget{r, t}
	}
	j, err := e.openJournal()
	if err != nil {
		return err
	}
	defer j.Close()
	tr, err := e.newTrader(ex, c, nil, nil, j)
	if err != nil {
		return err
	}
	p, err := tr.Plan()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	printPlan(ctx, p)
	return nil
}

func printPlan(ctx *cli.Context, p trader.Plan) {
	fmt.Fprintf(ctx.App.Writer, "assigned: %s\n", p.Assigned)
	fmt.Fprintf(ctx.App.Writer, "supply: %d cards, %d skipped, %d already paid for\n", p.Supply, len(p.Skipped), p.Paid)
	if !p.Kind.Found() {
		fmt.Fprintln(ctx.App.Writer, "no suitable card")
		return
	}
	fmt.Fprintf(ctx.App.Writer, "%s match: %s\n", p.Kind, p.Match)
}

func traitsFromContext(ctx *cli.Context) (traits.Traits, error) {
	if s := ctx.String("tags"); s != "" {
		return traits.ParseTags(s)
	}
	for _, f := range traits.Fields {
		if !ctx.IsSet(f.String()) {
			return traits.Traits{}, errNoTraits
		}
	}
	return traits.New(ctx.Int("class"), ctx.Int("rarity"), ctx.Int("power"))
}

func mint(ctx *cli.Context) error {
	t, err := traitsFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()
	gctx, cancel := options.GetTimeoutContext(ctx, e.cfg.Trade.Await)
	defer cancel()
	s, err := e.newSigner(ctx, gctx)
	if err != nil {
		return err
	}
	defer s.close()

	owner, ok := flags.GetAddress(ctx, "owner")
	if !ok {
		owner = s.account.ScriptHash()
	}
	attrs := e.cfg.Attributes.Layout.Encode(t)
	if ctx.Bool("text") {
		attrs = []byte(t.Tags())
	}
	h, vub, err := s.collection.Mint(collection.MintParams{
		Owner:      owner,
		Name:       ctx.String("name"),
		Attributes: attrs,
		URI:        ctx.String("uri"),
		Royalties:  ctx.Int64("royalties"),
	})
	if err != nil {
		return cli.NewExitError(fmt.Errorf("failed to send mint transaction: %w", err), 1)
	}
	fmt.Fprintln(ctx.App.Writer, h.StringLE())
	if !e.cfg.Trade.Await {
		return nil
	}
	res, err := s.actor.Wait(h, vub, nil)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("failed to await mint transaction: %w", err), 1)
	}
	fmt.Fprintf(ctx.App.Writer, "state: %s\n", res.VMState)
	if err := checkHalt(res); err != nil {
		return cli.NewExitError(fmt.Errorf("mint failed: %w", err), 1)
	}
	return nil
}

// checkHalt returns an error if the transaction wasn't executed successfully.
func checkHalt(res *state.AppExecResult) error {
	if res.VMState == vmstate.Halt {
		return nil
	}
	if res.FaultException != "" {
		return fmt.Errorf("%s: %s", res.VMState, res.FaultException)
	}
	return fmt.Errorf("unexpected VM state %s", res.VMState)
}

func cardFromContext(ctx *cli.Context) ([]byte, error) {
	s := ctx.String("card")
	if s == "" {
		return nil, errNoCard
	}
	card, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid card ID: %w", err)
	}
	return card, nil
}

// tradeEnv is a fully set up trader with resources to release.
type tradeEnv struct {
	*env
	signer  *signer
	journal *journal.Journal
	trader  *trader.Trader
}

func (t *tradeEnv) close() {
	if err := t.journal.Close(); err != nil {
		t.log.Warn("failed to close journal", zap.Error(err))
	}
	t.signer.close()
}

func (e *env) newTradeEnv(ctx *cli.Context, gctx context.Context) (*tradeEnv, error) {
	s, err := e.newSigner(ctx, gctx)
	if err != nil {
		return nil, err
	}
	r, err := e.exchangeReader(s.actor)
	if err != nil {
		s.close()
		return nil, err
	}
	j, err := e.openJournal()
	if err != nil {
		s.close()
		return nil, err
	}
	tr, err := e.newTrader(r, s.actor, s.collection, s.actor, j)
	if err != nil {
		_ = j.Close()
		s.close()
		return nil, err
	}
	return &tradeEnv{env: e, signer: s, journal: j, trader: tr}, nil
}

func trade(ctx *cli.Context) error {
	card, err := cardFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()
	gctx, cancel := options.GetTimeoutContext(ctx, e.cfg.Trade.Await)
	defer cancel()
	te, err := e.newTradeEnv(ctx, gctx)
	if err != nil {
		return err
	}
	defer te.close()

	p, err := te.trader.Plan()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	printPlan(ctx, p)
	if !p.Kind.Found() {
		return cli.NewExitError(trader.ErrNoMatch, 1)
	}
	entry, err := te.trader.Execute(p, card)
	if entry != nil {
		printEntry(ctx, entry)
	}
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return nil
}

func watch(ctx *cli.Context) error {
	card, err := cardFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()
	gctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	te, err := e.newTradeEnv(ctx, gctx)
	if err != nil {
		return err
	}
	defer te.close()

	prometheus := metrics.NewPrometheusService(te.cfg.Prometheus, te.log)
	pprof := metrics.NewPprofService(te.cfg.Pprof, te.log)
	for _, svc := range []*metrics.Service{prometheus, pprof} {
		defer svc.ShutDown()
		if err := svc.Start(); err != nil {
			return cli.NewExitError(err, 1)
		}
	}

	te.log.Info("watching exchange supply",
		zap.String("card", hex.EncodeToString(card)),
		zap.Duration("interval", te.cfg.Trade.PollInterval))
	entry, err := te.trader.Watch(gctx, card)
	if entry != nil {
		printEntry(ctx, entry)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			te.log.Info("watcher stopped")
			return nil
		}
		return cli.NewExitError(err, 1)
	}
	return nil
}

func printEntry(ctx *cli.Context, e *journal.Entry) {
	fmt.Fprintf(ctx.App.Writer, "tx: %s\nstate: %s\n", e.Tx.StringLE(), e.State)
	if e.Exception != "" {
		fmt.Fprintf(ctx.App.Writer, "exception: %s\n", e.Exception)
	}
}

// historyEntry is a journal entry in printable form.
type historyEntry struct {
	Tx              util.Uint256 `json:"tx"`
	ValidUntilBlock uint32       `json:"vub"`
	Nonce           int          `json:"nonce"`
	Token           string       `json:"token"`
	Payment         string       `json:"payment"`
	Traits          string       `json:"traits"`
	Match           string       `json:"match"`
	State           string       `json:"state"`
	Exception       string       `json:"exception,omitempty"`
	Timestamp       int64        `json:"timestamp"`
}

func printHistory(ctx *cli.Context) error {
	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()
	j, err := e.openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.All()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	res := make([]historyEntry, len(entries))
	for i, en := range entries {
		res[i] = historyEntry{
			Tx:              en.Tx,
			ValidUntilBlock: en.ValidUntilBlock,
			Nonce:           en.Nonce,
			Token:           hex.EncodeToString(en.Token),
			Payment:         hex.EncodeToString(en.Payment),
			Traits:          en.Traits.Tags(),
			Match:           en.Match,
			State:           en.State,
			Exception:       en.Exception,
			Timestamp:       en.Timestamp,
		}
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, string(b))
	return nil
}
