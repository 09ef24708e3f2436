/*
Package trader implements card trading logic on top of exchange and collection
contract wrappers.

A trade is planned by fetching the traits the exchange wants along with its
current supply and choosing a supply card to ask for. It's then executed by
paying with one of the user's cards. Watch repeats planning until there is
something to trade for.
*/
package trader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/nftrader/pkg/journal"
	"github.com/nspcc-dev/nftrader/pkg/nft/match"
	"github.com/nspcc-dev/nftrader/pkg/nft/traits"
	"go.uber.org/zap"
)

var (
	// ErrNoMatch is returned when trying to execute a plan without a match.
	ErrNoMatch = errors.New("no suitable card in supply")
	// ErrFault is returned when a payment transaction fails.
	ErrFault = errors.New("payment transaction failed")
)

// ExchangeReader provides exchange contract data.
type ExchangeReader interface {
	AssignedTraits() (traits.Traits, error)
	Supply() (match.Batch, error)
}

// Payer sends payment transactions.
type Payer interface {
	Pay(exchange util.Uint160, card []byte, nonce int) (util.Uint256, uint32, error)
}

// Waiter waits for transaction execution, it's implemented by actor.Actor.
type Waiter interface {
	Wait(h util.Uint256, vub uint32, err error) (*state.AppExecResult, error)
}

// BlockCounter returns the current chain height, it's implemented by
// actor.Actor and rpcclient.Client.
type BlockCounter interface {
	GetBlockCount() (uint32, error)
}

// Config is the trader configuration.
type Config struct {
	// Exchange is the exchange contract hash payments are sent to.
	Exchange util.Uint160
	// Relaxed is a set of fields used for fallback matching, empty set
	// disables it.
	Relaxed []traits.Field
	// PollInterval is the Watch polling interval.
	PollInterval time.Duration
	// Await enables waiting for payment transaction results.
	Await bool
	// Chain is used to expire journal entries of payments that were sent
	// but never awaited. If nil, such payments block their supply cards
	// forever.
	Chain BlockCounter
}

// Plan is a trade proposal.
type Plan struct {
	Assigned traits.Traits
	Match    match.Record
	Kind     match.Kind
	// Supply is the number of decodable cards in supply.
	Supply  int
	Skipped []match.Skip
	// Paid is the number of supply cards ignored because they were
	// already paid for.
	Paid int
}

// Trader plans and executes trades.
type Trader struct {
	cfg      Config
	exchange ExchangeReader
	payer    Payer
	waiter   Waiter
	journal  *journal.Journal
	log      *zap.Logger
}

// New creates a Trader. payer and waiter may be nil for read-only usage,
// journal may be nil if no history is to be kept.
func New(cfg Config, ex ExchangeReader, payer Payer, waiter Waiter, j *journal.Journal, log *zap.Logger) *Trader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Trader{
		cfg:      cfg,
		exchange: ex,
		payer:    payer,
		waiter:   waiter,
		journal:  j,
		log:      log,
	}
}

// Plan fetches exchange data and finds a supply card to trade for. Cards
// already paid for according to the journal are not considered.
func (t *Trader) Plan() (Plan, error) {
	assigned, err := t.exchange.AssignedTraits()
	if err != nil {
		return Plan{}, fmt.Errorf("failed to get assigned traits: %w", err)
	}
	batch, err := t.exchange.Supply()
	if err != nil {
		return Plan{}, fmt.Errorf("failed to get supply: %w", err)
	}
	for _, s := range batch.Skipped {
		t.log.Warn("skipping supply card", zap.Int("position", s.Position), zap.Error(s.Err))
	}
	updateSupplyMetrics(len(batch.Records), len(batch.Skipped))

	var p = Plan{
		Assigned: assigned,
		Supply:   len(batch.Records),
		Skipped:  batch.Skipped,
	}
	records := batch.Records
	if t.journal != nil {
		var height uint32
		if t.cfg.Chain != nil {
			height, err = t.cfg.Chain.GetBlockCount()
			if err != nil {
				return Plan{}, fmt.Errorf("failed to get block count: %w", err)
			}
		}
		records = make([]match.Record, 0, len(batch.Records))
		for _, r := range batch.Records {
			paid, err := t.journal.Paid(r.ID, height)
			if err != nil {
				return Plan{}, fmt.Errorf("journal: %w", err)
			}
			if paid {
				t.log.Debug("card already paid for", zap.Stringer("card", r))
				p.Paid++
				continue
			}
			records = append(records, r)
		}
	}
	p.Match, p.Kind = match.FindWithFallback(records, assigned, match.Relax(assigned, t.cfg.Relaxed...))
	return p, nil
}

// Execute pays for the card chosen by the plan with the given card. The
// payment is recorded in the journal and its result is awaited if
// configured to. The entry returned is not nil if the transaction was sent,
// even if an error is returned.
func (t *Trader) Execute(p Plan, payment []byte) (*journal.Entry, error) {
	if !p.Kind.Found() {
		return nil, ErrNoMatch
	}
	if t.payer == nil {
		return nil, errors.New("no payer configured")
	}
	h, vub, err := t.payer.Pay(t.cfg.Exchange, payment, p.Match.Nonce)
	if err != nil {
		tradesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to send payment: %w", err)
	}
	e := &journal.Entry{
		Tx:              h,
		ValidUntilBlock: vub,
		Nonce:           p.Match.Nonce,
		Token:           p.Match.ID,
		Payment:         payment,
		Traits:          p.Match.Traits,
		Match:           p.Kind.String(),
		State:           journal.StateSent,
		Timestamp:       time.Now().UnixMilli(),
	}
	t.log.Info("payment sent",
		zap.Stringer("tx", h),
		zap.Uint32("vub", vub),
		zap.Stringer("card", p.Match),
		zap.Stringer("match", p.Kind))
	if err := t.record(e); err != nil {
		return e, err
	}
	if !t.cfg.Await || t.waiter == nil {
		tradesTotal.WithLabelValues(journal.StateSent).Inc()
		return e, nil
	}
	res, err := t.waiter.Wait(h, vub, nil)
	if err != nil {
		tradesTotal.WithLabelValues("error").Inc()
		return e, fmt.Errorf("failed to await payment %s: %w", h.StringLE(), err)
	}
	if res.VMState == vmstate.Halt {
		e.State = journal.StateHalt
	} else {
		e.State = journal.StateFault
		e.Exception = res.FaultException
	}
	tradesTotal.WithLabelValues(e.State).Inc()
	if err := t.record(e); err != nil {
		return e, err
	}
	if e.State == journal.StateFault {
		return e, fmt.Errorf("%w: %s", ErrFault, e.Exception)
	}
	t.log.Info("trade completed", zap.Stringer("tx", h), zap.Int("nonce", e.Nonce))
	return e, nil
}

func (t *Trader) record(e *journal.Entry) error {
	if t.journal == nil {
		return nil
	}
	if err := t.journal.Put(*e); err != nil {
		return fmt.Errorf("failed to save journal entry for %s: %w", e.Tx.StringLE(), err)
	}
	return nil
}

// Watch polls the exchange until a suitable card appears in its supply and
// then trades the given card for it. Polling errors are logged and don't
// stop the loop, payment errors do. It returns when a trade is made or ctx
// is done.
func (t *Trader) Watch(ctx context.Context, payment []byte) (*journal.Entry, error) {
	interval := t.cfg.PollInterval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		p, err := t.Plan()
		switch {
		case err != nil:
			pollsTotal.WithLabelValues("error").Inc()
			t.log.Warn("failed to poll exchange", zap.Error(err))
		case !p.Kind.Found():
			pollsTotal.WithLabelValues(p.Kind.String()).Inc()
			t.log.Debug("no suitable card",
				zap.Stringer("assigned", p.Assigned),
				zap.Int("supply", p.Supply),
				zap.Int("paid", p.Paid))
		default:
			pollsTotal.WithLabelValues(p.Kind.String()).Inc()
			return t.Execute(p, payment)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
