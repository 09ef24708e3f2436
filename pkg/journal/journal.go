/*
Package journal keeps a local record of exchange payments made by the client.

It's used to show trade history and to avoid paying twice for the same
supply token when the exchange contract is polled repeatedly.
*/
package journal

import (
	"errors"
	"fmt"
	"sort"

	json "github.com/nspcc-dev/go-ordered-json"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/nftrader/pkg/nft/traits"
	"github.com/nspcc-dev/nftrader/pkg/storage"
)

// Key prefixes.
const (
	prefixEntry byte = 0x01
	prefixToken byte = 0x02
)

// Trade states.
const (
	// StateSent is used for transactions that were sent, but their
	// execution result is not known.
	StateSent = "SENT"
	// StateHalt is used for successfully executed transactions.
	StateHalt = "HALT"
	// StateFault is used for failed transactions.
	StateFault = "FAULT"
)

// ErrNotFound is returned when there is no entry for the given key.
var ErrNotFound = errors.New("no journal entry")

// Entry is a single payment record.
type Entry struct {
	Tx              util.Uint256  `json:"tx"`
	ValidUntilBlock uint32        `json:"vub"`
	Nonce           int           `json:"nonce"`
	Token           []byte        `json:"token"`
	Payment         []byte        `json:"payment"`
	Traits          traits.Traits `json:"traits"`
	Match           string        `json:"match"`
	State           string        `json:"state"`
	Exception       string        `json:"exception,omitempty"`
	Timestamp       int64         `json:"timestamp"`
}

// Journal stores entries in a storage.Store.
type Journal struct {
	store storage.Store
}

// New creates a Journal over the given store.
func New(s storage.Store) *Journal {
	return &Journal{store: s}
}

func entryKey(h util.Uint256) []byte {
	return append([]byte{prefixEntry}, h.BytesBE()...)
}

func tokenKey(id []byte) []byte {
	return append([]byte{prefixToken}, id...)
}

// Put stores e (replacing any previous entry with the same hash) and marks
// its supply token as paid for.
func (j *Journal) Put(e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	puts := map[string][]byte{
		string(entryKey(e.Tx)): data,
	}
	if len(e.Token) != 0 {
		puts[string(tokenKey(e.Token))] = e.Tx.BytesBE()
	}
	return j.store.PutChangeSet(puts)
}

// Get returns the entry for the given transaction.
func (j *Journal) Get(h util.Uint256) (*Entry, error) {
	data, err := j.store.Get(entryKey(h))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	e := new(Entry)
	if err := json.Unmarshal(data, e); err != nil {
		return nil, fmt.Errorf("corrupted entry %s: %w", h.StringLE(), err)
	}
	return e, nil
}

// ByToken returns the latest entry paying for the given supply token.
func (j *Journal) ByToken(id []byte) (*Entry, error) {
	data, err := j.store.Get(tokenKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	h, err := util.Uint256DecodeBytesBE(data)
	if err != nil {
		return nil, fmt.Errorf("corrupted token index: %w", err)
	}
	return j.Get(h)
}

// Paid returns true if there is a non-failed entry for the given supply
// token. height is the current chain block count, entries still in SENT
// state don't count once it's past their ValidUntilBlock since such
// transactions can't be accepted anymore. Zero height disables this check.
func (j *Journal) Paid(id []byte, height uint32) (bool, error) {
	e, err := j.ByToken(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	switch e.State {
	case StateFault:
		return false, nil
	case StateSent:
		return height == 0 || height <= e.ValidUntilBlock, nil
	default:
		return true, nil
	}
}

// All returns all entries ordered by timestamp.
func (j *Journal) All() ([]Entry, error) {
	var (
		res []Entry
		err error
	)
	j.store.Seek(storage.SeekRange{Prefix: []byte{prefixEntry}}, func(k, v []byte) bool {
		var e Entry
		if err = json.Unmarshal(v, &e); err != nil {
			err = fmt.Errorf("corrupted entry %x: %w", k[1:], err)
			return false
		}
		res = append(res, e)
		return true
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(res, func(i, k int) bool {
		return res[i].Timestamp < res[k].Timestamp
	})
	return res, nil
}

// Close closes the underlying store.
func (j *Journal) Close() error {
	return j.store.Close()
}
