package match

import (
	"errors"

	"github.com/nspcc-dev/nftrader/pkg/nft/traits"
)

// ErrNoID is returned for items without a token identifier.
var ErrNoID = errors.New("missing token ID")

// RawItem is an undecoded NFT as returned by the contract.
type RawItem struct {
	ID         []byte
	Attributes []byte
	// Err is set if the item couldn't be extracted from the response at
	// all, such items are always skipped.
	Err error
}

// Skip describes an item that couldn't be turned into a Record. Position is
// the 1-based index of the item in the contract response.
type Skip struct {
	Position int
	Err      error
}

// Batch is the result of DecodeAll.
type Batch struct {
	Records []Record
	Skipped []Skip
}

// DecodeAll decodes traits of every item using the given layout. Nonces
// number decoded records only (starting from 1), skipped items don't get
// one. Items that fail to decode are reported in Skipped and don't prevent
// decoding of the rest.
func DecodeAll(items []RawItem, layout traits.Layout) Batch {
	var b = Batch{Records: make([]Record, 0, len(items))}
	for i, it := range items {
		pos := i + 1
		if it.Err != nil {
			b.Skipped = append(b.Skipped, Skip{Position: pos, Err: it.Err})
			continue
		}
		if len(it.ID) == 0 {
			b.Skipped = append(b.Skipped, Skip{Position: pos, Err: ErrNoID})
			continue
		}
		t, err := layout.Decode(it.Attributes)
		if err != nil {
			b.Skipped = append(b.Skipped, Skip{Position: pos, Err: err})
			continue
		}
		b.Records = append(b.Records, Record{ID: it.ID, Nonce: len(b.Records) + 1, Traits: t})
	}
	return b
}
