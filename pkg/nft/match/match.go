/*
Package match selects NFT records by their traits.

Matching is a linear scan preserving input order: the first suitable record
always wins, so the same input always produces the same answer.
*/
package match

import (
	"encoding/hex"
	"fmt"

	"github.com/nspcc-dev/nftrader/pkg/nft/traits"
)

// Record is a single NFT as observed in a query response.
type Record struct {
	// ID is the token identifier.
	ID []byte
	// Nonce is the 1-based position of the record in the response.
	Nonce  int
	Traits traits.Traits
}

// Kind describes how a record was matched.
type Kind byte

// Match kinds.
const (
	None Kind = iota
	Exact
	Relaxed
)

// String implements the fmt.Stringer interface.
func (k Kind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Relaxed:
		return "relaxed"
	default:
		return "none"
	}
}

// Found returns true for any successful match.
func (k Kind) Found() bool {
	return k != None
}

// Partial is a partial trait specification, nil fields match anything.
type Partial struct {
	Class  *uint8
	Rarity *uint8
	Power  *uint8
}

// Relax returns a Partial requiring target's values for the given fields
// only.
func Relax(target traits.Traits, fields ...traits.Field) Partial {
	var p Partial
	for _, f := range fields {
		v := target.Get(f)
		switch f {
		case traits.Class:
			p.Class = &v
		case traits.Rarity:
			p.Rarity = &v
		case traits.Power:
			p.Power = &v
		}
	}
	return p
}

// IsEmpty returns true if p has no fields specified.
func (p Partial) IsEmpty() bool {
	return p.Class == nil && p.Rarity == nil && p.Power == nil
}

// Matches checks t against all specified fields of p.
func (p Partial) Matches(t traits.Traits) bool {
	return (p.Class == nil || *p.Class == t.Class) &&
		(p.Rarity == nil || *p.Rarity == t.Rarity) &&
		(p.Power == nil || *p.Power == t.Power)
}

// String implements the fmt.Stringer interface.
func (p Partial) String() string {
	var s string
	for _, f := range []struct {
		name string
		v    *uint8
	}{
		{"class", p.Class}, {"rarity", p.Rarity}, {"power", p.Power},
	} {
		if f.v == nil {
			continue
		}
		if s != "" {
			s += " "
		}
		s += fmt.Sprintf("%s=%d", f.name, *f.v)
	}
	if s == "" {
		return "any"
	}
	return s
}

// String implements the fmt.Stringer interface.
func (r Record) String() string {
	return fmt.Sprintf("#%d %s (%s)", r.Nonce, hex.EncodeToString(r.ID), r.Traits)
}

// Find returns the first record with traits equal to target.
func Find(records []Record, target traits.Traits) (Record, bool) {
	for _, r := range records {
		if r.Traits == target {
			return r, true
		}
	}
	return Record{}, false
}

// FindWithFallback is like Find, but if there is no exact match it
// returns the first record satisfying relaxed. An empty relaxed never matches.
func FindWithFallback(records []Record, target traits.Traits, relaxed Partial) (Record, Kind) {
	if r, ok := Find(records, target); ok {
		return r, Exact
	}
	if relaxed.IsEmpty() {
		return Record{}, None
	}
	for _, r := range records {
		if relaxed.Matches(r.Traits) {
			return r, Relaxed
		}
	}
	return Record{}, None
}
