/*
Package exchange provides RPC wrappers for the card exchange contract.

The contract sells cards from its supply for cards of the assigned traits.
Only its safe methods are wrapped here, payments are NEP-11 transfers made
via the collection package.
*/
package exchange

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/nftrader/pkg/nft/match"
	"github.com/nspcc-dev/nftrader/pkg/nft/traits"
)

// Default method names.
const (
	DefaultAssignedMethod = "getYourNftCardProperties"
	DefaultSupplyMethod   = "nftSupply"
)

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
}

// Options customize ContractReader, zero values are replaced with defaults.
type Options struct {
	AssignedMethod string
	SupplyMethod   string
	Layout         *traits.Layout
}

// ContractReader implements safe exchange contract methods.
type ContractReader struct {
	invoker Invoker
	hash    util.Uint160
	opts    Options
}

// NewReader creates an instance of ContractReader using provided contract
// hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160, opts Options) *ContractReader {
	if opts.AssignedMethod == "" {
		opts.AssignedMethod = DefaultAssignedMethod
	}
	if opts.SupplyMethod == "" {
		opts.SupplyMethod = DefaultSupplyMethod
	}
	if opts.Layout == nil {
		l := traits.DefaultLayout
		opts.Layout = &l
	}
	return &ContractReader{invoker, hash, opts}
}

// Hash returns the contract hash.
func (c *ContractReader) Hash() util.Uint160 {
	return c.hash
}

// AssignedTraits invokes the assigned traits method of the contract. It
// returns traits of the card the contract wants to get in exchange.
func (c *ContractReader) AssignedTraits() (traits.Traits, error) {
	itm, err := unwrap.Item(c.invoker.Call(c.hash, c.opts.AssignedMethod))
	if err != nil {
		return traits.Traits{}, err
	}
	return itemToTraits(itm)
}

// Supply invokes the supply method of the contract and decodes all cards
// available. Cards that can't be decoded are skipped and reported in the
// result.
func (c *ContractReader) Supply() (match.Batch, error) {
	arr, err := unwrap.Array(c.invoker.Call(c.hash, c.opts.SupplyMethod))
	if err != nil {
		return match.Batch{}, err
	}
	items := make([]match.RawItem, len(arr))
	for i := range arr {
		items[i] = itemToRaw(arr[i])
	}
	return match.DecodeAll(items, *c.opts.Layout), nil
}

func itemToTraits(itm stackitem.Item) (traits.Traits, error) {
	var vals [3]stackitem.Item
	switch itm.Type() {
	case stackitem.StructT, stackitem.ArrayT:
		arr := itm.Value().([]stackitem.Item)
		if len(arr) != len(vals) {
			return traits.Traits{}, fmt.Errorf("wrong number of trait elements: %d", len(arr))
		}
		copy(vals[:], arr)
	case stackitem.MapT:
		m := itm.(*stackitem.Map)
		for i, f := range traits.Fields {
			idx := m.Index(stackitem.Make(f.String()))
			if idx < 0 {
				return traits.Traits{}, fmt.Errorf("no %s in traits map", f)
			}
			vals[i] = m.Value().([]stackitem.MapElement)[idx].Value
		}
	default:
		return traits.Traits{}, fmt.Errorf("unexpected traits item type: %s", itm.Type())
	}
	var ints [3]int
	for i := range vals {
		bi, err := vals[i].TryInteger()
		if err != nil {
			return traits.Traits{}, fmt.Errorf("invalid %s: %w", traits.Fields[i], err)
		}
		if !bi.IsInt64() {
			return traits.Traits{}, fmt.Errorf("%s value %s is out of range", traits.Fields[i], bi)
		}
		ints[i] = int(bi.Int64())
	}
	return traits.New(ints[0], ints[1], ints[2])
}

var errNotStruct = errors.New("supply item is not a struct")

func itemToRaw(itm stackitem.Item) match.RawItem {
	if itm.Type() != stackitem.StructT && itm.Type() != stackitem.ArrayT {
		return match.RawItem{Err: errNotStruct}
	}
	arr := itm.Value().([]stackitem.Item)
	if len(arr) < 2 {
		return match.RawItem{Err: fmt.Errorf("wrong number of supply item elements: %d", len(arr))}
	}
	var (
		res match.RawItem
		err error
	)
	if arr[0].Type() != stackitem.AnyT {
		res.ID, err = arr[0].TryBytes()
		if err != nil {
			return match.RawItem{Err: fmt.Errorf("invalid token ID: %w", err)}
		}
	}
	res.Attributes, err = arr[1].TryBytes()
	if err != nil {
		return match.RawItem{Err: fmt.Errorf("invalid attributes: %w", err)}
	}
	return res
}
