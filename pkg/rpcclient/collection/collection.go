/*
Package collection provides RPC wrappers for the user's NEP-11 card
collection contract.

Besides standard non-divisible NEP-11 methods it allows to mint new cards
with encoded traits and to pay the exchange contract with a card. Payment is
a regular NEP-11 transfer to the exchange with the number of the chosen
supply card passed as transfer data.
*/
package collection

import (
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/nep11"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// DefaultMintMethod is the default name of the minting method.
const DefaultMintMethod = "mint"

// DefaultRoyalties is the default royalties value, 2.5% in basis points.
const DefaultRoyalties = 250

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	nep11.Invoker
}

// Actor is used by Contract to call state-changing methods.
type Actor interface {
	Invoker
	nep11.Actor

	MakeCall(contract util.Uint160, method string, params ...any) (*transaction.Transaction, error)
	MakeUnsignedCall(contract util.Uint160, method string, attrs []transaction.Attribute, params ...any) (*transaction.Transaction, error)
	SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error)
}

// ContractReader implements safe contract methods.
type ContractReader struct {
	nep11.NonDivisibleReader

	invoker Invoker
	hash    util.Uint160
}

// Contract provides full collection interface, both safe and state-changing
// methods.
type Contract struct {
	ContractReader
	nep11.BaseWriter

	actor      Actor
	hash       util.Uint160
	mintMethod string
}

// MintParams are card parameters passed to the minting method.
type MintParams struct {
	Owner      util.Uint160
	Name       string
	Attributes []byte
	URI        string
	Royalties  int64
}

// NewReader creates an instance of ContractReader using provided contract
// hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{*nep11.NewNonDivisibleReader(invoker, hash), invoker, hash}
}

// New creates an instance of Contract using provided contract hash and the
// given Actor. Empty mintMethod means DefaultMintMethod.
func New(actor Actor, hash util.Uint160, mintMethod string) *Contract {
	if mintMethod == "" {
		mintMethod = DefaultMintMethod
	}
	var nep11ndt = nep11.NewNonDivisible(actor, hash)
	return &Contract{ContractReader{nep11ndt.NonDivisibleReader, actor, hash}, nep11ndt.BaseWriter, actor, hash, mintMethod}
}

// Hash returns the contract hash.
func (c *ContractReader) Hash() util.Uint160 {
	return c.hash
}

// Cards returns up to max identifiers of cards owned by the given account.
func (c *ContractReader) Cards(owner util.Uint160, max int) ([][]byte, error) {
	return c.TokensOfExpanded(owner, max)
}

func (p MintParams) args() []any {
	return []any{p.Owner, p.Name, p.Attributes, p.URI, p.Royalties}
}

// Mint creates a transaction invoking the minting method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Mint(p MintParams) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, c.mintMethod, p.args()...)
}

// MintTransaction creates a transaction invoking the minting method of the
// contract. This transaction is signed, but not sent to the network, instead
// it's returned to the caller.
func (c *Contract) MintTransaction(p MintParams) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, c.mintMethod, p.args()...)
}

// MintUnsigned creates a transaction invoking the minting method of the
// contract. This transaction is not signed, it's simply returned to the
// caller. Any fields of it that do not affect fees can be changed
// (ValidUntilBlock, Nonce), fee values (NetworkFee, SystemFee) can be
// increased as well.
func (c *Contract) MintUnsigned(p MintParams) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, c.mintMethod, nil, p.args()...)
}

// Pay transfers the given card to the exchange contract asking for the
// supply card with the given nonce in return. The transaction is signed and
// immediately sent to the network. The values returned are its hash,
// ValidUntilBlock value and error if any.
func (c *Contract) Pay(exchange util.Uint160, card []byte, nonce int) (util.Uint256, uint32, error) {
	return c.Transfer(exchange, card, nonce)
}

// PayTransaction is similar to Pay, but the transaction is signed and
// returned to the caller instead of being sent.
func (c *Contract) PayTransaction(exchange util.Uint160, card []byte, nonce int) (*transaction.Transaction, error) {
	return c.TransferTransaction(exchange, card, nonce)
}

// PayUnsigned is similar to Pay, but the transaction is neither signed nor
// sent, it's just returned to the caller.
func (c *Contract) PayUnsigned(exchange util.Uint160, card []byte, nonce int) (*transaction.Transaction, error) {
	return c.TransferUnsigned(exchange, card, nonce)
}
