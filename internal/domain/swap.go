package domain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// WeightDenominator is the basis-point denominator for fork weights within a
// hop. The weights of one hop must not sum above it.
const WeightDenominator = 10000

type SwapRequest struct {
	FromToken common.Address

	ToToken common.Address

	FromTokenAmount *uint256.Int

	MinReturnAmount *uint256.Int

	// Deadline is a unix timestamp. Zero means the entry point carries no
	// deadline on the wire (single-family shorthands).
	Deadline int64
}

// Fork is one weighted adapter invocation within a hop.
type Fork struct {
	// Adapter is the registry handle of the liquidity-source adapter.
	Adapter common.Address

	// AssetTo is where the fork's input funds are placed before the sell
	// call. When it equals the engine's own custody address the funds stay
	// in place and the adapter pulls them itself; only legal for a hop with
	// a single full-weight fork.
	AssetTo common.Address

	// Reverse selects SellQuote instead of SellBase.
	Reverse bool

	// Weight is the fork's share of the hop input in basis points.
	Weight uint16

	Pool common.Address

	// MoreInfo is opaque adapter data, passed through verbatim.
	MoreInfo []byte

	// AppendAmount makes the executor append the fork's input amount as a
	// 32-byte word after MoreInfo at dispatch. Set only by entry points
	// that build routes for pull-style adapters themselves; never decoded
	// from the wire.
	AppendAmount bool
}

// Hop is one stage in a batch's sequential chain; its output feeds the next
// hop.
type Hop struct {
	FromToken common.Address
	ToToken   common.Address
	Forks     []Fork
}

// Batch is an independently routed slice of the total swap amount.
type Batch struct {
	Amount *uint256.Int
	Hops   []Hop
}

type SwapResult struct {
	OrderID *uint256.Int

	FromToken common.Address

	ToToken common.Address

	// FromTokenAmount is the amount the engine actually took custody of,
	// measured by balance delta rather than the request argument.
	FromTokenAmount *uint256.Int

	// ReturnAmount is the net amount settled to the receiver.
	ReturnAmount *uint256.Int

	// RefundAmount is the unused source amount sent back to the refund
	// address, if any.
	RefundAmount *uint256.Int

	CommissionAmount *uint256.Int
}
