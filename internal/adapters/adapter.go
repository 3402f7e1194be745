// Package adapters defines the uniform sell capability every liquidity
// source plugs in through, plus the reference adapters used to exercise the
// engine in-process. Real per-protocol adapters live outside the core.
package adapters

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	ErrAdapterNotFound = errors.New("adapter not found")
	ErrPoolNotFound    = errors.New("pool not found")
	ErrZeroInput       = errors.New("zero input amount")
	ErrBadMoreInfo     = errors.New("malformed adapter data")
)

// Adapter is the two-directional sell capability. The engine never interprets
// moreInfo; it is produced by the route builder and passed through verbatim.
// Output is observed by the caller via balance delta, never a return value.
type Adapter interface {
	SellBase(ctx context.Context, to common.Address, pool common.Address, moreInfo []byte) error
	SellQuote(ctx context.Context, to common.Address, pool common.Address, moreInfo []byte) error
}

// PaymentPuller is the inbound payment callback a pull-style adapter invokes
// mid-sell. The engine validates the request against the fork currently in
// flight before honoring it.
type PaymentPuller interface {
	RequestPayment(amount0Owed, amount1Owed *uint256.Int, data []byte) error
}

// PoolInfoProvider exposes a pool's token pair. The single-family shorthand
// entry points use it to derive hop tokens from packed pool references.
type PoolInfoProvider interface {
	PoolTokens(pool common.Address) (token0, token1 common.Address, err error)
}

// PackTokenPair builds the 40-byte moreInfo prefix the reference adapters
// understand: fromToken followed by toToken.
func PackTokenPair(from, to common.Address) []byte {
	out := make([]byte, 0, 40)
	out = append(out, from.Bytes()...)
	out = append(out, to.Bytes()...)
	return out
}

// PackTokenPairAmount appends a 32-byte amount word after the token pair,
// for pull-style adapters that are not pre-funded.
func PackTokenPairAmount(from, to common.Address, amount *uint256.Int) []byte {
	out := PackTokenPair(from, to)
	b := amount.Bytes32()
	return append(out, b[:]...)
}

func unpackTokenPair(moreInfo []byte) (from, to common.Address, err error) {
	if len(moreInfo) < 40 {
		return common.Address{}, common.Address{}, ErrBadMoreInfo
	}
	return common.BytesToAddress(moreInfo[:20]), common.BytesToAddress(moreInfo[20:40]), nil
}

func unpackTokenPairAmount(moreInfo []byte) (from, to common.Address, amount *uint256.Int, err error) {
	if len(moreInfo) != 72 {
		return common.Address{}, common.Address{}, nil, ErrBadMoreInfo
	}
	from = common.BytesToAddress(moreInfo[:20])
	to = common.BytesToAddress(moreInfo[20:40])
	amount = new(uint256.Int).SetBytes(moreInfo[40:72])
	return from, to, amount, nil
}

// PackCallbackData builds the callback context: the token being paid and the
// pool it is owed to.
func PackCallbackData(tokenIn, pool common.Address) []byte {
	out := make([]byte, 0, 40)
	out = append(out, tokenIn.Bytes()...)
	out = append(out, pool.Bytes()...)
	return out
}

// UnpackCallbackData reverses PackCallbackData.
func UnpackCallbackData(data []byte) (tokenIn, pool common.Address, err error) {
	if len(data) != 40 {
		return common.Address{}, common.Address{}, ErrBadMoreInfo
	}
	return common.BytesToAddress(data[:20]), common.BytesToAddress(data[20:40]), nil
}
