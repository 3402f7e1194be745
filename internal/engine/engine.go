// Package engine plans and executes swaps: it splits a request into
// batches, hops and weighted forks, dispatches forks to adapters, reconciles
// outputs by balance delta, extracts commission and settles to the receiver.
// An execution either applies completely or not at all.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/okx/WEB3-DEX/internal/adapters"
	"github.com/okx/WEB3-DEX/internal/config"
	"github.com/okx/WEB3-DEX/internal/domain"
	"github.com/okx/WEB3-DEX/internal/ledger"
)

// OrderSink receives the immutable record of each completed swap.
type OrderSink interface {
	Record(rec *domain.OrderRecord) error
}

type fundingMode int

const (
	// fundPull transfers the source amount from the payer at entry.
	fundPull fundingMode = iota
	// fundBalance uses the engine's already-held source balance.
	fundBalance
)

type Engine struct {
	// mu serializes executions: balances are shared with nested adapter
	// calls, so only one execution may observe them at a time.
	mu sync.Mutex

	cfg      *config.EngineConfig
	ledger   *ledger.Ledger
	registry *adapters.Registry
	orders   OrderSink

	clock func() time.Time

	// active tracks the fork currently in flight; payment callbacks are
	// validated against it.
	active *activeFork
}

func New(cfg *config.EngineConfig, l *ledger.Ledger, reg *adapters.Registry, orders OrderSink) *Engine {
	return &Engine{
		cfg:      cfg,
		ledger:   l,
		registry: reg,
		orders:   orders,
		clock:    time.Now,
	}
}

// WithClock overrides the engine clock for deterministic tests.
func (e *Engine) WithClock(clock func() time.Time) {
	if clock != nil {
		e.clock = clock
	}
}

// Address is the engine's own custody address in the ledger.
func (e *Engine) Address() common.Address {
	return e.cfg.RouterAddress
}

func (e *Engine) Ledger() *ledger.Ledger {
	return e.ledger
}

func (e *Engine) Registry() *adapters.Registry {
	return e.registry
}

// SmartSwapByOrderID pulls funds from the caller and settles back to the
// caller. The trailer may carry an encoded commission spec.
func (e *Engine) SmartSwapByOrderID(ctx context.Context, orderID *uint256.Int, origin common.Address, req *domain.SwapRequest, batches []domain.Batch, trailer []byte) (*domain.SwapResult, error) {
	return e.swap(ctx, &swapArgs{
		entry:    "swap_by_order_id",
		orderID:  orderID,
		origin:   origin,
		payer:    origin,
		receiver: origin,
		refund:   origin,
		req:      req,
		batches:  batches,
		trailer:  trailer,
		funding:  fundPull,
	})
}

// SmartSwapTo pulls funds from the caller and settles to an explicit
// receiver; leftovers go back to the caller.
func (e *Engine) SmartSwapTo(ctx context.Context, orderID *uint256.Int, origin, receiver common.Address, req *domain.SwapRequest, batches []domain.Batch, trailer []byte) (*domain.SwapResult, error) {
	return e.swap(ctx, &swapArgs{
		entry:    "swap_to",
		orderID:  orderID,
		origin:   origin,
		payer:    origin,
		receiver: receiver,
		refund:   origin,
		req:      req,
		batches:  batches,
		trailer:  trailer,
		funding:  fundPull,
	})
}

// SmartSwapByInvest sources the input from the engine's already-held balance
// instead of pulling from the caller. The native asset is not a valid source
// here: an already-held native balance has no unambiguous owner.
func (e *Engine) SmartSwapByInvest(ctx context.Context, orderID *uint256.Int, origin, receiver, refund common.Address, req *domain.SwapRequest, batches []domain.Batch, trailer []byte) (*domain.SwapResult, error) {
	if domain.IsNative(req.FromToken) {
		return nil, ErrInvalidSourceForInvest
	}
	if receiver == domain.ZeroAddress || refund == domain.ZeroAddress {
		return nil, ErrZeroAddress
	}
	return e.swap(ctx, &swapArgs{
		entry:    "swap_by_invest",
		orderID:  orderID,
		origin:   origin,
		payer:    e.Address(),
		receiver: receiver,
		refund:   refund,
		req:      req,
		batches:  batches,
		trailer:  trailer,
		funding:  fundBalance,
	})
}

type swapArgs struct {
	entry    string
	orderID  *uint256.Int
	origin   common.Address
	payer    common.Address
	receiver common.Address
	refund   common.Address
	req      *domain.SwapRequest
	batches  []domain.Batch
	trailer  []byte
	funding  fundingMode
}

// execTokens are the wrapped-normalized forms the executor works in.
func (e *Engine) execTokens(req *domain.SwapRequest) (src, dst common.Address) {
	src = req.FromToken
	if domain.IsNative(src) {
		src = e.cfg.WNativeAddress
	}
	dst = req.ToToken
	if domain.IsNative(dst) {
		dst = e.cfg.WNativeAddress
	}
	return src, dst
}

func minAmount(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return a
	}
	return b
}
