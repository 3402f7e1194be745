package engine

import (
	"context"

	"github.com/holiman/uint256"

	"github.com/okx/WEB3-DEX/internal/adapters"
	"github.com/okx/WEB3-DEX/internal/domain"
	"github.com/okx/WEB3-DEX/internal/metrics"
)

// forkAmounts splits a hop input across forks: floor(amount * weight / 10000)
// per fork, with the last fork taking the exact residual so the parts always
// sum to the input and no dust is stranded.
func forkAmounts(amount *uint256.Int, forks []domain.Fork) []*uint256.Int {
	out := make([]*uint256.Int, len(forks))
	allocated := uint256.NewInt(0)
	for i := range forks {
		if i == len(forks)-1 {
			out[i] = new(uint256.Int).Sub(amount, allocated)
			break
		}
		share := new(uint256.Int).Mul(amount, uint256.NewInt(uint64(forks[i].Weight)))
		share.Div(share, uint256.NewInt(domain.WeightDenominator))
		allocated.Add(allocated, share)
		out[i] = share
	}
	return out
}

func (e *Engine) executeBatches(ctx context.Context, batches []domain.Batch) error {
	metrics.BatchesPerSwap.Observe(float64(len(batches)))
	for i := range batches {
		if err := e.executeBatch(ctx, &batches[i]); err != nil {
			return err
		}
	}
	return nil
}

// executeBatch walks the batch's hop chain, feeding each hop's measured
// output into the next. The batch amount is clamped against a live balance
// read: a prior batch (or a fee-on-transfer source) may have left less than
// the caller planned for.
func (e *Engine) executeBatch(ctx context.Context, batch *domain.Batch) error {
	avail := e.ledger.BalanceOf(batch.Hops[0].FromToken, e.Address())
	amount := minAmount(batch.Amount, avail).Clone()
	if amount.IsZero() {
		return ErrZeroAmount
	}

	metrics.HopsPerSwap.Observe(float64(len(batch.Hops)))
	for i := range batch.Hops {
		out, err := e.executeHop(ctx, &batch.Hops[i], amount)
		if err != nil {
			return err
		}
		amount = out
	}
	return nil
}

// executeHop dispatches each fork in order and measures the hop output as
// the engine's balance delta in the hop's destination token. Return values
// from adapters are never trusted.
func (e *Engine) executeHop(ctx context.Context, hop *domain.Hop, amount *uint256.Int) (*uint256.Int, error) {
	metrics.ForksPerHop.Observe(float64(len(hop.Forks)))

	before := e.ledger.BalanceOf(hop.ToToken, e.Address())

	amounts := forkAmounts(amount, hop.Forks)
	for i := range hop.Forks {
		if amounts[i].IsZero() {
			return nil, ErrZeroAmount
		}
		if err := e.dispatchFork(ctx, hop, &hop.Forks[i], amounts[i]); err != nil {
			return nil, err
		}
	}

	after := e.ledger.BalanceOf(hop.ToToken, e.Address())
	if after.Cmp(before) <= 0 {
		return nil, ErrZeroAmount
	}
	return new(uint256.Int).Sub(after, before), nil
}

// dispatchFork is the atomic unit of external interaction: place the fork's
// funds (unless the in-place fast path applies), mark the fork active for
// callback validation, and invoke the adapter's sell.
func (e *Engine) dispatchFork(ctx context.Context, hop *domain.Hop, fork *domain.Fork, amount *uint256.Int) error {
	adapter, err := e.registry.Resolve(fork.Adapter)
	if err != nil {
		return err
	}

	if fork.AssetTo != e.Address() {
		if err := e.ledger.Transfer(hop.FromToken, e.Address(), fork.AssetTo, amount); err != nil {
			return err
		}
	}

	moreInfo := fork.MoreInfo
	if fork.AppendAmount {
		word := amount.Bytes32()
		moreInfo = append(append([]byte{}, fork.MoreInfo...), word[:]...)
	}

	e.active = &activeFork{
		pool:      fork.Pool,
		fromToken: hop.FromToken,
	}
	defer func() { e.active = nil }()

	direction := "sell_base"
	sell := adapter.SellBase
	if fork.Reverse {
		direction = "sell_quote"
		sell = adapter.SellQuote
	}
	if err := sell(ctx, e.Address(), fork.Pool, moreInfo); err != nil {
		metrics.AdapterCalls.WithLabelValues(direction, "error").Inc()
		return err
	}
	metrics.AdapterCalls.WithLabelValues(direction, "success").Inc()
	return nil
}

var _ adapters.PaymentPuller = (*Engine)(nil)
