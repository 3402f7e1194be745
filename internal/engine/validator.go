package engine

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/okx/WEB3-DEX/internal/domain"
)

// validate runs every request-shape check before any external interaction,
// so a malformed request can never leave partial effects.
func (e *Engine) validate(args *swapArgs) error {
	req := args.req

	if req.Deadline > 0 && e.clock().Unix() > req.Deadline {
		return ErrDeadlineExpired
	}
	if req.FromTokenAmount == nil || req.FromTokenAmount.IsZero() {
		return ErrZeroAmount
	}
	// A zero min return is a valid "no floor" request; only a missing
	// value is malformed.
	if req.MinReturnAmount == nil {
		return ErrZeroAmount
	}
	if args.receiver == domain.ZeroAddress || args.refund == domain.ZeroAddress {
		return ErrZeroAddress
	}
	if len(args.batches) == 0 {
		return ErrLengthMismatch
	}

	srcExec, dstExec := e.execTokens(req)
	if srcExec == dstExec {
		return ErrInvalidPath
	}

	for i := range args.batches {
		if err := e.validateBatch(&args.batches[i], srcExec, dstExec); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) validateBatch(batch *domain.Batch, srcExec, dstExec common.Address) error {
	if batch.Amount == nil || batch.Amount.IsZero() {
		return ErrZeroAmount
	}
	if len(batch.Hops) == 0 {
		return ErrLengthMismatch
	}
	if batch.Hops[0].FromToken != srcExec {
		return ErrInvalidPath
	}
	if batch.Hops[len(batch.Hops)-1].ToToken != dstExec {
		return ErrInvalidPath
	}

	for i := range batch.Hops {
		hop := &batch.Hops[i]
		if i > 0 && hop.FromToken != batch.Hops[i-1].ToToken {
			return ErrInvalidPath
		}
		if err := e.validateHop(hop); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) validateHop(hop *domain.Hop) error {
	if len(hop.Forks) == 0 {
		return ErrLengthMismatch
	}

	var weightSum uint64
	for i := range hop.Forks {
		fork := &hop.Forks[i]
		weightSum += uint64(fork.Weight)

		// The in-place fast path leaves funds at the engine for the adapter
		// to pull; that is only sound when exactly one fork consumes the
		// whole hop amount.
		if fork.AssetTo == e.Address() {
			if len(hop.Forks) != 1 || fork.Weight != domain.WeightDenominator {
				return ErrInvalidPath
			}
		}
	}
	if weightSum > domain.WeightDenominator {
		return ErrWeightOverflow
	}
	return nil
}
