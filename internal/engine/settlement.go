package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/okx/WEB3-DEX/internal/commission"
	"github.com/okx/WEB3-DEX/internal/domain"
	"github.com/okx/WEB3-DEX/internal/metrics"
)

// swap drives one execution end to end under the engine lock. Any error
// reverts every custody transition made since entry; the caller observes
// either the full effect or none.
func (e *Engine) swap(ctx context.Context, args *swapArgs) (*domain.SwapResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	if args.orderID == nil {
		args.orderID = uint256.NewInt(0)
	}
	logger := log.With().
		Str("execution", uuid.NewString()).
		Str("entry", args.entry).
		Str("orderId", args.orderID.Dec()).
		Logger()

	if err := e.validate(args); err != nil {
		return nil, e.abort(logger, args.entry, err)
	}

	spec, hasCommission, err := commission.Decode(args.trailer)
	if err != nil {
		return nil, e.abort(logger, args.entry, fmt.Errorf("%w: %s", ErrInvalidCommission, err))
	}
	if hasCommission {
		// The commission token must sit on the side the trailer declares.
		sideToken := args.req.ToToken
		if spec.OnSource {
			sideToken = args.req.FromToken
		}
		if spec.Token != sideToken {
			return nil, e.abort(logger, args.entry, ErrInvalidCommission)
		}
	}

	logger.Info().
		Str("fromToken", args.req.FromToken.Hex()).
		Str("toToken", args.req.ToToken.Hex()).
		Str("amount", args.req.FromTokenAmount.Dec()).
		Msg("swap started")

	snap := e.ledger.Snapshot()
	result, err := e.run(ctx, args, spec, hasCommission)
	if err != nil {
		e.ledger.RevertToSnapshot(snap)
		return nil, e.abort(logger, args.entry, err)
	}

	metrics.SwapRequests.WithLabelValues(args.entry, "success").Inc()
	metrics.SwapDuration.WithLabelValues(args.entry).Observe(time.Since(start).Seconds())

	rec := &domain.OrderRecord{
		OrderID:         result.OrderID,
		FromToken:       result.FromToken,
		ToToken:         result.ToToken,
		Origin:          args.origin,
		FromTokenAmount: result.FromTokenAmount,
		ReturnAmount:    result.ReturnAmount,
		CompletedAt:     e.clock(),
	}
	if e.orders != nil {
		if err := e.orders.Record(rec); err != nil {
			// The swap itself is settled; a failed index write is not
			// grounds to unwind it.
			logger.Warn().Err(err).Msg("failed to record order")
		} else {
			metrics.OrdersRecorded.Inc()
		}
	}

	logger.Info().
		Str("returnAmount", result.ReturnAmount.Dec()).
		Str("refundAmount", result.RefundAmount.Dec()).
		Msg("swap completed")
	return result, nil
}

func (e *Engine) abort(logger zerolog.Logger, entry string, err error) error {
	metrics.SwapRequests.WithLabelValues(entry, "error").Inc()
	metrics.SwapAborts.WithLabelValues(abortReason(err)).Inc()
	logger.Error().Err(err).Msg("swap aborted")
	return err
}

// run performs funding, batch execution and settlement. It mutates ledger
// state freely; swap reverts to the entry snapshot when it errors.
func (e *Engine) run(ctx context.Context, args *swapArgs, spec *commission.Spec, hasCommission bool) (*domain.SwapResult, error) {
	req := args.req
	srcExec, dstExec := e.execTokens(req)

	srcBalBefore := e.ledger.BalanceOf(srcExec, e.Address())
	dstBalBefore := e.ledger.BalanceOf(dstExec, e.Address())

	commissionPaid := uint256.NewInt(0)

	// baseline is what the engine is entitled to keep in the source token
	// once the execution is over; anything above it is refunded. For the
	// invest variant the already-held input is spendable, so it comes out
	// of the baseline up front.
	baseline := srcBalBefore.Clone()
	invested := req.FromTokenAmount.Clone()
	if args.funding == fundBalance {
		// Funds were deposited ahead of time; spend no more than is
		// actually here, whatever the request claims.
		invested = minAmount(invested, srcBalBefore).Clone()
		if invested.IsZero() {
			return nil, ErrZeroAmount
		}
		baseline.Sub(baseline, invested)
	}

	// Source-side commission comes off the top before routing.
	routeAmount := invested.Clone()
	if hasCommission && spec.OnSource {
		c1 := commission.Amount(invested, spec.Rate1)
		c2 := uint256.NewInt(0)
		if spec.Dual {
			c2 = commission.Amount(invested, spec.Rate2)
		}
		if err := e.payCommission(req.FromToken, args.payer, spec.Receiver1, c1); err != nil {
			return nil, err
		}
		if err := e.payCommission(req.FromToken, args.payer, spec.Receiver2, c2); err != nil {
			return nil, err
		}
		routeAmount.Sub(routeAmount, c1)
		routeAmount.Sub(routeAmount, c2)
		if routeAmount.IsZero() {
			return nil, ErrZeroAmount
		}
		commissionPaid.Add(commissionPaid, c1)
		commissionPaid.Add(commissionPaid, c2)
		metrics.CommissionPayouts.WithLabelValues("source").Inc()
	}

	if args.funding == fundPull {
		if domain.IsNative(req.FromToken) {
			if err := e.ledger.Transfer(domain.NativeToken, args.payer, e.Address(), routeAmount); err != nil {
				return nil, err
			}
			if err := e.ledger.Deposit(e.Address(), routeAmount); err != nil {
				return nil, err
			}
		} else {
			if err := e.ledger.Transfer(srcExec, args.payer, e.Address(), routeAmount); err != nil {
				return nil, err
			}
		}
	}

	// Funding is measured by delta, not by argument: a fee-on-transfer
	// source delivers less than was sent.
	funded := e.ledger.BalanceOf(srcExec, e.Address())
	funded.Sub(funded, baseline)

	if err := e.executeBatches(ctx, args.batches); err != nil {
		return nil, err
	}

	dstBalAfter := e.ledger.BalanceOf(dstExec, e.Address())
	if dstBalAfter.Cmp(dstBalBefore) <= 0 {
		return nil, ErrZeroAmount
	}
	returnAmount := new(uint256.Int).Sub(dstBalAfter, dstBalBefore)
	if returnAmount.Lt(req.MinReturnAmount) {
		return nil, ErrMinReturnNotMet
	}

	netReturn := returnAmount.Clone()
	destC1 := uint256.NewInt(0)
	destC2 := uint256.NewInt(0)
	if hasCommission && !spec.OnSource {
		destC1 = commission.Amount(returnAmount, spec.Rate1)
		if spec.Dual {
			destC2 = commission.Amount(returnAmount, spec.Rate2)
		}
		netReturn.Sub(netReturn, destC1)
		netReturn.Sub(netReturn, destC2)
		commissionPaid.Add(commissionPaid, destC1)
		commissionPaid.Add(commissionPaid, destC2)
	}

	payoutToken := dstExec
	if domain.IsNative(req.ToToken) {
		if err := e.ledger.Withdraw(e.Address(), returnAmount); err != nil {
			return nil, err
		}
		metrics.NativeUnwraps.Inc()
		payoutToken = domain.NativeToken
	}
	if err := e.payCommission(payoutToken, e.Address(), spec2receiver1(spec), destC1); err != nil {
		return nil, err
	}
	if err := e.payCommission(payoutToken, e.Address(), spec2receiver2(spec), destC2); err != nil {
		return nil, err
	}
	if !destC1.IsZero() || !destC2.IsZero() {
		metrics.CommissionPayouts.WithLabelValues("dest").Inc()
	}
	if err := e.ledger.Transfer(payoutToken, e.Address(), args.receiver, netReturn); err != nil {
		return nil, err
	}

	// Refund whatever source amount the batches did not consume.
	refundAmount := uint256.NewInt(0)
	srcBalNow := e.ledger.BalanceOf(srcExec, e.Address())
	if srcBalNow.Gt(baseline) {
		refundAmount = new(uint256.Int).Sub(srcBalNow, baseline)
		refundToken := srcExec
		if domain.IsNative(req.FromToken) {
			if err := e.ledger.Withdraw(e.Address(), refundAmount); err != nil {
				return nil, err
			}
			refundToken = domain.NativeToken
		}
		if err := e.ledger.Transfer(refundToken, e.Address(), args.refund, refundAmount); err != nil {
			return nil, err
		}
		metrics.Refunds.Inc()
	}

	consumed := new(uint256.Int).Sub(funded, refundAmount)
	return &domain.SwapResult{
		OrderID:          args.orderID,
		FromToken:        req.FromToken,
		ToToken:          req.ToToken,
		FromTokenAmount:  consumed,
		ReturnAmount:     netReturn,
		RefundAmount:     refundAmount,
		CommissionAmount: commissionPaid,
	}, nil
}

func (e *Engine) payCommission(token common.Address, from, to common.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return nil
	}
	if to == domain.ZeroAddress {
		return ErrZeroAddress
	}
	return e.ledger.Transfer(token, from, to, amount)
}

func spec2receiver1(spec *commission.Spec) common.Address {
	if spec == nil {
		return common.Address{}
	}
	return spec.Receiver1
}

func spec2receiver2(spec *commission.Spec) common.Address {
	if spec == nil {
		return common.Address{}
	}
	return spec.Receiver2
}

func abortReason(err error) string {
	switch {
	case errors.Is(err, ErrDeadlineExpired):
		return "deadline_expired"
	case errors.Is(err, ErrZeroAmount):
		return "zero_amount"
	case errors.Is(err, ErrLengthMismatch):
		return "length_mismatch"
	case errors.Is(err, ErrWeightOverflow):
		return "weight_overflow"
	case errors.Is(err, ErrMinReturnNotMet):
		return "min_return_not_met"
	case errors.Is(err, ErrZeroAddress):
		return "zero_address"
	case errors.Is(err, ErrNativeTransferFailed):
		return "native_transfer_failed"
	case errors.Is(err, ErrInvalidSourceForInvest):
		return "invalid_source"
	case errors.Is(err, ErrInvalidCallback):
		return "invalid_callback"
	case errors.Is(err, ErrInvalidPath):
		return "invalid_path"
	case errors.Is(err, ErrInvalidCommission):
		return "invalid_commission"
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	default:
		return "other"
	}
}
