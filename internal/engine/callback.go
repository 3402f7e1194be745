package engine

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/okx/WEB3-DEX/internal/adapters"
	"github.com/okx/WEB3-DEX/internal/metrics"
)

// activeFork identifies the adapter invocation currently in flight. A
// payment callback is honored only when it matches this context exactly.
type activeFork struct {
	pool      common.Address
	fromToken common.Address
}

// RequestPayment is the inbound payment callback. A pull-style adapter calls
// it mid-sell to collect the input it is owed. The request must name exactly
// one positive amount, and both the token and the pool must match the active
// fork; anything else aborts the whole execution.
func (e *Engine) RequestPayment(amount0Owed, amount1Owed *uint256.Int, data []byte) error {
	if e.active == nil {
		metrics.PaymentCallbacks.WithLabelValues("rejected").Inc()
		return ErrInvalidCallback
	}
	if amount0Owed == nil || amount1Owed == nil {
		metrics.PaymentCallbacks.WithLabelValues("rejected").Inc()
		return ErrInvalidCallback
	}
	if amount0Owed.IsZero() == amount1Owed.IsZero() {
		metrics.PaymentCallbacks.WithLabelValues("rejected").Inc()
		return ErrInvalidCallback
	}

	tokenIn, pool, err := adapters.UnpackCallbackData(data)
	if err != nil {
		metrics.PaymentCallbacks.WithLabelValues("rejected").Inc()
		return ErrInvalidCallback
	}
	if tokenIn != e.active.fromToken || pool != e.active.pool {
		metrics.PaymentCallbacks.WithLabelValues("rejected").Inc()
		return ErrInvalidCallback
	}

	owed := amount0Owed
	if owed.IsZero() {
		owed = amount1Owed
	}
	if err := e.ledger.Transfer(tokenIn, e.Address(), pool, owed); err != nil {
		metrics.PaymentCallbacks.WithLabelValues("error").Inc()
		return err
	}
	metrics.PaymentCallbacks.WithLabelValues("honored").Inc()
	return nil
}
