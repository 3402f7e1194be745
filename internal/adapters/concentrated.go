package adapters

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/okx/WEB3-DEX/internal/ledger"
)

// ConcentratedAdapter is the pull-style reference adapter. It is never
// pre-funded: it pays the output out of pool reserves first, then calls back
// into the engine to pull the owed input. moreInfo carries the token pair
// and the input amount since there is no balance to infer it from.
type ConcentratedAdapter struct {
	ledger *ledger.Ledger
	payer  PaymentPuller

	mu    sync.RWMutex
	pools map[common.Address]*concentratedPool
}

type concentratedPool struct {
	token0  common.Address
	token1  common.Address
	rateNum uint64
	rateDen uint64
}

func NewConcentrated(l *ledger.Ledger, payer PaymentPuller) *ConcentratedAdapter {
	return &ConcentratedAdapter{
		ledger: l,
		payer:  payer,
		pools:  make(map[common.Address]*concentratedPool),
	}
}

func (a *ConcentratedAdapter) RegisterPool(pool, token0, token1 common.Address, rateNum, rateDen uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pools[pool] = &concentratedPool{token0: token0, token1: token1, rateNum: rateNum, rateDen: rateDen}
}

func (a *ConcentratedAdapter) PoolTokens(pool common.Address) (common.Address, common.Address, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p, ok := a.pools[pool]
	if !ok {
		return common.Address{}, common.Address{}, ErrPoolNotFound
	}
	return p.token0, p.token1, nil
}

func (a *ConcentratedAdapter) SellBase(ctx context.Context, to common.Address, pool common.Address, moreInfo []byte) error {
	return a.sell(to, pool, moreInfo, false)
}

func (a *ConcentratedAdapter) SellQuote(ctx context.Context, to common.Address, pool common.Address, moreInfo []byte) error {
	return a.sell(to, pool, moreInfo, true)
}

func (a *ConcentratedAdapter) sell(to, pool common.Address, moreInfo []byte, quoteIn bool) error {
	a.mu.RLock()
	p, ok := a.pools[pool]
	a.mu.RUnlock()
	if !ok {
		return ErrPoolNotFound
	}

	tokenIn, _, amountIn, err := unpackTokenPairAmount(moreInfo)
	if err != nil {
		return err
	}
	if amountIn.IsZero() {
		return ErrZeroInput
	}

	num, den := p.rateNum, p.rateDen
	tokenOut := p.token1
	if quoteIn {
		num, den = p.rateDen, p.rateNum
		tokenOut = p.token0
	}

	amountOut := new(uint256.Int).Mul(amountIn, uint256.NewInt(num))
	amountOut.Div(amountOut, uint256.NewInt(den))
	if amountOut.IsZero() {
		return ErrZeroInput
	}

	// Pay out first, then pull the owed input through the engine.
	if err := a.ledger.Transfer(tokenOut, pool, to, amountOut); err != nil {
		return err
	}

	amount0Owed := uint256.NewInt(0)
	amount1Owed := uint256.NewInt(0)
	if tokenIn == p.token0 {
		amount0Owed = amountIn
	} else {
		amount1Owed = amountIn
	}
	return a.payer.RequestPayment(amount0Owed, amount1Owed, PackCallbackData(tokenIn, pool))
}
