package adapters

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/okx/WEB3-DEX/internal/ledger"
)

// FixedRateAdapter sells at a deterministic rate: out = in * num / den for
// base sales and the inverse for quote sales. Push style; consumed input is
// swept to the sink address so repeated sells never double count.
type FixedRateAdapter struct {
	ledger *ledger.Ledger
	sink   common.Address

	mu    sync.RWMutex
	pools map[common.Address]*fixedRatePool
}

type fixedRatePool struct {
	token0  common.Address
	token1  common.Address
	rateNum uint64
	rateDen uint64
}

func NewFixedRate(l *ledger.Ledger, sink common.Address) *FixedRateAdapter {
	return &FixedRateAdapter{
		ledger: l,
		sink:   sink,
		pools:  make(map[common.Address]*fixedRatePool),
	}
}

func (a *FixedRateAdapter) RegisterPool(pool, token0, token1 common.Address, rateNum, rateDen uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pools[pool] = &fixedRatePool{token0: token0, token1: token1, rateNum: rateNum, rateDen: rateDen}
}

func (a *FixedRateAdapter) PoolTokens(pool common.Address) (common.Address, common.Address, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p, ok := a.pools[pool]
	if !ok {
		return common.Address{}, common.Address{}, ErrPoolNotFound
	}
	return p.token0, p.token1, nil
}

func (a *FixedRateAdapter) SellBase(ctx context.Context, to common.Address, pool common.Address, moreInfo []byte) error {
	return a.sell(to, pool, false)
}

func (a *FixedRateAdapter) SellQuote(ctx context.Context, to common.Address, pool common.Address, moreInfo []byte) error {
	return a.sell(to, pool, true)
}

func (a *FixedRateAdapter) sell(to, pool common.Address, quoteIn bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, ok := a.pools[pool]
	if !ok {
		return ErrPoolNotFound
	}

	tokenIn, tokenOut := p.token0, p.token1
	num, den := p.rateNum, p.rateDen
	if quoteIn {
		tokenIn, tokenOut = p.token1, p.token0
		num, den = p.rateDen, p.rateNum
	}

	amountIn := a.ledger.BalanceOf(tokenIn, pool)
	if amountIn.IsZero() {
		return ErrZeroInput
	}

	amountOut := new(uint256.Int).Mul(amountIn, uint256.NewInt(num))
	amountOut.Div(amountOut, uint256.NewInt(den))
	if amountOut.IsZero() {
		return ErrZeroInput
	}

	if err := a.ledger.Transfer(tokenIn, pool, a.sink, amountIn); err != nil {
		return err
	}
	return a.ledger.Transfer(tokenOut, pool, to, amountOut)
}
