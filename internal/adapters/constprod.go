package adapters

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/okx/WEB3-DEX/internal/ledger"
)

const feeDenominator = 10000

// ConstProdAdapter is a push-style x*y=k reference adapter. The input amount
// is inferred from the pool's balance delta against its tracked reserves, so
// fee-on-transfer inputs price correctly.
type ConstProdAdapter struct {
	ledger *ledger.Ledger

	mu    sync.RWMutex
	pools map[common.Address]*constProdPool
}

type constProdPool struct {
	token0   common.Address
	token1   common.Address
	reserve0 *uint256.Int
	reserve1 *uint256.Int
	feeBps   uint64
}

func NewConstProd(l *ledger.Ledger) *ConstProdAdapter {
	return &ConstProdAdapter{
		ledger: l,
		pools:  make(map[common.Address]*constProdPool),
	}
}

// RegisterPool starts tracking a pool. Reserves are seeded from the pool's
// current ledger balances.
func (a *ConstProdAdapter) RegisterPool(pool, token0, token1 common.Address, feeBps uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pools[pool] = &constProdPool{
		token0:   token0,
		token1:   token1,
		reserve0: a.ledger.BalanceOf(token0, pool),
		reserve1: a.ledger.BalanceOf(token1, pool),
		feeBps:   feeBps,
	}
}

func (a *ConstProdAdapter) PoolTokens(pool common.Address) (common.Address, common.Address, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p, ok := a.pools[pool]
	if !ok {
		return common.Address{}, common.Address{}, ErrPoolNotFound
	}
	return p.token0, p.token1, nil
}

func (a *ConstProdAdapter) SellBase(ctx context.Context, to common.Address, pool common.Address, moreInfo []byte) error {
	return a.sell(to, pool, false)
}

func (a *ConstProdAdapter) SellQuote(ctx context.Context, to common.Address, pool common.Address, moreInfo []byte) error {
	return a.sell(to, pool, true)
}

func (a *ConstProdAdapter) sell(to, pool common.Address, quoteIn bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, ok := a.pools[pool]
	if !ok {
		return ErrPoolNotFound
	}

	tokenIn, tokenOut := p.token0, p.token1
	reserveIn, reserveOut := p.reserve0, p.reserve1
	if quoteIn {
		tokenIn, tokenOut = p.token1, p.token0
		reserveIn, reserveOut = p.reserve1, p.reserve0
	}

	// Input is whatever arrived at the pool beyond tracked reserves.
	balIn := a.ledger.BalanceOf(tokenIn, pool)
	if balIn.Cmp(reserveIn) <= 0 {
		return ErrZeroInput
	}
	amountIn := new(uint256.Int).Sub(balIn, reserveIn)

	// out = in*(1-fee)*reserveOut / (reserveIn + in*(1-fee))
	inAfterFee := new(uint256.Int).Mul(amountIn, uint256.NewInt(feeDenominator-p.feeBps))
	numerator := new(uint256.Int).Mul(inAfterFee, reserveOut)
	denominator := new(uint256.Int).Mul(reserveIn, uint256.NewInt(feeDenominator))
	denominator.Add(denominator, inAfterFee)
	amountOut := numerator.Div(numerator, denominator)
	if amountOut.IsZero() {
		return ErrZeroInput
	}

	// Reserve updates ride the ledger journal so an aborted execution
	// restores them alongside the balances they were priced against.
	prevIn, prevOut := reserveIn.Clone(), reserveOut.Clone()
	a.ledger.RecordUndo(func() {
		reserveIn.Set(prevIn)
		reserveOut.Set(prevOut)
	})
	reserveIn.Add(reserveIn, amountIn)
	reserveOut.Sub(reserveOut, amountOut)

	return a.ledger.Transfer(tokenOut, pool, to, amountOut)
}
