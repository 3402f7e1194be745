package engine

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/okx/WEB3-DEX/internal/adapters"
	"github.com/okx/WEB3-DEX/internal/domain"
)

// Packed-word layout shared by the single-family shorthands: an address in
// the low 160 bits, metadata in the high bits. Decoded into typed structs
// here at the boundary; the executor never sees packed words.
var (
	maskReverse    = new(uint256.Int).Lsh(uint256.NewInt(1), 255) // sell direction
	maskUnwrapOut  = new(uint256.Int).Lsh(uint256.NewInt(1), 254) // constant-product: unwrap output
	maskOneForZero = new(uint256.Int).Lsh(uint256.NewInt(1), 255) // concentrated: sell direction
	maskUnwrapClmm = new(uint256.Int).Lsh(uint256.NewInt(1), 253) // concentrated: unwrap output
)

func packedAddress(word *uint256.Int) common.Address {
	b := word.Bytes32()
	return common.BytesToAddress(b[12:32])
}

func packedOrderID(word *uint256.Int) *uint256.Int {
	return new(uint256.Int).Rsh(word, 160)
}

func hasBit(word, mask *uint256.Int) bool {
	return !new(uint256.Int).And(word, mask).IsZero()
}

// UnxSwap is the constant-product shorthand: the source token and order id
// share one packed word, and each pool word carries the pool address plus a
// direction bit (255) and an unwrap-output bit (254). Funds settle back to
// the caller.
func (e *Engine) UnxSwap(ctx context.Context, origin common.Address, srcTokenPacked, amount, minReturn *uint256.Int, pools []*uint256.Int) (*domain.SwapResult, error) {
	// The native sentinel fits in the low 160 bits like any other token.
	srcToken := packedAddress(srcTokenPacked)

	batch, dstToken, err := e.buildFamilyBatch(e.cfg.ConstProdAdapter, srcToken, amount, pools, familyConstProd)
	if err != nil {
		return nil, err
	}

	return e.swap(ctx, &swapArgs{
		entry:    "unxswap",
		orderID:  packedOrderID(srcTokenPacked),
		origin:   origin,
		payer:    origin,
		receiver: origin,
		refund:   origin,
		req: &domain.SwapRequest{
			FromToken:       srcToken,
			ToToken:         dstToken,
			FromTokenAmount: amount,
			MinReturnAmount: minReturn,
		},
		batches: []domain.Batch{*batch},
		funding: fundPull,
	})
}

// ClmmSwapTo is the concentrated-liquidity shorthand. The receiver and order
// id share one packed word; pool words carry the pool address, a direction
// bit (255) and an unwrap-output bit (253). The family adapter is pull-style
// and pays itself through the engine's payment callback.
func (e *Engine) ClmmSwapTo(ctx context.Context, origin common.Address, receiverPacked, amount, minReturn *uint256.Int, pools []*uint256.Int, srcToken common.Address) (*domain.SwapResult, error) {
	receiver := packedAddress(receiverPacked)

	batch, dstToken, err := e.buildFamilyBatch(e.cfg.ClmmAdapter, srcToken, amount, pools, familyConcentrated)
	if err != nil {
		return nil, err
	}

	return e.swap(ctx, &swapArgs{
		entry:    "clmm_swap",
		orderID:  packedOrderID(receiverPacked),
		origin:   origin,
		payer:    origin,
		receiver: receiver,
		refund:   origin,
		req: &domain.SwapRequest{
			FromToken:       srcToken,
			ToToken:         dstToken,
			FromTokenAmount: amount,
			MinReturnAmount: minReturn,
		},
		batches: []domain.Batch{*batch},
		funding: fundPull,
	})
}

type poolFamily int

const (
	familyConstProd poolFamily = iota
	familyConcentrated
)

// buildFamilyBatch turns a packed pool sequence into a single batch of
// single-fork hops against one family adapter, deriving hop tokens from the
// adapter's pool metadata.
func (e *Engine) buildFamilyBatch(handle common.Address, srcToken common.Address, amount *uint256.Int, pools []*uint256.Int, family poolFamily) (*domain.Batch, common.Address, error) {
	if len(pools) == 0 {
		return nil, common.Address{}, ErrLengthMismatch
	}

	adapter, err := e.registry.Resolve(handle)
	if err != nil {
		return nil, common.Address{}, err
	}
	provider, ok := adapter.(adapters.PoolInfoProvider)
	if !ok {
		return nil, common.Address{}, adapters.ErrPoolNotFound
	}

	current := srcToken
	if domain.IsNative(current) {
		current = e.cfg.WNativeAddress
	}

	reverseMask, unwrapMask := maskReverse, maskUnwrapOut
	if family == familyConcentrated {
		reverseMask, unwrapMask = maskOneForZero, maskUnwrapClmm
	}

	hops := make([]domain.Hop, 0, len(pools))
	unwrapOut := false
	for i, word := range pools {
		pool := packedAddress(word)
		reverse := hasBit(word, reverseMask)

		token0, token1, err := provider.PoolTokens(pool)
		if err != nil {
			return nil, common.Address{}, err
		}
		from, to := token0, token1
		if reverse {
			from, to = token1, token0
		}
		if from != current {
			return nil, common.Address{}, ErrInvalidPath
		}

		fork := domain.Fork{
			Adapter:  handle,
			Reverse:  reverse,
			Weight:   domain.WeightDenominator,
			Pool:     pool,
			MoreInfo: adapters.PackTokenPair(from, to),
		}
		switch family {
		case familyConstProd:
			// Push style: funds go straight into the pool.
			fork.AssetTo = pool
		case familyConcentrated:
			// Pull style: funds stay in place, the adapter pulls them
			// through the payment callback.
			fork.AssetTo = e.Address()
			fork.AppendAmount = true
		}

		hops = append(hops, domain.Hop{FromToken: from, ToToken: to, Forks: []domain.Fork{fork}})
		current = to

		if i == len(pools)-1 {
			unwrapOut = hasBit(word, unwrapMask)
		}
	}

	dstToken := current
	if unwrapOut {
		if current != e.cfg.WNativeAddress {
			return nil, common.Address{}, ErrInvalidPath
		}
		dstToken = domain.NativeToken
	}

	return &domain.Batch{Amount: amount, Hops: hops}, dstToken, nil
}
