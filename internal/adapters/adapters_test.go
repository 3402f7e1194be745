package adapters

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/okx/WEB3-DEX/internal/ledger"
)

var (
	wnative = common.HexToAddress("0x0000000000000000000000000000000000000222")
	tokenA  = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	tokenB  = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	pool1   = common.HexToAddress("0x0000000000000000000000000000000000000d01")
	sink    = common.HexToAddress("0x000000000000000000000000000000000000dead")
	trader  = common.HexToAddress("0x0000000000000000000000000000000000000101")
)

func TestCallbackDataRoundTrip(t *testing.T) {
	data := PackCallbackData(tokenA, pool1)
	gotToken, gotPool, err := UnpackCallbackData(data)
	if err != nil {
		t.Fatalf("unpack failed: %v", err)
	}
	if gotToken != tokenA || gotPool != pool1 {
		t.Errorf("unpack = (%s, %s)", gotToken.Hex(), gotPool.Hex())
	}

	if _, _, err := UnpackCallbackData(data[:39]); !errors.Is(err, ErrBadMoreInfo) {
		t.Errorf("short data err = %v, want ErrBadMoreInfo", err)
	}
}

func TestTokenPairAmountRoundTrip(t *testing.T) {
	amount := uint256.NewInt(123456789)
	info := PackTokenPairAmount(tokenA, tokenB, amount)
	if len(info) != 72 {
		t.Fatalf("packed length = %d, want 72", len(info))
	}

	from, to, gotAmount, err := unpackTokenPairAmount(info)
	if err != nil {
		t.Fatalf("unpack failed: %v", err)
	}
	if from != tokenA || to != tokenB {
		t.Errorf("pair = (%s, %s)", from.Hex(), to.Hex())
	}
	if !gotAmount.Eq(amount) {
		t.Errorf("amount = %s, want %s", gotAmount.Dec(), amount.Dec())
	}

	// Without the amount word the pull-style decoder must refuse.
	if _, _, _, err := unpackTokenPairAmount(info[:40]); !errors.Is(err, ErrBadMoreInfo) {
		t.Errorf("short info err = %v, want ErrBadMoreInfo", err)
	}
}

func TestRegistryResolve(t *testing.T) {
	l := ledger.New(wnative)
	reg := NewRegistry()

	handle := common.HexToAddress("0x0000000000000000000000000000000000000a01")
	reg.Register(handle, NewFixedRate(l, sink))

	if _, err := reg.Resolve(handle); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if _, err := reg.Resolve(tokenA); !errors.Is(err, ErrAdapterNotFound) {
		t.Fatalf("unknown handle err = %v, want ErrAdapterNotFound", err)
	}
}

func TestConstProdPricing(t *testing.T) {
	l := ledger.New(wnative)
	a := NewConstProd(l)

	l.Mint(tokenA, pool1, uint256.NewInt(100_000))
	l.Mint(tokenB, pool1, uint256.NewInt(100_000))
	a.RegisterPool(pool1, tokenA, tokenB, 30)

	// Push 1000 of token A in, as the engine would.
	l.Mint(tokenA, trader, uint256.NewInt(1000))
	if err := l.Transfer(tokenA, trader, pool1, uint256.NewInt(1000)); err != nil {
		t.Fatal(err)
	}

	if err := a.SellBase(context.Background(), trader, pool1, nil); err != nil {
		t.Fatalf("sell failed: %v", err)
	}

	// out = 1000*0.997*100000 / (100000 + 1000*0.997)
	if got := l.BalanceOf(tokenB, trader); !got.Eq(uint256.NewInt(987)) {
		t.Errorf("trader token B = %s, want 987", got.Dec())
	}

	// A second sell with no fresh input must refuse.
	if err := a.SellBase(context.Background(), trader, pool1, nil); !errors.Is(err, ErrZeroInput) {
		t.Errorf("stale sell err = %v, want ErrZeroInput", err)
	}
}

func TestConstProdRevertRestoresReserves(t *testing.T) {
	l := ledger.New(wnative)
	a := NewConstProd(l)

	l.Mint(tokenA, pool1, uint256.NewInt(100_000))
	l.Mint(tokenB, pool1, uint256.NewInt(100_000))
	a.RegisterPool(pool1, tokenA, tokenB, 30)

	l.Mint(tokenA, trader, uint256.NewInt(2000))

	snap := l.Snapshot()
	if err := l.Transfer(tokenA, trader, pool1, uint256.NewInt(1000)); err != nil {
		t.Fatal(err)
	}
	if err := a.SellBase(context.Background(), trader, pool1, nil); err != nil {
		t.Fatalf("sell failed: %v", err)
	}
	l.RevertToSnapshot(snap)

	// Reserves must roll back with the balances, so the rerun prices like
	// a fresh pool instead of refusing the input as already seen.
	if err := l.Transfer(tokenA, trader, pool1, uint256.NewInt(1000)); err != nil {
		t.Fatal(err)
	}
	if err := a.SellBase(context.Background(), trader, pool1, nil); err != nil {
		t.Fatalf("sell after revert failed: %v", err)
	}
	if got := l.BalanceOf(tokenB, trader); !got.Eq(uint256.NewInt(987)) {
		t.Errorf("trader token B = %s, want 987", got.Dec())
	}
}

func TestFixedRateSweepsInput(t *testing.T) {
	l := ledger.New(wnative)
	a := NewFixedRate(l, sink)

	a.RegisterPool(pool1, tokenA, tokenB, 2, 1)
	l.Mint(tokenB, pool1, uint256.NewInt(10_000))
	l.Mint(tokenA, pool1, uint256.NewInt(500))

	if err := a.SellBase(context.Background(), trader, pool1, nil); err != nil {
		t.Fatalf("sell failed: %v", err)
	}

	if got := l.BalanceOf(tokenB, trader); !got.Eq(uint256.NewInt(1000)) {
		t.Errorf("trader token B = %s, want 1000", got.Dec())
	}
	if got := l.BalanceOf(tokenA, sink); !got.Eq(uint256.NewInt(500)) {
		t.Errorf("sink token A = %s, want 500", got.Dec())
	}
	if got := l.BalanceOf(tokenA, pool1); !got.IsZero() {
		t.Errorf("pool token A = %s, want 0 after sweep", got.Dec())
	}
}
