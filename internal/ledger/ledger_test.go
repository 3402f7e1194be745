package ledger

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/okx/WEB3-DEX/internal/domain"
)

var (
	wnative = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	tokenA  = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	alice   = common.HexToAddress("0x0000000000000000000000000000000000000101")
	bob     = common.HexToAddress("0x0000000000000000000000000000000000000102")
)

func TestTransfer(t *testing.T) {
	l := New(wnative)
	l.Mint(tokenA, alice, uint256.NewInt(1000))

	if err := l.Transfer(tokenA, alice, bob, uint256.NewInt(400)); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	if got := l.BalanceOf(tokenA, alice); !got.Eq(uint256.NewInt(600)) {
		t.Errorf("alice balance = %s, want 600", got.Dec())
	}
	if got := l.BalanceOf(tokenA, bob); !got.Eq(uint256.NewInt(400)) {
		t.Errorf("bob balance = %s, want 400", got.Dec())
	}
}

func TestTransferInsufficient(t *testing.T) {
	l := New(wnative)
	l.Mint(tokenA, alice, uint256.NewInt(10))

	err := l.Transfer(tokenA, alice, bob, uint256.NewInt(11))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
	if got := l.BalanceOf(tokenA, alice); !got.Eq(uint256.NewInt(10)) {
		t.Errorf("failed transfer moved funds: alice = %s", got.Dec())
	}
}

func TestTransferFeeOnTransfer(t *testing.T) {
	l := New(wnative)
	l.Mint(tokenA, alice, uint256.NewInt(10000))
	l.SetTransferFee(tokenA, 300) // 3%

	if err := l.Transfer(tokenA, alice, bob, uint256.NewInt(10000)); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	// Sender is debited the full amount, receiver is credited net of fee.
	if got := l.BalanceOf(tokenA, alice); !got.IsZero() {
		t.Errorf("alice balance = %s, want 0", got.Dec())
	}
	if got := l.BalanceOf(tokenA, bob); !got.Eq(uint256.NewInt(9700)) {
		t.Errorf("bob balance = %s, want 9700", got.Dec())
	}
}

func TestNativeTransferBlocked(t *testing.T) {
	l := New(wnative)
	l.Mint(domain.NativeToken, alice, uint256.NewInt(100))
	l.BlockNative(bob)

	err := l.Transfer(domain.NativeToken, alice, bob, uint256.NewInt(1))
	if !errors.Is(err, ErrNativeTransferFailed) {
		t.Fatalf("err = %v, want ErrNativeTransferFailed", err)
	}

	// The wrapped form is an ordinary token and is not blocked.
	l.Mint(wnative, alice, uint256.NewInt(100))
	if err := l.Transfer(wnative, alice, bob, uint256.NewInt(1)); err != nil {
		t.Fatalf("wrapped transfer failed: %v", err)
	}
}

func TestDepositWithdraw(t *testing.T) {
	l := New(wnative)
	l.Mint(domain.NativeToken, alice, uint256.NewInt(500))

	if err := l.Deposit(alice, uint256.NewInt(200)); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if got := l.BalanceOf(domain.NativeToken, alice); !got.Eq(uint256.NewInt(300)) {
		t.Errorf("native balance = %s, want 300", got.Dec())
	}
	if got := l.BalanceOf(wnative, alice); !got.Eq(uint256.NewInt(200)) {
		t.Errorf("wrapped balance = %s, want 200", got.Dec())
	}

	if err := l.Withdraw(alice, uint256.NewInt(200)); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if got := l.BalanceOf(domain.NativeToken, alice); !got.Eq(uint256.NewInt(500)) {
		t.Errorf("native balance after withdraw = %s, want 500", got.Dec())
	}

	if err := l.Withdraw(alice, uint256.NewInt(1)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("over-withdraw err = %v, want ErrInsufficientBalance", err)
	}
}

func TestSnapshotRevert(t *testing.T) {
	l := New(wnative)
	l.Mint(tokenA, alice, uint256.NewInt(1000))

	snap := l.Snapshot()

	if err := l.Transfer(tokenA, alice, bob, uint256.NewInt(700)); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	l.Mint(tokenA, bob, uint256.NewInt(50))

	l.RevertToSnapshot(snap)

	if got := l.BalanceOf(tokenA, alice); !got.Eq(uint256.NewInt(1000)) {
		t.Errorf("alice balance after revert = %s, want 1000", got.Dec())
	}
	if got := l.BalanceOf(tokenA, bob); !got.IsZero() {
		t.Errorf("bob balance after revert = %s, want 0", got.Dec())
	}
}

func TestRevertRunsExternalUndo(t *testing.T) {
	l := New(wnative)
	l.Mint(tokenA, alice, uint256.NewInt(100))

	snap := l.Snapshot()

	undone := 0
	l.RecordUndo(func() { undone++ })
	if err := l.Transfer(tokenA, alice, bob, uint256.NewInt(40)); err != nil {
		t.Fatal(err)
	}
	l.RecordUndo(func() { undone++ })

	l.RevertToSnapshot(snap)

	if undone != 2 {
		t.Errorf("undo hooks ran %d times, want 2", undone)
	}
	if got := l.BalanceOf(tokenA, alice); !got.Eq(uint256.NewInt(100)) {
		t.Errorf("alice balance after revert = %s, want 100", got.Dec())
	}
	if l.Snapshot() != snap {
		t.Errorf("journal not truncated to the snapshot")
	}
}

func TestNestedSnapshots(t *testing.T) {
	l := New(wnative)
	l.Mint(tokenA, alice, uint256.NewInt(100))

	outer := l.Snapshot()
	if err := l.Transfer(tokenA, alice, bob, uint256.NewInt(10)); err != nil {
		t.Fatal(err)
	}

	inner := l.Snapshot()
	if err := l.Transfer(tokenA, alice, bob, uint256.NewInt(20)); err != nil {
		t.Fatal(err)
	}

	l.RevertToSnapshot(inner)
	if got := l.BalanceOf(tokenA, bob); !got.Eq(uint256.NewInt(10)) {
		t.Errorf("bob after inner revert = %s, want 10", got.Dec())
	}

	l.RevertToSnapshot(outer)
	if got := l.BalanceOf(tokenA, alice); !got.Eq(uint256.NewInt(100)) {
		t.Errorf("alice after outer revert = %s, want 100", got.Dec())
	}
	if got := l.BalanceOf(tokenA, bob); !got.IsZero() {
		t.Errorf("bob after outer revert = %s, want 0", got.Dec())
	}
}

func BenchmarkTransfer(b *testing.B) {
	l := New(wnative)
	l.Mint(tokenA, alice, new(uint256.Int).Lsh(uint256.NewInt(1), 200))
	amount := uint256.NewInt(1)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = l.Transfer(tokenA, alice, bob, amount)
	}
}
