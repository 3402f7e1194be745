// Package ledger is the custody substrate the execution engine acts on.
// Balances are the only mutable shared resource of an execution; every
// mutation is journaled so a failed execution unwinds as a unit.
package ledger

import (
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/okx/WEB3-DEX/internal/domain"
)

var (
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrNativeTransferFailed = errors.New("native transfer failed")
)

const transferFeeDenominator = 10000

// Ledger holds per-(token, holder) balances. The native asset lives in the
// same table under the domain.NativeToken sentinel.
type Ledger struct {
	mu sync.Mutex

	wnative common.Address

	balances map[common.Address]map[common.Address]*uint256.Int

	// transferFeeBps models fee-on-transfer tokens: the fee is shaved off
	// the credited side, so a receiver must never trust the sent amount.
	transferFeeBps map[common.Address]uint16

	// nativeBlocked marks recipients that reject the native asset.
	nativeBlocked map[common.Address]bool

	journal journal
}

func New(wnative common.Address) *Ledger {
	return &Ledger{
		wnative:        wnative,
		balances:       make(map[common.Address]map[common.Address]*uint256.Int),
		transferFeeBps: make(map[common.Address]uint16),
		nativeBlocked:  make(map[common.Address]bool),
	}
}

func (l *Ledger) WNative() common.Address {
	return l.wnative
}

// BalanceOf returns a copy of the holder's balance in token.
func (l *Ledger) BalanceOf(token, holder common.Address) *uint256.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance(token, holder).Clone()
}

// Mint credits a holder out of thin air. Bootstrap and test setup only.
func (l *Ledger) Mint(token, holder common.Address, amount *uint256.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	bal := l.balance(token, holder)
	l.setBalance(token, holder, new(uint256.Int).Add(bal, amount))
}

// SetTransferFee configures token as fee-on-transfer with the given bps.
func (l *Ledger) SetTransferFee(token common.Address, bps uint16) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transferFeeBps[token] = bps
}

// BlockNative makes recipient reject native transfers.
func (l *Ledger) BlockNative(recipient common.Address) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nativeBlocked[recipient] = true
}

// Transfer moves amount of token from one holder to another. For
// fee-on-transfer tokens the credited amount is smaller than the debited
// one; callers must re-read balances instead of trusting amount.
func (l *Ledger) Transfer(token, from, to common.Address, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if domain.IsNative(token) && l.nativeBlocked[to] {
		return ErrNativeTransferFailed
	}

	fromBal := l.balance(token, from)
	if fromBal.Lt(amount) {
		return ErrInsufficientBalance
	}

	credit := amount.Clone()
	if bps := l.transferFeeBps[token]; bps > 0 {
		fee := new(uint256.Int).Mul(amount, uint256.NewInt(uint64(bps)))
		fee.Div(fee, uint256.NewInt(transferFeeDenominator))
		credit.Sub(credit, fee)
	}

	l.setBalance(token, from, new(uint256.Int).Sub(fromBal, amount))
	toBal := l.balance(token, to)
	l.setBalance(token, to, new(uint256.Int).Add(toBal, credit))
	return nil
}

// Deposit wraps the holder's native balance into the wrapped-native token.
func (l *Ledger) Deposit(holder common.Address, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	nativeBal := l.balance(domain.NativeToken, holder)
	if nativeBal.Lt(amount) {
		return ErrInsufficientBalance
	}
	l.setBalance(domain.NativeToken, holder, new(uint256.Int).Sub(nativeBal, amount))
	wBal := l.balance(l.wnative, holder)
	l.setBalance(l.wnative, holder, new(uint256.Int).Add(wBal, amount))
	return nil
}

// Withdraw unwraps wrapped-native back into the native asset.
func (l *Ledger) Withdraw(holder common.Address, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	wBal := l.balance(l.wnative, holder)
	if wBal.Lt(amount) {
		return ErrInsufficientBalance
	}
	l.setBalance(l.wnative, holder, new(uint256.Int).Sub(wBal, amount))
	nativeBal := l.balance(domain.NativeToken, holder)
	l.setBalance(domain.NativeToken, holder, new(uint256.Int).Add(nativeBal, amount))
	return nil
}

// Snapshot marks the current journal position for a later revert.
func (l *Ledger) Snapshot() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.journal)
}

// RevertToSnapshot undoes every journaled change since the snapshot.
func (l *Ledger) RevertToSnapshot(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.journal.revert(l, id)
}

// RecordUndo journals an external state change so it unwinds together with
// the balance writes of the same execution. Adapters use this for pricing
// state they derive from ledger balances; without it a revert would leave
// that state describing transfers that never settled.
func (l *Ledger) RecordUndo(undo func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.journal = append(l.journal, externalChange{undo: undo})
}

func (l *Ledger) balance(token, holder common.Address) *uint256.Int {
	holders, ok := l.balances[token]
	if !ok {
		return uint256.NewInt(0)
	}
	bal, ok := holders[holder]
	if !ok {
		return uint256.NewInt(0)
	}
	return bal
}

func (l *Ledger) setBalance(token, holder common.Address, value *uint256.Int) {
	holders, ok := l.balances[token]
	if !ok {
		holders = make(map[common.Address]*uint256.Int)
		l.balances[token] = holders
	}
	prev, ok := holders[holder]
	if !ok {
		prev = uint256.NewInt(0)
	}
	l.journal = append(l.journal, balanceChange{
		token:  token,
		holder: holder,
		prev:   prev.Clone(),
	})
	holders[holder] = value
}
