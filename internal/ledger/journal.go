package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// journal records how to undo each state change so an aborted execution can
// be unwound in reverse order. Writes between a snapshot and a revert must
// not interleave with another execution; the engine serializes executions.
type journal []journalEntry

type journalEntry interface {
	revert(l *Ledger)
}

type balanceChange struct {
	token  common.Address
	holder common.Address
	prev   *uint256.Int
}

func (ch balanceChange) revert(l *Ledger) {
	holders := l.balances[ch.token]
	if holders == nil {
		return
	}
	holders[ch.holder] = ch.prev
}

// externalChange carries an undo hook for state the ledger does not own,
// such as adapter-tracked reserves derived from ledger balances. The hook
// runs with the ledger lock held and must not take other locks.
type externalChange struct {
	undo func()
}

func (ch externalChange) revert(*Ledger) {
	ch.undo()
}

func (j journal) revert(l *Ledger, snapshot int) {
	for i := len(j) - 1; i >= snapshot; i-- {
		j[i].revert(l)
	}
	l.journal = j[:snapshot]
}
