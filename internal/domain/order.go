package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// OrderRecord is the immutable log entry written once per completed swap.
// Nothing mutates a record after it is stored.
type OrderRecord struct {
	OrderID *uint256.Int

	FromToken common.Address

	ToToken common.Address

	// Origin is the caller the swap was executed for.
	Origin common.Address

	FromTokenAmount *uint256.Int

	ReturnAmount *uint256.Int

	CompletedAt time.Time
}
