package engine

import (
	"errors"

	"github.com/okx/WEB3-DEX/internal/ledger"
)

// Every error here is fatal for the whole execution: there is no recoverable
// category inside the engine, and any of these unwinds all custody
// transitions performed so far.
var (
	ErrDeadlineExpired        = errors.New("deadline expired")
	ErrZeroAmount             = errors.New("amount must be positive")
	ErrLengthMismatch         = errors.New("route array length mismatch")
	ErrWeightOverflow         = errors.New("fork weights exceed denominator")
	ErrMinReturnNotMet        = errors.New("return amount below minimum")
	ErrZeroAddress            = errors.New("zero address not allowed")
	ErrInvalidSourceForInvest = errors.New("native source not allowed for invest swap")
	ErrInvalidCallback        = errors.New("invalid payment callback")
	ErrInvalidPath            = errors.New("token path is inconsistent")
	ErrInvalidCommission      = errors.New("invalid commission spec")

	// Error aliases
	ErrNativeTransferFailed = ledger.ErrNativeTransferFailed
	ErrInsufficientBalance  = ledger.ErrInsufficientBalance
)
