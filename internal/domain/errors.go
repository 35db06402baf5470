package domain

import "errors"

var (
	// Lookup errors
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrTransactionNotFound = errors.New("transaction not found")

	// Ledger errors
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrSelfTransfer      = errors.New("cannot transfer to your own account")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrNotReversible     = errors.New("only transfer transactions can be reversed")
	ErrAlreadyReversed   = errors.New("transaction already reversed")

	// ErrOperationFailed is surfaced when a transient storage conflict
	// persists past the retry budget.
	ErrOperationFailed = errors.New("operation failed")
)
