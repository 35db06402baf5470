package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger event.
type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
	TransactionTransfer   TransactionType = "transfer"
	TransactionReversal   TransactionType = "reversal"
)

// IsValid checks if the type is a known transaction type.
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionDeposit, TransactionWithdrawal, TransactionTransfer, TransactionReversal:
		return true
	}
	return false
}

// TransactionStatus is the lifecycle state of a transaction record.
type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "completed"
	StatusReversed  TransactionStatus = "reversed"
	StatusFailed    TransactionStatus = "failed"
)

// IsValid checks if the status is a known transaction status.
func (s TransactionStatus) IsValid() bool {
	switch s {
	case StatusCompleted, StatusReversed, StatusFailed:
		return true
	}
	return false
}

// TransactionDetails carries the event payload. Amount is signed: positive for
// credits, negative for debits. The engine alone decides the sign; DTO amounts
// at the API boundary are always non-negative.
type TransactionDetails struct {
	Amount                decimal.Decimal `json:"amount"`
	From                  string          `json:"from,omitempty"`
	To                    string          `json:"to,omitempty"`
	MadeBy                string          `json:"madeBy,omitempty"`
	Description           string          `json:"description,omitempty"`
	Success               bool            `json:"success"`
	OriginalTransactionID string          `json:"originalTransactionId,omitempty"`
}

// Transaction is an immutable record of one balance-affecting event. Amount,
// type and counterparty fields never change once written; only Status may
// transition (completed -> reversed).
type Transaction struct {
	ID        string
	UserID    string
	WalletID  string
	Type      TransactionType
	Status    TransactionStatus
	Details   TransactionDetails
	CreatedAt time.Time
}

// Reversible reports whether the transaction can still be reversed.
func (t *Transaction) Reversible() error {
	if t.Type != TransactionTransfer {
		return ErrNotReversible
	}
	if t.Status == StatusReversed {
		return ErrAlreadyReversed
	}
	return nil
}

// TransactionFilter narrows transaction listings.
type TransactionFilter struct {
	Type   TransactionType
	Status TransactionStatus
	Search string
	Page   int
	Limit  int
}
