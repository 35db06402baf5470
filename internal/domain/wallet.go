package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is the single running balance owned by one user account.
// A wallet is created together with its user and is never deleted on its own.
type Wallet struct {
	ID        string
	UserID    string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanDebit checks if the wallet holds enough to cover amount.
func (w *Wallet) CanDebit(amount decimal.Decimal) error {
	if w.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	return nil
}

// ApplyDelta returns the balance after applying a signed delta.
func (w *Wallet) ApplyDelta(delta decimal.Decimal) decimal.Decimal {
	return w.Balance.Add(delta)
}
