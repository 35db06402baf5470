package dto

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quayside/walletd/internal/domain"
)

func TestUserFromDomain(t *testing.T) {
	now := time.Now()
	user := &domain.User{
		ID:        "user-1",
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Smith",
		Role:      domain.RoleAdmin,
		CreatedAt: now,
	}

	resp := UserFromDomain(user)
	if resp.ID != user.ID || resp.Email != user.Email || resp.Role != "admin" {
		t.Fatalf("unexpected user response: %+v", resp)
	}
	if !resp.CreatedAt.Equal(now) {
		t.Fatalf("CreatedAt = %v, want %v", resp.CreatedAt, now)
	}
}

func TestWalletFromDomain(t *testing.T) {
	now := time.Now()
	wallet := &domain.Wallet{
		ID:        "wallet-1",
		UserID:    "user-1",
		Balance:   decimal.RequireFromString("123.45"),
		CreatedAt: now,
		UpdatedAt: now,
	}

	resp := WalletFromDomain(wallet)
	if resp.ID != wallet.ID || resp.UserID != wallet.UserID {
		t.Fatalf("unexpected wallet response: %+v", resp)
	}
	if !resp.Balance.Equal(wallet.Balance) {
		t.Fatalf("Balance = %s, want %s", resp.Balance, wallet.Balance)
	}
}

func TestTransactionFromDomain(t *testing.T) {
	txn := &domain.Transaction{
		ID:       "txn-1",
		UserID:   "user-1",
		WalletID: "wallet-1",
		Type:     domain.TransactionTransfer,
		Status:   domain.StatusCompleted,
		Details: domain.TransactionDetails{
			Amount:  decimal.RequireFromString("-50"),
			From:    "alice@example.com",
			To:      "bob@example.com",
			Success: true,
		},
		CreatedAt: time.Now(),
	}

	resp := TransactionFromDomain(txn)
	if resp.Type != "transfer" || resp.Status != "completed" {
		t.Fatalf("unexpected transaction response: %+v", resp)
	}
	if !resp.Details.Amount.Equal(txn.Details.Amount) {
		t.Fatalf("Details.Amount = %s, want %s", resp.Details.Amount, txn.Details.Amount)
	}
}

func TestTransactionPageFromDomain(t *testing.T) {
	txns := []*domain.Transaction{
		{ID: "txn-1", Type: domain.TransactionDeposit, Status: domain.StatusCompleted},
		{ID: "txn-2", Type: domain.TransactionWithdrawal, Status: domain.StatusCompleted},
	}

	resp := TransactionPageFromDomain(domain.NewPage(txns, 12, 2, 2))

	if len(resp.Data) != 2 || resp.Data[0].ID != "txn-1" {
		t.Fatalf("unexpected page data: %+v", resp.Data)
	}
	if resp.Meta.Total != 12 || resp.Meta.TotalPages != 6 {
		t.Fatalf("unexpected meta: %+v", resp.Meta)
	}
	if !resp.Meta.HasNextPage || !resp.Meta.HasPreviousPage {
		t.Fatalf("expected both page flags set, got %+v", resp.Meta)
	}
}

func TestTransactionPageFromDomainEmpty(t *testing.T) {
	resp := TransactionPageFromDomain(domain.NewPage[*domain.Transaction](nil, 0, 1, 10))

	if resp.Data == nil || len(resp.Data) != 0 {
		t.Fatalf("expected empty non-nil data, got %+v", resp.Data)
	}
	if resp.Meta.HasNextPage || resp.Meta.HasPreviousPage {
		t.Fatalf("expected no page flags, got %+v", resp.Meta)
	}
}
