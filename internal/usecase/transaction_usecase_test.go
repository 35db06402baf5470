package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/quayside/walletd/internal/domain"
	"github.com/quayside/walletd/internal/usecase"
)

func seedLedgerHistory(t *testing.T, f *ledgerFixture) {
	t.Helper()

	f.seedAccount("alice", "alice@example.com", 1000)
	f.seedAccount("bob", "bob@example.com", 500)

	ctx := context.Background()

	if _, err := f.uc.Deposit(ctx, usecase.DepositInput{UserID: "alice", Amount: decimal.NewFromInt(200)}); err != nil {
		t.Fatalf("seed deposit failed: %v", err)
	}
	if _, err := f.uc.Withdraw(ctx, usecase.WithdrawInput{UserID: "alice", Amount: decimal.NewFromInt(100)}); err != nil {
		t.Fatalf("seed withdrawal failed: %v", err)
	}
	if _, err := f.uc.Transfer(ctx, usecase.TransferInput{SenderID: "alice", ReceiverEmail: "bob@example.com", Amount: decimal.NewFromInt(300)}); err != nil {
		t.Fatalf("seed transfer failed: %v", err)
	}
}

func TestTransactionUseCase_ListUserTransactions(t *testing.T) {
	f := newLedgerFixture()
	seedLedgerHistory(t, f)

	uc := usecase.NewTransactionUseCase(f.txnRepo, f.walletRepo, f.userRepo)

	t.Run("lists the wallet's records with meta", func(t *testing.T) {
		page, err := uc.ListUserTransactions(context.Background(), "alice", domain.TransactionFilter{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// deposit, withdrawal and the sender-side transfer record
		if page.Meta.Total != 3 {
			t.Errorf("expected total 3, got %d", page.Meta.Total)
		}
		if len(page.Data) != 3 {
			t.Errorf("expected 3 records, got %d", len(page.Data))
		}
		if page.Meta.Page != 1 || page.Meta.Limit != domain.DefaultPageSize {
			t.Errorf("unexpected meta: %+v", page.Meta)
		}
	})

	t.Run("filters by type", func(t *testing.T) {
		page, err := uc.ListUserTransactions(context.Background(), "alice", domain.TransactionFilter{
			Type: domain.TransactionWithdrawal,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.Meta.Total != 1 {
			t.Fatalf("expected 1 withdrawal, got %d", page.Meta.Total)
		}
		if page.Data[0].Type != domain.TransactionWithdrawal {
			t.Errorf("unexpected record type %s", page.Data[0].Type)
		}
	})

	t.Run("paginates", func(t *testing.T) {
		page, err := uc.ListUserTransactions(context.Background(), "alice", domain.TransactionFilter{
			Page:  2,
			Limit: 2,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page.Data) != 1 {
			t.Errorf("expected 1 record on last page, got %d", len(page.Data))
		}
		if page.Meta.TotalPages != 2 || page.Meta.HasNextPage || !page.Meta.HasPreviousPage {
			t.Errorf("unexpected meta: %+v", page.Meta)
		}
	})

	t.Run("unknown user has no wallet", func(t *testing.T) {
		_, err := uc.ListUserTransactions(context.Background(), "ghost", domain.TransactionFilter{})
		if !errors.Is(err, domain.ErrWalletNotFound) {
			t.Fatalf("expected ErrWalletNotFound, got %v", err)
		}
	})
}

func TestTransactionUseCase_ListAllTransactions(t *testing.T) {
	f := newLedgerFixture()
	seedLedgerHistory(t, f)

	uc := usecase.NewTransactionUseCase(f.txnRepo, f.walletRepo, f.userRepo)

	t.Run("lists everything", func(t *testing.T) {
		page, err := uc.ListAllTransactions(context.Background(), domain.TransactionFilter{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// deposit + withdrawal + both sides of the transfer
		if page.Meta.Total != 4 {
			t.Errorf("expected total 4, got %d", page.Meta.Total)
		}
	})

	t.Run("search narrows to matching users", func(t *testing.T) {
		page, err := uc.ListAllTransactions(context.Background(), domain.TransactionFilter{Search: "bob"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.Meta.Total != 1 {
			t.Fatalf("expected 1 record filed under bob, got %d", page.Meta.Total)
		}
		if page.Data[0].UserID != "bob" {
			t.Errorf("expected bob's record, got %s", page.Data[0].UserID)
		}
	})

	t.Run("search with no matching users returns an empty page", func(t *testing.T) {
		page, err := uc.ListAllTransactions(context.Background(), domain.TransactionFilter{Search: "zelda"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.Meta.Total != 0 || len(page.Data) != 0 {
			t.Errorf("expected empty page, got %+v", page.Meta)
		}
	})
}

func TestTransactionUseCase_GetTransaction(t *testing.T) {
	f := newLedgerFixture()
	seedLedgerHistory(t, f)

	uc := usecase.NewTransactionUseCase(f.txnRepo, f.walletRepo, f.userRepo)

	known := f.txnRepo.All()[0]
	txn, err := uc.GetTransaction(context.Background(), known.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txn.ID != known.ID {
		t.Errorf("expected %s, got %s", known.ID, txn.ID)
	}

	if _, err := uc.GetTransaction(context.Background(), "missing"); !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Errorf("expected ErrTransactionNotFound, got %v", err)
	}
}
