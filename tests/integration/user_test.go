package integration

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/quayside/walletd/internal/domain"
	"github.com/quayside/walletd/internal/usecase"
)

func TestCreateUserProvisionsWallet(t *testing.T) {
	s, ctx := newStack(t)

	user, err := s.userUC.CreateUser(ctx, usecase.CreateUserInput{
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Smith",
		Password:  "Str0ngPassw0rd",
	})
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("role = %s, want user", user.Role)
	}
	if user.HashedPassword != "" {
		t.Fatalf("hashed password leaked in output")
	}

	wallet, err := s.ledgerUC.GetWallet(ctx, user.ID)
	if err != nil {
		t.Fatalf("expected wallet to exist: %v", err)
	}
	if !wallet.Balance.IsZero() {
		t.Fatalf("new wallet balance = %s, want 0", wallet.Balance)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s, ctx := newStack(t)

	input := usecase.CreateUserInput{
		Email:    "bob@example.com",
		Password: "Str0ngPassw0rd",
	}
	if _, err := s.userUC.CreateUser(ctx, input); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	// Email matching is case insensitive.
	input.Email = strings.ToUpper(input.Email)
	if _, err := s.userUC.CreateUser(ctx, input); !errors.Is(err, usecase.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	s, ctx := newStack(t)

	if _, err := s.userUC.CreateUser(ctx, usecase.CreateUserInput{
		Email:    "carol@example.com",
		Password: "Str0ngPassw0rd",
	}); err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	user, err := s.userUC.Authenticate(ctx, usecase.AuthenticateInput{
		Email:    "carol@example.com",
		Password: "Str0ngPassw0rd",
	})
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if user.Email != "carol@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := s.userUC.Authenticate(ctx, usecase.AuthenticateInput{
		Email:    "carol@example.com",
		Password: "wrong",
	}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestTransferToFreshlyRegisteredUser(t *testing.T) {
	s, ctx := newStack(t)

	sender, _ := s.db.CreateTestAccount(ctx, "sender", decimal.RequireFromString("50"))

	receiver, err := s.userUC.CreateUser(ctx, usecase.CreateUserInput{
		Email:    "dave@example.com",
		Password: "Str0ngPassw0rd",
	})
	if err != nil {
		t.Fatalf("create receiver failed: %v", err)
	}

	if _, err := s.ledgerUC.Transfer(ctx, usecase.TransferInput{
		SenderID:      sender.ID,
		ReceiverEmail: "Dave@Example.com",
		Amount:        decimal.RequireFromString("25"),
	}); err != nil {
		t.Fatalf("transfer to new user failed: %v", err)
	}

	wallet, err := s.ledgerUC.GetWallet(ctx, receiver.ID)
	if err != nil {
		t.Fatalf("get receiver wallet: %v", err)
	}
	if !wallet.Balance.Equal(decimal.RequireFromString("25")) {
		t.Fatalf("receiver balance = %s, want 25", wallet.Balance)
	}
}
