package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/quayside/walletd/internal/domain"
	"github.com/quayside/walletd/internal/infrastructure/metrics"
	"github.com/quayside/walletd/internal/usecase"
	"github.com/quayside/walletd/internal/usecase/mocks"
)

type userFixture struct {
	userRepo   *mocks.MockUserRepository
	walletRepo *mocks.MockWalletRepository
	txManager  *mocks.MockTransactionManager
	uc         *usecase.UserUseCase
}

func newUserFixture() *userFixture {
	userRepo := mocks.NewMockUserRepository()
	walletRepo := mocks.NewMockWalletRepository()
	txManager := mocks.NewMockTransactionManager()

	return &userFixture{
		userRepo:   userRepo,
		walletRepo: walletRepo,
		txManager:  txManager,
		uc:         usecase.NewUserUseCase(txManager, userRepo, walletRepo, mocks.NewMockIDGenerator()),
	}
}

func TestUserUseCase_CreateUser(t *testing.T) {
	t.Run("creates the user and a zero-balance wallet together", func(t *testing.T) {
		f := newUserFixture()

		user, err := f.uc.CreateUser(context.Background(), usecase.CreateUserInput{
			Email:     "alice@example.com",
			FirstName: "Alice",
			LastName:  "Adams",
			Password:  "Str0ngPass",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if user.Role != domain.RoleUser {
			t.Errorf("expected default role user, got %s", user.Role)
		}
		if user.HashedPassword != "" {
			t.Error("hashed password must not be returned")
		}

		wallet, err := f.walletRepo.GetByUserID(context.Background(), user.ID)
		if err != nil {
			t.Fatalf("expected wallet to exist: %v", err)
		}
		if !wallet.Balance.IsZero() {
			t.Errorf("expected zero starting balance, got %s", wallet.Balance)
		}

		tx := f.txManager.Last()
		if tx == nil || !tx.Committed {
			t.Error("user and wallet must be created in one committed transaction")
		}
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		f := newUserFixture()
		f.userRepo.Seed("u1", "alice@example.com")

		_, err := f.uc.CreateUser(context.Background(), usecase.CreateUserInput{
			Email:    "alice@example.com",
			Password: "Str0ngPass",
		})
		if !errors.Is(err, usecase.ErrEmailTaken) {
			t.Fatalf("expected ErrEmailTaken, got %v", err)
		}
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		f := newUserFixture()

		_, err := f.uc.CreateUser(context.Background(), usecase.CreateUserInput{
			Email:    "not-an-email",
			Password: "Str0ngPass",
		})
		if !errors.Is(err, domain.ErrInvalidEmail) {
			t.Fatalf("expected ErrInvalidEmail, got %v", err)
		}
	})

	t.Run("rejects weak password", func(t *testing.T) {
		f := newUserFixture()

		_, err := f.uc.CreateUser(context.Background(), usecase.CreateUserInput{
			Email:    "alice@example.com",
			Password: "weak",
		})
		if !errors.Is(err, domain.ErrPasswordTooWeak) {
			t.Fatalf("expected ErrPasswordTooWeak, got %v", err)
		}
	})
}

func TestUserUseCase_Authenticate(t *testing.T) {
	f := newUserFixture()

	created, err := f.uc.CreateUser(context.Background(), usecase.CreateUserInput{
		Email:    "alice@example.com",
		Password: "Str0ngPass",
	})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	t.Run("valid credentials", func(t *testing.T) {
		user, err := f.uc.Authenticate(context.Background(), usecase.AuthenticateInput{
			Email:    "alice@example.com",
			Password: "Str0ngPass",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.ID != created.ID {
			t.Errorf("expected user %s, got %s", created.ID, user.ID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.uc.Authenticate(context.Background(), usecase.AuthenticateInput{
			Email:    "alice@example.com",
			Password: "WrongPass1",
		})
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.uc.Authenticate(context.Background(), usecase.AuthenticateInput{
			Email:    "nobody@example.com",
			Password: "Str0ngPass",
		})
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestUserUseCase_RecordsAuthMetrics(t *testing.T) {
	f := newUserFixture()
	m := metrics.NewWith(prometheus.NewRegistry())
	f.uc.WithInstrumentation(zerolog.Nop(), m)

	if _, err := f.uc.CreateUser(context.Background(), usecase.CreateUserInput{
		Email:    "alice@example.com",
		Password: "Str0ngPass",
	}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if _, err := f.uc.Authenticate(context.Background(), usecase.AuthenticateInput{
		Email:    "alice@example.com",
		Password: "Str0ngPass",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := f.uc.Authenticate(context.Background(), usecase.AuthenticateInput{
		Email:    "alice@example.com",
		Password: "WrongPass1",
	}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	if got := testutil.ToFloat64(m.UsersCreated); got != 1 {
		t.Errorf("expected 1 user counted, got %v", got)
	}
	if got := testutil.ToFloat64(m.AuthAttempts.WithLabelValues("success")); got != 1 {
		t.Errorf("expected 1 successful attempt counted, got %v", got)
	}
	if got := testutil.ToFloat64(m.AuthAttempts.WithLabelValues("failure")); got != 1 {
		t.Errorf("expected 1 failed attempt counted, got %v", got)
	}
	if got := testutil.ToFloat64(m.AuthFailures.WithLabelValues("bad_password")); got != 1 {
		t.Errorf("expected 1 bad password counted, got %v", got)
	}
}
