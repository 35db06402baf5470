package integration

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/quayside/walletd/internal/adapter/repository/postgres"
	"github.com/quayside/walletd/internal/usecase"
	"github.com/quayside/walletd/tests/testutil"
)

// stack wires the use cases over real repositories for integration tests.
type stack struct {
	db       *testutil.TestDB
	ledgerUC *usecase.LedgerUseCase
	txnUC    *usecase.TransactionUseCase
	userUC   *usecase.UserUseCase
}

func newStack(t *testing.T) (*stack, context.Context) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	db := testutil.NewTestDB(t)
	t.Cleanup(db.Cleanup)
	db.TruncateAll(ctx)

	pool := db.Pool
	txManager := postgres.NewTxManager(pool)
	walletRepo := postgres.NewWalletRepository(pool)
	txnRepo := postgres.NewTransactionRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	idGen := postgres.NewULIDGenerator()
	retrier := postgres.NewRetrier(zerolog.Nop(), 3)

	return &stack{
		db: db,
		ledgerUC: usecase.NewLedgerUseCase(txManager, walletRepo, txnRepo, userRepo, idGen).
			WithRetrier(retrier),
		txnUC:  usecase.NewTransactionUseCase(txnRepo, walletRepo, userRepo),
		userUC: usecase.NewUserUseCase(txManager, userRepo, walletRepo, idGen),
	}, ctx
}
