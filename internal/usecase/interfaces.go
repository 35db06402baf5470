package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quayside/walletd/internal/domain"
)

// ErrCacheMiss is returned by Cache implementations when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

// WalletRepository defines data access for wallets.
type WalletRepository interface {
	Create(ctx context.Context, tx Transaction, wallet *domain.Wallet) error
	GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error)
	GetByUserIDForUpdate(ctx context.Context, tx Transaction, userID string) (*domain.Wallet, error)
	GetByUserIDsForUpdate(ctx context.Context, tx Transaction, userIDs []string) ([]*domain.Wallet, error)
	// AdjustBalance applies balance += delta as a single conditional update
	// and returns the post-update wallet. The non-negativity guard runs in
	// the same statement as the write; a debit that would go negative fails
	// with ErrInsufficientFunds and leaves the balance untouched.
	AdjustBalance(ctx context.Context, tx Transaction, userID string, delta decimal.Decimal) (*domain.Wallet, error)
}

// TransactionRepository defines data access for the append-only transaction log.
type TransactionRepository interface {
	Append(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	ListByWallet(ctx context.Context, walletID string, filter domain.TransactionFilter) ([]*domain.Transaction, int, error)
	// ListAll scans the whole log. A non-nil userIDs slice restricts results
	// to records filed under those users (the free-text search join).
	ListAll(ctx context.Context, filter domain.TransactionFilter, userIDs []string) ([]*domain.Transaction, int, error)
	// SetStatus is the only mutation permitted on an existing record.
	SetStatus(ctx context.Context, tx Transaction, id string, status domain.TransactionStatus) error
}

// UserRepository defines user persistence and the identity lookup contract
// the ledger depends on.
type UserRepository interface {
	Create(ctx context.Context, tx Transaction, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// SearchIDs returns ids of users whose email or name matches q.
	SearchIDs(ctx context.Context, q string) ([]string, error)
	List(ctx context.Context, limit, offset int) ([]*domain.User, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Remove releases a claimed key so the operation can be retried.
	Remove(ctx context.Context, key string) error
}
