package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/quayside/walletd/internal/domain"
	"github.com/quayside/walletd/internal/usecase"
)

// WalletRepository implements usecase.WalletRepository.
type WalletRepository struct {
	pool *pgxpool.Pool
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

const walletColumns = `id, user_id, balance, created_at, updated_at`

// Create inserts a new wallet inside tx.
func (r *WalletRepository) Create(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	query := `
		INSERT INTO wallets (id, user_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		wallet.ID,
		wallet.UserID,
		decimalToNumeric(wallet.Balance),
		timeToTimestamptz(wallet.CreatedAt),
		timeToTimestamptz(wallet.UpdatedAt),
	)

	return err
}

// GetByUserID retrieves the wallet owned by userID.
func (r *WalletRepository) GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1`

	return scanWallet(r.pool.QueryRow(ctx, query, userID))
}

// GetByUserIDForUpdate retrieves the wallet with a FOR UPDATE row lock.
func (r *WalletRepository) GetByUserIDForUpdate(ctx context.Context, tx usecase.Transaction, userID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 FOR UPDATE`

	return scanWallet(tx.(*Tx).PgxTx().QueryRow(ctx, query, userID))
}

// GetByUserIDsForUpdate locks multiple wallets. The caller passes user ids in
// sorted order; ORDER BY user_id makes the lock acquisition order match it.
func (r *WalletRepository) GetByUserIDsForUpdate(ctx context.Context, tx usecase.Transaction, userIDs []string) ([]*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = ANY($1) ORDER BY user_id FOR UPDATE`

	rows, err := tx.(*Tx).PgxTx().Query(ctx, query, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wallets []*domain.Wallet
	for rows.Next() {
		wallet, err := scanWalletRow(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, wallet)
	}

	return wallets, rows.Err()
}

// AdjustBalance applies balance += delta as one conditional statement. The
// guard runs inside the same atomic step as the write, so a racing debit can
// never push a balance negative even if the caller's pre-check was stale.
func (r *WalletRepository) AdjustBalance(ctx context.Context, tx usecase.Transaction, userID string, delta decimal.Decimal) (*domain.Wallet, error) {
	query := `
		UPDATE wallets
		SET balance = balance + $2, updated_at = now()
		WHERE user_id = $1 AND balance + $2 >= 0
		RETURNING ` + walletColumns

	wallet, err := scanWallet(tx.(*Tx).PgxTx().QueryRow(ctx, query, userID, decimalToNumeric(delta)))
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, domain.ErrWalletNotFound) {
		return nil, err
	}

	// No row updated: distinguish a missing wallet from a refused debit.
	var exists bool
	checkErr := tx.(*Tx).PgxTx().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM wallets WHERE user_id = $1)`, userID).Scan(&exists)
	if checkErr != nil {
		return nil, checkErr
	}
	if !exists {
		return nil, domain.ErrWalletNotFound
	}

	return nil, domain.ErrInsufficientFunds
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	wallet, err := scanWalletRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrWalletNotFound
	}
	return wallet, err
}

func scanWalletRow(row pgx.Row) (*domain.Wallet, error) {
	var (
		w                    domain.Wallet
		balance              pgtype.Numeric
		createdAt, updatedAt pgtype.Timestamptz
	)

	if err := row.Scan(&w.ID, &w.UserID, &balance, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	w.Balance = numericToDecimal(balance)
	w.CreatedAt = createdAt.Time
	w.UpdatedAt = updatedAt.Time

	return &w, nil
}
