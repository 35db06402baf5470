package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quayside/walletd/internal/domain"
	"github.com/quayside/walletd/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository over the
// append-only transactions table. Details live in a JSONB column so the
// record layout can grow without migrations.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `id, user_id, wallet_id, type, status, details, created_at`

// Append inserts a new transaction record inside tx. Records are never
// updated after this point except through SetStatus.
func (r *TransactionRepository) Append(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	details, err := json.Marshal(txn.Details)
	if err != nil {
		return fmt.Errorf("marshal transaction details: %w", err)
	}

	query := `
		INSERT INTO transactions (id, user_id, wallet_id, type, status, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = tx.(*Tx).PgxTx().Exec(ctx, query,
		txn.ID,
		txn.UserID,
		txn.WalletID,
		string(txn.Type),
		string(txn.Status),
		details,
		timeToTimestamptz(txn.CreatedAt),
	)

	return err
}

// GetByID retrieves a single transaction record.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	txn, err := scanTransaction(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}

	return txn, err
}

// ListByWallet returns one wallet's records newest first, plus the total
// count matching the filter before pagination.
func (r *TransactionRepository) ListByWallet(ctx context.Context, walletID string, filter domain.TransactionFilter) ([]*domain.Transaction, int, error) {
	where := `WHERE wallet_id = $1`
	args := []any{walletID}
	where, args = appendFilterClauses(where, args, filter)

	return r.list(ctx, where, args, filter)
}

// ListAll returns records across all wallets newest first. A non-nil userIDs
// slice restricts results to records filed under those users.
func (r *TransactionRepository) ListAll(ctx context.Context, filter domain.TransactionFilter, userIDs []string) ([]*domain.Transaction, int, error) {
	where := `WHERE true`
	args := []any{}

	if userIDs != nil {
		args = append(args, userIDs)
		where += fmt.Sprintf(` AND user_id = ANY($%d)`, len(args))
	}
	where, args = appendFilterClauses(where, args, filter)

	return r.list(ctx, where, args, filter)
}

// SetStatus is the only mutation allowed on an existing record.
func (r *TransactionRepository) SetStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus) error {
	query := `UPDATE transactions SET status = $2 WHERE id = $1`

	tag, err := tx.(*Tx).PgxTx().Exec(ctx, query, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

func appendFilterClauses(where string, args []any, filter domain.TransactionFilter) (string, []any) {
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		where += fmt.Sprintf(` AND type = $%d`, len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	return where, args
}

func (r *TransactionRepository) list(ctx context.Context, where string, args []any, filter domain.TransactionFilter) ([]*domain.Transaction, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, limit := domain.ValidatePagination(filter.Page, filter.Limit)
	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(
		`SELECT %s FROM transactions %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		transactionColumns, where, len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	txns := []*domain.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		txns = append(txns, txn)
	}

	return txns, total, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		txn       domain.Transaction
		txnType   string
		status    string
		details   []byte
		createdAt pgtype.Timestamptz
	)

	if err := row.Scan(&txn.ID, &txn.UserID, &txn.WalletID, &txnType, &status, &details, &createdAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(details, &txn.Details); err != nil {
		return nil, fmt.Errorf("unmarshal transaction details: %w", err)
	}

	txn.Type = domain.TransactionType(txnType)
	txn.Status = domain.TransactionStatus(status)
	txn.CreatedAt = createdAt.Time

	return &txn, nil
}
