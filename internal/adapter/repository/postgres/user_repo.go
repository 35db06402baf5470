package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quayside/walletd/internal/domain"
	"github.com/quayside/walletd/internal/usecase"
)

// UserRepository implements usecase.UserRepository.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, first_name, last_name, hashed_password, role, status, created_at, updated_at`

// Create inserts a new user inside tx.
func (r *UserRepository) Create(ctx context.Context, tx usecase.Transaction, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, first_name, last_name, hashed_password, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.HashedPassword,
		string(user.Role),
		string(user.Status),
		timeToTimestamptz(user.CreatedAt),
		timeToTimestamptz(user.UpdatedAt),
	)

	return err
}

// GetByID retrieves a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail retrieves a user by email. Emails are stored lowercased and
// compared case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	return scanUser(r.pool.QueryRow(ctx, query, email))
}

// SearchIDs returns ids of users whose email or name matches q.
func (r *UserRepository) SearchIDs(ctx context.Context, q string) ([]string, error) {
	query := `
		SELECT id FROM users
		WHERE email ILIKE '%' || $1 || '%'
		   OR first_name ILIKE '%' || $1 || '%'
		   OR last_name ILIKE '%' || $1 || '%'
	`

	rows, err := r.pool.Query(ctx, query, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// List returns users ordered by creation time.
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

func scanUser(row pgx.Row) (*domain.User, error) {
	user, err := scanUserRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	return user, err
}

func scanUserRow(row pgx.Row) (*domain.User, error) {
	var (
		u                    domain.User
		role, status         string
		createdAt, updatedAt pgtype.Timestamptz
	)

	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.HashedPassword, &role, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	u.Role = domain.Role(role)
	u.Status = domain.AccountStatus(status)
	u.CreatedAt = createdAt.Time
	u.UpdatedAt = updatedAt.Time

	return &u, nil
}
