package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/quayside/walletd/internal/domain"
	"github.com/quayside/walletd/internal/infrastructure/metrics"
)

// ErrEmailTaken is returned when registering an email that already exists.
var ErrEmailTaken = errors.New("user with this email already exists")

// UserUseCase handles user registration and authentication. Registration is
// where a wallet comes to life: the user row and the zero-balance wallet are
// created in the same database transaction.
type UserUseCase struct {
	txManager  TransactionManager
	userRepo   UserRepository
	walletRepo WalletRepository
	idGen      IDGenerator
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

// NewUserUseCase creates a new UserUseCase.
func NewUserUseCase(txManager TransactionManager, userRepo UserRepository, walletRepo WalletRepository, idGen IDGenerator) *UserUseCase {
	return &UserUseCase{
		txManager:  txManager,
		userRepo:   userRepo,
		walletRepo: walletRepo,
		idGen:      idGen,
		logger:     zerolog.Nop(),
	}
}

// WithInstrumentation attaches the use case's logger and metrics.
func (uc *UserUseCase) WithInstrumentation(logger zerolog.Logger, m *metrics.Metrics) *UserUseCase {
	uc.logger = logger
	uc.metrics = m
	return uc
}

// CreateUserInput represents input for registering a user.
type CreateUserInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	Role      domain.Role
}

// CreateUser registers a user and creates their wallet.
func (uc *UserUseCase) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, err
	}

	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	if input.Role == "" {
		input.Role = domain.RoleUser
	}
	if !input.Role.IsValid() {
		return nil, errors.New("invalid role")
	}

	if existing, err := uc.userRepo.GetByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	user := &domain.User{
		ID:             uc.idGen.Generate(),
		Email:          input.Email,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		HashedPassword: string(hashed),
		Role:           input.Role,
		Status:         domain.AccountActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.userRepo.Create(ctx, tx, user); err != nil {
		return nil, err
	}

	wallet := &domain.Wallet{
		ID:        uc.idGen.Generate(),
		UserID:    user.ID,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.walletRepo.Create(ctx, tx, wallet); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.UsersCreated.Inc()
	}
	uc.logger.Info().
		Str("user_id", user.ID).
		Str("role", string(user.Role)).
		Msg("user registered")

	user.HashedPassword = ""

	return user, nil
}

// AuthenticateInput represents authentication input.
type AuthenticateInput struct {
	Email    string
	Password string
}

// Authenticate verifies user credentials.
func (uc *UserUseCase) Authenticate(ctx context.Context, input AuthenticateInput) (*domain.User, error) {
	user, err := uc.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, uc.authFailed("unknown_email")
	}

	if user.Status != domain.AccountActive {
		return nil, uc.authFailed("inactive_account")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(input.Password)); err != nil {
		return nil, uc.authFailed("bad_password")
	}

	if uc.metrics != nil {
		uc.metrics.AuthAttempts.WithLabelValues("success").Inc()
	}

	user.HashedPassword = ""

	return user, nil
}

// authFailed counts a failed login and returns the uniform error so callers
// cannot tell which check tripped.
func (uc *UserUseCase) authFailed(reason string) error {
	if uc.metrics != nil {
		uc.metrics.AuthAttempts.WithLabelValues("failure").Inc()
		uc.metrics.AuthFailures.WithLabelValues(reason).Inc()
	}
	return domain.ErrUnauthorized
}

// GetUser retrieves a user by ID.
func (uc *UserUseCase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.HashedPassword = ""

	return user, nil
}

// ListUsers lists users with pagination.
func (uc *UserUseCase) ListUsers(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	users, err := uc.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	for _, user := range users {
		user.HashedPassword = ""
	}

	return users, nil
}
