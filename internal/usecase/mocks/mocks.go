package mocks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quayside/walletd/internal/domain"
	"github.com/quayside/walletd/internal/usecase"
)

// MockWalletRepository is an in-memory implementation of WalletRepository.
// Adjustments apply immediately; transactional rollback is not simulated, so
// tests asserting rollback behavior should inspect MockTransaction flags.
type MockWalletRepository struct {
	mu      sync.RWMutex
	wallets map[string]*domain.Wallet

	CreateFunc                func(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error
	GetByUserIDFunc           func(ctx context.Context, userID string) (*domain.Wallet, error)
	GetByUserIDForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, userID string) (*domain.Wallet, error)
	GetByUserIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, userIDs []string) ([]*domain.Wallet, error)
	AdjustBalanceFunc         func(ctx context.Context, tx usecase.Transaction, userID string, delta decimal.Decimal) (*domain.Wallet, error)
}

func NewMockWalletRepository() *MockWalletRepository {
	return &MockWalletRepository{
		wallets: make(map[string]*domain.Wallet),
	}
}

// Seed registers a wallet for userID with the given balance.
func (m *MockWalletRepository) Seed(userID, walletID string, balance decimal.Decimal) *domain.Wallet {
	m.mu.Lock()
	defer m.mu.Unlock()
	wallet := &domain.Wallet{
		ID:        walletID,
		UserID:    userID,
		Balance:   balance,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	m.wallets[userID] = wallet
	return wallet
}

// Balance returns the current balance for userID.
func (m *MockWalletRepository) Balance(userID string) decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if w, ok := m.wallets[userID]; ok {
		return w.Balance
	}
	return decimal.Zero
}

func (m *MockWalletRepository) Create(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, wallet)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *wallet
	m.wallets[copied.UserID] = &copied
	return nil
}

func (m *MockWalletRepository) GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if w, ok := m.wallets[userID]; ok {
		copied := *w
		return &copied, nil
	}
	return nil, domain.ErrWalletNotFound
}

func (m *MockWalletRepository) GetByUserIDForUpdate(ctx context.Context, tx usecase.Transaction, userID string) (*domain.Wallet, error) {
	if m.GetByUserIDForUpdateFunc != nil {
		return m.GetByUserIDForUpdateFunc(ctx, tx, userID)
	}
	return m.GetByUserID(ctx, userID)
}

func (m *MockWalletRepository) GetByUserIDsForUpdate(ctx context.Context, tx usecase.Transaction, userIDs []string) ([]*domain.Wallet, error) {
	if m.GetByUserIDsForUpdateFunc != nil {
		return m.GetByUserIDsForUpdateFunc(ctx, tx, userIDs)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	wallets := make([]*domain.Wallet, 0, len(userIDs))
	for _, id := range userIDs {
		if w, ok := m.wallets[id]; ok {
			copied := *w
			wallets = append(wallets, &copied)
		}
	}
	return wallets, nil
}

func (m *MockWalletRepository) AdjustBalance(ctx context.Context, tx usecase.Transaction, userID string, delta decimal.Decimal) (*domain.Wallet, error) {
	if m.AdjustBalanceFunc != nil {
		return m.AdjustBalanceFunc(ctx, tx, userID, delta)
	}
	return m.DefaultAdjustBalance(ctx, tx, userID, delta)
}

// DefaultAdjustBalance is the built-in adjustment behavior. Overrides that
// want to fail selectively can delegate the rest here without recursing.
func (m *MockWalletRepository) DefaultAdjustBalance(_ context.Context, _ usecase.Transaction, userID string, delta decimal.Decimal) (*domain.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[userID]
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	next := w.Balance.Add(delta)
	if next.IsNegative() {
		return nil, domain.ErrInsufficientFunds
	}
	w.Balance = next
	w.UpdatedAt = time.Now().UTC()
	copied := *w
	return &copied, nil
}

// MockTransactionRepository is an in-memory implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu      sync.RWMutex
	records []*domain.Transaction
	byID    map[string]*domain.Transaction

	AppendFunc       func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
	GetByIDFunc      func(ctx context.Context, id string) (*domain.Transaction, error)
	ListByWalletFunc func(ctx context.Context, walletID string, filter domain.TransactionFilter) ([]*domain.Transaction, int, error)
	ListAllFunc      func(ctx context.Context, filter domain.TransactionFilter, userIDs []string) ([]*domain.Transaction, int, error)
	SetStatusFunc    func(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus) error
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		byID: make(map[string]*domain.Transaction),
	}
}

// All returns every appended record, oldest first.
func (m *MockTransactionRepository) All() []*domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Transaction, len(m.records))
	copy(out, m.records)
	return out
}

func (m *MockTransactionRepository) Append(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *txn
	m.records = append(m.records, &copied)
	m.byID[copied.ID] = &copied
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if txn, ok := m.byID[id]; ok {
		copied := *txn
		return &copied, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) ListByWallet(ctx context.Context, walletID string, filter domain.TransactionFilter) ([]*domain.Transaction, int, error) {
	if m.ListByWalletFunc != nil {
		return m.ListByWalletFunc(ctx, walletID, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*domain.Transaction
	for i := len(m.records) - 1; i >= 0; i-- {
		txn := m.records[i]
		if txn.WalletID != walletID {
			continue
		}
		if !matchesFilter(txn, filter) {
			continue
		}
		copied := *txn
		matched = append(matched, &copied)
	}
	return paginate(matched, filter), len(matched), nil
}

func (m *MockTransactionRepository) ListAll(ctx context.Context, filter domain.TransactionFilter, userIDs []string) ([]*domain.Transaction, int, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx, filter, userIDs)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	allowed := map[string]bool{}
	for _, id := range userIDs {
		allowed[id] = true
	}
	var matched []*domain.Transaction
	for i := len(m.records) - 1; i >= 0; i-- {
		txn := m.records[i]
		if len(allowed) > 0 && !allowed[txn.UserID] {
			continue
		}
		if !matchesFilter(txn, filter) {
			continue
		}
		copied := *txn
		matched = append(matched, &copied)
	}
	return paginate(matched, filter), len(matched), nil
}

func (m *MockTransactionRepository) SetStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus) error {
	if m.SetStatusFunc != nil {
		return m.SetStatusFunc(ctx, tx, id, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.byID[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	txn.Status = status
	return nil
}

func matchesFilter(txn *domain.Transaction, filter domain.TransactionFilter) bool {
	if filter.Type != "" && txn.Type != filter.Type {
		return false
	}
	if filter.Status != "" && txn.Status != filter.Status {
		return false
	}
	return true
}

func paginate(records []*domain.Transaction, filter domain.TransactionFilter) []*domain.Transaction {
	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		return records
	}
	start := (page - 1) * limit
	if start >= len(records) {
		return nil
	}
	end := start + limit
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct {
	mu      sync.RWMutex
	users   map[string]*domain.User
	byEmail map[string]*domain.User

	CreateFunc     func(ctx context.Context, tx usecase.Transaction, user *domain.User) error
	GetByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	SearchIDsFunc  func(ctx context.Context, q string) ([]string, error)
	ListFunc       func(ctx context.Context, limit, offset int) ([]*domain.User, error)
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:   make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

// Seed registers a user.
func (m *MockUserRepository) Seed(id, email string) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := &domain.User{
		ID:     id,
		Email:  email,
		Role:   domain.RoleUser,
		Status: domain.AccountActive,
	}
	m.users[id] = user
	m.byEmail[email] = user
	return user
}

func (m *MockUserRepository) Create(ctx context.Context, tx usecase.Transaction, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *user
	m.users[copied.ID] = &copied
	m.byEmail[copied.Email] = &copied
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if user, ok := m.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if user, ok := m.byEmail[email]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) SearchIDs(ctx context.Context, q string) ([]string, error) {
	if m.SearchIDsFunc != nil {
		return m.SearchIDsFunc(ctx, q)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	q = strings.ToLower(q)
	var ids []string
	for _, user := range m.users {
		haystack := strings.ToLower(user.Email + " " + user.FirstName + " " + user.LastName)
		if strings.Contains(haystack, q) {
			ids = append(ids, user.ID)
		}
	}
	return ids, nil
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var users []*domain.User
	for _, user := range m.users {
		copied := *user
		users = append(users, &copied)
	}
	return users, nil
}

// MockTransaction records lifecycle calls for assertions.
type MockTransaction struct {
	mu         sync.Mutex
	Committed  bool
	RolledBack bool

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	if t.CommitFunc != nil {
		return t.CommitFunc(ctx)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Committed = true
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if t.RollbackFunc != nil {
		return t.RollbackFunc(ctx)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// MockTransactionManager hands out MockTransactions and keeps them for
// later inspection.
type MockTransactionManager struct {
	mu           sync.Mutex
	Transactions []*MockTransaction

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &MockTransaction{}
	m.Transactions = append(m.Transactions, tx)
	return tx, nil
}

// Last returns the most recently begun transaction.
func (m *MockTransactionManager) Last() *MockTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Transactions) == 0 {
		return nil
	}
	return m.Transactions[len(m.Transactions)-1]
}

// MockIDGenerator generates sequential IDs.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%03d", m.counter)
}

// MockCache is an in-memory cache.
type MockCache struct {
	mu    sync.RWMutex
	items map[string][]byte

	GetFunc    func(ctx context.Context, key string) ([]byte, error)
	SetFunc    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func NewMockCache() *MockCache {
	return &MockCache{items: make(map[string][]byte)}
}

func (c *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.GetFunc != nil {
		return c.GetFunc(ctx, key)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.items[key]; ok {
		return v, nil
	}
	return nil, usecase.ErrCacheMiss
}

func (c *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.SetFunc != nil {
		return c.SetFunc(ctx, key, value, ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *MockCache) Delete(ctx context.Context, key string) error {
	if c.DeleteFunc != nil {
		return c.DeleteFunc(ctx, key)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}
