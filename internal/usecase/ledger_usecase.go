package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/quayside/walletd/internal/domain"
	"github.com/quayside/walletd/internal/infrastructure/metrics"
)

// LedgerUseCase is the wallet ledger engine. It orchestrates the wallet store
// and the transaction log so that deposits, withdrawals, transfers and
// reversals apply atomically: either the whole operation's effects are
// visible, or none are.
type LedgerUseCase struct {
	txManager  TransactionManager
	walletRepo WalletRepository
	txnRepo    TransactionRepository
	userRepo   UserRepository
	idGen      IDGenerator
	retrier    Retrier
	cache      Cache
	cacheTTL   time.Duration
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	walletRepo WalletRepository,
	txnRepo TransactionRepository,
	userRepo UserRepository,
	idGen IDGenerator,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:  txManager,
		walletRepo: walletRepo,
		txnRepo:    txnRepo,
		userRepo:   userRepo,
		idGen:      idGen,
		logger:     zerolog.Nop(),
	}
}

// WithInstrumentation attaches the engine's logger and operation metrics.
func (uc *LedgerUseCase) WithInstrumentation(logger zerolog.Logger, m *metrics.Metrics) *LedgerUseCase {
	uc.logger = logger
	uc.metrics = m
	return uc
}

// WithRetrier enables bounded retries on transient storage conflicts.
func (uc *LedgerUseCase) WithRetrier(retrier Retrier) *LedgerUseCase {
	uc.retrier = retrier
	return uc
}

// WithCache enables the wallet read cache. A non-positive ttl falls back to
// WalletCacheTTL.
func (uc *LedgerUseCase) WithCache(cache Cache, ttl time.Duration) *LedgerUseCase {
	if ttl <= 0 {
		ttl = WalletCacheTTL
	}
	uc.cache = cache
	uc.cacheTTL = ttl
	return uc
}

// DepositInput represents input for a deposit.
type DepositInput struct {
	UserID string
	Amount decimal.Decimal
}

// Deposit credits the user's wallet and appends a deposit record.
func (uc *LedgerUseCase) Deposit(ctx context.Context, input DepositInput) (*domain.Wallet, error) {
	start := time.Now()

	wallet, err := uc.deposit(ctx, input)
	if err != nil {
		uc.countError("deposit", err)
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.Deposits.Inc()
	}
	uc.observe("deposit", start, input.Amount)
	uc.logger.Info().
		Str("user_id", input.UserID).
		Str("amount", input.Amount.String()).
		Msg("deposit completed")

	return wallet, nil
}

func (uc *LedgerUseCase) deposit(ctx context.Context, input DepositInput) (*domain.Wallet, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	user, err := uc.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	var wallet *domain.Wallet

	err = uc.withRetry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		locked, err := uc.walletRepo.GetByUserIDForUpdate(ctx, tx, input.UserID)
		if err != nil {
			return err
		}

		updated, err := uc.walletRepo.AdjustBalance(ctx, tx, input.UserID, input.Amount)
		if err != nil {
			return err
		}

		txn := &domain.Transaction{
			ID:       uc.idGen.Generate(),
			UserID:   input.UserID,
			WalletID: locked.ID,
			Type:     domain.TransactionDeposit,
			Status:   domain.StatusCompleted,
			Details: domain.TransactionDetails{
				Amount:      input.Amount.Abs(),
				MadeBy:      input.UserID,
				Description: fmt.Sprintf("Deposit by %s", user.Email),
				Success:     true,
			},
			CreatedAt: time.Now().UTC(),
		}

		if err := uc.txnRepo.Append(ctx, tx, txn); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		wallet = updated

		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateWallets(ctx, input.UserID)

	return wallet, nil
}

// WithdrawInput represents input for a withdrawal.
type WithdrawInput struct {
	UserID string
	Amount decimal.Decimal
}

// Withdraw debits the user's wallet and appends a withdrawal record. An
// insufficient balance fails the operation with no mutation and no record.
func (uc *LedgerUseCase) Withdraw(ctx context.Context, input WithdrawInput) (*domain.Wallet, error) {
	start := time.Now()

	wallet, err := uc.withdraw(ctx, input)
	if err != nil {
		uc.countError("withdrawal", err)
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.Withdrawals.Inc()
	}
	uc.observe("withdrawal", start, input.Amount)
	uc.logger.Info().
		Str("user_id", input.UserID).
		Str("amount", input.Amount.String()).
		Msg("withdrawal completed")

	return wallet, nil
}

func (uc *LedgerUseCase) withdraw(ctx context.Context, input WithdrawInput) (*domain.Wallet, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	user, err := uc.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	var wallet *domain.Wallet

	err = uc.withRetry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		locked, err := uc.walletRepo.GetByUserIDForUpdate(ctx, tx, input.UserID)
		if err != nil {
			return err
		}

		if err := locked.CanDebit(input.Amount); err != nil {
			return err
		}

		updated, err := uc.walletRepo.AdjustBalance(ctx, tx, input.UserID, input.Amount.Neg())
		if err != nil {
			return err
		}

		txn := &domain.Transaction{
			ID:       uc.idGen.Generate(),
			UserID:   input.UserID,
			WalletID: locked.ID,
			Type:     domain.TransactionWithdrawal,
			Status:   domain.StatusCompleted,
			Details: domain.TransactionDetails{
				Amount:      input.Amount.Abs().Neg(),
				MadeBy:      input.UserID,
				Description: fmt.Sprintf("Withdrawal by %s", user.Email),
				Success:     true,
			},
			CreatedAt: time.Now().UTC(),
		}

		if err := uc.txnRepo.Append(ctx, tx, txn); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		wallet = updated

		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateWallets(ctx, input.UserID)

	return wallet, nil
}

// TransferInput represents input for a transfer. The receiver is addressed by
// email; the resolved account id is what the engine operates on.
type TransferInput struct {
	SenderID      string
	ReceiverEmail string
	Amount        decimal.Decimal
}

// Transfer moves amount from the sender's wallet to the receiver's wallet and
// appends a record on each side. The sender-side transfer record is returned;
// it is the one addressable for reversal.
func (uc *LedgerUseCase) Transfer(ctx context.Context, input TransferInput) (*domain.Transaction, error) {
	start := time.Now()

	txn, err := uc.transfer(ctx, input)
	if err != nil {
		uc.countError("transfer", err)
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.Transfers.Inc()
	}
	uc.observe("transfer", start, input.Amount)
	uc.logger.Info().
		Str("transaction_id", txn.ID).
		Str("sender_id", input.SenderID).
		Str("amount", input.Amount.String()).
		Msg("transfer completed")

	return txn, nil
}

func (uc *LedgerUseCase) transfer(ctx context.Context, input TransferInput) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	receiver, err := uc.userRepo.GetByEmail(ctx, input.ReceiverEmail)
	if err != nil {
		return nil, err
	}

	sender, err := uc.userRepo.GetByID(ctx, input.SenderID)
	if err != nil {
		return nil, err
	}

	// Compare resolved ids, not the raw email, so a sender addressing their
	// own email does not slip past the check.
	if receiver.ID == sender.ID {
		return nil, domain.ErrSelfTransfer
	}

	var transferTxn *domain.Transaction

	err = uc.withRetry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		wallets, err := uc.lockWallets(ctx, tx, sender.ID, receiver.ID)
		if err != nil {
			return err
		}

		senderWallet := wallets[sender.ID]
		receiverWallet := wallets[receiver.ID]

		if err := senderWallet.CanDebit(input.Amount); err != nil {
			return err
		}

		if _, err := uc.walletRepo.AdjustBalance(ctx, tx, sender.ID, input.Amount.Neg()); err != nil {
			return err
		}

		if _, err := uc.walletRepo.AdjustBalance(ctx, tx, receiver.ID, input.Amount); err != nil {
			return err
		}

		now := time.Now().UTC()

		receiverTxn := &domain.Transaction{
			ID:       uc.idGen.Generate(),
			UserID:   receiver.ID,
			WalletID: receiverWallet.ID,
			Type:     domain.TransactionDeposit,
			Status:   domain.StatusCompleted,
			Details: domain.TransactionDetails{
				From:        sender.ID,
				Amount:      input.Amount.Abs(),
				Description: fmt.Sprintf("Received transfer from %s", sender.Email),
				Success:     true,
			},
			CreatedAt: now,
		}

		if err := uc.txnRepo.Append(ctx, tx, receiverTxn); err != nil {
			return err
		}

		senderTxn := &domain.Transaction{
			ID:       uc.idGen.Generate(),
			UserID:   sender.ID,
			WalletID: senderWallet.ID,
			Type:     domain.TransactionTransfer,
			Status:   domain.StatusCompleted,
			Details: domain.TransactionDetails{
				From:        sender.ID,
				To:          receiver.ID,
				Amount:      input.Amount.Abs().Neg(),
				Description: fmt.Sprintf("Transfer to %s", receiver.Email),
				Success:     true,
			},
			CreatedAt: now,
		}

		if err := uc.txnRepo.Append(ctx, tx, senderTxn); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		transferTxn = senderTxn

		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateWallets(ctx, sender.ID, receiver.ID)

	return transferTxn, nil
}

// ReverseTransaction undoes a transfer: it restores both balances, appends a
// compensating reversal record on each side and marks the original record
// reversed. Only transfer records can be reversed, and only once. The caller
// is responsible for the admin gate.
func (uc *LedgerUseCase) ReverseTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	start := time.Now()

	txn, err := uc.reverseTransaction(ctx, transactionID)
	if err != nil {
		uc.countError("reversal", err)
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.Reversals.Inc()
	}
	uc.observe("reversal", start, txn.Details.Amount.Abs())
	uc.logger.Info().
		Str("transaction_id", transactionID).
		Str("amount", txn.Details.Amount.Abs().String()).
		Msg("transfer reversed")

	return txn, nil
}

func (uc *LedgerUseCase) reverseTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	original, err := uc.txnRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if err := original.Reversible(); err != nil {
		return nil, err
	}

	senderID := original.Details.From
	receiverID := original.Details.To
	// The stored amount is signed (a debit on the sender side); direction of
	// the reversal never depends on how the sign was recorded.
	magnitude := original.Details.Amount.Abs()

	sender, err := uc.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}

	receiver, err := uc.userRepo.GetByID(ctx, receiverID)
	if err != nil {
		return nil, err
	}

	err = uc.withRetry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		wallets, err := uc.lockWallets(ctx, tx, senderID, receiverID)
		if err != nil {
			return err
		}

		// Re-read under lock so a concurrent reversal of the same transfer
		// cannot apply twice.
		current, err := uc.txnRepo.GetByID(ctx, transactionID)
		if err != nil {
			return err
		}
		if err := current.Reversible(); err != nil {
			return err
		}

		if _, err := uc.walletRepo.AdjustBalance(ctx, tx, senderID, magnitude); err != nil {
			return err
		}

		// The receiver may have spent the funds; the store refuses to let
		// the balance go negative and the whole reversal rolls back.
		if _, err := uc.walletRepo.AdjustBalance(ctx, tx, receiverID, magnitude.Neg()); err != nil {
			return err
		}

		now := time.Now().UTC()

		senderReversal := &domain.Transaction{
			ID:       uc.idGen.Generate(),
			UserID:   senderID,
			WalletID: wallets[senderID].ID,
			Type:     domain.TransactionReversal,
			Status:   domain.StatusCompleted,
			Details: domain.TransactionDetails{
				Amount:                magnitude,
				OriginalTransactionID: transactionID,
				Description:           fmt.Sprintf("Reversal: Refund received from %s", receiver.Email),
				Success:               true,
			},
			CreatedAt: now,
		}

		if err := uc.txnRepo.Append(ctx, tx, senderReversal); err != nil {
			return err
		}

		receiverReversal := &domain.Transaction{
			ID:       uc.idGen.Generate(),
			UserID:   receiverID,
			WalletID: wallets[receiverID].ID,
			Type:     domain.TransactionReversal,
			Status:   domain.StatusCompleted,
			Details: domain.TransactionDetails{
				Amount:                magnitude.Neg(),
				OriginalTransactionID: transactionID,
				Description:           fmt.Sprintf("Reversal: Refund sent to %s", sender.Email),
				Success:               true,
			},
			CreatedAt: now,
		}

		if err := uc.txnRepo.Append(ctx, tx, receiverReversal); err != nil {
			return err
		}

		// Status is the only field that changes; the record stays a transfer
		// so the audit trail keeps what actually happened.
		if err := uc.txnRepo.SetStatus(ctx, tx, transactionID, domain.StatusReversed); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateWallets(ctx, senderID, receiverID)

	return uc.txnRepo.GetByID(ctx, transactionID)
}

// GetWallet returns the wallet for a user, served from cache when possible.
func (uc *LedgerUseCase) GetWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	if uc.cache != nil {
		if data, err := uc.cache.Get(ctx, walletCacheKey(userID)); err == nil {
			var wallet domain.Wallet
			if err := json.Unmarshal(data, &wallet); err == nil {
				if uc.metrics != nil {
					uc.metrics.WalletCacheHits.Inc()
				}
				return &wallet, nil
			}
		}
		if uc.metrics != nil {
			uc.metrics.WalletCacheMisses.Inc()
		}
	}

	wallet, err := uc.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// A read racing a mutation can cache a balance the mutation's
	// invalidation has already cleared. The short TTL bounds how long that
	// stale entry can survive.
	if uc.cache != nil {
		if data, err := json.Marshal(wallet); err == nil {
			_ = uc.cache.Set(ctx, walletCacheKey(userID), data, uc.cacheTTL)
		}
	}

	return wallet, nil
}

// lockWallets takes FOR UPDATE locks on every wallet in sorted user-id order
// so two opposite-direction transfers cannot deadlock.
func (uc *LedgerUseCase) lockWallets(ctx context.Context, tx Transaction, userIDs ...string) (map[string]*domain.Wallet, error) {
	ids := append([]string(nil), userIDs...)
	sort.Strings(ids)

	wallets, err := uc.walletRepo.GetByUserIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	if len(wallets) != len(ids) {
		return nil, domain.ErrWalletNotFound
	}

	byUser := make(map[string]*domain.Wallet, len(wallets))
	for _, w := range wallets {
		byUser[w.UserID] = w
	}

	return byUser, nil
}

func (uc *LedgerUseCase) observe(operation string, start time.Time, amount decimal.Decimal) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	uc.metrics.OperationAmount.WithLabelValues(operation).Observe(amount.InexactFloat64())
}

func (uc *LedgerUseCase) countError(operation string, err error) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.OperationErrors.WithLabelValues(operation, errorLabel(err)).Inc()
}

// errorLabel keeps the error_type label cardinality bounded to the ledger's
// sentinel errors.
func errorLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrWalletNotFound):
		return "wallet_not_found"
	case errors.Is(err, domain.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, domain.ErrSelfTransfer):
		return "self_transfer"
	case errors.Is(err, domain.ErrNotReversible):
		return "not_reversible"
	case errors.Is(err, domain.ErrAlreadyReversed):
		return "already_reversed"
	case errors.Is(err, domain.ErrOperationFailed):
		return "operation_failed"
	default:
		return "internal"
	}
}

func (uc *LedgerUseCase) withRetry(ctx context.Context, operation func() error) error {
	if uc.retrier == nil {
		return operation()
	}
	return uc.retrier.Retry(ctx, operation)
}

func (uc *LedgerUseCase) invalidateWallets(ctx context.Context, userIDs ...string) {
	if uc.cache == nil {
		return
	}
	for _, id := range userIDs {
		_ = uc.cache.Delete(ctx, walletCacheKey(id))
	}
}

func walletCacheKey(userID string) string {
	return "wallet:" + userID
}
