package usecase

import (
	"context"

	"github.com/quayside/walletd/internal/domain"
)

// TransactionUseCase serves reads of the transaction log.
type TransactionUseCase struct {
	txnRepo    TransactionRepository
	walletRepo WalletRepository
	userRepo   UserRepository
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(txnRepo TransactionRepository, walletRepo WalletRepository, userRepo UserRepository) *TransactionUseCase {
	return &TransactionUseCase{
		txnRepo:    txnRepo,
		walletRepo: walletRepo,
		userRepo:   userRepo,
	}
}

// GetTransaction retrieves a transaction by ID.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.txnRepo.GetByID(ctx, id)
}

// ListUserTransactions lists the transactions filed under a user's wallet,
// newest first.
func (uc *TransactionUseCase) ListUserTransactions(ctx context.Context, userID string, filter domain.TransactionFilter) (domain.Page[*domain.Transaction], error) {
	filter.Page, filter.Limit = domain.ValidatePagination(filter.Page, filter.Limit)

	wallet, err := uc.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return domain.Page[*domain.Transaction]{}, err
	}

	transactions, total, err := uc.txnRepo.ListByWallet(ctx, wallet.ID, filter)
	if err != nil {
		return domain.Page[*domain.Transaction]{}, err
	}

	return domain.NewPage(transactions, total, filter.Page, filter.Limit), nil
}

// ListAllTransactions lists transactions across all wallets, newest first.
// A free-text search term is resolved to a set of matching users first; the
// log scan is then restricted to records filed under those users.
func (uc *TransactionUseCase) ListAllTransactions(ctx context.Context, filter domain.TransactionFilter) (domain.Page[*domain.Transaction], error) {
	filter.Page, filter.Limit = domain.ValidatePagination(filter.Page, filter.Limit)

	var userIDs []string
	if filter.Search != "" {
		ids, err := uc.userRepo.SearchIDs(ctx, filter.Search)
		if err != nil {
			return domain.Page[*domain.Transaction]{}, err
		}
		if len(ids) == 0 {
			return domain.NewPage[*domain.Transaction](nil, 0, filter.Page, filter.Limit), nil
		}
		userIDs = ids
	}

	transactions, total, err := uc.txnRepo.ListAll(ctx, filter, userIDs)
	if err != nil {
		return domain.Page[*domain.Transaction]{}, err
	}

	return domain.NewPage(transactions, total, filter.Page, filter.Limit), nil
}
