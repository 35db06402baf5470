package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quayside/walletd/internal/adapter/http/dto"
	"github.com/quayside/walletd/internal/adapter/http/middleware"
	"github.com/quayside/walletd/internal/usecase"
)

// TransactionHandler handles transaction log HTTP requests.
type TransactionHandler struct {
	txnUC    *usecase.TransactionUseCase
	ledgerUC *usecase.LedgerUseCase
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(txnUC *usecase.TransactionUseCase, ledgerUC *usecase.LedgerUseCase) *TransactionHandler {
	return &TransactionHandler{txnUC: txnUC, ledgerUC: ledgerUC}
}

// List lists transactions across all wallets. Admin only; supports type,
// status, and free-text search filters.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.txnUC.ListAllTransactions(r.Context(), parseFilter(r))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionPageFromDomain(page))
}

// Get retrieves a single transaction. Non-admin callers may only read their
// own records.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	txn, err := h.txnUC.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get transaction", err.Error())
		return
	}

	if !user.Role.CanViewAll() && txn.UserID != user.ID {
		writeError(w, http.StatusNotFound, "transaction not found", "")
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// Reverse reverses a completed transfer. Admin only.
func (h *TransactionHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	txn, err := h.ledgerUC.ReverseTransaction(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reverse transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}
