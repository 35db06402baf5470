package handler

import (
	"encoding/json"
	"net/http"

	"github.com/quayside/walletd/internal/adapter/http/dto"
	"github.com/quayside/walletd/internal/adapter/http/middleware"
	"github.com/quayside/walletd/internal/usecase"
)

// WalletHandler handles wallet-related HTTP requests. Every route operates on
// the authenticated caller's own wallet.
type WalletHandler struct {
	ledgerUC *usecase.LedgerUseCase
	txnUC    *usecase.TransactionUseCase
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledgerUC *usecase.LedgerUseCase, txnUC *usecase.TransactionUseCase) *WalletHandler {
	return &WalletHandler{ledgerUC: ledgerUC, txnUC: txnUC}
}

// Get returns the caller's wallet.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	wallet, err := h.ledgerUC.GetWallet(r.Context(), user.ID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get wallet", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletFromDomain(wallet))
}

// Deposit credits the caller's wallet.
func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	wallet, err := h.ledgerUC.Deposit(r.Context(), usecase.DepositInput{
		UserID: user.ID,
		Amount: req.Amount,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to deposit", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletFromDomain(wallet))
}

// Withdraw debits the caller's wallet.
func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	wallet, err := h.ledgerUC.Withdraw(r.Context(), usecase.WithdrawInput{
		UserID: user.ID,
		Amount: req.Amount,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to withdraw", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletFromDomain(wallet))
}

// Transfer moves funds from the caller to a receiver addressed by email.
func (h *WalletHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	txn, err := h.ledgerUC.Transfer(r.Context(), req.ToUseCaseInput(user.ID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to transfer", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// ListTransactions lists the caller's transaction history newest first.
func (h *WalletHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	page, err := h.txnUC.ListUserTransactions(r.Context(), user.ID, parseFilter(r))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionPageFromDomain(page))
}
