package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/quayside/walletd/internal/domain"
)

// TokenResponse carries an issued JWT.
type TokenResponse struct {
	Token     string        `json:"token"`
	User      *UserResponse `json:"user"`
	ExpiresIn int64         `json:"expiresIn"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserFromDomain converts a domain user to a response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

// WalletResponse represents a wallet in API responses.
type WalletResponse struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// WalletFromDomain converts a domain wallet to a response.
func WalletFromDomain(w *domain.Wallet) *WalletResponse {
	return &WalletResponse{
		ID:        w.ID,
		UserID:    w.UserID,
		Balance:   w.Balance,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

// TransactionResponse represents a transaction record in API responses.
// Details keep their signed amount; the sign encodes direction.
type TransactionResponse struct {
	ID        string                    `json:"id"`
	UserID    string                    `json:"userId"`
	WalletID  string                    `json:"walletId"`
	Type      string                    `json:"type"`
	Status    string                    `json:"status"`
	Details   domain.TransactionDetails `json:"details"`
	CreatedAt time.Time                 `json:"createdAt"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:        t.ID,
		UserID:    t.UserID,
		WalletID:  t.WalletID,
		Type:      string(t.Type),
		Status:    string(t.Status),
		Details:   t.Details,
		CreatedAt: t.CreatedAt,
	}
}

// TransactionPageResponse is the paginated listing envelope.
type TransactionPageResponse struct {
	Data []*TransactionResponse `json:"data"`
	Meta domain.PageMeta        `json:"meta"`
}

// TransactionPageFromDomain converts a domain page to a response envelope.
func TransactionPageFromDomain(page domain.Page[*domain.Transaction]) *TransactionPageResponse {
	data := make([]*TransactionResponse, len(page.Data))
	for i, t := range page.Data {
		data[i] = TransactionFromDomain(t)
	}
	return &TransactionPageResponse{
		Data: data,
		Meta: page.Meta,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
