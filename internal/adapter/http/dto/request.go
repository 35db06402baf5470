package dto

import (
	"github.com/shopspring/decimal"

	"github.com/quayside/walletd/internal/usecase"
)

// RegisterRequest represents a request to register a user.
type RegisterRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterRequest) ToUseCaseInput() usecase.CreateUserInput {
	return usecase.CreateUserInput{
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Password:  r.Password,
	}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *LoginRequest) ToUseCaseInput() usecase.AuthenticateInput {
	return usecase.AuthenticateInput{
		Email:    r.Email,
		Password: r.Password,
	}
}

// AmountRequest represents a deposit or withdrawal. Amounts arrive unsigned;
// the engine signs them.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// TransferRequest represents a transfer to a receiver addressed by email.
type TransferRequest struct {
	ReceiverEmail string          `json:"receiverEmail"`
	Amount        decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input for the authenticated sender.
func (r *TransferRequest) ToUseCaseInput(senderID string) usecase.TransferInput {
	return usecase.TransferInput{
		SenderID:      senderID,
		ReceiverEmail: r.ReceiverEmail,
		Amount:        r.Amount,
	}
}
