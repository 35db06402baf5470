package dto

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/quayside/walletd/internal/usecase"
)

func TestRegisterRequest_ToUseCaseInput(t *testing.T) {
	req := &RegisterRequest{
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Smith",
		Password:  "hunter22",
	}

	got := req.ToUseCaseInput()
	want := usecase.CreateUserInput{
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Smith",
		Password:  "hunter22",
	}

	if got != want {
		t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, want)
	}
}

func TestLoginRequest_ToUseCaseInput(t *testing.T) {
	req := &LoginRequest{Email: "alice@example.com", Password: "hunter22"}

	got := req.ToUseCaseInput()
	if got.Email != req.Email || got.Password != req.Password {
		t.Fatalf("ToUseCaseInput() = %+v", got)
	}
}

func TestAmountRequestDecodesDecimal(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{name: "json number", body: `{"amount": 120.50}`, want: "120.5"},
		{name: "json string", body: `{"amount": "33.33"}`, want: "33.33"},
		{name: "garbage", body: `{"amount": "not-a-number"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req AmountRequest
			err := json.Unmarshal([]byte(tt.body), &req)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected decode error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !req.Amount.Equal(decimal.RequireFromString(tt.want)) {
				t.Fatalf("amount = %s, want %s", req.Amount, tt.want)
			}
		})
	}
}

func TestTransferRequest_ToUseCaseInput(t *testing.T) {
	req := &TransferRequest{
		ReceiverEmail: "bob@example.com",
		Amount:        decimal.RequireFromString("42.50"),
	}

	got := req.ToUseCaseInput("user-1")
	if got.SenderID != "user-1" {
		t.Fatalf("SenderID = %s, want user-1", got.SenderID)
	}
	if got.ReceiverEmail != "bob@example.com" {
		t.Fatalf("ReceiverEmail = %s", got.ReceiverEmail)
	}
	if !got.Amount.Equal(req.Amount) {
		t.Fatalf("Amount = %s, want %s", got.Amount, req.Amount)
	}
}
