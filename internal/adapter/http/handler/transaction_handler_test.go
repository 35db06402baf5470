package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/quayside/walletd/internal/adapter/http/dto"
	"github.com/quayside/walletd/internal/domain"
)

func setChiURLParam(r *http.Request, key, value string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{
			Keys:   []string{key},
			Values: []string{value},
		},
	}))
}

func admin(id string) *domain.User {
	return &domain.User{ID: id, Email: id + "@example.com", Role: domain.RoleAdmin}
}

// transferBetween runs a transfer through the wallet handler and returns the
// sender-side record id.
func (f *handlerFixture) transferBetween(t *testing.T, senderID, senderEmail, receiverEmail string, amount int64) string {
	t.Helper()

	body, _ := json.Marshal(dto.TransferRequest{
		ReceiverEmail: receiverEmail,
		Amount:        decimal.NewFromInt(amount),
	})
	rec := httptest.NewRecorder()
	f.wallet.Transfer(rec, requestAs(http.MethodPost, "/wallet/transfer", body, caller(senderID, senderEmail)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("transfer setup failed: %d %s", rec.Code, rec.Body)
	}

	var resp dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode transfer response: %v", err)
	}
	return resp.ID
}

func TestTransactionHandler_List(t *testing.T) {
	f := newHandlerFixture()
	f.seedAccount("u1", "alice@example.com", 500)
	f.seedAccount("u2", "bob@example.com", 0)
	f.transferBetween(t, "u1", "alice@example.com", "bob@example.com", 100)

	rec := httptest.NewRecorder()
	f.transaction.List(rec, requestAs(http.MethodGet, "/transactions", nil, admin("root")))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.TransactionPageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	// One record per side of the transfer.
	if resp.Meta.Total != 2 {
		t.Fatalf("expected both transfer records, got %+v", resp.Meta)
	}
}

func TestTransactionHandler_ListSearch(t *testing.T) {
	f := newHandlerFixture()
	f.seedAccount("u1", "alice@example.com", 500)
	f.seedAccount("u2", "bob@example.com", 0)
	f.transferBetween(t, "u1", "alice@example.com", "bob@example.com", 100)

	rec := httptest.NewRecorder()
	f.transaction.List(rec, requestAs(http.MethodGet, "/transactions?search=nobody", nil, admin("root")))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.TransactionPageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Meta.Total != 0 || len(resp.Data) != 0 {
		t.Fatalf("expected empty page for unmatched search, got %+v", resp.Meta)
	}
}

func TestTransactionHandler_Get(t *testing.T) {
	f := newHandlerFixture()
	f.seedAccount("u1", "alice@example.com", 500)
	f.seedAccount("u2", "bob@example.com", 0)
	id := f.transferBetween(t, "u1", "alice@example.com", "bob@example.com", 100)

	req := requestAs(http.MethodGet, "/transactions/"+id, nil, caller("u1", "alice@example.com"))
	req = setChiURLParam(req, "id", id)
	rec := httptest.NewRecorder()
	f.transaction.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTransactionHandler_GetOtherUsersRecord(t *testing.T) {
	f := newHandlerFixture()
	f.seedAccount("u1", "alice@example.com", 500)
	f.seedAccount("u2", "bob@example.com", 0)
	f.seedAccount("u3", "carol@example.com", 0)
	id := f.transferBetween(t, "u1", "alice@example.com", "bob@example.com", 100)

	req := requestAs(http.MethodGet, "/transactions/"+id, nil, caller("u3", "carol@example.com"))
	req = setChiURLParam(req, "id", id)
	rec := httptest.NewRecorder()
	f.transaction.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another user's record, got %d", rec.Code)
	}
}

func TestTransactionHandler_Reverse(t *testing.T) {
	f := newHandlerFixture()
	f.seedAccount("u1", "alice@example.com", 500)
	f.seedAccount("u2", "bob@example.com", 0)
	id := f.transferBetween(t, "u1", "alice@example.com", "bob@example.com", 100)

	req := requestAs(http.MethodPost, "/transactions/"+id+"/reverse", nil, admin("root"))
	req = setChiURLParam(req, "id", id)
	rec := httptest.NewRecorder()
	f.transaction.Reverse(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var resp dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != string(domain.StatusReversed) {
		t.Fatalf("expected status reversed, got %s", resp.Status)
	}
}

func TestTransactionHandler_ReverseTwice(t *testing.T) {
	f := newHandlerFixture()
	f.seedAccount("u1", "alice@example.com", 500)
	f.seedAccount("u2", "bob@example.com", 0)
	id := f.transferBetween(t, "u1", "alice@example.com", "bob@example.com", 100)

	for i, want := range []int{http.StatusOK, http.StatusConflict} {
		req := requestAs(http.MethodPost, "/transactions/"+id+"/reverse", nil, admin("root"))
		req = setChiURLParam(req, "id", id)
		rec := httptest.NewRecorder()
		f.transaction.Reverse(rec, req)

		if rec.Code != want {
			t.Fatalf("attempt %d: expected %d, got %d", i+1, want, rec.Code)
		}
	}
}

func TestTransactionHandler_ReverseUnknown(t *testing.T) {
	f := newHandlerFixture()

	req := requestAs(http.MethodPost, "/transactions/nope/reverse", nil, admin("root"))
	req = setChiURLParam(req, "id", "nope")
	rec := httptest.NewRecorder()
	f.transaction.Reverse(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
