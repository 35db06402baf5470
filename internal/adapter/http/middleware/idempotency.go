package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/quayside/walletd/internal/usecase"
)

// IdempotencyKeyHeader is the header name for idempotency keys.
const IdempotencyKeyHeader = "Idempotency-Key"

// IdempotencyMiddleware replays stored responses for repeated mutating
// requests carrying the same key. A key is scoped to its method and path, so
// reusing it on a different route starts a fresh operation instead of
// replaying an unrelated response.
type IdempotencyMiddleware struct {
	store usecase.IdempotencyStore
	ttl   time.Duration
}

// idempotencyRecord is what the store holds per claimed key. RequestHash is
// written at claim time; Status and Body arrive once the handler finishes.
// A record without a status is an operation still in flight.
type idempotencyRecord struct {
	RequestHash string `json:"requestHash"`
	Status      int    `json:"status,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = usecase.IdempotencyKeyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl}
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		cacheKey := fmt.Sprintf("%s:%s:%s", r.Method, r.URL.Path, key)
		requestHash := hashRequestBody(body)

		claim, err := json.Marshal(idempotencyRecord{RequestHash: requestHash})
		if err != nil {
			http.Error(w, "idempotency check failed", http.StatusInternalServerError)
			return
		}

		exists, stored, err := m.store.CheckAndSet(r.Context(), cacheKey, claim, m.ttl)
		if err != nil {
			http.Error(w, "idempotency check failed", http.StatusInternalServerError)
			return
		}

		if exists {
			m.replay(w, stored, requestHash)
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(recorder, r)

		// Only successful responses are worth replaying; a failed attempt
		// releases the claim so the client can retry with the same key.
		if recorder.statusCode >= 200 && recorder.statusCode < 300 {
			final, err := json.Marshal(idempotencyRecord{
				RequestHash: requestHash,
				Status:      recorder.statusCode,
				Body:        recorder.body.Bytes(),
			})
			if err == nil {
				m.store.Update(r.Context(), cacheKey, final, m.ttl)
			}
		} else {
			m.store.Remove(r.Context(), cacheKey)
		}
	})
}

// replay resolves a request whose key is already claimed: a finished record
// with a matching fingerprint is replayed, a mismatched fingerprint is
// rejected, and a record still in flight gets a conflict so the duplicate
// never executes the mutation a second time.
func (m *IdempotencyMiddleware) replay(w http.ResponseWriter, stored []byte, requestHash string) {
	var record idempotencyRecord
	if err := json.Unmarshal(stored, &record); err != nil {
		http.Error(w, "request with this idempotency key is already in progress", http.StatusConflict)
		return
	}

	if record.RequestHash != requestHash {
		http.Error(w, "idempotency key reused with a different request", http.StatusBadRequest)
		return
	}

	if record.Status == 0 {
		http.Error(w, "request with this idempotency key is already in progress", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Idempotency-Replay", "true")
	w.WriteHeader(record.Status)
	w.Write(record.Body)
}

func hashRequestBody(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
