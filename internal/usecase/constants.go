package usecase

import "time"

const (
	// WalletCacheTTL is how long cached wallet reads stay valid. Every
	// mutating operation invalidates the affected wallets, but a read racing
	// a commit can re-cache a balance the invalidation already cleared, so
	// the TTL has to stay short enough to bound that staleness.
	WalletCacheTTL = 30 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)
