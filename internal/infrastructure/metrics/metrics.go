package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger operation metrics
	Deposits          prometheus.Counter
	Withdrawals       prometheus.Counter
	Transfers         prometheus.Counter
	Reversals         prometheus.Counter
	OperationDuration *prometheus.HistogramVec
	OperationAmount   *prometheus.HistogramVec
	OperationErrors   *prometheus.CounterVec
	ConflictRetries   prometheus.Counter
	ConflictExhausted prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Cache metrics
	WalletCacheHits   prometheus.Counter
	WalletCacheMisses prometheus.Counter

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec
	AuthFailures *prometheus.CounterVec

	// User metrics
	UsersCreated prometheus.Counter
}

// New creates all Prometheus metrics on the default registerer.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates all Prometheus metrics on the given registerer.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Ledger operation metrics
		Deposits: factory.NewCounter(prometheus.CounterOpts{
			Name: "walletd_deposits_total",
			Help: "Total number of completed deposits",
		}),
		Withdrawals: factory.NewCounter(prometheus.CounterOpts{
			Name: "walletd_withdrawals_total",
			Help: "Total number of completed withdrawals",
		}),
		Transfers: factory.NewCounter(prometheus.CounterOpts{
			Name: "walletd_transfers_total",
			Help: "Total number of completed transfers",
		}),
		Reversals: factory.NewCounter(prometheus.CounterOpts{
			Name: "walletd_reversals_total",
			Help: "Total number of reversed transfers",
		}),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walletd_operation_duration_seconds",
				Help:    "Duration of ledger operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		OperationAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walletd_operation_amount",
				Help:    "Amounts moved by ledger operations",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"operation"},
		),
		OperationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletd_operation_errors_total",
				Help: "Total ledger operation errors by type",
			},
			[]string{"operation", "error_type"},
		),
		ConflictRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "walletd_conflict_retries_total",
			Help: "Total storage conflict retries",
		}),
		ConflictExhausted: factory.NewCounter(prometheus.CounterOpts{
			Name: "walletd_conflict_exhausted_total",
			Help: "Operations that exhausted their conflict retry budget",
		}),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletd_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walletd_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Cache metrics
		WalletCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "walletd_wallet_cache_hits_total",
			Help: "Wallet lookups served from cache",
		}),
		WalletCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "walletd_wallet_cache_misses_total",
			Help: "Wallet lookups that fell through to the database",
		}),

		// Authentication metrics
		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletd_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"status"},
		),
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletd_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		// User metrics
		UsersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "walletd_users_created_total",
			Help: "Total number of users created",
		}),
	}
}
