package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/quayside/walletd/internal/adapter/http"
	"github.com/quayside/walletd/internal/adapter/http/handler"
	apimiddleware "github.com/quayside/walletd/internal/adapter/http/middleware"
	postgresRepo "github.com/quayside/walletd/internal/adapter/repository/postgres"
	redisRepo "github.com/quayside/walletd/internal/adapter/repository/redis"
	"github.com/quayside/walletd/internal/infrastructure/auth"
	"github.com/quayside/walletd/internal/infrastructure/config"
	"github.com/quayside/walletd/internal/infrastructure/logger"
	"github.com/quayside/walletd/internal/infrastructure/metrics"
	"github.com/quayside/walletd/internal/infrastructure/postgres"
	"github.com/quayside/walletd/internal/infrastructure/redis"
	"github.com/quayside/walletd/internal/usecase"
)

// migrationsPath returns the migrations directory to apply on startup.
// Empty means migrations are managed out of band.
func migrationsPath() string {
	return os.Getenv("MIGRATIONS_PATH")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "walletd",
	})

	ctx := context.Background()

	// Connect to PostgreSQL
	connectCtx, connectCancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
	pool, err := postgres.NewPoolWithConfig(connectCtx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	connectCancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if path := migrationsPath(); path != "" {
		if err := postgres.RunMigrations(log, cfg.DatabaseURL, path); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	walletRepo := postgresRepo.NewWalletRepository(pool)
	txnRepo := postgresRepo.NewTransactionRepository(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	m := metrics.New()
	retrier := postgresRepo.NewRetrier(log, cfg.MaxConflictRetries).WithMetrics(m)

	// Use cases
	ledgerUC := usecase.NewLedgerUseCase(txManager, walletRepo, txnRepo, userRepo, idGen).
		WithRetrier(retrier).
		WithCache(cache, cfg.WalletCacheTTL).
		WithInstrumentation(log, m)
	txnUC := usecase.NewTransactionUseCase(txnRepo, walletRepo, userRepo)
	userUC := usecase.NewUserUseCase(txManager, userRepo, walletRepo, idGen).
		WithInstrumentation(log, m)

	// HTTP layer
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	loginLimiter := apimiddleware.NewRateLimiter(5, 10)
	go func() {
		for range time.Tick(time.Hour) {
			loginLimiter.CleanupLimiters()
		}
	}()

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AuthHandler:        handler.NewAuthHandler(userUC, jwtManager, cfg.JWTExpiration),
		WalletHandler:      handler.NewWalletHandler(ledgerUC, txnUC),
		TransactionHandler: handler.NewTransactionHandler(txnUC, ledgerUC),
		HealthHandler:      handler.NewHealthHandler(pool, redisClient),
		JWTManager:         jwtManager,
		Logging:            apimiddleware.NewLoggingMiddleware(log),
		Metrics:            apimiddleware.NewMetricsMiddleware(m),
		Recovery:           apimiddleware.NewRecoveryMiddleware(log),
		Idempotency:        apimiddleware.NewIdempotencyMiddleware(idempotencyStore, cfg.IdempotencyTTL),
		LoginLimiter:       loginLimiter,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
