package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	httpAdapter "github.com/pravino/tapcore/internal/adapter/http"
	"github.com/pravino/tapcore/internal/adapter/http/handler"
	"github.com/pravino/tapcore/internal/adapter/http/middleware"
	postgresRepo "github.com/pravino/tapcore/internal/adapter/repository/postgres"
	redisRepo "github.com/pravino/tapcore/internal/adapter/repository/redis"
	"github.com/pravino/tapcore/internal/domain"
	"github.com/pravino/tapcore/internal/infrastructure/abuse"
	"github.com/pravino/tapcore/internal/infrastructure/auth"
	"github.com/pravino/tapcore/internal/infrastructure/config"
	"github.com/pravino/tapcore/internal/infrastructure/logger"
	"github.com/pravino/tapcore/internal/infrastructure/metrics"
	"github.com/pravino/tapcore/internal/infrastructure/notifier"
	"github.com/pravino/tapcore/internal/infrastructure/oracle"
	"github.com/pravino/tapcore/internal/infrastructure/postgres"
	"github.com/pravino/tapcore/internal/infrastructure/redis"
	"github.com/pravino/tapcore/internal/jobs"
	"github.com/pravino/tapcore/internal/usecase"
)

// systemRand draws from the process-wide generator.
type systemRand struct{}

func (systemRand) IntN(n int) int { return rand.Intn(n) }

func main() {
	// Load configuration
	cfg, err := config.Load()
	if cfg == nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("invalid configuration")
	}

	// Setup logger
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Warn().Err(err).Msg("environment parse failed, running on defaults")
	}

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Apply migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Msg("migrations applied")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	treasuryRepo := postgresRepo.NewTreasuryRepository(pool)
	vaultRepo := postgresRepo.NewVaultRepository(pool)
	potRepo := postgresRepo.NewPotRepository(pool)
	predictionRepo := postgresRepo.NewPredictionRepository(pool)
	spinRepo := postgresRepo.NewSpinRepository(pool)
	withdrawalRepo := postgresRepo.NewWithdrawalRepository(pool)
	summaryRepo := postgresRepo.NewSummaryRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	cache := redisRepo.NewCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log)

	// Price oracle over three independent feeds
	orc := oracle.New([]oracle.PriceSource{
		oracle.NewBinanceSource(cfg.OracleSourceTimeout),
		oracle.NewCoingeckoSource(cfg.OracleSourceTimeout),
		oracle.NewKrakenSource(cfg.OracleSourceTimeout),
	}, cache, cfg.OracleCacheTTL, log, m)

	eco := buildEconomics(cfg)
	gate := abuse.NewVelocityGate(redisClient, time.Hour, 10, log)

	// Initialize use cases
	ledgerUC := usecase.NewLedgerUseCase(ledgerRepo, idGen)
	treasuryUC := usecase.NewTreasuryUseCase(txManager, userRepo, treasuryRepo, vaultRepo, ledgerUC, idGen, eco)
	dripUC := usecase.NewDripUseCase(txManager, userRepo, treasuryRepo, potRepo, ledgerUC, idGen)
	settlementUC := usecase.NewSettlementUseCase(txManager, userRepo, potRepo, predictionRepo, summaryRepo, ledgerUC, idGen, orc, eco)
	predictionUC := usecase.NewPredictionUseCase(txManager, userRepo, predictionRepo, orc, idGen)
	spinUC := usecase.NewSpinUseCase(txManager, userRepo, vaultRepo, spinRepo, ledgerUC, idGen, systemRand{}, eco)
	withdrawalUC := usecase.NewWithdrawalUseCase(txManager, userRepo, withdrawalRepo, ledgerUC, idGen, gate, eco)

	// Initialize handlers
	paymentHandler := handler.NewPaymentHandler(treasuryUC, m)
	ledgerHandler := handler.NewLedgerHandler(ledgerUC)
	predictionHandler := handler.NewPredictionHandler(predictionUC)
	spinHandler := handler.NewSpinHandler(spinUC, m)
	withdrawalHandler := handler.NewWithdrawalHandler(withdrawalUC, m)
	settlementHandler := handler.NewSettlementHandler(settlementUC)
	oracleHandler := handler.NewOracleHandler(orc)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	var jwtManager *auth.JWTManager
	if cfg.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	} else {
		log.Warn().Msg("JWT_SECRET not set, admin endpoints are unauthenticated")
	}

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		PaymentHandler:    paymentHandler,
		LedgerHandler:     ledgerHandler,
		PredictionHandler: predictionHandler,
		SpinHandler:       spinHandler,
		WithdrawalHandler: withdrawalHandler,
		SettlementHandler: settlementHandler,
		OracleHandler:     oracleHandler,
		HealthHandler:     healthHandler,

		JWTManager:       jwtManager,
		IdempotencyStore: idempotencyStore,
		Metrics:          middleware.NewMetricsMiddleware(m),
		Logging:          middleware.NewLoggingMiddleware(log),
		RateLimiter:      middleware.NewRateLimiter(20, 40),
	})

	// Recurring economy jobs
	warnWindow := time.Duration(cfg.ExpiryWarningHours) * time.Hour
	scheduler := jobs.NewScheduler(dripUC, settlementUC, withdrawalUC, notifier.NewLogNotifier(log), retrier, m, warnWindow, log)
	if err := scheduler.Register(jobs.Schedules{
		Drip:          cfg.CronDrip,
		Expiry:        cfg.CronExpiry,
		Settlement:    cfg.CronSettlement,
		Promotion:     cfg.CronPromotion,
		Batching:      cfg.CronBatching,
		TicketExpiry:  cfg.CronTicketExpiry,
		ExpiryWarning: cfg.CronExpiryWarning,
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to register jobs")
	}
	scheduler.Start()

	// Warm the oracle so the first prediction does not pay the fetch
	go func() {
		if _, err := orc.Fetch(ctx); err != nil {
			log.Warn().Err(err).Msg("initial oracle fetch failed")
		}
	}()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	scheduler.Stop()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func buildEconomics(cfg *config.Config) usecase.Economics {
	tiers := cfg.Tiers()

	prizes := make(map[string]domain.CashPrizeTable, len(tiers))
	for name, tier := range tiers {
		prizes[name] = cfg.CashPrizes(tier)
	}

	return usecase.Economics{
		AdminSplit:    cfg.AdminSplit,
		TreasurySplit: cfg.TreasurySplit,
		TapShare:      cfg.TapShare,
		PredictShare:  cfg.PredictShare,

		ReferralReward: cfg.ReferralReward,
		PriceEpsilon:   cfg.PriceEpsilon,

		DripDays:         cfg.DripDays,
		SubscriptionDays: cfg.SubscriptionDays,
		TicketExpiryDays: cfg.TicketExpiryDays,

		FreeSpinsPerMonth: cfg.FreeSpinsPerMonth,

		WithdrawalMin:      cfg.WithdrawalMin,
		WithdrawalFee:      cfg.WithdrawalFee,
		AuditDelay:         time.Duration(cfg.AuditDelayHours) * time.Hour,
		FlagScoreThreshold: cfg.FlagScoreThreshold,

		PredictionMaturity: cfg.PredictionMaturity,
		OracleMaxAttempts:  cfg.OracleMaxAttempts,

		Tiers:      tiers,
		Prizes:     prizes,
		CoinPrizes: domain.DefaultCoinPrizes,
	}
}
