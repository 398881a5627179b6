package integration

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	adaptershttp "github.com/pravino/tapcore/internal/adapter/http"
	"github.com/pravino/tapcore/internal/adapter/http/handler"
	"github.com/pravino/tapcore/internal/adapter/repository/postgres"
	redisrepo "github.com/pravino/tapcore/internal/adapter/repository/redis"
	"github.com/pravino/tapcore/internal/infrastructure/abuse"
	"github.com/pravino/tapcore/internal/infrastructure/metrics"
	"github.com/pravino/tapcore/internal/infrastructure/oracle"
	infraredis "github.com/pravino/tapcore/internal/infrastructure/redis"
	"github.com/pravino/tapcore/internal/usecase"
	"github.com/pravino/tapcore/tests/testutil"
)

// Prometheus collectors register globally, so the whole test binary
// shares one set.
var testMetrics = metrics.New()

// stubRand pins the wheel draw so outcomes are deterministic.
type stubRand struct{ n int }

func (r stubRand) IntN(n int) int {
	if r.n < n {
		return r.n
	}

	return n - 1
}

// env wires the full stack against the test database, mirroring the
// server composition.
type env struct {
	db     *testutil.TestDB
	router http.Handler

	userRepo     *postgres.UserRepository
	treasuryUC   *usecase.TreasuryUseCase
	dripUC       *usecase.DripUseCase
	withdrawalUC *usecase.WithdrawalUseCase
	ledgerUC     *usecase.LedgerUseCase
	potRepo      *postgres.PotRepository
	vaultRepo    *postgres.VaultRepository
}

func newEnv(t *testing.T, rng usecase.Rand) *env {
	t.Helper()

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	t.Cleanup(testDB.Cleanup)

	pool := testDB.Pool
	txManager := postgres.NewTxManager(pool)
	userRepo := postgres.NewUserRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	treasuryRepo := postgres.NewTreasuryRepository(pool)
	vaultRepo := postgres.NewVaultRepository(pool)
	potRepo := postgres.NewPotRepository(pool)
	predictionRepo := postgres.NewPredictionRepository(pool)
	spinRepo := postgres.NewSpinRepository(pool)
	withdrawalRepo := postgres.NewWithdrawalRepository(pool)
	summaryRepo := postgres.NewSummaryRepository(pool)
	idGen := postgres.NewULIDGenerator()

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	redisClient, err := infraredis.NewClient(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { redisClient.Close() })

	cache := redisrepo.NewCache(redisClient)
	idempotencyStore := redisrepo.NewIdempotencyStore(redisClient)

	// No sources configured: the oracle is never consulted by these
	// flows.
	orc := oracle.New(nil, cache, time.Minute, zerolog.Nop(), testMetrics)

	eco := testutil.Economics()

	ledgerUC := usecase.NewLedgerUseCase(ledgerRepo, idGen)
	treasuryUC := usecase.NewTreasuryUseCase(txManager, userRepo, treasuryRepo, vaultRepo, ledgerUC, idGen, eco)
	dripUC := usecase.NewDripUseCase(txManager, userRepo, treasuryRepo, potRepo, ledgerUC, idGen)
	settlementUC := usecase.NewSettlementUseCase(txManager, userRepo, potRepo, predictionRepo, summaryRepo, ledgerUC, idGen, orc, eco)
	predictionUC := usecase.NewPredictionUseCase(txManager, userRepo, predictionRepo, orc, idGen)
	spinUC := usecase.NewSpinUseCase(txManager, userRepo, vaultRepo, spinRepo, ledgerUC, idGen, rng, eco)
	withdrawalUC := usecase.NewWithdrawalUseCase(txManager, userRepo, withdrawalRepo, ledgerUC, idGen, abuse.NullGate{}, eco)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		PaymentHandler:    handler.NewPaymentHandler(treasuryUC, testMetrics),
		LedgerHandler:     handler.NewLedgerHandler(ledgerUC),
		PredictionHandler: handler.NewPredictionHandler(predictionUC),
		SpinHandler:       handler.NewSpinHandler(spinUC, testMetrics),
		WithdrawalHandler: handler.NewWithdrawalHandler(withdrawalUC, testMetrics),
		SettlementHandler: handler.NewSettlementHandler(settlementUC),
		OracleHandler:     handler.NewOracleHandler(orc),
		HealthHandler:     handler.NewHealthHandler(pool, redisClient),

		IdempotencyStore: idempotencyStore,
	})

	return &env{
		db:           testDB,
		router:       router,
		userRepo:     userRepo,
		treasuryUC:   treasuryUC,
		dripUC:       dripUC,
		withdrawalUC: withdrawalUC,
		ledgerUC:     ledgerUC,
		potRepo:      potRepo,
		vaultRepo:    vaultRepo,
	}
}
