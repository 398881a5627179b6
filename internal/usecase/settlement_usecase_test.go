package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pravino/tapcore/internal/domain"
	"github.com/pravino/tapcore/internal/usecase"
	"github.com/pravino/tapcore/internal/usecase/mocks"
)

type settlementFixture struct {
	uc          *usecase.SettlementUseCase
	users       *mocks.MockUserRepository
	pots        *mocks.MockPotRepository
	predictions *mocks.MockPredictionRepository
	summaries   *mocks.MockSummaryRepository
	ledgerRepo  *mocks.MockLedgerRepository
	oracle      *mocks.MockOracle
}

func newSettlementFixture() *settlementFixture {
	users := mocks.NewMockUserRepository()
	pots := mocks.NewMockPotRepository()
	predictions := mocks.NewMockPredictionRepository()
	summaries := mocks.NewMockSummaryRepository()
	ledgerRepo := mocks.NewMockLedgerRepository()
	idGen := mocks.NewMockIDGenerator()
	ledger := usecase.NewLedgerUseCase(ledgerRepo, idGen)
	oracle := &mocks.MockOracle{
		Result: &domain.OracleResult{Price: d("95000"), Median: true, FetchedAt: time.Now().UTC()},
	}

	uc := usecase.NewSettlementUseCase(
		mocks.NewMockTransactionManager(), users, pots, predictions, summaries,
		ledger, idGen, oracle, testEconomics())

	return &settlementFixture{
		uc: uc, users: users, pots: pots, predictions: predictions,
		summaries: summaries, ledgerRepo: ledgerRepo, oracle: oracle,
	}
}

func TestSettlementUseCase_TapPotWeightedDistribution(t *testing.T) {
	f := newSettlementFixture()
	now := time.Now().UTC()

	// Two WOOD earners and one SILVER-league earner in the same tier.
	wood1 := activeUser("user-a", "BRONZE", now)
	wood1.PeriodCoins = 1000
	wood2 := activeUser("user-b", "BRONZE", now)
	wood2.PeriodCoins = 3000
	veteran := activeUser("user-c", "BRONZE", now)
	veteran.PeriodCoins = 1000
	veteran.LifetimeCoins = 200_000 // SILVER league, 1.25x

	for _, u := range []*domain.User{wood1, wood2, veteran} {
		f.users.Create(context.Background(), u)
	}

	f.pots.SetPot(&domain.TierPot{TierName: "BRONZE", Game: domain.GameTap, Balance: d("5.25"), Rollover: decimal.Zero})

	summaries, err := f.uc.SettleCycle(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Weights: 1000, 3000, 1250 -> total 5250. Pot 5.25 pays 0.001/weight.
	wood1, _ = f.users.GetByID(context.Background(), "user-a")
	if !wood1.UsdtBalance.Equal(d("1")) {
		t.Errorf("user-a payout = %s, want 1", wood1.UsdtBalance)
	}

	wood2, _ = f.users.GetByID(context.Background(), "user-b")
	if !wood2.UsdtBalance.Equal(d("3")) {
		t.Errorf("user-b payout = %s, want 3", wood2.UsdtBalance)
	}

	veteran, _ = f.users.GetByID(context.Background(), "user-c")
	if !veteran.UsdtBalance.Equal(d("1.25")) {
		t.Errorf("user-c payout = %s, want 1.25 (league weighted)", veteran.UsdtBalance)
	}

	// Period coins rolled into lifetime and reset.
	if wood1.PeriodCoins != 0 || wood1.LifetimeCoins != 1000 {
		t.Errorf("period/lifetime = %d/%d, want 0/1000", wood1.PeriodCoins, wood1.LifetimeCoins)
	}

	pot, _ := f.pots.Get(context.Background(), "BRONZE", domain.GameTap)
	if !pot.Balance.IsZero() {
		t.Errorf("pot residue = %s, want 0 for exact division", pot.Balance)
	}

	var tapSummary *domain.SettlementSummary
	for _, s := range summaries {
		if s.Game == domain.GameTap && s.TierName == "BRONZE" {
			tapSummary = s
		}
	}
	if tapSummary == nil {
		t.Fatal("missing bronze tap summary")
	}

	if tapSummary.WinnersCount != 3 {
		t.Errorf("winners = %d, want 3", tapSummary.WinnersCount)
	}
}

func TestSettlementUseCase_TapPotRoundingResidueStays(t *testing.T) {
	f := newSettlementFixture()
	now := time.Now().UTC()

	for _, id := range []string{"user-a", "user-b", "user-c"} {
		u := activeUser(id, "BRONZE", now)
		u.PeriodCoins = 1
		f.users.Create(context.Background(), u)
	}

	f.pots.SetPot(&domain.TierPot{TierName: "BRONZE", Game: domain.GameTap, Balance: d("1"), Rollover: decimal.Zero})

	if _, err := f.uc.SettleCycle(context.Background(), now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 1/3 truncates to 0.3333 each; 0.0001 stays in the pot.
	pot, _ := f.pots.Get(context.Background(), "BRONZE", domain.GameTap)
	if !pot.Balance.Equal(d("0.0001")) {
		t.Errorf("pot residue = %s, want 0.0001", pot.Balance)
	}
}

func TestSettlementUseCase_PredictionResolution(t *testing.T) {
	f := newSettlementFixture()
	now := time.Now().UTC()
	submitted := now.Add(-13 * time.Hour)

	winner := activeUser("user-w", "BRONZE", now)
	loser := activeUser("user-l", "BRONZE", now)
	f.users.Create(context.Background(), winner)
	f.users.Create(context.Background(), loser)

	f.predictions.Create(context.Background(), nil, &domain.Prediction{
		ID: "p-1", UserID: "user-w", TierName: "BRONZE",
		Direction: domain.PredictHigher, PriceAtSubmit: d("94000"), CreatedAt: submitted,
	})
	f.predictions.Create(context.Background(), nil, &domain.Prediction{
		ID: "p-2", UserID: "user-l", TierName: "BRONZE",
		Direction: domain.PredictLower, PriceAtSubmit: d("94000"), CreatedAt: submitted,
	})

	f.pots.SetPot(&domain.TierPot{TierName: "BRONZE", Game: domain.GamePredict, Balance: d("2"), Rollover: d("1")})

	summaries, err := f.uc.SettleCycle(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Locked price 95000 > 94000: higher wins, pot+rollover = 3 to one winner.
	winner, _ = f.users.GetByID(context.Background(), "user-w")
	if !winner.UsdtBalance.Equal(d("3")) {
		t.Errorf("winner payout = %s, want 3", winner.UsdtBalance)
	}

	loser, _ = f.users.GetByID(context.Background(), "user-l")
	if !loser.UsdtBalance.IsZero() {
		t.Errorf("loser payout = %s, want 0", loser.UsdtBalance)
	}

	pot, _ := f.pots.Get(context.Background(), "BRONZE", domain.GamePredict)
	if !pot.Rollover.IsZero() || !pot.Balance.IsZero() {
		t.Errorf("pot after settle = %s/%s, want 0/0", pot.Balance, pot.Rollover)
	}

	var predictSummary *domain.SettlementSummary
	for _, s := range summaries {
		if s.Game == domain.GamePredict && s.TierName == "BRONZE" {
			predictSummary = s
		}
	}
	if predictSummary == nil {
		t.Fatal("missing bronze predict summary")
	}

	if predictSummary.WinnersCount != 1 || !predictSummary.SharePerWinner.Equal(d("3")) {
		t.Errorf("summary winners/share = %d/%s, want 1/3",
			predictSummary.WinnersCount, predictSummary.SharePerWinner)
	}
}

func TestSettlementUseCase_NoWinnersRollsOver(t *testing.T) {
	f := newSettlementFixture()
	now := time.Now().UTC()

	loser := activeUser("user-l", "BRONZE", now)
	f.users.Create(context.Background(), loser)

	f.predictions.Create(context.Background(), nil, &domain.Prediction{
		ID: "p-1", UserID: "user-l", TierName: "BRONZE",
		Direction: domain.PredictLower, PriceAtSubmit: d("94000"), CreatedAt: now.Add(-13 * time.Hour),
	})

	f.pots.SetPot(&domain.TierPot{TierName: "BRONZE", Game: domain.GamePredict, Balance: d("2"), Rollover: d("0.5")})

	if _, err := f.uc.SettleCycle(context.Background(), now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pot, _ := f.pots.Get(context.Background(), "BRONZE", domain.GamePredict)
	if !pot.Rollover.Equal(d("2.5")) {
		t.Errorf("rollover = %s, want 2.5", pot.Rollover)
	}

	if !pot.Balance.IsZero() {
		t.Errorf("balance = %s, want 0", pot.Balance)
	}
}

func TestSettlementUseCase_UnchangedPriceWinsForNobody(t *testing.T) {
	f := newSettlementFixture()
	now := time.Now().UTC()

	f.users.Create(context.Background(), activeUser("user-a", "BRONZE", now))
	f.users.Create(context.Background(), activeUser("user-b", "BRONZE", now))

	f.predictions.Create(context.Background(), nil, &domain.Prediction{
		ID: "p-1", UserID: "user-a", TierName: "BRONZE",
		Direction: domain.PredictHigher, PriceAtSubmit: d("95000"), CreatedAt: now.Add(-13 * time.Hour),
	})
	f.predictions.Create(context.Background(), nil, &domain.Prediction{
		ID: "p-2", UserID: "user-b", TierName: "BRONZE",
		Direction: domain.PredictLower, PriceAtSubmit: d("95000"), CreatedAt: now.Add(-13 * time.Hour),
	})

	f.pots.SetPot(&domain.TierPot{TierName: "BRONZE", Game: domain.GamePredict, Balance: d("1"), Rollover: decimal.Zero})

	if _, err := f.uc.SettleCycle(context.Background(), now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pot, _ := f.pots.Get(context.Background(), "BRONZE", domain.GamePredict)
	if !pot.Rollover.Equal(d("1")) {
		t.Errorf("rollover = %s, want full pot at unchanged price", pot.Rollover)
	}
}

func TestSettlementUseCase_ImmaturePredictionsWait(t *testing.T) {
	f := newSettlementFixture()
	now := time.Now().UTC()

	f.users.Create(context.Background(), activeUser("user-a", "BRONZE", now))
	f.predictions.Create(context.Background(), nil, &domain.Prediction{
		ID: "p-1", UserID: "user-a", TierName: "BRONZE",
		Direction: domain.PredictHigher, PriceAtSubmit: d("94000"), CreatedAt: now.Add(-time.Hour),
	})

	if _, err := f.uc.SettleCycle(context.Background(), now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user, _ := f.users.GetByID(context.Background(), "user-a")
	if !user.UsdtBalance.IsZero() {
		t.Error("immature prediction must not pay out")
	}
}

func TestSettlementUseCase_FrozenOracleDefersPredictions(t *testing.T) {
	f := newSettlementFixture()
	now := time.Now().UTC()

	f.oracle.Result = nil
	f.oracle.Err = domain.ErrOracleUnavailable

	earner := activeUser("user-a", "BRONZE", now)
	earner.PeriodCoins = 100
	f.users.Create(context.Background(), earner)
	f.pots.SetPot(&domain.TierPot{TierName: "BRONZE", Game: domain.GameTap, Balance: d("1"), Rollover: decimal.Zero})

	f.predictions.Create(context.Background(), nil, &domain.Prediction{
		ID: "p-1", UserID: "user-a", TierName: "BRONZE",
		Direction: domain.PredictHigher, PriceAtSubmit: d("94000"), CreatedAt: now.Add(-13 * time.Hour),
	})

	summaries, err := f.uc.SettleCycle(context.Background(), now)
	if err != domain.ErrOracleFrozen {
		t.Fatalf("expected ErrOracleFrozen, got %v", err)
	}

	// Tap settled despite the frozen oracle.
	if len(summaries) != 1 || summaries[0].Game != domain.GameTap {
		t.Errorf("expected only the tap summary, got %d summaries", len(summaries))
	}

	user, _ := f.users.GetByID(context.Background(), "user-a")
	if !user.UsdtBalance.Equal(d("1")) {
		t.Errorf("tap payout = %s, want 1", user.UsdtBalance)
	}
}
