package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pravino/tapcore/internal/domain"
)

// SettlementUseCase runs the daily cycle: tap pot distribution per
// tier, then prediction resolution against the oracle consensus price.
type SettlementUseCase struct {
	txManager      TransactionManager
	userRepo       UserRepository
	potRepo        PotRepository
	predictionRepo PredictionRepository
	summaryRepo    SummaryRepository
	ledger         *LedgerUseCase
	idGen          IDGenerator
	oracle         PriceOracle
	eco            Economics
}

// NewSettlementUseCase creates a new SettlementUseCase.
func NewSettlementUseCase(
	txManager TransactionManager,
	userRepo UserRepository,
	potRepo PotRepository,
	predictionRepo PredictionRepository,
	summaryRepo SummaryRepository,
	ledger *LedgerUseCase,
	idGen IDGenerator,
	oracle PriceOracle,
	eco Economics,
) *SettlementUseCase {
	return &SettlementUseCase{
		txManager:      txManager,
		userRepo:       userRepo,
		potRepo:        potRepo,
		predictionRepo: predictionRepo,
		summaryRepo:    summaryRepo,
		ledger:         ledger,
		idGen:          idGen,
		oracle:         oracle,
		eco:            eco,
	}
}

// SettleCycle runs one full settlement cycle at now. Tap pots settle
// unconditionally; prediction resolution needs a consensus price, so a
// frozen oracle defers it to the next cycle and the tap summaries are
// returned alongside ErrOracleFrozen.
func (uc *SettlementUseCase) SettleCycle(ctx context.Context, now time.Time) ([]*domain.SettlementSummary, error) {
	var summaries []*domain.SettlementSummary

	for _, tierName := range uc.eco.TierNames() {
		summary, err := uc.settleTapPot(ctx, tierName, now)
		if err != nil {
			return summaries, err
		}
		if summary != nil {
			summaries = append(summaries, summary)
		}
	}

	price, err := uc.oracle.FetchWithRetry(ctx, uc.eco.OracleMaxAttempts, now.Add(5*time.Minute))
	if err != nil {
		return summaries, domain.ErrOracleFrozen
	}

	predictionSummaries, err := uc.resolvePredictions(ctx, price.Price, now)
	summaries = append(summaries, predictionSummaries...)

	return summaries, err
}

// settleTapPot distributes a tier's tap pot among its active
// subscribers, weighted by league-multiplied period coins. Rounding
// leaves the residue in the pot for the next cycle. Period coins roll
// into lifetime coins either way; the league is recomputed from the
// new lifetime total.
func (uc *SettlementUseCase) settleTapPot(ctx context.Context, tierName string, now time.Time) (*domain.SettlementSummary, error) {
	subscribers, err := uc.userRepo.ListActiveSubscribers(ctx, tierName, now)
	if err != nil {
		return nil, err
	}

	earners := make([]*domain.User, 0, len(subscribers))
	for _, u := range subscribers {
		if u.PeriodCoins > 0 {
			earners = append(earners, u)
		}
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	pot, err := uc.potRepo.GetForUpdate(ctx, tx, tierName, domain.GameTap)
	if err != nil {
		return nil, err
	}

	potBefore := pot.Balance

	if len(earners) == 0 && potBefore.IsZero() {
		return nil, nil
	}

	ids := make([]string, 0, len(earners))
	for _, u := range earners {
		ids = append(ids, u.ID)
	}
	sort.Strings(ids)

	locked, err := uc.userRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	weights, total := uc.tapWeights(locked)

	paid := decimal.Zero
	for _, u := range locked {
		share := decimal.Zero
		if total.IsPositive() && potBefore.IsPositive() {
			share = potBefore.Mul(weights[u.ID]).Div(total).RoundDown(domain.MoneyPlaces)
		}

		if err := uc.payTapShare(ctx, tx, u, share, now); err != nil {
			return nil, err
		}

		paid = paid.Add(share)
	}

	pot.Balance = potBefore.Sub(paid)
	pot.UpdatedAt = now

	if err := uc.potRepo.Update(ctx, tx, pot); err != nil {
		return nil, err
	}

	summary := &domain.SettlementSummary{
		ID:              uc.idGen.Generate(),
		CycleDate:       now.UTC().Truncate(24 * time.Hour),
		TierName:        tierName,
		Game:            domain.GameTap,
		ActiveUsers:     len(earners),
		DailyAllocation: potBefore,
		Rollover:        decimal.Zero,
		TotalPot:        potBefore,
		WinnersCount:    len(earners),
		SharePerWinner:  decimal.Zero,
		NewRollover:     pot.Balance,
		CreatedAt:       now,
	}

	if err := uc.summaryRepo.Create(ctx, tx, summary); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return summary, nil
}

// tapWeights returns periodCoins * leagueMultiplier per user and the
// total weight.
func (uc *SettlementUseCase) tapWeights(users []*domain.User) (map[string]decimal.Decimal, decimal.Decimal) {
	weights := make(map[string]decimal.Decimal, len(users))
	total := decimal.Zero

	for _, u := range users {
		w := decimal.NewFromInt(u.PeriodCoins).Mul(u.League().Multiplier)
		weights[u.ID] = w
		total = total.Add(w)
	}

	return weights, total
}

func (uc *SettlementUseCase) payTapShare(ctx context.Context, tx Transaction, user *domain.User, share decimal.Decimal, now time.Time) error {
	if share.IsPositive() {
		before := user.UsdtBalance
		user.UsdtBalance = before.Add(share)

		entry := &domain.LedgerEntry{
			UserID:        user.ID,
			EntryType:     domain.EntryTapEarn,
			Direction:     domain.DirectionCredit,
			Amount:        share,
			Currency:      domain.CurrencyUSDT,
			BalanceBefore: before,
			BalanceAfter:  user.UsdtBalance,
			Game:          string(domain.GameTap),
			TierAtTime:    user.TierName,
			CreatedAt:     now,
		}
		if err := uc.ledger.Append(ctx, tx, entry); err != nil {
			return err
		}
	}

	user.LifetimeCoins += user.PeriodCoins
	user.PeriodCoins = 0
	user.LeagueName = user.League().Name

	return uc.userRepo.Update(ctx, tx, user)
}

// resolvePredictions settles every mature unresolved prediction at the
// locked price. Winners of a tier split that tier's predict pot plus
// any rollover; with no winners the whole amount rolls over.
func (uc *SettlementUseCase) resolvePredictions(ctx context.Context, lockedPrice decimal.Decimal, now time.Time) ([]*domain.SettlementSummary, error) {
	mature, err := uc.predictionRepo.ListMatureUnresolved(ctx, now.Add(-uc.eco.PredictionMaturity))
	if err != nil {
		return nil, err
	}

	byTier := make(map[string][]*domain.Prediction)
	for _, p := range mature {
		byTier[p.TierName] = append(byTier[p.TierName], p)
	}

	var summaries []*domain.SettlementSummary

	for _, tierName := range uc.eco.TierNames() {
		summary, err := uc.settlePredictPot(ctx, tierName, byTier[tierName], lockedPrice, now)
		if err != nil {
			return summaries, err
		}
		if summary != nil {
			summaries = append(summaries, summary)
		}
	}

	return summaries, nil
}

func (uc *SettlementUseCase) settlePredictPot(
	ctx context.Context,
	tierName string,
	predictions []*domain.Prediction,
	lockedPrice decimal.Decimal,
	now time.Time,
) (*domain.SettlementSummary, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	pot, err := uc.potRepo.GetForUpdate(ctx, tx, tierName, domain.GamePredict)
	if err != nil {
		return nil, err
	}

	if len(predictions) == 0 && pot.Balance.IsZero() {
		return nil, nil
	}

	dailyAllocation := pot.Balance
	previousRollover := pot.Rollover
	available := pot.Balance.Add(pot.Rollover)

	var winners []*domain.Prediction
	for _, p := range predictions {
		p.Resolve(lockedPrice, now)
		if p.Won {
			winners = append(winners, p)
		}
	}

	share := decimal.Zero
	paid := decimal.Zero

	if len(winners) > 0 && available.IsPositive() {
		share = available.Div(decimal.NewFromInt(int64(len(winners)))).RoundDown(domain.MoneyPlaces)
		paid = share.Mul(decimal.NewFromInt(int64(len(winners))))

		if err := uc.payPredictionWinners(ctx, tx, winners, share, now); err != nil {
			return nil, err
		}
	}

	// With no winners the whole pot rolls over; rounding residue rolls
	// over too.
	pot.Balance = decimal.Zero
	pot.Rollover = available.Sub(paid)
	pot.UpdatedAt = now

	if err := uc.potRepo.Update(ctx, tx, pot); err != nil {
		return nil, err
	}

	for _, p := range predictions {
		if err := uc.predictionRepo.MarkResolved(ctx, tx, p); err != nil {
			return nil, err
		}
	}

	summary := &domain.SettlementSummary{
		ID:              uc.idGen.Generate(),
		CycleDate:       now.UTC().Truncate(24 * time.Hour),
		TierName:        tierName,
		Game:            domain.GamePredict,
		ActiveUsers:     len(predictions),
		DailyAllocation: dailyAllocation,
		Rollover:        previousRollover,
		TotalPot:        available,
		WinnersCount:    len(winners),
		SharePerWinner:  share,
		NewRollover:     pot.Rollover,
		CreatedAt:       now,
	}

	if err := uc.summaryRepo.Create(ctx, tx, summary); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return summary, nil
}

func (uc *SettlementUseCase) payPredictionWinners(ctx context.Context, tx Transaction, winners []*domain.Prediction, share decimal.Decimal, now time.Time) error {
	ids := make([]string, 0, len(winners))
	seen := make(map[string]bool, len(winners))
	for _, p := range winners {
		p.PayoutAmount = share
		if !seen[p.UserID] {
			seen[p.UserID] = true
			ids = append(ids, p.UserID)
		}
	}
	sort.Strings(ids)

	users, err := uc.userRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return err
	}

	byID := make(map[string]*domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	for _, p := range winners {
		user := byID[p.UserID]
		if user == nil {
			return domain.ErrUserNotFound
		}

		before := user.UsdtBalance
		user.UsdtBalance = before.Add(share)

		entry := &domain.LedgerEntry{
			UserID:        user.ID,
			EntryType:     domain.EntryPredictWin,
			Direction:     domain.DirectionCredit,
			Amount:        share,
			Currency:      domain.CurrencyUSDT,
			BalanceBefore: before,
			BalanceAfter:  user.UsdtBalance,
			Game:          string(domain.GamePredict),
			RefID:         p.ID,
			TierAtTime:    user.TierName,
			CreatedAt:     now,
		}
		if err := uc.ledger.Append(ctx, tx, entry); err != nil {
			return err
		}
	}

	for _, u := range users {
		if err := uc.userRepo.Update(ctx, tx, u); err != nil {
			return err
		}
	}

	return nil
}

// ListSummaries returns the summaries recorded for a cycle date.
func (uc *SettlementUseCase) ListSummaries(ctx context.Context, cycleDate time.Time) ([]*domain.SettlementSummary, error) {
	return uc.summaryRepo.ListByCycle(ctx, cycleDate.UTC().Truncate(24*time.Hour))
}
