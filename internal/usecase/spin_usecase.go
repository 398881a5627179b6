package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pravino/tapcore/internal/domain"
)

// SpinUseCase runs the wheel. The whole spin is one transaction: the
// spend, the draw, the vault debit and the payout commit or roll back
// together.
type SpinUseCase struct {
	txManager TransactionManager
	userRepo  UserRepository
	vaultRepo VaultRepository
	spinRepo  SpinRepository
	ledger    *LedgerUseCase
	idGen     IDGenerator
	rng       Rand
	eco       Economics
}

// NewSpinUseCase creates a new SpinUseCase.
func NewSpinUseCase(
	txManager TransactionManager,
	userRepo UserRepository,
	vaultRepo VaultRepository,
	spinRepo SpinRepository,
	ledger *LedgerUseCase,
	idGen IDGenerator,
	rng Rand,
	eco Economics,
) *SpinUseCase {
	return &SpinUseCase{
		txManager: txManager,
		userRepo:  userRepo,
		vaultRepo: vaultRepo,
		spinRepo:  spinRepo,
		ledger:    ledger,
		idGen:     idGen,
		rng:       rng,
		eco:       eco,
	}
}

// Spin performs one spin for the user. Paid tiers spend a ticket and
// draw against their tier's vault; free users spend one of the
// month's free spins and can never win cash, only the locked coin
// prize or the coin table.
func (uc *SpinUseCase) Spin(ctx context.Context, userID string) (*domain.SpinOutcome, error) {
	now := time.Now().UTC()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	user, err := uc.userRepo.GetByIDForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	tierName := user.EffectiveTier(now)
	paidTier := tierName != domain.TierFree

	if paidTier {
		if err := uc.spendTicket(ctx, tx, user, now); err != nil {
			return nil, err
		}
	} else if err := uc.spendFreeSpin(user, now); err != nil {
		return nil, err
	}

	draw := uc.rng.IntN(domain.SpinDrawMax) + 1
	drawn := domain.ClassForDraw(draw)

	outcome := &domain.SpinOutcome{
		ID:         uc.idGen.Generate(),
		UserID:     user.ID,
		TierName:   tierName,
		MonthKey:   domain.VaultMonthKey(now),
		Draw:       draw,
		DrawnClass: drawn,
		PaidClass:  drawn,
		CashAmount: decimal.Zero,
		CreatedAt:  now,
	}

	switch {
	case drawn == domain.PrizeNoCash:
		err = uc.payCoins(ctx, tx, user, outcome, now)
	case paidTier:
		err = uc.payCash(ctx, tx, user, outcome, now)
	default:
		err = uc.payLocked(ctx, tx, user, outcome, now)
	}
	if err != nil {
		return nil, err
	}

	if err := uc.spinRepo.CreateOutcome(ctx, tx, outcome); err != nil {
		return nil, err
	}

	if err := uc.userRepo.Update(ctx, tx, user); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return outcome, nil
}

func (uc *SpinUseCase) spendTicket(ctx context.Context, tx Transaction, user *domain.User, now time.Time) error {
	if user.SpinTickets <= 0 {
		return domain.ErrNoSpinAvailable
	}

	// Expired but not yet swept tickets are unusable.
	if user.SpinTicketsExpiry != nil && !user.SpinTicketsExpiry.After(now) {
		return domain.ErrNoSpinAvailable
	}

	before := user.SpinTickets
	user.SpinTickets--

	entry := &domain.LedgerEntry{
		UserID:        user.ID,
		EntryType:     domain.EntrySpinTicketUse,
		Direction:     domain.DirectionDebit,
		Amount:        decimal.NewFromInt(1),
		Currency:      domain.CurrencyTickets,
		BalanceBefore: decimal.NewFromInt(int64(before)),
		BalanceAfter:  decimal.NewFromInt(int64(user.SpinTickets)),
		Game:          string(domain.GameWheel),
		TierAtTime:    user.TierName,
		CreatedAt:     now,
	}

	return uc.ledger.Append(ctx, tx, entry)
}

func (uc *SpinUseCase) spendFreeSpin(user *domain.User, now time.Time) error {
	month := domain.VaultMonthKey(now)
	if user.FreeSpinsMonth != month {
		user.FreeSpinsMonth = month
		user.FreeSpinsUsed = 0
	}

	if user.FreeSpinsUsed >= uc.eco.FreeSpinsPerMonth {
		return domain.ErrNoSpinAvailable
	}

	user.FreeSpinsUsed++

	return nil
}

// payCash walks the affordability ladder against the tier's month
// vault and pays the first class it can cover. A vault that cannot
// afford even the small prize degrades the spin to the coin table.
func (uc *SpinUseCase) payCash(ctx context.Context, tx Transaction, user *domain.User, outcome *domain.SpinOutcome, now time.Time) error {
	table, ok := uc.eco.Prizes[outcome.TierName]
	if !ok {
		return domain.ErrUnknownTier
	}

	vault, err := uc.vaultRepo.GetOrCreateForUpdate(ctx, tx, outcome.TierName, outcome.MonthKey)
	if err != nil {
		return err
	}

	class := outcome.DrawnClass
	for class != domain.PrizeNoCash && !vault.CanAfford(table.Amount(class)) {
		class = domain.NextCheaper(class)
	}

	outcome.PaidClass = class

	if class == domain.PrizeNoCash {
		return uc.payCoins(ctx, tx, user, outcome, now)
	}

	amount := table.Amount(class)

	newBalance, err := vault.ApplyDebit(amount)
	if err != nil {
		return err
	}

	if err := uc.vaultRepo.UpdateBalance(ctx, tx, vault.ID, newBalance, now); err != nil {
		return err
	}

	before := user.UsdtBalance
	user.UsdtBalance = before.Add(amount)
	outcome.CashAmount = amount

	entry := &domain.LedgerEntry{
		UserID:        user.ID,
		EntryType:     domain.EntryWheelWin,
		Direction:     domain.DirectionCredit,
		Amount:        amount,
		Currency:      domain.CurrencyUSDT,
		BalanceBefore: before,
		BalanceAfter:  user.UsdtBalance,
		Game:          string(domain.GameWheel),
		RefID:         outcome.ID,
		TierAtTime:    user.TierName,
		CreatedAt:     now,
	}

	return uc.ledger.Append(ctx, tx, entry)
}

// payLocked substitutes the fixed coin reward when a free user draws a
// cash class. The drawn class is preserved on the outcome.
func (uc *SpinUseCase) payLocked(ctx context.Context, tx Transaction, user *domain.User, outcome *domain.SpinOutcome, now time.Time) error {
	outcome.Locked = true
	outcome.CoinAmount = LockedPrizeCoins

	return uc.creditCoins(ctx, tx, user, domain.EntryLockedPrize, LockedPrizeCoins, outcome.ID, now)
}

func (uc *SpinUseCase) payCoins(ctx context.Context, tx Transaction, user *domain.User, outcome *domain.SpinOutcome, now time.Time) error {
	prize := domain.PickCoinPrize(uc.eco.CoinPrizes, uc.rng.IntN(domain.TotalWeight(uc.eco.CoinPrizes)))
	outcome.CoinAmount = prize.Coins

	return uc.creditCoins(ctx, tx, user, domain.EntryWheelWin, prize.Coins, outcome.ID, now)
}

func (uc *SpinUseCase) creditCoins(ctx context.Context, tx Transaction, user *domain.User, entryType domain.EntryType, coins int64, refID string, now time.Time) error {
	before := user.Coins
	user.Coins += coins
	user.LifetimeCoins += coins
	user.LeagueName = user.League().Name

	entry := &domain.LedgerEntry{
		UserID:        user.ID,
		EntryType:     entryType,
		Direction:     domain.DirectionCredit,
		Amount:        decimal.NewFromInt(coins),
		Currency:      domain.CurrencyCoins,
		BalanceBefore: decimal.NewFromInt(before),
		BalanceAfter:  decimal.NewFromInt(user.Coins),
		Game:          string(domain.GameWheel),
		RefID:         refID,
		TierAtTime:    user.TierName,
		CreatedAt:     now,
	}

	return uc.ledger.Append(ctx, tx, entry)
}

// ListSpinsInput represents input for listing spin history.
type ListSpinsInput struct {
	UserID string
	Limit  int
	Offset int
}

// ListSpins lists a user's spin history, newest first.
func (uc *SpinUseCase) ListSpins(ctx context.Context, input ListSpinsInput) ([]*domain.SpinOutcome, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	if input.Limit > 100 {
		input.Limit = 100
	}

	return uc.spinRepo.ListByUser(ctx, input.UserID, input.Limit, input.Offset)
}
