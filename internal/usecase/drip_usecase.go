package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pravino/tapcore/internal/domain"
)

// DripUseCase runs the daily release of pool allocations, expiry
// recapture and spin ticket expiry.
type DripUseCase struct {
	txManager    TransactionManager
	userRepo     UserRepository
	treasuryRepo TreasuryRepository
	potRepo      PotRepository
	ledger       *LedgerUseCase
	idGen        IDGenerator
}

// NewDripUseCase creates a new DripUseCase.
func NewDripUseCase(
	txManager TransactionManager,
	userRepo UserRepository,
	treasuryRepo TreasuryRepository,
	potRepo PotRepository,
	ledger *LedgerUseCase,
	idGen IDGenerator,
) *DripUseCase {
	return &DripUseCase{
		txManager:    txManager,
		userRepo:     userRepo,
		treasuryRepo: treasuryRepo,
		potRepo:      potRepo,
		ledger:       ledger,
		idGen:        idGen,
	}
}

// DripReport summarizes one drip run.
type DripReport struct {
	Allocations int
	Released    decimal.Decimal
}

// RunDailyDrip moves each active daily allocation's due amount into
// its (tier, game) pot. Days are counted per calendar day, so running
// twice on the same day releases nothing the second time, and a run
// after missed days catches up in one step. Each allocation commits in
// its own transaction so one failure does not hold back the rest.
func (uc *DripUseCase) RunDailyDrip(ctx context.Context, now time.Time) (*DripReport, error) {
	allocations, err := uc.treasuryRepo.ListReleasable(ctx, now)
	if err != nil {
		return nil, err
	}

	report := &DripReport{Released: decimal.Zero}

	for _, a := range allocations {
		days := a.ReleasableDays(now)
		if days == 0 {
			continue
		}

		amount := a.ReleaseAmount(days)
		if err := uc.release(ctx, a, days, amount, now); err != nil {
			return report, err
		}

		report.Allocations++
		report.Released = report.Released.Add(amount)
	}

	return report, nil
}

func (uc *DripUseCase) release(ctx context.Context, a *domain.PoolAllocation, days int, amount decimal.Decimal, now time.Time) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	pot, err := uc.potRepo.GetForUpdate(ctx, tx, a.TierName, a.Game)
	if err != nil {
		return err
	}

	pot.Balance = pot.Balance.Add(amount)
	pot.UpdatedAt = now

	if err := uc.potRepo.Update(ctx, tx, pot); err != nil {
		return err
	}

	released := a.DaysReleased + days
	if err := uc.treasuryRepo.UpdateAllocationRelease(ctx, tx, a.ID, released, a.AmountReleased.Add(amount)); err != nil {
		return err
	}

	if released >= a.TotalDays {
		if err := uc.treasuryRepo.DeactivateAllocation(ctx, tx, a.ID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ExpiryReport summarizes one expiry run.
type ExpiryReport struct {
	Expired    int
	Recaptured decimal.Decimal
}

// ExpireAllocations deactivates allocations past their expiry date.
// Daily allocations that still hold an unreleased remainder have it
// recaptured to admin as unclaimed funds; already released money stays
// where it was dripped.
func (uc *DripUseCase) ExpireAllocations(ctx context.Context, now time.Time) (*ExpiryReport, error) {
	allocations, err := uc.treasuryRepo.ListExpired(ctx, now)
	if err != nil {
		return nil, err
	}

	report := &ExpiryReport{Recaptured: decimal.Zero}

	for _, a := range allocations {
		if err := uc.expire(ctx, a, now, report); err != nil {
			return report, err
		}
	}

	return report, nil
}

func (uc *DripUseCase) expire(ctx context.Context, a *domain.PoolAllocation, now time.Time, report *ExpiryReport) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	remainder := a.UnreleasedRemainder()
	if a.DripType == domain.DripDaily && remainder.IsPositive() {
		unclaimed := &domain.UnclaimedFunds{
			ID:           uc.idGen.Generate(),
			AllocationID: a.ID,
			TierName:     a.TierName,
			Game:         a.Game,
			Amount:       remainder,
			Reason:       "allocation expired before full release",
			CreatedAt:    now,
		}
		if err := uc.treasuryRepo.CreateUnclaimed(ctx, tx, unclaimed); err != nil {
			return err
		}

		report.Recaptured = report.Recaptured.Add(remainder)
	}

	if err := uc.treasuryRepo.DeactivateAllocation(ctx, tx, a.ID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	report.Expired++

	return nil
}

// ExpiringTiers lists subscribers whose paid tier lapses within the
// warning window, so the notification sweep can nudge them to renew.
func (uc *DripUseCase) ExpiringTiers(ctx context.Context, now time.Time, window time.Duration) ([]*domain.User, error) {
	return uc.userRepo.ListExpiringTiers(ctx, now, now.Add(window))
}

// ExpireTickets zeroes spin tickets whose expiry has passed, with a
// ledger entry per user. Returns the number of users touched.
func (uc *DripUseCase) ExpireTickets(ctx context.Context, now time.Time) (int, error) {
	users, err := uc.userRepo.ListWithExpiredTickets(ctx, now)
	if err != nil {
		return 0, err
	}

	expired := 0

	for _, candidate := range users {
		touched, err := uc.expireTicketsFor(ctx, candidate.ID, now)
		if err != nil {
			return expired, err
		}
		if touched {
			expired++
		}
	}

	return expired, nil
}

func (uc *DripUseCase) expireTicketsFor(ctx context.Context, userID string, now time.Time) (bool, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	user, err := uc.userRepo.GetByIDForUpdate(ctx, tx, userID)
	if err != nil {
		return false, err
	}

	// Re-check under lock; a concurrent spin or grant may have moved
	// the expiry.
	if user.SpinTickets <= 0 || user.SpinTicketsExpiry == nil || user.SpinTicketsExpiry.After(now) {
		return false, nil
	}

	before := user.SpinTickets
	user.SpinTickets = 0
	user.SpinTicketsExpiry = nil

	entry := &domain.LedgerEntry{
		UserID:        user.ID,
		EntryType:     domain.EntrySpinTicketExpire,
		Direction:     domain.DirectionDebit,
		Amount:        decimal.NewFromInt(int64(before)),
		Currency:      domain.CurrencyTickets,
		BalanceBefore: decimal.NewFromInt(int64(before)),
		BalanceAfter:  decimal.Zero,
		TierAtTime:    user.TierName,
		CreatedAt:     now,
	}
	if err := uc.ledger.Append(ctx, tx, entry); err != nil {
		return false, err
	}

	if err := uc.userRepo.Update(ctx, tx, user); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}

	return true, nil
}
