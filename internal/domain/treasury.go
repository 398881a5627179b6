package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DripType controls how an allocation reaches its pool.
type DripType string

const (
	DripDaily   DripType = "daily"
	DripInstant DripType = "instant"
)

// MoneyPlaces is the fixed decimal precision for USDT amounts.
const MoneyPlaces = 4

// Transaction is one confirmed subscription payment. The external
// transaction hash is the idempotency key; a hash is processed at most
// once.
type Transaction struct {
	ID             string
	UserID         string
	TxHash         string
	TierName       string
	TotalAmount    decimal.Decimal
	AdminAmount    decimal.Decimal
	TreasuryAmount decimal.Decimal
	ReferralAmount decimal.Decimal
	CreatedAt      time.Time
}

// PoolAllocation is a per (tier, game) child of a Transaction. Daily
// allocations drip dailyAmount per calendar day over TotalDays; instant
// ones are credited to the tier vault at creation.
type PoolAllocation struct {
	ID             string
	TransactionID  string
	TierName       string
	Game           Game
	DripType       DripType
	TotalAmount    decimal.Decimal
	DailyAmount    decimal.Decimal
	TotalDays      int
	DaysReleased   int
	AmountReleased decimal.Decimal
	DepositDate    time.Time
	ExpiryDate     time.Time
	Active         bool
}

// ReleasableDays returns how many new drip days are due at now,
// clamped to the allocation window. Zero means nothing to release
// today (idempotent per calendar day).
func (a *PoolAllocation) ReleasableDays(now time.Time) int {
	if !a.Active || a.DripType != DripDaily {
		return 0
	}

	elapsed := daysBetween(a.DepositDate, now)
	if elapsed > a.TotalDays {
		elapsed = a.TotalDays
	}

	due := elapsed - a.DaysReleased
	if due < 0 {
		return 0
	}

	return due
}

// ReleaseAmount is the drip amount for the given number of new days.
// The final drip day releases the whole remainder so the sum of daily
// releases over the full window equals TotalAmount exactly.
func (a *PoolAllocation) ReleaseAmount(newDays int) decimal.Decimal {
	remaining := a.TotalAmount.Sub(a.AmountReleased)

	if a.DaysReleased+newDays >= a.TotalDays {
		return remaining
	}

	amount := a.DailyAmount.Mul(decimal.NewFromInt(int64(newDays)))
	if amount.GreaterThan(remaining) {
		amount = remaining
	}

	return amount
}

// UnreleasedRemainder is what recapture claims when the allocation
// expires before dripping out fully.
func (a *PoolAllocation) UnreleasedRemainder() decimal.Decimal {
	return a.TotalAmount.Sub(a.AmountReleased)
}

// Exhausted reports whether the allocation has dripped its full amount.
func (a *PoolAllocation) Exhausted() bool {
	return a.DaysReleased >= a.TotalDays || a.AmountReleased.GreaterThanOrEqual(a.TotalAmount)
}

// UnclaimedFunds records drip money recaptured to admin when an
// allocation expired with an unreleased remainder.
type UnclaimedFunds struct {
	ID           string
	AllocationID string
	TierName     string
	Game         Game
	Amount       decimal.Decimal
	Reason       string
	CreatedAt    time.Time
}

// SplitPayment divides a verified payment into admin and treasury
// shares and carves the one-time referral reward out of treasury,
// bounded so treasury cannot go negative. admin + treasury + referral
// always equals amount exactly.
func SplitPayment(amount, adminSplit, treasurySplit, referralReward decimal.Decimal, referred bool) (admin, treasury, referral decimal.Decimal) {
	admin = amount.Mul(adminSplit).Round(MoneyPlaces)
	treasury = amount.Sub(admin)

	referral = decimal.Zero
	if referred {
		referral = referralReward
		if referral.GreaterThan(treasury) {
			referral = treasury
		}
		treasury = treasury.Sub(referral)
	}

	return admin, treasury, referral
}

// SplitTreasury divides the net treasury share into per-game pool
// amounts. The wheel share absorbs the rounding residue so the three
// pools always sum to treasury exactly.
func SplitTreasury(treasury, tapShare, predictShare decimal.Decimal) (tap, predict, wheel decimal.Decimal) {
	tap = treasury.Mul(tapShare).Round(MoneyPlaces)
	predict = treasury.Mul(predictShare).Round(MoneyPlaces)
	wheel = treasury.Sub(tap).Sub(predict)

	return tap, predict, wheel
}

// DailyDripAmount is totalAmount spread over days, truncated to money
// precision. The final drip day picks up the truncation remainder via
// the ReleaseAmount cap.
func DailyDripAmount(total decimal.Decimal, days int) decimal.Decimal {
	if days <= 0 {
		return decimal.Zero
	}

	return total.DivRound(decimal.NewFromInt(int64(days)), MoneyPlaces)
}

// daysBetween counts whole calendar days from a to b in UTC.
func daysBetween(a, b time.Time) int {
	a = a.UTC().Truncate(24 * time.Hour)
	b = b.UTC().Truncate(24 * time.Hour)

	return int(b.Sub(a) / (24 * time.Hour))
}
