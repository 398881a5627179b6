package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// User carries the live balance fields mutated by the settlement
// subsystem. The ledger remains the source of truth for history; every
// mutation of these fields is paired with a ledger write in the same
// database transaction.
type User struct {
	ID                string
	TierName          string
	TierExpiresAt     *time.Time
	Founder           bool
	Coins             int64
	PeriodCoins       int64
	LifetimeCoins     int64
	UsdtBalance       decimal.Decimal
	SpinTickets       int
	SpinTicketsExpiry *time.Time
	FreeSpinsMonth    string
	FreeSpinsUsed     int
	ReferrerID        *string
	ReferralRewarded  bool
	LeagueName        string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// HasActiveSubscription reports whether the user is on a paid tier that
// has not lapsed.
func (u *User) HasActiveSubscription(now time.Time) bool {
	if u.TierName == "" || u.TierName == TierFree {
		return false
	}

	return u.TierExpiresAt != nil && u.TierExpiresAt.After(now)
}

// EffectiveTier returns the tier used for gating spins and settlement.
// A lapsed subscription degrades to FREE.
func (u *User) EffectiveTier(now time.Time) string {
	if u.HasActiveSubscription(now) {
		return u.TierName
	}

	return TierFree
}

// League recomputes the user's league from lifetime earnings.
func (u *User) League() League {
	return LeagueForCoins(u.LifetimeCoins)
}
