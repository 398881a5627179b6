package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JackpotVault is the per (tier, monthKey) cash reserve backing wheel
// prizes. It is funded only by instant-credit allocations and drained
// only by paid spins, and is never allowed below zero.
type JackpotVault struct {
	ID        string
	TierName  string
	MonthKey  string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VaultMonthKey formats the month bucket for a vault row.
func VaultMonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// CanAfford reports whether the vault can pay the given prize.
func (v *JackpotVault) CanAfford(amount decimal.Decimal) bool {
	return v.Balance.GreaterThanOrEqual(amount)
}

// ApplyDebit returns the balance after paying a prize.
func (v *JackpotVault) ApplyDebit(amount decimal.Decimal) (decimal.Decimal, error) {
	next := v.Balance.Sub(amount)
	if next.IsNegative() {
		return decimal.Zero, ErrInsufficientBalance
	}

	return next, nil
}
