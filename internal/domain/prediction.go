package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PredictionDirection is the user's call on the BTC price.
type PredictionDirection string

const (
	PredictHigher PredictionDirection = "higher"
	PredictLower  PredictionDirection = "lower"
)

// Prediction is a single BTC price call, resolved once it is older
// than the maturity window.
type Prediction struct {
	ID            string
	UserID        string
	TierName      string
	Direction     PredictionDirection
	PriceAtSubmit decimal.Decimal
	Resolved      bool
	Won           bool
	PayoutAmount  decimal.Decimal
	CreatedAt     time.Time
	ResolvedAt    *time.Time
}

// Resolve evaluates the prediction against the locked settlement
// price. An unchanged price wins for nobody.
func (p *Prediction) Resolve(lockedPrice decimal.Decimal, at time.Time) {
	rose := lockedPrice.GreaterThan(p.PriceAtSubmit)
	fell := lockedPrice.LessThan(p.PriceAtSubmit)

	p.Won = (p.Direction == PredictHigher && rose) || (p.Direction == PredictLower && fell)
	p.Resolved = true
	p.ResolvedAt = &at
}

// TierPot carries a tier's per-game pot balance plus the prediction
// rollover carried forward when a cycle has no winners.
type TierPot struct {
	TierName  string
	Game      Game
	Balance   decimal.Decimal
	Rollover  decimal.Decimal
	UpdatedAt time.Time
}

// SettlementSummary is the per-tier output consumed by notification
// collaborators after each settlement cycle.
type SettlementSummary struct {
	ID              string
	CycleDate       time.Time
	TierName        string
	Game            Game
	ActiveUsers     int
	DailyAllocation decimal.Decimal
	Rollover        decimal.Decimal
	TotalPot        decimal.Decimal
	WinnersCount    int
	SharePerWinner  decimal.Decimal
	NewRollover     decimal.Decimal
	CreatedAt       time.Time
}
