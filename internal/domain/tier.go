package domain

import "github.com/shopspring/decimal"

// Game identifies which pool an allocation or pot belongs to.
type Game string

const (
	GameTap     Game = "tap"
	GamePredict Game = "predict"
	GameWheel   Game = "wheel"
)

// TierFree is the implicit tier of users without an active subscription.
const TierFree = "FREE"

// Tier is a paid subscription level. Prices, ticket allocations and
// founder slots come from configuration, not from this package.
type Tier struct {
	Name         string
	PriceUSDT    decimal.Decimal
	SpinTickets  int
	FounderSlots int
}
