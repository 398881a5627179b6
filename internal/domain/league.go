package domain

import "github.com/shopspring/decimal"

// League is a lifetime-earnings bucket used to weight settlement
// payouts. It is derived, never stored as its own aggregate.
type League struct {
	Name       string
	MinCoins   int64
	Multiplier decimal.Decimal
}

// Leagues ordered by ascending threshold. LeagueForCoins depends on
// this ordering.
var Leagues = []League{
	{Name: "WOOD", MinCoins: 0, Multiplier: decimal.NewFromFloat(1.0)},
	{Name: "BRONZE", MinCoins: 10_000, Multiplier: decimal.NewFromFloat(1.1)},
	{Name: "SILVER", MinCoins: 100_000, Multiplier: decimal.NewFromFloat(1.25)},
	{Name: "GOLD", MinCoins: 1_000_000, Multiplier: decimal.NewFromFloat(1.5)},
	{Name: "DIAMOND", MinCoins: 10_000_000, Multiplier: decimal.NewFromFloat(2.0)},
}

// LeagueForCoins maps a lifetime coin total to its league.
func LeagueForCoins(lifetimeCoins int64) League {
	current := Leagues[0]
	for _, l := range Leagues[1:] {
		if lifetimeCoins < l.MinCoins {
			break
		}
		current = l
	}

	return current
}
