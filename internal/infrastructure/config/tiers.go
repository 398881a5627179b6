package config

import (
	"github.com/shopspring/decimal"

	"github.com/pravino/tapcore/internal/domain"
)

// Tiers builds the paid tier catalogue from configuration.
func (c *Config) Tiers() map[string]domain.Tier {
	return map[string]domain.Tier{
		"BRONZE": {Name: "BRONZE", PriceUSDT: c.BronzePrice, SpinTickets: c.BronzeTickets, FounderSlots: c.FounderSlots},
		"SILVER": {Name: "SILVER", PriceUSDT: c.SilverPrice, SpinTickets: c.SilverTickets, FounderSlots: c.FounderSlots},
		"GOLD":   {Name: "GOLD", PriceUSDT: c.GoldPrice, SpinTickets: c.GoldTickets, FounderSlots: c.FounderSlots},
	}
}

// CashPrizes derives the wheel prize table for a tier from its price:
// jackpot 10x, big 1x, small 0.1x.
func (c *Config) CashPrizes(tier domain.Tier) domain.CashPrizeTable {
	ten := decimal.NewFromInt(10)

	return domain.CashPrizeTable{
		Jackpot: tier.PriceUSDT.Mul(ten),
		Big:     tier.PriceUSDT,
		Small:   tier.PriceUSDT.Div(ten),
	}
}
