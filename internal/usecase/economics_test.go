package usecase_test

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pravino/tapcore/internal/domain"
	"github.com/pravino/tapcore/internal/usecase"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// testEconomics mirrors the default configuration.
func testEconomics() usecase.Economics {
	tiers := map[string]domain.Tier{
		"BRONZE": {Name: "BRONZE", PriceUSDT: d("5"), SpinTickets: 5, FounderSlots: 100},
		"SILVER": {Name: "SILVER", PriceUSDT: d("20"), SpinTickets: 15, FounderSlots: 100},
		"GOLD":   {Name: "GOLD", PriceUSDT: d("50"), SpinTickets: 40, FounderSlots: 100},
	}

	prizes := make(map[string]domain.CashPrizeTable, len(tiers))
	for name, tier := range tiers {
		prizes[name] = domain.CashPrizeTable{
			Jackpot: tier.PriceUSDT.Mul(d("10")),
			Big:     tier.PriceUSDT,
			Small:   tier.PriceUSDT.Div(d("10")),
		}
	}

	return usecase.Economics{
		AdminSplit:         d("0.4"),
		TreasurySplit:      d("0.6"),
		TapShare:           d("0.5"),
		PredictShare:       d("0.3"),
		ReferralReward:     d("0.5"),
		PriceEpsilon:       d("0.01"),
		DripDays:           30,
		SubscriptionDays:   30,
		TicketExpiryDays:   30,
		FreeSpinsPerMonth:  3,
		WithdrawalMin:      d("10"),
		WithdrawalFee:      d("0.5"),
		AuditDelay:         24 * time.Hour,
		FlagScoreThreshold: 70,
		PredictionMaturity: 12 * time.Hour,
		OracleMaxAttempts:  3,
		Tiers:              tiers,
		Prizes:             prizes,
		CoinPrizes:         domain.DefaultCoinPrizes,
	}
}

func activeUser(id, tier string, now time.Time) *domain.User {
	expires := now.AddDate(0, 0, 20)
	return &domain.User{
		ID:            id,
		TierName:      tier,
		TierExpiresAt: &expires,
		UsdtBalance:   decimal.Zero,
		LeagueName:    "WOOD",
		CreatedAt:     now,
	}
}
