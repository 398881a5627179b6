package usecase

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pravino/tapcore/internal/domain"
)

// Economics bundles every tunable the settlement subsystem runs on.
// Values arrive validated from configuration; use cases treat them as
// constants for the life of the process.
type Economics struct {
	AdminSplit    decimal.Decimal
	TreasurySplit decimal.Decimal
	TapShare      decimal.Decimal
	PredictShare  decimal.Decimal

	ReferralReward decimal.Decimal
	PriceEpsilon   decimal.Decimal

	DripDays         int
	SubscriptionDays int
	TicketExpiryDays int

	FreeSpinsPerMonth int

	WithdrawalMin      decimal.Decimal
	WithdrawalFee      decimal.Decimal
	AuditDelay         time.Duration
	FlagScoreThreshold int

	PredictionMaturity time.Duration
	OracleMaxAttempts  int

	Tiers      map[string]domain.Tier
	Prizes     map[string]domain.CashPrizeTable
	CoinPrizes []domain.CoinPrize
}

// TierNames returns the catalogue's tier names in a stable order.
func (e Economics) TierNames() []string {
	names := make([]string, 0, len(e.Tiers))
	for name := range e.Tiers {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
