package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pravino/tapcore/internal/domain"
)

func TestClassForDraw(t *testing.T) {
	tests := []struct {
		draw int
		want domain.PrizeClass
	}{
		{1, domain.PrizeJackpot},
		{5, domain.PrizeJackpot},
		{6, domain.PrizeBig},
		{205, domain.PrizeBig},
		{206, domain.PrizeSmall},
		{2205, domain.PrizeSmall},
		{2206, domain.PrizeNoCash},
		{domain.SpinDrawMax, domain.PrizeNoCash},
	}

	for _, tt := range tests {
		if got := domain.ClassForDraw(tt.draw); got != tt.want {
			t.Errorf("ClassForDraw(%d) = %s, want %s", tt.draw, got, tt.want)
		}
	}
}

func TestNextCheaper_TerminatesAtNoCash(t *testing.T) {
	c := domain.PrizeJackpot
	for i := 0; i < 5; i++ {
		c = domain.NextCheaper(c)
	}

	assert.Equal(t, domain.PrizeNoCash, c)
}

func TestPickCoinPrize_CoversFullWeightRange(t *testing.T) {
	total := domain.TotalWeight(domain.DefaultCoinPrizes)
	assert.Equal(t, 100, total)

	// Every draw in range maps to some slice; boundary draws map to
	// the expected slices.
	assert.Equal(t, int64(100), domain.PickCoinPrize(domain.DefaultCoinPrizes, 0).Coins)
	assert.Equal(t, int64(100), domain.PickCoinPrize(domain.DefaultCoinPrizes, 39).Coins)
	assert.Equal(t, int64(250), domain.PickCoinPrize(domain.DefaultCoinPrizes, 40).Coins)
	assert.Equal(t, int64(500), domain.PickCoinPrize(domain.DefaultCoinPrizes, 70).Coins)
	assert.Equal(t, int64(1000), domain.PickCoinPrize(domain.DefaultCoinPrizes, 99).Coins)
}

func TestCashPrizeTable_Amount(t *testing.T) {
	table := domain.CashPrizeTable{Jackpot: d("50"), Big: d("5"), Small: d("0.5")}

	assert.True(t, table.Amount(domain.PrizeJackpot).Equal(d("50")))
	assert.True(t, table.Amount(domain.PrizeBig).Equal(d("5")))
	assert.True(t, table.Amount(domain.PrizeSmall).Equal(d("0.5")))
	assert.True(t, table.Amount(domain.PrizeNoCash).IsZero())
}
