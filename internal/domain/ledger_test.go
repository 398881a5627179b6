package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pravino/tapcore/internal/domain"
)

func makeEntry(id, prevHash string, amount string) *domain.LedgerEntry {
	e := &domain.LedgerEntry{
		ID:            id,
		UserID:        "user-1",
		EntryType:     domain.EntryTapEarn,
		Direction:     domain.DirectionCredit,
		Amount:        decimal.RequireFromString(amount),
		Currency:      domain.CurrencyUSDT,
		BalanceBefore: decimal.Zero,
		BalanceAfter:  decimal.RequireFromString(amount),
		PrevHash:      prevHash,
		CreatedAt:     time.Now().UTC(),
	}
	e.EntryHash = e.ComputeHash()

	return e
}

func TestLedgerEntry_ComputeHash_Deterministic(t *testing.T) {
	e := makeEntry("01A", domain.GenesisHash, "1.5")

	if e.ComputeHash() != e.EntryHash {
		t.Error("hash changed between computations")
	}

	if len(e.EntryHash) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(e.EntryHash))
	}
}

func TestLedgerEntry_HashCoversFinancialFields(t *testing.T) {
	base := makeEntry("01A", domain.GenesisHash, "1.5")

	tests := []struct {
		name   string
		mutate func(e *domain.LedgerEntry)
	}{
		{"amount", func(e *domain.LedgerEntry) { e.Amount = decimal.NewFromInt(99) }},
		{"user", func(e *domain.LedgerEntry) { e.UserID = "user-2" }},
		{"direction", func(e *domain.LedgerEntry) { e.Direction = domain.DirectionDebit }},
		{"balance_after", func(e *domain.LedgerEntry) { e.BalanceAfter = decimal.NewFromInt(7) }},
		{"prev_hash", func(e *domain.LedgerEntry) { e.PrevHash = "deadbeef" }},
		{"entry_type", func(e *domain.LedgerEntry) { e.EntryType = domain.EntryWheelWin }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := *base
			tt.mutate(&e)

			if e.ComputeHash() == base.EntryHash {
				t.Errorf("mutating %s did not change the hash", tt.name)
			}
		})
	}
}

func TestLedgerEntry_Verify(t *testing.T) {
	first := makeEntry("01A", domain.GenesisHash, "1.5")
	second := makeEntry("01B", first.EntryHash, "2.5")

	if err := first.Verify(domain.GenesisHash); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := second.Verify(first.EntryHash); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	// Linkage break
	if err := second.Verify("wrong"); err != domain.ErrChainBroken {
		t.Errorf("expected ErrChainBroken, got %v", err)
	}

	// Tampered amount
	tampered := *second
	tampered.Amount = decimal.NewFromInt(1000)
	if err := tampered.Verify(first.EntryHash); err != domain.ErrChainBroken {
		t.Errorf("expected ErrChainBroken for tampered entry, got %v", err)
	}
}
