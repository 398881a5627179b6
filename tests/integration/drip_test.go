package integration

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pravino/tapcore/internal/domain"
	"github.com/pravino/tapcore/internal/usecase"
	"github.com/pravino/tapcore/tests/testutil"
)

func TestDripCycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	e := newEnv(t, stubRand{0})

	t.Run("daily drip releases into the pots exactly once per day", func(t *testing.T) {
		e.db.TruncateAll(ctx)

		user := e.db.CreateTestUser(ctx, decimal.Zero)

		_, err := e.treasuryUC.ProcessPayment(ctx, usecase.ProcessPaymentInput{
			UserID:   user.ID,
			TxHash:   "0x" + testutil.GenerateID(),
			TierName: "BRONZE",
			Amount:   decimal.NewFromInt(5),
		})
		if err != nil {
			t.Fatalf("payment failed: %v", err)
		}

		nextDay := time.Now().UTC().AddDate(0, 0, 1)

		report, err := e.dripUC.RunDailyDrip(ctx, nextDay)
		if err != nil {
			t.Fatalf("drip failed: %v", err)
		}

		// Tap and predict drip; the wheel share went to the vault at
		// payment time
		if report.Allocations != 2 {
			t.Errorf("expected 2 allocations released, got %d", report.Allocations)
		}
		if !report.Released.Equal(decimal.NewFromFloat(0.08)) {
			t.Errorf("expected 0.08 released, got %s", report.Released)
		}

		tapPot, err := e.potRepo.Get(ctx, "BRONZE", domain.GameTap)
		if err != nil {
			t.Fatalf("failed to load tap pot: %v", err)
		}
		if !tapPot.Balance.Equal(decimal.NewFromFloat(0.05)) {
			t.Errorf("expected tap pot 0.05, got %s", tapPot.Balance)
		}

		predictPot, err := e.potRepo.Get(ctx, "BRONZE", domain.GamePredict)
		if err != nil {
			t.Fatalf("failed to load predict pot: %v", err)
		}
		if !predictPot.Balance.Equal(decimal.NewFromFloat(0.03)) {
			t.Errorf("expected predict pot 0.03, got %s", predictPot.Balance)
		}

		// Re-running within the same calendar day releases nothing
		report, err = e.dripUC.RunDailyDrip(ctx, nextDay)
		if err != nil {
			t.Fatalf("second drip failed: %v", err)
		}
		if report.Allocations != 0 || !report.Released.IsZero() {
			t.Errorf("expected idempotent re-run, got %d allocations / %s", report.Allocations, report.Released)
		}
	})

	t.Run("expiry recaptures the undripped remainder", func(t *testing.T) {
		e.db.TruncateAll(ctx)

		user := e.db.CreateTestUser(ctx, decimal.Zero)

		_, err := e.treasuryUC.ProcessPayment(ctx, usecase.ProcessPaymentInput{
			UserID:   user.ID,
			TxHash:   "0x" + testutil.GenerateID(),
			TierName: "BRONZE",
			Amount:   decimal.NewFromInt(5),
		})
		if err != nil {
			t.Fatalf("payment failed: %v", err)
		}

		// One day drips, then the window closes
		if _, err := e.dripUC.RunDailyDrip(ctx, time.Now().UTC().AddDate(0, 0, 1)); err != nil {
			t.Fatalf("drip failed: %v", err)
		}

		report, err := e.dripUC.ExpireAllocations(ctx, time.Now().UTC().AddDate(0, 0, 31))
		if err != nil {
			t.Fatalf("expiry failed: %v", err)
		}

		if report.Expired != 3 {
			t.Errorf("expected 3 expired allocations, got %d", report.Expired)
		}

		// tap 1.5 - 0.05 and predict 0.9 - 0.03; the instant wheel
		// share was fully released
		if !report.Recaptured.Equal(decimal.NewFromFloat(2.32)) {
			t.Errorf("expected 2.32 recaptured, got %s", report.Recaptured)
		}
	})

	t.Run("expired tickets are swept with a ledger record", func(t *testing.T) {
		e.db.TruncateAll(ctx)

		user := e.db.CreateTestSubscriber(ctx, "BRONZE", 5, decimal.Zero)

		expired, err := e.dripUC.ExpireTickets(ctx, time.Now().UTC().AddDate(0, 0, 31))
		if err != nil {
			t.Fatalf("ticket expiry failed: %v", err)
		}
		if expired != 1 {
			t.Fatalf("expected 1 user swept, got %d", expired)
		}

		updated, _ := e.userRepo.GetByID(ctx, user.ID)
		if updated.SpinTickets != 0 {
			t.Errorf("expected 0 tickets, got %d", updated.SpinTickets)
		}
		if updated.SpinTicketsExpiry != nil {
			t.Error("expected cleared ticket expiry")
		}

		entries, err := e.ledgerUC.ListEntries(ctx, usecase.ListEntriesInput{UserID: user.ID, Limit: 10})
		if err != nil {
			t.Fatalf("failed to list entries: %v", err)
		}
		if len(entries) != 1 || entries[0].EntryType != domain.EntrySpinTicketExpire {
			t.Fatalf("expected one ticket expiry entry, got %+v", entries)
		}
	})
}
