package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/pravino/tapcore/internal/domain"
	"github.com/pravino/tapcore/internal/usecase"
	"github.com/pravino/tapcore/internal/usecase/mocks"
)

const testWallet = "TQrZ8tKfjpp3WyS1iJpp1mFEyJN9KQspX9"

type withdrawalFixture struct {
	uc          *usecase.WithdrawalUseCase
	users       *mocks.MockUserRepository
	withdrawals *mocks.MockWithdrawalRepository
	ledgerRepo  *mocks.MockLedgerRepository
	gate        *mocks.MockAbuseGate
}

func newWithdrawalFixture() *withdrawalFixture {
	users := mocks.NewMockUserRepository()
	withdrawals := mocks.NewMockWithdrawalRepository()
	ledgerRepo := mocks.NewMockLedgerRepository()
	idGen := mocks.NewMockIDGenerator()
	ledger := usecase.NewLedgerUseCase(ledgerRepo, idGen)
	gate := &mocks.MockAbuseGate{}

	uc := usecase.NewWithdrawalUseCase(
		mocks.NewMockTransactionManager(), users, withdrawals, ledger, idGen, gate, testEconomics())

	return &withdrawalFixture{uc: uc, users: users, withdrawals: withdrawals, ledgerRepo: ledgerRepo, gate: gate}
}

func fundedUser(id, balance string) *domain.User {
	return &domain.User{ID: id, TierName: "BRONZE", UsdtBalance: d(balance)}
}

func TestWithdrawalUseCase_Request(t *testing.T) {
	f := newWithdrawalFixture()
	f.users.Create(context.Background(), fundedUser("user-1", "100"))

	w, err := f.uc.RequestWithdrawal(context.Background(), usecase.RequestWithdrawalInput{
		UserID:   "user-1",
		Amount:   d("50"),
		ToWallet: testWallet,
		Network:  "TRC20",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if w.Status != domain.WithdrawalPendingAudit {
		t.Errorf("status = %s, want pending_audit", w.Status)
	}

	if !w.NetAmount.Equal(d("49.5")) {
		t.Errorf("net = %s, want 49.5", w.NetAmount)
	}

	user, _ := f.users.GetByID(context.Background(), "user-1")
	if !user.UsdtBalance.Equal(d("50")) {
		t.Errorf("balance = %s, want 50 (gross deducted up front)", user.UsdtBalance)
	}

	entries := f.ledgerRepo.Entries("user-1")
	if len(entries) != 3 {
		t.Fatalf("ledger entries = %d, want 3", len(entries))
	}

	request := entries[0]
	if request.EntryType != domain.EntryWithdrawalRequest {
		t.Errorf("first entry = %s, want withdrawal_request", request.EntryType)
	}

	if !request.BalanceBefore.Equal(d("100")) || !request.BalanceAfter.Equal(d("50")) {
		t.Errorf("request entry moves %s -> %s, want 100 -> 50", request.BalanceBefore, request.BalanceAfter)
	}

	// Fee and net entries record the breakdown without moving balance.
	for _, e := range entries[1:] {
		if !e.BalanceBefore.Equal(e.BalanceAfter) {
			t.Errorf("%s entry moved balance %s -> %s", e.EntryType, e.BalanceBefore, e.BalanceAfter)
		}
	}

	if !entries[1].Amount.Add(entries[2].Amount).Equal(w.GrossAmount) {
		t.Error("fee + net must equal gross")
	}
}

func TestWithdrawalUseCase_RequestValidation(t *testing.T) {
	tests := []struct {
		name      string
		input     usecase.RequestWithdrawalInput
		errorType error
	}{
		{
			name:      "below minimum",
			input:     usecase.RequestWithdrawalInput{UserID: "user-1", Amount: d("5"), ToWallet: testWallet},
			errorType: domain.ErrBelowMinimumAmount,
		},
		{
			name:      "zero amount",
			input:     usecase.RequestWithdrawalInput{UserID: "user-1", Amount: d("0"), ToWallet: testWallet},
			errorType: domain.ErrInvalidAmount,
		},
		{
			name:      "wallet too short",
			input:     usecase.RequestWithdrawalInput{UserID: "user-1", Amount: d("50"), ToWallet: "abc"},
			errorType: domain.ErrInvalidWallet,
		},
		{
			name:      "insufficient balance",
			input:     usecase.RequestWithdrawalInput{UserID: "user-1", Amount: d("500"), ToWallet: testWallet},
			errorType: domain.ErrInsufficientBalance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWithdrawalFixture()
			f.users.Create(context.Background(), fundedUser("user-1", "100"))

			_, err := f.uc.RequestWithdrawal(context.Background(), tt.input)
			if err != tt.errorType {
				t.Errorf("expected %v, got %v", tt.errorType, err)
			}
		})
	}
}

func TestWithdrawalUseCase_HighScoreFlags(t *testing.T) {
	f := newWithdrawalFixture()
	f.gate.ScoreVal = 90
	f.users.Create(context.Background(), fundedUser("user-1", "100"))

	w, err := f.uc.RequestWithdrawal(context.Background(), usecase.RequestWithdrawalInput{
		UserID: "user-1", Amount: d("50"), ToWallet: testWallet,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if w.Status != domain.WithdrawalFlagged {
		t.Errorf("status = %s, want flagged", w.Status)
	}

	// Flagged requests still deduct the balance.
	user, _ := f.users.GetByID(context.Background(), "user-1")
	if !user.UsdtBalance.Equal(d("50")) {
		t.Errorf("balance = %s, want 50", user.UsdtBalance)
	}
}

func TestWithdrawalUseCase_PromoteReady(t *testing.T) {
	f := newWithdrawalFixture()
	f.users.Create(context.Background(), fundedUser("user-1", "100"))

	w, err := f.uc.RequestWithdrawal(context.Background(), usecase.RequestWithdrawalInput{
		UserID: "user-1", Amount: d("50"), ToWallet: testWallet,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Too early: audit delay not elapsed.
	promoted, err := f.uc.PromoteReady(context.Background(), time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if promoted != 0 {
		t.Errorf("promoted = %d before delay elapsed, want 0", promoted)
	}

	promoted, err = f.uc.PromoteReady(context.Background(), time.Now().UTC().Add(25*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if promoted != 1 {
		t.Errorf("promoted = %d, want 1", promoted)
	}

	got, _ := f.uc.GetWithdrawal(context.Background(), w.ID)
	if got.Status != domain.WithdrawalReady {
		t.Errorf("status = %s, want ready", got.Status)
	}
}

func TestWithdrawalUseCase_FlaggedNotAutoPromoted(t *testing.T) {
	f := newWithdrawalFixture()
	f.gate.ScoreVal = 90
	f.users.Create(context.Background(), fundedUser("user-1", "100"))

	w, _ := f.uc.RequestWithdrawal(context.Background(), usecase.RequestWithdrawalInput{
		UserID: "user-1", Amount: d("50"), ToWallet: testWallet,
	})

	promoted, err := f.uc.PromoteReady(context.Background(), time.Now().UTC().Add(48*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if promoted != 0 {
		t.Errorf("flagged withdrawal auto-promoted")
	}

	// Manual review releases it.
	if err := f.uc.Release(context.Background(), w.ID); err != nil {
		t.Fatalf("release: %v", err)
	}

	got, _ := f.uc.GetWithdrawal(context.Background(), w.ID)
	if got.Status != domain.WithdrawalReady {
		t.Errorf("status = %s, want ready after release", got.Status)
	}
}

func TestWithdrawalUseCase_BatchApprove(t *testing.T) {
	f := newWithdrawalFixture()
	f.users.Create(context.Background(), fundedUser("user-1", "100"))
	f.users.Create(context.Background(), fundedUser("user-2", "100"))

	w1, _ := f.uc.RequestWithdrawal(context.Background(), usecase.RequestWithdrawalInput{
		UserID: "user-1", Amount: d("50"), ToWallet: testWallet,
	})
	w2, _ := f.uc.RequestWithdrawal(context.Background(), usecase.RequestWithdrawalInput{
		UserID: "user-2", Amount: d("20"), ToWallet: testWallet,
	})

	later := time.Now().UTC().Add(25 * time.Hour)
	if _, err := f.uc.PromoteReady(context.Background(), later); err != nil {
		t.Fatalf("promote: %v", err)
	}

	batch, err := f.uc.BatchReady(context.Background(), later)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}

	if batch.Count != 2 {
		t.Errorf("batch count = %d, want 2", batch.Count)
	}

	// 49.5 + 19.5 net.
	if !batch.TotalNet.Equal(d("69")) {
		t.Errorf("batch net = %s, want 69", batch.TotalNet)
	}

	for _, id := range []string{w1.ID, w2.ID} {
		got, _ := f.uc.GetWithdrawal(context.Background(), id)
		if got.Status != domain.WithdrawalBatched {
			t.Errorf("status = %s, want batched", got.Status)
		}
		if got.BatchID == nil || *got.BatchID != batch.ID {
			t.Error("withdrawal not assigned to batch")
		}
	}

	if err := f.uc.Approve(context.Background(), w1.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	got, _ := f.uc.GetWithdrawal(context.Background(), w1.ID)
	if got.Status != domain.WithdrawalApproved {
		t.Errorf("status = %s, want approved", got.Status)
	}

	// Approval writes the completion record without moving balance.
	user, _ := f.users.GetByID(context.Background(), "user-1")
	if !user.UsdtBalance.Equal(d("50")) {
		t.Errorf("balance changed on approval: %s", user.UsdtBalance)
	}
}

func TestWithdrawalUseCase_BatchEmptyReturnsNil(t *testing.T) {
	f := newWithdrawalFixture()

	batch, err := f.uc.BatchReady(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if batch != nil {
		t.Errorf("expected nil batch, got %+v", batch)
	}
}

func TestWithdrawalUseCase_RejectRefunds(t *testing.T) {
	f := newWithdrawalFixture()
	f.users.Create(context.Background(), fundedUser("user-1", "100"))

	w, _ := f.uc.RequestWithdrawal(context.Background(), usecase.RequestWithdrawalInput{
		UserID: "user-1", Amount: d("50"), ToWallet: testWallet,
	})

	if err := f.uc.Reject(context.Background(), w.ID, "wallet mismatch"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	user, _ := f.users.GetByID(context.Background(), "user-1")
	if !user.UsdtBalance.Equal(d("100")) {
		t.Errorf("balance = %s, want full 100 refunded", user.UsdtBalance)
	}

	entries := f.ledgerRepo.Entries("user-1")
	last := entries[len(entries)-1]
	if last.EntryType != domain.EntryWithdrawalRejected || last.Direction != domain.DirectionCredit {
		t.Errorf("last entry = %s/%s, want withdrawal_rejected credit", last.EntryType, last.Direction)
	}

	if !last.Amount.Equal(d("50")) {
		t.Errorf("refund amount = %s, want gross 50", last.Amount)
	}

	// Terminal: no further transitions.
	if err := f.uc.Approve(context.Background(), w.ID); err != domain.ErrInvalidStatusChange {
		t.Errorf("expected ErrInvalidStatusChange, got %v", err)
	}
}

func TestWithdrawalUseCase_IllegalTransitions(t *testing.T) {
	f := newWithdrawalFixture()
	f.users.Create(context.Background(), fundedUser("user-1", "100"))

	w, _ := f.uc.RequestWithdrawal(context.Background(), usecase.RequestWithdrawalInput{
		UserID: "user-1", Amount: d("50"), ToWallet: testWallet,
	})

	// pending_audit cannot jump straight to approved.
	if err := f.uc.Approve(context.Background(), w.ID); err != domain.ErrInvalidStatusChange {
		t.Errorf("expected ErrInvalidStatusChange, got %v", err)
	}
}
