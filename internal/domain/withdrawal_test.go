package domain_test

import (
	"testing"

	"github.com/pravino/tapcore/internal/domain"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to domain.WithdrawalStatus
		want     bool
	}{
		{domain.WithdrawalPendingAudit, domain.WithdrawalReady, true},
		{domain.WithdrawalPendingAudit, domain.WithdrawalRejected, true},
		{domain.WithdrawalPendingAudit, domain.WithdrawalBatched, false},
		{domain.WithdrawalPendingAudit, domain.WithdrawalApproved, false},
		{domain.WithdrawalFlagged, domain.WithdrawalReady, true},
		{domain.WithdrawalFlagged, domain.WithdrawalApproved, false},
		{domain.WithdrawalReady, domain.WithdrawalBatched, true},
		{domain.WithdrawalReady, domain.WithdrawalApproved, false},
		{domain.WithdrawalBatched, domain.WithdrawalApproved, true},
		{domain.WithdrawalBatched, domain.WithdrawalRejected, true},
		{domain.WithdrawalApproved, domain.WithdrawalRejected, false},
		{domain.WithdrawalRejected, domain.WithdrawalReady, false},
	}

	for _, tt := range tests {
		if got := domain.CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestWithdrawalStatus_Terminal(t *testing.T) {
	terminal := []domain.WithdrawalStatus{domain.WithdrawalApproved, domain.WithdrawalRejected}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}

	open := []domain.WithdrawalStatus{
		domain.WithdrawalPendingAudit, domain.WithdrawalFlagged,
		domain.WithdrawalReady, domain.WithdrawalBatched,
	}
	for _, s := range open {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
