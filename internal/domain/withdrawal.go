package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalStatus is the finite state machine of a withdrawal.
//
//	pending_audit | flagged -> ready -> batched -> approved | rejected
//
// rejected is additionally reachable from pending_audit and flagged
// (manual early rejection).
type WithdrawalStatus string

const (
	WithdrawalPendingAudit WithdrawalStatus = "pending_audit"
	WithdrawalFlagged      WithdrawalStatus = "flagged"
	WithdrawalReady        WithdrawalStatus = "ready"
	WithdrawalBatched      WithdrawalStatus = "batched"
	WithdrawalApproved     WithdrawalStatus = "approved"
	WithdrawalRejected     WithdrawalStatus = "rejected"
)

var withdrawalTransitions = map[WithdrawalStatus][]WithdrawalStatus{
	WithdrawalPendingAudit: {WithdrawalReady, WithdrawalRejected},
	WithdrawalFlagged:      {WithdrawalReady, WithdrawalRejected},
	WithdrawalReady:        {WithdrawalBatched, WithdrawalRejected},
	WithdrawalBatched:      {WithdrawalApproved, WithdrawalRejected},
}

// CanTransition reports whether moving from one status to another is
// legal.
func CanTransition(from, to WithdrawalStatus) bool {
	for _, next := range withdrawalTransitions[from] {
		if next == to {
			return true
		}
	}

	return false
}

// Terminal reports whether a status admits no further transitions.
func (s WithdrawalStatus) Terminal() bool {
	return s == WithdrawalApproved || s == WithdrawalRejected
}

// Withdrawal is a user payout request. The gross amount is deducted
// from the wallet at request time; net = gross - fee exactly.
type Withdrawal struct {
	ID          string
	UserID      string
	GrossAmount decimal.Decimal
	FeeAmount   decimal.Decimal
	NetAmount   decimal.Decimal
	Status      WithdrawalStatus
	ToWallet    string
	Network     string
	BatchID     *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WithdrawalBatch is an immutable grouping of ready withdrawals,
// created once per batch run and handed to the external payout rail.
type WithdrawalBatch struct {
	ID        string
	Count     int
	TotalNet  decimal.Decimal
	CreatedAt time.Time
}
