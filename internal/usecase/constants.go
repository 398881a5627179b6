package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// LockedPrizeCoins is the fixed coin reward substituted when a
	// free-tier user draws a cash prize.
	LockedPrizeCoins int64 = 500

	// chainLockStripes sizes the per-user append lock table.
	chainLockStripes = 64
)
