package domain

import "errors"

var (
	// User errors
	ErrUserNotFound        = errors.New("user not found")
	ErrInsufficientBalance = errors.New("insufficient balance")

	// Ledger errors
	ErrChainBroken   = errors.New("ledger chain broken")
	ErrEntryNotFound = errors.New("ledger entry not found")

	// Treasury errors
	ErrUnknownTier         = errors.New("unknown subscription tier")
	ErrAmountMismatch      = errors.New("payment amount does not match tier price")
	ErrDuplicateTxHash     = errors.New("transaction hash already processed")
	ErrAllocationNotFound  = errors.New("pool allocation not found")
	ErrTransactionNotFound = errors.New("transaction not found")

	// Oracle errors
	ErrOracleUnavailable = errors.New("no price source available")
	ErrOracleFrozen      = errors.New("settlement delayed: price oracle frozen")

	// Spin errors
	ErrNoSpinAvailable = errors.New("no spin available")
	ErrVaultNotFound   = errors.New("jackpot vault not found")

	// Prediction errors
	ErrPredictionNotFound = errors.New("prediction not found")
	ErrInvalidDirection   = errors.New("prediction direction must be higher or lower")
	ErrPredictionPending  = errors.New("an unresolved prediction is already open")

	// Subscription errors
	ErrSubscriptionRequired = errors.New("active subscription required")

	// Withdrawal errors
	ErrWithdrawalNotFound  = errors.New("withdrawal not found")
	ErrBelowMinimumAmount  = errors.New("amount below withdrawal minimum")
	ErrInvalidWallet       = errors.New("invalid wallet address")
	ErrInvalidStatusChange = errors.New("invalid withdrawal status transition")

	// Shared
	ErrInvalidAmount = errors.New("amount must be positive")
)
