package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pravino/tapcore/internal/domain"
)

// LedgerRepository defines data access for ledger entries.
type LedgerRepository interface {
	// Create inserts the entry with a placeholder hash.
	Create(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) error
	// SetHash persists the finalized entry hash.
	SetHash(ctx context.Context, tx Transaction, id, hash string) error
	// GetLastByUser returns the chronologically last entry for a user,
	// or nil when the chain is empty.
	GetLastByUser(ctx context.Context, tx Transaction, userID string) (*domain.LedgerEntry, error)
	ListByUserAsc(ctx context.Context, userID string) ([]*domain.LedgerEntry, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.LedgerEntry, error)
}

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.User, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.User, error)
	Update(ctx context.Context, tx Transaction, user *domain.User) error
	ListActiveSubscribers(ctx context.Context, tierName string, now time.Time) ([]*domain.User, error)
	ListWithExpiredTickets(ctx context.Context, now time.Time) ([]*domain.User, error)
	// ListExpiringTiers lists users whose tier_expires_at falls in
	// (from, until].
	ListExpiringTiers(ctx context.Context, from, until time.Time) ([]*domain.User, error)
	CountFounders(ctx context.Context, tierName string) (int, error)
}

// TreasuryRepository defines data access for payment transactions,
// pool allocations and recaptured funds.
type TreasuryRepository interface {
	// GetTransactionByHash returns nil when the hash is unknown.
	GetTransactionByHash(ctx context.Context, txHash string) (*domain.Transaction, error)
	CreateTransaction(ctx context.Context, tx Transaction, t *domain.Transaction) error
	ListAllocationsByTransaction(ctx context.Context, transactionID string) ([]*domain.PoolAllocation, error)
	CreateAllocation(ctx context.Context, tx Transaction, a *domain.PoolAllocation) error
	ListReleasable(ctx context.Context, now time.Time) ([]*domain.PoolAllocation, error)
	ListExpired(ctx context.Context, now time.Time) ([]*domain.PoolAllocation, error)
	UpdateAllocationRelease(ctx context.Context, tx Transaction, id string, daysReleased int, amountReleased decimal.Decimal) error
	DeactivateAllocation(ctx context.Context, tx Transaction, id string) error
	CreateUnclaimed(ctx context.Context, tx Transaction, u *domain.UnclaimedFunds) error
}

// VaultRepository defines data access for jackpot vaults.
type VaultRepository interface {
	// GetOrCreateForUpdate row-locks the (tier, month) vault, creating
	// an empty one first if needed.
	GetOrCreateForUpdate(ctx context.Context, tx Transaction, tierName, monthKey string) (*domain.JackpotVault, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	GetByTierMonth(ctx context.Context, tierName, monthKey string) (*domain.JackpotVault, error)
}

// PotRepository defines data access for per-tier game pots.
type PotRepository interface {
	// GetForUpdate row-locks the (tier, game) pot, creating a zero row
	// first if needed.
	GetForUpdate(ctx context.Context, tx Transaction, tierName string, game domain.Game) (*domain.TierPot, error)
	Update(ctx context.Context, tx Transaction, pot *domain.TierPot) error
	Get(ctx context.Context, tierName string, game domain.Game) (*domain.TierPot, error)
}

// PredictionRepository defines data access for predictions.
type PredictionRepository interface {
	Create(ctx context.Context, tx Transaction, p *domain.Prediction) error
	HasOpen(ctx context.Context, userID string) (bool, error)
	ListMatureUnresolved(ctx context.Context, before time.Time) ([]*domain.Prediction, error)
	MarkResolved(ctx context.Context, tx Transaction, p *domain.Prediction) error
}

// SpinRepository defines data access for spin outcomes.
type SpinRepository interface {
	CreateOutcome(ctx context.Context, tx Transaction, o *domain.SpinOutcome) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.SpinOutcome, error)
}

// WithdrawalRepository defines data access for withdrawals and batches.
type WithdrawalRepository interface {
	Create(ctx context.Context, tx Transaction, w *domain.Withdrawal) error
	GetByID(ctx context.Context, id string) (*domain.Withdrawal, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Withdrawal, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.WithdrawalStatus, updatedAt time.Time) error
	ListByStatusBefore(ctx context.Context, status domain.WithdrawalStatus, before time.Time) ([]*domain.Withdrawal, error)
	CreateBatch(ctx context.Context, tx Transaction, batch *domain.WithdrawalBatch) error
	UpdateBatchTotals(ctx context.Context, tx Transaction, batchID string, count int, totalNet decimal.Decimal) error
	AssignBatch(ctx context.Context, tx Transaction, withdrawalID, batchID string, updatedAt time.Time) error
}

// SummaryRepository defines data access for settlement summaries.
type SummaryRepository interface {
	Create(ctx context.Context, tx Transaction, s *domain.SettlementSummary) error
	ListByCycle(ctx context.Context, cycleDate time.Time) ([]*domain.SettlementSummary, error)
}

// PriceOracle is the consensus BTC price feed.
type PriceOracle interface {
	Fetch(ctx context.Context) (*domain.OracleResult, error)
	FetchWithRetry(ctx context.Context, maxAttempts int, deadline time.Time) (*domain.OracleResult, error)
	Frozen() bool
}

// AbuseGate is the opaque anti-abuse scorer. Higher means riskier.
type AbuseGate interface {
	Score(ctx context.Context, userID, action string) int
}

// Rand supplies uniform draws for the spin engine.
type Rand interface {
	// IntN returns a uniform value in [0, n).
	IntN(n int) int
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
