package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/pravino/tapcore/internal/domain"
	"github.com/pravino/tapcore/internal/usecase"
)

const pgUniqueViolation = "23505"

const transactionColumns = `
	id, user_id, tx_hash, tier_name,
	total_amount, admin_amount, treasury_amount, referral_amount, created_at
`

const allocationColumns = `
	id, transaction_id, tier_name, game, drip_type,
	total_amount, daily_amount, total_days, days_released, amount_released,
	deposit_date, expiry_date, active
`

// TreasuryRepository implements usecase.TreasuryRepository.
type TreasuryRepository struct {
	pool *pgxpool.Pool
}

// NewTreasuryRepository creates a new TreasuryRepository.
func NewTreasuryRepository(pool *pgxpool.Pool) *TreasuryRepository {
	return &TreasuryRepository{pool: pool}
}

// GetTransactionByHash returns nil when the hash has never been seen.
func (r *TreasuryRepository) GetTransactionByHash(ctx context.Context, txHash string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE tx_hash = $1`

	t, err := r.scanTransaction(r.pool.QueryRow(ctx, query, txHash))
	if errors.Is(err, domain.ErrTransactionNotFound) {
		return nil, nil
	}

	return t, err
}

// CreateTransaction inserts a payment record. The unique index on
// tx_hash is the last line of defense against concurrent replays.
func (r *TreasuryRepository) CreateTransaction(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := pgxTx.Exec(ctx, query,
		t.ID,
		t.UserID,
		t.TxHash,
		t.TierName,
		decimalToNumeric(t.TotalAmount),
		decimalToNumeric(t.AdminAmount),
		decimalToNumeric(t.TreasuryAmount),
		decimalToNumeric(t.ReferralAmount),
		t.CreatedAt,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return domain.ErrDuplicateTxHash
	}

	return err
}

// ListAllocationsByTransaction lists the allocations carved out of one
// payment.
func (r *TreasuryRepository) ListAllocationsByTransaction(ctx context.Context, transactionID string) ([]*domain.PoolAllocation, error) {
	query := `
		SELECT ` + allocationColumns + `
		FROM pool_allocations
		WHERE transaction_id = $1
		ORDER BY game
	`

	rows, err := r.pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanAllocations(rows)
}

// CreateAllocation inserts a pool allocation.
func (r *TreasuryRepository) CreateAllocation(ctx context.Context, tx usecase.Transaction, a *domain.PoolAllocation) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		INSERT INTO pool_allocations (` + allocationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := pgxTx.Exec(ctx, query,
		a.ID,
		a.TransactionID,
		a.TierName,
		a.Game,
		a.DripType,
		decimalToNumeric(a.TotalAmount),
		decimalToNumeric(a.DailyAmount),
		a.TotalDays,
		a.DaysReleased,
		decimalToNumeric(a.AmountReleased),
		a.DepositDate,
		a.ExpiryDate,
		a.Active,
	)

	return err
}

// ListReleasable lists active daily allocations with at least one
// unreleased drip day due at now.
func (r *TreasuryRepository) ListReleasable(ctx context.Context, now time.Time) ([]*domain.PoolAllocation, error) {
	query := `
		SELECT ` + allocationColumns + `
		FROM pool_allocations
		WHERE active AND drip_type = $1 AND days_released < total_days AND deposit_date <= $2
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, domain.DripDaily, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanAllocations(rows)
}

// ListExpired lists active allocations past their expiry date.
func (r *TreasuryRepository) ListExpired(ctx context.Context, now time.Time) ([]*domain.PoolAllocation, error) {
	query := `
		SELECT ` + allocationColumns + `
		FROM pool_allocations
		WHERE active AND expiry_date <= $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanAllocations(rows)
}

// UpdateAllocationRelease advances the drip progress counters.
func (r *TreasuryRepository) UpdateAllocationRelease(ctx context.Context, tx usecase.Transaction, id string, daysReleased int, amountReleased decimal.Decimal) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		UPDATE pool_allocations
		SET days_released = $2, amount_released = $3
		WHERE id = $1
	`

	tag, err := pgxTx.Exec(ctx, query, id, daysReleased, decimalToNumeric(amountReleased))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAllocationNotFound
	}

	return nil
}

// DeactivateAllocation retires an exhausted or expired allocation.
func (r *TreasuryRepository) DeactivateAllocation(ctx context.Context, tx usecase.Transaction, id string) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `UPDATE pool_allocations SET active = false WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAllocationNotFound
	}

	return nil
}

// CreateUnclaimed records recaptured drip money.
func (r *TreasuryRepository) CreateUnclaimed(ctx context.Context, tx usecase.Transaction, u *domain.UnclaimedFunds) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		INSERT INTO unclaimed_funds (id, allocation_id, tier_name, game, amount, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := pgxTx.Exec(ctx, query,
		u.ID,
		u.AllocationID,
		u.TierName,
		u.Game,
		decimalToNumeric(u.Amount),
		u.Reason,
		u.CreatedAt,
	)

	return err
}

func (r *TreasuryRepository) scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var (
		t              domain.Transaction
		totalAmount    pgtype.Numeric
		adminAmount    pgtype.Numeric
		treasuryAmount pgtype.Numeric
		referralAmount pgtype.Numeric
	)

	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.TxHash,
		&t.TierName,
		&totalAmount,
		&adminAmount,
		&treasuryAmount,
		&referralAmount,
		&t.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}

	t.TotalAmount = numericToDecimal(totalAmount)
	t.AdminAmount = numericToDecimal(adminAmount)
	t.TreasuryAmount = numericToDecimal(treasuryAmount)
	t.ReferralAmount = numericToDecimal(referralAmount)

	return &t, nil
}

func (r *TreasuryRepository) scanAllocation(row rowScanner) (*domain.PoolAllocation, error) {
	var (
		a              domain.PoolAllocation
		totalAmount    pgtype.Numeric
		dailyAmount    pgtype.Numeric
		amountReleased pgtype.Numeric
	)

	err := row.Scan(
		&a.ID,
		&a.TransactionID,
		&a.TierName,
		&a.Game,
		&a.DripType,
		&totalAmount,
		&dailyAmount,
		&a.TotalDays,
		&a.DaysReleased,
		&amountReleased,
		&a.DepositDate,
		&a.ExpiryDate,
		&a.Active,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAllocationNotFound
	}
	if err != nil {
		return nil, err
	}

	a.TotalAmount = numericToDecimal(totalAmount)
	a.DailyAmount = numericToDecimal(dailyAmount)
	a.AmountReleased = numericToDecimal(amountReleased)

	return &a, nil
}

func (r *TreasuryRepository) scanAllocations(rows pgx.Rows) ([]*domain.PoolAllocation, error) {
	var allocations []*domain.PoolAllocation
	for rows.Next() {
		a, err := r.scanAllocation(rows)
		if err != nil {
			return nil, err
		}
		allocations = append(allocations, a)
	}

	return allocations, rows.Err()
}
