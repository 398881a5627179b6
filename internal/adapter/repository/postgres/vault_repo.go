package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/pravino/tapcore/internal/domain"
	"github.com/pravino/tapcore/internal/usecase"
)

const vaultColumns = `id, tier_name, month_key, balance, created_at, updated_at`

// VaultRepository implements usecase.VaultRepository.
type VaultRepository struct {
	pool *pgxpool.Pool
}

// NewVaultRepository creates a new VaultRepository.
func NewVaultRepository(pool *pgxpool.Pool) *VaultRepository {
	return &VaultRepository{pool: pool}
}

// GetOrCreateForUpdate row-locks the (tier, month) vault. The insert
// is a no-op when the row already exists, so concurrent callers
// converge on the same row before the lock is taken.
func (r *VaultRepository) GetOrCreateForUpdate(ctx context.Context, tx usecase.Transaction, tierName, monthKey string) (*domain.JackpotVault, error) {
	pgxTx := tx.(*Tx).PgxTx()

	insert := `
		INSERT INTO jackpot_vaults (id, tier_name, month_key, balance, created_at, updated_at)
		VALUES ($1, $2, $3, 0, now(), now())
		ON CONFLICT (tier_name, month_key) DO NOTHING
	`
	if _, err := pgxTx.Exec(ctx, insert, ulid.Make().String(), tierName, monthKey); err != nil {
		return nil, err
	}

	query := `
		SELECT ` + vaultColumns + `
		FROM jackpot_vaults
		WHERE tier_name = $1 AND month_key = $2
		FOR UPDATE
	`

	return r.scanVault(pgxTx.QueryRow(ctx, query, tierName, monthKey))
}

// UpdateBalance persists a new vault balance.
func (r *VaultRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx,
		`UPDATE jackpot_vaults SET balance = $2, updated_at = $3 WHERE id = $1`,
		id, decimalToNumeric(balance), updatedAt,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrVaultNotFound
	}

	return nil
}

// GetByTierMonth reads a vault without locking it.
func (r *VaultRepository) GetByTierMonth(ctx context.Context, tierName, monthKey string) (*domain.JackpotVault, error) {
	query := `
		SELECT ` + vaultColumns + `
		FROM jackpot_vaults
		WHERE tier_name = $1 AND month_key = $2
	`

	return r.scanVault(r.pool.QueryRow(ctx, query, tierName, monthKey))
}

func (r *VaultRepository) scanVault(row rowScanner) (*domain.JackpotVault, error) {
	var (
		v       domain.JackpotVault
		balance pgtype.Numeric
	)

	err := row.Scan(&v.ID, &v.TierName, &v.MonthKey, &balance, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrVaultNotFound
	}
	if err != nil {
		return nil, err
	}

	v.Balance = numericToDecimal(balance)

	return &v, nil
}
