package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pravino/tapcore/internal/domain"
	"github.com/pravino/tapcore/internal/usecase"
)

const potColumns = `tier_name, game, balance, rollover, updated_at`

// PotRepository implements usecase.PotRepository.
type PotRepository struct {
	pool *pgxpool.Pool
}

// NewPotRepository creates a new PotRepository.
func NewPotRepository(pool *pgxpool.Pool) *PotRepository {
	return &PotRepository{pool: pool}
}

// GetForUpdate row-locks the (tier, game) pot, seeding a zero row on
// first touch.
func (r *PotRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, tierName string, game domain.Game) (*domain.TierPot, error) {
	pgxTx := tx.(*Tx).PgxTx()

	insert := `
		INSERT INTO tier_pots (tier_name, game, balance, rollover, updated_at)
		VALUES ($1, $2, 0, 0, now())
		ON CONFLICT (tier_name, game) DO NOTHING
	`
	if _, err := pgxTx.Exec(ctx, insert, tierName, game); err != nil {
		return nil, err
	}

	query := `
		SELECT ` + potColumns + `
		FROM tier_pots
		WHERE tier_name = $1 AND game = $2
		FOR UPDATE
	`

	return r.scanPot(pgxTx.QueryRow(ctx, query, tierName, game))
}

// Update persists the pot balance and rollover.
func (r *PotRepository) Update(ctx context.Context, tx usecase.Transaction, pot *domain.TierPot) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		UPDATE tier_pots
		SET balance = $3, rollover = $4, updated_at = now()
		WHERE tier_name = $1 AND game = $2
	`

	_, err := pgxTx.Exec(ctx, query,
		pot.TierName,
		pot.Game,
		decimalToNumeric(pot.Balance),
		decimalToNumeric(pot.Rollover),
	)

	return err
}

// Get reads a pot without locking; absent pots read as zero.
func (r *PotRepository) Get(ctx context.Context, tierName string, game domain.Game) (*domain.TierPot, error) {
	query := `SELECT ` + potColumns + ` FROM tier_pots WHERE tier_name = $1 AND game = $2`

	pot, err := r.scanPot(r.pool.QueryRow(ctx, query, tierName, game))
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.TierPot{TierName: tierName, Game: game}, nil
	}

	return pot, err
}

func (r *PotRepository) scanPot(row rowScanner) (*domain.TierPot, error) {
	var (
		pot      domain.TierPot
		balance  pgtype.Numeric
		rollover pgtype.Numeric
	)

	err := row.Scan(&pot.TierName, &pot.Game, &balance, &rollover, &pot.UpdatedAt)
	if err != nil {
		return nil, err
	}

	pot.Balance = numericToDecimal(balance)
	pot.Rollover = numericToDecimal(rollover)

	return &pot, nil
}
