package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pravino/tapcore/internal/domain"
	"github.com/pravino/tapcore/internal/usecase"
)

const spinColumns = `
	id, user_id, tier_name, month_key, draw,
	drawn_class, paid_class, cash_amount, coin_amount, locked, created_at
`

// SpinRepository implements usecase.SpinRepository.
type SpinRepository struct {
	pool *pgxpool.Pool
}

// NewSpinRepository creates a new SpinRepository.
func NewSpinRepository(pool *pgxpool.Pool) *SpinRepository {
	return &SpinRepository{pool: pool}
}

// CreateOutcome records a completed draw.
func (r *SpinRepository) CreateOutcome(ctx context.Context, tx usecase.Transaction, o *domain.SpinOutcome) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		INSERT INTO spin_outcomes (` + spinColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := pgxTx.Exec(ctx, query,
		o.ID,
		o.UserID,
		o.TierName,
		o.MonthKey,
		o.Draw,
		o.DrawnClass,
		o.PaidClass,
		decimalToNumeric(o.CashAmount),
		o.CoinAmount,
		o.Locked,
		o.CreatedAt,
	)

	return err
}

// ListByUser returns a page of outcomes, newest first.
func (r *SpinRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.SpinOutcome, error) {
	query := `
		SELECT ` + spinColumns + `
		FROM spin_outcomes
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outcomes []*domain.SpinOutcome
	for rows.Next() {
		var (
			o          domain.SpinOutcome
			cashAmount pgtype.Numeric
		)

		err := rows.Scan(
			&o.ID,
			&o.UserID,
			&o.TierName,
			&o.MonthKey,
			&o.Draw,
			&o.DrawnClass,
			&o.PaidClass,
			&cashAmount,
			&o.CoinAmount,
			&o.Locked,
			&o.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		o.CashAmount = numericToDecimal(cashAmount)
		outcomes = append(outcomes, &o)
	}

	return outcomes, rows.Err()
}
