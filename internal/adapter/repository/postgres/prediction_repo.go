package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pravino/tapcore/internal/domain"
	"github.com/pravino/tapcore/internal/usecase"
)

const predictionColumns = `
	id, user_id, tier_name, direction, price_at_submit,
	resolved, won, payout_amount, created_at, resolved_at
`

// PredictionRepository implements usecase.PredictionRepository.
type PredictionRepository struct {
	pool *pgxpool.Pool
}

// NewPredictionRepository creates a new PredictionRepository.
func NewPredictionRepository(pool *pgxpool.Pool) *PredictionRepository {
	return &PredictionRepository{pool: pool}
}

// Create inserts a prediction.
func (r *PredictionRepository) Create(ctx context.Context, tx usecase.Transaction, p *domain.Prediction) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		INSERT INTO predictions (` + predictionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := pgxTx.Exec(ctx, query,
		p.ID,
		p.UserID,
		p.TierName,
		p.Direction,
		decimalToNumeric(p.PriceAtSubmit),
		p.Resolved,
		p.Won,
		decimalToNumeric(p.PayoutAmount),
		p.CreatedAt,
		timePtrToPgTimestamptz(p.ResolvedAt),
	)

	return err
}

// HasOpen reports whether the user already has an unresolved
// prediction.
func (r *PredictionRepository) HasOpen(ctx context.Context, userID string) (bool, error) {
	query := `SELECT exists(SELECT 1 FROM predictions WHERE user_id = $1 AND NOT resolved)`

	var open bool
	err := r.pool.QueryRow(ctx, query, userID).Scan(&open)

	return open, err
}

// ListMatureUnresolved lists unresolved predictions submitted before
// the maturity cutoff.
func (r *PredictionRepository) ListMatureUnresolved(ctx context.Context, before time.Time) ([]*domain.Prediction, error) {
	query := `
		SELECT ` + predictionColumns + `
		FROM predictions
		WHERE NOT resolved AND created_at <= $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var predictions []*domain.Prediction
	for rows.Next() {
		p, err := r.scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		predictions = append(predictions, p)
	}

	return predictions, rows.Err()
}

// MarkResolved persists the resolution verdict.
func (r *PredictionRepository) MarkResolved(ctx context.Context, tx usecase.Transaction, p *domain.Prediction) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		UPDATE predictions
		SET resolved = true, won = $2, payout_amount = $3, resolved_at = $4
		WHERE id = $1
	`

	tag, err := pgxTx.Exec(ctx, query,
		p.ID,
		p.Won,
		decimalToNumeric(p.PayoutAmount),
		timePtrToPgTimestamptz(p.ResolvedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrPredictionNotFound
	}

	return nil
}

func (r *PredictionRepository) scanPrediction(row rowScanner) (*domain.Prediction, error) {
	var (
		p             domain.Prediction
		priceAtSubmit pgtype.Numeric
		payoutAmount  pgtype.Numeric
		resolvedAt    pgtype.Timestamptz
	)

	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.TierName,
		&p.Direction,
		&priceAtSubmit,
		&p.Resolved,
		&p.Won,
		&payoutAmount,
		&p.CreatedAt,
		&resolvedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPredictionNotFound
	}
	if err != nil {
		return nil, err
	}

	p.PriceAtSubmit = numericToDecimal(priceAtSubmit)
	p.PayoutAmount = numericToDecimal(payoutAmount)
	p.ResolvedAt = pgTimestamptzToTimePtr(resolvedAt)

	return &p, nil
}
