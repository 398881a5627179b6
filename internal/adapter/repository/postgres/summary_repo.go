package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pravino/tapcore/internal/domain"
	"github.com/pravino/tapcore/internal/usecase"
)

const summaryColumns = `
	id, cycle_date, tier_name, game, active_users,
	daily_allocation, rollover, total_pot, winners_count,
	share_per_winner, new_rollover, created_at
`

// SummaryRepository implements usecase.SummaryRepository.
type SummaryRepository struct {
	pool *pgxpool.Pool
}

// NewSummaryRepository creates a new SummaryRepository.
func NewSummaryRepository(pool *pgxpool.Pool) *SummaryRepository {
	return &SummaryRepository{pool: pool}
}

// Create inserts a settlement summary.
func (r *SummaryRepository) Create(ctx context.Context, tx usecase.Transaction, s *domain.SettlementSummary) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		INSERT INTO settlement_summaries (` + summaryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := pgxTx.Exec(ctx, query,
		s.ID,
		s.CycleDate,
		s.TierName,
		s.Game,
		s.ActiveUsers,
		decimalToNumeric(s.DailyAllocation),
		decimalToNumeric(s.Rollover),
		decimalToNumeric(s.TotalPot),
		s.WinnersCount,
		decimalToNumeric(s.SharePerWinner),
		decimalToNumeric(s.NewRollover),
		s.CreatedAt,
	)

	return err
}

// ListByCycle lists the summaries of one settlement day.
func (r *SummaryRepository) ListByCycle(ctx context.Context, cycleDate time.Time) ([]*domain.SettlementSummary, error) {
	query := `
		SELECT ` + summaryColumns + `
		FROM settlement_summaries
		WHERE cycle_date = $1
		ORDER BY tier_name, game
	`

	rows, err := r.pool.Query(ctx, query, cycleDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*domain.SettlementSummary
	for rows.Next() {
		var (
			s               domain.SettlementSummary
			dailyAllocation pgtype.Numeric
			rollover        pgtype.Numeric
			totalPot        pgtype.Numeric
			sharePerWinner  pgtype.Numeric
			newRollover     pgtype.Numeric
		)

		err := rows.Scan(
			&s.ID,
			&s.CycleDate,
			&s.TierName,
			&s.Game,
			&s.ActiveUsers,
			&dailyAllocation,
			&rollover,
			&totalPot,
			&s.WinnersCount,
			&sharePerWinner,
			&newRollover,
			&s.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		s.DailyAllocation = numericToDecimal(dailyAllocation)
		s.Rollover = numericToDecimal(rollover)
		s.TotalPot = numericToDecimal(totalPot)
		s.SharePerWinner = numericToDecimal(sharePerWinner)
		s.NewRollover = numericToDecimal(newRollover)
		summaries = append(summaries, &s)
	}

	return summaries, rows.Err()
}
