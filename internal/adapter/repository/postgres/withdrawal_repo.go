package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/pravino/tapcore/internal/domain"
	"github.com/pravino/tapcore/internal/usecase"
)

const withdrawalColumns = `
	id, user_id, gross_amount, fee_amount, net_amount,
	status, to_wallet, network, batch_id, created_at, updated_at
`

// WithdrawalRepository implements usecase.WithdrawalRepository.
type WithdrawalRepository struct {
	pool *pgxpool.Pool
}

// NewWithdrawalRepository creates a new WithdrawalRepository.
func NewWithdrawalRepository(pool *pgxpool.Pool) *WithdrawalRepository {
	return &WithdrawalRepository{pool: pool}
}

// Create inserts a withdrawal.
func (r *WithdrawalRepository) Create(ctx context.Context, tx usecase.Transaction, w *domain.Withdrawal) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		INSERT INTO withdrawals (` + withdrawalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := pgxTx.Exec(ctx, query,
		w.ID,
		w.UserID,
		decimalToNumeric(w.GrossAmount),
		decimalToNumeric(w.FeeAmount),
		decimalToNumeric(w.NetAmount),
		w.Status,
		w.ToWallet,
		w.Network,
		textPtr(w.BatchID),
		w.CreatedAt,
		w.UpdatedAt,
	)

	return err
}

// GetByID retrieves a withdrawal by ID.
func (r *WithdrawalRepository) GetByID(ctx context.Context, id string) (*domain.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE id = $1`

	return r.scanWithdrawal(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a withdrawal with a FOR UPDATE lock.
func (r *WithdrawalRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Withdrawal, error) {
	pgxTx := tx.(*Tx).PgxTx()
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE id = $1 FOR UPDATE`

	return r.scanWithdrawal(pgxTx.QueryRow(ctx, query, id))
}

// UpdateStatus moves a withdrawal to a new status. Legality of the
// transition is the caller's concern.
func (r *WithdrawalRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.WithdrawalStatus, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx,
		`UPDATE withdrawals SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, updatedAt,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrWithdrawalNotFound
	}

	return nil
}

// ListByStatusBefore lists withdrawals in a status created at or
// before the cutoff, oldest first.
func (r *WithdrawalRepository) ListByStatusBefore(ctx context.Context, status domain.WithdrawalStatus, before time.Time) ([]*domain.Withdrawal, error) {
	query := `
		SELECT ` + withdrawalColumns + `
		FROM withdrawals
		WHERE status = $1 AND created_at <= $2
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, status, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var withdrawals []*domain.Withdrawal
	for rows.Next() {
		w, err := r.scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		withdrawals = append(withdrawals, w)
	}

	return withdrawals, rows.Err()
}

// CreateBatch inserts a batch shell; totals land via UpdateBatchTotals
// once the members are assigned.
func (r *WithdrawalRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, batch *domain.WithdrawalBatch) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		INSERT INTO withdrawal_batches (id, count, total_net, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := pgxTx.Exec(ctx, query,
		batch.ID,
		batch.Count,
		decimalToNumeric(batch.TotalNet),
		batch.CreatedAt,
	)

	return err
}

// UpdateBatchTotals persists the final member count and net total.
func (r *WithdrawalRepository) UpdateBatchTotals(ctx context.Context, tx usecase.Transaction, batchID string, count int, totalNet decimal.Decimal) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx,
		`UPDATE withdrawal_batches SET count = $2, total_net = $3 WHERE id = $1`,
		batchID, count, decimalToNumeric(totalNet),
	)

	return err
}

// AssignBatch links a withdrawal to its batch.
func (r *WithdrawalRepository) AssignBatch(ctx context.Context, tx usecase.Transaction, withdrawalID, batchID string, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx,
		`UPDATE withdrawals SET batch_id = $2, updated_at = $3 WHERE id = $1`,
		withdrawalID, batchID, updatedAt,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrWithdrawalNotFound
	}

	return nil
}

func (r *WithdrawalRepository) scanWithdrawal(row rowScanner) (*domain.Withdrawal, error) {
	var (
		w           domain.Withdrawal
		grossAmount pgtype.Numeric
		feeAmount   pgtype.Numeric
		netAmount   pgtype.Numeric
		batchID     pgtype.Text
	)

	err := row.Scan(
		&w.ID,
		&w.UserID,
		&grossAmount,
		&feeAmount,
		&netAmount,
		&w.Status,
		&w.ToWallet,
		&w.Network,
		&batchID,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrWithdrawalNotFound
	}
	if err != nil {
		return nil, err
	}

	w.GrossAmount = numericToDecimal(grossAmount)
	w.FeeAmount = numericToDecimal(feeAmount)
	w.NetAmount = numericToDecimal(netAmount)
	w.BatchID = pgTextToPtr(batchID)

	return &w, nil
}
