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

const ledgerColumns = `
	id, user_id, entry_type, direction, amount, currency,
	balance_before, balance_after, game, ref_id, tier_at_time, note,
	prev_hash, entry_hash, created_at
`

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// Create inserts the entry. EntryHash is whatever the caller set; the
// finalized hash lands via SetHash in the same transaction.
func (r *LedgerRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		INSERT INTO ledger_entries (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := pgxTx.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.EntryType,
		entry.Direction,
		decimalToNumeric(entry.Amount),
		entry.Currency,
		decimalToNumeric(entry.BalanceBefore),
		decimalToNumeric(entry.BalanceAfter),
		entry.Game,
		entry.RefID,
		entry.TierAtTime,
		entry.Note,
		entry.PrevHash,
		entry.EntryHash,
		entry.CreatedAt,
	)

	return err
}

// SetHash finalizes the entry hash. This is the only update the table
// ever sees.
func (r *LedgerRepository) SetHash(ctx context.Context, tx usecase.Transaction, id, hash string) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `UPDATE ledger_entries SET entry_hash = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// GetLastByUser returns the chain head for a user, nil when the chain
// is empty. Runs inside the append transaction so the head cannot move
// underneath the caller.
func (r *LedgerRepository) GetLastByUser(ctx context.Context, tx usecase.Transaction, userID string) (*domain.LedgerEntry, error) {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	entry, err := r.scanEntry(pgxTx.QueryRow(ctx, query, userID))
	if errors.Is(err, domain.ErrEntryNotFound) {
		return nil, nil
	}

	return entry, err
}

// ListByUserAsc returns the full chain in append order, for
// verification walks.
func (r *LedgerRepository) ListByUserAsc(ctx context.Context, userID string) ([]*domain.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanEntries(rows)
}

// ListByUser returns a page of entries, newest first.
func (r *LedgerRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanEntries(rows)
}

func (r *LedgerRepository) scanEntry(row rowScanner) (*domain.LedgerEntry, error) {
	var (
		entry         domain.LedgerEntry
		amount        pgtype.Numeric
		balanceBefore pgtype.Numeric
		balanceAfter  pgtype.Numeric
	)

	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.EntryType,
		&entry.Direction,
		&amount,
		&entry.Currency,
		&balanceBefore,
		&balanceAfter,
		&entry.Game,
		&entry.RefID,
		&entry.TierAtTime,
		&entry.Note,
		&entry.PrevHash,
		&entry.EntryHash,
		&entry.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}

	entry.Amount = numericToDecimal(amount)
	entry.BalanceBefore = numericToDecimal(balanceBefore)
	entry.BalanceAfter = numericToDecimal(balanceAfter)

	return &entry, nil
}

func (r *LedgerRepository) scanEntries(rows pgx.Rows) ([]*domain.LedgerEntry, error) {
	var entries []*domain.LedgerEntry
	for rows.Next() {
		entry, err := r.scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
