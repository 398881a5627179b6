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

const userColumns = `
	id, tier_name, tier_expires_at, founder,
	coins, period_coins, lifetime_coins, usdt_balance,
	spin_tickets, spin_tickets_expiry, free_spins_month, free_spins_used,
	referrer_id, referral_rewarded, league_name, created_at, updated_at
`

// UserRepository implements usecase.UserRepository.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.TierName,
		timePtrToPgTimestamptz(user.TierExpiresAt),
		user.Founder,
		user.Coins,
		user.PeriodCoins,
		user.LifetimeCoins,
		decimalToNumeric(user.UsdtBalance),
		user.SpinTickets,
		timePtrToPgTimestamptz(user.SpinTicketsExpiry),
		user.FreeSpinsMonth,
		user.FreeSpinsUsed,
		textPtr(user.ReferrerID),
		user.ReferralRewarded,
		user.LeagueName,
		user.CreatedAt,
		user.UpdatedAt,
	)

	return err
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a user by ID with a FOR UPDATE lock.
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.User, error) {
	pgxTx := tx.(*Tx).PgxTx()
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`

	return r.scanUser(pgxTx.QueryRow(ctx, query, id))
}

// GetByIDsForUpdate locks multiple user rows. The caller passes the
// IDs pre-sorted; ORDER BY id keeps the lock acquisition order stable
// regardless.
func (r *UserRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	pgxTx := tx.(*Tx).PgxTx()
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1) ORDER BY id FOR UPDATE`

	rows, err := pgxTx.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanUsers(rows)
}

// Update persists every mutable field.
func (r *UserRepository) Update(ctx context.Context, tx usecase.Transaction, user *domain.User) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		UPDATE users
		SET tier_name = $2, tier_expires_at = $3, founder = $4,
		    coins = $5, period_coins = $6, lifetime_coins = $7, usdt_balance = $8,
		    spin_tickets = $9, spin_tickets_expiry = $10,
		    free_spins_month = $11, free_spins_used = $12,
		    referral_rewarded = $13, league_name = $14, updated_at = now()
		WHERE id = $1
	`

	_, err := pgxTx.Exec(ctx, query,
		user.ID,
		user.TierName,
		timePtrToPgTimestamptz(user.TierExpiresAt),
		user.Founder,
		user.Coins,
		user.PeriodCoins,
		user.LifetimeCoins,
		decimalToNumeric(user.UsdtBalance),
		user.SpinTickets,
		timePtrToPgTimestamptz(user.SpinTicketsExpiry),
		user.FreeSpinsMonth,
		user.FreeSpinsUsed,
		user.ReferralRewarded,
		user.LeagueName,
	)

	return err
}

// ListActiveSubscribers lists users on the given tier whose
// subscription has not lapsed.
func (r *UserRepository) ListActiveSubscribers(ctx context.Context, tierName string, now time.Time) ([]*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE tier_name = $1 AND tier_expires_at > $2
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, tierName, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanUsers(rows)
}

// ListWithExpiredTickets lists users still holding tickets past their
// expiry.
func (r *UserRepository) ListWithExpiredTickets(ctx context.Context, now time.Time) ([]*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE spin_tickets > 0 AND spin_tickets_expiry IS NOT NULL AND spin_tickets_expiry <= $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanUsers(rows)
}

// ListExpiringTiers lists subscribers whose paid tier lapses inside
// the (from, until] window.
func (r *UserRepository) ListExpiringTiers(ctx context.Context, from, until time.Time) ([]*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE tier_expires_at IS NOT NULL AND tier_expires_at > $1 AND tier_expires_at <= $2
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, from, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanUsers(rows)
}

// CountFounders counts founders on a tier.
func (r *UserRepository) CountFounders(ctx context.Context, tierName string) (int, error) {
	query := `SELECT count(*) FROM users WHERE tier_name = $1 AND founder`

	var count int
	err := r.pool.QueryRow(ctx, query, tierName).Scan(&count)

	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *UserRepository) scanUser(row rowScanner) (*domain.User, error) {
	var (
		user              domain.User
		tierExpiresAt     pgtype.Timestamptz
		usdtBalance       pgtype.Numeric
		spinTicketsExpiry pgtype.Timestamptz
		referrerID        pgtype.Text
	)

	err := row.Scan(
		&user.ID,
		&user.TierName,
		&tierExpiresAt,
		&user.Founder,
		&user.Coins,
		&user.PeriodCoins,
		&user.LifetimeCoins,
		&usdtBalance,
		&user.SpinTickets,
		&spinTicketsExpiry,
		&user.FreeSpinsMonth,
		&user.FreeSpinsUsed,
		&referrerID,
		&user.ReferralRewarded,
		&user.LeagueName,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	user.TierExpiresAt = pgTimestamptzToTimePtr(tierExpiresAt)
	user.UsdtBalance = numericToDecimal(usdtBalance)
	user.SpinTicketsExpiry = pgTimestamptzToTimePtr(spinTicketsExpiry)
	user.ReferrerID = pgTextToPtr(referrerID)

	return &user, nil
}

func (r *UserRepository) scanUsers(rows pgx.Rows) ([]*domain.User, error) {
	var users []*domain.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}
