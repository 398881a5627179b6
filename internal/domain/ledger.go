package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side of a ledger entry.
type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// Currency identifies the unit an entry is denominated in.
type Currency string

const (
	CurrencyCoins   Currency = "COINS"
	CurrencyUSDT    Currency = "USDT"
	CurrencyTickets Currency = "TICKETS"
)

// EntryType classifies ledger entries.
type EntryType string

const (
	EntryTapEarn             EntryType = "tap_earn"
	EntryPredictWin          EntryType = "predict_win"
	EntryPredictLoss         EntryType = "predict_loss"
	EntryPredictReward       EntryType = "predict_reward"
	EntryWheelWin            EntryType = "wheel_win"
	EntryLockedPrize         EntryType = "locked_prize"
	EntrySubscriptionPayment EntryType = "subscription_payment"
	EntrySpinTicketGrant     EntryType = "spin_ticket_grant"
	EntrySpinTicketUse       EntryType = "spin_ticket_use"
	EntrySpinTicketExpire    EntryType = "spin_ticket_expire"
	EntryDripRelease         EntryType = "drip_release"
	EntryWithdrawalRequest   EntryType = "withdrawal_request"
	EntryWithdrawalFee       EntryType = "withdrawal_fee"
	EntryWithdrawalNet       EntryType = "withdrawal_net"
	EntryWithdrawalCompleted EntryType = "withdrawal_completed"
	EntryWithdrawalRejected  EntryType = "withdrawal_rejected"
	EntryReferralReward      EntryType = "referral_reward"
	EntryTierUpgrade         EntryType = "tier_upgrade"
	EntryTierDowngrade       EntryType = "tier_downgrade"
	EntryLeaderboardReward   EntryType = "leaderboard_reward"
)

// GenesisHash is the prev_hash sentinel of a user's first ledger entry.
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// LedgerEntry is one immutable row of the hash-chained journal. Once
// EntryHash is finalized the row is never updated or deleted.
type LedgerEntry struct {
	ID            string
	UserID        string
	EntryType     EntryType
	Direction     Direction
	Amount        decimal.Decimal
	Currency      Currency
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Game          string
	RefID         string
	TierAtTime    string
	Note          string
	PrevHash      string
	EntryHash     string
	CreatedAt     time.Time
}

// ComputeHash returns the SHA-256 hash binding the entry to its
// predecessor. The hash covers every field that carries financial
// meaning; Note and Game are descriptive and deliberately excluded.
func (e *LedgerEntry) ComputeHash() string {
	payload := strings.Join([]string{
		e.ID,
		e.UserID,
		string(e.EntryType),
		string(e.Direction),
		e.Amount.String(),
		e.BalanceBefore.String(),
		e.BalanceAfter.String(),
		e.PrevHash,
	}, "|")

	sum := sha256.Sum256([]byte(payload))

	return hex.EncodeToString(sum[:])
}

// Verify recomputes the hash and checks linkage against the given
// predecessor hash.
func (e *LedgerEntry) Verify(prevHash string) error {
	if e.PrevHash != prevHash {
		return ErrChainBroken
	}

	if e.EntryHash != e.ComputeHash() {
		return ErrChainBroken
	}

	return nil
}
