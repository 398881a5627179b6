package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pravino/tapcore/internal/domain"
)

// TransactionResponse represents a processed payment in API responses.
type TransactionResponse struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	TxHash         string          `json:"tx_hash"`
	TierName       string          `json:"tier_name"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	AdminAmount    decimal.Decimal `json:"admin_amount"`
	TreasuryAmount decimal.Decimal `json:"treasury_amount"`
	ReferralAmount decimal.Decimal `json:"referral_amount"`
	CreatedAt      time.Time       `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:             t.ID,
		UserID:         t.UserID,
		TxHash:         t.TxHash,
		TierName:       t.TierName,
		TotalAmount:    t.TotalAmount,
		AdminAmount:    t.AdminAmount,
		TreasuryAmount: t.TreasuryAmount,
		ReferralAmount: t.ReferralAmount,
		CreatedAt:      t.CreatedAt,
	}
}

// AllocationResponse represents a pool allocation in API responses.
type AllocationResponse struct {
	ID             string          `json:"id"`
	TransactionID  string          `json:"transaction_id"`
	TierName       string          `json:"tier_name"`
	Game           string          `json:"game"`
	DripType       string          `json:"drip_type"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	DailyAmount    decimal.Decimal `json:"daily_amount"`
	TotalDays      int             `json:"total_days"`
	DaysReleased   int             `json:"days_released"`
	AmountReleased decimal.Decimal `json:"amount_released"`
	DepositDate    time.Time       `json:"deposit_date"`
	ExpiryDate     time.Time       `json:"expiry_date"`
	Active         bool            `json:"active"`
}

// AllocationsFromDomain converts domain allocations to responses.
func AllocationsFromDomain(allocations []*domain.PoolAllocation) []*AllocationResponse {
	result := make([]*AllocationResponse, len(allocations))
	for i, a := range allocations {
		result[i] = &AllocationResponse{
			ID:             a.ID,
			TransactionID:  a.TransactionID,
			TierName:       a.TierName,
			Game:           string(a.Game),
			DripType:       string(a.DripType),
			TotalAmount:    a.TotalAmount,
			DailyAmount:    a.DailyAmount,
			TotalDays:      a.TotalDays,
			DaysReleased:   a.DaysReleased,
			AmountReleased: a.AmountReleased,
			DepositDate:    a.DepositDate,
			ExpiryDate:     a.ExpiryDate,
			Active:         a.Active,
		}
	}

	return result
}

// LedgerEntryResponse represents a ledger entry in API responses.
type LedgerEntryResponse struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	EntryType     string          `json:"entry_type"`
	Direction     string          `json:"direction"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Game          string          `json:"game,omitempty"`
	RefID         string          `json:"ref_id,omitempty"`
	TierAtTime    string          `json:"tier_at_time"`
	Note          string          `json:"note,omitempty"`
	PrevHash      string          `json:"prev_hash"`
	EntryHash     string          `json:"entry_hash"`
	CreatedAt     time.Time       `json:"created_at"`
}

// LedgerEntriesFromDomain converts domain entries to responses.
func LedgerEntriesFromDomain(entries []*domain.LedgerEntry) []*LedgerEntryResponse {
	result := make([]*LedgerEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = &LedgerEntryResponse{
			ID:            e.ID,
			UserID:        e.UserID,
			EntryType:     string(e.EntryType),
			Direction:     string(e.Direction),
			Amount:        e.Amount,
			Currency:      string(e.Currency),
			BalanceBefore: e.BalanceBefore,
			BalanceAfter:  e.BalanceAfter,
			Game:          e.Game,
			RefID:         e.RefID,
			TierAtTime:    e.TierAtTime,
			Note:          e.Note,
			PrevHash:      e.PrevHash,
			EntryHash:     e.EntryHash,
			CreatedAt:     e.CreatedAt,
		}
	}

	return result
}

// ChainReportResponse represents a chain verification result.
type ChainReportResponse struct {
	Valid         bool   `json:"valid"`
	Entries       int    `json:"entries"`
	BrokenEntryID string `json:"broken_entry_id,omitempty"`
}

// PredictionResponse represents a prediction in API responses.
type PredictionResponse struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	TierName      string          `json:"tier_name"`
	Direction     string          `json:"direction"`
	PriceAtSubmit decimal.Decimal `json:"price_at_submit"`
	Resolved      bool            `json:"resolved"`
	Won           bool            `json:"won"`
	PayoutAmount  decimal.Decimal `json:"payout_amount"`
	CreatedAt     time.Time       `json:"created_at"`
	ResolvedAt    *time.Time      `json:"resolved_at,omitempty"`
}

// PredictionFromDomain converts a domain prediction to a response.
func PredictionFromDomain(p *domain.Prediction) *PredictionResponse {
	return &PredictionResponse{
		ID:            p.ID,
		UserID:        p.UserID,
		TierName:      p.TierName,
		Direction:     string(p.Direction),
		PriceAtSubmit: p.PriceAtSubmit,
		Resolved:      p.Resolved,
		Won:           p.Won,
		PayoutAmount:  p.PayoutAmount,
		CreatedAt:     p.CreatedAt,
		ResolvedAt:    p.ResolvedAt,
	}
}

// SpinOutcomeResponse represents a spin outcome in API responses.
type SpinOutcomeResponse struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	TierName   string          `json:"tier_name"`
	MonthKey   string          `json:"month_key"`
	Draw       int             `json:"draw"`
	DrawnClass string          `json:"drawn_class"`
	PaidClass  string          `json:"paid_class"`
	CashAmount decimal.Decimal `json:"cash_amount"`
	CoinAmount int64           `json:"coin_amount"`
	Locked     bool            `json:"locked"`
	CreatedAt  time.Time       `json:"created_at"`
}

// SpinOutcomeFromDomain converts a domain outcome to a response.
func SpinOutcomeFromDomain(o *domain.SpinOutcome) *SpinOutcomeResponse {
	return &SpinOutcomeResponse{
		ID:         o.ID,
		UserID:     o.UserID,
		TierName:   o.TierName,
		MonthKey:   o.MonthKey,
		Draw:       o.Draw,
		DrawnClass: string(o.DrawnClass),
		PaidClass:  string(o.PaidClass),
		CashAmount: o.CashAmount,
		CoinAmount: o.CoinAmount,
		Locked:     o.Locked,
		CreatedAt:  o.CreatedAt,
	}
}

// SpinOutcomesFromDomain converts domain outcomes to responses.
func SpinOutcomesFromDomain(outcomes []*domain.SpinOutcome) []*SpinOutcomeResponse {
	result := make([]*SpinOutcomeResponse, len(outcomes))
	for i, o := range outcomes {
		result[i] = SpinOutcomeFromDomain(o)
	}

	return result
}

// WithdrawalResponse represents a withdrawal in API responses.
type WithdrawalResponse struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	GrossAmount decimal.Decimal `json:"gross_amount"`
	FeeAmount   decimal.Decimal `json:"fee_amount"`
	NetAmount   decimal.Decimal `json:"net_amount"`
	Status      string          `json:"status"`
	ToWallet    string          `json:"to_wallet"`
	Network     string          `json:"network"`
	BatchID     *string         `json:"batch_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// WithdrawalFromDomain converts a domain withdrawal to a response.
func WithdrawalFromDomain(w *domain.Withdrawal) *WithdrawalResponse {
	return &WithdrawalResponse{
		ID:          w.ID,
		UserID:      w.UserID,
		GrossAmount: w.GrossAmount,
		FeeAmount:   w.FeeAmount,
		NetAmount:   w.NetAmount,
		Status:      string(w.Status),
		ToWallet:    w.ToWallet,
		Network:     w.Network,
		BatchID:     w.BatchID,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

// WithdrawalBatchResponse represents a payout batch.
type WithdrawalBatchResponse struct {
	ID        string          `json:"id"`
	Count     int             `json:"count"`
	TotalNet  decimal.Decimal `json:"total_net"`
	CreatedAt time.Time       `json:"created_at"`
}

// BatchFromDomain converts a domain batch to a response.
func BatchFromDomain(b *domain.WithdrawalBatch) *WithdrawalBatchResponse {
	return &WithdrawalBatchResponse{
		ID:        b.ID,
		Count:     b.Count,
		TotalNet:  b.TotalNet,
		CreatedAt: b.CreatedAt,
	}
}

// SummaryResponse represents a settlement summary in API responses.
type SummaryResponse struct {
	ID              string          `json:"id"`
	CycleDate       time.Time       `json:"cycle_date"`
	TierName        string          `json:"tier_name"`
	Game            string          `json:"game"`
	ActiveUsers     int             `json:"active_users"`
	DailyAllocation decimal.Decimal `json:"daily_allocation"`
	Rollover        decimal.Decimal `json:"rollover"`
	TotalPot        decimal.Decimal `json:"total_pot"`
	WinnersCount    int             `json:"winners_count"`
	SharePerWinner  decimal.Decimal `json:"share_per_winner"`
	NewRollover     decimal.Decimal `json:"new_rollover"`
	CreatedAt       time.Time       `json:"created_at"`
}

// SummariesFromDomain converts domain summaries to responses.
func SummariesFromDomain(summaries []*domain.SettlementSummary) []*SummaryResponse {
	result := make([]*SummaryResponse, len(summaries))
	for i, s := range summaries {
		result[i] = &SummaryResponse{
			ID:              s.ID,
			CycleDate:       s.CycleDate,
			TierName:        s.TierName,
			Game:            string(s.Game),
			ActiveUsers:     s.ActiveUsers,
			DailyAllocation: s.DailyAllocation,
			Rollover:        s.Rollover,
			TotalPot:        s.TotalPot,
			WinnersCount:    s.WinnersCount,
			SharePerWinner:  s.SharePerWinner,
			NewRollover:     s.NewRollover,
			CreatedAt:       s.CreatedAt,
		}
	}

	return result
}

// OracleStatusResponse reports the consensus price feed state.
type OracleStatusResponse struct {
	Frozen    bool            `json:"frozen"`
	Price     decimal.Decimal `json:"price,omitempty"`
	Change24h decimal.Decimal `json:"change_24h,omitempty"`
	Sources   []string        `json:"sources,omitempty"`
	Median    bool            `json:"median"`
	FetchedAt *time.Time      `json:"fetched_at,omitempty"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
