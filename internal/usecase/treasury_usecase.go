package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pravino/tapcore/internal/domain"
)

// TreasuryUseCase handles verified subscription payments: the
// admin/treasury split, pool allocations, referral rewards and the
// subscription grant itself.
type TreasuryUseCase struct {
	txManager    TransactionManager
	userRepo     UserRepository
	treasuryRepo TreasuryRepository
	vaultRepo    VaultRepository
	ledger       *LedgerUseCase
	idGen        IDGenerator
	eco          Economics
}

// NewTreasuryUseCase creates a new TreasuryUseCase.
func NewTreasuryUseCase(
	txManager TransactionManager,
	userRepo UserRepository,
	treasuryRepo TreasuryRepository,
	vaultRepo VaultRepository,
	ledger *LedgerUseCase,
	idGen IDGenerator,
	eco Economics,
) *TreasuryUseCase {
	return &TreasuryUseCase{
		txManager:    txManager,
		userRepo:     userRepo,
		treasuryRepo: treasuryRepo,
		vaultRepo:    vaultRepo,
		ledger:       ledger,
		idGen:        idGen,
		eco:          eco,
	}
}

// ProcessPaymentInput represents one externally verified payment.
type ProcessPaymentInput struct {
	UserID   string
	TxHash   string
	TierName string
	Amount   decimal.Decimal
}

// ProcessPayment ingests a verified payment exactly once, keyed by the
// external transaction hash. Replaying the same hash with the same
// payload returns the original transaction; the same hash with a
// different payload is rejected.
func (uc *TreasuryUseCase) ProcessPayment(ctx context.Context, input ProcessPaymentInput) (*domain.Transaction, error) {
	tier, ok := uc.eco.Tiers[input.TierName]
	if !ok {
		return nil, domain.ErrUnknownTier
	}

	if input.Amount.Sub(tier.PriceUSDT).Abs().GreaterThan(uc.eco.PriceEpsilon) {
		return nil, domain.ErrAmountMismatch
	}

	existing, err := uc.treasuryRepo.GetTransactionByHash(ctx, input.TxHash)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if existing.UserID == input.UserID && existing.TierName == input.TierName && existing.TotalAmount.Equal(input.Amount) {
			return existing, nil
		}

		return nil, domain.ErrDuplicateTxHash
	}

	// The referrer is set at signup and never changes, so reading it
	// before taking locks is safe. Both rows are then locked in sorted
	// order (deadlock prevention).
	plain, err := uc.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	ids := []string{input.UserID}
	referred := plain.ReferrerID != nil && *plain.ReferrerID != plain.ID && !plain.ReferralRewarded
	if referred {
		ids = append(ids, *plain.ReferrerID)
	}
	sort.Strings(ids)

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	users, err := uc.userRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	if len(users) != len(ids) {
		return nil, domain.ErrUserNotFound
	}

	byID := make(map[string]*domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	user := byID[input.UserID]

	var referrer *domain.User
	if referred {
		referrer = byID[*user.ReferrerID]
		referred = referrer != nil && !user.ReferralRewarded
	}

	now := time.Now().UTC()

	admin, treasury, referral := domain.SplitPayment(
		input.Amount, uc.eco.AdminSplit, uc.eco.TreasurySplit, uc.eco.ReferralReward, referred)

	txn := &domain.Transaction{
		ID:             uc.idGen.Generate(),
		UserID:         input.UserID,
		TxHash:         input.TxHash,
		TierName:       tier.Name,
		TotalAmount:    input.Amount,
		AdminAmount:    admin,
		TreasuryAmount: treasury,
		ReferralAmount: referral,
		CreatedAt:      now,
	}

	// The unique index on tx_hash backstops the check above under
	// concurrent replays.
	if err := uc.treasuryRepo.CreateTransaction(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := uc.createAllocations(ctx, tx, txn, tier, treasury, now); err != nil {
		return nil, err
	}

	if err := uc.grantSubscription(ctx, tx, user, tier, now); err != nil {
		return nil, err
	}

	if referred && referral.IsPositive() {
		if err := uc.payReferral(ctx, tx, user, referrer, referral, txn.ID, now); err != nil {
			return nil, err
		}
	}

	if err := uc.userRepo.Update(ctx, tx, user); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return txn, nil
}

// createAllocations carves the treasury share into the three game
// pools. Tap and predict drip daily; the wheel share is credited to
// the tier's month vault immediately.
func (uc *TreasuryUseCase) createAllocations(
	ctx context.Context,
	tx Transaction,
	txn *domain.Transaction,
	tier domain.Tier,
	treasury decimal.Decimal,
	now time.Time,
) error {
	tap, predict, wheel := domain.SplitTreasury(treasury, uc.eco.TapShare, uc.eco.PredictShare)
	expiry := now.AddDate(0, 0, uc.eco.DripDays)

	daily := []struct {
		game   domain.Game
		amount decimal.Decimal
	}{
		{domain.GameTap, tap},
		{domain.GamePredict, predict},
	}

	for _, d := range daily {
		if !d.amount.IsPositive() {
			continue
		}

		alloc := &domain.PoolAllocation{
			ID:             uc.idGen.Generate(),
			TransactionID:  txn.ID,
			TierName:       tier.Name,
			Game:           d.game,
			DripType:       domain.DripDaily,
			TotalAmount:    d.amount,
			DailyAmount:    domain.DailyDripAmount(d.amount, uc.eco.DripDays),
			TotalDays:      uc.eco.DripDays,
			AmountReleased: decimal.Zero,
			DepositDate:    now,
			ExpiryDate:     expiry,
			Active:         true,
		}

		if err := uc.treasuryRepo.CreateAllocation(ctx, tx, alloc); err != nil {
			return err
		}
	}

	if !wheel.IsPositive() {
		return nil
	}

	alloc := &domain.PoolAllocation{
		ID:             uc.idGen.Generate(),
		TransactionID:  txn.ID,
		TierName:       tier.Name,
		Game:           domain.GameWheel,
		DripType:       domain.DripInstant,
		TotalAmount:    wheel,
		DailyAmount:    decimal.Zero,
		AmountReleased: wheel,
		DepositDate:    now,
		ExpiryDate:     expiry,
		Active:         true,
	}

	if err := uc.treasuryRepo.CreateAllocation(ctx, tx, alloc); err != nil {
		return err
	}

	vault, err := uc.vaultRepo.GetOrCreateForUpdate(ctx, tx, tier.Name, domain.VaultMonthKey(now))
	if err != nil {
		return err
	}

	return uc.vaultRepo.UpdateBalance(ctx, tx, vault.ID, vault.Balance.Add(wheel), now)
}

// grantSubscription applies the tier, the ticket grant and the founder
// flag, and writes the payment and grant ledger entries.
func (uc *TreasuryUseCase) grantSubscription(
	ctx context.Context,
	tx Transaction,
	user *domain.User,
	tier domain.Tier,
	now time.Time,
) error {
	previousTier := user.EffectiveTier(now)

	expiresAt := now.AddDate(0, 0, uc.eco.SubscriptionDays)
	// A renewal before lapse extends from the current expiry, so the
	// user never loses paid days.
	if user.TierName == tier.Name && user.TierExpiresAt != nil && user.TierExpiresAt.After(now) {
		expiresAt = user.TierExpiresAt.AddDate(0, 0, uc.eco.SubscriptionDays)
	}

	user.TierName = tier.Name
	user.TierExpiresAt = &expiresAt

	if !user.Founder {
		founders, err := uc.userRepo.CountFounders(ctx, tier.Name)
		if err != nil {
			return err
		}
		if founders < tier.FounderSlots {
			user.Founder = true
		}
	}

	// The payment moved external money, not wallet balance.
	payment := &domain.LedgerEntry{
		UserID:        user.ID,
		EntryType:     domain.EntrySubscriptionPayment,
		Direction:     domain.DirectionDebit,
		Amount:        tier.PriceUSDT,
		Currency:      domain.CurrencyUSDT,
		BalanceBefore: user.UsdtBalance,
		BalanceAfter:  user.UsdtBalance,
		TierAtTime:    tier.Name,
		Note:          "subscription " + tier.Name,
		CreatedAt:     now,
	}
	if err := uc.ledger.Append(ctx, tx, payment); err != nil {
		return err
	}

	if previousTier != tier.Name {
		// A paid move to a cheaper tier is a downgrade; everything
		// else, including leaving FREE, is an upgrade.
		changeType := domain.EntryTierUpgrade
		if prev, ok := uc.eco.Tiers[previousTier]; ok && tier.PriceUSDT.LessThan(prev.PriceUSDT) {
			changeType = domain.EntryTierDowngrade
		}

		change := &domain.LedgerEntry{
			UserID:        user.ID,
			EntryType:     changeType,
			Direction:     domain.DirectionCredit,
			Amount:        decimal.Zero,
			Currency:      domain.CurrencyUSDT,
			BalanceBefore: user.UsdtBalance,
			BalanceAfter:  user.UsdtBalance,
			TierAtTime:    tier.Name,
			Note:          previousTier + " -> " + tier.Name,
			CreatedAt:     now,
		}
		if err := uc.ledger.Append(ctx, tx, change); err != nil {
			return err
		}
	}

	if tier.SpinTickets == 0 {
		return nil
	}

	ticketsBefore := user.SpinTickets
	user.SpinTickets += tier.SpinTickets
	ticketExpiry := now.AddDate(0, 0, uc.eco.TicketExpiryDays)
	user.SpinTicketsExpiry = &ticketExpiry

	grant := &domain.LedgerEntry{
		UserID:        user.ID,
		EntryType:     domain.EntrySpinTicketGrant,
		Direction:     domain.DirectionCredit,
		Amount:        decimal.NewFromInt(int64(tier.SpinTickets)),
		Currency:      domain.CurrencyTickets,
		BalanceBefore: decimal.NewFromInt(int64(ticketsBefore)),
		BalanceAfter:  decimal.NewFromInt(int64(user.SpinTickets)),
		TierAtTime:    tier.Name,
		CreatedAt:     now,
	}

	return uc.ledger.Append(ctx, tx, grant)
}

// payReferral credits the one-time reward to the referrer and marks
// the referred user so it never pays twice.
func (uc *TreasuryUseCase) payReferral(
	ctx context.Context,
	tx Transaction,
	user, referrer *domain.User,
	referral decimal.Decimal,
	transactionID string,
	now time.Time,
) error {
	before := referrer.UsdtBalance
	referrer.UsdtBalance = before.Add(referral)

	entry := &domain.LedgerEntry{
		UserID:        referrer.ID,
		EntryType:     domain.EntryReferralReward,
		Direction:     domain.DirectionCredit,
		Amount:        referral,
		Currency:      domain.CurrencyUSDT,
		BalanceBefore: before,
		BalanceAfter:  referrer.UsdtBalance,
		RefID:         transactionID,
		TierAtTime:    referrer.TierName,
		CreatedAt:     now,
	}
	if err := uc.ledger.Append(ctx, tx, entry); err != nil {
		return err
	}

	user.ReferralRewarded = true

	return uc.userRepo.Update(ctx, tx, referrer)
}

// GetTransaction retrieves a processed payment by its external hash.
func (uc *TreasuryUseCase) GetTransaction(ctx context.Context, txHash string) (*domain.Transaction, error) {
	txn, err := uc.treasuryRepo.GetTransactionByHash(ctx, txHash)
	if err != nil {
		return nil, err
	}

	if txn == nil {
		return nil, domain.ErrTransactionNotFound
	}

	return txn, nil
}

// ListAllocations lists the pool allocations carved from a payment.
func (uc *TreasuryUseCase) ListAllocations(ctx context.Context, transactionID string) ([]*domain.PoolAllocation, error) {
	return uc.treasuryRepo.ListAllocationsByTransaction(ctx, transactionID)
}
