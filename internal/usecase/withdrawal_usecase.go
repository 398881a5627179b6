package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pravino/tapcore/internal/domain"
)

// WithdrawalUseCase handles the payout pipeline: request, audit delay,
// batching and the approve/reject terminal transitions.
type WithdrawalUseCase struct {
	txManager      TransactionManager
	userRepo       UserRepository
	withdrawalRepo WithdrawalRepository
	ledger         *LedgerUseCase
	idGen          IDGenerator
	gate           AbuseGate
	eco            Economics
}

// NewWithdrawalUseCase creates a new WithdrawalUseCase.
func NewWithdrawalUseCase(
	txManager TransactionManager,
	userRepo UserRepository,
	withdrawalRepo WithdrawalRepository,
	ledger *LedgerUseCase,
	idGen IDGenerator,
	gate AbuseGate,
	eco Economics,
) *WithdrawalUseCase {
	return &WithdrawalUseCase{
		txManager:      txManager,
		userRepo:       userRepo,
		withdrawalRepo: withdrawalRepo,
		ledger:         ledger,
		idGen:          idGen,
		gate:           gate,
		eco:            eco,
	}
}

// RequestWithdrawalInput represents a payout request.
type RequestWithdrawalInput struct {
	UserID   string
	Amount   decimal.Decimal
	ToWallet string
	Network  string
}

// RequestWithdrawal deducts the gross amount immediately and parks the
// request in the audit queue. A high abuse score lands it in flagged
/// instead of pending_audit. Three ledger entries are written: the
// request carries the balance movement, the fee and net entries record
// the breakdown without moving balance again.
func (uc *WithdrawalUseCase) RequestWithdrawal(ctx context.Context, input RequestWithdrawalInput) (*domain.Withdrawal, error) {
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	if input.Amount.LessThan(uc.eco.WithdrawalMin) {
		return nil, domain.ErrBelowMinimumAmount
	}

	if len(input.ToWallet) < 10 || len(input.ToWallet) > 128 {
		return nil, domain.ErrInvalidWallet
	}

	fee := uc.eco.WithdrawalFee
	net := input.Amount.Sub(fee)
	if !net.IsPositive() {
		return nil, domain.ErrBelowMinimumAmount
	}

	now := time.Now().UTC()

	status := domain.WithdrawalPendingAudit
	if uc.gate.Score(ctx, input.UserID, "withdrawal") >= uc.eco.FlagScoreThreshold {
		status = domain.WithdrawalFlagged
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	user, err := uc.userRepo.GetByIDForUpdate(ctx, tx, input.UserID)
	if err != nil {
		return nil, err
	}

	if user.UsdtBalance.LessThan(input.Amount) {
		return nil, domain.ErrInsufficientBalance
	}

	withdrawal := &domain.Withdrawal{
		ID:          uc.idGen.Generate(),
		UserID:      input.UserID,
		GrossAmount: input.Amount,
		FeeAmount:   fee,
		NetAmount:   net,
		Status:      status,
		ToWallet:    input.ToWallet,
		Network:     input.Network,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.withdrawalRepo.Create(ctx, tx, withdrawal); err != nil {
		return nil, err
	}

	before := user.UsdtBalance
	user.UsdtBalance = before.Sub(input.Amount)

	entries := []*domain.LedgerEntry{
		{
			UserID:        user.ID,
			EntryType:     domain.EntryWithdrawalRequest,
			Direction:     domain.DirectionDebit,
			Amount:        input.Amount,
			Currency:      domain.CurrencyUSDT,
			BalanceBefore: before,
			BalanceAfter:  user.UsdtBalance,
			RefID:         withdrawal.ID,
			TierAtTime:    user.TierName,
			CreatedAt:     now,
		},
		{
			UserID:        user.ID,
			EntryType:     domain.EntryWithdrawalFee,
			Direction:     domain.DirectionDebit,
			Amount:        fee,
			Currency:      domain.CurrencyUSDT,
			BalanceBefore: user.UsdtBalance,
			BalanceAfter:  user.UsdtBalance,
			RefID:         withdrawal.ID,
			TierAtTime:    user.TierName,
			Note:          "fee breakdown",
			CreatedAt:     now,
		},
		{
			UserID:        user.ID,
			EntryType:     domain.EntryWithdrawalNet,
			Direction:     domain.DirectionDebit,
			Amount:        net,
			Currency:      domain.CurrencyUSDT,
			BalanceBefore: user.UsdtBalance,
			BalanceAfter:  user.UsdtBalance,
			RefID:         withdrawal.ID,
			TierAtTime:    user.TierName,
			Note:          "net breakdown",
			CreatedAt:     now,
		},
	}

	for _, e := range entries {
		if err := uc.ledger.Append(ctx, tx, e); err != nil {
			return nil, err
		}
	}

	if err := uc.userRepo.Update(ctx, tx, user); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return withdrawal, nil
}

// PromoteReady moves pending_audit withdrawals whose audit delay has
// elapsed to ready. Flagged withdrawals stay put until reviewed.
func (uc *WithdrawalUseCase) PromoteReady(ctx context.Context, now time.Time) (int, error) {
	due, err := uc.withdrawalRepo.ListByStatusBefore(ctx, domain.WithdrawalPendingAudit, now.Add(-uc.eco.AuditDelay))
	if err != nil {
		return 0, err
	}

	promoted := 0

	for _, w := range due {
		if err := uc.transition(ctx, w.ID, domain.WithdrawalReady, now); err != nil {
			return promoted, err
		}
		promoted++
	}

	return promoted, nil
}

// Release moves a reviewed withdrawal (flagged or still pending) to
// ready ahead of the audit delay.
func (uc *WithdrawalUseCase) Release(ctx context.Context, id string) error {
	return uc.transition(ctx, id, domain.WithdrawalReady, time.Now().UTC())
}

// BatchReady groups every ready withdrawal into one immutable batch
// for the external payout rail. Returns nil when nothing is ready.
func (uc *WithdrawalUseCase) BatchReady(ctx context.Context, now time.Time) (*domain.WithdrawalBatch, error) {
	ready, err := uc.withdrawalRepo.ListByStatusBefore(ctx, domain.WithdrawalReady, now)
	if err != nil {
		return nil, err
	}

	if len(ready) == 0 {
		return nil, nil
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	batch := &domain.WithdrawalBatch{
		ID:        uc.idGen.Generate(),
		TotalNet:  decimal.Zero,
		CreatedAt: now,
	}

	if err := uc.withdrawalRepo.CreateBatch(ctx, tx, batch); err != nil {
		return nil, err
	}

	for _, candidate := range ready {
		w, err := uc.withdrawalRepo.GetByIDForUpdate(ctx, tx, candidate.ID)
		if err != nil {
			return nil, err
		}

		// Skip anything that moved since the list was taken.
		if !domain.CanTransition(w.Status, domain.WithdrawalBatched) {
			continue
		}

		if err := uc.withdrawalRepo.AssignBatch(ctx, tx, w.ID, batch.ID, now); err != nil {
			return nil, err
		}

		if err := uc.withdrawalRepo.UpdateStatus(ctx, tx, w.ID, domain.WithdrawalBatched, now); err != nil {
			return nil, err
		}

		batch.Count++
		batch.TotalNet = batch.TotalNet.Add(w.NetAmount)
	}

	if err := uc.withdrawalRepo.UpdateBatchTotals(ctx, tx, batch.ID, batch.Count, batch.TotalNet); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return batch, nil
}

// Approve marks a batched withdrawal as paid out. The money already
// left the wallet at request time; the entry is the audit record of
// completion.
func (uc *WithdrawalUseCase) Approve(ctx context.Context, id string) error {
	now := time.Now().UTC()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	w, err := uc.withdrawalRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}

	if !domain.CanTransition(w.Status, domain.WithdrawalApproved) {
		return domain.ErrInvalidStatusChange
	}

	user, err := uc.userRepo.GetByIDForUpdate(ctx, tx, w.UserID)
	if err != nil {
		return err
	}

	entry := &domain.LedgerEntry{
		UserID:        user.ID,
		EntryType:     domain.EntryWithdrawalCompleted,
		Direction:     domain.DirectionDebit,
		Amount:        w.NetAmount,
		Currency:      domain.CurrencyUSDT,
		BalanceBefore: user.UsdtBalance,
		BalanceAfter:  user.UsdtBalance,
		RefID:         w.ID,
		TierAtTime:    user.TierName,
		CreatedAt:     now,
	}
	if err := uc.ledger.Append(ctx, tx, entry); err != nil {
		return err
	}

	if err := uc.withdrawalRepo.UpdateStatus(ctx, tx, w.ID, domain.WithdrawalApproved, now); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Reject refuses a withdrawal at any non-terminal stage and refunds
// the full gross amount with a reversing credit.
func (uc *WithdrawalUseCase) Reject(ctx context.Context, id, reason string) error {
	now := time.Now().UTC()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	w, err := uc.withdrawalRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}

	if !domain.CanTransition(w.Status, domain.WithdrawalRejected) {
		return domain.ErrInvalidStatusChange
	}

	user, err := uc.userRepo.GetByIDForUpdate(ctx, tx, w.UserID)
	if err != nil {
		return err
	}

	before := user.UsdtBalance
	user.UsdtBalance = before.Add(w.GrossAmount)

	entry := &domain.LedgerEntry{
		UserID:        user.ID,
		EntryType:     domain.EntryWithdrawalRejected,
		Direction:     domain.DirectionCredit,
		Amount:        w.GrossAmount,
		Currency:      domain.CurrencyUSDT,
		BalanceBefore: before,
		BalanceAfter:  user.UsdtBalance,
		RefID:         w.ID,
		TierAtTime:    user.TierName,
		Note:          reason,
		CreatedAt:     now,
	}
	if err := uc.ledger.Append(ctx, tx, entry); err != nil {
		return err
	}

	if err := uc.userRepo.Update(ctx, tx, user); err != nil {
		return err
	}

	if err := uc.withdrawalRepo.UpdateStatus(ctx, tx, w.ID, domain.WithdrawalRejected, now); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetWithdrawal retrieves a withdrawal by ID.
func (uc *WithdrawalUseCase) GetWithdrawal(ctx context.Context, id string) (*domain.Withdrawal, error) {
	return uc.withdrawalRepo.GetByID(ctx, id)
}

func (uc *WithdrawalUseCase) transition(ctx context.Context, id string, to domain.WithdrawalStatus, now time.Time) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	w, err := uc.withdrawalRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}

	if !domain.CanTransition(w.Status, to) {
		return domain.ErrInvalidStatusChange
	}

	if err := uc.withdrawalRepo.UpdateStatus(ctx, tx, w.ID, to, now); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
