package usecase

import (
	"context"
	"time"

	"github.com/pravino/tapcore/internal/domain"
)

// PredictionUseCase handles BTC price call submission. Resolution
// happens in the settlement cycle.
type PredictionUseCase struct {
	txManager      TransactionManager
	userRepo       UserRepository
	predictionRepo PredictionRepository
	oracle         PriceOracle
	idGen          IDGenerator
}

// NewPredictionUseCase creates a new PredictionUseCase.
func NewPredictionUseCase(
	txManager TransactionManager,
	userRepo UserRepository,
	predictionRepo PredictionRepository,
	oracle PriceOracle,
	idGen IDGenerator,
) *PredictionUseCase {
	return &PredictionUseCase{
		txManager:      txManager,
		userRepo:       userRepo,
		predictionRepo: predictionRepo,
		oracle:         oracle,
		idGen:          idGen,
	}
}

// SubmitPredictionInput represents a price call.
type SubmitPredictionInput struct {
	UserID    string
	Direction domain.PredictionDirection
}

// SubmitPrediction records a call against the current consensus price.
// Submissions are refused while the oracle is frozen; the price locked
// at submit time is what settlement compares against.
func (uc *PredictionUseCase) SubmitPrediction(ctx context.Context, input SubmitPredictionInput) (*domain.Prediction, error) {
	if input.Direction != domain.PredictHigher && input.Direction != domain.PredictLower {
		return nil, domain.ErrInvalidDirection
	}

	now := time.Now().UTC()

	user, err := uc.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if !user.HasActiveSubscription(now) {
		return nil, domain.ErrSubscriptionRequired
	}

	open, err := uc.predictionRepo.HasOpen(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if open {
		return nil, domain.ErrPredictionPending
	}

	if uc.oracle.Frozen() {
		return nil, domain.ErrOracleFrozen
	}

	price, err := uc.oracle.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	prediction := &domain.Prediction{
		ID:            uc.idGen.Generate(),
		UserID:        input.UserID,
		TierName:      user.EffectiveTier(now),
		Direction:     input.Direction,
		PriceAtSubmit: price.Price,
		CreatedAt:     now,
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.predictionRepo.Create(ctx, tx, prediction); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return prediction, nil
}
