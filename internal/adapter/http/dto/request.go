package dto

import (
	"github.com/shopspring/decimal"

	"github.com/pravino/tapcore/internal/domain"
	"github.com/pravino/tapcore/internal/usecase"
)

// ProcessPaymentRequest represents a verified subscription payment.
type ProcessPaymentRequest struct {
	UserID   string          `json:"user_id"   validate:"required"`
	TxHash   string          `json:"tx_hash"   validate:"required,min=10"`
	TierName string          `json:"tier_name" validate:"required"`
	Amount   decimal.Decimal `json:"amount"    validate:"required"`
}

// ToUseCaseInput converts to use case input.
func (r *ProcessPaymentRequest) ToUseCaseInput() usecase.ProcessPaymentInput {
	return usecase.ProcessPaymentInput{
		UserID:   r.UserID,
		TxHash:   r.TxHash,
		TierName: r.TierName,
		Amount:   r.Amount,
	}
}

// SubmitPredictionRequest represents a BTC price call.
type SubmitPredictionRequest struct {
	UserID    string `json:"user_id"   validate:"required"`
	Direction string `json:"direction" validate:"required,oneof=higher lower"`
}

// ToUseCaseInput converts to use case input.
func (r *SubmitPredictionRequest) ToUseCaseInput() usecase.SubmitPredictionInput {
	return usecase.SubmitPredictionInput{
		UserID:    r.UserID,
		Direction: domain.PredictionDirection(r.Direction),
	}
}

// RequestWithdrawalRequest represents a payout request.
type RequestWithdrawalRequest struct {
	UserID   string          `json:"user_id"   validate:"required"`
	Amount   decimal.Decimal `json:"amount"    validate:"required"`
	ToWallet string          `json:"to_wallet" validate:"required,min=10,max=128"`
	Network  string          `json:"network"   validate:"required"`
}

// ToUseCaseInput converts to use case input.
func (r *RequestWithdrawalRequest) ToUseCaseInput() usecase.RequestWithdrawalInput {
	return usecase.RequestWithdrawalInput{
		UserID:   r.UserID,
		Amount:   r.Amount,
		ToWallet: r.ToWallet,
		Network:  r.Network,
	}
}

// RejectWithdrawalRequest carries the manual rejection reason.
type RejectWithdrawalRequest struct {
	Reason string `json:"reason" validate:"required"`
}
