package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pravino/tapcore/internal/adapter/http/dto"
	"github.com/pravino/tapcore/internal/domain"
	"github.com/pravino/tapcore/internal/infrastructure/metrics"
	"github.com/pravino/tapcore/internal/usecase"
)

// PaymentService defines the behavior needed by PaymentHandler.
type PaymentService interface {
	ProcessPayment(ctx context.Context, input usecase.ProcessPaymentInput) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, txHash string) (*domain.Transaction, error)
	ListAllocations(ctx context.Context, transactionID string) ([]*domain.PoolAllocation, error)
}

// PaymentHandler handles subscription payment HTTP requests.
type PaymentHandler struct {
	treasuryUC PaymentService
	metrics    *metrics.Metrics
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(treasuryUC PaymentService, m *metrics.Metrics) *PaymentHandler {
	return &PaymentHandler{treasuryUC: treasuryUC, metrics: m}
}

// Create ingests a verified payment. Replaying the same tx hash with
// the same payload returns the original transaction.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.ProcessPaymentRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	txn, err := h.treasuryUC.ProcessPayment(r.Context(), req.ToUseCaseInput())
	if err != nil {
		if h.metrics != nil {
			h.metrics.PaymentErrors.WithLabelValues(paymentErrorType(err)).Inc()
		}
		writeError(w, mapDomainError(err), "failed to process payment", err.Error())

		return
	}

	if h.metrics != nil {
		h.metrics.PaymentsProcessed.Inc()
		h.metrics.PaymentAmount.Observe(txn.TotalAmount.InexactFloat64())
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

func paymentErrorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnknownTier):
		return "unknown_tier"
	case errors.Is(err, domain.ErrAmountMismatch):
		return "amount_mismatch"
	case errors.Is(err, domain.ErrDuplicateTxHash):
		return "duplicate_hash"
	case errors.Is(err, domain.ErrUserNotFound):
		return "user_not_found"
	default:
		return "other"
	}
}

// Get retrieves a processed payment by its external hash.
func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	txHash := chi.URLParam(r, "txHash")
	if txHash == "" {
		writeError(w, http.StatusBadRequest, "missing transaction hash", "")
		return
	}

	txn, err := h.treasuryUC.GetTransaction(r.Context(), txHash)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// ListAllocations lists the pool allocations carved out of a payment.
func (h *PaymentHandler) ListAllocations(w http.ResponseWriter, r *http.Request) {
	txHash := chi.URLParam(r, "txHash")
	if txHash == "" {
		writeError(w, http.StatusBadRequest, "missing transaction hash", "")
		return
	}

	txn, err := h.treasuryUC.GetTransaction(r.Context(), txHash)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get transaction", err.Error())
		return
	}

	allocations, err := h.treasuryUC.ListAllocations(r.Context(), txn.ID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list allocations", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AllocationsFromDomain(allocations))
}
