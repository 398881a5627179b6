package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pravino/tapcore/internal/adapter/http/dto"
	"github.com/pravino/tapcore/internal/domain"
	"github.com/pravino/tapcore/internal/infrastructure/metrics"
	"github.com/pravino/tapcore/internal/usecase"
)

// WithdrawalService defines the behavior needed by WithdrawalHandler.
type WithdrawalService interface {
	RequestWithdrawal(ctx context.Context, input usecase.RequestWithdrawalInput) (*domain.Withdrawal, error)
	GetWithdrawal(ctx context.Context, id string) (*domain.Withdrawal, error)
	Release(ctx context.Context, id string) error
	Approve(ctx context.Context, id string) error
	Reject(ctx context.Context, id, reason string) error
	BatchReady(ctx context.Context, now time.Time) (*domain.WithdrawalBatch, error)
}

// WithdrawalHandler handles the payout pipeline HTTP requests. The
// release, approve, reject and batch operations sit behind admin auth.
type WithdrawalHandler struct {
	withdrawalUC WithdrawalService
	metrics      *metrics.Metrics
}

// NewWithdrawalHandler creates a new WithdrawalHandler.
func NewWithdrawalHandler(withdrawalUC WithdrawalService, m *metrics.Metrics) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawalUC: withdrawalUC, metrics: m}
}

// Create requests a payout. The gross amount leaves the wallet here.
func (h *WithdrawalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.RequestWithdrawalRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	withdrawal, err := h.withdrawalUC.RequestWithdrawal(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to request withdrawal", err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.Withdrawals.WithLabelValues(string(withdrawal.Status)).Inc()
		h.metrics.WithdrawalAmount.Observe(withdrawal.GrossAmount.InexactFloat64())
	}

	writeJSON(w, http.StatusCreated, dto.WithdrawalFromDomain(withdrawal))
}

// Get retrieves a withdrawal by ID.
func (h *WithdrawalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing withdrawal ID", "")
		return
	}

	withdrawal, err := h.withdrawalUC.GetWithdrawal(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get withdrawal", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.WithdrawalFromDomain(withdrawal))
}

// Release moves a reviewed withdrawal to ready ahead of the audit
// delay.
func (h *WithdrawalHandler) Release(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, domain.WithdrawalReady, h.withdrawalUC.Release)
}

// Approve marks a batched withdrawal as paid out.
func (h *WithdrawalHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, domain.WithdrawalApproved, h.withdrawalUC.Approve)
}

// Reject refuses a withdrawal and refunds the gross amount.
func (h *WithdrawalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing withdrawal ID", "")
		return
	}

	var req dto.RejectWithdrawalRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.withdrawalUC.Reject(r.Context(), id, req.Reason); err != nil {
		writeError(w, mapDomainError(err), "failed to reject withdrawal", err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.Withdrawals.WithLabelValues(string(domain.WithdrawalRejected)).Inc()
	}

	h.respondWith(w, r, id)
}

// Batch groups every ready withdrawal into a payout batch. Returns 204
// when nothing is ready.
func (h *WithdrawalHandler) Batch(w http.ResponseWriter, r *http.Request) {
	batch, err := h.withdrawalUC.BatchReady(r.Context(), time.Now().UTC())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to batch withdrawals", err.Error())
		return
	}

	if batch == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if h.metrics != nil {
		h.metrics.WithdrawalBatches.Inc()
		h.metrics.Withdrawals.WithLabelValues(string(domain.WithdrawalBatched)).Add(float64(batch.Count))
	}

	writeJSON(w, http.StatusCreated, dto.BatchFromDomain(batch))
}

func (h *WithdrawalHandler) transition(w http.ResponseWriter, r *http.Request, to domain.WithdrawalStatus, move func(context.Context, string) error) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing withdrawal ID", "")
		return
	}

	if err := move(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to update withdrawal", err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.Withdrawals.WithLabelValues(string(to)).Inc()
	}

	h.respondWith(w, r, id)
}

func (h *WithdrawalHandler) respondWith(w http.ResponseWriter, r *http.Request, id string) {
	withdrawal, err := h.withdrawalUC.GetWithdrawal(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get withdrawal", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.WithdrawalFromDomain(withdrawal))
}
