package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pravino/tapcore/internal/adapter/http/dto"
	"github.com/pravino/tapcore/internal/domain"
	"github.com/pravino/tapcore/internal/infrastructure/metrics"
	"github.com/pravino/tapcore/internal/usecase"
)

// SpinService defines the behavior needed by SpinHandler.
type SpinService interface {
	Spin(ctx context.Context, userID string) (*domain.SpinOutcome, error)
	ListSpins(ctx context.Context, input usecase.ListSpinsInput) ([]*domain.SpinOutcome, error)
}

// SpinHandler handles wheel spin HTTP requests.
type SpinHandler struct {
	spinUC  SpinService
	metrics *metrics.Metrics
}

// NewSpinHandler creates a new SpinHandler.
func NewSpinHandler(spinUC SpinService, m *metrics.Metrics) *SpinHandler {
	return &SpinHandler{spinUC: spinUC, metrics: m}
}

// Spin consumes one spin (ticket or free) and returns the outcome.
func (h *SpinHandler) Spin(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user ID", "")
		return
	}

	outcome, err := h.spinUC.Spin(r.Context(), userID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to spin", err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.Spins.WithLabelValues(outcome.TierName, string(outcome.PaidClass)).Inc()
		if outcome.DrawnClass != outcome.PaidClass && !outcome.Locked {
			h.metrics.SpinDowngrades.Inc()
		}
		if outcome.Locked {
			h.metrics.LockedPrizes.Inc()
		}
	}

	writeJSON(w, http.StatusOK, dto.SpinOutcomeFromDomain(outcome))
}

// History returns a page of a user's spin outcomes, newest first.
func (h *SpinHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user ID", "")
		return
	}

	outcomes, err := h.spinUC.ListSpins(r.Context(), usecase.ListSpinsInput{
		UserID: userID,
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list spins", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SpinOutcomesFromDomain(outcomes))
}
