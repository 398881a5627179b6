package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/pravino/tapcore/internal/adapter/http/dto"
	"github.com/pravino/tapcore/internal/domain"
)

// SettlementService defines the behavior needed by SettlementHandler.
type SettlementService interface {
	ListSummaries(ctx context.Context, cycleDate time.Time) ([]*domain.SettlementSummary, error)
}

// SettlementHandler handles settlement summary HTTP requests.
type SettlementHandler struct {
	settlementUC SettlementService
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlementUC SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementUC: settlementUC}
}

// ListSummaries returns the per-tier summaries of one settlement day.
// The date query parameter defaults to today (UTC).
func (h *SettlementHandler) ListSummaries(w http.ResponseWriter, r *http.Request) {
	cycleDate := time.Now().UTC().Truncate(24 * time.Hour)

	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date", "expected YYYY-MM-DD")
			return
		}
		cycleDate = parsed
	}

	summaries, err := h.settlementUC.ListSummaries(r.Context(), cycleDate)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list summaries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SummariesFromDomain(summaries))
}
