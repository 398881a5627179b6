package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pravino/tapcore/internal/adapter/http/dto"
	"github.com/pravino/tapcore/internal/domain"
	"github.com/pravino/tapcore/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.LedgerEntry, error)
	VerifyChain(ctx context.Context, userID string) (*usecase.ChainReport, error)
}

// LedgerHandler handles ledger HTTP requests.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// ListEntries returns a page of a user's ledger, newest first.
func (h *LedgerHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user ID", "")
		return
	}

	entries, err := h.ledgerUC.ListEntries(r.Context(), usecase.ListEntriesInput{
		UserID: userID,
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerEntriesFromDomain(entries))
}

// VerifyChain walks a user's full chain and reports the first break,
// if any. A broken chain is a 200 with valid=false, not an error.
func (h *LedgerHandler) VerifyChain(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user ID", "")
		return
	}

	report, err := h.ledgerUC.VerifyChain(r.Context(), userID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to verify chain", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ChainReportResponse{
		Valid:         report.Valid,
		Entries:       report.Entries,
		BrokenEntryID: report.BrokenEntryID,
	})
}
