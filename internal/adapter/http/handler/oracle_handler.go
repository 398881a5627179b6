package handler

import (
	"net/http"

	"github.com/pravino/tapcore/internal/adapter/http/dto"
	"github.com/pravino/tapcore/internal/domain"
)

// OracleStatus exposes the consensus price feed state.
type OracleStatus interface {
	Frozen() bool
	Last() *domain.OracleResult
}

// OracleHandler handles oracle status HTTP requests.
type OracleHandler struct {
	oracle OracleStatus
}

// NewOracleHandler creates a new OracleHandler.
func NewOracleHandler(oracle OracleStatus) *OracleHandler {
	return &OracleHandler{oracle: oracle}
}

// Status reports the frozen flag and the last known consensus price.
func (h *OracleHandler) Status(w http.ResponseWriter, r *http.Request) {
	resp := dto.OracleStatusResponse{Frozen: h.oracle.Frozen()}

	if last := h.oracle.Last(); last != nil {
		resp.Price = last.Price
		resp.Change24h = last.Change24h
		resp.Sources = last.Sources
		resp.Median = last.Median
		fetchedAt := last.FetchedAt
		resp.FetchedAt = &fetchedAt
	}

	writeJSON(w, http.StatusOK, resp)
}
