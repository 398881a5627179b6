package handler

import (
	"context"
	"net/http"

	"github.com/pravino/tapcore/internal/adapter/http/dto"
	"github.com/pravino/tapcore/internal/domain"
	"github.com/pravino/tapcore/internal/usecase"
)

// PredictionService defines the behavior needed by PredictionHandler.
type PredictionService interface {
	SubmitPrediction(ctx context.Context, input usecase.SubmitPredictionInput) (*domain.Prediction, error)
}

// PredictionHandler handles prediction HTTP requests.
type PredictionHandler struct {
	predictionUC PredictionService
}

// NewPredictionHandler creates a new PredictionHandler.
func NewPredictionHandler(predictionUC PredictionService) *PredictionHandler {
	return &PredictionHandler{predictionUC: predictionUC}
}

// Submit records a BTC price call at the current consensus price.
func (h *PredictionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitPredictionRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	prediction, err := h.predictionUC.SubmitPrediction(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to submit prediction", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PredictionFromDomain(prediction))
}
