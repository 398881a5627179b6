package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/pravino/tapcore/internal/adapter/http/dto"
	"github.com/pravino/tapcore/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// decodeValid decodes the request body and validates struct tags.
func decodeValid(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}

	return validate.Struct(dst)
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrWithdrawalNotFound),
		errors.Is(err, domain.ErrPredictionNotFound),
		errors.Is(err, domain.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateTxHash):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidStatusChange):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPredictionPending):
		return http.StatusConflict
	case errors.Is(err, domain.ErrOracleFrozen),
		errors.Is(err, domain.ErrOracleUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrSubscriptionRequired):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNoSpinAvailable):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrUnknownTier),
		errors.Is(err, domain.ErrAmountMismatch),
		errors.Is(err, domain.ErrInvalidDirection),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrBelowMinimumAmount),
		errors.Is(err, domain.ErrInvalidWallet),
		errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
