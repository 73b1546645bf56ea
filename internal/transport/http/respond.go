package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

// ErrorResponse — тело ответа при ошибке.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// respondDomainError переводит ошибки ядра в HTTP-статусы.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsNotFound(err):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrStockExceeded):
		respondError(w, http.StatusConflict, "stock_exceeded", err.Error())
	case errors.Is(err, domain.ErrReceiptExists):
		respondError(w, http.StatusConflict, "receipt_exists", err.Error())
	case errors.Is(err, domain.ErrEmptyCart):
		respondError(w, http.StatusUnprocessableEntity, "empty_cart", err.Error())
	case errors.Is(err, domain.ErrInvalidTotal):
		respondError(w, http.StatusUnprocessableEntity, "invalid_total", err.Error())
	case errors.Is(err, domain.ErrDiscountNegative),
		errors.Is(err, domain.ErrPaymentMethodInvalid):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, domain.ErrCommitFailed):
		respondError(w, http.StatusBadGateway, "commit_failed", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}
