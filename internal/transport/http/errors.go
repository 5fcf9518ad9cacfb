package http

import (
	"errors"
	"net/http"

	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/pkg/scheduler"
)

// statusOf maps domain errors to HTTP status codes and a public message.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrServiceNotFound),
		errors.Is(err, domain.ErrPriceEntryNotFound),
		errors.Is(err, domain.ErrClientNotFound),
		errors.Is(err, domain.ErrClientServiceNotFound),
		errors.Is(err, domain.ErrDiscountNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, scheduler.ErrUnknownJob):
		return http.StatusNotFound, err.Error()

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, domain.ErrUnknownServiceType):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, domain.ErrConfiguration):
		return http.StatusUnprocessableEntity, err.Error()

	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrOrderFrozen),
		errors.Is(err, domain.ErrChargeInProgress),
		errors.Is(err, domain.ErrOrderAlreadyExists),
		errors.Is(err, domain.ErrClientServiceDisabled),
		errors.Is(err, domain.ErrClientArchived),
		errors.Is(err, domain.ErrNotPending),
		errors.Is(err, domain.ErrPriceNotCalculated),
		errors.Is(err, domain.ErrCurrencyMismatch),
		errors.Is(err, domain.ErrDiscountExhausted):
		return http.StatusConflict, err.Error()

	case errors.Is(err, domain.ErrRateUnavailable):
		return http.StatusServiceUnavailable, "exchange rate unavailable"

	case errors.Is(err, domain.ErrPaymentFailed):
		return http.StatusBadGateway, "payment failed"

	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
