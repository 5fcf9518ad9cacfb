package domain

import "errors"

// Error kinds. Concrete errors wrap one of these so callers can branch on
// the kind with errors.Is.
var (
	// ErrConfiguration means the catalog cannot serve a required price or
	// service. It is fatal to the operation that needed it.
	ErrConfiguration = errors.New("configuration error")

	// ErrValidation means input was rejected at the write boundary.
	ErrValidation = errors.New("validation error")
)

// Money errors
var (
	ErrInvalidCurrency  = errors.New("invalid currency code")
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrRateUnavailable  = errors.New("exchange rate unavailable")
)

// Catalog errors
var (
	ErrServiceNotFound     = errors.New("service not found")
	ErrUnknownServiceType  = errors.New("unknown service type")
	ErrEmptyPrices         = wrapKind(ErrConfiguration, "empty prices")
	ErrNoDefaultService    = wrapKind(ErrConfiguration, "no default service for type")
	ErrNoTrialService      = wrapKind(ErrConfiguration, "no trial service for type")
	ErrDefaultExists       = wrapKind(ErrValidation, "default service for this type already exists")
	ErrBasePriceExists     = wrapKind(ErrValidation, "Base price already exists")
	ErrPeriodOverlap       = wrapKind(ErrValidation, "Price with this period already exists")
	ErrInvalidPeriodRange  = wrapKind(ErrValidation, "period_from must not exceed period_to")
	ErrInvalidServiceSetup = wrapKind(ErrValidation, "invalid service definition")
	ErrPriceEntryNotFound  = errors.New("price entry not found")
)

// Client and client service errors
var (
	ErrClientNotFound           = errors.New("client not found")
	ErrClientArchived           = errors.New("client is archived")
	ErrClientServiceNotFound    = errors.New("client service not found")
	ErrInvalidCountryOrQuantity = wrapKind(ErrValidation, "invalid country or quantity")
	ErrClientServiceDisabled    = errors.New("client service is disabled")
	ErrNotPending               = errors.New("client service is not pending")
	ErrPriceNotCalculated       = errors.New("client service price is not calculated")
)

// Discount errors
var (
	ErrDiscountNotFound    = errors.New("discount not found")
	ErrInvalidDiscountCode = wrapKind(ErrValidation, "discount code may contain only letters, digits, '-' and '_'")
	ErrInvalidPercentage   = wrapKind(ErrValidation, "discount percentage must be between 0 and 100")
	ErrInvalidDateRange    = wrapKind(ErrValidation, "end date must not be before start date")
	ErrInvalidUsageLimit   = wrapKind(ErrValidation, "number of uses must not be negative")
	ErrDiscountExhausted   = errors.New("discount has no remaining uses")
)

// Order errors
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrOrderFrozen        = errors.New("order is in a terminal status")
	ErrEmptyOrder         = wrapKind(ErrValidation, "order has no client services")
	ErrForeignService     = wrapKind(ErrValidation, "client service belongs to another client")
	ErrPaymentFailed      = errors.New("payment failed")
	ErrChargeInProgress   = errors.New("order is already being charged")
	ErrOrderAlreadyExists = errors.New("client services are already in an unpaid order")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

func wrapKind(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}
