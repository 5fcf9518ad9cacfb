package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/pkg/config"
)

// Charge statuses reported by the provider.
const (
	StatusSucceeded = "succeeded"
	StatusDeclined  = "declined"
)

// IdempotencyHeader carries the order's charge attempt ID so that the
// provider collapses retries of one attempt into a single charge.
const IdempotencyHeader = "Idempotency-Key"

// ErrDeclined is returned when the provider refuses a charge.
var ErrDeclined = errors.New("charge declined")

type chargeRequest struct {
	OrderID  string `json:"order_id"`
	ClientID string `json:"client_id"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type chargeAnswer struct {
	Status         string `json:"status"`
	TransactionID  string `json:"transaction_id"`
	SubscriptionID string `json:"subscription_id"`
	Reason         string `json:"reason"`
}

// Client charges orders through an HTTP payment provider.
type Client struct {
	client *resty.Client
}

// NewClient creates a new provider client.
func NewClient(cfg config.Gateway) *Client {
	return &Client{
		client: resty.New().
			SetBaseURL(cfg.URL).
			SetTimeout(cfg.Timeout).
			SetAuthToken(cfg.APIKey),
	}
}

// Charge implements contracts.PaymentGateway. A declined charge may still
// carry the subscription the provider opened for it.
func (c *Client) Charge(ctx context.Context, order *domain.Order) (*contracts.ChargeResult, error) {
	var answer chargeAnswer
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader(IdempotencyHeader, order.ChargeAttemptID()).
		SetBody(chargeRequest{
			OrderID:  order.ID(),
			ClientID: order.ClientID(),
			Amount:   order.Price().Amount().StringFixed(2),
			Currency: order.Price().Currency().String(),
		}).
		SetResult(&answer).
		SetError(&answer).
		Post("/charges")
	if err != nil {
		return nil, err
	}

	result := &contracts.ChargeResult{
		TransactionID:  answer.TransactionID,
		SubscriptionID: answer.SubscriptionID,
	}
	switch {
	case resp.StatusCode() == http.StatusOK && answer.Status == StatusSucceeded:
		return result, nil
	case answer.Status == StatusDeclined:
		return result, fmt.Errorf("%w: %s", ErrDeclined, answer.Reason)
	default:
		return result, fmt.Errorf("charge request status: %d", resp.StatusCode())
	}
}

// CancelSubscription implements contracts.PaymentGateway.
func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) (bool, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", subscriptionID).
		Delete("/subscriptions/{id}")
	if err != nil {
		return false, err
	}
	switch resp.StatusCode() {
	case http.StatusOK, http.StatusNoContent:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("cancel subscription status: %d", resp.StatusCode())
	}
}

// Manual accepts every charge. Payment is confirmed outside the service,
// e.g. by bank transfer against an issued bill.
type Manual struct{}

// Charge implements contracts.PaymentGateway.
func (Manual) Charge(context.Context, *domain.Order) (*contracts.ChargeResult, error) {
	return &contracts.ChargeResult{TransactionID: "manual-" + uuid.New().String()}, nil
}

// CancelSubscription implements contracts.PaymentGateway.
func (Manual) CancelSubscription(context.Context, string) (bool, error) {
	return false, nil
}
