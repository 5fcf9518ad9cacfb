package http

import (
	"time"

	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
)

type Money struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func toMoney(m domain.Money) Money {
	return Money{Amount: m.Amount().StringFixed(2), Currency: m.Currency().String()}
}

func toMoneyPtr(m *domain.Money) *Money {
	if m == nil {
		return nil
	}
	out := toMoney(*m)
	return &out
}

type IDResponse struct {
	ID string `json:"id"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type SaveServiceRequest struct {
	Title      string `json:"title"`
	Type       string `json:"type"`
	Period     int    `json:"period"`
	PeriodUnit string `json:"period_unit"`
	IsDefault  bool   `json:"is_default"`
	IsEnabled  bool   `json:"is_enabled"`
	IsTrial    bool   `json:"is_trial"`
}

type SavePriceRequest struct {
	CountryID  *string `json:"country_id"`
	PeriodFrom *int    `json:"period_from"`
	PeriodTo   *int    `json:"period_to"`
	Amount     string  `json:"amount"`
	Currency   string  `json:"currency"`
	ForUnit    bool    `json:"for_unit"`
	IsEnabled  bool    `json:"is_enabled"`
}

type QuoteResponse struct {
	Price     Money  `json:"price"`
	Converted *Money `json:"converted,omitempty"`
}

type SaveDiscountRequest struct {
	Code         string     `json:"code"`
	Title        string     `json:"title"`
	Percentage   string     `json:"percentage"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	NumberOfUses int        `json:"number_of_uses"`
	IsEnabled    bool       `json:"is_enabled"`
}

type CreateClientRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Language     string `json:"language"`
	CountryID    string `json:"country_id"`
	DiscountCode string `json:"discount_code"`
}

type CreateClientResponse struct {
	ClientID         string `json:"client_id"`
	ClientDiscountID string `json:"client_discount_id,omitempty"`
}

type AssignDiscountRequest struct {
	Code string `json:"code"`
}

type CreateClientServiceRequest struct {
	ServiceID   string     `json:"service_id"`
	Trial       bool       `json:"trial"`
	ServiceType string     `json:"service_type"`
	Quantity    int        `json:"quantity"`
	CountryID   string     `json:"country_id"`
	Begin       *time.Time `json:"begin"`
}

type ClientServiceResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Quantity  int    `json:"quantity,omitempty"`
	IsEnabled bool   `json:"is_enabled"`
	Price     *Money `json:"price,omitempty"`
}

type UpdateClientServiceRequest struct {
	Quantity *int `json:"quantity"`
	Disable  bool `json:"disable"`
}

type CreateOrderRequest struct {
	ClientID         string   `json:"client_id"`
	ClientServiceIDs []string `json:"client_service_ids"`
}

type OrderResponse struct {
	ID        string `json:"id,omitempty"`
	Status    string `json:"status"`
	Price     Money  `json:"price"`
	Frozen    bool   `json:"frozen,omitempty"`
	Corrupted bool   `json:"corrupted,omitempty"`
}

type RecomputeOrderRequest struct {
	Add    []string `json:"add"`
	Remove []string `json:"remove"`
}

type PayOrderResponse struct {
	TransactionID string `json:"transaction_id"`
	Price         Money  `json:"price"`
}

type OrderMember struct {
	ID          string    `json:"id"`
	ServiceID   string    `json:"service_id"`
	ServiceType string    `json:"service_type"`
	Quantity    int       `json:"quantity"`
	Status      string    `json:"status"`
	IsEnabled   bool      `json:"is_enabled"`
	IsPaid      bool      `json:"is_paid"`
	Begin       time.Time `json:"begin"`
	End         time.Time `json:"end"`
	Price       *Money    `json:"price,omitempty"`
}

type OrderDetails struct {
	ID         string            `json:"id"`
	ClientID   string            `json:"client_id"`
	Status     string            `json:"status"`
	Price      Money             `json:"price"`
	DiscountID *string           `json:"discount_id,omitempty"`
	Notes      map[string]string `json:"notes,omitempty"`
	PaidAt     *time.Time        `json:"paid_at,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	Members    []OrderMember     `json:"members"`
}

func toOrderDetails(order *domain.Order, members []*domain.ClientService) OrderDetails {
	s := order.State()
	out := OrderDetails{
		ID:         s.ID,
		ClientID:   s.ClientID,
		Status:     string(s.Status),
		Price:      toMoney(s.Price),
		DiscountID: s.DiscountID,
		Notes:      s.Notes,
		PaidAt:     s.PaidAt,
		CreatedAt:  s.CreatedAt,
		Members:    make([]OrderMember, 0, len(members)),
	}
	for _, cs := range members {
		m := cs.State()
		out.Members = append(out.Members, OrderMember{
			ID:          m.ID,
			ServiceID:   m.ServiceID,
			ServiceType: string(m.ServiceType),
			Quantity:    m.Quantity,
			Status:      string(m.Status),
			IsEnabled:   m.IsEnabled,
			IsPaid:      m.IsPaid,
			Begin:       m.Begin,
			End:         m.End,
			Price:       toMoneyPtr(m.Price),
		})
	}
	return out
}
