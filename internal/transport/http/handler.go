package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/app/billing/queries/get_order"
	"github.com/light-bringer/tariff-billing/internal/app/billing/queries/quote_price"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/assign_discount"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/cancel_order"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/create_client"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/create_client_service"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/create_order"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/pay_order"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/recompute_order"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/save_discount"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/save_price_entry"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/save_service"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/update_client_service"
)

// UseCases are the operations exposed over HTTP.
type UseCases struct {
	SaveService         *save_service.Interactor
	SavePriceEntry      *save_price_entry.Interactor
	SaveDiscount        *save_discount.Interactor
	CreateClient        *create_client.Interactor
	AssignDiscount      *assign_discount.Interactor
	CreateClientService *create_client_service.Interactor
	UpdateClientService *update_client_service.Interactor
	CreateOrder         *create_order.Interactor
	RecomputeOrder      *recompute_order.Interactor
	PayOrder            *pay_order.Interactor
	CancelOrder         *cancel_order.Interactor
	QuotePrice          *quote_price.Query
	GetOrder            *get_order.Query
}

// Jobs runs background jobs on demand.
type Jobs interface {
	Trigger(ctx context.Context, name string) error
	Jobs() []string
}

// Handler serves the billing HTTP API.
type Handler struct {
	uc     UseCases
	jobs   Jobs
	logger *zap.Logger
}

// NewHandler creates a new Handler. jobs may be nil.
func NewHandler(uc UseCases, jobs Jobs, logger *zap.Logger) *Handler {
	return &Handler{uc: uc, jobs: jobs, logger: logger}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("failed to write response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusOf(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	h.writeJSON(w, status, ErrorResponse{Error: msg})
}

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", domain.ErrValidation, err)
	}
	return nil
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Catalog

func (h *Handler) SaveService(w http.ResponseWriter, r *http.Request) {
	var body SaveServiceRequest
	if err := decode(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := h.uc.SaveService.Execute(r.Context(), &save_service.Request{
		ID:         chi.URLParam(r, "id"),
		Title:      body.Title,
		Type:       domain.ServiceType(body.Type),
		Period:     body.Period,
		PeriodUnit: domain.PeriodUnit(body.PeriodUnit),
		IsDefault:  body.IsDefault,
		IsEnabled:  body.IsEnabled,
		IsTrial:    body.IsTrial,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, statusForSave(r), IDResponse{ID: id})
}

func (h *Handler) SavePrice(w http.ResponseWriter, r *http.Request) {
	var body SavePriceRequest
	if err := decode(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := h.uc.SavePriceEntry.Execute(r.Context(), &save_price_entry.Request{
		ID:         chi.URLParam(r, "priceID"),
		ServiceID:  chi.URLParam(r, "id"),
		CountryID:  body.CountryID,
		PeriodFrom: body.PeriodFrom,
		PeriodTo:   body.PeriodTo,
		Amount:     body.Amount,
		Currency:   body.Currency,
		ForUnit:    body.ForUnit,
		IsEnabled:  body.IsEnabled,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, statusForSave(r), IDResponse{ID: id})
}

func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	quantity, err := strconv.Atoi(q.Get("quantity"))
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: quantity must be a number", domain.ErrValidation))
		return
	}
	resp, err := h.uc.QuotePrice.Execute(r.Context(), &quote_price.Request{
		ServiceID: chi.URLParam(r, "id"),
		Quantity:  quantity,
		Country:   q.Get("country"),
		Currency:  q.Get("currency"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, QuoteResponse{Price: toMoney(resp.Price), Converted: toMoneyPtr(resp.Converted)})
}

func (h *Handler) SaveDiscount(w http.ResponseWriter, r *http.Request) {
	var body SaveDiscountRequest
	if err := decode(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := h.uc.SaveDiscount.Execute(r.Context(), &save_discount.Request{
		ID:           chi.URLParam(r, "id"),
		Code:         body.Code,
		Title:        body.Title,
		Percentage:   body.Percentage,
		StartDate:    body.StartDate,
		EndDate:      body.EndDate,
		NumberOfUses: body.NumberOfUses,
		IsEnabled:    body.IsEnabled,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, statusForSave(r), IDResponse{ID: id})
}

// Clients

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var body CreateClientRequest
	if err := decode(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	resp, err := h.uc.CreateClient.Execute(r.Context(), &create_client.Request{
		Name:         body.Name,
		Email:        body.Email,
		Language:     body.Language,
		CountryID:    body.CountryID,
		DiscountCode: body.DiscountCode,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, CreateClientResponse{ClientID: resp.ClientID, ClientDiscountID: resp.ClientDiscountID})
}

func (h *Handler) AssignDiscount(w http.ResponseWriter, r *http.Request) {
	var body AssignDiscountRequest
	if err := decode(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := h.uc.AssignDiscount.Execute(r.Context(), &assign_discount.Request{
		ClientID: chi.URLParam(r, "id"),
		Code:     body.Code,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, IDResponse{ID: id})
}

func (h *Handler) CreateClientService(w http.ResponseWriter, r *http.Request) {
	var body CreateClientServiceRequest
	if err := decode(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	resp, err := h.uc.CreateClientService.Execute(r.Context(), &create_client_service.Request{
		ClientID:    chi.URLParam(r, "id"),
		ServiceID:   body.ServiceID,
		Trial:       body.Trial,
		ServiceType: domain.ServiceType(body.ServiceType),
		Quantity:    body.Quantity,
		CountryID:   body.CountryID,
		Begin:       body.Begin,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, ClientServiceResponse{
		ID:        resp.ClientServiceID,
		Status:    string(resp.Status),
		IsEnabled: true,
		Price:     toMoneyPtr(resp.Price),
	})
}

func (h *Handler) UpdateClientService(w http.ResponseWriter, r *http.Request) {
	var body UpdateClientServiceRequest
	if err := decode(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	resp, err := h.uc.UpdateClientService.Execute(r.Context(), &update_client_service.Request{
		ClientServiceID: id,
		Quantity:        body.Quantity,
		Disable:         body.Disable,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	status := "enabled"
	if !resp.IsEnabled {
		status = "disabled"
	}
	h.writeJSON(w, http.StatusOK, ClientServiceResponse{
		ID:        id,
		Status:    status,
		Quantity:  resp.Quantity,
		IsEnabled: resp.IsEnabled,
		Price:     toMoneyPtr(resp.Price),
	})
}

// Orders

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var body CreateOrderRequest
	if err := decode(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	resp, err := h.uc.CreateOrder.Execute(r.Context(), &create_order.Request{
		ClientID:         body.ClientID,
		ClientServiceIDs: body.ClientServiceIDs,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, OrderResponse{ID: resp.OrderID, Status: string(resp.Status), Price: toMoney(resp.Price)})
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	resp, err := h.uc.GetOrder.Execute(r.Context(), &get_order.Request{OrderID: chi.URLParam(r, "id")})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toOrderDetails(resp.Order, resp.Members))
}

func (h *Handler) RecomputeOrder(w http.ResponseWriter, r *http.Request) {
	var body RecomputeOrderRequest
	if err := decode(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	resp, err := h.uc.RecomputeOrder.Execute(r.Context(), &recompute_order.Request{
		OrderID: id,
		Add:     body.Add,
		Remove:  body.Remove,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, OrderResponse{
		ID:        id,
		Status:    string(resp.Status),
		Price:     toMoney(resp.Price),
		Frozen:    resp.Frozen,
		Corrupted: resp.Corrupted,
	})
}

func (h *Handler) PayOrder(w http.ResponseWriter, r *http.Request) {
	resp, err := h.uc.PayOrder.Execute(r.Context(), &pay_order.Request{OrderID: chi.URLParam(r, "id")})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, PayOrderResponse{TransactionID: resp.TransactionID, Price: toMoney(resp.Price)})
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.CancelOrder.Execute(r.Context(), &cancel_order.Request{OrderID: chi.URLParam(r, "id")}); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Jobs

func (h *Handler) ListJobs(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string][]string{"jobs": h.jobs.Jobs()})
}

func (h *Handler) RunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.jobs.Trigger(r.Context(), name); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"job": name, "status": "done"})
}

func statusForSave(r *http.Request) int {
	if r.Method == http.MethodPost {
		return http.StatusCreated
	}
	return http.StatusOK
}
