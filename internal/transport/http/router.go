package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/light-bringer/tariff-billing/internal/pkg/logger"
)

// NewRouter mounts the API under /api/v1.
func NewRouter(h *Handler, l *zap.Logger) http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID, logger.RequestLog(l), middleware.Recoverer)

	mux.Get("/health", h.Health)

	mux.Route("/api/v1", func(r chi.Router) {
		r.Route("/services", func(r chi.Router) {
			r.Post("/", h.SaveService)
			r.Put("/{id}", h.SaveService)
			r.Get("/{id}/quote", h.Quote)
			r.Post("/{id}/prices", h.SavePrice)
			r.Put("/{id}/prices/{priceID}", h.SavePrice)
		})

		r.Route("/discounts", func(r chi.Router) {
			r.Post("/", h.SaveDiscount)
			r.Put("/{id}", h.SaveDiscount)
		})

		r.Route("/clients", func(r chi.Router) {
			r.Post("/", h.CreateClient)
			r.Put("/{id}/discount", h.AssignDiscount)
			r.Post("/{id}/services", h.CreateClientService)
		})

		r.Patch("/client-services/{id}", h.UpdateClientService)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.CreateOrder)
			r.Get("/{id}", h.GetOrder)
			r.Patch("/{id}", h.RecomputeOrder)
			r.Post("/{id}/pay", h.PayOrder)
			r.Post("/{id}/cancel", h.CancelOrder)
		})

		if h.jobs != nil {
			r.Get("/jobs", h.ListJobs)
			r.Post("/jobs/{name}/run", h.RunJob)
		}
	})

	return mux
}
