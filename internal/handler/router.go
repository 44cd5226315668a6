package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/milanbouzek/farmshop-system/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware фермерского магазина.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/orders", h.SubmitOrder)
		r.Post("/preorders", h.SubmitReservation)
		r.Get("/availability", h.GetAvailability)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.Login)

			r.Group(func(r chi.Router) {
				r.Use(h.authMiddleware.Middleware)

				r.Get("/orders", h.ListOrders)
				r.Get("/orders/{id}", h.GetOrder)
				r.Post("/orders/{id}/advance", h.AdvanceOrder)
				r.Post("/orders/{id}/cancel", h.CancelOrder)
				r.Post("/orders/{id}/paid", h.SetOrderPaid)
				r.Post("/orders/{id}/price", h.OverrideOrderPrice)
				r.Post("/orders/{id}/quantities", h.UpdateOrderQuantities)

				r.Get("/preorders", h.ListReservations)
				r.Get("/preorders/{id}", h.GetReservation)
				r.Post("/preorders/{id}/confirm", h.ConfirmReservation)
				r.Post("/preorders/{id}/cancel", h.CancelReservation)

				r.Get("/stock", h.GetStock)
				r.Put("/stock", h.UpdateStock)

				r.Get("/production-rate", h.GetProductionRate)
				r.Put("/production-rate", h.SetProductionRate)

				r.Post("/expenses", h.CreateExpense)
				r.Get("/expenses", h.ListExpenses)
				r.Delete("/expenses/{id}", h.DeleteExpense)

				r.Post("/production", h.AddProductionRecord)
				r.Get("/production", h.ListProduction)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
