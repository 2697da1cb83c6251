package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all historical data routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/historical", func(r chi.Router) {
		r.Route("/prices", func(r chi.Router) {
			r.Get("/daily/{ticker}", func(w http.ResponseWriter, r *http.Request) {
				h.HandleGetDailyPrices(w, r, chi.URLParam(r, "ticker"))
			})
		})

		r.Route("/returns", func(r chi.Router) {
			r.Get("/daily/{ticker}", func(w http.ResponseWriter, r *http.Request) {
				h.HandleGetDailyReturns(w, r, chi.URLParam(r, "ticker"))
			})
			r.Get("/correlation-matrix", h.HandleGetCorrelationMatrix)
		})
	})
}
