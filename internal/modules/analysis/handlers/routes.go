package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all analysis routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/analyze_portfolio", h.HandleAnalyzePortfolio)
	r.Get("/stock/{ticker}", func(w http.ResponseWriter, r *http.Request) {
		ticker := chi.URLParam(r, "ticker")
		h.HandleGetStock(w, r, ticker)
	})
}
