package handlers

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers the universe routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stock_prices", h.HandleGetStockPrices)
	r.Get("/stocks", h.HandleListStocks)
}
