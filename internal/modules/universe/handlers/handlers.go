// Package handlers provides HTTP handlers for the stock universe.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/stocksim/stocksim/internal/modules/universe"
)

// PriceLister returns the current price of every universe stock
type PriceLister interface {
	Prices(ctx context.Context) map[string]universe.StockPrice
}

// Handler handles universe HTTP requests
type Handler struct {
	prices PriceLister
	log    zerolog.Logger
}

// NewHandler creates a new universe handler
func NewHandler(prices PriceLister, log zerolog.Logger) *Handler {
	return &Handler{
		prices: prices,
		log:    log.With().Str("handler", "universe").Logger(),
	}
}

// HandleGetStockPrices handles GET /stock_prices
func (h *Handler) HandleGetStockPrices(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.prices.Prices(r.Context()))
}

// HandleListStocks handles GET /stocks
func (h *Handler) HandleListStocks(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, universe.All())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
