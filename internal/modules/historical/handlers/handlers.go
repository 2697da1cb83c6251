// Package handlers provides HTTP handlers for historical price data.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/stocksim/stocksim/internal/domain"
	"github.com/stocksim/stocksim/internal/modules/analysis"
	"github.com/stocksim/stocksim/pkg/formulas"
)

// ReturnsProvider builds an aligned returns table for several tickers
type ReturnsProvider interface {
	Returns(ctx context.Context, tickers []string) (*analysis.ReturnsTable, error)
}

// Handler handles historical data HTTP requests
type Handler struct {
	source        domain.PriceSource
	returns       ReturnsProvider
	defaultPeriod string
	log           zerolog.Logger
}

// NewHandler creates a new historical data handler
func NewHandler(source domain.PriceSource, returns ReturnsProvider, defaultPeriod string, log zerolog.Logger) *Handler {
	return &Handler{
		source:        source,
		returns:       returns,
		defaultPeriod: defaultPeriod,
		log:           log.With().Str("handler", "historical").Logger(),
	}
}

type dailyPrice struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

type dailyReturn struct {
	Date   string  `json:"date"`
	Return float64 `json:"return"`
}

func (h *Handler) period(r *http.Request) string {
	if p := r.URL.Query().Get("period"); p != "" {
		return p
	}
	return h.defaultPeriod
}

// HandleGetDailyPrices handles GET /api/historical/prices/daily/{ticker}
func (h *Handler) HandleGetDailyPrices(w http.ResponseWriter, r *http.Request, ticker string) {
	ticker = strings.ToUpper(ticker)
	period := h.period(r)

	points, err := h.source.FetchHistory(r.Context(), ticker, period)
	if err != nil {
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Failed to get daily prices")
		h.writeError(w, http.StatusBadGateway, "Failed to get daily prices")
		return
	}
	if len(points) == 0 {
		h.writeError(w, http.StatusNotFound, "No price history for "+ticker)
		return
	}

	prices := make([]dailyPrice, len(points))
	for i, p := range points {
		prices[i] = dailyPrice{Date: p.Date.Format("2006-01-02"), Close: p.Close}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"ticker": ticker,
			"period": period,
			"prices": prices,
			"count":  len(prices),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetDailyReturns handles GET /api/historical/returns/daily/{ticker}
func (h *Handler) HandleGetDailyReturns(w http.ResponseWriter, r *http.Request, ticker string) {
	ticker = strings.ToUpper(ticker)
	period := h.period(r)

	points, err := h.source.FetchHistory(r.Context(), ticker, period)
	if err != nil {
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Failed to get daily returns")
		h.writeError(w, http.StatusBadGateway, "Failed to get daily returns")
		return
	}
	if len(points) < 2 {
		h.writeError(w, http.StatusNotFound, "Not enough price history for "+ticker)
		return
	}

	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Close
	}

	returns := make([]dailyReturn, 0, len(points)-1)
	for i, ret := range formulas.CalculateReturns(closes) {
		if !formulas.IsFinite(ret) {
			continue
		}
		returns = append(returns, dailyReturn{Date: points[i+1].Date.Format("2006-01-02"), Return: ret})
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"ticker":  ticker,
			"period":  period,
			"returns": returns,
			"count":   len(returns),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetCorrelationMatrix handles GET /api/historical/returns/correlation-matrix?tickers=A,B,C
func (h *Handler) HandleGetCorrelationMatrix(w http.ResponseWriter, r *http.Request) {
	tickers := analysis.NormalizeTickers(strings.Split(r.URL.Query().Get("tickers"), ","))
	if len(tickers) < 2 {
		h.writeError(w, http.StatusBadRequest, "At least 2 tickers required")
		return
	}

	table, err := h.returns.Returns(r.Context(), tickers)
	if err != nil {
		switch {
		case errors.Is(err, analysis.ErrNoData):
			h.writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, analysis.ErrInsufficientData):
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.log.Error().Err(err).Strs("tickers", tickers).Msg("Failed to build returns")
			h.writeError(w, http.StatusInternalServerError, "Failed to build returns")
		}
		return
	}

	corr, err := formulas.CorrelationMatrix(table.Columns)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	n := table.NumTickers()
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		for j := range matrix[i] {
			matrix[i][j] = formulas.Finite(corr.At(i, j))
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"tickers":      table.Tickers,
			"matrix":       matrix,
			"observations": table.NumRows(),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
