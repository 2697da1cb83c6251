// Package handlers provides HTTP handlers for portfolio and single-stock risk analysis.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/stocksim/stocksim/internal/modules/analysis"
)

// Analyzer is the subset of analysis.Service the handlers use
type Analyzer interface {
	Analyze(ctx context.Context, tickers []string) (*analysis.PortfolioAnalysis, error)
	AnalyzeStock(ctx context.Context, ticker string) (*analysis.StockAnalysis, error)
}

// AnalyzePortfolioRequest is the body of POST /analyze_portfolio
type AnalyzePortfolioRequest struct {
	Tickers []string `json:"tickers" validate:"required,max=50,dive,required,max=16"`
}

// Handler handles analysis HTTP requests
type Handler struct {
	analyzer Analyzer
	validate *validator.Validate
	log      zerolog.Logger
}

// NewHandler creates a new analysis handler
func NewHandler(analyzer Analyzer, log zerolog.Logger) *Handler {
	return &Handler{
		analyzer: analyzer,
		validate: validator.New(),
		log:      log.With().Str("handler", "analysis").Logger(),
	}
}

// HandleAnalyzePortfolio handles POST /analyze_portfolio
func (h *Handler) HandleAnalyzePortfolio(w http.ResponseWriter, r *http.Request) {
	var req AnalyzePortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), req.Tickers)
	if err != nil {
		h.writeAnalysisError(w, err, "Failed to analyze portfolio")
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleGetStock handles GET /stock/{ticker}
func (h *Handler) HandleGetStock(w http.ResponseWriter, r *http.Request, ticker string) {
	result, err := h.analyzer.AnalyzeStock(r.Context(), ticker)
	if err != nil {
		h.writeAnalysisError(w, err, "Failed to analyze stock")
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// writeAnalysisError maps pipeline errors onto status codes. Input problems
// are 400, missing data 404, unusable data 422, everything else 500.
func (h *Handler) writeAnalysisError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, analysis.ErrTooFewTickers), errors.Is(err, analysis.ErrDimensionMismatch):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, analysis.ErrNoData):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, analysis.ErrInsufficientData):
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.log.Warn().Err(err).Msg("Analysis request cancelled")
		h.writeError(w, http.StatusServiceUnavailable, "Request cancelled")
	default:
		h.log.Error().Err(err).Msg(msg)
		h.writeError(w, http.StatusInternalServerError, msg)
	}
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
