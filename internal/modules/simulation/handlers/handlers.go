// Package handlers provides HTTP handlers for portfolio simulations.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/stocksim/stocksim/internal/modules/analysis"
	"github.com/stocksim/stocksim/internal/modules/simulation"
)

// Runner runs a simulation request
type Runner interface {
	Run(ctx context.Context, req simulation.Request) (*simulation.Result, error)
}

// Handler handles simulation HTTP requests
type Handler struct {
	runner   Runner
	validate *validator.Validate
	log      zerolog.Logger
}

// NewHandler creates a new simulation handler
func NewHandler(runner Runner, log zerolog.Logger) *Handler {
	return &Handler{
		runner:   runner,
		validate: validator.New(),
		log:      log.With().Str("handler", "simulation").Logger(),
	}
}

// HandleSimulate handles POST /simulate
func (h *Handler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulation.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.runner.Run(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, analysis.ErrDimensionMismatch):
			h.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, analysis.ErrNoData):
			h.writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, analysis.ErrInsufficientData), errors.Is(err, simulation.ErrProjectionOverflow):
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			h.log.Warn().Err(err).Msg("Simulation cancelled")
			h.writeError(w, http.StatusServiceUnavailable, "Request cancelled")
		default:
			h.log.Error().Err(err).Msg("Failed to run simulation")
			h.writeError(w, http.StatusInternalServerError, "Failed to run simulation")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, result)
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
