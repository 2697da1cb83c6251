// Package handlers provides HTTP handlers for client profile generation.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/stocksim/stocksim/internal/clients/groq"
	"github.com/stocksim/stocksim/internal/domain"
	"github.com/stocksim/stocksim/internal/modules/profiles"
)

// Handler handles client profile HTTP requests
type Handler struct {
	generator domain.ProfileGenerator
	log       zerolog.Logger
}

// NewHandler creates a new profile handler
func NewHandler(generator domain.ProfileGenerator, log zerolog.Logger) *Handler {
	return &Handler{
		generator: generator,
		log:       log.With().Str("handler", "profiles").Logger(),
	}
}

// HandleGenerateClient handles GET /generate_client/{difficulty}/{time_span}
func (h *Handler) HandleGenerateClient(w http.ResponseWriter, r *http.Request, rawDifficulty, rawTimeSpan string) {
	difficulty, err := domain.ParseDifficulty(rawDifficulty)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	timeSpan, err := strconv.Atoi(rawTimeSpan)
	if err != nil || timeSpan <= 0 || timeSpan > profiles.MaxTimeSpan {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("time_span must be a whole number of months between 1 and %d", profiles.MaxTimeSpan),
		})
		return
	}

	profile, err := h.generator.GenerateProfile(r.Context(), difficulty, timeSpan)
	if err != nil {
		var profileErr *groq.ProfileError
		if errors.As(err, &profileErr) {
			h.writeJSON(w, http.StatusBadGateway, map[string]string{
				"error":    profileErr.Message,
				"response": profileErr.Response,
			})
			return
		}
		h.log.Error().Err(err).Str("difficulty", string(difficulty)).Msg("Failed to generate client profile")
		h.writeJSON(w, http.StatusBadGateway, map[string]string{"error": "Failed to generate client profile"})
		return
	}

	h.writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
