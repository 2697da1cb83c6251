package server

import (
	"encoding/json"
	"net/http"
)

// handleHealth handles health check requests. An unreachable cache database
// reports 503 so load balancers stop routing to the instance.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.container != nil && s.container.CacheDB != nil {
		if err := s.container.CacheDB.QuickCheck(r.Context()); err != nil {
			s.log.Warn().Err(err).Msg("Health check failed")
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status":  "degraded",
				"service": "stocksim",
				"error":   "cache database unavailable",
			})
			return
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"service": "stocksim",
	})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
