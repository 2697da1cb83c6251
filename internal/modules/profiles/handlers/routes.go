package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the client profile routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/generate_client/{difficulty}/{time_span}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleGenerateClient(w, r, chi.URLParam(r, "difficulty"), chi.URLParam(r, "time_span"))
	})
}
