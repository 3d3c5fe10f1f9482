package status

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", h.Health)
	r.Get("/status", h.Status)

	return r
}
