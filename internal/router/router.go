package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/saulo-duarte/taskbridge/internal/status"
)

type RouterConfig struct {
	StatusHandler *status.Handler
}

// New builds the daemon's HTTP surface: a read-only observation endpoint.
// The sync itself never goes through HTTP handlers.
func New(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Mount("/", status.Routes(cfg.StatusHandler))

	return r
}
