package proxy

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds the proxy router with permissive CORS. Preflight
// OPTIONS requests are answered by the cors middleware with 200.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HandleHealth)
	r.Route("/api/moex", func(r chi.Router) {
		r.Get("/stocks", h.HandleStocks)
		r.Get("/bonds", h.HandleBonds)
	})

	return r
}
