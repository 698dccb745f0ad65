package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// NewRouter собирает маршруты API с middleware.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(Recovery(h.logger))
	r.Use(Logging(h.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/scrape", h.StartScrape)
		r.Get("/scrape/status/{taskID}", h.GetTaskStatus)
		r.Get("/scrape/logs/{taskID}", h.StreamTaskLogs)
	})

	return r
}
