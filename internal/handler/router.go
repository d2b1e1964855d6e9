package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the discovery handler and the SSE stream
func NewRouter(h *DiscoveryHandler, events http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Logger)

		r.Get("/frontends", h.ListFrontends)
		r.Get("/frontends/{adapter}/{frontend}", h.GetFrontend)
		r.Get("/adapters", h.ListAdapters)

		r.Route("/tunings", func(r chi.Router) {
			r.Get("/", h.ListTunings)
			r.Post("/", h.CreateTuning)
			r.Delete("/{adapter}/{frontend}", h.DeleteTuning)
		})

		r.Get("/journal", h.Journal)
		r.Get("/journal/stats", h.JournalStats)
		r.Get("/export/{format}", h.Export)
	})

	if events != nil {
		r.Handle("/events", events)
	}

	return r
}
