package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/signup", h.signup)
		r.Post("/api/login", h.login)
		r.Get("/api/version", h.getServerVersion)
	})

	// routes requiring a valid bearer token
	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/api/notes", func(r chi.Router) {
			r.Post("/", h.createNote)
			r.Get("/", h.listNotes)

			r.Route("/{noteID}", func(r chi.Router) {
				r.Get("/", h.getNote)
				r.Patch("/", h.patchNote)
				r.Delete("/", h.deleteNote)

				r.Get("/revisions", h.listRevisions)
				r.Get("/collaborators", h.listCollaborators)
				r.Get("/ws", h.sync)
			})
		})
	})

	return router
}
