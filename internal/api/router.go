package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/quire/internal/session"
	"github.com/starford/quire/internal/workservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sessions, if non-nil, enables the /session routes.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(works *workservice.Service, sessions *session.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(works, sessions)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Works.
	r.Get("/works", h.ListWorks)
	r.Post("/works", h.CreateWork)
	r.Route("/works/{workID}", func(r chi.Router) {
		r.Get("/", h.GetWork)
		r.Delete("/", h.DeleteWork)

		r.Get("/files/{fileName}", h.GetFile)
		r.Put("/files/{fileName}", h.UpdateFile)

		// Change review.
		r.Get("/changes", h.Changes)
		r.Get("/changes/{fileName}", h.FileChanges)
		r.Post("/review", h.Review)

		// Snapshots.
		r.Get("/snapshots", h.ListSnapshots)
		r.Post("/snapshots", h.CreateSnapshot)
		r.Get("/snapshots/{snapshotID}", h.GetSnapshot)
	})

	// Search.
	r.Get("/search", h.Search)

	if sessions != nil {
		r.Get("/session", h.GetSession)
		r.Post("/session/sign-in", h.SignIn)
		r.Post("/session/sign-out", h.SignOut)
		r.Post("/session/sync-check", h.SyncCheck)
	}

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
