package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/headsync/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Settings.
	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.UpdateSettings)
	r.Post("/settings/included", h.IncludeFile)
	r.Delete("/settings/included/*", h.ForgetFile)

	// Host signals and commands.
	r.Get("/active", h.GetActive)
	r.Put("/active", h.SetActive)
	r.Post("/commands/include-current", h.IncludeCurrent)
	r.Post("/commands/slugify-heading", h.SlugifyHeading)

	// Notes.
	r.Get("/notes", h.ListNotes)
	r.Get("/notes/*", h.PreviewNote)
	r.Post("/sync/*", h.SyncNote)
	r.Get("/slug", h.Slug)

	// Journal.
	r.Get("/renames", h.ListRenames)
	r.Get("/history/*", h.History)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
