package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/starford/headsync/internal/noteservice"
	"github.com/starford/headsync/internal/settings"
	"github.com/starford/headsync/internal/slug"
)

const maxBodyBytes = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// notePath extracts the note path from the URL wildcard.
// Supports encoded slashes from OpenAPI clients (e.g. journal%2Fnote.md).
func notePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// GetSettings handles GET /api/settings.
//
//	@Summary		Get the inclusion settings
//	@Tags			settings
//	@Produce		json
//	@Success		200	{object}	SettingsView
//	@Security		BearerAuth
//	@Router			/settings [get]
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Settings(r.Context()))
}

// UpdateSettings handles PUT /api/settings. Absent fields are left as they are.
//
//	@Summary		Update the regex and hook toggles
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SettingsPatch	true	"Partial settings"
//	@Success		200		{object}	SettingsView
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/settings [put]
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var p settings.Patch
	if !decodeBody(w, r, &p) {
		return
	}
	view, err := h.svc.UpdateSettings(r.Context(), p)
	if err != nil {
		writeError(w, "update settings", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// IncludeFile handles POST /api/settings/included.
//
//	@Summary		Opt a note in explicitly
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PathRequest	true	"Note path"
//	@Success		200		{object}	SettingsView
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/settings/included [post]
func (h *Handler) IncludeFile(w http.ResponseWriter, r *http.Request) {
	var req PathRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.IncludeFile(r.Context(), req.Path); err != nil {
		writeError(w, "include file", err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Settings(r.Context()))
}

// ForgetFile handles DELETE /api/settings/included/*.
//
//	@Summary		Remove a note from the explicit opt-in list
//	@Tags			settings
//	@Param			path	path	string	true	"Note path"
//	@Success		204		"Removed"
//	@Security		BearerAuth
//	@Router			/settings/included/{path} [delete]
func (h *Handler) ForgetFile(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.ForgetFile(r.Context(), path); err != nil {
		writeError(w, "forget file", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetActive handles GET /api/active.
//
//	@Summary		Get the focused note
//	@Tags			host
//	@Produce		json
//	@Success		200	{object}	ActiveResponse
//	@Security		BearerAuth
//	@Router			/active [get]
func (h *Handler) GetActive(w http.ResponseWriter, r *http.Request) {
	path, ok := h.svc.Active(r.Context())
	writeJSON(w, http.StatusOK, ActiveResponse{Path: path, Active: ok})
}

// SetActive handles PUT /api/active: the host reports a newly focused note,
// which fires the open hook.
//
//	@Summary		Report the focused note
//	@Tags			host
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PathRequest	true	"Note path"
//	@Success		200		{object}	SyncResult
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/active [put]
func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	var req PathRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	res, err := h.svc.Open(r.Context(), req.Path)
	if err != nil {
		writeError(w, "set active", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// IncludeCurrent handles POST /api/commands/include-current.
//
//	@Summary		Include the focused note
//	@Tags			commands
//	@Produce		json
//	@Success		200	{object}	PathRequest
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/commands/include-current [post]
func (h *Handler) IncludeCurrent(w http.ResponseWriter, r *http.Request) {
	path, err := h.svc.IncludeActive(r.Context())
	if err != nil {
		writeError(w, "include current", err)
		return
	}
	writeJSON(w, http.StatusOK, PathRequest{Path: path})
}

// SlugifyHeading handles POST /api/commands/slugify-heading: force-sync the
// focused note regardless of inclusion.
//
//	@Summary		Rename the focused note after its heading
//	@Tags			commands
//	@Produce		json
//	@Success		200	{object}	SyncResult
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/commands/slugify-heading [post]
func (h *Handler) SlugifyHeading(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.SyncActive(r.Context())
	if err != nil {
		writeError(w, "slugify heading", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes with their inclusion status
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListNotes(r.Context())
	if err != nil {
		writeError(w, "list notes", err)
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: items, Total: len(items)})
}

// PreviewNote handles GET /api/notes/*.
//
//	@Summary		Show the heading and rename decision for a note
//	@Tags			notes
//	@Produce		json
//	@Param			path	path		string	true	"Note path"
//	@Success		200		{object}	NotePreview
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{path} [get]
func (h *Handler) PreviewNote(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	p, err := h.svc.Preview(r.Context(), path)
	if err != nil {
		writeError(w, "preview note", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// SyncNote handles POST /api/sync/*.
//
//	@Summary		Force-sync a note
//	@Tags			notes
//	@Produce		json
//	@Param			path	path		string	true	"Note path"
//	@Success		200		{object}	SyncResult
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sync/{path} [post]
func (h *Handler) SyncNote(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	res, err := h.svc.SyncNote(r.Context(), path)
	if err != nil {
		writeError(w, "sync note", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Slug handles GET /api/slug.
//
//	@Summary		Slugify arbitrary text
//	@Tags			notes
//	@Produce		json
//	@Param			text	query		string	true	"Heading text"
//	@Success		200		{object}	SlugResponse
//	@Security		BearerAuth
//	@Router			/slug [get]
func (h *Handler) Slug(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	writeJSON(w, http.StatusOK, SlugResponse{Text: text, Slug: slug.Make(text)})
}

// ListRenames handles GET /api/renames.
//
//	@Summary		List recent renames
//	@Tags			journal
//	@Produce		json
//	@Param			limit	query		int	false	"Max entries"
//	@Success		200		{object}	RenameListResponse
//	@Security		BearerAuth
//	@Router			/renames [get]
func (h *Handler) ListRenames(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	out, err := h.svc.Renames(r.Context(), limit)
	if err != nil {
		writeError(w, "list renames", err)
		return
	}
	writeJSON(w, http.StatusOK, RenameListResponse{Renames: out})
}

// History handles GET /api/history/*.
//
//	@Summary		Rename chain that led to a note
//	@Tags			journal
//	@Produce		json
//	@Param			path	path		string	true	"Current note path"
//	@Success		200		{object}	RenameListResponse
//	@Security		BearerAuth
//	@Router			/history/{path} [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	out, err := h.svc.History(r.Context(), path)
	if err != nil {
		writeError(w, "history", err)
		return
	}
	writeJSON(w, http.StatusOK, RenameListResponse{Renames: out})
}
