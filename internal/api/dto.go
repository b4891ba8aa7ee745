package api

import (
	"github.com/starford/headsync/internal/models"
	"github.com/starford/headsync/internal/noteservice"
	"github.com/starford/headsync/internal/settings"
	"github.com/starford/headsync/internal/syncer"
)

// PathRequest carries a single vault-relative note path.
type PathRequest struct {
	Path string `json:"path" example:"journal/untitled.md" validate:"required"`
}

// SettingsView is the settings response (aliased from the domain layer).
type SettingsView = noteservice.SettingsView

// SettingsPatch is the partial update accepted by PUT /settings.
type SettingsPatch = settings.Patch

// NotePreview is the preview response (aliased from the domain layer).
type NotePreview = noteservice.NotePreview

// NoteListItem is a lightweight item in a list response (aliased from the domain layer).
type NoteListItem = noteservice.NoteListItem

// SyncResult reports what one evaluation did.
type SyncResult = syncer.Result

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []NoteListItem `json:"notes" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// ActiveResponse describes the focused note.
type ActiveResponse struct {
	Path   string `json:"path" example:"journal/untitled.md"`
	Active bool   `json:"active"`
}

// SlugResponse is returned by GET /slug.
type SlugResponse struct {
	Text string `json:"text" example:"Hello, World!"`
	Slug string `json:"slug" example:"hello-world"`
}

// RenameListResponse wraps journal entries.
type RenameListResponse struct {
	Renames []models.Rename `json:"renames" validate:"required"`
}
