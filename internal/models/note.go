// Package models defines the domain types shared by headsync's surfaces.
package models

import "time"

// NoteMetadata is a lightweight representation returned by list operations.
type NoteMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Rename records one heading-driven rename.
type Rename struct {
	ID        int64     `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Slug      string    `json:"slug"`
	Heading   string    `json:"heading"`
	Checksum  string    `json:"checksum"`
	Trigger   string    `json:"trigger"` // "save", "open" or "command"
	RenamedAt time.Time `json:"renamed_at"`
}
