// Package storage defines the vault file-system abstraction.
package storage

import "github.com/starford/headsync/internal/models"

// Provider is the interface for vault file operations.
type Provider interface {
	// List returns metadata for every .md file under dir (relative to vault root).
	List(dir string) ([]models.NoteMetadata, error)
	// Read returns the raw bytes of the file at path (relative to vault root).
	Read(path string) ([]byte, error)
	// Move renames oldPath to newPath (both relative to vault root) without
	// replacing an existing file.
	Move(oldPath, newPath string) error
}

var _ Provider = (*FS)(nil)
