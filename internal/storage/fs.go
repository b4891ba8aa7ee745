package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/starford/headsync/internal/apperr"
	"github.com/starford/headsync/internal/checksum"
	"github.com/starford/headsync/internal/models"
)

// NoteExt is the only document type headsync reads or renames.
const NoteExt = ".md"

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to vault directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute vault directory.
func (f *FS) Root() string { return f.root }

// safePath resolves a relative path against the vault root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s: %w", rel, apperr.ErrInvalidPath)
	}
	abs, err := filepath.Abs(filepath.Join(f.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: path escapes vault root: %s: %w", rel, apperr.ErrInvalidPath)
	}
	return abs, nil
}

// Clean normalises a note path supplied by a client to the vault-relative
// slash form the watcher reports ("./notes//a.md" becomes "notes/a.md").
// Empty, absolute and vault-escaping paths fail with apperr.ErrInvalidPath.
func Clean(p string) (string, error) {
	slashed := filepath.ToSlash(p)
	if slashed == "" || path.IsAbs(slashed) || filepath.IsAbs(p) {
		return "", fmt.Errorf("storage: %q: %w", p, apperr.ErrInvalidPath)
	}
	cleaned := path.Clean(slashed)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("storage: %q: %w", p, apperr.ErrInvalidPath)
	}
	return cleaned, nil
}

// List walks dir (relative to root) and returns metadata for every note.
// Paths use forward slashes.
func (f *FS) List(dir string) ([]models.NoteMetadata, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	var out []models.NoteMetadata
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if p != base && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsNote(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(f.root, p)
		out = append(out, models.NoteMetadata{
			Path:      filepath.ToSlash(rel),
			Checksum:  checksum.Sum(data),
			UpdatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}

// Read returns the raw bytes of a vault file. A missing file yields an
// error wrapping apperr.ErrNotFound.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("storage: read %s: %w", path, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Move renames a note within the vault. It refuses to replace an existing
// target (apperr.ErrConflict) unless the target is the same file, which
// happens for case-only renames on case-insensitive file systems.
//
// The move is a hard link followed by removal of the old name, so a target
// that appears concurrently is never overwritten. File systems without hard
// links fall back to a checked rename.
func (f *FS) Move(oldPath, newPath string) error {
	absOld, err := f.safePath(oldPath)
	if err != nil {
		return err
	}
	absNew, err := f.safePath(newPath)
	if err != nil {
		return err
	}
	oldInfo, err := os.Stat(absOld)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("storage: move %s: %w", oldPath, apperr.ErrNotFound)
		}
		return fmt.Errorf("storage: move: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absNew), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir for move: %w", err)
	}

	linkErr := os.Link(absOld, absNew)
	switch {
	case linkErr == nil:
		if err := os.Remove(absOld); err != nil {
			_ = os.Remove(absNew)
			return fmt.Errorf("storage: move: %w", err)
		}
		return nil
	case errors.Is(linkErr, fs.ErrExist):
		newInfo, err := os.Stat(absNew)
		if err != nil || !os.SameFile(oldInfo, newInfo) {
			return fmt.Errorf("storage: move %s -> %s: %w", oldPath, newPath, apperr.ErrConflict)
		}
	default:
		if newInfo, err := os.Stat(absNew); err == nil && !os.SameFile(oldInfo, newInfo) {
			return fmt.Errorf("storage: move %s -> %s: %w", oldPath, newPath, apperr.ErrConflict)
		}
	}
	if err := os.Rename(absOld, absNew); err != nil {
		return fmt.Errorf("storage: move: %w", err)
	}
	return nil
}

// IsNote reports whether name has the note extension.
func IsNote(name string) bool {
	return strings.HasSuffix(name, NoteExt)
}

// WriteFileAtomic writes content to abs: tmp file → fsync → rename.
func WriteFileAtomic(abs string, content []byte) error {
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".headsync-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}
