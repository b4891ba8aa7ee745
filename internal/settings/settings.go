// Package settings persists the inclusion settings that govern which notes
// headsync renames and which host events it reacts to.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/starford/headsync/internal/storage"
)

// Snapshot is an immutable view of the settings for one evaluation.
type Snapshot struct {
	IncludeRegex  string
	IncludedPaths map[string]struct{}
	UseOpenHook   bool
	UseSaveHook   bool
}

// Included returns the explicit opt-in list, sorted.
func (s Snapshot) Included() []string {
	out := make([]string, 0, len(s.IncludedPaths))
	for p := range s.IncludedPaths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Defaults returns the settings used when nothing has been persisted yet.
func Defaults() Snapshot {
	return Snapshot{
		IncludedPaths: map[string]struct{}{},
		UseSaveHook:   true,
	}
}

// Record is the persisted shape. includedFiles maps each path to null.
type Record struct {
	IncludeRegex    string         `json:"includeRegex"`
	IncludedFiles   map[string]any `json:"includedFiles"`
	UseFileOpenHook bool           `json:"useFileOpenHook"`
	UseFileSaveHook bool           `json:"useFileSaveHook"`
}

// Patch carries a partial settings update; nil fields are left untouched.
type Patch struct {
	IncludeRegex    *string `json:"includeRegex,omitempty"`
	UseFileOpenHook *bool   `json:"useFileOpenHook,omitempty"`
	UseFileSaveHook *bool   `json:"useFileSaveHook,omitempty"`
}

// Store holds the current settings and writes them back on every mutation.
// An empty path keeps the settings in memory only.
type Store struct {
	mu   sync.RWMutex
	path string
	cur  Snapshot
}

// Load reads settings from path. A missing file yields Defaults.
func Load(path string) (*Store, error) {
	s := &Store{path: path, cur: Defaults()}
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("settings: read %s: %w", path, err)
	}
	rec := Record{UseFileSaveHook: true}
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("settings: parse %s: %w", path, err)
	}
	s.cur = fromRecord(rec)
	return s, nil
}

// NewMemory returns a Store that is never persisted.
func NewMemory(initial Snapshot) *Store {
	return &Store{cur: clone(initial)}
}

// Snapshot returns a copy of the current settings.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.cur)
}

// IncludeFile adds path to the explicit opt-in list.
func (s *Store) IncludeFile(path string) (Snapshot, error) {
	return s.mutate(func(cur *Snapshot) {
		cur.IncludedPaths[path] = struct{}{}
	})
}

// ForgetFile removes path from the explicit opt-in list.
func (s *Store) ForgetFile(path string) (Snapshot, error) {
	return s.mutate(func(cur *Snapshot) {
		delete(cur.IncludedPaths, path)
	})
}

// RenameFile moves an opt-in entry along with a renamed note.
func (s *Store) RenameFile(from, to string) (Snapshot, error) {
	s.mu.RLock()
	_, ok := s.cur.IncludedPaths[from]
	s.mu.RUnlock()
	if !ok {
		return s.Snapshot(), nil
	}
	return s.mutate(func(cur *Snapshot) {
		delete(cur.IncludedPaths, from)
		cur.IncludedPaths[to] = struct{}{}
	})
}

// Apply merges p into the current settings.
func (s *Store) Apply(p Patch) (Snapshot, error) {
	return s.mutate(func(cur *Snapshot) {
		if p.IncludeRegex != nil {
			cur.IncludeRegex = *p.IncludeRegex
		}
		if p.UseFileOpenHook != nil {
			cur.UseOpenHook = *p.UseFileOpenHook
		}
		if p.UseFileSaveHook != nil {
			cur.UseSaveHook = *p.UseFileSaveHook
		}
	})
}

// mutate applies fn to a copy, persists it and only then publishes it.
func (s *Store) mutate(fn func(*Snapshot)) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := clone(s.cur)
	fn(&next)
	if err := s.save(next); err != nil {
		return clone(s.cur), err
	}
	s.cur = next
	return clone(next), nil
}

func (s *Store) save(snap Snapshot) error {
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(snap.Record(), "", "  ")
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}
	if err := storage.WriteFileAtomic(s.path, append(data, '\n')); err != nil {
		return fmt.Errorf("settings: save %s: %w", s.path, err)
	}
	return nil
}

// MarshalJSON renders a snapshot in the persisted shape.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Record())
}

// Record converts the snapshot to its persisted shape.
func (s Snapshot) Record() Record {
	files := make(map[string]any, len(s.IncludedPaths))
	for p := range s.IncludedPaths {
		files[p] = nil
	}
	return Record{
		IncludeRegex:    s.IncludeRegex,
		IncludedFiles:   files,
		UseFileOpenHook: s.UseOpenHook,
		UseFileSaveHook: s.UseSaveHook,
	}
}

func fromRecord(r Record) Snapshot {
	paths := make(map[string]struct{}, len(r.IncludedFiles))
	for p := range r.IncludedFiles {
		paths[p] = struct{}{}
	}
	return Snapshot{
		IncludeRegex:  r.IncludeRegex,
		IncludedPaths: paths,
		UseOpenHook:   r.UseFileOpenHook,
		UseSaveHook:   r.UseFileSaveHook,
	}
}

func clone(s Snapshot) Snapshot {
	paths := make(map[string]struct{}, len(s.IncludedPaths))
	for p := range s.IncludedPaths {
		paths[p] = struct{}{}
	}
	s.IncludedPaths = paths
	return s
}
