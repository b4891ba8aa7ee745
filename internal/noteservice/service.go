// Package noteservice exposes headsync's commands and read models to the
// HTTP and MCP surfaces.
package noteservice

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/starford/headsync/internal/apperr"
	"github.com/starford/headsync/internal/checksum"
	"github.com/starford/headsync/internal/heading"
	"github.com/starford/headsync/internal/inclusion"
	"github.com/starford/headsync/internal/journal"
	"github.com/starford/headsync/internal/models"
	"github.com/starford/headsync/internal/settings"
	"github.com/starford/headsync/internal/storage"
	"github.com/starford/headsync/internal/syncer"
)

// SettingsView is the settings payload returned to clients: the persisted
// shape plus whether the regex currently compiles.
type SettingsView struct {
	settings.Record
	RegexValid bool `json:"regexValid"`
}

// NotePreview describes what a sync would do to a note, without doing it.
type NotePreview struct {
	Path        string          `json:"path"`
	Checksum    string          `json:"checksum"`
	Heading     *heading.Match  `json:"heading,omitempty"`
	Frontmatter map[string]any  `json:"frontmatter,omitempty"`
	Decision    syncer.Decision `json:"decision"`
	Target      string          `json:"target,omitempty"`
	Included    bool            `json:"included"`
	Active      bool            `json:"active"`
}

// NoteListItem is a lightweight item in a list response.
type NoteListItem struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	Included  bool      `json:"included"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SettingsHook is called after every settings mutation.
type SettingsHook func(snap settings.Snapshot)

// Service coordinates storage, settings, the sync controller and the
// rename journal.
type Service struct {
	store   storage.Provider
	prefs   *settings.Store
	ctrl    *syncer.Controller
	journal journal.Journal
	hooks   []SettingsHook
}

// NewService creates a new note service. j may be nil when no journal is
// configured.
func NewService(store storage.Provider, prefs *settings.Store, ctrl *syncer.Controller, j journal.Journal) *Service {
	return &Service{store: store, prefs: prefs, ctrl: ctrl, journal: j}
}

// OnSettingsChanged registers fn to run after each settings mutation.
func (s *Service) OnSettingsChanged(fn SettingsHook) {
	s.hooks = append(s.hooks, fn)
}

// Settings returns the current settings.
func (s *Service) Settings(_ context.Context) SettingsView {
	return view(s.prefs.Snapshot())
}

// UpdateSettings applies a partial update. An invalid regex is stored as
// given; it simply disables regex inclusion until fixed.
func (s *Service) UpdateSettings(_ context.Context, p settings.Patch) (SettingsView, error) {
	snap, err := s.prefs.Apply(p)
	if err != nil {
		return SettingsView{}, err
	}
	s.settingsChanged(snap)
	return view(snap), nil
}

// IncludeActive adds the active note to the explicit opt-in list.
func (s *Service) IncludeActive(ctx context.Context) (string, error) {
	path, ok := s.ctrl.Active().Get()
	if !ok {
		return "", apperr.ErrNoActive
	}
	return path, s.IncludeFile(ctx, path)
}

// IncludeFile adds path to the explicit opt-in list.
func (s *Service) IncludeFile(_ context.Context, path string) error {
	path, err := storage.Clean(path)
	if err != nil {
		return err
	}
	if !storage.IsNote(path) {
		return fmt.Errorf("include %s: %w", path, apperr.ErrInvalidPath)
	}
	snap, err := s.prefs.IncludeFile(path)
	if err != nil {
		return err
	}
	s.settingsChanged(snap)
	return nil
}

// ForgetFile removes path from the explicit opt-in list.
func (s *Service) ForgetFile(_ context.Context, path string) error {
	path, err := storage.Clean(path)
	if err != nil {
		return err
	}
	snap, err := s.prefs.ForgetFile(path)
	if err != nil {
		return err
	}
	s.settingsChanged(snap)
	return nil
}

// SyncActive runs the "Slugify Heading as Filename" command on the active note.
func (s *Service) SyncActive(ctx context.Context) (syncer.Result, error) {
	return s.ctrl.SyncActive(ctx)
}

// SyncNote force-syncs path.
func (s *Service) SyncNote(ctx context.Context, path string) (syncer.Result, error) {
	path, err := storage.Clean(path)
	if err != nil {
		return syncer.Result{}, err
	}
	return s.ctrl.ForceSync(ctx, path), nil
}

// Open records path as the focused note and runs the open hook.
func (s *Service) Open(ctx context.Context, path string) (syncer.Result, error) {
	path, err := storage.Clean(path)
	if err != nil {
		return syncer.Result{}, err
	}
	return s.ctrl.OnFileOpened(ctx, path), nil
}

// Active returns the focused note, if any.
func (s *Service) Active(_ context.Context) (string, bool) {
	return s.ctrl.Active().Get()
}

// ListNotes returns every note in the vault, sorted by path.
func (s *Service) ListNotes(_ context.Context) ([]NoteListItem, error) {
	metas, err := s.store.List("")
	if err != nil {
		return nil, err
	}
	snap := s.prefs.Snapshot()
	items := make([]NoteListItem, len(metas))
	for i, m := range metas {
		items[i] = NoteListItem{
			Path:      m.Path,
			Checksum:  m.Checksum,
			Included:  s.ctrl.Included(m.Path, snap),
			UpdatedAt: m.UpdatedAt,
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Path < items[j].Path })
	return items, nil
}

// Preview reads path and reports the heading and rename decision.
func (s *Service) Preview(_ context.Context, path string) (*NotePreview, error) {
	path, err := storage.Clean(path)
	if err != nil {
		return nil, err
	}
	data, err := s.store.Read(path)
	if err != nil {
		return nil, err
	}
	return BuildPreview(path, data, s.ctrl.Included(path, s.prefs.Snapshot()), s.ctrl.Active().Is(path)), nil
}

// Renames returns the newest journal entries.
func (s *Service) Renames(ctx context.Context, limit int) ([]models.Rename, error) {
	if s.journal == nil {
		return []models.Rename{}, nil
	}
	out, err := s.journal.Recent(ctx, limit)
	return nonNilSlice(out), err
}

// History returns the rename chain that led to path.
func (s *Service) History(ctx context.Context, path string) ([]models.Rename, error) {
	path, err := storage.Clean(path)
	if err != nil {
		return nil, err
	}
	if s.journal == nil {
		return []models.Rename{}, nil
	}
	out, err := s.journal.History(ctx, path)
	return nonNilSlice(out), err
}

// BuildPreview derives a NotePreview from raw note content.
func BuildPreview(path string, data []byte, included, active bool) *NotePreview {
	lines := heading.Split(data)
	m, found := heading.Find(lines)
	d := syncer.Decide(path, m, found)
	p := &NotePreview{
		Path:        path,
		Checksum:    checksum.Sum(data),
		Frontmatter: heading.Frontmatter(lines),
		Decision:    d,
		Included:    included,
		Active:      active,
	}
	if found {
		p.Heading = &m
	}
	if d.ShouldRename {
		p.Target = syncer.TargetPath(path, d.TargetSlug)
	}
	return p
}

func (s *Service) settingsChanged(snap settings.Snapshot) {
	for _, fn := range s.hooks {
		fn(snap)
	}
}

func view(snap settings.Snapshot) SettingsView {
	return SettingsView{Record: snap.Record(), RegexValid: inclusion.ValidPattern(snap.IncludeRegex)}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
