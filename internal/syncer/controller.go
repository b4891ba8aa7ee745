// Package syncer renames notes so their filename follows the slug of their
// first heading.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/starford/headsync/internal/apperr"
	"github.com/starford/headsync/internal/checksum"
	"github.com/starford/headsync/internal/heading"
	"github.com/starford/headsync/internal/inclusion"
	"github.com/starford/headsync/internal/models"
	"github.com/starford/headsync/internal/settings"
	"github.com/starford/headsync/internal/storage"
)

// State is the controller's rename state.
type State uint32

const (
	Idle State = iota
	RenameInFlight
)

// Triggers recorded with each rename.
const (
	TriggerSave    = "save"
	TriggerOpen    = "open"
	TriggerCommand = "command"
)

// Documents is the slice of the vault the controller needs.
type Documents interface {
	Read(path string) ([]byte, error)
	Move(oldPath, newPath string) error
}

// SettingsSource yields the settings snapshot for one evaluation.
type SettingsSource interface {
	Snapshot() settings.Snapshot
}

// Recorder persists completed renames.
type Recorder interface {
	RecordRename(ctx context.Context, r models.Rename) (int64, error)
}

// RenameHook is called after every successful rename.
type RenameHook func(r models.Rename)

// Result reports what one evaluation did.
type Result struct {
	Outcome Outcome        `json:"outcome"`
	Path    string         `json:"path"`
	Target  string         `json:"target,omitempty"`
	Slug    string         `json:"slug,omitempty"`
	Heading *heading.Match `json:"heading,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Controller reacts to document events and issues renames.
//
// Only one rename may be in flight per controller. The state word is a
// re-entrancy guard so listeners can drop the change notifications a rename
// induces; it is not a lock around evaluation.
type Controller struct {
	docs     Documents
	settings SettingsSource
	excluded inclusion.Excluder
	active   *Active
	logger   *slog.Logger

	recorder Recorder
	hooks    []RenameHook

	state atomic.Uint32
}

// Option configures optional controller collaborators.
type Option func(*Controller)

// WithRecorder persists each rename through r.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithRenameHook registers fn to run after each successful rename.
func WithRenameHook(fn RenameHook) Option {
	return func(c *Controller) { c.hooks = append(c.hooks, fn) }
}

// New creates a controller. excluded may be nil.
func New(docs Documents, src SettingsSource, excluded inclusion.Excluder, active *Active, logger *slog.Logger, opts ...Option) *Controller {
	if active == nil {
		active = &Active{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		docs:     docs,
		settings: src,
		excluded: excluded,
		active:   active,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current rename state.
func (c *Controller) State() State { return State(c.state.Load()) }

// InFlight reports whether a rename is currently being performed.
func (c *Controller) InFlight() bool { return c.State() == RenameInFlight }

// Active returns the active-document tracker.
func (c *Controller) Active() *Active { return c.active }

// Included reports whether path passes the inclusion policy under snap.
func (c *Controller) Included(path string, snap settings.Snapshot) bool {
	return inclusion.IsIncluded(path, c.excluded, snap.IncludedPaths, snap.IncludeRegex)
}

// OnFileChanged handles a save notification for path. Only the active note
// is considered, and only when the save hook is enabled and the note passes
// the inclusion policy.
func (c *Controller) OnFileChanged(ctx context.Context, path string) Result {
	snap := c.settings.Snapshot()
	switch {
	case !storage.IsNote(path), !c.active.Is(path), !snap.UseSaveHook:
		return Result{Outcome: Ignored, Path: path}
	case c.InFlight():
		c.logger.Debug("sync: change during rename ignored", slog.String("path", path))
		return Result{Outcome: InFlight, Path: path}
	case !c.Included(path, snap):
		return Result{Outcome: NotIncluded, Path: path}
	}
	return c.sync(ctx, path, TriggerSave)
}

// OnFileOpened handles the host focusing path. The note becomes active; it
// is synchronized only when the open hook is enabled.
func (c *Controller) OnFileOpened(ctx context.Context, path string) Result {
	c.active.Set(path)
	snap := c.settings.Snapshot()
	switch {
	case !storage.IsNote(path), !snap.UseOpenHook:
		return Result{Outcome: Ignored, Path: path}
	case c.InFlight():
		return Result{Outcome: InFlight, Path: path}
	case !c.Included(path, snap):
		return Result{Outcome: NotIncluded, Path: path}
	}
	return c.sync(ctx, path, TriggerOpen)
}

// ForceSync synchronizes path unconditionally, bypassing the active-note,
// hook and inclusion checks.
func (c *Controller) ForceSync(ctx context.Context, path string) Result {
	return c.sync(ctx, path, TriggerCommand)
}

// SyncActive runs ForceSync on the active note.
func (c *Controller) SyncActive(ctx context.Context) (Result, error) {
	path, ok := c.active.Get()
	if !ok {
		return Result{}, apperr.ErrNoActive
	}
	return c.ForceSync(ctx, path), nil
}

func (c *Controller) sync(ctx context.Context, path, trigger string) Result {
	data, err := c.docs.Read(path)
	if err != nil {
		c.logger.Warn("sync: read failed", slog.String("path", path), slog.String("error", err.Error()))
		return Result{Outcome: ReadFailed, Path: path, Error: err.Error()}
	}

	m, found := heading.Find(heading.Split(data))
	d := Decide(path, m, found)
	res := Result{Outcome: d.Outcome, Path: path, Slug: d.TargetSlug}
	if found {
		res.Heading = &m
	}
	if !d.ShouldRename {
		c.logger.Debug("sync: no rename", slog.String("path", path), slog.String("outcome", string(d.Outcome)))
		return res
	}

	if !c.state.CompareAndSwap(uint32(Idle), uint32(RenameInFlight)) {
		res.Outcome = InFlight
		return res
	}
	defer c.state.Store(uint32(Idle))

	target := TargetPath(path, d.TargetSlug)
	res.Target = target
	if err := c.docs.Move(path, target); err != nil {
		c.logger.Warn("sync: rename failed",
			slog.String("path", path),
			slog.String("target", target),
			slog.String("error", err.Error()))
		res.Outcome = RenameFailed
		res.Error = err.Error()
		return res
	}
	c.active.follow(path, target)

	sum := checksum.Sum(data)
	c.logger.Info("sync: renamed",
		slog.String("from", path),
		slog.String("to", target),
		slog.String("trigger", trigger),
		slog.String("checksum", checksum.Short(sum)))

	rec := models.Rename{
		From:      path,
		To:        target,
		Slug:      d.TargetSlug,
		Heading:   m.Text,
		Checksum:  sum,
		Trigger:   trigger,
		RenamedAt: time.Now().UTC(),
	}
	if c.recorder != nil {
		id, err := c.recorder.RecordRename(ctx, rec)
		if err != nil {
			c.logger.Warn("sync: journal failed", slog.String("path", target), slog.String("error", err.Error()))
		}
		rec.ID = id
	}
	for _, fn := range c.hooks {
		fn(rec)
	}
	return res
}

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case RenameInFlight:
		return "rename_in_flight"
	default:
		return fmt.Sprintf("state(%d)", uint32(s))
	}
}
