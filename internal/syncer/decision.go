package syncer

import (
	"path"
	"strings"

	"github.com/starford/headsync/internal/heading"
	"github.com/starford/headsync/internal/slug"
	"github.com/starford/headsync/internal/storage"
)

// Outcome names what an evaluation did. Only Renamed changes anything on
// disk; every other outcome leaves the filename as it was.
type Outcome string

const (
	Ignored             Outcome = "ignored"
	NotIncluded         Outcome = "not_included"
	InFlight            Outcome = "rename_in_flight"
	NoHeading           Outcome = "no_heading"
	EmptySlug           Outcome = "empty_slug"
	AlreadySynchronized Outcome = "already_synchronized"
	Renamed             Outcome = "renamed"
	ReadFailed          Outcome = "read_failed"
	RenameFailed        Outcome = "rename_failed"
)

// Decision is the pure rename verdict for one document.
type Decision struct {
	ShouldRename bool    `json:"should_rename"`
	TargetSlug   string  `json:"target_slug,omitempty"`
	CurrentSlug  string  `json:"current_slug"`
	Outcome      Outcome `json:"outcome"`
}

// Decide compares the slug of the heading against the slug of the current
// basename. Slug-to-slug comparison keeps names such as "Hello World.md"
// from churning when the heading is "Hello World".
func Decide(notePath string, m heading.Match, found bool) Decision {
	current := slug.Make(Basename(notePath))
	if !found {
		return Decision{CurrentSlug: current, Outcome: NoHeading}
	}
	target := slug.Make(m.Text)
	switch {
	case target == "":
		return Decision{CurrentSlug: current, Outcome: EmptySlug}
	case target == current:
		return Decision{TargetSlug: target, CurrentSlug: current, Outcome: AlreadySynchronized}
	}
	return Decision{ShouldRename: true, TargetSlug: target, CurrentSlug: current, Outcome: Renamed}
}

// Basename returns the file name of notePath without its extension.
func Basename(notePath string) string {
	base := path.Base(notePath)
	return strings.TrimSuffix(base, path.Ext(base))
}

// TargetPath returns {parent}/{slug}.md for notePath.
func TargetPath(notePath, s string) string {
	dir := path.Dir(notePath)
	if dir == "." || dir == "/" {
		return s + storage.NoteExt
	}
	return dir + "/" + s + storage.NoteExt
}
