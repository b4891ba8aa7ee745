package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/headsync/internal/apperr"
)

func tempVault(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

// put writes a fixture file relative to the vault root.
func put(t *testing.T, s *FS, rel string, content []byte) {
	t.Helper()
	if err := WriteFileAtomic(filepath.Join(s.Root(), filepath.FromSlash(rel)), content); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
}

func TestRead(t *testing.T) {
	s := tempVault(t)
	content := []byte("# Hello\nWorld\n")
	put(t, s, "note.md", content)
	got, err := s.Read("note.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestReadMissingIsNotFound(t *testing.T) {
	s := tempVault(t)
	_, err := s.Read("missing.md")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMove(t *testing.T) {
	s := tempVault(t)
	put(t, s, "old.md", []byte("data"))
	if err := s.Move("old.md", "sub/new.md"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	got, err := s.Read("sub/new.md")
	if err != nil {
		t.Fatalf("Read after move: %v", err)
	}
	if string(got) != "data" {
		t.Errorf("content = %q", got)
	}
	if _, err := s.Read("old.md"); err == nil {
		t.Error("old path should not exist")
	}
}

func TestMoveConflict(t *testing.T) {
	s := tempVault(t)
	put(t, s, "a.md", []byte("a"))
	put(t, s, "b.md", []byte("b"))

	err := s.Move("a.md", "b.md")
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	// Both files untouched.
	if got, _ := s.Read("a.md"); string(got) != "a" {
		t.Errorf("a.md = %q", got)
	}
	if got, _ := s.Read("b.md"); string(got) != "b" {
		t.Errorf("b.md = %q", got)
	}
}

func TestMoveMissingSource(t *testing.T) {
	s := tempVault(t)
	err := s.Move("ghost.md", "new.md")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestList(t *testing.T) {
	s := tempVault(t)
	put(t, s, "a.md", []byte("a"))
	put(t, s, "sub/b.md", []byte("b"))
	put(t, s, "readme.txt", []byte("not md"))
	put(t, s, ".trash/c.md", []byte("hidden"))

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	paths := map[string]bool{}
	for _, it := range items {
		paths[it.Path] = true
		if it.Checksum == "" {
			t.Errorf("missing checksum for %s", it.Path)
		}
	}
	if !paths["a.md"] || !paths["sub/b.md"] {
		t.Errorf("paths = %v", paths)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempVault(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); !errors.Is(err, apperr.ErrInvalidPath) {
			t.Errorf("expected ErrInvalidPath for path %q, got %v", p, err)
		}
		if err := s.Move("a.md", p); err == nil {
			t.Errorf("expected error for move to %q", p)
		}
	}
}

func TestAtomicWriteNoLeftovers(t *testing.T) {
	s := tempVault(t)
	put(t, s, "atomic.md", []byte("original content"))

	updated := []byte("updated content")
	put(t, s, "atomic.md", updated)
	got, _ := s.Read("atomic.md")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.root, ".headsync-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "headsync-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestClean(t *testing.T) {
	cases := map[string]string{
		"notes/a.md":        "notes/a.md",
		"./notes/a.md":      "notes/a.md",
		"notes//a.md":       "notes/a.md",
		"notes/./x/../a.md": "notes/a.md",
	}
	for in, want := range cases {
		got, err := Clean(in)
		if err != nil {
			t.Errorf("Clean(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("Clean(%q) = %q, want %q", in, got, want)
		}
	}

	for _, in := range []string{"", ".", "..", "../a.md", "notes/../../a.md", "/etc/passwd.md"} {
		if _, err := Clean(in); !errors.Is(err, apperr.ErrInvalidPath) {
			t.Errorf("Clean(%q) err = %v, want ErrInvalidPath", in, err)
		}
	}
}

func TestMoveKeepsFileIdentity(t *testing.T) {
	s := tempVault(t)
	put(t, s, "draft.md", []byte("data"))
	before, err := os.Stat(filepath.Join(s.Root(), "draft.md"))
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Move("draft.md", "new/dir/final.md"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	after, err := os.Stat(filepath.Join(s.Root(), "new", "dir", "final.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !os.SameFile(before, after) {
		t.Error("move replaced the file instead of renaming it")
	}
	if _, err := os.Stat(filepath.Join(s.Root(), "draft.md")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("old name still present: %v", err)
	}
}

func TestMoveConflictLeavesNoExtraLink(t *testing.T) {
	s := tempVault(t)
	put(t, s, "a.md", []byte("a"))
	put(t, s, "b.md", []byte("b"))

	if err := s.Move("a.md", "b.md"); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	items, err := s.List("")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Errorf("notes after failed move = %d, want 2", len(items))
	}
}
