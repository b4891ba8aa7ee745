package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "data.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	snap := s.Snapshot()
	if !snap.UseSaveHook || snap.UseOpenHook || snap.IncludeRegex != "" || len(snap.IncludedPaths) != 0 {
		t.Errorf("unexpected defaults: %+v", snap)
	}
}

func TestLoad_HostShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	raw := `{"includeRegex":"^journal/","includedFiles":{"a.md":null,"b/c.md":null},"useFileOpenHook":true,"useFileSaveHook":false}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	snap := s.Snapshot()
	if snap.IncludeRegex != "^journal/" || !snap.UseOpenHook || snap.UseSaveHook {
		t.Errorf("snapshot = %+v", snap)
	}
	if got := snap.Included(); len(got) != 2 || got[0] != "a.md" || got[1] != "b/c.md" {
		t.Errorf("included = %v", got)
	}
}

func TestLoad_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	_ = os.WriteFile(path, []byte("{not json"), 0o644)
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestIncludeFile_PersistsEveryMutation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	s, _ := Load(path)

	if _, err := s.IncludeFile("notes/a.md"); err != nil {
		t.Fatalf("IncludeFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("settings not persisted: %v", err)
	}
	var rec map[string]any
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("persisted file is not JSON: %v", err)
	}
	files, ok := rec["includedFiles"].(map[string]any)
	if !ok {
		t.Fatalf("includedFiles missing: %s", data)
	}
	if v, ok := files["notes/a.md"]; !ok || v != nil {
		t.Errorf("includedFiles = %v, want notes/a.md: null", files)
	}

	// Reload sees the same state.
	again, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := again.Snapshot().IncludedPaths["notes/a.md"]; !ok {
		t.Error("reloaded settings lost included path")
	}
}

func TestApplyPatch(t *testing.T) {
	s := NewMemory(Defaults())
	re := "^daily/"
	open := true
	snap, err := s.Apply(Patch{IncludeRegex: &re, UseFileOpenHook: &open})
	if err != nil {
		t.Fatal(err)
	}
	if snap.IncludeRegex != re || !snap.UseOpenHook || !snap.UseSaveHook {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewMemory(Defaults())
	snap := s.Snapshot()
	snap.IncludedPaths["leak.md"] = struct{}{}
	if _, ok := s.Snapshot().IncludedPaths["leak.md"]; ok {
		t.Error("mutating a snapshot changed the store")
	}
}

func TestRenameAndForgetFile(t *testing.T) {
	s := NewMemory(Defaults())
	_, _ = s.IncludeFile("Old Name.md")
	snap, _ := s.RenameFile("Old Name.md", "old-name.md")
	if _, ok := snap.IncludedPaths["old-name.md"]; !ok {
		t.Errorf("rename did not carry opt-in: %v", snap.Included())
	}
	if _, ok := snap.IncludedPaths["Old Name.md"]; ok {
		t.Error("old path still included")
	}
	snap, _ = s.ForgetFile("old-name.md")
	if len(snap.IncludedPaths) != 0 {
		t.Errorf("included = %v", snap.Included())
	}
}

func TestSnapshotMarshal(t *testing.T) {
	snap := Defaults()
	snap.IncludedPaths["x.md"] = struct{}{}
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"includeRegex":"","includedFiles":{"x.md":null},"useFileOpenHook":false,"useFileSaveHook":true}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}
