package inclusion

import "testing"

func never(string) bool  { return false }
func always(string) bool { return true }

func TestIsIncluded_ExplicitSetWins(t *testing.T) {
	explicit := map[string]struct{}{"notes/a.md": {}}
	// Regex does not match, explicit membership still includes.
	if !IsIncluded("notes/a.md", ExcluderFunc(never), explicit, `^journal/`) {
		t.Error("explicit path should be included")
	}
	if IsIncluded("notes/b.md", ExcluderFunc(never), explicit, `^journal/`) {
		t.Error("non-listed, non-matching path should not be included")
	}
}

// Excluded-by-the-other-rule-system maps to included. This is intentional
// and preserved for compatibility; see inclusion.IsIncluded.
func TestIsIncluded_ExternalExclusionMeansIncluded(t *testing.T) {
	if !IsIncluded("anything.md", ExcluderFunc(always), nil, "") {
		t.Error("externally excluded path should be reported as included")
	}
}

func TestIsIncluded_Regex(t *testing.T) {
	cases := []struct {
		pattern string
		path    string
		want    bool
	}{
		{`^journal/`, "journal/2024.md", true},
		{`^journal/`, "notes/journal/2024.md", false},
		{`journal`, "notes/journal/2024.md", true},
		{`.*`, "x.md", true},
		{``, "x.md", false},
	}
	for _, tc := range cases {
		if got := IsIncluded(tc.path, nil, nil, tc.pattern); got != tc.want {
			t.Errorf("IsIncluded(%q, pattern %q) = %v, want %v", tc.path, tc.pattern, got, tc.want)
		}
	}
}

func TestIsIncluded_InvalidRegexDisabled(t *testing.T) {
	for _, pattern := range []string{`(`, `[a-`, `*`} {
		if IsIncluded("x.md", ExcluderFunc(never), nil, pattern) {
			t.Errorf("invalid pattern %q should behave as disabled", pattern)
		}
		if ValidPattern(pattern) {
			t.Errorf("ValidPattern(%q) = true", pattern)
		}
	}
	// Explicit set still works alongside an invalid pattern.
	explicit := map[string]struct{}{"x.md": {}}
	if !IsIncluded("x.md", nil, explicit, `(`) {
		t.Error("explicit path should be included even with invalid pattern")
	}
}

func TestFolders(t *testing.T) {
	f := Folders{"archive", "/templates/", "daily/*.md"}
	cases := map[string]bool{
		"archive/old.md":     true,
		"archive":            true,
		"archived/x.md":      false,
		"templates/t.md":     true,
		"daily/2024-01.md":   true,
		"daily/sub/x.md":     false,
		"notes/archive/x.md": false,
		"/archive/lead.md":   true,
	}
	for p, want := range cases {
		if got := f.IsExcluded(p); got != want {
			t.Errorf("IsExcluded(%q) = %v, want %v", p, got, want)
		}
	}
}

func TestCompileKeepsOnlyLatestPattern(t *testing.T) {
	if compile("^old/") == nil {
		t.Fatal("valid pattern did not compile")
	}
	if compile("(unclosed") != nil {
		t.Fatal("invalid pattern compiled")
	}
	if last.pattern != "(unclosed" || last.re != nil {
		t.Errorf("cached = %q", last.pattern)
	}

	re := compile("^new/")
	if re == nil || !re.MatchString("new/a.md") {
		t.Fatal("replacement pattern not compiled")
	}
	if last.pattern != "^new/" {
		t.Errorf("cached = %q, want only the latest pattern", last.pattern)
	}
	if !IsIncluded("old/a.md", nil, nil, "^old/") {
		t.Error("evicted pattern not recompiled")
	}
}
