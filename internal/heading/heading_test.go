package heading

import (
	"testing"
)

func TestFind_FrontmatterSkipped(t *testing.T) {
	lines := []string{"---", "title: x", "---", "# Hello"}
	m, ok := Find(lines)
	if !ok {
		t.Fatal("expected heading")
	}
	if m.Text != "Hello" || m.Line != 3 || m.Style != Prefix {
		t.Errorf("match = %+v, want Hello at line 3 (prefix)", m)
	}
}

func TestFind_HeadingInsideFrontmatterIgnored(t *testing.T) {
	lines := []string{"---", "# not a heading", "---", "body", "# Real"}
	m, ok := Find(lines)
	if !ok || m.Text != "Real" || m.Line != 4 {
		t.Errorf("match = %+v ok=%v, want Real at line 4", m, ok)
	}
}

func TestFind_UnclosedFrontmatterIsContent(t *testing.T) {
	// No closing delimiter: body starts at 0 and "---" is plain text.
	lines := []string{"---", "title: x", "# Heading"}
	if got := BodyStart(lines); got != 0 {
		t.Fatalf("BodyStart = %d, want 0", got)
	}
	m, ok := Find(lines)
	if !ok || m.Text != "Heading" || m.Line != 2 {
		t.Errorf("match = %+v ok=%v", m, ok)
	}
}

func TestFind_PrefixTakesPrecedenceOverUnderline(t *testing.T) {
	m, ok := Find([]string{"# Title", "======"})
	if !ok {
		t.Fatal("expected heading")
	}
	if m.Style != Prefix || m.Text != "Title" || m.Line != 0 {
		t.Errorf("match = %+v, want prefix Title", m)
	}
}

func TestFind_Underline(t *testing.T) {
	m, ok := Find([]string{"Hello", "===", "more text"})
	if !ok {
		t.Fatal("expected heading")
	}
	if m.Style != Underline || m.Text != "Hello" || m.Line != 0 {
		t.Errorf("match = %+v, want underline Hello", m)
	}
}

func TestFind_FirstWins(t *testing.T) {
	cases := []struct {
		name  string
		lines []string
		want  Match
	}{
		{
			name:  "underline before prefix",
			lines: []string{"intro", "Setext", "=", "# Later"},
			want:  Match{Line: 1, Text: "Setext", Style: Underline},
		},
		{
			name:  "prefix before underline",
			lines: []string{"# First", "Second", "==="},
			want:  Match{Line: 0, Text: "First", Style: Prefix},
		},
		{
			name:  "underline text kept verbatim",
			lines: []string{"  Spaced Title ", "=="},
			want:  Match{Line: 0, Text: "  Spaced Title ", Style: Underline},
		},
		{
			name:  "after frontmatter",
			lines: []string{"---", "a: 1", "---", "", "Title", "===="},
			want:  Match{Line: 4, Text: "Title", Style: Underline},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, ok := Find(tc.lines)
			if !ok {
				t.Fatal("expected heading")
			}
			if m != tc.want {
				t.Errorf("match = %+v, want %+v", m, tc.want)
			}
		})
	}
}

// A blank line over "===" is an underline heading with empty text. It wins
// over later headings; the caller sees an empty slug and leaves the note
// alone.
func TestFind_BlankUnderlineHidesLaterHeading(t *testing.T) {
	m, ok := Find([]string{"Intro", "", "===", "# Real"})
	if !ok {
		t.Fatal("expected a match")
	}
	want := Match{Line: 1, Text: "", Style: Underline}
	if m != want {
		t.Errorf("Find = %+v, want %+v", m, want)
	}
}

func TestFind_None(t *testing.T) {
	cases := [][]string{
		nil,
		{""},
		{"plain text", "more text"},
		{"## Second level", "#NoSpace"},
		{"Text", "---"},
		{"Text", "== x"},
		{"Trailing text", ""},
	}
	for _, lines := range cases {
		if m, ok := Find(lines); ok {
			t.Errorf("Find(%q) = %+v, want none", lines, m)
		}
	}
}

func TestSplit_CRLF(t *testing.T) {
	lines := Split([]byte("---\r\ntitle: x\r\n---\r\n# Hello\r\n"))
	m, ok := Find(lines)
	if !ok || m.Text != "Hello" || m.Line != 3 {
		t.Errorf("match = %+v ok=%v", m, ok)
	}
}

func TestFrontmatter(t *testing.T) {
	fm := Frontmatter([]string{"---", "title: Hello", "tags:", "  - go", "---", "# Hello"})
	if fm == nil {
		t.Fatal("expected frontmatter")
	}
	if fm["title"] != "Hello" {
		t.Errorf("title = %v", fm["title"])
	}
}

func TestFrontmatter_InvalidYAML(t *testing.T) {
	lines := []string{"---", ": invalid: yaml: {{{", "---", "# Body"}
	if fm := Frontmatter(lines); fm != nil {
		t.Errorf("expected nil frontmatter, got %v", fm)
	}
	// The heading search does not depend on the YAML being valid.
	if m, ok := Find(lines); !ok || m.Text != "Body" {
		t.Errorf("match = %+v ok=%v", m, ok)
	}
}

func TestFrontmatter_None(t *testing.T) {
	if fm := Frontmatter([]string{"# Title"}); fm != nil {
		t.Errorf("expected nil, got %v", fm)
	}
}
