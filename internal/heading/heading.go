// Package heading locates the first heading of a Markdown note, skipping a
// leading front-matter block.
package heading

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const delim = "---"

// Style identifies how a heading was marked up.
type Style int

const (
	// Prefix is a "# Title" heading.
	Prefix Style = iota
	// Underline is a line of text followed by a line of "=" characters.
	Underline
)

// String returns the style name.
func (s Style) String() string {
	switch s {
	case Prefix:
		return "prefix"
	case Underline:
		return "underline"
	default:
		return "unknown"
	}
}

// MarshalText lets Style render as its name in JSON payloads.
func (s Style) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a style name written by MarshalText.
func (s *Style) UnmarshalText(text []byte) error {
	switch string(text) {
	case "prefix":
		*s = Prefix
	case "underline":
		*s = Underline
	default:
		return fmt.Errorf("heading: unknown style %q", text)
	}
	return nil
}

// Match is the first heading found in a document.
type Match struct {
	Line  int    `json:"line"`
	Text  string `json:"text"`
	Style Style  `json:"style"`
}

// Split breaks document text into lines. A trailing "\r" is dropped from
// each line so CRLF files behave like LF files.
func Split(content []byte) []string {
	lines := strings.Split(string(content), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// BodyStart returns the index of the first line after the front-matter
// block. Without a closing delimiter there is no front-matter and the body
// starts at 0.
func BodyStart(lines []string) int {
	if len(lines) == 0 || lines[0] != delim {
		return 0
	}
	for i := 1; i < len(lines); i++ {
		if lines[i] == delim {
			return i + 1
		}
	}
	return 0
}

// Find returns the first Prefix or Underline heading at or after the body
// start. A line starting with "# " is always a Prefix heading and is never
// considered as the text line of an Underline pair.
func Find(lines []string) (Match, bool) {
	for i := BodyStart(lines); i < len(lines); i++ {
		line := lines[i]
		if strings.HasPrefix(line, "# ") {
			return Match{Line: i, Text: line[2:], Style: Prefix}, true
		}
		if i+1 < len(lines) && isUnderline(lines[i+1]) {
			return Match{Line: i, Text: line, Style: Underline}, true
		}
	}
	return Match{}, false
}

func isUnderline(line string) bool {
	if line == "" {
		return false
	}
	return strings.Trim(line, "=") == ""
}

// Frontmatter decodes the YAML block skipped by BodyStart. It returns nil
// when there is no block or the block is not a valid YAML mapping.
func Frontmatter(lines []string) map[string]any {
	start := BodyStart(lines)
	if start == 0 {
		return nil
	}
	block := strings.Join(lines[1:start-1], "\n")
	var fm map[string]any
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return nil
	}
	return fm
}
