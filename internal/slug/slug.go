// Package slug derives lowercase, hyphen-delimited, filesystem-safe slugs
// from arbitrary heading text.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	disallowedRe = regexp.MustCompile(`[^A-Za-z0-9 -]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	hyphensRe    = regexp.MustCompile(`-+`)
)

// combiningMarks is the Combining Diacritical Marks block.
var combiningMarks = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}},
}

// Make returns the slug for text. It never fails; text without any
// slug-able characters yields "".
func Make(text string) string {
	s := stripDiacritics(text)
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	s = disallowedRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, "-")
	s = hyphensRe.ReplaceAllString(s, "-")
	if !hasAlnum(s) {
		// A lone "-" is not a usable filename.
		return ""
	}
	return s
}

// stripDiacritics decomposes text (NFD) and drops combining marks, so "é"
// becomes "e".
func stripDiacritics(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(combiningMarks)))
	out, _, err := transform.String(t, text)
	if err != nil {
		return strings.Map(func(r rune) rune {
			if unicode.Is(combiningMarks, r) {
				return -1
			}
			return r
		}, norm.NFD.String(text))
	}
	return out
}

func hasAlnum(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			return true
		}
	}
	return false
}
