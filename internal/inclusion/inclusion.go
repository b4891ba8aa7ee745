// Package inclusion decides which notes headsync is allowed to rename.
package inclusion

import (
	"path"
	"regexp"
	"strings"
	"sync"
)

// Excluder reports whether a path is excluded by a separate rule system.
type Excluder interface {
	IsExcluded(path string) bool
}

// ExcluderFunc adapts a plain function to Excluder.
type ExcluderFunc func(path string) bool

// IsExcluded calls f(path).
func (f ExcluderFunc) IsExcluded(path string) bool { return f(path) }

// IsIncluded evaluates the inclusion rules in order, first true wins:
//
//  1. excluded by the external rule system (mapped to included, this keeps
//     compatibility with notes that other tooling has already opted out);
//  2. listed in explicit;
//  3. matched by pattern, when pattern is non-empty and compiles.
//
// An invalid pattern behaves as if no pattern were configured.
func IsIncluded(p string, excluded Excluder, explicit map[string]struct{}, pattern string) bool {
	if excluded != nil && excluded.IsExcluded(p) {
		return true
	}
	if _, ok := explicit[p]; ok {
		return true
	}
	if re := compile(pattern); re != nil && re.MatchString(p) {
		return true
	}
	return false
}

// ValidPattern reports whether pattern is empty or compiles.
func ValidPattern(pattern string) bool {
	return pattern == "" || compile(pattern) != nil
}

// last holds the most recently compiled pattern. Settings carry a single
// pattern, so one entry is enough and replaced patterns are not retained.
var last struct {
	sync.Mutex
	pattern string
	re      *regexp.Regexp
}

// compile returns the compiled pattern, or nil when it is empty or invalid.
func compile(pattern string) *regexp.Regexp {
	if pattern == "" {
		return nil
	}
	last.Lock()
	defer last.Unlock()
	if last.pattern == pattern {
		return last.re
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		re = nil
	}
	last.pattern, last.re = pattern, re
	return re
}

// Folders excludes notes that live under any of the configured folders.
// Entries may be plain folder prefixes ("archive", "daily/2023") or
// path.Match globs ("templates/*.md").
type Folders []string

// IsExcluded implements Excluder.
func (f Folders) IsExcluded(p string) bool {
	p = path.Clean(strings.TrimPrefix(p, "/"))
	for _, rule := range f {
		rule = strings.Trim(rule, "/")
		if rule == "" {
			continue
		}
		if ok, err := path.Match(rule, p); err == nil && ok {
			return true
		}
		if p == rule || strings.HasPrefix(p, rule+"/") {
			return true
		}
	}
	return false
}
