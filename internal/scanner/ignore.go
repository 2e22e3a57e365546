package scanner

import (
	"path/filepath"
	"strings"
)

// IgnorePattern is a single gitignore-style pattern. Supported syntax:
// `!` negation, trailing `/` directory patterns, leading `/` root-anchored
// patterns, `**` spanning directories, and per-segment globs (`*`, `?`,
// `[...]` via filepath.Match).
type IgnorePattern struct {
	pattern    string
	isNegation bool
	isDir      bool
	anchored   bool
	segments   []string
}

// ParseIgnorePattern parses a gitignore-style pattern string.
func ParseIgnorePattern(pattern string) IgnorePattern {
	p := IgnorePattern{pattern: pattern}

	if strings.HasPrefix(pattern, "!") {
		p.isNegation = true
		pattern = pattern[1:]
	}
	if strings.HasSuffix(pattern, "/") {
		p.isDir = true
		pattern = strings.TrimSuffix(pattern, "/")
	}
	if strings.HasPrefix(pattern, "/") {
		p.anchored = true
		pattern = pattern[1:]
	}
	p.segments = strings.Split(pattern, "/")

	return p
}

// IsNegation reports whether this pattern un-ignores matching paths.
func (p IgnorePattern) IsNegation() bool { return p.isNegation }

// Match reports whether path (slash-separated, relative to the scan root)
// matches the pattern. Directory patterns match every path below them;
// unanchored patterns match at any depth.
func (p IgnorePattern) Match(path string) bool {
	pathSegs := strings.Split(filepath.ToSlash(path), "/")

	if p.anchored {
		return p.matchFrom(p.segments, pathSegs)
	}
	for start := 0; start < len(pathSegs); start++ {
		if p.matchFrom(p.segments, pathSegs[start:]) {
			return true
		}
	}
	return false
}

func (p IgnorePattern) matchFrom(pat, segs []string) bool {
	if len(pat) == 0 {
		// Pattern fully consumed: a directory pattern (or a prefix match)
		// covers anything below; a file pattern must consume the path.
		return p.isDir || len(segs) == 0
	}
	if pat[0] == "**" {
		if len(pat) == 1 {
			return true
		}
		for i := 0; i <= len(segs); i++ {
			if p.matchFrom(pat[1:], segs[i:]) {
				return true
			}
		}
		return false
	}
	if len(segs) == 0 {
		return false
	}
	if ok, err := filepath.Match(pat[0], segs[0]); err != nil || !ok {
		return false
	}
	return p.matchFrom(pat[1:], segs[1:])
}
