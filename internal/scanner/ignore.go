package scanner

import (
	"path"
	"strings"
)

// ignorePattern is one gitignore-style pattern. Negation patterns
// (leading !) re-include paths a previous pattern excluded; directory
// patterns (trailing /) match everything beneath the directory; anchored
// patterns (leading /) match only from the ignore file's directory.
// base is that directory relative to the scan root ("" for the root
// ignore file); the pattern only applies to paths beneath it.
type ignorePattern struct {
	base      string
	segments  []string
	negation  bool
	directory bool
	anchored  bool
}

func parseIgnorePattern(raw, base string) ignorePattern {
	p := ignorePattern{base: base}
	if strings.HasPrefix(raw, "!") {
		p.negation = true
		raw = raw[1:]
	}
	if strings.HasSuffix(raw, "/") {
		p.directory = true
		raw = strings.TrimSuffix(raw, "/")
	}
	if strings.HasPrefix(raw, "/") {
		p.anchored = true
		raw = raw[1:]
	}
	p.segments = strings.Split(raw, "/")
	return p
}

// match reports whether relPath (forward slashes, relative to the scan
// root) matches the pattern.
func (p ignorePattern) match(relPath string) bool {
	if p.base != "" {
		if !strings.HasPrefix(relPath, p.base+"/") {
			return false
		}
		relPath = relPath[len(p.base)+1:]
	}
	pathSegs := strings.Split(relPath, "/")
	if p.anchored {
		return p.matchAt(pathSegs)
	}
	for start := 0; start < len(pathSegs); start++ {
		if p.matchAt(pathSegs[start:]) {
			return true
		}
	}
	return false
}

func (p ignorePattern) matchAt(pathSegs []string) bool {
	return matchSegments(p.segments, pathSegs, p.directory)
}

// matchSegments matches pattern segments against path segments.
// A directory pattern matches any path extending beyond the pattern;
// otherwise the pattern must consume the path exactly. ** spans any
// number of path segments.
func matchSegments(patternSegs, pathSegs []string, directory bool) bool {
	if len(patternSegs) == 0 {
		if directory {
			return true
		}
		return len(pathSegs) == 0
	}
	if patternSegs[0] == "**" {
		for i := 0; i <= len(pathSegs); i++ {
			if matchSegments(patternSegs[1:], pathSegs[i:], directory) {
				return true
			}
		}
		return false
	}
	if len(pathSegs) == 0 {
		return false
	}
	ok, err := path.Match(strings.ToLower(patternSegs[0]), strings.ToLower(pathSegs[0]))
	if err != nil || !ok {
		return false
	}
	return matchSegments(patternSegs[1:], pathSegs[1:], directory)
}

// matchesIgnorePatterns applies the patterns in order; negation patterns
// override earlier matches.
func matchesIgnorePatterns(relPath string, patterns []ignorePattern) bool {
	ignored := false
	for _, p := range patterns {
		if p.match(relPath) {
			ignored = !p.negation
		}
	}
	return ignored
}
