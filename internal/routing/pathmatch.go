package routing

import (
	"regexp"
	"strings"
)

// matchPathSimple evaluates one simple pattern against a pathname. A pattern
// ending in "*" is a prefix match on everything before the "*"; any other
// pattern requires exact equality.
func matchPathSimple(pattern, pathname string) bool {
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(pathname, strings.TrimSuffix(pattern, "*"))
	}
	return pathname == pattern
}

// matchAnySimple reports whether at least one simple pattern matches.
func matchAnySimple(patterns []string, pathname string) bool {
	for _, pattern := range patterns {
		if matchPathSimple(pattern, pathname) {
			return true
		}
	}
	return false
}

// matchAnyRegexp reports whether at least one compiled pattern matches the
// pathname. Sources that failed to compile are absent from the slice and
// therefore never match.
func matchAnyRegexp(patterns []*regexp.Regexp, pathname string) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(pathname) {
			return true
		}
	}
	return false
}

// compilePatterns compiles regex sources, dropping sources that fail to
// compile. A dropped source behaves as "never matches" during evaluation.
// The invalid sources are returned so the caller can report them once.
func compilePatterns(sources []string) (compiled []*regexp.Regexp, invalid []string) {
	for _, source := range sources {
		re, err := regexp.Compile(source)
		if err != nil {
			invalid = append(invalid, source)
			continue
		}
		compiled = append(compiled, re)
	}
	return compiled, invalid
}
