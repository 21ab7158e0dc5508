// Package filter contains common filtering logic for matching strings against
// a list of literal, globbed or regex patterns.
package filter

import (
	"regexp"
	"strings"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
)

// StringFilter matches against simple strings
type StringFilter interface {
	Matches(string) bool
}

type matcher interface {
	Match(string) bool
}

type regexMatcher struct {
	*regexp.Regexp
}

func (r regexMatcher) Match(s string) bool {
	return r.MatchString(s)
}

// BasicStringFilter matches a string if any positive pattern matches it and
// no negated pattern (one starting with `!`) does.  With only negated
// patterns, everything that is not excluded matches.  Patterns are literals,
// globs (containing `*`, `?` or `[`) or regexes surrounded by `/`.
type BasicStringFilter struct {
	staticSet         map[string]bool
	matchers          []matcher
	negatedStaticSet  map[string]bool
	negatedMatchers   []matcher
	onlyNegatedFilter bool
}

var _ StringFilter = &BasicStringFilter{}

// NewBasicStringFilter returns a filter that can match against the provided
// items.
func NewBasicStringFilter(items []string) (*BasicStringFilter, error) {
	f := &BasicStringFilter{
		staticSet:        map[string]bool{},
		negatedStaticSet: map[string]bool{},
	}

	positives := 0
	for _, item := range items {
		pattern, negated := stripNegation(item)

		if !isRegex(pattern) && !isGlobbed(pattern) {
			if negated {
				f.negatedStaticSet[pattern] = true
			} else {
				f.staticSet[pattern] = true
				positives++
			}
			continue
		}

		m, err := compile(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "bad filter pattern '%s'", item)
		}
		if negated {
			f.negatedMatchers = append(f.negatedMatchers, m)
		} else {
			f.matchers = append(f.matchers, m)
			positives++
		}
	}
	f.onlyNegatedFilter = positives == 0 && len(items) > 0

	return f, nil
}

// Matches if s is positively matched by the filter items and is not
// excluded by any negated one
func (f *BasicStringFilter) Matches(s string) bool {
	if f.negatedStaticSet[s] || anyMatches(s, f.negatedMatchers) {
		return false
	}
	if f.onlyNegatedFilter {
		return true
	}
	return f.staticSet[s] || anyMatches(s, f.matchers)
}

func compile(pattern string) (matcher, error) {
	if isRegex(pattern) {
		re, err := regexp.Compile(stripSlashes(pattern))
		if err != nil {
			return nil, err
		}
		return regexMatcher{re}, nil
	}
	return glob.Compile(pattern)
}

// stripNegation checks if a string is prefixed with "!" and will return the
// stripped string and true if so
func stripNegation(value string) (string, bool) {
	if strings.HasPrefix(value, "!") {
		return value[1:], true
	}
	return value, false
}

func isGlobbed(s string) bool {
	return strings.ContainsAny(s, "*?[")
}

func isRegex(s string) bool {
	return len(s) > 2 && s[0] == '/' && s[len(s)-1] == '/'
}

// remove the bracketing slashes for a regex
func stripSlashes(s string) string {
	return s[1 : len(s)-1]
}

func anyMatches(s string, ms []matcher) bool {
	for _, m := range ms {
		if m.Match(s) {
			return true
		}
	}
	return false
}
