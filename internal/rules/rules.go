// Package rules provides the ordered "first match wins" tables used by the
// parser. A table is a slice of (predicate, result) pairs evaluated top to
// bottom; the position of a rule in the slice is its priority.
//
// Tables are plain data. They are built once (usually by the lexicon
// package) and are safe for concurrent use as long as nobody mutates them
// after construction.
package rules

import "regexp"

// Rule pairs a compiled regex with the value it yields when it matches.
type Rule[T any] struct {
	// Name is a human-readable label used in logs and tests.
	Name string

	// Pattern is matched against normalized (lowercase, umlaut-folded) text.
	Pattern *regexp.Regexp

	// Value is returned when Pattern matches.
	Value T
}

// Table is an ordered list of regex rules.
type Table[T any] []Rule[T]

// First returns the value of the first rule whose pattern matches s.
func (t Table[T]) First(s string) (T, bool) {
	v, _, ok := t.FirstMatch(s)
	return v, ok
}

// FirstMatch is like First but also returns the matched substring.
func (t Table[T]) FirstMatch(s string) (T, string, bool) {
	for _, r := range t {
		if m := r.Pattern.FindString(s); m != "" {
			return r.Value, m, true
		}
	}
	var zero T
	return zero, "", false
}

// FirstRule returns the first matching rule itself, for callers that need
// the rule name.
func (t Table[T]) FirstRule(s string) (Rule[T], bool) {
	for _, r := range t {
		if r.Pattern.MatchString(s) {
			return r, true
		}
	}
	return Rule[T]{}, false
}

// Count returns the number of distinct rules that match s.
func (t Table[T]) Count(s string) int {
	n := 0
	for _, r := range t {
		if r.Pattern.MatchString(s) {
			n++
		}
	}
	return n
}

// Case pairs an arbitrary predicate with a result. It is used where a
// decision depends on more than one regex, e.g. segment classification
// that also consults the fuzzy medication matcher.
type Case[T any] struct {
	Name  string
	Match func(s string) bool
	Value T
}

// FirstOf evaluates cases in order and returns the value of the first
// predicate that reports true.
func FirstOf[T any](cases []Case[T], s string) (T, bool) {
	for _, c := range cases {
		if c.Match != nil && c.Match(s) {
			return c.Value, true
		}
	}
	var zero T
	return zero, false
}

// Matcher adapts a regex into a Case predicate.
func Matcher(re *regexp.Regexp) func(string) bool {
	return re.MatchString
}

// Any returns a predicate that reports true when any of preds does.
func Any(preds ...func(string) bool) func(string) bool {
	return func(s string) bool {
		for _, p := range preds {
			if p(s) {
				return true
			}
		}
		return false
	}
}
