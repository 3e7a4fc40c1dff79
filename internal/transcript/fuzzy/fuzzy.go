// Package fuzzy resolves spoken medication names against known names.
//
// Names are first normalized ([NormalizeName]): umlauts folded, lowercased,
// trademark symbols, punctuation, dosage amounts, units and dosage-form
// words removed. Two normalized names then match when
//
//  1. they are equal,
//  2. one contains the other, or
//  3. both are at most MaxEditRunes (12) runes long and their Levenshtein
//     distance is at most ceil(TolerancePercent% of the longer length).
//
// Transcript lookups ([Matcher.Resolve], [Matcher.FindInTokens]) compare
// spoken words, not names. There containment and edit distance only apply when
// both sides have at least MinFragmentRunes runes, so "es" or "klasse" do
// not turn into "ASS". Exact and whole-word matches always count.
package fuzzy

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
	"golang.org/x/text/unicode/norm"

	"github.com/MrWong99/painvoice/internal/lexicon"
	"github.com/MrWong99/painvoice/internal/transcript"
)

const (
	defaultTolerancePercent = 20
	defaultMinContainRunes  = 0
	defaultMinEditRunes     = 0
	defaultMaxEditRunes     = 12
	defaultMinFragmentRunes = 4
)

var (
	dosageRe = regexp.MustCompile(`\b\d+(?:\s+\d+)?\s*(?:mg|ml|mcg|ug|µg|g|ie)?\b|%`)
	formRe   = regexp.MustCompile(`\b(?:mg|ml|mcg|ug|µg|filmtabletten?|tabletten?|schmelztabletten?|brausetabletten?|kapseln?|tropfen|nasenspray|injektion|retard|saft|zaepfchen)\b`)
)

// Option is a functional option for configuring a [Matcher].
type Option func(*Matcher)

// WithTolerancePercent sets the edit-distance tolerance as a percentage of
// the longer name. Default: 20.
func WithTolerancePercent(p int) Option {
	return func(m *Matcher) {
		m.tolerancePercent = p
	}
}

// WithEditLengthRange sets the rune-length range in which the edit-distance
// path is attempted. Default: 0–12.
func WithEditLengthRange(minRunes, maxRunes int) Option {
	return func(m *Matcher) {
		m.minEditRunes = minRunes
		m.maxEditRunes = maxRunes
	}
}

// WithMinContainRunes sets the minimum length of the shorter name for the
// containment rule. Default: 0.
func WithMinContainRunes(n int) Option {
	return func(m *Matcher) {
		m.minContainRunes = n
	}
}

// WithMinFragmentRunes sets how long a transcript window and a candidate
// must both be before [Matcher.FindInTokens] accepts a fuzzy or partial
// match. Default: 4.
func WithMinFragmentRunes(n int) Option {
	return func(m *Matcher) {
		m.minFragmentRunes = n
	}
}

// Matcher compares medication names. It is read-only after construction
// and safe for concurrent use.
type Matcher struct {
	tolerancePercent int
	minContainRunes  int
	minEditRunes     int
	maxEditRunes     int
	minFragmentRunes int
}

// New returns a [Matcher] configured with the supplied options.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		tolerancePercent: defaultTolerancePercent,
		minContainRunes:  defaultMinContainRunes,
		minEditRunes:     defaultMinEditRunes,
		maxEditRunes:     defaultMaxEditRunes,
		minFragmentRunes: defaultMinFragmentRunes,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

var defaultMatcher = New()

// Matches reports whether a and b name the same medication using the
// default thresholds.
func Matches(a, b string) bool {
	return defaultMatcher.Matches(a, b)
}

// NormalizeName canonicalizes a medication name for comparison.
func NormalizeName(s string) string {
	s = strings.ToLower(lexicon.FoldGerman(norm.NFC.String(s)))
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '%':
			return r
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return r
		default:
			// Trademark signs, punctuation and symbols all become separators.
			return ' '
		}
	}, s)
	s = dosageRe.ReplaceAllString(s, " ")
	s = formRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// Matches reports whether a and b name the same medication.
func (m *Matcher) Matches(a, b string) bool {
	na, nb := NormalizeName(a), NormalizeName(b)
	_, ok := m.compare(na, nb)
	return ok
}

// compare matches two normalized names and returns their edit distance.
// Levenshtein only runs once the length limits pass.
func (m *Matcher) compare(na, nb string) (int, bool) {
	if na == "" || nb == "" {
		return 0, false
	}
	if na == nb {
		return 0, true
	}

	la, lb := utf8.RuneCountInString(na), utf8.RuneCountInString(nb)
	if min(la, lb) >= m.minContainRunes && (strings.Contains(na, nb) || strings.Contains(nb, na)) {
		// The distance of a substring is exactly the length difference.
		return max(la, lb) - min(la, lb), true
	}

	if la < m.minEditRunes || lb < m.minEditRunes || la > m.maxEditRunes || lb > m.maxEditRunes {
		return 0, false
	}
	dist := matchr.Levenshtein(na, nb)
	longest := max(la, lb)
	tolerance := (longest*m.tolerancePercent + 99) / 100
	return dist, dist <= tolerance
}

// compareFragment matches a normalized piece of transcript against a
// normalized candidate name.
func (m *Matcher) compareFragment(fragment, cand string) (int, bool) {
	if fragment == "" || cand == "" {
		return 0, false
	}
	if fragment == cand {
		return 0, true
	}
	lf, lc := utf8.RuneCountInString(fragment), utf8.RuneCountInString(cand)
	if strings.Contains(" "+fragment+" ", " "+cand+" ") {
		return lf - lc, true
	}
	if lf < m.minFragmentRunes || lc < m.minFragmentRunes {
		return 0, false
	}
	return m.compare(fragment, cand)
}

// Resolve returns the candidate that best matches spoken, a piece of
// transcript, using the fragment rule. An exact normalized match wins
// outright; otherwise the smallest edit distance wins,
// then the highest Jaro-Winkler similarity, then the earliest candidate.
func (m *Matcher) Resolve(spoken string, candidates []string) (string, bool) {
	ns := NormalizeName(spoken)
	if ns == "" {
		return "", false
	}

	var (
		best     string
		bestDist int
		bestJW   float64
		found    bool
	)
	for _, c := range candidates {
		nc := NormalizeName(c)
		if nc == ns {
			return c, true
		}
		dist, ok := m.compareFragment(ns, nc)
		if !ok {
			continue
		}
		jw := matchr.JaroWinkler(ns, nc, false)
		if !found || dist < bestDist || (dist == bestDist && jw > bestJW) {
			best, bestDist, bestJW, found = c, dist, jw, true
		}
	}
	return best, found
}

// FindInTokens returns every candidate mentioned in tokens, ordered by first
// mention. Candidates with more words are tried first and claim their
// tokens, so "Ibuprofen Akut" is not also reported as "Ibuprofen".
func (m *Matcher) FindInTokens(tokens []string, candidates []string) []string {
	words := transcript.Words(tokens)
	if len(words) == 0 || len(candidates) == 0 {
		return nil
	}

	type prepared struct {
		name  string
		norm  string
		words int
	}
	prep := make([]prepared, 0, len(candidates))
	for _, c := range candidates {
		nc := NormalizeName(c)
		if nc == "" {
			continue
		}
		prep = append(prep, prepared{name: c, norm: nc, words: len(strings.Fields(nc))})
	}
	slices.SortStableFunc(prep, func(a, b prepared) int {
		return b.words - a.words
	})

	type mention struct {
		pos  int
		name string
	}
	var (
		mentions []mention
		claimed  = make([]bool, len(words))
		seen     = make(map[string]bool)
	)
	for _, p := range prep {
		if seen[p.name] {
			continue
		}
		for i := 0; i+p.words <= len(words); i++ {
			if slices.Contains(claimed[i:i+p.words], true) {
				continue
			}
			window := NormalizeName(strings.Join(words[i:i+p.words], " "))
			if _, ok := m.compareFragment(window, p.norm); !ok {
				continue
			}
			for j := i; j < i+p.words; j++ {
				claimed[j] = true
			}
			mentions = append(mentions, mention{pos: i, name: p.name})
			seen[p.name] = true
			break
		}
	}

	slices.SortStableFunc(mentions, func(a, b mention) int {
		return a.pos - b.pos
	})
	out := make([]string, len(mentions))
	for i, mn := range mentions {
		out[i] = mn.name
	}
	return out
}
