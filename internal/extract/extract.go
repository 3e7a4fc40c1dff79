// Package extract pulls structured entities out of normalized transcripts:
// medications with doses, pain intensity, the occurrence time of an entry
// and reminder metadata.
//
// Every extractor is independent and returns an optional result rather
// than an error, so a transcript with a pain level but no medication still
// produces a usable partial entry.
package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/MrWong99/painvoice/internal/lexicon"
	"github.com/MrWong99/painvoice/internal/transcript"
	"github.com/MrWong99/painvoice/internal/transcript/fuzzy"
)

// Extractor bundles the lexicon and matcher the extractors share. It is
// read-only after construction and safe for concurrent use.
type Extractor struct {
	lex        *lexicon.Lexicon
	matcher    *fuzzy.Matcher
	normalizer *transcript.Normalizer
	synonyms   []string
}

// New returns an Extractor. Nil arguments select the defaults.
func New(lex *lexicon.Lexicon, m *fuzzy.Matcher) *Extractor {
	if lex == nil {
		lex = lexicon.Default()
	}
	if m == nil {
		m = fuzzy.New()
	}
	return &Extractor{
		lex:        lex,
		matcher:    m,
		normalizer: transcript.NewNormalizer(lex),
		synonyms:   lex.SynonymKeys(),
	}
}

var std = New(nil, nil)

// Lexicon returns the lexicon e was built with.
func (e *Extractor) Lexicon() *lexicon.Lexicon {
	return e.lex
}

// isNameToken reports whether w can be part of a medication name.
func (e *Extractor) isNameToken(w string) bool {
	if utf8.RuneCountInString(w) < 2 || e.lex.IsStopword(w) {
		return false
	}
	if _, ok := e.lex.NumberWords[w]; ok {
		return false
	}
	if e.lex.PainKeywords.Count(w) > 0 {
		return false
	}
	for _, r := range w {
		if !unicode.IsLetter(r) && r != '-' {
			return false
		}
	}
	return true
}

// displayName capitalizes each word of a spoken candidate.
func displayName(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// endsClause reports whether a raw token closes a clause.
func endsClause(tok string) bool {
	return strings.ContainsAny(tok[len(tok)-1:], ".,;:!?")
}
