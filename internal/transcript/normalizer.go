package transcript

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/MrWong99/painvoice/internal/lexicon"
)

// Normalizer canonicalizes transcripts using a lexicon's correction table.
// It is stateless after construction and safe for concurrent use.
type Normalizer struct {
	lex *lexicon.Lexicon
}

// NewNormalizer returns a Normalizer for lex. A nil lex selects the default
// German lexicon.
func NewNormalizer(lex *lexicon.Lexicon) *Normalizer {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Normalizer{lex: lex}
}

// Normalize canonicalizes text. Empty input yields an empty transcript with
// a non-nil, empty token slice.
func (n *Normalizer) Normalize(text string) NormalizedTranscript {
	out := NormalizedTranscript{Original: text, Tokens: []string{}}

	// ASR engines emit both composed and decomposed umlauts; fold only
	// works on the composed form.
	s := strings.ToLower(strings.TrimSpace(norm.NFC.String(text)))
	if s == "" {
		return out
	}

	for _, c := range n.lex.Corrections {
		matches := c.Pattern.FindAllString(s, -1)
		if len(matches) == 0 {
			continue
		}
		for _, m := range matches {
			out.Corrections = append(out.Corrections, Correction{
				Rule:      c.Name,
				Original:  m,
				Corrected: c.Pattern.ReplaceAllString(m, c.Replacement),
			})
		}
		s = c.Pattern.ReplaceAllString(s, c.Replacement)
	}

	s = n.lex.Folder.Replace(s)

	tokens := strings.Fields(s)
	out.Normalized = strings.Join(tokens, " ")
	if len(tokens) > 0 {
		out.Tokens = tokens
	}
	return out
}

// Normalize canonicalizes text with the default German lexicon.
func Normalize(text string) NormalizedTranscript {
	return NewNormalizer(nil).Normalize(text)
}

// FoldUmlauts replaces German umlauts and ß with ASCII digraphs. Case is
// preserved ("Ü" becomes "Ue").
func FoldUmlauts(s string) string {
	return lexicon.FoldGerman(norm.NFC.String(s))
}

// Words returns tokens with surrounding punctuation stripped, dropping
// tokens that consist only of punctuation.
func Words(tokens []string) []string {
	words := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if w := TrimPunct(t); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// TrimPunct strips leading and trailing punctuation from a token.
func TrimPunct(tok string) string {
	return strings.Trim(tok, `.,;:!?"'()[]{}„“”‚‘’-–`)
}
