// Package transcript turns raw speech-to-text output into the canonical form
// every other parser stage works on.
//
// Raw ASR text for German health diaries is noisy in predictable ways:
// split drug names ("suma triptan"), spelled-out units ("milligramm"),
// colloquial contractions ("hab's") and slash notation for pain scales
// ("7/10"). The [Normalizer] repairs these with an ordered table of
// corrections taken from the lexicon, folds umlauts to ASCII digraphs and
// tokenizes on whitespace. Each applied rewrite is recorded as a
// [Correction] so callers can audit what changed.
//
// Normalization is deterministic and idempotent: normalizing an already
// normalized string yields the same string.
package transcript

// Correction records one ASR correction applied by the [Normalizer].
type Correction struct {
	// Rule is the name of the lexicon correction that fired.
	Rule string `json:"rule"`

	// Original is the matched text before the rewrite.
	Original string `json:"original"`

	// Corrected is the replacement text.
	Corrected string `json:"corrected"`
}

// NormalizedTranscript is the output of [Normalizer.Normalize].
type NormalizedTranscript struct {
	// Original is the input exactly as received.
	Original string `json:"original"`

	// Normalized is lowercase, corrected, umlaut-folded and
	// whitespace-collapsed.
	Normalized string `json:"normalized"`

	// Tokens is Normalized split on whitespace. Never nil.
	Tokens []string `json:"tokens"`

	// Corrections lists the rewrites in the order they were applied.
	Corrections []Correction `json:"corrections,omitempty"`
}

// Empty reports whether the transcript carries no text.
func (nt NormalizedTranscript) Empty() bool {
	return nt.Normalized == ""
}
