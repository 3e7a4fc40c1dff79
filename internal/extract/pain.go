package extract

import (
	"strconv"

	"github.com/MrWong99/painvoice/internal/transcript"
	"github.com/MrWong99/painvoice/pkg/types"
)

// PainSource names the rule that produced a pain level.
type PainSource string

const (
	PainFromContext     PainSource = "context"
	PainFromDigit       PainSource = "digit"
	PainFromWord        PainSource = "word"
	PainFromQualitative PainSource = "qualitative"
)

// PainLevel is a 0–10 numeric rating scale value.
type PainLevel struct {
	Value      int        `json:"value"`
	Source     PainSource `json:"source"`
	Confidence float64    `json:"confidence"`
}

// Pain returns the pain level in nt using the default lexicon.
func Pain(nt transcript.NormalizedTranscript, userMeds []types.UserMedication) *PainLevel {
	return std.Pain(nt, userMeds)
}

// Pain returns the pain level in nt, or nil when none is stated. A digit
// attached to a rating word ("staerke 7", "7 von 10") wins over a free
// digit, which wins over a number word, which wins over a qualitative
// word ("stark"). A number directly before a medication name or an
// episode noun ("3 ibuprofen", "2 attacken") is a count and never a level.
func (e *Extractor) Pain(nt transcript.NormalizedTranscript, userMeds []types.UserMedication) *PainLevel {
	if nt.Empty() {
		return nil
	}
	if m := e.lex.PainLevel.FindStringSubmatch(nt.Normalized); m != nil {
		for _, g := range m[1:] {
			if v, err := strconv.Atoi(g); err == nil && v <= 10 {
				return &PainLevel{Value: v, Source: PainFromContext, Confidence: 0.9}
			}
		}
	}

	userNames := types.MedicationNames(userMeds)
	if v, ok := e.freeNumber(nt.Tokens, userNames, digitValue); ok {
		return &PainLevel{Value: v, Source: PainFromDigit, Confidence: 0.7}
	}
	if v, ok := e.freeNumber(nt.Tokens, userNames, e.wordValue); ok {
		return &PainLevel{Value: v, Source: PainFromWord, Confidence: 0.7}
	}
	if v, ok := e.lex.IntensityBands.First(nt.Normalized); ok {
		return &PainLevel{Value: v, Source: PainFromQualitative, Confidence: 0.5}
	}
	return nil
}

// freeNumber finds the first token that parses as 0–10 and is not framed
// as a time, duration, count or dose by its neighbours. The following word
// only frames the number when no punctuation separates them.
func (e *Extractor) freeNumber(tokens, userNames []string, parse func(string) (int, bool)) (int, bool) {
	for i, tok := range tokens {
		v, ok := parse(transcript.TrimPunct(tok))
		if !ok || v < 0 || v > 10 {
			continue
		}
		if i > 0 {
			if _, skip := e.lex.NonPainPrecursors[transcript.TrimPunct(tokens[i-1])]; skip {
				continue
			}
		}
		if i+1 < len(tokens) && !endsClause(tok) {
			next := transcript.TrimPunct(tokens[i+1])
			if _, skip := e.lex.NonPainFollowers[next]; skip {
				continue
			}
			if e.namesMedication(next, userNames) {
				continue
			}
		}
		return v, true
	}
	return 0, false
}

// namesMedication reports whether w is a user medication or a lexicon
// medication name.
func (e *Extractor) namesMedication(w string, userNames []string) bool {
	if _, ok := e.lex.Canonical(w); ok {
		return true
	}
	if _, ok := e.matcher.Resolve(w, userNames); ok {
		return true
	}
	_, ok := e.matcher.Resolve(w, e.synonyms)
	return ok
}

func digitValue(w string) (int, bool) {
	for _, r := range w {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	if len(w) == 0 || len(w) > 2 {
		return 0, false
	}
	v, err := strconv.Atoi(w)
	return v, err == nil
}

func (e *Extractor) wordValue(w string) (int, bool) {
	v, ok := e.lex.NumberWords[w]
	return v, ok
}
