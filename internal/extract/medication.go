package extract

import (
	"slices"
	"strconv"
	"strings"

	"github.com/MrWong99/painvoice/internal/transcript"
	"github.com/MrWong99/painvoice/pkg/types"
)

// Source records how a medication name was resolved.
type Source string

const (
	// SourceUser means the name matched the caller's medication list.
	SourceUser Source = "user"
	// SourceLexicon means the name matched a canonical lexicon synonym.
	SourceLexicon Source = "lexicon"
	// SourceSpoken means the name could not be resolved and is reported
	// as spoken.
	SourceSpoken Source = "spoken"
)

// ExtractedMedication is a medication mention with an optional dose.
type ExtractedMedication struct {
	Name string `json:"name"`

	// DoseMg is the dose converted to milligrams. Nil for volume or count
	// units and when no dose was spoken.
	DoseMg *float64 `json:"dose_mg,omitempty"`

	// Amount and Unit hold the dose as spoken.
	Amount *float64 `json:"amount,omitempty"`
	Unit   string   `json:"unit,omitempty"`

	MedicationID string `json:"medication_id,omitempty"`
	Source       Source `json:"source"`
}

// Medications returns every dosage-anchored medication in nt using the
// default lexicon.
func Medications(nt transcript.NormalizedTranscript, userMeds []types.UserMedication) []ExtractedMedication {
	return std.Medications(nt, userMeds)
}

// Medication returns the first dosage-anchored medication, if any.
func Medication(nt transcript.NormalizedTranscript, userMeds []types.UserMedication) (ExtractedMedication, bool) {
	return std.Medication(nt, userMeds)
}

// Medication returns the first dosage-anchored medication, if any.
func (e *Extractor) Medication(nt transcript.NormalizedTranscript, userMeds []types.UserMedication) (ExtractedMedication, bool) {
	meds := e.Medications(nt, userMeds)
	if len(meds) == 0 {
		return ExtractedMedication{}, false
	}
	return meds[0], true
}

// Medications scans nt for dose expressions and takes up to two name
// tokens directly before each dose, or after it when nothing usable
// precedes it. Dose anchors without a name candidate are skipped.
func (e *Extractor) Medications(nt transcript.NormalizedTranscript, userMeds []types.UserMedication) []ExtractedMedication {
	s := nt.Normalized
	var out []ExtractedMedication
	for _, loc := range e.lex.DoseAmount.FindAllStringSubmatchIndex(s, -1) {
		m, ok := e.candidate(s[:loc[0]], s[loc[1]:], userMeds)
		if !ok {
			continue
		}
		applyDose(&m, s[loc[2]:loc[3]], s[loc[4]:loc[5]])
		if !containsName(out, m.Name) {
			out = append(out, m)
		}
	}
	return out
}

// Mentions returns medications named anywhere in nt without requiring a
// dose: the user's own medications first, then canonical lexicon names.
func (e *Extractor) Mentions(nt transcript.NormalizedTranscript, userMeds []types.UserMedication) []ExtractedMedication {
	var out []ExtractedMedication
	userNames := types.MedicationNames(userMeds)
	for _, name := range e.matcher.FindInTokens(nt.Tokens, userNames) {
		m, _ := types.MedicationByName(userMeds, name)
		out = append(out, ExtractedMedication{Name: name, MedicationID: m.ID, Source: SourceUser})
	}
	for _, alias := range e.matcher.FindInTokens(nt.Tokens, e.synonyms) {
		canonical, _ := e.lex.Canonical(alias)
		if containsName(out, canonical) || slices.ContainsFunc(userNames, func(u string) bool {
			return e.matcher.Matches(u, canonical)
		}) {
			continue
		}
		out = append(out, ExtractedMedication{Name: canonical, Source: SourceLexicon})
	}
	return out
}

// candidate resolves the name around a dose anchor. The name before the
// dose is preferred; the one after it is used when nothing precedes the
// dose or when only the following words resolve to a known medication.
func (e *Extractor) candidate(before, after string, userMeds []types.UserMedication) (ExtractedMedication, bool) {
	var prev ExtractedMedication
	if c := e.nameBefore(before); c != "" {
		prev = e.resolve(c, userMeds)
		if prev.Source != SourceSpoken {
			return prev, true
		}
	}
	if c := e.nameAfter(after); c != "" {
		if next := e.resolve(c, userMeds); next.Source != SourceSpoken || prev.Name == "" {
			return next, true
		}
	}
	return prev, prev.Name != ""
}

// nameBefore collects up to two name tokens ending right before a dose.
func (e *Extractor) nameBefore(before string) string {
	tokens := strings.Fields(before)
	var picked []string
	for i := len(tokens) - 1; i >= 0 && len(picked) < 2; i-- {
		if endsClause(tokens[i]) {
			break
		}
		w := transcript.TrimPunct(tokens[i])
		if !e.isNameToken(w) {
			break
		}
		picked = append(picked, w)
	}
	slices.Reverse(picked)
	return strings.Join(picked, " ")
}

// nameAfter collects up to two name tokens starting right after a dose.
func (e *Extractor) nameAfter(after string) string {
	var picked []string
	for _, tok := range strings.Fields(after) {
		if len(picked) == 2 {
			break
		}
		w := transcript.TrimPunct(tok)
		if !e.isNameToken(w) {
			break
		}
		picked = append(picked, w)
		if endsClause(tok) {
			break
		}
	}
	return strings.Join(picked, " ")
}

// resolve maps a spoken candidate to a user medication, then to a
// canonical lexicon name, else reports it as spoken.
func (e *Extractor) resolve(candidate string, userMeds []types.UserMedication) ExtractedMedication {
	tries := []string{candidate}
	if words := strings.Fields(candidate); len(words) > 1 {
		tries = append(tries, words...)
	}

	if userNames := types.MedicationNames(userMeds); len(userNames) > 0 {
		for _, t := range tries {
			if name, ok := e.matcher.Resolve(t, userNames); ok {
				m, _ := types.MedicationByName(userMeds, name)
				return ExtractedMedication{Name: name, MedicationID: m.ID, Source: SourceUser}
			}
		}
	}
	for _, t := range tries {
		if canonical, ok := e.lex.Canonical(t); ok {
			return ExtractedMedication{Name: canonical, Source: SourceLexicon}
		}
	}
	for _, t := range tries {
		if alias, ok := e.matcher.Resolve(t, e.synonyms); ok {
			canonical, _ := e.lex.Canonical(alias)
			return ExtractedMedication{Name: canonical, Source: SourceLexicon}
		}
	}
	return ExtractedMedication{Name: displayName(candidate), Source: SourceSpoken}
}

// applyDose parses the spoken amount and converts mass units to mg.
func applyDose(m *ExtractedMedication, amount, unit string) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(amount, ",", "."), 64)
	if err != nil || v <= 0 {
		return
	}
	if unit == "ug" {
		unit = "mcg"
	}
	m.Amount = &v
	m.Unit = unit

	var mg float64
	switch unit {
	case "mg":
		mg = v
	case "g":
		mg = v * 1000
	case "mcg":
		mg = v / 1000
	default:
		return
	}
	m.DoseMg = &mg
}

func containsName(meds []ExtractedMedication, name string) bool {
	return slices.ContainsFunc(meds, func(m ExtractedMedication) bool {
		return strings.EqualFold(m.Name, name)
	})
}
