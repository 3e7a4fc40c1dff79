// Package segment splits a multi-clause transcript into ordered context
// segments and classifies each one: medication events, symptom course,
// lifestyle factors, triggers and time patterns. Every segment carries the
// entities found in its own clause.
package segment

import (
	"math"
	"strconv"
	"strings"

	"github.com/MrWong99/painvoice/internal/extract"
	"github.com/MrWong99/painvoice/internal/lexicon"
	"github.com/MrWong99/painvoice/internal/rules"
	"github.com/MrWong99/painvoice/internal/transcript"
	"github.com/MrWong99/painvoice/internal/transcript/fuzzy"
	"github.com/MrWong99/painvoice/pkg/types"
)

// Type is the semantic class of a segment.
type Type string

const (
	MedicationEvent Type = "medication_event"
	SymptomCourse   Type = "symptom_course"
	LifestyleFactor Type = "lifestyle_factor"
	Trigger         Type = "trigger"
	TimePattern     Type = "time_pattern"
	Unknown         Type = "unknown"
)

// ContextSegment is one classified clause.
type ContextSegment struct {
	Index      int    `json:"index"`
	Type       Type   `json:"type"`
	SourceText string `json:"source_text"`

	MedicationName string `json:"medication_name,omitempty"`
	MedicationDose string `json:"medication_dose,omitempty"`
	MedicationRole string `json:"medication_role,omitempty"`
	EffectRating   string `json:"effect_rating,omitempty"`
	TimingRelation string `json:"timing_relation,omitempty"`
	TimeReference  string `json:"time_reference,omitempty"`
	FactorType     string `json:"factor_type,omitempty"`
	FactorValue    string `json:"factor_value,omitempty"`

	NormalizedSummary string  `json:"normalized_summary"`
	Confidence        float64 `json:"confidence"`
	IsAmbiguous       bool    `json:"is_ambiguous"`
}

// Confidence adjustments applied per extracted entity.
const (
	baseConfidence   = 0.5
	medicationBonus  = 0.2
	doseBonus        = 0.1
	effectBonus      = 0.1
	roleBonus        = 0.05
	factorBonus      = 0.1
	factorValueBonus = 0.05
	timeRefBonus     = 0.05
	unknownPenalty   = 0.3
	minConfidence    = 0.1
	maxConfidence    = 1.0
)

// Segmenter is read-only after construction and safe for concurrent use.
type Segmenter struct {
	lex        *lexicon.Lexicon
	matcher    *fuzzy.Matcher
	normalizer *transcript.Normalizer
	extractor  *extract.Extractor
}

// New returns a Segmenter. Nil arguments select the defaults.
func New(lex *lexicon.Lexicon, m *fuzzy.Matcher) *Segmenter {
	if lex == nil {
		lex = lexicon.Default()
	}
	if m == nil {
		m = fuzzy.New()
	}
	return &Segmenter{
		lex:        lex,
		matcher:    m,
		normalizer: transcript.NewNormalizer(lex),
		extractor:  extract.New(lex, m),
	}
}

// Version identifies the rule set segments were produced with.
func (s *Segmenter) Version() string {
	return s.lex.Version
}

// Segment splits text into clauses and classifies each one. Segments are
// returned in transcript order. Blank input yields an empty, non-nil slice.
func (s *Segmenter) Segment(text string, userMeds []types.UserMedication) []ContextSegment {
	clauses := s.Split(text)
	out := make([]ContextSegment, 0, len(clauses))
	for i, clause := range clauses {
		out = append(out, s.segment(i, clause, userMeds))
	}
	return out
}

// Split returns the clauses of text. Sentence punctuation followed by
// whitespace or the end of the text separates clauses, so decimal doses
// like "2.5 mg" survive. A single sentence is further split before a
// comma-led conjunction ("…, aber …").
func (s *Segmenter) Split(text string) []string {
	var clauses []string
	start := 0
	for _, loc := range s.lex.ClauseSplit.FindAllStringIndex(text, -1) {
		clauses = appendClause(clauses, text[start:loc[1]])
		start = loc[1]
	}
	clauses = appendClause(clauses, text[start:])
	if len(clauses) != 1 {
		return clauses
	}

	single := clauses[0]
	matches := s.lex.ConjunctionSplit.FindAllStringSubmatchIndex(single, -1)
	if len(matches) == 0 {
		return clauses
	}
	clauses = clauses[:0]
	start = 0
	for _, m := range matches {
		clauses = appendClause(clauses, single[start:m[0]])
		start = m[2]
	}
	return appendClause(clauses, single[start:])
}

func appendClause(clauses []string, c string) []string {
	if c = strings.TrimSpace(c); c != "" {
		clauses = append(clauses, c)
	}
	return clauses
}

func (s *Segmenter) segment(index int, clause string, userMeds []types.UserMedication) ContextSegment {
	nt := s.normalizer.Normalize(clause)
	norm := nt.Normalized

	seg := ContextSegment{Index: index, SourceText: clause}

	med, hasMed := s.extractor.Medication(nt, userMeds)
	if !hasMed {
		if mentions := s.extractor.Mentions(nt, userMeds); len(mentions) > 0 {
			med, hasMed = mentions[0], true
		}
	}

	seg.Type = s.classify(norm, hasMed)
	seg.IsAmbiguous = seg.Type == Unknown

	if hasMed {
		seg.MedicationName = med.Name
		if med.Amount != nil {
			seg.MedicationDose = strconv.FormatFloat(*med.Amount, 'f', -1, 64) + " " + med.Unit
		}
	}
	seg.EffectRating, _ = s.lex.EffectRatings.First(norm)
	seg.MedicationRole, _ = s.lex.MedicationRoles.First(norm)
	seg.TimingRelation, _ = s.lex.TimingRelations.First(norm)
	_, seg.TimeReference, _ = s.lex.TimeReferences.FirstMatch(norm)
	seg.FactorType, seg.FactorValue = s.factor(norm)

	seg.Confidence = confidence(seg)
	seg.NormalizedSummary = summary(seg)
	return seg
}

// classify runs the segment type table in priority order. A clause naming
// a known medication is a medication event even without an intake verb.
func (s *Segmenter) classify(norm string, hasMed bool) Type {
	cases := []rules.Case[Type]{
		{Name: "medication", Match: rules.Any(rules.Matcher(s.lex.MedicationEvent), func(string) bool { return hasMed }), Value: MedicationEvent},
		{Name: "symptom", Match: rules.Matcher(s.lex.SymptomCourse), Value: SymptomCourse},
		{Name: "lifestyle", Match: rules.Matcher(s.lex.LifestyleFactor), Value: LifestyleFactor},
		{Name: "trigger", Match: rules.Matcher(s.lex.Trigger), Value: Trigger},
		{Name: "time", Match: rules.Matcher(s.lex.TimePattern), Value: TimePattern},
	}
	if t, ok := rules.FirstOf(cases, norm); ok {
		return t
	}
	return Unknown
}

// factor returns the first lifestyle factor in norm and its graded value.
func (s *Segmenter) factor(norm string) (typ, value string) {
	for _, f := range s.lex.Factors {
		if !f.Pattern.MatchString(norm) {
			continue
		}
		if v, ok := f.Values.First(norm); ok {
			return f.Type, v
		}
		if v, ok := s.lex.FactorQuality.First(norm); ok {
			return f.Type, v
		}
		return f.Type, s.lex.FactorQuantity.FindString(norm)
	}
	return "", ""
}

func confidence(seg ContextSegment) float64 {
	c := baseConfidence
	add := func(present bool, bonus float64) {
		if present {
			c += bonus
		}
	}
	add(seg.MedicationName != "", medicationBonus)
	add(seg.MedicationDose != "", doseBonus)
	add(seg.EffectRating != "", effectBonus)
	add(seg.MedicationRole != "", roleBonus)
	add(seg.FactorType != "", factorBonus)
	add(seg.FactorValue != "", factorValueBonus)
	add(seg.TimeReference != "", timeRefBonus)
	if seg.Type == Unknown {
		c -= unknownPenalty
	}
	c = min(max(c, minConfidence), maxConfidence)
	return math.Round(c*100) / 100
}

// summary joins the entities found in a fixed order: medication with dose
// and effect, then factor, then time reference.
func summary(seg ContextSegment) string {
	var parts []string

	var med []string
	if seg.MedicationName != "" {
		med = append(med, seg.MedicationName)
	}
	if seg.MedicationDose != "" {
		med = append(med, seg.MedicationDose)
	}
	if seg.EffectRating != "" {
		med = append(med, "(Wirkung: "+seg.EffectRating+")")
	}
	if len(med) > 0 {
		parts = append(parts, strings.Join(med, " "))
	}

	if seg.FactorType != "" {
		f := seg.FactorType
		if seg.FactorValue != "" {
			f += ": " + seg.FactorValue
		}
		parts = append(parts, f)
	}
	if seg.TimeReference != "" {
		parts = append(parts, seg.TimeReference)
	}
	return strings.Join(parts, "; ")
}
