// Package features implements the boolean signal detectors the intent
// scorer aggregates. Every detector is a pure predicate over normalized
// transcript text, identified by a stable [ID]. Patterns come from the
// lexicon; this package only decides which fired.
package features

import (
	"slices"

	"github.com/MrWong99/painvoice/internal/lexicon"
	"github.com/MrWong99/painvoice/internal/transcript/fuzzy"
)

// ID identifies a feature detector. Values are stable and appear in API
// responses.
type ID string

const (
	AddVerb          ID = "add_verb"
	ExplicitAdd      ID = "explicit_add"
	PainKeyword      ID = "pain_keyword"
	PainLevel        ID = "pain_level"
	Dosage           ID = "dosage"
	IntakeVerb       ID = "intake_verb"
	AnalyticsKeyword ID = "analytics_keyword"
	Question         ID = "question"
	TimeRange        ID = "time_range"
	MedicationUpdate ID = "medication_update"
	MedicationEffect ID = "medication_effect"
	Reminder         ID = "reminder"
	Navigation       ID = "navigation"
	NoteMarker       ID = "note_marker"
	UserMedication   ID = "user_medication"
)

// Set is the result of one extraction.
type Set struct {
	fired map[ID]bool

	// PainKeywordCount is the number of distinct pain keyword patterns that
	// matched.
	PainKeywordCount int

	// UserMedications lists the user's medications mentioned in the text,
	// in order of first mention.
	UserMedications []string
}

// Has reports whether id fired.
func (s Set) Has(id ID) bool {
	return s.fired[id]
}

// IDs returns the fired feature IDs sorted lexically.
func (s Set) IDs() []ID {
	ids := make([]ID, 0, len(s.fired))
	for id, ok := range s.fired {
		if ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

type detector struct {
	id    ID
	match func(string) bool
}

// Extractor runs all detectors. It is read-only after construction and
// safe for concurrent use.
type Extractor struct {
	lex       *lexicon.Lexicon
	matcher   *fuzzy.Matcher
	detectors []detector
}

// New returns an Extractor for lex. Nil arguments select the defaults.
func New(lex *lexicon.Lexicon, m *fuzzy.Matcher) *Extractor {
	if lex == nil {
		lex = lexicon.Default()
	}
	if m == nil {
		m = fuzzy.New()
	}
	return &Extractor{
		lex:     lex,
		matcher: m,
		detectors: []detector{
			{AddVerb, lex.AddVerb.MatchString},
			{ExplicitAdd, lex.ExplicitAdd.MatchString},
			{PainLevel, lex.PainLevel.MatchString},
			{Dosage, lex.Dosage.MatchString},
			{IntakeVerb, lex.IntakeVerb.MatchString},
			{AnalyticsKeyword, lex.AnalyticsKeyword.MatchString},
			{Question, lex.Question.MatchString},
			{TimeRange, lex.TimeRange.MatchString},
			{MedicationUpdate, lex.MedicationUpdate.MatchString},
			{MedicationEffect, lex.MedicationEffect.MatchString},
			{Reminder, lex.Reminder.MatchString},
			{Navigation, lex.Navigation.MatchString},
			{NoteMarker, lex.NoteMarker.MatchString},
		},
	}
}

// Extract evaluates every detector against normalized text. tokens is the
// token stream of the same text; userMeds are the user's medication names.
func (e *Extractor) Extract(normalized string, tokens []string, userMeds []string) Set {
	s := Set{fired: make(map[ID]bool)}
	if normalized == "" {
		return s
	}

	for _, d := range e.detectors {
		if d.match(normalized) {
			s.fired[d.id] = true
		}
	}

	if n := e.lex.PainKeywords.Count(normalized); n > 0 {
		s.fired[PainKeyword] = true
		s.PainKeywordCount = n
	}

	if len(userMeds) > 0 {
		if found := e.matcher.FindInTokens(tokens, userMeds); len(found) > 0 {
			s.fired[UserMedication] = true
			s.UserMedications = found
		}
	}
	return s
}
