// Package intent classifies a transcript into a single diary intent.
//
// The [Scorer] starts every intent at zero except note, which gets a small
// base score as fallback. Each fired feature adds fixed weights, a short
// list of disambiguation rules then shifts weight between competing
// intents, and the highest score wins. Ties are broken by a fixed
// priority order, so results never depend on map iteration.
//
// The scorer never fails: unrecognised input degrades to note or unknown
// with a low confidence, and the caller is expected to offer manual entry.
package intent

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/MrWong99/painvoice/internal/features"
	"github.com/MrWong99/painvoice/internal/lexicon"
	"github.com/MrWong99/painvoice/internal/transcript"
	"github.com/MrWong99/painvoice/internal/transcript/fuzzy"
	"github.com/MrWong99/painvoice/pkg/types"
)

// Intent is a diary action requested by an utterance.
type Intent string

const (
	AddMedication    Intent = "add_medication"
	PainEntry        Intent = "pain_entry"
	MedicationUpdate Intent = "medication_update"
	MedicationEffect Intent = "medication_effect"
	Reminder         Intent = "reminder"
	AnalyticsQuery   Intent = "analytics_query"
	Note             Intent = "note"
	Navigation       Intent = "navigation"
	Unknown          Intent = "unknown"
)

// Priority lists the scored intents in tie-break order, highest first.
var Priority = []Intent{
	AddMedication,
	MedicationUpdate,
	MedicationEffect,
	Reminder,
	PainEntry,
	AnalyticsQuery,
	Navigation,
	Note,
}

// Scores holds a score for every intent in [Priority].
type Scores map[Intent]float64

// Result is the outcome of one classification.
type Result struct {
	Intent     Intent        `json:"intent"`
	Confidence float64       `json:"confidence"`
	Scores     Scores        `json:"scores"`
	Features   []features.ID `json:"features"`
}

// Option is a functional option for configuring a [Scorer].
type Option func(*Scorer)

// WithWeights replaces the default weight table.
func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		s.weights = w
	}
}

// WithLexicon sets the lexicon used for normalization and features.
func WithLexicon(lex *lexicon.Lexicon) Option {
	return func(s *Scorer) {
		s.lex = lex
	}
}

// WithMatcher sets the fuzzy matcher used to spot user medications.
func WithMatcher(m *fuzzy.Matcher) Option {
	return func(s *Scorer) {
		s.matcher = m
	}
}

// Scorer classifies transcripts. It is read-only after construction and
// safe for concurrent use.
type Scorer struct {
	lex        *lexicon.Lexicon
	matcher    *fuzzy.Matcher
	weights    Weights
	normalizer *transcript.Normalizer
	extractor  *features.Extractor
}

// New returns a Scorer configured with the supplied options.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		lex:     lexicon.Default(),
		matcher: fuzzy.New(),
		weights: DefaultWeights(),
	}
	for _, o := range opts {
		o(s)
	}
	s.normalizer = transcript.NewNormalizer(s.lex)
	s.extractor = features.New(s.lex, s.matcher)
	return s
}

var defaultScorer = New()

// ScoreIntents classifies text with the default German rules.
func ScoreIntents(text string, userMeds []types.UserMedication) Result {
	return defaultScorer.Score(text, userMeds)
}

// Score normalizes text and classifies it.
func (s *Scorer) Score(text string, userMeds []types.UserMedication) Result {
	return s.ScoreNormalized(s.normalizer.Normalize(text), userMeds)
}

// ScoreNormalized classifies an already normalized transcript.
func (s *Scorer) ScoreNormalized(nt transcript.NormalizedTranscript, userMeds []types.UserMedication) Result {
	set := s.extractor.Extract(nt.Normalized, nt.Tokens, types.MedicationNames(userMeds))
	return s.classify(nt, set)
}

// Features exposes the feature set the scorer would use for nt.
func (s *Scorer) Features(nt transcript.NormalizedTranscript, userMeds []types.UserMedication) features.Set {
	return s.extractor.Extract(nt.Normalized, nt.Tokens, types.MedicationNames(userMeds))
}

func (s *Scorer) classify(nt transcript.NormalizedTranscript, set features.Set) Result {
	w := s.weights
	scores := make(Scores, len(Priority))
	for _, in := range Priority {
		scores[in] = 0
	}
	scores[Note] = w.NoteBase

	add := func(f features.ID, in Intent, v float64) {
		if set.Has(f) {
			scores[in] += v
		}
	}
	add(features.AddVerb, AddMedication, w.AddVerb)
	add(features.ExplicitAdd, AddMedication, w.ExplicitAdd)
	add(features.Dosage, AddMedication, w.DosageAdd)
	add(features.Dosage, PainEntry, w.DosagePain)
	if set.PainKeywordCount > 0 {
		n := min(set.PainKeywordCount, w.PainKeywordCap)
		scores[PainEntry] += w.PainKeywordBase + w.PainKeywordStep*float64(n-1)
	}
	add(features.PainLevel, PainEntry, w.PainLevel)
	add(features.IntakeVerb, PainEntry, w.IntakeVerb)
	add(features.UserMedication, PainEntry, w.UserMedicationPain)
	add(features.UserMedication, MedicationUpdate, w.UserMedicationUpdate)
	add(features.MedicationUpdate, MedicationUpdate, w.MedicationUpdate)
	add(features.MedicationEffect, MedicationEffect, w.MedicationEffect)
	add(features.Reminder, Reminder, w.Reminder)
	add(features.AnalyticsKeyword, AnalyticsQuery, w.AnalyticsKeyword)
	add(features.Question, AnalyticsQuery, w.Question)
	add(features.TimeRange, AnalyticsQuery, w.TimeRange)
	add(features.Navigation, Navigation, w.Navigation)
	add(features.NoteMarker, Note, w.NoteMarker)

	// Intake narration ("Sumatriptan genommen, Kopfschmerz Stärke 7")
	// is not a create-medication command.
	if set.Has(features.AddVerb) && set.PainKeywordCount >= w.PainDominanceMinKeywords && !set.Has(features.ExplicitAdd) {
		scores[PainEntry] += w.PainDominanceBoost
		scores[AddMedication] -= w.PainDominancePenalty
	}
	if set.Has(features.AnalyticsKeyword) && set.Has(features.Question) {
		scores[PainEntry] *= w.AnalyticsPainFactor
	}
	if set.Has(features.Reminder) {
		scores[AddMedication] -= w.ReminderAddPenalty
	}

	for in, v := range scores {
		scores[in] = round(math.Max(0, v))
	}

	winner := Priority[0]
	for _, in := range Priority[1:] {
		if scores[in] > scores[winner] {
			winner = in
		}
	}

	res := Result{
		Scores:   scores,
		Features: set.IDs(),
	}
	best := scores[winner]
	noteByDefault := winner == Note && !set.Has(features.NoteMarker) && best <= w.NoteBase
	switch {
	case best < w.MinScore || noteByDefault:
		if utf8.RuneCountInString(strings.TrimSpace(nt.Original)) > w.NoteMinLength {
			res.Intent = Note
			res.Confidence = round(math.Min(w.MaxConfidence, scores[Note]))
		} else {
			res.Intent = Unknown
			res.Confidence = w.UnknownConfidence
		}
	default:
		res.Intent = winner
		res.Confidence = round(math.Min(w.MaxConfidence, best))
	}
	return res
}

// round trims floating point noise from summed weights.
func round(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
