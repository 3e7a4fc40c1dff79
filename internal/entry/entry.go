// Package entry assembles a complete voice diary entry from one
// transcript: the classified intent plus every entity the extractors find.
// The result feeds the review sheet and, on follow-up utterances, the
// merge engine.
package entry

import (
	"strings"
	"time"

	"github.com/MrWong99/painvoice/internal/extract"
	"github.com/MrWong99/painvoice/internal/intent"
	"github.com/MrWong99/painvoice/internal/lexicon"
	"github.com/MrWong99/painvoice/internal/merge"
	"github.com/MrWong99/painvoice/internal/transcript"
	"github.com/MrWong99/painvoice/internal/transcript/fuzzy"
	"github.com/MrWong99/painvoice/pkg/types"
)

// Names of fields reported in [VoiceEntry.Missing].
const (
	MissingPain        = "pain_intensity"
	MissingMedications = "medications"
	MissingTime        = "time"
)

// Medication is an extracted medication with its tablet amount.
type Medication struct {
	extract.ExtractedMedication
	DoseQuarters int `json:"dose_quarters"`
}

// VoiceEntry is the structured result of parsing one transcript.
type VoiceEntry struct {
	Intent        intent.Result           `json:"intent"`
	Normalized    string                  `json:"normalized"`
	Corrections   []transcript.Correction `json:"corrections,omitempty"`
	PainIntensity *extract.PainLevel      `json:"pain_intensity"`
	Medications   []Medication            `json:"medications"`
	OccurredAt    time.Time               `json:"occurred_at"`
	TimeExplicit  bool                    `json:"time_explicit"`
	TimeSource    extract.TimeSource      `json:"time_source"`
	NoteText      string                  `json:"note_text"`

	// Missing names the fields no extractor could fill.
	Missing []string `json:"missing"`
}

// ParseResult converts e into the input of [merge.Merge].
func (e VoiceEntry) ParseResult() merge.NewParseResult {
	res := merge.NewParseResult{NoteText: e.NoteText}
	if e.PainIntensity != nil {
		res.PainIntensity = &merge.PainIntensity{Value: e.PainIntensity.Value}
	}
	for _, m := range e.Medications {
		res.Medications = append(res.Medications, merge.ParsedMedication{
			Name:         m.Name,
			DoseQuarters: m.DoseQuarters,
			MedicationID: m.MedicationID,
		})
	}
	return res
}

// Option configures a [Parser].
type Option func(*Parser)

// WithLexicon sets the rule set. Defaults to the German lexicon.
func WithLexicon(lex *lexicon.Lexicon) Option {
	return func(p *Parser) {
		p.lex = lex
	}
}

// WithMatcher sets the fuzzy medication matcher.
func WithMatcher(m *fuzzy.Matcher) Option {
	return func(p *Parser) {
		p.matcher = m
	}
}

// WithWeights sets the intent scoring weights.
func WithWeights(w intent.Weights) Option {
	return func(p *Parser) {
		p.weights = &w
	}
}

// WithClock sets the time source used to resolve relative times.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		p.now = now
	}
}

// WithLocation sets the time zone relative times are resolved in.
func WithLocation(loc *time.Location) Option {
	return func(p *Parser) {
		p.loc = loc
	}
}

// Parser turns transcripts into voice entries. It is read-only after
// construction and safe for concurrent use.
type Parser struct {
	lex        *lexicon.Lexicon
	matcher    *fuzzy.Matcher
	weights    *intent.Weights
	now        func() time.Time
	loc        *time.Location
	normalizer *transcript.Normalizer
	scorer     *intent.Scorer
	extractor  *extract.Extractor
}

// New returns a Parser configured by opts.
func New(opts ...Option) *Parser {
	p := &Parser{now: time.Now, loc: time.Local}
	for _, o := range opts {
		o(p)
	}
	if p.lex == nil {
		p.lex = lexicon.Default()
	}
	if p.matcher == nil {
		p.matcher = fuzzy.New()
	}
	scorerOpts := []intent.Option{intent.WithLexicon(p.lex), intent.WithMatcher(p.matcher)}
	if p.weights != nil {
		scorerOpts = append(scorerOpts, intent.WithWeights(*p.weights))
	}
	p.normalizer = transcript.NewNormalizer(p.lex)
	p.scorer = intent.New(scorerOpts...)
	p.extractor = extract.New(p.lex, p.matcher)
	return p
}

// Lexicon returns the rule set p parses with.
func (p *Parser) Lexicon() *lexicon.Lexicon {
	return p.lex
}

// Normalize canonicalizes text.
func (p *Parser) Normalize(text string) transcript.NormalizedTranscript {
	return p.normalizer.Normalize(text)
}

// Score classifies the intent of text.
func (p *Parser) Score(text string, userMeds []types.UserMedication) intent.Result {
	return p.scorer.Score(text, userMeds)
}

// Reminder parses text as a reminder relative to the parser's clock.
func (p *Parser) Reminder(text string, userMeds []types.UserMedication) extract.ReminderEntry {
	return p.extractor.Reminder(text, userMeds, p.clock())
}

// Parse builds a voice entry from text. Every extractor runs independently,
// so a transcript with a pain level but no medication still yields a
// usable entry with "medications" listed in Missing.
func (p *Parser) Parse(text string, userMeds []types.UserMedication) VoiceEntry {
	nt := p.normalizer.Normalize(text)
	occ := p.extractor.OccurredAt(nt, p.clock())

	e := VoiceEntry{
		Intent:        p.scorer.ScoreNormalized(nt, userMeds),
		Normalized:    nt.Normalized,
		Corrections:   nt.Corrections,
		PainIntensity: p.extractor.Pain(nt, userMeds),
		Medications:   []Medication{},
		OccurredAt:    occ.Time,
		TimeExplicit:  occ.Explicit,
		TimeSource:    occ.Source,
		NoteText:      strings.TrimSpace(text),
		Missing:       []string{},
	}

	quarters := p.extractor.DoseQuarters(nt)
	for _, m := range p.medications(nt, userMeds) {
		e.Medications = append(e.Medications, Medication{ExtractedMedication: m, DoseQuarters: quarters})
	}

	if e.PainIntensity == nil {
		e.Missing = append(e.Missing, MissingPain)
	}
	if len(e.Medications) == 0 {
		e.Missing = append(e.Missing, MissingMedications)
	}
	if !e.TimeExplicit {
		e.Missing = append(e.Missing, MissingTime)
	}
	return e
}

// medications returns dose-anchored medications followed by dose-less
// mentions of the user's own medications not already covered.
func (p *Parser) medications(nt transcript.NormalizedTranscript, userMeds []types.UserMedication) []extract.ExtractedMedication {
	meds := p.extractor.Medications(nt, userMeds)
	for _, m := range p.extractor.Mentions(nt, userMeds) {
		if m.Source != extract.SourceUser {
			continue
		}
		dup := false
		for _, have := range meds {
			if p.matcher.Matches(have.Name, m.Name) {
				dup = true
				break
			}
		}
		if !dup {
			meds = append(meds, m)
		}
	}
	return meds
}

func (p *Parser) clock() time.Time {
	return p.now().In(p.loc)
}
