// Package lexicon holds the locale data the parser runs on: ASR correction
// rules, keyword patterns for intent features, entity vocabularies, segment
// classification tables and reminder date/time phrases.
//
// A Lexicon is immutable after construction. Components receive it through
// their constructors, so a different locale or a test fixture can be swapped
// in without touching package state. All patterns operate on normalized
// text: lowercase, umlauts folded to ASCII digraphs, whitespace collapsed.
package lexicon

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/MrWong99/painvoice/internal/rules"
)

// Correction is one ASR error-correction rewrite applied during
// normalization. Patterns must not match their own replacement, otherwise
// normalization stops being idempotent.
type Correction struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

// TimeOfDay is a coarse reminder bucket.
type TimeOfDay string

const (
	Morning TimeOfDay = "morning"
	Noon    TimeOfDay = "noon"
	Evening TimeOfDay = "evening"
	Night   TimeOfDay = "night"
)

// Clock is a wall-clock time without a date.
type Clock struct {
	Hour   int
	Minute int
}

// String formats c as HH:MM.
func (c Clock) String() string {
	return pad2(c.Hour) + ":" + pad2(c.Minute)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// FactorRule classifies a lifestyle factor and grades its value.
type FactorRule struct {
	// Type is the stable factor identifier, e.g. "sleep".
	Type string

	// Pattern detects the factor in a clause.
	Pattern *regexp.Regexp

	// Values grades the factor; evaluated before the generic quality table.
	Values rules.Table[string]
}

// Lexicon is the complete rule set for one locale.
type Lexicon struct {
	// Locale is a BCP 47 tag, e.g. "de-DE".
	Locale string

	// Version identifies the rule set in persisted results.
	Version string

	// ── Normalization ──────────────────────────────────────────────────────

	Corrections []Correction

	// Folder maps locale-specific letters to ASCII digraphs.
	Folder *strings.Replacer

	// ── Intent features ────────────────────────────────────────────────────

	AddVerb          *regexp.Regexp
	ExplicitAdd      *regexp.Regexp
	Dosage           *regexp.Regexp
	PainLevel        *regexp.Regexp
	IntakeVerb       *regexp.Regexp
	AnalyticsKeyword *regexp.Regexp
	Question         *regexp.Regexp
	TimeRange        *regexp.Regexp
	MedicationUpdate *regexp.Regexp
	MedicationEffect *regexp.Regexp
	Reminder         *regexp.Regexp
	Navigation       *regexp.Regexp
	NoteMarker       *regexp.Regexp

	// PainKeywords is counted per distinct matching rule.
	PainKeywords rules.Table[string]

	// ── Entities ───────────────────────────────────────────────────────────

	// NumberWords maps cardinal words to their value (null…zwoelf).
	NumberWords map[string]int

	// IndefiniteOne lists article forms that mean "one" in quantities
	// ("vor einer stunde"). They are not pain levels.
	IndefiniteOne map[string]struct{}

	// IntensityBands maps qualitative words to fixed NRS values.
	IntensityBands rules.Table[int]

	// NonPainFollowers are tokens that, directly after a number, show the
	// number is not a pain rating (units, durations, counts).
	NonPainFollowers map[string]struct{}

	// NonPainPrecursors are tokens that, directly before a number, show the
	// number is not a pain rating ("vor 2 stunden", "um 8").
	NonPainPrecursors map[string]struct{}

	// Stopwords never form part of a medication name candidate.
	Stopwords map[string]struct{}

	// Synonyms maps normalized brand names and aliases to a canonical
	// display name.
	Synonyms map[string]string

	// DoseAmount captures the amount and unit of a dose.
	DoseAmount *regexp.Regexp

	// UnitPrefix matches text that starts with a dose unit. Used to reject
	// clock times that are really decimal doses ("2.50 mg").
	UnitPrefix *regexp.Regexp

	// DoseFractions grades tablet fractions in quarters.
	DoseFractions rules.Table[int]

	// TabletCount captures "<n> tabletten".
	TabletCount *regexp.Regexp

	// ── Occurrence time ────────────────────────────────────────────────────

	NowWords    *regexp.Regexp
	HalfHourAgo *regexp.Regexp
	RelativeAgo *regexp.Regexp
	ClockTime   *regexp.Regexp
	ClockHour   *regexp.Regexp
	DayRef      *regexp.Regexp
	DayShift    map[string]int
	DayParts    map[string]Clock

	// ── Segments ───────────────────────────────────────────────────────────

	ClauseSplit      *regexp.Regexp
	ConjunctionSplit *regexp.Regexp

	MedicationEvent *regexp.Regexp
	SymptomCourse   *regexp.Regexp
	LifestyleFactor *regexp.Regexp
	Trigger         *regexp.Regexp
	TimePattern     *regexp.Regexp

	EffectRatings   rules.Table[string]
	MedicationRoles rules.Table[string]
	TimingRelations rules.Table[string]
	TimeReferences  rules.Table[string]

	Factors        []FactorRule
	FactorQuality  rules.Table[string]
	FactorQuantity *regexp.Regexp

	// ── Reminders ──────────────────────────────────────────────────────────

	MedicationKeyword  *regexp.Regexp
	AppointmentKeyword *regexp.Regexp
	AppointmentTitle   *regexp.Regexp

	TimesOfDay   rules.Table[TimeOfDay]
	DefaultClock map[TimeOfDay]Clock
	ReminderAt   *regexp.Regexp
	ReminderAtWd *regexp.Regexp

	RelativeDays  rules.Table[int]
	InDays        *regexp.Regexp
	WeekdayRef    *regexp.Regexp
	MorningPhrase *regexp.Regexp
	Weekdays      map[string]time.Weekday

	Repeats rules.Table[string]
}

// IsStopword reports whether tok is excluded from medication name candidates.
func (l *Lexicon) IsStopword(tok string) bool {
	_, ok := l.Stopwords[tok]
	return ok
}

// Canonical returns the canonical medication name for a normalized alias.
func (l *Lexicon) Canonical(alias string) (string, bool) {
	c, ok := l.Synonyms[alias]
	return c, ok
}

// SynonymKeys returns the normalized aliases in lexical order so callers get
// deterministic iteration.
func (l *Lexicon) SynonymKeys() []string {
	keys := make([]string, 0, len(l.Synonyms))
	for k := range l.Synonyms {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Number parses a quantity token: digits, a cardinal number word or an
// indefinite article meaning one.
func (l *Lexicon) Number(tok string) (int, bool) {
	if n, err := strconv.Atoi(tok); err == nil {
		return n, true
	}
	if n, ok := l.NumberWords[tok]; ok {
		return n, true
	}
	if _, ok := l.IndefiniteOne[tok]; ok {
		return 1, true
	}
	return 0, false
}

// clone returns a deep copy of the mutable containers of l. Compiled
// regexes are immutable and shared.
func (l *Lexicon) clone() *Lexicon {
	c := *l
	c.Corrections = slices.Clone(l.Corrections)
	c.Stopwords = cloneSet(l.Stopwords)
	c.Synonyms = make(map[string]string, len(l.Synonyms))
	for k, v := range l.Synonyms {
		c.Synonyms[k] = v
	}
	c.DefaultClock = make(map[TimeOfDay]Clock, len(l.DefaultClock))
	for k, v := range l.DefaultClock {
		c.DefaultClock[k] = v
	}
	return &c
}

func cloneSet(s map[string]struct{}) map[string]struct{} {
	c := make(map[string]struct{}, len(s))
	for k := range s {
		c[k] = struct{}{}
	}
	return c
}

func set(words string) map[string]struct{} {
	s := make(map[string]struct{})
	for _, w := range strings.Fields(words) {
		s[w] = struct{}{}
	}
	return s
}
