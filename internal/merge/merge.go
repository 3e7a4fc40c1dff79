// Package merge folds a freshly parsed dictation append into a review
// state that a user may already have corrected by hand.
//
// Fields the user has not touched follow the newest parse. Fields the user
// has edited are only ever extended: a later utterance can add a
// medication or a paragraph of notes but never overwrite a correction.
package merge

import (
	"errors"
	"fmt"
	"maps"
	"strings"
)

// DefaultPainLevel is applied when neither the previous state nor the new
// parse carries a pain level.
const DefaultPainLevel = 5

// MaxPainLevel is the top of the 0–10 numeric rating scale.
const MaxPainLevel = 10

// ErrPainOutOfRange is returned by [Validate] for a pain level outside
// 0–[MaxPainLevel].
var ErrPainOutOfRange = errors.New("merge: pain level out of range")

// Validate checks the pain levels of externally supplied merge input.
// Every violation is reported.
func Validate(prev ReviewState, parsed NewParseResult) error {
	var errs []error
	if p := prev.PainLevel; p != nil && (*p < 0 || *p > MaxPainLevel) {
		errs = append(errs, fmt.Errorf("%w: previousState.painLevel = %d", ErrPainOutOfRange, *p))
	}
	if p := parsed.PainIntensity; p != nil && (p.Value < 0 || p.Value > MaxPainLevel) {
		errs = append(errs, fmt.Errorf("%w: newParseResult.pain_intensity.value = %d", ErrPainOutOfRange, p.Value))
	}
	return errors.Join(errs...)
}

// SelectedMedication is one medication on the review sheet.
type SelectedMedication struct {
	DoseQuarters int    `json:"doseQuarters"`
	MedicationID string `json:"medicationId,omitempty"`
}

// ReviewState is the review sheet a dictation session builds up.
type ReviewState struct {
	PainLevel           *int                          `json:"painLevel"`
	SelectedMedications map[string]SelectedMedication `json:"selectedMedications"`
	NotesText           string                        `json:"notesText"`
}

// UserEditedFlags records which fields a human changed since the last
// automated write.
type UserEditedFlags struct {
	Pain  bool `json:"pain"`
	Meds  bool `json:"meds"`
	Notes bool `json:"notes"`
}

// PainIntensity wraps the parsed pain value.
type PainIntensity struct {
	Value int `json:"value"`
}

// ParsedMedication is one medication from a new parse.
type ParsedMedication struct {
	Name         string `json:"name"`
	DoseQuarters int    `json:"doseQuarters"`
	MedicationID string `json:"medicationId,omitempty"`
}

// NewParseResult is the part of a parsed entry the merge consumes.
type NewParseResult struct {
	PainIntensity *PainIntensity     `json:"pain_intensity"`
	Medications   []ParsedMedication `json:"medications"`
	NoteText      string             `json:"note_text"`
}

// Result is the merged state.
type Result struct {
	State ReviewState `json:"state"`

	// PainDefaultUsed reports that State.PainLevel was filled with the
	// default because no pain level was ever stated.
	PainDefaultUsed bool `json:"pain_default_used"`
}

// Option configures [Merge].
type Option func(*options)

type options struct {
	defaultPain *int
}

// WithDefaultPain sets the pain level applied when none is known.
func WithDefaultPain(level int) Option {
	return func(o *options) {
		o.defaultPain = &level
	}
}

// WithoutDefaultPain leaves an unknown pain level nil.
func WithoutDefaultPain() Option {
	return func(o *options) {
		o.defaultPain = nil
	}
}

// Merge combines prev with parsed according to edited. prev is never
// modified; the returned state shares no maps or pointers with it.
func Merge(prev ReviewState, parsed NewParseResult, edited UserEditedFlags, opts ...Option) Result {
	def := DefaultPainLevel
	o := options{defaultPain: &def}
	for _, opt := range opts {
		opt(&o)
	}

	next := ReviewState{
		PainLevel:           clonePain(prev.PainLevel),
		SelectedMedications: maps.Clone(prev.SelectedMedications),
		NotesText:           prev.NotesText,
	}
	if next.SelectedMedications == nil {
		next.SelectedMedications = make(map[string]SelectedMedication, len(parsed.Medications))
	}

	if parsed.PainIntensity != nil && !edited.Pain {
		v := parsed.PainIntensity.Value
		next.PainLevel = &v
	}

	for _, m := range parsed.Medications {
		if m.Name == "" {
			continue
		}
		if _, exists := next.SelectedMedications[m.Name]; exists && edited.Meds {
			continue
		}
		next.SelectedMedications[m.Name] = SelectedMedication{
			DoseQuarters: m.DoseQuarters,
			MedicationID: m.MedicationID,
		}
	}

	note := strings.TrimSpace(parsed.NoteText)
	switch {
	case !edited.Notes:
		next.NotesText = note
	case note == "":
	case strings.TrimSpace(next.NotesText) == "":
		next.NotesText = note
	default:
		next.NotesText = strings.TrimRight(next.NotesText, "\n ") + "\n\n" + note
	}

	res := Result{State: next}
	if next.PainLevel == nil && !edited.Pain && o.defaultPain != nil {
		v := *o.defaultPain
		res.State.PainLevel = &v
		res.PainDefaultUsed = true
	}
	return res
}

func clonePain(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
