package merge_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/MrWong99/painvoice/internal/merge"
)

func intPtr(v int) *int { return &v }

func TestMerge_PainPrecedence(t *testing.T) {
	t.Parallel()

	prev := merge.ReviewState{PainLevel: intPtr(5)}
	parsed := merge.NewParseResult{PainIntensity: &merge.PainIntensity{Value: 8}}

	got := merge.Merge(prev, parsed, merge.UserEditedFlags{Pain: true})
	if got.State.PainLevel == nil || *got.State.PainLevel != 5 {
		t.Errorf("edited pain: got %v, want 5", got.State.PainLevel)
	}

	got = merge.Merge(prev, parsed, merge.UserEditedFlags{})
	if got.State.PainLevel == nil || *got.State.PainLevel != 8 {
		t.Errorf("unedited pain: got %v, want 8", got.State.PainLevel)
	}
	if got.PainDefaultUsed {
		t.Error("PainDefaultUsed set although pain was parsed")
	}
}

func TestMerge_PainKeptWhenParseHasNone(t *testing.T) {
	t.Parallel()

	got := merge.Merge(merge.ReviewState{PainLevel: intPtr(6)}, merge.NewParseResult{}, merge.UserEditedFlags{})
	if got.State.PainLevel == nil || *got.State.PainLevel != 6 || got.PainDefaultUsed {
		t.Errorf("got %v (default %v), want 6", got.State.PainLevel, got.PainDefaultUsed)
	}
}

func TestMerge_PainDefault(t *testing.T) {
	t.Parallel()

	got := merge.Merge(merge.ReviewState{}, merge.NewParseResult{}, merge.UserEditedFlags{})
	if got.State.PainLevel == nil || *got.State.PainLevel != merge.DefaultPainLevel || !got.PainDefaultUsed {
		t.Errorf("got %v (default %v), want default %d", got.State.PainLevel, got.PainDefaultUsed, merge.DefaultPainLevel)
	}

	got = merge.Merge(merge.ReviewState{}, merge.NewParseResult{}, merge.UserEditedFlags{}, merge.WithDefaultPain(3))
	if got.State.PainLevel == nil || *got.State.PainLevel != 3 {
		t.Errorf("custom default: got %v, want 3", got.State.PainLevel)
	}

	got = merge.Merge(merge.ReviewState{}, merge.NewParseResult{}, merge.UserEditedFlags{}, merge.WithoutDefaultPain())
	if got.State.PainLevel != nil || got.PainDefaultUsed {
		t.Errorf("without default: got %v", got.State.PainLevel)
	}

	// A user who cleared pain on purpose keeps it empty.
	got = merge.Merge(merge.ReviewState{}, merge.NewParseResult{}, merge.UserEditedFlags{Pain: true})
	if got.State.PainLevel != nil || got.PainDefaultUsed {
		t.Errorf("edited empty pain: got %v", got.State.PainLevel)
	}
}

func TestMerge_Medications(t *testing.T) {
	t.Parallel()

	prev := merge.ReviewState{SelectedMedications: map[string]merge.SelectedMedication{
		"Sumatriptan": {DoseQuarters: 2, MedicationID: "m1"},
	}}
	parsed := merge.NewParseResult{Medications: []merge.ParsedMedication{
		{Name: "Sumatriptan", DoseQuarters: 4, MedicationID: "m1"},
		{Name: "Ibuprofen", DoseQuarters: 4},
	}}

	got := merge.Merge(prev, parsed, merge.UserEditedFlags{})
	want := map[string]merge.SelectedMedication{
		"Sumatriptan": {DoseQuarters: 4, MedicationID: "m1"},
		"Ibuprofen":   {DoseQuarters: 4},
	}
	if !reflect.DeepEqual(got.State.SelectedMedications, want) {
		t.Errorf("upsert: got %v, want %v", got.State.SelectedMedications, want)
	}

	got = merge.Merge(prev, parsed, merge.UserEditedFlags{Meds: true})
	want = map[string]merge.SelectedMedication{
		"Sumatriptan": {DoseQuarters: 2, MedicationID: "m1"},
		"Ibuprofen":   {DoseQuarters: 4},
	}
	if !reflect.DeepEqual(got.State.SelectedMedications, want) {
		t.Errorf("insert-only: got %v, want %v", got.State.SelectedMedications, want)
	}
}

func TestMerge_Notes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prev   string
		note   string
		edited bool
		want   string
	}{
		{"replace", "alt", "neu", false, "neu"},
		{"append", "Meine Notiz", "Danach besser", true, "Meine Notiz\n\nDanach besser"},
		{"append to empty", "", "Danach besser", true, "Danach besser"},
		{"edited keeps on empty parse", "Meine Notiz", "  ", true, "Meine Notiz"},
	}
	for _, tc := range tests {
		got := merge.Merge(merge.ReviewState{NotesText: tc.prev}, merge.NewParseResult{NoteText: tc.note}, merge.UserEditedFlags{Notes: tc.edited})
		if got.State.NotesText != tc.want {
			t.Errorf("%s: NotesText = %q, want %q", tc.name, got.State.NotesText, tc.want)
		}
	}
}

func TestMerge_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	prev := merge.ReviewState{
		PainLevel:           intPtr(4),
		SelectedMedications: map[string]merge.SelectedMedication{"Topiramat": {DoseQuarters: 4}},
		NotesText:           "vorher",
	}
	parsed := merge.NewParseResult{
		PainIntensity: &merge.PainIntensity{Value: 9},
		Medications:   []merge.ParsedMedication{{Name: "Topiramat", DoseQuarters: 2}, {Name: "Ibuprofen", DoseQuarters: 4}},
		NoteText:      "nachher",
	}
	got := merge.Merge(prev, parsed, merge.UserEditedFlags{})

	if *prev.PainLevel != 4 || prev.NotesText != "vorher" {
		t.Errorf("prev scalar fields changed: %+v", prev)
	}
	if len(prev.SelectedMedications) != 1 || prev.SelectedMedications["Topiramat"].DoseQuarters != 4 {
		t.Errorf("prev medications changed: %v", prev.SelectedMedications)
	}
	*got.State.PainLevel = 1
	if *prev.PainLevel != 4 {
		t.Error("result shares the pain pointer with prev")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		prev    merge.ReviewState
		parsed  merge.NewParseResult
		wantErr []string
	}{
		{name: "empty"},
		{
			name:   "scale bounds",
			prev:   merge.ReviewState{PainLevel: intPtr(0)},
			parsed: merge.NewParseResult{PainIntensity: &merge.PainIntensity{Value: merge.MaxPainLevel}},
		},
		{
			name:    "previous too high",
			prev:    merge.ReviewState{PainLevel: intPtr(42)},
			wantErr: []string{"previousState.painLevel = 42"},
		},
		{
			name:    "both out of range",
			prev:    merge.ReviewState{PainLevel: intPtr(-1)},
			parsed:  merge.NewParseResult{PainIntensity: &merge.PainIntensity{Value: 11}},
			wantErr: []string{"previousState.painLevel = -1", "pain_intensity.value = 11"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := merge.Validate(tc.prev, tc.parsed)
			if len(tc.wantErr) == 0 {
				if err != nil {
					t.Errorf("Validate = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, merge.ErrPainOutOfRange) {
				t.Fatalf("Validate = %v, want ErrPainOutOfRange", err)
			}
			for _, want := range tc.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q does not mention %q", err, want)
				}
			}
		})
	}
}
