package extract_test

import (
	"slices"
	"testing"

	"github.com/MrWong99/painvoice/internal/extract"
	"github.com/MrWong99/painvoice/internal/transcript"
	"github.com/MrWong99/painvoice/pkg/types"
)

func deref(f *float64) float64 {
	if f == nil {
		return -1
	}
	return *f
}

func TestMedications(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text   string
		meds   []types.UserMedication
		name   string
		doseMg float64 // -1 for nil
		source extract.Source
		id     string
	}{
		{"Füge Paracetamol 500 mg hinzu", nil, "Paracetamol", 500, extract.SourceLexicon, ""},
		{"Sumatriptan 50 mg genommen", []types.UserMedication{{Name: "Sumatriptan 50", ID: "m1"}}, "Sumatriptan 50", 50, extract.SourceUser, "m1"},
		{"Habe 400 mg Ibuprofen genommen", nil, "Ibuprofen", 400, extract.SourceLexicon, ""},
		{"Somatriptan 100 m g", nil, "Sumatriptan", 100, extract.SourceLexicon, ""},
		{"1 g Paracetamol", nil, "Paracetamol", 1000, extract.SourceLexicon, ""},
		{"Novalgin 20 Tropfen", nil, "Metamizol", -1, extract.SourceLexicon, ""},
		{"Fantasiol 10 mg", nil, "Fantasiol", 10, extract.SourceSpoken, ""},
		{"Heute Kaffee getrunken, 400 mg Ibuprofen", nil, "Ibuprofen", 400, extract.SourceLexicon, ""},
	}
	for _, tc := range tests {
		got, ok := extract.Medication(transcript.Normalize(tc.text), tc.meds)
		if !ok {
			t.Errorf("Medication(%q): no result", tc.text)
			continue
		}
		if got.Name != tc.name || deref(got.DoseMg) != tc.doseMg || got.Source != tc.source || got.MedicationID != tc.id {
			t.Errorf("Medication(%q) = {%q, %v, %s, %q}, want {%q, %v, %s, %q}",
				tc.text, got.Name, deref(got.DoseMg), got.Source, got.MedicationID,
				tc.name, tc.doseMg, tc.source, tc.id)
		}
	}
}

func TestMedications_RawDose(t *testing.T) {
	t.Parallel()

	got, ok := extract.Medication(transcript.Normalize("Novalgin 20 Tropfen"), nil)
	if !ok {
		t.Fatal("no medication")
	}
	if got.Unit != "tropfen" || deref(got.Amount) != 20 {
		t.Errorf("raw dose = %v %q, want 20 tropfen", deref(got.Amount), got.Unit)
	}

	got, _ = extract.Medication(transcript.Normalize("Zolmitriptan 500 mikrogramm"), nil)
	if got.Unit != "mcg" || deref(got.DoseMg) != 0.5 {
		t.Errorf("mcg dose = %v mg (%q), want 0.5 mg", deref(got.DoseMg), got.Unit)
	}
}

func TestMedications_Multiple(t *testing.T) {
	t.Parallel()

	meds := extract.Medications(transcript.Normalize("Sumatriptan 50 mg und später 400 mg Ibuprofen"), nil)
	var names []string
	for _, m := range meds {
		names = append(names, m.Name)
	}
	if want := []string{"Sumatriptan", "Ibuprofen"}; !slices.Equal(names, want) {
		t.Errorf("Medications = %v, want %v", names, want)
	}
}

func TestMedications_RequiresDose(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"Ibuprofen genommen", "", "Kopfschmerzen Stärke 7", "400 mg"} {
		if got, ok := extract.Medication(transcript.Normalize(text), nil); ok {
			t.Errorf("Medication(%q) = %+v, want none", text, got)
		}
	}
}

func TestMentions(t *testing.T) {
	t.Parallel()

	e := extract.New(nil, nil)
	nt := transcript.Normalize("Sumatriptan genommen und MCP gegen Übelkeit")
	got := e.Mentions(nt, []types.UserMedication{{Name: "Sumatriptan", ID: "u1"}})
	if len(got) != 2 {
		t.Fatalf("Mentions = %+v, want 2 entries", got)
	}
	if got[0].Name != "Sumatriptan" || got[0].Source != extract.SourceUser || got[0].MedicationID != "u1" {
		t.Errorf("Mentions[0] = %+v", got[0])
	}
	if got[1].Name != "Metoclopramid" || got[1].Source != extract.SourceLexicon {
		t.Errorf("Mentions[1] = %+v", got[1])
	}
	for _, m := range got {
		if m.DoseMg != nil {
			t.Errorf("mention %q carries a dose", m.Name)
		}
	}
}
