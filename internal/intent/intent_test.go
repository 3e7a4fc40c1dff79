package intent_test

import (
	"reflect"
	"slices"
	"testing"

	"github.com/MrWong99/painvoice/internal/features"
	"github.com/MrWong99/painvoice/internal/intent"
	"github.com/MrWong99/painvoice/pkg/types"
)

func TestScoreIntents_Classification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		meds []types.UserMedication
		want intent.Intent
	}{
		{"Füge Paracetamol 500 mg hinzu", nil, intent.AddMedication},
		{"Starke Kopfschmerzen Migräne Attacke Stärke 8", nil, intent.PainEntry},
		{"Wie viele Einträge hatte ich in den letzten 7 Tagen?", nil, intent.AnalyticsQuery},
		{"Füge hinzu: Kopfschmerzen seit heute morgen, Migräne mit Aura", nil, intent.PainEntry},
		{"Sumatriptan genommen, Kopfschmerz Stärke 7", []types.UserMedication{{Name: "Sumatriptan"}}, intent.PainEntry},
		{"Ich möchte Topiramat absetzen", nil, intent.MedicationUpdate},
		{"Das Triptan hat gut geholfen", nil, intent.MedicationEffect},
		{"Erinnere mich morgen um 8 an Ibuprofen", nil, intent.Reminder},
		{"Erinnere mich, das neue Medikament anzulegen", nil, intent.Reminder},
		{"Öffne die Auswertung", nil, intent.Navigation},
		{"Notiz: heute viel Stress im Büro", nil, intent.Note},
		{"Heute war ein ruhiger Tag am See", nil, intent.Note},
		{"hallo", nil, intent.Unknown},
		{"", nil, intent.Unknown},
	}
	for _, tc := range tests {
		got := intent.ScoreIntents(tc.text, tc.meds)
		if got.Intent != tc.want {
			t.Errorf("ScoreIntents(%q).Intent = %q, want %q (scores %v, features %v)",
				tc.text, got.Intent, tc.want, got.Scores, got.Features)
		}
	}
}

func TestScoreIntents_Confidence(t *testing.T) {
	t.Parallel()

	add := intent.ScoreIntents("Füge Paracetamol 500 mg hinzu", nil)
	if add.Confidence != 0.95 {
		t.Errorf("add_medication confidence = %v, want capped 0.95", add.Confidence)
	}

	analytics := intent.ScoreIntents("Wie viele Einträge hatte ich in den letzten 7 Tagen?", nil)
	if analytics.Confidence <= 0.7 {
		t.Errorf("analytics confidence = %v, want > 0.7", analytics.Confidence)
	}
	if analytics.Scores[intent.AnalyticsQuery] != 0.9 {
		t.Errorf("analytics score = %v, want 0.9", analytics.Scores[intent.AnalyticsQuery])
	}

	unknown := intent.ScoreIntents("hm", nil)
	if unknown.Confidence != 0.2 {
		t.Errorf("unknown confidence = %v, want 0.2", unknown.Confidence)
	}

	note := intent.ScoreIntents("Heute war ein ruhiger Tag am See", nil)
	if note.Confidence != 0.3 {
		t.Errorf("note fallback confidence = %v, want 0.3", note.Confidence)
	}
}

func TestScoreIntents_AllKeysPresent(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"", "Füge Paracetamol 500 mg hinzu", "hallo"} {
		r := intent.ScoreIntents(text, nil)
		if len(r.Scores) != len(intent.Priority) {
			t.Errorf("ScoreIntents(%q): %d score keys, want %d", text, len(r.Scores), len(intent.Priority))
		}
		for _, in := range intent.Priority {
			v, ok := r.Scores[in]
			if !ok {
				t.Errorf("ScoreIntents(%q): missing score for %s", text, in)
			}
			if v < 0 {
				t.Errorf("ScoreIntents(%q): negative score %v for %s", text, v, in)
			}
		}
		if r.Confidence < 0 || r.Confidence > 0.95 {
			t.Errorf("ScoreIntents(%q): confidence %v out of range", text, r.Confidence)
		}
	}
}

func TestScoreIntents_Deterministic(t *testing.T) {
	t.Parallel()

	meds := []types.UserMedication{{Name: "Sumatriptan 50"}, {Name: "Ibuprofen 400"}}
	text := "Sumatriptan 50 mg genommen, Kopfschmerz Stärke 7, wie oft diese Woche?"
	first := intent.ScoreIntents(text, meds)
	for range 20 {
		if got := intent.ScoreIntents(text, meds); !reflect.DeepEqual(first, got) {
			t.Fatalf("non-deterministic result: %+v vs %+v", first, got)
		}
	}
}

func TestScore_Disambiguation(t *testing.T) {
	t.Parallel()

	// Pain context dominance moves weight from add_medication to pain_entry.
	r := intent.ScoreIntents("Füge hinzu: Kopfschmerzen seit heute morgen, Migräne mit Aura", nil)
	if r.Scores[intent.AddMedication] != 0.2 {
		t.Errorf("add_medication = %v, want 0.2 after dominance penalty", r.Scores[intent.AddMedication])
	}
	if r.Scores[intent.PainEntry] != 1.1 {
		t.Errorf("pain_entry = %v, want 1.1 after dominance boost", r.Scores[intent.PainEntry])
	}

	// An analytics question halves the pain score.
	r = intent.ScoreIntents("Wie oft hatte ich Migräne diesen Monat?", nil)
	if r.Intent != intent.AnalyticsQuery {
		t.Errorf("intent = %s, want analytics_query", r.Intent)
	}
	if r.Scores[intent.PainEntry] != 0.2 {
		t.Errorf("pain_entry = %v, want 0.2", r.Scores[intent.PainEntry])
	}

	// A reminder penalty never drives a score negative.
	r = intent.ScoreIntents("Erinnerung", nil)
	if r.Scores[intent.AddMedication] != 0 {
		t.Errorf("add_medication = %v, want floor 0", r.Scores[intent.AddMedication])
	}
}

func TestScore_TieBreakPriority(t *testing.T) {
	t.Parallel()

	// Equal weights for update and effect: the earlier intent in the
	// priority list wins.
	w := intent.DefaultWeights()
	s := intent.New(intent.WithWeights(w))
	r := s.Score("Seit ich Topiramat reduziert habe, wirkt nichts mehr", nil)
	if r.Scores[intent.MedicationUpdate] != r.Scores[intent.MedicationEffect] {
		t.Fatalf("expected a tie, got update=%v effect=%v",
			r.Scores[intent.MedicationUpdate], r.Scores[intent.MedicationEffect])
	}
	if r.Intent != intent.MedicationUpdate {
		t.Errorf("intent = %s, want medication_update", r.Intent)
	}
}

func TestScore_CustomWeights(t *testing.T) {
	t.Parallel()

	w := intent.DefaultWeights()
	w.PainDominanceMinKeywords = 10
	s := intent.New(intent.WithWeights(w))

	text := "Füge hinzu: 400 mg, Kopfschmerzen, Migräne"
	if r := intent.ScoreIntents(text, nil); r.Intent != intent.PainEntry {
		t.Fatalf("default intent = %s, want pain_entry", r.Intent)
	}
	// Without the dominance rule the add verb wins.
	if r := s.Score(text, nil); r.Intent != intent.AddMedication {
		t.Errorf("intent = %s, want add_medication with dominance disabled", r.Intent)
	}
}

func TestScore_FeaturesSorted(t *testing.T) {
	t.Parallel()

	r := intent.ScoreIntents("Füge Paracetamol 500 mg hinzu", nil)
	want := []features.ID{features.AddVerb, features.Dosage, features.ExplicitAdd}
	if !slices.Equal(r.Features, want) {
		t.Errorf("Features = %v, want %v", r.Features, want)
	}
}

func TestScore_UserMedicationBonus(t *testing.T) {
	t.Parallel()

	meds := []types.UserMedication{{Name: "Sumatriptan"}}
	with := intent.ScoreIntents("Sumatriptan genommen", meds)
	without := intent.ScoreIntents("Sumatriptan genommen", nil)
	if with.Scores[intent.PainEntry] <= without.Scores[intent.PainEntry] {
		t.Errorf("user medication did not raise pain_entry: %v vs %v",
			with.Scores[intent.PainEntry], without.Scores[intent.PainEntry])
	}
	if with.Scores[intent.MedicationUpdate] != 0.1 {
		t.Errorf("medication_update = %v, want 0.1", with.Scores[intent.MedicationUpdate])
	}
}
