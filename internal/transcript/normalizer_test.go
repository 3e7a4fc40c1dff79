package transcript_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/MrWong99/painvoice/internal/transcript"
)

func TestNormalize_Empty(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "   ", "\t\n"} {
		nt := transcript.Normalize(in)
		if nt.Normalized != "" {
			t.Errorf("Normalize(%q).Normalized = %q, want empty", in, nt.Normalized)
		}
		if nt.Tokens == nil || len(nt.Tokens) != 0 {
			t.Errorf("Normalize(%q).Tokens = %#v, want non-nil empty slice", in, nt.Tokens)
		}
		if !nt.Empty() {
			t.Errorf("Normalize(%q).Empty() = false", in)
		}
	}
}

func TestNormalize_Corrections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Ich hab's genommen", "ich habe es genommen"},
		{"Hab Kopf Schmerzen", "habe kopfschmerzen"},
		{"Suma Triptan 50 Milligramm", "sumatriptan 50 mg"},
		{"Somatriptan 100 m g", "sumatriptan 100 mg"},
		{"Ibu Profen 400", "ibuprofen 400"},
		{"Para Cetamol 500", "paracetamol 500"},
		{"Schmerz 7/10", "schmerz 7 von 10"},
		{"Schmerzen acht von zehn", "schmerzen acht von 10"},
		{"Gibt's heute  Übelkeit?", "gibt es heute uebelkeit?"},
		{"5 Milliliter Tropfen", "5 ml tropfen"},
	}
	for _, tc := range tests {
		got := transcript.Normalize(tc.in).Normalized
		if got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalize_RecordsCorrections(t *testing.T) {
	t.Parallel()

	nt := transcript.Normalize("Suma Triptan 7/10")
	rules := make([]string, 0, len(nt.Corrections))
	for _, c := range nt.Corrections {
		rules = append(rules, c.Rule)
	}
	if !slices.Contains(rules, "drug-suma-triptan") || !slices.Contains(rules, "scale-slash") {
		t.Fatalf("corrections = %v, want drug-suma-triptan and scale-slash", rules)
	}
	for _, c := range nt.Corrections {
		if c.Rule == "scale-slash" && (c.Original != "7/10" || c.Corrected != "7 von 10") {
			t.Errorf("scale-slash correction = %+v", c)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Füge Paracetamol 500 mg hinzu",
		"Ich hab's um 8 Uhr genommen, Kopf Schmerzen 7/10",
		"Suma Triptan 50 Milligramm. Danach Übelkeit!",
		"  Starke   Migräne   seit gestern  ",
		"Größe ÄÖÜ ẞ",
		"",
	}
	for _, in := range inputs {
		first := transcript.Normalize(in).Normalized
		second := transcript.Normalize(first).Normalized
		if first != second {
			t.Errorf("not idempotent for %q: %q then %q", in, first, second)
		}
	}
}

func TestNormalize_TokensMatchNormalized(t *testing.T) {
	t.Parallel()

	nt := transcript.Normalize("  Starke   Migräne\tseit gestern ")
	if got := strings.Join(nt.Tokens, " "); got != nt.Normalized {
		t.Errorf("tokens %q do not rebuild normalized %q", got, nt.Normalized)
	}
	for _, tok := range nt.Tokens {
		if tok == "" {
			t.Error("empty token")
		}
	}
	if nt.Original != "  Starke   Migräne\tseit gestern " {
		t.Errorf("Original was modified: %q", nt.Original)
	}
}

func TestNormalize_DecomposedUmlauts(t *testing.T) {
	t.Parallel()

	// "Übelkeit" with U + combining diaeresis.
	nt := transcript.Normalize("U\u0308belkeit")
	if nt.Normalized != "uebelkeit" {
		t.Errorf("Normalized = %q, want uebelkeit", nt.Normalized)
	}
}

func TestFoldUmlauts(t *testing.T) {
	t.Parallel()

	got := strings.ToLower(transcript.FoldUmlauts("Füge Medikament hinzü"))
	if got != "fuege medikament hinzue" {
		t.Errorf("FoldUmlauts = %q, want %q", got, "fuege medikament hinzue")
	}
	if got := transcript.FoldUmlauts("Straße"); got != "Strasse" {
		t.Errorf("FoldUmlauts(Straße) = %q", got)
	}
}

func TestWords(t *testing.T) {
	t.Parallel()

	got := transcript.Words([]string{"genommen.", "(ibuprofen)", "–", "heute,"})
	want := []string{"genommen", "ibuprofen", "heute"}
	if !slices.Equal(got, want) {
		t.Errorf("Words = %v, want %v", got, want)
	}
}
