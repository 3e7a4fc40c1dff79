package engine_test

import (
	"strings"
	"testing"
	"time"

	"github.com/MrWong99/painvoice/internal/config"
	"github.com/MrWong99/painvoice/internal/engine"
	"github.com/MrWong99/painvoice/internal/lexicon"
	"github.com/MrWong99/painvoice/internal/merge"
)

func intPtr(v int) *int { return &v }

func TestNew_DefaultPain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pain     *int
		wantPain *int
	}{
		{"unset keeps merge default", nil, intPtr(merge.DefaultPainLevel)},
		{"configured", intPtr(3), intPtr(3)},
		{"negative disables", intPtr(-1), nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e := engine.New(engine.Options{DefaultPain: tc.pain})
			res := merge.Merge(merge.ReviewState{}, merge.NewParseResult{}, merge.UserEditedFlags{}, e.MergeOptions()...)
			switch {
			case tc.wantPain == nil && res.State.PainLevel != nil:
				t.Errorf("pain = %d, want none", *res.State.PainLevel)
			case tc.wantPain != nil && (res.State.PainLevel == nil || *res.State.PainLevel != *tc.wantPain):
				t.Errorf("pain = %v, want %d", res.State.PainLevel, *tc.wantPain)
			}
		})
	}
}

func TestNew_Clock(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 16, 14, 30, 0, 0, time.UTC)
	e := engine.New(engine.Options{Clock: func() time.Time { return now }, Location: time.UTC})
	if got := e.Parser().Parse("Kopfschmerzen", nil).OccurredAt; !got.Equal(now) {
		t.Errorf("OccurredAt = %v, want %v", got, now)
	}
	if e.Version() != lexicon.Version {
		t.Errorf("Version = %q, want %q", e.Version(), lexicon.Version)
	}
}

func TestFromConfig(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader("parser:\n  default_pain_level: 4\n"))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	e, err := engine.FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	res := merge.Merge(merge.ReviewState{}, merge.NewParseResult{}, merge.UserEditedFlags{}, e.MergeOptions()...)
	if res.State.PainLevel == nil || *res.State.PainLevel != 4 {
		t.Errorf("pain = %v, want 4", res.State.PainLevel)
	}

	cfg.Parser.LexiconFile = "/does/not/exist.yaml"
	if _, err := engine.FromConfig(cfg); err == nil {
		t.Error("FromConfig accepted a missing lexicon file")
	}
}

func TestHandle_Swap(t *testing.T) {
	t.Parallel()

	first := engine.New(engine.Options{})
	h := engine.NewHandle(first)
	if h.Load() != first {
		t.Fatal("Load did not return the initial engine")
	}

	second := engine.New(engine.Options{DefaultPain: intPtr(-1)})
	h.Swap(second)
	if h.Load() != second {
		t.Error("Swap did not install the new engine")
	}
	if got := h.Parse("Kopfschmerz Stärke 6", nil); got.PainIntensity == nil || got.PainIntensity.Value != 6 {
		t.Errorf("Parse through handle = %+v", got.PainIntensity)
	}
}
