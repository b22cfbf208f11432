package concepts

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{name: "lowercases", raw: "Machine Learning", want: "machine learning"},
		{name: "trims", raw: "  pricing model  ", want: "pricing model"},
		{name: "strips_double_quotes", raw: `"AI"`, want: "ai"},
		{name: "strips_single_quotes", raw: "'onboarding'", want: "onboarding"},
		{name: "mixed", raw: `  "Kubernetes"  `, want: "kubernetes"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Normalize(tc.raw)
			if err != nil {
				t.Fatalf("Normalize(%q) error: %v", tc.raw, err)
			}
			if got != tc.want {
				t.Fatalf("Normalize(%q)=%q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Machine Learning", `"AI"`, "  'quoted'  ", "plain"}
	for _, raw := range inputs {
		once, err := Normalize(raw)
		if err != nil {
			t.Fatalf("Normalize(%q) error: %v", raw, err)
		}
		twice, err := Normalize(once)
		if err != nil {
			t.Fatalf("Normalize(Normalize(%q)) error: %v", raw, err)
		}
		if once != twice {
			t.Fatalf("normalize not idempotent for %q: %q != %q", raw, once, twice)
		}
	}
}

func TestNormalizeEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", `""`, `'"'`} {
		if _, err := Normalize(raw); !errors.Is(err, ErrEmptyName) {
			t.Fatalf("Normalize(%q): expected ErrEmptyName, got %v", raw, err)
		}
	}
}

func TestNormalizeLengthCountsRunes(t *testing.T) {
	// 150 three-byte runes: 450 bytes but well under the 200-char bound.
	multibyte := strings.Repeat("日", 150)
	got, err := Normalize(multibyte)
	if err != nil {
		t.Fatalf("150-rune name rejected: %v", err)
	}
	if got != multibyte {
		t.Fatalf("multibyte name mangled: %q", got)
	}

	if _, err := Normalize(strings.Repeat("日", MaxNameLength+1)); !errors.Is(err, ErrNameTooLong) {
		t.Fatalf("expected ErrNameTooLong for %d runes, got %v", MaxNameLength+1, err)
	}
	if _, err := Normalize(strings.Repeat("a", MaxNameLength)); err != nil {
		t.Fatalf("name at the bound should pass: %v", err)
	}
}

func TestValidateMentionsRejectsNormalizedDuplicates(t *testing.T) {
	// "AI" and 'ai' collide after normalization.
	mentions := []Mention{
		{Name: `"AI"`, Score: 3.0},
		{Name: "'ai'", Score: 2.0},
	}
	if _, err := ValidateMentions(mentions); !errors.Is(err, ErrDuplicateMention) {
		t.Fatalf("expected ErrDuplicateMention, got %v", err)
	}
}

func TestValidateMentionsEmptyAndOversized(t *testing.T) {
	if _, err := ValidateMentions(nil); !errors.Is(err, ErrNoMentions) {
		t.Fatalf("expected ErrNoMentions, got %v", err)
	}

	big := make([]Mention, MaxMentions+1)
	for i := range big {
		big[i] = Mention{Name: "concept " + string(rune('a'+i)), Score: 1.0}
	}
	if _, err := ValidateMentions(big); !errors.Is(err, ErrTooManyMentions) {
		t.Fatalf("expected ErrTooManyMentions, got %v", err)
	}
}

func TestValidateMentionsScoreBounds(t *testing.T) {
	for _, score := range []float64{0.05, 5.5, -1} {
		mentions := []Mention{{Name: "valid", Score: score}}
		if _, err := ValidateMentions(mentions); !errors.Is(err, ErrScoreOutOfRange) {
			t.Fatalf("score %v: expected ErrScoreOutOfRange, got %v", score, err)
		}
	}
	mentions := []Mention{{Name: "Valid Name", Score: 0.1}, {Name: "other", Score: 5.0}}
	got, err := ValidateMentions(mentions)
	if err != nil {
		t.Fatalf("boundary scores should pass: %v", err)
	}
	if got[0].Name != "valid name" {
		t.Fatalf("expected normalized name, got %q", got[0].Name)
	}
}

func TestValidateTimeRange(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	if err := ValidateTimeRange(f(1.0), f(2.0)); err != nil {
		t.Fatalf("valid range rejected: %v", err)
	}
	if err := ValidateTimeRange(f(2.0), f(2.0)); !errors.Is(err, ErrBadTimeRange) {
		t.Fatalf("equal bounds: expected ErrBadTimeRange, got %v", err)
	}
	if err := ValidateTimeRange(f(3.0), f(2.0)); !errors.Is(err, ErrBadTimeRange) {
		t.Fatalf("inverted bounds: expected ErrBadTimeRange, got %v", err)
	}
	if err := ValidateTimeRange(nil, f(2.0)); err != nil {
		t.Fatalf("to_sec without from_sec should pass: %v", err)
	}
	if err := ValidateTimeRange(f(1.0), nil); err != nil {
		t.Fatalf("from_sec without to_sec should pass: %v", err)
	}
}
