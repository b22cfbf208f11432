package concepts

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Mention is one scored concept occurrence inside a chunk. Name is stored
// normalized; score is the mention strength in [0.1, 5.0].
type Mention struct {
	Name    string   `json:"name"`
	Score   float64  `json:"score"`
	FromSec *float64 `json:"from_sec,omitempty"`
	ToSec   *float64 `json:"to_sec,omitempty"`
}

const (
	MinMentionScore = 0.1
	MaxMentionScore = 5.0
	MaxMentions     = 20
	MaxNameLength   = 200
)

var (
	ErrEmptyName        = errors.New("concept name is empty after normalization")
	ErrNameTooLong      = errors.New("concept name exceeds maximum length")
	ErrNoMentions       = errors.New("at least one mention is required")
	ErrTooManyMentions  = errors.New("too many mentions")
	ErrDuplicateMention = errors.New("duplicate concept names are not allowed")
	ErrScoreOutOfRange  = errors.New("mention score out of range")
	ErrBadTimeRange     = errors.New("to_sec must be greater than from_sec")
)

// Normalize canonicalizes a concept name: lowercase, trimmed, with all
// single and double quote characters removed. Idempotent.
func Normalize(raw string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, `"`, "")
	normalized = strings.ReplaceAll(normalized, "'", "")
	normalized = strings.TrimSpace(normalized)
	if normalized == "" {
		return "", ErrEmptyName
	}
	// Length bounds are in characters, not bytes.
	if utf8.RuneCountInString(normalized) > MaxNameLength {
		return "", ErrNameTooLong
	}
	return normalized, nil
}

// ValidateMentions normalizes every mention name and checks the list-level
// rules: non-empty, at most MaxMentions, no two mentions sharing a normalized
// name, scores in range, valid time ranges. The returned slice carries the
// normalized names.
func ValidateMentions(mentions []Mention) ([]Mention, error) {
	if len(mentions) == 0 {
		return nil, ErrNoMentions
	}
	if len(mentions) > MaxMentions {
		return nil, fmt.Errorf("%w: got %d, max %d", ErrTooManyMentions, len(mentions), MaxMentions)
	}

	seen := make(map[string]struct{}, len(mentions))
	out := make([]Mention, 0, len(mentions))
	for _, m := range mentions {
		name, err := Normalize(m.Name)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateMention, name)
		}
		seen[name] = struct{}{}

		if m.Score < MinMentionScore || m.Score > MaxMentionScore {
			return nil, fmt.Errorf("%w: %q score %.2f", ErrScoreOutOfRange, name, m.Score)
		}
		if err := ValidateTimeRange(m.FromSec, m.ToSec); err != nil {
			return nil, fmt.Errorf("%q: %w", name, err)
		}

		m.Name = name
		out = append(out, m)
	}
	return out, nil
}

// ValidateTimeRange rejects a present to_sec that does not exceed from_sec.
func ValidateTimeRange(fromSec, toSec *float64) error {
	if fromSec != nil && *fromSec < 0 {
		return fmt.Errorf("from_sec must be >= 0")
	}
	if toSec != nil {
		if *toSec < 0 {
			return fmt.Errorf("to_sec must be >= 0")
		}
		if fromSec != nil && *toSec <= *fromSec {
			return ErrBadTimeRange
		}
	}
	return nil
}
