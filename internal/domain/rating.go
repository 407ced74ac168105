package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Weight is a credibility or relevance multiplier applied to an evidence item.
type Weight float64

const (
	WeightLow    Weight = math.Sqrt2 / 2
	WeightMedium Weight = 1
	WeightHigh   Weight = math.Sqrt2
)

// NewWeight validates a numeric weight. Any finite non-negative value is accepted.
func NewWeight(v float64) (Weight, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidWeight, v)
	}
	return Weight(v), nil
}

// ParseWeight accepts a level name (high, medium, low) or a decimal number.
func ParseWeight(s string) (Weight, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return WeightHigh, nil
	case "medium":
		return WeightMedium, nil
	case "low":
		return WeightLow, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWeight, s)
	}
	return NewWeight(v)
}

func (w Weight) Valid() bool {
	_, err := NewWeight(float64(w))
	return err == nil
}

// Level returns the named level for w, or "" when w is a custom value.
func (w Weight) Level() string {
	switch w {
	case WeightHigh:
		return "high"
	case WeightMedium:
		return "medium"
	case WeightLow:
		return "low"
	}
	return ""
}

func (w Weight) String() string {
	if l := w.Level(); l != "" {
		return l
	}
	return strconv.FormatFloat(float64(w), 'g', -1, 64)
}

func (w Weight) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(w))
}

// UnmarshalJSON accepts either a JSON number or a level string.
func (w *Weight) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := ParseWeight(s)
		if err != nil {
			return err
		}
		*w = parsed
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidWeight, data)
	}
	parsed, err := NewWeight(v)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// Consistency is the judgment of how one evidence item bears on one hypothesis.
type Consistency int

const (
	Unrated Consistency = iota
	VeryInconsistent
	Inconsistent
	Neutral
	Consistent
	VeryConsistent
)

var consistencyTokens = map[Consistency]string{
	Unrated:          "--",
	VeryInconsistent: "II",
	Inconsistent:     "I",
	Neutral:          "N",
	Consistent:       "C",
	VeryConsistent:   "CC",
}

var consistencyNames = map[Consistency]string{
	Unrated:          "UNRATED",
	VeryInconsistent: "VERY_INCONSISTENT",
	Inconsistent:     "INCONSISTENT",
	Neutral:          "NEUTRAL",
	Consistent:       "CONSISTENT",
	VeryConsistent:   "VERY_CONSISTENT",
}

// ParseConsistency accepts a short token (II, I, N, C, CC, --) or a level
// name such as VERY_INCONSISTENT. Matching is case-insensitive.
func ParseConsistency(s string) (Consistency, error) {
	needle := strings.ToUpper(strings.TrimSpace(s))
	for c, tok := range consistencyTokens {
		if needle == tok || needle == consistencyNames[c] {
			return c, nil
		}
	}
	return Unrated, fmt.Errorf("%w: %q", ErrInvalidRating, s)
}

func (c Consistency) Valid() bool {
	_, ok := consistencyTokens[c]
	return ok
}

// Rating is the penalty encoding used by scoring. Supporting judgments
// (CONSISTENT, VERY_CONSISTENT) encode to zero just like NEUTRAL: the score
// accumulates contradictions only and is never reduced by confirmation.
func (c Consistency) Rating() float64 {
	switch c {
	case VeryInconsistent:
		return 2
	case Inconsistent:
		return 1
	case Unrated, Neutral, Consistent, VeryConsistent:
		return 0
	default:
		return 0
	}
}

func (c Consistency) Token() string {
	if tok, ok := consistencyTokens[c]; ok {
		return tok
	}
	return ""
}

func (c Consistency) String() string {
	if name, ok := consistencyNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Consistency(%d)", int(c))
}

func (c Consistency) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRating, int(c))
	}
	return []byte(c.Token()), nil
}

func (c *Consistency) UnmarshalText(text []byte) error {
	parsed, err := ParseConsistency(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
