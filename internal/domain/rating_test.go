package domain

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestWeightLevels(t *testing.T) {
	if float64(WeightMedium) != 1 {
		t.Errorf("medium = %v, want 1", float64(WeightMedium))
	}
	if math.Abs(float64(WeightHigh)-math.Sqrt2) > 1e-15 {
		t.Errorf("high = %v, want sqrt(2)", float64(WeightHigh))
	}
	if math.Abs(float64(WeightLow)-math.Sqrt2/2) > 1e-15 {
		t.Errorf("low = %v, want sqrt(2)/2", float64(WeightLow))
	}
}

func TestParseWeight(t *testing.T) {
	tests := []struct {
		in      string
		want    Weight
		wantErr bool
	}{
		{"high", WeightHigh, false},
		{"HIGH", WeightHigh, false},
		{" medium ", WeightMedium, false},
		{"low", WeightLow, false},
		{"0.5", 0.5, false},
		{"0", 0, false},
		{"-1", 0, true},
		{"NaN", 0, true},
		{"+Inf", 0, true},
		{"very high", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWeight(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidWeight) {
					t.Fatalf("ParseWeight(%q) error = %v, want ErrInvalidWeight", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseWeight(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseWeight(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestWeightJSON(t *testing.T) {
	var w struct {
		Credibility Weight `json:"credibility"`
		Relevance   Weight `json:"relevance"`
	}
	if err := json.Unmarshal([]byte(`{"credibility":"high","relevance":0.25}`), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if w.Credibility != WeightHigh || w.Relevance != 0.25 {
		t.Fatalf("got %+v", w)
	}

	var bad Weight
	if err := json.Unmarshal([]byte(`"enormous"`), &bad); !errors.Is(err, ErrInvalidWeight) {
		t.Fatalf("expected ErrInvalidWeight for bad level, got %v", err)
	}
	if err := json.Unmarshal([]byte(`-2`), &bad); !errors.Is(err, ErrInvalidWeight) {
		t.Fatalf("expected ErrInvalidWeight for negative, got %v", err)
	}

	data, err := json.Marshal(WeightHigh)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Weight
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != WeightHigh || back.Level() != "high" {
		t.Errorf("round trip = %v (%q), want high", back, back.Level())
	}
}

func TestWeightString(t *testing.T) {
	if WeightLow.String() != "low" {
		t.Errorf("low String() = %q", WeightLow.String())
	}
	if Weight(0.3).String() != "0.3" {
		t.Errorf("custom String() = %q", Weight(0.3).String())
	}
}

func TestConsistencyRating(t *testing.T) {
	tests := []struct {
		level Consistency
		want  float64
	}{
		{Unrated, 0},
		{VeryInconsistent, 2},
		{Inconsistent, 1},
		{Neutral, 0},
		{Consistent, 0},
		{VeryConsistent, 0},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := tt.level.Rating(); got != tt.want {
				t.Errorf("%v.Rating() = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestParseConsistency(t *testing.T) {
	tests := []struct {
		in   string
		want Consistency
	}{
		{"II", VeryInconsistent},
		{"I", Inconsistent},
		{"N", Neutral},
		{"C", Consistent},
		{"CC", VeryConsistent},
		{"--", Unrated},
		{"cc", VeryConsistent},
		{"very_inconsistent", VeryInconsistent},
		{"NEUTRAL", Neutral},
		{"UNRATED", Unrated},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseConsistency(tt.in)
			if err != nil {
				t.Fatalf("ParseConsistency(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseConsistency(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	for _, bad := range []string{"", "X", "III", "consistentish"} {
		if _, err := ParseConsistency(bad); !errors.Is(err, ErrInvalidRating) {
			t.Errorf("ParseConsistency(%q) error = %v, want ErrInvalidRating", bad, err)
		}
	}
}

func TestConsistencyText(t *testing.T) {
	for c := range consistencyTokens {
		text, err := c.MarshalText()
		if err != nil {
			t.Fatalf("%v.MarshalText(): %v", c, err)
		}
		var back Consistency
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if back != c {
			t.Errorf("round trip %v -> %q -> %v", c, text, back)
		}
	}

	if _, err := Consistency(42).MarshalText(); !errors.Is(err, ErrInvalidRating) {
		t.Errorf("expected ErrInvalidRating for out-of-range level, got %v", err)
	}
	if Consistency(42).Valid() {
		t.Error("Consistency(42) should not be valid")
	}
}
