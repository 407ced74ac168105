package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertComplete(t *testing.T, s *Session) {
	t.Helper()
	hs, es := s.Hypotheses(), s.EvidenceItems()
	require.Equal(t, len(hs)*len(es), s.CellCount(), "matrix must be |H| x |E|")
	for _, h := range hs {
		for _, e := range es {
			c, err := s.Cell(h.ID(), e.ID())
			require.NoError(t, err)
			assert.Same(t, h, c.Hypothesis())
			assert.Same(t, e, c.Evidence())
		}
	}
}

// workedExample builds the two-hypothesis, two-evidence scenario used
// throughout the ACH documentation.
func workedExample(t *testing.T) *Session {
	t.Helper()
	s := NewSession("S0")

	h0 := s.AddHypothesis("X was Y")
	h1 := s.AddHypothesis("X was Z")
	require.Equal(t, HypothesisID("H0"), h0)
	require.Equal(t, HypothesisID("H1"), h1)

	e0, err := s.AddEvidence("first observation", WithCredibility(WeightHigh), WithRelevance(WeightHigh))
	require.NoError(t, err)
	e1, err := s.AddEvidence("second observation", WithCredibility(WeightMedium), WithRelevance(WeightHigh))
	require.NoError(t, err)
	require.Equal(t, EvidenceID("E0"), e0)
	require.Equal(t, EvidenceID("E1"), e1)

	require.NoError(t, s.Rate(h1, e0, Inconsistent))
	require.NoError(t, s.Rate(h1, e1, VeryConsistent))
	require.NoError(t, s.Rate(h0, e0, VeryConsistent))
	require.NoError(t, s.Rate(h0, e1, Consistent))
	return s
}

func TestWorkedExampleScores(t *testing.T) {
	s := workedExample(t)

	h0, err := s.Score("H0")
	require.NoError(t, err)
	assert.Equal(t, 0.0, h0)

	h1, err := s.Score("H1")
	require.NoError(t, err)
	assert.InDelta(t, 2.0, h1, 1e-12)
	assert.Equal(t, 2.0000000000000004, h1)

	ranking := s.Scores()
	require.Len(t, ranking, 2)
	assert.Equal(t, HypothesisID("H0"), ranking[0].Hypothesis)
	assert.Equal(t, "X was Y", ranking[0].Content)
	assert.Equal(t, HypothesisID("H1"), ranking[1].Hypothesis)
}

func TestAddHypothesisExtendsEveryEvidenceColumn(t *testing.T) {
	s := NewSession("S0")
	for i := 0; i < 3; i++ {
		_, err := s.AddEvidence("")
		require.NoError(t, err)
	}
	h0 := s.AddHypothesis("first")
	require.NoError(t, s.Rate(h0, "E1", Inconsistent))
	before := s.CellCount()

	h1 := s.AddHypothesis("second")

	assert.Equal(t, before+3, s.CellCount())
	for _, e := range s.EvidenceItems() {
		c, err := s.Cell(h1, e.ID())
		require.NoError(t, err)
		assert.Equal(t, Unrated, c.Consistency())
	}
	c, err := s.Cell(h0, "E1")
	require.NoError(t, err)
	assert.Equal(t, Inconsistent, c.Consistency(), "existing cells must be untouched")
	assertComplete(t, s)
}

func TestAddEvidenceExtendsEveryHypothesisRow(t *testing.T) {
	s := NewSession("S0")
	s.AddHypothesis("a")
	s.AddHypothesis("b")

	eid, err := s.AddEvidence("obs")
	require.NoError(t, err)

	assert.Equal(t, 2, s.CellCount())
	for _, h := range s.Hypotheses() {
		c, err := s.Cell(h.ID(), eid)
		require.NoError(t, err)
		assert.Equal(t, Unrated, c.Consistency())
	}

	e, err := s.Evidence(eid)
	require.NoError(t, err)
	assert.Equal(t, WeightMedium, e.Credibility())
	assert.Equal(t, WeightMedium, e.Relevance())
}

func TestMatrixStaysCompleteUnderInterleavedGrowth(t *testing.T) {
	s := NewSession("S0")
	for i := 0; i < 5; i++ {
		s.AddHypothesis("")
		assertComplete(t, s)
		_, err := s.AddEvidence("")
		require.NoError(t, err)
		assertComplete(t, s)
	}
	require.NoError(t, s.RemoveHypothesis("H2"))
	assertComplete(t, s)
	require.NoError(t, s.RemoveEvidence("E0"))
	assertComplete(t, s)
	assert.Equal(t, 4*4, s.CellCount())
}

func TestAddEvidenceRejectsInvalidWeight(t *testing.T) {
	s := NewSession("S0")
	s.AddHypothesis("a")

	_, err := s.AddEvidence("bad", WithCredibility(Weight(-1)))
	require.ErrorIs(t, err, ErrInvalidWeight)
	_, err = s.AddEvidence("bad", WithRelevance(Weight(math.NaN())))
	require.ErrorIs(t, err, ErrInvalidWeight)

	assert.Empty(t, s.EvidenceItems())
	assert.Equal(t, 0, s.CellCount())

	eid, err := s.AddEvidence("good")
	require.NoError(t, err)
	assert.Equal(t, EvidenceID("E0"), eid, "failed adds must not consume ids")
}

func TestSupportingRatingsContributeNothing(t *testing.T) {
	for _, level := range []Consistency{Consistent, VeryConsistent, Neutral, Unrated} {
		t.Run(level.String(), func(t *testing.T) {
			s := NewSession("S0")
			h := s.AddHypothesis("")
			e, err := s.AddEvidence("", WithCredibility(WeightHigh), WithRelevance(WeightHigh))
			require.NoError(t, err)
			require.NoError(t, s.Rate(h, e, level))

			score, err := s.Score(h)
			require.NoError(t, err)
			assert.Equal(t, 0.0, score)
		})
	}
}

func TestVeryInconsistentHighHighContributesFour(t *testing.T) {
	s := NewSession("S0")
	h := s.AddHypothesis("")
	e, err := s.AddEvidence("", WithCredibility(WeightHigh), WithRelevance(WeightHigh))
	require.NoError(t, err)
	require.NoError(t, s.Rate(h, e, VeryInconsistent))

	score, err := s.Score(h)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, score, 1e-12)
}

func TestScoreIsSumOfWeightedRatings(t *testing.T) {
	s := NewSession("S0")
	h := s.AddHypothesis("")
	weights := []struct {
		cred, rel Weight
		level     Consistency
	}{
		{WeightLow, WeightHigh, VeryInconsistent},
		{WeightMedium, WeightLow, Inconsistent},
		{Weight(0.3), Weight(2.5), VeryInconsistent},
		{WeightHigh, WeightHigh, Consistent},
	}

	var want float64
	for _, w := range weights {
		e, err := s.AddEvidence("", WithCredibility(w.cred), WithRelevance(w.rel))
		require.NoError(t, err)
		require.NoError(t, s.Rate(h, e, w.level))
		want += float64(w.rel) * float64(w.cred) * w.level.Rating()
	}

	got, err := s.Score(h)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-12)
}

func TestWeightChangesAreVisibleToCells(t *testing.T) {
	s := NewSession("S0")
	h := s.AddHypothesis("")
	e, err := s.AddEvidence("")
	require.NoError(t, err)
	require.NoError(t, s.Rate(h, e, Inconsistent))

	score, _ := s.Score(h)
	assert.Equal(t, 1.0, score)

	require.NoError(t, s.SetEvidenceCredibility(e, WeightHigh))
	require.NoError(t, s.SetEvidenceRelevance(e, WeightHigh))
	score, _ = s.Score(h)
	assert.InDelta(t, 2.0, score, 1e-12)

	require.ErrorIs(t, s.SetEvidenceCredibility(e, Weight(-0.1)), ErrInvalidWeight)
	ev, _ := s.Evidence(e)
	assert.Equal(t, WeightHigh, ev.Credibility(), "rejected weight must not be applied")
}

func TestScoreWithoutEvidenceIsZero(t *testing.T) {
	s := NewSession("S0")
	h := s.AddHypothesis("lonely")
	score, err := s.Score(h)
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestUnknownIDsFailWithoutMutation(t *testing.T) {
	s := workedExample(t)
	before := s.State()

	_, err := s.Score("H9")
	assert.ErrorIs(t, err, ErrUnknownHypothesis)

	assert.ErrorIs(t, s.Rate("H9", "E0", Inconsistent), ErrUnknownHypothesis)
	assert.ErrorIs(t, s.Rate("H0", "E9", Inconsistent), ErrUnknownEvidence)
	assert.ErrorIs(t, s.RenameHypothesis("H9", "x"), ErrUnknownHypothesis)
	assert.ErrorIs(t, s.RenameEvidence("E9", "x"), ErrUnknownEvidence)
	assert.ErrorIs(t, s.SetEvidenceCredibility("E9", WeightLow), ErrUnknownEvidence)
	assert.ErrorIs(t, s.SetEvidenceRelevance("E9", WeightLow), ErrUnknownEvidence)
	assert.ErrorIs(t, s.RemoveHypothesis("H9"), ErrUnknownHypothesis)
	assert.ErrorIs(t, s.RemoveEvidence("E9"), ErrUnknownEvidence)
	assert.ErrorIs(t, s.Rate("H0", "E0", Consistency(99)), ErrInvalidRating)

	assert.Equal(t, before, s.State())
	assertComplete(t, s)
}

func TestRenames(t *testing.T) {
	s := workedExample(t)
	require.NoError(t, s.RenameHypothesis("H0", "X was W"))
	require.NoError(t, s.RenameEvidence("E1", "revised"))

	h, _ := s.Hypothesis("H0")
	e, _ := s.Evidence("E1")
	assert.Equal(t, "X was W", h.Content())
	assert.Equal(t, "revised", e.Content())
}

func TestRemovedIDsAreNotReused(t *testing.T) {
	s := NewSession("S0")
	s.AddHypothesis("")
	s.AddHypothesis("")
	require.NoError(t, s.RemoveHypothesis("H1"))
	assert.Equal(t, HypothesisID("H2"), s.AddHypothesis(""))

	_, err := s.AddEvidence("")
	require.NoError(t, err)
	require.NoError(t, s.RemoveEvidence("E0"))
	eid, err := s.AddEvidence("")
	require.NoError(t, err)
	assert.Equal(t, EvidenceID("E1"), eid)
}

func TestRemoveHypothesisDropsItsScoreOnly(t *testing.T) {
	s := workedExample(t)
	require.NoError(t, s.RemoveHypothesis("H0"))

	_, err := s.Score("H0")
	assert.ErrorIs(t, err, ErrUnknownHypothesis)
	h1, err := s.Score("H1")
	require.NoError(t, err)
	assert.InDelta(t, 2.0, h1, 1e-12)
}

func TestRemoveEvidenceDropsItsContribution(t *testing.T) {
	s := workedExample(t)
	require.NoError(t, s.RemoveEvidence("E0"))

	h1, err := s.Score("H1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, h1)
	assert.Equal(t, 2, s.CellCount())
}

func TestHypothesesKeepInsertionOrder(t *testing.T) {
	s := NewSession("S0")
	for i := 0; i < 12; i++ {
		s.AddHypothesis("")
	}
	var got []HypothesisID
	for _, h := range s.Hypotheses() {
		got = append(got, h.ID())
	}
	assert.Equal(t, HypothesisID("H0"), got[0])
	assert.Equal(t, HypothesisID("H10"), got[10])
	assert.Equal(t, HypothesisID("H11"), got[11])
}

func TestScoresTiesKeepInsertionOrder(t *testing.T) {
	s := NewSession("S0")
	s.AddHypothesis("a")
	s.AddHypothesis("b")
	s.AddHypothesis("c")
	e, err := s.AddEvidence("")
	require.NoError(t, err)
	require.NoError(t, s.Rate("H0", e, VeryInconsistent))

	ranking := s.Scores()
	require.Len(t, ranking, 3)
	assert.Equal(t, []HypothesisID{"H1", "H2", "H0"}, []HypothesisID{ranking[0].Hypothesis, ranking[1].Hypothesis, ranking[2].Hypothesis})
}

func TestCellRateClearsWithUnrated(t *testing.T) {
	s := workedExample(t)
	require.NoError(t, s.Rate("H1", "E0", Unrated))
	c, err := s.Cell("H1", "E0")
	require.NoError(t, err)
	assert.Equal(t, Unrated, c.Consistency())
	assert.Equal(t, 0.0, c.Score())
}
