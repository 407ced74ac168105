package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotCopiesEverythingButIdentity(t *testing.T) {
	orig := workedExample(t)
	cp := orig.Snapshot("S7")

	assert.Equal(t, SessionID("S7"), cp.ID())
	assert.Equal(t, SessionID("S0"), orig.ID())

	want := orig.State()
	want.ID = "S7"
	if diff := cmp.Diff(want, cp.State()); diff != "" {
		t.Fatalf("snapshot state mismatch (-want +got):\n%s", diff)
	}
	assertComplete(t, cp)
}

func TestSnapshotIsIndependent(t *testing.T) {
	orig := workedExample(t)
	cp := orig.Snapshot("S1")

	require.NoError(t, cp.RenameHypothesis("H0", "renamed in copy"))
	require.NoError(t, cp.SetEvidenceCredibility("E0", WeightLow))
	require.NoError(t, cp.Rate("H0", "E0", VeryInconsistent))
	cp.AddHypothesis("only in copy")

	h, _ := orig.Hypothesis("H0")
	assert.Equal(t, "X was Y", h.Content())
	e, _ := orig.Evidence("E0")
	assert.Equal(t, WeightHigh, e.Credibility())
	c, _ := orig.Cell("H0", "E0")
	assert.Equal(t, VeryConsistent, c.Consistency())
	assert.Len(t, orig.Hypotheses(), 2)

	require.NoError(t, orig.RenameEvidence("E1", "renamed in original"))
	require.NoError(t, orig.RemoveEvidence("E0"))
	ce, err := cp.Evidence("E1")
	require.NoError(t, err)
	assert.Equal(t, "second observation", ce.Content())
	_, err = cp.Evidence("E0")
	assert.NoError(t, err)
	assertComplete(t, orig)
	assertComplete(t, cp)
}

func TestSnapshotCellsPointIntoTheCopy(t *testing.T) {
	orig := workedExample(t)
	cp := orig.Snapshot("S1")

	for _, h := range cp.Hypotheses() {
		for _, e := range cp.EvidenceItems() {
			c, err := cp.Cell(h.ID(), e.ID())
			require.NoError(t, err)
			oc, _ := orig.Cell(h.ID(), e.ID())
			assert.NotSame(t, oc, c)
			assert.NotSame(t, oc.Evidence(), c.Evidence())
			assert.NotSame(t, oc.Hypothesis(), c.Hypothesis())
		}
	}
}

func TestSnapshotKeepsCounters(t *testing.T) {
	orig := NewSession("S0")
	orig.AddHypothesis("")
	orig.AddHypothesis("")
	require.NoError(t, orig.RemoveHypothesis("H1"))

	cp := orig.Snapshot("S1")
	assert.Equal(t, HypothesisID("H2"), cp.AddHypothesis(""))
}
