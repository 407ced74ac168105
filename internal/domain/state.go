package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// SessionState is the serializable form of a Session, including the id
// counters so a restored session never reissues an id.
type SessionState struct {
	ID             SessionID         `json:"id"`
	NextHypothesis uint64            `json:"next_hypothesis"`
	NextEvidence   uint64            `json:"next_evidence"`
	Hypotheses     []HypothesisState `json:"hypotheses"`
	Evidence       []EvidenceState   `json:"evidence"`
	Cells          []CellState       `json:"cells"`
}

type HypothesisState struct {
	ID      HypothesisID `json:"id"`
	Content string       `json:"content"`
}

type EvidenceState struct {
	ID          EvidenceID `json:"id"`
	Content     string     `json:"content"`
	Credibility Weight     `json:"credibility"`
	Relevance   Weight     `json:"relevance"`
}

type CellState struct {
	Hypothesis  HypothesisID `json:"hypothesis"`
	Evidence    EvidenceID   `json:"evidence"`
	Consistency Consistency  `json:"consistency"`
}

// State captures the session. Only rated cells are listed; every other pair
// is unrated by construction.
func (s *Session) State() SessionState {
	st := SessionState{
		ID:             s.id,
		NextHypothesis: s.nextHypothesis,
		NextEvidence:   s.nextEvidence,
		Hypotheses:     make([]HypothesisState, 0, len(s.hypothesisOrder)),
		Evidence:       make([]EvidenceState, 0, len(s.evidenceOrder)),
		Cells:          []CellState{},
	}
	for _, h := range s.Hypotheses() {
		st.Hypotheses = append(st.Hypotheses, HypothesisState{ID: h.id, Content: h.content})
	}
	for _, e := range s.EvidenceItems() {
		st.Evidence = append(st.Evidence, EvidenceState{
			ID:          e.id,
			Content:     e.content,
			Credibility: e.credibility,
			Relevance:   e.relevance,
		})
	}
	for _, hid := range s.hypothesisOrder {
		for _, eid := range s.evidenceOrder {
			c := s.matrix[hid][eid]
			if c.consistency == Unrated {
				continue
			}
			st.Cells = append(st.Cells, CellState{Hypothesis: hid, Evidence: eid, Consistency: c.consistency})
		}
	}
	return st
}

// RestoreSession rebuilds a Session from its state. Ids must be well formed,
// unique and below their counters; cells must reference known ids.
func RestoreSession(st SessionState) (*Session, error) {
	if st.ID == "" {
		return nil, fmt.Errorf("%w: missing session id", ErrInvalidState)
	}
	s := NewSession(st.ID)
	s.nextHypothesis = st.NextHypothesis
	s.nextEvidence = st.NextEvidence

	for _, hs := range st.Hypotheses {
		seq, ok := parseSeq("H", string(hs.ID))
		if !ok || seq >= st.NextHypothesis {
			return nil, fmt.Errorf("%w: hypothesis id %q", ErrInvalidState, hs.ID)
		}
		if _, dup := s.hypotheses[hs.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate hypothesis %q", ErrInvalidState, hs.ID)
		}
		s.hypotheses[hs.ID] = &Hypothesis{id: hs.ID, content: hs.Content}
		s.hypothesisOrder = append(s.hypothesisOrder, hs.ID)
	}

	for _, es := range st.Evidence {
		seq, ok := parseSeq("E", string(es.ID))
		if !ok || seq >= st.NextEvidence {
			return nil, fmt.Errorf("%w: evidence id %q", ErrInvalidState, es.ID)
		}
		if _, dup := s.evidence[es.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate evidence %q", ErrInvalidState, es.ID)
		}
		e, err := newEvidence(es.ID, es.Content, es.Credibility, es.Relevance)
		if err != nil {
			return nil, fmt.Errorf("%w: evidence %q: %w", ErrInvalidState, es.ID, err)
		}
		s.evidence[es.ID] = e
		s.evidenceOrder = append(s.evidenceOrder, es.ID)
	}

	for _, hid := range s.hypothesisOrder {
		row := make(map[EvidenceID]*Cell, len(s.evidenceOrder))
		for _, eid := range s.evidenceOrder {
			row[eid] = &Cell{hypothesis: s.hypotheses[hid], evidence: s.evidence[eid]}
		}
		s.matrix[hid] = row
	}

	for _, cs := range st.Cells {
		c, err := s.Cell(cs.Hypothesis, cs.Evidence)
		if err != nil {
			return nil, fmt.Errorf("%w: cell: %w", ErrInvalidState, err)
		}
		if err := c.Rate(cs.Consistency); err != nil {
			return nil, fmt.Errorf("%w: cell: %w", ErrInvalidState, err)
		}
	}
	return s, nil
}

func parseSeq(prefix, id string) (uint64, bool) {
	digits, ok := strings.CutPrefix(id, prefix)
	if !ok || digits == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil || strconv.FormatUint(n, 10) != digits {
		return 0, false
	}
	return n, true
}
