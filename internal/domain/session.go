package domain

import (
	"fmt"
	"sort"
)

type SessionID string

// Session is one ACH analysis: hypotheses, evidence and the complete grid of
// cells between them. For every hypothesis H and evidence E present there is
// exactly one cell (H, E).
//
// A Session is not safe for concurrent use. Callers that share one across
// goroutines must serialize access to it, including calls to Snapshot.
type Session struct {
	id SessionID

	hypotheses      map[HypothesisID]*Hypothesis
	hypothesisOrder []HypothesisID
	evidence        map[EvidenceID]*Evidence
	evidenceOrder   []EvidenceID

	matrix map[HypothesisID]map[EvidenceID]*Cell

	nextHypothesis uint64
	nextEvidence   uint64
}

// HypothesisScore pairs a hypothesis with its aggregate score. Lower is
// better: the score accumulates weighted contradictions.
type HypothesisScore struct {
	Hypothesis HypothesisID `json:"hypothesis"`
	Content    string       `json:"content"`
	Score      float64      `json:"score"`
}

func NewSession(id SessionID) *Session {
	return &Session{
		id:         id,
		hypotheses: make(map[HypothesisID]*Hypothesis),
		evidence:   make(map[EvidenceID]*Evidence),
		matrix:     make(map[HypothesisID]map[EvidenceID]*Cell),
	}
}

func (s *Session) ID() SessionID {
	return s.id
}

// AddHypothesis creates a hypothesis and one unrated cell per existing
// evidence item.
func (s *Session) AddHypothesis(content string) HypothesisID {
	id := HypothesisID(fmt.Sprintf("H%d", s.nextHypothesis))
	s.nextHypothesis++

	h := &Hypothesis{id: id, content: content}
	s.hypotheses[id] = h
	s.hypothesisOrder = append(s.hypothesisOrder, id)

	row := make(map[EvidenceID]*Cell, len(s.evidenceOrder))
	for _, eid := range s.evidenceOrder {
		row[eid] = &Cell{hypothesis: h, evidence: s.evidence[eid]}
	}
	s.matrix[id] = row
	return id
}

// AddEvidence creates an evidence item and one unrated cell per existing
// hypothesis. Credibility and relevance default to MEDIUM. Weights are
// validated before anything is allocated, so a failed call leaves the
// session untouched and does not consume an id.
func (s *Session) AddEvidence(content string, opts ...EvidenceOption) (EvidenceID, error) {
	p := evidenceParams{credibility: WeightMedium, relevance: WeightMedium}
	for _, opt := range opts {
		opt(&p)
	}

	id := EvidenceID(fmt.Sprintf("E%d", s.nextEvidence))
	e, err := newEvidence(id, content, p.credibility, p.relevance)
	if err != nil {
		return "", err
	}
	s.nextEvidence++

	s.evidence[id] = e
	s.evidenceOrder = append(s.evidenceOrder, id)
	for _, hid := range s.hypothesisOrder {
		s.matrix[hid][id] = &Cell{hypothesis: s.hypotheses[hid], evidence: e}
	}
	return id, nil
}

// RemoveHypothesis deletes the hypothesis and its row of cells.
func (s *Session) RemoveHypothesis(id HypothesisID) error {
	if _, ok := s.hypotheses[id]; !ok {
		return unknownHypothesis(id)
	}
	delete(s.hypotheses, id)
	delete(s.matrix, id)
	s.hypothesisOrder = removeID(s.hypothesisOrder, id)
	return nil
}

// RemoveEvidence deletes the evidence item and its column of cells.
func (s *Session) RemoveEvidence(id EvidenceID) error {
	if _, ok := s.evidence[id]; !ok {
		return unknownEvidence(id)
	}
	delete(s.evidence, id)
	for _, row := range s.matrix {
		delete(row, id)
	}
	s.evidenceOrder = removeID(s.evidenceOrder, id)
	return nil
}

func (s *Session) Rate(h HypothesisID, e EvidenceID, level Consistency) error {
	c, err := s.Cell(h, e)
	if err != nil {
		return err
	}
	return c.Rate(level)
}

func (s *Session) RenameHypothesis(id HypothesisID, text string) error {
	h, err := s.Hypothesis(id)
	if err != nil {
		return err
	}
	h.SetContent(text)
	return nil
}

func (s *Session) RenameEvidence(id EvidenceID, text string) error {
	e, err := s.Evidence(id)
	if err != nil {
		return err
	}
	e.SetContent(text)
	return nil
}

func (s *Session) SetEvidenceCredibility(id EvidenceID, w Weight) error {
	e, err := s.Evidence(id)
	if err != nil {
		return err
	}
	return e.SetCredibility(w)
}

func (s *Session) SetEvidenceRelevance(id EvidenceID, w Weight) error {
	e, err := s.Evidence(id)
	if err != nil {
		return err
	}
	return e.SetRelevance(w)
}

// Score sums the cell scores in the hypothesis row. A hypothesis with no
// evidence scores 0.
func (s *Session) Score(id HypothesisID) (float64, error) {
	row, ok := s.matrix[id]
	if !ok {
		return 0, unknownHypothesis(id)
	}
	var total float64
	for _, eid := range s.evidenceOrder {
		total += row[eid].Score()
	}
	return total, nil
}

// Scores returns every hypothesis ranked best-supported first. Ties keep
// insertion order.
func (s *Session) Scores() []HypothesisScore {
	out := make([]HypothesisScore, 0, len(s.hypothesisOrder))
	for _, hid := range s.hypothesisOrder {
		score, _ := s.Score(hid)
		out = append(out, HypothesisScore{
			Hypothesis: hid,
			Content:    s.hypotheses[hid].content,
			Score:      score,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score < out[j].Score
	})
	return out
}

func (s *Session) Hypothesis(id HypothesisID) (*Hypothesis, error) {
	h, ok := s.hypotheses[id]
	if !ok {
		return nil, unknownHypothesis(id)
	}
	return h, nil
}

func (s *Session) Evidence(id EvidenceID) (*Evidence, error) {
	e, ok := s.evidence[id]
	if !ok {
		return nil, unknownEvidence(id)
	}
	return e, nil
}

func (s *Session) Cell(h HypothesisID, e EvidenceID) (*Cell, error) {
	row, ok := s.matrix[h]
	if !ok {
		return nil, unknownHypothesis(h)
	}
	c, ok := row[e]
	if !ok {
		return nil, unknownEvidence(e)
	}
	return c, nil
}

// Hypotheses returns the hypotheses in insertion order.
func (s *Session) Hypotheses() []*Hypothesis {
	out := make([]*Hypothesis, 0, len(s.hypothesisOrder))
	for _, id := range s.hypothesisOrder {
		out = append(out, s.hypotheses[id])
	}
	return out
}

// EvidenceItems returns the evidence in insertion order.
func (s *Session) EvidenceItems() []*Evidence {
	out := make([]*Evidence, 0, len(s.evidenceOrder))
	for _, id := range s.evidenceOrder {
		out = append(out, s.evidence[id])
	}
	return out
}

func (s *Session) CellCount() int {
	n := 0
	for _, row := range s.matrix {
		n += len(row)
	}
	return n
}

// Snapshot returns an independent deep copy under a new session id. Ids,
// content, ratings and id counters are identical; every cell in the copy
// points at the copy's own hypotheses and evidence.
func (s *Session) Snapshot(id SessionID) *Session {
	cp := NewSession(id)
	cp.nextHypothesis = s.nextHypothesis
	cp.nextEvidence = s.nextEvidence

	for _, hid := range s.hypothesisOrder {
		cp.hypotheses[hid] = &Hypothesis{id: hid, content: s.hypotheses[hid].content}
	}
	cp.hypothesisOrder = append([]HypothesisID(nil), s.hypothesisOrder...)

	for _, eid := range s.evidenceOrder {
		src := s.evidence[eid]
		cp.evidence[eid] = &Evidence{
			id:          eid,
			content:     src.content,
			credibility: src.credibility,
			relevance:   src.relevance,
		}
	}
	cp.evidenceOrder = append([]EvidenceID(nil), s.evidenceOrder...)

	for _, hid := range cp.hypothesisOrder {
		row := make(map[EvidenceID]*Cell, len(cp.evidenceOrder))
		for _, eid := range cp.evidenceOrder {
			row[eid] = &Cell{
				hypothesis:  cp.hypotheses[hid],
				evidence:    cp.evidence[eid],
				consistency: s.matrix[hid][eid].consistency,
			}
		}
		cp.matrix[hid] = row
	}
	return cp
}

func unknownHypothesis(id HypothesisID) error {
	return fmt.Errorf("%w: %q", ErrUnknownHypothesis, string(id))
}

func unknownEvidence(id EvidenceID) error {
	return fmt.Errorf("%w: %q", ErrUnknownEvidence, string(id))
}

func removeID[T comparable](ids []T, id T) []T {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
