package service

import (
	"sort"
	"strconv"
	"strings"

	"github.com/achworks/achd/internal/domain"
)

// SessionView is the client-facing picture of a session. Matrix maps
// hypothesis id to evidence id to consistency token.
type SessionView struct {
	ID         domain.SessionID                                     `json:"id"`
	Hypotheses []HypothesisView                                     `json:"hypotheses"`
	Evidence   []EvidenceView                                       `json:"evidence"`
	Matrix     map[domain.HypothesisID]map[domain.EvidenceID]string `json:"matrix"`
	Ranking    []domain.HypothesisScore                             `json:"ranking"`
}

type HypothesisView struct {
	ID      domain.HypothesisID `json:"id"`
	Content string              `json:"content"`
	Score   float64             `json:"score"`
}

type EvidenceView struct {
	ID               domain.EvidenceID `json:"id"`
	Content          string            `json:"content"`
	Credibility      domain.Weight     `json:"credibility"`
	CredibilityLevel string            `json:"credibility_level,omitempty"`
	Relevance        domain.Weight     `json:"relevance"`
	RelevanceLevel   string            `json:"relevance_level,omitempty"`
}

func newSessionView(sess *domain.Session) *SessionView {
	hs := sess.Hypotheses()
	es := sess.EvidenceItems()

	v := &SessionView{
		ID:         sess.ID(),
		Hypotheses: make([]HypothesisView, 0, len(hs)),
		Evidence:   make([]EvidenceView, 0, len(es)),
		Matrix:     make(map[domain.HypothesisID]map[domain.EvidenceID]string, len(hs)),
		Ranking:    sess.Scores(),
	}

	for _, e := range es {
		v.Evidence = append(v.Evidence, EvidenceView{
			ID:               e.ID(),
			Content:          e.Content(),
			Credibility:      e.Credibility(),
			CredibilityLevel: e.Credibility().Level(),
			Relevance:        e.Relevance(),
			RelevanceLevel:   e.Relevance().Level(),
		})
	}

	for _, h := range hs {
		score, _ := sess.Score(h.ID())
		v.Hypotheses = append(v.Hypotheses, HypothesisView{ID: h.ID(), Content: h.Content(), Score: score})

		row := make(map[domain.EvidenceID]string, len(es))
		for _, e := range es {
			c, err := sess.Cell(h.ID(), e.ID())
			if err != nil {
				continue
			}
			row[e.ID()] = c.Consistency().Token()
		}
		v.Matrix[h.ID()] = row
	}
	return v
}

// sortSessionStates orders states by the numeric part of their id so the
// persisted blob is stable across saves.
func sortSessionStates(states []domain.SessionState) {
	seq := func(id domain.SessionID) uint64 {
		n, err := strconv.ParseUint(strings.TrimPrefix(string(id), "S"), 10, 64)
		if err != nil {
			return 0
		}
		return n
	}
	sort.Slice(states, func(i, j int) bool {
		a, b := seq(states[i].ID), seq(states[j].ID)
		if a != b {
			return a < b
		}
		return states[i].ID < states[j].ID
	})
}
