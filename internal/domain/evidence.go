package domain

type EvidenceID string

// Evidence is an information item weighted by credibility and relevance.
// Cells hold a pointer to it, so weight changes show up in every score
// computed afterwards.
type Evidence struct {
	id          EvidenceID
	content     string
	credibility Weight
	relevance   Weight
}

func newEvidence(id EvidenceID, content string, credibility, relevance Weight) (*Evidence, error) {
	if _, err := NewWeight(float64(credibility)); err != nil {
		return nil, err
	}
	if _, err := NewWeight(float64(relevance)); err != nil {
		return nil, err
	}
	return &Evidence{
		id:          id,
		content:     content,
		credibility: credibility,
		relevance:   relevance,
	}, nil
}

func (e *Evidence) ID() EvidenceID {
	return e.id
}

func (e *Evidence) Content() string {
	return e.content
}

func (e *Evidence) Credibility() Weight {
	return e.credibility
}

func (e *Evidence) Relevance() Weight {
	return e.relevance
}

func (e *Evidence) SetContent(text string) {
	e.content = text
}

func (e *Evidence) SetCredibility(w Weight) error {
	if _, err := NewWeight(float64(w)); err != nil {
		return err
	}
	e.credibility = w
	return nil
}

func (e *Evidence) SetRelevance(w Weight) error {
	if _, err := NewWeight(float64(w)); err != nil {
		return err
	}
	e.relevance = w
	return nil
}

// EvidenceOption customizes evidence created by Session.AddEvidence.
type EvidenceOption func(*evidenceParams)

type evidenceParams struct {
	credibility Weight
	relevance   Weight
}

// WithCredibility overrides the default MEDIUM credibility.
func WithCredibility(w Weight) EvidenceOption {
	return func(p *evidenceParams) { p.credibility = w }
}

// WithRelevance overrides the default MEDIUM relevance.
func WithRelevance(w Weight) EvidenceOption {
	return func(p *evidenceParams) { p.relevance = w }
}
