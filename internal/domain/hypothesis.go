package domain

type HypothesisID string

// Hypothesis is a candidate explanation. It is created only through
// Session.AddHypothesis and its id is never reused within the session.
type Hypothesis struct {
	id      HypothesisID
	content string
}

func (h *Hypothesis) ID() HypothesisID {
	return h.id
}

func (h *Hypothesis) Content() string {
	return h.content
}

func (h *Hypothesis) SetContent(text string) {
	h.content = text
}
