package domain

import "fmt"

// Cell is the judgment linking one hypothesis to one evidence item. It never
// owns either side; both pointers belong to the enclosing Session.
type Cell struct {
	hypothesis  *Hypothesis
	evidence    *Evidence
	consistency Consistency
}

func (c *Cell) Hypothesis() *Hypothesis {
	return c.hypothesis
}

func (c *Cell) Evidence() *Evidence {
	return c.evidence
}

func (c *Cell) Consistency() Consistency {
	return c.consistency
}

func (c *Cell) Rating() float64 {
	return c.consistency.Rating()
}

// Rate sets the judgment. Unrated is allowed and clears a previous rating.
func (c *Cell) Rate(level Consistency) error {
	if !level.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidRating, int(level))
	}
	c.consistency = level
	return nil
}

// Score is relevance x credibility x rating, derived on every call.
func (c *Cell) Score() float64 {
	return float64(c.evidence.relevance) * float64(c.evidence.credibility) * c.consistency.Rating()
}
