package domain

import "errors"

var (
	ErrUnknownHypothesis = errors.New("unknown hypothesis")
	ErrUnknownEvidence   = errors.New("unknown evidence")
	ErrInvalidRating     = errors.New("invalid consistency rating")
	ErrInvalidWeight     = errors.New("invalid weight")
	ErrInvalidState      = errors.New("invalid session state")
)
