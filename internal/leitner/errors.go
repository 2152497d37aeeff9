package leitner

import "errors"

// Sentinel errors for the leitner package. Check with errors.Is.
var (
	ErrInvalidResult     = errors.New("leitner: invalid result")
	ErrInvalidDifficulty = errors.New("leitner: invalid difficulty")
)
