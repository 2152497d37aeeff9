package leitner

import (
	"encoding"
	"encoding/json"
	"fmt"
)

// Result is the outcome the user reports for a single review.
type Result int

const (
	Correct   Result = iota + 1 // Recalled and answered correctly.
	Partially                   // Got part of the way there.
	Incorrect                   // Answered incorrectly.
	Forgotten                   // No recollection at all.
)

// Difficulty is the user's own assessment of how hard the question felt.
// The zero value means "not reported" and is treated as Medium.
type Difficulty int

const (
	Easy   Difficulty = iota + 1
	Medium
	Hard
	Again // Wants to relearn from scratch; scheduled like Hard.
)

var (
	resultNames = [...]string{Correct: "correct", Partially: "partially", Incorrect: "incorrect", Forgotten: "forgotten"}
	resultByName = map[string]Result{
		"correct":   Correct,
		"partially": Partially,
		"incorrect": Incorrect,
		"forgotten": Forgotten,
	}
	difficultyNames = [...]string{Easy: "easy", Medium: "medium", Hard: "hard", Again: "again"}
	difficultyByName = map[string]Difficulty{
		"easy":   Easy,
		"medium": Medium,
		"hard":   Hard,
		"again":  Again,
	}
)

var (
	_ fmt.Stringer             = Result(0)
	_ encoding.TextMarshaler   = Result(0)
	_ encoding.TextUnmarshaler = (*Result)(nil)
	_ fmt.Stringer             = Difficulty(0)
	_ encoding.TextMarshaler   = Difficulty(0)
	_ encoding.TextUnmarshaler = (*Difficulty)(nil)
)

// IsValid reports whether r is one of the four review outcomes.
func (r Result) IsValid() bool {
	return r >= Correct && r <= Forgotten
}

func (r Result) String() string {
	if r.IsValid() {
		return resultNames[r]
	}
	return fmt.Sprintf("Result(%d)", int(r))
}

// MarshalText implements encoding.TextMarshaler.
func (r Result) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidResult, int(r))
	}
	return []byte(resultNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Result) UnmarshalText(text []byte) error {
	v, ok := resultByName[string(text)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidResult, text)
	}
	*r = v
	return nil
}

// MarshalJSON implements json.Marshaler. Result serializes as a JSON string.
func (r Result) MarshalJSON() ([]byte, error) {
	text, err := r.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Result) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidResult, data)
	}
	return r.UnmarshalText([]byte(s))
}

// IsValid reports whether d is one of the four difficulty ratings.
func (d Difficulty) IsValid() bool {
	return d >= Easy && d <= Again
}

func (d Difficulty) String() string {
	if d.IsValid() {
		return difficultyNames[d]
	}
	return fmt.Sprintf("Difficulty(%d)", int(d))
}

// MarshalText implements encoding.TextMarshaler.
func (d Difficulty) MarshalText() ([]byte, error) {
	if !d.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDifficulty, int(d))
	}
	return []byte(difficultyNames[d]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Difficulty) UnmarshalText(text []byte) error {
	v, ok := difficultyByName[string(text)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidDifficulty, text)
	}
	*d = v
	return nil
}

// MarshalJSON implements json.Marshaler. Difficulty serializes as a JSON string.
func (d Difficulty) MarshalJSON() ([]byte, error) {
	text, err := d.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Difficulty) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDifficulty, data)
	}
	return d.UnmarshalText([]byte(s))
}
