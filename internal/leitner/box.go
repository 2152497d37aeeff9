package leitner

// BoxInfo describes one tier of the cardbox ladder.
type BoxInfo struct {
	Box          int    `json:"box"`
	IntervalDays int    `json:"intervalDays"`
	Label        string `json:"label"`
}

// Boxes is the five-tier ladder. Box 1 holds the newest / least retained
// questions, box 5 the most mastered ones.
var Boxes = [...]BoxInfo{
	{Box: 1, IntervalDays: 1, Label: "urgent"},
	{Box: 2, IntervalDays: 3, Label: "daily"},
	{Box: 3, IntervalDays: 7, Label: "weekly"},
	{Box: 4, IntervalDays: 14, Label: "biweekly"},
	{Box: 5, IntervalDays: 30, Label: "monthly"},
}

const (
	MinBox = 1
	MaxBox = 5
)

// ClampBox forces box into the valid [MinBox, MaxBox] range.
func ClampBox(box int) int {
	if box < MinBox {
		return MinBox
	}
	if box > MaxBox {
		return MaxBox
	}
	return box
}

// BaseInterval returns the base interval in days for a box. Out-of-range
// boxes fall back to one day.
func BaseInterval(box int) int {
	for _, b := range Boxes {
		if b.Box == box {
			return b.IntervalDays
		}
	}
	return 1
}

// BoxByNumber returns the tier config for a box, or false if out of range.
func BoxByNumber(box int) (BoxInfo, bool) {
	for _, b := range Boxes {
		if b.Box == box {
			return b, true
		}
	}
	return BoxInfo{}, false
}
