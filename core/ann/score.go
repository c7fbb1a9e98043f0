package ann

import "strconv"

// Score is an optional confidence value attached to an alternative
// localization, tag or annotation.
type Score struct {
	value float64
	set   bool
}

// NoScore is the absent score.
var NoScore = Score{}

// NewScore returns a set score.
func NewScore(v float64) Score {
	return Score{value: v, set: true}
}

// Value returns the score and whether it is set.
func (s Score) Value() (float64, bool) { return s.value, s.set }

// IsSet reports whether the score is set.
func (s Score) IsSet() bool { return s.set }

// Equal reports whether both scores are unset, or both set to the same value.
func (s Score) Equal(o Score) bool {
	if s.set != o.set {
		return false
	}
	return !s.set || s.value == o.value
}

// beats reports whether s should win over o when picking a best entry.
// Any set score beats an unset one.
func (s Score) beats(o Score) bool {
	switch {
	case !s.set:
		return false
	case !o.set:
		return true
	default:
		return s.value > o.value
	}
}

func (s Score) String() string {
	if !s.set {
		return "none"
	}
	return strconv.FormatFloat(s.value, 'f', -1, 64)
}
