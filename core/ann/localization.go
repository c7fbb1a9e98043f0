package ann

import (
	"math"
	"strconv"
)

// Kind identifies the localization subtype shared by a Location or a Tier.
type Kind int

// Localization kinds.
const (
	KindNone Kind = iota
	KindPoint
	KindInterval
	KindDisjoint
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindInterval:
		return "interval"
	case KindDisjoint:
		return "disjoint"
	default:
		return "none"
	}
}

// Localization is implemented by Point, Interval and Disjoint.
// The set is closed: only this package provides implementations.
type Localization interface {
	// Kind returns the localization subtype.
	Kind() Kind

	// Begin returns the lowest point.
	Begin() Point

	// End returns the highest point.
	End() Point

	// Duration returns the covered duration with its margin of error.
	Duration() Duration

	// Points returns every boundary point, in order.
	Points() []Point

	String() string

	sameAs(Localization) bool
	clone() Localization
}

// LocEqual reports whether two localizations have the same kind and
// fuzzy-equal boundaries.
func LocEqual(a, b Localization) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.sameAs(b)
}

// Duration is a length of time (or of ranks) with a margin of error.
type Duration struct {
	value  float64
	margin float64
}

// NewDuration returns a duration. A negative margin is taken as its
// absolute value.
func NewDuration(value, margin float64) Duration {
	return Duration{value: value, margin: math.Abs(margin)}
}

// Value returns the duration.
func (d Duration) Value() float64 { return d.value }

// Margin returns the margin of error.
func (d Duration) Margin() float64 { return d.margin }

// Equal reports whether the two durations are equal within their margins.
func (d Duration) Equal(o Duration) bool {
	return math.Abs(d.value-o.value) <= d.margin+o.margin
}

// Less reports whether d is shorter than o beyond their margins.
func (d Duration) Less(o Duration) bool {
	return d.value+d.margin < o.value-o.margin
}

// Greater reports whether d is longer than o beyond their margins.
func (d Duration) Greater(o Duration) bool {
	return o.Less(d)
}

// Add returns the sum of two durations; margins add up.
func (d Duration) Add(o Duration) Duration {
	return Duration{value: d.value + o.value, margin: d.margin + o.margin}
}

func (d Duration) String() string {
	s := strconv.FormatFloat(d.value, 'f', -1, 64)
	if d.margin == 0 {
		return s
	}
	return s + "±" + strconv.FormatFloat(d.margin, 'f', -1, 64)
}
