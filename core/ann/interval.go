package ann

import (
	"fmt"

	apperrors "github.com/FocuswithJustin/annokit/core/errors"
)

// Interval is a pair of points with begin strictly before end.
//
// The zero Interval is not valid; build intervals with NewInterval.
type Interval struct {
	begin Point
	end   Point
}

// NewInterval returns the interval [begin, end]. It fails if begin is not
// strictly less than end under the fuzzy ordering, or if one point is a
// rank and the other a time.
func NewInterval(begin, end Point) (Interval, error) {
	if err := checkBounds(begin, end); err != nil {
		return Interval{}, err
	}
	return Interval{begin: begin, end: end}, nil
}

// MustInterval is like NewInterval but panics on error.
func MustInterval(begin, end Point) Interval {
	iv, err := NewInterval(begin, end)
	if err != nil {
		panic(fmt.Sprintf("ann: invalid interval: %v", err))
	}
	return iv
}

func checkBounds(begin, end Point) error {
	if begin.rank != end.rank {
		return apperrors.NewType(end.String(), "point of the same axis as "+begin.String())
	}
	if !begin.Less(end) {
		return apperrors.NewInvariantf("interval", "begin %s must be before end %s", begin, end)
	}
	return nil
}

// Begin returns the first point.
func (i Interval) Begin() Point { return i.begin }

// End returns the last point.
func (i Interval) End() Point { return i.end }

// SetBegin replaces the begin point. The interval is unchanged on error.
func (i *Interval) SetBegin(p Point) error {
	if err := checkBounds(p, i.end); err != nil {
		return err
	}
	i.begin = p
	return nil
}

// SetEnd replaces the end point. The interval is unchanged on error.
func (i *Interval) SetEnd(p Point) error {
	if err := checkBounds(i.begin, p); err != nil {
		return err
	}
	i.end = p
	return nil
}

// Kind implements Localization.
func (i Interval) Kind() Kind { return KindInterval }

// Duration returns end minus begin, with the sum of both radii as margin.
func (i Interval) Duration() Duration {
	return NewDuration(i.end.mid-i.begin.mid, i.begin.radius+i.end.radius)
}

// Points implements Localization.
func (i Interval) Points() []Point { return []Point{i.begin, i.end} }

// Middle returns the time halfway between begin and end.
func (i Interval) Middle() float64 {
	return i.begin.mid + (i.end.mid-i.begin.mid)/2
}

// Equal reports whether both bounds are equal.
func (i Interval) Equal(o Interval) bool {
	return i.begin.Equal(o.begin) && i.end.Equal(o.end)
}

// Contains reports whether p lies in [begin, end], bounds included.
func (i Interval) Contains(p Point) bool {
	return i.begin.LessEqual(p) && p.LessEqual(i.end)
}

// IsBound reports whether p is the begin or the end of the interval.
func (i Interval) IsBound(p Point) bool {
	return i.begin.Equal(p) || i.end.Equal(p)
}

// Overlaps reports whether the two intervals share more than a bound.
func (i Interval) Overlaps(o Interval) bool {
	return o.begin.Less(i.end) && i.begin.Less(o.end)
}

// Inside reports whether i is included in o.
func (i Interval) Inside(o Interval) bool {
	return o.begin.LessEqual(i.begin) && i.end.LessEqual(o.end)
}

func (i Interval) sameAs(l Localization) bool {
	o, ok := l.(Interval)
	return ok && i.Equal(o)
}

func (i Interval) clone() Localization { return i }

func (i Interval) String() string {
	return "[" + i.begin.String() + ", " + i.end.String() + "]"
}
