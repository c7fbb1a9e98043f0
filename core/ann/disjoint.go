package ann

import (
	"slices"
	"strings"

	apperrors "github.com/FocuswithJustin/annokit/core/errors"
)

// Disjoint is an ordered set of non-overlapping intervals localizing one
// annotation split across several regions.
type Disjoint struct {
	intervals []Interval
}

// NewDisjoint returns a disjoint localization of at least one interval.
// Intervals are sorted by begin; overlapping intervals are rejected.
func NewDisjoint(intervals ...Interval) (Disjoint, error) {
	if len(intervals) == 0 {
		return Disjoint{}, apperrors.NewInvariant("disjoint", "at least one interval is required")
	}
	var d Disjoint
	for _, iv := range intervals {
		if err := d.Append(iv); err != nil {
			return Disjoint{}, err
		}
	}
	return d, nil
}

// Append inserts an interval at its sorted position. It fails if the
// interval overlaps one already present; d is unchanged on error.
func (d *Disjoint) Append(iv Interval) error {
	if err := checkBounds(iv.begin, iv.end); err != nil {
		return err
	}
	for _, cur := range d.intervals {
		if cur.Overlaps(iv) || cur.Equal(iv) {
			return apperrors.NewInvariantf("disjoint", "interval %s overlaps %s", iv, cur)
		}
		if cur.begin.rank != iv.begin.rank {
			return apperrors.NewType(iv.String(), "interval of the same axis")
		}
	}
	pos, _ := slices.BinarySearchFunc(d.intervals, iv, func(a, b Interval) int {
		switch {
		case a.begin.mid < b.begin.mid:
			return -1
		case a.begin.mid > b.begin.mid:
			return 1
		default:
			return 0
		}
	})
	// A new slice keeps earlier copies of d independent.
	next := make([]Interval, 0, len(d.intervals)+1)
	next = append(next, d.intervals[:pos]...)
	next = append(next, iv)
	next = append(next, d.intervals[pos:]...)
	d.intervals = next
	return nil
}

// Len returns the number of intervals.
func (d Disjoint) Len() int { return len(d.intervals) }

// At returns the i-th interval.
func (d Disjoint) At(i int) (Interval, error) {
	if i < 0 || i >= len(d.intervals) {
		return Interval{}, apperrors.NewIndex(i, len(d.intervals))
	}
	return d.intervals[i], nil
}

// Intervals returns a copy of the intervals.
func (d Disjoint) Intervals() []Interval {
	return slices.Clone(d.intervals)
}

// Kind implements Localization.
func (d Disjoint) Kind() Kind { return KindDisjoint }

// Begin returns the begin of the first interval.
func (d Disjoint) Begin() Point {
	if len(d.intervals) == 0 {
		return Point{}
	}
	return d.intervals[0].begin
}

// End returns the highest end over all intervals.
func (d Disjoint) End() Point {
	if len(d.intervals) == 0 {
		return Point{}
	}
	end := d.intervals[0].end
	for _, iv := range d.intervals[1:] {
		if iv.end.mid > end.mid {
			end = iv.end
		}
	}
	return end
}

// Duration returns the sum of the interval durations.
func (d Disjoint) Duration() Duration {
	var total Duration
	for _, iv := range d.intervals {
		total = total.Add(iv.Duration())
	}
	return total
}

// Points implements Localization.
func (d Disjoint) Points() []Point {
	points := make([]Point, 0, 2*len(d.intervals))
	for _, iv := range d.intervals {
		points = append(points, iv.begin, iv.end)
	}
	return points
}

// Equal reports whether both hold the same intervals.
func (d Disjoint) Equal(o Disjoint) bool {
	return slices.EqualFunc(d.intervals, o.intervals, Interval.Equal)
}

func (d Disjoint) sameAs(l Localization) bool {
	o, ok := l.(Disjoint)
	return ok && d.Equal(o)
}

func (d Disjoint) clone() Localization {
	return Disjoint{intervals: slices.Clone(d.intervals)}
}

func (d Disjoint) String() string {
	parts := make([]string, len(d.intervals))
	for i, iv := range d.intervals {
		parts[i] = iv.String()
	}
	return "{" + strings.Join(parts, " ") + "}"
}
