package ann

import (
	"fmt"
	"math"
	"strconv"

	apperrors "github.com/FocuswithJustin/annokit/core/errors"
)

// Point is an instant on a 1-D axis, either a time in seconds or a rank,
// with a non-negative radius expressing its vagueness.
//
// Point is a value type: assigning it copies it.
type Point struct {
	mid    float64
	radius float64
	rank   bool
}

// NewPoint returns a time point. The midpoint and radius must be finite,
// the midpoint and the radius non-negative.
func NewPoint(mid, radius float64) (Point, error) {
	if err := checkNumber(mid); err != nil {
		return Point{}, err
	}
	if err := checkNumber(radius); err != nil {
		return Point{}, err
	}
	p := Point{}
	if err := p.SetMidpoint(mid); err != nil {
		return Point{}, err
	}
	if err := p.SetRadius(radius); err != nil {
		return Point{}, err
	}
	return p, nil
}

// NewRankPoint returns a point on a rank axis (e.g. a token index).
func NewRankPoint(rank, radius int) (Point, error) {
	p, err := NewPoint(float64(rank), float64(radius))
	if err != nil {
		return Point{}, err
	}
	p.rank = true
	return p, nil
}

// MustPoint is like NewPoint but panics on error.
// This is intended for tests and literal construction.
func MustPoint(mid, radius float64) Point {
	p, err := NewPoint(mid, radius)
	if err != nil {
		panic(fmt.Sprintf("ann: invalid point: %v", err))
	}
	return p
}

func checkNumber(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return apperrors.NewType(strconv.FormatFloat(v, 'g', -1, 64), "finite number")
	}
	return nil
}

// Midpoint returns the center of the point.
func (p Point) Midpoint() float64 { return p.mid }

// Radius returns the vagueness of the point.
func (p Point) Radius() float64 { return p.radius }

// IsRank reports whether the point is on a rank axis rather than time.
func (p Point) IsRank() bool { return p.rank }

// SetMidpoint changes the midpoint in place.
func (p *Point) SetMidpoint(mid float64) error {
	if err := checkNumber(mid); err != nil {
		return err
	}
	if p.rank && mid != math.Trunc(mid) {
		return apperrors.NewType(strconv.FormatFloat(mid, 'g', -1, 64), "int")
	}
	if mid < 0 {
		return apperrors.NewInvariantf("point", "midpoint %v is negative", mid)
	}
	p.mid = mid
	return nil
}

// SetRadius changes the radius in place.
func (p *Point) SetRadius(radius float64) error {
	if err := checkNumber(radius); err != nil {
		return err
	}
	if p.rank && radius != math.Trunc(radius) {
		return apperrors.NewType(strconv.FormatFloat(radius, 'g', -1, 64), "int")
	}
	if radius < 0 {
		return apperrors.NewInvariantf("point", "radius %v is negative", radius)
	}
	p.radius = radius
	return nil
}

// Equal reports whether the vagueness windows of p and o overlap.
func (p Point) Equal(o Point) bool {
	return math.Abs(p.mid-o.mid) <= p.radius+o.radius
}

// Less reports whether p's window ends strictly before o's begins.
func (p Point) Less(o Point) bool {
	return p.mid+p.radius < o.mid-o.radius
}

// Greater reports whether p's window begins strictly after o's ends.
func (p Point) Greater(o Point) bool {
	return o.Less(p)
}

// LessEqual reports whether p is less than or equal to o.
func (p Point) LessEqual(o Point) bool {
	return !p.Greater(o)
}

// GreaterEqual reports whether p is greater than or equal to o.
func (p Point) GreaterEqual(o Point) bool {
	return !p.Less(o)
}

// Compare returns -1, 0 or +1 under the fuzzy ordering.
func (p Point) Compare(o Point) int {
	switch {
	case p.Less(o):
		return -1
	case p.Greater(o):
		return 1
	default:
		return 0
	}
}

// Kind implements Localization.
func (p Point) Kind() Kind { return KindPoint }

// Begin implements Localization.
func (p Point) Begin() Point { return p }

// End implements Localization.
func (p Point) End() Point { return p }

// Duration implements Localization. A point lasts zero, with a margin
// covering its whole window.
func (p Point) Duration() Duration {
	return NewDuration(0, 2*p.radius)
}

// Points implements Localization.
func (p Point) Points() []Point { return []Point{p} }

func (p Point) sameAs(l Localization) bool {
	o, ok := l.(Point)
	return ok && p.Equal(o)
}

func (p Point) clone() Localization { return p }

// String returns the midpoint, followed by the radius when non-zero.
func (p Point) String() string {
	mid := strconv.FormatFloat(p.mid, 'f', -1, 64)
	if p.radius == 0 {
		return mid
	}
	return mid + "±" + strconv.FormatFloat(p.radius, 'f', -1, 64)
}
