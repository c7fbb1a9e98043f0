package ann

import (
	"math"
	"slices"
	"sort"

	apperrors "github.com/FocuswithJustin/annokit/core/errors"
)

// Bound selects which bounds of an interval count as inside for Mindex.
type Bound int

// Bound values.
const (
	BoundIncludeBegin Bound = -1
	BoundExclude      Bound = 0
	BoundIncludeEnd   Bound = 1
	BoundIncludeBoth  Bound = 2
)

// firstEndingAfter returns the index of the first annotation whose highest
// localization is not before p. Tiers accepting overlaps have no monotonic
// end, so the search starts at 0 for them.
func (t *Tier) firstEndingAfter(p Point) int {
	return firstEndingIn(t.anns, p, t.caps.OverlapsSupport)
}

func firstEndingIn(anns []*Annotation, p Point, overlaps bool) int {
	if overlaps {
		return 0
	}
	return sort.Search(len(anns), func(i int) bool {
		return !anns[i].location.Highest().Less(p)
	})
}

// Index returns the index of the annotation localized at point p, or -1.
// It is only meaningful for point tiers.
func (t *Tier) Index(p Point) int {
	if !t.IsPoint() {
		return -1
	}
	i := sort.Search(len(t.anns), func(i int) bool { return !t.anns[i].location.Lowest().Less(p) })
	for ; i < len(t.anns); i++ {
		a := t.anns[i]
		if a.location.Lowest().Greater(p) {
			break
		}
		if a.location.Contains(p) {
			return i
		}
	}
	return -1
}

// Lindex returns the index of the first interval starting at p, or -1.
func (t *Tier) Lindex(p Point) int {
	if t.IsPoint() {
		return -1
	}
	i := sort.Search(len(t.anns), func(i int) bool { return !t.anns[i].location.Lowest().Less(p) })
	for ; i < len(t.anns); i++ {
		lo := t.anns[i].location.Lowest()
		if lo.Equal(p) {
			return i
		}
		if lo.Greater(p) {
			break
		}
	}
	return -1
}

// Rindex returns the index of the last interval ending at p, or -1.
func (t *Tier) Rindex(p Point) int {
	if t.IsPoint() {
		return -1
	}
	found := -1
	for i := t.firstEndingAfter(p); i < len(t.anns); i++ {
		a := t.anns[i]
		if a.location.Lowest().Greater(p) {
			break
		}
		if a.location.Highest().Equal(p) {
			found = i
		}
	}
	return found
}

// Mindex returns the index of the first interval containing p, or -1.
// bound tells whether p may fall on the begin, the end, both or neither.
func (t *Tier) Mindex(p Point, bound Bound) int {
	if t.IsPoint() {
		return -1
	}
	for i := t.firstEndingAfter(p); i < len(t.anns); i++ {
		a := t.anns[i]
		lo, hi := a.location.Lowest(), a.location.Highest()
		if lo.Greater(p) {
			break
		}
		switch {
		case lo.Less(p) && p.Less(hi):
			return i
		case lo.Equal(p) && (bound == BoundIncludeBegin || bound == BoundIncludeBoth):
			return i
		case hi.Equal(p) && (bound == BoundIncludeEnd || bound == BoundIncludeBoth):
			return i
		}
	}
	return -1
}

// Near returns the index of the annotation closest to p, or -1 for an
// empty tier. A positive direction only considers annotations not ending
// before p, a negative one annotations not starting after p.
func (t *Tier) Near(p Point, direction int) int {
	if len(t.anns) == 0 {
		return -1
	}
	after := t.firstEndingAfter(p)
	for after < len(t.anns) && t.anns[after].location.Highest().Less(p) {
		after++
	}
	if after == len(t.anns) {
		after = -1
	}
	before := sort.Search(len(t.anns), func(i int) bool { return t.anns[i].location.Lowest().Greater(p) }) - 1

	switch {
	case direction > 0:
		return after
	case direction < 0:
		return before
	case after < 0:
		return before
	case before < 0:
		return after
	}
	if distance(t.anns[before], p) <= distance(t.anns[after], p) {
		return before
	}
	return after
}

func distance(a *Annotation, p Point) float64 {
	lo, hi := a.location.Lowest(), a.location.Highest()
	if lo.LessEqual(p) && p.LessEqual(hi) {
		return 0
	}
	return math.Min(math.Abs(lo.mid-p.mid), math.Abs(hi.mid-p.mid))
}

// Find returns the annotations between begin and end. With overlaps, any
// annotation overlapping [begin, end] is returned; otherwise only those
// included in it.
func (t *Tier) Find(begin, end Point, overlaps bool) []*Annotation {
	var out []*Annotation
	for i := t.firstEndingAfter(begin); i < len(t.anns); i++ {
		a := t.anns[i]
		lo, hi := a.location.Lowest(), a.location.Highest()
		if lo.Greater(end) {
			break
		}
		var keep bool
		switch {
		case a.Kind() == KindPoint:
			keep = begin.LessEqual(lo) && lo.LessEqual(end)
		case overlaps:
			keep = lo.Less(end) && begin.Less(hi)
		default:
			keep = begin.LessEqual(lo) && hi.LessEqual(end)
		}
		if keep {
			out = append(out, a)
		}
	}
	return out
}

// Match returns the annotations whose labels match the predicates.
func (t *Tier) Match(preds []Predicate, logic Logic) []*Annotation {
	var out []*Annotation
	for _, a := range t.anns {
		if a.Match(preds, logic) {
			out = append(out, a)
		}
	}
	return out
}

// HasBoundary reports whether p is a boundary of an annotation.
func (t *Tier) HasBoundary(p Point) bool {
	return hasBoundary(t.anns, p, t.caps.OverlapsSupport)
}

// hasBoundary reports whether p is a boundary of one of the sorted
// annotations.
func hasBoundary(anns []*Annotation, p Point, overlaps bool) bool {
	for i := firstEndingIn(anns, p, overlaps); i < len(anns); i++ {
		a := anns[i]
		if a.location.Lowest().Greater(p) {
			break
		}
		for _, b := range a.location.Points() {
			if b.Equal(p) {
				return true
			}
		}
	}
	return false
}

// IsSuperset reports whether every boundary of other is a boundary of t,
// the condition of a TimeAlignment link from t to other.
func (t *Tier) IsSuperset(other *Tier) bool {
	return checkAlignment(t.name, t.anns, other.name, other.anns) == nil
}

// FirstPoint returns the lowest localization of the tier.
func (t *Tier) FirstPoint() (Point, bool) {
	if len(t.anns) == 0 {
		return Point{}, false
	}
	return t.anns[0].location.Lowest(), true
}

// LastPoint returns the highest localization of the tier.
func (t *Tier) LastPoint() (Point, bool) {
	if len(t.anns) == 0 {
		return Point{}, false
	}
	last := t.anns[len(t.anns)-1].location.Highest()
	if t.caps.OverlapsSupport {
		for _, a := range t.anns {
			if h := a.location.Highest(); h.mid > last.mid {
				last = h
			}
		}
	}
	return last, true
}

// ExportToIntervals returns a new interval tier in which each run of
// consecutive annotations not labeled with one of separators becomes one
// unlabeled interval. Unlabeled annotations are separators too. In a point
// tier a run lasts until the next point.
func (t *Tier) ExportToIntervals(separators []string) (*Tier, error) {
	out := NewTier(t.name)
	isSep := func(a *Annotation) bool {
		tag, ok := a.BestTag(0)
		return !ok || tag.IsEmpty() || slices.Contains(separators, tag.Content())
	}
	emit := func(begin, end Point) error {
		if !begin.Less(end) {
			return nil
		}
		iv, err := NewInterval(begin, end)
		if err != nil {
			return err
		}
		_, err = out.CreateAnnotation(NewLocation(iv))
		return err
	}

	points := t.IsPoint()
	open := false
	var begin, end Point
	for _, a := range t.anns {
		if isSep(a) {
			if open {
				if points {
					end = a.location.Lowest()
				}
				if err := emit(begin, end); err != nil {
					return nil, err
				}
				open = false
			}
			continue
		}
		if open && points {
			end = a.location.Lowest()
		}
		if !open {
			begin, open = a.location.Lowest(), true
			end = begin
		}
		if !points {
			end = a.location.Highest()
		}
	}
	if open {
		if err := emit(begin, end); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FillGaps adds an unlabeled interval in every gap of an interval tier
// between from and to, including before the first and after the last
// annotation. It returns the number of intervals added. Nothing is added
// on error.
func (t *Tier) FillGaps(from, to Point) (int, error) {
	if len(t.anns) > 0 && !t.IsInterval() {
		return 0, apperrors.NewType(t.Kind().String(), "interval tier")
	}
	if !t.caps.IntervalSupport {
		return 0, apperrors.NewUnsupported("interval localization", "not supported by the tier profile")
	}
	var gaps []*Annotation
	addGap := func(begin, end Point) error {
		if !begin.Less(end) {
			return nil
		}
		iv, err := NewInterval(begin, end)
		if err != nil {
			return err
		}
		a, err := NewAnnotation(NewLocation(iv))
		if err != nil {
			return err
		}
		gaps = append(gaps, a)
		return nil
	}

	prev := from
	for _, a := range t.anns {
		if err := addGap(prev, a.location.Lowest()); err != nil {
			return 0, err
		}
		if h := a.location.Highest(); h.mid > prev.mid {
			prev = h
		}
	}
	if err := addGap(prev, to); err != nil {
		return 0, err
	}
	if len(gaps) == 0 {
		return 0, nil
	}

	candidate := append(slices.Clone(t.anns), gaps...)
	slices.SortStableFunc(candidate, compareAnnotations)
	if err := t.checkHost(tierChange{candidate: candidate, added: gaps, to: len(candidate)}); err != nil {
		return 0, err
	}
	t.anns = candidate
	for _, a := range gaps {
		a.owner = t
	}
	return len(gaps), nil
}
