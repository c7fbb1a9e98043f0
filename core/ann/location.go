package ann

import (
	"strings"

	apperrors "github.com/FocuswithJustin/annokit/core/errors"
)

// LocEntry is one alternative localization with its score.
type LocEntry struct {
	Localization Localization
	Score        Score
}

// Location is an ordered set of alternative localizations of the same kind.
type Location struct {
	entries []LocEntry
}

// NewLocation returns a location holding loc, unscored. A nil loc yields an
// empty location, which annotations reject.
func NewLocation(loc Localization) *Location {
	l := &Location{}
	if loc != nil {
		l.entries = append(l.entries, LocEntry{Localization: loc.clone()})
	}
	return l
}

// NewScoredLocation returns a location holding loc with the given score.
func NewScoredLocation(loc Localization, score float64) *Location {
	l := &Location{}
	if loc != nil {
		l.entries = append(l.entries, LocEntry{Localization: loc.clone(), Score: NewScore(score)})
	}
	return l
}

// Append adds an alternative localization. A localization of another kind
// is rejected; one already present is ignored.
func (l *Location) Append(loc Localization, score Score) error {
	if loc == nil {
		return apperrors.NewType("nil", "localization")
	}
	if len(l.entries) > 0 && loc.Kind() != l.Kind() {
		return apperrors.NewType(loc.String(), l.Kind().String())
	}
	if l.Contains(loc) {
		return nil
	}
	l.entries = append(l.entries, LocEntry{Localization: loc.clone(), Score: score})
	return nil
}

// Remove deletes an alternative localization. It reports whether one was
// removed.
func (l *Location) Remove(loc Localization) bool {
	for i, e := range l.entries {
		if LocEqual(e.Localization, loc) {
			l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of alternatives.
func (l *Location) Len() int { return len(l.entries) }

// At returns the i-th alternative.
func (l *Location) At(i int) (LocEntry, error) {
	if i < 0 || i >= len(l.entries) {
		return LocEntry{}, apperrors.NewIndex(i, len(l.entries))
	}
	e := l.entries[i]
	e.Localization = e.Localization.clone()
	return e, nil
}

// Entries returns a copy of all alternatives.
func (l *Location) Entries() []LocEntry {
	out := make([]LocEntry, len(l.entries))
	for i, e := range l.entries {
		out[i] = LocEntry{Localization: e.Localization.clone(), Score: e.Score}
	}
	return out
}

// Kind returns the kind shared by the alternatives, or KindNone if empty.
func (l *Location) Kind() Kind {
	if len(l.entries) == 0 {
		return KindNone
	}
	return l.entries[0].Localization.Kind()
}

// IsPoint reports whether the location holds points.
func (l *Location) IsPoint() bool { return l.Kind() == KindPoint }

// IsInterval reports whether the location holds intervals.
func (l *Location) IsInterval() bool { return l.Kind() == KindInterval }

// IsDisjoint reports whether the location holds disjoint intervals.
func (l *Location) IsDisjoint() bool { return l.Kind() == KindDisjoint }

func (l *Location) bestIndex() int {
	if len(l.entries) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(l.entries); i++ {
		if l.entries[i].Score.beats(l.entries[best].Score) {
			best = i
		}
	}
	return best
}

// Best returns the localization with the highest score, or the first one
// when none is scored. It returns nil for an empty location.
func (l *Location) Best() Localization {
	i := l.bestIndex()
	if i < 0 {
		return nil
	}
	return l.entries[i].Localization.clone()
}

// SetBest replaces the best localization, keeping its score.
func (l *Location) SetBest(loc Localization) error {
	if loc == nil {
		return apperrors.NewType("nil", "localization")
	}
	i := l.bestIndex()
	if i < 0 {
		l.entries = append(l.entries, LocEntry{Localization: loc.clone()})
		return nil
	}
	if loc.Kind() != l.Kind() {
		return apperrors.NewType(loc.String(), l.Kind().String())
	}
	for j, e := range l.entries {
		if j != i && LocEqual(e.Localization, loc) {
			return apperrors.NewInvariantf("location", "%s is already an alternative", loc)
		}
	}
	l.entries[i].Localization = loc.clone()
	return nil
}

// SetScore changes the score of an alternative.
func (l *Location) SetScore(loc Localization, score Score) error {
	for i, e := range l.entries {
		if LocEqual(e.Localization, loc) {
			l.entries[i].Score = score
			return nil
		}
	}
	return apperrors.NewNotFound("localization", loc.String())
}

// Contains reports whether loc is one of the alternatives.
func (l *Location) Contains(loc Localization) bool {
	for _, e := range l.entries {
		if LocEqual(e.Localization, loc) {
			return true
		}
	}
	return false
}

// Lowest returns the lowest point over every alternative.
func (l *Location) Lowest() Point {
	if len(l.entries) == 0 {
		return Point{}
	}
	low := l.entries[0].Localization.Begin()
	for _, e := range l.entries[1:] {
		if b := e.Localization.Begin(); b.mid < low.mid {
			low = b
		}
	}
	return low
}

// Highest returns the highest point over every alternative.
func (l *Location) Highest() Point {
	if len(l.entries) == 0 {
		return Point{}
	}
	high := l.entries[0].Localization.End()
	for _, e := range l.entries[1:] {
		if b := e.Localization.End(); b.mid > high.mid {
			high = b
		}
	}
	return high
}

// Points returns the boundary points of every alternative.
func (l *Location) Points() []Point {
	var points []Point
	for _, e := range l.entries {
		points = append(points, e.Localization.Points()...)
	}
	return points
}

// Copy returns an independent copy.
func (l *Location) Copy() *Location {
	if l == nil {
		return nil
	}
	return &Location{entries: l.Entries()}
}

// Equal reports whether both hold equal alternatives with equal scores,
// in the same order.
func (l *Location) Equal(o *Location) bool {
	if l == nil || o == nil {
		return l == o
	}
	if len(l.entries) != len(o.entries) {
		return false
	}
	for i, e := range l.entries {
		if !LocEqual(e.Localization, o.entries[i].Localization) || !e.Score.Equal(o.entries[i].Score) {
			return false
		}
	}
	return true
}

func (l *Location) String() string {
	parts := make([]string, len(l.entries))
	for i, e := range l.entries {
		parts[i] = e.Localization.String()
		if e.Score.IsSet() {
			parts[i] += "=" + e.Score.String()
		}
	}
	return strings.Join(parts, " | ")
}
