package ann

import (
	"errors"
	"math"
	"testing"

	apperrors "github.com/FocuswithJustin/annokit/core/errors"
)

func TestPointFuzzyEquality(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want bool
	}{
		{"overlapping windows", MustPoint(1.0, 0.005), MustPoint(1.003, 0.005), true},
		{"within both radii", MustPoint(1.0, 0.01), MustPoint(1.015, 0.01), true},
		{"no radius", MustPoint(1.0, 0), MustPoint(1.02, 0), false},
		{"identical", MustPoint(2.5, 0), MustPoint(2.5, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("%s.Equal(%s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := tt.b.Equal(tt.a); got != tt.want {
				t.Errorf("equality is not symmetric for %s and %s", tt.a, tt.b)
			}
		})
	}
}

func TestPointOrdering(t *testing.T) {
	a := MustPoint(1.0, 0.005)
	b := MustPoint(1.003, 0.005)
	c := MustPoint(2.0, 0)

	if a.Less(b) || a.Greater(b) {
		t.Error("overlapping points must be neither less nor greater")
	}
	if !a.Less(c) || !c.Greater(a) {
		t.Error("distant points must be ordered")
	}
	if !a.LessEqual(b) || !a.GreaterEqual(b) {
		t.Error("equal points must satisfy <= and >=")
	}
	if got := a.Compare(c); got != -1 {
		t.Errorf("Compare = %d, want -1", got)
	}
	if got := a.Compare(b); got != 0 {
		t.Errorf("Compare = %d, want 0", got)
	}
}

// Fuzzy equality is not transitive; this is kept on purpose and documented.
func TestPointEqualityIsNotTransitive(t *testing.T) {
	a := MustPoint(1.000, 0.01)
	b := MustPoint(1.015, 0.01)
	c := MustPoint(1.030, 0.01)

	if !a.Equal(b) || !b.Equal(c) {
		t.Fatal("neighbouring points should be equal")
	}
	if a.Equal(c) {
		t.Error("a == c: equality unexpectedly transitive")
	}
	if !a.Less(c) {
		t.Error("a should be less than c")
	}
}

func TestNewPointErrors(t *testing.T) {
	if _, err := NewPoint(math.NaN(), 0); !errors.Is(err, apperrors.ErrTypeMismatch) {
		t.Errorf("NaN midpoint: got %v, want type mismatch", err)
	}
	if _, err := NewPoint(1, math.Inf(1)); !errors.Is(err, apperrors.ErrTypeMismatch) {
		t.Errorf("infinite radius: got %v, want type mismatch", err)
	}
	if _, err := NewPoint(1, -0.1); !errors.Is(err, apperrors.ErrInvariant) {
		t.Errorf("negative radius: got %v, want invariant violation", err)
	}
	if _, err := NewPoint(-1, 0); !errors.Is(err, apperrors.ErrInvariant) {
		t.Errorf("negative midpoint: got %v, want invariant violation", err)
	}
}

func TestPointSetters(t *testing.T) {
	p := MustPoint(1, 0)
	if err := p.SetRadius(-1); err == nil {
		t.Error("SetRadius(-1) should fail")
	}
	if p.Radius() != 0 {
		t.Errorf("radius changed on error: %v", p.Radius())
	}
	if err := p.SetMidpoint(3); err != nil {
		t.Fatalf("SetMidpoint: %v", err)
	}
	if p.Midpoint() != 3 {
		t.Errorf("Midpoint = %v, want 3", p.Midpoint())
	}

	r, err := NewRankPoint(4, 1)
	if err != nil {
		t.Fatalf("NewRankPoint: %v", err)
	}
	if err := r.SetMidpoint(4.5); !errors.Is(err, apperrors.ErrTypeMismatch) {
		t.Errorf("SetMidpoint(4.5) on rank: got %v, want type mismatch", err)
	}
}

func TestPointCopyIsIndependent(t *testing.T) {
	p := MustPoint(1, 0.1)
	q := p
	if err := q.SetMidpoint(2); err != nil {
		t.Fatal(err)
	}
	if p.Midpoint() != 1 {
		t.Errorf("original changed: %v", p.Midpoint())
	}
}

func TestIntervalInvariant(t *testing.T) {
	_, err := NewInterval(MustPoint(3, 0), MustPoint(1, 0))
	if !errors.Is(err, apperrors.ErrInvariant) {
		t.Fatalf("Interval(3, 1): got %v, want invariant violation", err)
	}
	_, err = NewInterval(MustPoint(1, 0.01), MustPoint(1.01, 0.01))
	if !errors.Is(err, apperrors.ErrInvariant) {
		t.Fatalf("Interval of equal points: got %v, want invariant violation", err)
	}

	iv := MustInterval(MustPoint(1, 0), MustPoint(3, 0))
	if got := iv.Duration().Value(); got != 2 {
		t.Errorf("Duration().Value() = %v, want 2", got)
	}

	if err := iv.SetEnd(MustPoint(0.5, 0)); err == nil {
		t.Error("SetEnd before begin should fail")
	}
	if !iv.End().Equal(MustPoint(3, 0)) {
		t.Errorf("End changed on error: %s", iv.End())
	}
	if err := iv.SetBegin(MustPoint(2, 0)); err != nil {
		t.Errorf("SetBegin(2): %v", err)
	}
}

func TestIntervalMixedAxes(t *testing.T) {
	r, _ := NewRankPoint(1, 0)
	if _, err := NewInterval(r, MustPoint(3, 0)); !errors.Is(err, apperrors.ErrTypeMismatch) {
		t.Errorf("mixed axes: got %v, want type mismatch", err)
	}
}

func TestIntervalDurationMargin(t *testing.T) {
	iv := MustInterval(MustPoint(1, 0.01), MustPoint(2, 0.02))
	d := iv.Duration()
	if d.Value() != 1 {
		t.Errorf("Value = %v, want 1", d.Value())
	}
	if math.Abs(d.Margin()-0.03) > 1e-12 {
		t.Errorf("Margin = %v, want 0.03", d.Margin())
	}
	if !d.Equal(NewDuration(1.02, 0)) {
		t.Error("durations within margin should be equal")
	}
	if !d.Less(NewDuration(2, 0)) {
		t.Error("1s should be less than 2s")
	}
}

func TestIntervalRelations(t *testing.T) {
	a := MustInterval(MustPoint(1, 0), MustPoint(3, 0))
	b := MustInterval(MustPoint(2, 0), MustPoint(4, 0))
	c := MustInterval(MustPoint(3, 0), MustPoint(5, 0))

	if !a.Overlaps(b) {
		t.Error("a should overlap b")
	}
	if a.Overlaps(c) {
		t.Error("intervals sharing a bound do not overlap")
	}
	if !a.Contains(MustPoint(3, 0)) || a.Contains(MustPoint(3.5, 0)) {
		t.Error("Contains includes bounds only")
	}
	if !a.IsBound(MustPoint(1, 0)) {
		t.Error("1 is a bound of a")
	}
	inner := MustInterval(MustPoint(1.5, 0), MustPoint(2, 0))
	if !inner.Inside(a) || a.Inside(inner) {
		t.Error("Inside is wrong")
	}
	if a.Middle() != 2 {
		t.Errorf("Middle = %v, want 2", a.Middle())
	}
}

func TestDisjoint(t *testing.T) {
	a := MustInterval(MustPoint(5, 0), MustPoint(6, 0))
	b := MustInterval(MustPoint(1, 0), MustPoint(2, 0))
	d, err := NewDisjoint(a, b)
	if err != nil {
		t.Fatalf("NewDisjoint: %v", err)
	}
	if first, _ := d.At(0); !first.Equal(b) {
		t.Errorf("intervals not sorted: %s", d)
	}
	if !d.Begin().Equal(MustPoint(1, 0)) || !d.End().Equal(MustPoint(6, 0)) {
		t.Errorf("Begin/End = %s/%s", d.Begin(), d.End())
	}
	if got := d.Duration().Value(); got != 2 {
		t.Errorf("Duration = %v, want 2", got)
	}

	copied := d
	if err := d.Append(MustInterval(MustPoint(1.5, 0), MustPoint(3, 0))); !errors.Is(err, apperrors.ErrInvariant) {
		t.Errorf("overlapping append: got %v, want invariant violation", err)
	}
	if err := d.Append(MustInterval(MustPoint(3, 0), MustPoint(4, 0))); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if d.Len() != 3 || copied.Len() != 2 {
		t.Errorf("Len = %d (copy %d), want 3 (copy 2)", d.Len(), copied.Len())
	}
	if mid, _ := d.At(1); !mid.Begin().Equal(MustPoint(3, 0)) {
		t.Errorf("append did not keep order: %s", d)
	}

	if _, err := NewDisjoint(); err == nil {
		t.Error("NewDisjoint() without intervals should fail")
	}
	if _, err := d.At(7); !errors.Is(err, apperrors.ErrIndexOutOfRange) {
		t.Errorf("At(7): got %v, want index error", err)
	}
}

func TestLocation(t *testing.T) {
	a := MustInterval(MustPoint(1, 0), MustPoint(2, 0))
	b := MustInterval(MustPoint(1.1, 0), MustPoint(2.5, 0))

	loc := NewScoredLocation(a, 0.3)
	if err := loc.Append(b, NewScore(0.7)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := loc.Append(a, NewScore(1)); err != nil || loc.Len() != 2 {
		t.Errorf("duplicate append: err=%v len=%d, want ignored", err, loc.Len())
	}
	if err := loc.Append(MustPoint(3, 0), NoScore); !errors.Is(err, apperrors.ErrTypeMismatch) {
		t.Errorf("mixed kinds: got %v, want type mismatch", err)
	}

	if best := loc.Best(); !LocEqual(best, b) {
		t.Errorf("Best = %s, want %s", best, b)
	}
	if !loc.Lowest().Equal(MustPoint(1, 0)) || !loc.Highest().Equal(MustPoint(2.5, 0)) {
		t.Errorf("Lowest/Highest = %s/%s", loc.Lowest(), loc.Highest())
	}

	c := MustInterval(MustPoint(1.2, 0), MustPoint(2.2, 0))
	if err := loc.SetBest(c); err != nil {
		t.Fatalf("SetBest: %v", err)
	}
	entry, _ := loc.At(1)
	if !LocEqual(entry.Localization, c) || !entry.Score.Equal(NewScore(0.7)) {
		t.Errorf("SetBest should replace the best entry keeping its score, got %s", loc)
	}
	if err := loc.SetBest(a); !errors.Is(err, apperrors.ErrInvariant) {
		t.Errorf("SetBest to another alternative: got %v, want invariant violation", err)
	}

	cp := loc.Copy()
	if !cp.Equal(loc) {
		t.Error("copy should be equal")
	}
	cp.Remove(a)
	if loc.Len() != 2 {
		t.Error("removing from the copy changed the original")
	}
}

func TestLocationBestUnscored(t *testing.T) {
	a := MustPoint(1, 0)
	loc := NewLocation(a)
	if err := loc.Append(MustPoint(2, 0), NoScore); err != nil {
		t.Fatal(err)
	}
	if !LocEqual(loc.Best(), a) {
		t.Errorf("Best of unscored location = %s, want the first", loc.Best())
	}
}
