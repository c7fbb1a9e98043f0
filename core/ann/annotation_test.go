package ann

import (
	"errors"
	"testing"

	apperrors "github.com/FocuswithJustin/annokit/core/errors"
)

// ivLoc returns a location holding the interval [b, e] without radius.
func ivLoc(b, e float64) *Location {
	return NewLocation(MustInterval(MustPoint(b, 0), MustPoint(e, 0)))
}

func TestNewAnnotation(t *testing.T) {
	if _, err := NewAnnotation(nil); !errors.Is(err, apperrors.ErrTypeMismatch) {
		t.Errorf("nil location: got %v, want type mismatch", err)
	}
	if _, err := NewAnnotation(NewLocation(nil)); !errors.Is(err, apperrors.ErrTypeMismatch) {
		t.Errorf("empty location: got %v, want type mismatch", err)
	}
	if _, err := NewAnnotation(ivLoc(1, 2), NewLabel(StrTag("a")), NewLabel(IntTag(1))); !errors.Is(err, apperrors.ErrTypeMismatch) {
		t.Errorf("mixed label types: got %v, want type mismatch", err)
	}

	a, err := NewAnnotation(ivLoc(1, 2), nil, NewLabel(StrTag("a")))
	if err != nil {
		t.Fatal(err)
	}
	if a.LabelsLen() != 1 {
		t.Errorf("nil labels should be dropped, got %d labels", a.LabelsLen())
	}
	if a.ID() == "" {
		t.Error("annotation has no id")
	}

	b, _ := NewAnnotation(ivLoc(1, 2))
	c, _ := NewAnnotation(ivLoc(1, 2))
	if err := b.AppendLabel(NewLabel(StrTag("x"))); err != nil {
		t.Fatal(err)
	}
	if c.LabelsLen() != 0 {
		t.Error("annotations must not share their label list")
	}
}

func TestAnnotationCopyAndEquality(t *testing.T) {
	a, _ := NewAnnotation(ivLoc(1, 2), NewLabel(StrTag("a")))
	a.SetMeta("speaker", "A")

	c := a.Copy()
	if !c.Equal(a) {
		t.Error("copy should be equal")
	}
	if c.ID() != a.ID() {
		t.Errorf("copy id = %s, want %s", c.ID(), a.ID())
	}
	if c.GetMeta("speaker") != "A" {
		t.Error("copy lost metadata")
	}

	fresh, _ := NewAnnotation(ivLoc(1, 2), NewLabel(StrTag("a")))
	if !fresh.Equal(a) {
		t.Error("annotations with the same content should be equal")
	}
	if fresh.ID() == a.ID() {
		t.Error("a new annotation must get a new id")
	}

	if err := c.SetLabels(NewLabel(StrTag("b"))); err != nil {
		t.Fatal(err)
	}
	if c.Equal(a) {
		t.Error("changing the copy should not change the original")
	}
	c.SetScore(NewScore(0.4))
	if c.Score().Equal(a.Score()) {
		t.Error("scores should differ")
	}
}

func TestAnnotationTags(t *testing.T) {
	a, _ := NewAnnotation(ivLoc(1, 2))
	if a.IsLabeled() {
		t.Error("new annotation should not be labeled")
	}
	if err := a.AddTag(StrTag("x"), NoScore, 0); err != nil {
		t.Fatalf("AddTag: %v", err)
	}
	if err := a.AddTag(StrTag("y"), NoScore, 0); err != nil {
		t.Fatalf("AddTag alternative: %v", err)
	}
	if err := a.AddTag(StrTag("z"), NoScore, 1); err != nil {
		t.Fatalf("AddTag new label: %v", err)
	}
	if err := a.AddTag(StrTag("w"), NoScore, 5); !errors.Is(err, apperrors.ErrIndexOutOfRange) {
		t.Errorf("AddTag at 5: got %v, want index error", err)
	}
	if err := a.AddTag(IntTag(1), NoScore, 0); !errors.Is(err, apperrors.ErrTypeMismatch) {
		t.Errorf("AddTag int: got %v, want type mismatch", err)
	}
	if got := a.SerializeLabels(" ", "", true); got != "{x|y} z" {
		t.Errorf("SerializeLabels = %q, want \"{x|y} z\"", got)
	}
	if a.LabelType() != TagStr {
		t.Errorf("LabelType = %q", a.LabelType())
	}

	removed, err := a.RemoveTag(StrTag("z"))
	if err != nil || !removed {
		t.Fatalf("RemoveTag: %v %v", removed, err)
	}
	if a.LabelsLen() != 1 {
		t.Errorf("emptied label should be removed, got %d labels", a.LabelsLen())
	}
	if best, _ := a.BestTag(0); best.Content() != "x" {
		t.Errorf("BestTag = %s, want x", best)
	}
	if !a.Match([]Predicate{{Func: Exact, Value: "y"}}, LogicAnd) {
		t.Error("alternative tag should match")
	}
}

func TestAnnotationLocalization(t *testing.T) {
	loc := ivLoc(1, 2)
	if err := loc.Append(MustInterval(MustPoint(0.5, 0), MustPoint(1.5, 0)), NoScore); err != nil {
		t.Fatal(err)
	}
	a, _ := NewAnnotation(loc)
	if !a.LowestLocalization().Equal(MustPoint(0.5, 0)) {
		t.Errorf("Lowest = %s, want 0.5", a.LowestLocalization())
	}
	if !a.HighestLocalization().Equal(MustPoint(2, 0)) {
		t.Errorf("Highest = %s, want 2", a.HighestLocalization())
	}

	// Mutating the returned location has no effect.
	got := a.Location()
	got.Remove(MustInterval(MustPoint(1, 0), MustPoint(2, 0)))
	if a.Location().Len() != 2 {
		t.Error("Location() must return a copy")
	}

	if err := a.SetBestLocalization(MustPoint(3, 0)); !errors.Is(err, apperrors.ErrTypeMismatch) {
		t.Errorf("point into interval location: got %v, want type mismatch", err)
	}
	if err := a.SetBestLocalization(MustInterval(MustPoint(1, 0), MustPoint(4, 0))); err != nil {
		t.Fatalf("SetBestLocalization: %v", err)
	}
	if !a.HighestLocalization().Equal(MustPoint(4, 0)) {
		t.Errorf("Highest = %s, want 4", a.HighestLocalization())
	}
}

func TestMetadata(t *testing.T) {
	a, _ := NewAnnotation(ivLoc(1, 2))
	a.SetMeta("b", "1")
	a.SetMeta("a", "2")
	a.SetMeta("b", "3")

	keys := a.MetaKeys()
	want := []string{MetaID, "b", "a"}
	if len(keys) != len(want) {
		t.Fatalf("MetaKeys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("MetaKeys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
	if a.GetMeta("b") != "3" || a.GetMeta("missing") != "" {
		t.Error("GetMeta is wrong")
	}
	if err := a.PopMeta(MetaID); !errors.Is(err, apperrors.ErrInvariant) {
		t.Errorf("PopMeta(id): got %v, want invariant violation", err)
	}
	if err := a.PopMeta("missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("PopMeta(missing): got %v, want not found", err)
	}
	if err := a.PopMeta("b"); err != nil || a.IsMetaKey("b") {
		t.Errorf("PopMeta(b): %v", err)
	}

	a.AddLanguageMetadata("fra")
	a.AddLanguageMetadata("eng")
	a.AddLanguageMetadata("fra")
	if a.GetMeta("language_code_1") != "fra" || a.GetMeta("language_code_2") != "eng" || a.IsMetaKey("language_code_3") {
		t.Error("AddLanguageMetadata numbering is wrong")
	}
	a.AddSoftwareMetadata("annokit", "1.0")
	if a.GetMeta("software_name") != "annokit" || a.GetMeta("language_name") != "Go" {
		t.Error("AddSoftwareMetadata is wrong")
	}
}
