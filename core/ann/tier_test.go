package ann

import (
	"errors"
	"testing"

	apperrors "github.com/FocuswithJustin/annokit/core/errors"
)

func labeled(t *testing.T, tier *Tier, b, e float64, text string) *Annotation {
	t.Helper()
	var labels []*Label
	if text != "" {
		labels = append(labels, NewLabel(StrTag(text)))
	}
	a, err := tier.CreateAnnotation(ivLoc(b, e), labels...)
	if err != nil {
		t.Fatalf("CreateAnnotation [%v, %v] %q: %v", b, e, text, err)
	}
	return a
}

func midpoints(tier *Tier) []float64 {
	var out []float64
	for _, a := range tier.Annotations() {
		out = append(out, a.LowestLocalization().Midpoint())
	}
	return out
}

func TestTierKeepsOrder(t *testing.T) {
	tier := NewTier("words")
	labeled(t, tier, 3, 4, "c")
	labeled(t, tier, 1, 2, "a")
	labeled(t, tier, 2, 3, "b")

	got := midpoints(tier)
	want := []float64{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}

	if err := tier.Append(mustAnnotation(t, ivLoc(0, 0.5))); !errors.Is(err, apperrors.ErrInvariant) {
		t.Errorf("Append before the end: got %v, want invariant violation", err)
	}
	if err := tier.Append(mustAnnotation(t, ivLoc(4, 5))); err != nil {
		t.Errorf("Append: %v", err)
	}
	if tier.Len() != 4 {
		t.Errorf("Len = %d, want 4", tier.Len())
	}
}

func mustAnnotation(t *testing.T, loc *Location, labels ...*Label) *Annotation {
	t.Helper()
	a, err := NewAnnotation(loc, labels...)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestTierOverlaps(t *testing.T) {
	tier := NewTier("t")
	labeled(t, tier, 1, 2, "a")
	labeled(t, tier, 3, 4, "b")

	if _, err := tier.CreateAnnotation(ivLoc(1.5, 2.5)); !errors.Is(err, apperrors.ErrInvariant) {
		t.Errorf("overlap: got %v, want invariant violation", err)
	}
	if _, err := tier.CreateAnnotation(ivLoc(2, 3)); err != nil {
		t.Errorf("touching intervals do not overlap: %v", err)
	}
	if tier.Len() != 3 {
		t.Fatalf("Len = %d, want 3", tier.Len())
	}

	if err := tier.SetCapabilities(FullCapabilities()); err != nil {
		t.Fatal(err)
	}
	if _, err := tier.CreateAnnotation(ivLoc(1.5, 2.5)); err != nil {
		t.Errorf("overlap with overlaps support: %v", err)
	}
	if _, err := tier.CreateAnnotation(ivLoc(1, 2)); !errors.Is(err, apperrors.ErrInvariant) {
		t.Errorf("duplicate localization: got %v, want invariant violation", err)
	}
	if err := tier.SetCapabilities(DefaultCapabilities()); !errors.Is(err, apperrors.ErrInvariant) {
		t.Errorf("dropping overlaps support: got %v, want invariant violation", err)
	}
	if !tier.Capabilities().OverlapsSupport {
		t.Error("capabilities changed after rejection")
	}
}

func TestTierKindAndLabels(t *testing.T) {
	tier := NewTier("t")
	labeled(t, tier, 1, 2, "a")

	if _, err := tier.CreateAnnotation(NewLocation(MustPoint(5, 0))); !errors.Is(err, apperrors.ErrTypeMismatch) {
		t.Errorf("point into interval tier: got %v, want type mismatch", err)
	}
	if _, err := tier.CreateAnnotation(ivLoc(3, 4), NewLabel(IntTag(3))); !errors.Is(err, apperrors.ErrTypeMismatch) {
		t.Errorf("int label into str tier: got %v, want type mismatch", err)
	}
	b := labeled(t, tier, 3, 4, "")
	if err := b.SetLabels(NewLabel(FloatTag(0.5))); !errors.Is(err, apperrors.ErrTypeMismatch) {
		t.Errorf("SetLabels float: got %v, want type mismatch", err)
	}
	if b.IsLabeled() {
		t.Error("labels changed after rejection")
	}

	caps := DefaultCapabilities()
	caps.AlternativeTagSupport = false
	if err := tier.SetCapabilities(caps); err != nil {
		t.Fatal(err)
	}
	if err := b.AddTag(StrTag("x"), NoScore, 0); err != nil {
		t.Fatal(err)
	}
	if err := b.AddTag(StrTag("y"), NoScore, 0); !errors.Is(err, apperrors.ErrUnsupported) {
		t.Errorf("alternative tag: got %v, want unsupported", err)
	}

	owned := mustAnnotation(t, ivLoc(8, 9))
	if err := tier.Add(owned); err != nil {
		t.Fatal(err)
	}
	if err := NewTier("other").Add(owned); !errors.Is(err, apperrors.ErrInvariant) {
		t.Errorf("annotation in two tiers: got %v, want invariant violation", err)
	}
}

func TestTierRelocate(t *testing.T) {
	tier := NewTier("t")
	a := labeled(t, tier, 1, 2, "a")
	labeled(t, tier, 3, 4, "b")

	if err := a.SetBestLocalization(MustInterval(MustPoint(2.5, 0), MustPoint(3.5, 0))); !errors.Is(err, apperrors.ErrInvariant) {
		t.Errorf("relocate onto a neighbour: got %v, want invariant violation", err)
	}
	if !a.LowestLocalization().Equal(MustPoint(1, 0)) {
		t.Errorf("annotation changed after rejection: %s", a.Location())
	}

	if err := a.SetBestLocalization(MustInterval(MustPoint(5, 0), MustPoint(6, 0))); err != nil {
		t.Fatalf("relocate: %v", err)
	}
	if last, _ := tier.At(1); last != a {
		t.Error("relocated annotation should move to the end")
	}
}

func TestTierPopAndRemove(t *testing.T) {
	tier := NewTier("t")
	fillTier(t, tier, 1, 2, 3, 4, 5)

	a, err := tier.Pop(0)
	if err != nil {
		t.Fatal(err)
	}
	if tier.Len() != 3 {
		t.Errorf("Len after Pop = %d", tier.Len())
	}
	if err := NewTier("other").Add(a); err != nil {
		t.Errorf("popped annotation should be free: %v", err)
	}
	if _, err := tier.Pop(3); !errors.Is(err, apperrors.ErrIndexOutOfRange) {
		t.Errorf("Pop(3): got %v, want index error", err)
	}

	n, err := tier.Remove(MustPoint(2, 0), MustPoint(4, 0), false)
	if err != nil || n != 2 {
		t.Errorf("Remove = %d, %v; want 2", n, err)
	}
	if tier.Len() != 1 {
		t.Errorf("Len after Remove = %d, want 1", tier.Len())
	}
}

func TestTierSearch(t *testing.T) {
	tier := NewTier("t")
	labeled(t, tier, 1, 2, "le")
	labeled(t, tier, 2, 3, "chat")
	labeled(t, tier, 3, 4, "dort")

	p := func(v float64) Point { return MustPoint(v, 0) }
	tests := []struct {
		name string
		got  int
		want int
	}{
		{"Lindex(2)", tier.Lindex(p(2)), 1},
		{"Lindex(2.5)", tier.Lindex(p(2.5)), -1},
		{"Rindex(3)", tier.Rindex(p(3)), 1},
		{"Rindex(1)", tier.Rindex(p(1)), -1},
		{"Mindex(2.5, exclude)", tier.Mindex(p(2.5), BoundExclude), 1},
		{"Mindex(2, exclude)", tier.Mindex(p(2), BoundExclude), -1},
		{"Mindex(2, begin)", tier.Mindex(p(2), BoundIncludeBegin), 1},
		{"Mindex(2, end)", tier.Mindex(p(2), BoundIncludeEnd), 0},
		{"Near(2.4)", tier.Near(p(2.4), 0), 1},
		{"Near(4.5, after)", tier.Near(p(4.5), 1), -1},
		{"Near(4.5, before)", tier.Near(p(4.5), -1), 2},
		{"Near(4.5)", tier.Near(p(4.5), 0), 2},
		{"Near(0.5, after)", tier.Near(p(0.5), 1), 0},
		{"Index on intervals", tier.Index(p(2)), -1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, tt.got, tt.want)
		}
	}

	if got := tier.Find(p(1.5), p(3.5), false); len(got) != 1 {
		t.Errorf("Find included = %d annotations, want 1", len(got))
	}
	if got := tier.Find(p(1.5), p(3.5), true); len(got) != 3 {
		t.Errorf("Find overlapping = %d annotations, want 3", len(got))
	}
	if got := tier.Match([]Predicate{{Func: StartsWith, Value: "ch"}}, LogicAnd); len(got) != 1 {
		t.Errorf("Match = %d annotations, want 1", len(got))
	}
	if !tier.HasBoundary(p(3)) || tier.HasBoundary(p(3.5)) {
		t.Error("HasBoundary is wrong")
	}
}

func TestPointTier(t *testing.T) {
	tier := NewTier("tones")
	for _, v := range []float64{3, 1, 2} {
		if _, err := tier.CreateAnnotation(NewLocation(MustPoint(v, 0.01))); err != nil {
			t.Fatal(err)
		}
	}
	if !tier.IsPoint() {
		t.Fatalf("Kind = %s", tier.Kind())
	}
	if got := tier.Index(MustPoint(2.005, 0)); got != 1 {
		t.Errorf("Index(2.005) = %d, want 1", got)
	}
	if got := tier.Index(MustPoint(2.5, 0)); got != -1 {
		t.Errorf("Index(2.5) = %d, want -1", got)
	}
	if _, err := tier.CreateAnnotation(NewLocation(MustPoint(1.005, 0))); !errors.Is(err, apperrors.ErrInvariant) {
		t.Errorf("equal point: got %v, want invariant violation", err)
	}
	if first, ok := tier.FirstPoint(); !ok || first.Midpoint() != 1 {
		t.Errorf("FirstPoint = %s", first)
	}
}

func TestExportToIntervals(t *testing.T) {
	tier := NewTier("phones")
	labeled(t, tier, 0, 1, "#")
	labeled(t, tier, 1, 2, "a")
	labeled(t, tier, 2, 3, "b")
	labeled(t, tier, 3, 4, "sil")
	labeled(t, tier, 4, 5, "c")

	out, err := tier.ExportToIntervals(DefaultSymbols().Contents())
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != 2 {
		t.Fatalf("Len = %d, want 2: %s", out.Len(), out)
	}
	first, _ := out.At(0)
	second, _ := out.At(1)
	if first.LowestLocalization().Midpoint() != 1 || first.HighestLocalization().Midpoint() != 3 {
		t.Errorf("first = %s, want [1, 3]", first.Location())
	}
	if second.LowestLocalization().Midpoint() != 4 || second.HighestLocalization().Midpoint() != 5 {
		t.Errorf("second = %s, want [4, 5]", second.Location())
	}
	if first.IsLabeled() {
		t.Error("exported intervals are unlabeled")
	}
}

func TestFillGaps(t *testing.T) {
	tier := NewTier("t")
	labeled(t, tier, 1, 2, "a")
	labeled(t, tier, 3, 4, "b")

	n, err := tier.FillGaps(MustPoint(0, 0), MustPoint(5, 0))
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 || tier.Len() != 5 {
		t.Errorf("FillGaps added %d, Len = %d; want 3 and 5", n, tier.Len())
	}
	if errs := tier.Validate(DefaultCapabilities()); len(errs) != 0 {
		t.Errorf("Validate after FillGaps: %v", errs)
	}
}

func TestTierCtrlVocab(t *testing.T) {
	tier := NewTier("pos")
	labeled(t, tier, 1, 2, "DET")
	labeled(t, tier, 2, 3, "NOUN")
	labeled(t, tier, 3, 4, "DET")

	v, err := tier.CreateCtrlVocab("")
	if err != nil {
		t.Fatal(err)
	}
	if v.Len() != 2 || v.Name() != "v_pos" {
		t.Errorf("vocab %q has %d entries, want v_pos with 2", v.Name(), v.Len())
	}
	again, err := tier.CreateCtrlVocab("")
	if err != nil {
		t.Fatal(err)
	}
	if again != v || again.Len() != 2 {
		t.Errorf("second CreateCtrlVocab: same=%v len=%d", again == v, again.Len())
	}

	if _, err := tier.CreateAnnotation(ivLoc(4, 5), NewLabel(StrTag("VERB"))); !errors.Is(err, apperrors.ErrVocabulary) {
		t.Errorf("tag outside vocabulary: got %v, want vocabulary violation", err)
	}
	if _, err := v.Add(StrTag("VERB"), "verb"); err != nil {
		t.Fatal(err)
	}
	if _, err := tier.CreateAnnotation(ivLoc(4, 5), NewLabel(StrTag("VERB"))); err != nil {
		t.Errorf("tag in vocabulary: %v", err)
	}

	strict := NewCtrlVocab("strict", "")
	if _, err := strict.Add(StrTag("X"), ""); err != nil {
		t.Fatal(err)
	}
	if err := tier.SetCtrlVocab(strict); !errors.Is(err, apperrors.ErrVocabulary) {
		t.Errorf("SetCtrlVocab: got %v, want vocabulary violation", err)
	}
	if tier.CtrlVocab() != v {
		t.Error("vocabulary changed after rejection")
	}
}

func TestRemoveCtrlVocabTag(t *testing.T) {
	trs := NewTranscription("")
	pos, _ := trs.CreateTier("pos")
	labeled(t, pos, 1, 2, "DET")
	v, err := pos.CreateCtrlVocab("tags")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := v.Add(StrTag("NOUN"), ""); err != nil {
		t.Fatal(err)
	}
	other, _ := trs.CreateTier("other")
	if err := other.SetCtrlVocab(v); err != nil {
		t.Fatal(err)
	}
	labeled(t, other, 1, 2, "NOUN")

	if ok, err := pos.RemoveCtrlVocabTag(StrTag("NOUN")); !errors.Is(err, apperrors.ErrInvariant) || ok {
		t.Errorf("tag used by a sharing tier: got %v, %v", ok, err)
	}
	if ok, err := pos.RemoveCtrlVocabTag(StrTag("DET")); !errors.Is(err, apperrors.ErrInvariant) || ok {
		t.Errorf("tag used by the tier: got %v, %v", ok, err)
	}
	if !v.Contains(StrTag("DET")) || !v.Contains(StrTag("NOUN")) {
		t.Error("vocabulary changed after rejection")
	}
	if _, err := other.Pop(0); err != nil {
		t.Fatal(err)
	}
	if ok, err := pos.RemoveCtrlVocabTag(StrTag("NOUN")); err != nil || !ok {
		t.Errorf("unused tag: got %v, %v", ok, err)
	}
	if ok, err := pos.RemoveCtrlVocabTag(StrTag("NOUN")); err != nil || ok {
		t.Errorf("absent tag: got %v, %v", ok, err)
	}
	if errs := pos.Validate(pos.Capabilities()); len(errs) != 0 {
		t.Errorf("Validate: %v", errs)
	}
	if _, err := NewTier("bare").RemoveCtrlVocabTag(StrTag("x")); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("tier without vocabulary: got %v, want not found", err)
	}
}

func TestTierValidate(t *testing.T) {
	tier := NewTier("t")
	labeled(t, tier, 1, 2, "a")
	labeled(t, tier, 3, 4, "b")

	caps := DefaultCapabilities()
	caps.GapsSupport = false
	if errs := tier.Validate(caps); len(errs) != 1 || !errors.Is(errs[0], apperrors.ErrUnsupported) {
		t.Errorf("gaps: got %v, want one unsupported error", errs)
	}

	points := NewTier("p")
	if _, err := points.CreateAnnotation(NewLocation(MustPoint(1, 0.02))); err != nil {
		t.Fatal(err)
	}
	caps = DefaultCapabilities()
	caps.RadiusSupport = false
	if errs := points.Validate(caps); len(errs) != 1 {
		t.Errorf("radius: got %v, want one error", errs)
	}
	caps.PointSupport = false
	if errs := points.Validate(caps); len(errs) != 2 {
		t.Errorf("radius and kind: got %v, want two errors", errs)
	}
}

func TestTierCopy(t *testing.T) {
	tier := NewTier("t")
	a := labeled(t, tier, 1, 2, "a")

	c := tier.Copy()
	if c.ID() != tier.ID() || c.Name() != "t" || c.Len() != 1 {
		t.Fatalf("copy = %s (%s)", c, c.ID())
	}
	ca, _ := c.At(0)
	if ca == a || ca.ID() != a.ID() {
		t.Error("copied annotation should be a new object with the same id")
	}
	if err := ca.SetBestLocalization(MustInterval(MustPoint(1, 0), MustPoint(1.5, 0))); err != nil {
		t.Fatal(err)
	}
	if !a.HighestLocalization().Equal(MustPoint(2, 0)) {
		t.Error("changing the copy changed the original")
	}
}
