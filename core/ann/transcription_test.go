package ann

import (
	"errors"
	"testing"

	apperrors "github.com/FocuswithJustin/annokit/core/errors"
)

func TestTranscriptionTiers(t *testing.T) {
	trs := NewTranscription("corpus")
	a, err := trs.CreateTier("Words")
	if err != nil {
		t.Fatal(err)
	}
	b, err := trs.CreateTier("Words")
	if err != nil {
		t.Fatal(err)
	}
	if b.Name() != "Words(2)" {
		t.Errorf("second tier name = %q, want Words(2)", b.Name())
	}
	if trs.Find("words", true) != nil {
		t.Error("case-sensitive Find should not match")
	}
	if trs.Find("words", false) != a {
		t.Error("case-insensitive Find should match the first tier")
	}
	if err := b.SetName("Words"); !errors.Is(err, apperrors.ErrInvariant) {
		t.Errorf("SetName to a used name: got %v, want invariant violation", err)
	}
	if err := trs.Append(a); !errors.Is(err, apperrors.ErrInvariant) {
		t.Errorf("appending a tier twice: got %v, want invariant violation", err)
	}

	popped, err := trs.Pop(0)
	if err != nil || popped != a {
		t.Fatalf("Pop(0) = %v, %v", popped, err)
	}
	if trs.Len() != 1 {
		t.Errorf("Len = %d, want 1", trs.Len())
	}
	if err := NewTranscription("").Append(popped); err != nil {
		t.Errorf("popped tier should be free: %v", err)
	}
}

func TestTranscriptionExtent(t *testing.T) {
	trs := NewTranscription("")
	if _, ok := trs.MinLoc(); ok {
		t.Error("empty transcription has no extent")
	}
	a, _ := trs.CreateTier("a")
	b, _ := trs.CreateTier("b")
	fillTier(t, a, 2, 3, 4)
	fillTier(t, b, 1, 3)

	if lo, _ := trs.MinLoc(); lo.Midpoint() != 1 {
		t.Errorf("MinLoc = %s, want 1", lo)
	}
	if hi, _ := trs.MaxLoc(); hi.Midpoint() != 4 {
		t.Errorf("MaxLoc = %s, want 4", hi)
	}
}

func TestTranscriptionCapabilities(t *testing.T) {
	trs := NewTranscription("")
	a, _ := trs.CreateTier("a")
	fillTier(t, a, 1, 2)
	if _, err := trs.CreateTier("b"); err != nil {
		t.Fatal(err)
	}

	single := DefaultCapabilities()
	single.MultiTiersSupport = false
	if err := trs.SetCapabilities(single); !errors.Is(err, apperrors.ErrUnsupported) {
		t.Errorf("two tiers with a single tier profile: got %v, want unsupported", err)
	}

	noIntervals := DefaultCapabilities()
	noIntervals.IntervalSupport = false
	if err := trs.SetCapabilities(noIntervals); !errors.Is(err, apperrors.ErrUnsupported) {
		t.Errorf("interval tier with a point profile: got %v, want unsupported", err)
	}
	if !trs.Capabilities().IntervalSupport || !a.Capabilities().IntervalSupport {
		t.Error("capabilities changed after rejection")
	}

	overlaps := DefaultCapabilities()
	overlaps.OverlapsSupport = true
	if err := trs.SetCapabilities(overlaps); err != nil {
		t.Fatal(err)
	}
	if !a.Capabilities().OverlapsSupport {
		t.Error("capabilities should propagate to tiers")
	}

	noHierarchy := DefaultCapabilities()
	noHierarchy.HierarchySupport = false
	if err := trs.SetCapabilities(noHierarchy); err != nil {
		t.Fatal(err)
	}
	b := trs.Find("b", true)
	if err := trs.AddHierarchyLink(TimeAlignment, a, b); !errors.Is(err, apperrors.ErrUnsupported) {
		t.Errorf("link without hierarchy support: got %v, want unsupported", err)
	}
}

func TestTranscriptionMediaAndVocabs(t *testing.T) {
	trs := NewTranscription("")
	tier, _ := trs.CreateTier("a")
	m := NewMedia("corpus/speaker1.wav", "")
	if m.MimeType() != "audio/wav" {
		t.Errorf("MimeType = %q, want audio/wav", m.MimeType())
	}
	if err := trs.AddMedia(m); err != nil {
		t.Fatal(err)
	}
	if err := tier.SetMedia(m); err != nil {
		t.Fatal(err)
	}
	if !trs.RemoveMedia(m) || tier.Media() != nil {
		t.Error("RemoveMedia should detach the media from the tiers")
	}

	v := NewCtrlVocab("pos", "")
	if err := trs.AddCtrlVocab(v); err != nil {
		t.Fatal(err)
	}
	if err := trs.AddCtrlVocab(NewCtrlVocab("pos", "")); !errors.Is(err, apperrors.ErrInvariant) {
		t.Errorf("duplicate vocabulary name: got %v, want invariant violation", err)
	}
	if trs.FindCtrlVocab("pos") != v {
		t.Error("FindCtrlVocab failed")
	}

	tier2 := NewTier("b")
	if err := tier2.SetCtrlVocab(NewCtrlVocab("pos", "")); err != nil {
		t.Fatal(err)
	}
	if err := trs.Append(tier2); !errors.Is(err, apperrors.ErrInvariant) {
		t.Errorf("appending a tier with a clashing vocabulary: got %v, want invariant violation", err)
	}
	if trs.Len() != 1 || len(trs.CtrlVocabs()) != 1 {
		t.Errorf("transcription changed after rejection: %d tiers, %d vocabularies", trs.Len(), len(trs.CtrlVocabs()))
	}
	if err := tier2.SetCtrlVocab(v); err != nil {
		t.Fatal(err)
	}
	if err := trs.Append(tier2); err != nil {
		t.Errorf("appending a tier sharing the vocabulary: %v", err)
	}
}

func TestTranscriptionCopy(t *testing.T) {
	trs := NewTranscription("corpus")
	trs.SetMeta("author", "x")
	parent, _ := trs.CreateTier("parent")
	child, _ := trs.CreateTier("child")
	fillTier(t, parent, 1, 2, 3)
	fillTier(t, child, 1, 3)
	if _, err := parent.CreateCtrlVocab(""); err != nil {
		t.Fatal(err)
	}
	if err := trs.AddHierarchyLink(TimeAlignment, parent, child); err != nil {
		t.Fatal(err)
	}

	c := trs.Copy()
	if c.ID() != trs.ID() || c.GetMeta("author") != "x" || c.Len() != 2 {
		t.Fatalf("copy = %s (%s), %d tiers", c.Name(), c.ID(), c.Len())
	}
	cp, _ := c.At(0)
	cc, _ := c.At(1)
	if cp == parent || cp.ID() != parent.ID() {
		t.Error("copied tier should be a new object with the same id")
	}
	if p, _, ok := c.Hierarchy().Parent(cc); !ok || p != cp {
		t.Error("links should be rewired to the copied tiers")
	}
	if len(c.CtrlVocabs()) != 1 || c.CtrlVocabs()[0] != cp.CtrlVocab() {
		t.Error("vocabularies should be rewired to the copied tiers")
	}

	// The copy enforces its own links.
	last, _ := cp.At(1)
	if err := last.SetBestLocalization(MustInterval(MustPoint(2, 0), MustPoint(4, 0))); !errors.Is(err, apperrors.ErrHierarchy) {
		t.Errorf("copy link: got %v, want hierarchy violation", err)
	}
	if _, err := c.CreateTier("extra"); err != nil {
		t.Fatal(err)
	}
	if trs.Len() != 2 {
		t.Error("changing the copy changed the original")
	}
}
