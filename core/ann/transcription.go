package ann

import (
	"fmt"
	"slices"
	"strings"

	apperrors "github.com/FocuswithJustin/annokit/core/errors"
)

// maxNameAttempts bounds the suffixes tried to make a tier name unique.
const maxNameAttempts = 10000

// Transcription is the root object: an ordered list of tiers with the
// hierarchy linking them, media, controlled vocabularies and metadata.
//
// A Transcription is not safe for concurrent use.
type Transcription struct {
	Metadata
	name      string
	tiers     []*Tier
	hierarchy *Hierarchy
	media     []*Media
	vocabs    []*CtrlVocab
	caps      Capabilities
}

// NewTranscription returns an empty transcription with DefaultCapabilities.
// A blank name is replaced by the transcription id.
func NewTranscription(name string) *Transcription {
	trs := &Transcription{
		Metadata:  newMetadata(),
		hierarchy: NewHierarchy(),
		caps:      DefaultCapabilities(),
	}
	trs.name = strings.TrimSpace(name)
	if trs.name == "" {
		trs.name = trs.ID()
	}
	return trs
}

// Name returns the transcription name.
func (trs *Transcription) Name() string { return trs.name }

// SetName renames the transcription.
func (trs *Transcription) SetName(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = trs.ID()
	}
	trs.name = name
}

// Len returns the number of tiers.
func (trs *Transcription) Len() int { return len(trs.tiers) }

// IsEmpty reports whether there is no tier.
func (trs *Transcription) IsEmpty() bool { return len(trs.tiers) == 0 }

// Tiers returns the tiers in order. The slice is a copy.
func (trs *Transcription) Tiers() []*Tier { return slices.Clone(trs.tiers) }

// At returns the i-th tier.
func (trs *Transcription) At(i int) (*Tier, error) {
	if i < 0 || i >= len(trs.tiers) {
		return nil, apperrors.NewIndex(i, len(trs.tiers))
	}
	return trs.tiers[i], nil
}

// Hierarchy returns the hierarchy. Links must be added through
// AddHierarchyLink.
func (trs *Transcription) Hierarchy() *Hierarchy { return trs.hierarchy }

// Capabilities returns the profile the transcription is checked against.
func (trs *Transcription) Capabilities() Capabilities { return trs.caps }

// SetCapabilities changes the profile of the transcription and of every
// tier. Nothing changes if a tier or the transcription itself is not
// accepted by caps.
func (trs *Transcription) SetCapabilities(caps Capabilities) error {
	if len(trs.tiers) > 1 && !caps.MultiTiersSupport {
		return apperrors.NewUnsupported("multiple tiers", "profile supports a single tier")
	}
	if trs.hierarchy.Len() > 0 && !caps.HierarchySupport {
		return apperrors.NewUnsupported("hierarchy", "profile has no hierarchy support")
	}
	if len(trs.media) > 0 && !caps.MediaSupport {
		return apperrors.NewUnsupported("media", "profile has no media support")
	}
	if len(trs.vocabs) > 0 && !caps.CtrlVocabSupport {
		return apperrors.NewUnsupported("controlled vocabulary", "profile has no controlled vocabulary support")
	}
	for _, t := range trs.tiers {
		if err := t.checkCapabilities(caps); err != nil {
			return apperrors.Wrapf(err, "tier %q", t.name)
		}
	}
	for _, t := range trs.tiers {
		t.caps = caps
	}
	trs.caps = caps
	return nil
}

// CreateTier creates an empty tier, appends it and returns it. When name
// is taken, a numeric suffix is added.
func (trs *Transcription) CreateTier(name string) (*Tier, error) {
	t := NewTier(name)
	unique, err := trs.uniqueName(t.name)
	if err != nil {
		return nil, err
	}
	t.name = unique
	if err := trs.Append(t); err != nil {
		return nil, err
	}
	return t, nil
}

func (trs *Transcription) uniqueName(name string) (string, error) {
	if trs.Find(name, true) == nil {
		return name, nil
	}
	for i := 2; i <= maxNameAttempts; i++ {
		candidate := fmt.Sprintf("%s(%d)", name, i)
		if trs.Find(candidate, true) == nil {
			return candidate, nil
		}
	}
	return "", apperrors.NewInvariantf("transcription", "no unique name found for tier %q", name)
}

// Append adds a tier at the end. The tier must not belong to another
// transcription and its name must be unique. The transcription profile is
// applied to the tier; its vocabulary and media are registered.
func (trs *Transcription) Append(t *Tier) error {
	if t == nil {
		return apperrors.NewType("nil", "tier")
	}
	if t.host != nil {
		return apperrors.NewInvariantf("transcription", "tier %q already belongs to a transcription", t.name)
	}
	if len(trs.tiers) > 0 && !trs.caps.MultiTiersSupport {
		return apperrors.NewUnsupported("multiple tiers", "profile supports a single tier")
	}
	if err := trs.checkTierName(t, t.name); err != nil {
		return err
	}
	if err := t.checkCapabilities(trs.caps); err != nil {
		return err
	}
	if t.vocab != nil {
		if err := trs.AddCtrlVocab(t.vocab); err != nil {
			return err
		}
	}
	if t.media != nil {
		if err := trs.AddMedia(t.media); err != nil {
			return err
		}
	}
	t.caps = trs.caps
	t.host = trs
	trs.tiers = append(trs.tiers, t)
	return nil
}

// Pop removes and returns the i-th tier, with every hierarchy link it
// takes part in.
func (trs *Transcription) Pop(i int) (*Tier, error) {
	if i < 0 || i >= len(trs.tiers) {
		return nil, apperrors.NewIndex(i, len(trs.tiers))
	}
	t := trs.tiers[i]
	trs.hierarchy.RemoveTier(t)
	trs.tiers = slices.Delete(trs.tiers, i, i+1)
	t.host = nil
	return t, nil
}

// Find returns the first tier named name, or nil.
func (trs *Transcription) Find(name string, caseSensitive bool) *Tier {
	name = strings.TrimSpace(name)
	for _, t := range trs.tiers {
		if t.name == name || (!caseSensitive && strings.EqualFold(t.name, name)) {
			return t
		}
	}
	return nil
}

// IndexOf returns the position of t, or -1.
func (trs *Transcription) IndexOf(t *Tier) int {
	return slices.Index(trs.tiers, t)
}

// AddHierarchyLink links two tiers of the transcription.
func (trs *Transcription) AddHierarchyLink(typ LinkType, parent, child *Tier) error {
	if !trs.caps.HierarchySupport {
		return apperrors.NewUnsupported("hierarchy", "profile has no hierarchy support")
	}
	for _, t := range []*Tier{parent, child} {
		if t == nil || trs.IndexOf(t) < 0 {
			name := "nil"
			if t != nil {
				name = t.name
			}
			return apperrors.NewNotFound("tier", name)
		}
	}
	return trs.hierarchy.AddLink(typ, parent, child)
}

// RemoveHierarchyLink removes the link to the parent of child.
func (trs *Transcription) RemoveHierarchyLink(child *Tier) bool {
	return trs.hierarchy.RemoveChild(child)
}

// MinLoc returns the lowest localization over all tiers.
func (trs *Transcription) MinLoc() (Point, bool) {
	var lo Point
	found := false
	for _, t := range trs.tiers {
		if p, ok := t.FirstPoint(); ok && (!found || p.mid < lo.mid) {
			lo, found = p, true
		}
	}
	return lo, found
}

// MaxLoc returns the highest localization over all tiers.
func (trs *Transcription) MaxLoc() (Point, bool) {
	var hi Point
	found := false
	for _, t := range trs.tiers {
		if p, ok := t.LastPoint(); ok && (!found || p.mid > hi.mid) {
			hi, found = p, true
		}
	}
	return hi, found
}

// Media returns the registered media.
func (trs *Transcription) Media() []*Media { return slices.Clone(trs.media) }

// AddMedia registers a media. Registering it twice is a no-op.
func (trs *Transcription) AddMedia(m *Media) error {
	if m == nil {
		return apperrors.NewType("nil", "media")
	}
	if !trs.caps.MediaSupport {
		return apperrors.NewUnsupported("media", "profile has no media support")
	}
	if !slices.Contains(trs.media, m) {
		trs.media = append(trs.media, m)
	}
	return nil
}

// RemoveMedia unregisters a media and detaches it from the tiers.
func (trs *Transcription) RemoveMedia(m *Media) bool {
	i := slices.Index(trs.media, m)
	if i < 0 {
		return false
	}
	trs.media = slices.Delete(trs.media, i, i+1)
	for _, t := range trs.tiers {
		if t.media == m {
			t.media = nil
		}
	}
	return true
}

// CtrlVocabs returns the registered controlled vocabularies.
func (trs *Transcription) CtrlVocabs() []*CtrlVocab { return slices.Clone(trs.vocabs) }

// FindCtrlVocab returns the vocabulary named name, or nil.
func (trs *Transcription) FindCtrlVocab(name string) *CtrlVocab {
	for _, v := range trs.vocabs {
		if v.name == name {
			return v
		}
	}
	return nil
}

// AddCtrlVocab registers a controlled vocabulary. Names are unique.
func (trs *Transcription) AddCtrlVocab(v *CtrlVocab) error {
	if v == nil {
		return apperrors.NewType("nil", "controlled vocabulary")
	}
	if !trs.caps.CtrlVocabSupport {
		return apperrors.NewUnsupported("controlled vocabulary", "profile has no controlled vocabulary support")
	}
	if slices.Contains(trs.vocabs, v) {
		return nil
	}
	if trs.FindCtrlVocab(v.name) != nil {
		return apperrors.NewInvariantf("transcription", "controlled vocabulary %q already exists", v.name)
	}
	trs.vocabs = append(trs.vocabs, v)
	return nil
}

// RemoveCtrlVocab unregisters a vocabulary and detaches it from the tiers.
func (trs *Transcription) RemoveCtrlVocab(v *CtrlVocab) bool {
	i := slices.Index(trs.vocabs, v)
	if i < 0 {
		return false
	}
	trs.vocabs = slices.Delete(trs.vocabs, i, i+1)
	for _, t := range trs.tiers {
		if t.vocab == v {
			t.vocab = nil
		}
	}
	return true
}

// Copy returns an independent copy with the same ids: tiers, links,
// media and vocabularies are copied and rewired to each other.
func (trs *Transcription) Copy() *Transcription {
	c := &Transcription{
		Metadata:  trs.copyMeta(),
		name:      trs.name,
		hierarchy: NewHierarchy(),
		caps:      trs.caps,
	}
	media := make(map[*Media]*Media, len(trs.media))
	for _, m := range trs.media {
		media[m] = m.Copy()
		c.media = append(c.media, media[m])
	}
	vocabs := make(map[*CtrlVocab]*CtrlVocab, len(trs.vocabs))
	for _, v := range trs.vocabs {
		vocabs[v] = v.Copy()
		c.vocabs = append(c.vocabs, vocabs[v])
	}
	tiers := make(map[*Tier]*Tier, len(trs.tiers))
	for _, t := range trs.tiers {
		ct := t.Copy()
		if m, ok := media[t.media]; ok {
			ct.media = m
		}
		if v, ok := vocabs[t.vocab]; ok {
			ct.vocab = v
		}
		ct.host = c
		tiers[t] = ct
		c.tiers = append(c.tiers, ct)
	}
	for _, l := range trs.hierarchy.links {
		c.hierarchy.links = append(c.hierarchy.links, Link{Type: l.Type, Parent: tiers[l.Parent], Child: tiers[l.Child]})
	}
	return c
}

// checkTierChange implements tierHost.
func (trs *Transcription) checkTierChange(t *Tier, c tierChange) error {
	return trs.hierarchy.validateChange(t, c)
}

// checkTierName implements tierHost.
func (trs *Transcription) checkTierName(t *Tier, name string) error {
	for _, o := range trs.tiers {
		if o != t && o.name == name {
			return apperrors.NewInvariantf("transcription", "tier name %q is already used", name)
		}
	}
	return nil
}

// registerCtrlVocab implements tierHost.
func (trs *Transcription) registerCtrlVocab(v *CtrlVocab) error {
	return trs.AddCtrlVocab(v)
}

// tiersWithCtrlVocab implements tierHost.
func (trs *Transcription) tiersWithCtrlVocab(v *CtrlVocab) []*Tier {
	var out []*Tier
	for _, t := range trs.tiers {
		if t.vocab == v {
			out = append(out, t)
		}
	}
	return out
}

// registerMedia implements tierHost.
func (trs *Transcription) registerMedia(m *Media) error {
	return trs.AddMedia(m)
}
