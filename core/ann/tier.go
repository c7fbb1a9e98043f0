package ann

import (
	"slices"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/FocuswithJustin/annokit/core/errors"
)

// tierHost is implemented by the transcription holding a tier.
type tierHost interface {
	// checkTierChange validates a change of t against the hierarchy
	// links t takes part in.
	checkTierChange(t *Tier, c tierChange) error

	// checkTierName validates name as the new name of t.
	checkTierName(t *Tier, name string) error

	// registerCtrlVocab and registerMedia record what a tier attaches.
	registerCtrlVocab(v *CtrlVocab) error
	registerMedia(m *Media) error

	// tiersWithCtrlVocab returns the tiers sharing vocabulary v.
	tiersWithCtrlVocab(v *CtrlVocab) []*Tier
}

// Tier is an ordered sequence of annotations sharing one localization kind.
//
// Annotations are kept sorted by their lowest, then highest localization.
// Every mutation is validated before it is applied: a rejected call leaves
// the tier, its annotations and the transcription unchanged.
type Tier struct {
	Metadata
	name  string
	anns  []*Annotation
	vocab *CtrlVocab
	media *Media
	caps  Capabilities
	host  tierHost
}

// NewTier returns an empty tier with DefaultCapabilities. A blank name is
// replaced by the tier id.
func NewTier(name string) *Tier {
	t := &Tier{Metadata: newMetadata(), caps: DefaultCapabilities()}
	t.name = strings.TrimSpace(name)
	if t.name == "" {
		t.name = t.ID()
	}
	return t
}

// Name returns the tier name.
func (t *Tier) Name() string { return t.name }

// SetName renames the tier. Within a transcription the name must stay
// unique.
func (t *Tier) SetName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.NewInvariant("tier", "name is empty")
	}
	if t.host != nil {
		if err := t.host.checkTierName(t, name); err != nil {
			return err
		}
	}
	t.name = name
	return nil
}

// Len returns the number of annotations.
func (t *Tier) Len() int { return len(t.anns) }

// IsEmpty reports whether the tier holds no annotation.
func (t *Tier) IsEmpty() bool { return len(t.anns) == 0 }

// At returns the i-th annotation.
func (t *Tier) At(i int) (*Annotation, error) {
	if i < 0 || i >= len(t.anns) {
		return nil, apperrors.NewIndex(i, len(t.anns))
	}
	return t.anns[i], nil
}

// Annotations returns the annotations in order. The slice is a copy; the
// annotations are not.
func (t *Tier) Annotations() []*Annotation { return slices.Clone(t.anns) }

// Kind returns the localization kind of the annotations, or KindNone.
func (t *Tier) Kind() Kind {
	if len(t.anns) == 0 {
		return KindNone
	}
	return t.anns[0].Kind()
}

// IsPoint reports whether the tier holds points.
func (t *Tier) IsPoint() bool { return t.Kind() == KindPoint }

// IsInterval reports whether the tier holds intervals.
func (t *Tier) IsInterval() bool { return t.Kind() == KindInterval }

// IsDisjoint reports whether the tier holds disjoint intervals.
func (t *Tier) IsDisjoint() bool { return t.Kind() == KindDisjoint }

// Capabilities returns the profile the tier is checked against.
func (t *Tier) Capabilities() Capabilities { return t.caps }

// SetCapabilities changes the profile. It fails if an annotation already
// in the tier is not accepted by caps.
func (t *Tier) SetCapabilities(caps Capabilities) error {
	if err := t.checkCapabilities(caps); err != nil {
		return err
	}
	t.caps = caps
	return nil
}

func (t *Tier) checkCapabilities(caps Capabilities) error {
	if err := checkSequence(t.anns, caps); err != nil {
		return err
	}
	if t.vocab != nil && !caps.CtrlVocabSupport {
		return apperrors.NewUnsupported("controlled vocabulary", "profile has no controlled vocabulary support")
	}
	if t.media != nil && !caps.MediaSupport {
		return apperrors.NewUnsupported("media", "profile has no media support")
	}
	return nil
}

// CtrlVocab returns the controlled vocabulary, or nil.
func (t *Tier) CtrlVocab() *CtrlVocab { return t.vocab }

// SetCtrlVocab attaches a controlled vocabulary, or removes it when v is
// nil. Every existing label must be in the vocabulary.
func (t *Tier) SetCtrlVocab(v *CtrlVocab) error {
	if v != nil {
		if !t.caps.CtrlVocabSupport {
			return apperrors.NewUnsupported("controlled vocabulary", "profile has no controlled vocabulary support")
		}
		for _, a := range t.anns {
			for _, l := range a.labels {
				if err := v.checkLabel(l); err != nil {
					return err
				}
			}
		}
		if t.host != nil {
			if err := t.host.registerCtrlVocab(v); err != nil {
				return err
			}
		}
	}
	t.vocab = v
	return nil
}

// CreateCtrlVocab builds a controlled vocabulary from the tags in use and
// attaches it. An existing vocabulary is completed rather than replaced, so
// calling it again adds nothing.
func (t *Tier) CreateCtrlVocab(name string) (*CtrlVocab, error) {
	v := t.vocab
	if v == nil {
		if name == "" {
			name = "v_" + t.name
		}
		v = NewCtrlVocab(name, "")
	} else {
		v = v.Copy()
	}
	for _, a := range t.anns {
		for _, l := range a.labels {
			for _, e := range l.entries {
				if _, err := v.Add(e.Tag, ""); err != nil {
					return nil, err
				}
			}
		}
	}
	if t.vocab != nil {
		// Copy keeps the id; install the completed entries in place.
		*t.vocab = *v
		return t.vocab, nil
	}
	if err := t.SetCtrlVocab(v); err != nil {
		return nil, err
	}
	return v, nil
}

// RemoveCtrlVocabTag removes tag from the vocabulary of the tier. It fails
// while a label of a tier sharing the vocabulary still uses the tag.
func (t *Tier) RemoveCtrlVocabTag(tag Tag) (bool, error) {
	if t.vocab == nil {
		return false, apperrors.NewNotFound("controlled vocabulary", "tier "+t.name)
	}
	if !t.vocab.Contains(tag) {
		return false, nil
	}
	tiers := []*Tier{t}
	if t.host != nil {
		tiers = t.host.tiersWithCtrlVocab(t.vocab)
	}
	for _, o := range tiers {
		if a := o.firstLabeled(tag); a != nil {
			return false, apperrors.NewInvariantf("tier", "tag %q is used by %s in tier %q", tag.Content(), a.location, o.name)
		}
	}
	return t.vocab.Remove(tag), nil
}

// firstLabeled returns the first annotation with a label holding tag.
func (t *Tier) firstLabeled(tag Tag) *Annotation {
	for _, a := range t.anns {
		for _, l := range a.labels {
			for _, e := range l.entries {
				if e.Tag.Key() == tag.Key() {
					return a
				}
			}
		}
	}
	return nil
}

// Media returns the attached media, or nil.
func (t *Tier) Media() *Media { return t.media }

// SetMedia attaches a media, or removes it when m is nil.
func (t *Tier) SetMedia(m *Media) error {
	if m != nil && !t.caps.MediaSupport {
		return apperrors.NewUnsupported("media", "profile has no media support")
	}
	if m != nil && t.host != nil {
		if err := t.host.registerMedia(m); err != nil {
			return err
		}
	}
	t.media = m
	return nil
}

// LabelType returns the tag type used by the annotations, or "".
func (t *Tier) LabelType() TagType {
	return t.labelTypeExcept(nil)
}

func (t *Tier) labelTypeExcept(skip *Annotation) TagType {
	for _, a := range t.anns {
		if a == skip {
			continue
		}
		if typ := a.LabelType(); typ != "" {
			return typ
		}
	}
	return ""
}

// CreateAnnotation builds an annotation and adds it to the tier.
func (t *Tier) CreateAnnotation(loc *Location, labels ...*Label) (*Annotation, error) {
	a, err := NewAnnotation(loc, labels...)
	if err != nil {
		return nil, err
	}
	if err := t.Add(a); err != nil {
		return nil, err
	}
	return a, nil
}

// Add inserts an annotation at its sorted position. The annotation must
// not belong to another tier. Add fails when the localization kind differs
// from the tier's, when the profile does not accept the annotation, when a
// label is outside the controlled vocabulary, when the annotation overlaps
// another one and overlaps are not supported, when the same localization
// is already annotated, or when a hierarchy link would be broken.
func (t *Tier) Add(a *Annotation) error {
	_, err := t.insert(a, false)
	return err
}

// Append adds an annotation after the last one. It fails if the
// annotation does not sort after every annotation of the tier.
func (t *Tier) Append(a *Annotation) error {
	_, err := t.insert(a, true)
	return err
}

func (t *Tier) insert(a *Annotation, last bool) (int, error) {
	if a == nil {
		return -1, apperrors.NewType("nil", "annotation")
	}
	if a.owner != nil {
		return -1, apperrors.NewInvariant("tier", "annotation already belongs to a tier")
	}
	if err := t.checkAnnotation(a, nil); err != nil {
		return -1, err
	}
	pos := t.position(a)
	if last && pos != len(t.anns) {
		return -1, apperrors.NewInvariantf("tier", "annotation %s does not follow the last annotation", a.location)
	}
	if err := t.checkNeighbors(t.anns, a, pos); err != nil {
		return -1, err
	}
	candidate := slices.Insert(slices.Clone(t.anns), pos, a)
	if err := t.checkHost(tierChange{candidate: candidate, added: []*Annotation{a}, from: pos, to: len(candidate)}); err != nil {
		return -1, err
	}
	t.anns = candidate
	a.owner = t
	return pos, nil
}

// Pop removes and returns the i-th annotation.
func (t *Tier) Pop(i int) (*Annotation, error) {
	if i < 0 || i >= len(t.anns) {
		return nil, apperrors.NewIndex(i, len(t.anns))
	}
	a := t.anns[i]
	candidate := slices.Delete(slices.Clone(t.anns), i, i+1)
	if err := t.checkHost(tierChange{candidate: candidate, removed: []*Annotation{a}, from: i, to: len(candidate)}); err != nil {
		return nil, err
	}
	t.anns = candidate
	a.owner = nil
	return a, nil
}

// Remove deletes the annotations found by Find(begin, end, overlaps) and
// returns how many were removed. Nothing is removed on error.
func (t *Tier) Remove(begin, end Point, overlaps bool) (int, error) {
	found := t.Find(begin, end, overlaps)
	if len(found) == 0 {
		return 0, nil
	}
	candidate := slices.DeleteFunc(slices.Clone(t.anns), func(a *Annotation) bool {
		return slices.Contains(found, a)
	})
	if err := t.checkHost(tierChange{candidate: candidate, removed: found, to: len(candidate)}); err != nil {
		return 0, err
	}
	t.anns = candidate
	for _, a := range found {
		a.owner = nil
	}
	return len(found), nil
}

// relocate implements annotationOwner.
func (t *Tier) relocate(a *Annotation, loc *Location) error {
	i := t.indexOf(a)
	if i < 0 {
		return apperrors.NewNotFound("annotation", a.ID())
	}
	moved := &Annotation{Metadata: a.Metadata, location: loc, labels: a.labels, score: a.score}
	if err := t.checkAnnotation(moved, a); err != nil {
		return err
	}
	rest := slices.Delete(slices.Clone(t.anns), i, i+1)
	pos := positionIn(rest, moved)
	if err := t.checkNeighbors(rest, moved, pos); err != nil {
		return err
	}
	candidate := slices.Insert(rest, pos, moved)
	change := tierChange{
		candidate: candidate,
		added:     []*Annotation{moved},
		removed:   []*Annotation{a},
		from:      min(i, pos),
		to:        max(i, pos) + 1,
	}
	if err := t.checkHost(change); err != nil {
		return err
	}
	a.location = loc
	candidate[pos] = a
	t.anns = candidate
	return nil
}

// validateAnnotationLabels implements annotationOwner.
func (t *Tier) validateAnnotationLabels(a *Annotation, labels []*Label) error {
	return t.checkLabels(labels, a)
}

// indexOf returns the position of a in the tier, or -1.
func (t *Tier) indexOf(a *Annotation) int {
	i := sort.Search(len(t.anns), func(i int) bool { return compareAnnotations(t.anns[i], a) >= 0 })
	for ; i < len(t.anns) && compareAnnotations(t.anns[i], a) == 0; i++ {
		if t.anns[i] == a {
			return i
		}
	}
	return slices.Index(t.anns, a)
}

// compareAnnotations orders annotations by lowest, then highest midpoint.
func compareAnnotations(a, b *Annotation) int {
	al, bl := a.location.Lowest().mid, b.location.Lowest().mid
	switch {
	case al < bl:
		return -1
	case al > bl:
		return 1
	}
	ah, bh := a.location.Highest().mid, b.location.Highest().mid
	switch {
	case ah < bh:
		return -1
	case ah > bh:
		return 1
	}
	return 0
}

// position returns where a sorts in the tier, after equal annotations.
func (t *Tier) position(a *Annotation) int { return positionIn(t.anns, a) }

func positionIn(anns []*Annotation, a *Annotation) int {
	return sort.Search(len(anns), func(i int) bool { return compareAnnotations(anns[i], a) > 0 })
}

// checkAnnotation validates a against the tier kind and profile. skip is
// the annotation a replaces, if any.
func (t *Tier) checkAnnotation(a *Annotation, skip *Annotation) error {
	kind := a.Kind()
	if !t.caps.Accepts(kind) {
		return apperrors.NewUnsupported(kind.String()+" localization", "not supported by the tier profile")
	}
	for _, o := range t.anns {
		if o != skip {
			if o.Kind() != kind {
				return apperrors.NewType(a.location.String(), o.Kind().String())
			}
			break
		}
	}
	if a.location.Len() > 1 && !t.caps.AlternativeLocalizationSupport {
		return apperrors.NewUnsupported("alternative localizations", "not supported by the tier profile")
	}
	return t.checkLabels(a.labels, skip)
}

// checkLabels validates labels of an annotation of the tier. skip is the
// annotation whose labels are replaced, if any.
func (t *Tier) checkLabels(labels []*Label, skip *Annotation) error {
	typ := t.labelTypeExcept(skip)
	for _, l := range labels {
		if lt := l.Type(); lt != "" && typ != "" && lt != typ {
			return apperrors.NewType(l.String(), string(typ))
		} else if typ == "" {
			typ = lt
		}
		if l.Len() > 1 && !t.caps.AlternativeTagSupport {
			return apperrors.NewUnsupported("alternative tags", "not supported by the tier profile")
		}
		if t.vocab != nil {
			if err := t.vocab.checkLabel(l); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkNeighbors validates a inserted at pos in anns: same localization
// already annotated, and overlaps when the profile rejects them.
func (t *Tier) checkNeighbors(anns []*Annotation, a *Annotation, pos int) error {
	lo, hi := a.location.Lowest(), a.location.Highest()
	for i := pos - 1; i >= 0; i-- {
		o := anns[i]
		if sameLocalization(o, a) {
			return apperrors.NewInvariantf("tier", "localization %s is already annotated", a.location)
		}
		if !o.location.Lowest().Equal(lo) {
			break
		}
	}
	for i := pos; i < len(anns); i++ {
		o := anns[i]
		if sameLocalization(o, a) {
			return apperrors.NewInvariantf("tier", "localization %s is already annotated", a.location)
		}
		if o.location.Lowest().Greater(lo) {
			break
		}
	}
	if t.caps.OverlapsSupport {
		return nil
	}
	if pos > 0 && overlaps(anns[pos-1], lo, hi) {
		return apperrors.NewInvariantf("tier", "%s overlaps %s", a.location, anns[pos-1].location)
	}
	if pos < len(anns) && overlaps(anns[pos], lo, hi) {
		return apperrors.NewInvariantf("tier", "%s overlaps %s", a.location, anns[pos].location)
	}
	return nil
}

func sameLocalization(a, b *Annotation) bool {
	for _, e := range b.location.entries {
		if a.location.Contains(e.Localization) {
			return true
		}
	}
	return false
}

// overlaps reports whether the extent of o overlaps [lo, hi]. Points
// overlap when they are equal.
func overlaps(o *Annotation, lo, hi Point) bool {
	olo, ohi := o.location.Lowest(), o.location.Highest()
	if o.Kind() == KindPoint {
		return olo.Equal(lo)
	}
	return olo.Less(hi) && lo.Less(ohi)
}

// checkSequence validates a whole annotation sequence against caps.
func checkSequence(anns []*Annotation, caps Capabilities) error {
	for i, a := range anns {
		if !caps.Accepts(a.Kind()) {
			return apperrors.NewUnsupported(a.Kind().String()+" localization", "not supported by the profile")
		}
		if a.location.Len() > 1 && !caps.AlternativeLocalizationSupport {
			return apperrors.NewUnsupported("alternative localizations", "not supported by the profile")
		}
		if !caps.AlternativeTagSupport {
			for _, l := range a.labels {
				if l.Len() > 1 {
					return apperrors.NewUnsupported("alternative tags", "not supported by the profile")
				}
			}
		}
		if !caps.OverlapsSupport && i > 0 && overlaps(anns[i-1], a.location.Lowest(), a.location.Highest()) {
			return apperrors.NewInvariantf("tier", "%s overlaps %s", a.location, anns[i-1].location)
		}
	}
	return nil
}

func (t *Tier) checkHost(c tierChange) error {
	if t.host == nil {
		return nil
	}
	return t.host.checkTierChange(t, c)
}

// Validate checks the tier against caps without changing anything,
// including the gaps and radius constraints that mutations do not check.
// It returns every problem found.
func (t *Tier) Validate(caps Capabilities) []error {
	var errs []error
	if t.Len() > 0 && !caps.Accepts(t.Kind()) {
		errs = append(errs, apperrors.NewUnsupported(t.Kind().String()+" localization", "tier "+t.name))
	}
	if t.vocab != nil && !caps.CtrlVocabSupport {
		errs = append(errs, apperrors.NewUnsupported("controlled vocabulary", "tier "+t.name))
	}
	if t.media != nil && !caps.MediaSupport {
		errs = append(errs, apperrors.NewUnsupported("media", "tier "+t.name))
	}
	for i, a := range t.anns {
		if a.location.Len() > 1 && !caps.AlternativeLocalizationSupport {
			errs = append(errs, apperrors.NewUnsupported("alternative localizations", "tier "+t.name+" at "+a.location.String()))
		}
		for _, l := range a.labels {
			if l.Len() > 1 && !caps.AlternativeTagSupport {
				errs = append(errs, apperrors.NewUnsupported("alternative tags", "tier "+t.name+" at "+a.location.String()))
				break
			}
		}
		if !caps.RadiusSupport {
			for _, p := range a.location.Points() {
				if p.radius != 0 {
					errs = append(errs, apperrors.NewUnsupported("radius", "tier "+t.name+" at "+a.location.String()))
					break
				}
			}
		}
		if i == 0 {
			continue
		}
		prev := t.anns[i-1]
		if !caps.OverlapsSupport && overlaps(prev, a.location.Lowest(), a.location.Highest()) {
			errs = append(errs, apperrors.NewInvariantf("tier", "%s: %s overlaps %s", t.name, a.location, prev.location))
		}
		if !caps.GapsSupport && a.Kind() != KindPoint && prev.location.Highest().Less(a.location.Lowest()) {
			errs = append(errs, apperrors.NewUnsupported("gaps", "tier "+t.name+" between "+prev.location.String()+" and "+a.location.String()))
		}
	}
	return errs
}

// Copy returns an independent copy with the same ids. The copy does not
// belong to any transcription; its vocabulary and media are copied.
func (t *Tier) Copy() *Tier {
	c := &Tier{
		Metadata: t.copyMeta(),
		name:     t.name,
		anns:     make([]*Annotation, len(t.anns)),
		caps:     t.caps,
	}
	for i, a := range t.anns {
		ca := a.Copy()
		ca.owner = c
		c.anns[i] = ca
	}
	if t.vocab != nil {
		c.vocab = t.vocab.Copy()
	}
	if t.media != nil {
		c.media = t.media.Copy()
	}
	return c
}

func (t *Tier) String() string {
	return t.name + " (" + t.Kind().String() + ", " + strconv.Itoa(len(t.anns)) + " annotations)"
}
