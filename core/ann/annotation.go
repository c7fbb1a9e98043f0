package ann

import (
	"strings"

	apperrors "github.com/FocuswithJustin/annokit/core/errors"
)

// annotationOwner is implemented by the tier holding an annotation. It
// validates changes before the annotation commits them.
type annotationOwner interface {
	// relocate validates loc as the new location of a and, on success,
	// installs it.
	relocate(a *Annotation, loc *Location) error

	// validateAnnotationLabels checks labels as the new labels of a.
	validateAnnotationLabels(a *Annotation, labels []*Label) error
}

// Annotation pairs one Location with zero or more Labels.
type Annotation struct {
	Metadata
	location *Location
	labels   []*Label
	score    Score
	owner    annotationOwner
}

// NewAnnotation returns an annotation. The location must hold at least one
// localization; nil labels are dropped and all tagged labels must share a
// tag type. Location and labels are copied.
func NewAnnotation(loc *Location, labels ...*Label) (*Annotation, error) {
	if loc == nil || loc.Len() == 0 {
		return nil, apperrors.NewType("", "non-empty location")
	}
	ls, err := normalizeLabels(labels)
	if err != nil {
		return nil, err
	}
	return &Annotation{
		Metadata: newMetadata(),
		location: loc.Copy(),
		labels:   ls,
	}, nil
}

// normalizeLabels copies labels, drops nil ones and checks that every
// tagged label has the same tag type.
func normalizeLabels(labels []*Label) ([]*Label, error) {
	out := make([]*Label, 0, len(labels))
	var typ TagType
	for _, l := range labels {
		if l == nil {
			continue
		}
		if lt := l.Type(); lt != "" {
			if typ == "" {
				typ = lt
			} else if lt != typ {
				return nil, apperrors.NewType(l.String(), string(typ))
			}
		}
		out = append(out, l.Copy())
	}
	return out, nil
}

// Location returns a copy of the location.
func (a *Annotation) Location() *Location { return a.location.Copy() }

// Labels returns copies of the labels.
func (a *Annotation) Labels() []*Label {
	out := make([]*Label, len(a.labels))
	for i, l := range a.labels {
		out[i] = l.Copy()
	}
	return out
}

// LabelsLen returns the number of labels.
func (a *Annotation) LabelsLen() int { return len(a.labels) }

// Score returns the annotation score.
func (a *Annotation) Score() Score { return a.score }

// SetScore sets the annotation score.
func (a *Annotation) SetScore(s Score) { a.score = s }

// IsLabeled reports whether at least one label holds a tag.
func (a *Annotation) IsLabeled() bool {
	for _, l := range a.labels {
		if l.IsTagged() {
			return true
		}
	}
	return false
}

// LabelType returns the tag type of the labels, or "" when unlabeled.
func (a *Annotation) LabelType() TagType {
	for _, l := range a.labels {
		if t := l.Type(); t != "" {
			return t
		}
	}
	return ""
}

// BestTag returns the best tag of the i-th label.
func (a *Annotation) BestTag(i int) (Tag, bool) {
	if i < 0 || i >= len(a.labels) {
		return Tag{}, false
	}
	return a.labels[i].Best()
}

// setLabels validates labels against the owner, then installs them.
func (a *Annotation) setLabels(labels []*Label) error {
	if a.owner != nil {
		if err := a.owner.validateAnnotationLabels(a, labels); err != nil {
			return err
		}
	}
	a.labels = labels
	return nil
}

// SetLabels replaces the labels. The annotation is unchanged on error.
func (a *Annotation) SetLabels(labels ...*Label) error {
	ls, err := normalizeLabels(labels)
	if err != nil {
		return err
	}
	return a.setLabels(ls)
}

// AppendLabel adds a label after the existing ones.
func (a *Annotation) AppendLabel(l *Label) error {
	if l == nil {
		return nil
	}
	ls, err := normalizeLabels(append(a.Labels(), l))
	if err != nil {
		return err
	}
	return a.setLabels(ls)
}

// AddTag adds tag as an alternative of the i-th label. An index equal to
// the number of labels appends a new label.
func (a *Annotation) AddTag(tag Tag, score Score, i int) error {
	if i < 0 || i > len(a.labels) {
		return apperrors.NewIndex(i, len(a.labels)+1)
	}
	ls := a.Labels()
	if i == len(ls) {
		ls = append(ls, &Label{})
	}
	if err := ls[i].Append(tag, score); err != nil {
		return err
	}
	ls, err := normalizeLabels(ls)
	if err != nil {
		return err
	}
	return a.setLabels(ls)
}

// RemoveTag removes tag from every label. Labels left without any tag are
// removed. It reports whether a tag was removed.
func (a *Annotation) RemoveTag(tag Tag) (bool, error) {
	ls := a.Labels()
	removed := false
	kept := ls[:0]
	for _, l := range ls {
		if l.Remove(tag) {
			removed = true
			if !l.IsTagged() {
				continue
			}
		}
		kept = append(kept, l)
	}
	if !removed {
		return false, nil
	}
	if err := a.setLabels(kept); err != nil {
		return false, err
	}
	return true, nil
}

// SetBestLocalization replaces the best localization of the location,
// keeping its score. When the annotation belongs to a tier, the tier
// validates the new location first (kind, overlaps, hierarchy links); the
// annotation is unchanged on error.
func (a *Annotation) SetBestLocalization(loc Localization) error {
	next := a.location.Copy()
	if err := next.SetBest(loc); err != nil {
		return err
	}
	return a.setLocation(next)
}

// SetLocation replaces the whole location, validated as SetBestLocalization.
func (a *Annotation) SetLocation(loc *Location) error {
	if loc == nil || loc.Len() == 0 {
		return apperrors.NewType("", "non-empty location")
	}
	return a.setLocation(loc.Copy())
}

func (a *Annotation) setLocation(loc *Location) error {
	if a.owner != nil {
		return a.owner.relocate(a, loc)
	}
	a.location = loc
	return nil
}

// LowestLocalization returns the lowest point over all alternatives.
func (a *Annotation) LowestLocalization() Point { return a.location.Lowest() }

// HighestLocalization returns the highest point over all alternatives.
func (a *Annotation) HighestLocalization() Point { return a.location.Highest() }

// Points returns the boundary points of every alternative localization.
func (a *Annotation) Points() []Point { return a.location.Points() }

// Kind returns the localization kind.
func (a *Annotation) Kind() Kind { return a.location.Kind() }

// ContainsLocalization reports whether loc is one of the alternatives.
func (a *Annotation) ContainsLocalization(loc Localization) bool {
	return a.location.Contains(loc)
}

// SerializeLabels returns the text form of the labels.
func (a *Annotation) SerializeLabels(sep, empty string, alt bool) string {
	return SerializeLabels(a.labels, sep, empty, alt)
}

// Match reports whether any label matches the predicates.
func (a *Annotation) Match(preds []Predicate, logic Logic) bool {
	for _, l := range a.labels {
		if l.Match(preds, logic) {
			return true
		}
	}
	return false
}

// Equal compares score, location and labels. Ids and other metadata are
// ignored.
func (a *Annotation) Equal(o *Annotation) bool {
	if a == nil || o == nil {
		return a == o
	}
	if !a.score.Equal(o.score) || !a.location.Equal(o.location) || len(a.labels) != len(o.labels) {
		return false
	}
	for i, l := range a.labels {
		if !l.Equal(o.labels[i]) {
			return false
		}
	}
	return true
}

// Copy returns an independent copy with the same metadata, id included.
// The copy does not belong to any tier.
func (a *Annotation) Copy() *Annotation {
	return &Annotation{
		Metadata: a.copyMeta(),
		location: a.location.Copy(),
		labels:   a.Labels(),
		score:    a.score,
	}
}

func (a *Annotation) String() string {
	var sb strings.Builder
	sb.WriteString(a.location.String())
	sb.WriteString(" ")
	sb.WriteString(a.SerializeLabels(" ", "", true))
	return strings.TrimSpace(sb.String())
}
