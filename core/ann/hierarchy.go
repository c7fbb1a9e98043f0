package ann

import (
	"slices"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/FocuswithJustin/annokit/core/errors"
)

// LinkType is the constraint a hierarchy link puts on its child tier.
type LinkType int

// Hierarchy link types.
const (
	// TimeAlignment requires every boundary of the child to be a boundary
	// of the parent: child units are made of whole parent units.
	TimeAlignment LinkType = iota + 1
	// TimeAssociation requires both tiers to have the same number of
	// annotations, localized identically position by position.
	TimeAssociation
)

// String returns the link type name.
func (t LinkType) String() string {
	switch t {
	case TimeAlignment:
		return "TimeAlignment"
	case TimeAssociation:
		return "TimeAssociation"
	default:
		return "Unknown"
	}
}

// ParseLinkType returns the link type with the given name, ignoring case.
func ParseLinkType(s string) (LinkType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "timealignment":
		return TimeAlignment, nil
	case "timeassociation":
		return TimeAssociation, nil
	default:
		return 0, apperrors.NewType(s, "hierarchy link type")
	}
}

// Link is one parent/child constraint.
type Link struct {
	Type   LinkType
	Parent *Tier
	Child  *Tier
}

// Hierarchy is the set of links between the tiers of a transcription.
// A tier has at most one parent and the links form no cycle.
type Hierarchy struct {
	links []Link
}

// NewHierarchy returns an empty hierarchy.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{}
}

// Len returns the number of links.
func (h *Hierarchy) Len() int { return len(h.links) }

// Links returns the links in creation order.
func (h *Hierarchy) Links() []Link { return slices.Clone(h.links) }

// Parent returns the parent of child and the type of their link.
func (h *Hierarchy) Parent(child *Tier) (*Tier, LinkType, bool) {
	for _, l := range h.links {
		if l.Child == child {
			return l.Parent, l.Type, true
		}
	}
	return nil, 0, false
}

// Children returns the children of parent linked with type typ, or with
// any type when typ is zero.
func (h *Hierarchy) Children(parent *Tier, typ LinkType) []*Tier {
	var out []*Tier
	for _, l := range h.links {
		if l.Parent == parent && (typ == 0 || l.Type == typ) {
			out = append(out, l.Child)
		}
	}
	return out
}

// Ancestors returns the parent of t, its parent, and so on.
func (h *Hierarchy) Ancestors(t *Tier) []*Tier {
	var out []*Tier
	for cur := t; ; {
		p, _, ok := h.Parent(cur)
		if !ok || slices.Contains(out, p) {
			return out
		}
		out = append(out, p)
		cur = p
	}
}

// AddLink declares child as a child of parent. The link is rejected when
// parent and child are the same tier, when child already has a parent,
// when it would create a cycle, or when the current annotations do not
// satisfy it. The hierarchy is unchanged on error.
func (h *Hierarchy) AddLink(typ LinkType, parent, child *Tier) error {
	if typ != TimeAlignment && typ != TimeAssociation {
		return apperrors.NewType(typ.String(), "hierarchy link type")
	}
	if parent == nil || child == nil {
		return apperrors.NewType("nil", "tier")
	}
	if parent == child {
		return apperrors.NewHierarchy(typ.String(), parent.name, child.name, "a tier cannot be linked to itself")
	}
	if p, _, ok := h.Parent(child); ok {
		return apperrors.NewHierarchy(typ.String(), parent.name, child.name, "child already has parent "+p.name)
	}
	if slices.Contains(h.Ancestors(parent), child) {
		return apperrors.NewHierarchy(typ.String(), parent.name, child.name, "link would create a cycle")
	}
	if err := ValidateLink(typ, parent, child); err != nil {
		return err
	}
	h.links = append(h.links, Link{Type: typ, Parent: parent, Child: child})
	return nil
}

// RemoveChild removes the link to the parent of child.
func (h *Hierarchy) RemoveChild(child *Tier) bool {
	n := len(h.links)
	h.links = slices.DeleteFunc(h.links, func(l Link) bool { return l.Child == child })
	return len(h.links) != n
}

// RemoveParent removes every link to the children of parent.
func (h *Hierarchy) RemoveParent(parent *Tier) bool {
	n := len(h.links)
	h.links = slices.DeleteFunc(h.links, func(l Link) bool { return l.Parent == parent })
	return len(h.links) != n
}

// RemoveTier removes every link t takes part in.
func (h *Hierarchy) RemoveTier(t *Tier) bool {
	n := len(h.links)
	h.links = slices.DeleteFunc(h.links, func(l Link) bool { return l.Parent == t || l.Child == t })
	return len(h.links) != n
}

// ValidateLink checks the current annotations of parent and child against
// a link of type typ.
func ValidateLink(typ LinkType, parent, child *Tier) error {
	return checkLink(typ, parent.name, parent.anns, child.name, child.anns)
}

// ValidateTimeAlignment checks that every boundary of child is a boundary
// of parent.
func ValidateTimeAlignment(parent, child *Tier) error {
	return checkAlignment(parent.name, parent.anns, child.name, child.anns)
}

// ValidateTimeAssociation checks that both tiers are localized
// identically, annotation by annotation.
func ValidateTimeAssociation(parent, child *Tier) error {
	return checkAssociationWindow(parent.name, parent.anns, child.name, child.anns, 0, len(child.anns))
}

// tierChange is a mutation of a tier: the annotation sequence replacing
// the current one, the annotations entering and leaving it, and the
// window [from, to) of candidate positions whose annotation may differ.
type tierChange struct {
	candidate []*Annotation
	added     []*Annotation
	removed   []*Annotation
	from, to  int
}

// validateChange checks the links of t against a change. The links held
// before the change, so only what the change touches is checked.
func (h *Hierarchy) validateChange(t *Tier, c tierChange) error {
	for _, l := range h.links {
		var err error
		switch {
		case t == l.Child && l.Type == TimeAlignment:
			err = checkAlignedChild(l, c)
		case t == l.Parent && l.Type == TimeAlignment:
			err = checkAlignedParent(l, c)
		case t == l.Child:
			err = checkAssociationWindow(l.Parent.name, l.Parent.anns, t.name, c.candidate, c.from, c.to)
		case t == l.Parent:
			err = checkAssociationWindow(t.name, c.candidate, l.Child.name, l.Child.anns, c.from, c.to)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// checkAlignedChild checks that the boundaries entering the child are
// boundaries of the parent. Removing child annotations never breaks the
// link.
func checkAlignedChild(l Link, c tierChange) error {
	for _, a := range c.added {
		for _, p := range a.location.Points() {
			if !l.Parent.HasBoundary(p) {
				return apperrors.NewHierarchy(TimeAlignment.String(), l.Parent.name, l.Child.name,
					"boundary "+p.String()+" of "+a.location.String()+" is not a boundary of the parent")
			}
		}
	}
	return nil
}

// checkAlignedParent checks that no boundary leaving the parent is still
// used by the child.
func checkAlignedParent(l Link, c tierChange) error {
	if l.Child.IsEmpty() {
		return nil
	}
	for _, a := range c.removed {
		for _, p := range a.location.Points() {
			if l.Child.HasBoundary(p) && !hasBoundary(c.candidate, p, l.Parent.caps.OverlapsSupport) {
				return apperrors.NewHierarchy(TimeAlignment.String(), l.Parent.name, l.Child.name,
					"boundary "+p.String()+" of the child would no longer be a boundary of the parent")
			}
		}
	}
	return nil
}

func checkLink(typ LinkType, pname string, parent []*Annotation, cname string, child []*Annotation) error {
	switch typ {
	case TimeAlignment:
		return checkAlignment(pname, parent, cname, child)
	case TimeAssociation:
		return checkAssociationWindow(pname, parent, cname, child, 0, len(child))
	default:
		return apperrors.NewType(typ.String(), "hierarchy link type")
	}
}

func checkAlignment(pname string, parent []*Annotation, cname string, child []*Annotation) error {
	if len(child) == 0 {
		return nil
	}
	var bounds []Point
	for _, a := range parent {
		bounds = append(bounds, a.location.Points()...)
	}
	sort.Slice(bounds, func(i, j int) bool { return bounds[i].mid < bounds[j].mid })

	for _, a := range child {
		for _, p := range a.location.Points() {
			if !containsPoint(bounds, p) {
				return apperrors.NewHierarchy(TimeAlignment.String(), pname, cname,
					"boundary "+p.String()+" of "+a.location.String()+" is not a boundary of the parent")
			}
		}
	}
	return nil
}

// containsPoint reports whether p equals one of the points, sorted by
// midpoint.
func containsPoint(sorted []Point, p Point) bool {
	i := sort.Search(len(sorted), func(i int) bool { return !sorted[i].Less(p) })
	for ; i < len(sorted) && !sorted[i].Greater(p); i++ {
		if sorted[i].Equal(p) {
			return true
		}
	}
	return false
}

// checkAssociationWindow checks that both sequences have the same length
// and match position by position in [from, to).
func checkAssociationWindow(pname string, parent []*Annotation, cname string, child []*Annotation, from, to int) error {
	if len(parent) != len(child) {
		return apperrors.NewHierarchy(TimeAssociation.String(), pname, cname,
			"tiers have "+strconv.Itoa(len(parent))+" and "+strconv.Itoa(len(child))+" annotations")
	}
	for i := max(from, 0); i < min(to, len(child)); i++ {
		pa, ca := parent[i], child[i]
		if !pa.LowestLocalization().Equal(ca.LowestLocalization()) || !pa.HighestLocalization().Equal(ca.HighestLocalization()) {
			return apperrors.NewHierarchy(TimeAssociation.String(), pname, cname,
				"annotation "+ca.location.String()+" does not match "+pa.location.String())
		}
	}
	return nil
}
