package formats

import (
	"fmt"

	"github.com/FocuswithJustin/annokit/core/ann"
	apperrors "github.com/FocuswithJustin/annokit/core/errors"
)

// Check reports what trs would lose when written in the format of p.
// Nothing is modified.
func Check(trs *ann.Transcription, p *Profile) (*Report, error) {
	if trs == nil {
		return nil, apperrors.NewType("nil", "transcription")
	}
	if p == nil {
		return nil, apperrors.NewType("nil", "format profile")
	}
	caps := p.Capabilities
	r := &Report{Transcription: trs.Name(), Format: p.Name, LossClass: LossL0}

	if trs.IsEmpty() {
		if !caps.NoTiersSupport {
			r.AddWarning("format cannot write a file without tiers")
		}
		return r, nil
	}
	if !caps.MetadataSupport && hasMetadata(&trs.Metadata) {
		r.AddLostElement(trs.Name(), "metadata", "format has no metadata", LossL1)
	}
	if !caps.MediaSupport {
		for _, m := range trs.Media() {
			r.AddLostElement(m.URL(), "media", "format has no media reference", LossL1)
		}
	}
	if !caps.CtrlVocabSupport {
		for _, v := range trs.CtrlVocabs() {
			r.AddLostElement(v.Name(), "controlled vocabulary", "format has no controlled vocabulary", LossL1)
		}
	}
	if !caps.HierarchySupport {
		for _, l := range trs.Hierarchy().Links() {
			r.AddLostElement(l.Parent.Name()+" > "+l.Child.Name(), "hierarchy", l.Type.String()+" links are not supported", LossL1)
		}
	}

	written := 0
	for i, t := range trs.Tiers() {
		if i > 0 && !caps.MultiTiersSupport {
			r.AddLostElement(t.Name(), "tier", "format holds a single tier", LossL3)
			continue
		}
		if checkTier(r, t, caps) {
			written++
		}
	}
	if written == 0 {
		r.AddLostElement(trs.Name(), "transcription", "no tier can be written", LossL4)
	}
	return r, nil
}

// CheckFormat is Check with the profile looked up by name.
func CheckFormat(trs *ann.Transcription, format string) (*Report, error) {
	p, err := Get(format)
	if err != nil {
		return nil, err
	}
	return Check(trs, p)
}

// checkTier adds the losses of one tier and reports whether the tier can
// be written at all.
func checkTier(r *Report, t *ann.Tier, caps ann.Capabilities) bool {
	name := t.Name()
	if t.Len() > 0 && !caps.Accepts(t.Kind()) {
		r.AddLostElement(name, "tier", t.Kind().String()+" localizations are not supported", LossL3)
		return false
	}
	if !caps.MetadataSupport && hasMetadata(&t.Metadata) {
		r.AddLostElement(name, "metadata", "format has no metadata", LossL1)
	}

	var altLocs, altTags, radius, overlapping, gaps int
	var prev *ann.Annotation
	for _, a := range t.Annotations() {
		if a.Location().Len() > 1 {
			altLocs++
		}
		for _, l := range a.Labels() {
			if l.Len() > 1 {
				altTags++
				break
			}
		}
		for _, p := range a.Points() {
			if p.Radius() != 0 {
				radius++
				break
			}
		}
		if prev != nil {
			lo, hi := a.LowestLocalization(), prev.HighestLocalization()
			switch {
			case a.Kind() == ann.KindPoint:
				if lo.Equal(hi) {
					overlapping++
				}
			case lo.Less(hi):
				overlapping++
			case hi.Less(lo):
				gaps++
			}
			if a.HighestLocalization().Midpoint() < prev.HighestLocalization().Midpoint() {
				continue
			}
		}
		prev = a
	}

	if altLocs > 0 && !caps.AlternativeLocalizationSupport {
		r.AddLostElement(name, "alternative localization", count(altLocs, "only the best localization is kept"), LossL2)
	}
	if altTags > 0 && !caps.AlternativeTagSupport {
		r.AddLostElement(name, "alternative tag", count(altTags, "only the best tag is kept"), LossL2)
	}
	if radius > 0 && !caps.RadiusSupport {
		r.AddLostElement(name, "radius", count(radius, "radius is dropped"), LossL2)
	}
	if gaps > 0 && !caps.GapsSupport {
		r.AddLostElement(name, "gap", count(gaps, "gaps are filled with empty intervals"), LossL2)
	}
	if overlapping > 0 && !caps.OverlapsSupport {
		r.AddLostElement(name, "overlap", count(overlapping, "overlapping annotations are dropped"), LossL3)
	}
	return true
}

func hasMetadata(m *ann.Metadata) bool {
	return len(m.MetaKeys()) > 1
}

func count(n int, reason string) string {
	return fmt.Sprintf("%d annotations: %s", n, reason)
}
