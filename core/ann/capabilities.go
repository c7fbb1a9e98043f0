package ann

// Capabilities declares what a format profile can carry. The core consults
// it on every tier mutation; adapters declare one per format.
type Capabilities struct {
	MultiTiersSupport              bool `yaml:"multi_tiers" json:"multi_tiers"`
	NoTiersSupport                 bool `yaml:"no_tiers" json:"no_tiers"`
	MetadataSupport                bool `yaml:"metadata" json:"metadata"`
	CtrlVocabSupport               bool `yaml:"ctrl_vocab" json:"ctrl_vocab"`
	MediaSupport                   bool `yaml:"media" json:"media"`
	HierarchySupport               bool `yaml:"hierarchy" json:"hierarchy"`
	PointSupport                   bool `yaml:"point" json:"point"`
	IntervalSupport                bool `yaml:"interval" json:"interval"`
	DisjointSupport                bool `yaml:"disjoint" json:"disjoint"`
	AlternativeLocalizationSupport bool `yaml:"alternative_localization" json:"alternative_localization"`
	AlternativeTagSupport          bool `yaml:"alternative_tag" json:"alternative_tag"`
	RadiusSupport                  bool `yaml:"radius" json:"radius"`
	GapsSupport                    bool `yaml:"gaps" json:"gaps"`
	OverlapsSupport                bool `yaml:"overlaps" json:"overlaps"`
}

// FullCapabilities returns the native profile, which accepts everything
// the data model can represent.
func FullCapabilities() Capabilities {
	return Capabilities{
		MultiTiersSupport:              true,
		NoTiersSupport:                 true,
		MetadataSupport:                true,
		CtrlVocabSupport:               true,
		MediaSupport:                   true,
		HierarchySupport:               true,
		PointSupport:                   true,
		IntervalSupport:                true,
		DisjointSupport:                true,
		AlternativeLocalizationSupport: true,
		AlternativeTagSupport:          true,
		RadiusSupport:                  true,
		GapsSupport:                    true,
		OverlapsSupport:                true,
	}
}

// DefaultCapabilities returns the profile of new tiers and
// transcriptions: everything but overlapping annotations.
func DefaultCapabilities() Capabilities {
	c := FullCapabilities()
	c.OverlapsSupport = false
	return c
}

// Accepts reports whether localizations of kind k are supported.
func (c Capabilities) Accepts(k Kind) bool {
	switch k {
	case KindPoint:
		return c.PointSupport
	case KindInterval:
		return c.IntervalSupport
	case KindDisjoint:
		return c.DisjointSupport
	default:
		return false
	}
}
