package formats

import "github.com/FocuswithJustin/annokit/core/ann"

// Native is the name of the profile carrying the whole data model.
const Native = "xra"

func init() {
	registerBuiltins()
}

func registerBuiltins() {
	for _, p := range builtins() {
		// Built-in profiles always have a name.
		_ = Register(p)
	}
}

func builtins() []*Profile {
	return []*Profile{
		{
			Name:         Native,
			Description:  "native XML annotation format",
			Extensions:   []string{".xra"},
			Capabilities: ann.FullCapabilities(),
		},
		{
			Name:        "eaf",
			Description: "ELAN annotation format",
			Extensions:  []string{".eaf"},
			Capabilities: ann.Capabilities{
				MultiTiersSupport: true,
				MetadataSupport:   true,
				CtrlVocabSupport:  true,
				MediaSupport:      true,
				HierarchySupport:  true,
				IntervalSupport:   true,
				GapsSupport:       true,
			},
		},
		{
			Name:        "textgrid",
			Description: "Praat TextGrid",
			Extensions:  []string{".textgrid"},
			Capabilities: ann.Capabilities{
				MultiTiersSupport: true,
				PointSupport:      true,
				IntervalSupport:   true,
			},
		},
		{
			Name:        "trs",
			Description: "Transcriber",
			Extensions:  []string{".trs"},
			Capabilities: ann.Capabilities{
				MultiTiersSupport: true,
				NoTiersSupport:    true,
				MetadataSupport:   true,
				IntervalSupport:   true,
			},
		},
		{
			Name:        "htk",
			Description: "HTK label and master label files",
			Extensions:  []string{".lab", ".mlf"},
			Capabilities: ann.Capabilities{
				MultiTiersSupport:     true,
				IntervalSupport:       true,
				AlternativeTagSupport: true,
				GapsSupport:           true,
			},
		},
		{
			Name:        "weka-arff",
			Description: "Weka attribute-relation file",
			Extensions:  []string{".arff"},
			Capabilities: ann.Capabilities{
				MultiTiersSupport:     true,
				MetadataSupport:       true,
				PointSupport:          true,
				IntervalSupport:       true,
				DisjointSupport:       true,
				AlternativeTagSupport: true,
				GapsSupport:           true,
				OverlapsSupport:       true,
			},
		},
		{
			Name:        "weka-xrff",
			Description: "Weka XML attribute-relation file",
			Extensions:  []string{".xrff"},
			Capabilities: ann.Capabilities{
				MultiTiersSupport:     true,
				MetadataSupport:       true,
				PointSupport:          true,
				IntervalSupport:       true,
				DisjointSupport:       true,
				AlternativeTagSupport: true,
				GapsSupport:           true,
				OverlapsSupport:       true,
			},
		},
		{
			Name:        "csv",
			Description: "comma-separated values",
			Extensions:  []string{".csv"},
			Capabilities: ann.Capabilities{
				MultiTiersSupport: true,
				PointSupport:      true,
				IntervalSupport:   true,
				GapsSupport:       true,
				OverlapsSupport:   true,
			},
		},
		{
			Name:        "txt",
			Description: "raw text, one annotation per line",
			Extensions:  []string{".txt"},
			Capabilities: ann.Capabilities{
				MultiTiersSupport: true,
				PointSupport:      true,
				IntervalSupport:   true,
				GapsSupport:       true,
			},
		},
		{
			Name:        "antx",
			Description: "Annotation Pro",
			Extensions:  []string{".antx"},
			Capabilities: ann.Capabilities{
				MultiTiersSupport: true,
				NoTiersSupport:    true,
				MetadataSupport:   true,
				MediaSupport:      true,
				PointSupport:      true,
				IntervalSupport:   true,
				GapsSupport:       true,
				OverlapsSupport:   true,
			},
		},
		{
			Name:        "anvil",
			Description: "ANVIL video annotation",
			Extensions:  []string{".anvil"},
			Capabilities: ann.Capabilities{
				MultiTiersSupport: true,
				MetadataSupport:   true,
				CtrlVocabSupport:  true,
				MediaSupport:      true,
				HierarchySupport:  true,
				PointSupport:      true,
				IntervalSupport:   true,
				GapsSupport:       true,
			},
		},
		{
			Name:        "srt",
			Description: "SubRip subtitles",
			Extensions:  []string{".srt"},
			Capabilities: ann.Capabilities{
				IntervalSupport: true,
				GapsSupport:     true,
			},
		},
		{
			Name:        "vtt",
			Description: "WebVTT subtitles",
			Extensions:  []string{".vtt"},
			Capabilities: ann.Capabilities{
				MetadataSupport: true,
				IntervalSupport: true,
				GapsSupport:     true,
			},
		},
		{
			Name:        "audacity",
			Description: "Audacity label track",
			Extensions:  []string{".aup"},
			Capabilities: ann.Capabilities{
				MultiTiersSupport: true,
				PointSupport:      true,
				IntervalSupport:   true,
				GapsSupport:       true,
				OverlapsSupport:   true,
			},
		},
	}
}
