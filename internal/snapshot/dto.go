package snapshot

import (
	"github.com/FocuswithJustin/annokit/core/ann"
	apperrors "github.com/FocuswithJustin/annokit/core/errors"
)

// Version is the snapshot schema version.
const Version = 1

type document struct {
	Version      int              `json:"version"`
	Name         string           `json:"name"`
	Meta         []metaEntry      `json:"meta,omitempty"`
	Capabilities ann.Capabilities `json:"capabilities"`
	Media        []mediaDTO       `json:"media,omitempty"`
	Vocabularies []vocabDTO       `json:"vocabularies,omitempty"`
	Tiers        []tierDTO        `json:"tiers"`
	Hierarchy    []linkDTO        `json:"hierarchy,omitempty"`
}

type metaEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type mediaDTO struct {
	Meta     []metaEntry `json:"meta,omitempty"`
	URL      string      `json:"url"`
	MimeType string      `json:"mime_type"`
}

type vocabDTO struct {
	Meta        []metaEntry  `json:"meta,omitempty"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Entries     []vocabEntry `json:"entries,omitempty"`
}

type vocabEntry struct {
	Content     string      `json:"content"`
	Type        ann.TagType `json:"type"`
	Description string      `json:"description,omitempty"`
}

// tierDTO carries the tier profile. A tier without one takes the profile
// of the transcription.
type tierDTO struct {
	Meta         []metaEntry       `json:"meta,omitempty"`
	Name         string            `json:"name"`
	Capabilities *ann.Capabilities `json:"capabilities,omitempty"`
	Media        string            `json:"media,omitempty"`
	Vocabulary   string            `json:"vocabulary,omitempty"`
	Annotations  []annotationDTO   `json:"annotations,omitempty"`
}

type annotationDTO struct {
	Meta     []metaEntry `json:"meta,omitempty"`
	Location []locDTO    `json:"location"`
	Labels   []labelDTO  `json:"labels,omitempty"`
	Score    *float64    `json:"score,omitempty"`
}

type pointDTO struct {
	Midpoint float64 `json:"midpoint"`
	Radius   float64 `json:"radius,omitempty"`
	Rank     bool    `json:"rank,omitempty"`
}

type locDTO struct {
	Point    *pointDTO    `json:"point,omitempty"`
	Interval []pointDTO   `json:"interval,omitempty"`
	Disjoint [][]pointDTO `json:"disjoint,omitempty"`
	Score    *float64     `json:"score,omitempty"`
}

type labelDTO struct {
	Key  string   `json:"key,omitempty"`
	Tags []tagDTO `json:"tags"`
}

type tagDTO struct {
	Content string      `json:"content"`
	Type    ann.TagType `json:"type,omitempty"`
	Score   *float64    `json:"score,omitempty"`
}

type linkDTO struct {
	Type   string `json:"type"`
	Parent string `json:"parent"`
	Child  string `json:"child"`
}

// fromTranscription builds the document of trs. Media and vocabularies
// are referenced by id.
func fromTranscription(trs *ann.Transcription) *document {
	doc := &document{
		Version:      Version,
		Name:         trs.Name(),
		Meta:         metaOf(&trs.Metadata),
		Capabilities: trs.Capabilities(),
	}
	for _, m := range trs.Media() {
		doc.Media = append(doc.Media, mediaDTO{Meta: metaOf(&m.Metadata), URL: m.URL(), MimeType: m.MimeType()})
	}
	for _, v := range trs.CtrlVocabs() {
		dto := vocabDTO{Meta: metaOf(&v.Metadata), Name: v.Name(), Description: v.Description()}
		for _, e := range v.Entries() {
			dto.Entries = append(dto.Entries, vocabEntry{Content: e.Tag.Content(), Type: e.Tag.Type(), Description: e.Description})
		}
		doc.Vocabularies = append(doc.Vocabularies, dto)
	}
	for _, t := range trs.Tiers() {
		caps := t.Capabilities()
		dto := tierDTO{Meta: metaOf(&t.Metadata), Name: t.Name(), Capabilities: &caps}
		if m := t.Media(); m != nil {
			dto.Media = m.ID()
		}
		if v := t.CtrlVocab(); v != nil {
			dto.Vocabulary = v.ID()
		}
		for _, a := range t.Annotations() {
			dto.Annotations = append(dto.Annotations, annotationOf(a))
		}
		doc.Tiers = append(doc.Tiers, dto)
	}
	for _, l := range trs.Hierarchy().Links() {
		doc.Hierarchy = append(doc.Hierarchy, linkDTO{Type: l.Type.String(), Parent: l.Parent.ID(), Child: l.Child.ID()})
	}
	return doc
}

func metaOf(m *ann.Metadata) []metaEntry {
	keys := m.MetaKeys()
	out := make([]metaEntry, len(keys))
	for i, k := range keys {
		out[i] = metaEntry{Key: k, Value: m.GetMeta(k)}
	}
	return out
}

func scoreOf(s ann.Score) *float64 {
	if v, ok := s.Value(); ok {
		return &v
	}
	return nil
}

func pointOf(p ann.Point) pointDTO {
	return pointDTO{Midpoint: p.Midpoint(), Radius: p.Radius(), Rank: p.IsRank()}
}

func intervalOf(iv ann.Interval) []pointDTO {
	return []pointDTO{pointOf(iv.Begin()), pointOf(iv.End())}
}

func annotationOf(a *ann.Annotation) annotationDTO {
	dto := annotationDTO{Meta: metaOf(&a.Metadata), Score: scoreOf(a.Score())}
	for _, e := range a.Location().Entries() {
		loc := locDTO{Score: scoreOf(e.Score)}
		switch l := e.Localization.(type) {
		case ann.Point:
			p := pointOf(l)
			loc.Point = &p
		case ann.Interval:
			loc.Interval = intervalOf(l)
		case ann.Disjoint:
			for _, iv := range l.Intervals() {
				loc.Disjoint = append(loc.Disjoint, intervalOf(iv))
			}
		}
		dto.Location = append(dto.Location, loc)
	}
	for _, l := range a.Labels() {
		label := labelDTO{Key: l.Key()}
		for _, e := range l.Entries() {
			label.Tags = append(label.Tags, tagDTO{Content: e.Tag.Content(), Type: e.Tag.Type(), Score: scoreOf(e.Score)})
		}
		dto.Labels = append(dto.Labels, label)
	}
	return dto
}

// toTranscription rebuilds a transcription. Every object goes through the
// public API, so a document breaking an invariant is rejected.
func (doc *document) toTranscription() (*ann.Transcription, error) {
	if doc.Version != Version {
		return nil, apperrors.NewUnsupported("snapshot version", "expected version 1")
	}
	trs := ann.NewTranscription(doc.Name)
	setMeta(&trs.Metadata, doc.Meta)
	if err := trs.SetCapabilities(doc.Capabilities); err != nil {
		return nil, err
	}

	media := make(map[string]*ann.Media, len(doc.Media))
	for _, dto := range doc.Media {
		m := ann.NewMedia(dto.URL, dto.MimeType)
		setMeta(&m.Metadata, dto.Meta)
		if err := trs.AddMedia(m); err != nil {
			return nil, err
		}
		media[m.ID()] = m
	}

	vocabs := make(map[string]*ann.CtrlVocab, len(doc.Vocabularies))
	for _, dto := range doc.Vocabularies {
		v := ann.NewCtrlVocab(dto.Name, dto.Description)
		setMeta(&v.Metadata, dto.Meta)
		for _, e := range dto.Entries {
			tag, err := ann.NewTag(e.Content, e.Type)
			if err != nil {
				return nil, err
			}
			if _, err := v.Add(tag, e.Description); err != nil {
				return nil, err
			}
		}
		if err := trs.AddCtrlVocab(v); err != nil {
			return nil, err
		}
		vocabs[v.ID()] = v
	}

	tiers := make(map[string]*ann.Tier, len(doc.Tiers))
	for _, dto := range doc.Tiers {
		t := ann.NewTier(dto.Name)
		setMeta(&t.Metadata, dto.Meta)
		if err := trs.Append(t); err != nil {
			return nil, err
		}
		if err := buildTier(t, dto, media, vocabs); err != nil {
			return nil, apperrors.Wrapf(err, "tier %q", dto.Name)
		}
		tiers[t.ID()] = t
	}

	for _, dto := range doc.Hierarchy {
		typ, err := ann.ParseLinkType(dto.Type)
		if err != nil {
			return nil, err
		}
		parent, child := tiers[dto.Parent], tiers[dto.Child]
		if parent == nil || child == nil {
			return nil, apperrors.NewNotFound("tier", dto.Parent+" or "+dto.Child)
		}
		if err := trs.AddHierarchyLink(typ, parent, child); err != nil {
			return nil, err
		}
	}
	return trs, nil
}

func buildTier(t *ann.Tier, dto tierDTO, media map[string]*ann.Media, vocabs map[string]*ann.CtrlVocab) error {
	if dto.Capabilities != nil {
		if err := t.SetCapabilities(*dto.Capabilities); err != nil {
			return err
		}
	}
	if dto.Media != "" {
		m, ok := media[dto.Media]
		if !ok {
			return apperrors.NewNotFound("media", dto.Media)
		}
		if err := t.SetMedia(m); err != nil {
			return err
		}
	}
	if dto.Vocabulary != "" {
		v, ok := vocabs[dto.Vocabulary]
		if !ok {
			return apperrors.NewNotFound("controlled vocabulary", dto.Vocabulary)
		}
		if err := t.SetCtrlVocab(v); err != nil {
			return err
		}
	}
	for _, adto := range dto.Annotations {
		a, err := adto.toAnnotation()
		if err != nil {
			return err
		}
		if err := t.Add(a); err != nil {
			return err
		}
	}
	return nil
}

func setMeta(m *ann.Metadata, entries []metaEntry) {
	for _, e := range entries {
		m.SetMeta(e.Key, e.Value)
	}
}

func scoreFrom(v *float64) ann.Score {
	if v == nil {
		return ann.NoScore
	}
	return ann.NewScore(*v)
}

func (p pointDTO) toPoint() (ann.Point, error) {
	if p.Rank {
		return ann.NewRankPoint(int(p.Midpoint), int(p.Radius))
	}
	return ann.NewPoint(p.Midpoint, p.Radius)
}

func toInterval(points []pointDTO) (ann.Interval, error) {
	if len(points) != 2 {
		return ann.Interval{}, apperrors.NewType("interval", "two points")
	}
	begin, err := points[0].toPoint()
	if err != nil {
		return ann.Interval{}, err
	}
	end, err := points[1].toPoint()
	if err != nil {
		return ann.Interval{}, err
	}
	return ann.NewInterval(begin, end)
}

func (l locDTO) toLocalization() (ann.Localization, error) {
	switch {
	case l.Point != nil:
		return l.Point.toPoint()
	case l.Interval != nil:
		return toInterval(l.Interval)
	case l.Disjoint != nil:
		intervals := make([]ann.Interval, 0, len(l.Disjoint))
		for _, pts := range l.Disjoint {
			iv, err := toInterval(pts)
			if err != nil {
				return nil, err
			}
			intervals = append(intervals, iv)
		}
		return ann.NewDisjoint(intervals...)
	default:
		return nil, apperrors.NewType("empty localization", "point, interval or disjoint")
	}
}

func (dto annotationDTO) toAnnotation() (*ann.Annotation, error) {
	var loc *ann.Location
	for _, l := range dto.Location {
		localization, err := l.toLocalization()
		if err != nil {
			return nil, err
		}
		if loc == nil {
			loc = ann.NewLocation(localization)
			if err := loc.SetScore(localization, scoreFrom(l.Score)); err != nil {
				return nil, err
			}
			continue
		}
		if err := loc.Append(localization, scoreFrom(l.Score)); err != nil {
			return nil, err
		}
	}

	labels := make([]*ann.Label, 0, len(dto.Labels))
	for _, ldto := range dto.Labels {
		label := &ann.Label{}
		label.SetKey(ldto.Key)
		for _, tdto := range ldto.Tags {
			tag, err := ann.NewTag(tdto.Content, tdto.Type)
			if err != nil {
				return nil, err
			}
			if err := label.Append(tag, scoreFrom(tdto.Score)); err != nil {
				return nil, err
			}
		}
		labels = append(labels, label)
	}

	a, err := ann.NewAnnotation(loc, labels...)
	if err != nil {
		return nil, err
	}
	setMeta(&a.Metadata, dto.Meta)
	a.SetScore(scoreFrom(dto.Score))
	return a, nil
}
