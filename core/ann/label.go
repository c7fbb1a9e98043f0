package ann

import (
	"strings"

	apperrors "github.com/FocuswithJustin/annokit/core/errors"
)

// TagEntry is one alternative tag with its score.
type TagEntry struct {
	Tag   Tag
	Score Score
}

// Label is an ordered set of alternative tags for one annotation slot.
// All tags share one type. The zero Label is an empty, usable label.
type Label struct {
	key     string
	entries []TagEntry
}

// NewLabel returns a label holding one unscored tag.
func NewLabel(tag Tag) *Label {
	return &Label{entries: []TagEntry{{Tag: tag}}}
}

// NewScoredLabel returns a label holding one scored tag.
func NewScoredLabel(tag Tag, score float64) *Label {
	return &Label{entries: []TagEntry{{Tag: tag, Score: NewScore(score)}}}
}

// NewLabelAlternatives returns a label holding several alternative tags.
// When scores is not the same length as tags the label is left unscored.
// Duplicate tags are merged as by Append.
func NewLabelAlternatives(tags []Tag, scores []float64) (*Label, error) {
	scored := len(scores) == len(tags)
	l := &Label{}
	for i, tag := range tags {
		s := NoScore
		if scored {
			s = NewScore(scores[i])
		}
		if err := l.Append(tag, s); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Key returns the optional label key.
func (l *Label) Key() string { return l.key }

// SetKey sets the optional label key.
func (l *Label) SetKey(key string) { l.key = key }

// Type returns the type of the tags, or "" for an empty label.
func (l *Label) Type() TagType {
	if len(l.entries) == 0 {
		return ""
	}
	return l.entries[0].Tag.Type()
}

// Append adds an alternative tag. A tag already present is merged: when
// both the existing and the new entry are scored, the scores are summed;
// otherwise nothing changes. A tag of another type is rejected.
func (l *Label) Append(tag Tag, score Score) error {
	if t := l.Type(); t != "" && t != tag.Type() {
		return apperrors.NewType(tag.Content(), string(t))
	}
	for i, e := range l.entries {
		if e.Tag.Equal(tag) {
			if e.Score.IsSet() && score.IsSet() {
				l.entries[i].Score = NewScore(e.Score.value + score.value)
			}
			return nil
		}
	}
	l.entries = append(l.entries, TagEntry{Tag: tag, Score: score})
	return nil
}

// Remove deletes a tag. It reports whether one was removed.
func (l *Label) Remove(tag Tag) bool {
	for i, e := range l.entries {
		if e.Tag.Equal(tag) {
			l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of alternative tags.
func (l *Label) Len() int { return len(l.entries) }

// At returns the i-th alternative.
func (l *Label) At(i int) (TagEntry, error) {
	if i < 0 || i >= len(l.entries) {
		return TagEntry{}, apperrors.NewIndex(i, len(l.entries))
	}
	return l.entries[i], nil
}

// Entries returns a copy of the alternatives.
func (l *Label) Entries() []TagEntry {
	out := make([]TagEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Tags returns the alternative tags in order.
func (l *Label) Tags() []Tag {
	out := make([]Tag, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.Tag
	}
	return out
}

// IsTagged reports whether the label holds at least one tag.
func (l *Label) IsTagged() bool { return len(l.entries) > 0 }

// Contains reports whether tag is one of the alternatives.
func (l *Label) Contains(tag Tag) bool {
	for _, e := range l.entries {
		if e.Tag.Equal(tag) {
			return true
		}
	}
	return false
}

// Best returns the tag with the highest score, or the first one when none
// is scored. ok is false for an empty label.
func (l *Label) Best() (tag Tag, ok bool) {
	if len(l.entries) == 0 {
		return Tag{}, false
	}
	best := 0
	for i := 1; i < len(l.entries); i++ {
		if l.entries[i].Score.beats(l.entries[best].Score) {
			best = i
		}
	}
	return l.entries[best].Tag, true
}

// Score returns the score of tag, NoScore if absent or unscored.
func (l *Label) Score(tag Tag) Score {
	for _, e := range l.entries {
		if e.Tag.Equal(tag) {
			return e.Score
		}
	}
	return NoScore
}

// SetScore changes the score of an existing tag.
func (l *Label) SetScore(tag Tag, score Score) error {
	for i, e := range l.entries {
		if e.Tag.Equal(tag) {
			l.entries[i].Score = score
			return nil
		}
	}
	return apperrors.NewNotFound("tag", tag.Content())
}

// Match reports whether any alternative tag satisfies the predicates
// combined with logic.
func (l *Label) Match(preds []Predicate, logic Logic) bool {
	for _, e := range l.entries {
		if e.Tag.Match(preds, logic) {
			return true
		}
	}
	return false
}

// Copy returns an independent copy.
func (l *Label) Copy() *Label {
	if l == nil {
		return nil
	}
	return &Label{key: l.key, entries: l.Entries()}
}

// Equal reports whether both labels hold equal tags with equal scores in
// the same order. Keys are not compared.
func (l *Label) Equal(o *Label) bool {
	if l == nil || o == nil {
		return l == o
	}
	if len(l.entries) != len(o.entries) {
		return false
	}
	for i, e := range l.entries {
		if !e.Tag.Equal(o.entries[i].Tag) || !e.Score.Equal(o.entries[i].Score) {
			return false
		}
	}
	return true
}

// Serialize returns the text form of the label: the best tag when alt is
// false or there is a single tag, otherwise "{a|b|c}". Empty contents are
// written as empty.
func (l *Label) Serialize(empty string, alt bool) string {
	best, ok := l.Best()
	if !ok {
		return empty
	}
	if !alt || len(l.entries) == 1 {
		if best.IsEmpty() {
			return empty
		}
		return best.Content()
	}
	parts := make([]string, len(l.entries))
	for i, e := range l.entries {
		if e.Tag.IsEmpty() {
			parts[i] = empty
		} else {
			parts[i] = e.Tag.Content()
		}
	}
	return "{" + strings.Join(parts, "|") + "}"
}

func (l *Label) String() string {
	return l.Serialize("", true)
}
