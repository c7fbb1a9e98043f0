package ann

import (
	apperrors "github.com/FocuswithJustin/annokit/core/errors"
)

// VocabEntry is one permitted tag with its description.
type VocabEntry struct {
	Tag         Tag
	Description string
}

// CtrlVocab is a closed set of tags a tier may use. All entries share one
// tag type.
type CtrlVocab struct {
	Metadata
	name        string
	description string
	entries     []VocabEntry
	index       map[string]int
}

// NewCtrlVocab returns an empty vocabulary.
func NewCtrlVocab(name, description string) *CtrlVocab {
	return &CtrlVocab{
		Metadata:    newMetadata(),
		name:        name,
		description: description,
		index:       make(map[string]int),
	}
}

// Name returns the vocabulary name.
func (v *CtrlVocab) Name() string { return v.name }

// Description returns the vocabulary description.
func (v *CtrlVocab) Description() string { return v.description }

// SetDescription replaces the description.
func (v *CtrlVocab) SetDescription(d string) { v.description = d }

// Type returns the tag type of the entries, or "" when empty.
func (v *CtrlVocab) Type() TagType {
	if len(v.entries) == 0 {
		return ""
	}
	return v.entries[0].Tag.Type()
}

// Add inserts a tag. It returns false when the tag is already present and
// fails on a tag of another type.
func (v *CtrlVocab) Add(tag Tag, description string) (bool, error) {
	if t := v.Type(); t != "" && t != tag.Type() {
		return false, apperrors.NewType(tag.Content(), string(t))
	}
	if _, ok := v.index[tag.Key()]; ok {
		return false, nil
	}
	v.index[tag.Key()] = len(v.entries)
	v.entries = append(v.entries, VocabEntry{Tag: tag, Description: description})
	return true, nil
}

// Remove deletes a tag. It reports whether one was removed. Tiers using
// the tag are not checked; Tier.RemoveCtrlVocabTag does that.
func (v *CtrlVocab) Remove(tag Tag) bool {
	i, ok := v.index[tag.Key()]
	if !ok {
		return false
	}
	v.entries = append(v.entries[:i:i], v.entries[i+1:]...)
	delete(v.index, tag.Key())
	for j := i; j < len(v.entries); j++ {
		v.index[v.entries[j].Tag.Key()] = j
	}
	return true
}

// Contains reports whether tag is permitted.
func (v *CtrlVocab) Contains(tag Tag) bool {
	_, ok := v.index[tag.Key()]
	return ok
}

// Len returns the number of entries.
func (v *CtrlVocab) Len() int { return len(v.entries) }

// Entries returns a copy of the entries in insertion order.
func (v *CtrlVocab) Entries() []VocabEntry {
	out := make([]VocabEntry, len(v.entries))
	copy(out, v.entries)
	return out
}

// checkLabel returns a VocabularyError for the first tag of l outside v.
func (v *CtrlVocab) checkLabel(l *Label) error {
	for _, e := range l.entries {
		if !v.Contains(e.Tag) {
			return apperrors.NewVocabulary(v.name, e.Tag.Content())
		}
	}
	return nil
}

// Copy returns an independent copy with the same id.
func (v *CtrlVocab) Copy() *CtrlVocab {
	c := &CtrlVocab{
		Metadata:    v.copyMeta(),
		name:        v.name,
		description: v.description,
		entries:     v.Entries(),
		index:       make(map[string]int, len(v.index)),
	}
	for k, i := range v.index {
		c.index[k] = i
	}
	return c
}
