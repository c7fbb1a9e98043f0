package ann

import (
	"strconv"
	"strings"

	apperrors "github.com/FocuswithJustin/annokit/core/errors"
)

// TagType is the declared type of a tag's content.
type TagType string

// Tag type constants.
const (
	TagStr   TagType = "str"
	TagInt   TagType = "int"
	TagFloat TagType = "float"
	TagBool  TagType = "bool"
)

// validTagTypes is the set of valid tag types.
var validTagTypes = map[TagType]bool{
	TagStr:   true,
	TagInt:   true,
	TagFloat: true,
	TagBool:  true,
}

// IsValid returns true if the tag type is valid.
func (t TagType) IsValid() bool {
	return validTagTypes[t]
}

// Tag is an immutable typed atomic value. Its content is always stored in
// canonical string form.
//
// Two tags are equal when their contents are equal, whatever their types.
type Tag struct {
	content string
	typ     TagType
}

// NewTag returns a tag of the given type. An empty type means TagStr.
// String content is stripped and its inner whitespace collapsed; typed
// content must parse as the declared type.
func NewTag(content string, typ TagType) (Tag, error) {
	if typ == "" {
		typ = TagStr
	}
	if !typ.IsValid() {
		return Tag{}, apperrors.NewType(string(typ), "tag type")
	}

	raw := strings.TrimSpace(content)
	switch typ {
	case TagInt:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return Tag{}, &apperrors.TypeError{Value: content, Expected: "int", Err: err}
		}
		return IntTag(v), nil
	case TagFloat:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Tag{}, &apperrors.TypeError{Value: content, Expected: "float", Err: err}
		}
		return FloatTag(v), nil
	case TagBool:
		v, err := strconv.ParseBool(strings.ToLower(raw))
		if err != nil {
			return Tag{}, &apperrors.TypeError{Value: content, Expected: "bool", Err: err}
		}
		return BoolTag(v), nil
	}
	return StrTag(content), nil
}

// StrTag returns a string tag.
func StrTag(content string) Tag {
	return Tag{content: strings.Join(strings.Fields(content), " "), typ: TagStr}
}

// IntTag returns an int tag.
func IntTag(v int) Tag {
	return Tag{content: strconv.Itoa(v), typ: TagInt}
}

// FloatTag returns a float tag.
func FloatTag(v float64) Tag {
	return Tag{content: strconv.FormatFloat(v, 'f', -1, 64), typ: TagFloat}
}

// BoolTag returns a bool tag.
func BoolTag(v bool) Tag {
	return Tag{content: strconv.FormatBool(v), typ: TagBool}
}

// Content returns the canonical string form.
func (t Tag) Content() string { return t.content }

// Type returns the declared type. The zero Tag is a string tag.
func (t Tag) Type() TagType {
	if t.typ == "" {
		return TagStr
	}
	return t.typ
}

// TypedContent returns the content as string, int, float64 or bool.
func (t Tag) TypedContent() any {
	switch t.typ {
	case TagInt:
		v, _ := strconv.Atoi(t.content)
		return v
	case TagFloat:
		v, _ := strconv.ParseFloat(t.content, 64)
		return v
	case TagBool:
		v, _ := strconv.ParseBool(t.content)
		return v
	default:
		return t.content
	}
}

// IsEmpty reports whether the content is the empty string.
func (t Tag) IsEmpty() bool { return t.content == "" }

// Equal compares contents only. A str "2" equals an int 2.
func (t Tag) Equal(o Tag) bool { return t.content == o.content }

// Key returns a value usable as a map key with the same semantics as Equal.
func (t Tag) Key() string { return t.content }

func (t Tag) String() string { return t.content }
