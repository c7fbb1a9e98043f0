package ann

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

// defaultSimilarity is the Jaro-Winkler threshold of Similar when the value
// does not carry its own.
const defaultSimilarity = 0.85

// Logic combines the results of several predicates.
type Logic int

// Predicate combinations.
const (
	LogicAnd Logic = iota
	LogicOr
)

// TagFunc tests a tag against a reference value.
type TagFunc func(t Tag, value any) bool

// Predicate is one condition of a tag search: Func(tag, Value), negated
// when Not is set.
type Predicate struct {
	Func  TagFunc
	Value any
	Not   bool
}

// Match combines the predicates with logic. An empty predicate list
// matches with LogicAnd and does not with LogicOr.
func (t Tag) Match(preds []Predicate, logic Logic) bool {
	if logic == LogicOr {
		for _, p := range preds {
			if p.Func(t, p.Value) != p.Not {
				return true
			}
		}
		return false
	}
	for _, p := range preds {
		if p.Func(t, p.Value) == p.Not {
			return false
		}
	}
	return true
}

// SimilarTo is the value of the Similar predicate.
type SimilarTo struct {
	Text      string
	Threshold float64
}

func textValue(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case Tag:
		return v.Content(), true
	default:
		return "", false
	}
}

func numberValue(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	default:
		return 0, false
	}
}

func tagNumber(t Tag) (float64, bool) {
	switch v := t.TypedContent().(type) {
	case int:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

// Exact reports whether the content equals value.
func Exact(t Tag, value any) bool {
	s, ok := textValue(value)
	return ok && t.content == s
}

// IExact is Exact ignoring case.
func IExact(t Tag, value any) bool {
	s, ok := textValue(value)
	return ok && strings.EqualFold(t.content, s)
}

// StartsWith reports whether the content starts with value.
func StartsWith(t Tag, value any) bool {
	s, ok := textValue(value)
	return ok && strings.HasPrefix(t.content, s)
}

// IStartsWith is StartsWith ignoring case.
func IStartsWith(t Tag, value any) bool {
	s, ok := textValue(value)
	return ok && strings.HasPrefix(strings.ToLower(t.content), strings.ToLower(s))
}

// EndsWith reports whether the content ends with value.
func EndsWith(t Tag, value any) bool {
	s, ok := textValue(value)
	return ok && strings.HasSuffix(t.content, s)
}

// IEndsWith is EndsWith ignoring case.
func IEndsWith(t Tag, value any) bool {
	s, ok := textValue(value)
	return ok && strings.HasSuffix(strings.ToLower(t.content), strings.ToLower(s))
}

// Contains reports whether value occurs in the content.
func Contains(t Tag, value any) bool {
	s, ok := textValue(value)
	return ok && strings.Contains(t.content, s)
}

// IContains is Contains ignoring case.
func IContains(t Tag, value any) bool {
	s, ok := textValue(value)
	return ok && strings.Contains(strings.ToLower(t.content), strings.ToLower(s))
}

// Regexp reports whether the content matches value, a pattern string or a
// compiled *regexp.Regexp. An invalid pattern never matches.
func Regexp(t Tag, value any) bool {
	switch v := value.(type) {
	case *regexp.Regexp:
		return v.MatchString(t.content)
	case string:
		re, err := regexp.Compile(v)
		return err == nil && re.MatchString(t.content)
	default:
		return false
	}
}

// Equal reports whether a numeric tag equals the numeric value.
func Equal(t Tag, value any) bool {
	a, ok1 := tagNumber(t)
	b, ok2 := numberValue(value)
	return ok1 && ok2 && a == b
}

// Greater reports whether a numeric tag is greater than the numeric value.
func Greater(t Tag, value any) bool {
	a, ok1 := tagNumber(t)
	b, ok2 := numberValue(value)
	return ok1 && ok2 && a > b
}

// Lower reports whether a numeric tag is lower than the numeric value.
func Lower(t Tag, value any) bool {
	a, ok1 := tagNumber(t)
	b, ok2 := numberValue(value)
	return ok1 && ok2 && a < b
}

// Bool reports whether a bool tag has the bool value.
func Bool(t Tag, value any) bool {
	b, ok := value.(bool)
	if !ok || t.Type() != TagBool {
		return false
	}
	v, _ := t.TypedContent().(bool)
	return v == b
}

// Similar reports whether the Jaro-Winkler similarity between the content
// and value reaches a threshold, case-insensitively. value is a SimilarTo,
// or a string compared with the default threshold.
func Similar(t Tag, value any) bool {
	target := SimilarTo{Threshold: defaultSimilarity}
	switch v := value.(type) {
	case SimilarTo:
		target = v
	default:
		s, ok := textValue(value)
		if !ok {
			return false
		}
		target.Text = s
	}
	if t.content == "" || target.Text == "" {
		return t.content == target.Text
	}
	return matchr.JaroWinkler(strings.ToLower(t.content), strings.ToLower(target.Text), false) >= target.Threshold
}

// tagFuncs maps predicate names to functions.
var tagFuncs = map[string]TagFunc{
	"exact":       Exact,
	"iexact":      IExact,
	"startswith":  StartsWith,
	"istartswith": IStartsWith,
	"endswith":    EndsWith,
	"iendswith":   IEndsWith,
	"contains":    Contains,
	"icontains":   IContains,
	"regexp":      Regexp,
	"equal":       Equal,
	"greater":     Greater,
	"lower":       Lower,
	"bool":        Bool,
	"similar":     Similar,
}

// TagFuncByName returns the predicate function registered under name
// (e.g. "exact", "icontains", "similar").
func TagFuncByName(name string) (TagFunc, bool) {
	f, ok := tagFuncs[strings.ToLower(name)]
	return f, ok
}

// TagFuncNames returns the registered predicate names.
func TagFuncNames() []string {
	names := make([]string, 0, len(tagFuncs))
	for name := range tagFuncs {
		names = append(names, name)
	}
	return names
}
