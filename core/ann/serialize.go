package ann

import (
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	apperrors "github.com/FocuswithJustin/annokit/core/errors"
)

// labelsGrammar is the text form of a sequence of labels, as written by
// SerializeLabels with alternatives enabled.
// Examples: "a b c", "a {b|c} d", "{x|y}".
//
//nolint:govet // participle grammar tags are not standard struct tags
type labelsGrammar struct {
	Items []*labelItem `( @@ ( Sep+ @@ )* )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type labelItem struct {
	Alts []string `  "{" @Text? ( "|" @Text? )* "}"`
	Word *string  `| @Text`
}

var labelParsers sync.Map // separator -> *participle.Parser[labelsGrammar]

// labelParser returns the parser for a separator: a line break matches a
// run of line breaks, a space or a tab any run of whitespace, and any other
// separator must be a single ASCII punctuation character.
func labelParser(sep string) (*participle.Parser[labelsGrammar], error) {
	if p, ok := labelParsers.Load(sep); ok {
		return p.(*participle.Parser[labelsGrammar]), nil
	}

	var sepPattern, textPattern string
	switch r, size := utf8.DecodeRuneInString(sep); {
	case sep == "\n" || sep == "\r\n":
		sepPattern, textPattern = `(\r?\n)+`, `[^{}|\r\n]+`
	case sep != "" && strings.TrimSpace(sep) == "":
		sepPattern, textPattern = `\s+`, `[^{}|\s]+`
	case size == len(sep) && r < utf8.RuneSelf && (unicode.IsPunct(r) || unicode.IsSymbol(r)) && !strings.ContainsRune("{}|", r):
		esc := `\` + sep
		sepPattern, textPattern = esc, `[^{}|\r\n`+esc+`]+`
	default:
		return nil, apperrors.NewUnsupported("label separator", strconv.Quote(sep))
	}

	p, err := participle.Build[labelsGrammar](
		participle.Lexer(lexer.MustSimple([]lexer.SimpleRule{
			{Name: "Sep", Pattern: sepPattern},
			{Name: "Punct", Pattern: `[{}|]`},
			{Name: "Text", Pattern: textPattern},
		})),
	)
	if err != nil {
		return nil, err
	}
	actual, _ := labelParsers.LoadOrStore(sep, p)
	return actual.(*participle.Parser[labelsGrammar]), nil
}

// ParseLabels parses the text form of labels produced by SerializeLabels:
// items split on sep, "{a|b}" for alternatives, and the empty placeholder
// standing for an empty tag. Tags are strings. Blank text, or text equal
// to empty, yields no labels.
func ParseLabels(text, sep, empty string) ([]*Label, error) {
	trimmed := strings.TrimSpace(text)
	if strings.TrimSpace(sep) != "" {
		trimmed = strings.TrimSpace(strings.Trim(trimmed, sep))
	}
	if trimmed == "" || (empty != "" && trimmed == empty) {
		return nil, nil
	}

	parser, err := labelParser(sep)
	if err != nil {
		return nil, err
	}
	parsed, err := parser.ParseString("", trimmed)
	if err != nil {
		return nil, &apperrors.ParseError{Format: "labels", Message: err.Error(), Err: apperrors.ErrInvalidInput}
	}

	tagOf := func(s string) Tag {
		if empty != "" && s == empty {
			return StrTag("")
		}
		return StrTag(s)
	}
	labels := make([]*Label, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item.Word != nil {
			labels = append(labels, NewLabel(tagOf(*item.Word)))
			continue
		}
		l := &Label{}
		for _, alt := range item.Alts {
			// Appending str tags to a str label cannot fail.
			_ = l.Append(tagOf(alt), NoScore)
		}
		labels = append(labels, l)
	}
	return labels, nil
}

// SerializeLabels writes labels in their text form, joined by sep. See
// Label.Serialize for alt and empty. No label at all is written as empty.
func SerializeLabels(labels []*Label, sep, empty string, alt bool) string {
	if len(labels) == 0 {
		return empty
	}
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = l.Serialize(empty, alt)
	}
	return strings.Join(parts, sep)
}
