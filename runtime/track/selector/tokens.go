package selector

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes
const (
	whitespaceCode = iota
	fieldCode
	colonCode
	valueCode
)

// Token definitions
var (
	whitespaceToken = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	fieldToken      = parsly.NewToken(fieldCode, "Field", newFieldMatcher())
	colonToken      = parsly.NewToken(colonCode, ":", matcher.NewByte(':'))
	valueToken      = parsly.NewToken(valueCode, "Value", newValueMatcher())
)

// Custom matchers
func newFieldMatcher() parsly.Matcher {
	return &fieldMatcher{}
}

func newValueMatcher() parsly.Matcher {
	return &valueMatcher{}
}

// fieldMatcher matches a term field name (letters only)
type fieldMatcher struct{}

func (m *fieldMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	if pos >= size {
		return 0
	}

	if !isLetter(input[pos]) {
		return 0
	}

	matched := 1
	for i := pos + 1; i < size; i++ {
		if isLetter(input[i]) {
			matched++
			continue
		}
		break
	}
	return matched
}

// valueMatcher matches a term value: everything up to the next whitespace
type valueMatcher struct{}

func (m *valueMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	if pos >= size {
		return 0
	}

	matched := 0
	for i := pos; i < size; i++ {
		if isWhitespace(input[i]) {
			break
		}
		matched++
	}
	return matched
}

// Helper functions
func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
