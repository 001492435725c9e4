// Package selector implements the expression language used to filter
// registry listings.  An expression is a whitespace separated conjunction of
// field:value terms, e.g. "name:download owner:player-1 state:running".
package selector

import (
	"fmt"
	"strings"

	"github.com/viant/parsly"
)

// Recognised run states.
const (
	StateRunning = "running"
	StateEnded   = "ended"
)

// Criteria is the parsed form of a selector expression.  Zero-value fields
// do not constrain the match.
type Criteria struct {
	Name  string
	Owner string
	State string
}

// Subject carries the attributes of a run the criteria are matched against.
type Subject struct {
	Name       string
	OwnerID    string
	OwnerLabel string
	State      string
}

// IsEmpty reports whether the criteria constrain anything at all.
func (c *Criteria) IsEmpty() bool {
	return c == nil || (c.Name == "" && c.Owner == "" && c.State == "")
}

// Matches reports whether the subject satisfies every term of the criteria.
// The owner term matches either the owner ID or its label.
func (c *Criteria) Matches(s Subject) bool {
	if c == nil {
		return true
	}
	if c.Name != "" && c.Name != s.Name {
		return false
	}
	if c.Owner != "" && c.Owner != s.OwnerID && c.Owner != s.OwnerLabel {
		return false
	}
	if c.State != "" && c.State != s.State {
		return false
	}
	return true
}

// Parse parses a selector expression in the format: field:value { field:value }
func Parse(input string) (*Criteria, error) {
	criteria := &Criteria{}
	cursor := parsly.NewCursor("", []byte(input), 0)

	for {
		matched := cursor.MatchAfterOptional(whitespaceToken, fieldToken)
		if matched.Code != fieldToken.Code {
			if cursor.Pos >= cursor.InputSize {
				return criteria, nil
			}
			return nil, cursor.NewError(fieldToken)
		}
		field := strings.ToLower(matched.Text(cursor))

		matched = cursor.MatchOne(colonToken)
		if matched.Code != colonToken.Code {
			return nil, cursor.NewError(colonToken)
		}

		matched = cursor.MatchOne(valueToken)
		if matched.Code != valueToken.Code {
			return nil, cursor.NewError(valueToken)
		}
		value := matched.Text(cursor)

		switch field {
		case "name":
			criteria.Name = value
		case "owner":
			criteria.Owner = value
		case "state":
			state := strings.ToLower(value)
			if state != StateRunning && state != StateEnded {
				return nil, fmt.Errorf("unknown state: %q", value)
			}
			criteria.State = state
		default:
			return nil, fmt.Errorf("unknown field: %q", field)
		}
	}
}
