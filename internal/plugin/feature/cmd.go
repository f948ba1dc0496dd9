package feature

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// MatchKind classifies a trigger pattern.
type MatchKind uint8

const (
	// MatchLiteral matches a literal string, case-insensitively.
	MatchLiteral MatchKind = iota
	// MatchRegex matches a regular expression against the query.
	MatchRegex
	// MatchOver matches any query.
	MatchOver
)

// String returns the wire name of the kind.
func (k MatchKind) String() string {
	switch k {
	case MatchLiteral:
		return "literal"
	case MatchRegex:
		return "regex"
	case MatchOver:
		return "over"
	default:
		return "unknown"
	}
}

// Cmd is a trigger pattern of a feature.
type Cmd struct {
	Kind  MatchKind
	Label string

	// Text is the literal for MatchLiteral and the pattern source for MatchRegex.
	Text string

	MinLength int
	MaxLength int
}

type cmdObject struct {
	Type      string `json:"type"`
	Label     string `json:"label,omitempty"`
	Match     string `json:"match,omitempty"`
	MinLength int    `json:"minLength,omitempty"`
	MaxLength int    `json:"maxLength,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (c Cmd) MarshalJSON() ([]byte, error) {
	if c.Kind == MatchLiteral {
		return json.Marshal(c.Text)
	}
	obj := cmdObject{
		Type:      c.Kind.String(),
		Label:     c.Label,
		MinLength: c.MinLength,
		MaxLength: c.MaxLength,
	}
	if c.Kind == MatchRegex {
		obj.Match = c.Text
	}
	return json.Marshal(obj)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Cmd) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Cmd{Kind: MatchLiteral, Text: s}
		return nil
	}

	var obj cmdObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	switch obj.Type {
	case "regex":
		*c = Cmd{Kind: MatchRegex, Label: obj.Label, Text: obj.Match}
	case "over":
		*c = Cmd{Kind: MatchOver, Label: obj.Label}
	default:
		return fmt.Errorf("feature cmd: unknown type %q", obj.Type)
	}
	c.MinLength = obj.MinLength
	c.MaxLength = obj.MaxLength
	return nil
}

// Matches reports whether the query triggers this pattern.
func (c Cmd) Matches(query string) bool {
	n := len([]rune(query))
	if c.MinLength > 0 && n < c.MinLength {
		return false
	}
	if c.MaxLength > 0 && n > c.MaxLength {
		return false
	}

	switch c.Kind {
	case MatchLiteral:
		return query != "" && strings.Contains(strings.ToLower(c.Text), strings.ToLower(query))
	case MatchRegex:
		re, err := compileMatch(c.Text)
		if err != nil {
			return false
		}
		return re.MatchString(query)
	case MatchOver:
		return query != ""
	default:
		return false
	}
}

// compileMatch accepts both bare patterns and the "/pattern/flags" form.
func compileMatch(src string) (*regexp.Regexp, error) {
	if len(src) > 1 && src[0] == '/' {
		if end := strings.LastIndexByte(src, '/'); end > 0 {
			pattern, flags := src[1:end], src[end+1:]
			if strings.Contains(flags, "i") {
				pattern = "(?i)" + pattern
			}
			return regexp.Compile(pattern)
		}
	}
	return regexp.Compile(src)
}
