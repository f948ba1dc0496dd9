package feature

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Code identifies a feature within a plugin. It is either a plain string
// or a structured object carrying a Type discriminator.
type Code struct {
	// Value is the plain code. Empty for structured codes.
	Value string

	// Type is the discriminator of a structured code.
	Type string

	// Fields holds the remaining members of a structured code, verbatim.
	Fields map[string]json.RawMessage

	structured bool
}

// Plain returns a plain string code.
func Plain(s string) Code {
	return Code{Value: s}
}

// Typed returns a structured code carrying only a type discriminator.
func Typed(t string) Code {
	return Code{Type: t, structured: true}
}

// IsStructured reports whether the code was given as an object.
func (c Code) IsStructured() bool {
	return c.structured
}

// Equal reports identity: string equality for plain codes, type equality
// for structured ones. A plain and a structured code are never equal.
func (c Code) Equal(other Code) bool {
	if c.structured != other.structured {
		return false
	}
	if c.structured {
		return c.Type == other.Type
	}
	return c.Value == other.Value
}

// String returns the plain value or the structured type.
func (c Code) String() string {
	if c.structured {
		return c.Type
	}
	return c.Value
}

// MarshalJSON implements json.Marshaler.
func (c Code) MarshalJSON() ([]byte, error) {
	if !c.structured {
		return json.Marshal(c.Value)
	}
	obj := make(map[string]json.RawMessage, len(c.Fields)+1)
	for k, v := range c.Fields {
		obj[k] = v
	}
	t, err := json.Marshal(c.Type)
	if err != nil {
		return nil, err
	}
	obj["type"] = t
	return json.Marshal(obj)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Code) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Code{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Plain(s)
		return nil
	}
	if data[0] != '{' {
		return fmt.Errorf("feature code: unsupported json %s", data)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	var t string
	if raw, ok := obj["type"]; ok {
		if err := json.Unmarshal(raw, &t); err != nil {
			return fmt.Errorf("feature code type: %w", err)
		}
		delete(obj, "type")
	}
	if len(obj) == 0 {
		obj = nil
	}
	*c = Code{Type: t, Fields: obj, structured: true}
	return nil
}

// Feature is one invocable command exposed by a plugin.
type Feature struct {
	Code    Code   `json:"code"`
	Label   string `json:"label,omitempty"`
	Explain string `json:"explain,omitempty"`
	Cmds    []Cmd  `json:"cmds,omitempty"`
}
