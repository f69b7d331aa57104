package menu

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tokens is a list of class names. In JSON and YAML it may be written as a
// single space separated string or as a list.
type Tokens []string

// ParseTokens splits a space separated class string.
func ParseTokens(s string) Tokens {
	f := strings.Fields(s)
	if len(f) == 0 {
		return nil
	}
	return Tokens(f)
}

// String joins the tokens with spaces.
func (t Tokens) String() string {
	return strings.Join(t, " ")
}

func (t Tokens) clone() Tokens {
	if t == nil {
		return nil
	}
	return append(Tokens(nil), t...)
}

// UnmarshalJSON accepts a string, a list of strings or null.
func (t *Tokens) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = ParseTokens(s)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("class tokens must be a string or a list of strings: %w", err)
	}
	*t = flatten(list)
	return nil
}

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (t *Tokens) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*t = nil
			return nil
		}
		*t = ParseTokens(value.Value)
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*t = flatten(list)
		return nil
	default:
		return fmt.Errorf("line %d: class tokens must be a string or a list", value.Line)
	}
}

// flatten splits list entries that themselves contain spaces.
func flatten(list []string) Tokens {
	var out Tokens
	for _, s := range list {
		out = append(out, strings.Fields(s)...)
	}
	return out
}
