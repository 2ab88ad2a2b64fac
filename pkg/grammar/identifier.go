// Package grammar models a tree-sitter grammar document: the recursive
// rule algebra from grammar.json plus the surrounding document fields
// (conflicts, externals, extras, inheritance, reserved contexts).
package grammar

import (
	"fmt"
	"regexp"
)

// identifierPattern matches rule, node-type, and field names.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_]\w*$`)

// Identifier is a validated rule, field, or grammar name. The zero value
// is the absent identifier.
type Identifier string

// ParseIdentifier validates s and returns it as an Identifier.
func ParseIdentifier(s string) (Identifier, error) {
	if !IsValidIdentifier(s) {
		return "", fmt.Errorf("invalid identifier %q", s)
	}

	return Identifier(s), nil
}

// IsValidIdentifier reports whether s is a well-formed identifier.
func IsValidIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// String returns the identifier text.
func (id Identifier) String() string {
	return string(id)
}

// IsZero reports whether the identifier is absent.
func (id Identifier) IsZero() bool {
	return id == ""
}

// UnmarshalText validates the identifier during JSON decoding. It is
// used for both string values and object keys.
func (id *Identifier) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentifier(string(text))
	if err != nil {
		return err
	}

	*id = parsed

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (id Identifier) MarshalText() ([]byte, error) {
	return []byte(id), nil
}
