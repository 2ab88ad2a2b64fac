package grammar

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
)

// Default location of the grammar document inside a tree-sitter
// project.
const (
	DefaultFileName  = "grammar.json"
	DefaultDirectory = "src"
)

// SchemaURI is the published JSON schema for grammar.json documents.
const SchemaURI = "https://tree-sitter.github.io/tree-sitter/assets/schemas/grammar.schema.json"

// Grammar is a named grammar document. It is constructed once by Load
// and immutable thereafter.
type Grammar struct {
	Name       Identifier
	Inherits   Identifier // parent grammar name; zero when standalone
	Conflicts  [][]Identifier
	Externals  []Rule
	Extras     []Rule
	Inline     []Identifier
	Reserved   map[Identifier][]Rule
	Supertypes []Identifier
	Word       Identifier

	rules     map[Identifier]Rule
	ruleOrder []Identifier
}

// Rule looks up a rule in this grammar's own table. The boolean is
// false when the name is not declared here; inherited tables are the
// caller's concern.
func (g *Grammar) Rule(name Identifier) (Rule, bool) {
	rule, ok := g.rules[name]

	return rule, ok
}

// RuleNames returns the rule names in declaration order.
func (g *Grammar) RuleNames() []Identifier {
	names := make([]Identifier, len(g.ruleOrder))
	copy(names, g.ruleOrder)

	return names
}

// RuleCount returns the number of rules declared in this grammar.
func (g *Grammar) RuleCount() int {
	return len(g.ruleOrder)
}

// RootRule returns the grammar's root rule name, which tree-sitter
// defines as the first declared rule. The boolean is false for an
// empty rule table.
func (g *Grammar) RootRule() (Identifier, bool) {
	if len(g.ruleOrder) == 0 {
		return "", false
	}

	return g.ruleOrder[0], true
}

// DefaultPath returns the conventional grammar.json location under
// dir, or under the default source directory when dir is empty.
func DefaultPath(dir string) string {
	if dir == "" {
		dir = DefaultDirectory
	}

	return filepath.Join(dir, DefaultFileName)
}

// Load decodes a grammar document from r.
func Load(r io.Reader) (*Grammar, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read grammar: %w", err)
	}

	var g Grammar

	err = g.UnmarshalJSON(data)
	if err != nil {
		return nil, err
	}

	return &g, nil
}

// LoadFile decodes the grammar document at path.
func LoadFile(path string) (*Grammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grammar file: %w", err)
	}
	defer f.Close()

	g, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	return g, nil
}

// grammarEnvelope mirrors the grammar.json document. Rules stay raw so
// the tagged algebra can be decoded per entry, and the rules object is
// kept whole so declaration order can be recovered.
type grammarEnvelope struct {
	Schema     string                           `json:"$schema"`
	Name       Identifier                       `json:"name"`
	Rules      json.RawMessage                  `json:"rules"`
	Inherits   Identifier                       `json:"inherits"`
	Conflicts  [][]Identifier                   `json:"conflicts"`
	Externals  []json.RawMessage                `json:"externals"`
	Extras     []json.RawMessage                `json:"extras"`
	Inline     []Identifier                     `json:"inline"`
	Reserved   map[Identifier][]json.RawMessage `json:"reserved"`
	Supertypes []Identifier                     `json:"supertypes"`
	Word       Identifier                       `json:"word"`
}

// UnmarshalJSON decodes the grammar.json encoding.
func (g *Grammar) UnmarshalJSON(data []byte) error {
	var env grammarEnvelope

	err := json.Unmarshal(data, &env)
	if err != nil {
		return fmt.Errorf("decode grammar: %w", err)
	}

	if env.Name.IsZero() {
		return fmt.Errorf("grammar document has no name")
	}

	g.Name = env.Name
	g.Inherits = env.Inherits
	g.Conflicts = env.Conflicts
	g.Inline = env.Inline
	g.Supertypes = env.Supertypes
	g.Word = env.Word

	g.Externals, err = decodeRules(env.Externals)
	if err != nil {
		return fmt.Errorf("decode externals: %w", err)
	}

	g.Extras, err = decodeRules(env.Extras)
	if err != nil {
		return fmt.Errorf("decode extras: %w", err)
	}

	if env.Reserved != nil {
		g.Reserved = make(map[Identifier][]Rule, len(env.Reserved))

		for context, raw := range env.Reserved {
			rules, err := decodeRules(raw)
			if err != nil {
				return fmt.Errorf("decode reserved context %s: %w", context, err)
			}

			g.Reserved[context] = rules
		}
	}

	return g.decodeRuleTable(env.Rules)
}

// decodeRuleTable decodes the rules object, preserving declaration
// order so the root rule stays identifiable after the map is built.
func (g *Grammar) decodeRuleTable(raw json.RawMessage) error {
	if len(raw) == 0 {
		return fmt.Errorf("grammar document has no rules")
	}

	order, err := objectKeys(raw)
	if err != nil {
		return fmt.Errorf("decode rules: %w", err)
	}

	var entries map[Identifier]json.RawMessage

	err = json.Unmarshal(raw, &entries)
	if err != nil {
		return fmt.Errorf("decode rules: %w", err)
	}

	g.ruleOrder = order
	g.rules = make(map[Identifier]Rule, len(entries))

	for name, entry := range entries {
		rule, err := decodeRule(entry)
		if err != nil {
			return fmt.Errorf("decode rule %s: %w", name, err)
		}

		g.rules[name] = rule
	}

	return nil
}

// objectKeys returns the top-level keys of a JSON object in document
// order, validated as identifiers.
func objectKeys(raw []byte) ([]Identifier, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var keys []Identifier

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}

		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}

		id, err := ParseIdentifier(key)
		if err != nil {
			return nil, err
		}

		keys = append(keys, id)

		// Skip the value, tracking nesting depth.
		err = skipValue(dec)
		if err != nil {
			return nil, err
		}
	}

	return keys, nil
}

func skipValue(dec *json.Decoder) error {
	depth := 0

	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}

		if delim, ok := tok.(json.Delim); ok {
			switch delim {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}

		if depth == 0 {
			return nil
		}
	}
}
