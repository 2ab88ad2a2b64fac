package grammar

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Rule is one node of the recursive rule algebra. The set of
// implementations is closed; rules form an owned tree with no sharing.
// Symbol references are resolved by name against the owning grammar's
// rule table, never followed eagerly.
type Rule interface {
	isRule()
}

// Seq matches its members in order.
type Seq struct {
	Members []Rule
}

// Choice matches exactly one of its members.
type Choice struct {
	Members []Rule
}

// Field attaches a field name to the nodes matched by Content.
type Field struct {
	Name    Identifier
	Content Rule
}

// Token marks Content as a single lexical token.
type Token struct {
	Content Rule
}

// ImmediateToken is a token that admits no preceding extras.
type ImmediateToken struct {
	Content Rule
}

// Repeat matches Content zero or more times.
type Repeat struct {
	Content Rule
}

// Repeat1 matches Content one or more times.
type Repeat1 struct {
	Content Rule
}

// Reserved scopes Content to a named reserved-word context.
type Reserved struct {
	Content Rule
	Context Identifier
}

// Assoc is the associativity of a precedence rule.
type Assoc uint8

// Associativity variants of a Prec rule.
const (
	AssocNone Assoc = iota
	AssocLeft
	AssocRight
	AssocDynamic
)

// String returns the grammar.json tag for the associativity.
func (a Assoc) String() string {
	switch a {
	case AssocLeft:
		return "PREC_LEFT"
	case AssocRight:
		return "PREC_RIGHT"
	case AssocDynamic:
		return "PREC_DYNAMIC"
	default:
		return "PREC"
	}
}

// Prec assigns a precedence value (and optionally an associativity) to
// Content.
type Prec struct {
	Assoc   Assoc
	Value   int
	Content Rule
}

// Literal matches an exact string.
type Literal struct {
	Value string
}

// Pattern matches a regular expression, with optional flags.
type Pattern struct {
	Value string
	Flags string
}

// Symbol references another rule by name. References may be forward or
// mutually recursive.
type Symbol struct {
	Name Identifier
}

// Alias renames the nodes matched by Content.
type Alias struct {
	Value   string
	Named   bool
	Content Rule
}

// Blank matches the empty input.
type Blank struct{}

func (Seq) isRule()            {}
func (Choice) isRule()         {}
func (Field) isRule()          {}
func (Token) isRule()          {}
func (ImmediateToken) isRule() {}
func (Repeat) isRule()         {}
func (Repeat1) isRule()        {}
func (Reserved) isRule()       {}
func (Prec) isRule()           {}
func (Literal) isRule()        {}
func (Pattern) isRule()        {}
func (Symbol) isRule()         {}
func (Alias) isRule()          {}
func (Blank) isRule()          {}

// Walk visits rule and its children depth-first, parents before
// children. Returning false from visit prunes the subtree below the
// current rule.
func Walk(rule Rule, visit func(Rule) bool) {
	if rule == nil || !visit(rule) {
		return
	}

	switch r := rule.(type) {
	case Seq:
		for _, m := range r.Members {
			Walk(m, visit)
		}
	case Choice:
		for _, m := range r.Members {
			Walk(m, visit)
		}
	case Field:
		Walk(r.Content, visit)
	case Token:
		Walk(r.Content, visit)
	case ImmediateToken:
		Walk(r.Content, visit)
	case Repeat:
		Walk(r.Content, visit)
	case Repeat1:
		Walk(r.Content, visit)
	case Reserved:
		Walk(r.Content, visit)
	case Prec:
		Walk(r.Content, visit)
	case Alias:
		Walk(r.Content, visit)
	}
}

// Symbols returns every symbol reference inside rule, in depth-first
// order, including duplicates.
func Symbols(rule Rule) []Identifier {
	var refs []Identifier

	Walk(rule, func(r Rule) bool {
		if sym, ok := r.(Symbol); ok {
			refs = append(refs, sym.Name)
		}

		return true
	})

	return refs
}

// ruleEnvelope mirrors the tagged grammar.json encoding of a rule. The
// value field is a string for STRING and ALIAS rules and a number for
// PREC rules, so it stays raw until the tag is known.
type ruleEnvelope struct {
	Type    string            `json:"type"`
	Members []json.RawMessage `json:"members"`
	Name    Identifier        `json:"name"`
	Content json.RawMessage   `json:"content"`
	Context Identifier        `json:"context_name"`
	Value   json.RawMessage   `json:"value"`
	Flags   string            `json:"flags"`
	Named   bool              `json:"named"`
}

// decodeRule decodes one rule from its grammar.json encoding.
func decodeRule(data []byte) (Rule, error) {
	var env ruleEnvelope

	err := json.Unmarshal(data, &env)
	if err != nil {
		return nil, fmt.Errorf("decode rule: %w", err)
	}

	switch env.Type {
	case "SEQ":
		members, err := decodeRules(env.Members)
		if err != nil {
			return nil, err
		}

		return Seq{Members: members}, nil
	case "CHOICE":
		members, err := decodeRules(env.Members)
		if err != nil {
			return nil, err
		}

		return Choice{Members: members}, nil
	case "FIELD":
		content, err := decodeRule(env.Content)
		if err != nil {
			return nil, err
		}

		return Field{Name: env.Name, Content: content}, nil
	case "TOKEN":
		content, err := decodeRule(env.Content)
		if err != nil {
			return nil, err
		}

		return Token{Content: content}, nil
	case "IMMEDIATE_TOKEN":
		content, err := decodeRule(env.Content)
		if err != nil {
			return nil, err
		}

		return ImmediateToken{Content: content}, nil
	case "REPEAT":
		content, err := decodeRule(env.Content)
		if err != nil {
			return nil, err
		}

		return Repeat{Content: content}, nil
	case "REPEAT1":
		content, err := decodeRule(env.Content)
		if err != nil {
			return nil, err
		}

		return Repeat1{Content: content}, nil
	case "RESERVED":
		content, err := decodeRule(env.Content)
		if err != nil {
			return nil, err
		}

		return Reserved{Content: content, Context: env.Context}, nil
	case "PREC", "PREC_LEFT", "PREC_RIGHT", "PREC_DYNAMIC":
		return decodePrec(env)
	case "STRING":
		var value string

		err := json.Unmarshal(env.Value, &value)
		if err != nil {
			return nil, fmt.Errorf("decode STRING value: %w", err)
		}

		return Literal{Value: value}, nil
	case "PATTERN":
		var value string

		err := json.Unmarshal(env.Value, &value)
		if err != nil {
			return nil, fmt.Errorf("decode PATTERN value: %w", err)
		}

		return Pattern{Value: value, Flags: env.Flags}, nil
	case "SYMBOL":
		return Symbol{Name: env.Name}, nil
	case "ALIAS":
		var value string

		err := json.Unmarshal(env.Value, &value)
		if err != nil {
			return nil, fmt.Errorf("decode ALIAS value: %w", err)
		}

		content, err := decodeRule(env.Content)
		if err != nil {
			return nil, err
		}

		return Alias{Value: value, Named: env.Named, Content: content}, nil
	case "BLANK":
		return Blank{}, nil
	default:
		return nil, fmt.Errorf("unknown rule type %q", env.Type)
	}
}

func decodePrec(env ruleEnvelope) (Rule, error) {
	assoc := AssocNone

	switch env.Type {
	case "PREC_LEFT":
		assoc = AssocLeft
	case "PREC_RIGHT":
		assoc = AssocRight
	case "PREC_DYNAMIC":
		assoc = AssocDynamic
	}

	var value int

	err := json.Unmarshal(env.Value, &value)
	if err != nil {
		return nil, fmt.Errorf("decode %s value: %w", env.Type, err)
	}

	content, err := decodeRule(env.Content)
	if err != nil {
		return nil, err
	}

	return Prec{Assoc: assoc, Value: value, Content: content}, nil
}

func decodeRules(raw []json.RawMessage) ([]Rule, error) {
	rules := make([]Rule, 0, len(raw))

	for _, r := range raw {
		rule, err := decodeRule(r)
		if err != nil {
			return nil, err
		}

		rules = append(rules, rule)
	}

	return rules, nil
}
