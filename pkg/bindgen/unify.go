package bindgen

import (
	"fmt"
	"sort"

	"github.com/johnstonskj/tsbind/pkg/grammar"
	"github.com/johnstonskj/tsbind/pkg/nodetypes"
)

// childrenFieldName is the pseudo-field carrying a node's positional
// children.
const childrenFieldName = "children"

// Unify resolves a grammar document and a node-types document into a
// binding plan. The library maps grammar names to loaded documents and
// is consulted to compose the effective rule table across the
// grammar's inherits chain; it may be nil for a standalone grammar.
//
// Every structural inconsistency is collected during the single pass
// and returned as one *Report error; a plan is only produced when no
// issues were found.
func Unify(root *grammar.Grammar, library map[grammar.Identifier]*grammar.Grammar, doc *nodetypes.Document) (*Plan, error) {
	u := &unifier{doc: doc}

	u.buildLayers(root, library)
	u.checkSymbols()
	u.checkSupertypeDeclarations(root)
	u.checkTokenTerminals(root)
	u.resolveShapes()

	return u.finish(root)
}

// UnifyNodeTypes resolves a node-types document on its own, skipping
// every grammar-side check. Operations that only consume the node
// catalogue (name constants) use this form.
func UnifyNodeTypes(doc *nodetypes.Document) (*Plan, error) {
	u := &unifier{doc: doc}

	u.resolveShapes()

	return u.finish(nil)
}

type unifier struct {
	layers []*grammar.Grammar
	doc    *nodetypes.Document
	plan   Plan
	report Report
}

// buildLayers follows the inherits chain, child first. A missing
// parent or a loop in the chain is reported and the chain is cut
// there.
func (u *unifier) buildLayers(root *grammar.Grammar, library map[grammar.Identifier]*grammar.Grammar) {
	seen := map[grammar.Identifier]bool{root.Name: true}
	u.layers = append(u.layers, root)

	for g := root; !g.Inherits.IsZero(); {
		if seen[g.Inherits] {
			u.report.add(IssueInheritance, g.Inherits.String(),
				fmt.Sprintf("inherits chain of grammar `%s` loops", root.Name))

			return
		}

		parent, ok := library[g.Inherits]
		if !ok {
			u.report.add(IssueInheritance, g.Inherits.String(),
				fmt.Sprintf("grammar `%s` inherits an unknown grammar", g.Name))

			return
		}

		seen[g.Inherits] = true
		u.layers = append(u.layers, parent)
		g = parent
	}
}

// resolveRule performs the layered rule lookup: the child's table
// shadows its parent's, and so on up the chain.
func (u *unifier) resolveRule(name grammar.Identifier) (grammar.Rule, bool) {
	for _, layer := range u.layers {
		if rule, ok := layer.Rule(name); ok {
			return rule, true
		}
	}

	return nil, false
}

// checkSymbols validates every symbol reference in every layer against
// the composed rule table. Externals are exempt: their symbols declare
// scanner tokens rather than reference rules.
func (u *unifier) checkSymbols() {
	for _, layer := range u.layers {
		for _, name := range layer.RuleNames() {
			rule, _ := layer.Rule(name)
			u.checkRuleSymbols(rule, fmt.Sprintf("rule `%s` of grammar `%s`", name, layer.Name))
		}

		for _, rule := range layer.Extras {
			u.checkRuleSymbols(rule, fmt.Sprintf("extras of grammar `%s`", layer.Name))
		}

		contexts := make([]grammar.Identifier, 0, len(layer.Reserved))

		for context := range layer.Reserved {
			contexts = append(contexts, context)
		}

		sort.Slice(contexts, func(i, j int) bool { return contexts[i] < contexts[j] })

		for _, context := range contexts {
			for _, rule := range layer.Reserved[context] {
				u.checkRuleSymbols(rule, fmt.Sprintf("reserved context `%s` of grammar `%s`", context, layer.Name))
			}
		}

		if !layer.Word.IsZero() {
			if _, ok := u.resolveRule(layer.Word); !ok {
				u.report.add(IssueUnresolvedSymbol, layer.Word.String(),
					fmt.Sprintf("word token of grammar `%s`", layer.Name))
			}
		}
	}
}

func (u *unifier) checkRuleSymbols(rule grammar.Rule, context string) {
	for _, ref := range grammar.Symbols(rule) {
		if _, ok := u.resolveRule(ref); !ok {
			u.report.add(IssueUnresolvedSymbol, ref.String(), context)
		}
	}
}

// checkSupertypeDeclarations verifies that every grammar-level
// supertype has a matching super-type definition in the node-types
// document.
func (u *unifier) checkSupertypeDeclarations(root *grammar.Grammar) {
	for _, name := range root.Supertypes {
		def, ok := u.doc.LookupNamed(name.String())
		if !ok {
			u.report.add(IssueUnknownSupertype, name.String(),
				fmt.Sprintf("supertypes of grammar `%s`", root.Name))

			continue
		}

		if !def.IsSupertype() {
			u.report.add(IssueClassificationMismatch, name.String(),
				fmt.Sprintf("declared as a supertype by grammar `%s` but not a union in the node-types document", root.Name))
		}
	}
}

// checkTokenTerminals verifies that node types the grammar implies are
// tokens (the word rule, extras symbols, external tokens) are not
// declared with internal structure by the node-types document.
func (u *unifier) checkTokenTerminals(root *grammar.Grammar) {
	tokens := make(map[string]string)

	if !root.Word.IsZero() {
		tokens[root.Word.String()] = fmt.Sprintf("word token of grammar `%s`", root.Name)
	}

	for _, rule := range root.Extras {
		for _, ref := range grammar.Symbols(rule) {
			tokens[ref.String()] = fmt.Sprintf("extras of grammar `%s`", root.Name)
		}
	}

	for _, rule := range root.Externals {
		for _, ref := range grammar.Symbols(rule) {
			tokens[ref.String()] = fmt.Sprintf("externals of grammar `%s`", root.Name)
		}
	}

	names := make([]string, 0, len(tokens))

	for name := range tokens {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		context := tokens[name]

		def, ok := u.doc.LookupNamed(name)
		if !ok {
			continue
		}

		if def.IsSupertype() || def.IsRegular() {
			u.report.add(IssueClassificationMismatch, name,
				context+", but the node-types document declares internal structure")
		}
	}
}

// resolveShapes classifies every definition in document order and
// resolves compound fields. Target resolution is by name against the
// document, so forward references and mutual recursion between node
// kinds need no special ordering.
func (u *unifier) resolveShapes() {
	u.plan.shapes = make(map[nodetypes.NodeType]Shape, u.doc.Len())
	u.plan.unions = make(map[string]*SyntheticUnion)

	for _, def := range u.doc.Definitions() {
		var shape Shape

		switch {
		case def.IsSupertype():
			shape = u.resolveUnion(&def)
		case def.IsTerminal():
			shape = ValueLeaf{NodeType: def.NodeType}
		default:
			shape = u.resolveCompound(&def)
		}

		u.plan.shapes[def.NodeType] = shape
		u.plan.order = append(u.plan.order, def.NodeType)
	}
}

// resolveUnion builds a UnionNode, deduplicating subtypes while
// preserving first-seen order and checking each resolves to a known
// node type.
func (u *unifier) resolveUnion(def *nodetypes.Definition) UnionNode {
	seen := make(map[nodetypes.NodeType]bool, len(def.Subtypes))
	variants := make([]nodetypes.NodeType, 0, len(def.Subtypes))

	for _, sub := range def.Subtypes {
		if seen[sub] {
			continue
		}

		seen[sub] = true
		variants = append(variants, sub)

		if _, ok := u.doc.Lookup(sub); !ok {
			u.report.add(IssueUnresolvedNodeType, sub.String(),
				fmt.Sprintf("subtype of `%s`", def.NodeType))
		}
	}

	return UnionNode{NodeType: def.NodeType, Variants: variants}
}

// resolveCompound builds a CompoundNode from the declared fields, in
// sorted field-name order, plus the positional children pseudo-field
// when present.
func (u *unifier) resolveCompound(def *nodetypes.Definition) CompoundNode {
	node := CompoundNode{NodeType: def.NodeType}

	for _, name := range def.FieldNames() {
		field, ok := u.resolveField(def, name, def.Fields[name])
		if ok {
			node.Fields = append(node.Fields, field)
		}
	}

	if def.Children != nil {
		field, ok := u.resolveField(def, childrenFieldName, *def.Children)
		if ok {
			field.Positional = true
			node.Fields = append(node.Fields, field)
		}
	}

	return node
}

func (u *unifier) resolveField(def *nodetypes.Definition, name string, nc nodetypes.NodeChildren) (ResolvedField, bool) {
	context := fmt.Sprintf("field `%s` of `%s`", name, def.NodeType)

	if len(nc.Types) == 0 {
		u.report.add(IssueEmptyCardinality, name,
			fmt.Sprintf("node `%s` declares multiple=%t required=%t with no types", def.NodeType, nc.Multiple, nc.Required))

		return ResolvedField{}, false
	}

	for _, t := range nc.Types {
		if _, ok := u.doc.Lookup(t); !ok {
			u.report.add(IssueUnresolvedNodeType, t.String(), context)
		}
	}

	field := ResolvedField{Name: name, Cardinality: cardinalityOf(nc)}

	if len(nc.Types) == 1 {
		field.Target = TypeTarget{NodeType: nc.Types[0]}
	} else {
		field.Target = UnionTarget{Union: u.internUnion(nc.Types)}
	}

	return field, true
}

// cardinalityOf maps the declared flags: multiple wins over required.
func cardinalityOf(nc nodetypes.NodeChildren) Cardinality {
	switch {
	case nc.Multiple:
		return CardinalityRepeated
	case nc.Required:
		return CardinalitySingle
	default:
		return CardinalityOptional
	}
}

// internUnion returns the one synthesized union for an ordered member
// list, creating it on first use.
func (u *unifier) internUnion(members []nodetypes.NodeType) *SyntheticUnion {
	key := unionKey(members)

	union, ok := u.plan.unions[key]
	if !ok {
		union = &SyntheticUnion{
			Name:    unionName(members),
			Members: append([]nodetypes.NodeType(nil), members...),
		}
		u.plan.unions[key] = union
	}

	return union
}

// finish returns the plan, or the aggregate report when any issue was
// found. There is no partial plan on failure.
func (u *unifier) finish(root *grammar.Grammar) (*Plan, error) {
	if len(u.report.Issues) > 0 {
		return nil, &u.report
	}

	if root != nil {
		u.plan.GrammarName = root.Name
		u.plan.Word = root.Word

		if rootRule, ok := root.RootRule(); ok {
			u.plan.RootRule = rootRule
		}
	}

	return &u.plan, nil
}
