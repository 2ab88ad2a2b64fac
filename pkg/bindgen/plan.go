// Package bindgen unifies a grammar document and a node-types document
// into a binding plan: one resolved shape per node type, with field
// cardinalities and target types settled, ready for code emission.
package bindgen

import (
	"sort"
	"strings"

	"github.com/johnstonskj/tsbind/pkg/grammar"
	"github.com/johnstonskj/tsbind/pkg/nodetypes"
)

// Cardinality is the resolved multiplicity of a field.
type Cardinality uint8

// Cardinality variants. Repeated absorbs the required flag: a repeated
// field has no empty-versus-absent distinction.
const (
	CardinalitySingle Cardinality = iota
	CardinalityOptional
	CardinalityRepeated
)

// String returns the cardinality name.
func (c Cardinality) String() string {
	switch c {
	case CardinalityOptional:
		return "optional"
	case CardinalityRepeated:
		return "repeated"
	default:
		return "single"
	}
}

// Shape is the resolved classification of one node type. The set of
// implementations is closed: ValueLeaf, CompoundNode, UnionNode.
type Shape interface {
	// Type returns the node-type identity the shape was resolved for.
	Type() nodetypes.NodeType

	isShape()
}

// ValueLeaf is a node with no structured children; it wraps the raw
// matched source text.
type ValueLeaf struct {
	NodeType nodetypes.NodeType
}

// CompoundNode is an internal node with resolved fields. When the
// source definition declares positional children, they appear as a
// trailing pseudo-field named "children".
type CompoundNode struct {
	NodeType nodetypes.NodeType
	Fields   []ResolvedField
}

// UnionNode is a super-type: a union over concrete variants, in
// declared order.
type UnionNode struct {
	NodeType nodetypes.NodeType
	Variants []nodetypes.NodeType
}

func (s ValueLeaf) Type() nodetypes.NodeType    { return s.NodeType }
func (s CompoundNode) Type() nodetypes.NodeType { return s.NodeType }
func (s UnionNode) Type() nodetypes.NodeType    { return s.NodeType }

func (ValueLeaf) isShape()    {}
func (CompoundNode) isShape() {}
func (UnionNode) isShape()    {}

// ResolvedField is one accessor of a compound node. Positional marks
// the synthesized children pseudo-field: its members are the named
// children belonging to no field, so accessors traverse siblings
// rather than looking a field name up.
type ResolvedField struct {
	Name        string
	Cardinality Cardinality
	Target      Target
	Positional  bool
}

// Target is the resolved type a field accessor yields: either a single
// node-type reference or a synthesized anonymous union.
type Target interface {
	isTarget()
}

// TypeTarget references a single node type by identity.
type TypeTarget struct {
	NodeType nodetypes.NodeType
}

// UnionTarget references a synthesized anonymous union.
type UnionTarget struct {
	Union *SyntheticUnion
}

func (TypeTarget) isTarget()  {}
func (UnionTarget) isTarget() {}

// SyntheticUnion is an anonymous union synthesized for a field whose
// declaration lists more than one type. Unions are structurally
// deduplicated: two fields declaring the identical ordered type list
// share one SyntheticUnion; a reordered list is a distinct union.
type SyntheticUnion struct {
	Name    string
	Members []nodetypes.NodeType
}

// unionKey is the structural identity of a synthesized union: the
// ordered member list, order-sensitive.
func unionKey(members []nodetypes.NodeType) string {
	var b strings.Builder

	for i, m := range members {
		if i > 0 {
			b.WriteByte(0x1f)
		}

		b.WriteString(m.Type)
		b.WriteByte(0x1e)

		if m.Named {
			b.WriteByte('n')
		} else {
			b.WriteByte('a')
		}
	}

	return b.String()
}

// Plan is the resolved binding plan: the shape of every node type in
// the source document, plus the synthesized unions. It is produced
// once per generation run and immutable afterwards.
type Plan struct {
	// GrammarName is zero when the plan was unified without a grammar.
	GrammarName grammar.Identifier
	// RootRule is the grammar's first declared rule, zero without a
	// grammar.
	RootRule grammar.Identifier
	// Word is the grammar's designated keyword rule, zero when unset.
	Word grammar.Identifier

	shapes map[nodetypes.NodeType]Shape
	order  []nodetypes.NodeType
	unions map[string]*SyntheticUnion
}

// Shape looks up the resolved shape for a node-type identity.
func (p *Plan) Shape(t nodetypes.NodeType) (Shape, bool) {
	s, ok := p.shapes[t]

	return s, ok
}

// Shapes returns every resolved shape in source-document order.
func (p *Plan) Shapes() []Shape {
	out := make([]Shape, len(p.order))

	for i, t := range p.order {
		out[i] = p.shapes[t]
	}

	return out
}

// Len returns the number of resolved shapes.
func (p *Plan) Len() int {
	return len(p.order)
}

// SyntheticUnions returns the synthesized unions sorted by name.
func (p *Plan) SyntheticUnions() []*SyntheticUnion {
	out := make([]*SyntheticUnion, 0, len(p.unions))

	for _, u := range p.unions {
		out = append(out, u)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}
