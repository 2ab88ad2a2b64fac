// Package nodetypes models a tree-sitter node-types.json document: the
// flat catalogue of every concrete syntax-tree node kind a parser can
// produce, classified as super-type, regular, or terminal.
package nodetypes

import (
	"sort"
	"strconv"
)

// NodeType identifies a concrete node kind. Two node types are the
// same kind only when both the name and the named flag match; the same
// string with a different flag is a distinct kind.
type NodeType struct {
	Type  string `json:"type"`
	Named bool   `json:"named"`
}

// Named constructs a named node type.
func Named(name string) NodeType {
	return NodeType{Type: name, Named: true}
}

// Unnamed constructs an unnamed (anonymous) node type.
func Unnamed(name string) NodeType {
	return NodeType{Type: name, Named: false}
}

// String renders named types bare and unnamed types quoted, matching
// tree-sitter's display convention.
func (t NodeType) String() string {
	if t.Named {
		return t.Type
	}

	return strconv.Quote(t.Type)
}

// NodeChildren declares the cardinality and permitted types of a field
// or of the positional children of a node.
type NodeChildren struct {
	Multiple bool       `json:"multiple"`
	Required bool       `json:"required"`
	Types    []NodeType `json:"types"`
}

// Definition is one entry of the node-types document. Its
// classification is carried by data shape, not an explicit tag: a
// present subtypes list makes it a super-type; a regular definition
// with neither fields nor children is a terminal.
type Definition struct {
	NodeType
	Subtypes []NodeType              `json:"subtypes,omitempty"`
	Fields   map[string]NodeChildren `json:"fields,omitempty"`
	Children *NodeChildren           `json:"children,omitempty"`
}

// IsSupertype reports whether the definition is a union over subtypes.
func (d *Definition) IsSupertype() bool {
	return d.Subtypes != nil
}

// IsTerminal reports whether the definition is a leaf with no
// structured children.
func (d *Definition) IsTerminal() bool {
	return !d.IsSupertype() && d.Fields == nil && d.Children == nil
}

// IsRegular reports whether the definition is an internal node with
// fields or children.
func (d *Definition) IsRegular() bool {
	return !d.IsSupertype() && !d.IsTerminal()
}

// FieldNames returns the declared field names in sorted order.
func (d *Definition) FieldNames() []string {
	names := make([]string, 0, len(d.Fields))

	for name := range d.Fields {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
