package emit

import (
	"fmt"
	"strings"

	"github.com/johnstonskj/tsbind/pkg/bindgen"
)

func init() {
	Register(goBackend{})
}

// goBackend renders Go binding sources layered over a tree-sitter
// runtime's Node type.
type goBackend struct{}

func (goBackend) Language() string {
	return "go"
}

func (goBackend) FileExtension() string {
	return "go"
}

func (goBackend) Render(req *bindgen.Request) ([]byte, error) {
	var b strings.Builder

	b.WriteString("// Code generated by tsbind. DO NOT EDIT.\n\n")

	pkg := req.GrammarName
	if pkg == "" {
		pkg = "bindings"
	}

	fmt.Fprintf(&b, "package %s\n\n", pkg)

	if req.Artifact == bindgen.ArtifactConstants {
		writeGoConstants(&b, req)

		return []byte(b.String()), nil
	}

	b.WriteString("import sitter \"github.com/tree-sitter/go-tree-sitter\"\n\n")

	for _, unit := range req.Units {
		switch unit.Kind {
		case bindgen.UnitUnion:
			writeGoUnion(&b, unit)
		case bindgen.UnitCompound:
			writeGoCompound(&b, unit)
		case bindgen.UnitLeaf:
			writeGoLeaf(&b, unit)
		}
	}

	return []byte(b.String()), nil
}

func writeGoConstants(b *strings.Builder, req *bindgen.Request) {
	writeGoNameSlice(b, "SuperNodeNames lists the super-type node names.", "SuperNodeNames", req.SupertypeNames)
	writeGoNameSlice(b, "NodeNames lists the compound node names.", "NodeNames", req.CompoundNames)
	writeGoNameSlice(b, "TerminalNames lists the terminal node names.", "TerminalNames", req.TerminalNames)
	writeGoNameSlice(b, "FieldNames lists the node field names.", "FieldNames", req.FieldNames)
}

func writeGoNameSlice(b *strings.Builder, doc, name string, values []string) {
	fmt.Fprintf(b, "// %s\n", doc)
	fmt.Fprintf(b, "var %s = []string{\n", name)

	for _, v := range values {
		fmt.Fprintf(b, "\t%q,\n", v)
	}

	b.WriteString("}\n\n")
}

func writeGoUnion(b *strings.Builder, unit bindgen.Unit) {
	name := pascalCase(unit.Name)

	if unit.Synthetic {
		fmt.Fprintf(b, "// %s is a synthesized union over field target types.\n", name)
	} else {
		fmt.Fprintf(b, "// %s wraps the super-type node %q.\n", name, unit.RawType)
	}

	fmt.Fprintf(b, "type %s struct {\n\tnode *sitter.Node\n}\n\n", name)
	fmt.Fprintf(b, "// As%s classifies node into the union, returning false for\n// non-member kinds.\n", name)
	fmt.Fprintf(b, "func As%s(node *sitter.Node) (%s, bool) {\n", name, name)
	b.WriteString("\tswitch node.Kind() {\n")

	// Case labels carry the raw node kinds, which differ from binding
	// names for anonymous tokens.
	kinds := make([]string, 0, len(unit.Variants))
	for _, v := range unit.Variants {
		kinds = append(kinds, fmt.Sprintf("%q", v.RawType))
	}

	fmt.Fprintf(b, "\tcase %s:\n", strings.Join(kinds, ", "))
	fmt.Fprintf(b, "\t\treturn %s{node: node}, true\n", name)
	b.WriteString("\tdefault:\n")
	fmt.Fprintf(b, "\t\treturn %s{}, false\n\t}\n}\n\n", name)
	fmt.Fprintf(b, "// Node returns the wrapped syntax node.\nfunc (n %s) Node() *sitter.Node {\n\treturn n.node\n}\n\n", name)
}

func writeGoCompound(b *strings.Builder, unit bindgen.Unit) {
	name := pascalCase(unit.Name)

	fmt.Fprintf(b, "// %s wraps the compound node %q.\n", name, unit.RawType)
	fmt.Fprintf(b, "type %s struct {\n\tnode *sitter.Node\n}\n\n", name)
	fmt.Fprintf(b, "// As%s wraps node, returning false for other kinds.\n", name)
	fmt.Fprintf(b, "func As%s(node *sitter.Node) (%s, bool) {\n", name, name)
	fmt.Fprintf(b, "\tif node.Kind() != %q {\n\t\treturn %s{}, false\n\t}\n\n", unit.RawType, name)
	fmt.Fprintf(b, "\treturn %s{node: node}, true\n}\n\n", name)

	for _, field := range unit.Fields {
		writeGoAccessor(b, name, field)
	}
}

func writeGoAccessor(b *strings.Builder, owner string, field bindgen.FieldSpec) {
	target := pascalCase(field.TypeName)
	method := pascalCase(field.Name)

	if field.Positional {
		writeGoChildrenAccessor(b, owner, method, target, field.Cardinality)

		return
	}

	switch field.Cardinality {
	case bindgen.CardinalityRepeated:
		fmt.Fprintf(b, "// %s returns every %q child, in tree order.\n", method, field.Name)
		fmt.Fprintf(b, "func (n %s) %s() []%s {\n", owner, method, target)
		fmt.Fprintf(b, "\tvar out []%s\n\n", target)
		fmt.Fprintf(b, "\tfor _, child := range n.node.ChildrenByFieldName(%q) {\n", field.Name)
		fmt.Fprintf(b, "\t\tif wrapped, ok := As%s(child); ok {\n\t\t\tout = append(out, wrapped)\n\t\t}\n\t}\n\n", target)
		b.WriteString("\treturn out\n}\n\n")
	case bindgen.CardinalityOptional:
		fmt.Fprintf(b, "// %s returns the optional %q child.\n", method, field.Name)
		fmt.Fprintf(b, "func (n %s) %s() (%s, bool) {\n", owner, method, target)
		fmt.Fprintf(b, "\tchild := n.node.ChildByFieldName(%q)\n", field.Name)
		fmt.Fprintf(b, "\tif child == nil {\n\t\treturn %s{}, false\n\t}\n\n", target)
		fmt.Fprintf(b, "\treturn As%s(child)\n}\n\n", target)
	default:
		fmt.Fprintf(b, "// %s returns the required %q child.\n", method, field.Name)
		fmt.Fprintf(b, "func (n %s) %s() %s {\n", owner, method, target)
		fmt.Fprintf(b, "\twrapped, _ := As%s(n.node.ChildByFieldName(%q))\n\n", target, field.Name)
		b.WriteString("\treturn wrapped\n}\n\n")
	}
}

// writeGoChildrenAccessor emits the positional-children accessor.
// Positional children are the named children outside every field, so
// the body walks siblings with a cursor and skips any child carrying a
// field name; there is no field named "children" to look up.
func writeGoChildrenAccessor(b *strings.Builder, owner, method, target string, cardinality bindgen.Cardinality) {
	switch cardinality {
	case bindgen.CardinalityRepeated:
		fmt.Fprintf(b, "// %s returns every named child outside a field, in tree order.\n", method)
		fmt.Fprintf(b, "func (n %s) %s() []%s {\n", owner, method, target)
		fmt.Fprintf(b, "\tvar out []%s\n\n", target)
		writeGoChildScan(b, fmt.Sprintf("if wrapped, ok := As%s(cursor.Node()); ok {\n\t\t\tout = append(out, wrapped)\n\t\t}", target))
		b.WriteString("\treturn out\n}\n\n")
	case bindgen.CardinalityOptional:
		fmt.Fprintf(b, "// %s returns the first named child outside a field.\n", method)
		fmt.Fprintf(b, "func (n %s) %s() (%s, bool) {\n", owner, method, target)
		writeGoChildScan(b, fmt.Sprintf("if wrapped, ok := As%s(cursor.Node()); ok {\n\t\t\treturn wrapped, true\n\t\t}", target))
		fmt.Fprintf(b, "\treturn %s{}, false\n}\n\n", target)
	default:
		fmt.Fprintf(b, "// %s returns the first named child outside a field.\n", method)
		fmt.Fprintf(b, "func (n %s) %s() %s {\n", owner, method, target)
		writeGoChildScan(b, fmt.Sprintf("if wrapped, ok := As%s(cursor.Node()); ok {\n\t\t\treturn wrapped\n\t\t}", target))
		fmt.Fprintf(b, "\treturn %s{}\n}\n\n", target)
	}
}

// writeGoChildScan emits the cursor loop shared by the positional
// accessors; hit is the statement run for each unfielded child.
func writeGoChildScan(b *strings.Builder, hit string) {
	b.WriteString("\tcursor := n.node.Walk()\n\n")
	b.WriteString("\tfor more := cursor.GotoFirstChild(); more; more = cursor.GotoNextSibling() {\n")
	b.WriteString("\t\tif cursor.FieldName() != \"\" {\n\t\t\tcontinue\n\t\t}\n\n")
	fmt.Fprintf(b, "\t\t%s\n", hit)
	b.WriteString("\t}\n\n")
}

func writeGoLeaf(b *strings.Builder, unit bindgen.Unit) {
	name := pascalCase(unit.Name)

	fmt.Fprintf(b, "// %s wraps the terminal node %q; it carries only matched text.\n", name, unit.RawType)
	fmt.Fprintf(b, "type %s struct {\n\tnode *sitter.Node\n}\n\n", name)
	fmt.Fprintf(b, "// As%s wraps node, returning false for other kinds.\n", name)
	fmt.Fprintf(b, "func As%s(node *sitter.Node) (%s, bool) {\n", name, name)
	fmt.Fprintf(b, "\tif node.Kind() != %q {\n\t\treturn %s{}, false\n\t}\n\n", unit.RawType, name)
	fmt.Fprintf(b, "\treturn %s{node: node}, true\n}\n\n", name)
	fmt.Fprintf(b, "// Text returns the matched source text.\nfunc (n %s) Text(source []byte) string {\n", name)
	b.WriteString("\treturn n.node.Utf8Text(source)\n}\n\n")
}
