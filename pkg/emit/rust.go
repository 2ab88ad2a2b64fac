package emit

import (
	"fmt"
	"strings"

	"github.com/johnstonskj/tsbind/pkg/bindgen"
)

func init() {
	Register(rustBackend{})
}

// rustBackend renders Rust binding sources layered over the
// tree-sitter crate's cursor API.
type rustBackend struct{}

func (rustBackend) Language() string {
	return "rust"
}

func (rustBackend) FileExtension() string {
	return "rs"
}

func (rustBackend) Render(req *bindgen.Request) ([]byte, error) {
	var b strings.Builder

	writeRustHeader(&b, req)

	if req.Artifact == bindgen.ArtifactConstants {
		writeRustConstants(&b, req)

		return []byte(b.String()), nil
	}

	for _, unit := range req.Units {
		switch unit.Kind {
		case bindgen.UnitUnion:
			writeRustUnion(&b, unit)
		case bindgen.UnitCompound:
			writeRustCompound(&b, unit)
		case bindgen.UnitLeaf:
			writeRustLeaf(&b, unit)
		}
	}

	return []byte(b.String()), nil
}

func writeRustHeader(b *strings.Builder, req *bindgen.Request) {
	b.WriteString("// Generated by tsbind. DO NOT EDIT.\n")

	if req.GrammarName != "" {
		fmt.Fprintf(b, "// Grammar: %s\n", req.GrammarName)
	}

	b.WriteString("\n")

	if req.Artifact == bindgen.ArtifactWrapper {
		b.WriteString("use tree_sitter::Node;\n\n")
	}
}

func writeRustConstants(b *strings.Builder, req *bindgen.Request) {
	writeRustNameSlice(b, "Names of super-type nodes.", "SUPER_NODE_NAMES", req.SupertypeNames)
	writeRustNameSlice(b, "Names of compound nodes.", "NODE_NAMES", req.CompoundNames)
	writeRustNameSlice(b, "Names of terminal nodes.", "TERMINAL_NAMES", req.TerminalNames)
	writeRustNameSlice(b, "Names of node fields.", "FIELD_NAMES", req.FieldNames)
}

func writeRustNameSlice(b *strings.Builder, doc, name string, values []string) {
	fmt.Fprintf(b, "/// %s\n", doc)
	fmt.Fprintf(b, "pub const %s: &[&str] = &[\n", name)

	for _, v := range values {
		fmt.Fprintf(b, "    %q,\n", v)
	}

	b.WriteString("];\n\n")
}

func writeRustUnion(b *strings.Builder, unit bindgen.Unit) {
	name := pascalCase(unit.Name)

	if unit.Synthetic {
		fmt.Fprintf(b, "/// Synthesized union over field target types.\n")
	} else {
		fmt.Fprintf(b, "/// Super-type `%s`.\n", unit.RawType)
	}

	fmt.Fprintf(b, "pub enum %s<'tree> {\n", name)

	for _, v := range unit.Variants {
		fmt.Fprintf(b, "    %s(%s<'tree>),\n", pascalCase(v.Name), pascalCase(v.Name))
	}

	b.WriteString("}\n\n")

	fmt.Fprintf(b, "impl<'tree> %s<'tree> {\n", name)
	b.WriteString("    pub fn from_node(node: Node<'tree>) -> Option<Self> {\n")
	b.WriteString("        match node.kind() {\n")

	// Match arms dispatch on the raw node kind, which differs from the
	// binding name for anonymous tokens.
	for _, v := range unit.Variants {
		fmt.Fprintf(b, "            %q => Some(Self::%s(%s::from_node(node)?)),\n",
			v.RawType, pascalCase(v.Name), pascalCase(v.Name))
	}

	b.WriteString("            _ => None,\n")
	b.WriteString("        }\n    }\n}\n\n")
}

func writeRustCompound(b *strings.Builder, unit bindgen.Unit) {
	name := pascalCase(unit.Name)

	fmt.Fprintf(b, "/// Compound node `%s`.\n", unit.RawType)
	fmt.Fprintf(b, "pub struct %s<'tree> {\n    node: Node<'tree>,\n}\n\n", name)
	fmt.Fprintf(b, "impl<'tree> %s<'tree> {\n", name)
	fmt.Fprintf(b, "    pub fn from_node(node: Node<'tree>) -> Option<Self> {\n")
	fmt.Fprintf(b, "        (node.kind() == %q).then_some(Self { node })\n    }\n\n", unit.RawType)
	b.WriteString("    pub fn node(&self) -> Node<'tree> {\n        self.node\n    }\n")

	for _, field := range unit.Fields {
		writeRustAccessor(b, field)
	}

	b.WriteString("}\n\n")
}

func writeRustAccessor(b *strings.Builder, field bindgen.FieldSpec) {
	target := pascalCase(field.TypeName)

	b.WriteString("\n")

	if field.Positional {
		writeRustChildrenAccessor(b, field, target)

		return
	}

	switch field.Cardinality {
	case bindgen.CardinalityRepeated:
		fmt.Fprintf(b, "    pub fn %s(&self) -> Vec<%s<'tree>> {\n", field.Name, target)
		fmt.Fprintf(b, "        let mut cursor = self.node.walk();\n")
		fmt.Fprintf(b, "        self.node\n            .children_by_field_name(%q, &mut cursor)\n", field.Name)
		fmt.Fprintf(b, "            .filter_map(%s::from_node)\n            .collect()\n    }\n", target)
	case bindgen.CardinalityOptional:
		fmt.Fprintf(b, "    pub fn %s(&self) -> Option<%s<'tree>> {\n", field.Name, target)
		fmt.Fprintf(b, "        self.node\n            .child_by_field_name(%q)\n", field.Name)
		fmt.Fprintf(b, "            .and_then(%s::from_node)\n    }\n", target)
	default:
		fmt.Fprintf(b, "    pub fn %s(&self) -> %s<'tree> {\n", field.Name, target)
		fmt.Fprintf(b, "        self.node\n            .child_by_field_name(%q)\n", field.Name)
		fmt.Fprintf(b, "            .and_then(%s::from_node)\n            .expect(\"required field\")\n    }\n", target)
	}
}

// writeRustChildrenAccessor emits the positional-children accessor.
// Positional children are the named children outside every field, so
// the body walks siblings and skips any child the cursor reports a
// field name for; there is no field named "children" to look up.
func writeRustChildrenAccessor(b *strings.Builder, field bindgen.FieldSpec, target string) {
	switch field.Cardinality {
	case bindgen.CardinalityRepeated:
		fmt.Fprintf(b, "    pub fn %s(&self) -> Vec<%s<'tree>> {\n", field.Name, target)
		b.WriteString("        let mut cursor = self.node.walk();\n")
		b.WriteString("        let mut out = Vec::new();\n")
		writeRustChildScan(b, fmt.Sprintf("if let Some(child) = %s::from_node(cursor.node()) {\n                        out.push(child);\n                    }", target))
		b.WriteString("        out\n    }\n")
	case bindgen.CardinalityOptional:
		fmt.Fprintf(b, "    pub fn %s(&self) -> Option<%s<'tree>> {\n", field.Name, target)
		b.WriteString("        let mut cursor = self.node.walk();\n")
		writeRustChildScan(b, fmt.Sprintf("if let Some(child) = %s::from_node(cursor.node()) {\n                        return Some(child);\n                    }", target))
		b.WriteString("        None\n    }\n")
	default:
		fmt.Fprintf(b, "    pub fn %s(&self) -> %s<'tree> {\n", field.Name, target)
		b.WriteString("        let mut cursor = self.node.walk();\n")
		writeRustChildScan(b, fmt.Sprintf("if let Some(child) = %s::from_node(cursor.node()) {\n                        return child;\n                    }", target))
		b.WriteString("        panic!(\"required children\")\n    }\n")
	}
}

// writeRustChildScan emits the sibling loop shared by the positional
// accessors; hit is the statement run for each unfielded child.
func writeRustChildScan(b *strings.Builder, hit string) {
	b.WriteString("        if cursor.goto_first_child() {\n")
	b.WriteString("            loop {\n")
	b.WriteString("                if cursor.field_name().is_none() {\n")
	fmt.Fprintf(b, "                    %s\n", hit)
	b.WriteString("                }\n")
	b.WriteString("                if !cursor.goto_next_sibling() {\n")
	b.WriteString("                    break;\n")
	b.WriteString("                }\n")
	b.WriteString("            }\n")
	b.WriteString("        }\n")
}

func writeRustLeaf(b *strings.Builder, unit bindgen.Unit) {
	name := pascalCase(unit.Name)

	fmt.Fprintf(b, "/// Terminal node `%s`; wraps the matched source text.\n", unit.RawType)
	fmt.Fprintf(b, "pub struct %s<'tree> {\n    node: Node<'tree>,\n}\n\n", name)
	fmt.Fprintf(b, "impl<'tree> %s<'tree> {\n", name)
	fmt.Fprintf(b, "    pub fn from_node(node: Node<'tree>) -> Option<Self> {\n")
	fmt.Fprintf(b, "        (node.kind() == %q).then_some(Self { node })\n    }\n\n", unit.RawType)
	b.WriteString("    pub fn text<'src>(&self, source: &'src str) -> &'src str {\n")
	b.WriteString("        &source[self.node.byte_range()]\n    }\n}\n\n")
}
