package emit_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnstonskj/tsbind/pkg/bindgen"
	"github.com/johnstonskj/tsbind/pkg/emit"
	"github.com/johnstonskj/tsbind/pkg/nodetypes"
)

const emitNodeTypes = `[
  {
    "type": "expression",
    "named": true,
    "subtypes": [{"type": "identifier", "named": true}, {"type": "number", "named": true}]
  },
  {
    "type": "binary",
    "named": true,
    "fields": {
      "left": {"multiple": false, "required": true, "types": [{"type": "expression", "named": true}]},
      "right": {"multiple": false, "required": false, "types": [{"type": "expression", "named": true}]},
      "args": {"multiple": true, "required": false, "types": [{"type": "identifier", "named": true}]}
    }
  },
  {"type": "identifier", "named": true},
  {"type": "number", "named": true}
]`

func renderRequest(t *testing.T, language string, artifact bindgen.Artifact) string {
	t.Helper()

	return renderSource(t, language, artifact, emitNodeTypes)
}

func renderSource(t *testing.T, language string, artifact bindgen.Artifact, nodeTypes string) string {
	t.Helper()

	doc, err := nodetypes.Load(strings.NewReader(nodeTypes))
	require.NoError(t, err)

	plan, err := bindgen.UnifyNodeTypes(doc)
	require.NoError(t, err)

	backend, err := emit.Lookup(language)
	require.NoError(t, err)

	source, err := backend.Render(bindgen.BuildRequest(plan, artifact))
	require.NoError(t, err)

	return string(source)
}

func TestLookup_RegisteredBackends(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"go", "rust"}, emit.Languages())

	rust, err := emit.Lookup("rust")
	require.NoError(t, err)
	assert.Equal(t, "rs", rust.FileExtension())

	golang, err := emit.Lookup("go")
	require.NoError(t, err)
	assert.Equal(t, "go", golang.FileExtension())
}

func TestLookup_UnknownLanguage_ReturnsError(t *testing.T) {
	t.Parallel()

	_, err := emit.Lookup("cobol")
	require.Error(t, err)
	assert.ErrorIs(t, err, emit.ErrUnknownLanguage)
}

func TestFilePath_Conventions(t *testing.T) {
	t.Parallel()

	rust, err := emit.Lookup("rust")
	require.NoError(t, err)

	assert.Equal(t, "bindings/rust/nodes.rs", emit.FilePath(rust, "", bindgen.ArtifactConstants))
	assert.Equal(t, "out/rust/wrapper.rs", emit.FilePath(rust, "out", bindgen.ArtifactWrapper))
}

func TestRustRender_Constants(t *testing.T) {
	t.Parallel()

	source := renderRequest(t, "rust", bindgen.ArtifactConstants)

	assert.Contains(t, source, "// Generated by tsbind. DO NOT EDIT.")
	assert.Contains(t, source, `pub const SUPER_NODE_NAMES: &[&str] = &[`)
	assert.Contains(t, source, `"expression",`)
	assert.Contains(t, source, `pub const NODE_NAMES: &[&str] = &[`)
	assert.Contains(t, source, `"binary",`)
	assert.Contains(t, source, `pub const TERMINAL_NAMES: &[&str] = &[`)
	assert.Contains(t, source, `pub const FIELD_NAMES: &[&str] = &[`)
	assert.Contains(t, source, `"left",`)
}

func TestRustRender_Wrapper(t *testing.T) {
	t.Parallel()

	source := renderRequest(t, "rust", bindgen.ArtifactWrapper)

	assert.Contains(t, source, "pub enum Expression<'tree> {")
	assert.Contains(t, source, "Identifier(Identifier<'tree>),")
	assert.Contains(t, source, "pub struct Binary<'tree> {")
	assert.Contains(t, source, "pub fn left(&self) -> Expression<'tree> {")
	assert.Contains(t, source, "pub fn right(&self) -> Option<Expression<'tree>> {")
	assert.Contains(t, source, "pub fn args(&self) -> Vec<Identifier<'tree>> {")
	assert.Contains(t, source, "pub struct Number<'tree> {")
	assert.Contains(t, source, "pub fn text<'src>")
}

func TestGoRender_Constants(t *testing.T) {
	t.Parallel()

	source := renderRequest(t, "go", bindgen.ArtifactConstants)

	assert.Contains(t, source, "// Code generated by tsbind. DO NOT EDIT.")
	assert.Contains(t, source, "package bindings")
	assert.Contains(t, source, "var SuperNodeNames = []string{")
	assert.Contains(t, source, "var TerminalNames = []string{")
	assert.Contains(t, source, "var FieldNames = []string{")
}

func TestGoRender_Wrapper(t *testing.T) {
	t.Parallel()

	source := renderRequest(t, "go", bindgen.ArtifactWrapper)

	assert.Contains(t, source, "type Expression struct {")
	assert.Contains(t, source, "func AsExpression(node *sitter.Node) (Expression, bool) {")
	assert.Contains(t, source, `case "identifier", "number":`)
	assert.Contains(t, source, "func (n Binary) Left() Expression {")
	assert.Contains(t, source, "func (n Binary) Right() (Expression, bool) {")
	assert.Contains(t, source, "func (n Binary) Args() []Identifier {")
	assert.Contains(t, source, "func (n Number) Text(source []byte) string {")
}

// Anonymous operator members plus a positional children declaration,
// the two shapes where dispatch must use raw node kinds rather than
// binding names and field lookups.
const anonNodeTypes = `[
  {
    "type": "binary_expression",
    "named": true,
    "fields": {
      "operator": {"multiple": false, "required": true, "types": [{"type": "+", "named": false}, {"type": "-", "named": false}]}
    },
    "children": {"multiple": true, "required": false, "types": [{"type": "identifier", "named": true}]}
  },
  {"type": "+", "named": false},
  {"type": "-", "named": false},
  {"type": "identifier", "named": true}
]`

func TestRustRender_AnonymousUnion_MatchesRawKinds(t *testing.T) {
	t.Parallel()

	source := renderSource(t, "rust", bindgen.ArtifactWrapper, anonNodeTypes)

	assert.Contains(t, source, `"+" => Some(Self::AnonPlus(AnonPlus::from_node(node)?)),`)
	assert.Contains(t, source, `"-" => Some(Self::AnonMinus(AnonMinus::from_node(node)?)),`)
	assert.NotContains(t, source, `"anon_plus" =>`)
	assert.NotContains(t, source, `"anon_minus" =>`)
}

func TestRustRender_PositionalChildren_WalkSiblings(t *testing.T) {
	t.Parallel()

	source := renderSource(t, "rust", bindgen.ArtifactWrapper, anonNodeTypes)

	assert.Contains(t, source, "pub fn children(&self) -> Vec<Identifier<'tree>> {")
	assert.Contains(t, source, "cursor.field_name().is_none()")
	assert.Contains(t, source, "cursor.goto_next_sibling()")
	assert.NotContains(t, source, `children_by_field_name("children"`)
}

func TestGoRender_AnonymousUnion_MatchesRawKinds(t *testing.T) {
	t.Parallel()

	source := renderSource(t, "go", bindgen.ArtifactWrapper, anonNodeTypes)

	assert.Contains(t, source, `case "+", "-":`)
	assert.NotContains(t, source, `case "anon_plus"`)
}

func TestGoRender_PositionalChildren_WalkSiblings(t *testing.T) {
	t.Parallel()

	source := renderSource(t, "go", bindgen.ArtifactWrapper, anonNodeTypes)

	assert.Contains(t, source, "func (n BinaryExpression) Children() []Identifier {")
	assert.Contains(t, source, `cursor.FieldName() != ""`)
	assert.Contains(t, source, "cursor.GotoNextSibling()")
	assert.NotContains(t, source, `ChildrenByFieldName("children")`)
}

func TestRender_Deterministic(t *testing.T) {
	t.Parallel()

	first := renderRequest(t, "rust", bindgen.ArtifactWrapper)
	second := renderRequest(t, "rust", bindgen.ArtifactWrapper)

	assert.Equal(t, first, second)
}
