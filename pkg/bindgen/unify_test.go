package bindgen_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnstonskj/tsbind/pkg/bindgen"
	"github.com/johnstonskj/tsbind/pkg/grammar"
	"github.com/johnstonskj/tsbind/pkg/nodetypes"
)

func loadGrammar(t *testing.T, src string) *grammar.Grammar {
	t.Helper()

	g, err := grammar.Load(strings.NewReader(src))
	require.NoError(t, err)

	return g
}

func loadNodeTypes(t *testing.T, src string) *nodetypes.Document {
	t.Helper()

	doc, err := nodetypes.Load(strings.NewReader(src))
	require.NoError(t, err)

	return doc
}

// The module/identifier/module_body pair used throughout.
const moduleGrammar = `{
  "name": "test",
  "rules": {
    "module": {
      "type": "SEQ",
      "members": [
        {"type": "FIELD", "name": "name", "content": {"type": "SYMBOL", "name": "identifier"}},
        {"type": "FIELD", "name": "body", "content": {"type": "SYMBOL", "name": "module_body"}}
      ]
    },
    "identifier": {"type": "PATTERN", "value": "[a-z]+"},
    "module_body": {"type": "STRING", "value": "body"}
  }
}`

const moduleNodeTypes = `[
  {
    "type": "module",
    "named": true,
    "fields": {
      "name": {"multiple": false, "required": true, "types": [{"type": "identifier", "named": true}]},
      "body": {"multiple": false, "required": true, "types": [{"type": "module_body", "named": true}]}
    }
  },
  {"type": "identifier", "named": true},
  {"type": "module_body", "named": true}
]`

func TestUnify_EndToEndModuleExample(t *testing.T) {
	t.Parallel()

	g := loadGrammar(t, moduleGrammar)
	doc := loadNodeTypes(t, moduleNodeTypes)

	plan, err := bindgen.Unify(g, nil, doc)
	require.NoError(t, err)

	assert.Equal(t, grammar.Identifier("test"), plan.GrammarName)
	assert.Equal(t, grammar.Identifier("module"), plan.RootRule)
	assert.Equal(t, 3, plan.Len())

	shape, ok := plan.Shape(nodetypes.Named("module"))
	require.True(t, ok)

	module, ok := shape.(bindgen.CompoundNode)
	require.True(t, ok)
	require.Len(t, module.Fields, 2)

	// Fields are resolved in sorted name order.
	body := module.Fields[0]
	assert.Equal(t, "body", body.Name)
	assert.Equal(t, bindgen.CardinalitySingle, body.Cardinality)
	assert.Equal(t, bindgen.TypeTarget{NodeType: nodetypes.Named("module_body")}, body.Target)

	name := module.Fields[1]
	assert.Equal(t, "name", name.Name)
	assert.Equal(t, bindgen.CardinalitySingle, name.Cardinality)
	assert.Equal(t, bindgen.TypeTarget{NodeType: nodetypes.Named("identifier")}, name.Target)

	for _, leaf := range []string{"identifier", "module_body"} {
		shape, ok := plan.Shape(nodetypes.Named(leaf))
		require.True(t, ok)
		assert.IsType(t, bindgen.ValueLeaf{}, shape, leaf)
	}
}

func TestUnify_CardinalityMapping_Exhaustive(t *testing.T) {
	t.Parallel()

	cases := []struct {
		multiple bool
		required bool
		want     bindgen.Cardinality
	}{
		{multiple: true, required: true, want: bindgen.CardinalityRepeated},
		{multiple: true, required: false, want: bindgen.CardinalityRepeated},
		{multiple: false, required: true, want: bindgen.CardinalitySingle},
		{multiple: false, required: false, want: bindgen.CardinalityOptional},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(fmt.Sprintf("multiple=%t required=%t", tc.multiple, tc.required), func(t *testing.T) {
			t.Parallel()

			src := fmt.Sprintf(`[
  {
    "type": "node",
    "named": true,
    "fields": {
      "f": {"multiple": %t, "required": %t, "types": [{"type": "leaf", "named": true}]}
    }
  },
  {"type": "leaf", "named": true}
]`, tc.multiple, tc.required)

			plan, err := bindgen.UnifyNodeTypes(loadNodeTypes(t, src))
			require.NoError(t, err)

			shape, ok := plan.Shape(nodetypes.Named("node"))
			require.True(t, ok)

			node, ok := shape.(bindgen.CompoundNode)
			require.True(t, ok)
			require.Len(t, node.Fields, 1)
			assert.Equal(t, tc.want, node.Fields[0].Cardinality)
		})
	}
}

func TestUnify_SupertypeRoundTrip(t *testing.T) {
	t.Parallel()

	src := `[
  {
    "type": "expression",
    "named": true,
    "subtypes": [
      {"type": "identifier", "named": true},
      {"type": "literal", "named": true},
      {"type": "identifier", "named": true}
    ]
  },
  {"type": "identifier", "named": true},
  {"type": "literal", "named": true}
]`

	plan, err := bindgen.UnifyNodeTypes(loadNodeTypes(t, src))
	require.NoError(t, err)

	shape, ok := plan.Shape(nodetypes.Named("expression"))
	require.True(t, ok)

	union, ok := shape.(bindgen.UnionNode)
	require.True(t, ok)

	// Duplicates collapse, first-seen order preserved.
	want := []nodetypes.NodeType{nodetypes.Named("identifier"), nodetypes.Named("literal")}
	assert.Equal(t, want, union.Variants)
}

func TestUnify_ChildrenBecomeTrailingPseudoField(t *testing.T) {
	t.Parallel()

	src := `[
  {
    "type": "block",
    "named": true,
    "fields": {
      "tag": {"multiple": false, "required": false, "types": [{"type": "leaf", "named": true}]}
    },
    "children": {"multiple": true, "required": true, "types": [{"type": "leaf", "named": true}]}
  },
  {"type": "leaf", "named": true}
]`

	plan, err := bindgen.UnifyNodeTypes(loadNodeTypes(t, src))
	require.NoError(t, err)

	shape, ok := plan.Shape(nodetypes.Named("block"))
	require.True(t, ok)

	block, ok := shape.(bindgen.CompoundNode)
	require.True(t, ok)
	require.Len(t, block.Fields, 2)
	assert.Equal(t, "tag", block.Fields[0].Name)
	assert.False(t, block.Fields[0].Positional)
	assert.Equal(t, "children", block.Fields[1].Name)
	assert.Equal(t, bindgen.CardinalityRepeated, block.Fields[1].Cardinality)
	assert.True(t, block.Fields[1].Positional)
}

func TestUnify_UnionSynthesisStability(t *testing.T) {
	t.Parallel()

	src := `[
  {
    "type": "a",
    "named": true,
    "fields": {
      "base": {"multiple": false, "required": false, "types": [{"type": "iri", "named": true}, {"type": "blank", "named": true}]}
    }
  },
  {
    "type": "b",
    "named": true,
    "fields": {
      "target": {"multiple": false, "required": true, "types": [{"type": "iri", "named": true}, {"type": "blank", "named": true}]},
      "reversed": {"multiple": false, "required": true, "types": [{"type": "blank", "named": true}, {"type": "iri", "named": true}]}
    }
  },
  {"type": "iri", "named": true},
  {"type": "blank", "named": true}
]`

	plan, err := bindgen.UnifyNodeTypes(loadNodeTypes(t, src))
	require.NoError(t, err)

	fieldTarget := func(node, field string) *bindgen.SyntheticUnion {
		t.Helper()

		shape, ok := plan.Shape(nodetypes.Named(node))
		require.True(t, ok)

		compound, ok := shape.(bindgen.CompoundNode)
		require.True(t, ok)

		for _, f := range compound.Fields {
			if f.Name == field {
				union, ok := f.Target.(bindgen.UnionTarget)
				require.True(t, ok)

				return union.Union
			}
		}

		t.Fatalf("field %s not found on %s", field, node)

		return nil
	}

	base := fieldTarget("a", "base")
	target := fieldTarget("b", "target")
	reversed := fieldTarget("b", "reversed")

	// Identical ordered type sets share one synthesized union.
	assert.Same(t, base, target)
	// A reordered set is a distinct union.
	assert.NotSame(t, base, reversed)

	assert.Len(t, plan.SyntheticUnions(), 2)

	// The optional union field keeps its declared shape.
	shape, _ := plan.Shape(nodetypes.Named("a"))
	compound := shape.(bindgen.CompoundNode)
	assert.Equal(t, bindgen.CardinalityOptional, compound.Fields[0].Cardinality)
}

func TestUnify_AggregateFailureCompleteness(t *testing.T) {
	t.Parallel()

	// Exactly three independent inconsistencies: one unresolved
	// symbol, one unresolved node type, one classification mismatch.
	g := loadGrammar(t, `{
  "name": "broken",
  "supertypes": ["thing"],
  "rules": {
    "start": {"type": "SYMBOL", "name": "missing_rule"},
    "thing": {"type": "STRING", "value": "x"}
  }
}`)

	doc := loadNodeTypes(t, `[
  {
    "type": "start",
    "named": true,
    "fields": {
      "f": {"multiple": false, "required": true, "types": [{"type": "missing_node", "named": true}]}
    }
  },
  {"type": "thing", "named": true}
]`)

	_, err := bindgen.Unify(g, nil, doc)
	require.Error(t, err)

	var report *bindgen.Report

	require.ErrorAs(t, err, &report)
	require.Equal(t, 3, report.Len())

	kinds := make(map[bindgen.IssueKind]int)
	for _, issue := range report.Issues {
		kinds[issue.Kind]++
	}

	assert.Equal(t, 1, kinds[bindgen.IssueUnresolvedSymbol])
	assert.Equal(t, 1, kinds[bindgen.IssueUnresolvedNodeType])
	assert.Equal(t, 1, kinds[bindgen.IssueClassificationMismatch])

	assert.Contains(t, err.Error(), "3 issue(s)")
	assert.Contains(t, err.Error(), "missing_rule")
	assert.Contains(t, err.Error(), "missing_node")
	assert.Contains(t, err.Error(), "thing")
}

func TestUnify_EmptyCardinality_Reported(t *testing.T) {
	t.Parallel()

	doc := loadNodeTypes(t, `[
  {
    "type": "node",
    "named": true,
    "fields": {
      "f": {"multiple": false, "required": true, "types": []}
    }
  }
]`)

	_, err := bindgen.UnifyNodeTypes(doc)
	require.Error(t, err)

	var report *bindgen.Report

	require.ErrorAs(t, err, &report)
	require.Equal(t, 1, report.Len())
	assert.Equal(t, bindgen.IssueEmptyCardinality, report.Issues[0].Kind)
	assert.Equal(t, "f", report.Issues[0].Subject)
}

func TestUnify_InheritanceShadowing(t *testing.T) {
	t.Parallel()

	parent := loadGrammar(t, `{
  "name": "base",
  "rules": {
    "common": {"type": "STRING", "value": "shared"}
  }
}`)

	child := loadGrammar(t, `{
  "name": "derived",
  "inherits": "base",
  "rules": {
    "start": {"type": "SYMBOL", "name": "common"}
  }
}`)

	doc := loadNodeTypes(t, `[{"type": "start", "named": true}]`)

	library := map[grammar.Identifier]*grammar.Grammar{"base": parent}

	plan, err := bindgen.Unify(child, library, doc)
	require.NoError(t, err)
	assert.Equal(t, grammar.Identifier("derived"), plan.GrammarName)
}

func TestUnify_InheritanceMissingParent_Reported(t *testing.T) {
	t.Parallel()

	child := loadGrammar(t, `{
  "name": "derived",
  "inherits": "base",
  "rules": {
    "start": {"type": "BLANK"}
  }
}`)

	doc := loadNodeTypes(t, `[{"type": "start", "named": true}]`)

	_, err := bindgen.Unify(child, nil, doc)
	require.Error(t, err)

	var report *bindgen.Report

	require.ErrorAs(t, err, &report)
	require.Equal(t, 1, report.Len())
	assert.Equal(t, bindgen.IssueInheritance, report.Issues[0].Kind)
	assert.Equal(t, "base", report.Issues[0].Subject)
}

func TestUnify_TokenWithStructure_ClassificationMismatch(t *testing.T) {
	t.Parallel()

	g := loadGrammar(t, `{
  "name": "test",
  "word": "identifier",
  "rules": {
    "start": {"type": "SYMBOL", "name": "identifier"},
    "identifier": {"type": "PATTERN", "value": "[a-z]+"}
  }
}`)

	doc := loadNodeTypes(t, `[
  {
    "type": "identifier",
    "named": true,
    "fields": {
      "part": {"multiple": false, "required": true, "types": [{"type": "start", "named": true}]}
    }
  },
  {"type": "start", "named": true}
]`)

	_, err := bindgen.Unify(g, nil, doc)
	require.Error(t, err)

	var report *bindgen.Report

	require.ErrorAs(t, err, &report)
	require.Equal(t, 1, report.Len())
	assert.Equal(t, bindgen.IssueClassificationMismatch, report.Issues[0].Kind)
	assert.Equal(t, "identifier", report.Issues[0].Subject)
}

func TestUnify_UnknownSupertype_Reported(t *testing.T) {
	t.Parallel()

	g := loadGrammar(t, `{
  "name": "test",
  "supertypes": ["ghost"],
  "rules": {
    "start": {"type": "BLANK"}
  }
}`)

	doc := loadNodeTypes(t, `[{"type": "start", "named": true}]`)

	_, err := bindgen.Unify(g, nil, doc)
	require.Error(t, err)

	var report *bindgen.Report

	require.ErrorAs(t, err, &report)
	require.Equal(t, 1, report.Len())
	assert.Equal(t, bindgen.IssueUnknownSupertype, report.Issues[0].Kind)
}

func TestUnifyNodeTypes_GrammarlessPlan(t *testing.T) {
	t.Parallel()

	plan, err := bindgen.UnifyNodeTypes(loadNodeTypes(t, moduleNodeTypes))
	require.NoError(t, err)

	assert.True(t, plan.GrammarName.IsZero())
	assert.True(t, plan.RootRule.IsZero())
	assert.Equal(t, 3, plan.Len())
}

func TestUnify_Determinism(t *testing.T) {
	t.Parallel()

	g := loadGrammar(t, moduleGrammar)
	doc := loadNodeTypes(t, moduleNodeTypes)

	first, err := bindgen.Unify(g, nil, doc)
	require.NoError(t, err)

	second, err := bindgen.Unify(g, nil, doc)
	require.NoError(t, err)

	assert.Equal(t, bindgen.BuildRequest(first, bindgen.ArtifactWrapper), bindgen.BuildRequest(second, bindgen.ArtifactWrapper))
	assert.Equal(t, bindgen.BuildRequest(first, bindgen.ArtifactConstants), bindgen.BuildRequest(second, bindgen.ArtifactConstants))
}

func TestReport_IsError(t *testing.T) {
	t.Parallel()

	report := &bindgen.Report{Issues: []bindgen.Issue{{Kind: bindgen.IssueUnresolvedSymbol, Subject: "x"}}}

	var err error = report

	assert.True(t, errors.As(err, &report))
	assert.Contains(t, err.Error(), "unresolved symbol `x`")
}
