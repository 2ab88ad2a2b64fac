package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/johnstonskj/tsbind/pkg/bindgen"
)

func describeCmd() *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Summarize the resolved binding plan as a table",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runDescribe(&flags)
		},
	}

	flags.register(cmd)

	return cmd
}

func runDescribe(flags *generateFlags) error {
	cfg, err := flags.resolve()
	if err != nil {
		return err
	}

	g, library, err := loadGrammar(cfg.InputDir, flags.inherits)
	if err != nil {
		return err
	}

	doc, err := loadNodeTypes(cfg.InputDir)
	if err != nil {
		return err
	}

	plan, err := bindgen.Unify(g, library, doc)
	if err != nil {
		return err
	}

	writer := table.NewWriter()
	writer.SetOutputMirror(os.Stdout)
	writer.SetTitle("Binding plan for grammar %s", plan.GrammarName)
	writer.AppendHeader(table.Row{"Node Type", "Shape", "Details"})

	for _, shape := range plan.Shapes() {
		writer.AppendRow(describeRow(shape))
	}

	for _, union := range plan.SyntheticUnions() {
		writer.AppendRow(table.Row{union.Name, "synthesized union", memberList(union.Members)})
	}

	writer.Render()

	if !quiet {
		fmt.Fprintf(os.Stdout, "%d node types, %d synthesized unions\n", plan.Len(), len(plan.SyntheticUnions()))
	}

	return nil
}

func describeRow(shape bindgen.Shape) table.Row {
	switch s := shape.(type) {
	case bindgen.UnionNode:
		return table.Row{s.NodeType.String(), "union", memberList(s.Variants)}
	case bindgen.CompoundNode:
		fields := make([]string, len(s.Fields))

		for i, f := range s.Fields {
			fields[i] = fmt.Sprintf("%s (%s)", f.Name, f.Cardinality)
		}

		return table.Row{s.NodeType.String(), "compound", strings.Join(fields, ", ")}
	case bindgen.ValueLeaf:
		return table.Row{s.NodeType.String(), "leaf", ""}
	default:
		return table.Row{shape.Type().String(), "unknown", ""}
	}
}

func memberList[T fmt.Stringer](members []T) string {
	parts := make([]string, len(members))

	for i, m := range members {
		parts[i] = m.String()
	}

	return strings.Join(parts, " | ")
}
