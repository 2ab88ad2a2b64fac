package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/johnstonskj/tsbind/internal/config"
	"github.com/johnstonskj/tsbind/pkg/bindgen"
	"github.com/johnstonskj/tsbind/pkg/emit"
	"github.com/johnstonskj/tsbind/pkg/grammar"
	"github.com/johnstonskj/tsbind/pkg/nodetypes"
)

// generateFlags are the options shared by the constants and wrapper
// commands.
type generateFlags struct {
	language  string
	inputDir  string
	outputDir string
	inherits  []string
}

func (f *generateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.language, "language", "l", "", "target binding language (default from config: rust)")
	cmd.Flags().StringVarP(&f.inputDir, "input-dir", "i", "", "directory holding grammar.json and node-types.json (default: src)")
	cmd.Flags().StringVarP(&f.outputDir, "output-dir", "o", "", "bindings output directory, or - for stdout (default: bindings)")
	cmd.Flags().StringArrayVar(&f.inherits, "inherit", nil, "grammar.json of an inherited grammar (repeatable)")
}

// resolve merges flag values over the loaded configuration.
func (f *generateFlags) resolve() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if f.language != "" {
		cfg.Language = f.language
	}

	if f.inputDir != "" {
		cfg.InputDir = f.inputDir
	}

	if f.outputDir != "" {
		cfg.OutputDir = f.outputDir
	}

	return cfg, nil
}

func constantsCmd() *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "constants",
		Short: "Generate a node-name constants file from node-types.json",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runConstants(&flags)
		},
	}

	flags.register(cmd)

	return cmd
}

func wrapperCmd() *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "wrapper",
		Short: "Generate a type-safe syntax-tree wrapper from grammar.json and node-types.json",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runWrapper(&flags)
		},
	}

	flags.register(cmd)

	return cmd
}

func runConstants(flags *generateFlags) error {
	cfg, err := flags.resolve()
	if err != nil {
		return err
	}

	doc, err := loadNodeTypes(cfg.InputDir)
	if err != nil {
		return err
	}

	plan, err := bindgen.UnifyNodeTypes(doc)
	if err != nil {
		return err
	}

	return render(cfg, plan, bindgen.ArtifactConstants)
}

func runWrapper(flags *generateFlags) error {
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

	return render(cfg, plan, bindgen.ArtifactWrapper)
}

func loadGrammar(inputDir string, inherits []string) (*grammar.Grammar, map[grammar.Identifier]*grammar.Grammar, error) {
	path := grammar.DefaultPath(inputDir)
	logf("reading grammar from %s", path)

	g, err := grammar.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}

	library := make(map[grammar.Identifier]*grammar.Grammar, len(inherits))

	for _, parentPath := range inherits {
		parent, err := grammar.LoadFile(parentPath)
		if err != nil {
			return nil, nil, err
		}

		library[parent.Name] = parent
	}

	return g, library, nil
}

func loadNodeTypes(inputDir string) (*nodetypes.Document, error) {
	path := nodetypes.DefaultPath(inputDir)
	logf("reading node types from %s", path)

	return nodetypes.LoadFile(path)
}

func render(cfg *config.Config, plan *bindgen.Plan, artifact bindgen.Artifact) error {
	backend, err := emit.Lookup(cfg.Language)
	if err != nil {
		return err
	}

	req := bindgen.BuildRequest(plan, artifact)

	source, err := backend.Render(req)
	if err != nil {
		return fmt.Errorf("render %s for %s: %w", artifact, cfg.Language, err)
	}

	if cfg.OutputDir == "-" {
		_, err = os.Stdout.Write(source)
		if err != nil {
			return fmt.Errorf("write output: %w", err)
		}

		return nil
	}

	path := emit.FilePath(backend, cfg.OutputDir, artifact)

	err = os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	err = os.WriteFile(path, source, 0o644)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if !quiet {
		color.New(color.FgGreen).Fprintf(os.Stdout, "%s file written to %s\n", artifact, path)
	}

	return nil
}

// logf prints progress to stderr when --verbose is set.
func logf(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
