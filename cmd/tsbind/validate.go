package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/johnstonskj/tsbind/internal/config"
	"github.com/johnstonskj/tsbind/internal/schemaval"
	"github.com/johnstonskj/tsbind/pkg/grammar"
	"github.com/johnstonskj/tsbind/pkg/nodetypes"
)

// exitCodeValidationFailure is the exit code for validation failures.
const exitCodeValidationFailure = 2

func validateCmd() *cobra.Command {
	var inputDir string

	var colorize, nocolor bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check grammar.json and node-types.json against their schemas",
		Long: `Check the two input documents against structural JSON schemas
before generation.

Examples:
  tsbind validate
  tsbind validate -i path/to/src --no-color
`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runValidateSchemas(inputDir, colorize, nocolor)
		},
	}

	cmd.Flags().StringVarP(&inputDir, "input-dir", "i", "", "directory holding grammar.json and node-types.json (default: src)")
	cmd.Flags().BoolVar(&colorize, "color", false, "force colored output")
	cmd.Flags().BoolVar(&nocolor, "no-color", false, "disable colored output")

	return cmd
}

func runValidateSchemas(inputDir string, colorize, nocolor bool) error {
	if nocolor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	} else if colorize {
		color.NoColor = false //nolint:reassign // intentional override of library global
	}

	if inputDir == "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		inputDir = cfg.InputDir
	}

	valid := true

	grammarOK, err := validateFile(grammar.DefaultPath(inputDir), schemaval.ValidateGrammar)
	if err != nil {
		return err
	}

	valid = valid && grammarOK

	nodeTypesOK, err := validateFile(nodetypes.DefaultPath(inputDir), schemaval.ValidateNodeTypes)
	if err != nil {
		return err
	}

	valid = valid && nodeTypesOK

	if !valid {
		os.Exit(exitCodeValidationFailure)
	}

	return nil
}

func validateFile(path string, check func([]byte) (*schemaval.Result, error)) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}

	result, err := check(data)
	if err != nil {
		return false, err
	}

	if result.Valid {
		if !quiet {
			color.New(color.FgGreen).Fprintf(os.Stdout, "%s is valid\n", path)
		}

		return true, nil
	}

	color.New(color.FgRed).Fprintf(os.Stdout, "%s failed validation\n", path)

	for _, problem := range result.Problems {
		color.New(color.FgRed).Fprintf(os.Stdout, "  - %s\n", problem)
	}

	return false, nil
}
