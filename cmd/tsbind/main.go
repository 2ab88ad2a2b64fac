// Package main provides the tsbind CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/johnstonskj/tsbind/pkg/version"
)

var (
	cfgFile string //nolint:gochecknoglobals // CLI flag variable
	verbose bool   //nolint:gochecknoglobals // CLI flag variable
	quiet   bool   //nolint:gochecknoglobals // CLI flag variable
)

func main() {
	rootCmd := newRootCmd()

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tsbind",
		Short: "Generate type-safe binding sources for tree-sitter grammars",
		Long: `tsbind reads a tree-sitter grammar's src/grammar.json and
src/node-types.json and generates type-safe accessor bindings for a
target language.`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tsbind.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(constantsCmd())
	rootCmd.AddCommand(wrapperCmd())
	rootCmd.AddCommand(describeCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(completionCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "tsbind %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}

	return cmd
}
