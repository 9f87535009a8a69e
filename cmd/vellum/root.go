package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vellumlang/vellum/vconfig"
)

var rootCmd = &cobra.Command{
	Use:   "vellum",
	Short: "Compile and run grammars written in vellum's own grammar language",
	Long: `vellum provides four features:
- Compiles a grammar into a portable parsing table.
- Parses a text stream against a grammar, for debugging it.
- Runs a directory of test cases against a grammar.
- Describes a grammar's compiled productions, contexts and states.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

var projectConfig vconfig.Config

func init() {
	rootCmd.PersistentFlags().String("config", "vellum.toml", "project configuration file")
}

// loadProjectConfig reads the --config file (optional: a missing file is
// not an error) once per invocation, ahead of the subcommand's own flag
// defaults.
func loadProjectConfig(cmd *cobra.Command) error {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := vconfig.Load(path)
	if err != nil {
		return err
	}
	projectConfig = cfg
	return nil
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
