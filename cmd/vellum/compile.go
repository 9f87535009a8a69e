package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vellumlang/vellum/grammarlang"
	"github.com/vellumlang/vellum/vconfig"
)

var compileFlags = struct {
	output   *string
	compress *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "compile <grammar file path>",
		Short:   "Compile a grammar into a portable parsing table",
		Example: `  vellum compile grammar.vellum -o grammar.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runCompile,
	}
	compileFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	compileFlags.compress = cmd.Flags().Bool("compress", false, "row-displacement compress the lexicon's transition table")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	if err := loadProjectConfig(cmd); err != nil {
		return err
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("cannot read grammar file %s: %w", args[0], err)
	}

	syn, err := grammarlang.Compile(args[0], src)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if *compileFlags.output != "" {
		f, err := os.OpenFile(*compileFlags.output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("cannot open output file %s: %w", *compileFlags.output, err)
		}
		defer f.Close()
		w = f
	}

	compress := *compileFlags.compress
	if !cmd.Flags().Changed("compress") {
		compress = projectConfig.Compression == vconfig.CompressionDFA
	}

	var b []byte
	if compress {
		b, err = syn.MarshalCompressedJSON()
	} else {
		b, err = syn.MarshalJSON()
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s\n", b)
	return nil
}
