package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vellumlang/vellum/ast"
	"github.com/vellumlang/vellum/grammarlang"
	"github.com/vellumlang/vellum/parser"
	"github.com/vellumlang/vellum/vconfig"
)

var parseFlags = struct {
	source *string
	format *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "parse <grammar file path>",
		Short:   "Parse a text stream against a grammar",
		Example: `  cat src | vellum parse grammar.vellum`,
		Args:    cobra.ExactArgs(1),
		RunE:    runParse,
	}
	parseFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	parseFlags.format = cmd.Flags().StringP("format", "f", "", fmt.Sprintf("output format: one of %s|%s|%s (default from vellum.toml, else %s)", vconfig.FormatText, vconfig.FormatTree, vconfig.FormatJSON, vconfig.FormatText))
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	if err := loadProjectConfig(cmd); err != nil {
		return err
	}

	format := *parseFlags.format
	if format == "" {
		format = projectConfig.Format
	}
	if format != vconfig.FormatText && format != vconfig.FormatTree && format != vconfig.FormatJSON {
		return fmt.Errorf("invalid output format: %v", format)
	}

	grmSrc, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("cannot read grammar file %s: %w", args[0], err)
	}
	syn, err := grammarlang.Compile(args[0], grmSrc)
	if err != nil {
		return err
	}

	srcPath := *parseFlags.source
	var src []byte
	if srcPath == "" {
		src, err = io.ReadAll(os.Stdin)
		srcPath = "<stdin>"
	} else {
		src, err = os.ReadFile(srcPath)
	}
	if err != nil {
		return fmt.Errorf("cannot read source %s: %w", srcPath, err)
	}

	doc := ast.NewDocument(srcPath, src)
	root, err := parser.New(syn, doc).Parse()
	if err != nil {
		return err
	}

	tree := buildTree(root)
	switch format {
	case vconfig.FormatTree:
		printBoxTree(os.Stdout, tree)
	case vconfig.FormatJSON:
		b, err := json.Marshal(tree)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(b))
	default:
		fmt.Fprintln(os.Stdout, root.Text())
	}
	return nil
}

