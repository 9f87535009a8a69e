package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vellumlang/vellum/ast"
	"github.com/vellumlang/vellum/grammarlang"
	"github.com/vellumlang/vellum/parser"
	"github.com/vellumlang/vellum/syntax"
)

func init() {
	cmd := &cobra.Command{
		Use:     "test <grammar file path> <test file path>|<test directory path>",
		Short:   "Run a grammar against a directory of expected-tree test cases",
		Example: `  vellum test grammar.vellum testdata`,
		Args:    cobra.ExactArgs(2),
		RunE:    runTest,
	}
	rootCmd.AddCommand(cmd)
}

// testCaseFile pairs a parsed TestCase with the path it came from, or the
// error hit while reading/parsing it, matching vartan/tester's
// TestCaseWithMetadata shape.
type testCaseFile struct {
	path string
	tc   *TestCase
	err  error
}

func listTestCases(path string) []testCaseFile {
	fi, err := os.Stat(path)
	if err != nil {
		return []testCaseFile{{path: path, err: err}}
	}
	if !fi.IsDir() {
		f, err := os.Open(path)
		if err != nil {
			return []testCaseFile{{path: path, err: err}}
		}
		defer f.Close()
		tc, err := ParseTestCase(f)
		return []testCaseFile{{path: path, tc: tc, err: err}}
	}

	es, err := os.ReadDir(path)
	if err != nil {
		return []testCaseFile{{path: path, err: err}}
	}
	var out []testCaseFile
	for _, e := range es {
		out = append(out, listTestCases(filepath.Join(path, e.Name()))...)
	}
	return out
}

type testResult struct {
	path  string
	err   error
	diffs []string
}

func (r *testResult) String() string {
	if r.err != nil {
		msg := fmt.Sprintf("FAIL %s: %v", r.path, r.err)
		if len(r.diffs) == 0 {
			return msg
		}
		const indent = "    "
		return fmt.Sprintf("%s\n%s%s", msg, indent, strings.Join(r.diffs, "\n"+indent))
	}
	return fmt.Sprintf("PASS %s", r.path)
}

func runTest(cmd *cobra.Command, args []string) error {
	if err := loadProjectConfig(cmd); err != nil {
		return err
	}

	grmSrc, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("cannot read grammar file %s: %w", args[0], err)
	}
	syn, err := grammarlang.Compile(args[0], grmSrc)
	if err != nil {
		return fmt.Errorf("cannot compile grammar: %w", err)
	}

	cases := listTestCases(args[1])
	badRead := false
	for _, c := range cases {
		if c.err != nil {
			fmt.Fprintf(os.Stderr, "cannot read test case %s: %v\n", c.path, c.err)
			badRead = true
		}
	}
	if badRead {
		return errors.New("cannot run test")
	}

	failed := false
	for _, c := range cases {
		r := runOneTest(syn, c)
		fmt.Fprintln(os.Stdout, r.String())
		if r.err != nil {
			failed = true
		}
	}
	if failed {
		return errors.New("test failed")
	}
	return nil
}

func runOneTest(syn *syntax.Syntax, c testCaseFile) *testResult {
	doc := ast.NewDocument(c.path, c.tc.Source)
	root, err := parser.New(syn, doc).Parse()
	if err != nil {
		return &testResult{path: c.path, err: err}
	}

	actual := buildTree(root)
	diffs := diffTree(c.tc.Output, actual)
	if len(diffs) > 0 {
		return &testResult{path: c.path, err: errors.New("output mismatch"), diffs: diffs}
	}
	return &testResult{path: c.path}
}
