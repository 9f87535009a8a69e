package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/vellumlang/vellum/ast"
)

// Tree is a plain, JSON- and diff-friendly projection of an ast.Node,
// grounded on vartan/spec/test.Tree -- a parenthesized kind/lexeme/
// children shape -- adapted here to also serve cmd/vellum's parse
// --format=json and --format=tree outputs, not only test-case diffing.
type Tree struct {
	Kind     string  `json:"kind"`
	Lexeme   string  `json:"lexeme,omitempty"`
	Children []*Tree `json:"children,omitempty"`
}

// buildTree walks an ast.Node into a Tree. Term nodes (including
// reinserted ignored tokens) become leaves carrying their matched text;
// Ntrm nodes become interior nodes over their full Sentence.
func buildTree(n ast.Node) *Tree {
	switch v := n.(type) {
	case *ast.Term:
		return &Tree{Kind: v.Name(), Lexeme: v.Text()}
	case *ast.Root:
		return buildTree(&v.Ntrm)
	case *ast.Ntrm:
		t := &Tree{Kind: v.Name()}
		for _, c := range v.Sentence {
			t.Children = append(t.Children, buildTree(c))
		}
		return t
	default:
		return nil
	}
}

// Format renders t as an indented parenthesized tree, "unbounded" (no
// expected/actual distinction), for -f tree output.
func (t *Tree) Format() []byte {
	var b bytes.Buffer
	t.writeIndented(&b, 0)
	return b.Bytes()
}

func (t *Tree) writeIndented(b *bytes.Buffer, depth int) {
	b.WriteString(strings.Repeat("    ", depth))
	b.WriteString("(")
	b.WriteString(t.Kind)
	if t.Lexeme != "" {
		fmt.Fprintf(b, " %q", t.Lexeme)
	}
	for _, c := range t.Children {
		b.WriteString("\n")
		c.writeIndented(b, depth+1)
	}
	b.WriteString(")")
}

// printBoxTree renders t with the box-drawing layout vartan's
// driver.PrintTree uses.
func printBoxTree(w io.Writer, t *Tree) {
	printBoxNode(w, t, "", "")
}

func printBoxNode(w io.Writer, t *Tree, ruledLine, childPrefix string) {
	if t == nil {
		return
	}
	if t.Lexeme != "" {
		fmt.Fprintf(w, "%v%v %q\n", ruledLine, t.Kind, t.Lexeme)
	} else {
		fmt.Fprintf(w, "%v%v\n", ruledLine, t.Kind)
	}
	num := len(t.Children)
	for i, c := range t.Children {
		var line string
		if num > 1 && i < num-1 {
			line = "├─ "
		} else {
			line = "└─ "
		}
		var prefix string
		if i >= num-1 {
			prefix = "   "
		} else {
			prefix = "│  "
		}
		printBoxNode(w, c, childPrefix+line, childPrefix+prefix)
	}
}

// treePath renders the dotted position of a mismatching subtree for a diff
// message, walking up via the caller-supplied chain of offsets.
func treePath(kinds []string, offsets []int) string {
	if len(kinds) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(kinds[0])
	for i := 1; i < len(kinds); i++ {
		fmt.Fprintf(&b, ".[%d]%v", offsets[i], kinds[i])
	}
	return b.String()
}

// diffTree compares expected against actual, collecting a human-readable
// message per mismatch. "_" in expected.Kind matches any actual kind,
// matching vartan/spec/test's wildcard convention.
func diffTree(expected, actual *Tree) []string {
	root := "root"
	if expected != nil {
		root = expected.Kind
	}
	return diffTreeAt(expected, actual, []string{root}, []int{0})
}

func diffTreeAt(expected, actual *Tree, kinds []string, offsets []int) []string {
	if expected == nil && actual == nil {
		return nil
	}
	path := func() string { return treePath(kinds, offsets) }
	if actual == nil {
		return []string{fmt.Sprintf("%s: missing node, expected %q", path(), expected.Kind)}
	}
	if expected == nil {
		return []string{fmt.Sprintf("%s: unexpected node %q", path(), actual.Kind)}
	}
	if expected.Kind != "_" && actual.Kind != expected.Kind {
		return []string{fmt.Sprintf("%s: unexpected kind: expected %q but got %q", path(), expected.Kind, actual.Kind)}
	}
	if expected.Lexeme != actual.Lexeme {
		return []string{fmt.Sprintf("%s: unexpected lexeme: expected %q but got %q", path(), expected.Lexeme, actual.Lexeme)}
	}
	if len(expected.Children) != len(actual.Children) {
		return []string{fmt.Sprintf("%s: unexpected child count: expected %d but got %d", path(), len(expected.Children), len(actual.Children))}
	}
	var diffs []string
	for i, ec := range expected.Children {
		diffs = append(diffs, diffTreeAt(ec, actual.Children[i], append(kinds, actual.Kind), append(offsets, i))...)
	}
	return diffs
}
