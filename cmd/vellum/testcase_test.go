package main

import (
	"strings"
	"testing"
)

func TestParseTreeLiteralLeaf(t *testing.T) {
	tree, err := parseTreeLiteral([]byte(`(num "42")`))
	if err != nil {
		t.Fatalf("parseTreeLiteral: %v", err)
	}
	if tree.Kind != "num" || tree.Lexeme != "42" || len(tree.Children) != 0 {
		t.Fatalf("parseTreeLiteral leaf = %+v", tree)
	}
}

func TestParseTreeLiteralNested(t *testing.T) {
	tree, err := parseTreeLiteral([]byte(`(expr (num "1") (plus) (num "2"))`))
	if err != nil {
		t.Fatalf("parseTreeLiteral: %v", err)
	}
	if tree.Kind != "expr" || len(tree.Children) != 3 {
		t.Fatalf("parseTreeLiteral nested = %+v", tree)
	}
	if tree.Children[0].Kind != "num" || tree.Children[0].Lexeme != "1" {
		t.Fatalf("child 0 = %+v", tree.Children[0])
	}
	if tree.Children[1].Kind != "plus" || len(tree.Children[1].Children) != 0 {
		t.Fatalf("child 1 = %+v", tree.Children[1])
	}
}

func TestParseTreeLiteralRejectsTrailingContent(t *testing.T) {
	if _, err := parseTreeLiteral([]byte(`(a) (b)`)); err == nil {
		t.Fatal("expected an error for trailing content after the tree")
	}
}

func TestParseTestCase(t *testing.T) {
	src := "a simple case\n---\n1+2\n---\n(expr (num \"1\") (plus) (num \"2\"))\n"
	tc, err := ParseTestCase(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseTestCase: %v", err)
	}
	if strings.TrimSpace(tc.Description) != "a simple case" {
		t.Fatalf("Description = %q", tc.Description)
	}
	if string(tc.Source) != "1+2" {
		t.Fatalf("Source = %q", tc.Source)
	}
	if tc.Output.Kind != "expr" || len(tc.Output.Children) != 3 {
		t.Fatalf("Output = %+v", tc.Output)
	}
}

func TestParseTestCaseRejectsWrongPartCount(t *testing.T) {
	if _, err := ParseTestCase(strings.NewReader("only one part")); err == nil {
		t.Fatal("expected an error for a fixture missing its '---' delimiters")
	}
}
