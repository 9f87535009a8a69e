package main

import (
	"testing"

	"github.com/vellumlang/vellum/ast"
	"github.com/vellumlang/vellum/grammarlang"
	"github.com/vellumlang/vellum/parser"
)

func TestBuildTreeFromParsedDocument(t *testing.T) {
	syn, err := grammarlang.Compile("<parse-test>", []byte(describeSampleGrammar))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	doc := ast.NewDocument("<src>", []byte("1 + 2"))
	root, err := parser.New(syn, doc).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tree := buildTree(root)
	if tree.Kind != "arith" {
		t.Fatalf("root tree kind = %q, want arith", tree.Kind)
	}
	if got := string(tree.Format()); got == "" {
		t.Fatal("Format() produced empty output")
	}
}
