package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vellumlang/vellum/grammarlang"
)

const describeSampleGrammar = `
lang: "arith";

ws ? = /[ \t\n]+/;
num = /[0-9]+/;
plus = /\+/;

expr -> num ;
expr.binary -> expr@lhs plus num@rhs ;
arith -> expr ;
`

func TestWriteDescriptionListsProductionsAndStates(t *testing.T) {
	syn, err := grammarlang.Compile("<describe-test>", []byte(describeSampleGrammar))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	var buf bytes.Buffer
	writeDescription(&buf, syn)
	out := buf.String()

	if !strings.Contains(out, "# Productions") {
		t.Fatalf("output missing Productions section:\n%s", out)
	}
	if !strings.Contains(out, "expr.binary -> expr@lhs plus num@rhs") {
		t.Fatalf("output missing expr.binary production:\n%s", out)
	}
	if !strings.Contains(out, "# Contexts") {
		t.Fatalf("output missing Contexts section:\n%s", out)
	}
	if !strings.Contains(out, "arith") {
		t.Fatalf("output missing arith context:\n%s", out)
	}
	if !strings.Contains(out, "# States") {
		t.Fatalf("output missing States section:\n%s", out)
	}
}
