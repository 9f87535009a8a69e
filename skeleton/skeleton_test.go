package skeleton

import (
	"testing"

	"github.com/vellumlang/vellum/ast"
	"github.com/vellumlang/vellum/lexicon"
	"github.com/vellumlang/vellum/syntax"
)

// buildExprSyntax builds a small expression grammar exercising unfold,
// named forms, and an optional attribute:
//
//	leaf   -> num("value")                  (named attr on a terminal)
//	expr   -> leaf, attr = "..."             (unfold: expr inherits "value")
//	expr   -> expr("lhs") plus leaf("rhs")   (form "binary")
//	expr   -> minus leaf("rhs")              (form "unary", no "lhs")
func buildExprSyntax(t *testing.T) *syntax.Syntax {
	t.Helper()
	lb := lexicon.NewBuilder("expr")
	lb.Define("num", `[0-9]+`)
	lb.Define("plus", `\+`)
	lb.Define("minus", `-`)
	lex, err := lb.Build()
	if err != nil {
		t.Fatalf("lexicon.Build: %v", err)
	}

	b := syntax.NewBuilder(lex)
	b.Formula("leaf").Symbol("num", "value").Commit()
	b.Formula("expr").Symbol("leaf", syntax.AttrUnfold).Commit()
	b.Formula("expr", "binary").Symbol("expr", "lhs").Symbol("plus").Symbol("leaf", "rhs").Commit()
	b.Formula("expr", "unary").Symbol("minus").Symbol("leaf", "rhs").Commit()
	syn, err := b.Build()
	if err != nil {
		t.Fatalf("syntax.Build: %v", err)
	}
	return syn
}

func TestDeduceUnfoldPropagatesCandidates(t *testing.T) {
	syn := buildExprSyntax(t)
	sk := Deduce(syn)

	numSym, _ := syn.LookupSymbol("num")
	exprSym, _ := syn.LookupSymbol("expr")

	structure, ok := sk.Structures[exprSym]
	if !ok {
		t.Fatalf("no Structure deduced for expr")
	}
	// expr -> leaf, attr = "..." unfolds leaf's own "value" attribute
	// (defined on leaf's num body symbol) straight into expr's shape.
	value, ok := structure.Attributes["value"]
	if !ok {
		t.Fatalf("expr.Attributes missing \"value\" (via leaf unfold): %+v", structure.Attributes)
	}
	if !value.Candidates[numSym] {
		t.Fatalf("value candidates = %v, want to include num", value.Candidates)
	}
}

func TestDeduceFormGroupingMarksOptional(t *testing.T) {
	syn := buildExprSyntax(t)
	sk := Deduce(syn)
	exprSym, _ := syn.LookupSymbol("expr")
	structure := sk.Structures[exprSym]

	binary, ok := structure.FormedAttributes["binary"]
	if !ok {
		t.Fatalf("no formed attributes for form \"binary\"")
	}
	if _, ok := binary["lhs"]; !ok {
		t.Fatalf("binary form missing \"lhs\"")
	}

	unary, ok := structure.FormedAttributes["unary"]
	if !ok {
		t.Fatalf("no formed attributes for form \"unary\"")
	}
	if _, ok := unary["lhs"]; ok {
		t.Fatalf("unary form should not define \"lhs\"")
	}
}

func TestDeduceCommonAttributesExcludesFormSpecificOnes(t *testing.T) {
	syn := buildExprSyntax(t)
	sk := Deduce(syn)
	exprSym, _ := syn.LookupSymbol("expr")
	structure := sk.Structures[exprSym]

	if _, ok := structure.CommonAttributes["lhs"]; ok {
		t.Fatalf("\"lhs\" is only defined by the binary form, must not be common")
	}
	rhs, ok := structure.CommonAttributes["rhs"]
	if !ok {
		t.Fatalf("\"rhs\" is defined identically by both forms, must be common: %+v", structure.CommonAttributes)
	}
	if !rhs.IsSingle {
		t.Fatalf("rhs should be single-valued in both forms")
	}
}

func TestEquivalentsTracksUnfoldChain(t *testing.T) {
	syn := buildExprSyntax(t)
	sk := Deduce(syn)
	leafSym, _ := syn.LookupSymbol("leaf")
	exprSym, _ := syn.LookupSymbol("expr")

	equivs := sk.Equivalents(leafSym)
	if len(equivs) != 1 || equivs[0] != exprSym {
		t.Fatalf("Equivalents(leaf) = %v, want [expr] (via \"expr -> leaf\" unfold)", equivs)
	}
}

func TestArityReflectsSingleValuedness(t *testing.T) {
	syn := buildExprSyntax(t)
	sk := Deduce(syn)

	if got := sk.Arity("expr", "rhs"); got != ast.ArityScalar {
		t.Fatalf("Arity(expr, rhs) = %v, want ArityScalar", got)
	}
	if got := sk.Arity("expr", "nonexistent"); got != ast.ArityAuto {
		t.Fatalf("Arity(expr, nonexistent) = %v, want ArityAuto", got)
	}
}
