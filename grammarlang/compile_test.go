package grammarlang

import (
	"testing"

	"github.com/vellumlang/vellum/syntax"
)

const sampleSource = `
lang: "arith";

ws ? = /[ \t\n]+/;
num = /[0-9]+/;
plus = /\+/;
minus = /-/;
lparen = /\(/;
rparen = /\)/;
kw <expr> = /if/ {token: "keyword"};

expr -> term ;
expr.binary -> expr@lhs plus term@rhs ;
term -> num@value ;
term.paren -> lparen expr@inner rparen ;
term.neg -> minus minus? num@value ;
stmt -> ...expr ;
block -> %empty | block stmt ;
arith -> block ;
`

func mustCompile(t *testing.T) *syntax.Syntax {
	t.Helper()
	syn, err := Compile("<sample>", []byte(sampleSource))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return syn
}

func formulasFor(syn *syntax.Syntax, head syntax.Symbol) []*syntax.Formula {
	var out []*syntax.Formula
	for _, f := range syn.Formulas {
		if f.Head == head {
			out = append(out, f)
		}
	}
	return out
}

func TestCompileLangOptionNamesContext(t *testing.T) {
	syn := mustCompile(t)
	names := syn.Lex.Contexts
	if len(names) != 2 || names[0] != "arith" || names[1] != "expr" {
		t.Fatalf("Lex.Contexts = %v, want [arith expr]", names)
	}
}

func TestCompileTerminalContextRestriction(t *testing.T) {
	syn := mustCompile(t)
	id, ok := syn.Lex.TermByName("kw")
	if !ok {
		t.Fatal("terminal \"kw\" not found")
	}
	ctx := syn.Lex.Terms[id].EntryContexts
	if len(ctx) != 1 || ctx[0] != "expr" {
		t.Fatalf("kw.EntryContexts = %v, want [expr]", ctx)
	}
}

func TestCompileAnnotationAttachesToTerm(t *testing.T) {
	syn := mustCompile(t)
	id, ok := syn.Lex.TermByName("kw")
	if !ok {
		t.Fatal("terminal \"kw\" not found")
	}
	if got := syn.Lex.Terms[id].Attrs["token"]; got != "keyword" {
		t.Fatalf("kw.Attrs[\"token\"] = %q, want %q", got, "keyword")
	}
}

func TestCompileIgnorableTerminalMarkedIgnored(t *testing.T) {
	syn := mustCompile(t)
	wsSym, ok := syn.LookupSymbol("ws")
	if !ok {
		t.Fatal("symbol \"ws\" not found")
	}
	if !syn.IsIgnored(wsSym) {
		t.Fatal("ws should be marked ignored")
	}
	numSym, ok := syn.LookupSymbol("num")
	if !ok {
		t.Fatal("symbol \"num\" not found")
	}
	if syn.IsIgnored(numSym) {
		t.Fatal("num should not be marked ignored")
	}
}

func TestCompileFormGroupingProducesDistinctFormulas(t *testing.T) {
	syn := mustCompile(t)
	exprSym, ok := syn.LookupSymbol("expr")
	if !ok {
		t.Fatal("symbol \"expr\" not found")
	}
	fs := formulasFor(syn, exprSym)
	if len(fs) != 2 {
		t.Fatalf("len(formulasFor(expr)) = %d, want 2", len(fs))
	}
	var sawPlain, sawBinary bool
	for _, f := range fs {
		switch f.Form {
		case "":
			sawPlain = true
		case "binary":
			sawBinary = true
			if len(f.Body) != 3 || f.Body[0].Attr != "lhs" || f.Body[2].Attr != "rhs" {
				t.Fatalf("expr.binary body = %+v, want [expr@lhs plus term@rhs]", f.Body)
			}
		}
	}
	if !sawPlain || !sawBinary {
		t.Fatalf("expected both a plain and a binary form for expr, got %+v", fs)
	}
}

func TestCompileOptionalSymbolExpandsToPowerSet(t *testing.T) {
	syn := mustCompile(t)
	termSym, ok := syn.LookupSymbol("term")
	if !ok {
		t.Fatal("symbol \"term\" not found")
	}
	fs := formulasFor(syn, termSym)
	// num@value (1) + paren (1) + neg expanded 2^1 = 2 => 4 total.
	if len(fs) != 4 {
		t.Fatalf("len(formulasFor(term)) = %d, want 4: %+v", len(fs), fs)
	}
	var negForms int
	for _, f := range fs {
		if f.Form == "neg" {
			negForms++
		}
	}
	if negForms != 2 {
		t.Fatalf("neg-form count = %d, want 2", negForms)
	}
}

func TestCompileEllipsisProducesUnfold(t *testing.T) {
	syn := mustCompile(t)
	stmtSym, ok := syn.LookupSymbol("stmt")
	if !ok {
		t.Fatal("symbol \"stmt\" not found")
	}
	exprSym, ok := syn.LookupSymbol("expr")
	if !ok {
		t.Fatal("symbol \"expr\" not found")
	}
	fs := formulasFor(syn, stmtSym)
	if len(fs) != 1 {
		t.Fatalf("len(formulasFor(stmt)) = %d, want 1", len(fs))
	}
	f := fs[0]
	if !f.IsUnfold() || f.Body[0].Sym != exprSym {
		t.Fatalf("stmt formula = %+v, want a single unfold symbol onto expr", f)
	}
}

func TestCompilePercentEmptyProducesZeroBodyFormula(t *testing.T) {
	syn := mustCompile(t)
	blockSym, ok := syn.LookupSymbol("block")
	if !ok {
		t.Fatal("symbol \"block\" not found")
	}
	fs := formulasFor(syn, blockSym)
	if len(fs) != 2 {
		t.Fatalf("len(formulasFor(block)) = %d, want 2", len(fs))
	}
	var sawEmpty, sawRecursive bool
	for _, f := range fs {
		switch len(f.Body) {
		case 0:
			sawEmpty = true
		case 2:
			sawRecursive = true
		}
	}
	if !sawEmpty || !sawRecursive {
		t.Fatalf("expected one %%empty and one recursive block formula, got %+v", fs)
	}
}
