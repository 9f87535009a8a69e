package syntax

import (
	"testing"

	"github.com/vellumlang/vellum/lexicon"
)

func buildExprLex(t *testing.T) *lexicon.Lex {
	t.Helper()
	lb := lexicon.NewBuilder("expr")
	lb.Define("num", `[0-9]+`)
	lb.Define("plus", `\+`)
	lb.Define("star", `\*`)
	lb.Define("lparen", `\(`)
	lb.Define("rparen", `\)`)
	lex, err := lb.Build()
	if err != nil {
		t.Fatalf("lexicon.Build: %v", err)
	}
	return lex
}

// Classic unambiguous expression grammar:
//   expr   -> expr plus term | term
//   term   -> term star factor | factor
//   factor -> lparen expr rparen | num
func buildExprSyntax(t *testing.T) *Syntax {
	t.Helper()
	lex := buildExprLex(t)
	b := NewBuilder(lex)
	b.Formula("expr").Symbol("expr").Symbol("plus").Symbol("term").Commit()
	b.Formula("expr").Symbol("term").Commit()
	b.Formula("term").Symbol("term").Symbol("star").Symbol("factor").Commit()
	b.Formula("term").Symbol("factor").Commit()
	b.Formula("factor").Symbol("lparen").Symbol("expr").Symbol("rparen").Commit()
	b.Formula("factor").Symbol("num").Commit()
	syn, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return syn
}

func TestBuildExprGrammarNoConflicts(t *testing.T) {
	syn := buildExprSyntax(t)
	if len(syn.States) == 0 {
		t.Fatal("expected at least one parser state")
	}
	if syn.Formulas[0].Head != SymbolStart {
		t.Fatalf("production 0 head = %v, want SymbolStart", syn.Formulas[0].Head)
	}
	if len(syn.Formulas[0].Body) != 2 || !syn.Formulas[0].Body[1].Sym.IsEOF() {
		t.Fatalf("production 0 body = %+v, want [S, EOF]", syn.Formulas[0].Body)
	}
}

func TestHeadTerminalIsBuildError(t *testing.T) {
	lex := buildExprLex(t)
	b := NewBuilder(lex)
	b.Formula("num").Symbol("plus").Commit()
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error using a terminal as a production head")
	}
}

func TestShiftReduceConflictDetected(t *testing.T) {
	lex := buildExprLex(t)
	b := NewBuilder(lex)
	// Deliberately ambiguous: "expr -> expr plus expr | num" has a
	// classic shift/reduce conflict on `plus`.
	b.Formula("expr").Symbol("expr").Symbol("plus").Symbol("expr").Commit()
	b.Formula("expr").Symbol("num").Commit()
	if _, err := b.Build(); err == nil {
		t.Fatal("expected a shift/reduce conflict error")
	}
}

func TestIgnoreUnknownTerminalIsError(t *testing.T) {
	lex := buildExprLex(t)
	b := NewBuilder(lex)
	b.Formula("expr").Symbol("num").Commit()
	b.Ignore("ws")
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error ignoring an undefined terminal")
	}
}

func TestContextsInferredFromLexEntries(t *testing.T) {
	syn := buildExprSyntax(t)
	for _, ps := range syn.States {
		// EOF belongs to no lexical context, so only states that expect
		// a lexicon terminal next get one inferred.
		hasTerm := false
		for sym := range ps.Shift {
			if _, ok := syn.TermOf(sym); ok {
				hasTerm = true
			}
		}
		for sym := range ps.Reduce {
			if _, ok := syn.TermOf(sym); ok {
				hasTerm = true
			}
		}
		if !hasTerm {
			continue
		}
		if len(ps.Contexts) == 0 {
			t.Fatalf("state with shift/reduce entries has no inferred context: %+v", ps)
		}
	}
}

// TestDuplicateImportIsBuildError exercises the original syntax.h's
// AlreadyImportedError: the same language imported twice must fail Build.
func TestDuplicateImportIsBuildError(t *testing.T) {
	lex := buildExprLex(t)
	b := NewBuilder(lex)
	b.Formula("expr").Symbol("num").Commit()
	b.Import("other")
	b.Import("other")
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error importing the same language twice")
	}
}

// TestImportThenFormulaHeadIsBuildError exercises the original syntax.h's
// ExternalHeadError in the ordering where Import runs first: a Formula
// whose head names an already-imported alias must fail Build.
func TestImportThenFormulaHeadIsBuildError(t *testing.T) {
	lex := buildExprLex(t)
	b := NewBuilder(lex)
	b.Import("other", "guest")
	b.Formula("guest").Symbol("num").Commit()
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error giving an imported non-terminal a local production")
	}
}

// TestFormulaThenImportHeadIsBuildError is the reverse ordering: the
// production is committed before Import claims the same alias.
func TestFormulaThenImportHeadIsBuildError(t *testing.T) {
	lex := buildExprLex(t)
	b := NewBuilder(lex)
	b.Formula("guest").Symbol("num").Commit()
	b.Import("other", "guest")
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error importing a language under an alias that already has a local production")
	}
}

// buildHostGuestSyntax builds two small syntaxes for exercising
// cross-language import end-to-end: "host" imports "guest" as its second
// body symbol, and "guest" is a self-contained one-production grammar.
func buildHostGuestSyntax(t *testing.T) (host, guest *Syntax) {
	t.Helper()

	glex := buildExprLex(t)
	gb := NewBuilder(glex)
	gb.Formula("expr").Symbol("num", "n").Commit()
	guest, err := gb.Build()
	if err != nil {
		t.Fatalf("guest Build: %v", err)
	}

	hlex := lexicon.NewBuilder("host")
	hlex.Define("at", `@`)
	lex, err := hlex.Build()
	if err != nil {
		t.Fatalf("host lexicon.Build: %v", err)
	}
	hb := NewBuilder(lex)
	hb.Import("guest")
	hb.Formula("host").Symbol("at").Symbol("guest", "body").Commit()
	host, err = hb.Build()
	if err != nil {
		t.Fatalf("host Build: %v", err)
	}
	return host, guest
}

func TestImportMarksGotoTargetExternal(t *testing.T) {
	host, _ := buildHostGuestSyntax(t)
	sym, ok := host.LookupSymbol("guest")
	if !ok {
		t.Fatal("host syntax has no \"guest\" symbol")
	}
	lang, alias, ok := host.ImportInfo(sym)
	if !ok || lang != "guest" || alias != "guest" {
		t.Fatalf("ImportInfo(%v) = (%q, %q, %v), want (\"guest\", \"guest\", true)", sym, lang, alias, ok)
	}

	found := false
	for _, ps := range host.States {
		if ps.Externals[sym] {
			found = true
		}
	}
	if !found {
		t.Fatal("no state marks the imported symbol's goto target external")
	}
}
