package lexicon

import "testing"

func buildSimple(t *testing.T) *Lex {
	t.Helper()
	b := NewBuilder("test")
	b.Define("id", `[a-zA-Z_][a-zA-Z0-9_]*`)
	b.Define("num", `[0-9]+`)
	b.Define("ws", `[ \t\n]+`)
	lex, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return lex
}

func TestScanLongestMatch(t *testing.T) {
	lex := buildSimple(t)
	ctx := lex.ContextID("test")
	if ctx < 0 {
		t.Fatal("missing default context")
	}
	doc := []byte("abc123 x")
	id, n := lex.Scan(doc, 0, ctx)
	if n != 6 {
		t.Fatalf("length = %d, want 6 (abc123)", n)
	}
	if lex.TermName(id) != "id" {
		t.Fatalf("term = %q, want id", lex.TermName(id))
	}
}

func TestScanEOF(t *testing.T) {
	lex := buildSimple(t)
	ctx := lex.ContextID("test")
	doc := []byte("x")
	_, n := lex.Scan(doc, 1, ctx)
	if n != 0 {
		t.Fatalf("expected EOF length 0, got %d", n)
	}
}

func TestScanErrorTerm(t *testing.T) {
	lex := buildSimple(t)
	ctx := lex.ContextID("test")
	doc := []byte("$$$")
	id, n := lex.Scan(doc, 0, ctx)
	if id != ErrorTerm || n != 1 {
		t.Fatalf("got (%v, %v), want (ErrorTerm, 1)", id, n)
	}
}

func TestDuplicateTerminalIsBuildError(t *testing.T) {
	b := NewBuilder("test")
	b.Define("a", "x")
	b.Define("a", "y")
	if _, err := b.Build(); err == nil {
		t.Fatal("expected duplicate-name build error")
	}
}

func TestSmallestTermIDWinsOnTie(t *testing.T) {
	b := NewBuilder("test")
	b.Define("kw_if", "if")
	b.Define("ident", `[a-z]+`)
	lex, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ctx := lex.ContextID("test")
	id, n := lex.Scan([]byte("if"), 0, ctx)
	if n != 2 {
		t.Fatalf("length = %d, want 2", n)
	}
	if lex.TermName(id) != "kw_if" {
		t.Fatalf("term = %q, want kw_if (lower ID wins the tie)", lex.TermName(id))
	}
}

func TestContextRestriction(t *testing.T) {
	b := NewBuilder("test")
	b.Define("only_a", "x", "a")
	b.Define("always", "y")
	lex, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	aCtx := lex.ContextID("a")
	id, n := lex.Scan([]byte("x"), 0, aCtx)
	if n != 1 || lex.TermName(id) != "only_a" {
		t.Fatalf("context a: got (%v, %v)", lex.TermName(id), n)
	}
	testCtx := lex.ContextID("test")
	id, n = lex.Scan([]byte("x"), 0, testCtx)
	if id != ErrorTerm {
		t.Fatalf("only_a must not be reachable from the default context, got %v", lex.TermName(id))
	}
	id, n = lex.Scan([]byte("y"), 0, testCtx)
	if n != 1 || lex.TermName(id) != "always" {
		t.Fatalf("always: got (%v, %v)", lex.TermName(id), n)
	}
}
