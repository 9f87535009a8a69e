// Package grammarlang is the self-hosted textual front end for Vellum
// grammars, component G of the parser-generator pipeline (spec.md
// §4.G). A hand-assembled Lex+Syntax pair (Bootstrap) parses the
// textual grammar language itself; Compile walks the resulting AST to
// build the Lex+Syntax the described language actually needs. Nothing
// here hand-rolls its own lexer or recursive-descent parser the way
// vartan/spec/lexer.go and vartan/spec/parser.go do for vartan's own
// grammar file format -- grammarlang dogfoods packages lexicon, syntax
// and parser instead, which is the literal meaning of "self-hosted" in
// spec.md §4.G ("compiles to B+D").
package grammarlang

import (
	"sync"

	"github.com/vellumlang/vellum/lexicon"
	"github.com/vellumlang/vellum/syntax"
)

var (
	bootstrapOnce sync.Once
	bootstrapSyn  *syntax.Syntax
	bootstrapErr  error
)

// Bootstrap returns the hand-assembled Syntax capable of parsing the
// textual grammar language (spec.md §4.G, "a built-in Syntax capable of
// parsing this language is hand-assembled"). Built once and reused,
// since a Syntax is deeply immutable and safe to share (spec.md §5).
func Bootstrap() (*syntax.Syntax, error) {
	bootstrapOnce.Do(func() {
		bootstrapSyn, bootstrapErr = buildBootstrap()
	})
	return bootstrapSyn, bootstrapErr
}

// buildBootstrapLex defines every lexical token of the grammar language
// itself. Everything lives in one context: grammarlang's own syntax
// never needs the multi-context scanning feature it compiles *for*
// other grammars.
func buildBootstrapLex() (*lexicon.Lex, error) {
	lb := lexicon.NewBuilder("root")
	lb.Define("ws", `[ \t\r\n]+`)
	lb.Define("comment", `#[^\n]*`)
	lb.Define("json", `true|false|null|-?[0-9]+(\.[0-9]+)?`)
	lb.Define("ident", `[A-Za-z_][A-Za-z0-9_]*`)
	lb.Define("regex", `/(\\.|[^/\\])*/`)
	lb.Define("string", `"(\\.|[^"\\])*"`)
	lb.Define("arrow", `->`)
	lb.Define("ellipsis", `\.\.\.`)
	lb.Define("percentEmpty", `%empty`)
	lb.Define("colon", `:`)
	lb.Define("pipe", `\|`)
	lb.Define("semi", `;`)
	lb.Define("question", `\?`)
	lb.Define("at", `@`)
	lb.Define("dot", `\.`)
	lb.Define("langle", `<`)
	lb.Define("rangle", `>`)
	lb.Define("comma", `,`)
	lb.Define("equals", `=`)
	lb.Define("lbrace", `{`)
	lb.Define("rbrace", `}`)
	return lb.Build()
}

// buildBootstrap assembles the LALR(1) Syntax for the grammar below
// (spec.md §4.G's three declaration kinds), entirely through explicit
// syntax.Builder calls -- there is no textual source for this grammar
// to parse, by construction; selfShapedSource in self_test.go is a
// textual grammar built from the same construct vocabulary, fed through
// Compile to exercise the round-trip property (spec.md §8.7).
//
//	root          -> declList
//	declList      -> declList option | declList terminalDecl
//	               |  declList nonTerminalDecl | %empty
//	option        -> ident colon string semi | ident colon json semi
//	terminalDecl  -> ident ctxListOpt questionOpt equals regex annotationsOpt semi
//	ctxListOpt    -> langle identList rangle | %empty
//	identList     -> identList comma ident | ident
//	questionOpt   -> question | %empty
//	annotationsOpt -> lbrace annotationList rbrace | %empty
//	annotationList -> annotationList comma annotation | annotation
//	annotation    -> ident colon string | ident colon json
//	nonTerminalDecl -> ident formOpt arrow altList semi
//	formOpt       -> dot ident | %empty
//	altList       -> altList pipe alt | alt
//	alt           -> bodySymbolList | percentEmpty
//	bodySymbolList -> bodySymbolList bodySymbol | bodySymbol
//	bodySymbol    -> ellipsis ident | ident question at ident
//	               |  ident question | ident at ident | ident
func buildBootstrap() (*syntax.Syntax, error) {
	lex, err := buildBootstrapLex()
	if err != nil {
		return nil, err
	}
	b := syntax.NewBuilder(lex)

	b.Formula("root").Symbol("declList", syntax.AttrUnfold).Commit()

	b.Formula("declList").Symbol("declList", syntax.AttrUnfold).Symbol("option", "decl").Commit()
	b.Formula("declList").Symbol("declList", syntax.AttrUnfold).Symbol("terminalDecl", "decl").Commit()
	b.Formula("declList").Symbol("declList", syntax.AttrUnfold).Symbol("nonTerminalDecl", "decl").Commit()
	b.Formula("declList").Commit() // %empty

	b.Formula("option").Symbol("ident", "key").Symbol("colon").Symbol("string", "value").Symbol("semi").Commit()
	b.Formula("option").Symbol("ident", "key").Symbol("colon").Symbol("json", "value").Symbol("semi").Commit()

	b.Formula("terminalDecl").
		Symbol("ident", "name").
		Symbol("ctxListOpt", "ctx").
		Symbol("questionOpt", "ignorable").
		Symbol("equals").
		Symbol("regex", "pattern").
		Symbol("annotationsOpt", "annot").
		Symbol("semi").
		Commit()

	b.Formula("ctxListOpt").Symbol("langle").Symbol("identList", "ctx").Symbol("rangle").Commit()
	b.Formula("ctxListOpt").Commit() // %empty

	b.Formula("identList").Symbol("identList", syntax.AttrUnfold).Symbol("comma").Symbol("ident", "id").Commit()
	b.Formula("identList").Symbol("ident", "id").Commit()

	b.Formula("questionOpt").Symbol("question").Commit()
	b.Formula("questionOpt").Commit() // %empty

	b.Formula("annotationsOpt").Symbol("lbrace").Symbol("annotationList", "annot").Symbol("rbrace").Commit()
	b.Formula("annotationsOpt").Commit() // %empty

	b.Formula("annotationList").Symbol("annotationList", syntax.AttrUnfold).Symbol("comma").Symbol("annotation", "annot").Commit()
	b.Formula("annotationList").Symbol("annotation", "annot").Commit()

	b.Formula("annotation").Symbol("ident", "key").Symbol("colon").Symbol("string", "value").Commit()
	b.Formula("annotation").Symbol("ident", "key").Symbol("colon").Symbol("json", "value").Commit()

	b.Formula("nonTerminalDecl").
		Symbol("ident", "name").
		Symbol("formOpt", "form").
		Symbol("arrow").
		Symbol("altList", "alt").
		Symbol("semi").
		Commit()

	b.Formula("formOpt").Symbol("dot").Symbol("ident", "form").Commit()
	b.Formula("formOpt").Commit() // %empty

	b.Formula("altList").Symbol("altList", syntax.AttrUnfold).Symbol("pipe").Symbol("alt", "alt").Commit()
	b.Formula("altList").Symbol("alt", "alt").Commit()

	b.Formula("alt").Symbol("bodySymbolList", "sym").Commit()
	b.Formula("alt").Symbol("percentEmpty").Commit()

	b.Formula("bodySymbolList").Symbol("bodySymbolList", syntax.AttrUnfold).Symbol("bodySymbol", "sym").Commit()
	b.Formula("bodySymbolList").Symbol("bodySymbol", "sym").Commit()

	b.Formula("bodySymbol").Symbol("ellipsis").Symbol("ident", "name").Commit()
	b.Formula("bodySymbol").Symbol("ident", "name").Symbol("question").Symbol("at").Symbol("ident", "attr").Commit()
	b.Formula("bodySymbol").Symbol("ident", "name").Symbol("question").Commit()
	b.Formula("bodySymbol").Symbol("ident", "name").Symbol("at").Symbol("ident", "attr").Commit()
	b.Formula("bodySymbol").Symbol("ident", "name").Commit()

	b.Ignore("ws")
	b.Ignore("comment")

	return b.Build()
}
