package grammarlang

import (
	"strconv"
	"strings"

	"github.com/vellumlang/vellum/ast"
	"github.com/vellumlang/vellum/lexicon"
	"github.com/vellumlang/vellum/parser"
	"github.com/vellumlang/vellum/syntax"
	"github.com/vellumlang/vellum/vellumerr"
)

// Compile parses src as grammar-language source text and builds the
// Lex+Syntax pair it describes (spec.md §4.G). path names src for
// diagnostics only.
func Compile(path string, src []byte) (*syntax.Syntax, error) {
	boot, err := Bootstrap()
	if err != nil {
		return nil, err
	}
	doc := ast.NewDocument(path, src)
	root, err := parser.New(boot, doc).Parse()
	if err != nil {
		return nil, err
	}
	return compileRoot(root)
}

// compileRoot walks root's top-level decl list (root -> declList is an
// unfold production, so root.Attrs("decl") already holds every option,
// terminalDecl and nonTerminalDecl node in source order) and emits the
// Lex+Syntax pair it describes.
func compileRoot(root *ast.Root) (*syntax.Syntax, error) {
	var opts []ast.Node
	var termDecls []ast.Node
	var ntDecls []ast.Node
	for _, d := range root.Attrs("decl") {
		n, ok := d.(*ast.Ntrm)
		if !ok {
			continue
		}
		switch n.Name() {
		case "option":
			opts = append(opts, n)
		case "terminalDecl":
			termDecls = append(termDecls, n)
		case "nonTerminalDecl":
			ntDecls = append(ntDecls, n)
		}
	}
	if len(ntDecls) == 0 {
		return nil, vellumerr.SyntaxBuildf("grammar declares no non-terminals")
	}

	optValues := map[string]string{}
	for _, o := range opts {
		n := o.(*ast.Ntrm)
		key := n.Attr("key").Text()
		optValues[key] = scalarValue(n.Attr("value"))
	}

	lang := optValues["lang"]
	if lang == "" {
		lang = ntDecls[0].(*ast.Ntrm).Attr("name").Text()
	}

	lb := lexicon.NewBuilder(lang)
	for _, td := range termDecls {
		n := td.(*ast.Ntrm)
		name := n.Attr("name").Text()
		pattern, err := unquoteRegex(n.Attr("pattern").Text())
		if err != nil {
			return nil, err
		}
		contexts := identListValues(n.Attr("ctx"))
		lb.Define(name, pattern, contexts...)
		for _, ann := range annotationValues(n.Attr("annot")) {
			lb.Annotate(name, ann.key, ann.value)
		}
	}
	lex, err := lb.Build()
	if err != nil {
		return nil, err
	}

	b := syntax.NewBuilder(lex)
	for _, td := range termDecls {
		n := td.(*ast.Ntrm)
		if isQuestionOptPresent(n.Attr("ignorable")) {
			b.Ignore(n.Attr("name").Text())
		}
	}
	for _, nt := range ntDecls {
		n := nt.(*ast.Ntrm)
		head := n.Attr("name").Text()
		form := ""
		if f := n.Attr("form"); f != nil {
			if fn, ok := f.(*ast.Ntrm); ok {
				if id := fn.Attr("form"); id != nil {
					form = id.Text()
				}
			}
		}
		for _, altNode := range altValues(n.Attr("alt")) {
			emitAlt(b, head, form, altNode)
		}
	}
	return b.Build()
}

// scalarValue renders a string or json leaf node as plain text, per
// grammarlang's restriction to flat option/annotation values (nested
// JSON objects and arrays are not a regular language, so the bootstrap
// lexicon only ever scans a flat scalar here).
func scalarValue(n ast.Node) string {
	if n == nil {
		return ""
	}
	if t, ok := n.(*ast.Term); ok && t.Name() == "string" {
		v, _ := unquoteString(t.Text())
		return v
	}
	return n.Text()
}

type annotation struct{ key, value string }

func annotationValues(n ast.Node) []annotation {
	if n == nil {
		return nil
	}
	ntrm, ok := n.(*ast.Ntrm)
	if !ok {
		return nil
	}
	list, ok := ntrm.Attr("annot").(*ast.Ntrm)
	if !ok {
		return nil
	}
	var out []annotation
	for _, a := range list.Attrs("annot") {
		an, ok := a.(*ast.Ntrm)
		if !ok {
			continue
		}
		out = append(out, annotation{key: an.Attr("key").Text(), value: scalarValue(an.Attr("value"))})
	}
	return out
}

// identListValues flattens a ctxListOpt node's identList, if present.
func identListValues(n ast.Node) []string {
	if n == nil {
		return nil
	}
	ntrm, ok := n.(*ast.Ntrm)
	if !ok {
		return nil
	}
	idList := ntrm.Attr("ctx")
	if idList == nil {
		return nil
	}
	idNtrm, ok := idList.(*ast.Ntrm)
	if !ok {
		return nil
	}
	var out []string
	for _, id := range idNtrm.Attrs("id") {
		out = append(out, id.Text())
	}
	return out
}

// isQuestionOptPresent reports whether a questionOpt node matched `?`
// rather than its %empty alternative.
func isQuestionOptPresent(n ast.Node) bool {
	ntrm, ok := n.(*ast.Ntrm)
	if !ok {
		return false
	}
	return len(ntrm.Sentence) > 0
}

// altValues flattens an altList node (itself left-recursive and unfold
// accumulated) to its ordered alt nodes.
func altValues(n ast.Node) []ast.Node {
	if n == nil {
		return nil
	}
	ntrm, ok := n.(*ast.Ntrm)
	if !ok {
		return nil
	}
	return ntrm.Attrs("alt")
}

// bodySymbolSpec is one parsed body symbol of an alt, before the
// optional-symbol 2^k expansion (spec.md §4.G).
type bodySymbolSpec struct {
	name     string
	attr     string
	unfold   bool
	optional bool
}

// emitAlt expands one declared alternative into the production(s) it
// stands for: exactly one when it has no optional symbols, 2^k when k
// symbols are marked `?` (every subset of which are present), and the
// %empty production directly when the alt is %empty.
func emitAlt(b *syntax.Builder, head, form string, altNode ast.Node) {
	ntrm, ok := altNode.(*ast.Ntrm)
	if !ok {
		return
	}
	if len(ntrm.Sentence) == 1 {
		if t, isTerm := ntrm.Sentence[0].(*ast.Term); isTerm && t.Name() == "percentEmpty" {
			b.Formula(head, form).Commit()
			return
		}
	}

	var specs []bodySymbolSpec
	for _, s := range altValuesSym(ntrm) {
		specs = append(specs, parseBodySymbol(s))
	}

	var optIdx []int
	for i, s := range specs {
		if s.optional {
			optIdx = append(optIdx, i)
		}
	}
	k := len(optIdx)
	for mask := 0; mask < (1 << uint(k)); mask++ {
		included := make(map[int]bool, k)
		for bit, idx := range optIdx {
			if mask&(1<<uint(bit)) != 0 {
				included[idx] = true
			}
		}
		fb := b.Formula(head, form)
		for i, s := range specs {
			if s.optional && !included[i] {
				continue
			}
			switch {
			case s.unfold:
				fb = fb.Symbol(s.name, syntax.AttrUnfold)
			case s.attr != "":
				fb = fb.Symbol(s.name, s.attr)
			default:
				fb = fb.Symbol(s.name)
			}
		}
		fb.Commit()
	}
}

// altValuesSym returns an alt node's ordered bodySymbol nodes, flattening
// through the single bodySymbolList child alt's own production tags
// "sym" on (bodySymbolList itself accumulates the flattened list via its
// own left-recursive unfold productions).
func altValuesSym(alt *ast.Ntrm) []ast.Node {
	list := alt.Attr("sym")
	if list == nil {
		return nil
	}
	listNtrm, ok := list.(*ast.Ntrm)
	if !ok {
		return nil
	}
	return listNtrm.Attrs("sym")
}

// parseBodySymbol classifies one bodySymbol node by which of the five
// bootstrap productions produced it (spec.md §4.G's `...name`,
// `name?@attr`, `name?`, `name@attr`, `name` forms). Optional symbols
// (trailing `?`, with or without an attr) are expanded by emitAlt.
func parseBodySymbol(n ast.Node) bodySymbolSpec {
	ntrm, ok := n.(*ast.Ntrm)
	if !ok {
		return bodySymbolSpec{}
	}
	if name := ntrm.Attr("name"); name != nil {
		spec := bodySymbolSpec{name: name.Text()}
		if attr := ntrm.Attr("attr"); attr != nil {
			spec.attr = attr.Text()
		}
		for _, c := range ntrm.Sentence {
			t, isTerm := c.(*ast.Term)
			if !isTerm {
				continue
			}
			switch t.Name() {
			case "question":
				spec.optional = true
			case "ellipsis":
				spec.unfold = true
			}
		}
		return spec
	}
	return bodySymbolSpec{}
}

// unquoteRegex strips a /.../ terminal literal's delimiters and
// unescapes `\/`.
func unquoteRegex(lit string) (string, error) {
	if len(lit) < 2 || lit[0] != '/' || lit[len(lit)-1] != '/' {
		return "", vellumerr.SyntaxBuildf("malformed regex literal %q", lit)
	}
	body := lit[1 : len(lit)-1]
	return strings.ReplaceAll(body, `\/`, `/`), nil
}

// unquoteString unescapes a "..." string literal using Go's own quoted
// string rules (grammarlang's escape set -- \", \\, \n, \t, ... -- is a
// subset of Go's, so strconv.Unquote covers it exactly).
func unquoteString(lit string) (string, error) {
	v, err := strconv.Unquote(lit)
	if err != nil {
		return "", vellumerr.SyntaxBuildf("malformed string literal %q", lit)
	}
	return v, nil
}
