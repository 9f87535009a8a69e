package syntax

import (
	"github.com/vellumlang/vellum/lexicon"
	"github.com/vellumlang/vellum/vellumerr"
)

type importInfo struct {
	lang  string
	alias string
}

// Builder assembles productions before Build runs the LALR(1)
// construction (spec.md §4.D's "Public contract"). NewBuilder seeds the
// augmented start production `S' -> S <EOF>`, where S is the
// non-terminal named after lex's first (language) context.
type Builder struct {
	lex   *lexicon.Lex
	syms  *symbolTable
	prods []*Formula

	termSym map[lexicon.TermID]Symbol
	symTerm map[Symbol]lexicon.TermID

	ignores       map[Symbol]bool
	imports       map[Symbol]importInfo
	importedLangs map[string]bool

	err error
}

func NewBuilder(lex *lexicon.Lex) *Builder {
	b := &Builder{
		lex:           lex,
		syms:          newSymbolTable(),
		termSym:       map[lexicon.TermID]Symbol{},
		symTerm:       map[Symbol]lexicon.TermID{},
		ignores:       map[Symbol]bool{},
		imports:       map[Symbol]importInfo{},
		importedLangs: map[string]bool{},
	}
	for i, t := range lex.Terms {
		sym := b.syms.terminal(t.Name)
		b.termSym[lexicon.TermID(i)] = sym
		b.symTerm[sym] = lexicon.TermID(i)
	}
	b.syms.registerStart("$start")
	startName := lex.Contexts[0]
	sSym := b.syms.nonTerminal(startName)
	b.prods = append(b.prods, &Formula{
		ID:   0,
		Head: SymbolStart,
		Body: []BodySymbol{{Sym: sSym}, {Sym: SymbolEOF}},
	})
	return b
}

// resolveSymbol resolves a name to its Symbol, preferring a defined
// terminal and auto-declaring an unknown name as a non-terminal.
func (b *Builder) resolveSymbol(name string) Symbol {
	if tid, ok := b.lex.TermByName(name); ok {
		return b.termSym[tid]
	}
	return b.syms.nonTerminal(name)
}

// FormulaBuilder accumulates one production's body between .formula and
// .commit.
type FormulaBuilder struct {
	b    *Builder
	head Symbol
	form string
	body []BodySymbol
}

// Formula begins a new production with the given head non-terminal name
// and an optional form label grouping it with sibling alternatives.
// Per the original syntax.h's ExternalHeadError, an imported non-terminal
// cannot be given a local production of its own -- it is supplied
// entirely by the driver's external hook at parse time.
func (b *Builder) Formula(head string, form ...string) *FormulaBuilder {
	if b.err == nil {
		if _, ok := b.lex.TermByName(head); ok {
			b.err = vellumerr.SyntaxBuildf("terminal %q cannot be used as a production head", head)
		} else if sym, ok := b.syms.lookup(head); ok {
			if _, isImport := b.imports[sym]; isImport {
				b.err = vellumerr.SyntaxBuildf("imported symbol %q cannot be used as a production head", head)
			}
		}
	}
	f := ""
	if len(form) > 0 {
		f = form[0]
	}
	return &FormulaBuilder{b: b, head: b.syms.nonTerminal(head), form: f}
}

// Symbol appends a body symbol; attr, if given, is the `attr = ...`
// label (use syntax.AttrUnfold for the unfold marker).
func (fb *FormulaBuilder) Symbol(nameOrID string, attr ...string) *FormulaBuilder {
	a := ""
	if len(attr) > 0 {
		a = attr[0]
	}
	fb.body = append(fb.body, BodySymbol{Sym: fb.b.resolveSymbol(nameOrID), Attr: a})
	return fb
}

// Commit finalizes the production and returns to the Builder.
func (fb *FormulaBuilder) Commit() *Builder {
	b := fb.b
	if b.err != nil {
		return b
	}
	b.prods = append(b.prods, &Formula{
		ID:    len(b.prods),
		Head:  fb.head,
		Form:  fb.form,
		Body:  fb.body,
		Attrs: map[string]string{},
	})
	return b
}

// Ignore marks a terminal as globally ignorable (skipped by the parser
// driver rather than shifted).
func (b *Builder) Ignore(termName string) *Builder {
	if b.err != nil {
		return b
	}
	tid, ok := b.lex.TermByName(termName)
	if !ok {
		b.err = vellumerr.SyntaxBuildf("ignore: unknown terminal %q", termName)
		return b
	}
	b.ignores[b.termSym[tid]] = true
	return b
}

// Import marks a non-terminal as a cross-language import point, handled
// by the parser driver via an external hook keyed by lang. Per the
// original syntax.h's AlreadyImportedError, importing the same language
// twice is a build error.
func (b *Builder) Import(lang string, alias ...string) *Builder {
	if b.err != nil {
		return b
	}
	if b.importedLangs[lang] {
		b.err = vellumerr.SyntaxBuildf("language %q is already imported", lang)
		return b
	}
	a := lang
	if len(alias) > 0 {
		a = alias[0]
	}
	sym := b.syms.nonTerminal(a)
	b.importedLangs[lang] = true
	b.imports[sym] = importInfo{lang: lang, alias: a}
	return b
}

// Build runs the LALR(1) construction and returns an immutable Syntax.
func (b *Builder) Build() (*Syntax, error) {
	if b.err != nil {
		return nil, b.err
	}
	// Formula's own check only catches "head named after an already
	// imported symbol"; this catches the opposite ordering (Formula
	// committed first, Import called after for the same alias).
	for _, p := range b.prods {
		if _, isImport := b.imports[p.Head]; isImport {
			return nil, vellumerr.SyntaxBuildf("imported symbol %q cannot be used as a production head", b.syms.text(p.Head))
		}
	}

	nonTerms := b.syms.nonTerminals()
	terms := b.syms.terminals()
	imports := make(map[Symbol]bool, len(b.imports))
	for sym := range b.imports {
		imports[sym] = true
	}
	g := newGrammarView(b.prods, nonTerms, terms, imports)

	null := g.nullable()
	first, err := g.first(null)
	if err != nil {
		return nil, err
	}
	follow := g.follow(first, null)

	symbols := append(append([]Symbol{}, terms...), nonTerms...)
	canon := buildCanonicalLR1(g, first, null, symbols)
	groups, groupOf := mergeLALR(canon)
	states, err := buildTable(g, canon, groups, groupOf)
	if err != nil {
		return nil, err
	}
	inferContexts(states, b.lex,
		func(tid lexicon.TermID) Symbol { return b.termSym[tid] },
		func(s Symbol) (lexicon.TermID, bool) { tid, ok := b.symTerm[s]; return tid, ok },
	)
	for sym := range b.imports {
		// Any state that can goto an imported non-terminal expects the
		// driver's external hook to supply it rather than shifting a
		// locally scanned terminal.
		for _, ps := range states {
			if _, ok := ps.Shift[sym]; ok {
				ps.Externals[sym] = true
			}
		}
	}

	return &Syntax{
		Lex:       b.lex,
		syms:      b.syms,
		Formulas:  b.prods,
		States:    states,
		Ignores:   b.ignores,
		Imports:   b.imports,
		first:     first,
		follow:    follow,
		null:      null,
		symTerm:   b.symTerm,
		termSym:   b.termSym,
	}, nil
}
