package syntax

import "github.com/vellumlang/vellum/lexicon"

// Syntax is the immutable output of Builder.Build: the owning Lex, the
// production set, the LALR(1) parser states, and the ignore/import
// side tables (spec.md §3's "Syntactic (Syntax)").
type Syntax struct {
	Lex      *lexicon.Lex
	syms     *symbolTable
	Formulas []*Formula
	States   []*ParserState
	Ignores  map[Symbol]bool
	Imports  map[Symbol]importInfo

	first map[Symbol]map[Symbol]bool
	follow map[Symbol]map[Symbol]bool
	null  map[Symbol]bool

	symTerm map[Symbol]lexicon.TermID
	termSym map[lexicon.TermID]Symbol
}

// SymbolName returns the declared text of a non-terminal or terminal
// symbol (terminal names come from the owning Lex).
func (s *Syntax) SymbolName(sym Symbol) string {
	return s.syms.text(sym)
}

// SymbolID folds sym into spec.md §3's single flat integer space
// (terminals in [0, T), non-terminals in [T, T+N)); this is the id that
// every serialized form (spec.md §6) uses.
func (s *Syntax) SymbolID(sym Symbol) int {
	return s.syms.ID(sym)
}

// SymbolByID is the inverse of SymbolID, resolving a flat integer id
// back to its Symbol; used by UnmarshalJSON to reconstruct Symbol-keyed
// structures from a serialized Syntax.
func (s *Syntax) SymbolByID(id int) (Symbol, bool) {
	return s.syms.byID(id)
}

// LookupSymbol resolves a declared non-terminal or terminal name to its
// Symbol, for callers (the parser driver, ast node construction, tests)
// that only have the name on hand.
func (s *Syntax) LookupSymbol(name string) (Symbol, bool) {
	return s.syms.lookup(name)
}

// TerminalSymbol converts a lexicon.TermID (as returned by Lex.Scan)
// into its Symbol, the form the parser driver's tables index by.
func (s *Syntax) TerminalSymbol(tid lexicon.TermID) Symbol {
	return s.termSym[tid]
}

// TermOf converts a Symbol back to the lexicon.TermID it names, if it is
// a terminal symbol at all (SymbolEOF is not).
func (s *Syntax) TermOf(sym Symbol) (lexicon.TermID, bool) {
	tid, ok := s.symTerm[sym]
	return tid, ok
}

// IsIgnored reports whether a terminal symbol was marked via Ignore.
func (s *Syntax) IsIgnored(sym Symbol) bool {
	return s.Ignores[sym]
}

// IsExternal reports whether a state expects an imported non-terminal
// rather than a locally built one at the goto target for sym.
func (s *Syntax) IsExternal(state int, sym Symbol) bool {
	if state < 0 || state >= len(s.States) {
		return false
	}
	return s.States[state].Externals[sym]
}

// ImportInfo resolves an imported non-terminal symbol to the language it
// was imported from and the local alias it was bound under.
func (s *Syntax) ImportInfo(sym Symbol) (lang, alias string, ok bool) {
	info, ok := s.Imports[sym]
	if !ok {
		return "", "", false
	}
	return info.lang, info.alias, true
}

// TermAttrs returns the attribute map a terminal symbol's definition
// carries, for copying onto the Term node Shift creates.
func (s *Syntax) TermAttrs(sym Symbol) map[string]string {
	tid, ok := s.symTerm[sym]
	if !ok {
		return nil
	}
	return s.Lex.Terms[tid].Attrs
}

// ExpectedNames renders the set of terminal names a parser state's
// shift/reduce keys name, for the "expected set" diagnostic spec.md §4.E
// and §7 require on a Parse error.
func (s *Syntax) ExpectedNames(state int) []string {
	if state < 0 || state >= len(s.States) {
		return nil
	}
	ps := s.States[state]
	seen := map[string]bool{}
	var out []string
	add := func(sym Symbol) {
		if !sym.IsTerminal() {
			return
		}
		name := s.SymbolName(sym)
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for sym := range ps.Shift {
		add(sym)
	}
	for sym := range ps.Reduce {
		add(sym)
	}
	return out
}
