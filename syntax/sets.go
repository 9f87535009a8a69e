package syntax

import "github.com/vellumlang/vellum/vellumerr"

// grammar is the internal, flattened view the set computations and the
// LR(1) automaton builder both work from.
type grammar struct {
	prods    []*Formula
	byHead   map[Symbol][]*Formula
	nonTerms []Symbol
	terms    []Symbol
	// imports holds every non-terminal bound via Builder.Import: these are
	// deliberately headless (spec.md §4.E's external hook supplies them at
	// parse time), so the FIRST-set construction must not treat them as an
	// undefined head.
	imports map[Symbol]bool
}

func newGrammarView(prods []*Formula, nonTerms, terms []Symbol, imports map[Symbol]bool) *grammar {
	g := &grammar{prods: prods, byHead: map[Symbol][]*Formula{}, nonTerms: nonTerms, terms: terms, imports: imports}
	for _, p := range prods {
		g.byHead[p.Head] = append(g.byHead[p.Head], p)
	}
	return g
}

// nullable computes, per spec.md §4.D step 1, the fixed point: A is
// nullable iff some production of A has a body composed entirely of
// nullable symbols (the empty body is the base case).
func (g *grammar) nullable() map[Symbol]bool {
	null := map[Symbol]bool{}
	for {
		changed := false
		for _, p := range g.prods {
			if null[p.Head] {
				continue
			}
			all := true
			for _, bs := range p.Body {
				if bs.Sym.IsTerminal() || !null[bs.Sym] {
					all = false
					break
				}
			}
			if all {
				null[p.Head] = true
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return null
}

// first computes FIRST(A) for every non-terminal A, per spec.md §4.D
// step 2: walk each production body, stopping at the first non-nullable
// symbol (or a terminal), substituting FIRST sets of intermediate
// non-terminals until fixed point.
func (g *grammar) first(null map[Symbol]bool) (map[Symbol]map[Symbol]bool, error) {
	first := map[Symbol]map[Symbol]bool{}
	for _, nt := range g.nonTerms {
		first[nt] = map[Symbol]bool{}
	}
	for {
		changed := false
		for _, p := range g.prods {
			dst := first[p.Head]
			for _, bs := range p.Body {
				if bs.Sym.IsTerminal() {
					if !dst[bs.Sym] {
						dst[bs.Sym] = true
						changed = true
					}
					break
				}
				for s := range first[bs.Sym] {
					if !dst[s] {
						dst[s] = true
						changed = true
					}
				}
				if !null[bs.Sym] {
					break
				}
			}
		}
		if !changed {
			break
		}
	}

	for _, nt := range g.nonTerms {
		if g.imports[nt] {
			continue
		}
		if len(g.byHead[nt]) == 0 {
			return nil, vellumerr.SyntaxBuildf("non-terminal %q is used in a production body but never defined (no production has it as a head)", nt)
		}
		if len(first[nt]) == 0 && !null[nt] {
			return nil, vellumerr.SyntaxBuildf("non-terminal %q has an empty FIRST set (unresolvable cycle or no terminal-leading production)", nt)
		}
	}
	return first, nil
}

// firstOfSeq is FIRST(beta a): walk a symbol sequence the same way, but
// fall through to a supplied trailing lookahead set if the whole
// sequence is nullable. Used by LR(1) item-set closure.
func firstOfSeq(seq []Symbol, first map[Symbol]map[Symbol]bool, null map[Symbol]bool, trailing map[Symbol]bool) map[Symbol]bool {
	out := map[Symbol]bool{}
	allNullable := true
	for _, s := range seq {
		if s.IsTerminal() {
			out[s] = true
			allNullable = false
			break
		}
		for t := range first[s] {
			out[t] = true
		}
		if !null[s] {
			allNullable = false
			break
		}
	}
	if allNullable {
		for t := range trailing {
			out[t] = true
		}
	}
	return out
}

// follow computes FOLLOW(A) for every non-terminal, kept for diagnostics
// per spec.md §4.D step 3 ("computed but not strictly required for LALR
// item cores").
func (g *grammar) follow(first map[Symbol]map[Symbol]bool, null map[Symbol]bool) map[Symbol]map[Symbol]bool {
	follow := map[Symbol]map[Symbol]bool{}
	for _, nt := range g.nonTerms {
		follow[nt] = map[Symbol]bool{}
	}
	follow[SymbolStart][SymbolEOF] = true
	for {
		changed := false
		for _, p := range g.prods {
			for i, bs := range p.Body {
				if bs.Sym.IsTerminal() {
					continue
				}
				rest := p.Body[i+1:]
				restSyms := make([]Symbol, len(rest))
				for j, r := range rest {
					restSyms[j] = r.Sym
				}
				set := firstOfSeq(restSyms, first, null, follow[p.Head])
				dst := follow[bs.Sym]
				for s := range set {
					if !dst[s] {
						dst[s] = true
						changed = true
					}
				}
			}
		}
		if !changed {
			break
		}
	}
	return follow
}
