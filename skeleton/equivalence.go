package skeleton

import "github.com/vellumlang/vellum/syntax"

// collectEquivalences records, for every unfold-only production
// (`head -> child, attr = "..."`), that head and child always carry the
// same shape -- alioth treats such a pair as "equivalent" since storing
// the unfolded head never adds or removes attributes the child didn't
// already have (spec.md §4.H). Keyed by child so Equivalents(child)
// answers "which heads unfold straight onto this symbol".
func (sk *Skeleton) collectEquivalences(syn *syntax.Syntax) {
	for _, f := range syn.Formulas {
		if !f.IsUnfold() {
			continue
		}
		child := f.Body[0].Sym
		sk.equivalents[child] = append(sk.equivalents[child], f.Head)
	}
}

// Equivalents returns the non-terminals that unfold directly onto sym,
// i.e. whose entire shape is always identical to sym's own.
func (sk *Skeleton) Equivalents(sym syntax.Symbol) []syntax.Symbol {
	return sk.equivalents[sym]
}

// stripIntermediate removes every non-terminal's Structure that can never
// appear as an attribute candidate reachable from the grammar's real
// start symbol -- such non-terminals exist only to glue the grammar
// together (precedence climbing scaffolding, parenthesization wrappers)
// and carry no attribute shape a caller of Store would ever ask for
// (spec.md §4.H, "stripping of intermediate non-terminals").
func (sk *Skeleton) stripIntermediate(syn *syntax.Syntax) {
	if len(syn.Formulas) == 0 {
		return
	}
	start := syn.Formulas[0].Body[0].Sym

	reachable := map[syntax.Symbol]bool{start: true}
	queue := []syntax.Symbol{start}
	for len(queue) > 0 {
		sym := queue[0]
		queue = queue[1:]
		structure, ok := sk.Structures[sym]
		if !ok {
			continue
		}
		for _, attr := range structure.Attributes {
			for cand := range attr.Candidates {
				if cand.IsNonTerminal() && !reachable[cand] {
					reachable[cand] = true
					queue = append(queue, cand)
				}
			}
		}
	}

	for sym := range sk.Structures {
		if !reachable[sym] {
			delete(sk.Structures, sym)
		}
	}
}
