package syntax

import (
	"fmt"
	"sort"

	"github.com/vellumlang/vellum/lexicon"
	"github.com/vellumlang/vellum/vellumerr"
)

// ParserState is spec.md §3's "Parser state": three maps/sets driving
// the driver's shift/reduce/ignore loop, plus the empirically inferred
// set of contexts the scanner may use while this state is on top of the
// stack.
type ParserState struct {
	Shift     map[Symbol]int
	Reduce    map[Symbol]int // terminal lookahead -> production ID
	Contexts  map[int]bool
	Externals map[Symbol]bool
}

// mergeLALR collapses the canonical LR(1) collection into LALR(1) states
// by merging states that share an LR(0) core, unioning their lookaheads
// -- spec.md §4.D describes LR(1) item-set construction; this merge step
// is the conventional (if less incremental than vartan's) way to arrive
// at LALR(1) table sizes from it.
func mergeLALR(canon []*lr1State) (groups [][]int, groupOf []int) {
	coreToGroup := map[core]int{}
	groupOf = make([]int, len(canon))
	for i, st := range canon {
		c := st.items.core()
		g, ok := coreToGroup[c]
		if !ok {
			g = len(groups)
			coreToGroup[c] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
		groupOf[i] = g
	}
	return groups, groupOf
}

// buildTable fills the shift/reduce tables for every merged LALR state
// and detects conflicts per spec.md §4.D step 5.
func buildTable(g *grammar, canon []*lr1State, groups [][]int, groupOf []int) ([]*ParserState, error) {
	states := make([]*ParserState, len(groups))
	for gi, members := range groups {
		ps := &ParserState{Shift: map[Symbol]int{}, Reduce: map[Symbol]int{}, Contexts: map[int]bool{}, Externals: map[Symbol]bool{}}
		states[gi] = ps

		// shift: union goto() across every member (all members share a
		// core so their goto targets share a core too). Per spec.md §3's
		// "Parser state", shift covers goto on non-terminals too -- the
		// driver pushes a reduced Ntrm back through the same map that
		// shifts a scanned terminal, rather than keeping a separate
		// goto table the way a textbook LALR table usually does.
		for _, m := range members {
			for sym, to := range canon[m].goTo {
				ps.Shift[sym] = groupOf[to]
			}
		}

		// reduce: union [A -> alpha ., a] across every member.
		prodOnLA := map[Symbol]int{}
		for _, m := range members {
			for it := range canon[m].items {
				p := g.prods[it.prod]
				if it.dot != len(p.Body) {
					continue
				}
				if existing, ok := prodOnLA[it.la]; ok && existing != it.prod {
					return nil, vellumerr.SyntaxBuildf(
						"reduce/reduce conflict in state %d on lookahead %s between production %d and %d",
						gi, it.la, existing, it.prod,
					).WithDetail(renderConflictState(g, canon[m]))
				}
				prodOnLA[it.la] = it.prod
				ps.Reduce[it.la] = it.prod
			}
		}
		for la := range ps.Reduce {
			if _, ok := ps.Shift[la]; ok {
				return nil, vellumerr.SyntaxBuildf(
					"shift/reduce conflict in state %d on lookahead %s", gi, la,
				).WithDetail(renderConflictStateByGroup(g, canon, members))
			}
		}
	}
	return states, nil
}

func renderConflictState(g *grammar, st *lr1State) string {
	var lines []string
	for it := range st.items {
		p := g.prods[it.prod]
		lines = append(lines, fmt.Sprintf("  [%d] %s -> ... , lookahead %s", it.prod, p.Head, it.la))
	}
	sort.Strings(lines)
	out := ""
	for _, l := range lines {
		out += l + "\n"
	}
	return out
}

func renderConflictStateByGroup(g *grammar, canon []*lr1State, members []int) string {
	out := ""
	for _, m := range members {
		out += renderConflictState(g, canon[m])
	}
	return out
}

// inferContexts fills each state's Contexts set: the union of the entry
// contexts of every terminal that could legally appear next, i.e. the
// keys of Shift and Reduce (spec.md §4.D step 6).
func inferContexts(states []*ParserState, lex *lexicon.Lex, termSym func(lexicon.TermID) Symbol, symTerm func(Symbol) (lexicon.TermID, bool)) {
	for _, ps := range states {
		note := func(sym Symbol) {
			if sym.IsEOF() {
				return
			}
			tid, ok := symTerm(sym)
			if !ok {
				return
			}
			for _, c := range lex.ContextsForTerm(tid) {
				ps.Contexts[c] = true
			}
		}
		for sym := range ps.Shift {
			note(sym)
		}
		for sym := range ps.Reduce {
			note(sym)
		}
	}
}
