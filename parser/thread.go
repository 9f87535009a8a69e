package parser

import (
	"github.com/vellumlang/vellum/ast"
	"github.com/vellumlang/vellum/syntax"
)

// thread is spec.md §4.E's "State": a single parse attempt's own stacks,
// ignored-token backlog, and scan cursor. Only scan-and-fork ever
// produces more than one thread; everything else mutates a thread
// in place.
type thread struct {
	offset     int
	stateStack []int
	nodeStack  []ast.Node
	ignores    []*ast.Term
	look       *lookahead

	failed      bool
	accepted    bool
	acceptedNode ast.Node
	lastReduced syntax.Symbol // diagnostics only
	shifted     bool          // has this thread ever shifted a real token
}

func newThread(start, startState int) *thread {
	return &thread{offset: start, stateStack: []int{startState}}
}

func (t *thread) top() int { return t.stateStack[len(t.stateStack)-1] }

// fork deep-copies every slice so the original and the clone can diverge
// freely (spec.md §4.E step 1, the only place a thread is duplicated).
func (t *thread) fork() *thread {
	clone := &thread{
		offset:      t.offset,
		stateStack:  append([]int(nil), t.stateStack...),
		nodeStack:   append([]ast.Node(nil), t.nodeStack...),
		ignores:     append([]*ast.Term(nil), t.ignores...),
		lastReduced: t.lastReduced,
		shifted:     t.shifted,
	}
	return clone
}

// doShift pushes the current lookahead (real or synthetic) as a node and
// advances to the goto/shift target state.
func (t *thread) doShift(root *ast.Root, to int, termAttrs map[string]string) {
	var n ast.Node
	if t.look.isSynthetic() {
		n = t.look.node
	} else {
		n = root.NewTerm(t.look.sym, t.look.offset, t.look.length, termAttrs, false)
		t.shifted = true
	}
	t.nodeStack = append(t.nodeStack, n)
	t.stateStack = append(t.stateStack, to)
	if !t.look.isSynthetic() {
		t.offset = t.look.offset + t.look.length
	}
	t.look = nil
}

// doIgnore moves the current scanned terminal into the ignore backlog,
// to be reinserted into whichever reduction's sentence eventually spans
// it (spec.md §4.E step 2's "ignore" branch).
func (t *thread) doIgnore(root *ast.Root, termAttrs map[string]string) {
	term := root.NewTerm(t.look.sym, t.look.offset, t.look.length, termAttrs, true)
	t.ignores = append(t.ignores, term)
	t.offset = t.look.offset + t.look.length
	t.look = nil
}

// doReduce pops the production's body off both stacks, builds the Ntrm
// (or, for production 0, unwraps straight to the accepted content), and
// leaves the result as the new synthetic lookahead (spec.md §4.E
// "Reduction").
func (t *thread) doReduce(root *ast.Root, f *syntax.Formula) (candidate ast.Node, accepted bool) {
	n := len(f.Body)
	children := append([]ast.Node(nil), t.nodeStack[len(t.nodeStack)-n:]...)
	t.nodeStack = t.nodeStack[:len(t.nodeStack)-n]
	t.stateStack = t.stateStack[:len(t.stateStack)-n]

	if f.ID == 0 {
		// S' -> S <EOF>: the augmented wrapper is never materialized: the
		// accepted content is simply the already-built S node.
		t.accepted = true
		return children[0], true
	}

	attrs := map[string][]ast.Node{}
	for i, bs := range f.Body {
		switch {
		case bs.Attr == syntax.AttrUnfold:
			if child, ok := children[i].(*ast.Ntrm); ok {
				for k, vs := range child.Attributes {
					attrs[k] = append(attrs[k], vs...)
				}
			}
		case bs.Attr != "":
			attrs[bs.Attr] = append(attrs[bs.Attr], children[i])
		}
	}

	sentence, consumed := mergeIgnores(children, t.ignores)
	t.ignores = consumed

	ntrm := root.NewNtrm(f.Head, f.ID, sentence, attrs)
	t.lastReduced = f.Head
	t.look = &lookahead{sym: f.Head, node: ntrm}
	return nil, false
}

// mergeIgnores splices every ignored token strictly inside [children's
// span] into the sentence at its chronological position, and returns the
// remaining backlog (tokens before or after the span, left for an
// ancestor reduction or the final Root assembly to claim).
func mergeIgnores(children []ast.Node, backlog []*ast.Term) (sentence []ast.Node, remaining []*ast.Term) {
	if len(backlog) == 0 || len(children) == 0 {
		return children, backlog
	}

	// An all-epsilon child (e.g. a %empty reduction) has no terminal of
	// its own; skip it when hunting for the span's real boundaries.
	var first, last *ast.Term
	for _, c := range children {
		if t := c.FirstTerm(); t != nil {
			first = t
			break
		}
	}
	for i := len(children) - 1; i >= 0; i-- {
		if t := children[i].LastTerm(); t != nil {
			last = t
			break
		}
	}
	if first == nil || last == nil {
		return children, backlog
	}
	start, end := first.Offset, last.Offset+last.Length

	var inside []*ast.Term
	for _, ig := range backlog {
		if ig.Offset > start && ig.Offset < end {
			inside = append(inside, ig)
		} else {
			remaining = append(remaining, ig)
		}
	}
	if len(inside) == 0 {
		return children, backlog
	}

	sentence = make([]ast.Node, 0, len(children)+len(inside))
	ci, ii := 0, 0
	for ci < len(children) || ii < len(inside) {
		if ci < len(children) {
			ft := children[ci].FirstTerm()
			if ft == nil || ii >= len(inside) || ft.Offset <= inside[ii].Offset {
				sentence = append(sentence, children[ci])
				ci++
				continue
			}
		}
		sentence = append(sentence, inside[ii])
		ii++
	}
	return sentence, remaining
}
