package parser

import (
	"github.com/vellumlang/vellum/ast"
	"github.com/vellumlang/vellum/lexicon"
	"github.com/vellumlang/vellum/syntax"
)

// lookahead is either a terminal scanned from the document, the EOF
// sentinel, or a synthetic non-terminal token standing for a just-reduced
// Ntrm (spec.md §4.E: "Push the new Ntrm back into the input buffer so
// it immediately drives the next shift"). node is set only on synthetic
// tokens, when the reduce builds it; a scanned token leaves it nil and
// gets its Term from the shift.
type lookahead struct {
	sym    syntax.Symbol
	tid    lexicon.TermID
	offset int
	length int
	node   ast.Node // pre-built for synthetic (reduced) tokens only
}

func (l *lookahead) isSynthetic() bool { return l.node != nil }
