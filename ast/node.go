package ast

import "github.com/vellumlang/vellum/syntax"

// Node is satisfied by both Term and Ntrm (Root embeds Ntrm). Every node
// can locate its own first/last terminal and render its source range and
// exact text, per spec.md §4.F.
type Node interface {
	Root() *Root
	FirstTerm() *Term
	LastTerm() *Term
	Range() (Pos, Pos)
	Text() string
	IsTerm() bool
}

// Term is a matched terminal: a symbol, its source span, and the
// attribute map copied from its terminal definition (spec.md §3).
type Term struct {
	Sym    syntax.Symbol
	Offset int
	Length int
	Attrs  map[string]string
	Ignored bool // true for a reinserted originally-ignored token

	root *Root
}

func (t *Term) Root() *Root        { return t.root }
func (t *Term) FirstTerm() *Term   { return t }
func (t *Term) LastTerm() *Term    { return t }
func (t *Term) IsTerm() bool       { return true }

func (t *Term) Range() (Pos, Pos) {
	doc := t.root.Document
	return doc.LineCol(t.Offset), doc.LineCol(t.Offset + t.Length)
}

func (t *Term) Text() string {
	return string(t.root.Document.Bytes[t.Offset : t.Offset+t.Length])
}

// Name returns the terminal's declared name.
func (t *Term) Name() string {
	return t.root.Syntax.SymbolName(t.Sym)
}

// Ntrm is a reduced non-terminal: the production that produced it, its
// ordered sentence of children (including reinserted ignored terminals),
// and its attribute map (spec.md §3).
type Ntrm struct {
	Sym        syntax.Symbol
	ProdID     int
	Sentence   []Node
	Attributes map[string][]Node

	root *Root
}

func (n *Ntrm) Root() *Root  { return n.root }
func (n *Ntrm) IsTerm() bool { return false }

func (n *Ntrm) FirstTerm() *Term {
	for _, c := range n.Sentence {
		if t := c.FirstTerm(); t != nil {
			return t
		}
	}
	return nil
}

func (n *Ntrm) LastTerm() *Term {
	for i := len(n.Sentence) - 1; i >= 0; i-- {
		if t := n.Sentence[i].LastTerm(); t != nil {
			return t
		}
	}
	return nil
}

func (n *Ntrm) Range() (Pos, Pos) {
	doc := n.root.Document
	first, last := n.FirstTerm(), n.LastTerm()
	if first == nil || last == nil {
		return Pos{}, Pos{}
	}
	return doc.LineCol(first.Offset), doc.LineCol(last.Offset + last.Length)
}

func (n *Ntrm) Text() string {
	first, last := n.FirstTerm(), n.LastTerm()
	if first == nil || last == nil {
		return ""
	}
	return string(n.root.Document.Bytes[first.Offset : last.Offset+last.Length])
}

// Attr returns the first node stored under attribute key k, or nil.
func (n *Ntrm) Attr(k string) Node {
	vs := n.Attributes[k]
	if len(vs) == 0 {
		return nil
	}
	return vs[0]
}

// Attrs returns every node stored under attribute key k.
func (n *Ntrm) Attrs(k string) []Node {
	return n.Attributes[k]
}

// Name returns the non-terminal's declared name.
func (n *Ntrm) Name() string {
	return n.root.Syntax.SymbolName(n.Sym)
}

// OriginFormula walks through unfolded productions (single-child,
// `attr = "..."`) to find the production ID that actually carries
// semantic meaning, per spec.md §4.F's origin_formula().
func (n *Ntrm) OriginFormula() int {
	cur := n
	for {
		f := cur.root.Syntax.Formulas[cur.ProdID]
		if !f.IsUnfold() {
			return cur.ProdID
		}
		child, ok := cur.Sentence[0].(*Ntrm)
		if !ok {
			return cur.ProdID
		}
		cur = child
	}
}

// Root is the distinguished Ntrm owning the parsed document and syntax,
// and the factory for every other node in the tree (spec.md §3).
type Root struct {
	Ntrm
	Document *Document
	Syntax   *syntax.Syntax
}

func (r *Root) Root() *Root { return r }

// NewTerm constructs a Term node bound to this root.
func (r *Root) NewTerm(sym syntax.Symbol, offset, length int, attrs map[string]string, ignored bool) *Term {
	return &Term{Sym: sym, Offset: offset, Length: length, Attrs: attrs, Ignored: ignored, root: r}
}

// NewNtrm constructs an Ntrm node bound to this root.
func (r *Root) NewNtrm(sym syntax.Symbol, prodID int, sentence []Node, attrs map[string][]Node) *Ntrm {
	return &Ntrm{Sym: sym, ProdID: prodID, Sentence: sentence, Attributes: attrs, root: r}
}
