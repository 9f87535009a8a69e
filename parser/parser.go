// Package parser drives the LALR(1) tables built by package syntax over a
// document, producing an attributed ast.Root, per spec.md §4.E. The
// shift/reduce/goto loop shape is grounded on vartan/driver/parser.go's
// Parse() (push/shift/reduce over an explicit state stack); everything
// around it -- the thread vector, scan-and-fork over multiple lexer
// contexts, ignore reinsertion, and cross-language import hand-off -- is
// new machinery vartan's single-context, single-thread driver has no
// analogue for, since vartan always targets exactly one generated Go
// grammar with no import statement.
package parser

import (
	"sort"

	"github.com/google/uuid"

	"github.com/vellumlang/vellum/ast"
	"github.com/vellumlang/vellum/lexicon"
	"github.com/vellumlang/vellum/syntax"
	"github.com/vellumlang/vellum/vellumerr"
)

// Options configures Parse, per spec.md §4.E's option table.
type Options struct {
	// Starting is the byte offset to begin parsing at. Default 0.
	Starting int
	// Truncate causes a scan failure to be treated as end-of-input
	// instead of aborting the parse.
	Truncate bool
	// Lazy rejects immediately if the very first token is ignorable.
	Lazy bool
	// Syntaxes resolves an imported language name to its compiled
	// Syntax, for states whose goto target is marked external.
	Syntaxes map[string]*syntax.Syntax

	// CorrelationID tags every vellumerr.Error this parse produces, so a
	// caller running many parses concurrently can line a failure back up
	// to the Options that produced it. Generated with google/uuid when
	// left empty.
	CorrelationID string
}

// Parser runs the main loop of spec.md §4.E over one document and Syntax.
type Parser struct {
	syn  *syntax.Syntax
	doc  *ast.Document
	opts Options
}

func New(syn *syntax.Syntax, doc *ast.Document, opts ...Options) *Parser {
	o := Options{}
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.CorrelationID == "" {
		o.CorrelationID = uuid.NewString()
	}
	return &Parser{syn: syn, doc: doc, opts: o}
}

// Parse runs the thread vector to completion and returns the accepted
// Root, or a vellumerr.Error of KindParse.
func (p *Parser) Parse() (*ast.Root, error) {
	root := &ast.Root{Document: p.doc, Syntax: p.syn}

	startState := 0
	threads := []*thread{newThread(p.opts.Starting, startState)}

	var candidates []ast.Node
	var candidateThreads []*thread
	var lastFailure *thread

	for len(threads) > 0 {
		// Phase 1: scan-and-fork every thread with an empty input buffer.
		var forked []*thread
		for _, th := range threads {
			if th.look != nil || th.failed || th.accepted {
				continue
			}
			if sym, to, ok := p.pendingExternal(th.top()); ok {
				if !p.runExternal(root, th, sym, to) {
					th.failed = true
					lastFailure = th
				}
				continue
			}
			results, err := p.scanContexts(th)
			if err != nil {
				th.failed = true
				lastFailure = th
				continue
			}
			if len(results) == 0 {
				th.failed = true
				lastFailure = th
				continue
			}
			th.look = results[0]
			if p.opts.Lazy && !th.shifted && p.syn.IsIgnored(th.look.sym) {
				th.failed = true
				lastFailure = th
				continue
			}
			for _, extra := range results[1:] {
				clone := th.fork()
				clone.look = extra
				forked = append(forked, clone)
			}
		}
		threads = append(threads, forked...)

		// Phase 2: process every thread once. A thread that just ran an
		// external hand-off in phase 1 has th.look == nil (like a thread
		// that just shifted) and waits for the next iteration's scan.
		for _, th := range threads {
			if th.failed || th.accepted || th.look == nil {
				continue
			}
			p.step(root, th)
			if th.failed {
				lastFailure = th
			}
		}

		// Phase 3: collect acceptances, then prune resolved threads.
		var remaining []*thread
		for _, th := range threads {
			if th.accepted {
				candidates = append(candidates, th.acceptedNode)
				candidateThreads = append(candidateThreads, th)
				continue
			}
			if th.failed {
				continue
			}
			remaining = append(remaining, th)
		}
		threads = remaining
	}

	switch len(candidates) {
	case 0:
		return nil, p.diagnose(lastFailure)
	case 1:
		return p.finish(root, candidates[0], candidateThreads[0])
	default:
		return nil, vellumerr.Parsef("ambiguous parse: %d distinct accepted trees", len(candidates)).WithCorrelation(p.opts.CorrelationID)
	}
}

// finish reattaches any ignored tokens still left at the source
// prefix/suffix (spec.md §4.E "Acceptance") and builds the Root. content
// is always an *ast.Ntrm: S (the augmented production's sole real body
// symbol) is a non-terminal, so it can only ever reach the stack through
// a prior reduce.
func (p *Parser) finish(root *ast.Root, content ast.Node, th *thread) (*ast.Root, error) {
	n := content.(*ast.Ntrm)
	sentence, rest := mergeIgnores(n.Sentence, th.ignores)
	start := -1
	if ft := n.FirstTerm(); ft != nil {
		start = ft.Offset
	}
	var before, after []ast.Node
	for _, ig := range rest {
		if start < 0 || ig.Offset < start {
			before = append(before, ig)
		} else {
			after = append(after, ig)
		}
	}
	sentence = append(append(before, sentence...), after...)
	root.Ntrm = *root.NewNtrm(n.Sym, n.ProdID, sentence, n.Attributes)
	return root, nil
}

// step runs one thread through reduce -> shift -> ignore, per spec.md
// §4.E step 2.
func (p *Parser) step(root *ast.Root, th *thread) {
	top := th.top()
	state := p.states()[top]

	sym := th.look.sym
	if prodID, ok := state.Reduce[sym]; ok {
		f := p.syn.Formulas[prodID]
		node, accepted := th.doReduce(root, f)
		if accepted {
			th.acceptedNode = node
		}
		return
	}
	if to, ok := state.Shift[sym]; ok {
		th.doShift(root, to, p.syn.TermAttrs(sym))
		return
	}
	if !th.look.isSynthetic() && p.syn.IsIgnored(sym) {
		th.doIgnore(root, p.syn.TermAttrs(sym))
		return
	}
	th.failed = true
}

// states is a tiny accessor kept for readability at call sites.
func (p *Parser) states() []*syntax.ParserState { return p.syn.States }

// pendingExternal reports whether state expects an imported non-terminal's
// goto next, rather than a scanned terminal. An imported symbol never has a
// local production, so it can never arrive as a reduce's synthesized
// lookahead the way an ordinary non-terminal goto does (compare
// thread.doReduce); Externals is the only place a build records that this
// state's Shift entry is a cross-language hand-off instead of a local goto,
// so phase 1 must check it before ever attempting to scan a terminal here.
func (p *Parser) pendingExternal(state int) (sym syntax.Symbol, to int, ok bool) {
	ps := p.states()[state]
	for s := range ps.Externals {
		if to, ok := ps.Shift[s]; ok {
			return s, to, true
		}
	}
	return syntax.Symbol(0), 0, false
}

// scanContexts scans the thread's current context set at its current
// offset, forking one lookahead per distinct (terminal, length) result
// (spec.md §4.E step 1).
func (p *Parser) scanContexts(th *thread) ([]*lookahead, error) {
	if th.offset >= len(p.doc.Bytes) {
		return []*lookahead{{sym: syntax.SymbolEOF, offset: th.offset, length: 0}}, nil
	}

	state := p.states()[th.top()]
	ctxIDs := make([]int, 0, len(state.Contexts))
	for c := range state.Contexts {
		ctxIDs = append(ctxIDs, c)
	}
	if len(ctxIDs) == 0 {
		ctxIDs = []int{0}
	}
	sort.Ints(ctxIDs)

	type key struct {
		tid    lexicon.TermID
		length int
	}
	seen := map[key]bool{}
	var out []*lookahead
	for _, c := range ctxIDs {
		tid, length := p.syn.Lex.Scan(p.doc.Bytes, th.offset, c)
		if tid == lexicon.ErrorTerm {
			if p.opts.Truncate {
				tid, length = lexicon.EOF, 0
			} else {
				// Spec.md §3 reserves a sentinel symbol for the error
				// token; surface it as a real (non-synthetic) lookahead
				// rather than dropping the dead-end scan silently, so a
				// thread that fails here still carries the offending
				// byte range for diagnose.
				k := key{lexicon.ErrorTerm, length}
				if seen[k] {
					continue
				}
				seen[k] = true
				out = append(out, &lookahead{sym: syntax.SymbolError, tid: lexicon.ErrorTerm, offset: th.offset, length: length})
				continue
			}
		}
		if tid == lexicon.EOF {
			k := key{lexicon.EOF, 0}
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, &lookahead{sym: syntax.SymbolEOF, offset: th.offset, length: 0})
			continue
		}
		k := key{tid, length}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, &lookahead{sym: p.syn.TerminalSymbol(tid), tid: tid, offset: th.offset, length: length})
	}
	if len(out) == 0 {
		return nil, vellumerr.Parsef("no terminal matches at offset %d", th.offset).At(p.doc.Location(th.offset)).WithCorrelation(p.opts.CorrelationID)
	}
	return out, nil
}

// runExternal hands off to an imported Syntax's own Parser starting at
// th's current offset, then splices the resulting Root in as a single
// node and advances th past whatever it consumed.
func (p *Parser) runExternal(root *ast.Root, th *thread, sym syntax.Symbol, to int) bool {
	lang, _, ok := p.syn.ImportInfo(sym)
	if !ok {
		return false
	}
	sub, ok := p.opts.Syntaxes[lang]
	if !ok {
		return false
	}
	subParser := New(sub, p.doc, Options{Starting: th.offset, Syntaxes: p.opts.Syntaxes})
	subRoot, err := subParser.Parse()
	if err != nil {
		return false
	}
	last := subRoot.LastTerm()
	end := th.offset
	if last != nil {
		end = last.Offset + last.Length
	}
	th.nodeStack = append(th.nodeStack, subRoot)
	th.stateStack = append(th.stateStack, to)
	th.offset = end
	th.look = nil
	th.shifted = true
	return true
}

func (p *Parser) diagnose(th *thread) error {
	if th == nil {
		return vellumerr.Parsef("parse failed: no input").WithCorrelation(p.opts.CorrelationID)
	}
	loc := p.doc.Location(th.offset)
	expected := p.syn.ExpectedNames(th.top())
	var text string
	if th.look != nil && !th.look.isSynthetic() {
		end := th.look.offset + th.look.length
		if end > len(p.doc.Bytes) {
			end = len(p.doc.Bytes)
		}
		text = string(p.doc.Bytes[th.look.offset:end])
	}
	msg := "unexpected token"
	if th.lastReduced != 0 {
		msg = "unexpected token after reducing " + p.syn.SymbolName(th.lastReduced)
	}
	return vellumerr.Parsef("%s: %q", msg, text).At(loc).WithExpected(expected).WithCorrelation(p.opts.CorrelationID)
}
