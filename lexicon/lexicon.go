// Package lexicon builds the lexical automaton component B of the
// parser-generator pipeline (spec.md §4.B) and performs the inline
// scanning component C (§4.C) against the built Lex. A combined regex
// tree -- the alternation of every defined terminal's pattern, each
// tagged with its own Accept leaf -- drives one followpos computation,
// and a worklist subset construction (vartan/grammar/lexical/dfa/dfa.go's
// GenDFA) turns that into a byte-indexed DFA with one reserved
// pseudo-initial state (state 0) whose "transitions" are keyed by
// context ID rather than by byte.
package lexicon

import (
	"sort"

	"github.com/vellumlang/vellum/regex"
	"github.com/vellumlang/vellum/vellumerr"
)

// TermID identifies a defined terminal, in Define call order starting
// at 0. Scan additionally returns the two sentinels below.
type TermID int

const (
	// EOF is returned by Scan when the offset has reached the end of
	// the document.
	EOF TermID = -1
	// ErrorTerm is returned by Scan when no transition exists for the
	// next byte from the current state; the match length is always 1.
	ErrorTerm TermID = -2

	maxContexts = 256
)

const noAccept TermID = -1

// TermInfo is the builder-time metadata for one defined terminal,
// retained on the built Lex for the AST layer to surface on Term nodes.
type TermInfo struct {
	Name    string
	Pattern string
	Attrs   map[string]string
	// EntryContexts lists the contexts this terminal was restricted to;
	// empty means unrestricted (legal in every context).
	EntryContexts []string
}

type termDef struct {
	name     string
	pattern  string
	contexts []string // empty => unrestricted (legal in every context)
	attrs    map[string]string
	node     regex.Node
}

// Builder assembles terminal definitions before Build freezes them into
// an immutable Lex. The first context is always the language name
// passed to NewBuilder, matching spec.md §4.B's "seeds a builder whose
// first context is the language name itself."
type Builder struct {
	language   string
	contexts   []string
	contextIdx map[string]int
	terms      []*termDef
	termIdx    map[string]int
	err        error
}

func NewBuilder(language string) *Builder {
	b := &Builder{
		language:   language,
		contextIdx: map[string]int{},
		termIdx:    map[string]int{},
	}
	b.context(language)
	return b
}

func (b *Builder) context(name string) int {
	if id, ok := b.contextIdx[name]; ok {
		return id
	}
	id := len(b.contexts)
	b.contexts = append(b.contexts, name)
	b.contextIdx[name] = id
	return id
}

// Define adds a terminal. contexts, when non-empty, restricts the
// terminal's entry points; an empty contexts list means the terminal is
// legal in every context. Duplicate names are a LexBuild error raised at
// Build time, matching the way other builder errors in this package are
// deferred rather than panicking mid-chain.
func (b *Builder) Define(name, pattern string, contexts ...string) *Builder {
	if b.err != nil {
		return b
	}
	if _, ok := b.termIdx[name]; ok {
		b.err = vellumerr.LexBuildf("duplicate terminal name %q", name)
		return b
	}
	for _, c := range contexts {
		b.context(c)
	}
	b.termIdx[name] = len(b.terms)
	b.terms = append(b.terms, &termDef{name: name, pattern: pattern, contexts: contexts, attrs: map[string]string{}})
	return b
}

// Annotate attaches arbitrary metadata to a previously defined terminal,
// visible later on Term AST nodes.
func (b *Builder) Annotate(term, key, value string) *Builder {
	if b.err != nil {
		return b
	}
	i, ok := b.termIdx[term]
	if !ok {
		b.err = vellumerr.LexBuildf("annotate: unknown terminal %q", term)
		return b
	}
	b.terms[i].attrs[key] = value
	return b
}

// Build consumes the builder and emits an immutable Lex.
func (b *Builder) Build() (*Lex, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.contexts) > maxContexts {
		return nil, vellumerr.LexBuildf("too many contexts: %d (max %d)", len(b.contexts), maxContexts)
	}
	if len(b.terms) == 0 {
		return nil, vellumerr.LexBuildf("no terminals defined")
	}

	withAccept := make([]regex.Node, len(b.terms))
	for i, td := range b.terms {
		node, err := regex.Compile(td.pattern)
		if err != nil {
			return nil, vellumerr.New(vellumerr.KindLexBuild, "terminal "+td.name+": "+err.Error())
		}
		td.node = node
		withAccept[i] = regex.Accept(node, i)
	}
	combined := regex.Union(withAccept...)
	follow, err := regex.CalcFollowpos(combined)
	if err != nil {
		return nil, vellumerr.New(vellumerr.KindLexBuild, err.Error())
	}

	posLeaf := map[regex.Position]regex.Node{}
	for _, leaf := range regex.Leaves(combined) {
		posLeaf[leafPosition(leaf)] = leaf
	}

	type state struct {
		pos    *regex.PositionSet
		trans  [256]int // -1 = no transition
		accept TermID
	}
	newState := func(pos *regex.PositionSet) *state {
		s := &state{pos: pos, accept: noAccept}
		for i := range s.trans {
			s.trans[i] = -1
		}
		return s
	}

	var states []*state
	hashToID := map[string]int{}
	getOrCreate := func(pos *regex.PositionSet) int {
		h := pos.Hash()
		if id, ok := hashToID[h]; ok {
			return id
		}
		id := len(states)
		hashToID[h] = id
		states = append(states, newState(pos))
		return id
	}

	// Reserve state 0, the pseudo-initial state; its "transitions" are
	// keyed by context ID, not byte, and it never accepts.
	pseudo := newState(regex.NewPositionSet())
	states = append(states, pseudo)
	hashToID[""] = 0

	for cID, cName := range b.contexts {
		var start *regex.PositionSet
		start = regex.NewPositionSet()
		for i, td := range b.terms {
			if !termEntersContext(td, cName) {
				continue
			}
			start.Merge(td.node.Firstpos())
			_ = i
		}
		if start.Empty() {
			continue
		}
		id := getOrCreate(start)
		pseudo.trans[cID] = id
	}

	unmarked := []int{}
	for id := range states {
		if id == 0 {
			continue
		}
		unmarked = append(unmarked, id)
	}
	for len(unmarked) > 0 {
		var next []int
		for _, id := range unmarked {
			s := states[id]
			var perByte [256]*regex.PositionSet
			for _, p := range s.pos.Set() {
				leaf := posLeaf[p]
				if _, ok := leaf.(*regex.AcceptNode); ok {
					continue
				}
				for v := 1; v < 256; v++ {
					if !leafMatches(leaf, byte(v)) {
						continue
					}
					if perByte[v] == nil {
						perByte[v] = regex.NewPositionSet()
					}
					perByte[v].Merge(follow[p])
				}
			}
			for v, set := range perByte {
				if set == nil || set.Empty() {
					continue
				}
				before := len(states)
				id2 := getOrCreate(set)
				s.trans[v] = id2
				if id2 >= before {
					next = append(next, id2)
				}
			}
		}
		unmarked = next
	}

	for _, s := range states {
		best := noAccept
		for _, p := range s.pos.Set() {
			leaf, ok := posLeaf[p].(*regex.AcceptNode)
			if !ok {
				continue
			}
			id := TermID(leaf.TermID)
			if best == noAccept || id < best {
				best = id
			}
		}
		s.accept = best
	}

	terms := make([]TermInfo, len(b.terms))
	for i, td := range b.terms {
		terms[i] = TermInfo{Name: td.name, Pattern: td.pattern, Attrs: td.attrs, EntryContexts: append([]string(nil), td.contexts...)}
	}

	lexStates := make([]dfaState, len(states))
	for i, s := range states {
		lexStates[i] = dfaState{Accept: s.accept, Trans: s.trans}
	}

	return &Lex{
		Contexts:   append([]string(nil), b.contexts...),
		contextIdx: cloneMap(b.contextIdx),
		Terms:      terms,
		states:     lexStates,
	}, nil
}

func cloneMap(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func termEntersContext(td *termDef, context string) bool {
	if len(td.contexts) == 0 {
		return true
	}
	for _, c := range td.contexts {
		if c == context {
			return true
		}
	}
	return false
}

func leafPosition(n regex.Node) regex.Position {
	return n.Firstpos().Set()[0]
}

func leafMatches(n regex.Node, b byte) bool {
	switch t := n.(type) {
	case *regex.CharNode:
		return t.From == b
	case *regex.RangeNode:
		return t.Matches(b)
	default:
		return false
	}
}

type dfaState struct {
	Accept TermID
	Trans  [256]int
}

// Lex is the immutable output of Builder.Build: a DFA over contexts and
// bytes, plus the per-terminal metadata needed to label Term AST nodes.
type Lex struct {
	Contexts   []string
	contextIdx map[string]int
	Terms      []TermInfo
	states     []dfaState
}

// ContextID returns the index of a named context, or -1 if unknown.
func (l *Lex) ContextID(name string) int {
	if id, ok := l.contextIdx[name]; ok {
		return id
	}
	return -1
}

// TermName returns the defined name of a terminal ID.
func (l *Lex) TermName(id TermID) string {
	if id < 0 || int(id) >= len(l.Terms) {
		return ""
	}
	return l.Terms[id].Name
}

// TermByName returns a terminal's ID and whether it was defined.
func (l *Lex) TermByName(name string) (TermID, bool) {
	for i, t := range l.Terms {
		if t.Name == name {
			return TermID(i), true
		}
	}
	return -1, false
}

// ContextsForTerm resolves the entry-context set of a terminal ID to
// concrete context IDs; an unrestricted terminal resolves to every
// context.
func (l *Lex) ContextsForTerm(id TermID) []int {
	if id < 0 || int(id) >= len(l.Terms) {
		return nil
	}
	entries := l.Terms[id].EntryContexts
	if len(entries) == 0 {
		out := make([]int, len(l.Contexts))
		for i := range out {
			out[i] = i
		}
		return out
	}
	out := make([]int, 0, len(entries))
	for _, name := range entries {
		if id, ok := l.contextIdx[name]; ok {
			out = append(out, id)
		}
	}
	return out
}

// sortedContextNames returns a sorted copy of Contexts; kept here since
// it is purely a view over Lex's own fields.
func (l *Lex) sortedContextNames() []string {
	out := append([]string(nil), l.Contexts...)
	sort.Strings(out)
	return out
}
