package syntax

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/vellumlang/vellum/lexicon"
)

type jsonBodySymbol struct {
	ID   int    `json:"id"`
	Attr string `json:"attr,omitempty"`
}

type jsonFormula struct {
	Head  int               `json:"head"`
	Form  string            `json:"form,omitempty"`
	Body  []jsonBodySymbol  `json:"body"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

type jsonState struct {
	Shift    map[string]int `json:"shift,omitempty"`
	Reduce   map[string]int `json:"reduce,omitempty"`
	Contexts []int          `json:"contexts,omitempty"`
}

type jsonSyntax struct {
	Lex      json.RawMessage `json:"lex"`
	Ntrms    []string        `json:"ntrms"`
	Formulas []jsonFormula   `json:"formulas"`
	States   []jsonState     `json:"states"`
	Ignores  []int           `json:"ignores,omitempty"`
}

// MarshalJSON renders Syntax per spec.md §6's serialized-Syntax schema.
// Every symbol reference is rendered through SymbolID, spec.md §3's flat
// integer space (terminals in [0, T), non-terminals in [T, T+N)), so the
// emitted ids never leak Symbol's internal kind-tagged bit layout.
func (s *Syntax) MarshalJSON() ([]byte, error) {
	lexJSON, err := json.Marshal(s.Lex)
	if err != nil {
		return nil, err
	}
	return s.marshalWithLex(lexJSON)
}

// MarshalCompressedJSON is MarshalJSON but row-displacement compresses
// the owning Lex's transition table (lexicon.Lex.MarshalCompressedJSON),
// for the `vellum compile --compress` output path.
func (s *Syntax) MarshalCompressedJSON() ([]byte, error) {
	lexJSON, err := s.Lex.MarshalCompressedJSON()
	if err != nil {
		return nil, err
	}
	return s.marshalWithLex(lexJSON)
}

func (s *Syntax) marshalWithLex(lexJSON json.RawMessage) ([]byte, error) {
	out := jsonSyntax{Lex: lexJSON}
	for _, nt := range s.syms.nonTerminals() {
		out.Ntrms = append(out.Ntrms, s.SymbolName(nt))
	}
	for _, f := range s.Formulas {
		jf := jsonFormula{Head: s.SymbolID(f.Head), Form: f.Form}
		for _, bs := range f.Body {
			jf.Body = append(jf.Body, jsonBodySymbol{ID: s.SymbolID(bs.Sym), Attr: bs.Attr})
		}
		if len(f.Attrs) > 0 {
			jf.Attrs = f.Attrs
		}
		out.Formulas = append(out.Formulas, jf)
	}
	for _, ps := range s.States {
		js := jsonState{}
		for sym, to := range ps.Shift {
			if js.Shift == nil {
				js.Shift = map[string]int{}
			}
			js.Shift[itoa(s.SymbolID(sym))] = to
		}
		for sym, prod := range ps.Reduce {
			if js.Reduce == nil {
				js.Reduce = map[string]int{}
			}
			js.Reduce[itoa(s.SymbolID(sym))] = prod
		}
		for c := range ps.Contexts {
			js.Contexts = append(js.Contexts, c)
		}
		out.States = append(out.States, js)
	}
	for sym := range s.Ignores {
		out.Ignores = append(out.Ignores, s.SymbolID(sym))
	}
	return json.Marshal(out)
}

// UnmarshalJSON is MarshalJSON's inverse: it rebuilds the owning Lex, a
// symbolTable with the exact same terminal/non-terminal declaration
// order MarshalJSON observed (terminals from the reloaded Lex.Terms,
// then the augmented start symbol, then every remaining non-terminal in
// Ntrms order), and the Formula/ParserState tables, resolving every
// flat id back to a Symbol via symbolTable.byID. This is what makes
// spec.md §8 Testable Property 6 (build, serialize, reload, reparse)
// possible: a reloaded Syntax matches the one that produced the JSON,
// short of the first/follow/null working sets, which only the LALR(1)
// construction itself ever reads, and of the cross-language import
// tables: the serialized form carries neither Imports nor any state's
// Externals, so a reloaded Syntax has none.
func (s *Syntax) UnmarshalJSON(data []byte) error {
	var in jsonSyntax
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if len(in.Ntrms) == 0 {
		return fmt.Errorf("syntax: no non-terminals in serialized form")
	}

	lex := &lexicon.Lex{}
	if err := json.Unmarshal(in.Lex, lex); err != nil {
		return err
	}

	syms := newSymbolTable()
	termSym := map[lexicon.TermID]Symbol{}
	symTerm := map[Symbol]lexicon.TermID{}
	for i, t := range lex.Terms {
		sym := syms.terminal(t.Name)
		termSym[lexicon.TermID(i)] = sym
		symTerm[sym] = lexicon.TermID(i)
	}
	syms.registerStart(in.Ntrms[0])
	for _, name := range in.Ntrms[1:] {
		syms.nonTerminal(name)
	}

	resolve := func(id int) (Symbol, error) {
		sym, ok := syms.byID(id)
		if !ok {
			return SymbolNil, fmt.Errorf("syntax: symbol id %d out of range", id)
		}
		return sym, nil
	}

	formulas := make([]*Formula, len(in.Formulas))
	for i, jf := range in.Formulas {
		head, err := resolve(jf.Head)
		if err != nil {
			return err
		}
		f := &Formula{ID: i, Head: head, Form: jf.Form, Attrs: jf.Attrs}
		for _, jbs := range jf.Body {
			sym, err := resolve(jbs.ID)
			if err != nil {
				return err
			}
			f.Body = append(f.Body, BodySymbol{Sym: sym, Attr: jbs.Attr})
		}
		formulas[i] = f
	}

	states := make([]*ParserState, len(in.States))
	for i, js := range in.States {
		ps := &ParserState{Shift: map[Symbol]int{}, Reduce: map[Symbol]int{}, Contexts: map[int]bool{}, Externals: map[Symbol]bool{}}
		for k, to := range js.Shift {
			id, err := strconv.Atoi(k)
			if err != nil {
				return fmt.Errorf("syntax: invalid shift key %q: %w", k, err)
			}
			sym, err := resolve(id)
			if err != nil {
				return err
			}
			ps.Shift[sym] = to
		}
		for k, prod := range js.Reduce {
			id, err := strconv.Atoi(k)
			if err != nil {
				return fmt.Errorf("syntax: invalid reduce key %q: %w", k, err)
			}
			sym, err := resolve(id)
			if err != nil {
				return err
			}
			ps.Reduce[sym] = prod
		}
		for _, c := range js.Contexts {
			ps.Contexts[c] = true
		}
		states[i] = ps
	}

	ignores := map[Symbol]bool{}
	for _, id := range in.Ignores {
		sym, err := resolve(id)
		if err != nil {
			return err
		}
		ignores[sym] = true
	}

	s.Lex = lex
	s.syms = syms
	s.Formulas = formulas
	s.States = states
	s.Ignores = ignores
	s.Imports = map[Symbol]importInfo{}
	s.symTerm = symTerm
	s.termSym = termSym
	return nil
}
