package lexicon

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/vellumlang/vellum/lexicon/compressor"
)

// jsonTerm mirrors spec.md §6's Lex.terms entry.
type jsonTerm struct {
	Name    string            `json:"name"`
	Pattern string            `json:"pattern,omitempty"`
	Entries []string          `json:"entries,omitempty"`
	Attrs   map[string]string `json:"attrs,omitempty"`
}

// jsonState mirrors spec.md §6's Lex.states entry. Transitions is left
// empty when the owning jsonLex carries a Compressed table instead (see
// MarshalCompressedJSON); accept ids are always carried here either way.
type jsonState struct {
	Accepts     *int           `json:"accepts,omitempty"`
	Transitions map[string]int `json:"transitions,omitempty"`
}

// jsonCompressedTable mirrors CompressedTable's row-displacement fields
// for serialization, replacing every jsonState.Transitions map when a Lex
// is marshaled via MarshalCompressedJSON.
type jsonCompressedTable struct {
	RowCount        int   `json:"rowCount"`
	ColCount        int   `json:"colCount"`
	EmptyValue      int   `json:"emptyValue"`
	Entries         []int `json:"entries"`
	Bounds          []int `json:"bounds"`
	RowDisplacement []int `json:"rowDisplacement"`
}

type jsonLex struct {
	Terms      []jsonTerm           `json:"terms"`
	Contexts   []string             `json:"contexts"`
	States     []jsonState          `json:"states,omitempty"`
	Compressed *jsonCompressedTable `json:"compressed,omitempty"`
}

// MarshalJSON renders Lex per spec.md §6's serialized-Lex schema, with the
// transition table left dense. Use MarshalCompressedJSON instead when the
// deployment target cares more about artifact size than a flat,
// human-readable transitions map.
func (l *Lex) MarshalJSON() ([]byte, error) {
	out := l.toJSONLex()
	for i, s := range l.states {
		js := out.States[i]
		for b, to := range s.Trans {
			if to == -1 {
				continue
			}
			if js.Transitions == nil {
				js.Transitions = map[string]int{}
			}
			js.Transitions[byteKey(b)] = to
		}
		out.States[i] = js
	}
	return json.Marshal(out)
}

// MarshalCompressedJSON renders Lex the same way as MarshalJSON, but
// row-displacement compresses the transition table (Compress) instead of
// emitting it dense. This is vartan/grammar/lexical/compiler.go's
// CompressionLevel option wired as an alternate serialization path rather
// than a Builder-time setting, since compression is purely a
// serialized-size concern -- Scan always runs against the dense in-memory
// form regardless of which JSON form produced it.
func (l *Lex) MarshalCompressedJSON() ([]byte, error) {
	out := l.toJSONLex()
	compressed, err := l.Compress()
	if err != nil {
		return nil, err
	}
	out.Compressed = &jsonCompressedTable{
		RowCount:        compressed.RowCount,
		ColCount:        compressed.ColCount,
		EmptyValue:      compressed.Table.EmptyValue,
		Entries:         compressed.Table.Entries,
		Bounds:          compressed.Table.Bounds,
		RowDisplacement: compressed.Table.RowDisplacement,
	}
	return json.Marshal(out)
}

// toJSONLex renders every Lex field MarshalJSON and MarshalCompressedJSON
// share: terms, contexts, and per-state accept ids (transitions are each
// caller's own concern).
func (l *Lex) toJSONLex() jsonLex {
	out := jsonLex{Contexts: l.Contexts}
	for _, t := range l.Terms {
		jt := jsonTerm{Name: t.Name, Pattern: t.Pattern, Entries: t.EntryContexts}
		if len(t.Attrs) > 0 {
			jt.Attrs = t.Attrs
		}
		out.Terms = append(out.Terms, jt)
	}
	for _, s := range l.states {
		js := jsonState{}
		if s.Accept != noAccept {
			v := int(s.Accept)
			js.Accepts = &v
		}
		out.States = append(out.States, js)
	}
	return out
}

func byteKey(b int) string {
	const hex = "0123456789abcdef"
	return string([]byte{hex[(b>>4)&0xf], hex[b&0xf]})
}

func parseByteKey(k string) (int, error) {
	v, err := strconv.ParseUint(k, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("lexicon: invalid transition key %q: %w", k, err)
	}
	return int(v), nil
}

// UnmarshalJSON is MarshalJSON's inverse, rebuilding the frozen DFA and
// per-terminal metadata directly from the serialized states (no regex
// recompilation needed -- the DFA transition table is already fully
// resolved in the JSON form).
func (l *Lex) UnmarshalJSON(data []byte) error {
	var in jsonLex
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	contextIdx := make(map[string]int, len(in.Contexts))
	for i, c := range in.Contexts {
		contextIdx[c] = i
	}

	terms := make([]TermInfo, len(in.Terms))
	for i, t := range in.Terms {
		terms[i] = TermInfo{
			Name:          t.Name,
			Pattern:       t.Pattern,
			Attrs:         t.Attrs,
			EntryContexts: append([]string(nil), t.Entries...),
		}
	}

	states := make([]dfaState, len(in.States))
	for i, js := range in.States {
		ds := dfaState{Accept: noAccept}
		for b := range ds.Trans {
			ds.Trans[b] = -1
		}
		if js.Accepts != nil {
			ds.Accept = TermID(*js.Accepts)
		}
		for k, to := range js.Transitions {
			b, err := parseByteKey(k)
			if err != nil {
				return err
			}
			if b < 0 || b >= len(ds.Trans) {
				return fmt.Errorf("lexicon: transition key %q out of range", k)
			}
			ds.Trans[b] = to
		}
		states[i] = ds
	}

	if in.Compressed != nil {
		if err := decompressInto(states, in.Compressed); err != nil {
			return err
		}
	}

	l.Contexts = append([]string(nil), in.Contexts...)
	l.contextIdx = contextIdx
	l.Terms = terms
	l.states = states
	return nil
}

// decompressInto rebuilds every state's dense Trans array from a
// row-displacement compressed table (compressor.RowDisplacementTable.Lookup),
// so Scan keeps running against the same [256]int-per-state representation
// regardless of which MarshalJSON variant produced the input.
func decompressInto(states []dfaState, ct *jsonCompressedTable) error {
	if ct.RowCount != len(states) {
		return fmt.Errorf("lexicon: compressed table has %d rows, want %d", ct.RowCount, len(states))
	}
	table := &compressor.RowDisplacementTable{
		OriginalRowCount: ct.RowCount,
		OriginalColCount: ct.ColCount,
		EmptyValue:       ct.EmptyValue,
		Entries:          ct.Entries,
		Bounds:           ct.Bounds,
		RowDisplacement:  ct.RowDisplacement,
	}
	for row := range states {
		for col := 0; col < ct.ColCount; col++ {
			v, err := table.Lookup(row, col)
			if err != nil {
				return fmt.Errorf("lexicon: decompress row %d col %d: %w", row, col, err)
			}
			if col < len(states[row].Trans) {
				states[row].Trans[col] = v
			}
		}
	}
	return nil
}

// CompressedTable is a serializable, space-reduced encoding of the dense
// transition table, built with package compressor's row-displacement
// scheme with -1 as the compressor's empty value (-1 already means "no
// transition" in the dense table, so no translation is needed).
type CompressedTable struct {
	RowCount int
	ColCount int
	Table    *compressor.RowDisplacementTable
}

// Compress builds a row-displacement compressed form of the transition
// table, adapting vartan/compressor's GenTransitionTable + Compress
// pipeline (vartan/grammar/lexical/compiler.go's compressTransitionTableLv2)
// to Lex's own dense [256]int-per-state representation.
func (l *Lex) Compress() (*CompressedTable, error) {
	rowCount := len(l.states)
	colCount := 256
	entries := make([]int, rowCount*colCount)
	for r, s := range l.states {
		for c, to := range s.Trans {
			entries[r*colCount+c] = to
		}
	}
	orig, err := compressor.NewOriginalTable(entries, colCount)
	if err != nil {
		return nil, err
	}
	table := compressor.NewRowDisplacementTable(-1)
	if err := table.Compress(orig); err != nil {
		return nil, err
	}
	return &CompressedTable{RowCount: rowCount, ColCount: colCount, Table: table}, nil
}
