package syntax

import (
	"encoding/json"
	"testing"
)

func TestSyntaxJSONRoundTrip(t *testing.T) {
	syn := buildExprSyntax(t)
	data, err := json.Marshal(syn)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got Syntax
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if len(got.Formulas) != len(syn.Formulas) {
		t.Fatalf("formula count = %d, want %d", len(got.Formulas), len(syn.Formulas))
	}
	if len(got.States) != len(syn.States) {
		t.Fatalf("state count = %d, want %d", len(got.States), len(syn.States))
	}
	for i, f := range syn.Formulas {
		gf := got.Formulas[i]
		if got.SymbolName(gf.Head) != syn.SymbolName(f.Head) {
			t.Fatalf("formula %d head = %q, want %q", i, got.SymbolName(gf.Head), syn.SymbolName(f.Head))
		}
		if len(gf.Body) != len(f.Body) {
			t.Fatalf("formula %d body length = %d, want %d", i, len(gf.Body), len(f.Body))
		}
		for j, bs := range f.Body {
			if got.SymbolName(gf.Body[j].Sym) != syn.SymbolName(bs.Sym) {
				t.Fatalf("formula %d body[%d] = %q, want %q", i, j, got.SymbolName(gf.Body[j].Sym), syn.SymbolName(bs.Sym))
			}
		}
	}
	for i, ps := range syn.States {
		gps := got.States[i]
		if len(gps.Shift) != len(ps.Shift) || len(gps.Reduce) != len(ps.Reduce) {
			t.Fatalf("state %d shift/reduce size mismatch: got %d/%d want %d/%d",
				i, len(gps.Shift), len(gps.Reduce), len(ps.Shift), len(ps.Reduce))
		}
		for sym, to := range ps.Shift {
			name := syn.SymbolName(sym)
			gotSym, ok := got.LookupSymbol(name)
			if !ok {
				t.Fatalf("state %d: reloaded syntax missing symbol %q", i, name)
			}
			if gps.Shift[gotSym] != to {
				t.Fatalf("state %d: shift[%q] = %d, want %d", i, name, gps.Shift[gotSym], to)
			}
		}
	}

	data2, err := json.Marshal(&got)
	if err != nil {
		t.Fatalf("re-Marshal: %v", err)
	}
	if string(data) != string(data2) {
		t.Fatalf("JSON not stable across round-trip:\nfirst:  %s\nsecond: %s", data, data2)
	}
}

func TestSyntaxCompressedJSONRoundTrip(t *testing.T) {
	syn := buildExprSyntax(t)
	data, err := syn.MarshalCompressedJSON()
	if err != nil {
		t.Fatalf("MarshalCompressedJSON: %v", err)
	}

	var got Syntax
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(got.Formulas) != len(syn.Formulas) {
		t.Fatalf("formula count = %d, want %d", len(got.Formulas), len(syn.Formulas))
	}
	if len(got.States) != len(syn.States) {
		t.Fatalf("state count = %d, want %d", len(got.States), len(syn.States))
	}
}
