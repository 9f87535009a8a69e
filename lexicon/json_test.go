package lexicon

import (
	"encoding/json"
	"testing"
)

func TestLexJSONRoundTrip(t *testing.T) {
	lex := buildSimple(t)
	data, err := json.Marshal(lex)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got Lex
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	ctx := got.ContextID("test")
	if ctx < 0 {
		t.Fatal("reloaded Lex missing its default context")
	}
	doc := []byte("abc123 x")
	id, n := got.Scan(doc, 0, ctx)
	if n != 6 || got.TermName(id) != "id" {
		t.Fatalf("reloaded Lex scanned (%v, %d), want (id, 6)", got.TermName(id), n)
	}

	data2, err := json.Marshal(&got)
	if err != nil {
		t.Fatalf("re-Marshal: %v", err)
	}
	if string(data) != string(data2) {
		t.Fatalf("JSON not stable across round-trip:\nfirst:  %s\nsecond: %s", data, data2)
	}
}

func TestLexCompressedJSONRoundTrip(t *testing.T) {
	lex := buildSimple(t)
	data, err := lex.MarshalCompressedJSON()
	if err != nil {
		t.Fatalf("MarshalCompressedJSON: %v", err)
	}

	var got Lex
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	ctx := got.ContextID("test")
	if ctx < 0 {
		t.Fatal("reloaded compressed Lex missing its default context")
	}
	doc := []byte("abc123 x")
	id, n := got.Scan(doc, 0, ctx)
	if n != 6 || got.TermName(id) != "id" {
		t.Fatalf("reloaded compressed Lex scanned (%v, %d), want (id, 6)", got.TermName(id), n)
	}

	wantID, wantN := lex.Scan(doc, 0, lex.ContextID("test"))
	if id != wantID || n != wantN {
		t.Fatalf("compressed Scan = (%v, %d), want (%v, %d) matching the uncompressed Lex", got.TermName(id), n, lex.TermName(wantID), wantN)
	}
}
