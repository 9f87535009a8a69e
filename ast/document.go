// Package ast is the attributed AST model, component F of the
// parser-generator pipeline (spec.md §3 "AST nodes", §4.F). The node
// shapes (Term/Ntrm/Root, a static `attributes: map[string][]Node]`, the
// `attr = "..."` unfold-merge rule) are grounded on alioth's static AST
// side (original_source/include/alioth/ast.h), since vartan's own driver
// builds Go-codegen semantic-action trees rather than a generic
// attributed tree; alioth's *reactive* attribute.h (watchers/Eval/Notify)
// is explicitly out of scope (spec.md §9) -- this package only ever
// computes attributes once, at reduction time, as plain data.
package ast

import "github.com/vellumlang/vellum/vellumerr"

// Document is a source document: a byte string plus an optional path
// used only for diagnostics (spec.md §6's "Source document").
type Document struct {
	Path  string
	Bytes []byte
}

func NewDocument(path string, data []byte) *Document {
	return &Document{Path: path, Bytes: data}
}

// Pos is a 1-based line/column position.
type Pos struct {
	Line int
	Col  int
}

// LineCol derives the line/column of a byte offset by scanning for `\n`
// and applying the UTF-8 leading-byte heuristic spec.md §6 describes:
// bytes whose top two bits are `10` are continuation bytes and do not
// advance the column; every other byte (ASCII or a multibyte sequence's
// leading byte) does. This mirrors vartan's driver/lexer/lexer.go read(),
// which counts columns in code points rather than bytes the same way.
func (d *Document) LineCol(offset int) Pos {
	line, col := 1, 1
	if offset > len(d.Bytes) {
		offset = len(d.Bytes)
	}
	for i := 0; i < offset; i++ {
		b := d.Bytes[i]
		if b == '\n' {
			line++
			col = 1
			continue
		}
		if b&0xC0 == 0x80 {
			continue // UTF-8 continuation byte: same code point, no column advance
		}
		col++
	}
	return Pos{Line: line, Col: col}
}

// Location renders a vellumerr.Location for a byte offset in this
// document, for use in Parse/Build error diagnostics.
func (d *Document) Location(offset int) vellumerr.Location {
	p := d.LineCol(offset)
	return vellumerr.Location{Path: d.Path, Offset: offset, Line: p.Line, Col: p.Col}
}
