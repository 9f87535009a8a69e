// Package vellumerr collects the typed error kinds shared across lexicon,
// syntax, grammarlang and parser (spec.md §7's error taxonomy). Their
// build/parse operations return one of these rather than a bare string,
// so a caller can switch on Kind without parsing messages. Package regex
// reports its own *regex.ParseError, which lexicon wraps as a KindLexBuild
// Error.
//
// Grounded on vartan/error.SpecError (Cause+Row) and the ad hoc
// CompileError / SyntaxError types vartan's grammar/lexical and grammar
// packages define for the same purpose; vellumerr unifies them into one
// family with an explicit Kind enum instead of one struct per package.
package vellumerr

import (
	"fmt"
	"strings"
)

// Kind names the four families from spec.md §7.
type Kind string

const (
	KindRegexParse  Kind = "RegexParse"
	KindLexBuild    Kind = "LexBuild"
	KindSyntaxBuild Kind = "SyntaxBuild"
	KindParse       Kind = "Parse"
)

// Error is the single error type those packages return. Loc is
// zero-valued when the error has no source position (e.g. a duplicate
// terminal name caught at build time before any document exists).
type Error struct {
	Kind Kind
	Msg  string
	Loc  Location

	// Expected lists terminal names a Parse error's caller could have
	// fed instead; empty outside KindParse.
	Expected []string

	// Detail holds a pre-rendered production/state dump for SyntaxBuild
	// conflicts and is empty otherwise; it is an opaque string Vellum builds, not a generic cause
	// chain, since spec.md asks for a *rendered* dump, not a wrapped err.
	Detail string

	// Correlation is the owning parser.Parser's per-parse id (a
	// google/uuid string), letting a caller that runs many concurrent
	// parses line up one failure with the Parser.Options that produced
	// it. Empty outside package parser.
	Correlation string
}

// Location is a source position: a byte offset plus the 1-based line and
// column derived from it (spec.md's "Source document" line/column
// heuristic, computed by package ast and carried here by value so Error
// itself has no dependency on the document it came from).
type Location struct {
	Path   string
	Offset int
	Line   int
	Col    int
}

func (l Location) String() string {
	if l.Path == "" && l.Line == 0 {
		return ""
	}
	if l.Path == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Col)
	}
	return fmt.Sprintf("%s:%d:%d", l.Path, l.Line, l.Col)
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Correlation != "" {
		b.WriteString("[")
		b.WriteString(e.Correlation)
		b.WriteString("] ")
	}
	if loc := e.Loc.String(); loc != "" {
		b.WriteString(loc)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	b.WriteString(e.Msg)
	if len(e.Expected) > 0 {
		b.WriteString(" (expected one of: ")
		b.WriteString(strings.Join(e.Expected, ", "))
		b.WriteString(")")
	}
	if e.Detail != "" {
		b.WriteString("\n")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func (e *Error) At(loc Location) *Error {
	e.Loc = loc
	return e
}

func (e *Error) WithExpected(names []string) *Error {
	e.Expected = names
	return e
}

func (e *Error) WithDetail(detail string) *Error {
	e.Detail = detail
	return e
}

func (e *Error) WithCorrelation(id string) *Error {
	e.Correlation = id
	return e
}

func LexBuildf(format string, args ...interface{}) *Error {
	return New(KindLexBuild, fmt.Sprintf(format, args...))
}

func SyntaxBuildf(format string, args ...interface{}) *Error {
	return New(KindSyntaxBuild, fmt.Sprintf(format, args...))
}

func Parsef(format string, args ...interface{}) *Error {
	return New(KindParse, fmt.Sprintf(format, args...))
}
