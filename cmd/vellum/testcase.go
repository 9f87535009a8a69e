package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
)

// TestCase is one vellum-test fixture: a free-text description, the
// source to parse, and the expected tree (spec.md's test tooling has no
// analogue; this format is grounded on vartan/spec/test.TestCase, which
// splits a file into description/source/tree parts the same way).
type TestCase struct {
	Description string
	Source      []byte
	Output      *Tree
}

var reDelim = regexp.MustCompile(`^\s*---+\s*$`)

// ParseTestCase reads a three-part, "---"-delimited fixture file: a free
// text description, the source to parse, and an expected tree literal
// (see parseTreeLiteral).
func ParseTestCase(r io.Reader) (*TestCase, error) {
	parts, err := splitIntoParts(r)
	if err != nil {
		return nil, err
	}
	if len(parts) != 3 {
		return nil, fmt.Errorf("a test case has exactly 3 '---'-delimited parts (description, source, tree); found %d", len(parts))
	}

	tree, err := parseTreeLiteral(parts[2])
	if err != nil {
		return nil, fmt.Errorf("malformed expected tree: %w", err)
	}

	return &TestCase{
		Description: string(parts[0]),
		Source:      parts[1],
		Output:      tree,
	}, nil
}

func splitIntoParts(r io.Reader) ([][]byte, error) {
	var parts [][]byte
	s := bufio.NewScanner(r)
	for {
		buf, ok, err := readPart(s)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		parts = append(parts, buf)
	}
	return parts, s.Err()
}

func readPart(s *bufio.Scanner) ([]byte, bool, error) {
	if !s.Scan() {
		return nil, false, s.Err()
	}
	var buf bytes.Buffer
	line := s.Bytes()
	if reDelim.Match(line) {
		return []byte{}, true, nil
	}
	buf.Write(line)
	for s.Scan() {
		line := s.Bytes()
		if reDelim.Match(line) {
			return buf.Bytes(), true, nil
		}
		buf.WriteByte('\n')
		buf.Write(line)
	}
	if err := s.Err(); err != nil {
		return nil, false, err
	}
	return buf.Bytes(), true, nil
}

// parseTreeLiteral parses the expected-tree mini-notation:
//
//	tree    := "(" ident ( tree* | string )? ")"
//	ident   := a run of non-space, non-paren, non-quote bytes
//	string  := a Go double-quoted string literal
//
// e.g. (block (stmt (num "1")) (stmt (num "2"))). There is no vartan
// analogue for this exact grammar (vartan/spec/test's equivalent is
// itself a compiled grammar, generated by a go:generate step this
// exercise cannot run), so this reader is hand-written directly against
// the bytes rather than grounded on a library; see DESIGN.md for why no
// third-party parsing library was reached for here.
func parseTreeLiteral(src []byte) (*Tree, error) {
	p := &treeLitParser{src: src}
	p.skipSpace()
	t, err := p.parseTree()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("unexpected trailing content at offset %d", p.pos)
	}
	return t, nil
}

type treeLitParser struct {
	src []byte
	pos int
}

func (p *treeLitParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return
		}
	}
}

func (p *treeLitParser) parseTree() (*Tree, error) {
	if p.pos >= len(p.src) || p.src[p.pos] != '(' {
		return nil, fmt.Errorf("expected '(' at offset %d", p.pos)
	}
	p.pos++
	p.skipSpace()

	kind, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	t := &Tree{Kind: kind}

	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '"' {
		lexeme, err := p.parseString()
		if err != nil {
			return nil, err
		}
		t.Lexeme = lexeme
		p.skipSpace()
	} else {
		for p.pos < len(p.src) && p.src[p.pos] == '(' {
			child, err := p.parseTree()
			if err != nil {
				return nil, err
			}
			t.Children = append(t.Children, child)
			p.skipSpace()
		}
	}

	if p.pos >= len(p.src) || p.src[p.pos] != ')' {
		return nil, fmt.Errorf("expected ')' at offset %d", p.pos)
	}
	p.pos++
	return t, nil
}

func (p *treeLitParser) parseIdent() (string, error) {
	start := p.pos
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\r', '\n', '(', ')', '"':
			goto done
		}
		p.pos++
	}
done:
	if p.pos == start {
		return "", fmt.Errorf("expected an identifier at offset %d", start)
	}
	return string(p.src[start:p.pos]), nil
}

func (p *treeLitParser) parseString() (string, error) {
	start := p.pos
	p.pos++ // opening quote
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '\\':
			p.pos += 2
			continue
		case '"':
			p.pos++
			return strconv.Unquote(string(p.src[start:p.pos]))
		}
		p.pos++
	}
	return "", fmt.Errorf("unterminated string literal at offset %d", start)
}
