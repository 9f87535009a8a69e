package regex

// shorthandClass is one of the `\d \D \l \L \p \P \s \S \u \U \w \W`
// character-class escapes. Each maps to a concrete set of byte ranges;
// the "negative" member of a pair (\D, \L, \P, \S, \U, \W) is realized
// as a RangeNode over the same ranges with Negate set, matching the
// way alioth's regex.h documents them.
type shorthandClass struct {
	ranges []ByteRange
	negate bool
}

var digitRanges = []ByteRange{{'0', '9'}}
var lowerRanges = []ByteRange{{'a', 'z'}}
var upperRanges = []ByteRange{{'A', 'Z'}}
var wordRanges = []ByteRange{{'a', 'z'}, {'A', 'Z'}, {'0', '9'}, {'_', '_'}}
var spaceRanges = []ByteRange{{'\t', '\n'}, {'\v', '\r'}, {' ', ' '}}
var punctRanges = []ByteRange{
	{'!', '/'}, {':', '@'}, {'[', '`'}, {'{', '~'},
}

var shorthandClasses = map[byte]shorthandClass{
	'd': {digitRanges, false},
	'D': {digitRanges, true},
	'l': {lowerRanges, false},
	'L': {lowerRanges, true},
	'u': {upperRanges, false},
	'U': {upperRanges, true},
	'w': {wordRanges, false},
	'W': {wordRanges, true},
	's': {spaceRanges, false},
	'S': {spaceRanges, true},
	'p': {punctRanges, false},
	'P': {punctRanges, true},
}

// controlEscapes are the literal single-byte escapes: `\a \b \f \n \r \t`.
var controlEscapes = map[byte]byte{
	'a': 0x07,
	'b': 0x08,
	'f': 0x0c,
	'n': 0x0a,
	'r': 0x0d,
	't': 0x09,
}

// metaEscapes are regex metacharacters that, escaped, mean themselves.
var metaEscapes = map[byte]bool{
	'\\': true, '.': true, '*': true, '+': true, '?': true,
	'|': true, '(': true, ')': true, '[': true, ']': true,
	'^': true, '-': true,
}

// nodeForEscape resolves a single escape byte (the byte following `\`)
// outside of a bracket expression into a tree node. Shorthand classes
// resolve to a RangeNode; control escapes and metacharacter escapes
// resolve to a CharNode.
func nodeForEscape(c byte, offset int) (Node, error) {
	if cls, ok := shorthandClasses[c]; ok {
		return NewClass(cls.ranges, cls.negate), nil
	}
	if lit, ok := controlEscapes[c]; ok {
		return NewChar(lit), nil
	}
	if metaEscapes[c] {
		return NewChar(c), nil
	}
	return nil, newParseError(ErrInvalidEscape, offset, "unknown escape \\"+string(c))
}

// rangesForEscape resolves a shorthand-class escape used *inside* a
// bracket expression to the set of byte ranges it contributes. Negated
// shorthand classes (\D \L \P \S \U \W) are not permitted inside a
// bracket expression, since DeMorgan'ing a nested negation into the
// surrounding class's single Negate flag is not representable; such an
// escape raises ErrInvalidEscape naming the restriction.
func rangesForEscape(c byte, offset int) ([]ByteRange, error) {
	if cls, ok := shorthandClasses[c]; ok {
		if cls.negate {
			return nil, newParseError(ErrInvalidEscape, offset, "negated class \\"+string(c)+" is not allowed inside [...]")
		}
		return cls.ranges, nil
	}
	if lit, ok := controlEscapes[c]; ok {
		return []ByteRange{{lit, lit}}, nil
	}
	if metaEscapes[c] {
		return []ByteRange{{c, c}}, nil
	}
	return nil, newParseError(ErrInvalidEscape, offset, "unknown escape \\"+string(c))
}
