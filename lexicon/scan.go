package lexicon

// Scan performs component C's inline scanning operation: starting at
// doc[offset] in the given context, it scans forward longest-match and
// returns the terminal matched and the number of bytes consumed. EOF is
// returned with length 0 once offset reaches the end of doc; if no
// transition exists for the very next byte (or the context itself has no
// start state), ErrorTerm is returned with length 1, mirroring vartan's
// driver/lexer/lexer.go next(): keep advancing while a transition
// exists, remember the last state that accepted, and revert to it when
// the run dies.
func (l *Lex) Scan(doc []byte, offset int, contextID int) (TermID, int) {
	if offset >= len(doc) {
		return EOF, 0
	}
	if contextID < 0 || contextID >= len(l.Contexts) {
		return ErrorTerm, 1
	}
	cur := l.states[0].Trans[contextID]
	if cur == -1 {
		return ErrorTerm, 1
	}

	lastAccept := noAccept
	lastLen := 0
	i := offset
	for i < len(doc) {
		nxt := l.states[cur].Trans[doc[i]]
		if nxt == -1 {
			break
		}
		cur = nxt
		i++
		if l.states[cur].Accept != noAccept {
			lastAccept = l.states[cur].Accept
			lastLen = i - offset
		}
	}
	if lastLen > 0 {
		return lastAccept, lastLen
	}
	return ErrorTerm, 1
}
