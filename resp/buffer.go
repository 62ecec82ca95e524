package resp

import (
	"bytes"
)

// minLineLen is a tag byte followed by CRLF.
const minLineLen = 1 + crlfLen

// findLineEnd returns the index of the CR of the first CRLF at or after start,
// or -1 if the terminator has not arrived yet.
func findLineEnd(p []byte, start int) int {
	if start >= len(p) {
		return -1
	}
	i := bytes.Index(p[start:], []byte(CRLF))
	if i < 0 {
		return -1
	}
	return start + i
}

// lineEnd checks that p starts with tag and locates the end of its first line.
func lineEnd(p []byte, tag byte) (int, error) {
	if len(p) < minLineLen {
		return 0, ErrIncomplete
	}
	if p[0] != tag {
		return 0, malformed("expected %q but got %q", tag, p[0])
	}
	end := findLineEnd(p, 1)
	if end < 0 {
		return 0, ErrIncomplete
	}
	return end, nil
}

// literal matches an exact byte sequence at the front of p and returns its
// length. A short p is ErrIncomplete only while it is still a prefix of lit, so
// "*0\r\n" is never mistaken for an unfinished "*-1\r\n".
func literal(p []byte, lit string) (int, error) {
	if len(p) < len(lit) {
		if lit[:len(p)] == string(p) {
			return 0, ErrIncomplete
		}
		return 0, malformed("expected %q", lit)
	}
	if string(p[:len(lit)]) != lit {
		return 0, malformed("expected %q", lit)
	}
	return len(lit), nil
}
