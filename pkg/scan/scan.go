// Package scan holds the byte-level primitives used to reason about placeholder
// text on a single line. Every other package goes through these helpers for
// character classification; none of them panic on out-of-range positions.
package scan

import "strings"

// Direction selects which way a scan or match walks from its anchor position.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

func at(line string, pos int) (byte, bool) {
	if pos < 0 || pos >= len(line) {
		return 0, false
	}
	return line[pos], true
}

// FirstNonSpace returns the index of the first non-space byte at or after pos.
// The result may equal len(line) (or pos, if pos is already out of range);
// callers treat out-of-range results as "no match".
func FirstNonSpace(line string, pos int) int {
	for {
		c, ok := at(line, pos)
		if !ok || c != ' ' {
			return pos
		}
		pos++
	}
}

// LastNonSpace returns the index of the last non-space byte at or before pos.
// The result may be -1.
func LastNonSpace(line string, pos int) int {
	for {
		c, ok := at(line, pos)
		if !ok || c != ' ' {
			return pos
		}
		pos--
	}
}

// MatchAt reports whether pattern starts at pos (Forward) or ends at pos,
// inclusive (Backward). Missing characters count as a mismatch.
func MatchAt(pattern, line string, pos int, dir Direction) bool {
	start := pos
	if dir == Backward {
		start = pos - len(pattern) + 1
	}
	if start < 0 || start+len(pattern) > len(line) {
		return false
	}
	return line[start:start+len(pattern)] == pattern
}

// IsKeyChar reports whether c may appear inside a translation key: ASCII
// letters, digits, '.' and '_'.
func IsKeyChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '.', c == '_':
		return true
	}
	return false
}

func isTyping(c byte, extra string) bool {
	return IsKeyChar(c) || (extra != "" && strings.IndexByte(extra, c) >= 0)
}

// ScanKeyBoundary extends from pos over key characters (plus any byte in extra)
// and returns the boundary. Forward returns the first index at or after pos
// that is not a key character. Backward returns the start index of the run of
// key characters that ends just before pos, so the run is line[result:pos].
func ScanKeyBoundary(line string, pos int, dir Direction, extra string) int {
	if dir == Backward {
		for {
			c, ok := at(line, pos-1)
			if !ok || !isTyping(c, extra) {
				return pos
			}
			pos--
		}
	}
	for {
		c, ok := at(line, pos)
		if !ok || !isTyping(c, extra) {
			return pos
		}
		pos++
	}
}

// TypedBefore returns the run of key characters immediately preceding col.
func TypedBefore(line string, col int, extra string) string {
	if col > len(line) {
		col = len(line)
	}
	if col <= 0 {
		return ""
	}
	return line[ScanKeyBoundary(line, col, Backward, extra):col]
}

// CountNewLines counts the '\n' bytes in text.
func CountNewLines(text string) int {
	return strings.Count(text, "\n")
}
