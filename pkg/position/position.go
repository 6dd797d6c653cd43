// Package position converts between byte offsets, line/column places and the
// UTF-16 columns editors speak. All Place values are zero based and, unless a
// function says otherwise, Character is a byte column.
package position

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

type Place struct {
	Line      int
	Character int
}

func (p Place) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Character)
}

// Before reports whether p sorts strictly before o.
func (p Place) Before(o Place) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Character < o.Character
}

type Range struct {
	Start Place
	End   Place
}

func (r Range) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// Lines splits text on '\n', dropping a trailing '\r' from every line. An empty
// text is one empty line.
func Lines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Offset returns the byte offset of p in text. Lines past the end clamp to
// len(text); columns past the end of their line clamp to the line end.
func Offset(text string, p Place) int {
	if p.Line < 0 {
		return 0
	}
	off := 0
	for i := 0; i < p.Line; i++ {
		nl := strings.IndexByte(text[off:], '\n')
		if nl < 0 {
			return len(text)
		}
		off += nl + 1
	}

	end := strings.IndexByte(text[off:], '\n')
	if end < 0 {
		end = len(text)
	} else {
		end += off
	}

	col := p.Character
	if col < 0 {
		col = 0
	}
	if off+col > end {
		return end
	}
	return off + col
}

// PlaceOf is the inverse of Offset.
func PlaceOf(text string, offset int) Place {
	if offset > len(text) {
		offset = len(text)
	}
	if offset <= 0 {
		return Place{}
	}
	line := strings.Count(text[:offset], "\n")
	lastNewline := strings.LastIndexByte(text[:offset], '\n')
	return Place{Line: line, Character: offset - lastNewline - 1}
}

// ApplyChange replaces the text covered by r with newText.
func ApplyChange(text string, r Range, newText string) string {
	start := Offset(text, r.Start)
	end := Offset(text, r.End)
	if end < start {
		start, end = end, start
	}
	return text[:start] + newText + text[end:]
}

// ByteToUTF16 converts a byte column on line into a UTF-16 code unit column.
func ByteToUTF16(line string, col int) int {
	if col > len(line) {
		col = len(line)
	}
	n := 0
	for i, r := range line {
		if i >= col {
			break
		}
		n += utf16.RuneLen(r)
	}
	return n
}

// UTF16ToByte converts a UTF-16 code unit column on line into a byte column.
// A column landing inside a surrogate pair resolves to the start of its rune.
func UTF16ToByte(line string, col16 int) int {
	n := 0
	for i, r := range line {
		w := utf16.RuneLen(r)
		if w < 0 {
			w = 1
		}
		if n+w > col16 {
			return i
		}
		n += w
	}
	return len(line)
}

// PlaceToUTF16 converts a byte Place into a UTF-16 Place using lines.
func PlaceToUTF16(lines []string, p Place) Place {
	if p.Line < 0 || p.Line >= len(lines) {
		return p
	}
	return Place{Line: p.Line, Character: ByteToUTF16(lines[p.Line], p.Character)}
}

// PlaceFromUTF16 converts a UTF-16 Place into a byte Place using lines.
func PlaceFromUTF16(lines []string, p Place) Place {
	if p.Line < 0 || p.Line >= len(lines) {
		return p
	}
	return Place{Line: p.Line, Character: UTF16ToByte(lines[p.Line], p.Character)}
}

// RangeFromUTF16 converts both ends of a UTF-16 range into byte places.
func RangeFromUTF16(lines []string, r Range) Range {
	return Range{Start: PlaceFromUTF16(lines, r.Start), End: PlaceFromUTF16(lines, r.End)}
}

// RangeToUTF16 converts both ends of a byte range into UTF-16 places.
func RangeToUTF16(lines []string, r Range) Range {
	return Range{Start: PlaceToUTF16(lines, r.Start), End: PlaceToUTF16(lines, r.End)}
}
