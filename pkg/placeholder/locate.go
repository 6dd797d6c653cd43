// Package placeholder finds delimiter-bound key tokens inside a single line of
// text. Placeholders never span lines, so a line is the unit of work.
package placeholder

import (
	"strings"

	"github.com/walteh/html-translator/pkg/scan"
)

// Token is one placeholder occurrence on a line. Start and Stop are byte
// columns of the inner key text, Stop exclusive.
type Token struct {
	Start int
	Stop  int
	Inner string
	Empty bool
}

// Locate returns the placeholders on line in left-to-right order.
//
// For each opening delimiter: skip spaces, take the run of key characters,
// skip spaces, then require the closing delimiter. When the closing delimiter
// is missing the opening one is dropped and the search resumes right after
// it, so adjacent or overlapping openers are each considered.
func Locate(line string, d Delimiters) []Token {
	if d.Open == "" || d.Close == "" {
		return nil
	}

	var tokens []Token
	site := strings.Index(line, d.Open)
	for site != -1 {
		next := site + len(d.Open)
		start := scan.FirstNonSpace(line, next)
		stop := scan.ScanKeyBoundary(line, start, scan.Forward, "")
		end := scan.FirstNonSpace(line, stop)
		if scan.MatchAt(d.Close, line, end, scan.Forward) {
			tokens = append(tokens, Token{
				Start: start,
				Stop:  stop,
				Inner: line[start:stop],
				Empty: start == stop,
			})
			next = end + len(d.Close)
		} else {
			next = site + 1
		}
		if next > len(line) {
			break
		}
		idx := strings.Index(line[next:], d.Open)
		if idx == -1 {
			break
		}
		site = next + idx
	}
	return tokens
}
