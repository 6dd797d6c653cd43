package completion

import (
	"github.com/walteh/html-translator/pkg/placeholder"
	"github.com/walteh/html-translator/pkg/scan"
)

// Mode says where a cursor sits relative to a placeholder.
type Mode int

const (
	// ModeNone means the cursor is not in a place where completions make sense.
	ModeNone Mode = iota
	// ModeInsideToken means the cursor is inside a key, before the closing delimiter.
	ModeInsideToken
	// ModeAtOpening means the cursor sits right after an opening delimiter.
	ModeAtOpening
)

func (m Mode) String() string {
	switch m {
	case ModeInsideToken:
		return "inside-token"
	case ModeAtOpening:
		return "at-opening"
	default:
		return "none"
	}
}

// Context holds the cursor classification for one completion request.
type Context struct {
	Mode Mode
	// Prefix is the key text typed before the cursor (ModeInsideToken only).
	Prefix string
	// PrefixStart is the byte column where Prefix begins.
	PrefixStart int
	// Col is the cursor byte column.
	Col int
}

// NewContext classifies the cursor at byte column col of line.
//
// The closing delimiter is probed first: if it follows the cursor (after
// spaces) the cursor is inside a key, and the opening delimiter must precede
// the typed key run. Otherwise the cursor only qualifies when an opening
// delimiter ends right before it.
func NewContext(line string, col int, d placeholder.Delimiters) Context {
	ctx := Context{Col: col}
	if col < 0 || col > len(line) || d.Open == "" || d.Close == "" {
		return ctx
	}

	if scan.MatchAt(d.Close, line, scan.FirstNonSpace(line, col), scan.Forward) {
		start := scan.ScanKeyBoundary(line, col, scan.Backward, "")
		if !scan.MatchAt(d.Open, line, scan.LastNonSpace(line, start-1), scan.Backward) {
			return ctx
		}
		ctx.Mode = ModeInsideToken
		ctx.Prefix = line[start:col]
		ctx.PrefixStart = start
		return ctx
	}

	if scan.MatchAt(d.Open, line, col-1, scan.Backward) {
		ctx.Mode = ModeAtOpening
	}
	return ctx
}
