// Package completion proposes translation keys, or a placeholder snippet, for
// a cursor position on a line of an HTML document.
package completion

import (
	"strings"

	"github.com/walteh/html-translator/pkg/placeholder"
	"github.com/walteh/html-translator/pkg/translation"
)

// Kind distinguishes key proposals from the snippet proposal.
type Kind int

const (
	KindKey Kind = iota
	KindSnippet
)

// SnippetLabel is the label of the placeholder snippet item.
const SnippetLabel = "translated item"

// Item is one proposal. For key items Label is what the user sees (the part
// of the key after the last '.' already typed) while Key is the full key that
// gets accepted. ReplaceStart and ReplaceStop are the byte columns of the text
// the item replaces on the cursor line.
type Item struct {
	Label        string
	Key          string
	InsertText   string
	Kind         Kind
	ReplaceStart int
	ReplaceStop  int
}

// Completions is a non-empty set of proposals. A nil *Completions means there
// is nothing to offer.
type Completions struct {
	Items []Item
}

// Suggest returns the proposals for the cursor at byte column col of line.
// A nil or invalid record yields nil.
func Suggest(rec *translation.Record, line string, col int, d placeholder.Delimiters) *Completions {
	if rec == nil || !rec.Valid {
		return nil
	}

	cctx := NewContext(line, col, d)
	switch cctx.Mode {
	case ModeInsideToken:
		return suggestKeys(rec, cctx)
	case ModeAtOpening:
		return &Completions{Items: []Item{{
			Label:        SnippetLabel,
			InsertText:   d.Snippet(),
			Kind:         KindSnippet,
			ReplaceStart: col,
			ReplaceStop:  col,
		}}}
	}
	return nil
}

func suggestKeys(rec *translation.Record, cctx Context) *Completions {
	dot := strings.LastIndexByte(cctx.Prefix, '.')

	var items []Item
	for _, key := range rec.Keys() {
		if !strings.HasPrefix(key, cctx.Prefix) {
			continue
		}
		items = append(items, Item{
			Label:        key[dot+1:],
			Key:          key,
			InsertText:   key,
			Kind:         KindKey,
			ReplaceStart: cctx.PrefixStart,
			ReplaceStop:  cctx.Col,
		})
	}

	if len(items) == 0 {
		return nil
	}
	return &Completions{Items: items}
}

// Labels returns the displayed labels, in order.
func (c *Completions) Labels() []string {
	if c == nil {
		return nil
	}
	res := make([]string, len(c.Items))
	for i, it := range c.Items {
		res[i] = it.Label
	}
	return res
}

// Keys returns the accepted keys of the key items, in order.
func (c *Completions) Keys() []string {
	if c == nil {
		return nil
	}
	var res []string
	for _, it := range c.Items {
		if it.Kind == KindKey {
			res = append(res, it.Key)
		}
	}
	return res
}
