// Package translation tracks which dotted keys each JSON translation document
// defines, and which HTML source document each of those JSON documents serves.
package translation

import (
	"bytes"
	"encoding/json"
	"slices"

	"gitlab.com/tozd/go/errors"
)

var (
	ErrNotObject = errors.Base("translation document is not an object")
	ErrNoKeys    = errors.Base("translation document defines no keys")
)

// DefaultMarkers are the language-variant property names that turn an object
// into a translatable leaf.
var DefaultMarkers = []string{"en", "it"}

// Tree is a decoded translation document. Values are either scalars, slices
// or nested Trees.
type Tree map[string]any

// isLeaf reports whether a nested object names a translatable entry: it is
// empty, or it carries one of the marker properties.
func (t Tree) isLeaf(markers []string) bool {
	if len(t) == 0 {
		return true
	}
	for _, m := range markers {
		if _, ok := t[m]; ok {
			return true
		}
	}
	return false
}

// Leaves walks every nested object and returns the dotted path of each leaf.
// Non-object values are ignored.
func (t Tree) Leaves(markers []string) []string {
	var res []string
	t.collect("", markers, &res)
	slices.Sort(res)
	return res
}

func (t Tree) collect(prefix string, markers []string, out *[]string) {
	for key, value := range t {
		child, ok := asTree(value)
		if !ok {
			continue
		}
		if child.isLeaf(markers) {
			*out = append(*out, prefix+key)
			continue
		}
		child.collect(prefix+key+".", markers, out)
	}
}

func asTree(v any) (Tree, bool) {
	switch tv := v.(type) {
	case Tree:
		return tv, true
	case map[string]any:
		return Tree(tv), true
	}
	return nil, false
}

// ParseKeys decodes text and returns its sorted leaf keys. It fails when the
// text is not valid JSON, the root is not an object, or no key is found.
// A nil markers slice means DefaultMarkers.
func ParseKeys(text []byte, markers []string) ([]string, error) {
	if markers == nil {
		markers = DefaultMarkers
	}

	dec := json.NewDecoder(bytes.NewReader(text))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, errors.Errorf("decoding translation document: %w", err)
	}
	if dec.More() {
		return nil, errors.Errorf("decoding translation document: unexpected data at offset %d", dec.InputOffset())
	}

	tree, ok := asTree(root)
	if !ok {
		return nil, errors.WithStack(ErrNotObject)
	}

	keys := tree.Leaves(markers)
	if len(keys) == 0 {
		return nil, errors.WithStack(ErrNoKeys)
	}
	return keys, nil
}
