package diagnostic

import "slices"

// Collection is the diagnostic sink: the last computed set per document. It
// is not safe for concurrent use.
type Collection struct {
	byID map[string][]Diagnostic
}

func NewCollection() *Collection {
	return &Collection{byID: map[string][]Diagnostic{}}
}

// Get returns the stored set. ok is false when the document has no entry,
// which is different from an entry with no diagnostics.
func (c *Collection) Get(id string) (diags []Diagnostic, ok bool) {
	diags, ok = c.byID[id]
	return diags, ok
}

// Set stores diags for id. A nil diags stores an empty, known set.
func (c *Collection) Set(id string, diags []Diagnostic) {
	if diags == nil {
		diags = []Diagnostic{}
	}
	c.byID[id] = diags
}

func (c *Collection) Delete(id string) {
	delete(c.byID, id)
}

func (c *Collection) Clear() {
	clear(c.byID)
}

// IDs returns the documents with an entry, sorted.
func (c *Collection) IDs() []string {
	ids := make([]string, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
