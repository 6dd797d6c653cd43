package translation

import (
	"slices"
)

// Record pairs one HTML source document with its JSON translation document.
// A record that is not Valid must not produce completions or diagnostics.
type Record struct {
	HTMLPath string
	JSONPath string
	Valid    bool

	keys   map[string]struct{}
	sorted []string
}

// NewRecord builds a valid record holding keys.
func NewRecord(htmlPath, jsonPath string, keys []string) *Record {
	r := &Record{HTMLPath: htmlPath, JSONPath: jsonPath}
	r.SetKeys(keys)
	return r
}

// SetKeys replaces the key set and marks the record valid.
func (r *Record) SetKeys(keys []string) {
	r.keys = make(map[string]struct{}, len(keys))
	for _, k := range keys {
		r.keys[k] = struct{}{}
	}
	r.sorted = make([]string, 0, len(r.keys))
	for k := range r.keys {
		r.sorted = append(r.sorted, k)
	}
	slices.Sort(r.sorted)
	r.Valid = true
}

// Has reports whether key is defined. It ignores Valid.
func (r *Record) Has(key string) bool {
	_, ok := r.keys[key]
	return ok
}

// Keys returns the defined keys in lexical order. The slice is shared; do not modify it.
func (r *Record) Keys() []string {
	return r.sorted
}

// Index maps HTML and JSON document paths onto their Record. Both maps always
// point at the same records; Clear followed by AddRecord is the only supported
// rebuild cycle.
type Index struct {
	byHTML  map[string]*Record
	byJSON  map[string]*Record
	records []*Record
}

func NewIndex() *Index {
	return &Index{
		byHTML: make(map[string]*Record),
		byJSON: make(map[string]*Record),
	}
}

// AddRecord registers r under both of its paths. A path that is already
// registered is overwritten.
func (idx *Index) AddRecord(r *Record) {
	idx.byHTML[r.HTMLPath] = r
	idx.byJSON[r.JSONPath] = r
	idx.records = append(idx.records, r)
}

// Clear drops every record. It is safe to call on an empty index.
func (idx *Index) Clear() {
	clear(idx.byHTML)
	clear(idx.byJSON)
	idx.records = nil
}

func (idx *Index) LookupByHTML(path string) (*Record, bool) {
	r, ok := idx.byHTML[path]
	return r, ok
}

func (idx *Index) LookupByJSON(path string) (*Record, bool) {
	r, ok := idx.byJSON[path]
	return r, ok
}

// Records returns the records in insertion order.
func (idx *Index) Records() []*Record {
	return idx.records
}

func (idx *Index) Len() int {
	return len(idx.records)
}

// MarkInvalid flags the record owning jsonPath as unusable.
func (idx *Index) MarkInvalid(jsonPath string) bool {
	r, ok := idx.byJSON[jsonPath]
	if !ok {
		return false
	}
	r.Valid = false
	return true
}

// UpdateKeys replaces the keys of the record owning jsonPath and marks it valid.
func (idx *Index) UpdateKeys(jsonPath string, keys []string) bool {
	r, ok := idx.byJSON[jsonPath]
	if !ok {
		return false
	}
	r.SetKeys(keys)
	return true
}

// Refresh re-parses the JSON document text for jsonPath. On success the keys
// are replaced, on failure the record is invalidated and the parse error is
// returned. The record is nil when jsonPath is not tracked.
func (idx *Index) Refresh(jsonPath string, text []byte, markers []string) (*Record, error) {
	r, ok := idx.byJSON[jsonPath]
	if !ok {
		return nil, nil
	}
	keys, err := ParseKeys(text, markers)
	if err != nil {
		r.Valid = false
		return r, err
	}
	r.SetKeys(keys)
	return r, nil
}
