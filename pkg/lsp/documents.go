package lsp

import (
	"slices"
	"strings"
	"sync"

	"github.com/walteh/html-translator/pkg/lsp/protocol"
	"github.com/walteh/html-translator/pkg/position"
)

// Document is an open text document as last reported by the client.
type Document struct {
	URI        protocol.DocumentURI
	Path       string
	LanguageID string
	Version    int32
	Content    string
}

func (d *Document) Lines() []string {
	return position.Lines(d.Content)
}

// Line returns line i of the document, or "" past its end.
func (d *Document) Line(i int) string {
	lines := d.Lines()
	if i < 0 || i >= len(lines) {
		return ""
	}
	return lines[i]
}

// DocumentManager stores open documents keyed by filesystem path.
type DocumentManager struct {
	store *sync.Map // map[string]*Document
}

func NewDocumentManager() *DocumentManager {
	return &DocumentManager{
		store: &sync.Map{},
	}
}

func (m *DocumentManager) Get(uri protocol.DocumentURI) (*Document, bool) {
	content, ok := m.store.Load(uri.Path())
	if !ok {
		return nil, false
	}
	doc, ok := content.(*Document)
	return doc, ok
}

func (m *DocumentManager) Store(doc *Document) {
	m.store.Store(doc.Path, doc)
}

func (m *DocumentManager) Delete(uri protocol.DocumentURI) {
	m.store.Delete(uri.Path())
}

// All returns the open documents ordered by path.
func (m *DocumentManager) All() []*Document {
	var docs []*Document
	m.store.Range(func(_, v any) bool {
		docs = append(docs, v.(*Document))
		return true
	})
	slices.SortFunc(docs, func(a, b *Document) int {
		return strings.Compare(a.Path, b.Path)
	})
	return docs
}
