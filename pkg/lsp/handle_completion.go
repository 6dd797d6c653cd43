package lsp

import (
	"context"

	"github.com/walteh/html-translator/pkg/completion"
	"github.com/walteh/html-translator/pkg/lsp/protocol"
	"github.com/walteh/html-translator/pkg/position"
)

func (s *Server) Completion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	lineIndex := int(params.Position.Line)
	line := doc.Line(lineIndex)
	col := position.UTF16ToByte(line, int(params.Position.Character))

	comps := s.engine.ProvideCompletions(doc.Path, line, col)
	if comps == nil {
		return nil, nil
	}

	items := make([]protocol.CompletionItem, 0, len(comps.Items))
	for _, it := range comps.Items {
		rng := protocol.Range{
			Start: protocol.Position{Line: uint32(lineIndex), Character: uint32(position.ByteToUTF16(line, it.ReplaceStart))},
			End:   protocol.Position{Line: uint32(lineIndex), Character: uint32(position.ByteToUTF16(line, it.ReplaceStop))},
		}

		switch it.Kind {
		case completion.KindSnippet:
			items = append(items, protocol.CompletionItem{
				Label:            it.Label,
				Kind:             protocol.CompletionItemKindSnippet,
				InsertText:       it.InsertText,
				InsertTextFormat: protocol.SnippetTextFormat,
			})
		default:
			// clients filter on the replaced text, which holds the full
			// typed prefix
			items = append(items, protocol.CompletionItem{
				Label:      it.Label,
				Kind:       protocol.CompletionItemKindEnumMember,
				Detail:     it.Key,
				FilterText: it.Key,
				SortText:   it.Key,
				TextEdit:   &protocol.TextEdit{Range: rng, NewText: it.InsertText},
			})
		}
	}

	return &protocol.CompletionList{Items: items}, nil
}
