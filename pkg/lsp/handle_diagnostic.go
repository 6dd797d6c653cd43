package lsp

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/walteh/html-translator/pkg/diagnostic"
	"github.com/walteh/html-translator/pkg/lsp/protocol"
	"github.com/walteh/html-translator/pkg/position"
)

func (s *Server) Diagnostic(ctx context.Context, params *protocol.DocumentDiagnosticParams) (*protocol.DocumentDiagnosticReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := &protocol.DocumentDiagnosticReport{
		Kind:     protocol.DiagnosticFull,
		ResultID: uuid.NewString(),
		Items:    []protocol.Diagnostic{},
	}

	doc, ok := s.documents.Get(params.TextDocument.URI)
	if !ok {
		return report, nil
	}

	diags, ok := s.engine.Diagnostics(doc.Path)
	if !ok {
		diags = s.engine.ProvideDiagnostics(doc.Path, doc.Lines())
	}
	report.Items = toProtocolDiagnostics(diags, doc.Lines())
	return report, nil
}

// CodeAction offers replacements for keys missing from the translations.
func (s *Server) CodeAction(ctx context.Context, params *protocol.CodeActionParams) ([]protocol.CodeAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	var actions []protocol.CodeAction
	for _, pd := range params.Context.Diagnostics {
		if pd.Source != diagnostic.Source || pd.Code != int(diagnostic.KindNonExistent) || pd.Range.Start.Line != pd.Range.End.Line {
			continue
		}

		lineIndex := int(pd.Range.Start.Line)
		line := doc.Line(lineIndex)
		start := position.UTF16ToByte(line, int(pd.Range.Start.Character))
		stop := position.UTF16ToByte(line, int(pd.Range.End.Character))
		if start >= stop {
			continue
		}

		d := diagnostic.Diagnostic{
			Line:  lineIndex,
			Start: start,
			Stop:  stop,
			Kind:  diagnostic.KindNonExistent,
			Key:   line[start:stop],
		}

		for i, key := range s.engine.QuickFixes(doc.Path, d) {
			actions = append(actions, protocol.CodeAction{
				Title:       fmt.Sprintf("Replace with %q", key),
				Kind:        protocol.QuickFix,
				Diagnostics: []protocol.Diagnostic{pd},
				IsPreferred: i == 0,
				Edit: &protocol.WorkspaceEdit{
					Changes: map[protocol.DocumentURI][]protocol.TextEdit{
						doc.URI: {{Range: pd.Range, NewText: key}},
					},
				},
			})
		}
	}

	return actions, nil
}
