package lsp

import (
	"context"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/html-translator/pkg/config"
	"github.com/walteh/html-translator/pkg/diagnostic"
	"github.com/walteh/html-translator/pkg/lsp/protocol"
	"github.com/walteh/html-translator/pkg/position"
)

func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := params.TextDocument.URI.Path()
	if !s.handles(path, params.TextDocument.LanguageID) {
		return nil
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("document opened")

	doc := &Document{
		URI:        params.TextDocument.URI,
		Path:       path,
		LanguageID: params.TextDocument.LanguageID,
		Version:    params.TextDocument.Version,
		Content:    params.TextDocument.Text,
	}
	s.documents.Store(doc)

	return s.rediagnose(ctx, doc)
}

func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents.Get(params.TextDocument.URI)
	if !ok || len(params.ContentChanges) == 0 {
		return nil
	}

	doc.Version = params.TextDocument.Version

	var edit diagnostic.Edit
	full := false
	for _, change := range params.ContentChanges {
		if change.Range == nil {
			doc.Content = change.Text
			full = true
			continue
		}
		r := position.RangeFromUTF16(doc.Lines(), fromProtocolRange(*change.Range))
		doc.Content = position.ApplyChange(doc.Content, r, change.Text)
		edit.Changes = append(edit.Changes, diagnostic.Change{Range: r, Text: change.Text})
	}

	lines := doc.Lines()

	var diags []diagnostic.Diagnostic
	if full || !diagnostic.ChangesDescending(edit) {
		diags = s.engine.ProvideDiagnostics(doc.Path, lines)
	} else {
		diags = s.engine.UpdateDiagnostics(doc.Path, edit, lines)
	}

	return s.publish(ctx, doc, diags, false)
}

func (s *Server) DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := params.TextDocument.URI.Path()
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("document saved")

	if s.isConfigFile(path) {
		s.reload(ctx)
		return nil
	}

	var text string
	if params.Text != nil {
		text = *params.Text
	} else {
		data, err := afero.ReadFile(s.fs, path)
		if err != nil {
			return errors.Errorf("reading saved document: %w", err)
		}
		text = string(data)
	}

	if htmlID, ok := s.engine.OnCompanionSaved(ctx, path, text); ok {
		if doc, open := s.documents.Get(protocol.URIFromPath(htmlID)); open {
			return s.rediagnose(ctx, doc)
		}
		return nil
	}

	doc, ok := s.documents.Get(params.TextDocument.URI)
	if !ok {
		return nil
	}
	doc.Content = text
	return s.rediagnose(ctx, doc)
}

func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents.Get(params.TextDocument.URI)
	if !ok {
		return nil
	}

	zerolog.Ctx(ctx).Debug().Str("path", doc.Path).Msg("document closed")

	s.documents.Delete(params.TextDocument.URI)
	s.engine.Forget(doc.Path)

	doc.Content = ""
	return s.publish(ctx, doc, nil, true)
}

// isConfigFile reports whether path is one of the workspace config files.
// Settings sent by the client take precedence over them.
func (s *Server) isConfigFile(path string) bool {
	root := s.engine.Root()
	if root == "" || s.settings != nil || filepath.Dir(path) != filepath.Clean(root) {
		return false
	}
	return slices.Contains(config.FileNames, filepath.Base(path))
}
