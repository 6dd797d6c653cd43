package engine

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/html-translator/pkg/completion"
	"github.com/walteh/html-translator/pkg/diagnostic"
	"github.com/walteh/html-translator/pkg/position"
	"gitlab.com/tozd/go/errors"
)

// ProvideCompletions answers a completion request at byte column col of
// lineText in the HTML document id.
func (e *Engine) ProvideCompletions(id, lineText string, col int) *completion.Completions {
	if !e.enabled {
		return nil
	}
	rec, _ := e.index.LookupByHTML(id)
	return completion.Suggest(rec, lineText, col, e.cfg.Delimiters)
}

// ProvideDiagnostics fully rescans the document and stores the result.
// Untracked documents yield nil; a document whose translations are invalid
// yields nil and loses its stored set.
func (e *Engine) ProvideDiagnostics(id string, lines []string) []diagnostic.Diagnostic {
	if !e.enabled {
		return nil
	}
	rec, ok := e.index.LookupByHTML(id)
	if !ok {
		return nil
	}
	if !rec.Valid {
		e.sink.Delete(id)
		return nil
	}

	diags := diagnostic.DiagnoseDocument(lines, rec, e.cfg.Delimiters)
	e.sink.Set(id, diags)
	return diags
}

// UpdateDiagnostics applies an edit to the stored set of id. lines is the
// document after the edit. Without a stored set this is a full rescan.
func (e *Engine) UpdateDiagnostics(id string, edit diagnostic.Edit, lines []string) []diagnostic.Diagnostic {
	if !e.enabled {
		return nil
	}
	rec, ok := e.index.LookupByHTML(id)
	if !ok {
		return nil
	}
	if !rec.Valid {
		e.sink.Delete(id)
		return nil
	}

	prev, _ := e.sink.Get(id)
	diags := diagnostic.Update(prev, edit, lines, rec, e.cfg.Delimiters)
	e.sink.Set(id, diags)
	return diags
}

// Diagnostics returns the stored set of id.
func (e *Engine) Diagnostics(id string) ([]diagnostic.Diagnostic, bool) {
	return e.sink.Get(id)
}

// DiagnoseFile reads the HTML document id from disk and fully rescans it.
func (e *Engine) DiagnoseFile(id string) ([]diagnostic.Diagnostic, error) {
	data, err := afero.ReadFile(e.fs, id)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", id, err)
	}
	return e.ProvideDiagnostics(id, position.Lines(string(data))), nil
}

// OnCompanionSaved re-extracts the keys of the JSON document id from text.
// ok is false when id is not a tracked translation document; otherwise
// htmlID names the source document whose diagnostics are now stale.
func (e *Engine) OnCompanionSaved(ctx context.Context, id, text string) (htmlID string, ok bool) {
	if !e.enabled {
		return "", false
	}

	logger := zerolog.Ctx(ctx)

	rec, err := e.index.Refresh(id, []byte(text), e.cfg.Languages)
	if rec == nil {
		return "", false
	}
	e.sink.Delete(rec.HTMLPath)

	if err != nil {
		logger.Warn().Err(err).Str("json", id).Msg("Translations invalid format at " + id)
		return rec.HTMLPath, true
	}

	logger.Debug().Str("json", id).Int("keys", len(rec.Keys())).Msg("translations reloaded")
	return rec.HTMLPath, true
}

// Forget drops the stored set of a closed document.
func (e *Engine) Forget(id string) {
	e.sink.Delete(id)
}

// QuickFixes proposes replacement keys for a NonExistent diagnostic of the
// HTML document id, best first.
func (e *Engine) QuickFixes(id string, d diagnostic.Diagnostic) []string {
	if !e.enabled || d.Kind != diagnostic.KindNonExistent {
		return nil
	}
	rec, ok := e.index.LookupByHTML(id)
	if !ok || !rec.Valid {
		return nil
	}
	return diagnostic.Closest(d.Key, rec.Keys(), maxQuickFixes)
}

const maxQuickFixes = 5
