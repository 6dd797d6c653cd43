package lsp

import (
	"context"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/fsnotify.v1"

	"github.com/walteh/html-translator/pkg/lsp/protocol"
)

// startWatcher follows the directories of the translation files so edits made
// outside the editor refresh the index. Callers hold s.mu.
func (s *Server) startWatcher(ctx context.Context) error {
	if s.watcher != nil {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Errorf("creating watcher: %w", err)
	}
	s.watcher = w
	s.rewatch(ctx)

	// request contexts end with their handler
	go s.watchLoop(context.WithoutCancel(ctx), w)
	return nil
}

func (s *Server) stopWatcher() {
	if s.watcher == nil {
		return
	}
	s.watcher.Close()
	s.watcher = nil
	clear(s.watchedDirs)
}

// rewatch adds the directories of the current translation files.
func (s *Server) rewatch(ctx context.Context) {
	if s.watcher == nil {
		return
	}
	for _, p := range s.engine.Companions() {
		dir := filepath.Dir(p)
		if s.watchedDirs[dir] {
			continue
		}
		if err := s.watcher.Add(dir); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("dir", dir).Msg("watching translations")
			continue
		}
		s.watchedDirs[dir] = true
	}
}

func (s *Server) watchLoop(ctx context.Context, w *fsnotify.Watcher) {
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			s.handleWatchEvent(ctx, ev)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			zerolog.Ctx(ctx).Warn().Err(err).Msg("watcher error")
		}
	}
}

// handleWatchEvent refreshes a translation file written on disk and rescans
// its source document when it is open.
func (s *Server) handleWatchEvent(ctx context.Context, ev fsnotify.Event) {
	if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Clean(ev.Name)
	if !slices.Contains(s.engine.Companions(), path) {
		return
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("reading translations")
		return
	}

	htmlID, ok := s.engine.OnCompanionSaved(ctx, path, string(data))
	if !ok {
		return
	}
	if doc, open := s.documents.Get(protocol.URIFromPath(htmlID)); open {
		if err := s.rediagnose(ctx, doc); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("path", htmlID).Msg("publishing diagnostics")
		}
	}
}
