package lsp

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/html-translator/pkg/config"
	"github.com/walteh/html-translator/pkg/engine"
	"github.com/walteh/html-translator/pkg/lsp/protocol"
)

func (s *Server) Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := zerolog.Ctx(ctx)

	root := workspaceRoot(params)
	logger.Debug().Str("root", root).Msg("initializing server")

	settings, err := settingsFrom(params.InitializationOptions)
	if err != nil {
		logger.Warn().Err(err).Msg("ignoring initialization options")
	}
	s.settings = settings

	s.engine = engine.New(engine.Options{Fs: s.fs, Root: root})
	s.problems = s.load(ctx)

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.SyncIncremental,
				Save:      &protocol.SaveOptions{IncludeText: true},
			},
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: s.engine.Delimiters().TriggerCharacters(),
			},
			CodeActionProvider: &protocol.CodeActionOptions{
				CodeActionKinds: []protocol.CodeActionKind{protocol.QuickFix},
			},
			DiagnosticProvider: &protocol.DiagnosticOptions{
				Identifier: serverName,
			},
			ExecuteCommandProvider: &protocol.ExecuteCommandOptions{
				Commands: []string{CommandStart, CommandStop, CommandReload},
			},
		},
		ServerInfo: &protocol.ServerInfo{Name: serverName, Version: s.version},
	}, nil
}

func (s *Server) Initialized(ctx context.Context, params *protocol.InitializedParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.report(ctx, s.problems)
	s.problems = nil

	if s.watch {
		if err := s.startWatcher(ctx); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("translation files will only refresh on save")
		}
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	zerolog.Ctx(ctx).Debug().Msg("shutting down")
	s.shutdown = true
	s.stopWatcher()
	return nil
}

func (s *Server) Exit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopWatcher()
	if s.stopInstance != nil {
		// the instance waits on this handler
		go s.stopInstance()
	}
	return nil
}

// load reads the configuration and rebuilds the index. It returns the
// problems found, to be passed to report.
func (s *Server) load(ctx context.Context) []string {
	zerolog.Ctx(ctx).Info().Str("root", s.engine.Root()).Msg("Reading files configuration...")
	return s.engine.LoadConfiguration(ctx, s.settings)
}

// report writes every problem to the log and tells the user when there is
// at least one.
func (s *Server) report(ctx context.Context, problems []string) {
	logger := zerolog.Ctx(ctx)
	if len(problems) == 0 {
		logger.Info().Msg("Everything is good to go!")
		return
	}

	for _, p := range problems {
		logger.Error().Msg(p)
	}

	if s.callbackClient == nil {
		return
	}
	err := s.callbackClient.ShowMessage(ctx, &protocol.ShowMessageParams{
		Type:    protocol.Error,
		Message: "One or more things went wrong",
	})
	if err != nil {
		logger.Warn().Err(err).Msg("showing message")
	}
}

// reload applies the current settings and rescans every open document.
func (s *Server) reload(ctx context.Context) {
	s.report(ctx, s.load(ctx))
	s.rewatch(ctx)
	s.rediagnoseAll(ctx)
}

func workspaceRoot(params *protocol.InitializeParams) string {
	switch {
	case params.RootURI != "":
		return params.RootURI.Path()
	case params.RootPath != "":
		return params.RootPath
	case len(params.WorkspaceFolders) > 0:
		return params.WorkspaceFolders[0].URI.Path()
	}
	return ""
}

// settingsFrom decodes client settings. The translator section is used when
// present, otherwise the whole object when it looks like a configuration.
func settingsFrom(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, errors.Errorf("decoding settings: %w", err)
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, nil
	}
	if section, ok := obj[settingsSection]; ok {
		return section, nil
	}
	if _, ok := obj[config.KeyFiles]; ok {
		return obj, nil
	}
	return nil, nil
}
