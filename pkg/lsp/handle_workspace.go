package lsp

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/html-translator/pkg/lsp/protocol"
)

// DidChangeConfiguration reloads with the new settings while the translator
// is started. A stopped translator keeps them for the next start.
func (s *Server) DidChangeConfiguration(ctx context.Context, params *protocol.DidChangeConfigurationParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := settingsFrom(params.Settings)
	if err != nil {
		return err
	}
	s.settings = settings

	if !s.engine.Enabled() {
		zerolog.Ctx(ctx).Debug().Msg("configuration changed while stopped")
		return nil
	}

	zerolog.Ctx(ctx).Info().Msg("configuration changed, reloading")
	s.report(ctx, s.engine.OnConfigurationChanged(ctx, s.settings))
	s.rewatch(ctx)
	s.rediagnoseAll(ctx)
	return nil
}

func (s *Server) ExecuteCommand(ctx context.Context, params *protocol.ExecuteCommandParams) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := zerolog.Ctx(ctx)

	switch params.Command {
	case CommandStart:
		if !s.engine.Enabled() {
			logger.Info().Msg("Activating autocompletion and diagnostics")
			s.engine.Start()
		}
		s.reload(ctx)
	case CommandStop:
		if s.engine.Enabled() {
			logger.Info().Msg("Disposing autocompletion and diagnostics")
			s.engine.Stop()
			s.rediagnoseAll(ctx)
		}
	case CommandReload:
		if !s.engine.Enabled() {
			return nil, errors.Errorf("%s is stopped", serverName)
		}
		s.reload(ctx)
	default:
		return nil, errors.Errorf("unknown command %q", params.Command)
	}

	return nil, nil
}
