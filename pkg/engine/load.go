package engine

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/html-translator/pkg/config"
	"github.com/walteh/html-translator/pkg/translation"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
)

// LoadConfiguration applies raw and rebuilds the index from the configured
// pairs. A nil raw falls back to the workspace config file, if any.
//
// The result is the list of user-facing problems, nil when there were none:
// files entry problems first, then pair loading problems in configuration
// order, then option problems. Every problem is also logged.
func (e *Engine) LoadConfiguration(ctx context.Context, raw any) []string {
	logger := zerolog.Ctx(ctx)

	if e.root == "" {
		logger.Debug().Msg("no workspace root, skipping configuration load")
		return nil
	}

	var problems []error

	if raw == nil {
		fileRaw, path, err := config.Load(e.fs, e.root)
		switch {
		case err != nil:
			problems = append(problems, errors.Errorf("Invalid configuration file at %s: %w", path, err))
		case fileRaw != nil:
			logger.Debug().Str("path", path).Msg("using workspace config file")
			raw = fileRaw
		}
	}

	cfg, err := config.Parse(raw)
	var optionProblems []error
	for _, perr := range config.Errors(err) {
		if config.IsOptionError(perr) {
			optionProblems = append(optionProblems, perr)
		} else {
			problems = append(problems, perr)
		}
	}

	e.cfg = cfg
	e.index.Clear()
	e.sink.Clear()

	records, err := translation.NewLoader(e.fs, e.root, cfg.Languages).Load(ctx, cfg.Files)
	for _, r := range records {
		e.index.AddRecord(r)
	}
	problems = append(problems, multierr.Errors(err)...)
	problems = append(problems, optionProblems...)

	logger.Info().
		Int("records", e.index.Len()).
		Int("problems", len(problems)).
		Str("delimiters", cfg.Delimiters.String()).
		Msg("configuration parsed")

	if len(problems) == 0 {
		return nil
	}

	messages := make([]string, 0, len(problems))
	for _, p := range problems {
		logger.Warn().Err(p).Msg("configuration problem")
		messages = append(messages, p.Error())
	}
	return messages
}

// OnConfigurationChanged reloads when the engine is enabled.
func (e *Engine) OnConfigurationChanged(ctx context.Context, raw any) []string {
	if !e.enabled {
		return nil
	}
	return e.LoadConfiguration(ctx, raw)
}
