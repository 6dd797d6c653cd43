// Package check diagnoses every configured HTML source of a workspace
// without an editor.
package check

import (
	"context"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/html-translator/pkg/config"
	"github.com/walteh/html-translator/pkg/diagnostic"
	"github.com/walteh/html-translator/pkg/engine"
)

var (
	ErrDiagnostics   = errors.Base("diagnostics reported")
	ErrConfiguration = errors.Base("configuration problems")
)

type Handler struct {
	root       string
	configFile string
	format     string

	fs afero.Fs
}

func NewCheckCommand() *cobra.Command {
	me := &Handler{fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "report translation key diagnostics for every configured source",
		Args:  cobra.NoArgs,
	}

	cmd.Flags().StringVar(&me.root, "root", ".", "workspace directory")
	cmd.Flags().StringVar(&me.configFile, "config", "", "configuration file (default: looked up in the root)")
	cmd.Flags().StringVar(&me.format, "format", "text", "output format: text or json")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	}

	return cmd
}

// Run prints the diagnostics of every source to out and configuration
// problems to errOut. The returned error wraps ErrConfiguration or
// ErrDiagnostics when there was anything to report.
func (me *Handler) Run(ctx context.Context, out, errOut io.Writer) error {
	logger := zerolog.Ctx(ctx)

	formatter, err := diagnostic.NewFormatter(me.format)
	if err != nil {
		return err
	}

	root, err := filepath.Abs(me.root)
	if err != nil {
		return errors.Errorf("resolving root %s: %w", me.root, err)
	}

	var raw any
	if me.configFile != "" {
		path := me.configFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		fileRaw, err := config.LoadFile(me.fs, path)
		if err != nil {
			return errors.Errorf("Invalid configuration file at %s: %w", path, err)
		}
		raw = fileRaw
	}

	eng := engine.New(engine.Options{Fs: me.fs, Root: root})
	problems := eng.LoadConfiguration(ctx, raw)

	red := color.New(color.FgRed, color.Bold)
	for _, p := range problems {
		if _, err := red.Fprintln(errOut, p); err != nil {
			return errors.Errorf("writing problem: %w", err)
		}
	}

	var reports []diagnostic.Report
	count := 0
	for _, source := range eng.Sources() {
		diags, err := eng.DiagnoseFile(source)
		if err != nil {
			// already reported as a load problem
			logger.Debug().Err(err).Str("source", source).Msg("skipping source")
			continue
		}
		count += len(diags)
		reports = append(reports, diagnostic.Report{Path: displayPath(root, source), Diagnostics: diags})
	}

	if err := formatter.Format(out, reports); err != nil {
		return err
	}

	logger.Debug().Int("sources", len(reports)).Int("diagnostics", count).Int("problems", len(problems)).Msg("check done")

	switch {
	case len(problems) > 0:
		return errors.Errorf("%d configuration problem(s): %w", len(problems), ErrConfiguration)
	case count > 0:
		return errors.Errorf("%d diagnostic(s): %w", count, ErrDiagnostics)
	}
	return nil
}

func displayPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
