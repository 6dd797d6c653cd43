package serve_lsp

import (
	"context"
	"os"

	"github.com/creachadair/jrpc2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/html-translator/pkg/lsp"
	"github.com/walteh/html-translator/pkg/lsp/protocol"
)

type Handler struct {
	debug   bool
	noWatch bool
	version string
}

func NewServeLSPCommand(version string) *cobra.Command {
	me := &Handler{version: version}

	cmd := &cobra.Command{
		Use:   "serve-lsp",
		Short: "start the language server on stdin/stdout",
	}

	cmd.Flags().BoolVar(&me.debug, "debug", false, "enable debug logging")
	cmd.Flags().BoolVar(&me.noWatch, "no-watch", false, "do not watch translation files on disk")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	if me.debug {
		l := logger.Level(zerolog.DebugLevel)
		ctx = l.WithContext(ctx)
		logger = &l
	}

	logger.Info().Str("version", me.version).Bool("watch", !me.noWatch).Msg("starting language server")

	server := lsp.NewServer(ctx, lsp.Options{
		Watch:   !me.noWatch,
		Version: me.version,
	})

	opts := &jrpc2.ServerOptions{
		RPCLog:      protocol.ZerologRPCLogger{},
		Concurrency: 1,
	}

	instance := server.BuildServerInstance(ctx, opts)

	if err := instance.StartAndWait(os.Stdin, os.Stdout); err != nil {
		return errors.Errorf("error running language server: %w", err)
	}

	return nil
}
