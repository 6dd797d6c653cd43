package lsp

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/creachadair/jrpc2"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gopkg.in/fsnotify.v1"

	"github.com/walteh/html-translator/pkg/diagnostic"
	"github.com/walteh/html-translator/pkg/engine"
	"github.com/walteh/html-translator/pkg/lsp/protocol"
	"github.com/walteh/html-translator/pkg/position"
)

const (
	serverName = "html-translator"

	// settingsSection is the key of the translator settings inside the
	// client configuration object.
	settingsSection = "html-translator"

	CommandStart  = "html-translator.start"
	CommandStop   = "html-translator.stop"
	CommandReload = "html-translator.reload"
)

// DefaultSourcePatterns match the documents handled even when they are not
// configured sources.
var DefaultSourcePatterns = []string{"**/*.html", "**/*.htm"}

type Options struct {
	// Fs defaults to the OS filesystem.
	Fs afero.Fs
	// Watch enables the on-disk watcher for translation files. It needs the
	// OS filesystem.
	Watch   bool
	Version string
}

// Server represents an LSP server instance
type Server struct {
	mu sync.Mutex

	id      string
	fs      afero.Fs
	watch   bool
	version string

	engine    *engine.Engine
	documents *DocumentManager
	patterns  []string

	// settings is the last configuration received from the client; nil
	// falls back to the workspace config file.
	settings any
	// problems of the load done during initialize, reported once the client
	// is initialized.
	problems []string

	watcher     *fsnotify.Watcher
	watchedDirs map[string]bool

	initialized bool
	shutdown    bool

	callbackClient protocol.Client
	stopInstance   func()
}

var _ protocol.Server = (*Server)(nil)

func NewServer(ctx context.Context, opts Options) *Server {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Server{
		id:          xid.New().String(),
		fs:          fs,
		watch:       opts.Watch,
		version:     opts.Version,
		engine:      engine.New(engine.Options{Fs: fs}),
		documents:   NewDocumentManager(),
		patterns:    DefaultSourcePatterns,
		watchedDirs: map[string]bool{},
	}
}

// BuildServerInstance wires the server to a jrpc2 server whose client
// receives the published diagnostics and log messages.
func (s *Server) BuildServerInstance(ctx context.Context, opts *jrpc2.ServerOptions) *protocol.ServerInstance {
	ctx = zerolog.Ctx(ctx).With().Str("server_id", s.id).Logger().WithContext(ctx)
	instance := protocol.NewServerInstance(ctx, s, opts)
	s.SetCallbackClient(instance.Client())
	s.stopInstance = instance.Stop
	return instance
}

func (s *Server) SetCallbackClient(client protocol.Client) {
	s.callbackClient = client
}

func (s *Server) Documents() *DocumentManager {
	return s.documents
}

func (s *Server) Engine() *engine.Engine {
	return s.engine
}

// handles reports whether a document takes part in placeholder features.
func (s *Server) handles(path, languageID string) bool {
	if languageID == "html" {
		return true
	}
	if _, ok := s.engine.Record(path); ok {
		return true
	}
	rel := path
	if root := s.engine.Root(); root != "" {
		if r, err := filepath.Rel(root, path); err == nil {
			rel = r
		}
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range s.patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// publish sends the diagnostics of doc. Documents that are not configured
// sources get nothing unless clear is set, which sends an empty set.
func (s *Server) publish(ctx context.Context, doc *Document, diags []diagnostic.Diagnostic, clear bool) error {
	if s.callbackClient == nil {
		zerolog.Ctx(ctx).Warn().Msg("no callback client, skipping publish diagnostics")
		return nil
	}
	if _, tracked := s.engine.Record(doc.Path); !tracked && !clear {
		return nil
	}
	return s.callbackClient.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         doc.URI,
		Version:     doc.Version,
		Diagnostics: toProtocolDiagnostics(diags, doc.Lines()),
	})
}

// rediagnose fully rescans doc and publishes the result.
func (s *Server) rediagnose(ctx context.Context, doc *Document) error {
	return s.publish(ctx, doc, s.engine.ProvideDiagnostics(doc.Path, doc.Lines()), false)
}

// rediagnoseAll rescans every open document. Documents that stopped being
// tracked are cleared.
func (s *Server) rediagnoseAll(ctx context.Context) {
	for _, doc := range s.documents.All() {
		if err := s.publish(ctx, doc, s.engine.ProvideDiagnostics(doc.Path, doc.Lines()), true); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("path", doc.Path).Msg("publishing diagnostics")
		}
	}
}

func toProtocolDiagnostics(diags []diagnostic.Diagnostic, lines []string) []protocol.Diagnostic {
	res := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		var line string
		if d.Line < len(lines) {
			line = lines[d.Line]
		}
		res = append(res, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: uint32(d.Line), Character: uint32(position.ByteToUTF16(line, d.Start))},
				End:   protocol.Position{Line: uint32(d.Line), Character: uint32(position.ByteToUTF16(line, d.Stop))},
			},
			Severity: protocol.DiagnosticSeverity(d.Severity),
			Code:     int(d.Kind),
			Source:   diagnostic.Source,
			Message:  d.Message,
		})
	}
	return res
}

func fromProtocolRange(r protocol.Range) position.Range {
	return position.Range{
		Start: position.Place{Line: int(r.Start.Line), Character: int(r.Start.Character)},
		End:   position.Place{Line: int(r.End.Line), Character: int(r.End.Character)},
	}
}
