package protocol

import (
	"context"
	"io"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"
)

var RequestCancelledError = &jrpc2.Error{Code: -32800, Message: "JSON RPC cancelled"}

// Server is the set of LSP methods the translator language server answers.
type Server interface {
	Initialize(context.Context, *InitializeParams) (*InitializeResult, error)
	Initialized(context.Context, *InitializedParams) error
	Shutdown(context.Context) error
	Exit(context.Context) error
	DidOpen(context.Context, *DidOpenTextDocumentParams) error
	DidChange(context.Context, *DidChangeTextDocumentParams) error
	DidSave(context.Context, *DidSaveTextDocumentParams) error
	DidClose(context.Context, *DidCloseTextDocumentParams) error
	Completion(context.Context, *CompletionParams) (*CompletionList, error)
	CodeAction(context.Context, *CodeActionParams) ([]CodeAction, error)
	Diagnostic(context.Context, *DocumentDiagnosticParams) (*DocumentDiagnosticReport, error)
	DidChangeConfiguration(context.Context, *DidChangeConfigurationParams) error
	ExecuteCommand(context.Context, *ExecuteCommandParams) (any, error)
}

// Client is the set of server to client notifications the server sends.
type Client interface {
	PublishDiagnostics(context.Context, *PublishDiagnosticsParams) error
	LogMessage(context.Context, *LogMessageParams) error
	ShowMessage(context.Context, *ShowMessageParams) error
}

func buildServerDispatchMap(server Server) handler.Map {
	return handler.Map{
		"$/cancelRequest":                  createEmptyResultHandler(ignore[CancelParams]),
		"$/setTrace":                       createEmptyResultHandler(ignore[SetTraceParams]),
		"initialize":                       createHandler(server.Initialize),
		"initialized":                      createEmptyResultHandler(server.Initialized),
		"shutdown":                         createEmptyHandler(server.Shutdown),
		"exit":                             createEmptyHandler(server.Exit),
		"textDocument/didOpen":             createEmptyResultHandler(server.DidOpen),
		"textDocument/didChange":           createEmptyResultHandler(server.DidChange),
		"textDocument/didSave":             createEmptyResultHandler(server.DidSave),
		"textDocument/didClose":            createEmptyResultHandler(server.DidClose),
		"textDocument/completion":          createHandler(server.Completion),
		"textDocument/codeAction":          createHandler(server.CodeAction),
		"textDocument/diagnostic":          createHandler(server.Diagnostic),
		"workspace/didChangeConfiguration": createEmptyResultHandler(server.DidChangeConfiguration),
		"workspace/executeCommand":         createHandler(server.ExecuteCommand),
	}
}

func ignore[T any](context.Context, *T) error { return nil }

type CallbackClient struct {
	serverOpts *jrpc2.ServerOptions
	client     *jrpc2.Server
}

var _ Client = (*CallbackClient)(nil)

func NewCallbackClient(server *jrpc2.Server, serverOpts *jrpc2.ServerOptions) *CallbackClient {
	return &CallbackClient{client: server, serverOpts: serverOpts}
}

func (c *CallbackClient) Notify(ctx context.Context, method string, params any) error {
	if rl, ok := c.serverOpts.RPCLog.(CallbackRPCLogger); ok {
		rl.LogCallbackRequestRaw(ctx, method, params)
	}

	if err := c.client.Notify(ctx, method, params); err != nil {
		return err
	}

	return nil
}

func (c *CallbackClient) PublishDiagnostics(ctx context.Context, params *PublishDiagnosticsParams) error {
	params.Diagnostics = NonNilSlice(params.Diagnostics)
	return c.Notify(ctx, "textDocument/publishDiagnostics", params)
}

func (c *CallbackClient) LogMessage(ctx context.Context, params *LogMessageParams) error {
	return c.Notify(ctx, "window/logMessage", params)
}

func (c *CallbackClient) ShowMessage(ctx context.Context, params *ShowMessageParams) error {
	return c.Notify(ctx, "window/showMessage", params)
}

// NewServerServer builds the jrpc2 server for server. Every request context
// carries a logger that forwards records to the connected client.
func NewServerServer(ctx context.Context, server Server, opts *jrpc2.ServerOptions) (*jrpc2.Server, *CallbackClient) {
	methods := buildServerDispatchMap(server)
	if opts == nil {
		opts = &jrpc2.ServerOptions{}
	}

	opts.AllowPush = true

	var callbackClient *CallbackClient

	opts.NewContext = func() context.Context {
		if callbackClient == nil {
			return ctx
		}

		return ApplyClientToZerolog(ctx, callbackClient)
	}

	result := jrpc2.NewServer(methods, opts)

	callbackClient = NewCallbackClient(result, opts)

	return result, callbackClient
}

type ServerInstance struct {
	server *jrpc2.Server
	client *CallbackClient
}

func NewServerInstance(ctx context.Context, server Server, opts *jrpc2.ServerOptions) *ServerInstance {
	srv, client := NewServerServer(ctx, server, opts)
	return &ServerInstance{server: srv, client: client}
}

// Client returns the notification channel back to the connected client.
func (s *ServerInstance) Client() *CallbackClient {
	return s.client
}

// StartAndWait serves LSP framed messages read from r and written to w until
// the stream closes or Stop is called.
func (s *ServerInstance) StartAndWait(r io.Reader, w io.WriteCloser) error {
	s.server.Start(channel.LSP(r, w))
	return s.server.Wait()
}

func (s *ServerInstance) Stop() {
	s.server.Stop()
}
