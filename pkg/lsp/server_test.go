package lsp_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/html-translator/pkg/lsp"
	"github.com/walteh/html-translator/pkg/lsp/protocol"
)

const (
	indexURI = protocol.DocumentURI("file:///ws/index.html")
	jsonURI  = protocol.DocumentURI("file:///ws/index.json")
)

const indexJSON = `{
	"title": {"en": "Title", "it": "Titolo"},
	"user": {
		"name": {"en": "Name"},
		"email": {"en": "Email"}
	}
}`

var translatorSettings = map[string]any{
	"html-translator": map[string]any{
		"files": []any{
			map[string]any{"source": "index.html", "texts": "index.json"},
		},
	},
}

type testClient struct {
	client *jrpc2.Client
	notes  chan *jrpc2.Request
	fs     afero.Fs
}

func startServer(t *testing.T) *testClient {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/ws/index.html", []byte("<h1>{{ title }}</h1>\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/ws/index.json", []byte(indexJSON), 0o644))

	ctx := zerolog.New(io.Discard).Level(zerolog.InfoLevel).WithContext(context.Background())

	serverReader, clientWriter := io.Pipe()
	clientReader, serverWriter := io.Pipe()

	server := lsp.NewServer(ctx, lsp.Options{Fs: fs, Version: "test"})
	instance := server.BuildServerInstance(ctx, &jrpc2.ServerOptions{
		RPCLog:      protocol.ZerologRPCLogger{},
		Concurrency: 1,
	})

	done := make(chan error, 1)
	go func() {
		done <- instance.StartAndWait(serverReader, serverWriter)
	}()

	notes := make(chan *jrpc2.Request, 256)
	client := jrpc2.NewClient(channel.LSP(clientReader, clientWriter), &jrpc2.ClientOptions{
		OnNotify: func(req *jrpc2.Request) {
			notes <- req
		},
	})

	t.Cleanup(func() {
		client.Close()
		instance.Stop()
		<-done
	})

	return &testClient{client: client, notes: notes, fs: fs}
}

func (c *testClient) initialize(t *testing.T, options any) protocol.InitializeResult {
	t.Helper()

	params := map[string]any{
		"processId": 1,
		"rootUri":   "file:///ws",
	}
	if options != nil {
		params["initializationOptions"] = options
	}

	var result protocol.InitializeResult
	require.NoError(t, c.client.CallResult(context.Background(), "initialize", params, &result))
	c.notify(t, "initialized", &protocol.InitializedParams{})
	return result
}

func (c *testClient) notify(t *testing.T, method string, params any) {
	t.Helper()
	require.NoError(t, c.client.Notify(context.Background(), method, params))
}

func (c *testClient) call(t *testing.T, method string, params, result any) {
	t.Helper()
	if result == nil {
		_, err := c.client.Call(context.Background(), method, params)
		require.NoError(t, err)
		return
	}
	require.NoError(t, c.client.CallResult(context.Background(), method, params, result))
}

// next returns the next notification of method, skipping the others.
func (c *testClient) next(t *testing.T, method string) *jrpc2.Request {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case req := <-c.notes:
			if req.Method() == method {
				return req
			}
		case <-timeout:
			t.Fatalf("no %s notification received", method)
			return nil
		}
	}
}

func (c *testClient) nextDiagnostics(t *testing.T) protocol.PublishDiagnosticsParams {
	t.Helper()
	var params protocol.PublishDiagnosticsParams
	require.NoError(t, c.next(t, "textDocument/publishDiagnostics").UnmarshalParams(&params))
	return params
}

func (c *testClient) open(t *testing.T, uri protocol.DocumentURI, text string) protocol.PublishDiagnosticsParams {
	t.Helper()
	c.notify(t, "textDocument/didOpen", &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "html", Version: 1, Text: text},
	})
	return c.nextDiagnostics(t)
}

func lineRange(line, start, end uint32) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: line, Character: start},
		End:   protocol.Position{Line: line, Character: end},
	}
}

func messages(diags []protocol.Diagnostic) []string {
	res := make([]string, len(diags))
	for i, d := range diags {
		res[i] = d.Message
	}
	return res
}

func TestInitializeAdvertisesCapabilities(t *testing.T) {
	c := startServer(t)
	result := c.initialize(t, translatorSettings)

	caps := result.Capabilities
	require.NotNil(t, caps.TextDocumentSync)
	assert.Equal(t, protocol.SyncIncremental, caps.TextDocumentSync.Change)
	assert.True(t, caps.TextDocumentSync.Save.IncludeText)
	assert.Equal(t, []string{".", "{"}, caps.CompletionProvider.TriggerCharacters)
	assert.Equal(t, []string{"html-translator.start", "html-translator.stop", "html-translator.reload"}, caps.ExecuteCommandProvider.Commands)
	assert.Equal(t, "html-translator", result.ServerInfo.Name)

	logReq := c.next(t, "window/logMessage")
	var logParams protocol.LogMessageParams
	require.NoError(t, logReq.UnmarshalParams(&logParams))
	assert.Contains(t, logParams.Message, "Reading files configuration...")
}

func TestDidOpenPublishesDiagnostics(t *testing.T) {
	c := startServer(t)
	c.initialize(t, translatorSettings)

	pub := c.open(t, indexURI, "<h1>{{ title }}</h1>\n<p>{{ user.nam }} {{}}</p>\n")
	assert.Equal(t, indexURI, pub.URI)
	require.Len(t, pub.Diagnostics, 2)

	assert.Equal(t, lineRange(1, 6, 14), pub.Diagnostics[0].Range)
	assert.Equal(t, `"user.nam" is not a valid translated text`, pub.Diagnostics[0].Message)
	assert.Equal(t, 1, pub.Diagnostics[0].Code)
	assert.Equal(t, "HTML translator", pub.Diagnostics[0].Source)
	assert.Equal(t, protocol.SeverityWarning, pub.Diagnostics[0].Severity)

	assert.Equal(t, lineRange(1, 20, 20), pub.Diagnostics[1].Range)
	assert.Equal(t, "No translated text specified", pub.Diagnostics[1].Message)
	assert.Equal(t, 0, pub.Diagnostics[1].Code)
}

func TestDidOpenUntrackedDocumentPublishesNothing(t *testing.T) {
	c := startServer(t)
	c.initialize(t, translatorSettings)

	c.notify(t, "textDocument/didOpen", &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: "file:///ws/other.html", LanguageID: "html", Text: "{{ nope }}"},
	})

	// a tracked document opened afterwards is the first to be published
	pub := c.open(t, indexURI, "{{ title }}")
	assert.Equal(t, indexURI, pub.URI)
	assert.Empty(t, pub.Diagnostics)
}

func TestCompletion(t *testing.T) {
	c := startServer(t)
	c.initialize(t, translatorSettings)
	c.open(t, indexURI, "<p>{{ user. }}</p>\n<p>{{")

	t.Run("after_dot_offers_suffixes", func(t *testing.T) {
		var list protocol.CompletionList
		c.call(t, "textDocument/completion", &protocol.CompletionParams{
			TextDocumentPositionParams: protocol.TextDocumentPositionParams{
				TextDocument: protocol.TextDocumentIdentifier{URI: indexURI},
				Position:     protocol.Position{Line: 0, Character: 11},
			},
		}, &list)

		require.Len(t, list.Items, 2)
		assert.Equal(t, "email", list.Items[0].Label)
		assert.Equal(t, "name", list.Items[1].Label)
		assert.Equal(t, "user.name", list.Items[1].FilterText)
		require.NotNil(t, list.Items[1].TextEdit)
		assert.Equal(t, lineRange(0, 6, 11), list.Items[1].TextEdit.Range)
		assert.Equal(t, "user.name", list.Items[1].TextEdit.NewText)
	})

	t.Run("after_opening_offers_snippet", func(t *testing.T) {
		var list protocol.CompletionList
		c.call(t, "textDocument/completion", &protocol.CompletionParams{
			TextDocumentPositionParams: protocol.TextDocumentPositionParams{
				TextDocument: protocol.TextDocumentIdentifier{URI: indexURI},
				Position:     protocol.Position{Line: 1, Character: 5},
			},
		}, &list)

		require.Len(t, list.Items, 1)
		assert.Equal(t, "translated item", list.Items[0].Label)
		assert.Equal(t, "${0:textID}}}", list.Items[0].InsertText)
		assert.Equal(t, protocol.SnippetTextFormat, list.Items[0].InsertTextFormat)
	})

	t.Run("outside_placeholder_offers_nothing", func(t *testing.T) {
		var list *protocol.CompletionList
		c.call(t, "textDocument/completion", &protocol.CompletionParams{
			TextDocumentPositionParams: protocol.TextDocumentPositionParams{
				TextDocument: protocol.TextDocumentIdentifier{URI: indexURI},
				Position:     protocol.Position{Line: 0, Character: 1},
			},
		}, &list)
		assert.Nil(t, list)
	})
}

func TestDidChangeUpdatesDiagnostics(t *testing.T) {
	c := startServer(t)
	c.initialize(t, translatorSettings)

	pub := c.open(t, indexURI, "<h1>{{ title }}</h1>\n<p>{{ user.name }}</p>")
	assert.Empty(t, pub.Diagnostics)

	c.notify(t, "textDocument/didChange", &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{URI: indexURI, Version: 2},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{
			{Range: &protocol.Range{Start: protocol.Position{Line: 1, Character: 11}, End: protocol.Position{Line: 1, Character: 15}}, Text: "nme"},
		},
	})
	pub = c.nextDiagnostics(t)
	require.Len(t, pub.Diagnostics, 1)
	assert.Equal(t, lineRange(1, 6, 14), pub.Diagnostics[0].Range)
	assert.EqualValues(t, 2, pub.Version)

	c.notify(t, "textDocument/didChange", &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{URI: indexURI, Version: 3},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{
			{Range: &protocol.Range{}, Text: "<!-- header -->\n"},
		},
	})
	pub = c.nextDiagnostics(t)
	require.Len(t, pub.Diagnostics, 1)
	assert.Equal(t, lineRange(2, 6, 14), pub.Diagnostics[0].Range, "diagnostics below the insertion shift down")

	c.notify(t, "textDocument/didChange", &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{URI: indexURI, Version: 4},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{
			{Text: "{{ 😀 }} {{ title }}"},
		},
	})
	pub = c.nextDiagnostics(t)
	require.Len(t, pub.Diagnostics, 1)
	assert.Equal(t, lineRange(0, 3, 5), pub.Diagnostics[0].Range, "columns are UTF-16 code units")
}

func TestCodeActionOffersClosestKeys(t *testing.T) {
	c := startServer(t)
	c.initialize(t, translatorSettings)

	pub := c.open(t, indexURI, "<p>{{ user.nam }}</p>")
	require.Len(t, pub.Diagnostics, 1)

	var actions []protocol.CodeAction
	c.call(t, "textDocument/codeAction", &protocol.CodeActionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: indexURI},
		Range:        pub.Diagnostics[0].Range,
		Context:      protocol.CodeActionContext{Diagnostics: pub.Diagnostics},
	}, &actions)

	require.Len(t, actions, 1)
	assert.Equal(t, `Replace with "user.name"`, actions[0].Title)
	assert.Equal(t, protocol.QuickFix, actions[0].Kind)
	assert.True(t, actions[0].IsPreferred)
	require.NotNil(t, actions[0].Edit)
	assert.Equal(t, []protocol.TextEdit{{Range: lineRange(0, 6, 14), NewText: "user.name"}}, actions[0].Edit.Changes[indexURI])
}

func TestDiagnosticPull(t *testing.T) {
	c := startServer(t)
	c.initialize(t, translatorSettings)
	c.open(t, indexURI, "{{ nope }}")

	var report protocol.DocumentDiagnosticReport
	c.call(t, "textDocument/diagnostic", &protocol.DocumentDiagnosticParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: indexURI},
	}, &report)

	assert.Equal(t, "full", report.Kind)
	assert.NotEmpty(t, report.ResultID)
	assert.Equal(t, []string{`"nope" is not a valid translated text`}, messages(report.Items))
}

func TestCompanionSaveRefreshesSource(t *testing.T) {
	c := startServer(t)
	c.initialize(t, translatorSettings)

	pub := c.open(t, indexURI, "{{ user.phone }}")
	require.Len(t, pub.Diagnostics, 1)

	text := `{"user": {"phone": {"en": "Phone"}}}`
	c.notify(t, "textDocument/didSave", &protocol.DidSaveTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: jsonURI},
		Text:         &text,
	})

	pub = c.nextDiagnostics(t)
	assert.Equal(t, indexURI, pub.URI)
	assert.Empty(t, pub.Diagnostics)
}

func TestDidCloseClearsDiagnostics(t *testing.T) {
	c := startServer(t)
	c.initialize(t, translatorSettings)
	c.open(t, indexURI, "{{ nope }}")

	c.notify(t, "textDocument/didClose", &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: indexURI},
	})

	pub := c.nextDiagnostics(t)
	assert.Equal(t, indexURI, pub.URI)
	assert.Empty(t, pub.Diagnostics)
}

func TestStopAndStartCommands(t *testing.T) {
	c := startServer(t)
	c.initialize(t, translatorSettings)
	c.open(t, indexURI, "<p>{{ nope }}</p>")

	c.call(t, "workspace/executeCommand", &protocol.ExecuteCommandParams{Command: lsp.CommandStop}, nil)
	pub := c.nextDiagnostics(t)
	assert.Empty(t, pub.Diagnostics, "stopping clears diagnostics")

	var list *protocol.CompletionList
	c.call(t, "textDocument/completion", &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: indexURI},
			Position:     protocol.Position{Line: 0, Character: 6},
		},
	}, &list)
	assert.Nil(t, list, "no completions while stopped")

	c.call(t, "workspace/executeCommand", &protocol.ExecuteCommandParams{Command: lsp.CommandStart}, nil)
	pub = c.nextDiagnostics(t)
	assert.Equal(t, []string{`"nope" is not a valid translated text`}, messages(pub.Diagnostics))

	_, err := c.client.Call(context.Background(), "workspace/executeCommand", &protocol.ExecuteCommandParams{Command: "html-translator.unknown"})
	require.Error(t, err)
}

func TestInvalidConfigurationShowsMessage(t *testing.T) {
	c := startServer(t)
	c.initialize(t, map[string]any{
		"html-translator": map[string]any{"files": "index.html"},
	})

	var show protocol.ShowMessageParams
	require.NoError(t, c.next(t, "window/showMessage").UnmarshalParams(&show))
	assert.Equal(t, "One or more things went wrong", show.Message)
	assert.Equal(t, protocol.Error, show.Type)
}

func TestDidChangeConfigurationReloads(t *testing.T) {
	c := startServer(t)
	c.initialize(t, translatorSettings)

	pub := c.open(t, indexURI, "{{ title }} [[ nope ]]")
	assert.Empty(t, pub.Diagnostics)

	c.notify(t, "workspace/didChangeConfiguration", map[string]any{
		"settings": map[string]any{
			"html-translator": map[string]any{
				"files": []any{
					map[string]any{"source": "index.html", "texts": "index.json"},
				},
				"escape-strings": []any{"[[", "]]"},
			},
		},
	})

	pub = c.nextDiagnostics(t)
	assert.Equal(t, []string{`"nope" is not a valid translated text`}, messages(pub.Diagnostics))
}

func TestConfigurationFileFallback(t *testing.T) {
	c := startServer(t)
	require.NoError(t, afero.WriteFile(c.fs, "/ws/.html-translator.yaml", []byte("files:\n  - source: index.html\n    texts: index.json\n"), 0o644))
	c.initialize(t, nil)

	pub := c.open(t, indexURI, "{{ nope }}")
	assert.Equal(t, []string{`"nope" is not a valid translated text`}, messages(pub.Diagnostics))
}
