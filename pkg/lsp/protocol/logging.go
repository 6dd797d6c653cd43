package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/creachadair/jrpc2"
	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/walteh/html-translator/pkg/debug"
)

var myLoggerId = xid.New().String()

// CallbackRPCLogger is implemented by RPC loggers that also want to see
// notifications pushed from the server to the client.
type CallbackRPCLogger interface {
	LogCallbackRequestRaw(ctx context.Context, method string, params any)
}

type MultiRPCLogger struct {
	mu      sync.Mutex
	loggers []jrpc2.RPCLogger
}

var (
	_ jrpc2.RPCLogger   = (*MultiRPCLogger)(nil)
	_ CallbackRPCLogger = (*MultiRPCLogger)(nil)
)

func NewMultiRPCLogger(loggers ...jrpc2.RPCLogger) *MultiRPCLogger {
	return &MultiRPCLogger{loggers: loggers}
}

func (m *MultiRPCLogger) LogRequest(ctx context.Context, req *jrpc2.Request) {
	for _, logger := range m.snapshot() {
		logger.LogRequest(ctx, req)
	}
}

func (m *MultiRPCLogger) LogResponse(ctx context.Context, resp *jrpc2.Response) {
	for _, logger := range m.snapshot() {
		logger.LogResponse(ctx, resp)
	}
}

func (m *MultiRPCLogger) LogCallbackRequestRaw(ctx context.Context, method string, params any) {
	for _, logger := range m.snapshot() {
		if cl, ok := logger.(CallbackRPCLogger); ok {
			cl.LogCallbackRequestRaw(ctx, method, params)
		}
	}
}

// snapshot copies the loggers so none is called under the lock; a logger may
// itself notify the client.
func (m *MultiRPCLogger) snapshot() []jrpc2.RPCLogger {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.loggers)
}

func (m *MultiRPCLogger) AddLogger(logger jrpc2.RPCLogger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loggers = append(m.loggers, logger)
}

// ZerologRPCLogger writes every request, response and server notification to
// the context logger.
type ZerologRPCLogger struct{}

func (ZerologRPCLogger) LogRequest(ctx context.Context, req *jrpc2.Request) {
	zerolog.Ctx(ctx).Debug().Str("rpc_params", req.ParamString()).Str("rpc_id", req.ID()).Str("rpc_method", req.Method()).Msg("client request")
}

func (ZerologRPCLogger) LogResponse(ctx context.Context, res *jrpc2.Response) {
	zerolog.Ctx(ctx).Debug().Str("rpc_result", res.ResultString()).Str("rpc_id", res.ID()).Msg("server response")
}

func (ZerologRPCLogger) LogCallbackRequestRaw(ctx context.Context, method string, params any) {
	// log messages are themselves notifications
	if method == "window/logMessage" {
		return
	}
	zerolog.Ctx(ctx).Debug().Str("rpc_method", method).Interface("rpc_params", params).Msg("server notification")
}

// ApplyClientToZerolog returns a context whose logger forwards each record to
// the client as a window/logMessage notification.
func ApplyClientToZerolog(ctx context.Context, client Client) context.Context {
	writer := &logWriter{
		client: client,
		ctx:    ctx,
	}

	level := zerolog.Ctx(ctx).GetLevel()

	return zerolog.New(writer).With().
		Str("id", myLoggerId).
		Str("lsp_role", "server").
		Logger().
		Level(level).
		Hook(debug.CustomTimeHook{WithColor: false}).
		Hook(debug.CustomCallerHook{WithColor: false}).
		WithContext(ctx)
}

func ApplyRequestToZerolog(ctx context.Context, req *jrpc2.Request) context.Context {
	return zerolog.Ctx(ctx).With().Str("rpc_method", req.Method()).Str("rpc_id", req.ID()).Logger().WithContext(ctx)
}

type logWriter struct {
	client Client
	mu     sync.Mutex
	ctx    context.Context
}

// Write implements io.Writer
func (w *logWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var logEntry map[string]any
	if err := json.Unmarshal(p, &logEntry); err != nil {
		return len(p), nil
	}

	params := &LogMessageParams{
		Type:    ParseMessageTypeFromZerolog(extractField(logEntry, "level", "info")),
		Message: formatLogEntry(logEntry),
	}

	if w.client != nil {
		err = w.client.LogMessage(w.ctx, params)
	}

	return len(p), err
}

// formatLogEntry renders the message followed by the remaining fields in
// key order.
func formatLogEntry(entry map[string]any) string {
	var sb strings.Builder
	sb.WriteString(extractField(entry, "message", ""))
	for _, drop := range []string{"id", "lsp_role", "time"} {
		delete(entry, drop)
	}
	for _, k := range slices.Sorted(maps.Keys(entry)) {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s=%v", k, entry[k])
	}
	return sb.String()
}

// Helper function to extract and delete a field from the log entry
func extractField(entry map[string]any, key, defaultValue string) string {
	if v, ok := entry[key].(string); ok {
		delete(entry, key)
		return v
	}
	return defaultValue
}

// ParseMessageTypeFromZerolog converts zerolog level to LSP MessageType
func ParseMessageTypeFromZerolog(level string) MessageType {
	switch level {
	case "error", "fatal", "panic":
		return Error
	case "warn":
		return Warning
	case "info":
		return Info
	case "debug":
		return Debug
	default:
		return Log
	}
}
