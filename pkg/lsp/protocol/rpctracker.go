package protocol

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/creachadair/jrpc2"
)

// RPCMessage is a single request, response or server notification seen by
// an RPCTracker.
type RPCMessage struct {
	Method   string
	Request  *jrpc2.Request
	Response *jrpc2.Response
	Params   any
	Time     time.Time
}

// RPCTracker records the traffic of a server so tests can wait on it.
type RPCTracker struct {
	mu sync.RWMutex

	messages     []RPCMessage
	subs         map[chan<- RPCMessage]struct{}
	knownMethods map[string]string
}

var (
	_ jrpc2.RPCLogger   = (*RPCTracker)(nil)
	_ CallbackRPCLogger = (*RPCTracker)(nil)
)

func NewRPCTracker() *RPCTracker {
	return &RPCTracker{
		subs:         make(map[chan<- RPCMessage]struct{}),
		knownMethods: make(map[string]string),
	}
}

func (t *RPCTracker) LogRequest(ctx context.Context, req *jrpc2.Request) {
	if id := req.ID(); id != "" {
		t.mu.Lock()
		t.knownMethods[id] = req.Method()
		t.mu.Unlock()
	}
	t.Track(RPCMessage{Method: req.Method(), Request: req})
}

func (t *RPCTracker) LogResponse(ctx context.Context, resp *jrpc2.Response) {
	t.mu.RLock()
	method := t.knownMethods[resp.ID()]
	t.mu.RUnlock()
	t.Track(RPCMessage{Method: method, Response: resp})
}

func (t *RPCTracker) LogCallbackRequestRaw(ctx context.Context, method string, params any) {
	t.Track(RPCMessage{Method: method, Params: params})
}

// Subscribe creates a new subscription for messages.
// The returned function should be called to unsubscribe.
func (t *RPCTracker) Subscribe(bufSize int) (<-chan RPCMessage, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch := make(chan RPCMessage, bufSize)
	t.subs[ch] = struct{}{}

	return ch, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subs, ch)
		close(ch)
	}
}

// Track adds a message to the tracker and notifies subscribers.
func (t *RPCTracker) Track(msg RPCMessage) {
	if t == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	msg.Time = time.Now()
	t.messages = append(t.messages, msg)

	for ch := range t.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (t *RPCTracker) Messages() []RPCMessage {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.messages)
}

// Methods lists the method of every tracked message in arrival order.
func (t *RPCTracker) Methods() []string {
	msgs := t.Messages()
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Method)
	}
	return out
}

func (t *RPCTracker) messagesLike(predicate func(RPCMessage) bool) []RPCMessage {
	return slices.DeleteFunc(t.Messages(), func(msg RPCMessage) bool {
		return !predicate(msg)
	})
}

// WaitForMessages waits until count messages matching predicate have been
// tracked or timeout elapses.
func (t *RPCTracker) WaitForMessages(count int, timeout time.Duration, predicate func(RPCMessage) bool) ([]RPCMessage, bool) {
	ch, unsub := t.Subscribe(64)
	defer unsub()

	result := t.messagesLike(predicate)
	if len(result) >= count {
		return result, true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ch:
			result = t.messagesLike(predicate)
			if len(result) >= count {
				return result, true
			}
		case <-timer.C:
			return result, false
		}
	}
}
