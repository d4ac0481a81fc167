package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
)

// sseEventBuffer is the per-session outbound queue depth. Past it, push
// blocks until the stream drains or the posting request is cancelled.
const sseEventBuffer = 16

// SSETransport implements the SSE transport: GET /sse opens the event
// stream, POST /messages?session_id= carries client requests. Each stream
// gets its own session keyed by a generated id, so concurrent clients never
// share state.
type SSETransport struct {
	server   *Server
	mu       sync.RWMutex
	sessions map[string]*sseSession
	log      *slog.Logger
}

type sseSession struct {
	id     string
	events chan []byte
}

// NewSSETransport creates the SSE transport for the server.
func NewSSETransport(server *Server, log *slog.Logger) *SSETransport {
	return &SSETransport{
		server:   server,
		sessions: make(map[string]*sseSession),
		log:      log,
	}
}

func (t *SSETransport) register() *sseSession {
	sess := &sseSession{
		id:     uuid.NewString(),
		events: make(chan []byte, sseEventBuffer),
	}

	t.mu.Lock()
	t.sessions[sess.id] = sess
	t.mu.Unlock()
	return sess
}

func (t *SSETransport) unregister(id string) {
	t.mu.Lock()
	delete(t.sessions, id)
	t.mu.Unlock()
}

// lookup resolves the session for a companion POST. An empty id resolves to
// the session only when exactly one stream is open.
func (t *SSETransport) lookup(id string) *sseSession {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if id != "" {
		return t.sessions[id]
	}
	if len(t.sessions) == 1 {
		for _, sess := range t.sessions {
			return sess
		}
	}
	return nil
}

// SessionCount returns the number of open SSE streams.
func (t *SSETransport) SessionCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}

// HandleSSE handles GET /sse. It registers a session, announces the
// companion endpoint, then relays responses until the client disconnects.
func (t *SSETransport) HandleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	sess := t.register()
	defer t.unregister(sess.id)

	t.log.Info("sse stream opened", "session", sess.id)
	defer t.log.Info("sse stream closed", "session", sess.id)

	fmt.Fprintf(w, "event: endpoint\ndata: /messages?session_id=%s\n\n", sess.id)
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-sess.events:
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// HandleMessages handles POST /messages. Requests are dispatched to
// completion in arrival order and the encoded response is pushed onto the
// session's event stream; the POST itself is acknowledged with 202.
func (t *SSETransport) HandleMessages(w http.ResponseWriter, r *http.Request) {
	sess := t.lookup(r.URL.Query().Get("session_id"))
	if sess == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": "No SSE connection established",
		})
		return
	}

	req, parseErr := ParseRequest(r.Body)
	if parseErr != nil {
		t.push(r.Context(), sess, ErrorResponse(nil, parseErr))
		w.WriteHeader(http.StatusAccepted)
		return
	}

	result, rpcErr := t.server.Dispatch(r.Context(), req)

	if req.IsNotification() {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	if rpcErr != nil {
		t.push(r.Context(), sess, ErrorResponse(req.ID, rpcErr))
	} else {
		t.push(r.Context(), sess, SuccessResponse(req.ID, result))
	}
	w.WriteHeader(http.StatusAccepted)
}

// push enqueues a response on the session's event stream. A slow stream
// backpressures the POST instead of losing the response; the posting
// request's context bounds the wait.
func (t *SSETransport) push(ctx context.Context, sess *sseSession, resp *JSONRPCResponse) {
	data, err := MarshalResponse(resp)
	if err != nil {
		t.log.Error("failed to marshal response", "error", err)
		return
	}

	select {
	case sess.events <- data:
	case <-ctx.Done():
		t.log.Warn("poster gone before response delivery", "session", sess.id)
	}
}
