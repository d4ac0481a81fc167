package mcp

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// StreamTransport implements the unified streaming transport on /message.
// GET streams newline-delimited notifications to the client; POST carries
// one request per call and answers synchronously.
type StreamTransport struct {
	server *Server
	log    *slog.Logger
}

// NewStreamTransport creates the streaming transport for the server.
func NewStreamTransport(server *Server, log *slog.Logger) *StreamTransport {
	return &StreamTransport{server: server, log: log}
}

// HandleStream handles GET /message. The first line announces the base URI
// for POSTs; afterwards a keep-alive ping is written every interval until
// the request context is cancelled.
func (t *StreamTransport) HandleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")

	t.log.Info("stream opened", "remote", r.RemoteAddr)
	defer t.log.Info("stream closed", "remote", r.RemoteAddr)

	if err := t.writeLine(w, EndpointNotification(requestBaseURI(r))); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(t.server.keepAlive)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := t.writeLine(w, PingNotification()); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// writeLine writes one newline-delimited JSON notification.
func (t *StreamTransport) writeLine(w http.ResponseWriter, notif *JSONRPCNotification) error {
	data, err := json.Marshal(notif)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// requestBaseURI reconstructs the base URI the client reached us on.
func requestBaseURI(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// HandlePost handles POST /message: one request per call, answered
// synchronously with a single JSON body. Clients on this transport commonly
// omit the version tag and id, so the envelope is validated leniently and
// every request except a fire-and-forget notification gets a response body,
// echoing whatever id was supplied (null included).
func (t *StreamTransport) HandlePost(w http.ResponseWriter, r *http.Request) {
	req, parseErr := parseSyncRequest(r.Body)
	if parseErr != nil {
		t.writeResponse(w, statusForError(parseErr), ErrorResponse(nil, parseErr))
		return
	}

	result, rpcErr := t.server.Dispatch(r.Context(), req)

	if isNotificationMethod(req.Method) {
		w.WriteHeader(http.StatusOK)
		return
	}

	if rpcErr != nil {
		t.writeResponse(w, statusForError(rpcErr), ErrorResponse(req.ID, rpcErr))
		return
	}

	t.writeResponse(w, http.StatusOK, SuccessResponse(req.ID, result))
}

// parseSyncRequest decodes a request on the synchronous transport. Only the
// method is required; the version tag, when present, must still be "2.0".
func parseSyncRequest(r io.Reader) (*JSONRPCRequest, *JSONRPCError) {
	var req JSONRPCRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, ParseError(err.Error())
	}

	if req.JSONRPC != "" && req.JSONRPC != "2.0" {
		return nil, InvalidRequestError("jsonrpc must be \"2.0\"")
	}
	if req.Method == "" {
		return nil, InvalidRequestError("method is required")
	}
	return &req, nil
}

// isNotificationMethod reports whether the method is fire-and-forget and
// never carries a response body.
func isNotificationMethod(method string) bool {
	return strings.HasPrefix(method, "notifications/")
}

func (t *StreamTransport) writeResponse(w http.ResponseWriter, status int, resp *JSONRPCResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		t.log.Error("failed to write response", "error", err)
	}
}

// statusForError maps JSON-RPC error codes to HTTP statuses on the
// synchronous transport.
func statusForError(err *JSONRPCError) int {
	if err.status != 0 {
		return err.status
	}
	switch err.Code {
	case ErrCodeParseError, ErrCodeInvalidRequest, ErrCodeInvalidParams:
		return http.StatusBadRequest
	case ErrCodeMethodNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
