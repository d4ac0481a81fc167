package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestHandleMessages_NoSession(t *testing.T) {
	t.Parallel()

	_, ts := newStreamTestServer(t, newFakeSiteManager())

	resp, err := http.Post(ts.URL+"/messages", "application/json",
		strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "No SSE connection established" {
		t.Errorf("body = %v", body)
	}
}

func TestHandleMessages_UnknownSession(t *testing.T) {
	t.Parallel()

	s, ts := newStreamTestServer(t, newFakeSiteManager())

	resp, err := http.Get(ts.URL + "/sse")
	if err != nil {
		t.Fatalf("get sse: %v", err)
	}
	defer resp.Body.Close()
	waitForSessions(t, s, 1)

	post, err := http.Post(ts.URL+"/messages?session_id=bogus", "application/json",
		strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer post.Body.Close()

	if post.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", post.StatusCode)
	}
}

func waitForSessions(t *testing.T, s *Server, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.sse.SessionCount() == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session count never reached %d", n)
}

// readSSEEvent reads one event/data pair from the stream.
func readSSEEvent(t *testing.T, reader *bufio.Reader) (event, data string) {
	t.Helper()
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read sse stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && event != "":
			return event, data
		}
	}
}

func TestSSE_FullFlow(t *testing.T) {
	t.Parallel()

	f := newFakeSiteManager()
	f.available = []string{"site.conf"}
	_, ts := newStreamTestServer(t, f)

	resp, err := http.Get(ts.URL + "/sse")
	if err != nil {
		t.Fatalf("get sse: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}

	reader := bufio.NewReader(resp.Body)

	// First event announces the companion endpoint with this stream's id.
	event, data := readSSEEvent(t, reader)
	if event != "endpoint" {
		t.Fatalf("first event = %q, want endpoint", event)
	}
	if !strings.HasPrefix(data, "/messages?session_id=") {
		t.Fatalf("endpoint data = %q", data)
	}

	// POST to the announced endpoint; the response arrives on the stream.
	post, err := http.Post(ts.URL+data, "application/json",
		strings.NewReader(`{"jsonrpc":"2.0","id":7,"method":"tools/list"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	post.Body.Close()
	if post.StatusCode != http.StatusAccepted {
		t.Errorf("post status = %d, want 202", post.StatusCode)
	}

	event, data = readSSEEvent(t, reader)
	if event != "message" {
		t.Fatalf("event = %q, want message", event)
	}

	var rpcResp struct {
		ID     float64 `json:"id"`
		Result struct {
			Tools []ToolDefinition `json:"tools"`
		} `json:"result"`
	}
	if err := json.Unmarshal([]byte(data), &rpcResp); err != nil {
		t.Fatalf("decode %q: %v", data, err)
	}
	if rpcResp.ID != 7 {
		t.Errorf("id = %v", rpcResp.ID)
	}
	if len(rpcResp.Result.Tools) != 8 {
		t.Errorf("got %d tools", len(rpcResp.Result.Tools))
	}
}

func TestSSE_ImplicitSingleSession(t *testing.T) {
	t.Parallel()

	s, ts := newStreamTestServer(t, newFakeSiteManager())

	resp, err := http.Get(ts.URL + "/sse")
	if err != nil {
		t.Fatalf("get sse: %v", err)
	}
	defer resp.Body.Close()
	waitForSessions(t, s, 1)

	// With exactly one open stream, a POST without session_id resolves to it.
	post, err := http.Post(ts.URL+"/messages", "application/json",
		strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer post.Body.Close()

	if post.StatusCode != http.StatusAccepted {
		t.Errorf("status = %d, want 202", post.StatusCode)
	}
}

func TestSSE_SessionTeardown(t *testing.T) {
	t.Parallel()

	s, ts := newStreamTestServer(t, newFakeSiteManager())

	resp, err := http.Get(ts.URL + "/sse")
	if err != nil {
		t.Fatalf("get sse: %v", err)
	}
	waitForSessions(t, s, 1)

	resp.Body.Close()
	waitForSessions(t, s, 0)
}

func TestPush_BacklogDeliveredNotDropped(t *testing.T) {
	t.Parallel()

	s := NewServer(newFakeSiteManager(), nil)
	sess := s.sse.register()
	defer s.sse.unregister(sess.id)

	for i := 0; i < sseEventBuffer; i++ {
		s.sse.push(context.Background(), sess, SuccessResponse(i, "ok"))
	}

	// The buffer is full. Draining one slot must unblock the next push so
	// the response is delivered rather than lost.
	go func() {
		time.Sleep(20 * time.Millisecond)
		<-sess.events
	}()

	done := make(chan struct{})
	go func() {
		s.sse.push(context.Background(), sess, SuccessResponse("last", "ok"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("push did not complete after the stream drained")
	}
	if got := len(sess.events); got != sseEventBuffer {
		t.Errorf("queued events = %d, want %d", got, sseEventBuffer)
	}
}

func TestPush_AbandonedWhenPosterCancels(t *testing.T) {
	t.Parallel()

	s := NewServer(newFakeSiteManager(), nil)
	sess := s.sse.register()
	defer s.sse.unregister(sess.id)

	for i := 0; i < sseEventBuffer; i++ {
		s.sse.push(context.Background(), sess, SuccessResponse(i, "ok"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		s.sse.push(ctx, sess, SuccessResponse("late", "ok"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("push did not return for a cancelled poster")
	}
}

func TestSSE_NotificationAcknowledged(t *testing.T) {
	t.Parallel()

	s, ts := newStreamTestServer(t, newFakeSiteManager())

	resp, err := http.Get(ts.URL + "/sse")
	if err != nil {
		t.Fatalf("get sse: %v", err)
	}
	defer resp.Body.Close()
	waitForSessions(t, s, 1)

	post, err := http.Post(ts.URL+"/messages", "application/json",
		strings.NewReader(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer post.Body.Close()

	if post.StatusCode != http.StatusAccepted {
		t.Errorf("status = %d, want 202", post.StatusCode)
	}
}
