package mcp

import (
	"context"
	"encoding/json"
	"testing"
)

func dispatch(t *testing.T, s *Server, raw string) (interface{}, *JSONRPCError) {
	t.Helper()
	req, parseErr := ParseRequestBytes([]byte(raw))
	if parseErr != nil {
		t.Fatalf("parse: %v", parseErr)
	}
	return s.Dispatch(context.Background(), req)
}

func TestDispatch_Initialize(t *testing.T) {
	t.Parallel()

	s := NewServer(newFakeSiteManager(), nil)
	result, rpcErr := dispatch(t, s, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0.0.1"}}}`)
	if rpcErr != nil {
		t.Fatalf("unexpected error: %v", rpcErr)
	}

	init, ok := result.(*InitializeResult)
	if !ok {
		t.Fatalf("result type %T", result)
	}
	if init.ProtocolVersion != "2024-11-05" {
		t.Errorf("protocolVersion = %q", init.ProtocolVersion)
	}
	if init.ServerInfo.Name != "apache-manager" || init.ServerInfo.Version != "1.0.0" {
		t.Errorf("serverInfo = %+v", init.ServerInfo)
	}

	// Capabilities must serialize as {"tools":{},"resources":{}}.
	data, err := json.Marshal(init.Capabilities)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"tools":{},"resources":{}}` {
		t.Errorf("capabilities = %s", data)
	}
}

func TestDispatch_InitializedNotification(t *testing.T) {
	t.Parallel()

	s := NewServer(newFakeSiteManager(), nil)
	result, rpcErr := dispatch(t, s, `{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	if rpcErr != nil {
		t.Fatalf("unexpected error: %v", rpcErr)
	}
	if result != nil {
		t.Errorf("result = %v, want nil", result)
	}
}

func TestDispatch_UnknownMethod(t *testing.T) {
	t.Parallel()

	s := NewServer(newFakeSiteManager(), nil)
	_, rpcErr := dispatch(t, s, `{"jsonrpc":"2.0","id":1,"method":"prompts/list"}`)
	if rpcErr == nil {
		t.Fatal("expected method not found error")
	}
	if rpcErr.Code != ErrCodeMethodNotFound {
		t.Errorf("code = %d, want %d", rpcErr.Code, ErrCodeMethodNotFound)
	}
}

func TestDispatch_ToolsList(t *testing.T) {
	t.Parallel()

	f := newFakeSiteManager()
	s := NewServer(f, nil)
	result, rpcErr := dispatch(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	if rpcErr != nil {
		t.Fatalf("unexpected error: %v", rpcErr)
	}

	list, ok := result.(*ToolsListResult)
	if !ok {
		t.Fatalf("result type %T", result)
	}
	if len(list.Tools) != 8 {
		t.Errorf("got %d tools, want 8", len(list.Tools))
	}
	if list.Tools[0].Name != "list_available_sites" {
		t.Errorf("first tool = %q", list.Tools[0].Name)
	}
}

func TestDispatch_ToolsCall(t *testing.T) {
	t.Parallel()

	f := newFakeSiteManager()
	f.available = []string{"site.conf"}
	s := NewServer(f, nil)

	result, rpcErr := dispatch(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"list_available_sites","arguments":{}}}`)
	if rpcErr != nil {
		t.Fatalf("unexpected error: %v", rpcErr)
	}
	if _, ok := result.(*ToolResult); !ok {
		t.Fatalf("result type %T", result)
	}
}

func TestDispatch_ToolsCallMissingParams(t *testing.T) {
	t.Parallel()

	s := NewServer(newFakeSiteManager(), nil)

	_, rpcErr := dispatch(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/call"}`)
	if rpcErr == nil || rpcErr.Code != ErrCodeInvalidParams {
		t.Fatalf("expected invalid params, got %v", rpcErr)
	}

	_, rpcErr = dispatch(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"arguments":{}}}`)
	if rpcErr == nil || rpcErr.Code != ErrCodeInvalidParams {
		t.Fatalf("expected invalid params for missing name, got %v", rpcErr)
	}
}

func TestDispatch_ResourcesRead(t *testing.T) {
	t.Parallel()

	f := newFakeSiteManager()
	f.available = []string{"site.conf"}
	f.configs["site.conf"] = "content"
	s := NewServer(f, nil)

	result, rpcErr := dispatch(t, s, `{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":"apache://sites-available/site.conf"}}`)
	if rpcErr != nil {
		t.Fatalf("unexpected error: %v", rpcErr)
	}

	read, ok := result.(*ResourceReadResult)
	if !ok {
		t.Fatalf("result type %T", result)
	}
	if len(read.Contents) != 1 || read.Contents[0].URI != "apache://sites-available/site.conf" {
		t.Errorf("contents = %+v", read.Contents)
	}

	// Out-of-scheme URIs are rejected before the catalog is consulted.
	_, rpcErr = dispatch(t, s, `{"jsonrpc":"2.0","id":2,"method":"resources/read","params":{"uri":"file:///etc/passwd"}}`)
	if rpcErr == nil || rpcErr.Code != ErrCodeInvalidParams {
		t.Fatalf("expected invalid params, got %v", rpcErr)
	}
}
