package mcp

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseRequestBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantErr  int
		wantMeth string
	}{
		{
			name:     "valid request",
			input:    `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`,
			wantMeth: "tools/list",
		},
		{
			name:     "valid notification",
			input:    `{"jsonrpc":"2.0","method":"notifications/initialized"}`,
			wantMeth: "notifications/initialized",
		},
		{
			name:    "malformed json",
			input:   `{"jsonrpc":"2.0",`,
			wantErr: ErrCodeParseError,
		},
		{
			name:    "missing method",
			input:   `{"jsonrpc":"2.0","id":1}`,
			wantErr: ErrCodeInvalidRequest,
		},
		{
			name:    "wrong version",
			input:   `{"jsonrpc":"1.0","id":1,"method":"tools/list"}`,
			wantErr: ErrCodeInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rpcErr := ParseRequestBytes([]byte(tt.input))
			if tt.wantErr != 0 {
				if rpcErr == nil {
					t.Fatalf("expected error code %d, got request %+v", tt.wantErr, req)
				}
				if rpcErr.Code != tt.wantErr {
					t.Errorf("error code = %d, want %d", rpcErr.Code, tt.wantErr)
				}
				return
			}
			if rpcErr != nil {
				t.Fatalf("unexpected error: %v", rpcErr)
			}
			if req.Method != tt.wantMeth {
				t.Errorf("method = %q, want %q", req.Method, tt.wantMeth)
			}
		})
	}
}

func TestParseRequest_Reader(t *testing.T) {
	t.Parallel()

	req, rpcErr := ParseRequest(strings.NewReader(`{"jsonrpc":"2.0","id":"a","method":"initialize"}`))
	if rpcErr != nil {
		t.Fatalf("unexpected error: %v", rpcErr)
	}
	if req.Method != "initialize" {
		t.Errorf("method = %q", req.Method)
	}
}

// TestIDRoundTrip verifies request ids of every JSON form are echoed back
// byte-for-byte in responses.
func TestIDRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		wantID string
	}{
		{"string id", `{"jsonrpc":"2.0","id":"abc","method":"x"}`, `"id":"abc"`},
		{"number id", `{"jsonrpc":"2.0","id":42,"method":"x"}`, `"id":42`},
		{"null id", `{"jsonrpc":"2.0","id":null,"method":"x"}`, `"id":null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rpcErr := ParseRequestBytes([]byte(tt.input))
			if rpcErr != nil {
				t.Fatalf("parse: %v", rpcErr)
			}

			data, err := MarshalResponse(SuccessResponse(req.ID, map[string]string{}))
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if !strings.Contains(string(data), tt.wantID) {
				t.Errorf("response %s does not contain %s", data, tt.wantID)
			}
		})
	}
}

func TestIsNotification(t *testing.T) {
	t.Parallel()

	withID, _ := ParseRequestBytes([]byte(`{"jsonrpc":"2.0","id":1,"method":"x"}`))
	if withID.IsNotification() {
		t.Error("request with id should not be a notification")
	}

	withoutID, _ := ParseRequestBytes([]byte(`{"jsonrpc":"2.0","method":"x"}`))
	if !withoutID.IsNotification() {
		t.Error("request without id should be a notification")
	}
}

func TestMarshalErrorResponse(t *testing.T) {
	t.Parallel()

	// Error responses must always encode, even with nested detail payloads.
	resp := ErrorResponse("req-1", InternalError(json.Unmarshal([]byte("{"), &struct{}{})))
	data, err := MarshalResponse(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	errObj, ok := decoded["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("no error object in %s", data)
	}
	if errObj["code"].(float64) != ErrCodeInternalError {
		t.Errorf("code = %v", errObj["code"])
	}
}

func TestSuccessResponse_NilResult(t *testing.T) {
	t.Parallel()

	// A nil result must still serialize an explicit result member; a
	// response with neither result nor error is not a valid shape.
	data, err := MarshalResponse(SuccessResponse(1, nil))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"result":null`) {
		t.Errorf("response %s lacks an explicit null result", data)
	}
	if strings.Contains(string(data), `"error"`) {
		t.Errorf("response %s carries an error member", data)
	}
}

func TestUnmarshalParams(t *testing.T) {
	t.Parallel()

	params, rpcErr := UnmarshalParams[ToolCallParams](json.RawMessage(`{"name":"test_config","arguments":{"a":1}}`))
	if rpcErr != nil {
		t.Fatalf("unexpected error: %v", rpcErr)
	}
	if params.Name != "test_config" {
		t.Errorf("name = %q", params.Name)
	}

	// Empty params yield a zero value.
	empty, rpcErr := UnmarshalParams[ToolCallParams](nil)
	if rpcErr != nil {
		t.Fatalf("unexpected error: %v", rpcErr)
	}
	if empty.Name != "" {
		t.Errorf("zero value expected, got %+v", empty)
	}

	// Required variant rejects missing params.
	if _, rpcErr := UnmarshalParamsRequired[ToolCallParams](nil); rpcErr == nil {
		t.Error("expected error for missing required params")
	}
}

func TestToolResultHelpers(t *testing.T) {
	t.Parallel()

	ok := ToolResultText("fine")
	if ok.IsError || len(ok.Content) != 1 || ok.Content[0].Text != "fine" {
		t.Errorf("unexpected result: %+v", ok)
	}

	bad := ToolResultErrorf("broke: %s", "reason")
	if !bad.IsError || bad.Content[0].Text != "broke: reason" {
		t.Errorf("unexpected result: %+v", bad)
	}
}

func TestEndpointNotification(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(EndpointNotification("http://localhost:5001"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"jsonrpc":"2.0","method":"endpoint","params":{"uri":"http://localhost:5001"}}`
	if string(data) != want {
		t.Errorf("notification = %s, want %s", data, want)
	}
}
