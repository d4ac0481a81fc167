package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/apachemgr/apachemgr/pkg/logging"
)

// Server is the MCP protocol server. It owns the tool registry and resource
// provider and routes JSON-RPC requests to them; the transports in sse.go,
// stream.go and stdio.go all share this dispatch core.
type Server struct {
	tools     *ToolRegistry
	resources *ResourceProvider
	keepAlive time.Duration
	log       *slog.Logger

	sse    *SSETransport
	stream *StreamTransport
}

// NewServer creates an MCP server over the given site manager.
func NewServer(mgr SiteManager, log *slog.Logger) *Server {
	if log == nil {
		log = logging.Nop()
	}

	s := &Server{
		tools:     NewToolRegistry(mgr, log),
		resources: NewResourceProvider(mgr),
		keepAlive: time.Second,
		log:       log,
	}
	s.sse = NewSSETransport(s, log)
	s.stream = NewStreamTransport(s, log)
	return s
}

// SetKeepAliveInterval overrides the streaming transport's ping cadence.
func (s *Server) SetKeepAliveInterval(d time.Duration) {
	if d > 0 {
		s.keepAlive = d
	}
}

// Tools returns the tool registry.
func (s *Server) Tools() *ToolRegistry {
	return s.tools
}

// Resources returns the resource provider.
func (s *Server) Resources() *ResourceProvider {
	return s.resources
}

// Routes registers the transport endpoints on the mux.
func (s *Server) Routes(mux *http.ServeMux) {
	// SSE transport
	mux.HandleFunc("GET /sse", s.sse.HandleSSE)
	mux.HandleFunc("POST /messages", s.sse.HandleMessages)

	// HTTP streaming transport
	mux.HandleFunc("GET /message", s.stream.HandleStream)
	mux.HandleFunc("POST /message", s.stream.HandlePost)
}

// Dispatch routes a parsed request to the appropriate handler.
func (s *Server) Dispatch(ctx context.Context, req *JSONRPCRequest) (interface{}, *JSONRPCError) {
	s.log.Debug("dispatching", "method", req.Method)

	switch req.Method {
	case "initialize":
		return s.handleInitialize()
	case "notifications/initialized":
		return nil, nil

	case "tools/list":
		return s.handleToolsList()
	case "tools/call":
		return s.handleToolsCall(ctx, req.Params)

	case "resources/list":
		return s.handleResourcesList()
	case "resources/read":
		return s.handleResourcesRead(req.Params)

	default:
		return nil, MethodNotFoundError(req.Method)
	}
}

// handleInitialize handles the initialize request. The handshake is fixed
// metadata; it never touches the registry.
func (s *Server) handleInitialize() (interface{}, *JSONRPCError) {
	return &InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    ServerCapabilities{},
		ServerInfo: ServerInfo{
			Name:    ServerName,
			Version: ServerVersion,
		},
	}, nil
}

// handleToolsList returns the list of available tools.
func (s *Server) handleToolsList() (interface{}, *JSONRPCError) {
	return &ToolsListResult{
		Tools: s.tools.List(),
	}, nil
}

// handleToolsCall executes a tool.
func (s *Server) handleToolsCall(ctx context.Context, params json.RawMessage) (interface{}, *JSONRPCError) {
	callParams, err := UnmarshalParamsRequired[ToolCallParams](params)
	if err != nil {
		return nil, err
	}

	if callParams.Name == "" {
		return nil, NewJSONRPCErrorWithMessage(ErrCodeInvalidParams, "Missing tool name", nil)
	}

	return s.tools.Execute(ctx, callParams.Name, callParams.Arguments)
}

// handleResourcesList returns the list of available resources.
func (s *Server) handleResourcesList() (interface{}, *JSONRPCError) {
	return &ResourcesListResult{
		Resources: s.resources.List(),
	}, nil
}

// handleResourcesRead reads a resource.
func (s *Server) handleResourcesRead(params json.RawMessage) (interface{}, *JSONRPCError) {
	readParams, err := UnmarshalParamsRequired[ResourceReadParams](params)
	if err != nil {
		return nil, err
	}

	contents, readErr := s.resources.Read(readParams.URI)
	if readErr != nil {
		return nil, readErr
	}

	return &ResourceReadResult{
		Contents: contents,
	}, nil
}
