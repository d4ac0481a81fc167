package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/apachemgr/apachemgr/pkg/logging"
)

// ToolHandler is the signature for tool execution functions.
type ToolHandler func(ctx context.Context, args map[string]interface{}) (*ToolResult, error)

// Tool represents a registered MCP tool. The input schema is compiled once
// at registration so every call validates without recompilation.
type Tool struct {
	Definition ToolDefinition
	Handler    ToolHandler

	schema   *jsonschema.Schema
	defaults map[string]interface{}
}

// ToolRegistry manages all registered MCP tools.
// Tools are stored in a slice to preserve registration order for tools/list.
type ToolRegistry struct {
	tools  []*Tool
	byName map[string]*Tool
	log    *slog.Logger
}

// NewToolRegistry creates a tool registry and registers all Apache
// management tools against the given site manager.
func NewToolRegistry(mgr SiteManager, log *slog.Logger) *ToolRegistry {
	if log == nil {
		log = logging.Nop()
	}
	r := &ToolRegistry{
		tools:  make([]*Tool, 0, 8),
		byName: make(map[string]*Tool, 8),
		log:    log,
	}

	r.registerBuiltinTools(mgr)
	return r
}

// registerBuiltinTools registers all 8 tools from tool_defs.go with their handlers.
func (r *ToolRegistry) registerBuiltinTools(mgr SiteManager) {
	t := &siteTools{mgr: mgr}

	handlers := map[string]ToolHandler{
		"list_available_sites": t.listAvailableSites,
		"list_enabled_sites":   t.listEnabledSites,
		"get_site_status":      t.getSiteStatus,
		"enable_site":          t.enableSite,
		"disable_site":         t.disableSite,
		"test_config":          t.testConfig,
		"reload_apache":        t.reloadApache,
		"restart_apache":       t.restartApache,
	}

	// Register in definition order (from tool_defs.go) to guarantee
	// consistent ordering in tools/list responses.
	for _, def := range allToolDefinitions() {
		handler, ok := handlers[def.Name]
		if !ok {
			continue
		}
		r.Register(&Tool{
			Definition: def,
			Handler:    handler,
		})
	}
}

// Register adds a tool to the registry, compiling its input schema.
func (r *ToolRegistry) Register(tool *Tool) {
	tool.schema = mustCompileSchema(tool.Definition.Name, tool.Definition.InputSchema)
	tool.defaults = schemaDefaults(tool.Definition.InputSchema)
	r.tools = append(r.tools, tool)
	r.byName[tool.Definition.Name] = tool
}

// Get retrieves a tool by name.
func (r *ToolRegistry) Get(name string) *Tool {
	return r.byName[name]
}

// List returns all tool definitions in registration order.
func (r *ToolRegistry) List() []ToolDefinition {
	defs := make([]ToolDefinition, 0, len(r.tools))
	for _, tool := range r.tools {
		defs = append(defs, tool.Definition)
	}
	return defs
}

// Execute validates arguments against the tool's schema and invokes its
// handler. Unknown tools and handler failures come back as error-flagged
// tool results; schema violations are invalid-params protocol errors; a
// panicking handler is recovered into an internal error.
func (r *ToolRegistry) Execute(ctx context.Context, name string, args map[string]interface{}) (result *ToolResult, rpcErr *JSONRPCError) {
	tool := r.byName[name]
	if tool == nil {
		return ToolResultError("Unknown tool: " + name), nil
	}

	if args == nil {
		args = map[string]interface{}{}
	}

	if err := tool.schema.Validate(args); err != nil {
		return nil, InvalidParamsError(err.Error())
	}

	for key, val := range tool.defaults {
		if _, ok := args[key]; !ok {
			args[key] = val
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("tool handler panic", "tool", name, "panic", rec)
			result = nil
			rpcErr = InternalError(fmt.Errorf("tool %s: %v", name, rec))
		}
	}()

	res, err := tool.Handler(ctx, args)
	if err != nil {
		return ToolResultError(err.Error()), nil
	}
	return res, nil
}

// mustCompileSchema compiles a static tool input schema. The schemas are
// fixed literals, so a compile failure is a programming error.
func mustCompileSchema(name string, schema map[string]interface{}) *jsonschema.Schema {
	data, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("marshal schema for tool %s: %v", name, err))
	}
	compiled, err := jsonschema.CompileString(name+".json", string(data))
	if err != nil {
		panic(fmt.Sprintf("compile schema for tool %s: %v", name, err))
	}
	return compiled
}

// schemaDefaults extracts property defaults from an input schema.
func schemaDefaults(schema map[string]interface{}) map[string]interface{} {
	props, ok := schema["properties"].(map[string]interface{})
	if !ok {
		return nil
	}

	defaults := make(map[string]interface{})
	for key, raw := range props {
		prop, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if val, ok := prop["default"]; ok {
			defaults[key] = val
		}
	}
	if len(defaults) == 0 {
		return nil
	}
	return defaults
}

// Argument extraction helpers

func getString(args map[string]interface{}, key, defaultVal string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return defaultVal
}

func getBool(args map[string]interface{}, key string, defaultVal bool) bool {
	if v, ok := args[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}
