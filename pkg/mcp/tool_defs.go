package mcp

// emptySchema is the input schema for tools that take no parameters.
func emptySchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
		"required":   []interface{}{},
	}
}

// allToolDefinitions returns every tool definition in registration order.
// The order is stable and defines the order of tools/list responses.
func allToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        "list_available_sites",
			Description: "List all available Apache site configurations",
			InputSchema: emptySchema(),
		},
		{
			Name:        "list_enabled_sites",
			Description: "List all enabled Apache site configurations",
			InputSchema: emptySchema(),
		},
		{
			Name:        "get_site_status",
			Description: "Get detailed status of a specific Apache site",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"site_name": map[string]interface{}{
						"type":        "string",
						"description": "Site configuration file name",
					},
				},
				"required": []interface{}{"site_name"},
			},
		},
		{
			Name:        "enable_site",
			Description: "Enable an Apache site configuration",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"site_name": map[string]interface{}{
						"type": "string",
					},
					"reload": map[string]interface{}{
						"type":    "boolean",
						"default": true,
					},
				},
				"required": []interface{}{"site_name"},
			},
		},
		{
			Name:        "disable_site",
			Description: "Disable an Apache site configuration",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"site_name": map[string]interface{}{
						"type": "string",
					},
					"reload": map[string]interface{}{
						"type":    "boolean",
						"default": true,
					},
				},
				"required": []interface{}{"site_name"},
			},
		},
		{
			Name:        "test_config",
			Description: "Test Apache configuration for syntax errors",
			InputSchema: emptySchema(),
		},
		{
			Name:        "reload_apache",
			Description: "Reload Apache configuration",
			InputSchema: emptySchema(),
		},
		{
			Name:        "restart_apache",
			Description: "Restart Apache web server",
			InputSchema: emptySchema(),
		},
	}
}
