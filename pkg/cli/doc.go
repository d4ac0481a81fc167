// Package cli implements the apachemgr command-line interface.
//
// Commands:
//
//	serve    start the HTTP server (SSE + streaming MCP transports, REST API)
//	mcp      start the MCP server in stdio mode
//	version  print build information
package cli
