// Package mcp implements a Model Context Protocol server for Apache site
// management over three transports that share one dispatch core:
//
//   - SSE: GET /sse opens the event stream, POST /messages?session_id=
//     carries requests; responses arrive as message events.
//   - HTTP streaming: GET /message streams an endpoint notification plus
//     keep-alive pings, POST /message answers each request synchronously.
//   - Stdio: newline-delimited JSON-RPC on stdin/stdout.
//
// Tools validate their arguments against compiled JSON Schemas before the
// handler runs; operational failures of the underlying apachectl commands
// surface as error-flagged tool results, never as protocol errors.
package mcp
