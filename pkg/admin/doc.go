// Package admin provides the REST API for Apache site management plus the
// shared HTTP middleware: API key authentication, CORS, and request logging.
package admin
