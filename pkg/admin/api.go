package admin

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/apachemgr/apachemgr/pkg/apache"
	"github.com/apachemgr/apachemgr/pkg/httputil"
	"github.com/apachemgr/apachemgr/pkg/logging"
)

// SiteManager is the Apache management surface the REST API runs against.
// *apache.Manager is the production implementation.
type SiteManager interface {
	ListAvailable() []string
	ListEnabled() []string
	IsEnabled(site string) bool
	SiteExists(site string) bool
	ReadConfig(site string) (string, bool)
	ConfigPath(site string) string
	EnabledPath(site string) string
	Enable(ctx context.Context, site string) apache.Result
	Disable(ctx context.Context, site string) apache.Result
	TestConfig(ctx context.Context) apache.Result
	Reload(ctx context.Context) apache.Result
	Restart(ctx context.Context) apache.Result
}

// API is the REST surface for Apache site management.
type API struct {
	mgr SiteManager
	log *slog.Logger
}

// NewAPI creates the REST API over the site manager.
func NewAPI(mgr SiteManager, log *slog.Logger) *API {
	if log == nil {
		log = logging.Nop()
	}
	return &API{mgr: mgr, log: log}
}

// Register registers all REST routes on the mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /", a.handleRoot)
	mux.HandleFunc("GET /health", a.handleHealth)

	mux.HandleFunc("GET /sites/available", a.handleListAvailable)
	mux.HandleFunc("GET /sites/enabled", a.handleListEnabled)
	mux.HandleFunc("GET /sites/{site}", a.handleSiteDetail)
	mux.HandleFunc("POST /sites/enable", a.handleEnableSite)
	mux.HandleFunc("POST /sites/disable", a.handleDisableSite)

	mux.HandleFunc("GET /config/test", a.handleTestConfig)
	mux.HandleFunc("POST /apache/reload", a.handleReload)
	mux.HandleFunc("POST /apache/restart", a.handleRestart)
}

// handleRoot handles GET / with server and endpoint information.
func (a *API) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		httputil.WriteNotFound(w, "Not found", r.URL.Path)
		return
	}

	httputil.WriteOK(w, map[string]interface{}{
		"name":    "Apache Management MCP Server",
		"version": "1.0.0",
		"transports": map[string]interface{}{
			"sse": map[string]interface{}{
				"endpoints": map[string]string{
					"sse":      "/sse (GET)",
					"messages": "/messages (POST)",
				},
				"description": "Server-Sent Events transport",
			},
			"http-streaming": map[string]interface{}{
				"endpoint":    "/message (GET + POST)",
				"description": "HTTP Streaming transport",
			},
		},
		"rest_endpoints": map[string]string{
			"GET /health":          "Health check",
			"GET /sites/available": "List available sites",
			"GET /sites/enabled":   "List enabled sites",
			"GET /sites/{site}":    "Get site details",
			"POST /sites/enable":   "Enable a site",
			"POST /sites/disable":  "Disable a site",
			"GET /config/test":     "Test Apache configuration",
			"POST /apache/reload":  "Reload Apache",
			"POST /apache/restart": "Restart Apache",
		},
		"authentication": map[string]interface{}{
			"enabled": true,
			"method":  "API Key",
			"header":  APIKeyHeader,
		},
	})
}

// handleHealth handles GET /health.
func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteOK(w, map[string]interface{}{
		"status":         "healthy",
		"service":        "apache-mcp-server",
		"version":        "1.0.0",
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"authentication": "enabled",
		"transports":     []string{"sse", "http-streaming"},
	})
}
