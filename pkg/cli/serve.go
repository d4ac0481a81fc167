package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/apachemgr/apachemgr/pkg/admin"
	"github.com/apachemgr/apachemgr/pkg/apache"
	"github.com/apachemgr/apachemgr/pkg/config"
	"github.com/apachemgr/apachemgr/pkg/logging"
	"github.com/apachemgr/apachemgr/pkg/mcp"
)

// shutdownTimeout is the maximum time to wait for graceful shutdown.
const shutdownTimeout = 10 * time.Second

// serveFlags holds the flag values bound to the serve command.
type serveFlags struct {
	host           string
	port           int
	apiKey         string
	sitesAvailable string
	sitesEnabled   string
}

var serveFlagVals serveFlags

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server (MCP transports + REST API)",
	Long: `Start the HTTP server in the foreground.

The server exposes three surfaces on a single port:

1. SSE MCP transport:       GET /sse + POST /messages
2. Streaming MCP transport: GET /message + POST /message
3. REST API:                /sites/*, /config/test, /apache/*

All endpoints except / and /health require the X-API-Key header. The key
is read from the MCP_API_KEY environment variable, the configuration
file, or the --api-key flag; when unset a random key is generated and
logged at startup.`,
	Example: `  # Start with defaults (port 5001)
  apachemgr serve

  # Custom port and explicit key
  apachemgr serve --port 8080 --api-key s3cret

  # Manage a non-standard Apache layout
  apachemgr serve --sites-available /srv/apache/sites-available --sites-enabled /srv/apache/sites-enabled`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return runServe(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	f := &serveFlagVals
	serveCmd.Flags().StringVar(&f.host, "host", "", "Address to bind to (default 0.0.0.0)")
	serveCmd.Flags().IntVarP(&f.port, "port", "p", 0, "HTTP server port (default 5001)")
	serveCmd.Flags().StringVar(&f.apiKey, "api-key", "", "API key (or set MCP_API_KEY env var)")
	serveCmd.Flags().StringVar(&f.sitesAvailable, "sites-available", "", "Apache sites-available directory")
	serveCmd.Flags().StringVar(&f.sitesEnabled, "sites-enabled", "", "Apache sites-enabled directory")
}

// loadConfig builds the effective configuration from the file, environment,
// and any flags explicitly set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	applyFlagOverrides(cfg, cmd, &serveFlagVals)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlagOverrides copies explicitly-set flags over the loaded config.
// Flags win over both the file and the environment.
func applyFlagOverrides(cfg *config.Config, cmd *cobra.Command, f *serveFlags) {
	if cmd.Flags().Changed("host") {
		cfg.Host = f.host
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = f.port
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = f.apiKey
	}
	if cmd.Flags().Changed("sites-available") {
		cfg.SitesAvailable = f.sitesAvailable
	}
	if cmd.Flags().Changed("sites-enabled") {
		cfg.SitesEnabled = f.sitesEnabled
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
}

// newLogger builds the process logger from the config.
func newLogger(cfg *config.Config, out io.Writer) *slog.Logger {
	return logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logging.ParseFormat(cfg.LogFormat),
		Output: out,
	})
}

// newManager wires the Apache site manager with a real command runner.
func newManager(cfg *config.Config, log *slog.Logger) *apache.Manager {
	runner := apache.NewExecRunner(cfg.CommandTimeout, log)
	return apache.NewManager(cfg.SitesAvailable, cfg.SitesEnabled, runner, log)
}

// buildHandler assembles the full HTTP handler: REST routes and MCP
// transports on one mux, wrapped in auth, logging, and CORS.
func buildHandler(cfg *config.Config, mgr *apache.Manager, log *slog.Logger) (http.Handler, error) {
	auth, err := admin.NewAPIKeyAuth(cfg.APIKey, log)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	admin.NewAPI(mgr, log).Register(mux)

	mcpServer := mcp.NewServer(mgr, log)
	mcpServer.SetKeepAliveInterval(cfg.KeepAliveInterval)
	mcpServer.Routes(mux)

	var handler http.Handler = mux
	handler = auth.Middleware(handler)
	handler = admin.NewLoggingMiddleware(handler, log)
	handler = admin.NewCORSMiddleware(handler)
	return handler, nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	log := newLogger(cfg, nil)
	mgr := newManager(cfg, log)

	handler, err := buildHandler(cfg, mgr, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    cfg.Address(),
		Handler: handler,
		// Only the header read is bounded. The SSE and streaming endpoints
		// hold their connections open indefinitely, so no write timeout.
		ReadHeaderTimeout: cfg.ReadTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting",
			"addr", cfg.Address(),
			"sites_available", cfg.SitesAvailable,
			"sites_enabled", cfg.SitesEnabled,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
