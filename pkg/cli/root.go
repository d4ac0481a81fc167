package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Persistent flags available to all subcommands
	configFile string
	logLevel   string
	logFormat  string

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "apachemgr",
	Short: "apachemgr manages Apache site configurations over MCP and REST",
	Long: `apachemgr exposes Apache virtual host management (a2ensite, a2dissite,
configtest, reload, restart) to AI assistants via the Model Context
Protocol and to scripts via a REST API.

Run 'apachemgr serve' for the HTTP server (SSE + streaming MCP transports
plus the REST API) or 'apachemgr mcp' for stdio mode.

Configuration can be provided via flags, environment variables, or a YAML
configuration file passed with --config.`,
	// No Run function here means 'apachemgr' with no args prints help text.
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Execute()
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text, json)")
}
