package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/apachemgr/apachemgr/pkg/mcp"
)

// mcpCmd is the Cobra command for "apachemgr mcp".
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server in stdio mode for AI assistants",
	Long: `Start the Model Context Protocol (MCP) server in stdio mode.

This is used by AI assistants (Claude Desktop, Cursor, etc.) to manage
Apache sites through the MCP protocol over stdin/stdout. Logs go to
stderr so they never interfere with the protocol stream.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		// stdout carries the protocol; everything else goes to stderr.
		log := newLogger(cfg, os.Stderr)

		mgr := newManager(cfg, log)
		stdio := mcp.NewStdioServer(mcp.NewServer(mgr, log))
		stdio.SetLogger(log)
		return stdio.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
