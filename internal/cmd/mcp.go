package cmd

import (
	"os"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/ganot/entreate/internal/mcp"
)

// NewMCPCmd creates the command that serves MCP over stdio.
func NewMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve MCP over stdin/stdout",
		Long: `Serve the journal tools to an MCP client over stdio. Logs go to
stderr, or to $ENTREATE_LOG_PATH, so stdout carries only JSON-RPC.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			server := mcp.NewServer(mcp.Config{
				Services:      a.services(),
				TransportMode: "stdio",
				Logger:        a.logger,
			})
			a.logger.Info("starting stdio transport", "journal", a.cfg.JournalURL())
			return server.Run(cmd.Context(), &sdkmcp.StdioTransport{})
		},
	}
}
