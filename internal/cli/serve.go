package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/flyer-dates/internal/server"
)

// serveCmd runs the MCP server on stdio.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as an MCP server over stdin/stdout",
	Long: `Serve speaks MCP (JSON-RPC 2.0, one message per line) on stdin and
stdout so that MCP clients can call the flyer tools. Logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("mcp server starting", "version", buildInfo.Version)
		srv := server.New(newExtractor(cfg), buildInfo.Version, logger)
		return srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
