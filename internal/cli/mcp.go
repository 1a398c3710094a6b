package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	gatemcp "github.com/ppiankov/truthgate/internal/mcp"
)

var mcpRoot string

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVarP(&mcpRoot, "dir", "C", "", "Default project directory for tool calls without cwd")
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for agent integration",
	Long: "Runs truthgate as an MCP (Model Context Protocol) server over stdio.\n" +
		"Exposes truthgate_check (dry-run a tool call) and truthgate_status.",
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog := newLogger(cfg)
	defer closeLog()

	srv, err := gatemcp.New(gatemcp.Config{
		Root:        mcpRoot,
		CatalogPath: cfg.Catalog.Path,
		Version:     version,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(os.Stderr, "truthgate MCP server running on stdio")
	return srv.Run(ctx)
}
