// Package mcp exposes truthgate's gate checks as MCP tools over stdio.
package mcp

import (
	"context"
	"fmt"
	"os"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/ppiankov/truthgate/internal/gates"
)

// Config holds MCP server configuration.
type Config struct {
	// Root is used when a tool call omits cwd. Defaults to the process
	// working directory.
	Root        string
	CatalogPath string
	Version     string
	Logger      *zap.Logger
}

// Server wraps the MCP SDK server. Every tool call reloads the truth store,
// so the server holds no workflow state of its own.
type Server struct {
	mcpServer *mcpsdk.Server
	catalog   *gates.Catalog
	root      string
	logger    *zap.Logger
}

// New creates an MCP server with the gate catalog and tools loaded.
func New(cfg Config) (*Server, error) {
	catalog, err := gates.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	root := cfg.Root
	if root == "" {
		if root, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		catalog: catalog,
		root:    root,
		logger:  logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "truthgate",
			Version: version,
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// registerTools adds the truthgate tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "truthgate_check",
		Description: "Check whether a shell command or file write would pass the project's workflow gates, without running it.",
	}, s.handleCheck)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "truthgate_status",
		Description: "Report onboarding progress and, for every gate, its status plus any missing prerequisite gates and agent spawns.",
	}, s.handleStatus)
}
