package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	mcpTransport "github.com/kailas-cloud/gamesim/internal/transport/mcp"
	"github.com/kailas-cloud/gamesim/internal/version"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the similarity tools as an MCP server over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			d, err := wire(ctx, a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer d.Close()

			server := mcpTransport.NewServer(d.similarity, a.cfg.MCP.Name, version.Version, a.logger)
			a.logger.Info("Starting MCP server on stdio", zap.String("name", a.cfg.MCP.Name))
			return mcpTransport.Serve(ctx, server)
		},
	}
}
