package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/dumpling/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd(a *app) *cobra.Command {
	var (
		transport string
		port      int
	)
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Exposes the wizard to AI agents as MCP tools and resources.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serveMCP(ctx, transport)
		},
	}
	cmd.Flags().StringVar(&transport, "transport", "stdio", "transport protocol: stdio or sse")
	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on (sse only)")
	return cmd
}

func (a *app) serveMCP(ctx context.Context, transport string) error {
	if transport != "stdio" && transport != "sse" {
		return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
	}

	// Stdout belongs to JSON-RPC on stdio, so printed cards go to stderr.
	wiz, closeBackend, err := a.wizard(os.Stderr)
	if err != nil {
		return err
	}
	defer closeBackend()

	srv := mcp.NewServer(wiz)
	if transport == "stdio" {
		a.logger.Info("starting dumpling MCP server (stdio)")
		return srv.ServeStdio()
	}

	a.logger.Info("starting dumpling MCP server (sse)", "port", a.cfg.Port)
	if err := srv.ServeSSE(ctx, a.cfg.Port); err != nil {
		return err
	}
	a.logger.Info("MCP server stopped gracefully")
	return nil
}
