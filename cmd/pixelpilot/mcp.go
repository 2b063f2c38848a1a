package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/pixelpilot"
	"github.com/aretw0/pixelpilot/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp [graph-file]",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts an engine as an MCP server so agents can edit graphs, step or run the
engine and read shared state through tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("addr")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, "")
		if err != nil {
			return err
		}
		defer a.Close()
		defer a.engine.Stop()

		if len(args) == 1 {
			if err := a.loadGraph(ctx, args[0], false); err != nil {
				return err
			}
		}

		srv := mcp.NewServer(a.engine, pixelpilot.Version, mcp.WithLogger(logger), mcp.WithRunContext(ctx))

		switch transport {
		case "stdio":
			// Keep stdout clean for JSON-RPC.
			log.SetOutput(os.Stderr)
			logger.Info("starting MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			return srv.ServeSSE(ctx, addr)
		default:
			return fmt.Errorf("unknown transport %q (want stdio or sse)", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport: stdio or sse")
	mcpCmd.Flags().String("addr", "localhost:8081", "Listen address for the sse transport")
}
