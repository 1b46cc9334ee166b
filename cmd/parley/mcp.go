package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpadapter "github.com/aretw0/parley/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the workflow as an MCP server for authoring tools",
	Long: `Serves the workflow over the Model Context Protocol: render prompts,
simulate turns and inspect the state graph from an MCP client. Defaults to
stdio transport; --port switches to SSE.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMCP(cmd); err != nil {
			fmt.Printf("MCP server failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	mcpCmd.Flags().Int("port", 0, "Serve over SSE on this port instead of stdio")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command) error {
	workflow, err := loadWorkflow(cmd)
	if err != nil {
		return err
	}

	srv := mcpadapter.NewServer(workflow)

	port, _ := cmd.Flags().GetInt("port")
	if port == 0 {
		return srv.ServeStdio()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ServeSSE(ctx, port)
}
