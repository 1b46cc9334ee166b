package main

import (
	"fmt"
	"os"

	"github.com/aretw0/parley/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the workflow state graph as a Mermaid flowchart",
	Run: func(cmd *cobra.Command, args []string) {
		w, err := loadWorkflow(cmd)
		if err != nil {
			fmt.Printf("Failed to load workflow: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(graph.Mermaid(w.Schema()))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
