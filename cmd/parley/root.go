package main

import (
	"fmt"
	"os"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Parley is a declarative conversation engine for voice AI calls",
	Long: `Parley loads a calling workflow (states, transition policy, prompts)
from YAML documents and interprets conversation turns against it: validating
model-proposed transitions, rendering minimized prompts and emitting
directives for the hosting voice runtime.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("definition", "d", "workflow.yaml", "Path to the workflow definition document")
	rootCmd.PersistentFlags().StringP("prompts", "p", "prompts.yaml", "Path to the prompt document")
	rootCmd.PersistentFlags().String("loam", "", "Load the workflow from a Loam repository directory instead of files")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
}

// loadWorkflow builds the workflow from the persistent flags.
func loadWorkflow(cmd *cobra.Command, opts ...parley.Option) (*parley.Workflow, error) {
	logLevel, _ := cmd.Flags().GetString("log-level")
	opts = append(opts, parley.WithLogger(logging.New(logging.ParseLevel(logLevel))))

	if repoDir, _ := cmd.Flags().GetString("loam"); repoDir != "" {
		return parley.Open(repoDir, opts...)
	}

	defPath, _ := cmd.Flags().GetString("definition")
	promptsPath, _ := cmd.Flags().GetString("prompts")

	definition, err := os.ReadFile(defPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", defPath, err)
	}
	prompts, err := os.ReadFile(promptsPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", promptsPath, err)
	}
	return parley.Load(definition, prompts, opts...)
}
