package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/parley/pkg/schema"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the workflow documents for consistency",
	Long: `Loads and validates the workflow: YAML structure, state and prompt
references, transition whitelists, trigger definitions, format rules and
template compilation. Reports the first problem found.`,
	Run: func(cmd *cobra.Command, args []string) {
		w, err := loadWorkflow(cmd)
		if err != nil {
			var verr *schema.ValidationError
			if errors.As(err, &verr) {
				fmt.Printf("Validation failed at %s: %s\n", verr.Field, verr.Detail)
			} else {
				fmt.Printf("Validation failed: %v\n", err)
			}
			os.Exit(1)
		}

		s := w.Schema()
		fmt.Printf("Workflow %q is valid: %d states, %d rules ✅\n",
			w.Name, len(s.States), len(s.Rules))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
