package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/presentation/tui"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate a call against the workflow interactively",
	Long: `Starts a scratch session and reads turns from stdin. Plain lines are
user utterances; lines starting with ">" are assistant output (and may carry
a <next_state> marker). Transitions and directives are printed as they
happen.

Commands: /prompt  /state  /history  /data  /quit`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSimulate(cmd); err != nil {
			fmt.Printf("Simulation failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	simulateCmd.Flags().StringToString("data", nil, "Session data fields (e.g. --data first_name=Maria)")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command) error {
	workflow, err := loadWorkflow(cmd)
	if err != nil {
		return err
	}
	data, _ := cmd.Flags().GetStringToString("data")

	sess, err := workflow.NewSession("simulator", data)
	if err != nil {
		return err
	}

	tui.PrintBanner()
	render := tui.NewRenderer()
	printMarkdown := func(md string) {
		out, err := render(md)
		if err != nil {
			fmt.Println(md)
			return
		}
		fmt.Print(out)
	}

	printMarkdown(fmt.Sprintf("# %s\n\nStarting in state `%s`. Type `/quit` to exit.", workflow.Name, sess.State()))
	printMarkdown("## System prompt\n\n```\n" + sess.Prompt() + "\n```")

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("[%s] > ", sess.State())
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if done := runSimulatorCommand(sess, line, printMarkdown); done {
				return nil
			}
			continue
		}

		var result *domain.TurnResult
		if rest, ok := strings.CutPrefix(line, ">"); ok {
			result, err = sess.HandleAssistantTurn(ctx, strings.TrimSpace(rest))
		} else {
			result, err = sess.HandleUserUtterance(ctx, line)
		}
		if err != nil {
			fmt.Printf("Turn failed: %v\n", err)
			continue
		}

		reportTurn(sess, result, printMarkdown)
		if result.Ended {
			printMarkdown("**Call ended.**")
			return nil
		}
	}
}

func runSimulatorCommand(sess *parley.Session, line string, printMarkdown func(string)) bool {
	cmd, _, _ := strings.Cut(line, " ")
	switch cmd {
	case "/quit", "/exit":
		return true
	case "/state":
		fmt.Println(sess.State())
	case "/prompt":
		printMarkdown("```\n" + sess.Prompt() + "\n```")
	case "/history":
		var sb strings.Builder
		for _, msg := range sess.History() {
			fmt.Fprintf(&sb, "- **%s**: %s\n", msg.Role, msg.Content)
		}
		printMarkdown(sb.String())
	case "/data":
		snap := sess.Snapshot()
		var sb strings.Builder
		for k, v := range snap.Data {
			fmt.Fprintf(&sb, "- `%s`: %s\n", k, v)
		}
		printMarkdown(sb.String())
	default:
		fmt.Printf("Unknown command %s\n", cmd)
	}
	return false
}

func reportTurn(sess *parley.Session, result *domain.TurnResult, printMarkdown func(string)) {
	if !result.Transitioned {
		if len(result.Directives) == 0 {
			fmt.Println("(no transition)")
		}
	} else {
		printMarkdown(fmt.Sprintf("**Transition**: `%s` → `%s` (%s)", result.From, result.To, result.Reason))
	}

	for _, d := range result.Directives {
		switch d.Type {
		case domain.DirectiveReplaceHistory:
			if hu, ok := d.Payload.(domain.HistoryUpdate); ok {
				fmt.Printf("directive: %s (%d messages, auto_invoke=%v)\n", d.Type, len(hu.Messages), hu.AutoInvoke)
				continue
			}
			fmt.Printf("directive: %s\n", d.Type)
		default:
			if d.Payload != nil {
				fmt.Printf("directive: %s %+v\n", d.Type, d.Payload)
			} else {
				fmt.Printf("directive: %s\n", d.Type)
			}
		}
	}
}
