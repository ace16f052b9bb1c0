package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/strandkit/strand/internal/presentation/tui"
	"github.com/strandkit/strand/pkg/domain"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <chain-file>",
	Short: "Execute a chain definition",
	Long:  `Builds the chain described in the given YAML or JSON file and executes it with the provided input.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runChain(cmd, args[0]); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("input", "i", "", "Input for the chain's main input, as JSON (raw string if not valid JSON)")
	runCmd.Flags().Bool("trail", false, "Print the per-node trail after the run")
	runCmd.Flags().Bool("plain", false, "Disable banner and markdown rendering even on a terminal")
}

func runChain(cmd *cobra.Command, chainPath string) error {
	eng, err := newEngine(cmd, nil)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(chainPath)
	if err != nil {
		return fmt.Errorf("read chain file: %w", err)
	}
	chain, err := eng.ParseChain(data)
	if err != nil {
		return fmt.Errorf("build chain: %w", err)
	}

	rawInput, _ := cmd.Flags().GetString("input")
	var input any
	if rawInput != "" {
		if err := json.Unmarshal([]byte(rawInput), &input); err != nil {
			input = rawInput
		}
	}

	plain, _ := cmd.Flags().GetBool("plain")
	interactive := !plain && term.IsTerminal(int(os.Stdout.Fd()))
	if interactive {
		tui.PrintBanner()
	}

	debug, _ := cmd.Flags().GetBool("debug")
	var callback domain.StepCallback
	if debug {
		callback = func(ev domain.StepEvent) {
			fmt.Fprintf(os.Stderr, "step %s done in %s\n", ev.NodeID, ev.Elapsed)
		}
	}

	output, trail, err := eng.Run(context.Background(), chain, input, callback)
	if err != nil {
		return fmt.Errorf("run chain: %w", err)
	}

	showTrail, _ := cmd.Flags().GetBool("trail")
	if interactive {
		return printRendered(output, trail, showTrail)
	}
	return printJSON(output, trail, showTrail)
}

// printRendered formats the result as markdown and renders it for the
// terminal.
func printRendered(output any, trail domain.Trail, showTrail bool) error {
	md := fmt.Sprintf("# Result\n\n```json\n%s\n```\n", mustJSON(output))
	if showTrail {
		md += fmt.Sprintf("\n## Trail\n\n```json\n%s\n```\n", mustJSON(trail))
	}

	render := tui.NewRenderer()
	out, err := render(md)
	if err != nil {
		// Fall back to the raw markdown.
		fmt.Println(md)
		return nil
	}
	fmt.Print(out)
	return nil
}

func printJSON(output any, trail domain.Trail, showTrail bool) error {
	payload := map[string]any{"output": output}
	if showTrail {
		payload["trail"] = trail
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func mustJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
