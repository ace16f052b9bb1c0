package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <chain-file>",
	Short: "Export the chain graph visualization",
	Long:  `Builds the chain and outputs a Mermaid diagram (graph TD) representing its wiring.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		eng, err := newEngine(cmd, nil)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Printf("Error reading chain file: %v\n", err)
			os.Exit(1)
		}
		chain, err := eng.ParseChain(data)
		if err != nil {
			fmt.Printf("Error building chain: %v\n", err)
			os.Exit(1)
		}

		fmt.Print(eng.Mermaid(chain, nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
