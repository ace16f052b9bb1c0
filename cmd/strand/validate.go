package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <chain-file>",
	Short: "Check a chain definition for consistency",
	Long:  `Builds the chain without running it and reports unresolved references, broken wiring and cycles.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd, args[0]); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Chain is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, chainPath string) error {
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
		return err
	}
	if _, err := chain.TopologicalOrder(); err != nil {
		return err
	}
	if hash, err := chain.Hash(); err == nil {
		fmt.Printf("Content hash: %s\n", hash)
	}
	return nil
}
