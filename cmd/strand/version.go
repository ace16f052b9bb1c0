package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/strandkit/strand"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of strand",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("strand version %s\n", strings.TrimSpace(strand.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
