package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/pixelpilot"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of pixelpilot",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pixelpilot version %s\n", strings.TrimSpace(pixelpilot.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
