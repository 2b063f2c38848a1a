package main

import (
	"fmt"

	"github.com/aretw0/pixelpilot/internal/presentation/tui"
	"github.com/aretw0/pixelpilot/pkg/registry"
	"github.com/aretw0/pixelpilot/pkg/schema"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe [graph-file]",
	Short: "Describe the block catalogue or a graph document",
	Long:  `Without arguments, lists every block type with its parameters. With a graph file, summarises its nodes, links and rules.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var markdown string
		if len(args) == 1 {
			doc, err := schema.ReadFile(args[0])
			if err != nil {
				return err
			}
			markdown = tui.DocumentMarkdown(doc)
		} else {
			markdown = tui.CatalogMarkdown(registry.Default().List())
		}

		raw, _ := cmd.Flags().GetBool("raw")
		if raw {
			fmt.Print(markdown)
			return nil
		}
		out, err := tui.NewRenderer()(markdown)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().Bool("raw", false, "Print Markdown without terminal styling")
}
