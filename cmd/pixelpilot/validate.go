package main

import (
	"fmt"
	"os"

	"github.com/aretw0/pixelpilot/pkg/graph"
	"github.com/aretw0/pixelpilot/pkg/registry"
	"github.com/aretw0/pixelpilot/pkg/schema"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <graph-file>...",
	Short: "Check graph documents for consistency",
	Long:  `Checks node ids, block types and parameters, links and rules, then builds each graph to verify its ports.`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		failed := false
		for _, path := range args {
			if err := runValidate(path); err != nil {
				failed = true
				fmt.Printf("%s: invalid\n", path)
				errs := schema.ValidationErrors(err)
				if len(errs) == 0 {
					errs = []error{err}
				}
				for _, e := range errs {
					fmt.Printf("  - %v\n", e)
				}
				continue
			}
			fmt.Printf("%s: valid\n", path)
		}
		if failed {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(path string) error {
	doc, err := schema.ReadFile(path)
	if err != nil {
		return err
	}
	catalog := registry.Default()
	if err := schema.ValidateDocument(doc, catalog); err != nil {
		return err
	}
	_, err = graph.Build(doc, graph.WithFactory(catalog))
	return err
}
