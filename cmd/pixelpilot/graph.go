package main

import (
	"fmt"
	"os"

	"github.com/aretw0/pixelpilot/internal/presentation/graph"
	pgraph "github.com/aretw0/pixelpilot/pkg/graph"
	"github.com/aretw0/pixelpilot/pkg/registry"
	"github.com/aretw0/pixelpilot/pkg/rules"
	"github.com/aretw0/pixelpilot/pkg/schema"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <graph-file>",
	Short: "Export the graph as a Mermaid diagram",
	Long:  `Reads a graph document and prints a Mermaid flowchart (graph LR) of its blocks, links and rules.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := schema.ReadFile(args[0])
		if err != nil {
			return err
		}
		fmt.Print(graph.GenerateMermaid(doc, nil))
		return nil
	},
}

var graphLowerCmd = &cobra.Command{
	Use:   "lower <graph-file>",
	Short: "Fold a document's rules into its block graph",
	Long: `Converts every enabled rule into input, gate and output blocks prefixed with the rule id,
and prints the resulting document without a rules section. Disabled rules are dropped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := schema.ReadFile(args[0])
		if err != nil {
			return err
		}
		lowered, err := rules.LowerDocument(doc, pgraph.WithFactory(registry.Default()))
		if err != nil {
			return err
		}
		logger.Info("rules lowered", "rules", len(doc.Rules), "nodes", len(lowered.Nodes))
		out, _ := cmd.Flags().GetString("out")
		return writeDocument(lowered, out)
	},
}

// writeDocument prints doc as YAML, or writes it to out in the format its
// extension names.
func writeDocument(doc *schema.Document, out string) error {
	format := schema.FormatYAML
	if out != "" {
		format = schema.FormatFromPath(out)
	}
	data, err := schema.Encode(doc, format)
	if err != nil {
		return err
	}
	if out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(out, data, 0o644)
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.AddCommand(graphLowerCmd)

	graphLowerCmd.Flags().String("out", "", "Write to this file (.json or .yaml) instead of stdout")
}
