package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/aretw0/pixelpilot/pkg/adapters/sqlite"
	"github.com/aretw0/pixelpilot/pkg/registry"
	"github.com/aretw0/pixelpilot/pkg/schema"
	"github.com/spf13/cobra"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage saved graphs",
	Long:  `Saves, loads, lists and removes named graph documents in the configured library (sqlite, file or redis).`,
}

var librarySaveCmd = &cobra.Command{
	Use:   "save <name> <graph-file>",
	Short: "Validate a graph file and store it under name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := schema.ReadFile(args[1])
		if err != nil {
			return err
		}
		if err := schema.ValidateDocument(doc, registry.Default()); err != nil {
			return err
		}
		repo, closeRepo, err := openLibrary()
		if err != nil {
			return err
		}
		defer closeRepo()
		if err := repo.Save(cmd.Context(), args[0], doc); err != nil {
			return err
		}
		fmt.Printf("saved %s (%d nodes, %d links, %d rules)\n", args[0], len(doc.Nodes), len(doc.Links), len(doc.Rules))
		return nil
	},
}

var libraryLoadCmd = &cobra.Command{
	Use:   "load <name>",
	Short: "Print a stored graph, or write it with --out",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeRepo, err := openLibrary()
		if err != nil {
			return err
		}
		defer closeRepo()
		doc, err := repo.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		return writeDocument(doc, out)
	},
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored graphs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeRepo, err := openLibrary()
		if err != nil {
			return err
		}
		defer closeRepo()

		if db, ok := repo.(*sqlite.Repository); ok {
			sums, err := db.Summaries(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tNODES\tLINKS\tRULES\tUPDATED")
			for _, s := range sums {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n", s.Name, s.Nodes, s.Links, s.Rules, s.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		}

		names, err := repo.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	},
}

var libraryRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Remove a stored graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeRepo, err := openLibrary()
		if err != nil {
			return err
		}
		defer closeRepo()
		if err := repo.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("removed %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(libraryCmd)
	libraryCmd.AddCommand(librarySaveCmd, libraryLoadCmd, libraryListCmd, libraryRmCmd)
	libraryLoadCmd.Flags().String("out", "", "Write to this file (.json or .yaml) instead of stdout")
}
