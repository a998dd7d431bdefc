package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/studypath/internal/conceptgraph"
)

var conceptsCmd = &cobra.Command{
	Use:   "concepts",
	Short: "Build and inspect a course's concept graph",
}

var conceptsExtractCmd = &cobra.Command{
	Use:   "extract <course-id>",
	Short: "Extract concepts and relations from ingested material",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := e.extractor.Extract(cmd.Context(), e.store, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Extracted %d concepts and %d relations.\n", res.NumConcepts, res.NumEdges)
		if res.FailedBatches > 0 {
			fmt.Printf("%d batch(es) failed and were skipped.\n", res.FailedBatches)
		}
		return nil
	},
}

var conceptsListCmd = &cobra.Command{
	Use:   "list <course-id>",
	Short: "List concepts in learning order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		g, err := conceptgraph.Load(cmd.Context(), st.Repos(), args[0])
		if err != nil {
			return err
		}
		concepts := g.TopoOrder()
		if len(concepts) == 0 {
			fmt.Println("No concepts found.")
			return nil
		}
		deps := g.DependencyCounts()

		fmt.Printf("%-36s  %-30s  %5s  %4s  %s\n", "ID", "Name", "Imp", "Deps", "Prerequisites")
		fmt.Println(rule())
		for _, c := range concepts {
			var pre []string
			for _, p := range g.Prerequisites(c.ID) {
				pre = append(pre, p.Name)
			}
			fmt.Printf("%-36s  %-30s  %5.2f  %4d  %v\n", c.ID, truncate(c.Name, 30), c.Importance, deps[c.ID], pre)
		}
		return nil
	},
}

var conceptsValidateCmd = &cobra.Command{
	Use:   "validate <course-id>",
	Short: "Check the concept graph for cycles and broken edges",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		g, err := conceptgraph.Load(cmd.Context(), st.Repos(), args[0])
		if err != nil {
			return err
		}
		if err := g.Validate().Err(); err != nil {
			return err
		}
		fmt.Printf("Concept graph OK: %d concepts, %d edges.\n", len(g.Concepts()), len(g.Edges()))
		return nil
	},
}

func init() {
	conceptsCmd.AddCommand(conceptsExtractCmd)
	conceptsCmd.AddCommand(conceptsListCmd)
	conceptsCmd.AddCommand(conceptsValidateCmd)
}
