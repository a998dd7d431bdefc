package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <course-id> <file>...",
	Short: "Chunk, embed and store course material",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		courseID := args[0]
		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = courseID
		}
		for _, path := range args[1:] {
			text, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			res, err := e.ingester.Ingest(cmd.Context(), courseID, name, filepath.Base(path), string(text))
			if err != nil {
				return fmt.Errorf("ingest %s: %w", path, err)
			}
			fmt.Printf("%s: %d chunks stored in %s (%s backend)\n", res.SourceName, res.Chunks, res.CourseID, e.backend.Name())
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().String("name", "", "Course display name (defaults to the course id)")
}
