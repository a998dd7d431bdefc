package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "studypath",
	Short: "Personalized learning backend",
	Long: "studypath ingests course material, builds a concept graph, generates quizzes\n" +
		"and tracks each student's mastery to recommend what to study next.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Database DSN or SQLite path (overrides database.dsn)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides STUDYPATH_CONFIG)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(conceptsCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(weakCmd)
	rootCmd.AddCommand(masteryCmd)
	rootCmd.AddCommand(skimCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
