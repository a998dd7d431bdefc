package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/studypath/internal/quiz"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <student-id> <course-id>",
	Short: "Show what the student should study next",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := e.recommend.Recommend(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Overall mastery: %.1f%%\n\n", res.OverallMastery*100)
		if len(res.Recommendations) == 0 {
			fmt.Println("Nothing to study right now.")
			return nil
		}
		fmt.Printf("%3s  %-28s  %6s  %-6s  %s\n", "#", "Concept", "Score", "Action", "Reason")
		fmt.Println(rule())
		for _, r := range res.Recommendations {
			fmt.Printf("%3d  %-28s  %6.3f  %-6s  %s\n",
				r.Priority, truncate(r.ConceptName, 28), r.MasteryScore, r.Action, r.Reason)
		}
		return nil
	},
}

var weakCmd = &cobra.Command{
	Use:   "weak <student-id> <course-id>",
	Short: "List the student's weak topics",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		topics, err := e.recommend.WeakTopics(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if len(topics) == 0 {
			fmt.Println("No weak topics.")
			return nil
		}
		fmt.Printf("%-30s  %6s  %8s  %8s\n", "Concept", "Score", "Accuracy", "Attempts")
		fmt.Println(rule())
		for _, t := range topics {
			fmt.Printf("%-30s  %6.3f  %7.0f%%  %8d\n",
				truncate(t.ConceptName, 30), t.MasteryScore, t.Accuracy*100, t.ExposureCount)
		}
		return nil
	},
}

var masteryCmd = &cobra.Command{
	Use:   "mastery <student-id> <course-id>",
	Short: "Show per-concept mastery and review schedule",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ov, err := e.recommend.MasteryOverview(cmd.Context(), e.progress, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Overall mastery: %.1f%%  Completed: %d/%d\n\n", ov.OverallMastery*100, ov.CompletedCount, ov.TotalConcepts)
		fmt.Printf("%-30s  %6s  %-12s  %s\n", "Concept", "Score", "Status", "Review")
		fmt.Println(rule())
		for _, c := range ov.Concepts {
			review := "-"
			if c.NextReviewDue != nil {
				review = fmt.Sprintf("in %dd", c.DueInDays)
				if c.DueInDays < 0 {
					review = fmt.Sprintf("%dd overdue", -c.DueInDays)
				}
			}
			fmt.Printf("%-30s  %6.3f  %-12s  %s\n", truncate(c.ConceptName, 30), c.MasteryScore, c.Status, review)
		}
		return nil
	},
}

var skimCmd = &cobra.Command{
	Use:   "skim <student-id> <course-id> <concept-id>",
	Short: "Mark a concept as skimmed",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := e.progress.MarkSkimmed(cmd.Context(), args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Println(res.Message)
		if res.NextConcept != "" {
			fmt.Println("Next concept:", res.NextConcept)
		}
		return nil
	},
}

var progressCmd = &cobra.Command{
	Use:   "progress <student-id> <course-id>",
	Short: "Show reading progress through a course",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		qp, err := e.progress.Quick(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		p := qp.Progress
		fmt.Printf("Progress: %.1f%% (%d completed, %d skimmed, %d total)\n\n", p.Percentage, p.Completed, p.Skimmed, p.Total)
		for _, c := range qp.Concepts {
			marker := " "
			if c.ID == qp.NextConcept {
				marker = "→"
			}
			fmt.Printf("%s %-30s  %5.2f  %s\n", marker, truncate(c.Name, 30), c.Importance, c.Status)
		}
		return nil
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary <course-id> <concept-id>",
	Short: "Explain a concept from course material",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		mode, _ := cmd.Flags().GetString("mode")
		sum, err := e.quiz.Summarize(cmd.Context(), args[0], args[1], quiz.ParseMode(mode))
		if err != nil {
			return err
		}
		fmt.Println(sum.ConceptName)
		fmt.Println(rule())
		fmt.Println(sum.Summary)
		if len(sum.Sources) > 0 {
			fmt.Println()
			fmt.Println("Sources:")
			for _, s := range sum.Sources {
				fmt.Printf("  [%s] %s\n", s.Source, truncate(s.Text, 60))
			}
		}
		return nil
	},
}

func init() {
	summaryCmd.Flags().String("mode", string(quiz.ModeComprehensive), "quick or comprehensive")
}
