package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/studypath/internal/quiz"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Generate, submit and verify quizzes",
}

var quizGenerateCmd = &cobra.Command{
	Use:   "generate <course-id>",
	Short: "Generate multiple-choice questions from course material",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		concept, _ := cmd.Flags().GetString("concept")
		n, _ := cmd.Flags().GetInt("num")
		difficulty, _ := cmd.Flags().GetString("difficulty")
		qs, err := e.quiz.Generate(cmd.Context(), quiz.GenerateRequest{
			CourseID:   args[0],
			ConceptID:  concept,
			N:          n,
			Difficulty: difficulty,
		})
		if err != nil {
			return err
		}
		return printJSON(qs)
	},
}

var quizSubmitCmd = &cobra.Command{
	Use:   "submit <student-id>",
	Short: "Grade answers and update mastery",
	Long:  "Answers are read as a JSON array of {question_id, selected, response_time_ms, confidence}.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var answers []quiz.Answer
		path, _ := cmd.Flags().GetString("answers")
		if err := readAnswers(path, &answers); err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := e.quiz.Submit(cmd.Context(), args[0], answers)
		if err != nil {
			return err
		}
		fmt.Printf("Score: %d/%d (%.1f%%)\n", res.Score, res.Total, res.Percentage)
		for _, u := range res.MasteryUpdates {
			fmt.Printf("  %-30s  mastery %.3f\n", truncate(u.ConceptName, 30), u.NewScore)
		}
		return nil
	},
}

var quizVerifyCmd = &cobra.Command{
	Use:   "verify <course-id> <concept-id>",
	Short: "Generate a concept verification quiz",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		mode, _ := cmd.Flags().GetString("mode")
		vq, err := e.quiz.GenerateVerification(cmd.Context(), args[0], args[1], quiz.ParseMode(mode))
		if err != nil {
			return err
		}
		return printJSON(vq)
	},
}

var quizCompleteCmd = &cobra.Command{
	Use:   "complete <student-id> <course-id> <concept-id>",
	Short: "Submit a verification quiz and record completion",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var answers []quiz.Answer
		path, _ := cmd.Flags().GetString("answers")
		if err := readAnswers(path, &answers); err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		mode, _ := cmd.Flags().GetString("mode")
		res, err := e.quiz.SubmitVerification(cmd.Context(), args[0], args[1], args[2], quiz.ParseMode(mode), answers)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d/%d (%.1f%%)\n", res.ConceptName, res.Score, res.Total, res.Percentage)
		fmt.Println(res.Message)
		return nil
	},
}

func init() {
	quizGenerateCmd.Flags().String("concept", "", "Concept id to focus on")
	quizGenerateCmd.Flags().IntP("num", "n", 5, "Number of questions")
	quizGenerateCmd.Flags().String("difficulty", quiz.DifficultyMedium, "easy, medium or hard")

	for _, c := range []*cobra.Command{quizSubmitCmd, quizCompleteCmd} {
		c.Flags().StringP("answers", "a", "-", "Answers JSON file (- for stdin)")
	}
	for _, c := range []*cobra.Command{quizVerifyCmd, quizCompleteCmd} {
		c.Flags().String("mode", string(quiz.ModeComprehensive), "quick or comprehensive")
	}

	quizCmd.AddCommand(quizGenerateCmd)
	quizCmd.AddCommand(quizSubmitCmd)
	quizCmd.AddCommand(quizVerifyCmd)
	quizCmd.AddCommand(quizCompleteCmd)
}
