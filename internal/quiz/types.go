// Package quiz generates multiple-choice questions from course material,
// grades submissions and feeds the results into mastery tracking.
package quiz

import "github.com/abhisek/studypath/internal/store"

// Difficulty levels accepted by Generate.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Bloom levels a generated question may target.
var BloomLevels = []string{"Remember", "Understand", "Apply", "Analyze"}

// Mode selects the verification and summary variant.
type Mode string

const (
	ModeQuick         Mode = "quick"
	ModeComprehensive Mode = "comprehensive"
)

// ParseMode maps an arbitrary string to a Mode. Anything other than
// "quick" is comprehensive.
func ParseMode(s string) Mode {
	if Mode(s) == ModeQuick {
		return ModeQuick
	}
	return ModeComprehensive
}

// GenerateRequest describes a quiz to generate.
type GenerateRequest struct {
	CourseID   string `json:"course_id" binding:"required"`
	ConceptID  string `json:"concept_id,omitempty"`
	N          int    `json:"num_questions,omitempty" binding:"omitempty,min=1,max=20"`
	Difficulty string `json:"difficulty,omitempty" binding:"omitempty,oneof=easy medium hard"`
}

// GeneratedQuestion is one question as produced by the LLM.
type GeneratedQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Correct     string   `json:"correct"`
	Explanation string   `json:"explanation"`
	BloomLevel  string   `json:"bloom_level"`
}

// QuestionView is a stored question as shown to a student. It never
// carries the correct answer or the explanation.
type QuestionView struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	ConceptID  string   `json:"concept_id,omitempty"`
	Question   string   `json:"question"`
	Options    []string `json:"options"`
	BloomLevel string   `json:"bloom_level"`
	Difficulty string   `json:"difficulty"`
}

func viewOf(q store.Question) QuestionView {
	return QuestionView{
		ID:         q.ID,
		Type:       q.QuestionType,
		ConceptID:  q.ConceptID,
		Question:   q.Text,
		Options:    q.Options,
		BloomLevel: q.BloomLevel,
		Difficulty: q.Difficulty,
	}
}

// Answer is one submitted answer.
type Answer struct {
	QuestionID     string `json:"question_id" binding:"required"`
	Selected       string `json:"selected"`
	ResponseTimeMs *int   `json:"response_time_ms,omitempty" binding:"omitempty,min=0"`
	Confidence     *int   `json:"confidence,omitempty" binding:"omitempty,min=1,max=5"`
}

// QuestionResult is the grading of one answer.
type QuestionResult struct {
	QuestionID    string `json:"question_id"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

// MasteryUpdate reports a concept's score after a submission.
type MasteryUpdate struct {
	ConceptID   string  `json:"concept_id"`
	ConceptName string  `json:"concept_name"`
	NewScore    float64 `json:"new_score"`
}

// SubmitResult is returned by Submit.
type SubmitResult struct {
	Score          int              `json:"score"`
	Total          int              `json:"total"`
	Percentage     float64          `json:"percentage"`
	Results        []QuestionResult `json:"results"`
	MasteryUpdates []MasteryUpdate  `json:"mastery_updates"`
}
