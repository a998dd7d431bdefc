package quiz

import "github.com/abhisek/studypath/internal/llm"

// QuestionsSchema describes the LLM response. Item fields are not
// required; incomplete questions are dropped individually by the
// structural validator.
var QuestionsSchema = &llm.Schema{
	Name:        "quiz-questions",
	Description: "A batch of multiple-choice questions with answers and explanations",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "The question stem",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Exactly 4 options prefixed A) to D)",
						},
						"correct": map[string]any{
							"type":        "string",
							"description": "The letter of the correct option",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Why the correct option is right",
						},
						"bloom_level": map[string]any{
							"type":        "string",
							"description": "Remember, Understand, Apply or Analyze",
						},
					},
				},
			},
		},
		"required": []any{"questions"},
	},
}
