package quiz

import "fmt"

const quizSystemPrompt = `You are an expert educational assessment designer.
Generate high-quality multiple-choice questions from the provided study material.

For each question:
1. Write a clear, unambiguous stem.
2. Give exactly 4 options: 1 correct answer and 3 plausible distractors, prefixed "A) " to "D) ".
3. Distractors must be related to the topic, not obviously wrong.
4. Include a brief explanation of the correct answer.
5. Tag the question with a Bloom's level: Remember, Understand, Apply or Analyze.

Return JSON:
{
  "questions": [
    {
      "question": "...",
      "options": ["A) ...", "B) ...", "C) ...", "D) ..."],
      "correct": "A",
      "explanation": "...",
      "bloom_level": "Understand"
    }
  ]
}`

func buildQuizUserMessage(n int, topic, difficulty, context string) string {
	return fmt.Sprintf("Generate %d multiple-choice questions.\nTopic: %s\nDifficulty: %s\n\nSource material:\n%s",
		n, topic, difficulty, context)
}

const summarySystemPrompt = `You are a patient, expert tutor. Given source material about a concept,
write a clear, well-structured explanation suitable for a student.

Format your response in markdown with:
- A brief overview (2-3 sentences)
- Key points as bullet points
- A simple example or analogy if applicable
- Keep it concise (200-400 words)`

const summaryQuickSystemPrompt = `You are a rapid-fire tutor helping a student study quickly for an exam.
Given source material, write a concise explanation in bullet-point format.

Format your response as:
- 4-6 essential bullet points (150-250 words total)
- Include key facts, formulas, definitions, and brief context
- Focus on exam-relevant information
- Keep it scannable but informative`

func buildSummaryUserMessage(conceptName, context string) string {
	return fmt.Sprintf("Explain the concept: %q\n\nSource material:\n%s", conceptName, context)
}
