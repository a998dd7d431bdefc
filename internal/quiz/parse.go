package quiz

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abhisek/studypath/internal/llm"
)

// parseOutcome is either parsedQuestions or emptyOrMalformed.
type parseOutcome interface {
	outcome()
}

// parsedQuestions holds the questions that passed validation.
type parsedQuestions struct {
	questions []GeneratedQuestion
	dropped   []*ValidationError
}

// emptyOrMalformed means the response held no usable question.
type emptyOrMalformed struct {
	err error
}

func (parsedQuestions) outcome()  {}
func (emptyOrMalformed) outcome() {}

// parseQuestions extracts the questions array from raw LLM output and runs
// every question through validators.
func parseQuestions(raw []byte, validators []Validator) parseOutcome {
	obj, err := llm.ExtractJSON(raw)
	if err != nil {
		return emptyOrMalformed{err: err}
	}
	var payload struct {
		Questions []GeneratedQuestion `json:"questions"`
	}
	if err := json.Unmarshal(obj, &payload); err != nil {
		return emptyOrMalformed{err: fmt.Errorf("decode questions: %w", err)}
	}

	var out parsedQuestions
	for _, q := range payload.Questions {
		if verr := runValidators(&q, validators); verr != nil {
			out.dropped = append(out.dropped, verr)
			continue
		}
		out.questions = append(out.questions, q)
	}
	if len(out.questions) == 0 {
		err := errors.New("response contained no questions")
		if len(out.dropped) > 0 {
			err = fmt.Errorf("all %d questions invalid, first: %w", len(out.dropped), out.dropped[0])
		}
		return emptyOrMalformed{err: err}
	}
	return out
}

func runValidators(q *GeneratedQuestion, validators []Validator) *ValidationError {
	for _, v := range validators {
		if verr := v.Validate(q); verr != nil {
			return verr
		}
	}
	return nil
}
