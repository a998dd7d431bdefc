package quiz

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validator checks one generated question.
type Validator interface {
	Name() string
	Validate(q *GeneratedQuestion) *ValidationError
}

// ValidationError describes why a question was dropped.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// DefaultValidators is the chain applied to every generated question.
func DefaultValidators() []Validator {
	return []Validator{&StructuralValidator{}, &AnswerKeyValidator{}}
}

// StructuralValidator checks required fields, lengths and enum values. It
// normalizes whitespace and the Bloom level's case in place.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *GeneratedQuestion) *ValidationError {
	q.Question = strings.TrimSpace(q.Question)
	q.Correct = strings.TrimSpace(q.Correct)
	q.Explanation = strings.TrimSpace(q.Explanation)

	fail := func(msg string) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: msg}
	}
	switch {
	case q.Question == "":
		return fail("question is empty")
	case utf8.RuneCountInString(q.Question) > 500:
		return fail("question exceeds 500 characters")
	case len(q.Options) != 4:
		return fail(fmt.Sprintf("expected 4 options, got %d", len(q.Options)))
	case q.Correct == "":
		return fail("correct answer is empty")
	case utf8.RuneCountInString(q.Explanation) > 1000:
		return fail("explanation exceeds 1000 characters")
	}
	for i, o := range q.Options {
		q.Options[i] = strings.TrimSpace(o)
		if q.Options[i] == "" {
			return fail(fmt.Sprintf("option %d is empty", i+1))
		}
	}
	level, ok := bloomLevel(q.BloomLevel)
	if !ok {
		return fail(fmt.Sprintf("unknown bloom level %q", q.BloomLevel))
	}
	q.BloomLevel = level
	return nil
}

func bloomLevel(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, l := range BloomLevels {
		if strings.EqualFold(s, l) {
			return l, true
		}
	}
	return "", false
}

// AnswerKeyValidator checks that the correct answer identifies exactly one
// option, either by letter or by full text.
type AnswerKeyValidator struct{}

func (v *AnswerKeyValidator) Name() string { return "answer-key" }

func (v *AnswerKeyValidator) Validate(q *GeneratedQuestion) *ValidationError {
	matches := 0
	for _, o := range q.Options {
		if Matches(o, q.Correct) {
			matches++
		}
	}
	if matches != 1 {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("correct answer %q matches %d options", q.Correct, matches),
		}
	}
	return nil
}
