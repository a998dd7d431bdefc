package quiz

import (
	"errors"
	"fmt"

	"github.com/abhisek/studypath/internal/conceptgraph"
)

// ErrConceptNotFound is returned when a concept id does not belong to the
// course.
var ErrConceptNotFound = conceptgraph.ErrConceptNotFound

// ErrGenerationFailed matches every *GenerationError.
var ErrGenerationFailed = errors.New("quiz generation failed")

// Reasons a generation can fail.
const (
	ReasonNoPassages     = "no_passages"
	ReasonLLMUnavailable = "llm_unavailable"
	ReasonMalformed      = "malformed"
	// ReasonRetrievalUnavailable covers vector store outages, including an
	// open circuit breaker.
	ReasonRetrievalUnavailable = "retrieval_unavailable"
)

// GenerationError explains why no questions were produced.
type GenerationError struct {
	Reason string
	Topic  string
	Err    error
}

func (e *GenerationError) Error() string {
	msg := fmt.Sprintf("quiz generation failed for %q: %s", e.Topic, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool { return target == ErrGenerationFailed }
