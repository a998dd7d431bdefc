package quiz

import (
	"context"
	"time"

	"github.com/abhisek/studypath/internal/llm"
	"github.com/abhisek/studypath/internal/logger"
	"github.com/abhisek/studypath/internal/mastery"
	"github.com/abhisek/studypath/internal/progress"
	"github.com/abhisek/studypath/internal/retrieval"
	"github.com/abhisek/studypath/internal/store"
)

// Invalidator drops cached per-student views after mastery changes.
type Invalidator interface {
	Invalidate(ctx context.Context, studentID string)
}

// Config controls generation.
type Config struct {
	// Passages is how many passages are retrieved for a quiz.
	Passages int
	// MaxContextChars caps the source material sent to the LLM.
	MaxContextChars int
	MaxTokens       int
	Temperature     float64
	Validators      []Validator
}

// DefaultConfig returns the standard generation settings.
func DefaultConfig() Config {
	return Config{
		Passages:        6,
		MaxContextChars: 4000,
		MaxTokens:       2048,
		Temperature:     0.3,
		Validators:      DefaultValidators(),
	}
}

// Service runs the quiz lifecycle.
type Service struct {
	uow       store.UnitOfWork
	provider  llm.Provider
	retriever retrieval.Retriever
	mastery   *mastery.Service
	progress  *progress.Service
	cache     Invalidator
	cfg       Config
	log       *logger.Logger
	now       func() time.Time
}

// Deps are the collaborators of a Service. Cache may be nil.
type Deps struct {
	Store     store.UnitOfWork
	Provider  llm.Provider
	Retriever retrieval.Retriever
	Mastery   *mastery.Service
	Progress  *progress.Service
	Cache     Invalidator
	Log       *logger.Logger
}

// NewService creates a quiz service.
func NewService(d Deps, cfg Config) *Service {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		uow:       d.Store,
		provider:  d.Provider,
		retriever: d.Retriever,
		mastery:   d.Mastery,
		progress:  d.Progress,
		cache:     d.Cache,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}
