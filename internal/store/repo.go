package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by single-row lookups when no row matches.
var ErrNotFound = errors.New("not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	Purpose string    // exact purpose match (empty = any)
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
}

// Course scopes concepts, chunks and questions.
type Course struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Chunk is an ingested passage of course material.
type Chunk struct {
	ID         string
	CourseID   string
	Ordinal    int
	Text       string
	SourceName string
	Embedding  []float32 // nil until embedded
	CreatedAt  time.Time
}

// Concept is an atomic topic within a course.
type Concept struct {
	ID          string
	CourseID    string
	Name        string
	Description string
	Importance  float64
}

// Relation is the kind of a concept edge.
type Relation string

const (
	RelationPrerequisite Relation = "prerequisite"
	RelationRelated      Relation = "related"
	RelationPartOf       Relation = "part_of"
)

// Valid reports whether r is one of the known relations.
func (r Relation) Valid() bool {
	switch r {
	case RelationPrerequisite, RelationRelated, RelationPartOf:
		return true
	}
	return false
}

// ConceptEdge is a directed relation between two concepts. For
// prerequisite edges the source must be learned before the target.
type ConceptEdge struct {
	ID         string
	SourceID   string
	TargetID   string
	Relation   Relation
	Confidence float64
}

// Question is a persisted multiple-choice quiz question.
type Question struct {
	ID            string
	CourseID      string
	ConceptID     string // empty for course-wide questions
	QuestionType  string
	Text          string
	Options       []string
	CorrectAnswer string
	Explanation   string
	Difficulty    string
	BloomLevel    string
	CreatedAt     time.Time
}

// Attempt is one graded answer. Attempts are immutable once recorded.
type Attempt struct {
	ID             string
	Sequence       int64
	StudentID      string
	QuestionID     string
	ConceptID      string // empty when the question has no concept
	SelectedAnswer string
	IsCorrect      bool
	ResponseTimeMs *int
	Confidence     *int
	CreatedAt      time.Time
}

// AttemptSummary aggregates the attempt log for a (student, concept) pair.
type AttemptSummary struct {
	Correct int
	Total   int
}

// MasteryScore is the mutable per-(student, concept) aggregate.
type MasteryScore struct {
	ID            string
	StudentID     string
	ConceptID     string
	Score         float64
	Accuracy      float64
	ExposureCount int
	Confidence    float64
	Stability     float64
	LastReviewed  time.Time
	NextReviewDue time.Time // zero when never scheduled
}

// CompletionKind distinguishes skimmed reads from verification attempts.
type CompletionKind string

const (
	CompletionSkimmed   CompletionKind = "skimmed"
	CompletionAttempted CompletionKind = "attempted"
)

// Completion records a skim or a pass/fail verification attempt.
type Completion struct {
	ID          string
	StudentID   string
	ConceptID   string
	Kind        CompletionKind
	QuizScore   *float64 // nil for skimmed
	Passed      bool
	CompletedAt time.Time
	// Sequence orders completions sharing a timestamp.
	Sequence int64
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request event.
type LLMRequestEvent struct {
	ID        string
	Timestamp time.Time
	LLMRequestEventData
}

// CourseRepo manages courses.
type CourseRepo interface {
	// Ensure returns the course with the given id, creating it when absent.
	Ensure(ctx context.Context, id, name string) (*Course, error)
	Get(ctx context.Context, id string) (*Course, error)
	List(ctx context.Context) ([]Course, error)
}

// ChunkRepo stores ingested passages.
type ChunkRepo interface {
	// Append stores chunks, assigning ids and ordinals after the
	// course's current maximum.
	Append(ctx context.Context, chunks []Chunk) ([]Chunk, error)
	ListByCourse(ctx context.Context, courseID string) ([]Chunk, error)
}

// ConceptRepo manages concepts and their edges.
type ConceptRepo interface {
	// Upsert inserts a concept or, when (course_id, name) already exists,
	// updates its importance and description.
	Upsert(ctx context.Context, c Concept) (*Concept, error)
	Get(ctx context.Context, id string) (*Concept, error)
	ListByCourse(ctx context.Context, courseID string) ([]Concept, error)
	ListByIDs(ctx context.Context, ids []string) ([]Concept, error)

	// AddEdge stores an edge unless it already exists. Self-edges are refused.
	AddEdge(ctx context.Context, e ConceptEdge) (bool, error)
	ListEdges(ctx context.Context, courseID string, relation Relation) ([]ConceptEdge, error)
}

// QuestionRepo stores generated questions.
type QuestionRepo interface {
	Create(ctx context.Context, q *Question) error
	Get(ctx context.Context, id string) (*Question, error)
	ListByIDs(ctx context.Context, ids []string) ([]Question, error)
}

// AttemptRepo is the append-only attempt log.
type AttemptRepo interface {
	Append(ctx context.Context, a *Attempt) error
	Summary(ctx context.Context, studentID, conceptID string) (AttemptSummary, error)
	List(ctx context.Context, studentID, conceptID string) ([]Attempt, error)
}

// MasteryRepo manages mastery aggregates.
type MasteryRepo interface {
	// GetForUpdate returns the row for the pair or ErrNotFound. On
	// databases with row locking the row stays locked until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, studentID, conceptID string) (*MasteryScore, error)
	Save(ctx context.Context, m *MasteryScore) error
	ListByStudent(ctx context.Context, studentID string, conceptIDs []string) ([]MasteryScore, error)
}

// CompletionRepo records completion events.
type CompletionRepo interface {
	Append(ctx context.Context, c *Completion) error
	// Latest returns the newest completion per concept for the student.
	Latest(ctx context.Context, studentID string, conceptIDs []string) (map[string]Completion, error)
}

// EventRepo provides access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)
	GetLLMEvent(ctx context.Context, id string) (*LLMRequestEvent, error)
}

// Repos groups the repositories bound to one unit of work.
type Repos struct {
	Courses     CourseRepo
	Chunks      ChunkRepo
	Concepts    ConceptRepo
	Questions   QuestionRepo
	Attempts    AttemptRepo
	Mastery     MasteryRepo
	Completions CompletionRepo
	Events      EventRepo
}

// UnitOfWork is the store surface services depend on. *Store implements it.
type UnitOfWork interface {
	Repos() Repos
	InTx(ctx context.Context, fn func(Repos) error) error
	Lock(keys ...string) (unlock func())
}

var _ UnitOfWork = (*Store)(nil)
