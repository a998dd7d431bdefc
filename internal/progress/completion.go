// Package progress tracks concept completion: skims, verification attempts
// and the course-level reading progress derived from them.
package progress

import "github.com/abhisek/studypath/internal/store"

// State is the tag of a Completion.
type State int

const (
	NotStarted State = iota
	Skimmed
	Attempted
)

func (s State) String() string {
	switch s {
	case Skimmed:
		return "skimmed"
	case Attempted:
		return "attempted"
	default:
		return "not_started"
	}
}

// Completion is the completion state of one concept for one student. Score
// and Passed are only meaningful when State is Attempted.
type Completion struct {
	State  State
	Score  float64
	Passed bool
}

// FromRecord derives the completion from the latest stored record, or
// NotStarted when rec is nil.
func FromRecord(rec *store.Completion) Completion {
	if rec == nil {
		return Completion{State: NotStarted}
	}
	switch rec.Kind {
	case store.CompletionSkimmed:
		return Completion{State: Skimmed}
	case store.CompletionAttempted:
		c := Completion{State: Attempted, Passed: rec.Passed}
		if rec.QuizScore != nil {
			c.Score = *rec.QuizScore
		}
		return c
	}
	return Completion{State: NotStarted}
}

// Completed reports whether the latest verification attempt passed.
func (c Completion) Completed() bool {
	return c.State == Attempted && c.Passed
}

// Status is the label shown in progress listings: "completed" for a passed
// attempt, otherwise the state name.
func (c Completion) Status() string {
	if c.Completed() {
		return "completed"
	}
	return c.State.String()
}
