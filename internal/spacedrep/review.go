package spacedrep

import "time"

// ReviewState is the scheduling view of a mastery row.
type ReviewState struct {
	ConceptID     string    `json:"concept_id"`
	Stability     float64   `json:"stability"`
	LastReviewed  time.Time `json:"last_reviewed"`
	NextReviewDue time.Time `json:"next_review_due"`
}

// IsOverdue reports whether the review date has strictly passed. A state
// that was never scheduled is never overdue.
func (rs *ReviewState) IsOverdue(now time.Time) bool {
	if rs.NextReviewDue.IsZero() {
		return false
	}
	return rs.NextReviewDue.Before(now)
}

// OverdueDays returns how many whole days past due the concept is.
// Returns 0 if not yet due.
func (rs *ReviewState) OverdueDays(now time.Time) int {
	if !rs.IsOverdue(now) {
		return 0
	}
	return int(now.Sub(rs.NextReviewDue).Hours() / 24.0)
}

// DaysUntilReview returns the number of days until the next review,
// rounded up. Returns 0 if already due or never scheduled.
func (rs *ReviewState) DaysUntilReview(now time.Time) int {
	if rs.NextReviewDue.IsZero() || !now.Before(rs.NextReviewDue) {
		return 0
	}
	return int(rs.NextReviewDue.Sub(now).Hours()/24.0) + 1
}
