package llm

import "context"

// Purpose labels tag each call in the audit log and metrics.
const (
	PurposeConceptExtract = "concept-extract"
	PurposeQuizGenerate   = "quiz-generate"
	PurposeSummary        = "summary"
	PurposeUnknown        = "unknown"
)

type purposeKey struct{}

// WithPurpose labels every LLM call made with ctx.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or PurposeUnknown.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return PurposeUnknown
}
