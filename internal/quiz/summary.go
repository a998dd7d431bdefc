package quiz

import (
	"context"

	"github.com/abhisek/studypath/internal/conceptgraph"
	"github.com/abhisek/studypath/internal/llm"
	"github.com/abhisek/studypath/internal/retrieval"
)

const (
	noMaterialSummary = "No source material found for this concept yet."
	failedSummary     = "Could not generate summary. Try again."
)

// Source is a passage a summary was built from.
type Source struct {
	ChunkID string `json:"chunk_id"`
	Text    string `json:"text"`
	Source  string `json:"source"`
}

// Summary is an LLM explanation of one concept.
type Summary struct {
	ConceptID   string   `json:"concept_id"`
	ConceptName string   `json:"concept_name"`
	Summary     string   `json:"summary"`
	Mode        Mode     `json:"mode"`
	Sources     []Source `json:"sources"`
}

// Summarize explains a concept from its 3 (quick) or 6 most relevant
// passages. Missing material, retrieval failures and LLM failures yield
// fixed messages, not errors.
func (s *Service) Summarize(ctx context.Context, courseID, conceptID string, mode Mode) (*Summary, error) {
	c, err := conceptgraph.LookupConcept(ctx, s.uow.Repos(), courseID, conceptID)
	if err != nil {
		return nil, err
	}
	out := &Summary{ConceptID: c.ID, ConceptName: c.Name, Mode: mode, Sources: []Source{}}

	k, system := 6, summarySystemPrompt
	if mode == ModeQuick {
		k, system = 3, summaryQuickSystemPrompt
	}
	passages, err := s.retriever.Search(ctx, c.Name, courseID, k)
	if err != nil {
		s.log.Warn("summary retrieval failed", "concept", c.Name, "error", err)
		out.Summary = failedSummary
		return out, nil
	}
	if len(passages) == 0 {
		out.Summary = noMaterialSummary
		return out, nil
	}

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, llm.PurposeSummary), llm.Request{
		System: system,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildSummaryUserMessage(c.Name, retrieval.JoinPassages(passages, s.cfg.MaxContextChars))},
		},
		MaxTokens:   1024,
		Temperature: s.cfg.Temperature,
	})
	switch {
	case err != nil:
		s.log.Warn("summary generation failed", "concept", c.Name, "error", err)
		out.Summary = failedSummary
	case resp.Text() == "":
		out.Summary = failedSummary
	default:
		out.Summary = resp.Text()
	}

	for _, p := range passages {
		out.Sources = append(out.Sources, Source{
			ChunkID: p.ChunkID,
			Text:    truncateRunes(p.Text, 200),
			Source:  p.SourceName,
		})
	}
	return out, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
