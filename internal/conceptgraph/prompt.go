package conceptgraph

import "github.com/abhisek/studypath/internal/llm"

const extractSystemPrompt = `You are an expert at analyzing educational content.
Extract the key concepts and their relationships from the given text.

Rules:
- Keep concept names short (1-4 words), lowercase
- relation must be one of: "prerequisite", "related", "part_of"
- "prerequisite" means source must be learned before target
- Extract 3-8 concepts per passage, only meaningful ones
- Only include relationships you are confident about

Respond with JSON only.`

const extractUserPrompt = "Extract concepts and relationships from this educational text:\n\n"

// ExtractionSchema is the response contract for concept extraction.
// relation is a free string; unknown values are dropped after parsing.
var ExtractionSchema = &llm.Schema{
	Name:        "concept-extraction",
	Description: "Concepts and relationships found in a passage of course material",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"concepts": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Short lowercase concept names",
			},
			"relationships": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"source":   map[string]any{"type": "string"},
						"target":   map[string]any{"type": "string"},
						"relation": map[string]any{"type": "string", "description": "prerequisite, related or part_of"},
					},
					"required":             []any{"source", "target", "relation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"concepts", "relationships"},
		"additionalProperties": false,
	},
}
