package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func questionSchema() *Schema {
	return &Schema{
		Name: "test-question",
		Definition: map[string]any{
			"type":     "object",
			"required": []any{"question", "options", "correct_answer"},
			"properties": map[string]any{
				"question": map[string]any{"type": "string"},
				"options": map[string]any{
					"type":     "array",
					"minItems": 2,
					"items":    map[string]any{"type": "string"},
				},
				"correct_answer": map[string]any{"type": "string"},
				"difficulty":     map[string]any{"type": "string", "enum": []any{"easy", "medium", "hard"}},
				"source": map[string]any{
					"type":       "object",
					"required":   []any{"chunk"},
					"properties": map[string]any{"chunk": map[string]any{"type": "integer", "minimum": 0}},
				},
			},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"complete", `{"question":"Where is Lisbon?","options":["Portugal","Spain"],"correct_answer":"Portugal","difficulty":"easy"}`, "", false},
		{"optional fields omitted", `{"question":"q","options":["a","b"],"correct_answer":"a"}`, "", false},
		{"nested object", `{"question":"q","options":["a","b"],"correct_answer":"a","source":{"chunk":3}}`, "", false},
		{"fenced with prose", "Here it is:\n```json\n{\"question\":\"q\",\"options\":[\"a\",\"b\"],\"correct_answer\":\"b\"}\n```",
			`{"question":"q","options":["a","b"],"correct_answer":"b"}`, false},
		{"missing answer", `{"question":"q","options":["a","b"]}`, "", true},
		{"options not strings", `{"question":"q","options":[1,2],"correct_answer":"a"}`, "", true},
		{"too few options", `{"question":"q","options":["a"],"correct_answer":"a"}`, "", true},
		{"unknown difficulty", `{"question":"q","options":["a","b"],"correct_answer":"a","difficulty":"brutal"}`, "", true},
		{"negative chunk", `{"question":"q","options":["a","b"],"correct_answer":"a","source":{"chunk":-1}}`, "", true},
		{"malformed", `{question: q}`, "", true},
		{"empty", ``, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validateResponse(questionSchema(), json.RawMessage(tt.raw))
			if tt.wantErr {
				var invalid *ErrInvalidResponse
				if !errors.As(err, &invalid) {
					t.Fatalf("expected ErrInvalidResponse, got %v", err)
				}
				if string(invalid.Content) != tt.raw {
					t.Errorf("error should carry the raw output")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := tt.want
			if want == "" {
				want = tt.raw
			}
			if string(got) != want {
				t.Errorf("content = %s, want %s", got, want)
			}
		})
	}
}

func TestValidateResponse_NilSchemaPassesThrough(t *testing.T) {
	got, err := validateResponse(nil, json.RawMessage("not json at all"))
	if err != nil || string(got) != "not json at all" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestValidateResponse_SameNameDifferentDefinition(t *testing.T) {
	loose := &Schema{Name: "test-shared", Definition: map[string]any{"type": "object"}}
	strict := &Schema{Name: "test-shared", Definition: map[string]any{"type": "object", "required": []any{"id"}}}

	if _, err := validateResponse(loose, json.RawMessage(`{}`)); err != nil {
		t.Fatalf("loose: %v", err)
	}
	if _, err := validateResponse(strict, json.RawMessage(`{}`)); err == nil {
		t.Fatal("strict schema should reject a missing id")
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"plain object", `{"a":1}`, `{"a":1}`, false},
		{"surrounding whitespace", "  {\"a\":1}\n", `{"a":1}`, false},
		{"think block stripped", "<think>{\"no\":true} hmm</think>{\"a\":1}", `{"a":1}`, false},
		{"fenced without language", "```\n{\"a\":1}\n```", `{"a":1}`, false},
		{"prose around object", `Sure! {"a":{"b":2}} Hope that helps.`, `{"a":{"b":2}}`, false},
		{"empty", "", "", true},
		{"only think", "<think>nothing</think>", "", true},
		{"no object", "I cannot help with that.", "", true},
		{"truncated object", `{"a":[1,2`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON([]byte(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("ExtractJSON = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResponseText(t *testing.T) {
	plain := &Response{Content: json.RawMessage("Photosynthesis converts light.")}
	if got := plain.Text(); got != "Photosynthesis converts light." {
		t.Errorf("Text() = %q", got)
	}
	quoted := &Response{Content: json.RawMessage(`"line one\nline two"`)}
	if got := quoted.Text(); got != "line one\nline two" {
		t.Errorf("Text() = %q", got)
	}
}
