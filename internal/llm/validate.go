package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

var schemaCache sync.Map // name+definition -> *jsonschema.Schema

// validateResponse pulls the JSON object out of raw and checks it against
// schema, returning the extracted object. Without a schema raw passes
// through. Failures are *ErrInvalidResponse.
func validateResponse(schema *Schema, raw json.RawMessage) (json.RawMessage, error) {
	if schema == nil {
		return raw, nil
	}
	invalid := func(err error) error { return &ErrInvalidResponse{Content: raw, Err: err} }

	content, err := ExtractJSON(raw)
	if err != nil {
		return nil, invalid(err)
	}
	var doc any
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, invalid(fmt.Errorf("invalid JSON: %w", err))
	}
	compiled, err := getCompiledSchema(schema)
	if err != nil {
		return nil, invalid(fmt.Errorf("compile schema %q: %w", schema.Name, err))
	}
	if err := compiled.Validate(doc); err != nil {
		return nil, invalid(fmt.Errorf("does not match schema %q: %w", schema.Name, err))
	}
	return content, nil
}

var (
	thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)
	codeFence  = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
)

// ExtractJSON pulls a JSON object out of free-form model output. It strips
// reasoning blocks, then tries the whole text, a fenced code block and
// finally the outermost {...} span.
func ExtractJSON(raw []byte) (json.RawMessage, error) {
	text := strings.TrimSpace(thinkBlock.ReplaceAllString(string(raw), ""))
	if text == "" {
		return nil, errors.New("empty response")
	}
	if json.Valid([]byte(text)) {
		return json.RawMessage(text), nil
	}
	if m := codeFence.FindStringSubmatch(text); m != nil {
		inner := strings.TrimSpace(m[1])
		if json.Valid([]byte(inner)) {
			return json.RawMessage(inner), nil
		}
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		inner := text[start : end+1]
		if json.Valid([]byte(inner)) {
			return json.RawMessage(inner), nil
		}
	}
	return nil, errors.New("no JSON object in response")
}

// Text returns the response content as plain text. Providers return plain
// text for schema-less requests, but a JSON string literal is unquoted.
func (r *Response) Text() string {
	var s string
	if err := json.Unmarshal(r.Content, &s); err == nil {
		return s
	}
	return string(r.Content)
}

// getCompiledSchema compiles a schema once per distinct definition.
func getCompiledSchema(schema *Schema) (*jsonschema.Schema, error) {
	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	key := schema.Name + "\x00" + string(def)
	if cached, ok := schemaCache.Load(key); ok {
		return cached.(*jsonschema.Schema), nil
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}
	url := "schema://" + schema.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, err
	}
	schemaCache.Store(key, compiled)
	return compiled, nil
}
