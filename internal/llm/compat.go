package llm

import "fmt"

type compatPreset struct {
	baseURL string
	model   string
}

// compatPresets are hosted APIs that speak the OpenAI chat protocol.
var compatPresets = map[string]compatPreset{
	"openrouter": {baseURL: "https://openrouter.ai/api/v1", model: "google/gemini-2.0-flash-exp"},
	"groq":       {baseURL: "https://api.groq.com/openai/v1", model: "llama-3.3-70b-versatile"},
}

// NewCompatProvider creates an OpenAI-protocol provider for a named
// compatible API. Model IDs are passed through without friendly-name
// mapping.
func NewCompatProvider(name string, cfg CompatConfig) (*OpenAIProvider, error) {
	preset, ok := compatPresets[name]
	if !ok {
		return nil, fmt.Errorf("unknown OpenAI-compatible provider: %q", name)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", name)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = preset.baseURL
	}
	if cfg.Model == "" {
		cfg.Model = preset.model
	}

	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL})
	if err != nil {
		return nil, err
	}
	p.model = cfg.Model
	p.name = name
	return p, nil
}
