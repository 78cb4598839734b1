package llm

import (
	"encoding/json"
	"strings"
)

// reply is what a provider SDK answered, before structured output checks.
type reply struct {
	text  string
	model string
	stop  string
	usage Usage
}

// finish turns a reply into a Response. For structured requests a markdown
// fence is removed and the JSON validated; a structured answer cut off at
// the token limit cannot be valid and is reported as ErrMaxTokensExceeded.
func finish(req Request, r reply) (*Response, error) {
	content := json.RawMessage(r.text)
	if req.Schema != nil {
		content = stripCodeFence(content)
		if r.stop == StopMaxTokens {
			return nil, &ErrMaxTokensExceeded{Content: content}
		}
		if err := validateResponse(req.Schema, content); err != nil {
			return nil, err
		}
	}
	if r.usage.TotalTokens == 0 {
		r.usage.TotalTokens = r.usage.InputTokens + r.usage.OutputTokens
	}
	if r.stop == "" {
		r.stop = StopEnd
	}
	return &Response{Content: content, Usage: r.usage, Model: r.model, StopReason: r.stop}, nil
}

// modelAliases maps the short names accepted in *_MODEL settings to model
// IDs, per provider. Anything else is sent as given.
var modelAliases = map[string]map[string]string{
	ProviderAnthropic: {
		"claude-sonnet": "claude-sonnet-4-5-20250929",
		"claude-haiku":  "claude-haiku-4-5-20251001",
		"claude-opus":   "claude-opus-4-1-20250805",
	},
	ProviderOpenAI: {
		"gpt-4o":      "gpt-4o",
		"gpt-4o-mini": "gpt-4o-mini",
		"gpt-4.1":     "gpt-4.1",
	},
	ProviderGemini: {
		"gemini-flash": "gemini-2.5-flash",
		"gemini-pro":   "gemini-2.5-pro",
	},
}

func resolveModel(provider, name string) string {
	if id, ok := modelAliases[provider][strings.TrimSpace(name)]; ok {
		return id
	}
	return name
}
