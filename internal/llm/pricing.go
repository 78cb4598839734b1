package llm

import (
	"sort"
	"strings"
)

// ModelCost is USD per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost is the USD price of one call.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

// LookupCost prices a model ID as reported by a provider. OpenRouter IDs
// lose their vendor prefix, and dated or versioned IDs fall back to the
// longest family name they start with. Returns nil when nothing matches.
func LookupCost(modelID string) *ModelCost {
	id := strings.ToLower(modelID)
	if _, rest, ok := strings.Cut(id, "/"); ok {
		id = rest
	}
	if c, ok := modelCosts[id]; ok {
		return &c
	}
	for _, family := range families {
		if strings.HasPrefix(id, family) {
			c := modelCosts[family]
			return &c
		}
	}
	return nil
}

// modelCosts covers the models the backend's providers default to and
// their common upgrades. Prices from models.dev, February 2026.
var modelCosts = map[string]ModelCost{
	"claude-haiku-4-5":  {1, 5},
	"claude-opus-4":     {15, 75},
	"claude-opus-4-5":   {5, 25},
	"claude-opus-4-6":   {5, 25},
	"claude-sonnet":     {3, 15},
	"claude-sonnet-4.5": {3, 15},
	"claude-3-5-haiku":  {0.8, 4},

	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-4.1":      {2, 8},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-5":        {1.25, 10},
	"gpt-5-mini":   {0.25, 2},
	"o3":           {2, 8},
	"o4-mini":      {1.1, 4.4},

	"gemini-pro":            {1.25, 10},
	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-flash-lite": {0.1, 0.4},
	"gemini-2.5-pro":        {1.25, 10},
	"gemini-3-pro":          {2, 12},
}

// families lists modelCosts keys longest first so "gpt-4o-mini-2024" matches
// gpt-4o-mini before gpt-4o.
var families = func() []string {
	keys := make([]string, 0, len(modelCosts))
	for k := range modelCosts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()
