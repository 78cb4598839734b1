package llm

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveModel(t *testing.T) {
	tests := []struct {
		provider, in, want string
	}{
		{ProviderAnthropic, "claude-sonnet", "claude-sonnet-4-5-20250929"},
		{ProviderAnthropic, "claude-opus-4-1-20250805", "claude-opus-4-1-20250805"},
		{ProviderGemini, "gemini-flash", "gemini-2.5-flash"},
		{ProviderGemini, "gemini-2.0-flash", "gemini-2.0-flash"},
		{ProviderOpenAI, "gpt-4o", "gpt-4o"},
		{ProviderOpenRouter, "claude-sonnet", "claude-sonnet"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveModel(tt.provider, tt.in), "%s %s", tt.provider, tt.in)
	}
}

func TestFinish(t *testing.T) {
	schema := &Schema{
		Name: "question",
		Definition: map[string]any{
			"type":       "object",
			"properties": map[string]any{"question": map[string]any{"type": "string"}},
			"required":   []any{"question"},
		},
	}

	t.Run("plain text passes through", func(t *testing.T) {
		resp, err := finish(Request{}, reply{text: "Use a heap.", usage: Usage{InputTokens: 3, OutputTokens: 2}})
		require.NoError(t, err)
		assert.Equal(t, "Use a heap.", string(resp.Content))
		assert.Equal(t, 5, resp.Usage.TotalTokens)
		assert.Equal(t, StopEnd, resp.StopReason)
	})

	t.Run("fenced json is unwrapped", func(t *testing.T) {
		resp, err := finish(Request{Schema: schema}, reply{text: "```json\n{\"question\":\"Two Sum\"}\n```"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"question":"Two Sum"}`, string(resp.Content))
	})

	t.Run("schema mismatch", func(t *testing.T) {
		_, err := finish(Request{Schema: schema}, reply{text: `{"answer":1}`})
		var invalid *ErrInvalidResponse
		assert.True(t, errors.As(err, &invalid))
	})

	t.Run("truncated structured answer", func(t *testing.T) {
		_, err := finish(Request{Schema: schema}, reply{text: `{"question":"Tw`, stop: StopMaxTokens})
		var maxTok *ErrMaxTokensExceeded
		require.True(t, errors.As(err, &maxTok))
		assert.Equal(t, json.RawMessage(`{"question":"Tw`), maxTok.Content)
	})

	t.Run("truncated text is kept", func(t *testing.T) {
		resp, err := finish(Request{}, reply{text: "Use a he", stop: StopMaxTokens})
		require.NoError(t, err)
		assert.Equal(t, StopMaxTokens, resp.StopReason)
	})
}
