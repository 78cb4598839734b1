package llm

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/interviewdeck/internal/store"
)

func TestMockProvider_QueueThenRespond(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
	)
	mock.Respond = func(req Request) MockResponse {
		return MockResponse{Content: json.RawMessage(`"` + req.Messages[0].Content + `"`)}
	}

	resp, err := mock.Generate(context.Background(), Request{Messages: []Message{UserMessage("first")}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(resp.Content))
	assert.Equal(t, 10, resp.Usage.InputTokens)
	assert.Equal(t, "end", resp.StopReason)

	resp, err = mock.Generate(context.Background(), Request{Messages: []Message{UserMessage("echo")}})
	require.NoError(t, err)
	assert.Equal(t, `"echo"`, string(resp.Content))

	last, ok := mock.LastCall()
	require.True(t, ok)
	assert.Equal(t, "echo", last.Messages[0].Content)
	assert.Equal(t, 2, mock.CallCount())
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	require.ErrorAs(t, err, &unavail)
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{}})
	_, err := mock.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	require.ErrorAs(t, err, &rl)
}

func TestCallLabels(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "unknown", PurposeFrom(ctx))
	assert.Equal(t, "solution", PurposeFrom(WithPurpose(ctx, "solution")))

	labeled := WithPurpose(WithJob(ctx, "/api/followup|k"), "followup")
	assert.Equal(t, "followup", PurposeFrom(labeled))
	assert.Equal(t, "/api/followup|k", JobFrom(labeled))
	assert.Empty(t, JobFrom(ctx))
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "shot.png")
	require.NoError(t, os.WriteFile(png, []byte("\x89PNG\r\n\x1a\nrest"), 0o644))
	noext := filepath.Join(dir, "shot")
	require.NoError(t, os.WriteFile(noext, []byte("\x89PNG\r\n\x1a\nrest"), 0o644))

	img, err := LoadImage(png)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.True(t, strings.HasPrefix(img.DataURL(), "data:image/png;base64,"))

	img, err = LoadImage(noext)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)

	_, err = LoadImage(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "nothing configured", cfg: Config{}, wantErr: true},
		{name: "any key", cfg: Config{Gemini: GeminiConfig{APIKey: "g"}}},
		{name: "named without key", cfg: Config{Provider: ProviderAnthropic, Gemini: GeminiConfig{APIKey: "g"}}, wantErr: true},
		{name: "named with key", cfg: Config{Provider: ProviderOpenAI, OpenAI: OpenAIConfig{APIKey: "o"}}},
		{name: "mock needs no key", cfg: Config{Provider: ProviderMock}},
		{name: "unknown provider", cfg: Config{Provider: "unknown"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigFromEnv_VendorFallback(t *testing.T) {
	for _, k := range []string{"OPENAI_API_KEY", "INTERVIEWDECK_OPENAI_API_KEY", "OPENROUTER_API_KEY", "INTERVIEWDECK_OPENROUTER_API_KEY", "INTERVIEWDECK_ANTHROPIC_API_KEY"} {
		t.Setenv(k, "")
	}
	t.Setenv("ANTHROPIC_API_KEY", "vendor")
	t.Setenv("INTERVIEWDECK_GEMINI_API_KEY", "ours")
	t.Setenv("GEMINI_API_KEY", "vendor-gemini")
	t.Setenv("INTERVIEWDECK_LLM_TIMEOUT", "45s")

	cfg := ConfigFromEnv()
	assert.Equal(t, "vendor", cfg.Anthropic.APIKey)
	assert.Equal(t, "ours", cfg.Gemini.APIKey)
	assert.Equal(t, []string{ProviderAnthropic, ProviderGemini}, cfg.Configured())
	assert.Equal(t, "45s", cfg.Timeout.String())
}

func TestRegistry_Fallback(t *testing.T) {
	claude := NewMockProvider()
	r := NewStaticRegistry("", map[string]Provider{ProviderAnthropic: claude})

	p, err := r.Get(ProviderAnthropic)
	require.NoError(t, err)
	assert.Same(t, claude, p)

	p, err = r.Get(ProviderGemini)
	require.NoError(t, err)
	assert.Same(t, claude, p, "unknown names fall back")

	empty := NewStaticRegistry("", nil)
	_, err = empty.Get(ProviderGemini)
	assert.True(t, errors.Is(err, ErrNoProvider))
}

func TestNewRegistry_Mock(t *testing.T) {
	r, err := NewRegistry(context.Background(), Config{Provider: ProviderMock, Retry: RetryConfig{MaxAttempts: 1}}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{ProviderMock}, r.Names())
}

func TestLoggingProvider_RecordsEvent(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "llm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"code":"x"}`), Usage: Usage{InputTokens: 7, OutputTokens: 3}},
		MockResponse{Err: errors.New("boom")},
	)
	p := WithLogging(mock, ProviderAnthropic, s.EventRepo(), nil)
	ctx := WithJob(WithPurpose(context.Background(), "solution"), "/api/solution|a.png")

	img := Image{MIMEType: "image/png", Data: []byte("1234")}
	_, err = p.Generate(ctx, Request{System: "sys", Messages: []Message{UserMessage("solve", img)}})
	require.NoError(t, err)
	_, err = p.Generate(ctx, Request{Messages: []Message{UserMessage("again")}})
	require.Error(t, err)

	events, err := s.EventRepo().QueryLLMEvents(context.Background(), store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 2)

	failed, ok := events[0], events[1]
	assert.False(t, failed.Success)
	assert.Equal(t, "boom", failed.ErrorMessage)

	assert.True(t, ok.Success)
	assert.Equal(t, ProviderAnthropic, ok.Provider)
	assert.Equal(t, "solution", ok.Purpose)
	assert.Equal(t, "/api/solution|a.png", ok.JobKey)
	assert.Equal(t, 7, ok.InputTokens)
	assert.Contains(t, ok.RequestBody, "<image image/png, 4 bytes>")
	assert.NotContains(t, ok.RequestBody, img.Base64())
}
