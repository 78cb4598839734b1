package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/interviewdeck/internal/store"
)

func TestWriteLLMList(t *testing.T) {
	var buf bytes.Buffer
	writeLLMList(&buf, nil)
	assert.Equal(t, "No LLM requests recorded yet.\n", buf.String())

	buf.Reset()
	writeLLMList(&buf, []store.LLMRequestEvent{{
		ID:        3,
		Timestamp: time.Now(),
		LLMRequestEventData: store.LLMRequestEventData{
			Purpose: "solution", Model: "claude-sonnet-4-5-20250929-with-a-long-suffix",
			JobKey: "/api/solution|a.png", InputTokens: 120, OutputTokens: 40,
		},
	}})
	out := buf.String()
	assert.Contains(t, out, "/api/solution|a.png")
	assert.Contains(t, out, "✗")
	assert.NotContains(t, out, "long-suffix")
}

func TestWriteLLMEvent(t *testing.T) {
	var buf bytes.Buffer
	writeLLMEvent(&buf, &store.LLMRequestEvent{
		ID: 7,
		LLMRequestEventData: store.LLMRequestEventData{
			Provider: "gemini", Purpose: "extract", Success: true, RequestBody: "[user]\nread this",
		},
	})
	out := buf.String()
	assert.Contains(t, out, "Provider:  gemini")
	assert.NotContains(t, out, "Error:")
	assert.NotContains(t, out, "Job:")
	assert.Contains(t, out, "[user]\nread this")
	assert.Equal(t, 1, strings.Count(out, "(not captured)"))
}

func TestWriteLLMStats(t *testing.T) {
	var buf bytes.Buffer
	writeLLMStats(&buf,
		[]store.PurposeUsage{{Purpose: "solution", Calls: 2, InputTokens: 1000, OutputTokens: 500}},
		[]store.ModelUsage{
			{Model: "claude-sonnet", Calls: 1, InputTokens: 1000, OutputTokens: 500},
			{Model: "mock", Calls: 1},
		},
	)
	out := buf.String()
	assert.Contains(t, out, "$0.0105")
	assert.Contains(t, out, "TOTAL (partial)")
	assert.Contains(t, out, "No pricing for: mock")
}

func TestWriteHistory(t *testing.T) {
	var buf bytes.Buffer
	writeHistory(&buf, []store.JobEvent{{
		ID: 1,
		JobEventData: store.JobEventData{
			Key: "solution:/api/solution|a.png", Kind: "solution", Outcome: "timeout",
			ElapsedMs: 60_040, ErrorMessage: "timed out after 1m0s",
		},
	}})
	out := buf.String()
	assert.Contains(t, out, "1m0s")
	assert.Contains(t, out, "timed out after 1m0s")
}

func TestHistoryCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "deck.db")
	s, err := store.Open(db)
	require.NoError(t, err)
	repo := s.EventRepo()
	ctx := context.Background()
	require.NoError(t, repo.AppendJobEvent(ctx, store.JobEventData{Key: "followup:k", Kind: "followup", Outcome: "completed"}))
	require.NoError(t, repo.AppendJobEvent(ctx, store.JobEventData{Key: "solution:k", Kind: "solution", Outcome: "completed"}))
	require.NoError(t, s.Close())

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"history", "--db", db, "--kind", "followup"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.ExecuteContext(ctx))

	assert.Contains(t, buf.String(), "followup:k")
	assert.NotContains(t, buf.String(), "solution:k")
}
