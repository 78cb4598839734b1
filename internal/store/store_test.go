package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)

	for _, table := range []string{"job_events", "llm_requests", "event_sequence"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("table %s: %v", table, err)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.EventRepo().AppendJobEvent(ctx, JobEventData{Key: "solution:a.png", Outcome: "completed"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	events, err := s.EventRepo().QueryJobEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 1 || events[0].Sequence != 1 {
		t.Fatalf("expected the first event to survive reopen, got %+v", events)
	}
}

func TestNextSequence(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := nextSequence(ctx, s.DB())
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestJobEventsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	keys := []string{"solution:a.png", "followup:a.png:claude", "solution:b.png"}
	for _, k := range keys {
		if err := repo.AppendJobEvent(ctx, JobEventData{Key: k, Kind: "solution", Outcome: "completed", ElapsedMs: 40}); err != nil {
			t.Fatalf("append %s: %v", k, err)
		}
	}

	events, err := repo.QueryJobEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].Key != "solution:b.png" || events[2].Key != "solution:a.png" {
		t.Errorf("unexpected order: %s, %s, %s", events[0].Key, events[1].Key, events[2].Key)
	}

	limited, err := repo.QueryJobEvents(ctx, QueryOpts{Limit: 1})
	if err != nil {
		t.Fatalf("query limit: %v", err)
	}
	if len(limited) != 1 || limited[0].Key != "solution:b.png" {
		t.Errorf("limit query returned %+v", limited)
	}

	after, err := repo.QueryJobEvents(ctx, QueryOpts{After: events[1].Sequence})
	if err != nil {
		t.Fatalf("query after: %v", err)
	}
	if len(after) != 1 || after[0].Key != "solution:b.png" {
		t.Errorf("after query returned %+v", after)
	}

	future, err := repo.QueryJobEvents(ctx, QueryOpts{From: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("query from: %v", err)
	}
	if len(future) != 0 {
		t.Errorf("expected no events in the future, got %d", len(future))
	}
}

func TestLLMEventsShareSequence(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	if err := repo.AppendJobEvent(ctx, JobEventData{Key: "solution:a.png", Outcome: "completed"}); err != nil {
		t.Fatalf("append job: %v", err)
	}
	if err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "anthropic", Model: "claude-haiku", Purpose: "solution", JobKey: "/api/solution|a.png",
		InputTokens: 100, OutputTokens: 50, LatencyMs: 300, Success: true,
		RequestBody: "[user]\nsolve", ResponseBody: `{"code":"x"}`,
	}); err != nil {
		t.Fatalf("append llm: %v", err)
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d LLM events, want 1", len(events))
	}
	if events[0].Sequence != 2 {
		t.Errorf("sequence = %d, want 2", events[0].Sequence)
	}

	got, err := repo.GetLLMEvent(ctx, events[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.ResponseBody != `{"code":"x"}` || !got.Success || got.JobKey != "/api/solution|a.png" {
		t.Errorf("unexpected event %+v", got)
	}

	missing, err := repo.GetLLMEvent(ctx, 999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown id")
	}
}

func TestLLMUsage(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	rows := []LLMRequestEventData{
		{Provider: "anthropic", Model: "claude-haiku", Purpose: "solution", InputTokens: 100, OutputTokens: 10, LatencyMs: 100, Success: true},
		{Provider: "anthropic", Model: "claude-haiku", Purpose: "solution", InputTokens: 200, OutputTokens: 20, LatencyMs: 300, Success: true},
		{Provider: "gemini", Model: "gemini-flash", Purpose: "followup", InputTokens: 50, OutputTokens: 5, LatencyMs: 50, Success: false},
	}
	for _, r := range rows {
		if err := repo.AppendLLMRequest(ctx, r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("got %d purposes, want 2", len(byPurpose))
	}
	sol := byPurpose[1]
	if sol.Purpose != "solution" || sol.Calls != 2 || sol.InputTokens != 300 || sol.OutputTokens != 30 || sol.AvgLatencyMs != 200 {
		t.Errorf("unexpected solution usage %+v", sol)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("by model: %v", err)
	}
	if len(byModel) != 2 || byModel[0].Model != "claude-haiku" || byModel[0].Calls != 2 {
		t.Errorf("unexpected model usage %+v", byModel)
	}
}

func TestQueryLabelFilter(t *testing.T) {
	repo := openTestStore(t).EventRepo()
	ctx := context.Background()

	for _, kind := range []string{"solution", "followup", "solution"} {
		if err := repo.AppendJobEvent(ctx, JobEventData{Key: kind + ":k", Kind: kind, Outcome: "completed"}); err != nil {
			t.Fatalf("append job: %v", err)
		}
	}
	for _, purpose := range []string{"extract", "solution"} {
		if err := repo.AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Model: "mock", Purpose: purpose, Success: true}); err != nil {
			t.Fatalf("append llm: %v", err)
		}
	}

	jobs, err := repo.QueryJobEvents(ctx, QueryOpts{Label: "solution", Limit: 10})
	if err != nil {
		t.Fatalf("query jobs: %v", err)
	}
	if len(jobs) != 2 {
		t.Errorf("got %d solution jobs, want 2", len(jobs))
	}

	llm, err := repo.QueryLLMEvents(ctx, QueryOpts{Label: "extract"})
	if err != nil {
		t.Fatalf("query llm: %v", err)
	}
	if len(llm) != 1 || llm[0].Purpose != "extract" {
		t.Errorf("unexpected extract events %+v", llm)
	}
}
