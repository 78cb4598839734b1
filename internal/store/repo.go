package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To

	// Label keeps job events of this kind, or LLM events of this purpose.
	Label string
}

// JobEventData describes one finished poll job.
type JobEventData struct {
	Key          string
	Kind         string // solution, followup, ...; derived from the key prefix
	Outcome      string
	ElapsedMs    int64
	ErrorMessage string
}

// JobEvent is a stored JobEventData.
type JobEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	JobEventData
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	JobKey       string // backend job id, empty for ad-hoc calls
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLMRequestEventData.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM usage for one purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int
}

// ModelUsage aggregates LLM usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to the audit log.
type EventRepo interface {
	// AppendJobEvent records how a poll job ended.
	AppendJobEvent(ctx context.Context, data JobEventData) error

	// QueryJobEvents returns job events, newest first.
	QueryJobEvents(ctx context.Context, opts QueryOpts) ([]JobEvent, error)

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns one LLM event, or nil if id is unknown.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	// LLMUsageByPurpose sums token usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)

	// LLMUsageByModel sums token usage per model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}
