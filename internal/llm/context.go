package llm

import "context"

// call labels one LLM request for the audit log: why it was made and which
// backend job made it.
type call struct {
	purpose string
	job     string
}

type callKey struct{}

func callFrom(ctx context.Context) call {
	c, _ := ctx.Value(callKey{}).(call)
	return c
}

// WithPurpose labels requests made under ctx with purpose.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	c := callFrom(ctx)
	c.purpose = purpose
	return context.WithValue(ctx, callKey{}, c)
}

// WithJob labels requests made under ctx with the backend job id, usually
// "<route>|<storage key>".
func WithJob(ctx context.Context, job string) context.Context {
	c := callFrom(ctx)
	c.job = job
	return context.WithValue(ctx, callKey{}, c)
}

// PurposeFrom returns the purpose label, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if p := callFrom(ctx).purpose; p != "" {
		return p
	}
	return "unknown"
}

// JobFrom returns the job label, or "" outside a backend job.
func JobFrom(ctx context.Context) string {
	return callFrom(ctx).job
}
