package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrRateLimit is returned when a provider answers 429.
type ErrRateLimit struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", providerLabel(e.Provider), e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse is returned when the model output does not match the
// requested schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable is returned for 5xx answers and transport failures.
type ErrProviderUnavailable struct {
	Provider string
	Err      error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s unavailable: %v", providerLabel(e.Provider), e.Err)
	}
	return providerLabel(e.Provider) + " unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrUnauthorized is returned for 401 and 403 answers, usually a missing or
// revoked API key. It is never retried.
type ErrUnauthorized struct {
	Provider string
	Err      error
}

func (e *ErrUnauthorized) Error() string {
	return fmt.Sprintf("%s rejected the API key: %v", providerLabel(e.Provider), e.Err)
}

func (e *ErrUnauthorized) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded is returned when the answer was cut off at MaxTokens.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

func providerLabel(name string) string {
	if name == "" {
		return "LLM provider"
	}
	return name
}

// classify maps an SDK error carrying an HTTP status to one of the typed
// errors above. Errors without a status count as unavailable.
func classify(provider string, status int, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &ErrRateLimit{Provider: provider, Err: err}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &ErrUnauthorized{Provider: provider, Err: err}
	}
	return &ErrProviderUnavailable{Provider: provider, Err: err}
}

// Retryable reports whether another attempt could succeed. Invalid
// responses are retryable here; RetryProvider limits them to one retry.
func Retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var maxTok *ErrMaxTokensExceeded
	var unauth *ErrUnauthorized
	return !errors.As(err, &maxTok) && !errors.As(err, &unauth)
}

// Describe returns a short message for an interviewer-facing error string.
func Describe(err error) string {
	var (
		rl      *ErrRateLimit
		unauth  *ErrUnauthorized
		unavail *ErrProviderUnavailable
		invalid *ErrInvalidResponse
		maxTok  *ErrMaxTokensExceeded
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &rl):
		return providerLabel(rl.Provider) + " is rate limiting requests. Try again shortly."
	case errors.As(err, &unauth):
		return providerLabel(unauth.Provider) + " rejected the API key."
	case errors.As(err, &maxTok):
		return "The answer was cut off at the token limit."
	case errors.As(err, &invalid):
		return "The model returned an answer in an unexpected format."
	case errors.Is(err, context.DeadlineExceeded):
		return "The model took too long to answer."
	case errors.As(err, &unavail):
		return providerLabel(unavail.Provider) + " is unavailable."
	}
	return err.Error()
}

// HTTPStatus picks the status a backend handler answers with for err.
func HTTPStatus(err error) int {
	var (
		rl      *ErrRateLimit
		unavail *ErrProviderUnavailable
	)
	switch {
	case errors.As(err, &rl):
		return http.StatusTooManyRequests
	case errors.As(err, &unavail):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
