package poller

import "context"

// Handlers receives the result of a typed poll.
type Handlers[T any] struct {
	OnComplete func(result T)
	OnError    func(err error)
	OnTimeout  func()
}

// Watch registers a poll whose check returns a value. ok=false means the
// job is still running. The last value seen with ok=true is handed to
// OnComplete.
func Watch[T any](s *Scheduler, key string, check func(ctx context.Context) (T, bool, error), h Handlers[T]) {
	var result T
	s.Start(key, Job{
		Check: func(ctx context.Context) (bool, error) {
			v, ok, err := check(ctx)
			if err != nil {
				return false, err
			}
			if ok {
				result = v
			}
			return ok, nil
		},
		OnComplete: func() {
			if h.OnComplete != nil {
				h.OnComplete(result)
			}
		},
		OnError:   h.OnError,
		OnTimeout: h.OnTimeout,
	})
}
