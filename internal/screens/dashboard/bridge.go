package dashboard

import (
	"sync"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/interviewdeck/internal/events"
)

// StateChangedMsg reports one effective state write.
type StateChangedMsg struct {
	Path  string
	Value any
}

// NoticeMsg carries a Notice into the update loop.
type NoticeMsg struct {
	events.Notice
}

// FollowupMsg reports a follow-up result.
type FollowupMsg struct {
	events.FollowupAvailable
}

// JobFinishedMsg reports the end of a poll job.
type JobFinishedMsg struct {
	events.JobFinished
}

// outbox queues messages for the update loop without ever blocking the
// emitter. Notices and job results are kept in full. A StateChangedMsg
// still waiting in the queue is overwritten by a newer one for the same
// path, so a burst of writes costs one message per path.
type outbox struct {
	mu      sync.Mutex
	queue   []tea.Msg
	pending map[string]int // path -> queue index
	wake    chan struct{}
}

func newOutbox() *outbox {
	return &outbox{pending: make(map[string]int), wake: make(chan struct{}, 1)}
}

func (o *outbox) push(msg tea.Msg) {
	o.mu.Lock()
	if c, ok := msg.(StateChangedMsg); ok {
		if i, queued := o.pending[c.Path]; queued {
			o.queue[i] = c
			o.mu.Unlock()
			return
		}
		o.pending[c.Path] = len(o.queue)
	}
	o.queue = append(o.queue, msg)
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
}

func (o *outbox) take() []tea.Msg {
	o.mu.Lock()
	defer o.mu.Unlock()
	q := o.queue
	o.queue = nil
	clear(o.pending)
	return q
}

// Bridge forwards bus events to send, usually tea.Program.Send. Emitters
// run on poller and refresher goroutines as well as inside the update
// loop itself, so delivery happens on a separate goroutine. stop
// unsubscribes and ends delivery.
func Bridge(bus *events.Bus, send func(tea.Msg)) (stop func()) {
	box := newOutbox()
	done := make(chan struct{})

	forward := func(msg tea.Msg) {
		select {
		case <-done:
		default:
			box.push(msg)
		}
	}

	unsubs := []func(){
		bus.On(events.TopicStateChanged, func(ev events.Event) {
			if c, ok := ev.(events.StateChanged); ok {
				forward(StateChangedMsg{Path: c.Path, Value: c.Value})
			}
		}),
		bus.On(events.TopicNotice, func(ev events.Event) {
			if n, ok := ev.(events.Notice); ok {
				forward(NoticeMsg{n})
			}
		}),
		bus.On(events.TopicFollowupAvailable, func(ev events.Event) {
			if f, ok := ev.(events.FollowupAvailable); ok {
				forward(FollowupMsg{f})
			}
		}),
		bus.On(events.TopicJobFinished, func(ev events.Event) {
			if j, ok := ev.(events.JobFinished); ok {
				forward(JobFinishedMsg{j})
			}
		}),
	}

	go func() {
		for {
			select {
			case <-done:
				return
			case <-box.wake:
				for _, msg := range box.take() {
					select {
					case <-done:
						return
					default:
						send(msg)
					}
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			for _, u := range unsubs {
				u()
			}
			close(done)
		})
	}
}
