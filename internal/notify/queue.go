// Package notify holds the ephemeral, self-expiring user-facing messages.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
)

// DefaultDuration is how long a notification stays up when the caller does
// not say otherwise.
const DefaultDuration = 4 * time.Second

type Notification struct {
	ID        string
	Message   string
	Kind      Kind
	CreatedAt time.Time
	Duration  time.Duration
}

// Queue is an insertion-ordered set of notifications. Each entry carries its
// own expiry timer; Dismiss stops the timer and the timer calls Dismiss, so
// the two removal paths can race without harm.
type Queue struct {
	mu     sync.Mutex
	clock  clockwork.Clock
	items  []Notification
	timers map[string]clockwork.Timer
}

func NewQueue(clock clockwork.Clock) *Queue {
	return &Queue{
		clock:  clock,
		timers: make(map[string]clockwork.Timer),
	}
}

// Enqueue appends a notification and schedules its expiry. A non-positive
// duration means DefaultDuration. Returns the generated id.
func (q *Queue) Enqueue(message string, kind Kind, duration time.Duration) string {
	if duration <= 0 {
		duration = DefaultDuration
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	id := uuid.NewString()
	q.items = append(q.items, Notification{
		ID:        id,
		Message:   message,
		Kind:      kind,
		CreatedAt: q.clock.Now(),
		Duration:  duration,
	})
	q.timers[id] = q.clock.AfterFunc(duration, func() { q.Dismiss(id) })
	return id
}

// Dismiss removes the notification and cancels its pending expiry. Unknown
// ids are a no-op: manual dismissal and timer expiry may both fire.
func (q *Queue) Dismiss(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if t, ok := q.timers[id]; ok {
		t.Stop()
		delete(q.timers, id)
	}
	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

// Notifications returns a snapshot in insertion order.
func (q *Queue) Notifications() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Notification, len(q.items))
	copy(out, q.items)
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) Success(message string) string { return q.Enqueue(message, KindSuccess, 0) }
func (q *Queue) Error(message string) string   { return q.Enqueue(message, KindError, 0) }
func (q *Queue) Info(message string) string    { return q.Enqueue(message, KindInfo, 0) }
func (q *Queue) Warning(message string) string { return q.Enqueue(message, KindWarning, 0) }
