package mocks

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mubas-somase/voting-backend/internal/domain/event"
)

// EventRepo records the events a repository mock would have written to the
// outbox, in publish order.
type EventRepo struct {
	mu        sync.Mutex
	published []event.Event
}

func NewEventRepo() *EventRepo {
	return &EventRepo{}
}

func (r *EventRepo) appendEvents(events ...event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.published = append(r.published, events...)
}

func (r *EventRepo) snapshot() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]event.Event(nil), r.published...)
}

func (r *EventRepo) AssertEventCount(t *testing.T, want int) *EventRepo {
	t.Helper()

	if got := r.snapshot(); len(got) != want {
		t.Errorf("expected %d published events, got %d: %v", want, len(got), got)
	}
	return r
}

func (r *EventRepo) AssertNoEvents(t *testing.T) *EventRepo {
	t.Helper()
	return r.AssertEventCount(t, 0)
}

// RequireEventExists returns the first published event of sample's type and
// stops the test when there is none.
func RequireEventExists[T event.Event](t *testing.T, r *EventRepo, sample T) T {
	t.Helper()

	found := EventsOf(r, sample)
	require.NotEmpty(t, found, "no %T published", sample)

	e := found[0]
	assert.NotEmpty(t, e.GetEventHeader().ID, "%T published without a header", e)
	return e
}

// EventsOf returns every published event of sample's type.
func EventsOf[T event.Event](r *EventRepo, _ T) []T {
	var out []T
	for _, e := range r.snapshot() {
		if typed, ok := e.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}
