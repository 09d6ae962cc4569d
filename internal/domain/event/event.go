package event

import (
	"time"

	"github.com/google/uuid"
)

type Event interface {
	GetEventHeader() Header
	GetStreamName() string
}

type Header struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *Header) GetEventHeader() Header {
	return *e
}

func NewEventHeader() Header {
	return Header{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC(),
	}
}

// Recorder collects events raised by an aggregate until a repository
// publishes them together with the aggregate's state.
type Recorder struct {
	events []Event
}

func (e *Recorder) AddEvent(event Event) {
	if e == nil {
		return
	}
	e.events = append(e.events, event)
}

func (e *Recorder) GetUncommittedEvents() []Event {
	if e == nil {
		return nil
	}
	return e.events
}

func (e *Recorder) MarkEventsAsCommitted() {
	if e == nil {
		return
	}
	e.events = nil
}
