package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

type testEvent struct {
	Header
	Otel
}

func (testEvent) GetStreamName() string { return "events_test" }

func TestRecorder(t *testing.T) {
	t.Parallel()

	var r Recorder
	r.AddEvent(&testEvent{Header: NewEventHeader()})
	r.AddEvent(&testEvent{Header: NewEventHeader()})
	assert.Len(t, r.GetUncommittedEvents(), 2)

	r.MarkEventsAsCommitted()
	assert.Empty(t, r.GetUncommittedEvents())

	var nilRecorder *Recorder
	nilRecorder.AddEvent(&testEvent{})
	assert.Nil(t, nilRecorder.GetUncommittedEvents())
}

func TestOtel_PropagateExtract(t *testing.T) {
	t.Parallel()

	provider := trace.NewTracerProvider()
	ctx, span := provider.Tracer("test").Start(context.Background(), "publish")
	defer span.End()

	e := &testEvent{Header: NewEventHeader()}
	e.Propagate(ctx)
	assert.NotEmpty(t, e.Carrier)

	extracted := oteltrace.SpanContextFromContext(e.Extract())
	assert.Equal(t, span.SpanContext().TraceID(), extracted.TraceID())
}
