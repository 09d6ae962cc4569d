package event

import (
	"context"

	"go.opentelemetry.io/otel/propagation"
)

var propagator = propagation.NewCompositeTextMapPropagator(
	propagation.TraceContext{},
	propagation.Baggage{},
)

// Otel carries the publisher's trace context across the outbox.
type Otel struct {
	Carrier map[string]string `json:"otel_carrier,omitempty"`
}

func (o *Otel) Propagate(ctx context.Context) {
	if o.Carrier == nil {
		o.Carrier = make(map[string]string)
	}
	propagator.Inject(ctx, propagation.MapCarrier(o.Carrier))
}

func (o *Otel) Extract() context.Context {
	return propagator.Extract(context.Background(), propagation.MapCarrier(o.Carrier))
}
