package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// EventEnvelope frames every message published to the portal's topic
// exchange. Consumers dispatch on EventName.
type EventEnvelope struct {
	EventType  string    `json:"event_type"`
	EventName  string    `json:"event_name"`
	Source     string    `json:"source,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// TraceHeaders carries the active trace id to consumers so downstream
// processing can be correlated with the originating request.
func TraceHeaders(ctx context.Context) map[string]string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return map[string]string{"trace_id": sc.TraceID().String()}
}
