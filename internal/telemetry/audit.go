package telemetry

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// AuditEmitter records privileged portal actions on the audit queue. Emission
// is best effort; admin flows never fail on a broker outage.
type AuditEmitter struct {
	publisher   Publisher
	routingKey  string
	service     string
	environment string
	log         zerolog.Logger
}

// AuditEvent is the versioned record consumed by the compliance pipeline.
type AuditEvent struct {
	SchemaVersion int     `json:"schema_version"`
	EventType     string  `json:"event_type"`
	OccurredAt    string  `json:"occurred_at"`
	Service       string  `json:"service"`
	Environment   string  `json:"environment"`
	RequestID     string  `json:"request_id"`
	ActorID       *string `json:"actor_id,omitempty"`
	Action        string  `json:"action"`
	Detail        string  `json:"detail,omitempty"`
}

func NewAuditEmitter(publisher Publisher, routingKey, service, environment string, log zerolog.Logger) *AuditEmitter {
	return &AuditEmitter{
		publisher:   publisher,
		routingKey:  routingKey,
		service:     service,
		environment: environment,
		log:         log,
	}
}

// Emit publishes one audit record. Safe on a nil emitter so handlers do not
// guard every call site.
func (e *AuditEmitter) Emit(ctx context.Context, action, detail, requestID string, actorID *string) {
	if e == nil || e.publisher == nil {
		return
	}

	event := AuditEvent{
		SchemaVersion: 1,
		EventType:     "audit_log",
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     requestID,
		ActorID:       actorID,
		Action:        action,
		Detail:        detail,
	}

	if err := e.publisher.Publish(ctx, e.routingKey, event); err != nil {
		e.log.Warn().Err(err).Str("action", action).Str("request_id", requestID).Msg("audit publish failed")
	}
}
