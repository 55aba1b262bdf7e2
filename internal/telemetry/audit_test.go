package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"portal-service/internal/mocks"
	"portal-service/internal/telemetry"
)

func TestAuditEmitterPublishesEvent(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := telemetry.NewAuditEmitter(publisher, "audit.portal", "portal-service", "test", zerolog.Nop())

	actor := "7"
	publisher.On("Publish", mock.Anything, "audit.portal", mock.MatchedBy(func(event any) bool {
		audit, ok := event.(telemetry.AuditEvent)
		if !ok {
			return false
		}
		return audit.Action == "room.create" &&
			audit.Detail == "general" &&
			audit.RequestID == "req-1" &&
			audit.ActorID != nil && *audit.ActorID == "7" &&
			audit.Service == "portal-service" &&
			audit.SchemaVersion == 1
	})).Return(nil).Once()

	emitter.Emit(context.Background(), "room.create", "general", "req-1", &actor)

	publisher.AssertExpectations(t)
}

func TestAuditEmitterSwallowsPublishError(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := telemetry.NewAuditEmitter(publisher, "audit.portal", "portal-service", "test", zerolog.Nop())

	publisher.On("Publish", mock.Anything, "audit.portal", mock.Anything).Return(errors.New("broker down")).Once()

	require.NotPanics(t, func() {
		emitter.Emit(context.Background(), "credits.purchase", "10", "req-2", nil)
	})
	publisher.AssertExpectations(t)
}

func TestNilAuditEmitterIsSafe(t *testing.T) {
	var emitter *telemetry.AuditEmitter
	assert.NotPanics(t, func() {
		emitter.Emit(context.Background(), "room.create", "general", "req-3", nil)
	})
}
