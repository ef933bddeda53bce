package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryEventEmitter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	newEvent := func(t *testing.T, eventType string) *Event {
		t.Helper()
		event, err := NewEvent(eventType, UserRegisteredPayload{UserID: 1, Email: "ada@example.com"})
		require.NoError(t, err)
		return event
	}

	t.Run("emit event with no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		assert.NoError(t, emitter.EmitEvent(context.Background(), newEvent(t, UserRegistered)))
	})

	t.Run("emit event with successful handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		handler1 := &MockEventHandler{}
		handler2 := &MockEventHandler{}
		emitter.RegisterHandler(handler1)
		emitter.Subscribe(UserRegistered, handler2)

		event := newEvent(t, UserRegistered)
		require.NoError(t, emitter.EmitEvent(context.Background(), event))

		assert.Equal(t, 1, handler1.HandledCount)
		assert.Equal(t, 1, handler2.HandledCount)
		assert.Equal(t, event, handler1.LastEvent)
		assert.Equal(t, event, handler2.LastEvent)
	})

	t.Run("typed subscriptions only see their type", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(nil)
		registered := &MockEventHandler{}
		other := &MockEventHandler{}
		emitter.Subscribe(UserRegistered, registered)
		emitter.Subscribe("user.deleted", other)

		require.NoError(t, emitter.EmitEvent(context.Background(), newEvent(t, UserRegistered)))

		assert.Equal(t, 1, registered.HandledCount)
		assert.Zero(t, other.HandledCount)
	})

	t.Run("emit event with failing handler", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		failingHandler := &MockEventHandler{HandlerError: errors.New("handler error")}
		successHandler := &MockEventHandler{}
		emitter.RegisterHandler(failingHandler)
		emitter.RegisterHandler(successHandler)

		err := emitter.EmitEvent(context.Background(), newEvent(t, UserRegistered))

		require.Error(t, err)
		assert.Equal(t, "handler error", err.Error())
		assert.Equal(t, 1, successHandler.HandledCount)
		assert.Equal(t, 1, failingHandler.HandledCount)
	})

	t.Run("cancelled context stops delivery", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		handler := &MockEventHandler{}
		emitter.RegisterHandler(handler)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := emitter.EmitEvent(ctx, newEvent(t, UserRegistered))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, handler.HandledCount)
	})

	t.Run("handler func adapter", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		var seen string
		emitter.Subscribe(UserRegistered, HandlerFunc(func(_ context.Context, e *Event) error {
			seen = e.Type
			return nil
		}))

		require.NoError(t, emitter.EmitEvent(context.Background(), newEvent(t, UserRegistered)))
		assert.Equal(t, UserRegistered, seen)
	})
}
