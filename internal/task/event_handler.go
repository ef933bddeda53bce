package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/useradmin/internal/events"
	"github.com/phrazzld/useradmin/internal/platform/logger"
)

// Submitter accepts tasks for background execution. *TaskRunner satisfies it.
type Submitter interface {
	Submit(ctx context.Context, task Task) error
}

// AsyncEventHandler hands events to a wrapped handler on the task runner,
// so the emitter returns as soon as the task is queued.
type AsyncEventHandler struct {
	handler   events.EventHandler
	submitter Submitter
	logger    *slog.Logger
}

var _ events.EventHandler = (*AsyncEventHandler)(nil)

// NewAsyncEventHandler creates an AsyncEventHandler.
func NewAsyncEventHandler(handler events.EventHandler, submitter Submitter, logger *slog.Logger) *AsyncEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AsyncEventHandler{
		handler:   handler,
		submitter: submitter,
		logger:    logger.With("component", "async_event_handler"),
	}
}

// HandleEvent queues delivery of event and reports only queueing failures.
// The task runs with the request's logger but not its cancellation.
func (h *AsyncEventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	reqLogger := logger.FromContextOrDefault(ctx, h.logger)

	t := NewFunc("event:"+event.Type, func(taskCtx context.Context) error {
		return h.handler.HandleEvent(logger.WithLogger(taskCtx, reqLogger), event)
	})

	if err := h.submitter.Submit(ctx, t); err != nil {
		h.logger.Error("failed to queue event delivery",
			"error", err,
			"event_id", event.ID,
			"event_type", event.Type)
		return fmt.Errorf("failed to queue event %s: %w", event.ID, err)
	}

	h.logger.Debug("event delivery queued",
		"task_id", t.ID(),
		"event_id", event.ID,
		"event_type", event.Type)
	return nil
}
