package service

import (
	"context"
	"log/slog"

	"github.com/twipi/pubsub"

	"github.com/rocketscienceinc/timetravel-tictactoe/internal/entity"
)

// EventService fans session views out to every subscriber of that session.
type EventService struct {
	logger *slog.Logger
	sendCh chan *entity.SessionEvent
	sub    pubsub.Subscriber[*entity.SessionEvent]
}

func NewEventService(logger *slog.Logger) *EventService {
	return &EventService{
		logger: logger.With("component", "events"),
		sendCh: make(chan *entity.SessionEvent),
	}
}

// Start dispatches published events until ctx is done.
func (that *EventService) Start(ctx context.Context) error {
	return that.sub.Listen(ctx, that.sendCh)
}

// Publish hands event to the dispatcher; it gives up when ctx is done first.
func (that *EventService) Publish(ctx context.Context, event *entity.SessionEvent) {
	select {
	case that.sendCh <- event:
	case <-ctx.Done():
		that.logger.Warn(
			"event dropped",
			"session_id", event.SessionID,
			"error", ctx.Err())
	}
}

// Subscribe delivers the events of sessionID to ch until Unsubscribe.
func (that *EventService) Subscribe(sessionID string, ch chan<- *entity.SessionEvent) {
	that.sub.Subscribe(ch, func(event *entity.SessionEvent) bool {
		return event.SessionID == sessionID
	})
}

func (that *EventService) Unsubscribe(ch chan<- *entity.SessionEvent) {
	that.sub.Unsubscribe(ch)
}
