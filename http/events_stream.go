package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flokiorg/appinion/events"
	"github.com/flokiorg/appinion/logger"
)

const eventStreamBuffer = 64

// streamSubscriber forwards published events to one SSE client. Events are
// dropped when the client falls behind.
type streamSubscriber struct {
	events chan *events.Event
}

func newStreamSubscriber() *streamSubscriber {
	return &streamSubscriber{
		events: make(chan *events.Event, eventStreamBuffer),
	}
}

func (s *streamSubscriber) ConsumeEvent(ctx context.Context, event *events.Event, globalProperties map[string]interface{}) {
	select {
	case s.events <- event:
	default:
		logger.Logger.Warn().Str("event", event.Event).Msg("Event stream client is too slow, dropping event")
	}
}

func (httpSvc *HttpService) eventsHandler(c echo.Context) error {
	subscriber := newStreamSubscriber()
	httpSvc.eventPublisher.RegisterSubscriber(subscriber)
	defer httpSvc.eventPublisher.RemoveSubscriber(subscriber)

	response := c.Response()
	response.Header().Set(echo.HeaderContentType, "text/event-stream")
	response.Header().Set("Cache-Control", "no-cache")
	response.Header().Set("Connection", "keep-alive")
	response.WriteHeader(http.StatusOK)
	response.Flush()

	// the current state lets a client render without waiting for a change
	if err := writeEvent(response, "state", httpSvc.api.GetState()); err != nil {
		return nil
	}

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-subscriber.events:
			if err := writeEvent(response, event.Event, event.Properties); err != nil {
				logger.Logger.Debug().Err(err).Msg("Event stream client disconnected")
				return nil
			}
		}
	}
}

func writeEvent(response *echo.Response, name string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Logger.Error().Err(err).Str("event", name).Msg("Failed to serialize event")
		return nil
	}
	_, err = fmt.Fprintf(response, "event: %s\ndata: %s\n\n", name, data)
	if err != nil {
		return err
	}
	response.Flush()
	return nil
}
