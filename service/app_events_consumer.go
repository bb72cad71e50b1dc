package service

import (
	"context"

	"github.com/flokiorg/appinion/constants"
	"github.com/flokiorg/appinion/events"
	"github.com/flokiorg/appinion/logger"
)

type appEventsConsumer struct {
	events.EventSubscriber
}

// Keeps a trail of store mutations in the app log
func (c *appEventsConsumer) ConsumeEvent(ctx context.Context, event *events.Event, globalProperties map[string]interface{}) {
	switch event.Event {
	case constants.EVENT_APP_SAVED, constants.EVENT_APP_SUMMARY_UPDATED, constants.EVENT_APP_DELETED:
	case constants.EVENT_APPS_CLEARED:
		logger.Logger.Info().Str("event", event.Event).Msg("Local app store cleared")
		return
	default:
		return
	}

	properties, ok := event.Properties.(*events.AppEventProperties)
	if !ok {
		logger.Logger.Error().Interface("event", event).Msg("Failed to cast event.Properties to app event properties")
		return
	}
	logger.Logger.Info().
		Str("event", event.Event).
		Str("app_id", properties.AppID).
		Str("name", properties.Name).
		Msg("Local app store updated")
}
