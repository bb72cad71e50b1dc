package events

import (
	"context"
	"sync"

	"github.com/flokiorg/appinion/logger"
)

type eventPublisher struct {
	subscribers      []EventSubscriber
	subscriberMtx    sync.RWMutex
	globalProperties map[string]interface{}
	globalMtx        sync.RWMutex
}

func NewEventPublisher() *eventPublisher {
	return &eventPublisher{
		subscribers:      []EventSubscriber{},
		globalProperties: map[string]interface{}{},
	}
}

func (ep *eventPublisher) RegisterSubscriber(subscriber EventSubscriber) {
	ep.subscriberMtx.Lock()
	defer ep.subscriberMtx.Unlock()
	ep.subscribers = append(ep.subscribers, subscriber)
}

func (ep *eventPublisher) RemoveSubscriber(subscriberToRemove EventSubscriber) {
	ep.subscriberMtx.Lock()
	defer ep.subscriberMtx.Unlock()

	for i, subscriber := range ep.subscribers {
		// delete the subscriber from the list
		if subscriber == subscriberToRemove {
			ep.subscribers = append(ep.subscribers[:i], ep.subscribers[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to every subscriber on its own goroutine.
func (ep *eventPublisher) Publish(event *Event) {
	subscribers, globalProperties := ep.snapshot()

	logger.Logger.Debug().Str("event", event.Event).Int("subscribers", len(subscribers)).Msg("Publishing event")
	for _, subscriber := range subscribers {
		go subscriber.ConsumeEvent(context.Background(), event, globalProperties)
	}
}

// PublishSync delivers the event to each subscriber in registration order
// and returns once all of them have consumed it.
func (ep *eventPublisher) PublishSync(event *Event) {
	subscribers, globalProperties := ep.snapshot()

	logger.Logger.Debug().Str("event", event.Event).Int("subscribers", len(subscribers)).Msg("Publishing event synchronously")
	for _, subscriber := range subscribers {
		subscriber.ConsumeEvent(context.Background(), event, globalProperties)
	}
}

func (ep *eventPublisher) SetGlobalProperty(key string, value interface{}) {
	ep.globalMtx.Lock()
	defer ep.globalMtx.Unlock()
	ep.globalProperties[key] = value
}

func (ep *eventPublisher) snapshot() ([]EventSubscriber, map[string]interface{}) {
	ep.subscriberMtx.RLock()
	subscribers := make([]EventSubscriber, len(ep.subscribers))
	copy(subscribers, ep.subscribers)
	ep.subscriberMtx.RUnlock()

	ep.globalMtx.RLock()
	globalProperties := make(map[string]interface{}, len(ep.globalProperties))
	for key, value := range ep.globalProperties {
		globalProperties[key] = value
	}
	ep.globalMtx.RUnlock()

	return subscribers, globalProperties
}
