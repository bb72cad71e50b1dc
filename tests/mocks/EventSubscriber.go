package mocks

import (
	"context"
	"sync"

	"github.com/flokiorg/appinion/events"
)

// RecordingSubscriber keeps every event it consumes.
type RecordingSubscriber struct {
	mu     sync.Mutex
	events []*events.Event
}

func (s *RecordingSubscriber) ConsumeEvent(ctx context.Context, event *events.Event, globalProperties map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *RecordingSubscriber) Events(name string) []*events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	matching := []*events.Event{}
	for _, event := range s.events {
		if event.Event == name {
			matching = append(matching, event)
		}
	}
	return matching
}
