package eventbus

import (
	"testing"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := New()
	id1, ch1 := b.Subscribe(4)
	id2, ch2 := b.Subscribe(4)
	defer b.Unsubscribe(id1)
	defer b.Unsubscribe(id2)

	b.PublishNew(EventTypeTaskStageChanged, "task-1", map[string]string{"to": "completed"})

	for i, ch := range []<-chan *Event{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.Type != EventTypeTaskStageChanged {
				t.Errorf("subscriber %d: got type %s", i, ev.Type)
			}
			if ev.ResourceID != "task-1" {
				t.Errorf("subscriber %d: got resource %s", i, ev.ResourceID)
			}
			if ev.ID == "" {
				t.Errorf("subscriber %d: event has no ID", i)
			}
		default:
			t.Errorf("subscriber %d: no event received", i)
		}
	}
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	b := New()
	id, ch := b.Subscribe(1)
	defer b.Unsubscribe(id)

	b.PublishNew(EventTypeTaskCreated, "task-1", nil)
	// Buffer is full; this event is dropped rather than blocking the
	// publisher.
	b.PublishNew(EventTypeTaskCreated, "task-2", nil)

	ev := <-ch
	if ev.ResourceID != "task-1" {
		t.Errorf("expected first event, got %s", ev.ResourceID)
	}
	select {
	case ev := <-ch:
		t.Errorf("expected second event to be dropped, got %s", ev.ResourceID)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := New()
	id, ch := b.Subscribe(1)
	b.Unsubscribe(id)

	if _, ok := <-ch; ok {
		t.Error("channel not closed after unsubscribe")
	}

	// Publishing after unsubscribe must not panic.
	b.PublishNew(EventTypeTaskCreated, "task-1", nil)

	// Unsubscribing twice is harmless.
	b.Unsubscribe(id)
}
