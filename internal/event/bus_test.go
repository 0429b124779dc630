package event

import "testing"

func TestTopicMatches(t *testing.T) {
	tests := []struct {
		name    string
		topic   Topic
		pattern Topic
		want    bool
	}{
		{"exact", TopicStoreChanged, TopicStoreChanged, true},
		{"wildcard prefix", TopicCompletionShown, "suggest.completion.*", true},
		{"wildcard root", TopicStoreChanged, "suggest.*", true},
		{"wildcard mismatch", "render.frame", "suggest.*", false},
		{"no partial segment match", "suggestion.x", "suggest.*", false},
		{"different topics", TopicStoreChanged, TopicSuggestError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.topic.Matches(tt.pattern); got != tt.want {
				t.Errorf("%q.Matches(%q) = %v, want %v", tt.topic, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus()

	var got []Topic
	bus.Subscribe("suggest.*", func(ev Event) {
		got = append(got, ev.Topic)
	})

	bus.Publish(TopicStoreChanged, 3)
	bus.Publish("render.frame", nil)
	bus.Publish(TopicCompletionShown, nil)

	want := []Topic{TopicStoreChanged, TopicCompletionShown}
	if len(got) != len(want) {
		t.Fatalf("received %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()

	count := 0
	sub := bus.Subscribe(TopicStoreChanged, func(Event) { count++ })

	bus.Publish(TopicStoreChanged, nil)
	bus.Unsubscribe(sub)
	bus.Publish(TopicStoreChanged, nil)

	if count != 1 {
		t.Errorf("handler ran %d times, want 1", count)
	}
	if bus.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount() = %d, want 0", bus.SubscriberCount())
	}
}

func TestBusPayload(t *testing.T) {
	bus := NewBus()

	var payload any
	bus.Subscribe(TopicSuggestError, func(ev Event) { payload = ev.Payload })
	bus.Publish(TopicSuggestError, "boom")

	if payload != "boom" {
		t.Errorf("payload = %v, want %q", payload, "boom")
	}
}
