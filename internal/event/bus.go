// Package event provides a small synchronous topic bus used to signal
// suggestion-store mutations and completion lifecycle changes to the
// editor shell. Topics are dotted paths; a subscription pattern ending
// in ".*" matches every topic under that prefix.
package event

import (
	"sync"
	"time"
)

// Topic is a hierarchical event type such as "suggest.store.changed".
type Topic string

// Topics published by the suggestion engine.
const (
	TopicStoreChanged       Topic = "suggest.store.changed"
	TopicSuggestError       Topic = "suggest.error"
	TopicCompletionShown    Topic = "suggest.completion.shown"
	TopicCompletionCleared  Topic = "suggest.completion.cleared"
	TopicCompletionAccepted Topic = "suggest.completion.accepted"
)

// Matches reports whether the topic satisfies the given pattern.
func (t Topic) Matches(pattern Topic) bool {
	if t == pattern {
		return true
	}
	n := len(pattern)
	if n >= 2 && pattern[n-2:] == ".*" {
		prefix := string(pattern[:n-1]) // keep the trailing dot
		return len(t) >= len(prefix) && string(t[:len(prefix)]) == prefix
	}
	return false
}

// Event is a published notification.
type Event struct {
	Topic     Topic
	Payload   any
	Timestamp time.Time
}

// HandlerFunc receives published events.
type HandlerFunc func(Event)

// Subscription identifies a registered handler.
type Subscription struct {
	id      uint64
	pattern Topic
}

// Bus delivers events synchronously on the publisher's goroutine.
// Handlers must not block.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []busSub
}

type busSub struct {
	id      uint64
	pattern Topic
	fn      HandlerFunc
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for topics matching the pattern.
func (b *Bus) Subscribe(pattern Topic, fn HandlerFunc) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subs = append(b.subs, busSub{id: b.nextID, pattern: pattern, fn: fn})
	return Subscription{id: b.nextID, pattern: pattern}
}

// Unsubscribe removes a subscription. Unknown subscriptions are ignored.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == sub.id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to every matching handler in subscription
// order.
func (b *Bus) Publish(topic Topic, payload any) {
	b.mu.RLock()
	matched := make([]HandlerFunc, 0, len(b.subs))
	for _, s := range b.subs {
		if topic.Matches(s.pattern) {
			matched = append(matched, s.fn)
		}
	}
	b.mu.RUnlock()

	ev := Event{Topic: topic, Payload: payload, Timestamp: time.Now()}
	for _, fn := range matched {
		fn(ev)
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
