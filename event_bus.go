// event_bus.go: In-process publish/subscribe channel for module communication
//
// The bus is the only communication primitive modules are given: instead of
// holding references to each other they publish typed payloads and subscribe
// to event types. Delivery is synchronous, best-effort and non-durable; a
// panicking subscriber is isolated so independent listeners never affect
// each other.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gomodules

import (
	"runtime"
	"sync"
	"time"

	"github.com/agilira/go-timecache"
)

// EventCallback is the function invoked for each delivered payload.
type EventCallback func(payload any)

// Subscription is the handle returned by Subscribe. Removal is by handle
// identity, so subscribing the same function twice yields two independently
// removable subscriptions.
type Subscription struct {
	id        uint64
	eventType string
	owner     string
	callback  EventCallback
	created   time.Time
}

// EventType returns the event type this subscription is registered for.
func (s *Subscription) EventType() string {
	return s.eventType
}

// Owner returns the diagnostic owner id supplied at subscription time.
func (s *Subscription) Owner() string {
	return s.owner
}

// EventBus is a synchronous in-process publish/subscribe channel.
//
// Concurrency model: the subscriber table is guarded by a read-write mutex.
// Publish dispatches over a stable snapshot of the subscriber list taken at
// call start, so subscribing or unsubscribing during an in-flight publish of
// the same event type never causes a skipped, duplicated or out-of-bounds
// delivery in that call. Within one publish call, delivery order is FIFO by
// subscription time. No ordering is guaranteed across event types, and
// concurrent Publish calls are not globally ordered.
type EventBus struct {
	logger Logger

	mu          sync.RWMutex
	subscribers map[string][]*Subscription
	nextID      uint64
}

// NewEventBus creates an event bus logging through the given logger
// (nil for silent operation).
func NewEventBus(logger any) *EventBus {
	return &EventBus{
		logger:      NewLogger(logger),
		subscribers: make(map[string][]*Subscription),
	}
}

// Subscribe registers callback for eventType and returns its handle.
// The owner id is recorded as "unknown" for diagnostics; use SubscribeAs to
// attribute the subscription.
func (b *EventBus) Subscribe(eventType string, callback EventCallback) *Subscription {
	return b.SubscribeAs("unknown", eventType, callback)
}

// SubscribeAs registers callback for eventType with a diagnostic owner id.
// The owner id appears in fault-isolation logs when the callback panics; it
// has no behavioral effect.
func (b *EventBus) SubscribeAs(owner, eventType string, callback EventCallback) *Subscription {
	if callback == nil {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		id:        b.nextID,
		eventType: eventType,
		owner:     owner,
		callback:  callback,
		created:   timecache.CachedTime(),
	}
	b.subscribers[eventType] = append(b.subscribers[eventType], sub)

	b.logger.Debug("Event subscription registered",
		"event_type", eventType,
		"owner", owner,
		"subscriber_count", len(b.subscribers[eventType]))

	return sub
}

// Unsubscribe removes the subscription identified by handle. Unknown or nil
// handles are ignored; removal is idempotent.
func (b *EventBus) Unsubscribe(handle *Subscription) {
	if handle == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[handle.eventType]
	for i, sub := range subs {
		if sub.id == handle.id {
			b.subscribers[handle.eventType] = append(subs[:i:i], subs[i+1:]...)
			b.logger.Debug("Event subscription removed",
				"event_type", handle.eventType,
				"owner", handle.owner)
			break
		}
	}
	if len(b.subscribers[handle.eventType]) == 0 {
		delete(b.subscribers, handle.eventType)
	}
}

// Publish delivers payload synchronously to every subscriber registered for
// eventType at the moment of the call, in subscription order. A subscriber
// that panics is recovered and logged with its owner id and the event type,
// and delivery continues with the remaining subscribers. Publishing to an
// event type with no subscribers is a no-op.
func (b *EventBus) Publish(eventType string, payload any) {
	b.mu.RLock()
	registered := b.subscribers[eventType]
	snapshot := make([]*Subscription, len(registered))
	copy(snapshot, registered)
	b.mu.RUnlock()

	for _, sub := range snapshot {
		b.deliver(sub, eventType, payload)
	}
}

// deliver invokes one subscriber under panic isolation.
func (b *EventBus) deliver(sub *Subscription, eventType string, payload any) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 64<<10)
			n := runtime.Stack(buf, false)
			b.logger.Error("Event subscriber panicked during delivery",
				"event_type", eventType,
				"owner", sub.owner,
				"error", NewSubscriberPanicError(eventType, sub.owner, r),
				"stack", string(buf[:n]))
		}
	}()

	sub.callback(payload)
}

// SubscriberCount returns the number of active subscriptions for eventType.
func (b *EventBus) SubscriberCount(eventType string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[eventType])
}

// Clear drops every subscription on the bus. Used at host shutdown after all
// modules have been unloaded.
func (b *EventBus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	dropped := 0
	for _, subs := range b.subscribers {
		dropped += len(subs)
	}
	b.subscribers = make(map[string][]*Subscription)

	b.logger.Debug("Event bus cleared", "subscriptions_dropped", dropped)
}
