// Package events fans activation transitions out from the bridge to the
// player surfaces: in-process subscribers, the websocket hub, and an
// optional MQTT broker.
package events

import (
	"sync"
	"time"
)

const (
	TypeScheduleStarted = "schedule_started"
	TypeScheduleEnded   = "schedule_ended"
)

// Event is one activation transition. Every true occurrence episode
// produces exactly one started and one ended event.
type Event struct {
	Type         string    `json:"type"`
	ScheduleID   int64     `json:"scheduleId"`
	ScheduleName string    `json:"scheduleName"`
	At           time.Time `json:"at"`
}

// Bus is an in-process publish/subscribe channel. Subscriber channels are
// buffered; a subscriber that stops draining is dropped rather than allowed
// to block the bridge's tick.
type Bus struct {
	mu     sync.Mutex
	subs   []chan Event
	closed bool
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a listener for transition events. Callers must
// Unsubscribe on teardown.
func (b *Bus) Subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, 16)
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, ch)
	return ch
}

// Unsubscribe removes a listener and closes its channel.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subs {
		if sub == ch {
			close(sub)
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers ev to every live subscriber.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	live := b.subs[:0]
	for _, sub := range b.subs {
		select {
		case sub <- ev:
			live = append(live, sub)
		default:
			// subscriber fell behind, drop it
			close(sub)
		}
	}
	b.subs = live
}

// Close tears the bus down and closes every subscriber channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, sub := range b.subs {
		close(sub)
	}
	b.subs = nil
}
