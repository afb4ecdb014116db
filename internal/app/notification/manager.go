// Package notification fans playback events out to subscribers.
package notification

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/padbox/internal/app/playback"
)

// Notification is a playback event stamped with a sequence number.
type Notification struct {
	SequenceNo uint64
	Event      playback.Event
}

// Subscriber receives notifications.
type Subscriber interface {
	Notify(Notification) error
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(Notification) error

// Notify calls f.
func (f SubscriberFunc) Notify(n Notification) error {
	return f(n)
}

// subscription represents a subscriber's subscription.
type subscription struct {
	id         string
	order      uint64
	subscriber Subscriber
}

// Manager manages subscriptions and delivers events in subscription order.
// Delivery is synchronous on the publishing goroutine.
type Manager struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription
	subscribed    uint64
	sequenceNo    uint64
}

// NewManager creates a new notification manager.
func NewManager() *Manager {
	return &Manager{
		subscriptions: make(map[string]*subscription),
	}
}

// Subscribe adds a new subscription and returns the subscription ID.
func (m *Manager) Subscribe(s Subscriber) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	m.subscribed++
	m.subscriptions[id] = &subscription{
		id:         id,
		order:      m.subscribed,
		subscriber: s,
	}
	return id
}

// Unsubscribe removes a subscription.
func (m *Manager) Unsubscribe(subscriptionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscriptions, subscriptionID)
}

// Publish implements playback.Notifier.
func (m *Manager) Publish(e playback.Event) {
	m.Broadcast(e)
}

// Broadcast stamps the event with the next sequence number and delivers it
// to every subscriber. Subscriber errors are logged and do not stop delivery.
func (m *Manager) Broadcast(e playback.Event) uint64 {
	m.mu.Lock()
	m.sequenceNo++
	n := Notification{SequenceNo: m.sequenceNo, Event: e}

	// Copy subscriptions to avoid holding lock during delivery
	subs := make([]*subscription, 0, len(m.subscriptions))
	for _, sub := range m.subscriptions {
		subs = append(subs, sub)
	}
	m.mu.Unlock()

	sort.Slice(subs, func(i, j int) bool { return subs[i].order < subs[j].order })

	for _, sub := range subs {
		if err := sub.subscriber.Notify(n); err != nil {
			zlog.Warn().Err(err).Msgf("notification: subscriber failed: id=%s event=%s", sub.id, e.Type)
		}
	}
	return n.SequenceNo
}

// SequenceNo returns the last assigned sequence number.
func (m *Manager) SequenceNo() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sequenceNo
}

// SubscriberCount returns the number of active subscribers.
func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Close removes all subscriptions.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions = make(map[string]*subscription)
}
