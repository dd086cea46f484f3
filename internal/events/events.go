package events

import (
	"context"
	"errors"
	"sync"
)

const (
	TopicInventoryAdjusted  = "inventory.adjusted"
	TopicInventorySale      = "inventory.sale"
	TopicProductCreated     = "product.created"
	TopicProductUpdated     = "product.updated"
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status_changed"
)

// Publisher pushes a domain event to downstream consumers (dashboards, brokers).
type Publisher interface {
	Publish(ctx context.Context, topic string, key string, payload any) error
}

// Envelope is the wire shape shared by every publisher.
type Envelope struct {
	Type string `json:"type"`
	Key  string `json:"key"`
	Data any    `json:"data"`
}

type noop struct{}

func (noop) Publish(context.Context, string, string, any) error { return nil }

// Noop discards every event.
func Noop() Publisher { return noop{} }

// Fanout delivers each event to all publishers and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, topic, key string, payload any) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, topic, key, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps published events in memory. Used by tests.
type Recorder struct {
	mu     sync.Mutex
	Events []Envelope
}

func (r *Recorder) Publish(_ context.Context, topic, key string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, Envelope{Type: topic, Key: key, Data: payload})
	return nil
}

func (r *Recorder) Topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	topics := make([]string, len(r.Events))
	for i, e := range r.Events {
		topics[i] = e.Type
	}
	return topics
}
