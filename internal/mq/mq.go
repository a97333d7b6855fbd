// Package mq provides a broker-agnostic event bus used for message
// delivery notifications. The API server publishes lifecycle events
// (message created, message read); notifier workers subscribe to them.
package mq

import "context"

// Event represents a broker-agnostic payload delivered to subscribers.
// It is distinct from the domain's user-to-user messages: events are
// notifications about them.
type Event struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes an event. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, event Event) error

// Backend defines the broker-agnostic operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// MQ wraps a backend with a stable API.
type MQ struct {
	backend Backend
}

// New constructs an MQ wrapper for the provided backend.
func New(backend Backend) *MQ {
	return &MQ{backend: backend}
}

// Publish sends an event to the named channel.
func (m *MQ) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	return m.backend.Publish(ctx, channel, data, attrs)
}

// Subscribe consumes events from the named channel.
func (m *MQ) Subscribe(ctx context.Context, channel string, handler Handler) error {
	return m.backend.Subscribe(ctx, channel, handler)
}

// Close closes the underlying backend.
func (m *MQ) Close() error {
	return m.backend.Close()
}
