// Package outbox buffers enrollment events in process and delivers them to Kafka.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrQueueFull is returned when the buffer cannot accept another event.
var ErrQueueFull = errors.New("outbox queue is full")

// Message is an event waiting for delivery.
type Message struct {
	EventID   string
	EventType string
	Topic     string
	Key       string
	Payload   json.RawMessage
	CreatedAt time.Time
}

// Queue is a bounded in-process outbox. It implements domain.EventPublisher.
type Queue struct {
	topic    string
	messages chan Message
}

// NewQueue creates a Queue that stamps every event with topic.
func NewQueue(topic string, size int) *Queue {
	if size <= 0 {
		size = 1
	}
	return &Queue{topic: topic, messages: make(chan Message, size)}
}

// Publish encodes payload and enqueues it without blocking.
func (q *Queue) Publish(ctx context.Context, eventType, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", eventType, err)
	}

	msg := Message{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Topic:     q.topic,
		Key:       key,
		Payload:   body,
		CreatedAt: time.Now().UTC(),
	}

	select {
	case q.messages <- msg:
		enqueuedCounter.Inc()
		return nil
	default:
		droppedCounter.Inc()
		return ErrQueueFull
	}
}

// Len reports the number of buffered events.
func (q *Queue) Len() int { return len(q.messages) }

// Discard drops every event. It is used when no broker is configured.
type Discard struct{}

// Publish implements domain.EventPublisher.
func (Discard) Publish(context.Context, string, string, any) error { return nil }
