package outbox

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// ProducerConfig tunes the Kafka writers used for enrollment events.
type ProducerConfig struct {
	Brokers []string
	// BatchTimeout caps how long a writer waits to fill a batch. The dispatcher
	// already batches, so this is kept short.
	BatchTimeout time.Duration
	// WriteTimeout bounds a single produce request to the brokers.
	WriteTimeout time.Duration
	// AutoCreateTopics lets a local broker create the enrollment topic on first write.
	AutoCreateTopics bool
}

// KafkaProducer keeps one writer per topic, created on first use.
type KafkaProducer struct {
	cfg     ProducerConfig
	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafkaProducer creates a KafkaProducer. Zero timeouts fall back to kafka-go defaults.
func NewKafkaProducer(cfg ProducerConfig) *KafkaProducer {
	return &KafkaProducer{
		cfg:     cfg,
		writers: make(map[string]*kafka.Writer),
	}
}

// WriteMessages writes msgs to topic.
func (p *KafkaProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	return p.writerFor(topic).WriteMessages(ctx, msgs...)
}

func (p *KafkaProducer) writerFor(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w, ok := p.writers[topic]; ok {
		return w
	}

	// Events are keyed by activity name, so hashing keeps each activity's
	// signups and removals ordered on one partition.
	w := &kafka.Writer{
		Addr:                   kafka.TCP(p.cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           p.cfg.BatchTimeout,
		WriteTimeout:           p.cfg.WriteTimeout,
		AllowAutoTopicCreation: p.cfg.AutoCreateTopics,
	}
	p.writers[topic] = w
	return w
}

// Close closes every writer and returns the first error.
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.writers, topic)
	}
	return firstErr
}
