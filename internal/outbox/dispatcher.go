package outbox

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// flushTimeout bounds a single delivery attempt. Deliveries are detached from the
// Start context so events read before cancellation are still written.
const flushTimeout = 5 * time.Second

type messageWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
}

// Dispatcher drains the Queue and delivers events to Kafka in per-topic batches.
type Dispatcher struct {
	queue            *Queue
	producer         messageWriter
	batchSize        int
	flushInterval    time.Duration
	logger           *zap.Logger
	shutdownComplete chan struct{}
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(queue *Queue, producer messageWriter, batchSize int, flushInterval time.Duration, logger *zap.Logger) *Dispatcher {
	if batchSize <= 0 {
		batchSize = 1
	}
	if flushInterval <= 0 {
		flushInterval = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		queue:            queue,
		producer:         producer,
		batchSize:        batchSize,
		flushInterval:    flushInterval,
		logger:           logger,
		shutdownComplete: make(chan struct{}),
	}
}

// Start runs the delivery loop until ctx is cancelled. It should be called in a goroutine.
func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.flushInterval)
	defer func() {
		ticker.Stop()
		close(d.shutdownComplete)
	}()

	batch := make([]Message, 0, d.batchSize)
	for {
		select {
		case <-ctx.Done():
			d.flush(ctx, d.drainBuffered(batch))
			return
		case msg := <-d.queue.messages:
			batch = append(batch, msg)
			if ctx.Err() != nil {
				continue
			}
			if len(batch) >= d.batchSize {
				d.flush(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if ctx.Err() == nil && len(batch) > 0 {
				d.flush(ctx, batch)
				batch = batch[:0]
			}
		}
	}
}

// Wait blocks until Start has returned.
func (d *Dispatcher) Wait() {
	<-d.shutdownComplete
}

func (d *Dispatcher) drainBuffered(batch []Message) []Message {
	for {
		select {
		case msg := <-d.queue.messages:
			batch = append(batch, msg)
		default:
			return batch
		}
	}
}

// flush delivers batch once. Failed events are counted and dropped.
func (d *Dispatcher) flush(ctx context.Context, batch []Message) {
	if len(batch) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()

	start := time.Now()
	defer func() { batchDuration.Observe(time.Since(start).Seconds()) }()

	for topic, records := range groupByTopic(batch) {
		if err := d.producer.WriteMessages(ctx, topic, records...); err != nil {
			failedCounter.Add(float64(len(records)))
			d.logger.Error("outbox delivery failed",
				zap.String("topic", topic),
				zap.Int("events", len(records)),
				zap.Error(err),
			)
			continue
		}
		deliveredCounter.Add(float64(len(records)))
	}
}

func groupByTopic(batch []Message) map[string][]kafka.Message {
	out := make(map[string][]kafka.Message)
	for _, msg := range batch {
		out[msg.Topic] = append(out[msg.Topic], kafka.Message{
			Key:   []byte(msg.Key),
			Value: msg.Payload,
			Time:  msg.CreatedAt,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(msg.EventType)},
				{Key: "event_id", Value: []byte(msg.EventID)},
			},
		})
	}
	return out
}
