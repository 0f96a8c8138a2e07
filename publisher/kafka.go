// Package publisher ships order book events to external message queues.
package publisher

import (
	"context"
	"log/slog"
	"time"

	match "github.com/0x5487/auction-engine"
	"github.com/0x5487/auction-engine/protocol"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Option func(*KafkaPublishLog)

// WithWriter replaces the kafka writer, e.g. with a fake in tests.
func WithWriter(w MessageWriter) Option {
	return func(p *KafkaPublishLog) {
		p.writer = w
	}
}

// WithSerializer sets the value codec. Defaults to JSON.
func WithSerializer(s protocol.Serializer) Option {
	return func(p *KafkaPublishLog) {
		p.serializer = s
	}
}

// WithWriteTimeout bounds one Publish call.
func WithWriteTimeout(d time.Duration) Option {
	return func(p *KafkaPublishLog) {
		p.timeout = d
	}
}

// WithLogger sets the logger used to report failed writes. Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(p *KafkaPublishLog) {
		p.logger = l
	}
}

// KafkaPublishLog implements match.PublishLog on a kafka topic.
// Messages are keyed by pair so one pair's events stay ordered in one partition.
// Publish writes synchronously, so the engine may recycle the logs afterwards.
type KafkaPublishLog struct {
	writer     MessageWriter
	serializer protocol.Serializer
	timeout    time.Duration
	logger     *slog.Logger
}

var _ match.PublishLog = (*KafkaPublishLog)(nil)

// NewKafkaPublishLog creates a publisher writing to topic on brokers.
func NewKafkaPublishLog(brokers []string, topic string, opts ...Option) *KafkaPublishLog {
	p := &KafkaPublishLog{
		serializer: &protocol.DefaultJSONSerializer{},
		timeout:    5 * time.Second,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.writer == nil {
		p.writer = &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		}
	}

	return p
}

// Publish encodes and writes logs as one batch. Failures are logged and dropped.
func (p *KafkaPublishLog) Publish(logs ...*match.BookLog) {
	if len(logs) == 0 {
		return
	}

	msgs := make([]kafka.Message, 0, len(logs))
	for _, log := range logs {
		value, err := p.serializer.Marshal(log)
		if err != nil {
			p.logger.Error("failed to encode book log", "seq_id", log.SequenceID, "error", err)
			continue
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(log.Pair),
			Value: value,
		})
	}

	if len(msgs) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.logger.Error("failed to publish book logs",
			"first_seq_id", logs[0].SequenceID,
			"count", len(msgs),
			"error", err,
		)
	}
}

// Close flushes and closes the writer.
func (p *KafkaPublishLog) Close() error {
	return p.writer.Close()
}
