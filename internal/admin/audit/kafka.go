package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	envelopeVersion  = 1
	defaultProducer  = "orders-admin"
	defaultQueueSize = 256
)

// ErrQueueFull is returned when the publisher cannot accept another entry without blocking.
var ErrQueueFull = errors.New("audit: publish queue full")

// ErrPublisherClosed is returned when Record is called after Close.
var ErrPublisherClosed = errors.New("audit: publisher closed")

// Envelope is the wire format written to the audit topic.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// MessageWriter is the subset of kafka.Writer used by KafkaPublisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher streams audit entries to a Kafka topic from a background goroutine so
// user operations never wait on the broker.
type KafkaPublisher struct {
	writer   MessageWriter
	producer string
	logger   *zap.Logger

	inbox chan kafka.Message
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewKafkaWriter builds a kafka.Writer for the audit topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
}

// NewKafkaPublisher starts a publisher draining into writer. The logger is used as given.
func NewKafkaPublisher(writer MessageWriter, logger *zap.Logger) *KafkaPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &KafkaPublisher{
		writer:   writer,
		producer: defaultProducer,
		logger:   logger,
		inbox:    make(chan kafka.Message, defaultQueueSize),
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

// Record implements Logger. The entry is keyed by resource id so updates to the same order
// land on the same partition.
func (p *KafkaPublisher) Record(_ context.Context, entry Entry) error {
	msg, err := p.message(entry)
	if err != nil {
		return err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.inbox <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting entries, flushes queued messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		<-p.done
		return nil
	}
	p.closed = true
	close(p.inbox)
	p.mu.Unlock()

	<-p.done
	return p.writer.Close()
}

func (p *KafkaPublisher) run() {
	defer close(p.done)
	for msg := range p.inbox {
		if err := p.writer.WriteMessages(context.Background(), msg); err != nil {
			p.logger.Error("publish audit entry failed", zap.ByteString("key", msg.Key), zap.Error(err))
		}
	}
}

func (p *KafkaPublisher) message(entry Entry) (kafka.Message, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("audit: encode entry: %w", err)
	}
	occurred := entry.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     entry.Resource + "." + entry.Action,
		EventVersion:  envelopeVersion,
		OccurredAt:    occurred,
		Producer:      p.producer,
		CorrelationID: entry.ResourceID,
		Payload:       payload,
	}
	value, err := json.Marshal(env)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("audit: encode envelope: %w", err)
	}
	return kafka.Message{
		Key:   []byte(entry.ResourceID),
		Value: value,
		Time:  occurred,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
		},
	}, nil
}
