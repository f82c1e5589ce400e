package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/freshsave/internal/scanner"
	"github.com/tair/freshsave/pkg/logger"
	"github.com/tair/freshsave/pkg/middleware"
)

// DefaultQueueSize bounds the scan events waiting for the producer.
const DefaultQueueSize = 256

type queuedEvent struct {
	ctx   context.Context
	event ProductScannedEvent
}

// Publisher wraps Kafka producer. Resolver reports go through a bounded
// queue drained by one worker, so a slow broker never holds up a scan.
type Publisher struct {
	producer sarama.SyncProducer
	now      func() time.Time

	queue   chan queuedEvent
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

// NewPublisher creates a new Kafka publisher
func NewPublisher(brokers []string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.MaxMessageBytes = 1000000
	config.Producer.Timeout = 5 * time.Second
	config.Net.DialTimeout = 5 * time.Second
	config.Net.ReadTimeout = 5 * time.Second
	config.Net.WriteTimeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Int("queue_size", DefaultQueueSize).
		Msg("Kafka publisher initialized")

	return NewPublisherWithProducer(producer), nil
}

// NewPublisherWithProducer wraps an existing producer.
func NewPublisherWithProducer(producer sarama.SyncProducer) *Publisher {
	return NewPublisherWithQueue(producer, DefaultQueueSize)
}

// NewPublisherWithQueue wraps an existing producer with a queue of the given
// size. Close must be called to stop the worker.
func NewPublisherWithQueue(producer sarama.SyncProducer, size int) *Publisher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	p := &Publisher{
		producer: producer,
		now:      func() time.Time { return time.Now().UTC() },
		queue:    make(chan queuedEvent, size),
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Publisher) run() {
	defer close(p.done)
	for q := range p.queue {
		_ = p.PublishProductScanned(q.ctx, q.event)
	}
}

// PublishProductScanned publishes a product scanned event with tracing
func (p *Publisher) PublishProductScanned(ctx context.Context, event ProductScannedEvent) error {
	tracer := otel.Tracer("kafka-publisher")
	ctx, span := tracer.Start(ctx, "kafka.publish.product_scanned",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", TopicProductScanned),
			attribute.String("messaging.destination_kind", "topic"),
			attribute.String("event.type", EventTypeProductScanned),
			attribute.String("product.barcode", event.Barcode),
			attribute.String("scan.outcome", event.Outcome),
		),
	)
	defer span.End()

	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	event.EventType = EventTypeProductScanned
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}

	span.SetAttributes(attribute.String("event.id", event.EventID))

	eventBytes, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Inject trace context into Kafka headers
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(EventTypeProductScanned)},
		{Key: []byte("event_id"), Value: []byte(event.EventID)},
	}
	for key, value := range carrier {
		headers = append(headers, sarama.RecordHeader{Key: []byte(key), Value: []byte(value)})
	}

	// Keyed by barcode so one barcode's scans stay ordered within a partition.
	msg := &sarama.ProducerMessage{
		Topic:   TopicProductScanned,
		Key:     sarama.StringEncoder(event.Barcode),
		Value:   sarama.ByteEncoder(eventBytes),
		Headers: headers,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to send message")
		logger.WithContext(ctx).Error().
			Err(err).
			Str("topic", TopicProductScanned).
			Str("barcode", event.Barcode).
			Msg("Failed to publish event")
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	span.SetAttributes(
		attribute.Int("messaging.kafka.partition", int(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)
	span.SetStatus(codes.Ok, "Event published successfully")

	logger.WithContext(ctx).Debug().
		Str("event_id", event.EventID).
		Str("topic", TopicProductScanned).
		Int32("partition", partition).
		Int64("offset", offset).
		Str("barcode", event.Barcode).
		Str("outcome", event.Outcome).
		Msg("Product scanned event published")

	return nil
}

// ObserveResolution queues the resolver report for publishing and returns
// at once. When the queue is full the event is dropped. Publishing failures
// are logged and never affect the scan result.
func (p *Publisher) ObserveResolution(ctx context.Context, report scanner.Report) {
	var userID string
	if claims, ok := middleware.ClaimsFromContext(ctx); ok {
		userID = claims.UserID
	}
	// Keep the trace but not the request deadline.
	q := queuedEvent{ctx: context.WithoutCancel(ctx), event: NewProductScannedEvent(report, userID)}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	select {
	case p.queue <- q:
	default:
		p.dropped.Add(1)
		logger.WithContext(ctx).Warn().
			Str("barcode", report.Barcode).
			Int64("dropped", p.dropped.Load()).
			Msg("Kafka publish queue full, dropping scan event")
	}
}

// Dropped reports how many scan events were discarded on a full queue.
func (p *Publisher) Dropped() int64 {
	return p.dropped.Load()
}

// Close drains the queued events and closes the Kafka producer
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
