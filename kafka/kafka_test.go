package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/freshsave/internal/product/domain"
	"github.com/tair/freshsave/internal/product/repository"
	"github.com/tair/freshsave/internal/product/usecase/command"
	"github.com/tair/freshsave/internal/scanner"
	"github.com/tair/freshsave/internal/scanner/local"
	"github.com/tair/freshsave/pkg/auth"
	"github.com/tair/freshsave/pkg/middleware"
)

func toConsumerMessage(t *testing.T, msg *sarama.ProducerMessage) *sarama.ConsumerMessage {
	t.Helper()
	value, err := msg.Value.Encode()
	require.NoError(t, err)
	out := &sarama.ConsumerMessage{Topic: msg.Topic, Value: value}
	for i := range msg.Headers {
		h := msg.Headers[i]
		out.Headers = append(out.Headers, &h)
	}
	return out
}

func sampleReport() scanner.Report {
	return scanner.Report{
		Barcode: "3017620422003",
		Outcome: scanner.OutcomeFound,
		Source:  scanner.SourceOpenFoodFacts,
		Failures: []*scanner.ResolutionError{
			scanner.Miss(scanner.SourceCatalog, scanner.KindTransport, errors.New("status 503")),
		},
		Duration: 120 * time.Millisecond,
	}
}

func TestNewProductScannedEvent(t *testing.T) {
	event := NewProductScannedEvent(sampleReport(), "user-1")

	assert.Equal(t, EventTypeProductScanned, event.EventType)
	assert.Equal(t, "3017620422003", event.Barcode)
	assert.Equal(t, "found", event.Outcome)
	assert.Equal(t, "openfoodfacts", event.Source)
	assert.Equal(t, "user-1", event.UserID)
	assert.Equal(t, 1, event.LookupFailures)
	assert.Equal(t, []LookupFailure{{Source: "catalog", Kind: "transport"}}, event.Failures)
	assert.Equal(t, int64(120), event.DurationMs)
}

func TestPublisherObserveResolution(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	var sent *sarama.ProducerMessage
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		sent = msg
		return nil
	})

	publisher := NewPublisherWithProducer(producer)
	ctx := middleware.WithClaims(context.Background(), &auth.Claims{UserID: "user-7", Role: auth.RoleCustomer})
	publisher.ObserveResolution(ctx, sampleReport())
	require.NoError(t, publisher.Close())

	require.NotNil(t, sent)
	assert.Equal(t, TopicProductScanned, sent.Topic)
	key, err := sent.Key.Encode()
	require.NoError(t, err)
	assert.Equal(t, "3017620422003", string(key))

	msg := toConsumerMessage(t, sent)
	assert.Equal(t, EventTypeProductScanned, header(msg, "event_type"))
	assert.NotEmpty(t, header(msg, "event_id"))

	var event ProductScannedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, "user-7", event.UserID)
	assert.Equal(t, header(msg, "event_id"), event.EventID)
	assert.False(t, event.Timestamp.IsZero())
}

func TestPublisherSendFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewPublisherWithProducer(producer)
	err := publisher.PublishProductScanned(context.Background(), ProductScannedEvent{Barcode: "1"})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, publisher.Close())
}

// stalledProducer holds every send until release is closed.
type stalledProducer struct {
	*mocks.SyncProducer
	entered chan struct{}
	release chan struct{}
}

func newStalledProducer(t *testing.T, sends int) *stalledProducer {
	producer := mocks.NewSyncProducer(t, nil)
	for i := 0; i < sends; i++ {
		producer.ExpectSendMessageAndSucceed()
	}
	return &stalledProducer{
		SyncProducer: producer,
		entered:      make(chan struct{}, sends+1),
		release:      make(chan struct{}),
	}
}

func (p *stalledProducer) SendMessage(msg *sarama.ProducerMessage) (int32, int64, error) {
	p.entered <- struct{}{}
	<-p.release
	return p.SyncProducer.SendMessage(msg)
}

func TestObserveResolutionDoesNotWaitForBroker(t *testing.T) {
	producer := newStalledProducer(t, 1)
	publisher := NewPublisherWithProducer(producer)

	start := time.Now()
	publisher.ObserveResolution(context.Background(), sampleReport())
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	select {
	case <-producer.entered:
	case <-time.After(time.Second):
		t.Fatal("worker never reached the producer")
	}
	close(producer.release)
	require.NoError(t, publisher.Close())
}

func TestSlowBrokerDoesNotDelayScan(t *testing.T) {
	producer := newStalledProducer(t, 1)
	publisher := NewPublisherWithProducer(producer)
	defer func() {
		close(producer.release)
		require.NoError(t, publisher.Close())
	}()

	table, err := local.New([]domain.Product{{Barcode: "4006381333931", Name: "Pencil", Brand: "Stabilo", Category: "Office", StoreID: "local"}})
	require.NoError(t, err)
	resolver := scanner.NewResolver(table, nil, nil, scanner.WithObserver(publisher))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	p, err := resolver.Resolve(ctx, "4006381333931")
	require.NoError(t, err)
	assert.Equal(t, "Pencil", p.Name)
	assert.Less(t, time.Since(start), 200*time.Millisecond)
	require.NoError(t, ctx.Err())
}

func TestPublisherDropsWhenQueueFull(t *testing.T) {
	producer := newStalledProducer(t, 2)
	publisher := NewPublisherWithQueue(producer, 1)

	publisher.ObserveResolution(context.Background(), sampleReport())
	select {
	case <-producer.entered:
	case <-time.After(time.Second):
		t.Fatal("worker never reached the producer")
	}

	publisher.ObserveResolution(context.Background(), sampleReport())
	publisher.ObserveResolution(context.Background(), sampleReport())
	assert.Equal(t, int64(1), publisher.Dropped())

	close(producer.release)
	require.NoError(t, publisher.Close())

	publisher.ObserveResolution(context.Background(), sampleReport())
	assert.Equal(t, int64(1), publisher.Dropped())
	require.NoError(t, publisher.Close())
}

func TestPublishThenConsumeRecordsScan(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	var sent *sarama.ProducerMessage
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		sent = msg
		return nil
	})
	publisher := NewPublisherWithProducer(producer)
	publisher.ObserveResolution(context.Background(), sampleReport())
	require.NoError(t, publisher.Close())
	require.NotNil(t, sent)

	stats := repository.NewMemoryScanStatRepository()
	record := command.NewRecordScanHandler(stats)
	consumer := newConsumer("catalog", []string{TopicProductScanned})
	consumer.RegisterHandler(EventTypeProductScanned, func(ctx context.Context, event ProductScannedEvent) error {
		return record.Handle(ctx, event.ScanRecord())
	})

	require.NoError(t, consumer.handleMessage(context.Background(), toConsumerMessage(t, sent)))

	top, err := stats.Top(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "3017620422003", top[0].Barcode)
	assert.Equal(t, int64(1), top[0].Scans)
	assert.Equal(t, int64(1), top[0].Found)
	assert.Equal(t, int64(1), top[0].LookupFailures)
	assert.Equal(t, "openfoodfacts", top[0].LastSource)
}

func TestConsumerRejectsBadMessages(t *testing.T) {
	consumer := newConsumer("catalog", []string{TopicProductScanned})
	handled := 0
	consumer.RegisterHandler(EventTypeProductScanned, func(context.Context, ProductScannedEvent) error {
		handled++
		return nil
	})

	eventType := &sarama.RecordHeader{Key: []byte("event_type"), Value: []byte(EventTypeProductScanned)}

	err := consumer.handleMessage(context.Background(), &sarama.ConsumerMessage{Value: []byte(`{}`)})
	assert.ErrorIs(t, err, errNoEventType)

	err = consumer.handleMessage(context.Background(), &sarama.ConsumerMessage{
		Value:   []byte(`{}`),
		Headers: []*sarama.RecordHeader{{Key: []byte("event_type"), Value: []byte("product.purchased")}},
	})
	assert.ErrorIs(t, err, errNoHandler)

	err = consumer.handleMessage(context.Background(), &sarama.ConsumerMessage{
		Value:   []byte(`not json`),
		Headers: []*sarama.RecordHeader{eventType},
	})
	assert.Error(t, err)
	assert.Zero(t, handled)
}
