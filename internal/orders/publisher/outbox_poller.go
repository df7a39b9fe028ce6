// Package publisher ships order outbox events to Kafka.
package publisher

import (
	"context"
	"time"

	"github.com/marte1309/PinkBlueberrySalon/internal/orders"
	"github.com/marte1309/PinkBlueberrySalon/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const Topic = "storefront-orders"

// EventSource is the outbox side of the order book.
type EventSource interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*orders.OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type OutboxPoller struct {
	timeout   time.Duration
	eventTick time.Duration
	batch     int
	repo      EventSource
	writer    MessageWriter
}

func NewOutboxPoller(repo EventSource, brokers ...string) *OutboxPoller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return NewOutboxPollerWithWriter(repo, w)
}

func NewOutboxPollerWithWriter(repo EventSource, w MessageWriter) *OutboxPoller {
	return &OutboxPoller{
		timeout:   5 * time.Second,
		eventTick: time.Second,
		batch:     100,
		repo:      repo,
		writer:    w,
	}
}

// Run polls the outbox until ctx is done.
func (p *OutboxPoller) Run(ctx context.Context) {
	eventTicker := time.NewTicker(p.eventTick)
	defer eventTicker.Stop()
	for {
		select {
		case <-eventTicker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) Close() error {
	return p.writer.Close()
}

// processUnpublishedEvents publishes in outbox order. An event that fails to
// publish stays unprocessed and is retried on the next tick.
func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) {
	log := logger.FromContext(ctx)

	events, err := p.repo.GetUnprocessedEvents(ctx, p.batch)
	if err != nil {
		log.Error("failed to fetch outbox events", zap.Error(err))
		return
	}

	for _, event := range events {
		if err := p.publishToKafka(ctx, event); err != nil {
			log.Warn("failed to publish outbox event",
				zap.Int64("event_id", event.ID),
				zap.String("event_type", event.EventType),
				zap.Error(err))
			continue
		}

		if err := p.repo.MarkEventAsProcessed(ctx, event.ID); err != nil {
			log.Warn("failed to mark outbox event as processed",
				zap.Int64("event_id", event.ID),
				zap.Error(err))
		}
	}
}

func (p *OutboxPoller) publishToKafka(ctx context.Context, event *orders.OutboxEvent) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(event.AggregateID), // visitor id keeps one visitor's orders in sequence
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}
