// Package rewards credits reward points for placed orders.
package rewards

import (
	"context"
	"encoding/json"
	"errors"
	"math"

	"github.com/marte1309/PinkBlueberrySalon/internal/orders"
	"github.com/marte1309/PinkBlueberrySalon/internal/orders/publisher"
	"github.com/marte1309/PinkBlueberrySalon/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const GroupID = "storefront-rewards"

// Crediter applies earned points to the signed-in visitor that placed the
// order. It reports false when that user is no longer signed in there.
type Crediter interface {
	CreditRewardPoints(ctx context.Context, visitorID, userID string, points int) (bool, error)
}

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Consumer struct {
	crediter Crediter
	reader   MessageReader
}

func NewConsumer(crediter Crediter, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    publisher.Topic,
		GroupID:  GroupID,
		MaxBytes: 10e6, // 10MB
	})
	return NewConsumerWithReader(crediter, reader)
}

func NewConsumerWithReader(crediter Crediter, reader MessageReader) *Consumer {
	return &Consumer{crediter: crediter, reader: reader}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		zap.L().Warn("error closing kafka reader", zap.Error(err))
	}
}

// PointsFor is one point per whole currency unit spent.
func PointsFor(total float64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Floor(total))
}

func (c *Consumer) processMessage(ctx context.Context) {
	log := logger.FromContext(ctx)

	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		log.Warn("error reading message", zap.Error(err))
		return
	}

	if eventType(m) != orders.EventOrderPlaced {
		return
	}

	var event orders.PlacedEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		log.Warn("error parsing message", zap.Error(err))
		return
	}
	if event.UserID == "" {
		return
	}

	points := PointsFor(event.TotalAmount)
	if points == 0 {
		return
	}

	credited, err := c.crediter.CreditRewardPoints(ctx, event.VisitorID, event.UserID, points)
	if err != nil {
		log.Warn("failed to credit reward points",
			zap.String("order_id", event.OrderID),
			zap.Error(err))
		return
	}
	if !credited {
		log.Debug("reward points skipped, user not signed in",
			zap.String("order_id", event.OrderID),
			zap.String("visitor_id", event.VisitorID))
		return
	}
	log.Info("reward points credited",
		zap.String("order_id", event.OrderID),
		zap.String("user_id", event.UserID),
		zap.Int("points", points))
}

func eventType(m kafka.Message) string {
	for _, h := range m.Headers {
		if h.Key == "event_type" {
			return string(h.Value)
		}
	}
	return ""
}
