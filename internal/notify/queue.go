package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/BearBump/ShipTrack/internal/broker/messages"
	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/google/uuid"
)

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// QueueSink hands notifications to notify-worker through Kafka instead of sending inline.
type QueueSink struct {
	producer Producer
	topic    string
	now      func() time.Time
}

func NewQueueSink(p Producer, topic string) *QueueSink {
	return &QueueSink{producer: p, topic: topic, now: time.Now}
}

func (q *QueueSink) Notify(ctx context.Context, n models.Notification) models.NotificationResult {
	msg := messages.NewNotificationRequested(uuid.NewString(), n, q.now().UTC())
	b, err := json.Marshal(msg)
	if err != nil {
		return failed(err.Error())
	}

	key := n.ShipmentID
	if key == "" {
		key = n.Recipient
	}
	if err := q.producer.Publish(ctx, q.topic, []byte(key), b); err != nil {
		slog.Warn("notification enqueue failed", "topic", q.topic, "error", err.Error())
		return failed(err.Error())
	}
	return models.NotificationResult{Status: models.NotificationStatusQueued}
}
