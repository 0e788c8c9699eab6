package kafka

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/BearBump/ShipTrack/internal/broker/messages"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

const (
	StartOffsetFirst = "first"
	StartOffsetLast  = "last"

	defaultMaxWait = time.Second
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// PoisonCounter counts messages committed without being handled.
type PoisonCounter interface {
	IncPoisonMessage(topic string)
}

type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
	// StartOffset applies when the group has no committed offset: "first" or "last" (default).
	StartOffset string
	MaxWait     time.Duration
	Poison      PoisonCounter
}

// Consumer delivers one message at a time and commits it once handled. A handler
// error wrapping messages.ErrMalformed is committed and counted instead of
// stopping the loop, since redelivery cannot fix it.
type Consumer struct {
	r      messageReader
	topic  string
	poison PoisonCounter
}

func NewConsumer(cfg ConsumerConfig) *Consumer {
	rc := kafka.ReaderConfig{
		Brokers:           cfg.Brokers,
		GroupID:           cfg.GroupID,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
		MaxWait:           cfg.MaxWait,
		StartOffset:       startOffset(cfg.StartOffset),
	}
	if rc.MaxWait <= 0 {
		rc.MaxWait = defaultMaxWait
	}
	if cfg.GroupID != "" {
		rc.GroupTopics = []string{cfg.Topic}
	} else {
		rc.Topic = cfg.Topic
	}
	return newConsumerWithReader(kafka.NewReader(rc), cfg.Topic, cfg.Poison)
}

func newConsumerWithReader(r messageReader, topic string, poison PoisonCounter) *Consumer {
	return &Consumer{r: r, topic: topic, poison: poison}
}

func startOffset(s string) int64 {
	if strings.EqualFold(strings.TrimSpace(s), StartOffsetFirst) {
		return kafka.FirstOffset
	}
	return kafka.LastOffset
}

func (c *Consumer) Close() error {
	return c.r.Close()
}

func (c *Consumer) Consume(ctx context.Context, handler func(key, value []byte) error) error {
	for {
		msg, err := c.r.FetchMessage(ctx)
		if err != nil {
			return errors.Wrap(err, "fetch message")
		}
		if err := handler(msg.Key, msg.Value); err != nil {
			if !errors.Is(err, messages.ErrMalformed) {
				// not committed, so the message is redelivered
				return err
			}
			slog.Warn("committing undecodable message",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err.Error(),
			)
			if c.poison != nil {
				c.poison.IncPoisonMessage(c.topic)
			}
		}
		if err := c.r.CommitMessages(ctx, msg); err != nil {
			return errors.Wrap(err, "commit message")
		}
	}
}
