package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BearBump/ShipTrack/config"
	"github.com/BearBump/ShipTrack/internal/broker/kafka"
	"github.com/BearBump/ShipTrack/internal/cache/rediscache"
	"github.com/BearBump/ShipTrack/internal/metrics"
	"github.com/BearBump/ShipTrack/internal/notify"
	"github.com/BearBump/ShipTrack/internal/services/notifier"
	"github.com/BearBump/ShipTrack/internal/storage/memshipments"
	"github.com/BearBump/ShipTrack/internal/storage/pgshipments"
)

const (
	defaultTopic         = "shiptrack.notification_requested"
	defaultConsumerGroup = "notify-worker"
)

type messageConsumer interface {
	notifier.Consumer
	Close() error
}

type workerFactories struct {
	newStorage     func(cfg *config.Config) (logs notify.LogStore, closeFn func(), err error)
	newConsumer    func(cfg *config.Config, topic, group string) messageConsumer
	newRateLimiter func(cfg *config.Config) notify.RateLimiter
}

func defaultWorkerFactories() workerFactories {
	return workerFactories{
		newStorage: func(cfg *config.Config) (notify.LogStore, func(), error) {
			if strings.EqualFold(cfg.ShipTrack.StorageDriver, "memory") {
				st := memshipments.New()
				return st, st.Close, nil
			}
			st, err := pgshipments.New(cfg.PostgresConnString())
			if err != nil {
				return nil, nil, err
			}
			return st, st.Close, nil
		},
		newConsumer: func(cfg *config.Config, topic, group string) messageConsumer {
			return kafka.NewConsumer(kafka.ConsumerConfig{
				Brokers:     cfg.KafkaBrokers(),
				Topic:       topic,
				GroupID:     group,
				StartOffset: cfg.Notify.KafkaStartOffset,
				Poison:      metrics.Default(),
			})
		},
		newRateLimiter: func(cfg *config.Config) notify.RateLimiter {
			if cfg.Redis.Host == "" {
				return nil
			}
			return rediscache.NewRateLimiter(cfg.RedisAddr())
		},
	}
}

func RunNotifyWorker(ctx context.Context, cfg *config.Config, f workerFactories) error {
	topic := cfg.Kafka.NotificationRequestedTopicName
	if topic == "" {
		topic = defaultTopic
	}
	group := cfg.Notify.KafkaConsumerGroup
	if group == "" {
		group = defaultConsumerGroup
	}

	logs, closeFn, err := f.newStorage(cfg)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}

	m := metrics.Default()
	d := notify.NewDispatcher(logs, f.newRateLimiter(cfg), m, notify.Options{
		RatePerRecipientPerMinute: int64(cfg.Notify.RateLimitPerRecipientPerMinute),
	}).ConfigureSenders(notify.ChannelSettings{
		EmailFrom:           cfg.Notify.EmailFrom,
		ResendBaseURL:       cfg.Notify.ResendBaseURL,
		ResendAPIKey:        cfg.Notify.ResendAPIKey,
		WhatsAppBaseURL:     cfg.Notify.WhatsAppBaseURL,
		WhatsAppAccessToken: cfg.Notify.WhatsAppAccessToken,
		WhatsAppPhoneID:     cfg.Notify.WhatsAppPhoneID,
	})
	w := notifier.New(d)

	consumer := f.newConsumer(cfg, topic, group)
	defer func() { _ = consumer.Close() }()

	if cfg.Notify.WorkerHTTPAddr != "" {
		go func() {
			err := runWorkerHTTPServer(ctx, workerHTTPOpts{
				httpAddr:    cfg.Notify.WorkerHTTPAddr,
				swaggerPath: os.Getenv("swaggerPath"),
				worker:      w,
				cfg:         cfg,
				channels:    d.Channels(),
				topic:       topic,
				group:       group,
			})
			if err != nil && ctx.Err() == nil {
				slog.Error("worker http server", "error", err.Error())
			}
		}()
	}

	slog.Info("notify worker started", "topic", topic, "group", group, "channels", fmt.Sprint(d.Channels()))
	return runWithRestart(ctx, w, consumer, time.Second)
}

// runWithRestart keeps consuming after transient broker errors until ctx is done.
func runWithRestart(ctx context.Context, w *notifier.Worker, c notifier.Consumer, backoff time.Duration) error {
	for {
		err := w.Run(ctx, c)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Warn("consumer stopped, restarting", "error", fmt.Sprint(err), "backoff", backoff.String())
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}
