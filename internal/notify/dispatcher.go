// Package notify delivers customer notifications over email and WhatsApp and keeps an
// audit row for every attempt.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BearBump/ShipTrack/internal/integrations/channel"
	"github.com/BearBump/ShipTrack/internal/metrics"
	"github.com/BearBump/ShipTrack/internal/models"
)

type LogStore interface {
	RecordNotification(ctx context.Context, n *models.NotificationLog) error
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

type Options struct {
	// RatePerRecipientPerMinute caps messages per channel+recipient. 0 disables the limit.
	RatePerRecipientPerMinute int64
	Retry                     RetryConfig

	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// Dispatcher sends through the configured channel senders. A channel without a sender
// runs in demo mode: the message is logged and recorded but not sent.
type Dispatcher struct {
	senders map[string]channel.Sender
	logs    LogStore
	limiter RateLimiter
	metrics *metrics.ShipTrackMetrics

	ratePerMinute int64
	planner       *Planner
	now           func() time.Time
	sleep         func(ctx context.Context, d time.Duration) error
}

func NewDispatcher(logs LogStore, limiter RateLimiter, m *metrics.ShipTrackMetrics, opts Options) *Dispatcher {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepCtx
	}
	return &Dispatcher{
		senders:       map[string]channel.Sender{},
		logs:          logs,
		limiter:       limiter,
		metrics:       m,
		ratePerMinute: opts.RatePerRecipientPerMinute,
		planner:       NewPlanner(opts.Retry, nil),
		now:           opts.Now,
		sleep:         opts.Sleep,
	}
}

// WithSender enables real delivery for a channel.
func (d *Dispatcher) WithSender(ch string, s channel.Sender) *Dispatcher {
	if s != nil {
		d.senders[ch] = s
	}
	return d
}

func (d *Dispatcher) Notify(ctx context.Context, n models.Notification) models.NotificationResult {
	res := d.deliver(ctx, n)
	d.metrics.IncNotification(n.Channel, res.Status)
	d.record(ctx, n, res)
	return res
}

func (d *Dispatcher) deliver(ctx context.Context, n models.Notification) models.NotificationResult {
	if n.Channel != models.NotificationChannelEmail && n.Channel != models.NotificationChannelWhatsApp {
		return failed(fmt.Sprintf("unsupported channel %q", n.Channel))
	}
	if strings.TrimSpace(n.Recipient) == "" || strings.TrimSpace(n.Message) == "" {
		return failed("recipient and message are required")
	}

	sender, ok := d.senders[n.Channel]
	if !ok {
		slog.Info("demo notification",
			"channel", n.Channel,
			"recipient", n.Recipient,
			"subject", n.Subject,
			"type", n.NotificationType,
			"tracking_number", n.TrackingNumber,
		)
		return models.NotificationResult{Status: models.NotificationStatusDemo}
	}

	if d.limiter != nil && d.ratePerMinute > 0 {
		key := fmt.Sprintf("rl:notify:%s:%s", n.Channel, strings.ToLower(n.Recipient))
		allowed, count, err := d.limiter.Allow(ctx, key, d.ratePerMinute, time.Minute)
		if err != nil {
			slog.Warn("notification rate limiter unavailable", "channel", n.Channel, "error", err.Error())
		} else if !allowed {
			slog.Warn("notification rate limit exceeded", "channel", n.Channel, "recipient", n.Recipient, "count", count)
			return failed("rate limit exceeded for recipient")
		}
	}

	msg := channel.Message{To: n.Recipient, Subject: n.Subject, Body: n.Message}
	var err error
	for attempt := 1; attempt <= d.planner.MaxAttempts(); attempt++ {
		if err = sender.Send(ctx, msg); err == nil {
			return models.NotificationResult{Status: models.NotificationStatusSent}
		}
		if !channel.IsTemporary(err) || attempt == d.planner.MaxAttempts() {
			break
		}
		delay := d.planner.BackoffDelay(attempt)
		slog.Warn("notification send failed, retrying",
			"channel", n.Channel,
			"attempt", attempt,
			"delay", delay.String(),
			"error", err.Error(),
		)
		if serr := d.sleep(ctx, delay); serr != nil {
			err = serr
			break
		}
	}
	return failed(err.Error())
}

func (d *Dispatcher) record(ctx context.Context, n models.Notification, res models.NotificationResult) {
	if d.logs == nil {
		return
	}
	now := d.now().UTC()
	entry := &models.NotificationLog{
		ShipmentID:       n.ShipmentID,
		Channel:          n.Channel,
		Recipient:        n.Recipient,
		Subject:          n.Subject,
		Message:          n.Message,
		NotificationType: n.NotificationType,
		Status:           res.Status,
		ErrorMessage:     res.Error,
		CreatedAt:        now,
	}
	if res.Status == models.NotificationStatusSent {
		entry.SentAt = &now
	}
	if err := d.logs.RecordNotification(ctx, entry); err != nil {
		d.metrics.IncLedgerWriteFailure(metrics.LedgerNotifications)
		slog.Warn("ledger write failed",
			"tracking_number", n.TrackingNumber,
			"shipment_id", n.ShipmentID,
			"ledger", metrics.LedgerNotifications,
			"error", err.Error(),
		)
	}
}

func failed(msg string) models.NotificationResult {
	return models.NotificationResult{Status: models.NotificationStatusFailed, Error: msg}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
