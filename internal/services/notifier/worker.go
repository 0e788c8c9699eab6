// Package notifier consumes queued notification requests and delivers them.
package notifier

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BearBump/ShipTrack/internal/broker/messages"
	"github.com/BearBump/ShipTrack/internal/models"
)

type Notifier interface {
	Notify(ctx context.Context, n models.Notification) models.NotificationResult
}

type Consumer interface {
	Consume(ctx context.Context, handler func(key, value []byte) error) error
}

type Worker struct {
	notifier Notifier

	startedAtUnixNano   int64
	lastMessageUnixNano atomic.Int64
	totalConsumed       atomic.Int64
	totalSent           atomic.Int64
	totalDemo           atomic.Int64
	totalFailed         atomic.Int64
	totalSkipped        atomic.Int64
	inFlight            atomic.Int64
	lastErrorMu         sync.Mutex
	lastError           string
}

func New(n Notifier) *Worker {
	return &Worker{
		notifier:          n,
		startedAtUnixNano: time.Now().UTC().UnixNano(),
	}
}

type Stats struct {
	StartedAt     time.Time  `json:"startedAt"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty"`
	TotalConsumed int64      `json:"totalConsumed"`
	TotalSent     int64      `json:"totalSent"`
	TotalDemo     int64      `json:"totalDemo"`
	TotalFailed   int64      `json:"totalFailed"`
	TotalSkipped  int64      `json:"totalSkipped"`
	InFlight      int64      `json:"inFlight"`
	LastError     string     `json:"lastError,omitempty"`
}

func (w *Worker) Stats() Stats {
	st := Stats{
		StartedAt:     time.Unix(0, w.startedAtUnixNano).UTC(),
		TotalConsumed: w.totalConsumed.Load(),
		TotalSent:     w.totalSent.Load(),
		TotalDemo:     w.totalDemo.Load(),
		TotalFailed:   w.totalFailed.Load(),
		TotalSkipped:  w.totalSkipped.Load(),
		InFlight:      w.inFlight.Load(),
	}
	if n := w.lastMessageUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastMessageAt = &t
	}
	w.lastErrorMu.Lock()
	st.LastError = w.lastError
	w.lastErrorMu.Unlock()
	return st
}

// Run blocks until the consumer stops. Delivery failures are recorded by the notifier
// and never stop the loop, so a message is committed once it was attempted.
func (w *Worker) Run(ctx context.Context, c Consumer) error {
	return c.Consume(ctx, func(key, value []byte) error {
		return w.Handle(ctx, value)
	})
}

// Handle delivers one queued request. The only error it returns wraps
// messages.ErrMalformed.
func (w *Worker) Handle(ctx context.Context, value []byte) error {
	w.totalConsumed.Add(1)
	w.lastMessageUnixNano.Store(time.Now().UTC().UnixNano())

	msg, err := messages.DecodeNotificationRequested(value)
	if err != nil {
		w.totalSkipped.Add(1)
		w.setLastError("decode: " + err.Error())
		slog.Error("decode notification request", "error", err.Error())
		return err
	}

	w.inFlight.Add(1)
	defer w.inFlight.Add(-1)

	res := w.notifier.Notify(ctx, msg.Notification())
	switch res.Status {
	case models.NotificationStatusSent:
		w.totalSent.Add(1)
	case models.NotificationStatusDemo:
		w.totalDemo.Add(1)
	default:
		w.totalFailed.Add(1)
		w.setLastError(res.Error)
		slog.Warn("notification delivery failed",
			"request_id", msg.RequestID,
			"tracking_number", msg.TrackingNumber,
			"channel", msg.Channel,
			"error", res.Error,
		)
	}
	return nil
}

func (w *Worker) setLastError(s string) {
	w.lastErrorMu.Lock()
	w.lastError = s
	w.lastErrorMu.Unlock()
}
