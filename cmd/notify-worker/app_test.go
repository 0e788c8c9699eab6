package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BearBump/ShipTrack/config"
	"github.com/BearBump/ShipTrack/internal/broker/messages"
	"github.com/BearBump/ShipTrack/internal/cache/rediscache"
	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/BearBump/ShipTrack/internal/notify"
	"github.com/BearBump/ShipTrack/internal/services/notifier"
	"github.com/BearBump/ShipTrack/internal/storage/memshipments"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// fakeConsumer hands values to the handler, signals done, then blocks until ctx ends.
// Malformed values are counted and passed over like the kafka consumer does.
type fakeConsumer struct {
	values    [][]byte
	done      chan struct{}
	closed    atomic.Bool
	malformed atomic.Int32
}

func (c *fakeConsumer) Consume(ctx context.Context, handler func(key, value []byte) error) error {
	for _, v := range c.values {
		if err := handler(nil, v); err != nil {
			if !errors.Is(err, messages.ErrMalformed) {
				return err
			}
			c.malformed.Add(1)
		}
	}
	if c.done != nil {
		close(c.done)
	}
	<-ctx.Done()
	return ctx.Err()
}

func (c *fakeConsumer) Close() error {
	c.closed.Store(true)
	return nil
}

func testFactories(st *memshipments.Storage, c *fakeConsumer, closed *bool) workerFactories {
	return workerFactories{
		newStorage: func(cfg *config.Config) (notify.LogStore, func(), error) {
			return st, func() { *closed = true }, nil
		},
		newConsumer: func(cfg *config.Config, topic, group string) messageConsumer {
			return c
		},
		newRateLimiter: func(cfg *config.Config) notify.RateLimiter {
			return nil
		},
	}
}

func TestDefaultWorkerFactories(t *testing.T) {
	f := defaultWorkerFactories()

	cfg := &config.Config{
		Kafka:     config.KafkaConfig{Host: "localhost", Port: 9092},
		ShipTrack: config.ShipTrackConfig{StorageDriver: "memory"},
	}
	require.NotNil(t, f.newConsumer(cfg, "t", "g"))
	require.Nil(t, f.newRateLimiter(cfg))

	cfg.Redis = config.RedisConfig{Host: "localhost", Port: 6379}
	_, ok := f.newRateLimiter(cfg).(*rediscache.RateLimiter)
	require.True(t, ok)

	logs, closeFn, err := f.newStorage(cfg)
	require.NoError(t, err)
	require.IsType(t, &memshipments.Storage{}, logs)
	closeFn()
}

func TestRunNotifyWorker_ContextCanceled(t *testing.T) {
	closedDB := false
	c := &fakeConsumer{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RunNotifyWorker(ctx, &config.Config{}, testFactories(memshipments.New(), c, &closedDB))
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, closedDB)
	require.True(t, c.closed.Load())
}

func TestRunNotifyWorker_DeliversQueuedRequests(t *testing.T) {
	st := memshipments.New()
	ctx := context.Background()
	require.NoError(t, st.CreateShipment(ctx, &models.Shipment{ID: "ship-1", TrackingNumber: "CD123456789"}))

	msg := messages.NewNotificationRequested("req-1", models.Notification{
		ShipmentID:       "ship-1",
		TrackingNumber:   "CD123456789",
		Channel:          models.NotificationChannelEmail,
		Recipient:        "marcia@example.com",
		Subject:          "Package Shipped - CD123456789",
		Message:          "on its way",
		NotificationType: notify.TypeShipmentShipped,
	}, time.Now().UTC())
	b, err := json.Marshal(msg)
	require.NoError(t, err)

	c := &fakeConsumer{values: [][]byte{b, []byte("garbage")}, done: make(chan struct{})}
	closedDB := false

	runCtx, cancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- RunNotifyWorker(runCtx, &config.Config{}, testFactories(st, c, &closedDB)) }()

	<-c.done
	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)

	logs, err := st.ListNotifications(ctx, "ship-1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, models.NotificationStatusDemo, logs[0].Status)
	require.Equal(t, notify.TypeShipmentShipped, logs[0].NotificationType)
	require.Equal(t, int32(1), c.malformed.Load())
}

type flakyConsumer struct {
	calls atomic.Int32
}

func (c *flakyConsumer) Consume(ctx context.Context, handler func(key, value []byte) error) error {
	if c.calls.Add(1) == 1 {
		return errors.New("fetch message: broker not available")
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestRunWithRestart_ResumesAfterError(t *testing.T) {
	c := &flakyConsumer{}
	w := notifier.New(notify.NewDispatcher(nil, nil, nil, notify.Options{}))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- runWithRestart(ctx, w, c, 5*time.Millisecond) }()

	require.Eventually(t, func() bool { return c.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
}

func TestWorkerHTTPServer_Endpoints(t *testing.T) {
	sw := filepath.Join(t.TempDir(), "swagger.json")
	require.NoError(t, os.WriteFile(sw, []byte(`{"swagger":"2.0"}`), 0o600))

	w := notifier.New(notify.NewDispatcher(nil, nil, nil, notify.Options{}))
	require.ErrorIs(t, w.Handle(context.Background(), []byte("not json")), messages.ErrMalformed)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addrCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- runWorkerHTTPServer(ctx, workerHTTPOpts{
			httpAddr:    "127.0.0.1:0",
			swaggerPath: sw,
			onListen:    func(addr string) { addrCh <- addr },
			worker:      w,
			cfg:         &config.Config{Notify: config.NotifyConfig{RateLimitPerRecipientPerMinute: 5, ResendAPIKey: "secret"}},
			topic:       "t",
			group:       "g",
		})
	}()
	base := "http://" + <-addrCh

	get := func(path string) map[string]any {
		resp, err := http.Get(base + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var out map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return out
	}

	require.Equal(t, "ok", get("/healthz")["status"])
	require.Equal(t, float64(1), get("/stats")["totalSkipped"])

	cfgOut := get("/config")
	require.Equal(t, "t", cfgOut["topic"])
	require.Equal(t, float64(5), cfgOut["rateLimitPerRecipientPerMinute"])
	require.NotContains(t, cfgOut, "resendApiKey")
	require.Equal(t, []any{}, cfgOut["liveChannels"])

	resp, err := http.Get(base + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/swagger.json")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	require.Error(t, <-errCh)
}
