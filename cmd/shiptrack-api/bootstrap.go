package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BearBump/ShipTrack/config"
	shipmentsapi "github.com/BearBump/ShipTrack/internal/api/shipments_api"
	"github.com/BearBump/ShipTrack/internal/broker/kafka"
	"github.com/BearBump/ShipTrack/internal/cache/rediscache"
	"github.com/BearBump/ShipTrack/internal/logging"
	"github.com/BearBump/ShipTrack/internal/metrics"
	"github.com/BearBump/ShipTrack/internal/notify"
	"github.com/BearBump/ShipTrack/internal/services/lifecycle"
	"github.com/BearBump/ShipTrack/internal/services/staff"
	"github.com/BearBump/ShipTrack/internal/services/tracking"
	"github.com/BearBump/ShipTrack/internal/storage/memshipments"
	"github.com/BearBump/ShipTrack/internal/storage/pgshipments"
	"github.com/redis/go-redis/v9"
)

const (
	notificationModeDirect = "direct"
	notificationModeQueued = "queued"
	notificationModeOff    = "off"

	defaultNotificationTopic = "shiptrack.notification_requested"
)

// shipmentStore is everything the API needs from one storage driver.
type shipmentStore interface {
	lifecycle.ShipmentRepository
	lifecycle.EventLedger
	lifecycle.ScanLogRepository
	tracking.Repository
	staff.Repository
	notify.LogStore
}

type shipTrackAPIApp struct {
	ctx     context.Context
	cancel  context.CancelFunc
	opts    shipTrackAPIOpts
	api     *shipmentsapi.ShipmentsAPI
	closers []func()
}

func mustBootstrapShipTrackAPI() *shipTrackAPIApp {
	cfgPath := os.Getenv("configPath")
	if cfgPath == "" {
		panic("configPath env var is required")
	}
	swaggerPath := os.Getenv("swaggerPath")
	if swaggerPath == "" {
		panic("swaggerPath env var is required")
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("config parse error, %v", err))
	}
	logging.Setup(cfg.ShipTrack.LogLevel, cfg.ShipTrack.LogFormat)

	grpcAddr := cfg.ShipTrack.GRPCAddr
	if grpcAddr == "" {
		grpcAddr = ":50051"
	}
	httpAddr := cfg.ShipTrack.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	st, closeDB, err := openStorage(ctx, cfg)
	if err != nil {
		cancel()
		panic(err)
	}

	api, closers, err := buildAPI(cfg, st, metrics.Default())
	if err != nil {
		cancel()
		closeDB()
		panic(err)
	}

	return &shipTrackAPIApp{
		ctx:    ctx,
		cancel: cancel,
		opts: shipTrackAPIOpts{
			grpcAddr:     grpcAddr,
			httpAddr:     httpAddr,
			grpcDialAddr: grpcAddr,
			swaggerPath:  swaggerPath,
		},
		api:     api,
		closers: append([]func(){closeDB}, closers...),
	}
}

func openStorage(ctx context.Context, cfg *config.Config) (shipmentStore, func(), error) {
	switch strings.ToLower(cfg.ShipTrack.StorageDriver) {
	case "memory":
		st := memshipments.New()
		if cfg.ShipTrack.SeedFile != "" {
			n, err := st.LoadSeed(ctx, cfg.ShipTrack.SeedFile)
			if err != nil {
				return nil, nil, err
			}
			slog.Info("seeded shipments", "count", n, "file", cfg.ShipTrack.SeedFile)
		}
		return st, st.Close, nil
	case "", "postgres":
		st := mustOpenPostgresWithRetry(cfg.PostgresConnString(), 60*time.Second)
		return st, st.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.ShipTrack.StorageDriver)
	}
}

func mustOpenPostgresWithRetry(connString string, wait time.Duration) *pgshipments.Storage {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		st, err := pgshipments.New(connString)
		if err == nil {
			return st
		}
		lastErr = err
		time.Sleep(1 * time.Second)
	}
	panic(fmt.Sprintf("postgres is not ready after %s: %v", wait, lastErr))
}

// buildAPI wires the services on top of st. Redis and Kafka are optional: without a
// redis host the lock is in-process and lookups are not cached.
func buildAPI(cfg *config.Config, st shipmentStore, m *metrics.ShipTrackMetrics) (*shipmentsapi.ShipmentsAPI, []func(), error) {
	var closers []func()

	cacheTTL := time.Duration(cfg.ShipTrack.LookupCacheTTLSeconds) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	lockTTL := time.Duration(cfg.ShipTrack.LockTTLSeconds) * time.Second
	notifyTimeout := time.Duration(cfg.ShipTrack.NotifyTimeoutSeconds) * time.Second
	ledgerTimeout := time.Duration(cfg.ShipTrack.LedgerWriteTimeoutSeconds) * time.Second

	deps := lifecycle.Deps{
		Shipments: st,
		Events:    st,
		Scans:     st,
		Metrics:   m,
	}

	var (
		lookupCache *rediscache.RedisCache
		limiter     notify.RateLimiter
	)
	if cfg.Redis.Host != "" {
		rc := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr()})
		closers = append(closers, func() { _ = rc.Close() })
		lookupCache = rediscache.NewWithClient(rc, "")
		limiter = rediscache.NewRateLimiterWithClient(rc)
		deps.Locker = rediscache.NewLocker(rc, lockTTL)
		deps.Cache = lookupCache
	}

	mode := strings.ToLower(cfg.ShipTrack.NotificationMode)
	if mode == "" {
		mode = notificationModeDirect
	}
	switch mode {
	case notificationModeOff:
	case notificationModeQueued:
		topic := cfg.Kafka.NotificationRequestedTopicName
		if topic == "" {
			topic = defaultNotificationTopic
		}
		producer := kafka.NewProducer(cfg.KafkaBrokers())
		closers = append(closers, func() { _ = producer.Close() })
		deps.Notifier = notify.NewComposer(notify.Company{}, cfg.Notify.TrackingURL)
		deps.Sink = notify.NewQueueSink(producer, topic)
	case notificationModeDirect:
		deps.Notifier = notify.NewComposer(notify.Company{}, cfg.Notify.TrackingURL)
		deps.Sink = newDispatcher(cfg, st, limiter, m)
	default:
		return nil, closers, fmt.Errorf("unknown notification mode %q", cfg.ShipTrack.NotificationMode)
	}
	slog.Info("notifications configured", "mode", mode)

	ctrl := lifecycle.New(deps, lifecycle.Options{
		FacilityLocation:  cfg.ShipTrack.FacilityLocation,
		DefaultDeviceInfo: cfg.ShipTrack.DefaultDeviceInfo,
		StrictTransitions: cfg.ShipTrack.StrictTransitions,
		NotifyTimeout:     notifyTimeout,
		LedgerTimeout:     ledgerTimeout,
	})
	if deps.Sink != nil {
		// closers run in reverse: pending notifications finish before their sink is closed
		closers = append(closers, ctrl.Wait)
	}

	var svc *tracking.Service
	if lookupCache != nil {
		svc = tracking.New(st, lookupCache, cacheTTL, m, cfg.ShipTrack.FacilityLocation)
	} else {
		svc = tracking.New(st, nil, 0, m, cfg.ShipTrack.FacilityLocation)
	}

	return shipmentsapi.New(ctrl, svc, staff.New(st)), closers, nil
}

func newDispatcher(cfg *config.Config, logs notify.LogStore, limiter notify.RateLimiter, m *metrics.ShipTrackMetrics) *notify.Dispatcher {
	return notify.NewDispatcher(logs, limiter, m, notify.Options{
		RatePerRecipientPerMinute: int64(cfg.Notify.RateLimitPerRecipientPerMinute),
	}).ConfigureSenders(notify.ChannelSettings{
		EmailFrom:           cfg.Notify.EmailFrom,
		ResendBaseURL:       cfg.Notify.ResendBaseURL,
		ResendAPIKey:        cfg.Notify.ResendAPIKey,
		WhatsAppBaseURL:     cfg.Notify.WhatsAppBaseURL,
		WhatsAppAccessToken: cfg.Notify.WhatsAppAccessToken,
		WhatsAppPhoneID:     cfg.Notify.WhatsAppPhoneID,
	})
}

func (a *shipTrackAPIApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *shipTrackAPIApp) Run() error {
	return runShipTrackAPI(a.ctx, a.opts, a.api)
}
