// Package lifecycle applies staff-requested status transitions to shipments.
//
// A transition is one primary write (the shipment row) followed by two independent
// best-effort appends (tracking event, scan log) and a notification sent in the background.
// Only the primary write can fail the call.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/BearBump/ShipTrack/internal/cache"
	"github.com/BearBump/ShipTrack/internal/metrics"
	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/BearBump/ShipTrack/internal/statuspolicy"
	"github.com/pkg/errors"
)

const (
	DefaultFacilityLocation = "Chrisdan Enterprises - Jamaica, NY"
	DefaultDeviceInfo       = "manual"

	defaultNotifyTimeout = 10 * time.Second
	defaultLedgerTimeout = 5 * time.Second
)

type ShipmentRepository interface {
	GetShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error)
	UpdateShipmentStatus(ctx context.Context, upd models.ShipmentStatusUpdate) (*models.Shipment, error)
}

type EventLedger interface {
	AppendTrackingEvent(ctx context.Context, e *models.TrackingEvent) error
}

type ScanLogRepository interface {
	AppendScanLog(ctx context.Context, l *models.ScanLog) error
}

// NotificationSink delivers one message. Failures are reported in the result, not as errors.
type NotificationSink interface {
	Notify(ctx context.Context, n models.Notification) models.NotificationResult
}

// Composer turns a transition into the messages the customer should receive.
type Composer interface {
	Compose(sh *models.Shipment, status string) []models.Notification
}

// Locker serializes writers of one shipment. The returned func releases the key.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

type CacheInvalidator interface {
	Delete(ctx context.Context, key string) error
}

type Deps struct {
	Shipments ShipmentRepository
	Events    EventLedger
	Scans     ScanLogRepository

	// optional
	Notifier Composer
	Sink     NotificationSink
	Locker   Locker
	Cache    CacheInvalidator
	Metrics  *metrics.ShipTrackMetrics
}

type Options struct {
	FacilityLocation  string
	DefaultDeviceInfo string
	// StrictTransitions rejects unknown statuses and moves backwards in the lifecycle order.
	StrictTransitions bool
	NotifyTimeout     time.Duration
	// LedgerTimeout bounds the writes that follow a committed status change.
	LedgerTimeout time.Duration

	Now func() time.Time
}

type AdvanceRequest struct {
	TrackingNumber string
	NewStatus      string
	Notes          string
	StaffEmail     string
	Location       string
	DeviceInfo     string
}

type TransitionResult struct {
	ShipmentID     string    `json:"shipment_id"`
	TrackingNumber string    `json:"tracking_number"`
	NewStatus      string    `json:"new_status"`
	Timestamp      time.Time `json:"timestamp"`
	Warnings       []string  `json:"warnings,omitempty"`
}

type Controller struct {
	shipments ShipmentRepository
	events    EventLedger
	scans     ScanLogRepository

	composer Composer
	sink     NotificationSink
	locker   Locker
	cache    CacheInvalidator
	metrics  *metrics.ShipTrackMetrics

	opts Options

	handoffs sync.WaitGroup
}

func New(deps Deps, opts Options) *Controller {
	if opts.FacilityLocation == "" {
		opts.FacilityLocation = DefaultFacilityLocation
	}
	if opts.DefaultDeviceInfo == "" {
		opts.DefaultDeviceInfo = DefaultDeviceInfo
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = defaultNotifyTimeout
	}
	if opts.LedgerTimeout <= 0 {
		opts.LedgerTimeout = defaultLedgerTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	locker := deps.Locker
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &Controller{
		shipments: deps.Shipments,
		events:    deps.Events,
		scans:     deps.Scans,
		composer:  deps.Notifier,
		sink:      deps.Sink,
		locker:    locker,
		cache:     deps.Cache,
		metrics:   deps.Metrics,
		opts:      opts,
	}
}

func validate(req AdvanceRequest) error {
	switch {
	case strings.TrimSpace(req.TrackingNumber) == "":
		return models.NewValidationError("tracking_number is required")
	case strings.TrimSpace(req.NewStatus) == "":
		return models.NewValidationError("new_status is required")
	case strings.TrimSpace(req.StaffEmail) == "":
		return models.NewValidationError("staff_email is required")
	}
	return nil
}

func (c *Controller) checkTransition(current, next string) error {
	if !c.opts.StrictTransitions {
		return nil
	}
	if !statuspolicy.IsKnown(next) {
		return models.NewValidationError("unknown status %q", next)
	}
	if statuspolicy.IsKnown(current) && statuspolicy.Rank(next) < statuspolicy.Rank(current) {
		return models.NewValidationError("cannot move shipment from %s back to %s", current, next)
	}
	return nil
}

// Advance moves the shipment to req.NewStatus and records the change.
func (c *Controller) Advance(ctx context.Context, req AdvanceRequest) (*TransitionResult, error) {
	started := time.Now()
	defer func() { c.metrics.ObserveAdvance(time.Since(started)) }()

	if err := validate(req); err != nil {
		c.metrics.IncTransition("invalid")
		return nil, err
	}

	res, sh, err := c.advanceLocked(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidInput):
			c.metrics.IncTransition("invalid")
		case errors.Is(err, models.ErrShipmentNotFound):
			c.metrics.IncTransition("not_found")
		default:
			c.metrics.IncTransition("failed")
			slog.Error("advance failed",
				"tracking_number", req.TrackingNumber,
				"new_status", req.NewStatus,
				"error", err.Error(),
			)
		}
		return nil, err
	}
	c.metrics.IncTransition("ok")

	if c.composer != nil && c.sink != nil {
		c.handoffs.Add(1)
		go func() {
			defer c.handoffs.Done()
			c.notify(ctx, sh, req.NewStatus)
		}()
	}
	return res, nil
}

// Wait blocks until the notification hand-offs started by Advance have finished.
func (c *Controller) Wait() {
	c.handoffs.Wait()
}

func (c *Controller) advanceLocked(ctx context.Context, req AdvanceRequest) (*TransitionResult, *models.Shipment, error) {
	unlock, err := c.locker.Lock(ctx, "shipment:"+req.TrackingNumber)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: lock shipment: %w", models.ErrPersistence, err)
	}
	defer unlock()

	sh, err := c.shipments.GetShipmentByTrackingNumber(ctx, req.TrackingNumber)
	if err != nil {
		if errors.Is(err, models.ErrShipmentNotFound) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: get shipment: %w", models.ErrPersistence, err)
	}

	if err := c.checkTransition(sh.Status, req.NewStatus); err != nil {
		return nil, nil, err
	}

	// Ledger timestamps strictly increase per shipment. Postgres keeps microseconds.
	now := c.opts.Now().UTC().Truncate(time.Microsecond)
	if last := sh.UpdatedAt.UTC().Truncate(time.Microsecond); !now.After(last) {
		now = last.Add(time.Microsecond)
	}

	upd := models.ShipmentStatusUpdate{
		ShipmentID: sh.ID,
		Status:     req.NewStatus,
		UpdatedAt:  now,
	}
	switch req.NewStatus {
	case models.ShipmentStatusReceived:
		upd.ReceivedAt = &now
	case models.ShipmentStatusShipped:
		upd.ShippedAt = &now
	case models.ShipmentStatusDelivered:
		upd.DeliveredAt = &now
	}

	updated, err := c.shipments.UpdateShipmentStatus(ctx, upd)
	if err != nil {
		if errors.Is(err, models.ErrShipmentNotFound) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: update shipment: %w", models.ErrPersistence, err)
	}
	if updated == nil {
		updated = sh
	}

	res := &TransitionResult{
		ShipmentID:     sh.ID,
		TrackingNumber: sh.TrackingNumber,
		NewStatus:      req.NewStatus,
		Timestamp:      now,
	}

	// The status change is committed: the ledgers are written even if the caller goes away.
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.LedgerTimeout)
	defer cancel()

	location := req.Location
	if location == "" {
		location = c.opts.FacilityLocation
	}

	event := &models.TrackingEvent{
		ShipmentID:       sh.ID,
		EventType:        req.NewStatus,
		EventDescription: fmt.Sprintf("Package %s by %s", req.NewStatus, req.StaffEmail),
		Location:         location,
		StaffMember:      req.StaffEmail,
		Timestamp:        now,
		Notes:            req.Notes,
	}
	if err := c.events.AppendTrackingEvent(wctx, event); err != nil {
		res.Warnings = append(res.Warnings, c.ledgerFailed(sh, metrics.LedgerTrackingEvents, err))
	}

	deviceInfo := req.DeviceInfo
	if deviceInfo == "" {
		deviceInfo = c.opts.DefaultDeviceInfo
	}

	scan := &models.ScanLog{
		ShipmentID:    sh.ID,
		Barcode:       sh.TrackingNumber,
		ScanType:      req.NewStatus,
		ScannedBy:     req.StaffEmail,
		ScanTimestamp: now,
		DeviceInfo:    deviceInfo,
		Location:      location,
	}
	if err := c.scans.AppendScanLog(wctx, scan); err != nil {
		res.Warnings = append(res.Warnings, c.ledgerFailed(sh, metrics.LedgerScanLogs, err))
	}

	// after both appends: a lookup that ran in between may have cached the old history
	if c.cache != nil {
		if err := c.cache.Delete(wctx, cache.LookupKey(sh.TrackingNumber)); err != nil {
			slog.Warn("lookup cache invalidation failed",
				"tracking_number", sh.TrackingNumber,
				"error", err.Error(),
			)
		}
	}

	slog.Info("shipment status updated",
		"tracking_number", sh.TrackingNumber,
		"shipment_id", sh.ID,
		"from", sh.Status,
		"to", req.NewStatus,
		"staff", req.StaffEmail,
	)

	return res, updated, nil
}

func (c *Controller) ledgerFailed(sh *models.Shipment, ledger string, err error) string {
	err = fmt.Errorf("%w: %s: %w", models.ErrLedgerWrite, ledger, err)
	c.metrics.IncLedgerWriteFailure(ledger)
	slog.Warn("ledger write failed",
		"tracking_number", sh.TrackingNumber,
		"shipment_id", sh.ID,
		"ledger", ledger,
		"error", err.Error(),
	)
	return ledger + " not recorded"
}

// notify runs in the background after the lock is released. Its outcome is logged and
// never returned.
func (c *Controller) notify(ctx context.Context, sh *models.Shipment, status string) {
	if sh == nil {
		return
	}

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.NotifyTimeout)
	defer cancel()

	for _, n := range c.composer.Compose(sh, status) {
		res := c.sink.Notify(nctx, n)
		if res.Status == models.NotificationStatusFailed {
			slog.Warn("notification failed",
				"tracking_number", sh.TrackingNumber,
				"shipment_id", sh.ID,
				"channel", n.Channel,
				"error", fmt.Errorf("%w: %s", models.ErrNotification, res.Error).Error(),
			)
			continue
		}
		slog.Info("notification handed off",
			"tracking_number", sh.TrackingNumber,
			"channel", n.Channel,
			"status", res.Status,
		)
	}
}
