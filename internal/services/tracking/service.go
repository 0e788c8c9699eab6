package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BearBump/ShipTrack/internal/cache"
	"github.com/BearBump/ShipTrack/internal/metrics"
	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/BearBump/ShipTrack/internal/statuspolicy"
	"github.com/pkg/errors"
)

const (
	defaultFacilityLocation = "Chrisdan Enterprises - Jamaica, NY"

	// NotFoundMessage is shown to customers who mistype a tracking number.
	NotFoundMessage = "Tracking number not found. Please check your tracking number and try again."
)

type Repository interface {
	GetShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error)
	ListTrackingEvents(ctx context.Context, shipmentID string) ([]*models.TrackingEvent, error)
	ListScanLogs(ctx context.Context, shipmentID string) ([]*models.ScanLog, error)
}

type TrackingView struct {
	Shipment       *models.Shipment        `json:"shipment"`
	TrackingEvents []*models.TrackingEvent `json:"tracking_events"`
	StatusInfo     statuspolicy.StatusInfo `json:"status_info"`
	LastUpdated    time.Time               `json:"last_updated"`
}

type Service struct {
	repo     Repository
	cache    cache.BytesCache
	cacheTTL time.Duration
	metrics  *metrics.ShipTrackMetrics
	facility string
}

// New builds the read path. c may be nil; cacheTTL <= 0 disables caching too.
func New(repo Repository, c cache.BytesCache, cacheTTL time.Duration, m *metrics.ShipTrackMetrics, facilityLocation string) *Service {
	if facilityLocation == "" {
		facilityLocation = defaultFacilityLocation
	}
	return &Service{repo: repo, cache: c, cacheTTL: cacheTTL, metrics: m, facility: facilityLocation}
}

func (s *Service) cacheEnabled() bool {
	return s.cache != nil && s.cacheTTL > 0
}

// Lookup returns the shipment snapshot with its full history, oldest event first.
func (s *Service) Lookup(ctx context.Context, trackingNumber string) (*TrackingView, error) {
	if strings.TrimSpace(trackingNumber) == "" {
		return nil, models.NewValidationError("tracking_number is required")
	}

	if s.cacheEnabled() {
		b, ok, err := s.cache.Get(ctx, cache.LookupKey(trackingNumber))
		if err == nil && ok {
			var v TrackingView
			if json.Unmarshal(b, &v) == nil {
				s.metrics.IncLookupCache(true)
				s.metrics.IncLookup("ok")
				return &v, nil
			}
		}
		s.metrics.IncLookupCache(false)
	}

	sh, err := s.getShipment(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}

	complete := true
	events, err := s.repo.ListTrackingEvents(ctx, sh.ID)
	if err != nil {
		complete = false
		slog.Warn("list tracking events failed",
			"tracking_number", trackingNumber,
			"shipment_id", sh.ID,
			"error", err.Error(),
		)
		events = nil
	}

	if len(events) == 0 {
		events = []*models.TrackingEvent{s.initialEvent(sh)}
	}

	if sh.EstimatedDelivery == nil {
		base := sh.CreatedAt
		if base.IsZero() && sh.ReceivedAt != nil {
			base = *sh.ReceivedAt
		}
		eta := statuspolicy.EstimateDelivery(base, sh.DestinationCountry)
		sh.EstimatedDelivery = &eta
	}

	lastUpdated := sh.CreatedAt
	for i, e := range events {
		if i == 0 || e.Timestamp.After(lastUpdated) {
			lastUpdated = e.Timestamp
		}
	}

	v := &TrackingView{
		Shipment:       sh,
		TrackingEvents: events,
		StatusInfo:     statuspolicy.Info(sh.Status),
		LastUpdated:    lastUpdated,
	}

	// a degraded view is not cached
	if s.cacheEnabled() && complete {
		if b, err := json.Marshal(v); err == nil {
			_ = s.cache.Set(ctx, cache.LookupKey(trackingNumber), b, s.cacheTTL)
		}
	}

	s.metrics.IncLookup("ok")
	return v, nil
}

// ScanHistory returns the operator scan audit, oldest first. Nothing is synthesized.
func (s *Service) ScanHistory(ctx context.Context, trackingNumber string) ([]*models.ScanLog, error) {
	if strings.TrimSpace(trackingNumber) == "" {
		return nil, models.NewValidationError("tracking_number is required")
	}

	sh, err := s.getShipment(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}

	scans, err := s.repo.ListScanLogs(ctx, sh.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: list scan logs: %w", models.ErrPersistence, err)
	}
	if scans == nil {
		scans = []*models.ScanLog{}
	}
	return scans, nil
}

func (s *Service) getShipment(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	sh, err := s.repo.GetShipmentByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		if errors.Is(err, models.ErrShipmentNotFound) {
			s.metrics.IncLookup("not_found")
			return nil, err
		}
		s.metrics.IncLookup("failed")
		return nil, fmt.Errorf("%w: get shipment: %w", models.ErrPersistence, err)
	}
	return sh, nil
}

// initialEvent stands in for history that was never written. It is not persisted.
func (s *Service) initialEvent(sh *models.Shipment) *models.TrackingEvent {
	return &models.TrackingEvent{
		ID:               sh.ID + "-initial",
		ShipmentID:       sh.ID,
		EventType:        models.ShipmentStatusReceived,
		EventDescription: "Package received at facility",
		Location:         s.facility,
		Timestamp:        sh.CreatedAt,
		Notes:            "",
	}
}
