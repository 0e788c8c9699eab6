// Package memshipments is an in-process store with the same contract as pgshipments.
// It backs the "memory" storage driver and the service tests.
package memshipments

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrDuplicateTrackingNumber = errors.New("tracking number already exists")

type Storage struct {
	mu sync.RWMutex

	byID       map[string]*models.Shipment
	byTracking map[string]string

	events        map[string][]models.TrackingEvent
	scans         map[string][]models.ScanLog
	notifications map[string][]models.NotificationLog
}

func New() *Storage {
	return &Storage{
		byID:          make(map[string]*models.Shipment),
		byTracking:    make(map[string]string),
		events:        make(map[string][]models.TrackingEvent),
		scans:         make(map[string][]models.ScanLog),
		notifications: make(map[string][]models.NotificationLog),
	}
}

func (s *Storage) CreateShipment(ctx context.Context, sh *models.Shipment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sh.TrackingNumber == "" {
		return errors.Wrap(models.ErrInvalidInput, "tracking number required")
	}
	if _, exists := s.byTracking[sh.TrackingNumber]; exists {
		return errors.Wrap(ErrDuplicateTrackingNumber, sh.TrackingNumber)
	}
	if sh.ID == "" {
		sh.ID = uuid.NewString()
	}
	if sh.CreatedAt.IsZero() {
		sh.CreatedAt = time.Now().UTC()
	}
	if sh.UpdatedAt.IsZero() {
		sh.UpdatedAt = sh.CreatedAt
	}
	if sh.Status == "" {
		sh.Status = models.ShipmentStatusPending
	}

	cp := cloneShipment(sh)
	s.byID[cp.ID] = cp
	s.byTracking[cp.TrackingNumber] = cp.ID
	return nil
}

func (s *Storage) GetShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byTracking[trackingNumber]
	if !ok {
		return nil, errors.WithStack(models.ErrShipmentNotFound)
	}
	return cloneShipment(s.byID[id]), nil
}

func (s *Storage) UpdateShipmentStatus(ctx context.Context, upd models.ShipmentStatusUpdate) (*models.Shipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sh, ok := s.byID[upd.ShipmentID]
	if !ok {
		return nil, errors.WithStack(models.ErrShipmentNotFound)
	}

	sh.Status = upd.Status
	sh.UpdatedAt = upd.UpdatedAt
	if sh.ReceivedAt == nil && upd.ReceivedAt != nil {
		sh.ReceivedAt = timePtr(*upd.ReceivedAt)
	}
	if sh.ShippedAt == nil && upd.ShippedAt != nil {
		sh.ShippedAt = timePtr(*upd.ShippedAt)
	}
	if sh.DeliveredAt == nil && upd.DeliveredAt != nil {
		sh.DeliveredAt = timePtr(*upd.DeliveredAt)
	}
	return cloneShipment(sh), nil
}

func (s *Storage) AppendTrackingEvent(ctx context.Context, e *models.TrackingEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[e.ShipmentID]; !ok {
		return errors.WithStack(models.ErrShipmentNotFound)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	s.events[e.ShipmentID] = append(s.events[e.ShipmentID], *e)
	return nil
}

// ListTrackingEvents returns the shipment's events oldest first. Events with equal
// timestamps keep insertion order.
func (s *Storage) ListTrackingEvents(ctx context.Context, shipmentID string) ([]*models.TrackingEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.events[shipmentID]
	out := make([]*models.TrackingEvent, 0, len(src))
	for i := range src {
		e := src[i]
		out = append(out, &e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *Storage) AppendScanLog(ctx context.Context, l *models.ScanLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[l.ShipmentID]; !ok {
		return errors.WithStack(models.ErrShipmentNotFound)
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	s.scans[l.ShipmentID] = append(s.scans[l.ShipmentID], *l)
	return nil
}

func (s *Storage) ListScanLogs(ctx context.Context, shipmentID string) ([]*models.ScanLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.scans[shipmentID]
	out := make([]*models.ScanLog, 0, len(src))
	for i := range src {
		l := src[i]
		out = append(out, &l)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScanTimestamp.Before(out[j].ScanTimestamp) })
	return out, nil
}

func (s *Storage) RecordNotification(ctx context.Context, n *models.NotificationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	s.notifications[n.ShipmentID] = append(s.notifications[n.ShipmentID], *n)
	return nil
}

func (s *Storage) ListNotifications(ctx context.Context, shipmentID string) ([]*models.NotificationLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.notifications[shipmentID]
	out := make([]*models.NotificationLog, 0, len(src))
	for i := range src {
		n := src[i]
		out = append(out, &n)
	}
	return out, nil
}

// ListShipments returns one page of shipments, newest first.
func (s *Storage) ListShipments(ctx context.Context, f models.ShipmentFilter) ([]*models.Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(f.Search)
	matched := make([]*models.Shipment, 0, len(s.byID))
	for _, sh := range s.byID {
		if f.Status != "" && sh.Status != f.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(sh.TrackingNumber), search) &&
			!strings.Contains(strings.ToLower(sh.CustomerName), search) &&
			!strings.Contains(strings.ToLower(sh.CustomerEmail), search) {
			continue
		}
		matched = append(matched, sh)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	if f.Offset >= len(matched) {
		return []*models.Shipment{}, nil
	}
	matched = matched[f.Offset:]
	if f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	out := make([]*models.Shipment, 0, len(matched))
	for _, sh := range matched {
		out = append(out, cloneShipment(sh))
	}
	return out, nil
}

func (s *Storage) CountByStatus(ctx context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int)
	for _, sh := range s.byID {
		out[sh.Status]++
	}
	return out, nil
}

// Close exists so both storage drivers satisfy the same shutdown hook.
func (s *Storage) Close() {}

func cloneShipment(sh *models.Shipment) *models.Shipment {
	cp := *sh
	if sh.ReceivedAt != nil {
		cp.ReceivedAt = timePtr(*sh.ReceivedAt)
	}
	if sh.ShippedAt != nil {
		cp.ShippedAt = timePtr(*sh.ShippedAt)
	}
	if sh.DeliveredAt != nil {
		cp.DeliveredAt = timePtr(*sh.DeliveredAt)
	}
	if sh.EstimatedDelivery != nil {
		cp.EstimatedDelivery = timePtr(*sh.EstimatedDelivery)
	}
	return &cp
}

func timePtr(t time.Time) *time.Time {
	return &t
}
