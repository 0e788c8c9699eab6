// Package staff serves the operator dashboard: a filtered, paged shipment listing
// with per-status counts.
package staff

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/BearBump/ShipTrack/internal/statuspolicy"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200

	// StatusAll is accepted as a filter value and means no status filter.
	StatusAll = "all"
)

type Repository interface {
	ListShipments(ctx context.Context, f models.ShipmentFilter) ([]*models.Shipment, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type ListQuery struct {
	Status string
	Search string
	Limit  int
	Offset int
}

type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

type ShipmentPage struct {
	Shipments []*models.Shipment `json:"shipments"`
	// Stats has "total" plus one entry per status, known statuses always present.
	Stats      map[string]int `json:"stats"`
	Pagination Pagination     `json:"pagination"`
}

type Service struct {
	repo Repository
}

func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListShipments returns a page of shipments, newest first. The counts cover every
// shipment regardless of the filter; a failure to count leaves them at zero.
func (s *Service) ListShipments(ctx context.Context, q ListQuery) (*ShipmentPage, error) {
	f, err := normalize(q)
	if err != nil {
		return nil, err
	}

	shipments, err := s.repo.ListShipments(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%w: list shipments: %w", models.ErrPersistence, err)
	}
	if shipments == nil {
		shipments = []*models.Shipment{}
	}

	stats := make(map[string]int)
	for _, st := range statuspolicy.Statuses() {
		stats[st] = 0
	}
	total := 0
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		slog.Warn("count shipments by status failed", "error", err.Error())
	}
	for st, n := range counts {
		stats[st] += n
		total += n
	}
	stats["total"] = total

	return &ShipmentPage{
		Shipments: shipments,
		Stats:     stats,
		Pagination: Pagination{
			Limit:  f.Limit,
			Offset: f.Offset,
			Count:  len(shipments),
		},
	}, nil
}

func normalize(q ListQuery) (models.ShipmentFilter, error) {
	f := models.ShipmentFilter{
		Status: strings.TrimSpace(q.Status),
		Search: strings.TrimSpace(q.Search),
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	if f.Status == StatusAll {
		f.Status = ""
	}
	switch {
	case f.Limit < 0:
		return f, models.NewValidationError("limit must not be negative")
	case f.Offset < 0:
		return f, models.NewValidationError("offset must not be negative")
	case f.Limit == 0:
		f.Limit = DefaultLimit
	case f.Limit > MaxLimit:
		f.Limit = MaxLimit
	}
	return f, nil
}
