package pgshipments

import (
	"context"
	"strings"
	"time"

	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

const shipmentColumns = `
  id, tracking_number, status,
  customer_name, customer_email, customer_phone,
  destination_address, destination_country, package_type, service_type,
  created_at, updated_at, received_at, shipped_at, delivered_at, estimated_delivery`

func scanShipment(row rowScanner) (*models.Shipment, error) {
	var sh models.Shipment
	if err := row.Scan(
		&sh.ID, &sh.TrackingNumber, &sh.Status,
		&sh.CustomerName, &sh.CustomerEmail, &sh.CustomerPhone,
		&sh.DestinationAddress, &sh.DestinationCountry, &sh.PackageType, &sh.ServiceType,
		&sh.CreatedAt, &sh.UpdatedAt, &sh.ReceivedAt, &sh.ShippedAt, &sh.DeliveredAt, &sh.EstimatedDelivery,
	); err != nil {
		return nil, err
	}
	return &sh, nil
}

func (s *Storage) CreateShipment(ctx context.Context, sh *models.Shipment) error {
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

	_, err := s.db.Exec(ctx, `
INSERT INTO shipments (`+shipmentColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
`,
		sh.ID, sh.TrackingNumber, sh.Status,
		sh.CustomerName, sh.CustomerEmail, sh.CustomerPhone,
		sh.DestinationAddress, sh.DestinationCountry, sh.PackageType, sh.ServiceType,
		sh.CreatedAt.UTC(), sh.UpdatedAt.UTC(), sh.ReceivedAt, sh.ShippedAt, sh.DeliveredAt, sh.EstimatedDelivery,
	)
	return errors.Wrap(err, "insert shipment")
}

func (s *Storage) GetShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	row := s.db.QueryRow(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE tracking_number = $1`, trackingNumber)
	sh, err := scanShipment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.WithStack(models.ErrShipmentNotFound)
	}
	if err != nil {
		return nil, errors.Wrap(err, "select shipment")
	}
	return sh, nil
}

// UpdateShipmentStatus writes the new status and fills milestone timestamps that are
// still NULL. A milestone already set is never overwritten.
func (s *Storage) UpdateShipmentStatus(ctx context.Context, upd models.ShipmentStatusUpdate) (*models.Shipment, error) {
	row := s.db.QueryRow(ctx, `
UPDATE shipments
SET
  status = $2,
  updated_at = $3,
  received_at = COALESCE(received_at, $4),
  shipped_at = COALESCE(shipped_at, $5),
  delivered_at = COALESCE(delivered_at, $6)
WHERE id = $1
RETURNING `+shipmentColumns,
		upd.ShipmentID, upd.Status, upd.UpdatedAt.UTC(), upd.ReceivedAt, upd.ShippedAt, upd.DeliveredAt,
	)
	sh, err := scanShipment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.WithStack(models.ErrShipmentNotFound)
	}
	if err != nil {
		return nil, errors.Wrap(err, "update shipment status")
	}
	return sh, nil
}

// ListShipments returns one page of shipments, newest first.
func (s *Storage) ListShipments(ctx context.Context, f models.ShipmentFilter) ([]*models.Shipment, error) {
	pattern := ""
	if f.Search != "" {
		pattern = "%" + likeEscaper.Replace(f.Search) + "%"
	}
	rows, err := s.db.Query(ctx, `
SELECT `+shipmentColumns+`
FROM shipments
WHERE ($1 = '' OR status = $1)
  AND ($2 = '' OR tracking_number ILIKE $2 OR customer_name ILIKE $2 OR customer_email ILIKE $2)
ORDER BY created_at DESC, id DESC
LIMIT $3 OFFSET $4
`, f.Status, pattern, f.Limit, f.Offset)
	if err != nil {
		return nil, errors.Wrap(err, "select shipments")
	}
	defer rows.Close()

	out := make([]*models.Shipment, 0, f.Limit)
	for rows.Next() {
		sh, err := scanShipment(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan shipment")
		}
		out = append(out, sh)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

// CountByStatus counts every shipment by its current status.
func (s *Storage) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.Query(ctx, `SELECT status, COUNT(*) FROM shipments GROUP BY status`)
	if err != nil {
		return nil, errors.Wrap(err, "count shipments")
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, errors.Wrap(err, "scan count")
		}
		out[status] = int(n)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

// likeEscaper makes a search term match literally inside ILIKE.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
