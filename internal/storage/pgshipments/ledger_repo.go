package pgshipments

import (
	"context"

	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func (s *Storage) AppendTrackingEvent(ctx context.Context, e *models.TrackingEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := s.db.Exec(ctx, `
INSERT INTO tracking_events (
  id, shipment_id, event_type, event_description, location, staff_member, timestamp, notes
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, e.ID, e.ShipmentID, e.EventType, e.EventDescription, e.Location, e.StaffMember, e.Timestamp.UTC(), e.Notes)
	return errors.Wrap(err, "insert tracking event")
}

// ListTrackingEvents returns the shipment's events oldest first.
func (s *Storage) ListTrackingEvents(ctx context.Context, shipmentID string) ([]*models.TrackingEvent, error) {
	rows, err := s.db.Query(ctx, `
SELECT
  id, shipment_id, event_type, event_description,
  location, staff_member, timestamp, notes
FROM tracking_events
WHERE shipment_id = $1
ORDER BY timestamp ASC, id ASC
`, shipmentID)
	if err != nil {
		return nil, errors.Wrap(err, "select events")
	}
	defer rows.Close()

	var out []*models.TrackingEvent
	for rows.Next() {
		var e models.TrackingEvent
		if err := rows.Scan(
			&e.ID, &e.ShipmentID, &e.EventType, &e.EventDescription,
			&e.Location, &e.StaffMember, &e.Timestamp, &e.Notes,
		); err != nil {
			return nil, errors.Wrap(err, "scan event")
		}
		out = append(out, &e)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) AppendScanLog(ctx context.Context, l *models.ScanLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	_, err := s.db.Exec(ctx, `
INSERT INTO scan_logs (
  id, shipment_id, barcode, scan_type, scanned_by, scan_timestamp, device_info, location
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, l.ID, l.ShipmentID, l.Barcode, l.ScanType, l.ScannedBy, l.ScanTimestamp.UTC(), l.DeviceInfo, l.Location)
	return errors.Wrap(err, "insert scan log")
}

func (s *Storage) ListScanLogs(ctx context.Context, shipmentID string) ([]*models.ScanLog, error) {
	rows, err := s.db.Query(ctx, `
SELECT
  id, shipment_id, barcode, scan_type,
  scanned_by, scan_timestamp, device_info, location
FROM scan_logs
WHERE shipment_id = $1
ORDER BY scan_timestamp ASC, id ASC
`, shipmentID)
	if err != nil {
		return nil, errors.Wrap(err, "select scan logs")
	}
	defer rows.Close()

	var out []*models.ScanLog
	for rows.Next() {
		var l models.ScanLog
		if err := rows.Scan(
			&l.ID, &l.ShipmentID, &l.Barcode, &l.ScanType,
			&l.ScannedBy, &l.ScanTimestamp, &l.DeviceInfo, &l.Location,
		); err != nil {
			return nil, errors.Wrap(err, "scan scan log")
		}
		out = append(out, &l)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) RecordNotification(ctx context.Context, n *models.NotificationLog) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	_, err := s.db.Exec(ctx, `
INSERT INTO notification_logs (
  id, shipment_id, channel, recipient, subject, message,
  notification_type, status, sent_at, error_message, created_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`, n.ID, n.ShipmentID, n.Channel, n.Recipient, n.Subject, n.Message,
		n.NotificationType, n.Status, n.SentAt, n.ErrorMessage, n.CreatedAt.UTC())
	return errors.Wrap(err, "insert notification log")
}

func (s *Storage) ListNotifications(ctx context.Context, shipmentID string) ([]*models.NotificationLog, error) {
	rows, err := s.db.Query(ctx, `
SELECT
  id, shipment_id, channel, recipient, subject, message,
  notification_type, status, sent_at, error_message, created_at
FROM notification_logs
WHERE shipment_id = $1
ORDER BY created_at ASC, id ASC
`, shipmentID)
	if err != nil {
		return nil, errors.Wrap(err, "select notification logs")
	}
	defer rows.Close()

	var out []*models.NotificationLog
	for rows.Next() {
		var n models.NotificationLog
		if err := rows.Scan(
			&n.ID, &n.ShipmentID, &n.Channel, &n.Recipient, &n.Subject, &n.Message,
			&n.NotificationType, &n.Status, &n.SentAt, &n.ErrorMessage, &n.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan notification log")
		}
		out = append(out, &n)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
