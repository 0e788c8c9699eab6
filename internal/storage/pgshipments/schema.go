package pgshipments

import (
	"context"

	"github.com/pkg/errors"
)

func (s *Storage) initSchema(ctx context.Context) error {
	stmts := []string{
		`
CREATE TABLE IF NOT EXISTS shipments (
  id TEXT PRIMARY KEY,
  tracking_number TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL,
  customer_name TEXT NOT NULL DEFAULT '',
  customer_email TEXT NOT NULL DEFAULT '',
  customer_phone TEXT NOT NULL DEFAULT '',
  destination_address TEXT NOT NULL DEFAULT '',
  destination_country TEXT NOT NULL DEFAULT '',
  package_type TEXT NOT NULL DEFAULT '',
  service_type TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL,
  received_at TIMESTAMPTZ NULL,
  shipped_at TIMESTAMPTZ NULL,
  delivered_at TIMESTAMPTZ NULL,
  estimated_delivery TIMESTAMPTZ NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_shipments_created_at ON shipments(created_at DESC, id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_shipments_status ON shipments(status)`,
		`
CREATE TABLE IF NOT EXISTS tracking_events (
  id TEXT PRIMARY KEY,
  shipment_id TEXT NOT NULL REFERENCES shipments(id) ON DELETE RESTRICT,
  event_type TEXT NOT NULL,
  event_description TEXT NOT NULL,
  location TEXT NOT NULL DEFAULT '',
  staff_member TEXT NOT NULL DEFAULT '',
  timestamp TIMESTAMPTZ NOT NULL,
  notes TEXT NOT NULL DEFAULT ''
)`,
		`CREATE INDEX IF NOT EXISTS idx_tracking_events_shipment_id_timestamp ON tracking_events(shipment_id, timestamp)`,
		`
CREATE TABLE IF NOT EXISTS scan_logs (
  id TEXT PRIMARY KEY,
  shipment_id TEXT NOT NULL REFERENCES shipments(id) ON DELETE RESTRICT,
  barcode TEXT NOT NULL,
  scan_type TEXT NOT NULL,
  scanned_by TEXT NOT NULL,
  scan_timestamp TIMESTAMPTZ NOT NULL,
  device_info TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT ''
)`,
		`CREATE INDEX IF NOT EXISTS idx_scan_logs_shipment_id_scan_timestamp ON scan_logs(shipment_id, scan_timestamp)`,
		`
CREATE TABLE IF NOT EXISTS notification_logs (
  id TEXT PRIMARY KEY,
  shipment_id TEXT NOT NULL DEFAULT '',
  channel TEXT NOT NULL,
  recipient TEXT NOT NULL,
  subject TEXT NOT NULL DEFAULT '',
  message TEXT NOT NULL,
  notification_type TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL,
  sent_at TIMESTAMPTZ NULL,
  error_message TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_notification_logs_shipment_id_created_at ON notification_logs(shipment_id, created_at)`,
	}
	// ledger rows block shipment deletes; keys created with ON DELETE CASCADE are replaced
	for _, table := range []string{"tracking_events", "scan_logs"} {
		fk := table + "_shipment_id_fkey"
		stmts = append(stmts, `
DO $$
BEGIN
  IF EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '`+fk+`' AND confdeltype = 'c') THEN
    ALTER TABLE `+table+`
      DROP CONSTRAINT `+fk+`,
      ADD CONSTRAINT `+fk+` FOREIGN KEY (shipment_id) REFERENCES shipments(id) ON DELETE RESTRICT;
  END IF;
END $$`)
	}

	for _, q := range stmts {
		if _, err := s.db.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "init schema")
		}
	}
	return nil
}
