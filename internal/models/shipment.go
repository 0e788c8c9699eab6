package models

import "time"

// Lifecycle statuses in their natural order. Any other string is still accepted
// as a status value in permissive mode.
const (
	ShipmentStatusPending    = "pending"
	ShipmentStatusReceived   = "received"
	ShipmentStatusProcessing = "processing"
	ShipmentStatusShipped    = "shipped"
	ShipmentStatusDelivered  = "delivered"
)

type Shipment struct {
	ID             string `json:"id"`
	TrackingNumber string `json:"tracking_number"`
	Status         string `json:"status"`

	CustomerName       string `json:"customer_name,omitempty"`
	CustomerEmail      string `json:"customer_email,omitempty"`
	CustomerPhone      string `json:"customer_phone,omitempty"`
	DestinationAddress string `json:"destination_address,omitempty"`
	DestinationCountry string `json:"destination_country"`
	PackageType        string `json:"package_type,omitempty"`
	ServiceType        string `json:"service_type,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ReceivedAt  *time.Time `json:"received_at,omitempty"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`

	EstimatedDelivery *time.Time `json:"estimated_delivery"`
}

// ShipmentStatusUpdate is the single mutation the lifecycle applies to a shipment.
// Nil milestone pointers leave the stored value untouched; non-nil ones are only
// written when the stored value is still NULL.
type ShipmentStatusUpdate struct {
	ShipmentID  string
	Status      string
	UpdatedAt   time.Time
	ReceivedAt  *time.Time
	ShippedAt   *time.Time
	DeliveredAt *time.Time
}

type TrackingEvent struct {
	ID               string    `json:"id"`
	ShipmentID       string    `json:"shipment_id"`
	EventType        string    `json:"event_type"`
	EventDescription string    `json:"event_description"`
	Location         string    `json:"location"`
	StaffMember      string    `json:"staff_member,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
	Notes            string    `json:"notes"`
}

type ScanLog struct {
	ID            string    `json:"id"`
	ShipmentID    string    `json:"shipment_id"`
	Barcode       string    `json:"barcode"`
	ScanType      string    `json:"scan_type"`
	ScannedBy     string    `json:"scanned_by"`
	ScanTimestamp time.Time `json:"scan_timestamp"`
	DeviceInfo    string    `json:"device_info"`
	Location      string    `json:"location"`
}

// ShipmentFilter selects a page of the staff shipment listing, newest first.
type ShipmentFilter struct {
	// Status matches exactly. Empty means any status.
	Status string
	// Search is a case-insensitive substring of the tracking number, customer name or email.
	Search string
	Limit  int
	Offset int
}
