package models

import "time"

const (
	NotificationChannelEmail    = "email"
	NotificationChannelWhatsApp = "whatsapp"
)

// Delivery outcomes. Demo means no real channel is configured and is not a failure.
// Queued is reported by the asynchronous hand-off before the worker delivers.
const (
	NotificationStatusSent   = "sent"
	NotificationStatusFailed = "failed"
	NotificationStatusDemo   = "demo"
	NotificationStatusQueued = "queued"
)

type Notification struct {
	ShipmentID       string `json:"shipment_id,omitempty"`
	TrackingNumber   string `json:"tracking_number,omitempty"`
	Channel          string `json:"channel"`
	Recipient        string `json:"recipient"`
	Subject          string `json:"subject,omitempty"`
	Message          string `json:"message"`
	NotificationType string `json:"notification_type,omitempty"`
}

type NotificationResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type NotificationLog struct {
	ID               string
	ShipmentID       string
	Channel          string
	Recipient        string
	Subject          string
	Message          string
	NotificationType string
	Status           string
	SentAt           *time.Time
	ErrorMessage     string
	CreatedAt        time.Time
}
