package messages

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/BearBump/ShipTrack/internal/models"
)

// ErrMalformed marks a payload that can never be delivered, however often it is redelivered.
var ErrMalformed = errors.New("malformed message")

// NotificationRequested is published by the API when notifications run in queued mode
// and consumed by notify-worker. Keyed by shipment id.
type NotificationRequested struct {
	RequestID        string    `json:"request_id"`
	ShipmentID       string    `json:"shipment_id"`
	TrackingNumber   string    `json:"tracking_number"`
	Channel          string    `json:"channel"`
	Recipient        string    `json:"recipient"`
	Subject          string    `json:"subject,omitempty"`
	Message          string    `json:"message"`
	NotificationType string    `json:"notification_type,omitempty"`
	RequestedAt      time.Time `json:"requested_at"`
}

func NewNotificationRequested(id string, n models.Notification, at time.Time) NotificationRequested {
	return NotificationRequested{
		RequestID:        id,
		ShipmentID:       n.ShipmentID,
		TrackingNumber:   n.TrackingNumber,
		Channel:          n.Channel,
		Recipient:        n.Recipient,
		Subject:          n.Subject,
		Message:          n.Message,
		NotificationType: n.NotificationType,
		RequestedAt:      at,
	}
}

func (m NotificationRequested) Notification() models.Notification {
	return models.Notification{
		ShipmentID:       m.ShipmentID,
		TrackingNumber:   m.TrackingNumber,
		Channel:          m.Channel,
		Recipient:        m.Recipient,
		Subject:          m.Subject,
		Message:          m.Message,
		NotificationType: m.NotificationType,
	}
}

// DecodeNotificationRequested parses a queued payload. A payload that is not JSON or
// names no channel or recipient fails with ErrMalformed.
func DecodeNotificationRequested(value []byte) (NotificationRequested, error) {
	var m NotificationRequested
	if err := json.Unmarshal(value, &m); err != nil {
		return m, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	switch {
	case m.Channel == "":
		return m, fmt.Errorf("%w: channel is empty", ErrMalformed)
	case m.Recipient == "":
		return m, fmt.Errorf("%w: recipient is empty", ErrMalformed)
	}
	return m, nil
}
