// Package statuspolicy maps shipment statuses and destinations to the customer-facing
// metadata shown on the tracking page. Every function is pure and total.
package statuspolicy

import (
	"time"

	"github.com/BearBump/ShipTrack/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const DefaultTransitDays = 10

type StatusInfo struct {
	Display     string `json:"display"`
	Description string `json:"description"`
	Progress    int    `json:"progress"`
	Color       string `json:"color"`
}

var statusInfo = map[string]StatusInfo{
	models.ShipmentStatusPending: {
		Display:     "Pending",
		Description: "Your shipment request is being reviewed.",
		Progress:    10,
		Color:       "gray",
	},
	models.ShipmentStatusReceived: {
		Display:     "Package Received",
		Description: "Your package has been received at our facility and is being processed.",
		Progress:    25,
		Color:       "blue",
	},
	models.ShipmentStatusProcessing: {
		Display:     "Processing",
		Description: "Your package is being processed and prepared for shipment.",
		Progress:    50,
		Color:       "yellow",
	},
	models.ShipmentStatusShipped: {
		Display:     "Shipped",
		Description: "Your package has been shipped and is on its way to the destination.",
		Progress:    75,
		Color:       "indigo",
	},
	models.ShipmentStatusDelivered: {
		Display:     "Delivered",
		Description: "Your package has been successfully delivered.",
		Progress:    100,
		Color:       "green",
	},
}

var transitDays = map[string]int{
	"Jamaica":             7,
	"Guyana":              10,
	"Trinidad and Tobago": 8,
	"Barbados":            9,
	"Suriname":            12,
	"French Guiana":       14,
	"Belize":              11,
	"Costa Rica":          10,
	"Panama":              9,
	"Nicaragua":           12,
	"Honduras":            13,
	"Guatemala":           11,
}

var order = []string{
	models.ShipmentStatusPending,
	models.ShipmentStatusReceived,
	models.ShipmentStatusProcessing,
	models.ShipmentStatusShipped,
	models.ShipmentStatusDelivered,
}

// Info never fails: unknown statuses get a generic entry with progress 0.
func Info(status string) StatusInfo {
	if si, ok := statusInfo[status]; ok {
		return si
	}
	// cases.Caser keeps state, so one per call.
	title := cases.Title(language.English, cases.NoLower)
	return StatusInfo{
		Display:     title.String(status),
		Description: "Package status: " + status,
		Progress:    0,
		Color:       "gray",
	}
}

func IsKnown(status string) bool {
	_, ok := statusInfo[status]
	return ok
}

// Rank returns the position of status in the lifecycle order, or -1 for unknown values.
func Rank(status string) int {
	for i, s := range order {
		if s == status {
			return i
		}
	}
	return -1
}

// Statuses returns the recognized statuses in lifecycle order.
func Statuses() []string {
	out := make([]string, len(order))
	copy(out, order)
	return out
}

func TransitDays(country string) int {
	if d, ok := transitDays[country]; ok {
		return d
	}
	return DefaultTransitDays
}

func EstimateDelivery(base time.Time, country string) time.Time {
	return base.Add(time.Duration(TransitDays(country)) * 24 * time.Hour)
}
