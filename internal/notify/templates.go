package notify

import (
	"bytes"
	"strings"
	"text/template"
	"time"

	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/BearBump/ShipTrack/internal/statuspolicy"
)

const (
	TypeShipmentReceived  = "shipment_received"
	TypeShipmentShipped   = "shipment_shipped"
	TypeShipmentDelivered = "shipment_delivered"
	TypeStatusUpdate      = "status_update"

	dateLayout = "January 2, 2006"
)

type Company struct {
	Name    string
	Address string
	Phone   string
}

var DefaultCompany = Company{
	Name:    "Chrisdan Enterprises LLC",
	Address: "142-49 Rockaway Blvd, Jamaica, NY 11436",
	Phone:   "(718) 656-5400",
}

type templateData struct {
	Company           Company
	CustomerName      string
	TrackingNumber    string
	Date              string
	EstimatedDelivery string
	Destination       string
	TrackingURL       string
	StatusDisplay     string
	StatusDescription string
}

type messageTemplate struct {
	subject  *template.Template
	email    *template.Template
	whatsapp *template.Template
}

var templates = map[string]messageTemplate{
	TypeShipmentReceived: {
		subject: template.Must(template.New("subject_received").Parse("Package Received - {{.TrackingNumber}}")),
		email: template.Must(template.New("email_received").Parse(`Package Received Confirmation

Dear {{.CustomerName}},

Your package has been received!
Tracking Number: {{.TrackingNumber}}
Received Date: {{.Date}}
Destination: {{.Destination}}

Track your shipment at: {{.TrackingURL}}

{{.Company.Name}}
{{.Company.Address}}
{{.Company.Phone}}`)),
		whatsapp: template.Must(template.New("wa_received").Parse(
			`{{.Company.Name}}: your package {{.TrackingNumber}} was received at our facility on {{.Date}}. Track it at {{.TrackingURL}}`)),
	},
	TypeShipmentShipped: {
		subject: template.Must(template.New("subject_shipped").Parse("Package Shipped - {{.TrackingNumber}}")),
		email: template.Must(template.New("email_shipped").Parse(`Package Shipped

Dear {{.CustomerName}},

Your package is on its way!
Tracking Number: {{.TrackingNumber}}
Ship Date: {{.Date}}
Estimated Delivery: {{.EstimatedDelivery}}
Destination: {{.Destination}}

Track your shipment at: {{.TrackingURL}}

{{.Company.Name}}
{{.Company.Address}}
{{.Company.Phone}}`)),
		whatsapp: template.Must(template.New("wa_shipped").Parse(
			`{{.Company.Name}}: your package {{.TrackingNumber}} has shipped. Estimated delivery {{.EstimatedDelivery}}. Track it at {{.TrackingURL}}`)),
	},
	TypeShipmentDelivered: {
		subject: template.Must(template.New("subject_delivered").Parse("Package Delivered - {{.TrackingNumber}}")),
		email: template.Must(template.New("email_delivered").Parse(`Package Delivered

Dear {{.CustomerName}},

Your package has been delivered!
Tracking Number: {{.TrackingNumber}}
Delivery Date: {{.Date}}
Location: {{.Destination}}

Thank you for choosing {{.Company.Name}} for your shipping needs!

{{.Company.Name}}
{{.Company.Address}}
{{.Company.Phone}}`)),
		whatsapp: template.Must(template.New("wa_delivered").Parse(
			`{{.Company.Name}}: your package {{.TrackingNumber}} was delivered on {{.Date}}. Thank you for shipping with us!`)),
	},
	TypeStatusUpdate: {
		subject: template.Must(template.New("subject_update").Parse("Shipment Update - {{.TrackingNumber}}")),
		email: template.Must(template.New("email_update").Parse(`Shipment Status Update

Dear {{.CustomerName}},

{{.StatusDisplay}}: {{.StatusDescription}}
Tracking Number: {{.TrackingNumber}}
Updated: {{.Date}}

Track your shipment at: {{.TrackingURL}}

{{.Company.Name}}
{{.Company.Address}}
{{.Company.Phone}}`)),
		whatsapp: template.Must(template.New("wa_update").Parse(
			`{{.Company.Name}}: {{.TrackingNumber}} - {{.StatusDisplay}}. Track it at {{.TrackingURL}}`)),
	},
}

// Composer renders the customer messages for a status change. A message is produced for
// each contact the shipment has: email and WhatsApp phone.
type Composer struct {
	company     Company
	trackingURL string
}

func NewComposer(company Company, trackingURL string) *Composer {
	if company.Name == "" {
		company = DefaultCompany
	}
	return &Composer{company: company, trackingURL: trackingURL}
}

func NotificationType(status string) string {
	switch status {
	case models.ShipmentStatusReceived:
		return TypeShipmentReceived
	case models.ShipmentStatusShipped:
		return TypeShipmentShipped
	case models.ShipmentStatusDelivered:
		return TypeShipmentDelivered
	default:
		return TypeStatusUpdate
	}
}

func (c *Composer) Compose(sh *models.Shipment, status string) []models.Notification {
	if sh == nil {
		return nil
	}
	typ := NotificationType(status)
	tpl := templates[typ]
	data := c.data(sh, status)

	var out []models.Notification
	if sh.CustomerEmail != "" {
		out = append(out, models.Notification{
			ShipmentID:       sh.ID,
			TrackingNumber:   sh.TrackingNumber,
			Channel:          models.NotificationChannelEmail,
			Recipient:        sh.CustomerEmail,
			Subject:          render(tpl.subject, data),
			Message:          render(tpl.email, data),
			NotificationType: typ,
		})
	}
	if sh.CustomerPhone != "" {
		out = append(out, models.Notification{
			ShipmentID:       sh.ID,
			TrackingNumber:   sh.TrackingNumber,
			Channel:          models.NotificationChannelWhatsApp,
			Recipient:        sh.CustomerPhone,
			Message:          render(tpl.whatsapp, data),
			NotificationType: typ,
		})
	}
	return out
}

func (c *Composer) data(sh *models.Shipment, status string) templateData {
	name := sh.CustomerName
	if name == "" {
		name = "Customer"
	}

	at := sh.UpdatedAt
	switch status {
	case models.ShipmentStatusReceived:
		at = timeOr(sh.ReceivedAt, at)
	case models.ShipmentStatusShipped:
		at = timeOr(sh.ShippedAt, at)
	case models.ShipmentStatusDelivered:
		at = timeOr(sh.DeliveredAt, at)
	}

	var eta time.Time
	if sh.EstimatedDelivery != nil {
		eta = *sh.EstimatedDelivery
	} else {
		eta = statuspolicy.EstimateDelivery(sh.CreatedAt, sh.DestinationCountry)
	}

	destination := strings.TrimSpace(sh.DestinationAddress)
	if destination == "" {
		destination = sh.DestinationCountry
	} else if sh.DestinationCountry != "" && !strings.Contains(destination, sh.DestinationCountry) {
		destination += ", " + sh.DestinationCountry
	}

	trackingURL := c.trackingURL
	if trackingURL != "" {
		trackingURL = strings.TrimRight(trackingURL, "/") + "?tracking=" + sh.TrackingNumber
	}

	si := statuspolicy.Info(status)
	return templateData{
		Company:           c.company,
		CustomerName:      name,
		TrackingNumber:    sh.TrackingNumber,
		Date:              at.Format(dateLayout),
		EstimatedDelivery: eta.Format(dateLayout),
		Destination:       destination,
		TrackingURL:       trackingURL,
		StatusDisplay:     si.Display,
		StatusDescription: si.Description,
	}
}

func timeOr(t *time.Time, def time.Time) time.Time {
	if t == nil {
		return def
	}
	return *t
}

func render(t *template.Template, data templateData) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return ""
	}
	return buf.String()
}
