package notify

import (
	"log/slog"

	"github.com/BearBump/ShipTrack/internal/integrations/channel/resend"
	"github.com/BearBump/ShipTrack/internal/integrations/channel/whatsapp"
	"github.com/BearBump/ShipTrack/internal/models"
)

type ChannelSettings struct {
	EmailFrom     string
	ResendBaseURL string
	ResendAPIKey  string

	WhatsAppBaseURL     string
	WhatsAppAccessToken string
	WhatsAppPhoneID     string
}

// ConfigureSenders enables every channel whose credentials are present.
// The rest stay in demo mode.
func (d *Dispatcher) ConfigureSenders(s ChannelSettings) *Dispatcher {
	if s.ResendAPIKey != "" && s.EmailFrom != "" {
		d.WithSender(models.NotificationChannelEmail, resend.New(s.ResendBaseURL, s.ResendAPIKey, s.EmailFrom))
	} else {
		slog.Info("email channel in demo mode")
	}
	if s.WhatsAppAccessToken != "" && s.WhatsAppPhoneID != "" {
		d.WithSender(models.NotificationChannelWhatsApp, whatsapp.New(s.WhatsAppBaseURL, s.WhatsAppAccessToken, s.WhatsAppPhoneID))
	} else {
		slog.Info("whatsapp channel in demo mode")
	}
	return d
}

// Channels lists the channels with a real sender.
func (d *Dispatcher) Channels() []string {
	var out []string
	for _, ch := range []string{models.NotificationChannelEmail, models.NotificationChannelWhatsApp} {
		if _, ok := d.senders[ch]; ok {
			out = append(out, ch)
		}
	}
	return out
}
