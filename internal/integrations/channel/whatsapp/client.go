package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/BearBump/ShipTrack/internal/integrations/channel"
	"github.com/pkg/errors"
)

const (
	DefaultBaseURL = "https://graph.facebook.com"
	apiVersion     = "v18.0"
)

// Client sends plain text messages through the WhatsApp Cloud API.
type Client struct {
	baseURL     string
	accessToken string
	phoneID     string
	httpc       *http.Client
}

func New(baseURL, accessToken, phoneID string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		phoneID:     phoneID,
		httpc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type textBody struct {
	Body string `json:"body"`
}

type sendReq struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

func (c *Client) Send(ctx context.Context, msg channel.Message) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return errors.Wrap(err, "parse base url")
	}
	u.Path = fmt.Sprintf("/%s/%s/messages", apiVersion, url.PathEscape(c.phoneID))

	body, err := json.Marshal(sendReq{
		MessagingProduct: "whatsapp",
		To:               msg.To,
		Type:             "text",
		Text:             textBody{Body: msg.Body},
	})
	if err != nil {
		return errors.Wrap(err, "marshal")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "new request")
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &channel.HTTPError{Provider: "whatsapp", StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return nil
}
