package channel

import (
	"context"
	"errors"
	"fmt"
)

// Message is one outbound customer message. Subject is ignored by channels without one.
type Message struct {
	To      string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// HTTPError is a non-2xx provider response.
type HTTPError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s http %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s http %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Temporary reports whether a retry may succeed: throttling and server errors.
func (e *HTTPError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode/100 == 5
}

// IsTemporary is true for provider errors worth retrying. Transport errors count as temporary.
func IsTemporary(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Temporary()
	}
	return true
}
