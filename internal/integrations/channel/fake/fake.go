package fake

import (
	"context"
	"sync"

	"github.com/BearBump/ShipTrack/internal/integrations/channel"
)

// Sender records every message and returns queued errors in order, then nil.
type Sender struct {
	mu   sync.Mutex
	sent []channel.Message
	errs []error
}

func New(errs ...error) *Sender {
	return &Sender{errs: errs}
}

func (f *Sender) Send(ctx context.Context, msg channel.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, msg)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return err
	}
	return nil
}

func (f *Sender) Sent() []channel.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]channel.Message, len(f.sent))
	copy(out, f.sent)
	return out
}
