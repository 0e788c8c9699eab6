package notify

import (
	"math/rand"
	"time"
)

type Rand interface {
	Int63n(n int64) int64
}

type RetryConfig struct {
	MaxAttempts int // default: 3

	Backoff1 time.Duration // default: 200ms
	Backoff2 time.Duration // default: 1s
	Backoff3 time.Duration // default: 3s

	// Jitter adds up to this fraction of the delay. 0 disables it.
	Jitter float64
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		Backoff1:    200 * time.Millisecond,
		Backoff2:    1 * time.Second,
		Backoff3:    3 * time.Second,
		Jitter:      0.2,
	}
}

// Planner decides how many times a channel send is attempted and how long to wait between attempts.
type Planner struct {
	cfg RetryConfig
	r   Rand
}

func NewPlanner(cfg RetryConfig, r Rand) *Planner {
	def := DefaultRetryConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.Backoff1 <= 0 {
		cfg.Backoff1 = def.Backoff1
	}
	if cfg.Backoff2 <= 0 {
		cfg.Backoff2 = def.Backoff2
	}
	if cfg.Backoff3 <= 0 {
		cfg.Backoff3 = def.Backoff3
	}
	if cfg.Jitter < 0 {
		cfg.Jitter = 0
	}
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Planner{cfg: cfg, r: r}
}

func (p *Planner) MaxAttempts() int {
	return p.cfg.MaxAttempts
}

// BackoffDelay is the wait after the given failed attempt (1-based).
func (p *Planner) BackoffDelay(failedAttempt int) time.Duration {
	var d time.Duration
	switch {
	case failedAttempt <= 1:
		d = p.cfg.Backoff1
	case failedAttempt == 2:
		d = p.cfg.Backoff2
	default:
		d = p.cfg.Backoff3
	}
	if p.cfg.Jitter > 0 {
		if maxJitter := int64(float64(d) * p.cfg.Jitter); maxJitter > 0 {
			d += time.Duration(p.r.Int63n(maxJitter + 1))
		}
	}
	return d
}
