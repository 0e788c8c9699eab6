package cache

import (
	"context"
	"time"
)

// BytesCache is a best-effort byte cache. A miss is (nil, false, nil).
type BytesCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// LookupKey is the cache key of a tracking view. Writers delete it after a status change.
func LookupKey(trackingNumber string) string {
	return "tracking:" + trackingNumber + ":view"
}
