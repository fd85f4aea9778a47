package backend

import (
	"context"
	"time"
)

// Backend is the shared key-value cache that limiter state lives in. A missing
// or expired key is reported as found=false with a nil error.
type Backend interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}
