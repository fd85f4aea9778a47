package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"time"

	"go.uber.org/zap"

	"newsdesk-service/internal/backend"
)

// Decision is the outcome of a single Check.
type Decision struct {
	Limited   bool
	Limit     int64
	Remaining int64
	// ResetTime is the start of the window the request was counted in.
	ResetTime time.Time
	Window    time.Duration
	// RetryAfter is whole seconds until the window rolls over; only set when Limited.
	RetryAfter int64
}

// Observer receives limiter events. The metrics package implements it.
type Observer interface {
	ObserveDecision(prefix string, limited bool)
	ObserveStoreError(prefix, op string)
}

type windowState struct {
	Count       int64 `json:"count"`
	WindowStart int64 `json:"window_start"`
}

// Limiter is a fixed-window request counter over a shared cache. Updates are
// read-modify-write without compare-and-swap, so concurrent requests for one
// identifier can undercount.
type Limiter struct {
	maxRequests int64
	window      time.Duration
	keyPrefix   string

	store    backend.Backend
	logger   *zap.Logger
	observer Observer
	now      func() time.Time
}

type Option func(*Limiter)

func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(l *Limiter) { l.logger = logger }
}

func WithObserver(observer Observer) Option {
	return func(l *Limiter) { l.observer = observer }
}

func New(store backend.Backend, maxRequests int64, window time.Duration, keyPrefix string, opts ...Option) *Limiter {
	if maxRequests <= 0 {
		maxRequests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	if keyPrefix == "" {
		keyPrefix = "rate_limit"
	}
	l := &Limiter{
		maxRequests: maxRequests,
		window:      window,
		keyPrefix:   keyPrefix,
		store:       store,
		logger:      zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Limiter) MaxRequests() int64 { return l.maxRequests }

func (l *Limiter) Window() time.Duration { return l.window }

func (l *Limiter) KeyPrefix() string { return l.keyPrefix }

// Key returns the cache key for identifier. Hashing bounds the key length.
func (l *Limiter) Key(identifier string) string {
	sum := sha256.Sum256([]byte(identifier))
	return l.keyPrefix + ":" + hex.EncodeToString(sum[:])
}

// Check counts one request for identifier and reports whether it is over the limit.
func (l *Limiter) Check(ctx context.Context, identifier string) Decision {
	key := l.Key(identifier)
	now := l.now()
	state := l.load(ctx, key, now)

	elapsed := now.Sub(time.Unix(0, state.WindowStart))
	if elapsed >= l.window {
		l.save(ctx, key, windowState{Count: 1, WindowStart: now.UnixNano()})
		l.observe(false)
		return Decision{
			Limit:     l.maxRequests,
			Remaining: l.maxRequests - 1,
			ResetTime: now.UTC(),
			Window:    l.window,
		}
	}

	state.Count++
	l.save(ctx, key, state)
	windowStart := time.Unix(0, state.WindowStart).UTC()

	if state.Count > l.maxRequests {
		retryAfter := l.retryAfter(elapsed)
		l.logger.Warn("rate limit exceeded",
			zap.String("prefix", l.keyPrefix),
			zap.String("identifier", identifier),
			zap.Int64("count", state.Count),
			zap.Int64("max", l.maxRequests),
			zap.Int64("retry_after", retryAfter),
		)
		l.observe(true)
		return Decision{
			Limited:    true,
			Limit:      l.maxRequests,
			Remaining:  0,
			ResetTime:  windowStart,
			Window:     l.window,
			RetryAfter: retryAfter,
		}
	}

	l.observe(false)
	return Decision{
		Limit:     l.maxRequests,
		Remaining: l.maxRequests - state.Count,
		ResetTime: windowStart,
		Window:    l.window,
	}
}

// retryAfter is ceil(window - elapsed) in seconds, kept within [1, window].
func (l *Limiter) retryAfter(elapsed time.Duration) int64 {
	windowSecs := int64(math.Ceil(l.window.Seconds()))
	if windowSecs < 1 {
		windowSecs = 1
	}
	secs := int64(math.Ceil((l.window - elapsed).Seconds()))
	if secs < 1 {
		secs = 1
	}
	if secs > windowSecs {
		secs = windowSecs
	}
	return secs
}

// load treats a missing, unreadable or corrupt entry as the first request.
func (l *Limiter) load(ctx context.Context, key string, now time.Time) windowState {
	fresh := windowState{Count: 0, WindowStart: now.UnixNano()}

	raw, found, err := l.store.Get(ctx, key)
	if err != nil {
		l.logger.Warn("rate limit cache read failed", zap.String("key", key), zap.Error(err))
		l.storeError("get")
		return fresh
	}
	if !found {
		return fresh
	}

	var state windowState
	if err := json.Unmarshal(raw, &state); err != nil {
		l.logger.Warn("rate limit cache entry corrupt", zap.String("key", key), zap.Error(err))
		return fresh
	}
	return state
}

func (l *Limiter) save(ctx context.Context, key string, state windowState) {
	raw, err := json.Marshal(state)
	if err != nil {
		return
	}
	if err := l.store.Set(ctx, key, raw, l.window); err != nil {
		l.logger.Warn("rate limit cache write failed", zap.String("key", key), zap.Error(err))
		l.storeError("set")
	}
}

func (l *Limiter) observe(limited bool) {
	if l.observer != nil {
		l.observer.ObserveDecision(l.keyPrefix, limited)
	}
}

func (l *Limiter) storeError(op string) {
	if l.observer != nil {
		l.observer.ObserveStoreError(l.keyPrefix, op)
	}
}
