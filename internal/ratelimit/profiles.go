package ratelimit

import (
	"time"

	"newsdesk-service/internal/backend"
)

type Profile struct {
	MaxRequests int64
	Window      time.Duration
	KeyPrefix   string
}

var (
	SearchProfile = Profile{MaxRequests: 30, Window: time.Minute, KeyPrefix: "search_limit"}
	APIProfile    = Profile{MaxRequests: 100, Window: time.Minute, KeyPrefix: "api_limit"}
	StrictProfile = Profile{MaxRequests: 10, Window: time.Minute, KeyPrefix: "strict_limit"}
)

// Set groups the limiters the HTTP layer applies to its routes.
type Set struct {
	Search *Limiter
	API    *Limiter
	Strict *Limiter
}

func NewSet(store backend.Backend, search, api, strict Profile, opts ...Option) Set {
	return Set{
		Search: FromProfile(store, search, opts...),
		API:    FromProfile(store, api, opts...),
		Strict: FromProfile(store, strict, opts...),
	}
}

func FromProfile(store backend.Backend, p Profile, opts ...Option) *Limiter {
	return New(store, p.MaxRequests, p.Window, p.KeyPrefix, opts...)
}
