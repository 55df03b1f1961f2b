package ratelimit

// Limiter decides whether a request identified by key may proceed
type Limiter interface {
	Allow(key string) bool
}
