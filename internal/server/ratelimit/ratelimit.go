// Package ratelimit limits HTTP requests per client and endpoint using token
// buckets.
package ratelimit

import (
	"math"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// idleTTL is how long an untouched bucket is kept
const idleTTL = time.Hour

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter manages rate limiting for multiple clients. Buckets are keyed by
// client, endpoint and method and evicted after an hour without use.
type Limiter struct {
	buckets *cache.Cache
	config  *Config
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
			EndpointConfigs: DefaultEndpointConfigs(),
		}
	}
	cleanup := config.CleanupInterval
	if cleanup <= 0 {
		cleanup = 5 * time.Minute
	}
	return &Limiter{
		buckets: cache.New(idleTTL, cleanup),
		config:  config,
	}
}

// Allow checks if a request from the given client is allowed for the specified endpoint.
// Returns true if allowed, false if rate limited, along with rate limit information.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	matched := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	endpointConfig := matched
	if endpointConfig == nil {
		endpointConfig = &EndpointConfig{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
	}
	if endpointConfig.Unlimited || endpointConfig.Limit <= 0 {
		return true, Info{Allowed: true}
	}

	// Requests matching one route pattern share a bucket
	key := clientID + ":" + routeKey(endpoint, method, matched)
	bucket := l.getBucket(key, *endpointConfig)

	now := time.Now()
	allowed := bucket.AllowN(now, 1)
	tokens := bucket.TokensAt(now)
	perSecond := float64(bucket.Limit())

	info := Info{
		Allowed:   allowed,
		Limit:     endpointConfig.Limit,
		Remaining: max(int(math.Floor(tokens)), 0),
		ResetTime: now,
	}
	if missing := float64(bucket.Burst()) - tokens; missing > 0 && perSecond > 0 {
		info.ResetTime = now.Add(secondsToDuration(missing / perSecond))
	}
	if !allowed && perSecond > 0 {
		info.RetryAfter = secondsToDuration((1 - tokens) / perSecond)
	}
	return allowed, info
}

// getBucket gets or creates the bucket for key and refreshes its idle timer.
func (l *Limiter) getBucket(key string, cfg EndpointConfig) *rate.Limiter {
	if v, ok := l.buckets.Get(key); ok {
		bucket := v.(*rate.Limiter)
		l.buckets.SetDefault(key, bucket)
		return bucket
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.Limit
	}
	bucket := rate.NewLimiter(rate.Limit(float64(cfg.Limit)/cfg.Window.Seconds()), burst)

	// Another request may have created it first
	if err := l.buckets.Add(key, bucket, cache.DefaultExpiration); err != nil {
		if v, ok := l.buckets.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return bucket
}

// Len reports how many buckets are currently held.
func (l *Limiter) Len() int {
	return l.buckets.ItemCount()
}

// Stop drops all buckets.
func (l *Limiter) Stop() {
	l.buckets.Flush()
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
