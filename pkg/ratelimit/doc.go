// Package ratelimit provides client-side request pacing for the HubSpot API.
//
// The token bucket implementation holds a fixed capacity that refills after a
// specified period. The exporter uses it to stay under HubSpot's per-portal
// request quotas; with pacing disabled the Unlimited limiter is used instead.
//
// All limiters implement the Limiter interface:
//   - Allow() bool - Check if a request is allowed
//   - Wait() - Block until a request is allowed
//   - Reset() - Reset the limiter state
//
// Usage:
//
//	// 100 requests per minute
//	limiter := ratelimit.NewTokenBucket(100, time.Minute)
//
//	if !limiter.Allow() {
//	    limiter.Wait()
//	}
//	// Proceed with request
package ratelimit
