package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimit returns an HTTP middleware that limits requests per IP address
// to the specified number per minute. Uses a sliding window algorithm.
// Login and verification endpoints sit behind this to slow credential and
// code guessing.
func RateLimit(requestsPerMinute int) func(http.Handler) http.Handler {
	return httprate.LimitByIP(requestsPerMinute, time.Minute)
}

// RateLimitBySubmitter returns an HTTP middleware for the public intake
// endpoints. Requests are keyed by the X-Device-ID header when the client
// sends one, falling back to the remote IP, so one device cannot flood the
// moderation queue from behind a shared NAT and one NAT cannot be starved
// by a single bad device.
func RateLimitBySubmitter(requestsPerMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(
		requestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if device := r.Header.Get("X-Device-ID"); device != "" {
				return device, nil
			}
			return httprate.KeyByIP(r)
		}),
	)
}
