// Package health provides health check and readiness probe endpoints.
package health

import (
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"
)

const (
	// DefaultUpstreamTimeout bounds the TCP dial performed by an
	// upstream reachability check.
	DefaultUpstreamTimeout = 2 * time.Second

	// DefaultCheckCacheTTL is how long a cached check result stays
	// fresh before the next probe re-runs the underlying check.
	DefaultCheckCacheTTL = 10 * time.Second
)

// UpstreamCheck returns a CheckFunc that dials the given TCP address.
// An unreachable upstream reports degraded rather than unhealthy: the
// gateway keeps serving its other services, so a single dead upstream
// must not take the whole instance out of rotation.
func UpstreamCheck(address string, timeout time.Duration) CheckFunc {
	return func() Check {
		conn, err := net.DialTimeout("tcp", address, timeout)
		if err != nil {
			return Check{
				Status:  StatusDegraded,
				Message: fmt.Sprintf("failed to connect: %v", err),
			}
		}
		_ = conn.Close()

		return Check{Status: StatusHealthy}
	}
}

// UpstreamCheckForTarget builds an UpstreamCheck from a service target
// URL, filling in the scheme's default port when the URL omits one.
func UpstreamCheckForTarget(target string, timeout time.Duration) (CheckFunc, error) {
	address, err := targetAddress(target)
	if err != nil {
		return nil, err
	}
	return UpstreamCheck(address, timeout), nil
}

// targetAddress derives the host:port dial address from a target URL.
func targetAddress(target string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid target %q: %w", target, err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("target %q has no host", target)
	}

	if u.Port() != "" {
		return u.Host, nil
	}

	port := "80"
	if u.Scheme == "https" {
		port = "443"
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}

// CachedCheck wraps fn so repeated probes within ttl reuse the last
// result. Kubelets poll readiness every few seconds; without the cache
// every poll would dial every upstream.
func CachedCheck(fn CheckFunc, ttl time.Duration) CheckFunc {
	var (
		mu        sync.Mutex
		last      Check
		lastCheck time.Time
	)

	return func() Check {
		mu.Lock()
		defer mu.Unlock()

		if !lastCheck.IsZero() && time.Since(lastCheck) < ttl {
			return last
		}

		last = fn()
		lastCheck = time.Now()
		return last
	}
}
