package proxy

import (
	"errors"
	"fmt"
)

// Sentinel errors for proxy operations.
var (
	// ErrServiceNotFound indicates that no service matches the request path.
	ErrServiceNotFound = errors.New("no matching service found")

	// ErrInvalidTarget indicates that a service target URL is invalid.
	ErrInvalidTarget = errors.New("invalid target URL")

	// ErrUpstreamUnavailable indicates that the upstream could not be reached.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// ProxyError represents a proxy-related error with details.
type ProxyError struct {
	Op      string // Operation that failed
	Service string // Service name if applicable
	Target  string // Target URL if applicable
	Message string // Human-readable message
	Cause   error  // Underlying error
}

// Error implements the error interface.
func (e *ProxyError) Error() string {
	msg := fmt.Sprintf("proxy error [%s]", e.Op)
	if e.Service != "" {
		msg += " service=" + e.Service
	}
	if e.Target != "" {
		msg += " target=" + e.Target
	}
	msg += ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ProxyError) Unwrap() error {
	return e.Cause
}

// NewInvalidTargetError creates an error for an unparseable or
// unusable service target.
func NewInvalidTargetError(service, target string, cause error) *ProxyError {
	if cause == nil {
		cause = ErrInvalidTarget
	}
	return &ProxyError{
		Op:      "parse_target",
		Service: service,
		Target:  target,
		Message: "invalid target URL",
		Cause:   cause,
	}
}

// IsProxyError checks if an error is a ProxyError.
func IsProxyError(err error) bool {
	var proxyErr *ProxyError
	return errors.As(err, &proxyErr)
}
